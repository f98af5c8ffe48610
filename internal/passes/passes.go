// Package passes chains the C3 IR passes (spec.md §4.2, SPEC_FULL.md C3)
// into the single pipeline a loaded module runs through before it is fit
// for concolic execution: three-address conversion, call transformation,
// basic-block formation, and on-demand SSA construction, each rebuilding
// the CFG the next pass needs.
package passes

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/passes/block"
	"github.com/sunholo/ahorn/internal/passes/callxform"
	"github.com/sunholo/ahorn/internal/passes/ssa"
	"github.com/sunholo/ahorn/internal/passes/tac"
)

// Lower runs every C3 pass over a single module and returns its CFG,
// ready for cfg.Project.Add. name is the CFG's registration name, which
// for anything but the top-level program is also the module's own Name.
func Lower(name string, m *ir.Module) (*cfg.CFG, error) {
	tacked := tac.Lower(m)
	callxform.StageCallee(tacked)

	c, err := cfg.Build(name, tacked)
	if err != nil {
		return nil, err
	}
	callxform.SplitCallSites(c)

	formed := block.Form(c)
	c, err = cfg.Build(name, formed)
	if err != nil {
		return nil, err
	}

	ssaModule := ssa.Build(c)
	return cfg.Build(name, ssaModule)
}

// LowerProject runs Lower over every (name, module) pair, registers the
// resulting CFGs under a fresh cfg.Project, links call edges, and checks
// the call graph is acyclic (spec.md §3.4) before designating main as the
// root program.
func LowerProject(modules map[string]*ir.Module, main string) (*cfg.Project, error) {
	proj := cfg.NewProject()
	for name, m := range modules {
		c, err := Lower(name, m)
		if err != nil {
			return nil, err
		}
		if err := proj.Add(c); err != nil {
			return nil, err
		}
	}
	if err := proj.LinkCalls(); err != nil {
		return nil, err
	}
	if err := proj.CheckAcyclic(); err != nil {
		return nil, err
	}
	if err := proj.SetMain(main); err != nil {
		return nil, err
	}
	return proj, nil
}
