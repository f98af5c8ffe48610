package cfg

import (
	"fmt"
	"strings"

	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
)

// Project is the central registry of every CFG in a program: the shared-
// ownership mechanism spec.md's Design Notes call for instead of pointer
// cycles. A callee CFG is referenced by name from every caller and from
// this single map, never duplicated. The cycle check below is adapted
// from the teacher's module-dependency topological sort (internal/link's
// DFS-with-in-path cycle detector), repurposed from import cycles to call
// graph cycles, which spec.md §3.4 forbids outright.
type Project struct {
	cfgs  map[string]*CFG
	order []string
	main  string
}

// NewProject returns an empty registry.
func NewProject() *Project {
	return &Project{cfgs: make(map[string]*CFG)}
}

// Add registers cfg under its own name, wires its weak back-pointer to
// this project, and returns an error if the name is already taken.
func (p *Project) Add(c *CFG) error {
	if _, exists := p.cfgs[c.Name]; exists {
		return errors.InvalidIR("cfg", "duplicate module name %q", c.Name)
	}
	c.Proj = p
	p.cfgs[c.Name] = c
	p.order = append(p.order, c.Name)
	return nil
}

// SetMain designates name as the root program; it must already be
// registered and must be a Program module.
func (p *Project) SetMain(name string) error {
	c, ok := p.cfgs[name]
	if !ok {
		return errors.InvalidIR("cfg", "main module %q not found", name)
	}
	if c.Module.Kind != ir.ProgramKind {
		return errors.InvalidIR("cfg", "main module %q is not a PROGRAM", name)
	}
	p.main = name
	return nil
}

// Main returns the designated root CFG.
func (p *Project) Main() (*CFG, bool) {
	return p.Lookup(p.main)
}

// Lookup returns the CFG registered under name.
func (p *Project) Lookup(name string) (*CFG, bool) {
	c, ok := p.cfgs[name]
	return c, ok
}

// InterfaceOf implements ir.TypeResolver: a Derived field's type name is a
// module name in this registry.
func (p *Project) InterfaceOf(name string) (*ir.Interface, bool) {
	c, ok := p.cfgs[name]
	if !ok {
		return nil, false
	}
	return c.Module.Iface, true
}

// Names returns every registered module name, in registration order
// (ModulesBegin/End of spec.md §6.3).
func (p *Project) Names() []string {
	out := make([]string, len(p.order))
	copy(out, p.order)
	return out
}

// Tags resolves an enumerated type's ordered tag list by scanning every
// registered module's interface for a variable declared with that
// enumerated type (spec.md §3.3's DataType carries the tag list on the
// declaration site, not in a separate global table). Implements
// concolic.EnumTags.
func (p *Project) Tags(enumName string) ([]string, bool) {
	for _, name := range p.order {
		c := p.cfgs[name]
		for _, v := range c.Module.Iface.Variables() {
			if v.Type.Kind == ir.EnumeratedKind && v.Type.EnumName == enumName {
				return v.Type.EnumTags, true
			}
		}
	}
	return nil, false
}

// CallersOf returns every module name with a Call instruction whose callee
// is name.
func (p *Project) CallersOf(name string) []string {
	var out []string
	for _, callerName := range p.order {
		caller := p.cfgs[callerName]
		for _, v := range caller.Vertices {
			if call, ok := v.Instr.(*ir.Call); ok && call.Callee.Name == name {
				out = append(out, callerName)
				break
			}
		}
	}
	return out
}

// LinkCalls adds the InterproceduralReturn edge matching every Call vertex
// in the project: one edge per call site, from the callee's Exit vertex to
// the caller's call-to-return label, tagged with the caller's name and the
// call label (spec.md §3.4). Must run after every CFG is registered.
func (p *Project) LinkCalls() error {
	for _, callerName := range p.order {
		caller := p.cfgs[callerName]
		for label, v := range caller.Vertices {
			call, ok := v.Instr.(*ir.Call)
			if !ok {
				continue
			}
			callee, ok := p.Lookup(call.Callee.Name)
			if !ok {
				return errors.InvalidIR("cfg", "call to unknown module %q at %s.%d", call.Callee.Name, callerName, label)
			}
			callee.Edges = append(callee.Edges, &Edge{
				From:       callee.Module.Exit,
				To:         call.IntraGoto,
				Type:       InterproceduralReturn,
				CallerName: callerName,
				CallLabel:  label,
			})
		}
	}
	return nil
}

// CheckAcyclic returns an error naming the cycle if the call graph has
// one; call graphs are required to be acyclic (spec.md §3.4).
func (p *Project) CheckAcyclic() error {
	visited := make(map[string]bool)
	inPath := make(map[string]bool)
	var path []string

	var dfs func(name string) error
	dfs = func(name string) error {
		if visited[name] {
			return nil
		}
		if inPath[name] {
			cycle := append(append([]string{}, path...), name)
			return errors.InvalidIR("cfg", "call graph cycle: %s", strings.Join(cycle, " -> "))
		}
		inPath[name] = true
		path = append(path, name)

		c, ok := p.cfgs[name]
		if ok {
			for _, v := range c.Vertices {
				if call, ok := v.Instr.(*ir.Call); ok {
					if err := dfs(call.Callee.Name); err != nil {
						return err
					}
				}
			}
		}

		inPath[name] = false
		path = path[:len(path)-1]
		visited[name] = true
		return nil
	}

	for _, name := range p.order {
		if err := dfs(name); err != nil {
			return err
		}
	}
	return nil
}

// String renders the project's module roster, mainly for diagnostics.
func (p *Project) String() string {
	return fmt.Sprintf("Project{main=%s, modules=%v}", p.main, p.order)
}
