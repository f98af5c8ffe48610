package executor

import (
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// Bootstrap builds the cycle-0 root context (spec.md §3.6's "Lifecycle"):
// every flattened name of the root program's interface starts at version
// 0, whole-program inputs bound to a fresh symbolic constant plus a fresh
// random concrete value, everything else to its type's default value (or,
// if declared, its Init expression's literal value).
func (e *Executor) Bootstrap() (*concolic.Context, error) {
	root, ok := e.Proj.Main()
	if !ok {
		return nil, errors.InvalidIR("executor", "project has no designated main module")
	}
	ctx := concolic.NewRootContext(root.Name)
	inputs := inputFields(root)

	for _, fld := range root.Module.Iface.Flatten(e.Proj) {
		cname := concolic.ContextualName(fld.Name, 0, 0)
		ty := ir.ExprTypeOf(fld.Type)
		if inputs[fld.Name] {
			symbolic := e.Facade.MakeConstant(cname, ty)
			randTerm := e.Facade.MakeRandomValue(ty, e.Rand)
			concrete, _ := smt.LiteralValue(randTerm)
			ctx.State.Bind(cname, concrete, symbolic)
			continue
		}
		defaultTerm := e.Facade.MakeDefaultValue(ty)
		concrete, _ := smt.LiteralValue(defaultTerm)
		ctx.State.Bind(cname, concrete, defaultTerm)
	}
	return ctx, nil
}
