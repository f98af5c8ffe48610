package executor

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// inputFields returns the flattened names of rootCFG's whole-program
// inputs: scalar (non-Derived) top-level variables of Input storage
// (GLOSSARY: "a variable with Input storage at the root module"). A
// Derived-typed top-level field's descendants are never whole-program
// inputs even if nested Input-storage fields exist inside the
// function-block type — they are bound by parameter-in assignments at
// call sites, not re-symbolized at cycle boundaries.
func inputFields(rootCFG *cfg.CFG) map[string]bool {
	inputs := map[string]bool{}
	for _, v := range rootCFG.Module.Iface.Variables() {
		if v.Storage == ir.Input && v.Type.Kind != ir.DerivedKind {
			inputs[v.Name] = true
		}
	}
	return inputs
}

// closeCycle implements spec.md §4.5.1. It runs when ctx reaches the root
// program's Exit vertex.
func (e *Executor) closeCycle(ctx *concolic.Context, rootCFG *cfg.CFG) (*concolic.Context, *concolic.Context, error) {
	fields := rootCFG.Module.Iface.Flatten(e.Proj)
	inputs := inputFields(rootCFG)

	type carried struct {
		name     string
		ty       ir.ExprType
		isInput  bool
		concrete smt.Value
		symbolic *smt.Term
	}
	snapshot := make([]carried, 0, len(fields))
	for _, fld := range fields {
		highest := ctx.Global[fld.Name]
		oldCname := concolic.ContextualName(fld.Name, highest, ctx.Cycle)
		cv, cok := ctx.State.Concrete[oldCname]
		sv, sok := ctx.State.Symbolic[oldCname]
		if !cok || !sok {
			return nil, nil, errors.InvalidIR("executor", "missing binding for %s at cycle close", oldCname)
		}
		snapshot = append(snapshot, carried{
			name: fld.Name, ty: ir.ExprTypeOf(fld.Type),
			isInput: inputs[fld.Name], concrete: cv, symbolic: sv,
		})
	}

	// Step 1: reset every flattened name's global and local version to 0.
	for _, fld := range fields {
		ctx.Global[fld.Name] = 0
		ctx.State.LocalVers[fld.Name] = 0
	}

	// Step 2: bind v_0__{k+1}.
	nextCycle := ctx.Cycle + 1
	for _, s := range snapshot {
		newCname := concolic.ContextualName(s.name, 0, nextCycle)
		if s.isInput {
			symbolic := e.Facade.MakeConstant(newCname, s.ty)
			randTerm := e.Facade.MakeRandomValue(s.ty, e.Rand)
			concrete, _ := smt.LiteralValue(randTerm)
			ctx.State.Bind(newCname, concrete, symbolic)
		} else {
			ctx.State.Bind(newCname, s.concrete, s.symbolic)
		}
	}

	// Step 3: clear the path constraint. Safe only now that every carried
	// value has already been rebound above (the carried symbolic terms
	// inline all prior-cycle dependence; nothing downstream still needs
	// the old constraint list).
	ctx.State.Path = nil

	// Step 4: advance the cycle counter and resume at the root program's
	// entry — the literal "root frame's return_label" of spec.md §4.5.1
	// has no caller to return to, so it is read here as "re-enter the
	// root program for the next tick".
	ctx.Cycle = nextCycle
	ctx.State.Location = concolic.Location{CFG: rootCFG.Name, Label: rootCFG.Module.Entry}
	return ctx, nil, nil
}
