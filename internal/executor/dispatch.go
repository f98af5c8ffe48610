package executor

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

func (e *Executor) dispatchInstr(ctx *concolic.Context, c *cfg.CFG, v *cfg.Vertex) (*concolic.Context, *concolic.Context, error) {
	switch instr := v.Instr.(type) {
	case *ir.Assignment:
		if err := e.doAssignment(ctx, c, instr.Target, instr.Rhs); err != nil {
			return nil, nil, err
		}
		ctx.State.Location.Label = instr.Next
		return ctx, nil, nil

	case *ir.Havoc:
		if err := e.doHavoc(ctx, c, instr.Target); err != nil {
			return nil, nil, err
		}
		ctx.State.Location.Label = instr.Next
		return ctx, nil, nil

	case *ir.Sequence:
		for _, sub := range instr.List {
			switch s := sub.(type) {
			case *ir.Assignment:
				if err := e.doAssignment(ctx, c, s.Target, s.Rhs); err != nil {
					return nil, nil, err
				}
			case *ir.Havoc:
				if err := e.doHavoc(ctx, c, s.Target); err != nil {
					return nil, nil, err
				}
			default:
				return nil, nil, errors.InvalidIR("executor", "sequence at %d contains non-straight-line instruction %T", v.Label, sub)
			}
		}
		ctx.State.Location.Label = instr.Next
		return ctx, nil, nil

	case *ir.Goto:
		ctx.State.Location.Label = instr.Target
		return ctx, nil, nil

	case *ir.Call:
		callee, ok := e.Proj.Lookup(instr.Callee.Name)
		if !ok {
			return nil, nil, errors.InvalidIR("executor", "call to unknown module %q", instr.Callee.Name)
		}
		scope := concolic.FlattenedName(ctx.Scope(), instr.Callee.Name)
		ctx.Push(concolic.Frame{CFG: instr.Callee.Name, Scope: scope, ReturnLabel: instr.IntraGoto})
		ctx.State.Location = concolic.Location{CFG: instr.Callee.Name, Label: callee.Module.Entry}
		return ctx, nil, nil

	case *ir.If:
		return e.dispatchBranch(ctx, instr.Cond, instr.ThenGoto, instr.ElseGoto)

	case *ir.While:
		return e.dispatchBranch(ctx, instr.Cond, instr.BodyEntry, instr.ExitGoto)

	default:
		return nil, nil, errors.InvalidIR("executor", "unrecognized instruction kind %T at %d", v.Instr, v.Label)
	}
}

func (e *Executor) doAssignment(ctx *concolic.Context, c *cfg.CFG, target ir.VarRef, rhs ir.Expr) error {
	term, err := e.Enc.Encode(ctx, rhs)
	if err != nil {
		return err
	}
	val, err := e.Eval.Eval(ctx, rhs)
	if err != nil {
		return err
	}
	flattened := concolic.FlattenedName(ctx.Scope(), target.Name)
	ver := ctx.BumpVersion(flattened)
	cname := concolic.ContextualName(flattened, ver, ctx.Cycle)
	ctx.State.Bind(cname, val, term)
	return ctx.CheckVersionsAgree()
}

func (e *Executor) doHavoc(ctx *concolic.Context, c *cfg.CFG, target ir.VarRef) error {
	ty, err := localFieldType(c, e.Proj, target.Name)
	if err != nil {
		return err
	}
	flattened := concolic.FlattenedName(ctx.Scope(), target.Name)
	ver := ctx.BumpVersion(flattened)
	cname := concolic.ContextualName(flattened, ver, ctx.Cycle)

	symbolic := e.Facade.MakeConstant(cname, ty)
	randTerm := e.Facade.MakeRandomValue(ty, e.Rand)
	concrete, _ := smt.LiteralValue(randTerm)
	ctx.State.Bind(cname, concrete, symbolic)
	return ctx.CheckVersionsAgree()
}

// localFieldType resolves the ExprType of a local (CFG-relative) field
// name by looking it up in c's own flattened interface.
func localFieldType(c *cfg.CFG, resolver ir.TypeResolver, name string) (ir.ExprType, error) {
	for _, fld := range c.Module.Iface.Flatten(resolver) {
		if fld.Name == name {
			return ir.ExprTypeOf(fld.Type), nil
		}
	}
	return ir.UndefinedType, errors.InvalidIR("executor", "no variable %q in %s's interface", name, c.Name)
}

// dispatchBranch implements the shared If/While dispatch logic (spec.md
// §4.5): evaluate the guard concretely, encode it symbolically, extend the
// path constraint along the taken direction, and attempt tryFork on the
// untaken direction.
func (e *Executor) dispatchBranch(ctx *concolic.Context, cond ir.Expr, thenLabel, elseLabel ir.Label) (*concolic.Context, *concolic.Context, error) {
	concreteVal, err := e.Eval.Eval(ctx, cond)
	if err != nil {
		return nil, nil, err
	}
	guard, err := e.Enc.Encode(ctx, cond)
	if err != nil {
		return nil, nil, err
	}

	taken, untaken := elseLabel, thenLabel
	takenTerm, untakenTerm := e.Facade.Not(guard), guard
	if concreteVal.AsBool() {
		taken, untaken = thenLabel, elseLabel
		takenTerm, untakenTerm = guard, e.Facade.Not(guard)
	}

	forked, err := e.tryFork(ctx, untakenTerm, untaken)
	if err != nil {
		return nil, nil, err
	}

	ctx.State.Path = append(ctx.State.Path, takenTerm)
	ctx.State.Location.Label = taken
	return ctx, forked, nil
}
