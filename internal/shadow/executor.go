package shadow

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/executor"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/randsrc"
	"github.com/sunholo/ahorn/internal/smt"
)

// Executor drives a shadow.Context across the same cfg.Project the plain
// executor.Executor walks. Every instruction kind that cannot possibly
// involve a ChangeExpr (Entry/Exit/Goto/Call, and any If/While whose guard
// does not transitively reference one) is delegated wholesale to an
// embedded plain Executor; only Assignment/Sequence (which may bind a
// ChangeExpr-tainted name) and a shadow-tainted If/While get the dual
// old/new treatment spec.md §4.6 describes.
type Executor struct {
	Proj   *cfg.Project
	Facade *smt.Facade
	Enc    *Encoder
	Ev     *Evaluator
	Rand   *randsrc.Source
	Base   *executor.Executor
}

func New(proj *cfg.Project, rand *randsrc.Source) *Executor {
	return &Executor{
		Proj:   proj,
		Facade: smt.NewFacade(),
		Enc:    NewEncoder(proj),
		Ev:     NewEvaluator(proj),
		Rand:   rand,
		Base:   executor.New(proj, rand),
	}
}

// Execute advances ctx by exactly one vertex, returning any number of
// divergent forks spec.md §4.6 step 3 found feasible (0, 1, or 2 — the
// plain engine's single-fork contract does not fit a step that can spawn
// a fork down each arm at once).
func (e *Executor) Execute(ctx *Context) (primary *Context, forked []*Context, status Status, err error) {
	c, ok := e.Proj.Lookup(ctx.State.Location.CFG)
	if !ok {
		return nil, nil, ExpectedBehavior, errors.InvalidIR("shadow", "unknown CFG %q", ctx.State.Location.CFG)
	}
	v, ok := c.GetVertex(ctx.State.Location.Label)
	if !ok {
		return nil, nil, ExpectedBehavior, errors.InvalidIR("shadow", "no vertex %d in %s", ctx.State.Location.Label, c.Name)
	}

	switch instr := v.Instr.(type) {
	case *ir.If:
		if e.exprIsShadowed(ctx, instr.Cond) {
			return e.dispatchShadowBranch(ctx, instr.Cond, instr.ThenGoto, instr.ElseGoto)
		}
	case *ir.While:
		if e.exprIsShadowed(ctx, instr.Cond) {
			return e.dispatchShadowBranch(ctx, instr.Cond, instr.BodyEntry, instr.ExitGoto)
		}
	case *ir.Assignment:
		if err := e.doAssignment(ctx, instr.Target, instr.Rhs); err != nil {
			return nil, nil, ExpectedBehavior, err
		}
		ctx.State.Location.Label = instr.Next
		return ctx, nil, ExpectedBehavior, nil
	case *ir.Sequence:
		for _, sub := range instr.List {
			switch s := sub.(type) {
			case *ir.Assignment:
				if err := e.doAssignment(ctx, s.Target, s.Rhs); err != nil {
					return nil, nil, ExpectedBehavior, err
				}
			case *ir.Havoc:
				if err := e.doHavoc(ctx, c, s.Target); err != nil {
					return nil, nil, ExpectedBehavior, err
				}
			default:
				return nil, nil, ExpectedBehavior, errors.InvalidIR("shadow", "sequence at %d contains non-straight-line instruction %T", v.Label, sub)
			}
		}
		ctx.State.Location.Label = instr.Next
		return ctx, nil, ExpectedBehavior, nil
	}

	p, f, err := e.Base.Execute(ctx.Context)
	if err != nil {
		return nil, nil, ExpectedBehavior, err
	}
	var out []*Context
	if wrapped := ctx.wrap(f); wrapped != nil {
		out = append(out, wrapped)
	}
	return ctx.wrap(p), out, ExpectedBehavior, nil
}

// exprIsShadowed reports whether e transitively mentions a ChangeExpr or a
// name whose current version has a recorded old-side valuation — spec.md
// §4.6's trigger condition for running the dual old/new check at all
// instead of ordinary single-mode dispatch.
func (e *Executor) exprIsShadowed(ctx *Context, expr ir.Expr) bool {
	switch n := expr.(type) {
	case *ir.ChangeExpr:
		return true
	case *ir.BinaryExpr:
		return e.exprIsShadowed(ctx, n.L) || e.exprIsShadowed(ctx, n.R)
	case *ir.UnaryExpr:
		return e.exprIsShadowed(ctx, n.E)
	case *ir.BooleanToIntegerCast:
		return e.exprIsShadowed(ctx, n.E)
	case *ir.IntegerToBooleanCast:
		return e.exprIsShadowed(ctx, n.E)
	case *ir.VariableAccess:
		return ctx.hasOld(concolic.FlattenedName(ctx.Scope(), n.Name))
	case *ir.FieldAccess:
		return ctx.hasOld(concolic.FlattenedName(ctx.Scope(), n.Name()))
	case *ir.Phi:
		for _, op := range n.Operands {
			if e.exprIsShadowed(ctx, op) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (e *Executor) doAssignment(ctx *Context, target ir.VarRef, rhs ir.Expr) error {
	newTerm, err := e.Enc.Encode(ctx, rhs, concolic.New)
	if err != nil {
		return err
	}
	newVal, err := e.Ev.Eval(ctx, rhs, concolic.New)
	if err != nil {
		return err
	}

	shadowed := e.exprIsShadowed(ctx, rhs)
	var oldTerm *smt.Term
	var oldVal smt.Value
	if shadowed {
		oldTerm, err = e.Enc.Encode(ctx, rhs, concolic.Old)
		if err != nil {
			return err
		}
		oldVal, err = e.Ev.Eval(ctx, rhs, concolic.Old)
		if err != nil {
			return err
		}
	}

	flattened := concolic.FlattenedName(ctx.Scope(), target.Name)
	ver := ctx.BumpVersion(flattened)
	cname := concolic.ContextualName(flattened, ver, ctx.Cycle)
	ctx.State.Bind(cname, newVal, newTerm)
	if shadowed {
		ctx.BindOld(cname, oldVal, oldTerm)
	}
	return ctx.CheckVersionsAgree()
}

// doHavoc is a havoc's value is never itself shadow-tainted (there is no
// way to write change() into a Havoc target), so it binds the unified
// store only, exactly like the plain executor's doHavoc.
func (e *Executor) doHavoc(ctx *Context, c *cfg.CFG, target ir.VarRef) error {
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

func localFieldType(c *cfg.CFG, resolver ir.TypeResolver, name string) (ir.ExprType, error) {
	for _, fld := range c.Module.Iface.Flatten(resolver) {
		if fld.Name == name {
			return ir.ExprTypeOf(fld.Type), nil
		}
	}
	return ir.UndefinedType, errors.InvalidIR("shadow", "no variable %q in %s's interface", name, c.Name)
}
