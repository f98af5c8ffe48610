package shadow

import (
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// Evaluator is Encoder's concrete-store twin, built the same way: two
// plain concolic.Evaluator instances pinned to Old/New mode, with Old-side
// calls run against Context.oldView so a bare VariableAccess resolves to
// its recorded old value when one exists.
type Evaluator struct {
	Old *concolic.Evaluator
	New *concolic.Evaluator
}

func NewEvaluator(enums concolic.EnumTags) *Evaluator {
	old := concolic.NewEvaluator(enums)
	old.Mode = concolic.Old
	newEv := concolic.NewEvaluator(enums)
	newEv.Mode = concolic.New
	return &Evaluator{Old: old, New: newEv}
}

func (ev *Evaluator) Eval(ctx *Context, e ir.Expr, side concolic.ShadowMode) (smt.Value, error) {
	if side == concolic.Old {
		return ev.Old.Eval(ctx.oldView(), e)
	}
	return ev.New.Eval(ctx.Context, e)
}

// EvalBoth is a convenience for the common case of needing both sides at
// once (spec.md §4.6 step 1).
func (ev *Evaluator) EvalBoth(ctx *Context, e ir.Expr) (oldVal, newVal smt.Value, err error) {
	oldVal, err = ev.Eval(ctx, e, concolic.Old)
	if err != nil {
		return smt.Value{}, smt.Value{}, err
	}
	newVal, err = ev.Eval(ctx, e, concolic.New)
	if err != nil {
		return smt.Value{}, smt.Value{}, err
	}
	return oldVal, newVal, nil
}
