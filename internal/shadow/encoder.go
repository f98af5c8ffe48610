package shadow

import (
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// Encoder lowers an expression to its Old-side and New-side term by
// delegating to a pair of plain concolic.Encoder instances already pinned
// to Old/New mode: ordinary sub-expressions (and any ChangeExpr a plain
// Encoder already knows how to pick a side of) reuse concolic's own
// recursive lowering verbatim. The one thing a plain Encoder cannot do is
// resolve a bare VariableAccess to an old-side value when that name's own
// definition diverged; Old-side calls run against Context.oldView, which
// overlays exactly those recorded old valuations on top of the shared
// store before concolic.Encoder ever sees it.
type Encoder struct {
	Old *concolic.Encoder
	New *concolic.Encoder
}

func NewEncoder(enums concolic.EnumTags) *Encoder {
	old := concolic.NewEncoder(enums)
	old.Mode = concolic.Old
	newEnc := concolic.NewEncoder(enums)
	newEnc.Mode = concolic.New
	return &Encoder{Old: old, New: newEnc}
}

// Encode lowers e on the requested side. side must be concolic.Old or
// concolic.New.
func (enc *Encoder) Encode(ctx *Context, e ir.Expr, side concolic.ShadowMode) (*smt.Term, error) {
	if side == concolic.Old {
		return enc.Old.Encode(ctx.oldView(), e)
	}
	return enc.New.Encode(ctx.Context, e)
}

// EncodeBoth is a convenience for the common case of needing both sides
// at once (spec.md §4.6 steps 1-2).
func (enc *Encoder) EncodeBoth(ctx *Context, e ir.Expr) (oldTerm, newTerm *smt.Term, err error) {
	oldTerm, err = enc.Encode(ctx, e, concolic.Old)
	if err != nil {
		return nil, nil, err
	}
	newTerm, err = enc.Encode(ctx, e, concolic.New)
	if err != nil {
		return nil, nil, err
	}
	return oldTerm, newTerm, nil
}
