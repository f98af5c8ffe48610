package concolic

import (
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// EnumTags resolves an enumerated type's ordered tag list, needed to turn
// an EnumeratedValue's tag name into the integer the SMT term space
// actually works over. The cfg.Project registry is the production
// implementation; tests supply a map-backed stub.
type EnumTags interface {
	Tags(enumName string) ([]string, bool)
}

// Encoder lowers an ir.Expr to an smt.Term under a Context's current state
// (spec.md §4.4). A VariableAccess(v) at scope σ becomes the constant
// named by ContextualName(FlattenedName(σ, v), state.Version(...), cycle).
type Encoder struct {
	Facade *smt.Facade
	Enums  EnumTags
	Mode   ShadowMode
}

func NewEncoder(enums EnumTags) *Encoder {
	return &Encoder{Facade: smt.NewFacade(), Enums: enums, Mode: None}
}

// Encode lowers e against ctx's current frame scope and cycle.
func (enc *Encoder) Encode(ctx *Context, e ir.Expr) (*smt.Term, error) {
	switch n := e.(type) {
	case *ir.BinaryExpr:
		l, err := enc.Encode(ctx, n.L)
		if err != nil {
			return nil, err
		}
		r, err := enc.Encode(ctx, n.R)
		if err != nil {
			return nil, err
		}
		return enc.Facade.Bin(n.Op, l, r), nil

	case *ir.UnaryExpr:
		inner, err := enc.Encode(ctx, n.E)
		if err != nil {
			return nil, err
		}
		if n.Op == ir.Not {
			return enc.Facade.Not(inner), nil
		}
		return enc.Facade.Bin(ir.Sub, enc.Facade.MakeIntegerValue(0), inner), nil

	case *ir.BooleanConst:
		return enc.Facade.MakeBooleanValue(n.Value), nil
	case *ir.IntegerConst:
		return enc.Facade.MakeIntegerValue(n.Value), nil
	case *ir.TimeConst:
		return enc.Facade.MakeIntegerValue(n.Millis), nil

	case *ir.EnumeratedValue:
		tags, ok := enc.Enums.Tags(n.Enum)
		if !ok {
			return nil, errors.InvalidIR("encoder", "unknown enumerated type %q", n.Enum)
		}
		for i, t := range tags {
			if t == n.Tag {
				return enc.Facade.MakeIntegerValue(int64(i)), nil
			}
		}
		return nil, errors.InvalidIR("encoder", "tag %q not a member of enum %q", n.Tag, n.Enum)

	case *ir.VariableAccess:
		return enc.encodeName(ctx, n.Name, n.Ty)
	case *ir.FieldAccess:
		return enc.encodeName(ctx, n.Name(), n.Ty)

	case *ir.BooleanToIntegerCast:
		return enc.Encode(ctx, n.E)
	case *ir.IntegerToBooleanCast:
		return enc.Encode(ctx, n.E)

	case *ir.ChangeExpr:
		switch enc.Mode {
		case Old:
			return enc.Encode(ctx, n.Old)
		case None, New:
			return enc.Encode(ctx, n.New)
		default: // Both: shadow.Encoder overrides this case; plain Encoder picks New.
			return enc.Encode(ctx, n.New)
		}

	case *ir.Phi:
		op, ok := n.Operands[int(ctx.State.Location.Label)]
		if !ok {
			return nil, errors.InvalidIR("encoder", "phi %s has no operand for predecessor label %d", n.Target, ctx.State.Location.Label)
		}
		return enc.Encode(ctx, op)

	case *ir.NondeterministicConst:
		return nil, errors.NotSupported("encoder", "NondeterministicConst only lowers via Havoc dispatch")
	case *ir.Undefined:
		return nil, errors.UndefinedValue("encoder", "encountered an explicit Undefined expression")

	default:
		return nil, errors.InvalidIR("encoder", "unrecognized expression kind %T", e)
	}
}

func (enc *Encoder) encodeName(ctx *Context, local string, ty ir.ExprType) (*smt.Term, error) {
	flattened := FlattenedName(ctx.Scope(), local)
	ver := ctx.Version(flattened)
	cname := ContextualName(flattened, ver, ctx.Cycle)
	if t, ok := ctx.State.Symbolic[cname]; ok {
		return t, nil
	}
	return nil, errors.UndefinedValue("encoder", "no symbolic binding for %s", cname)
}
