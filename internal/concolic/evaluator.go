package concolic

import (
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// Evaluator is the concrete-store twin of Encoder (spec.md §4.4): the same
// traversal, folding to a ground smt.Value instead of building a Term. It
// must never produce a free value — an unbound or Undefined expression is
// always a reported UndefinedValue error, never a zero value.
type Evaluator struct {
	Enums EnumTags
	Mode  ShadowMode
}

func NewEvaluator(enums EnumTags) *Evaluator {
	return &Evaluator{Enums: enums, Mode: None}
}

func (ev *Evaluator) Eval(ctx *Context, e ir.Expr) (smt.Value, error) {
	switch n := e.(type) {
	case *ir.BinaryExpr:
		l, err := ev.Eval(ctx, n.L)
		if err != nil {
			return smt.Value{}, err
		}
		r, err := ev.Eval(ctx, n.R)
		if err != nil {
			return smt.Value{}, err
		}
		return evalBin(n.Op, l, r)

	case *ir.UnaryExpr:
		inner, err := ev.Eval(ctx, n.E)
		if err != nil {
			return smt.Value{}, err
		}
		if n.Op == ir.Not {
			return smt.BoolValue(!inner.AsBool()), nil
		}
		return smt.IntValue(-inner.AsInt()), nil

	case *ir.BooleanConst:
		return smt.BoolValue(n.Value), nil
	case *ir.IntegerConst:
		return smt.IntValue(n.Value), nil
	case *ir.TimeConst:
		return smt.IntValue(n.Millis), nil

	case *ir.EnumeratedValue:
		tags, ok := ev.Enums.Tags(n.Enum)
		if !ok {
			return smt.Value{}, errors.InvalidIR("evaluator", "unknown enumerated type %q", n.Enum)
		}
		for i, t := range tags {
			if t == n.Tag {
				return smt.IntValue(int64(i)), nil
			}
		}
		return smt.Value{}, errors.InvalidIR("evaluator", "tag %q not a member of enum %q", n.Tag, n.Enum)

	case *ir.VariableAccess:
		return ev.evalName(ctx, n.Name)
	case *ir.FieldAccess:
		return ev.evalName(ctx, n.Name())

	case *ir.BooleanToIntegerCast:
		v, err := ev.Eval(ctx, n.E)
		if err != nil {
			return smt.Value{}, err
		}
		return smt.IntValue(v.AsInt()), nil
	case *ir.IntegerToBooleanCast:
		v, err := ev.Eval(ctx, n.E)
		if err != nil {
			return smt.Value{}, err
		}
		return smt.BoolValue(v.AsBool()), nil

	case *ir.ChangeExpr:
		switch ev.Mode {
		case Old:
			return ev.Eval(ctx, n.Old)
		default: // None, New, Both (plain Evaluator has no second store to compare)
			return ev.Eval(ctx, n.New)
		}

	case *ir.Phi:
		op, ok := n.Operands[int(ctx.State.Location.Label)]
		if !ok {
			return smt.Value{}, errors.InvalidIR("evaluator", "phi %s has no operand for predecessor label %d", n.Target, ctx.State.Location.Label)
		}
		return ev.Eval(ctx, op)

	case *ir.NondeterministicConst:
		return smt.Value{}, errors.NotSupported("evaluator", "NondeterministicConst only lowers via Havoc dispatch")
	case *ir.Undefined:
		return smt.Value{}, errors.UndefinedValue("evaluator", "encountered an explicit Undefined expression")

	default:
		return smt.Value{}, errors.InvalidIR("evaluator", "unrecognized expression kind %T", e)
	}
}

func (ev *Evaluator) evalName(ctx *Context, local string) (smt.Value, error) {
	flattened := FlattenedName(ctx.Scope(), local)
	ver := ctx.Version(flattened)
	cname := ContextualName(flattened, ver, ctx.Cycle)
	v, ok := ctx.State.Concrete[cname]
	if !ok {
		return smt.Value{}, errors.UndefinedValue("evaluator", "no concrete binding for %s", cname)
	}
	return v, nil
}

func evalBin(op ir.BinOp, l, r smt.Value) (smt.Value, error) {
	switch op {
	case ir.Add:
		return smt.IntValue(l.AsInt() + r.AsInt()), nil
	case ir.Sub:
		return smt.IntValue(l.AsInt() - r.AsInt()), nil
	case ir.Mul:
		return smt.IntValue(l.AsInt() * r.AsInt()), nil
	case ir.Div:
		if r.AsInt() == 0 {
			return smt.Value{}, errors.InvalidIR("evaluator", "division by zero")
		}
		return smt.IntValue(l.AsInt() / r.AsInt()), nil
	case ir.Mod:
		if r.AsInt() == 0 {
			return smt.Value{}, errors.InvalidIR("evaluator", "modulo by zero")
		}
		return smt.IntValue(l.AsInt() % r.AsInt()), nil
	case ir.Pow:
		base, exp := l.AsInt(), r.AsInt()
		out := int64(1)
		for i := int64(0); i < exp; i++ {
			out *= base
		}
		return smt.IntValue(out), nil
	case ir.Gt:
		return smt.BoolValue(l.AsInt() > r.AsInt()), nil
	case ir.Lt:
		return smt.BoolValue(l.AsInt() < r.AsInt()), nil
	case ir.Ge:
		return smt.BoolValue(l.AsInt() >= r.AsInt()), nil
	case ir.Le:
		return smt.BoolValue(l.AsInt() <= r.AsInt()), nil
	case ir.Eq:
		return smt.BoolValue(l.AsInt() == r.AsInt()), nil
	case ir.Ne:
		return smt.BoolValue(l.AsInt() != r.AsInt()), nil
	case ir.And:
		return smt.BoolValue(l.AsBool() && r.AsBool()), nil
	case ir.Or:
		return smt.BoolValue(l.AsBool() || r.AsBool()), nil
	case ir.Xor:
		return smt.BoolValue(l.AsBool() != r.AsBool()), nil
	default:
		return smt.Value{}, errors.InvalidIR("evaluator", "unrecognized binary operator %v", op)
	}
}
