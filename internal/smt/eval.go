package smt

import (
	"fmt"

	"github.com/sunholo/ahorn/internal/ir"
)

// evalGround folds t to a concrete Value under a model that binds every
// constant free in t. It is the checking half of the decision procedure:
// solve proposes a model, evalGround confirms it actually satisfies the
// formula.
func evalGround(t *Term, model map[string]Value) (Value, error) {
	switch t.Kind {
	case ConstTerm:
		v, ok := model[t.Name]
		if !ok {
			return Value{}, fmt.Errorf("smt: unbound constant %q", t.Name)
		}
		return v, nil
	case BoolLit:
		return BoolValue(t.B), nil
	case IntLit:
		return IntValue(t.I), nil
	case NotTerm:
		e, err := evalGround(t.E, model)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(!e.AsBool()), nil
	case BinTerm:
		l, err := evalGround(t.L, model)
		if err != nil {
			return Value{}, err
		}
		r, err := evalGround(t.R, model)
		if err != nil {
			return Value{}, err
		}
		return evalBinOp(t.Op, l, r)
	default:
		return Value{}, fmt.Errorf("smt: unrecognized term kind %d", t.Kind)
	}
}

func evalBinOp(op ir.BinOp, l, r Value) (Value, error) {
	switch op {
	case ir.Add:
		return IntValue(l.AsInt() + r.AsInt()), nil
	case ir.Sub:
		return IntValue(l.AsInt() - r.AsInt()), nil
	case ir.Mul:
		return IntValue(l.AsInt() * r.AsInt()), nil
	case ir.Div:
		if r.AsInt() == 0 {
			return Value{}, fmt.Errorf("smt: division by zero")
		}
		return IntValue(l.AsInt() / r.AsInt()), nil
	case ir.Mod:
		if r.AsInt() == 0 {
			return Value{}, fmt.Errorf("smt: modulo by zero")
		}
		return IntValue(l.AsInt() % r.AsInt()), nil
	case ir.Pow:
		base, exp := l.AsInt(), r.AsInt()
		out := int64(1)
		for i := int64(0); i < exp; i++ {
			out *= base
		}
		return IntValue(out), nil
	case ir.Gt:
		return BoolValue(l.AsInt() > r.AsInt()), nil
	case ir.Lt:
		return BoolValue(l.AsInt() < r.AsInt()), nil
	case ir.Ge:
		return BoolValue(l.AsInt() >= r.AsInt()), nil
	case ir.Le:
		return BoolValue(l.AsInt() <= r.AsInt()), nil
	case ir.Eq:
		return BoolValue(l.AsInt() == r.AsInt()), nil
	case ir.Ne:
		return BoolValue(l.AsInt() != r.AsInt()), nil
	case ir.And:
		return BoolValue(l.AsBool() && r.AsBool()), nil
	case ir.Or:
		return BoolValue(l.AsBool() || r.AsBool()), nil
	case ir.Xor:
		return BoolValue(l.AsBool() != r.AsBool()), nil
	default:
		return Value{}, fmt.Errorf("smt: unrecognized binary operator %v", op)
	}
}

// freeConstants returns the distinct constant names free in t mapped to
// their declared type, in first-seen order of the name slice.
func freeConstants(t *Term) ([]string, map[string]ir.ExprType) {
	types := map[string]ir.ExprType{}
	var order []string
	var walk func(*Term)
	walk = func(n *Term) {
		if n == nil {
			return
		}
		switch n.Kind {
		case ConstTerm:
			if _, ok := types[n.Name]; !ok {
				types[n.Name] = n.Ty
				order = append(order, n.Name)
			}
		case NotTerm:
			walk(n.E)
		case BinTerm:
			walk(n.L)
			walk(n.R)
		}
	}
	walk(t)
	return order, types
}
