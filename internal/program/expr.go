package program

import (
	"encoding/json"

	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
)

// exprHeader peeks the "op" discriminator every expr.json object carries.
type exprHeader struct {
	Op string `json:"op"`
}

func decodeExprType(s string) (ir.ExprType, error) {
	switch s {
	case "", "ARITHMETIC":
		return ir.Arithmetic, nil
	case "BOOLEAN":
		return ir.Boolean, nil
	default:
		return ir.UndefinedType, errors.NotImplemented("program", "unknown expression type %q", s)
	}
}

func decodeExpr(raw json.RawMessage) (ir.Expr, error) {
	var hdr exprHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, errors.InvalidIR("program", "malformed expression: %s", err)
	}

	switch hdr.Op {
	case "VAR":
		var dto struct {
			Name string `json:"name"`
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed VAR expression: %s", err)
		}
		ty, err := decodeExprType(dto.Type)
		if err != nil {
			return nil, err
		}
		return &ir.VariableAccess{Name: dto.Name, Ty: ty}, nil

	case "FIELD":
		var dto struct {
			Record json.RawMessage `json:"record"`
			Inner  json.RawMessage `json:"inner"`
			Type   string          `json:"type"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed FIELD expression: %s", err)
		}
		record, err := decodeExpr(dto.Record)
		if err != nil {
			return nil, err
		}
		inner, err := decodeExpr(dto.Inner)
		if err != nil {
			return nil, err
		}
		ty, err := decodeExprType(dto.Type)
		if err != nil {
			return nil, err
		}
		return &ir.FieldAccess{Record: record, Inner: inner, Ty: ty}, nil

	case "BIN":
		var dto struct {
			BinOp string          `json:"binOp"`
			L     json.RawMessage `json:"l"`
			R     json.RawMessage `json:"r"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed BIN expression: %s", err)
		}
		op, err := decodeBinOp(dto.BinOp)
		if err != nil {
			return nil, err
		}
		l, err := decodeExpr(dto.L)
		if err != nil {
			return nil, err
		}
		r, err := decodeExpr(dto.R)
		if err != nil {
			return nil, err
		}
		return &ir.BinaryExpr{Op: op, L: l, R: r}, nil

	case "UN":
		var dto struct {
			UnOp string          `json:"unOp"`
			E    json.RawMessage `json:"e"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed UN expression: %s", err)
		}
		op, err := decodeUnOp(dto.UnOp)
		if err != nil {
			return nil, err
		}
		e, err := decodeExpr(dto.E)
		if err != nil {
			return nil, err
		}
		return &ir.UnaryExpr{Op: op, E: e}, nil

	case "BOOL_CONST":
		var dto struct {
			Value bool `json:"value"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed BOOL_CONST: %s", err)
		}
		return &ir.BooleanConst{Value: dto.Value}, nil

	case "INT_CONST":
		var dto struct {
			Value int64 `json:"value"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed INT_CONST: %s", err)
		}
		return &ir.IntegerConst{Value: dto.Value}, nil

	case "TIME_CONST":
		var dto struct {
			Millis int64 `json:"millis"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed TIME_CONST: %s", err)
		}
		return &ir.TimeConst{Millis: dto.Millis}, nil

	case "ENUM_VALUE":
		var dto struct {
			Enum string `json:"enum"`
			Tag  string `json:"tag"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed ENUM_VALUE: %s", err)
		}
		return &ir.EnumeratedValue{Enum: dto.Enum, Tag: dto.Tag}, nil

	case "NONDET":
		var dto struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed NONDET: %s", err)
		}
		ty, err := decodeExprType(dto.Type)
		if err != nil {
			return nil, err
		}
		return &ir.NondeterministicConst{Ty: ty}, nil

	case "UNDEFINED":
		return &ir.Undefined{}, nil

	case "CHANGE":
		var dto struct {
			Old json.RawMessage `json:"old"`
			New json.RawMessage `json:"new"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed CHANGE expression: %s", err)
		}
		oldE, err := decodeExpr(dto.Old)
		if err != nil {
			return nil, err
		}
		newE, err := decodeExpr(dto.New)
		if err != nil {
			return nil, err
		}
		return &ir.ChangeExpr{Old: oldE, New: newE}, nil

	case "BOOL_TO_INT":
		e, err := decodeCastOperand(raw)
		if err != nil {
			return nil, err
		}
		return &ir.BooleanToIntegerCast{E: e}, nil

	case "INT_TO_BOOL":
		e, err := decodeCastOperand(raw)
		if err != nil {
			return nil, err
		}
		return &ir.IntegerToBooleanCast{E: e}, nil

	default:
		return nil, errors.NotImplemented("program", "unknown expression op %q", hdr.Op)
	}
}

func decodeCastOperand(raw json.RawMessage) (ir.Expr, error) {
	var dto struct {
		E json.RawMessage `json:"e"`
	}
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, errors.InvalidIR("program", "malformed cast expression: %s", err)
	}
	return decodeExpr(dto.E)
}

func decodeBinOp(s string) (ir.BinOp, error) {
	switch s {
	case "+":
		return ir.Add, nil
	case "-":
		return ir.Sub, nil
	case "*":
		return ir.Mul, nil
	case "/":
		return ir.Div, nil
	case "mod":
		return ir.Mod, nil
	case "**":
		return ir.Pow, nil
	case ">":
		return ir.Gt, nil
	case "<":
		return ir.Lt, nil
	case ">=":
		return ir.Ge, nil
	case "<=":
		return ir.Le, nil
	case "=":
		return ir.Eq, nil
	case "<>":
		return ir.Ne, nil
	case "AND":
		return ir.And, nil
	case "XOR":
		return ir.Xor, nil
	case "OR":
		return ir.Or, nil
	default:
		return 0, errors.NotImplemented("program", "unknown binary operator %q", s)
	}
}

func decodeUnOp(s string) (ir.UnOp, error) {
	switch s {
	case "-":
		return ir.Neg, nil
	case "NOT":
		return ir.Not, nil
	default:
		return 0, errors.NotImplemented("program", "unknown unary operator %q", s)
	}
}
