package program

import (
	"encoding/json"

	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
)

type instrHeader struct {
	Op string `json:"op"`
}

func decodeInstr(raw json.RawMessage) (ir.Instruction, error) {
	var hdr instrHeader
	if err := json.Unmarshal(raw, &hdr); err != nil {
		return nil, errors.InvalidIR("program", "malformed instruction: %s", err)
	}

	switch hdr.Op {
	case "GOTO":
		var dto struct {
			Target int `json:"target"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed GOTO: %s", err)
		}
		return &ir.Goto{Target: ir.Label(dto.Target)}, nil

	case "IF":
		var dto struct {
			Cond json.RawMessage `json:"cond"`
			Then int             `json:"then"`
			Else int             `json:"else"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed IF: %s", err)
		}
		cond, err := decodeExpr(dto.Cond)
		if err != nil {
			return nil, err
		}
		return &ir.If{Cond: cond, ThenGoto: ir.Label(dto.Then), ElseGoto: ir.Label(dto.Else)}, nil

	case "WHILE":
		var dto struct {
			Cond json.RawMessage `json:"cond"`
			Body int             `json:"body"`
			Exit int             `json:"exit"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed WHILE: %s", err)
		}
		cond, err := decodeExpr(dto.Cond)
		if err != nil {
			return nil, err
		}
		return &ir.While{Cond: cond, BodyEntry: ir.Label(dto.Body), ExitGoto: ir.Label(dto.Exit)}, nil

	case "ASSIGN":
		var dto struct {
			Target string          `json:"target"`
			Rhs    json.RawMessage `json:"rhs"`
			Next   int             `json:"next"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed ASSIGN: %s", err)
		}
		rhs, err := decodeExpr(dto.Rhs)
		if err != nil {
			return nil, err
		}
		return &ir.Assignment{Target: ir.VarRef{Name: dto.Target}, Rhs: rhs, Next: ir.Label(dto.Next)}, nil

	case "HAVOC":
		var dto struct {
			Target string `json:"target"`
			Next   int    `json:"next"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed HAVOC: %s", err)
		}
		return &ir.Havoc{Target: ir.VarRef{Name: dto.Target}, Next: ir.Label(dto.Next)}, nil

	case "CALL":
		var dto struct {
			Callee    string `json:"callee"`
			IntraGoto int    `json:"intraGoto"`
			InterGoto int    `json:"interGoto"`
		}
		if err := json.Unmarshal(raw, &dto); err != nil {
			return nil, errors.InvalidIR("program", "malformed CALL: %s", err)
		}
		return &ir.Call{Callee: ir.VarRef{Name: dto.Callee}, IntraGoto: ir.Label(dto.IntraGoto), InterGoto: ir.Label(dto.InterGoto)}, nil

	default:
		return nil, errors.NotImplemented("program", "unknown instruction op %q", hdr.Op)
	}
}
