// Package block implements the basic-block formation pass (spec.md §4.2,
// SPEC_FULL.md C3): leaders are entry, any vertex with more than one
// predecessor, every If and Call vertex itself, the target of a
// call-to-return edge, both successors of an If, the While header and both
// its successors, and exit. A straight-line run of Assignment/Havoc
// instructions between consecutive leaders is packaged as a single
// Sequence instruction, so an If or Call always stands as its own block.
//
// Exit is a marker with no instruction of its own. Entry's own instruction
// (normally the Goto into the body) is carried over unchanged, and the
// module's actual entry point — Entry's sole intraprocedural successor — is
// additionally seeded as a leader so the first real statement starts its
// own block.
package block

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/ir"
)

// Form returns a new module with every straight-line run collapsed into a
// Sequence, built from c's already-derived edges.
func Form(c *cfg.CFG) *ir.Module {
	leaders := findLeaders(c)
	out := c.Module.Clone()
	out.Instructions = make(map[ir.Label]ir.Instruction)

	for label := range c.Vertices {
		v, _ := c.GetVertex(label)
		if v.Type == cfg.Entry || v.Type == cfg.Exit {
			if v.Type == cfg.Entry && v.Instr != nil {
				out.Instructions[label] = v.Instr // keeps the edge out of Entry
			}
			continue // otherwise carried over structurally by the caller's cfg.Build
		}
		if !leaders[label] {
			continue // absorbed into a predecessor leader's Sequence
		}
		out.Instructions[label] = formOne(c, label, leaders)
	}
	return out
}

func findLeaders(c *cfg.CFG) map[ir.Label]bool {
	leaders := map[ir.Label]bool{}
	for label, v := range c.Vertices {
		switch v.Type {
		case cfg.Entry:
			if e, ok := c.IntraproceduralEdge(label); ok {
				leaders[e.To] = true
			}
		case cfg.Exit:
			leaders[label] = true
		}
		if len(c.IncomingEdges(label)) > 1 {
			leaders[label] = true
		}
		switch instr := v.Instr.(type) {
		case *ir.If:
			leaders[label] = true
			leaders[instr.ThenGoto] = true
			leaders[instr.ElseGoto] = true
		case *ir.While:
			leaders[label] = true
			leaders[instr.BodyEntry] = true
			leaders[instr.ExitGoto] = true
		case *ir.Call:
			leaders[label] = true
			leaders[instr.IntraGoto] = true
		}
	}
	return leaders
}

// formOne builds the instruction to store at leader label: either the
// label's own branch/call/leaf instruction unchanged, or a Sequence
// covering the straight-line run up to (but not including) the next
// leader.
func formOne(c *cfg.CFG, label ir.Label, leaders map[ir.Label]bool) ir.Instruction {
	var list []ir.Instruction
	cur := label
	for {
		v, ok := c.GetVertex(cur)
		if !ok {
			break
		}
		switch instr := v.Instr.(type) {
		case *ir.Assignment:
			list = append(list, instr)
			if leaders[instr.Next] {
				return finish(list, instr.Next)
			}
			cur = instr.Next
		case *ir.Havoc:
			list = append(list, instr)
			if leaders[instr.Next] {
				return finish(list, instr.Next)
			}
			cur = instr.Next
		case *ir.Goto:
			return finish(list, instr.Target)
		default:
			if len(list) == 0 {
				return instr // If/While/Call/Sequence/nil kept as this leader's own instruction
			}
			return finish(list, label)
		}
	}
	return finish(list, cur)
}

func finish(list []ir.Instruction, next ir.Label) ir.Instruction {
	if len(list) == 0 {
		return &ir.Goto{Target: next}
	}
	return &ir.Sequence{List: list, Next: next}
}
