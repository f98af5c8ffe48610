// Package callxform implements the call-transformation pass (spec.md
// §4.2's "Call transformation", SPEC_FULL.md C3).
//
// This IR's Call instruction names a callee module directly and carries no
// argument list of its own (parameter passing is modeled as ordinary
// Assignment instructions of AssignKind ParameterIn/ParameterOut placed
// around the call site by an earlier stage, "preserved as-is" through TAC
// per spec.md §4.2). Given that, this pass's two jobs are:
//
//  1. Callee-side staging: every Input-storage field f of a FunctionBlock's
//     own interface gets a fresh f_input companion (also Input-storage); f
//     itself becomes Local. The callee's entry is given a move f := f_input
//     for each such field, so the field a caller's ParameterIn assignment
//     writes (f_input, which can never be confused with a whole-program
//     input since it is a field of a non-root module) is copied into the
//     name the callee body actually reads. Output fields are staged
//     symmetrically at exit.
//  2. Call-site splitting: the contiguous run of ParameterIn assignments
//     immediately preceding a Call (no intervening branch) is detached from
//     the straight-line chain and recorded as the Call's PreLabels; the
//     run of ParameterOut assignments immediately following is recorded as
//     PostLabels. This is the "splitting" spec.md's component table names.
package callxform

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/ir"
)

// StageCallee rewrites m in place: every Input field gets an f_input
// companion plus an entry-side move, every Output field an f_output
// companion plus an exit-side move. Call this once per FunctionBlock module
// before building its CFG.
func StageCallee(m *ir.Module) {
	if m.Kind != ir.FunctionBlockKind {
		return
	}
	next := m.MaxLabel() + 1

	var inputMoves, outputMoves []*ir.Variable
	for _, v := range m.Iface.Variables() {
		switch v.Storage {
		case ir.Input:
			inputMoves = append(inputMoves, v)
		case ir.Output:
			outputMoves = append(outputMoves, v)
		}
	}
	for _, v := range inputMoves {
		m.Iface.Add(&ir.Variable{Name: v.Name + "_input", Type: v.Type, Storage: ir.Input})
		v.Storage = ir.Local
	}
	for _, v := range outputMoves {
		m.Iface.Add(&ir.Variable{Name: v.Name + "_output", Type: v.Type, Storage: ir.Output})
		v.Storage = ir.Local
	}

	if len(inputMoves) > 0 {
		oldEntrySucc := m.Instructions[m.Entry]
		cur := m.Entry
		for i, v := range inputMoves {
			mv := &ir.Assignment{
				Target: ir.VarRef{Name: v.Name},
				Rhs:    &ir.VariableAccess{Name: v.Name + "_input", Ty: ir.ExprTypeOf(v.Type)},
				Kind:   ir.ParameterIn,
			}
			if i == len(inputMoves)-1 {
				mv.Next = next
			} else {
				mv.Next = next + ir.Label(i) + 1
			}
			m.Instructions[cur] = mv
			cur = mv.Next
		}
		m.Instructions[next] = oldEntrySucc
		next += ir.Label(len(inputMoves)) + 1
	}

	if len(outputMoves) > 0 {
		// Splice the output-staging chain between the module's last
		// instruction and its Exit vertex: redirect every edge that used to
		// target Exit directly to the first output move instead.
		oldExit := m.Exit
		first := next
		cur := first
		for i, v := range outputMoves {
			mv := &ir.Assignment{
				Target: ir.VarRef{Name: v.Name + "_output"},
				Rhs:    &ir.VariableAccess{Name: v.Name, Ty: ir.ExprTypeOf(v.Type)},
				Kind:   ir.ParameterOut,
			}
			if i == len(outputMoves)-1 {
				mv.Next = oldExit
			} else {
				mv.Next = first + ir.Label(i) + 1
			}
			m.Instructions[cur] = mv
			cur = mv.Next
		}
		redirectToExit(m, oldExit, first)
	}
}

// redirectToExit rewrites every instruction's successor label that pointed
// at oldExit to point at newTarget instead (except the newly-inserted
// output-move chain itself, whose own Next fields already point correctly).
func redirectToExit(m *ir.Module, oldExit, newTarget ir.Label) {
	for label, instr := range m.Instructions {
		if label >= newTarget {
			continue // the output-move chain and the exit vertex itself
		}
		switch ins := instr.(type) {
		case *ir.Assignment:
			if ins.Next == oldExit {
				ins.Next = newTarget
			}
		case *ir.Havoc:
			if ins.Next == oldExit {
				ins.Next = newTarget
			}
		case *ir.Goto:
			if ins.Target == oldExit {
				ins.Target = newTarget
			}
		case *ir.If:
			if ins.ThenGoto == oldExit {
				ins.ThenGoto = newTarget
			}
			if ins.ElseGoto == oldExit {
				ins.ElseGoto = newTarget
			}
		case *ir.While:
			if ins.ExitGoto == oldExit {
				ins.ExitGoto = newTarget
			}
		}
	}
}

// SplitCallSites walks every Call vertex in c and records the contiguous
// run of ParameterIn assignments reaching it (and ParameterOut assignments
// leaving it) as PreLabels/PostLabels, matching spec.md §4.2's call-site
// splitting. c must already be built (edges derived) before this runs.
func SplitCallSites(c *cfg.CFG) {
	for label, v := range c.Vertices {
		call, ok := v.Instr.(*ir.Call)
		if !ok {
			continue
		}
		call.PreLabels = collectRun(c, label, ir.ParameterIn, predecessorOf)
		call.PostLabels = collectRun(c, label, ir.ParameterOut, successorOf)
	}
}

type neighborFn func(c *cfg.CFG, label ir.Label) (ir.Label, bool)

func predecessorOf(c *cfg.CFG, label ir.Label) (ir.Label, bool) {
	in := c.IncomingEdges(label)
	if len(in) != 1 {
		return 0, false
	}
	return in[0].From, true
}

func successorOf(c *cfg.CFG, label ir.Label) (ir.Label, bool) {
	out := c.OutgoingEdges(label)
	if len(out) != 1 {
		return 0, false
	}
	return out[0].To, true
}

// collectRun walks from start via next, gathering every label whose
// instruction is an Assignment of kind, stopping at the first label that
// either has more than one such edge or whose instruction is not a
// matching Assignment (a single-predecessor/successor boundary is exactly
// how basic-block formation later treats these instructions, so this run
// can never cross a block leader).
func collectRun(c *cfg.CFG, start ir.Label, kind ir.AssignKind, next neighborFn) []ir.Label {
	var run []ir.Label
	cur := start
	for {
		nb, ok := next(c, cur)
		if !ok {
			break
		}
		v, ok := c.GetVertex(nb)
		if !ok {
			break
		}
		a, ok := v.Instr.(*ir.Assignment)
		if !ok || a.Kind != kind {
			break
		}
		run = append(run, nb)
		cur = nb
	}
	return run
}
