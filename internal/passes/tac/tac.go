// Package tac implements the three-address conversion pass (spec.md §4.2,
// SPEC_FULL.md C3): every strict sub-expression that is a BinaryExpr or
// UnaryExpr is hoisted to a fresh temp_k assignment, and a compound If/While
// guard is hoisted to a temp of its own. The pass is pure: it clones its
// input module and returns a new one, the same "transform in, fresh value
// out" shape as the teacher's elaborate.Elaborator.Elaborate.
package tac

import (
	"strconv"

	"github.com/sunholo/ahorn/internal/ir"
)

// Pass carries the fresh-name/fresh-label counters a single Lower call
// needs; a new Pass must be built per module the way the teacher builds a
// fresh elaborate.Elaborator per compilation unit.
type Pass struct {
	nextTemp  int
	nextLabel ir.Label
}

// Lower returns a new module where every Assignment/If/While's compound
// sub-expressions have been hoisted to temporaries. Havoc and Call
// instructions are preserved verbatim (spec.md §4.2).
func Lower(m *ir.Module) *ir.Module {
	out := m.Clone()
	p := &Pass{nextLabel: out.MaxLabel() + 1}

	// Snapshot original labels/instructions before mutating the map, since
	// splicing allocates and writes new labels into it as we go.
	type entry struct {
		label ir.Label
		instr ir.Instruction
	}
	var entries []entry
	for l, i := range out.Instructions {
		entries = append(entries, entry{l, i})
	}

	for _, e := range entries {
		switch instr := e.instr.(type) {
		case *ir.Assignment:
			var temps []*ir.Assignment
			rhs := p.lowerTop(instr.Rhs, &temps)
			p.registerTemps(out, temps)
			final := &ir.Assignment{Target: instr.Target, Rhs: rhs, Kind: instr.Kind, Next: instr.Next}
			p.splice(out, e.label, temps, final)

		case *ir.If:
			var temps []*ir.Assignment
			cond := p.lowerGuard(instr.Cond, &temps)
			p.registerTemps(out, temps)
			final := &ir.If{Cond: cond, ThenGoto: instr.ThenGoto, ElseGoto: instr.ElseGoto}
			p.splice(out, e.label, temps, final)

		case *ir.While:
			var temps []*ir.Assignment
			cond := p.lowerGuard(instr.Cond, &temps)
			p.registerTemps(out, temps)
			final := &ir.While{Cond: cond, BodyEntry: instr.BodyEntry, ExitGoto: instr.ExitGoto}
			p.splice(out, e.label, temps, final)

		default:
			// Havoc, Call, Goto, Sequence: preserved verbatim.
		}
	}
	return out
}

// splice rewrites label's instruction into the chain temps[0] -> temps[1]
// -> ... -> final, reusing label for the first element so every existing
// incoming edge to label still lands on the start of the chain.
func (p *Pass) splice(m *ir.Module, label ir.Label, temps []*ir.Assignment, final ir.Instruction) {
	if len(temps) == 0 {
		m.Instructions[label] = final
		return
	}
	cur := label
	for _, t := range temps {
		next := p.freshLabel()
		t.Next = next
		m.Instructions[cur] = t
		cur = next
	}
	m.Instructions[cur] = final
}

func (p *Pass) freshLabel() ir.Label {
	l := p.nextLabel
	p.nextLabel++
	return l
}

func (p *Pass) freshTemp() string {
	p.nextTemp++
	return "temp_" + strconv.Itoa(p.nextTemp)
}

// registerTemps declares each hoisted temporary in m's interface: type
// Arithmetic -> INT, Boolean -> BOOL (spec.md §4.2), storage Temporary.
func (p *Pass) registerTemps(m *ir.Module, temps []*ir.Assignment) {
	for _, t := range temps {
		elem := ir.Int
		if t.Rhs.Type() == ir.Boolean {
			elem = ir.Bool
		}
		m.Iface.Add(&ir.Variable{Name: t.Target.Name, Type: ir.Elem(elem), Storage: ir.Temporary})
	}
}

// lowerTop lowers e's children (not e itself) — the top level of an
// Assignment's RHS is allowed to remain a compound BinaryExpr/UnaryExpr.
func (p *Pass) lowerTop(e ir.Expr, temps *[]*ir.Assignment) ir.Expr {
	return p.lowerChildren(e, temps)
}

// lowerGuard lowers e and then hoists it if it is itself compound: an
// If/While guard must never be a bare BinaryExpr/UnaryExpr (spec.md §4.2).
func (p *Pass) lowerGuard(e ir.Expr, temps *[]*ir.Assignment) ir.Expr {
	return p.hoistIfCompound(p.lowerChildren(e, temps), temps)
}

// lowerOperand is lowerGuard's sibling for any sub-expression position:
// lower recursively, then hoist if what results is still compound.
func (p *Pass) lowerOperand(e ir.Expr, temps *[]*ir.Assignment) ir.Expr {
	return p.hoistIfCompound(p.lowerChildren(e, temps), temps)
}

func (p *Pass) hoistIfCompound(e ir.Expr, temps *[]*ir.Assignment) ir.Expr {
	switch e.(type) {
	case *ir.BinaryExpr, *ir.UnaryExpr:
		name := p.freshTemp()
		*temps = append(*temps, &ir.Assignment{Target: ir.VarRef{Name: name}, Rhs: e, Kind: ir.Regular})
		return &ir.VariableAccess{Name: name, Ty: e.Type()}
	default:
		return e
	}
}

// lowerChildren recurses into e's sub-expressions, hoisting any compound
// child, and rebuilds e around the (possibly-replaced) children. Leaf and
// non-recursive expression kinds are cloned unchanged.
func (p *Pass) lowerChildren(e ir.Expr, temps *[]*ir.Assignment) ir.Expr {
	switch x := e.(type) {
	case *ir.BinaryExpr:
		return &ir.BinaryExpr{Op: x.Op, L: p.lowerOperand(x.L, temps), R: p.lowerOperand(x.R, temps)}
	case *ir.UnaryExpr:
		return &ir.UnaryExpr{Op: x.Op, E: p.lowerOperand(x.E, temps)}
	case *ir.BooleanToIntegerCast:
		return &ir.BooleanToIntegerCast{E: p.lowerOperand(x.E, temps)}
	case *ir.IntegerToBooleanCast:
		return &ir.IntegerToBooleanCast{E: p.lowerOperand(x.E, temps)}
	case *ir.ChangeExpr:
		return &ir.ChangeExpr{Old: p.lowerOperand(x.Old, temps), New: p.lowerOperand(x.New, temps)}
	default:
		return e.Clone()
	}
}
