// Package ssa implements the on-demand, Braun-style SSA construction pass
// (spec.md §4.2, SPEC_FULL.md C3): readVariable/writeVariable over
// filled/sealed basic blocks, with trivial-phi elimination. It runs after
// internal/passes/block has collapsed the CFG to one instruction per
// leader; every VariableAccess the block-formed module reads is rewritten
// to name a specific static definition (a fresh SSA-versioned name or a
// ir.Phi), and every Assignment target becomes a fresh SSA name.
//
// This pass's static renaming is a different concern from
// internal/concolic's contextual-name versioning: this one renames a
// plain variable to its reaching compile-time definition inside a single
// cycle's control-flow graph, while concolic's <name>_<version>__<cycle>
// scheme tracks the dynamic write history of one flattened name across an
// execution. A CFG built from this pass's output happens to also satisfy
// "one static definition per name," which is the sense in which the
// overall IR is SSA (spec.md §3.1).
package ssa

import (
	"fmt"

	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/ir"
)

// Builder holds the per-pass state Braun's algorithm threads through
// readVariable/writeVariable: the current reaching definition of each
// variable in each block, which blocks are filled/sealed, and the
// operand-less phis recorded for blocks read before they were sealed.
type Builder struct {
	c              *cfg.CFG
	currentDef     map[string]map[ir.Label]ir.Expr
	sealed         map[ir.Label]bool
	filled         map[ir.Label]bool
	incompletePhis map[ir.Label]map[string]*phiEntry
	phiCount       int
	verCount       map[string]int
	rhsOf          map[string]ir.Expr
}

// phiEntry pairs a Phi node with the block it lives in, since *ir.Phi
// itself carries no back-pointer to its owning block.
type phiEntry struct {
	block ir.Label
	node  *ir.Phi
}

func newBuilder(c *cfg.CFG) *Builder {
	return &Builder{
		c:              c,
		currentDef:     map[string]map[ir.Label]ir.Expr{},
		sealed:         map[ir.Label]bool{},
		filled:         map[ir.Label]bool{},
		incompletePhis: map[ir.Label]map[string]*phiEntry{},
		verCount:       map[string]int{},
		rhsOf:          map[string]ir.Expr{},
	}
}

// Build rewrites c's module into SSA form. c must already be the result of
// internal/passes/block.Form (re-built into a CFG so predecessor/successor
// queries work over the reduced vertex set).
func Build(c *cfg.CFG) *ir.Module {
	b := newBuilder(c)
	order := b.visitOrder()

	out := c.Module.Clone()
	out.Instructions = make(map[ir.Label]ir.Instruction, len(c.Module.Instructions))

	// Entry's own instruction (its jump into the body) is copied without
	// rewriting; treat Entry as filled from the start so a block whose sole
	// predecessor is Entry can seal as soon as it is itself processed.
	for label, v := range c.Vertices {
		if v.Type == cfg.Entry {
			if v.Instr != nil {
				out.Instructions[label] = v.Instr.Clone()
			}
			b.filled[label] = true
			b.sealed[label] = true
		}
	}

	for _, label := range order {
		v, ok := c.GetVertex(label)
		if !ok || v.Type == cfg.Entry || v.Type == cfg.Exit {
			continue
		}
		// Seal now if every predecessor already known to the static CFG
		// has already been filled — this lets a block whose predecessors
		// all precede it in visit order (everything but a loop header
		// reached before its body) read variables without going through
		// the operand-less-phi-then-complete-later path at all.
		b.trySeal(label)
		out.Instructions[label] = b.rewrite(label, v.Instr, out)
		b.filled[label] = true
		b.trySeal(label)
	}
	// A block may still be unsealed here only if it is never reachable
	// from entry (dead code); seal it now so any phi recorded against it
	// degenerates cleanly rather than staying permanently incomplete.
	for label := range c.Vertices {
		b.trySeal(label)
	}
	return out
}

// visitOrder is a breadth-first traversal from entry, which for the
// reducible CFGs this engine requires (spec.md §3.4) reaches every loop
// header before its body and every merge point after at least one of its
// predecessors, which is exactly the order Braun's algorithm needs to seal
// blocks as it goes.
func (b *Builder) visitOrder() []ir.Label {
	start, ok := b.entrySuccessor()
	if !ok {
		return nil
	}
	var order []ir.Label
	seen := map[ir.Label]bool{}
	queue := []ir.Label{start}
	for len(queue) > 0 {
		l := queue[0]
		queue = queue[1:]
		if seen[l] {
			continue
		}
		seen[l] = true
		if v, ok := b.c.GetVertex(l); !ok || v.Type == cfg.Exit {
			continue
		}
		order = append(order, l)
		for _, e := range b.c.OutgoingEdges(l) {
			if !seen[e.To] {
				queue = append(queue, e.To)
			}
		}
	}
	return order
}

func (b *Builder) entrySuccessor() (ir.Label, bool) {
	for label, v := range b.c.Vertices {
		if v.Type == cfg.Entry {
			if e, ok := b.c.IntraproceduralEdge(label); ok {
				return e.To, true
			}
		}
	}
	return 0, false
}

func (b *Builder) predecessors(block ir.Label) []ir.Label {
	var preds []ir.Label
	for _, e := range b.c.IncomingEdges(block) {
		preds = append(preds, e.From)
	}
	return preds
}

// trySeal seals block once every predecessor has been filled, then
// completes any phi recorded against it while it was still unsealed.
func (b *Builder) trySeal(block ir.Label) {
	if b.sealed[block] {
		return
	}
	for _, p := range b.predecessors(block) {
		if !b.filled[p] {
			return
		}
	}
	b.sealed[block] = true
	for name, pe := range b.incompletePhis[block] {
		b.addPhiOperands(name, pe)
	}
	delete(b.incompletePhis, block)
}

func (b *Builder) freshName(base string) string {
	b.verCount[base]++
	return fmt.Sprintf("%s__ssa%d", base, b.verCount[base])
}

func (b *Builder) writeVariable(name string, block ir.Label, value ir.Expr) {
	if b.currentDef[name] == nil {
		b.currentDef[name] = map[ir.Label]ir.Expr{}
	}
	b.currentDef[name][block] = value
}

// readVariable implements spec.md §4.2's algorithm: a local definition
// wins outright; an unsealed block gets an operand-less phi placeholder
// recorded for later completion; a sealed single-predecessor block
// forwards the read; a sealed multi-predecessor block gets a phi whose
// operands are filled in immediately.
func (b *Builder) readVariable(name string, block ir.Label) ir.Expr {
	if def, ok := b.currentDef[name][block]; ok {
		return def
	}
	var val ir.Expr
	if !b.sealed[block] {
		node := &ir.Phi{Target: b.freshName(name), Operands: map[int]ir.Expr{}, Ty: ir.UndefinedType}
		if b.incompletePhis[block] == nil {
			b.incompletePhis[block] = map[string]*phiEntry{}
		}
		b.incompletePhis[block][name] = &phiEntry{block: block, node: node}
		val = node
	} else {
		preds := b.predecessors(block)
		switch {
		case len(preds) == 1:
			val = b.readVariable(name, preds[0])
		case len(preds) == 0:
			// No predecessor defines this name anywhere on the path from
			// entry: it is read here as whatever the interface declares
			// it (an Input/Output/Local's initial value), not a phi over
			// zero operands.
			var ty ir.ExprType
			if v, ok := b.c.Module.Iface.Lookup(name); ok {
				ty = ir.ExprTypeOf(v.Type)
			}
			val = &ir.VariableAccess{Name: name, Ty: ty}
		default:
			node := &ir.Phi{Target: b.freshName(name), Operands: map[int]ir.Expr{}, Ty: ir.UndefinedType}
			b.writeVariable(name, block, node) // break cycles through loop headers before recursing into predecessors
			val = b.addPhiOperands(name, &phiEntry{block: block, node: node})
		}
	}
	b.writeVariable(name, block, val)
	return val
}

// addPhiOperands fills pe's operand map from every predecessor of its
// block, infers its type from the first resolved operand, and applies
// trivial-phi elimination.
func (b *Builder) addPhiOperands(name string, pe *phiEntry) ir.Expr {
	for _, pred := range b.predecessors(pe.block) {
		op := b.readVariable(name, pred)
		pe.node.Operands[int(pred)] = op
		if pe.node.Ty == ir.UndefinedType {
			pe.node.Ty = op.Type()
		}
	}
	return b.tryRemoveTrivialPhi(pe.node)
}

// tryRemoveTrivialPhi implements spec.md §4.2's "a phi with exactly one
// distinct non-self operand is replaced by that operand." Rewriting every
// existing user is approximated here by updating this block's own
// currentDef entry (done by the caller, readVariable/addPhiOperands); a
// phi already handed out to an earlier reader as a *ir.Phi value keeps
// that shape, since this pass makes a single forward sweep and never
// revisits already-rewritten instructions.
func (b *Builder) tryRemoveTrivialPhi(node *ir.Phi) ir.Expr {
	var same ir.Expr
	for _, op := range node.Operands {
		if op == ir.Expr(node) {
			continue // self-reference through a loop back-edge
		}
		if same != nil && !b.operandsEquivalent(same, op) {
			return node // more than one distinct operand: genuinely non-trivial
		}
		same = op
	}
	if same == nil {
		return &ir.Undefined{}
	}
	return same
}

// operandsEquivalent decides whether two phi operands count as "the same"
// reaching definition for trivial-phi elimination (spec.md §8's S6: two
// branches that independently compute the same literal value must not
// force a phi). A name match is the common case (the same SSA definition
// reached through two paths); failing that, each VariableAccess operand is
// traced back to the RHS expression its SSA temporary was defined from,
// and those are compared structurally via String() — a value-numbering
// approximation, not full equivalence, but enough to recognize "both
// branches assign the literal 1" without a separate CSE pass.
func (b *Builder) operandsEquivalent(a, e ir.Expr) bool {
	an, aok := nameOf(a)
	en, eok := nameOf(e)
	if aok && eok {
		if an == en {
			return true
		}
		ar, arok := b.rhsOf[an]
		er, erok := b.rhsOf[en]
		if arok && erok {
			return ar.String() == er.String()
		}
		return false
	}
	return a == e
}

func nameOf(e ir.Expr) (string, bool) {
	switch x := e.(type) {
	case *ir.VariableAccess:
		return x.Name, true
	case *ir.Phi:
		return x.Target, true
	default:
		return "", false
	}
}

// rewrite rewrites instr in place for block label, threading reads through
// readVariable and giving every write a fresh SSA name recorded via
// writeVariable. out accumulates the fresh temporaries rewrite declares.
func (b *Builder) rewrite(label ir.Label, instr ir.Instruction, out *ir.Module) ir.Instruction {
	switch in := instr.(type) {
	case *ir.Sequence:
		list := make([]ir.Instruction, len(in.List))
		for i, sub := range in.List {
			list[i] = b.rewriteStraightLine(label, sub, out)
		}
		return &ir.Sequence{List: list, Next: in.Next}
	case *ir.Assignment:
		return b.rewriteStraightLine(label, in, out)
	case *ir.Havoc:
		return b.rewriteStraightLine(label, in, out)
	case *ir.If:
		return &ir.If{Cond: b.rewriteExpr(in.Cond, label), ThenGoto: in.ThenGoto, ElseGoto: in.ElseGoto}
	case *ir.While:
		return &ir.While{Cond: b.rewriteExpr(in.Cond, label), BodyEntry: in.BodyEntry, ExitGoto: in.ExitGoto}
	default:
		return instr
	}
}

func (b *Builder) rewriteStraightLine(label ir.Label, instr ir.Instruction, out *ir.Module) ir.Instruction {
	switch in := instr.(type) {
	case *ir.Assignment:
		rhs := b.rewriteExpr(in.Rhs, label)
		fresh := b.freshName(in.Target.Name)
		b.rhsOf[fresh] = rhs
		b.writeVariable(in.Target.Name, label, &ir.VariableAccess{Name: fresh, Ty: rhs.Type()})
		if orig, ok := out.Iface.Lookup(in.Target.Name); ok {
			out.Iface.Add(&ir.Variable{Name: fresh, Type: orig.Type, Storage: ir.Temporary})
		}
		return &ir.Assignment{Target: ir.VarRef{Name: fresh}, Rhs: rhs, Kind: in.Kind, Next: in.Next}
	case *ir.Havoc:
		fresh := b.freshName(in.Target.Name)
		var ty ir.DataType
		if orig, ok := out.Iface.Lookup(in.Target.Name); ok {
			ty = orig.Type
		}
		b.writeVariable(in.Target.Name, label, &ir.VariableAccess{Name: fresh, Ty: ir.ExprTypeOf(ty)})
		out.Iface.Add(&ir.Variable{Name: fresh, Type: ty, Storage: ir.Temporary})
		return &ir.Havoc{Target: ir.VarRef{Name: fresh}, Next: in.Next}
	default:
		return instr
	}
}

func (b *Builder) rewriteExpr(e ir.Expr, block ir.Label) ir.Expr {
	switch x := e.(type) {
	case *ir.VariableAccess:
		return b.readVariable(x.Name, block)
	case *ir.BinaryExpr:
		return &ir.BinaryExpr{Op: x.Op, L: b.rewriteExpr(x.L, block), R: b.rewriteExpr(x.R, block)}
	case *ir.UnaryExpr:
		return &ir.UnaryExpr{Op: x.Op, E: b.rewriteExpr(x.E, block)}
	case *ir.BooleanToIntegerCast:
		return &ir.BooleanToIntegerCast{E: b.rewriteExpr(x.E, block)}
	case *ir.IntegerToBooleanCast:
		return &ir.IntegerToBooleanCast{E: b.rewriteExpr(x.E, block)}
	case *ir.ChangeExpr:
		return &ir.ChangeExpr{Old: b.rewriteExpr(x.Old, block), New: b.rewriteExpr(x.New, block)}
	default:
		return e.Clone()
	}
}
