package block

import (
	"testing"

	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/ir"
)

// buildS1 mirrors executor's spec.md §8 scenario S1 fixture: a straight
// two-instruction run from entry into an If with two one-instruction arms
// that both rejoin at a shared Goto before exit.
func buildS1(t *testing.T) *cfg.CFG {
	t.Helper()
	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 5
	m.Iface.Add(&ir.Variable{Name: "x", Type: ir.Elem(ir.Bool), Storage: ir.Input})
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Output})

	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.If{Cond: &ir.VariableAccess{Name: "x", Ty: ir.Boolean}, ThenGoto: 2, ElseGoto: 3}
	m.Instructions[2] = &ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.IntegerConst{Value: 1}, Next: 4}
	m.Instructions[3] = &ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.IntegerConst{Value: 2}, Next: 4}
	m.Instructions[4] = &ir.Goto{Target: 5}

	c, err := cfg.Build("Main", m)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFormKeepsIfAsItsOwnLeaderBlock(t *testing.T) {
	c := buildS1(t)
	out := Form(c)

	ifInstr, ok := out.Instructions[1].(*ir.If)
	if !ok {
		t.Fatalf("label 1 = %T, want the If kept as a singleton block", out.Instructions[1])
	}
	if ifInstr.ThenGoto != 2 || ifInstr.ElseGoto != 3 {
		t.Errorf("If arms = %d/%d, want 2/3", ifInstr.ThenGoto, ifInstr.ElseGoto)
	}

	for _, arm := range []ir.Label{2, 3} {
		instr, ok := out.Instructions[arm]
		if !ok {
			t.Fatalf("arm %d missing from formed module", arm)
		}
		seq, ok := instr.(*ir.Sequence)
		if !ok || len(seq.List) != 1 {
			t.Fatalf("arm %d = %#v, want a single-instruction Sequence", arm, instr)
		}
		if seq.Next != 4 {
			t.Errorf("arm %d falls through to %d, want 4", arm, seq.Next)
		}
	}

	// Label 4 has two predecessors (both arms), so it is its own leader and
	// should collapse the trailing Goto into a direct jump to Exit.
	g, ok := out.Instructions[4].(*ir.Goto)
	if !ok || g.Target != 5 {
		t.Errorf("label 4 = %+v, want Goto{5}", out.Instructions[4])
	}
}

func TestFormMergesStraightLineRun(t *testing.T) {
	m := ir.NewModule(ir.ProgramKind, "Lin")
	m.Entry, m.Exit = 0, 4
	m.Iface.Add(&ir.Variable{Name: "a", Type: ir.Elem(ir.Int), Storage: ir.Local})
	m.Iface.Add(&ir.Variable{Name: "b", Type: ir.Elem(ir.Int), Storage: ir.Local})
	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.Assignment{Target: ir.VarRef{Name: "a"}, Rhs: &ir.IntegerConst{Value: 1}, Next: 2}
	m.Instructions[2] = &ir.Assignment{Target: ir.VarRef{Name: "b"}, Rhs: &ir.IntegerConst{Value: 2}, Next: 3}
	m.Instructions[3] = &ir.Goto{Target: 4}

	c, err := cfg.Build("Lin", m)
	if err != nil {
		t.Fatal(err)
	}
	out := Form(c)

	seq, ok := out.Instructions[1].(*ir.Sequence)
	if !ok {
		t.Fatalf("label 1 = %T, want a merged Sequence", out.Instructions[1])
	}
	if len(seq.List) != 2 {
		t.Fatalf("sequence has %d instructions, want 2", len(seq.List))
	}
	if seq.Next != 4 {
		t.Errorf("sequence falls through to %d, want 4", seq.Next)
	}
}
