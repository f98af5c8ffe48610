package ssa

import (
	"testing"

	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/ir"
)

// buildJoin builds spec.md §8 scenario S6: IF c THEN x := 1 ELSE x := 1
// END_IF; y := x, already in block-formed shape (one instruction per
// leader, as internal/passes/block would produce).
func buildJoin(t *testing.T, armValue int64) *cfg.CFG {
	t.Helper()
	m := ir.NewModule(ir.ProgramKind, "Join")
	m.Entry, m.Exit = 0, 5
	m.Iface.Add(&ir.Variable{Name: "c", Type: ir.Elem(ir.Bool), Storage: ir.Input})
	m.Iface.Add(&ir.Variable{Name: "x", Type: ir.Elem(ir.Int), Storage: ir.Local})
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Output})

	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.If{Cond: &ir.VariableAccess{Name: "c", Ty: ir.Boolean}, ThenGoto: 2, ElseGoto: 3}
	m.Instructions[2] = &ir.Sequence{
		List: []ir.Instruction{&ir.Assignment{Target: ir.VarRef{Name: "x"}, Rhs: &ir.IntegerConst{Value: 1}}},
		Next: 4,
	}
	m.Instructions[3] = &ir.Sequence{
		List: []ir.Instruction{&ir.Assignment{Target: ir.VarRef{Name: "x"}, Rhs: &ir.IntegerConst{Value: armValue}}},
		Next: 4,
	}
	m.Instructions[4] = &ir.Sequence{
		List: []ir.Instruction{&ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.VariableAccess{Name: "x", Ty: ir.Arithmetic}}},
		Next: 5,
	}

	c, err := cfg.Build("Join", m)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestBuildElidesTrivialPhiWhenBranchesAgree(t *testing.T) {
	c := buildJoin(t, 1)
	out := Build(c)

	seq := out.Instructions[4].(*ir.Sequence)
	yAssign := seq.List[0].(*ir.Assignment)
	if _, isPhi := yAssign.Rhs.(*ir.Phi); isPhi {
		t.Fatalf("y's rhs is a Phi, want the unified single definition of x eliminated per spec.md S6: %v", yAssign.Rhs)
	}
	if _, isVar := yAssign.Rhs.(*ir.VariableAccess); !isVar {
		t.Fatalf("y's rhs = %#v, want a plain VariableAccess to the unified x definition", yAssign.Rhs)
	}
}

func TestBuildKeepsPhiWhenBranchesDisagree(t *testing.T) {
	c := buildJoin(t, 2)
	out := Build(c)

	seq := out.Instructions[4].(*ir.Sequence)
	yAssign := seq.List[0].(*ir.Assignment)
	if _, isPhi := yAssign.Rhs.(*ir.Phi); !isPhi {
		t.Fatalf("y's rhs = %#v, want a genuine Phi since the two arms disagree", yAssign.Rhs)
	}
}
