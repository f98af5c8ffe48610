package tac

import (
	"testing"

	"github.com/sunholo/ahorn/internal/ir"
)

func TestLowerHoistsNestedBinaryOperand(t *testing.T) {
	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 2
	m.Iface.Add(&ir.Variable{Name: "a", Type: ir.Elem(ir.Int), Storage: ir.Input})
	m.Iface.Add(&ir.Variable{Name: "b", Type: ir.Elem(ir.Int), Storage: ir.Input})
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Output})

	// y := (a + b) * 2 -- the (a+b) operand is a strict sub-expression and
	// must be hoisted; the top-level Mul may stay inline.
	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.Assignment{
		Target: ir.VarRef{Name: "y"},
		Rhs: &ir.BinaryExpr{
			Op: ir.Mul,
			L: &ir.BinaryExpr{Op: ir.Add,
				L: &ir.VariableAccess{Name: "a", Ty: ir.Arithmetic},
				R: &ir.VariableAccess{Name: "b", Ty: ir.Arithmetic}},
			R: &ir.IntegerConst{Value: 2},
		},
		Next: 2,
	}

	out := Lower(m)

	assign, ok := out.Instructions[1].(*ir.Assignment)
	if !ok {
		t.Fatalf("label 1 rewritten to a non-Assignment kind after hoisting: %T", out.Instructions[1])
	}
	if assign.Target.Name != "temp_1" {
		t.Fatalf("first hoisted temp = %q, want temp_1", assign.Target.Name)
	}
	sum, ok := assign.Rhs.(*ir.BinaryExpr)
	if !ok || sum.Op != ir.Add {
		t.Fatalf("temp_1's rhs = %v, want the hoisted a+b", assign.Rhs)
	}

	final, ok := out.Instructions[assign.Next].(*ir.Assignment)
	if !ok {
		t.Fatalf("chain does not end in the rewritten y-assignment")
	}
	mul, ok := final.Rhs.(*ir.BinaryExpr)
	if !ok || mul.Op != ir.Mul {
		t.Fatalf("final rhs = %v, want the top-level Mul kept inline", final.Rhs)
	}
	if va, ok := mul.L.(*ir.VariableAccess); !ok || va.Name != "temp_1" {
		t.Errorf("Mul's left operand = %v, want a reference to temp_1", mul.L)
	}

	if _, ok := out.Iface.Lookup("temp_1"); !ok {
		t.Error("temp_1 not declared in the lowered module's interface")
	}
}

func TestLowerHoistsCompoundGuard(t *testing.T) {
	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 3
	m.Iface.Add(&ir.Variable{Name: "x", Type: ir.Elem(ir.Bool), Storage: ir.Input})
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Bool), Storage: ir.Input})
	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.If{
		Cond: &ir.BinaryExpr{Op: ir.And,
			L: &ir.VariableAccess{Name: "x", Ty: ir.Boolean},
			R: &ir.VariableAccess{Name: "y", Ty: ir.Boolean}},
		ThenGoto: 2, ElseGoto: 3,
	}
	m.Instructions[2] = &ir.Goto{Target: 3}

	out := Lower(m)

	head, ok := out.Instructions[1].(*ir.Assignment)
	if !ok {
		t.Fatalf("label 1 = %T, want the hoisted guard assignment", out.Instructions[1])
	}
	ifInstr, ok := out.Instructions[head.Next].(*ir.If)
	if !ok {
		t.Fatalf("chain does not end in an If")
	}
	va, ok := ifInstr.Cond.(*ir.VariableAccess)
	if !ok || va.Name != head.Target.Name {
		t.Errorf("If.Cond = %v, want a reference to the hoisted guard temp", ifInstr.Cond)
	}
}
