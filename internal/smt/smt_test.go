package smt

import (
	"testing"

	"github.com/sunholo/ahorn/internal/ir"
)

func TestCheckSimpleComparisonIsSat(t *testing.T) {
	f := NewFacade()
	x := f.MakeConstant("x_0__0", ir.Arithmetic)
	formula := f.Bin(ir.Gt, x, f.MakeIntegerValue(10))

	res, err := f.Check([]*Term{formula})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != Sat {
		t.Fatalf("Check = %v, want SAT", res.Kind)
	}
	if res.Model["x_0__0"].AsInt() <= 10 {
		t.Errorf("witness x = %v does not satisfy x > 10", res.Model["x_0__0"])
	}
}

func TestCheckContradictionIsUnsat(t *testing.T) {
	f := NewFacade()
	x := f.MakeConstant("x_0__0", ir.Arithmetic)
	gt := f.Bin(ir.Gt, x, f.MakeIntegerValue(10))
	lt := f.Bin(ir.Lt, x, f.MakeIntegerValue(5))

	res, err := f.Check([]*Term{gt, lt})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != Unsat {
		t.Fatalf("Check = %v, want UNSAT", res.Kind)
	}
}

func TestCheckUnderAssumptionsConjoinsBoth(t *testing.T) {
	f := NewFacade()
	b := f.MakeConstant("b_0__0", ir.Boolean)
	res, err := f.CheckUnderAssumptions([]*Term{b}, []*Term{f.Not(b)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Kind != Unsat {
		t.Fatalf("Check = %v, want UNSAT (b AND NOT b)", res.Kind)
	}
}

func TestUninterpretedConstantsDedupesAndOrders(t *testing.T) {
	f := NewFacade()
	x := f.MakeConstant("x_0__0", ir.Arithmetic)
	y := f.MakeConstant("y_0__0", ir.Arithmetic)
	formula := f.Bin(ir.And, f.Bin(ir.Gt, x, y), f.Bin(ir.Lt, x, f.MakeIntegerValue(100)))

	names := f.UninterpretedConstants(formula)
	if len(names) != 2 || names[0] != "x_0__0" || names[1] != "y_0__0" {
		t.Fatalf("UninterpretedConstants = %v", names)
	}
}

func TestMakeValueRejectsNonLiteral(t *testing.T) {
	f := NewFacade()
	if _, err := f.MakeValue(&ir.VariableAccess{Name: "x", Ty: ir.Arithmetic}); err == nil {
		t.Fatal("expected error for non-literal expression")
	}
}

func TestMakeRandomValueUsesSource(t *testing.T) {
	f := NewFacade()
	term := f.MakeRandomValue(ir.Boolean, fixedSource{b: true, i: 7})
	if term.Kind != BoolLit || !term.B {
		t.Errorf("MakeRandomValue(Boolean) = %v, want literal true", term)
	}
	term = f.MakeRandomValue(ir.Arithmetic, fixedSource{b: true, i: 7})
	if term.Kind != IntLit || term.I != 7 {
		t.Errorf("MakeRandomValue(Arithmetic) = %v, want literal 7", term)
	}
}

type fixedSource struct {
	b bool
	i int64
}

func (f fixedSource) Bool() bool { return f.b }
func (f fixedSource) Int() int64 { return f.i }
