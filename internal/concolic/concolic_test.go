package concolic

import (
	"testing"

	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

type stubEnums struct{ tags map[string][]string }

func (s stubEnums) Tags(name string) ([]string, bool) {
	t, ok := s.tags[name]
	return t, ok
}

func bindInt(ctx *Context, name string, ver int, v int64) {
	cname := ContextualName(name, ver, ctx.Cycle)
	ctx.State.Bind(cname, smt.IntValue(v), smt.NewFacade().MakeIntegerValue(v))
}

func TestFlattenedNameScoping(t *testing.T) {
	if got := FlattenedName("", "x"); got != "x" {
		t.Errorf("FlattenedName(\"\", x) = %q", got)
	}
	if got := FlattenedName("f", "i"); got != "f.i" {
		t.Errorf("FlattenedName(f, i) = %q", got)
	}
}

func TestBumpVersionKeepsLocalAndGlobalEqual(t *testing.T) {
	ctx := NewRootContext("Main")
	v1 := ctx.BumpVersion("x")
	if v1 != 1 {
		t.Fatalf("BumpVersion = %d, want 1", v1)
	}
	if err := ctx.CheckVersionsAgree(); err != nil {
		t.Fatalf("CheckVersionsAgree: %v", err)
	}
}

func TestCheckVersionsAgreeCatchesMismatch(t *testing.T) {
	ctx := NewRootContext("Main")
	ctx.Global["x"] = 2
	ctx.State.LocalVers["x"] = 1
	if err := ctx.CheckVersionsAgree(); err == nil {
		t.Fatal("expected version mismatch error")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	ctx := NewRootContext("Main")
	bindInt(ctx, "x", 0, 5)
	clone := ctx.Clone()
	clone.BumpVersion("x")
	bindInt(clone, "x", 1, 6)

	if ctx.Version("x") != 0 {
		t.Errorf("parent version mutated by clone: %d", ctx.Version("x"))
	}
	v, _ := ctx.State.Concrete[ContextualName("x", 0, 0)]
	if v.AsInt() != 5 {
		t.Errorf("parent concrete store mutated by clone")
	}
}

func TestEncoderEncodesVariableAccess(t *testing.T) {
	ctx := NewRootContext("Main")
	bindInt(ctx, "x", 0, 7)
	enc := NewEncoder(stubEnums{})
	term, err := enc.Encode(ctx, &ir.VariableAccess{Name: "x", Ty: ir.Arithmetic})
	if err != nil {
		t.Fatal(err)
	}
	if term.Kind != smt.IntLit || term.I != 7 {
		t.Errorf("Encode(x) = %v, want literal 7", term)
	}
}

func TestEncoderBinaryExpr(t *testing.T) {
	ctx := NewRootContext("Main")
	bindInt(ctx, "x", 0, 3)
	enc := NewEncoder(stubEnums{})
	e := &ir.BinaryExpr{Op: ir.Gt, L: &ir.VariableAccess{Name: "x", Ty: ir.Arithmetic}, R: &ir.IntegerConst{Value: 10}}
	term, err := enc.Encode(ctx, e)
	if err != nil {
		t.Fatal(err)
	}
	if term.Kind != smt.BinTerm || term.Op != ir.Gt {
		t.Errorf("Encode(x > 10) = %v", term)
	}
}

func TestEncoderUndefinedVariableErrors(t *testing.T) {
	ctx := NewRootContext("Main")
	enc := NewEncoder(stubEnums{})
	if _, err := enc.Encode(ctx, &ir.VariableAccess{Name: "unbound", Ty: ir.Arithmetic}); err == nil {
		t.Fatal("expected UndefinedValue error")
	}
}

func TestEvaluatorEvaluatesConcrete(t *testing.T) {
	ctx := NewRootContext("Main")
	bindInt(ctx, "x", 0, 11)
	ev := NewEvaluator(stubEnums{})
	e := &ir.BinaryExpr{Op: ir.Gt, L: &ir.VariableAccess{Name: "x", Ty: ir.Arithmetic}, R: &ir.IntegerConst{Value: 10}}
	v, err := ev.Eval(ctx, e)
	if err != nil {
		t.Fatal(err)
	}
	if !v.AsBool() {
		t.Errorf("Eval(x > 10) with x=11 = %v, want true", v)
	}
}

func TestEvaluatorEnumeratedValue(t *testing.T) {
	ctx := NewRootContext("Main")
	ev := NewEvaluator(stubEnums{tags: map[string][]string{"Color": {"RED", "GREEN", "BLUE"}}})
	v, err := ev.Eval(ctx, &ir.EnumeratedValue{Enum: "Color", Tag: "GREEN"})
	if err != nil {
		t.Fatal(err)
	}
	if v.AsInt() != 1 {
		t.Errorf("Eval(Color#GREEN) = %v, want 1", v)
	}
}
