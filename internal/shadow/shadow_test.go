package shadow

import (
	"testing"

	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/randsrc"
	"github.com/sunholo/ahorn/internal/smt"
)

// buildDivergent builds a unified program whose guard transitively
// depends on a ChangeExpr via an intervening assignment: `y := change(-1,
// 1); IF y > 0 THEN ... ELSE ... END_IF`. Old evaluates the guard false
// (-1 > 0 is false), New evaluates it true (1 > 0): an outright
// DivergentBehavior.
func buildDivergent(t *testing.T) *cfg.Project {
	t.Helper()
	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 5
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Local})

	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.Assignment{
		Target: ir.VarRef{Name: "y"},
		Rhs:    &ir.ChangeExpr{Old: &ir.IntegerConst{Value: -1}, New: &ir.IntegerConst{Value: 1}},
		Next:   2,
	}
	m.Instructions[2] = &ir.If{
		Cond:     &ir.BinaryExpr{Op: ir.Gt, L: &ir.VariableAccess{Name: "y", Ty: ir.Arithmetic}, R: &ir.IntegerConst{Value: 0}},
		ThenGoto: 3, ElseGoto: 4,
	}
	m.Instructions[3] = &ir.Goto{Target: 5}
	m.Instructions[4] = &ir.Goto{Target: 5}

	c, err := cfg.Build("Main", m)
	if err != nil {
		t.Fatal(err)
	}
	proj := cfg.NewProject()
	if err := proj.Add(c); err != nil {
		t.Fatal(err)
	}
	if err := proj.SetMain("Main"); err != nil {
		t.Fatal(err)
	}
	if err := proj.LinkCalls(); err != nil {
		t.Fatal(err)
	}
	return proj
}

// buildAgreeingChange is buildDivergent's twin, but both sides of the
// change() evaluate the guard the same way (5 > 0 and 6 > 0 are both
// true): a PotentialDivergentBehavior, not an outright divergence.
func buildAgreeingChange(t *testing.T) *cfg.Project {
	t.Helper()
	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 5
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Local})

	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.Assignment{
		Target: ir.VarRef{Name: "y"},
		Rhs:    &ir.ChangeExpr{Old: &ir.IntegerConst{Value: 5}, New: &ir.IntegerConst{Value: 6}},
		Next:   2,
	}
	m.Instructions[2] = &ir.If{
		Cond:     &ir.BinaryExpr{Op: ir.Gt, L: &ir.VariableAccess{Name: "y", Ty: ir.Arithmetic}, R: &ir.IntegerConst{Value: 0}},
		ThenGoto: 3, ElseGoto: 4,
	}
	m.Instructions[3] = &ir.Goto{Target: 5}
	m.Instructions[4] = &ir.Goto{Target: 5}

	c, err := cfg.Build("Main", m)
	if err != nil {
		t.Fatal(err)
	}
	proj := cfg.NewProject()
	if err := proj.Add(c); err != nil {
		t.Fatal(err)
	}
	if err := proj.SetMain("Main"); err != nil {
		t.Fatal(err)
	}
	if err := proj.LinkCalls(); err != nil {
		t.Fatal(err)
	}
	return proj
}

// buildSymbolicChange builds a unified program whose change() operands are
// not literal constants but derive from a whole-program input x: `y :=
// change(x, x-10); IF y > 0 THEN ... ELSE ... END_IF`. Since x is an
// unconstrained uninterpreted constant, the diff conjunction old∧¬new
// (x>0 ∧ x-10<=0, i.e. 0<x<=10) is satisfiable no matter what concrete
// value x actually holds, so tryDivergentFork always has a genuine Sat
// fork to find here, unlike buildAgreeingChange's fully-literal sides.
func buildSymbolicChange(t *testing.T) *cfg.Project {
	t.Helper()
	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 5
	m.Iface.Add(&ir.Variable{Name: "x", Type: ir.Elem(ir.Int), Storage: ir.Input})
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Local})

	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.Assignment{
		Target: ir.VarRef{Name: "y"},
		Rhs: &ir.ChangeExpr{
			Old: &ir.VariableAccess{Name: "x", Ty: ir.Arithmetic},
			New: &ir.BinaryExpr{Op: ir.Sub, L: &ir.VariableAccess{Name: "x", Ty: ir.Arithmetic}, R: &ir.IntegerConst{Value: 10}},
		},
		Next: 2,
	}
	m.Instructions[2] = &ir.If{
		Cond:     &ir.BinaryExpr{Op: ir.Gt, L: &ir.VariableAccess{Name: "y", Ty: ir.Arithmetic}, R: &ir.IntegerConst{Value: 0}},
		ThenGoto: 3, ElseGoto: 4,
	}
	m.Instructions[3] = &ir.Goto{Target: 5}
	m.Instructions[4] = &ir.Goto{Target: 5}

	c, err := cfg.Build("Main", m)
	if err != nil {
		t.Fatal(err)
	}
	proj := cfg.NewProject()
	if err := proj.Add(c); err != nil {
		t.Fatal(err)
	}
	if err := proj.SetMain("Main"); err != nil {
		t.Fatal(err)
	}
	if err := proj.LinkCalls(); err != nil {
		t.Fatal(err)
	}
	return proj
}

// bindInput gives ctx a deterministic whole-program input binding without
// going through executor.Bootstrap's random draw, so the concrete value x
// takes is chosen by the test rather than by the random source.
func bindInput(ctx *Context, name string, concrete int64) {
	facade := smt.NewFacade()
	cname := concolic.ContextualName(name, 0, 0)
	ctx.State.Bind(cname, smt.IntValue(concrete), facade.MakeConstant(cname, ir.Arithmetic))
}

func runToIf(t *testing.T, ex *Executor) *Context {
	t.Helper()
	return stepToIf(t, ex, NewRootContext("Main"))
}

// stepToIf is runToIf generalized over a caller-prepared starting context,
// so a test can bind inputs before the Assignment at label 1 reads them.
func stepToIf(t *testing.T, ex *Executor, ctx *Context) *Context {
	t.Helper()
	ctx, _, _, err := ex.Execute(ctx) // the Entry vertex (label 0, a Goto) moves to label 1
	if err != nil {
		t.Fatal(err)
	}
	for ctx.State.Location.Label != 2 {
		ctx, _, _, err = ex.Execute(ctx)
		if err != nil {
			t.Fatal(err)
		}
	}
	return ctx
}

func TestExecuteDivergesWhenShadowedGuardDisagrees(t *testing.T) {
	proj := buildDivergent(t)
	ex := New(proj, randsrc.New(11))
	ctx := runToIf(t, ex)

	primary, forked, status, err := ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status != DivergentBehavior {
		t.Fatalf("status = %v, want DivergentBehavior", status)
	}
	if primary != nil || forked != nil {
		t.Errorf("divergent step returned primary=%v forked=%v, want both nil", primary, forked)
	}
}

func TestExecuteAgreesButMarksPotentialDivergence(t *testing.T) {
	proj := buildAgreeingChange(t)
	ex := New(proj, randsrc.New(11))
	ctx := runToIf(t, ex)

	primary, forked, status, err := ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status != PotentialDivergentBehavior {
		t.Fatalf("status = %v, want PotentialDivergentBehavior", status)
	}
	if primary == nil {
		t.Fatal("expected a primary context to continue execution")
	}
	if primary.State.Location.Label != 3 {
		t.Errorf("primary landed on %d, want 3 (both sides took the true branch)", primary.State.Location.Label)
	}
	// Both change() sides are literal constants here, so the diff
	// conjunctions mention no uninterpreted constant and no fork is
	// worth querying.
	if forked != nil {
		t.Errorf("expected no fork over fully-literal change() sides, got %d", len(forked))
	}
	if len(primary.OldPath) != 1 || len(primary.NewPath) != 1 {
		t.Errorf("OldPath/NewPath = %d/%d entries, want 1 each", len(primary.OldPath), len(primary.NewPath))
	}
}

func TestExprIsShadowedPropagatesThroughAssignment(t *testing.T) {
	proj := buildDivergent(t)
	ex := New(proj, randsrc.New(11))
	ctx := NewRootContext("Main")
	ctx, _, _, err := ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}

	cond := &ir.BinaryExpr{Op: ir.Gt, L: &ir.VariableAccess{Name: "y", Ty: ir.Arithmetic}, R: &ir.IntegerConst{Value: 0}}
	if ex.exprIsShadowed(ctx, cond) {
		t.Fatal("y has not been assigned yet; guard should not be shadow-tainted")
	}

	ctx, _, _, err = ex.Execute(ctx) // runs the change()-tainted assignment to y
	if err != nil {
		t.Fatal(err)
	}
	if !ex.exprIsShadowed(ctx, cond) {
		t.Error("guard reading y should be shadow-tainted after y's change()-tainted assignment")
	}
}

func TestTryDivergentForkExtendsOldAndNewPath(t *testing.T) {
	proj := buildSymbolicChange(t)
	ex := New(proj, randsrc.New(11))
	ctx := NewRootContext("Main")
	bindInput(ctx, "x", 20)
	ctx = stepToIf(t, ex, ctx)

	primary, forked, status, err := ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if status != PotentialDivergentBehavior {
		t.Fatalf("status = %v, want PotentialDivergentBehavior", status)
	}
	if primary == nil || primary.State.Location.Label != 3 {
		t.Fatalf("primary landed on %v, want 3 (x=20: both old=20>0 and new=10>0 are true)", primary)
	}
	if len(forked) != 1 {
		t.Fatalf("forked = %d contexts, want exactly 1 (only old>0/new<=0 is satisfiable)", len(forked))
	}
	if forked[0].State.Location.Label != 4 {
		t.Errorf("fork landed on label %d, want 4", forked[0].State.Location.Label)
	}
	// The fork was cloned before the primary's own OldPath/NewPath append
	// (both start this step at 0 entries), so the fork's one appended old
	// term (oldHalf) lands it at the same length as the primary's one
	// appended oldTaken term — spec.md §8 Invariant 4 is about the fork
	// having the parent's constraints plus its own forked expression, not
	// about out-growing whatever the primary separately appended.
	if len(forked[0].OldPath) != 1 {
		t.Errorf("fork OldPath has %d entries, want 1 (the forked old term)", len(forked[0].OldPath))
	}
	if len(forked[0].NewPath) != 1 {
		t.Errorf("fork NewPath has %d entries, want 1 (the forked new term)", len(forked[0].NewPath))
	}
}
