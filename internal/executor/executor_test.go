package executor

import (
	"testing"

	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/randsrc"
	"github.com/sunholo/ahorn/internal/smt"
)

// buildS1 builds spec.md §8 scenario S1: inputs x:BOOL, y:INT; body
// `IF x THEN y := 1 ELSE y := 2 END_IF`.
func buildS1(t *testing.T) (*cfg.Project, *cfg.CFG) {
	t.Helper()
	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 5
	m.Iface.Add(&ir.Variable{Name: "x", Type: ir.Elem(ir.Bool), Storage: ir.Input})
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Output})

	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.If{
		Cond:     &ir.VariableAccess{Name: "x", Ty: ir.Boolean},
		ThenGoto: 2, ElseGoto: 3,
	}
	m.Instructions[2] = &ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.IntegerConst{Value: 1}, Next: 4}
	m.Instructions[3] = &ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.IntegerConst{Value: 2}, Next: 4}
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
	if err := proj.CheckAcyclic(); err != nil {
		t.Fatal(err)
	}
	return proj, c
}

func TestBootstrapBindsInputAndDefault(t *testing.T) {
	proj, root := buildS1(t)
	ex := New(proj, randsrc.New(7))
	ctx, err := ex.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}
	if ctx.State.Location.CFG != root.Name || ctx.State.Location.Label != root.Module.Entry {
		t.Fatalf("Bootstrap location = %+v", ctx.State.Location)
	}
	yVal, ok := ctx.State.Concrete["y_0__0"]
	if !ok || yVal.AsInt() != 0 {
		t.Errorf("y_0__0 = %v, want default 0", yVal)
	}
	xTerm, ok := ctx.State.Symbolic["x_0__0"]
	if !ok || xTerm.Kind != smt.ConstTerm {
		t.Errorf("x_0__0 symbolic = %v, want a fresh uninterpreted constant", xTerm)
	}
}

func TestExecuteForksOnSymbolicInput(t *testing.T) {
	proj, _ := buildS1(t)
	ex := New(proj, randsrc.New(7))
	ctx, err := ex.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}

	// Entry -> label 1 (the If).
	ctx, _, err = ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.State.Location.Label != 1 {
		t.Fatalf("after entry, label = %d, want 1", ctx.State.Location.Label)
	}

	primary, forked, err := ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if forked == nil {
		t.Fatal("expected a fork on the untaken branch of a symbolic If")
	}
	if primary.State.Location.Label == forked.State.Location.Label {
		t.Errorf("primary and forked both landed on %d, want the two distinct branches", primary.State.Location.Label)
	}
	if primary.State.Location.Label != 2 && primary.State.Location.Label != 3 {
		t.Errorf("primary landed on unexpected label %d", primary.State.Location.Label)
	}
	if forked.State.Location.Label != 2 && forked.State.Location.Label != 3 {
		t.Errorf("forked landed on unexpected label %d", forked.State.Location.Label)
	}
}

func TestCycleClosureResetsVersionsAndCarriesLocals(t *testing.T) {
	m := ir.NewModule(ir.ProgramKind, "Counter")
	m.Entry, m.Exit = 0, 3
	m.Iface.Add(&ir.Variable{Name: "c", Type: ir.Elem(ir.Int), Storage: ir.Local})
	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.Assignment{
		Target: ir.VarRef{Name: "c"},
		Rhs:    &ir.BinaryExpr{Op: ir.Add, L: &ir.VariableAccess{Name: "c", Ty: ir.Arithmetic}, R: &ir.IntegerConst{Value: 1}},
		Next:   2,
	}
	m.Instructions[2] = &ir.Goto{Target: 3}

	c, err := cfg.Build("Counter", m)
	if err != nil {
		t.Fatal(err)
	}
	proj := cfg.NewProject()
	if err := proj.Add(c); err != nil {
		t.Fatal(err)
	}
	if err := proj.SetMain("Counter"); err != nil {
		t.Fatal(err)
	}

	ex := New(proj, randsrc.New(3))
	ctx, err := ex.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}

	// Drive the single context through three full cycles: the program has
	// no branches, so Execute never forks and ctx is simply replaced by
	// the returned primary each step.
	for ctx.Cycle < 3 {
		next, _, err := ex.Execute(ctx)
		if err != nil {
			t.Fatal(err)
		}
		ctx = next
	}

	cname := "c_0__3"
	v, ok := ctx.State.Concrete[cname]
	if !ok {
		t.Fatalf("missing %s after three cycles", cname)
	}
	if v.AsInt() != 3 {
		t.Errorf("c after 3 cycles = %d, want 3", v.AsInt())
	}
	if len(ctx.State.Path) != 0 {
		t.Errorf("path constraint not cleared after cycle closure: %v", ctx.State.Path)
	}
	if ctx.Global["c"] != 0 {
		t.Errorf("global version for c = %d, want 0 after closure", ctx.Global["c"])
	}
}

// buildS2 builds spec.md §8 scenario S2: a Main program that sets f.i := 3,
// calls function block Fb1, then reads y := f.o, expecting y == 4 once the
// call returns. Fb1's interface is hand-staged the way
// internal/passes/callxform.StageCallee would leave it (i_input/o_output
// companions plus parameter-in/out moves) but, unlike StageCallee's own
// placement, the input move sits one label past Entry rather than on it:
// execEntry (and block.Form after it) treat Entry as a pure forwarding
// marker and never dispatch whatever instruction happens to occupy its own
// label, so a move placed directly at Entry would silently never run.
// buildS1's Entry (a bare Goto) follows the same convention.
func buildS2(t *testing.T) (*cfg.Project, *cfg.CFG) {
	t.Helper()

	fb1 := ir.NewModule(ir.FunctionBlockKind, "Fb1")
	fb1.Entry, fb1.Exit = 0, 4
	fb1.Iface.Add(&ir.Variable{Name: "i_input", Type: ir.Elem(ir.Int), Storage: ir.Input})
	fb1.Iface.Add(&ir.Variable{Name: "i", Type: ir.Elem(ir.Int), Storage: ir.Local})
	fb1.Iface.Add(&ir.Variable{Name: "o", Type: ir.Elem(ir.Int), Storage: ir.Local})
	fb1.Iface.Add(&ir.Variable{Name: "o_output", Type: ir.Elem(ir.Int), Storage: ir.Output})

	fb1.Instructions[0] = &ir.Goto{Target: 1}
	fb1.Instructions[1] = &ir.Assignment{
		Target: ir.VarRef{Name: "i"},
		Rhs:    &ir.VariableAccess{Name: "i_input", Ty: ir.Arithmetic},
		Kind:   ir.ParameterIn, Next: 2,
	}
	fb1.Instructions[2] = &ir.Assignment{
		Target: ir.VarRef{Name: "o"},
		Rhs: &ir.BinaryExpr{Op: ir.Add,
			L: &ir.VariableAccess{Name: "i", Ty: ir.Arithmetic},
			R: &ir.IntegerConst{Value: 1}},
		Next: 3,
	}
	fb1.Instructions[3] = &ir.Assignment{
		Target: ir.VarRef{Name: "o_output"},
		Rhs:    &ir.VariableAccess{Name: "o", Ty: ir.Arithmetic},
		Kind:   ir.ParameterOut, Next: 4,
	}

	fb1cfg, err := cfg.Build("Fb1", fb1)
	if err != nil {
		t.Fatal(err)
	}

	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 5
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Output})

	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.Assignment{
		Target: ir.VarRef{Name: "Fb1.i_input"},
		Rhs:    &ir.IntegerConst{Value: 3},
		Kind:   ir.ParameterIn, Next: 2,
	}
	m.Instructions[2] = &ir.Call{Callee: ir.VarRef{Name: "Fb1"}, InterGoto: fb1.Entry, IntraGoto: 3}
	m.Instructions[3] = &ir.Assignment{
		Target: ir.VarRef{Name: "y"},
		Rhs:    &ir.VariableAccess{Name: "Fb1.o_output", Ty: ir.Arithmetic},
		Next:   4,
	}
	m.Instructions[4] = &ir.Goto{Target: 5}

	maincfg, err := cfg.Build("Main", m)
	if err != nil {
		t.Fatal(err)
	}

	proj := cfg.NewProject()
	if err := proj.Add(fb1cfg); err != nil {
		t.Fatal(err)
	}
	if err := proj.Add(maincfg); err != nil {
		t.Fatal(err)
	}
	if err := proj.SetMain("Main"); err != nil {
		t.Fatal(err)
	}
	if err := proj.LinkCalls(); err != nil {
		t.Fatal(err)
	}
	if err := proj.CheckAcyclic(); err != nil {
		t.Fatal(err)
	}
	return proj, maincfg
}

func TestExecuteCallRunsCalleeAndReturns(t *testing.T) {
	proj, _ := buildS2(t)
	ex := New(proj, randsrc.New(1))
	ctx, err := ex.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}

	// Drive the single context through Main's entry, the parameter-in move,
	// the call (pushing into Fb1), Fb1's own body and return moves, the pop
	// back across the call site, the read of f.o into y, and Main's exit.
	// Nothing here branches, so Execute never forks and ctx is simply
	// replaced by the returned primary each step, same as
	// TestCycleClosureResetsVersionsAndCarriesLocals.
	for ctx.Cycle < 1 {
		next, forked, err := ex.Execute(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if forked != nil {
			t.Fatal("unexpected fork in a program with no branches")
		}
		ctx = next
	}

	yVal, ok := ctx.State.Concrete["y_1__0"]
	if !ok {
		t.Fatal("missing y_1__0 after the call returns")
	}
	if yVal.AsInt() != 4 {
		t.Errorf("y after CALL Fb1 with i=3 = %d, want 4", yVal.AsInt())
	}
}

// buildS5 builds spec.md §8 scenario S5: `Havoc(x); IF x > 10 THEN y := 1
// ELSE y := 2 END_IF`. Havoc binds x to a fresh uninterpreted constant (the
// same fixed-point shape a whole-program input gets at Bootstrap), so
// neither side of the guard is determined and both branches are feasible.
func buildS5(t *testing.T) (*cfg.Project, *cfg.CFG) {
	t.Helper()
	m := ir.NewModule(ir.ProgramKind, "Main")
	m.Entry, m.Exit = 0, 5
	m.Iface.Add(&ir.Variable{Name: "x", Type: ir.Elem(ir.Int), Storage: ir.Local})
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Output})

	m.Instructions[0] = &ir.Goto{Target: 1}
	m.Instructions[1] = &ir.Havoc{Target: ir.VarRef{Name: "x"}, Next: 2}
	m.Instructions[2] = &ir.If{
		Cond: &ir.BinaryExpr{Op: ir.Gt,
			L: &ir.VariableAccess{Name: "x", Ty: ir.Arithmetic},
			R: &ir.IntegerConst{Value: 10}},
		ThenGoto: 3, ElseGoto: 4,
	}
	m.Instructions[3] = &ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.IntegerConst{Value: 1}, Next: 5}
	m.Instructions[4] = &ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.IntegerConst{Value: 2}, Next: 5}

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
	if err := proj.CheckAcyclic(); err != nil {
		t.Fatal(err)
	}
	return proj, c
}

func TestExecuteHavocThenIfForksBothBranches(t *testing.T) {
	proj, _ := buildS5(t)
	ex := New(proj, randsrc.New(11))
	ctx, err := ex.Bootstrap()
	if err != nil {
		t.Fatal(err)
	}

	// Entry -> label 1 (the Havoc).
	ctx, _, err = ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ctx.State.Location.Label != 1 {
		t.Fatalf("after entry, label = %d, want 1", ctx.State.Location.Label)
	}

	// label 1 (Havoc x) -> label 2 (the If). Havoc itself never forks.
	ctx, forked, err := ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if forked != nil {
		t.Fatal("Havoc must not fork")
	}
	if ctx.State.Location.Label != 2 {
		t.Fatalf("after Havoc, label = %d, want 2", ctx.State.Location.Label)
	}

	primary, forked, err := ex.Execute(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if forked == nil {
		t.Fatal("expected a fork on the untaken branch: x is freshly havoc'd and unconstrained")
	}
	if primary.State.Location.Label == forked.State.Location.Label {
		t.Errorf("primary and forked both landed on %d, want the two distinct branches", primary.State.Location.Label)
	}
	if primary.State.Location.Label != 3 && primary.State.Location.Label != 4 {
		t.Errorf("primary landed on unexpected label %d", primary.State.Location.Label)
	}
	if forked.State.Location.Label != 3 && forked.State.Location.Label != 4 {
		t.Errorf("forked landed on unexpected label %d", forked.State.Location.Label)
	}

	xPrimary := primary.State.Concrete["x_1__0"].AsInt()
	xForked := forked.State.Concrete["x_1__0"].AsInt()
	if primary.State.Location.Label == 3 {
		if !(xPrimary > 10 && xForked <= 10) {
			t.Errorf("primary (then) x=%d, forked (else) x=%d; want primary > 10 and forked <= 10", xPrimary, xForked)
		}
	} else {
		if !(xPrimary <= 10 && xForked > 10) {
			t.Errorf("primary (else) x=%d, forked (then) x=%d; want primary <= 10 and forked > 10", xPrimary, xForked)
		}
	}
}
