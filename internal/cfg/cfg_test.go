package cfg

import (
	"strings"
	"testing"

	"github.com/sunholo/ahorn/internal/ir"
)

// buildIfProgram builds: entry(0) -> if x then 1 else 2; 1: y:=1 -> exit(3); 2: y:=2 -> exit(3)
func buildIfProgram() *ir.Module {
	m := ir.NewModule(ir.ProgramKind, "P")
	m.Iface.Add(&ir.Variable{Name: "x", Type: ir.Elem(ir.Bool), Storage: ir.Input})
	m.Iface.Add(&ir.Variable{Name: "y", Type: ir.Elem(ir.Int), Storage: ir.Output})
	m.Entry = 0
	m.Exit = 3
	m.Instructions[0] = &ir.If{Cond: &ir.VariableAccess{Name: "x", Ty: ir.Boolean}, ThenGoto: 1, ElseGoto: 2}
	m.Instructions[1] = &ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.IntegerConst{Value: 1}, Next: 3}
	m.Instructions[2] = &ir.Assignment{Target: ir.VarRef{Name: "y"}, Rhs: &ir.IntegerConst{Value: 2}, Next: 3}
	return m
}

func TestBuildCFGEdges(t *testing.T) {
	m := buildIfProgram()
	c, err := Build("P", m)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(c.Vertices) != 4 {
		t.Fatalf("got %d vertices, want 4", len(c.Vertices))
	}
	trueE, ok := c.TrueEdge(0)
	if !ok || trueE.To != 1 {
		t.Errorf("TrueEdge(0) = %+v, ok=%v", trueE, ok)
	}
	falseE, ok := c.FalseEdge(0)
	if !ok || falseE.To != 2 {
		t.Errorf("FalseEdge(0) = %+v, ok=%v", falseE, ok)
	}
	if e, ok := c.IntraproceduralEdge(1); !ok || e.To != 3 {
		t.Errorf("IntraproceduralEdge(1) = %+v, ok=%v", e, ok)
	}
	entry, _ := c.GetVertex(0)
	if entry.Type != Entry {
		t.Errorf("vertex 0 type = %v, want Entry", entry.Type)
	}
	exit, _ := c.GetVertex(3)
	if exit.Type != Exit {
		t.Errorf("vertex 3 type = %v, want Exit", exit.Type)
	}
}

func TestAddVertexAllocatesAcrossProject(t *testing.T) {
	m := buildIfProgram()
	c, err := Build("P", m)
	if err != nil {
		t.Fatal(err)
	}
	proj := NewProject()
	if err := proj.Add(c); err != nil {
		t.Fatal(err)
	}
	label := c.AddVertex()
	if label != 4 {
		t.Errorf("AddVertex() = %d, want 4 (smallest unused)", label)
	}
}

func TestCallGraphCycleDetected(t *testing.T) {
	a := ir.NewModule(ir.FunctionBlockKind, "A")
	a.Entry, a.Exit = 0, 2
	a.Instructions[0] = &ir.Call{Callee: ir.VarRef{Name: "B"}, InterGoto: 10, IntraGoto: 1}
	a.Instructions[1] = &ir.Goto{Target: 2}

	b := ir.NewModule(ir.FunctionBlockKind, "B")
	b.Entry, b.Exit = 10, 12
	b.Instructions[10] = &ir.Call{Callee: ir.VarRef{Name: "A"}, InterGoto: 0, IntraGoto: 11}
	b.Instructions[11] = &ir.Goto{Target: 12}

	cfgA, err := Build("A", a)
	if err != nil {
		t.Fatal(err)
	}
	cfgB, err := Build("B", b)
	if err != nil {
		t.Fatal(err)
	}
	proj := NewProject()
	_ = proj.Add(cfgA)
	_ = proj.Add(cfgB)

	if err := proj.CheckAcyclic(); err == nil {
		t.Fatal("expected a call graph cycle error")
	}
}

func TestToDotEmitsExpectedColors(t *testing.T) {
	m := buildIfProgram()
	c, err := Build("P", m)
	if err != nil {
		t.Fatal(err)
	}
	proj := NewProject()
	_ = proj.Add(c)
	_ = proj.SetMain("P")
	dot := proj.ToDot()
	for _, want := range []string{"digraph ahorn", `color="green"`, `color="red"`} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDot() missing %q\n%s", want, dot)
		}
	}
}
