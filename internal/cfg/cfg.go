package cfg

import (
	"sort"

	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
)

// CFG is the control-flow graph built from a single ir.Module. Vertices
// and edges live in per-CFG maps/slices (an arena, in the terms of
// DESIGN.md's "shared and weak ownership" note); Proj is a weak,
// non-owning back-pointer to the Project registry that owns every CFG,
// used to resolve callee CFGs and cascade interface updates to callers.
type CFG struct {
	Name     string
	Module   *ir.Module
	Vertices map[ir.Label]*Vertex
	Edges    []*Edge
	Proj     *Project
}

// Build constructs a CFG from module: one vertex per instruction label
// plus the designated Entry/Exit vertices, and intraprocedural/branch/call
// edges derived from each instruction's successor labels. Interprocedural
// return edges are added later by Project.LinkCalls, once every CFG in the
// project is known.
func Build(name string, module *ir.Module) (*CFG, error) {
	c := &CFG{Name: name, Module: module, Vertices: make(map[ir.Label]*Vertex)}

	for label, instr := range module.Instructions {
		c.Vertices[label] = &Vertex{Label: label, Type: Regular, Instr: instr}
	}

	if v, ok := c.Vertices[module.Entry]; ok {
		v.Type = Entry
	} else {
		c.Vertices[module.Entry] = &Vertex{Label: module.Entry, Type: Entry}
	}
	if v, ok := c.Vertices[module.Exit]; ok {
		v.Type = Exit
	} else {
		c.Vertices[module.Exit] = &Vertex{Label: module.Exit, Type: Exit}
	}

	if err := c.deriveEdges(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *CFG) deriveEdges() error {
	for label, v := range c.Vertices {
		switch instr := v.Instr.(type) {
		case nil:
			continue
		case *ir.Goto:
			c.Edges = append(c.Edges, &Edge{From: label, To: instr.Target, Type: Intraprocedural})
		case *ir.Assignment:
			c.Edges = append(c.Edges, &Edge{From: label, To: instr.Next, Type: Intraprocedural})
		case *ir.Havoc:
			c.Edges = append(c.Edges, &Edge{From: label, To: instr.Next, Type: Intraprocedural})
		case *ir.Sequence:
			c.Edges = append(c.Edges, &Edge{From: label, To: instr.Next, Type: Intraprocedural})
		case *ir.If:
			c.Edges = append(c.Edges,
				&Edge{From: label, To: instr.ThenGoto, Type: TrueBranch},
				&Edge{From: label, To: instr.ElseGoto, Type: FalseBranch})
		case *ir.While:
			c.Edges = append(c.Edges,
				&Edge{From: label, To: instr.BodyEntry, Type: TrueBranch},
				&Edge{From: label, To: instr.ExitGoto, Type: FalseBranch})
		case *ir.Call:
			c.Edges = append(c.Edges,
				&Edge{From: label, To: instr.InterGoto, Type: InterproceduralCall},
				&Edge{From: label, To: instr.IntraGoto, Type: IntraproceduralCallToReturn})
		default:
			return errors.InvalidIR("cfg", "unrecognized instruction kind at label %d", label)
		}
	}
	return nil
}

// GetVertex returns the vertex at label.
func (c *CFG) GetVertex(label ir.Label) (*Vertex, bool) {
	v, ok := c.Vertices[label]
	return v, ok
}

// OutgoingEdges returns every edge leaving label, in a stable order.
func (c *CFG) OutgoingEdges(label ir.Label) []*Edge {
	var out []*Edge
	for _, e := range c.Edges {
		if e.From == label {
			out = append(out, e)
		}
	}
	return out
}

// IncomingEdges returns every edge entering label, in a stable order.
func (c *CFG) IncomingEdges(label ir.Label) []*Edge {
	var in []*Edge
	for _, e := range c.Edges {
		if e.To == label {
			in = append(in, e)
		}
	}
	return in
}

func (c *CFG) edgeOfType(label ir.Label, t EdgeType) (*Edge, bool) {
	for _, e := range c.Edges {
		if e.From == label && e.Type == t {
			return e, true
		}
	}
	return nil, false
}

func (c *CFG) TrueEdge(label ir.Label) (*Edge, bool)  { return c.edgeOfType(label, TrueBranch) }
func (c *CFG) FalseEdge(label ir.Label) (*Edge, bool) { return c.edgeOfType(label, FalseBranch) }
func (c *CFG) IntraproceduralEdge(label ir.Label) (*Edge, bool) {
	return c.edgeOfType(label, Intraprocedural)
}
func (c *CFG) CallToReturnEdge(label ir.Label) (*Edge, bool) {
	return c.edgeOfType(label, IntraproceduralCallToReturn)
}
func (c *CFG) CallEdge(label ir.Label) (*Edge, bool) {
	return c.edgeOfType(label, InterproceduralCall)
}
func (c *CFG) ReturnEdge(label ir.Label) (*Edge, bool) {
	return c.edgeOfType(label, InterproceduralReturn)
}

// Callee returns the CFG called by the Call vertex at label, via the
// project registry.
func (c *CFG) Callee(label ir.Label) (*CFG, bool) {
	v, ok := c.Vertices[label]
	if !ok {
		return nil, false
	}
	call, ok := v.Instr.(*ir.Call)
	if !ok || c.Proj == nil {
		return nil, false
	}
	return c.Proj.Lookup(call.Callee.Name)
}

// AddVertex allocates the smallest label unused by every CFG registered in
// the project (this CFG, its callees and its callers among them, so a
// freshly split label can never collide across the project, not just
// within one module), inserts a bare Regular vertex at it, and returns the
// new label.
func (c *CFG) AddVertex() ir.Label {
	used := c.usedLabelsAcrossProject()
	next := ir.Label(0)
	for used[next] {
		next++
	}
	c.Vertices[next] = &Vertex{Label: next, Type: Regular}
	return next
}

func (c *CFG) usedLabelsAcrossProject() map[ir.Label]bool {
	used := make(map[ir.Label]bool)
	mark := func(cc *CFG) {
		for l := range cc.Vertices {
			used[l] = true
		}
	}
	mark(c)
	if c.Proj != nil {
		for _, name := range c.Proj.Names() {
			cc, _ := c.Proj.Lookup(name)
			if cc != c {
				mark(cc)
			}
		}
	}
	return used
}

// RemoveVertex deletes label and every edge touching it.
func (c *CFG) RemoveVertex(label ir.Label) {
	delete(c.Vertices, label)
	kept := c.Edges[:0]
	for _, e := range c.Edges {
		if e.From != label && e.To != label {
			kept = append(kept, e)
		}
	}
	c.Edges = kept
}

// AddVariable adds v to the module's interface and cascades
// updateFlattenedInterface to every caller that holds a weak reference to
// this CFG (spec.md §4.1), so a caller's flattened interface stays in sync
// with a callee's Derived-typed fields.
func (c *CFG) AddVariable(v *ir.Variable) {
	v.Owner = c.Name
	c.Module.Iface.Add(v)
	c.updateCallerInterfaces()
}

// RemoveVariable removes the named variable and cascades the same update.
func (c *CFG) RemoveVariable(name string) {
	c.Module.Iface.Remove(name)
	c.updateCallerInterfaces()
}

func (c *CFG) updateCallerInterfaces() {
	if c.Proj == nil {
		return
	}
	for _, callerName := range c.Proj.CallersOf(c.Name) {
		caller, ok := c.Proj.Lookup(callerName)
		if !ok {
			continue
		}
		// Flattening is computed on demand (Interface.Flatten); nothing to
		// cache here beyond ensuring the caller is reachable through the
		// registry, which it already is. This hook exists so a future
		// cached-flattened-interface optimization has a single place to
		// invalidate from.
		_ = caller
	}
}

// SortedLabels returns every vertex label in ascending order, used by
// deterministic passes and printers.
func (c *CFG) SortedLabels() []ir.Label {
	out := make([]ir.Label, 0, len(c.Vertices))
	for l := range c.Vertices {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
