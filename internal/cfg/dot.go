package cfg

import (
	"fmt"
	"strings"
)

// edgeAttrs maps an EdgeType to the GraphViz color/style spec.md §6.1
// assigns it.
func edgeAttrs(t EdgeType) string {
	switch t {
	case Intraprocedural:
		return `color="black"`
	case InterproceduralCall:
		return `color="blue"`
	case InterproceduralReturn:
		return `color="blue" style="dashed" label="return"`
	case TrueBranch:
		return `color="green"`
	case FalseBranch:
		return `color="red"`
	default: // IntraproceduralCallToReturn
		return `color="grey" style="dashed"`
	}
}

// ToDot renders p as a GraphViz digraph: one subgraph cluster per module,
// entry/exit vertices doublecircle, edges colored by type (spec.md §6.1).
// This is informative tooling, not something a front-end round-trips
// through, so the renderer favors readability over a fixed grammar.
func (p *Project) ToDot() string {
	var b strings.Builder
	b.WriteString("digraph ahorn {\n  rankdir=TB;\n")
	for _, name := range p.order {
		c := p.cfgs[name]
		fmt.Fprintf(&b, "  subgraph cluster_%s {\n    label=%q;\n", sanitize(name), name)
		for _, label := range c.SortedLabels() {
			v := c.Vertices[label]
			shape := "box"
			if v.Type == Entry || v.Type == Exit {
				shape = "doublecircle"
			}
			text := v.Type.String()
			if v.Instr != nil {
				text = v.Instr.String()
			}
			fmt.Fprintf(&b, "    %s_%d [shape=%s, label=%q];\n", sanitize(name), label, shape, text)
		}
		for _, e := range c.Edges {
			fmt.Fprintf(&b, "    %s_%d -> %s_%d [%s];\n", sanitize(name), e.From, sanitize(name), e.To, edgeAttrs(e.Type))
		}
		b.WriteString("  }\n")
	}
	b.WriteString("}\n")
	return b.String()
}

func sanitize(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}
