// Package cfg builds and manipulates the control-flow graph over an
// ir.Module: labeled vertices, typed edges, and the intra/interprocedural
// structure connecting a program to the function blocks it calls.
package cfg

import "github.com/sunholo/ahorn/internal/ir"

// VertexType distinguishes entry/exit vertices from regular instruction
// vertices.
type VertexType int

const (
	Entry VertexType = iota
	Regular
	Exit
)

func (t VertexType) String() string {
	switch t {
	case Entry:
		return "ENTRY"
	case Exit:
		return "EXIT"
	default:
		return "REGULAR"
	}
}

// Vertex is one label-addressed node of the CFG. Instr is nil for an Exit
// vertex and for an Entry vertex with no explicit fallthrough recorded.
type Vertex struct {
	Label ir.Label
	Type  VertexType
	Instr ir.Instruction
}
