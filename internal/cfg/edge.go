package cfg

import "github.com/sunholo/ahorn/internal/ir"

// EdgeType is the closed sum of edge kinds from spec.md §3.4.
type EdgeType int

const (
	Intraprocedural EdgeType = iota
	IntraproceduralCallToReturn
	InterproceduralCall
	InterproceduralReturn
	TrueBranch
	FalseBranch
)

func (t EdgeType) String() string {
	switch t {
	case Intraprocedural:
		return "intra"
	case IntraproceduralCallToReturn:
		return "call-to-return"
	case InterproceduralCall:
		return "call"
	case InterproceduralReturn:
		return "return"
	case TrueBranch:
		return "true"
	default:
		return "false"
	}
}

// Edge is a directed edge of the CFG. CallerName and CallLabel are only
// meaningful on InterproceduralReturn edges: they record which caller
// module and which of its call sites this return edge answers, since a
// callee CFG may be shared by more than one caller (spec.md §3.4).
type Edge struct {
	From, To   ir.Label
	Type       EdgeType
	CallerName string
	CallLabel  ir.Label
}
