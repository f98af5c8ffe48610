package concolic

// ShadowMode selects which side(s) of a ChangeExpr the Encoder and
// Evaluator resolve to (spec.md §4.6). None is the ordinary, non-shadow
// concolic engine's mode: a ChangeExpr is resolved to its New
// sub-expression, i.e. there is no unified old/new program in play.
type ShadowMode int

const (
	None ShadowMode = iota
	Old
	New
	Both
)

func (m ShadowMode) String() string {
	switch m {
	case Old:
		return "OLD"
	case New:
		return "NEW"
	case Both:
		return "BOTH"
	default:
		return "NONE"
	}
}
