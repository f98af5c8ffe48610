package concolic

import (
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// Location names the vertex a State is currently parked at.
type Location struct {
	CFG   string
	Label ir.Label
}

// State is spec.md §3.6's concolic state: parallel concrete and symbolic
// stores keyed by contextualized name, an ordered path constraint, and the
// per-flattened-name local version map. Frame/global bookkeeping lives one
// level up, on Context, since versions are shared context-wide while a
// State is what gets cloned on fork.
type State struct {
	Location  Location
	Concrete  map[string]smt.Value
	Symbolic  map[string]*smt.Term
	Path      []*smt.Term
	LocalVers map[string]int
}

func NewState(loc Location) *State {
	return &State{
		Location:  loc,
		Concrete:  map[string]smt.Value{},
		Symbolic:  map[string]*smt.Term{},
		Path:      nil,
		LocalVers: map[string]int{},
	}
}

// Clone deep-copies s. Forked contexts must never alias their parent's
// stores (spec.md §5: "no aliasing is permitted between parent and child
// concrete/symbolic stores").
func (s *State) Clone() *State {
	c := &State{
		Location:  s.Location,
		Concrete:  make(map[string]smt.Value, len(s.Concrete)),
		Symbolic:  make(map[string]*smt.Term, len(s.Symbolic)),
		Path:      append([]*smt.Term(nil), s.Path...),
		LocalVers: make(map[string]int, len(s.LocalVers)),
	}
	for k, v := range s.Concrete {
		c.Concrete[k] = v
	}
	for k, v := range s.Symbolic {
		c.Symbolic[k] = v // Terms are immutable trees; sharing them is safe.
	}
	for k, v := range s.LocalVers {
		c.LocalVers[k] = v
	}
	return c
}

// Bind writes both the concrete and symbolic valuation of a contextualized
// name (invariant 1, spec.md §8: every concrete entry has a symbolic
// counterpart and vice versa).
func (s *State) Bind(cname string, concrete smt.Value, symbolic *smt.Term) {
	s.Concrete[cname] = concrete
	s.Symbolic[cname] = symbolic
}
