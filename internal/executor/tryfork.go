package executor

import (
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// tryFork implements spec.md §4.5.2. untakenTerm is the encoded guard
// guiding into untakenLabel, the successor the concrete run did not take.
//
// Terms in this engine are built by direct substitution — encodeName
// inlines the full symbolic definition of a name wherever it is read,
// rather than handing out an opaque handle that must separately be
// asserted equal to its definition. The query is therefore already
// self-contained in terms of root uninterpreted constants; the "hard
// constraints asserting every symbolic variable equals its symbolic term"
// spec.md describes are what a solver binding with named handles would
// need and are redundant here (see DESIGN.md's note on the §9 "necessary
// hard constraints" open question).
func (e *Executor) tryFork(ctx *concolic.Context, untakenTerm *smt.Term, untakenLabel ir.Label) (*concolic.Context, error) {
	if !e.hasUnconstrainedConstant(ctx, untakenTerm) {
		return nil, nil
	}

	query := append(append([]*smt.Term(nil), ctx.State.Path...), untakenTerm)
	result, err := e.Facade.Check(query)
	if err != nil {
		return nil, err
	}

	switch result.Kind {
	case smt.Sat:
		forked := ctx.Clone()
		for name, val := range result.Model {
			forked.State.Concrete[name] = val
		}
		forked.State.Path = append(forked.State.Path, untakenTerm)
		forked.State.Location.Label = untakenLabel
		return forked, nil
	case smt.Unsat:
		return nil, nil
	default:
		return nil, errors.SolverUnknown("executor", "solver returned unknown forking on label %d", untakenLabel)
	}
}

// hasUnconstrainedConstant reports whether term mentions at least one
// uninterpreted constant whose symbolic valuation is itself — a
// fixed-point binding, meaning a whole-program input or a havoc'd
// variable that has not since been overwritten by a derived assignment
// (spec.md §4.5.2's fork precondition).
func (e *Executor) hasUnconstrainedConstant(ctx *concolic.Context, term *smt.Term) bool {
	for _, name := range e.Facade.UninterpretedConstants(term) {
		bound, ok := ctx.State.Symbolic[name]
		if ok && bound.Kind == smt.ConstTerm && bound.Name == name {
			return true
		}
	}
	return false
}
