package shadow

import (
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// dispatchShadowBranch implements spec.md §4.6 steps 1-4 for an If/While
// whose guard transitively mentions a shadow expression:
//
//  1. evaluate the guard concretely on both sides;
//  2. if they disagree, the context has hit a genuine divergence and stops
//     here (DivergentBehavior);
//  3. otherwise, encode both sides symbolically and try forking each of
//     the two diff conjunctions (¬old∧new guiding into the true branch,
//     old∧¬new guiding into the false branch) that the concrete step did
//     not take;
//  4. the primary advances down the commonly-taken branch, extending both
//     old_path_constraint and new_path_constraint with the respective
//     encoded guard (PotentialDivergentBehavior, since a fork may have
//     just been enqueued).
func (e *Executor) dispatchShadowBranch(ctx *Context, cond ir.Expr, thenLabel, elseLabel ir.Label) (*Context, []*Context, Status, error) {
	oldVal, newVal, err := e.Ev.EvalBoth(ctx, cond)
	if err != nil {
		return nil, nil, ExpectedBehavior, err
	}
	oldTerm, newTerm, err := e.Enc.EncodeBoth(ctx, cond)
	if err != nil {
		return nil, nil, ExpectedBehavior, err
	}

	if oldVal.AsBool() != newVal.AsBool() {
		return nil, nil, DivergentBehavior, nil
	}

	taken, oldTaken, newTaken := elseLabel, e.Facade.Not(oldTerm), e.Facade.Not(newTerm)
	if newVal.AsBool() {
		taken, oldTaken, newTaken = thenLabel, oldTerm, newTerm
	}

	// Step 3: the two diff conjunctions are fixed regardless of which
	// branch the concrete run actually took. Each half is kept separate
	// (rather than just the conjunction) so the fork can extend OldPath
	// and NewPath with exactly the term each side contributed, the same
	// way the primary extends them with oldTaken/newTaken below.
	var forked []*Context
	if f, err := e.tryDivergentFork(ctx, e.Facade.Not(oldTerm), newTerm, thenLabel); err != nil {
		return nil, nil, ExpectedBehavior, err
	} else if f != nil {
		forked = append(forked, f)
	}
	if f, err := e.tryDivergentFork(ctx, oldTerm, e.Facade.Not(newTerm), elseLabel); err != nil {
		return nil, nil, ExpectedBehavior, err
	} else if f != nil {
		forked = append(forked, f)
	}

	ctx.OldPath = append(ctx.OldPath, oldTaken)
	ctx.NewPath = append(ctx.NewPath, newTaken)
	ctx.State.Location.Label = taken
	return ctx, forked, PotentialDivergentBehavior, nil
}

// tryDivergentFork is executor.tryFork's structural twin: the query
// conjoins the base path constraint with both shadow path constraints and
// oldHalf/newHalf, asserting no separate hard constraints for the same
// reason tryFork does not (this engine's Encoder substitutes full
// symbolic definitions in place, so there is nothing left to pin down).
// It differs from tryFork only in querying two independent diff terms per
// branch instead of one. On a successful fork, spec.md §8 Invariant 4
// requires the child's path constraint to equal the parent's with the
// forked expression appended; here that means extending OldPath with
// oldHalf and NewPath with newHalf, mirroring how the primary extends
// them with oldTaken/newTaken just above.
func (e *Executor) tryDivergentFork(ctx *Context, oldHalf, newHalf *smt.Term, untakenLabel ir.Label) (*Context, error) {
	diffTerm := e.Facade.Bin(ir.And, oldHalf, newHalf)
	if !e.hasUnconstrainedConstant(ctx, diffTerm) {
		return nil, nil
	}

	query := append(append([]*smt.Term(nil), ctx.State.Path...), ctx.OldPath...)
	query = append(query, ctx.NewPath...)
	query = append(query, diffTerm)

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
		forked.OldPath = append(forked.OldPath, oldHalf)
		forked.NewPath = append(forked.NewPath, newHalf)
		forked.State.Location.Label = untakenLabel
		return forked, nil
	case smt.Unsat:
		return nil, nil
	default:
		return nil, errors.SolverUnknown("shadow", "solver returned unknown resolving divergent fork to label %d", untakenLabel)
	}
}

// hasUnconstrainedConstant mirrors executor.Executor.hasUnconstrainedConstant:
// a fork is only worth querying if term mentions at least one uninterpreted
// constant whose own symbolic valuation is itself a fixed-point binding (a
// whole-program input or a havoc'd name not since overwritten).
func (e *Executor) hasUnconstrainedConstant(ctx *Context, term *smt.Term) bool {
	for _, name := range e.Facade.UninterpretedConstants(term) {
		bound, ok := ctx.State.Symbolic[name]
		if ok && bound.Kind == smt.ConstTerm && bound.Name == name {
			return true
		}
	}
	return false
}
