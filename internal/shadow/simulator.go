package shadow

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/executor"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/randsrc"
	"github.com/sunholo/ahorn/internal/smt"
	"github.com/sunholo/ahorn/internal/testsuite"
)

// Simulator replays a testsuite.TestCase against a project purely
// concretely: it drives a plain executor.Executor (symbolic store and
// fork machinery still present underneath, since that is how
// internal/executor represents a single concrete run, but every fork it
// ever returns is discarded) and, at the boundary of each cycle, pins the
// freshly-bound inputs to the test case's recorded values instead of
// leaving them at the fresh random constant Bootstrap/closeCycle would
// otherwise assign. This reconstructs the original's exact execution
// history and terminal valuations, for validating a TestCase or seeding a
// second-phase explorer from a divergent context.
type Simulator struct {
	Proj *cfg.Project
	Exec *executor.Executor
}

func NewSimulator(proj *cfg.Project, rand *randsrc.Source) *Simulator {
	return &Simulator{Proj: proj, Exec: executor.New(proj, rand)}
}

// StepRecord is one vertex visited during a replay, in visitation order.
type StepRecord struct {
	Cycle int
	CFG   string
	Label ir.Label
}

// History is a completed replay: every vertex visited plus the final
// context, from which terminal valuations are read directly off
// Final.State.Concrete.
type History struct {
	Steps []StepRecord
	Final *concolic.Context
}

// Replay drives tc's initialization and per-cycle inputs through the
// project to completion, or until maxSteps vertices have been visited,
// whichever comes first.
func (s *Simulator) Replay(tc *testsuite.TestCase, maxSteps int) (*History, error) {
	root, ok := s.Proj.Main()
	if !ok {
		return nil, errors.InvalidIR("shadow", "project has no designated main module")
	}

	ctx, err := s.Exec.Bootstrap()
	if err != nil {
		return nil, err
	}
	applyValuations(ctx, tc.Initialization, 0)
	if len(tc.Inputs) > 0 {
		applyValuations(ctx, tc.Inputs[0].Values, 0)
	}

	hist := &History{}
	for i := 0; i < maxSteps; i++ {
		hist.Steps = append(hist.Steps, StepRecord{
			Cycle: ctx.Cycle,
			CFG:   ctx.State.Location.CFG,
			Label: ctx.State.Location.Label,
		})

		if ctx.Cycle >= len(tc.Inputs) && ctx.State.Location.CFG == root.Name && ctx.State.Location.Label == root.Module.Exit {
			break
		}

		prevCycle := ctx.Cycle
		primary, _, err := s.Exec.Execute(ctx)
		if err != nil {
			return nil, err
		}
		ctx = primary

		if ctx.Cycle != prevCycle && ctx.Cycle < len(tc.Inputs) {
			applyValuations(ctx, tc.Inputs[ctx.Cycle].Values, ctx.Cycle)
		}
	}

	hist.Final = ctx
	return hist, nil
}

// applyValuations overwrites each named field's version-0 binding at
// cycle with vals, rebuilding a literal symbolic term to match (Replay's
// concrete-only inputs still have to satisfy Context.Bind's dual
// concrete/symbolic signature).
func applyValuations(ctx *concolic.Context, vals []testsuite.Valuation, cycle int) {
	for _, v := range vals {
		cname := concolic.ContextualName(v.Variable, 0, cycle)
		ctx.State.Bind(cname, v.Value, literalTerm(v.Value))
	}
}

func literalTerm(v smt.Value) *smt.Term {
	facade := smt.NewFacade()
	if v.Ty == ir.Boolean {
		return facade.MakeBooleanValue(v.B)
	}
	return facade.MakeIntegerValue(v.I)
}
