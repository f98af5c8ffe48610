package explorer

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/executor"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/randsrc"
	"github.com/sunholo/ahorn/internal/testsuite"
)

// Explorer is spec.md §4.7's single-threaded driver: pop the
// highest-priority context off Queue, step it through Exec, fold the
// label(s) touched into Cov, and package a TestCase into Suite whenever
// that folding increases coverage.
type Explorer struct {
	Proj  *cfg.Project
	Exec  *executor.Executor
	Cov   *Coverage
	Suite *testsuite.TestSuite
	Queue *Queue
}

func New(proj *cfg.Project, rand *randsrc.Source) *Explorer {
	return &Explorer{
		Proj:  proj,
		Exec:  executor.New(proj, rand),
		Cov:   NewCoverage(proj),
		Suite: testsuite.NewTestSuite(),
		Queue: NewQueue(),
	}
}

// Run seeds the queue with initial and pops/steps/pushes up to maxSteps
// times, or until the queue empties, whichever comes first.
func (ex *Explorer) Run(initial *concolic.Context, maxSteps int) error {
	ex.Queue.Push(initial)
	for i := 0; i < maxSteps; i++ {
		ctx, ok := ex.Queue.Pop()
		if !ok {
			return nil
		}
		next, err := ex.step(ctx)
		if err != nil {
			return err
		}
		for _, n := range next {
			ex.Queue.Push(n)
		}
	}
	return nil
}

func (ex *Explorer) step(ctx *concolic.Context) ([]*concolic.Context, error) {
	prevLoc := Loc{CFG: ctx.State.Location.CFG, Label: ctx.State.Location.Label}
	c, ok := ex.Proj.Lookup(ctx.State.Location.CFG)
	if !ok {
		return nil, errors.InvalidIR("explorer", "unknown CFG %q", ctx.State.Location.CFG)
	}
	v, ok := c.GetVertex(ctx.State.Location.Label)
	if !ok {
		return nil, errors.InvalidIR("explorer", "no vertex %d in %s", ctx.State.Location.Label, c.Name)
	}

	primary, forked, err := ex.Exec.Execute(ctx)
	if err != nil {
		return nil, err
	}

	if ex.Cov.Visit(prevLoc) {
		if err := ex.recordTestCase(primary); err != nil {
			return nil, err
		}
	}
	if primary != nil {
		if err := ex.recordBranch(prevLoc, v, primary); err != nil {
			return nil, err
		}
	}

	var next []*concolic.Context
	if primary != nil {
		next = append(next, primary)
	}
	if forked != nil {
		if err := ex.recordBranch(prevLoc, v, forked); err != nil {
			return nil, err
		}
		next = append(next, forked)
	}
	return next, nil
}

func (ex *Explorer) recordBranch(loc Loc, v *cfg.Vertex, ctx *concolic.Context) error {
	dir, ok := branchDirection(v, ctx.State.Location.Label)
	if !ok {
		return nil
	}
	if ex.Cov.VisitBranch(loc, dir) {
		return ex.recordTestCase(ctx)
	}
	return nil
}

func (ex *Explorer) recordTestCase(ctx *concolic.Context) error {
	root, ok := ex.Proj.Main()
	if !ok {
		return errors.InvalidIR("explorer", "project has no designated main module")
	}
	tc, err := testsuite.Derive(ctx, root, ex.Proj)
	if err != nil {
		return err
	}
	ex.Suite.Add(tc)
	return nil
}

// branchDirection reports whether newLabel is v's true or false successor,
// for v an If or While vertex; ok is false for anything else.
func branchDirection(v *cfg.Vertex, newLabel ir.Label) (taken bool, ok bool) {
	switch instr := v.Instr.(type) {
	case *ir.If:
		switch newLabel {
		case instr.ThenGoto:
			return true, true
		case instr.ElseGoto:
			return false, true
		}
	case *ir.While:
		switch newLabel {
		case instr.BodyEntry:
			return true, true
		case instr.ExitGoto:
			return false, true
		}
	}
	return false, false
}
