// Package executor drives a concolic.Context instruction-by-instruction
// across a cfg.Project (spec.md §4.5): the public contract is
// Execute(ctx) -> (primary, forked, err), dispatching on the current
// vertex's type and, for Regular vertices, on its instruction kind.
package executor

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/randsrc"
	"github.com/sunholo/ahorn/internal/smt"
)

// Executor holds the collaborators a single execution step needs: the
// module registry, the SMT facade, the Encoder/Evaluator pair, and a
// random source for Havoc and cycle-boundary input re-symbolization.
type Executor struct {
	Proj   *cfg.Project
	Facade *smt.Facade
	Enc    *concolic.Encoder
	Eval   *concolic.Evaluator
	Rand   *randsrc.Source
}

func New(proj *cfg.Project, rand *randsrc.Source) *Executor {
	return &Executor{
		Proj:   proj,
		Facade: smt.NewFacade(),
		Enc:    concolic.NewEncoder(proj),
		Eval:   concolic.NewEvaluator(proj),
		Rand:   rand,
	}
}

// Execute advances ctx by exactly one vertex. primary is ctx itself,
// mutated in place and returned for call-site convenience; forked is
// non-nil only when an If/While vertex's untaken branch was feasible
// (spec.md §4.5.2).
func (e *Executor) Execute(ctx *concolic.Context) (primary, forked *concolic.Context, err error) {
	c, ok := e.Proj.Lookup(ctx.State.Location.CFG)
	if !ok {
		return nil, nil, errors.InvalidIR("executor", "unknown CFG %q", ctx.State.Location.CFG)
	}
	v, ok := c.GetVertex(ctx.State.Location.Label)
	if !ok {
		return nil, nil, errors.InvalidIR("executor", "no vertex %d in %s", ctx.State.Location.Label, c.Name)
	}

	switch v.Type {
	case cfg.Entry:
		return e.execEntry(ctx, c, v)
	case cfg.Exit:
		return e.execExit(ctx, c)
	default:
		return e.dispatchInstr(ctx, c, v)
	}
}

func (e *Executor) execEntry(ctx *concolic.Context, c *cfg.CFG, v *cfg.Vertex) (*concolic.Context, *concolic.Context, error) {
	if c.Module.Kind == ir.FunctionKind {
		return nil, nil, errors.NotSupported("executor", "FUNCTION entry: functions are not supported")
	}
	edge, ok := c.IntraproceduralEdge(v.Label)
	if !ok {
		return nil, nil, errors.InvalidIR("executor", "entry vertex %d of %s has no intraprocedural successor", v.Label, c.Name)
	}
	ctx.State.Location.Label = edge.To
	return ctx, nil, nil
}

func (e *Executor) execExit(ctx *concolic.Context, c *cfg.CFG) (*concolic.Context, *concolic.Context, error) {
	switch c.Module.Kind {
	case ir.ProgramKind:
		return e.closeCycle(ctx, c)
	case ir.FunctionBlockKind:
		frame, ok := ctx.Pop()
		if !ok {
			return nil, nil, errors.InvalidIR("executor", "exit of %s with empty call stack", c.Name)
		}
		if len(ctx.Stack) == 0 {
			return nil, nil, errors.InvalidIR("executor", "call stack underflow returning from %s", c.Name)
		}
		caller := ctx.Stack[len(ctx.Stack)-1]
		ctx.State.Location = concolic.Location{CFG: caller.CFG, Label: frame.ReturnLabel}
		return ctx, nil, nil
	default:
		return nil, nil, errors.NotSupported("executor", "FUNCTION exit: functions are not supported")
	}
}
