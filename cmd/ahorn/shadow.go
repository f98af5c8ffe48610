package main

import (
	"fmt"
	"os"

	"github.com/sunholo/ahorn/internal/config"
	"github.com/sunholo/ahorn/internal/errors"
	"github.com/sunholo/ahorn/internal/explorer"
	"github.com/sunholo/ahorn/internal/passes"
	"github.com/sunholo/ahorn/internal/program"
	"github.com/sunholo/ahorn/internal/randsrc"
	"github.com/sunholo/ahorn/internal/shadow"
	"github.com/sunholo/ahorn/internal/testsuite"
)

// runShadow drives the shadow divergence engine (C7) over a unified
// old/new program with the same coverage-driven bookkeeping C8 gives the
// plain explorer (statement coverage, derived test cases), plus a running
// tally of how many steps landed in each shadow.Status. The BFS worklist
// is kept local to this command rather than reusing explorer.Explorer,
// since that type's queue and Execute signature are both specific to the
// plain, single-fork executor.Executor.
func runShadow(args []string, cfg config.Config) error {
	if len(args) < 1 {
		return fmt.Errorf("shadow: expected a unified-program.json path")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	modules, main, err := program.Decode(data)
	if err != nil {
		return err
	}
	proj, err := passes.LowerProject(modules, main)
	if err != nil {
		return err
	}
	root, ok := proj.Main()
	if !ok {
		return errors.InvalidIR("shadow", "project has no designated main module")
	}

	ex := shadow.New(proj, randsrc.New(cfg.Seed))
	ex.Facade.Timeout = cfg.SolverTimeout
	cov := explorer.NewCoverage(proj)
	suite := testsuite.NewTestSuite()

	var expected, potential, divergent int
	queue := []*shadow.Context{shadow.NewRootContext(root.Name)}
	maxSteps := cfg.MaxCycles * stepsPerCycle

	for step := 0; step < maxSteps && len(queue) > 0; step++ {
		ctx := queue[0]
		queue = queue[1:]
		prevLoc := explorer.Loc{CFG: ctx.State.Location.CFG, Label: ctx.State.Location.Label}

		primary, forked, status, err := ex.Execute(ctx)
		if err != nil {
			return err
		}
		switch status {
		case shadow.ExpectedBehavior:
			expected++
		case shadow.PotentialDivergentBehavior:
			potential++
		case shadow.DivergentBehavior:
			divergent++
		}

		if cov.Visit(prevLoc) && primary != nil {
			tc, err := testsuite.Derive(primary.Context, root, proj)
			if err != nil {
				return err
			}
			suite.Add(tc)
		}
		if primary != nil {
			queue = append(queue, primary)
		}
		queue = append(queue, forked...)
	}

	if err := suite.WriteDir(cfg.OutDir); err != nil {
		return err
	}

	fmt.Printf("%s statement coverage %.1f%%\n", cyan("shadow:"), cov.StatementRatio()*100)
	fmt.Printf("expected=%d potential-divergent=%d divergent=%d\n", expected, potential, divergent)
	if divergent > 0 {
		fmt.Println(yellow("divergent behavior detected — see test suite for reproducing inputs"))
	}
	fmt.Printf("wrote %d test case(s) to %s\n", len(suite.Cases), cfg.OutDir)
	return nil
}
