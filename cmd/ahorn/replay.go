package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/sunholo/ahorn/internal/config"
	"github.com/sunholo/ahorn/internal/passes"
	"github.com/sunholo/ahorn/internal/program"
	"github.com/sunholo/ahorn/internal/randsrc"
	"github.com/sunholo/ahorn/internal/shadow"
	"github.com/sunholo/ahorn/internal/smt"
	"github.com/sunholo/ahorn/internal/testsuite"
)

func runReplay(args []string, cfg config.Config) error {
	if len(args) < 2 {
		return fmt.Errorf("replay: expected <testsuite-dir> <program.json>")
	}
	suiteDir, programPath := args[0], args[1]

	suite, err := testsuite.ReadDir(suiteDir)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(programPath)
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

	sim := shadow.NewSimulator(proj, randsrc.New(cfg.Seed))
	sim.Exec.Facade.Timeout = cfg.SolverTimeout
	for i, tc := range suite.Cases {
		maxSteps := (len(tc.Inputs) + 1) * stepsPerCycle
		hist, err := sim.Replay(tc, maxSteps)
		if err != nil {
			return fmt.Errorf("test case %d: %w", i, err)
		}
		fmt.Printf("%s case %d: %d step(s), ended at cycle %d\n", cyan("replay:"), i, len(hist.Steps), hist.Final.Cycle)
		printValuations(hist.Final.State.Concrete)
	}
	return nil
}

func printValuations(concrete map[string]smt.Value) {
	var names []string
	for name := range concrete {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s = %s\n", name, concrete[name])
	}
}
