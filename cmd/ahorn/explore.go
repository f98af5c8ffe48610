package main

import (
	"fmt"
	"os"

	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/config"
	"github.com/sunholo/ahorn/internal/executor"
	"github.com/sunholo/ahorn/internal/explorer"
	"github.com/sunholo/ahorn/internal/passes"
	"github.com/sunholo/ahorn/internal/program"
	"github.com/sunholo/ahorn/internal/randsrc"
)

// stepsPerCycle bounds how many vertices a single controller cycle can
// plausibly visit (entry, a handful of branches, exit); explorer.Run's
// budget is a step count, not a cycle count, so cycles is scaled into one.
const stepsPerCycle = 64

// parseShadowMode maps Config.ShadowMode onto the plain executor's
// concolic.ShadowMode. "both" has no meaning for a single (non-dual)
// context and is rejected; use the shadow subcommand for that.
func parseShadowMode(s string) (concolic.ShadowMode, error) {
	switch s {
	case "", "none":
		return concolic.None, nil
	case "old":
		return concolic.Old, nil
	case "new":
		return concolic.New, nil
	case "both":
		return concolic.None, fmt.Errorf("explore: shadow-mode %q is only meaningful for the shadow subcommand", s)
	default:
		return concolic.None, fmt.Errorf("explore: unknown shadow-mode %q (want none|old|new)", s)
	}
}

func runExplore(args []string, cfg config.Config) error {
	if len(args) < 1 {
		return fmt.Errorf("explore: expected a program.json path")
	}
	mode, err := parseShadowMode(cfg.ShadowMode)
	if err != nil {
		return err
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

	rand := randsrc.New(cfg.Seed)
	ex := executor.New(proj, rand)
	initial, err := ex.Bootstrap()
	if err != nil {
		return err
	}

	exp := explorer.New(proj, rand)
	exp.Exec.Facade.Timeout = cfg.SolverTimeout
	exp.Exec.Enc.Mode = mode
	exp.Exec.Eval.Mode = mode
	if err := exp.Run(initial, cfg.MaxCycles*stepsPerCycle); err != nil {
		return err
	}

	if err := exp.Suite.WriteDir(cfg.OutDir); err != nil {
		return err
	}

	fmt.Printf("%s statement coverage %.1f%%, branch coverage %.1f%%\n",
		green("explore:"), exp.Cov.StatementRatio()*100, exp.Cov.BranchRatio()*100)
	fmt.Printf("wrote %d test case(s) to %s\n", len(exp.Suite.Cases), cfg.OutDir)
	return nil
}
