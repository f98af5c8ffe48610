// Command ahorn is the CLI driver for the concolic execution engine
// (SPEC_FULL.md §6.5): it loads a program.json fixture, runs the explorer
// or shadow divergence engine over it, and reports coverage and derived
// test cases. Dispatch style and color output are grounded on the
// teacher's cmd/ailang/main.go.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sunholo/ahorn/internal/config"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	cfg := config.FromEnv()
	if path := os.Getenv("AHORN_CONFIG_FILE"); path != "" {
		var err error
		cfg, err = config.LoadFile(cfg, path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
			os.Exit(1)
		}
	}

	var (
		cyclesFlag = flag.Int("cycles", cfg.MaxCycles, "number of controller cycles to budget exploration for")
		outFlag    = flag.String("out", cfg.OutDir, "directory to write the derived test suite into")
		seedFlag   = flag.Int64("seed", cfg.Seed, "random seed (0 draws from OS entropy)")
		modeFlag   = flag.String("shadow-mode", cfg.ShadowMode, "change() resolution for explore: none|old|new (shadow always runs both)")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		printHelp()
		os.Exit(1)
	}

	command := flag.Arg(0)
	// Flags may also follow the subcommand's positional arguments (as the
	// usage text shows); flag.Parse stops at the first non-flag, so parse
	// again after each positional argument.
	var args []string
	rest := flag.Args()[1:]
	for len(rest) > 0 {
		_ = flag.CommandLine.Parse(rest) // ExitOnError: a bad flag exits
		rest = flag.Args()
		if len(rest) > 0 {
			args, rest = append(args, rest[0]), rest[1:]
		}
	}
	cfg.MaxCycles, cfg.OutDir, cfg.Seed, cfg.ShadowMode = *cyclesFlag, *outFlag, *seedFlag, *modeFlag

	var err error
	switch command {
	case "explore":
		err = runExplore(args, cfg)
	case "shadow":
		err = runShadow(args, cfg)
	case "dot":
		err = runDot(args)
	case "replay":
		err = runReplay(args, cfg)
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", red("Error"), err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(bold("ahorn - concolic execution engine for cyclic controller programs"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  ahorn explore <program.json>            [-cycles N] [-out DIR] [-shadow-mode none|old|new]")
	fmt.Println("  ahorn shadow  <unified-program.json>    [-cycles N] [-out DIR]")
	fmt.Println("  ahorn dot     <program.json>")
	fmt.Println("  ahorn replay  <testsuite-dir> <program.json>")
	fmt.Println()
	fmt.Println("Flags default to the AHORN_MAX_CYCLES/AHORN_OUT_DIR/AHORN_SEED/")
	fmt.Println("AHORN_SHADOW_MODE environment variables (and AHORN_CONFIG_FILE, a YAML")
	fmt.Println("file read on top of them), which CLI flags then override.")
}
