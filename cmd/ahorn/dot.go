package main

import (
	"fmt"
	"os"

	"github.com/sunholo/ahorn/internal/passes"
	"github.com/sunholo/ahorn/internal/program"
)

func runDot(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("dot: expected a program.json path")
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
	fmt.Print(proj.ToDot())
	return nil
}
