// Package testsuite implements spec.md §4.7's coverage-driven artifact: a
// TestCase is a root-frame initial concrete state plus the per-cycle
// concrete input valuations that drove one context to a coverage
// increase; a TestSuite is the ordered, de-duplicated collection of them,
// (de)serialized per spec.md §6.2's XML schema.
package testsuite

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/concolic"
	"github.com/sunholo/ahorn/internal/ir"
	"github.com/sunholo/ahorn/internal/smt"
)

// Valuation is one scope.name -> literal binding.
type Valuation struct {
	Variable string
	Value    smt.Value
}

// CycleInputs is the whole-program input bindings a single cycle chose.
type CycleInputs struct {
	Cycle  int
	Values []Valuation
}

// TestCase is spec.md §4.7's derived witness.
type TestCase struct {
	Initialization []Valuation
	Inputs         []CycleInputs
}

// Key returns a deterministic string identifying tc's (initial-state,
// input-sequence) pair, used to dedup a TestSuite on insertion.
func (tc *TestCase) Key() string {
	var b strings.Builder
	for _, v := range tc.Initialization {
		fmt.Fprintf(&b, "%s=%s;", v.Variable, v.Value.String())
	}
	b.WriteByte('|')
	for _, in := range tc.Inputs {
		fmt.Fprintf(&b, "@%d:", in.Cycle)
		for _, v := range in.Values {
			fmt.Fprintf(&b, "%s=%s;", v.Variable, v.Value.String())
		}
	}
	return b.String()
}

// Derive packages ctx's root-frame initial concrete state (version 0,
// cycle 0, for every non-input field) and the concrete input valuations
// every cycle from 0 through ctx.Cycle bound (version 0 of that cycle) into
// a TestCase (spec.md §4.7's "Test-case derivation").
func Derive(ctx *concolic.Context, rootCFG *cfg.CFG, resolver ir.TypeResolver) (*TestCase, error) {
	fields := rootCFG.Module.Iface.Flatten(resolver)
	inputs := whollyProgramInputs(rootCFG)

	tc := &TestCase{}
	var nonInputNames, inputNames []string
	for _, fld := range fields {
		if inputs[fld.Name] {
			inputNames = append(inputNames, fld.Name)
		} else {
			nonInputNames = append(nonInputNames, fld.Name)
		}
	}
	sort.Strings(nonInputNames)
	sort.Strings(inputNames)

	for _, name := range nonInputNames {
		cname := concolic.ContextualName(name, 0, 0)
		v, ok := ctx.State.Concrete[cname]
		if !ok {
			continue
		}
		tc.Initialization = append(tc.Initialization, Valuation{Variable: name, Value: v})
	}

	for cycle := 0; cycle <= ctx.Cycle; cycle++ {
		var values []Valuation
		for _, name := range inputNames {
			cname := concolic.ContextualName(name, 0, cycle)
			v, ok := ctx.State.Concrete[cname]
			if !ok {
				continue
			}
			values = append(values, Valuation{Variable: name, Value: v})
		}
		if len(values) == 0 {
			continue
		}
		tc.Inputs = append(tc.Inputs, CycleInputs{Cycle: cycle, Values: values})
	}
	return tc, nil
}

func whollyProgramInputs(rootCFG *cfg.CFG) map[string]bool {
	inputs := map[string]bool{}
	for _, v := range rootCFG.Module.Iface.Variables() {
		if v.Storage == ir.Input && v.Type.Kind != ir.DerivedKind {
			inputs[v.Name] = true
		}
	}
	return inputs
}
