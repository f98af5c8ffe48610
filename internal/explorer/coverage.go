// Package explorer implements spec.md §4.7's priority-queued exploration
// driver: it pops one context at a time, steps it through
// internal/executor, folds the label(s) it touched into a project-wide
// coverage map, and whenever that coverage map grows, packages the
// context's history into a internal/testsuite.TestCase.
package explorer

import (
	"github.com/sunholo/ahorn/internal/cfg"
	"github.com/sunholo/ahorn/internal/ir"
)

// Loc addresses one vertex project-wide: labels are only unique within
// their own CFG, so coverage is keyed by the (CFG, label) pair.
type Loc struct {
	CFG   string
	Label ir.Label
}

// BranchCoverage tracks which direction(s) of an If/While have been taken.
type BranchCoverage struct {
	TrueSeen, FalseSeen bool
}

// Coverage is spec.md §4.7's two coverage maps, seeded false for every
// vertex (covered_statements) and every If/While (covered_branches) across
// every CFG in the project. A Sequence can never itself terminate in an
// If in this pipeline — internal/passes/block always keeps an If as its
// own singleton leader block — so the spec's "Sequences terminating in an
// If" case never arises here and covered_branches is seeded from If/While
// vertices only.
type Coverage struct {
	Statements map[Loc]bool
	Branches   map[Loc]*BranchCoverage
}

// NewCoverage seeds a Coverage map over every CFG currently registered in
// proj.
func NewCoverage(proj *cfg.Project) *Coverage {
	cov := &Coverage{Statements: map[Loc]bool{}, Branches: map[Loc]*BranchCoverage{}}
	for _, name := range proj.Names() {
		c, ok := proj.Lookup(name)
		if !ok {
			continue
		}
		for _, label := range c.SortedLabels() {
			v, ok := c.GetVertex(label)
			if !ok {
				continue
			}
			loc := Loc{CFG: name, Label: label}
			cov.Statements[loc] = false
			switch v.Instr.(type) {
			case *ir.If, *ir.While:
				cov.Branches[loc] = &BranchCoverage{}
			}
		}
	}
	return cov
}

// Visit flips loc's statement coverage to true (the label just left,
// spec.md §4.7) and reports whether this was the first time.
func (cov *Coverage) Visit(loc Loc) bool {
	if cov.Statements[loc] {
		return false
	}
	cov.Statements[loc] = true
	return true
}

// VisitBranch records that loc's branch took the true (or false) arm,
// reporting whether this increased branch coverage.
func (cov *Coverage) VisitBranch(loc Loc, taken bool) bool {
	b, ok := cov.Branches[loc]
	if !ok {
		return false
	}
	if taken {
		if b.TrueSeen {
			return false
		}
		b.TrueSeen = true
		return true
	}
	if b.FalseSeen {
		return false
	}
	b.FalseSeen = true
	return true
}

// StatementRatio and BranchRatio are spec.md §4.7's "simple ratios".
func (cov *Coverage) StatementRatio() float64 {
	if len(cov.Statements) == 0 {
		return 1
	}
	var seen int
	for _, v := range cov.Statements {
		if v {
			seen++
		}
	}
	return float64(seen) / float64(len(cov.Statements))
}

func (cov *Coverage) BranchRatio() float64 {
	total := len(cov.Branches) * 2
	if total == 0 {
		return 1
	}
	var seen int
	for _, b := range cov.Branches {
		if b.TrueSeen {
			seen++
		}
		if b.FalseSeen {
			seen++
		}
	}
	return float64(seen) / float64(total)
}
