package smt

import (
	"math/rand"
	"time"

	"github.com/sunholo/ahorn/internal/ir"
)

// Check reports whether the conjunction of terms is satisfiable, returning
// a witness model on Sat (spec.md §4.3).
func (f *Facade) Check(terms []*Term) (Result, error) {
	return solve(conjoin(terms), f.Timeout)
}

// CheckUnderAssumptions is Check over terms conjoined with assumptions —
// the fork decision procedure (spec.md §4.5.2) uses this to test a branch
// condition against the accumulated path constraint without mutating it.
func (f *Facade) CheckUnderAssumptions(terms, assumptions []*Term) (Result, error) {
	all := make([]*Term, 0, len(terms)+len(assumptions))
	all = append(all, terms...)
	all = append(all, assumptions...)
	return solve(conjoin(all), f.Timeout)
}

func conjoin(terms []*Term) *Term {
	if len(terms) == 0 {
		return &Term{Kind: BoolLit, B: true}
	}
	acc := terms[0]
	for _, t := range terms[1:] {
		acc = &Term{Kind: BinTerm, Op: ir.And, L: acc, R: t}
	}
	return acc
}

// solveRandomRounds bounds the bounded-model search's fallback phase. It is
// a simplification this package accepts in place of a complete decision
// procedure (DESIGN.md): most formulas the concolic executor poses are
// conjunctions of simple linear comparisons against literals, which the
// direct atom-seeding phase below solves exactly; the random phase exists
// to still find a witness for conjunctions of disjunctions or multi-
// variable linear relations that seeding cannot resolve directly.
const solveRandomRounds = 2000

// solve is the SMT facade's decision procedure. It is not complete: Unsat
// is reported when neither direct atom-seeding nor bounded random search
// finds a witness, which for formulas outside the conjunctive-linear
// fragment is an approximation of true unsatisfiability rather than a
// proof of it. Unknown is reserved for formulas that could never be
// evaluated to a boolean at all (e.g. every candidate model hits a
// division by zero), or for random search aborted early by timeout before
// a witness was found either way.
func solve(formula *Term, timeout time.Duration) (Result, error) {
	names, types := freeConstants(formula)
	if len(names) == 0 {
		v, err := evalGround(formula, map[string]Value{})
		if err != nil {
			return Result{Kind: Unknown}, nil
		}
		if v.AsBool() {
			return Result{Kind: Sat, Model: map[string]Value{}}, nil
		}
		return Result{Kind: Unsat}, nil
	}

	model := make(map[string]Value, len(names))
	for _, n := range names {
		model[n] = defaultFor(types[n])
	}

	for _, atom := range flattenAnd(formula) {
		seedAtom(atom, model)
	}
	if v, err := evalGround(formula, model); err == nil && v.AsBool() {
		return Result{Kind: Sat, Model: cloneModel(model)}, nil
	}

	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	rng := rand.New(rand.NewSource(1))
	evaluated := false
	bound := int64(16)
	for iter := 0; iter < solveRandomRounds; iter++ {
		if !deadline.IsZero() && iter%50 == 0 && time.Now().After(deadline) {
			return Result{Kind: Unknown}, nil
		}
		if iter > 0 && iter%200 == 0 {
			bound *= 4
		}
		for _, n := range names {
			if types[n] == ir.Boolean {
				model[n] = BoolValue(rng.Intn(2) == 1)
			} else {
				model[n] = IntValue(rng.Int63n(2*bound+1) - bound)
			}
		}
		v, err := evalGround(formula, model)
		if err != nil {
			continue
		}
		evaluated = true
		if v.AsBool() {
			return Result{Kind: Sat, Model: cloneModel(model)}, nil
		}
	}
	if !evaluated {
		return Result{Kind: Unknown}, nil
	}
	return Result{Kind: Unsat}, nil
}

func defaultFor(ty ir.ExprType) Value {
	if ty == ir.Boolean {
		return BoolValue(false)
	}
	return IntValue(0)
}

func cloneModel(model map[string]Value) map[string]Value {
	out := make(map[string]Value, len(model))
	for k, v := range model {
		out[k] = v
	}
	return out
}

// flattenAnd splits a top-level conjunction into its conjuncts; anything
// that isn't itself a top-level AND is returned as a single atom.
func flattenAnd(t *Term) []*Term {
	if t.Kind == BinTerm && t.Op == ir.And {
		return append(flattenAnd(t.L), flattenAnd(t.R)...)
	}
	return []*Term{t}
}

// seedAtom inspects a single conjunct and, where it recognizes a direct
// comparison between an uninterpreted constant and a literal, writes a
// witness value for that constant directly into model. Atoms it doesn't
// recognize (disjunctions, multi-variable relations) are left for the
// random-search fallback in solve.
func seedAtom(atom *Term, model map[string]Value) {
	switch atom.Kind {
	case ConstTerm:
		model[atom.Name] = BoolValue(true)
	case NotTerm:
		if atom.E.Kind == ConstTerm {
			model[atom.E.Name] = BoolValue(false)
		}
	case BinTerm:
		if c, lit, flipped, ok := constLitOperands(atom); ok {
			if v, ok := witnessFor(atom.Op, lit, flipped); ok {
				model[c.Name] = v
			}
		}
	}
}

// constLitOperands reports whether atom is const OP literal or literal OP
// const, returning the constant term, the literal value, and whether the
// operands were flipped (literal first).
func constLitOperands(atom *Term) (c *Term, lit Value, flipped bool, ok bool) {
	if atom.L.Kind == ConstTerm && isLit(atom.R) {
		return atom.L, litValue(atom.R), false, true
	}
	if atom.R.Kind == ConstTerm && isLit(atom.L) {
		return atom.R, litValue(atom.L), true, true
	}
	return nil, Value{}, false, false
}

func isLit(t *Term) bool { return t.Kind == BoolLit || t.Kind == IntLit }

func litValue(t *Term) Value {
	if t.Kind == BoolLit {
		return BoolValue(t.B)
	}
	return IntValue(t.I)
}

// witnessFor picks a constant value satisfying `const OP lit` (or
// `lit OP const` when flipped, which reverses the inequality's sense).
func witnessFor(op ir.BinOp, lit Value, flipped bool) (Value, bool) {
	if flipped {
		switch op {
		case ir.Gt:
			op = ir.Lt
		case ir.Lt:
			op = ir.Gt
		case ir.Ge:
			op = ir.Le
		case ir.Le:
			op = ir.Ge
		}
	}
	switch op {
	case ir.Eq:
		return lit, true
	case ir.Ne:
		if lit.Ty == ir.Boolean {
			return BoolValue(!lit.B), true
		}
		return IntValue(lit.I + 1), true
	case ir.Gt:
		return IntValue(lit.I + 1), true
	case ir.Lt:
		return IntValue(lit.I - 1), true
	case ir.Ge:
		return IntValue(lit.I), true
	case ir.Le:
		return IntValue(lit.I), true
	default:
		return Value{}, false
	}
}
