package smt

import (
	"fmt"
	"time"

	"github.com/sunholo/ahorn/internal/ir"
)

// TermKind is the closed sum of term variants this facade understands. It
// deliberately mirrors ir.Expr's binary/unary operator set rather than
// reimplementing it, so the concolic Encoder's lowering is a structural
// copy, not a re-derivation, of the IR it walks.
type TermKind int

const (
	ConstTerm TermKind = iota
	BoolLit
	IntLit
	NotTerm
	BinTerm
)

// Term is an SMT-level term: either an uninterpreted constant, a literal,
// or an operator node over sub-terms. Every uninterpreted constant carries
// the contextualized name the concolic Encoder assigned it
// (name_version__cycle, spec.md §4.4), which is what UninterpretedConstants
// reports back and what a Result's Model is keyed by.
type Term struct {
	Kind TermKind
	Name string
	Ty   ir.ExprType
	B    bool
	I    int64
	Op   ir.BinOp
	Un   ir.UnOp
	L, R *Term
	E    *Term
}

func (t *Term) String() string {
	switch t.Kind {
	case ConstTerm:
		return t.Name
	case BoolLit:
		if t.B {
			return "true"
		}
		return "false"
	case IntLit:
		return fmt.Sprintf("%d", t.I)
	case NotTerm:
		return fmt.Sprintf("NOT(%s)", t.E)
	case BinTerm:
		return fmt.Sprintf("(%s %s %s)", t.L, t.Op, t.R)
	default:
		return "?"
	}
}

// Type reports the term's static type, following the same Boolean/
// Arithmetic split as ir.Expr.Type().
func (t *Term) Type() ir.ExprType {
	switch t.Kind {
	case ConstTerm:
		return t.Ty
	case BoolLit:
		return ir.Boolean
	case IntLit:
		return ir.Arithmetic
	case NotTerm:
		return ir.Boolean
	case BinTerm:
		if t.Op.IsComparison() {
			return ir.Boolean
		}
		return ir.Arithmetic
	default:
		return ir.UndefinedType
	}
}

// Facade is the SMT construction and query surface of spec.md §4.3. Check
// and CheckUnderAssumptions are otherwise pure functions of the terms
// passed in, but Facade is a struct (rather than free functions) so a
// future swap to a real backend only touches this one file; Timeout is
// the one piece of session state it carries.
type Facade struct {
	// Timeout bounds how long Check/CheckUnderAssumptions' random-search
	// phase may run before giving up and reporting Unknown, rather than
	// exhausting solveRandomRounds unconditionally. Zero means no deadline.
	Timeout time.Duration
}

func NewFacade() *Facade { return &Facade{} }

// MakeConstant returns an uninterpreted constant of type ty named name.
// The Encoder is responsible for name's contextualization
// (spec.md §4.4: flattened name, SSA version, cycle count).
func (f *Facade) MakeConstant(name string, ty ir.ExprType) *Term {
	return &Term{Kind: ConstTerm, Name: name, Ty: ty}
}

func (f *Facade) MakeBooleanValue(b bool) *Term { return &Term{Kind: BoolLit, B: b} }
func (f *Facade) MakeIntegerValue(i int64) *Term { return &Term{Kind: IntLit, I: i} }

// MakeDefaultValue returns the zero-value literal for ty (FALSE or 0,
// spec.md §3.3's per-type default).
func (f *Facade) MakeDefaultValue(ty ir.ExprType) *Term {
	if ty == ir.Boolean {
		return f.MakeBooleanValue(false)
	}
	return f.MakeIntegerValue(0)
}

// MakeRandomValue draws a literal of type ty from src (spec.md §4.3's
// make_random_value, the one place non-determinism is allowed to enter).
func (f *Facade) MakeRandomValue(ty ir.ExprType, src RandSource) *Term {
	if ty == ir.Boolean {
		return f.MakeBooleanValue(src.Bool())
	}
	return f.MakeIntegerValue(src.Int())
}

// RandSource is the subset of randsrc.Source this package needs, kept as a
// narrow local interface so smt does not import randsrc (the dependency
// runs the other way: randsrc is ambient, smt is domain logic consuming it
// via this interface, the same inversion the teacher's effects package
// applies to its capability contexts).
type RandSource interface {
	Bool() bool
	Int() int64
}

// MakeValue converts an IR scalar literal into a Term. Enumerated values
// are not handled here: their tag ordering lives in the owning DataType,
// so the Encoder resolves the tag to its integer index itself and calls
// MakeIntegerValue directly.
func (f *Facade) MakeValue(e ir.Expr) (*Term, error) {
	switch c := e.(type) {
	case *ir.BooleanConst:
		return f.MakeBooleanValue(c.Value), nil
	case *ir.IntegerConst:
		return f.MakeIntegerValue(c.Value), nil
	case *ir.TimeConst:
		return f.MakeIntegerValue(c.Millis), nil
	default:
		return nil, fmt.Errorf("smt: MakeValue: not a scalar literal: %T", e)
	}
}

// LiteralValue converts a literal term (BoolLit/IntLit) to a Value; ok is
// false for any other term kind.
func LiteralValue(t *Term) (Value, bool) {
	switch t.Kind {
	case BoolLit:
		return BoolValue(t.B), true
	case IntLit:
		return IntValue(t.I), true
	default:
		return Value{}, false
	}
}

func (f *Facade) Not(e *Term) *Term { return &Term{Kind: NotTerm, E: e} }

func (f *Facade) Bin(op ir.BinOp, l, r *Term) *Term {
	return &Term{Kind: BinTerm, Op: op, L: l, R: r}
}

// UninterpretedConstants returns the distinct constant names free in t,
// in first-seen order — the set the fork decision procedure (spec.md
// §4.5.2) checks is non-empty before attempting a query.
func (f *Facade) UninterpretedConstants(t *Term) []string {
	seen := map[string]bool{}
	var order []string
	var walk func(*Term)
	walk = func(n *Term) {
		if n == nil {
			return
		}
		switch n.Kind {
		case ConstTerm:
			if !seen[n.Name] {
				seen[n.Name] = true
				order = append(order, n.Name)
			}
		case NotTerm:
			walk(n.E)
		case BinTerm:
			walk(n.L)
			walk(n.R)
		}
	}
	walk(t)
	return order
}
