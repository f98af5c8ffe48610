package ir

// Visitor is the read-only expression visitor. The dual const/non-const
// visitor pair of the original C++ model (spec.md §9) is kept as two
// interfaces: Visitor never mutates what it sees, MutVisitor (below)
// returns a rewritten expression.
type Visitor interface {
	VisitBinaryExpr(e *BinaryExpr)
	VisitUnaryExpr(e *UnaryExpr)
	VisitBooleanConst(e *BooleanConst)
	VisitIntegerConst(e *IntegerConst)
	VisitTimeConst(e *TimeConst)
	VisitEnumeratedValue(e *EnumeratedValue)
	VisitNondeterministicConst(e *NondeterministicConst)
	VisitUndefined(e *Undefined)
	VisitVariableAccess(e *VariableAccess)
	VisitFieldAccess(e *FieldAccess)
	VisitBooleanToIntegerCast(e *BooleanToIntegerCast)
	VisitIntegerToBooleanCast(e *IntegerToBooleanCast)
	VisitChangeExpr(e *ChangeExpr)
	VisitPhi(e *Phi)
}

// MutVisitor rewrites an expression, returning its (possibly new)
// replacement; children are rewritten by the visitor's own traversal
// before the parent decides what to keep.
type MutVisitor interface {
	VisitBinaryExpr(e *BinaryExpr) Expr
	VisitUnaryExpr(e *UnaryExpr) Expr
	VisitBooleanConst(e *BooleanConst) Expr
	VisitIntegerConst(e *IntegerConst) Expr
	VisitTimeConst(e *TimeConst) Expr
	VisitEnumeratedValue(e *EnumeratedValue) Expr
	VisitNondeterministicConst(e *NondeterministicConst) Expr
	VisitUndefined(e *Undefined) Expr
	VisitVariableAccess(e *VariableAccess) Expr
	VisitFieldAccess(e *FieldAccess) Expr
	VisitBooleanToIntegerCast(e *BooleanToIntegerCast) Expr
	VisitIntegerToBooleanCast(e *IntegerToBooleanCast) Expr
	VisitChangeExpr(e *ChangeExpr) Expr
	VisitPhi(e *Phi) Expr
}

// BaseVisitor is an embeddable no-op Visitor: callers override only the
// node kinds they care about and fall through to a no-op for the rest,
// the way a partial switch would.
type BaseVisitor struct{}

func (BaseVisitor) VisitBinaryExpr(e *BinaryExpr)                       {}
func (BaseVisitor) VisitUnaryExpr(e *UnaryExpr)                         {}
func (BaseVisitor) VisitBooleanConst(e *BooleanConst)                   {}
func (BaseVisitor) VisitIntegerConst(e *IntegerConst)                   {}
func (BaseVisitor) VisitTimeConst(e *TimeConst)                         {}
func (BaseVisitor) VisitEnumeratedValue(e *EnumeratedValue)             {}
func (BaseVisitor) VisitNondeterministicConst(e *NondeterministicConst) {}
func (BaseVisitor) VisitUndefined(e *Undefined)                        {}
func (BaseVisitor) VisitVariableAccess(e *VariableAccess)               {}
func (BaseVisitor) VisitFieldAccess(e *FieldAccess)                     {}
func (BaseVisitor) VisitBooleanToIntegerCast(e *BooleanToIntegerCast)   {}
func (BaseVisitor) VisitIntegerToBooleanCast(e *IntegerToBooleanCast)   {}
func (BaseVisitor) VisitChangeExpr(e *ChangeExpr)                       {}
func (BaseVisitor) VisitPhi(e *Phi)                                     {}

// Walk invokes the matching Visit* method on v for e itself, without
// descending into e's children: most visitors in this
// codebase (the Encoder, the Evaluator, the shadow dual-evaluator) recurse
// selectively rather than uniformly, so Walk only dispatches the root.
func Walk(e Expr, v Visitor) { e.Accept(v) }

// Children returns e's immediate sub-expressions, for callers (like
// uninterpreted-constant extraction) that do want uniform recursion.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *BinaryExpr:
		return []Expr{n.L, n.R}
	case *UnaryExpr:
		return []Expr{n.E}
	case *FieldAccess:
		return []Expr{n.Record, n.Inner}
	case *BooleanToIntegerCast:
		return []Expr{n.E}
	case *IntegerToBooleanCast:
		return []Expr{n.E}
	case *ChangeExpr:
		return []Expr{n.Old, n.New}
	case *Phi:
		out := make([]Expr, 0, len(n.Operands))
		for _, o := range n.Operands {
			out = append(out, o)
		}
		return out
	default:
		return nil
	}
}
