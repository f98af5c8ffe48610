package ir

import "fmt"

// BinOp enumerates the binary operators of spec.md §3.1.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Pow
	Gt
	Lt
	Ge
	Le
	Eq
	Ne
	And
	Xor
	Or
)

var binOpSymbols = map[BinOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "mod", Pow: "**",
	Gt: ">", Lt: "<", Ge: ">=", Le: "<=", Eq: "=", Ne: "<>",
	And: "AND", Xor: "XOR", Or: "OR",
}

func (op BinOp) String() string { return binOpSymbols[op] }

// IsComparison reports whether op always yields a Boolean.
func (op BinOp) IsComparison() bool {
	switch op {
	case Gt, Lt, Ge, Le, Eq, Ne, And, Xor, Or:
		return true
	default:
		return false
	}
}

// UnOp enumerates unary operators.
type UnOp int

const (
	Neg UnOp = iota
	Not
)

func (op UnOp) String() string {
	if op == Not {
		return "NOT"
	}
	return "-"
}

// Expr is the closed sum of expression variants from spec.md §3.1. Every
// node is deep-cloneable and carries a static ExprType. The unexported tag
// method closes the interface to this package's variants, the same way the
// teacher's core.CoreExpr closes over coreExpr().
type Expr interface {
	Type() ExprType
	Clone() Expr
	String() string
	Accept(v Visitor)
	AcceptMut(v MutVisitor) Expr
	exprTag()
}

// BinaryExpr is op(L, R).
type BinaryExpr struct {
	Op   BinOp
	L, R Expr
}

func (e *BinaryExpr) exprTag() {}
func (e *BinaryExpr) Type() ExprType {
	if e.Op.IsComparison() {
		return Boolean
	}
	return Arithmetic
}
func (e *BinaryExpr) Clone() Expr { return &BinaryExpr{Op: e.Op, L: e.L.Clone(), R: e.R.Clone()} }
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.L, e.Op, e.R)
}
func (e *BinaryExpr) Accept(v Visitor) { v.VisitBinaryExpr(e) }
func (e *BinaryExpr) AcceptMut(v MutVisitor) Expr { return v.VisitBinaryExpr(e) }

// UnaryExpr is op(E).
type UnaryExpr struct {
	Op UnOp
	E  Expr
}

func (e *UnaryExpr) exprTag() {}
func (e *UnaryExpr) Type() ExprType {
	if e.Op == Not {
		return Boolean
	}
	return Arithmetic
}
func (e *UnaryExpr) Clone() Expr              { return &UnaryExpr{Op: e.Op, E: e.E.Clone()} }
func (e *UnaryExpr) String() string           { return fmt.Sprintf("%s%s", e.Op, e.E) }
func (e *UnaryExpr) Accept(v Visitor)         { v.VisitUnaryExpr(e) }
func (e *UnaryExpr) AcceptMut(v MutVisitor) Expr { return v.VisitUnaryExpr(e) }

// BooleanConst is a literal boolean.
type BooleanConst struct{ Value bool }

func (e *BooleanConst) exprTag()               {}
func (e *BooleanConst) Type() ExprType          { return Boolean }
func (e *BooleanConst) Clone() Expr             { return &BooleanConst{Value: e.Value} }
func (e *BooleanConst) String() string          { return fmtValue(e.Value) }
func (e *BooleanConst) Accept(v Visitor)        { v.VisitBooleanConst(e) }
func (e *BooleanConst) AcceptMut(v MutVisitor) Expr { return v.VisitBooleanConst(e) }

// IntegerConst is a literal integer.
type IntegerConst struct{ Value int64 }

func (e *IntegerConst) exprTag()               {}
func (e *IntegerConst) Type() ExprType          { return Arithmetic }
func (e *IntegerConst) Clone() Expr             { return &IntegerConst{Value: e.Value} }
func (e *IntegerConst) String() string          { return fmt.Sprintf("%d", e.Value) }
func (e *IntegerConst) Accept(v Visitor)        { v.VisitIntegerConst(e) }
func (e *IntegerConst) AcceptMut(v MutVisitor) Expr { return v.VisitIntegerConst(e) }

// TimeConst is a literal duration in milliseconds since spec.md treats Time
// as a bounded-nonneg elementary type.
type TimeConst struct{ Millis int64 }

func (e *TimeConst) exprTag()               {}
func (e *TimeConst) Type() ExprType          { return Arithmetic }
func (e *TimeConst) Clone() Expr             { return &TimeConst{Millis: e.Millis} }
func (e *TimeConst) String() string          { return fmt.Sprintf("T#%dms", e.Millis) }
func (e *TimeConst) Accept(v Visitor)        { v.VisitTimeConst(e) }
func (e *TimeConst) AcceptMut(v MutVisitor) Expr { return v.VisitTimeConst(e) }

// EnumeratedValue names one tag of an enumerated type.
type EnumeratedValue struct {
	Enum string
	Tag  string
}

func (e *EnumeratedValue) exprTag()               {}
func (e *EnumeratedValue) Type() ExprType          { return Arithmetic }
func (e *EnumeratedValue) Clone() Expr             { return &EnumeratedValue{Enum: e.Enum, Tag: e.Tag} }
func (e *EnumeratedValue) String() string          { return e.Enum + "#" + e.Tag }
func (e *EnumeratedValue) Accept(v Visitor)        { v.VisitEnumeratedValue(e) }
func (e *EnumeratedValue) AcceptMut(v MutVisitor) Expr { return v.VisitEnumeratedValue(e) }

// NondeterministicConst stands for an unconstrained value of type Ty. The
// Encoder and Evaluator reject it; Havoc dispatch binds the fresh symbolic
// constant itself.
type NondeterministicConst struct{ Ty ExprType }

func (e *NondeterministicConst) exprTag()      {}
func (e *NondeterministicConst) Type() ExprType { return e.Ty }
func (e *NondeterministicConst) Clone() Expr    { return &NondeterministicConst{Ty: e.Ty} }
func (e *NondeterministicConst) String() string { return "*" }
func (e *NondeterministicConst) Accept(v Visitor) { v.VisitNondeterministicConst(e) }
func (e *NondeterministicConst) AcceptMut(v MutVisitor) Expr {
	return v.VisitNondeterministicConst(e)
}

// Undefined marks a value that has never been assigned.
type Undefined struct{}

func (e *Undefined) exprTag()               {}
func (e *Undefined) Type() ExprType          { return UndefinedType }
func (e *Undefined) Clone() Expr             { return &Undefined{} }
func (e *Undefined) String() string          { return "UNDEFINED" }
func (e *Undefined) Accept(v Visitor)        { v.VisitUndefined(e) }
func (e *Undefined) AcceptMut(v MutVisitor) Expr { return v.VisitUndefined(e) }

// VariableAccess reads a variable by name.
type VariableAccess struct {
	Name string
	Ty   ExprType
}

func (e *VariableAccess) exprTag()               {}
func (e *VariableAccess) Type() ExprType          { return e.Ty }
func (e *VariableAccess) Clone() Expr             { return &VariableAccess{Name: e.Name, Ty: e.Ty} }
func (e *VariableAccess) String() string          { return e.Name }
func (e *VariableAccess) Accept(v Visitor)        { v.VisitVariableAccess(e) }
func (e *VariableAccess) AcceptMut(v MutVisitor) Expr { return v.VisitVariableAccess(e) }

// FieldAccess reads record.inner. Invariant: Inner is itself a
// *VariableAccess or *FieldAccess (spec.md §3.1); its rendered name is
// record.inner.Name-equivalent, i.e. the dotted path through Inner.
type FieldAccess struct {
	Record Expr
	Inner  Expr // *VariableAccess or *FieldAccess
	Ty     ExprType
}

func (e *FieldAccess) exprTag()      {}
func (e *FieldAccess) Type() ExprType { return e.Ty }
func (e *FieldAccess) Clone() Expr {
	return &FieldAccess{Record: e.Record.Clone(), Inner: e.Inner.Clone(), Ty: e.Ty}
}
func (e *FieldAccess) String() string          { return fmt.Sprintf("%s.%s", e.Record, e.Inner) }
func (e *FieldAccess) Accept(v Visitor)        { v.VisitFieldAccess(e) }
func (e *FieldAccess) AcceptMut(v MutVisitor) Expr { return v.VisitFieldAccess(e) }

// Name returns the flattened dotted path record.inner.
func (e *FieldAccess) Name() string {
	if va, ok := e.Record.(*VariableAccess); ok {
		return va.Name + "." + innerName(e.Inner)
	}
	if fa, ok := e.Record.(*FieldAccess); ok {
		return fa.Name() + "." + innerName(e.Inner)
	}
	return innerName(e.Inner)
}

func innerName(e Expr) string {
	switch n := e.(type) {
	case *VariableAccess:
		return n.Name
	case *FieldAccess:
		return n.Name()
	default:
		return e.String()
	}
}

// BooleanToIntegerCast widens a Boolean expression to Arithmetic.
type BooleanToIntegerCast struct{ E Expr }

func (e *BooleanToIntegerCast) exprTag()      {}
func (e *BooleanToIntegerCast) Type() ExprType { return Arithmetic }
func (e *BooleanToIntegerCast) Clone() Expr   { return &BooleanToIntegerCast{E: e.E.Clone()} }
func (e *BooleanToIntegerCast) String() string { return fmt.Sprintf("BOOL_TO_INT(%s)", e.E) }
func (e *BooleanToIntegerCast) Accept(v Visitor) { v.VisitBooleanToIntegerCast(e) }
func (e *BooleanToIntegerCast) AcceptMut(v MutVisitor) Expr {
	return v.VisitBooleanToIntegerCast(e)
}

// IntegerToBooleanCast narrows an Arithmetic expression to Boolean (0 is
// false, every other value is true).
type IntegerToBooleanCast struct{ E Expr }

func (e *IntegerToBooleanCast) exprTag()      {}
func (e *IntegerToBooleanCast) Type() ExprType { return Boolean }
func (e *IntegerToBooleanCast) Clone() Expr   { return &IntegerToBooleanCast{E: e.E.Clone()} }
func (e *IntegerToBooleanCast) String() string { return fmt.Sprintf("INT_TO_BOOL(%s)", e.E) }
func (e *IntegerToBooleanCast) Accept(v Visitor) { v.VisitIntegerToBooleanCast(e) }
func (e *IntegerToBooleanCast) AcceptMut(v MutVisitor) Expr {
	return v.VisitIntegerToBooleanCast(e)
}

// ChangeExpr carries both the old and the new sub-expression of a
// shadow-annotated unified program (spec.md §3.1, §4.6). Outside shadow
// mode it behaves like whichever branch the encoder/evaluator selects.
type ChangeExpr struct {
	Old, New Expr
}

func (e *ChangeExpr) exprTag() {}
func (e *ChangeExpr) Type() ExprType {
	// Old and New are required to agree on type by construction of the
	// unified program; either suffices.
	return e.Old.Type()
}
func (e *ChangeExpr) Clone() Expr { return &ChangeExpr{Old: e.Old.Clone(), New: e.New.Clone()} }
func (e *ChangeExpr) String() string { return fmt.Sprintf("change(%s, %s)", e.Old, e.New) }
func (e *ChangeExpr) Accept(v Visitor) { v.VisitChangeExpr(e) }
func (e *ChangeExpr) AcceptMut(v MutVisitor) Expr { return v.VisitChangeExpr(e) }

// Phi is an SSA merge: target_k selects one operand per predecessor label.
type Phi struct {
	Target   string
	Operands map[int]Expr // predecessor label -> operand
	Ty       ExprType
}

func (e *Phi) exprTag()      {}
func (e *Phi) Type() ExprType { return e.Ty }
func (e *Phi) Clone() Expr {
	ops := make(map[int]Expr, len(e.Operands))
	for k, o := range e.Operands {
		ops[k] = o.Clone()
	}
	return &Phi{Target: e.Target, Operands: ops, Ty: e.Ty}
}
func (e *Phi) String() string {
	return fmt.Sprintf("%s = PHI(%v)", e.Target, e.Operands)
}
func (e *Phi) Accept(v Visitor)        { v.VisitPhi(e) }
func (e *Phi) AcceptMut(v MutVisitor) Expr { return v.VisitPhi(e) }
