// Package ir defines the typed expression and instruction model that the
// rest of the engine operates over: a closed sum of expression and
// instruction variants, variables, and the flattened interface built from
// them.
package ir

import "fmt"

// ExprType is the static type every expression carries.
type ExprType int

const (
	Arithmetic ExprType = iota
	Boolean
	UndefinedType
)

func (t ExprType) String() string {
	switch t {
	case Arithmetic:
		return "ARITHMETIC"
	case Boolean:
		return "BOOLEAN"
	default:
		return "UNDEFINED"
	}
}

// DataTypeKind distinguishes the variants of DataType.
type DataTypeKind int

const (
	ElementaryKind DataTypeKind = iota
	SafetyKind
	EnumeratedKind
	DerivedKind
	InconclusiveKind
	SimpleKind
)

// Elementary is the primitive kind carried by an ElementaryKind DataType.
type Elementary int

const (
	Int Elementary = iota
	Real
	Bool
	Time
)

func (e Elementary) String() string {
	switch e {
	case Int:
		return "INT"
	case Real:
		return "REAL"
	case Bool:
		return "BOOL"
	case Time:
		return "TIME"
	default:
		return "?"
	}
}

// DataType is the closed sum of variable types from spec.md §3.3.
//
// Derived carries only the name of the function-block type (DerivedFB);
// its field interface is looked up by that name through a TypeResolver
// (the CFG project registry) once all modules are known.
type DataType struct {
	Kind       DataTypeKind
	Elem       Elementary      // valid when Kind == ElementaryKind
	Safety     Elementary      // valid when Kind == SafetyKind (always Bool today)
	EnumName   string          // valid when Kind == EnumeratedKind
	EnumTags   []string        // ordered tag names; EnumTags[0] is the default
	DerivedFB  string          // valid when Kind == DerivedKind: function-block type name
}

func Elem(e Elementary) DataType { return DataType{Kind: ElementaryKind, Elem: e} }
func SafeBool() DataType         { return DataType{Kind: SafetyKind, Safety: Bool} }
func Enumerated(name string, tags []string) DataType {
	return DataType{Kind: EnumeratedKind, EnumName: name, EnumTags: tags}
}
func Derived(fbName string) DataType { return DataType{Kind: DerivedKind, DerivedFB: fbName} }
func Inconclusive() DataType         { return DataType{Kind: InconclusiveKind} }
func Simple() DataType               { return DataType{Kind: SimpleKind} }

func (d DataType) String() string {
	switch d.Kind {
	case ElementaryKind:
		return d.Elem.String()
	case SafetyKind:
		return "SAFEBOOL"
	case EnumeratedKind:
		return d.EnumName
	case DerivedKind:
		return d.DerivedFB
	case InconclusiveKind:
		return "INCONCLUSIVE"
	default:
		return "SIMPLE"
	}
}

// ExprTypeOf maps a DataType onto the expression-level type tag used by
// Expr.Type(): every elementary/safety/enumerated scalar is Arithmetic
// except Bool and SafeBool, which are Boolean. Derived/Inconclusive/Simple
// have no expression-level type of their own (they are never directly read
// by VariableAccess — only their flattened scalar fields are).
func ExprTypeOf(d DataType) ExprType {
	switch d.Kind {
	case ElementaryKind:
		if d.Elem == Bool {
			return Boolean
		}
		return Arithmetic
	case SafetyKind:
		return Boolean
	case EnumeratedKind:
		return Arithmetic
	default:
		return UndefinedType
	}
}

// StorageType is a variable's role in its enclosing interface.
type StorageType int

const (
	Input StorageType = iota
	Output
	Local
	Temporary
)

func (s StorageType) String() string {
	switch s {
	case Input:
		return "INPUT"
	case Output:
		return "OUTPUT"
	case Local:
		return "LOCAL"
	default:
		return "TEMP"
	}
}

// fmtValue renders a Go literal the way the IR's printer does: booleans as
// TRUE/FALSE, everything else via %v.
func fmtValue(v interface{}) string {
	if b, ok := v.(bool); ok {
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
	return fmt.Sprintf("%v", v)
}
