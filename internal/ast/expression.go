package ast

import (
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// ExprKind tags the pure, signal-free scalar expression grammar used for
// Function bodies and for the closures passed to map/fold/sort (spec.md §3
// "AST"; §4.2's Abstraction, Application, FieldAccess, TupleElementAccess
// rules). This grammar has no FollowedBy, no Match/When over streams, and no
// node applications — spec.md's FollowedBy typing rule requires such
// closures' bodies to be "constant" (pointwise composition of literals,
// operators, and applications only), so keeping them a separate, smaller
// grammar than StreamExpression makes that restriction a type-level fact
// instead of a runtime check over the full stream grammar.
type ExprKind int

const (
	ExprConstant ExprKind = iota
	ExprIdentifier
	ExprUnaryOp
	ExprBinaryOp
	ExprIf
	ExprApplication
	ExprStructure
	ExprArray
	ExprTuple
	ExprFieldAccess
	ExprTupleElementAccess
	ExprEnumLiteral
	ExprAbstraction
)

// UnaryOp and BinaryOp enumerate the pointwise operators spec.md describes
// informally as "pointwise operators".
type UnaryOp int

const (
	OpNeg UnaryOp = iota
	OpNot
)

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

// Param is a typed parameter of a Function or Abstraction. Input types are
// always explicit (spec.md §1 Non-goals: "No polymorphic inference (function
// input types are required to be explicit)").
type Param struct {
	Name     string
	Type     typ.Type
	Resolved ident.Identifier // filled by S1
}

// StructField is a `name = expr` entry of a structure literal. Resolved is
// filled by S1 with the declared field's identifier.
type StructField struct {
	Name       string
	Resolved   ident.Identifier
	Location   loc.Location
	Expression Expression
}

// Expression is the pure scalar expression grammar, pre-resolution.
type Expression struct {
	Kind     ExprKind
	Location loc.Location
	Type     *typ.Type // filled by S2; nil before

	// ExprConstant
	Constant typ.Constant

	// ExprIdentifier: unresolved name of a variable, function, or operator.
	// Resolved is filled by S1.
	Name     string
	Resolved ident.Identifier

	// ExprUnaryOp / ExprBinaryOp
	Unary    UnaryOp
	Binary   BinaryOp
	Operands []Expression // 1 for unary, 2 for binary

	// ExprIf
	Condition *Expression
	Then      *Expression
	Else      *Expression

	// ExprApplication
	Function  *Expression
	Arguments []Expression

	// ExprStructure: ResolvedStruct is filled by S1.
	StructName     string
	ResolvedStruct ident.Identifier
	StructFields   []StructField

	// ExprArray / ExprTuple
	Elements []Expression

	// ExprFieldAccess: ResolvedField is filled by S2, once Base's structure
	// type is known (field resolution needs a type, not just a name).
	Base          *Expression
	Field         string
	ResolvedField ident.Identifier

	// ExprTupleElementAccess
	Index int

	// ExprEnumLiteral: ResolvedEnum is filled by S1.
	EnumName     string
	ResolvedEnum ident.Identifier
	EnumElement  string

	// ExprAbstraction
	Params []Param
	Body   *Expression
}

// IsSyntacticallyConstant reports whether e is built purely from literals,
// enum elements, operator/function identifiers, and pointwise composition
// thereof (unop/binop/if/application/structure/array/tuple), per spec.md
// §4.2's FollowedBy rule: "'Constant' here is a syntactic check... Non-
// constant leaf constructs fail with ExpectConstant." Field access, tuple
// element access, and closure literals are named non-constant leaves by
// that same rule and are rejected unconditionally, never recursing into
// their sub-expressions; the only other non-constant leaf this grammar can
// contain is a free variable reference (ExprIdentifier naming a signal
// rather than a function/operator) surfaced by the caller via isFreeSignal.
func (e *Expression) IsSyntacticallyConstant(isFreeSignal func(name string) bool) bool {
	switch e.Kind {
	case ExprConstant, ExprEnumLiteral:
		return true
	case ExprIdentifier:
		return !isFreeSignal(e.Name)
	case ExprUnaryOp, ExprBinaryOp:
		for i := range e.Operands {
			if !e.Operands[i].IsSyntacticallyConstant(isFreeSignal) {
				return false
			}
		}

		return true
	case ExprIf:
		return e.Condition.IsSyntacticallyConstant(isFreeSignal) &&
			e.Then.IsSyntacticallyConstant(isFreeSignal) &&
			e.Else.IsSyntacticallyConstant(isFreeSignal)
	case ExprApplication:
		if !e.Function.IsSyntacticallyConstant(isFreeSignal) {
			return false
		}
		for i := range e.Arguments {
			if !e.Arguments[i].IsSyntacticallyConstant(isFreeSignal) {
				return false
			}
		}

		return true
	case ExprStructure:
		for _, f := range e.StructFields {
			if !f.Expression.IsSyntacticallyConstant(isFreeSignal) {
				return false
			}
		}

		return true
	case ExprArray, ExprTuple:
		for i := range e.Elements {
			if !e.Elements[i].IsSyntacticallyConstant(isFreeSignal) {
				return false
			}
		}

		return true
	case ExprFieldAccess, ExprTupleElementAccess, ExprAbstraction:
		return false
	default:
		return false
	}
}
