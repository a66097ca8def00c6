package ast

import (
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// StreamKind tags the node-equation grammar (spec.md §3 "AST", enumerated in
// the PURPOSE & SCOPE list: "pointwise operators, a unit-delay initializer
// ..., node instantiations ..., array bulk operators ..., structure/tuple/
// enum constructors, pattern matching, optional-value binding").
type StreamKind int

const (
	StreamConstant StreamKind = iota
	StreamIdentifier // unresolved signal reference; becomes hir.SignalCall in S3
	StreamFollowedBy
	StreamMapApplication
	StreamNodeApplication
	StreamStructure
	StreamArray
	StreamTuple
	StreamMatch
	StreamWhen
	StreamFieldAccess
	StreamTupleElementAccess
	StreamFold
	StreamSort
	StreamZip
)

// MatchArm is one `pattern [if guard] => body` arm of a Match stream
// expression. Guard is nil when the arm has no guard. This carries a guard
// slot that spec.md's prose does not name explicitly but its dependency
// rule for Match implies ("guards' deps are included") — see SPEC_FULL.md §4.
type MatchArm struct {
	Pattern  Pattern
	Guard    *StreamExpression
	Body     StreamExpression
	Location loc.Location
}

// StreamField is a `name = expr` entry of a structure stream-expression
// literal. Resolved is filled by S1 with the declared field's identifier.
type StreamField struct {
	Name       string
	Resolved   ident.Identifier
	Location   loc.Location
	Expression StreamExpression
}

// StreamExpression is the node-equation grammar, pre-resolution. Only the
// fields documented for a node's Kind are meaningful.
type StreamExpression struct {
	Kind     StreamKind
	Location loc.Location
	Type     *typ.Type // filled by S2; nil before

	// StreamConstant
	Constant typ.Constant

	// StreamIdentifier: Resolved is filled by S1 with the referenced
	// signal's identifier.
	Name     string
	Resolved ident.Identifier

	// StreamFollowedBy
	Initial    typ.Constant
	Delayed    *StreamExpression
	InitialRaw *Expression // the syntactic initializer, checked for constancy

	// StreamMapApplication: Function is the elementwise function (a named
	// Function reference or an inline abstraction), applied to Inputs — one
	// or more equal-length array streams, per spec.md §4.2's Map rule
	// generalized to the n-ary case zip implies is representable.
	Function *Expression
	Inputs   []StreamExpression

	// StreamNodeApplication: ResolvedNode and ResolvedOutput are filled by
	// S1 (ResolvedOutput only once S2 has typed Arguments enough to pick the
	// output, though in practice the node name alone determines its output
	// set so S1 resolves both directly).
	Node           string
	ResolvedNode   ident.Identifier
	Arguments      []StreamExpression
	Output         string
	ResolvedOutput ident.Identifier

	// StreamStructure: ResolvedStruct is filled by S1.
	StructName     string
	ResolvedStruct ident.Identifier
	Fields         []StreamField

	// StreamArray / StreamTuple
	Elements []StreamExpression

	// StreamMatch
	Scrutinee *StreamExpression
	Arms      []MatchArm

	// StreamWhen: ResolvedBind is filled by S1 with the binder's fresh
	// identifier.
	BindName     string
	ResolvedBind ident.Identifier
	Option       *StreamExpression
	Present      *StreamExpression
	Default      *StreamExpression

	// StreamFieldAccess: ResolvedField is filled by S2 (needs Base's type).
	Base          *StreamExpression
	Field         string
	ResolvedField ident.Identifier

	// StreamTupleElementAccess
	Index int

	// StreamFold: Array is folded left-to-right via Combine, seeded by Init.
	Array   *StreamExpression
	Init    *StreamExpression
	Combine *Expression

	// StreamSort: Comparator returns negative/zero/positive per spec.md's
	// qsort convention (§4.2, §9 Open Questions).
	Comparator *Expression

	// StreamZip: Arrays holds one or more equal-length array streams.
	Arrays []StreamExpression
}
