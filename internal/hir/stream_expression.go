package hir

import (
	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// StreamKind mirrors ast.StreamKind but adds the two variants S5 and S8
// introduce that have no pre-resolution syntax of their own:
// UnitaryNodeApplication (S5 replaces every NodeApplication with one) and
// Memory (S8 replaces every FollowedBy with one).
type StreamKind int

const (
	StreamConstant StreamKind = iota
	StreamSignalCall // resolved StreamIdentifier: a reference to a Signal
	StreamFollowedBy
	StreamMapApplication
	StreamNodeApplication
	StreamUnitaryNodeApplication
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
	StreamMemory
)

// MatchArm is the resolved counterpart of ast.MatchArm. Body carries its own
// Equations: spec.md's Match typing rule scopes pattern bindings to the arm,
// and S6/S8 may need to hoist fresh local equations that are only valid
// inside that arm's scope (original_source's per-arm `Vec<Equation>`, see
// SPEC_FULL.md §3.4).
type MatchArm struct {
	Pattern   Pattern
	Guard     *StreamExpression
	Equations []Equation
	Body      StreamExpression
	Location  loc.Location
}

// StreamField is a resolved `name: expr` entry of a structure literal.
type StreamField struct {
	FieldID    ident.Identifier
	Location   loc.Location
	Expression StreamExpression
}

// StreamExpression is the typed, resolved node-equation grammar (spec.md §3
// "HIR"). Every node carries a concrete Type and a Dependencies cell, filled
// in by S2 and S4 respectively. Only the fields documented for a node's Kind
// are meaningful; this mirrors ast.StreamExpression's tagged-union shape one
// compilation stage later.
type StreamExpression struct {
	Kind         StreamKind
	Location     loc.Location
	Type         typ.Type
	Dependencies Dependencies

	// StreamConstant
	Constant typ.Constant

	// StreamSignalCall
	Signal ident.Identifier

	// StreamFollowedBy: Initial seeds cycle 0; Delayed is evaluated from
	// cycle 1 onward, one cycle behind (spec.md §4.4).
	Initial typ.Constant
	Delayed *StreamExpression

	// StreamMapApplication
	Function ident.Identifier // resolved Function symbol, or Invalid for an inline abstraction
	Params   []ast.Param      // populated only for an inline abstraction
	Body     *ast.Expression  // populated only for an inline abstraction; typed in place by S2
	Inputs   []StreamExpression

	// StreamNodeApplication: the as-written call to a whole multi-output
	// Node, before S5 narrows it down to one UnitaryNodeApplication per
	// output actually used (spec.md §3 HIR: "NodeApplication(node_id,
	// ordered inputs, output_id)"). Arguments is in the callee's declared
	// input order; Output names which of the callee's outputs this call
	// site reads. No NodeApplication survives S5 (I4).
	//
	// StreamUnitaryNodeApplication: Node names the synthesized UnitaryNode
	// (one per (node, output) pair, spec.md §3 "UnitaryNode"); Arguments
	// supplies every input the unitary node's reduced signature needs, in
	// that signature's order; MemoryKey is non-nil once S8 has assigned this
	// call site a slot in the caller's Memory (spec.md §4.8). Output is
	// invalid (the (node, output) pair is already baked into Node).
	Node      ident.Identifier
	Arguments []StreamExpression
	Output    ident.Identifier
	MemoryKey *ident.Identifier

	// StreamStructure
	StructType ident.Identifier
	Fields     []StreamField

	// StreamArray / StreamTuple
	Elements []StreamExpression

	// StreamMatch
	Scrutinee *StreamExpression
	Arms      []MatchArm

	// StreamWhen: BindID binds the unwrapped value inside Present; Present
	// and Default may each carry their own hoisted Equations for the same
	// reason MatchArm does.
	BindID     ident.Identifier
	Option     *StreamExpression
	Present    *StreamExpression
	PresentEqs []Equation
	Default    *StreamExpression
	DefaultEqs []Equation

	// StreamFieldAccess
	Base    *StreamExpression
	FieldID ident.Identifier

	// StreamTupleElementAccess
	Index int

	// StreamFold
	Array         *StreamExpression
	Init          *StreamExpression
	Combine       ident.Identifier
	CombineParams []ast.Param
	CombineBody   *ast.Expression

	// StreamSort
	Comparator       ident.Identifier
	ComparatorParams []ast.Param
	ComparatorBody   *ast.Expression

	// StreamZip
	Arrays []StreamExpression

	// StreamMemory: the S8 replacement for StreamFollowedBy. Key names the
	// Buffer in the owning Node's or UnitaryNode's Memory that holds this
	// delay's state (spec.md §4.8 "fby expressions are replaced by explicit
	// reads of a memory cell").
	Key ident.Identifier
}
