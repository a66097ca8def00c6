// Package ast is the compiler's pre-resolution concrete syntax tree: the
// shape a parser (an external collaborator, spec.md §6) is expected to
// build. Every node carries a Location and an optional inferred Type slot
// (spec.md §3 "AST": "Every AST node carries a Location and an optional
// inferred type slot"), populated in place by S2 and read by S3.
//
// There is no teacher file for an AST shape — lvlath is a graph library with
// no parser of its own — so the variant shapes here are grounded directly on
// original_source/src/ast/expression/mod.rs and
// original_source/src/ast/stream_expression/mod.rs, translated from Rust
// enum-of-structs into Go's idiomatic tagged-union-as-struct (a Kind field
// selecting which payload fields are meaningful), the same shape this
// module's hir package uses and which Go's type system can pattern-match
// exhaustively via a type switch on Kind rather than a sealed trait.
package ast

import (
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// PatternKind tags which shape of pattern a Pattern holds (spec.md §4.2
// "Match — each arm pattern must unify with the scrutinee type").
type PatternKind int

const (
	PatternLiteral PatternKind = iota
	PatternBind
	PatternStruct
	PatternEnum
	PatternTuple
	PatternWildcard
)

// Pattern is a match-arm pattern, pre-resolution. Exactly the fields for its
// Kind are meaningful.
type Pattern struct {
	Kind     PatternKind
	Location loc.Location

	// PatternLiteral
	Constant typ.Constant

	// PatternBind: binds the scrutinee (or field/element) under Name.
	// Resolved is filled by S1 with the fresh identifier this occurrence
	// declares.
	Name     string
	Resolved ident.Identifier

	// PatternStruct: Resolved is filled by S1 with the struct typedef's
	// identifier.
	StructName string
	Fields     []PatternField

	// PatternEnum: EnumName is the enum type's name; Name holds the matched
	// element's name. Resolved is filled by S1 with
	// the enum typedef's identifier.
	EnumName string

	// PatternTuple
	Elements []Pattern
}

// PatternField is one `name: pattern` entry of a PatternStruct. Resolved is
// filled by S1 with the declared field's identifier.
type PatternField struct {
	Name     string
	Resolved ident.Identifier
	Pattern  Pattern
}
