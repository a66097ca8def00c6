package hir

import (
	"github.com/langrust/grust-sub004/internal/ast"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// Pattern is the resolved counterpart of ast.Pattern: Kind is reused
// directly from ast (the grammar of shapes does not change between S1 and
// S3), but PatternBind now carries the bound identifier's resolved ID
// instead of a raw name, and PatternEnum carries the resolved enum type's
// identifier.
type Pattern struct {
	Kind     ast.PatternKind
	Location loc.Location
	Type     typ.Type

	// PatternLiteral
	Constant typ.Constant

	// PatternBind
	BindID ident.Identifier

	// PatternStruct
	StructType ident.Identifier
	Fields     []PatternField

	// PatternEnum
	EnumType    ident.Identifier
	EnumElement string

	// PatternTuple
	Elements []Pattern
}

// PatternField is one `name: pattern` entry of a PatternStruct, carrying the
// resolved field identifier alongside the sub-pattern.
type PatternField struct {
	FieldID ident.Identifier
	Pattern Pattern
}
