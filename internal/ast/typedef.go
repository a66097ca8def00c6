package ast

import (
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// TypedefKind tags which kind of top-level type declaration a Typedef is.
type TypedefKind int

const (
	TypedefStruct TypedefKind = iota
	TypedefEnum
	TypedefArrayAlias
)

// FieldDecl is one `name: type` field of a struct typedef, in declaration
// order (spec.md §3 "SymbolTable": "StructType{fields: ordered list of id}").
type FieldDecl struct {
	Name     string
	Resolved ident.Identifier // filled by S1
	Type     typ.Type
	Location loc.Location
}

// Typedef is a top-level type declaration. Resolved is filled by S1 with
// this typedef's own identifier (and, for TypedefEnum, ResolvedElements
// holds each element's identifier in declaration order).
type Typedef struct {
	Kind     TypedefKind
	Name     string
	Resolved ident.Identifier
	Location loc.Location

	// TypedefStruct
	Fields []FieldDecl

	// TypedefEnum: declaration-order element names.
	Elements         []string
	ResolvedElements []ident.Identifier

	// TypedefArrayAlias
	Element typ.Type
	Size    int
}

// Function is a top-level named function declaration (spec.md §3 "Type":
// Abstract(inputs, output); §4.2 "Abstraction"). Its output type is
// inferred from Body, consistent with the abstraction typing rule
// "Abstraction λ(x:T).e has type Abstract([T], typeof e)" generalized to
// named, possibly multi-parameter functions.
type Function struct {
	Name     string
	Resolved ident.Identifier // filled by S1
	Params   []Param
	Body     Expression
	Location loc.Location
}
