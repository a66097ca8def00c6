package ast

import (
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// SignalDecl is one `name: type` input or output declaration on a Node.
// Resolved is filled by S1 with this signal's identifier.
type SignalDecl struct {
	Name     string
	Resolved ident.Identifier
	Type     typ.Type
	Location loc.Location
}

// Equation is one `scope name = expr;` binding inside a Node body. Scope is
// resolved during S1 from which declaration list (input is never an
// equation LHS; Output/Local are) the name came from. Resolved is filled by
// S1 with the identifier Name already has (from its SignalDecl).
type Equation struct {
	Name       string
	Resolved   ident.Identifier
	Expression StreamExpression
	Location   loc.Location
}

// Node is a node declaration (spec.md §3 "Node"): is_component marks the
// single top-level component whose instance is the program's entry point;
// components may not be called (spec.md §4.1 "ComponentCall"). Resolved is
// filled by S1 with this node's own identifier.
type Node struct {
	Name        string
	Resolved    ident.Identifier
	IsComponent bool
	Inputs      []SignalDecl
	Outputs     []SignalDecl
	Locals      []SignalDecl
	Equations   []Equation
	Location    loc.Location
}

// File is the root of a parsed program (spec.md §3 "File").
type File struct {
	Typedefs  []Typedef
	Functions []Function
	Nodes     []Node
	Component *Node // nil if the file declares no component
	Location  loc.Location
}
