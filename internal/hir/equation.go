package hir

import (
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
)

// Equation is the resolved counterpart of ast.Equation: Signal names the
// resolved output or local this equation defines.
type Equation struct {
	Signal     ident.Identifier
	Expression StreamExpression
	Location   loc.Location
}
