// Package loc defines the source-location type threaded through every AST,
// HIR, and diagnostic value in this compiler, so passes never need their own
// copy of "where did this come from".
package loc

import "fmt"

// Location pinpoints a span of source text. Span is the length in bytes of
// the syntax this location covers; it is zero for synthesized nodes (fresh
// signals introduced by normalization, memorization, or inlining).
type Location struct {
	Source string
	Line   int
	Column int
	Span   int
}

// None is the zero Location, used for identifiers and expressions synthesized
// by the middle-end rather than parsed from source.
var None = Location{}

// String renders "source:line:column", matching the compact form most
// diagnostic renderers expect as a prefix.
func (l Location) String() string {
	if l.Source == "" && l.Line == 0 && l.Column == 0 {
		return "<generated>"
	}

	return fmt.Sprintf("%s:%d:%d", l.Source, l.Line, l.Column)
}

// IsGenerated reports whether l carries no real source position.
func (l Location) IsGenerated() bool {
	return l == None
}
