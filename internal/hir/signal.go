// Package hir is the compiler's typed intermediate representation (spec.md
// §3 "HIR"): identifiers instead of names, every expression carrying a
// concrete typ.Type, and a Dependencies slot on every stream expression,
// filled in by S4 and consumed through S9.
//
// Field shapes are grounded field-for-field on
// original_source/src/hir/{stream_expression,file,equation,function}.rs,
// the Rust original this spec was distilled from (see SPEC_FULL.md §0, §3.4).
package hir

import "github.com/langrust/grust-sub004/internal/ident"

// SignalScope tags where a Signal was declared; it is fixed at declaration
// and never changes thereafter (spec.md §3 "Signal").
type SignalScope int

const (
	ScopeInput SignalScope = iota
	ScopeOutput
	ScopeLocal
	ScopeMemory
)

func (s SignalScope) String() string {
	switch s {
	case ScopeInput:
		return "input"
	case ScopeOutput:
		return "output"
	case ScopeLocal:
		return "local"
	case ScopeMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// Signal is a (identifier, scope) pair (spec.md §3 "Signal").
type Signal struct {
	ID    ident.Identifier
	Scope SignalScope
}
