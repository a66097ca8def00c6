// Package ident implements stable integer symbol identifiers and the scoped
// symbol table that produces them (spec.md §3 "Identifier", "SymbolTable";
// §4.1 "Symbol pass"). It sits just above typ in the dependency order: every
// Symbol may carry an inferred typ.Type once one is known.
//
// The table's paired local()/global() scope discipline mirrors the teacher
// library's paired lock/unlock discipline (github.com/katalvlaran/lvlath
// core.Graph: every RLock/Lock is immediately deferred to its matching
// unlock); here the "resource" being acquired and released is a scope layer
// instead of a mutex, but the rule is the same — every local() must be
// matched by a global() on every path (spec.md §5 "Resource discipline").
package ident

import (
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// Identifier is an opaque key into a Table. The zero value never denotes a
// real symbol; Table.Declare always returns identifiers starting at 1.
type Identifier int64

// Invalid is the identifier returned alongside an error from Declare or
// Resolve; it must never be used to index a Table.
const Invalid Identifier = 0

// Kind tags which shape of declaration a Symbol holds.
type Kind int

const (
	KindIdentifier Kind = iota // plain signal / local value
	KindFunction
	KindNode
	KindStructType
	KindEnumType
	KindArrayType
	KindEnumElement
)

// NodeInfo is the symbol-table record for KindNode: the stable identifiers
// of a node's inputs (order-preserving), outputs, and locals. Full typed
// equations live in hir.Node, not here — the symbol table only needs enough
// to resolve references during S1/S2.
type NodeInfo struct {
	IsComponent bool
	Inputs      []Identifier
	Outputs     map[string]Identifier
	Locals      map[string]Identifier
}

// StructInfo is the symbol-table record for KindStructType: declaration-order
// field identifiers (spec.md §3: "ordered list of id").
type StructInfo struct {
	Fields []Identifier
}

// EnumInfo is the symbol-table record for KindEnumType: declaration-order
// element identifiers.
type EnumInfo struct {
	Elements []Identifier
}

// ArrayInfo is the symbol-table record for KindArrayType: a named array-type
// alias's element type and size.
type ArrayInfo struct {
	Element typ.Type
	Size    int
}

// EnumElementInfo is the symbol-table record for KindEnumElement: which enum
// declares this element.
type EnumElementInfo struct {
	Parent Identifier
}

// Symbol is the full record a Table stores per Identifier (spec.md §3
// "SymbolTable"). Exactly one of Node, Struct, Enum, Array, EnumElement is
// non-nil, selected by Kind; KindIdentifier and KindFunction carry no extra
// payload beyond Name/Location/Type.
type Symbol struct {
	Name     string
	Location loc.Location
	Type     *typ.Type // nil until inferred
	Kind     Kind

	Node        *NodeInfo
	Struct      *StructInfo
	Enum        *EnumInfo
	Array       *ArrayInfo
	EnumElement *EnumElementInfo
}

type scope map[string]Identifier

// Table is the compiler's global symbol table. It supports one global scope
// and a stack of local scopes (spec.md §3 "SymbolTable"): Local pushes a
// fresh layer, Global pops and discards the top layer. Lookup always checks
// the local stack innermost-first, then falls back to the global scope.
type Table struct {
	nextID  Identifier
	symbols map[Identifier]*Symbol

	global scope
	locals []scope
}

// NewTable returns an empty Table ready for S1.
func NewTable() *Table {
	return &Table{
		nextID:  1,
		symbols: make(map[Identifier]*Symbol),
		global:  make(scope),
	}
}

// Local pushes a fresh local scope, used around pattern-matching arms,
// abstraction bodies, and node bodies (spec.md §3). Must be paired with a
// later Global call on every code path, including error paths (spec.md §5).
func (t *Table) Local() {
	t.locals = append(t.locals, make(scope))
}

// Global pops the innermost local scope, discarding its bindings. Calling
// Global with no local scope open is a programming error (it would corrupt
// lookup for the rest of compilation) and panics rather than silently
// no-op'ing, the same way an unbalanced Unlock would corrupt a mutex.
func (t *Table) Global() {
	if len(t.locals) == 0 {
		panic("ident: Global() called with no open local scope")
	}
	t.locals = t.locals[:len(t.locals)-1]
}

func (t *Table) currentScope() scope {
	if len(t.locals) > 0 {
		return t.locals[len(t.locals)-1]
	}

	return t.global
}

// Declare allocates a fresh Identifier for name and binds it in the current
// scope (innermost local scope if one is open, else global). It fails with
// diag.DuplicateBinding-shaped information (returned as ok=false) if name is
// already bound in that same scope; shadowing a name bound in an *enclosing*
// scope is permitted, per spec.md §3.
func (t *Table) Declare(name string, at loc.Location, kind Kind) (Identifier, bool) {
	cur := t.currentScope()
	if _, exists := cur[name]; exists {
		return Invalid, false
	}

	id := t.nextID
	t.nextID++

	cur[name] = id
	t.symbols[id] = &Symbol{Name: name, Location: at, Kind: kind}

	return id, true
}

// Bind inserts an existing identifier under name in the current scope,
// without allocating a fresh one. Used to reopen a node's header scope
// (inputs/outputs/locals, already declared once during header resolution)
// around its equations, so equation bodies resolve to the same identifiers
// the header already assigned rather than minting duplicates. ok is false on
// a name collision in the current scope, same as Declare.
func (t *Table) Bind(name string, id Identifier) bool {
	cur := t.currentScope()
	if _, exists := cur[name]; exists {
		return false
	}
	cur[name] = id

	return true
}

// Resolve looks up name, checking local scopes innermost-first, then the
// global scope. ok is false if no binding is found in any visible scope.
func (t *Table) Resolve(name string) (Identifier, bool) {
	for i := len(t.locals) - 1; i >= 0; i-- {
		if id, ok := t.locals[i][name]; ok {
			return id, true
		}
	}
	if id, ok := t.global[name]; ok {
		return id, true
	}

	return Invalid, false
}

// Symbol returns the Symbol record for id. Panics if id is not a key of this
// Table — by the time any pass after S1 asks for a Symbol, id was already
// produced by Declare, so a miss means a prior pass corrupted its own
// invariant (comparable to dereferencing a dangling pointer).
func (t *Table) Symbol(id Identifier) *Symbol {
	s, ok := t.symbols[id]
	if !ok {
		panic("ident: Symbol() called with an identifier this Table never declared")
	}

	return s
}

// MustResolve resolves name or panics. It is the tool post-S1 passes use:
// spec.md §4.3 states "Un-typed ASTs panic — this is a precondition", and by
// construction every name reaching S3 was already validated to resolve in
// S1, so a miss here means that precondition was violated upstream.
func (t *Table) MustResolve(name string) Identifier {
	id, ok := t.Resolve(name)
	if !ok {
		panic("ident: MustResolve() called on a name S1 should already have validated: " + name)
	}

	return id
}

// SetType records the inferred type for id, as produced by S2.
func (t *Table) SetType(id Identifier, ty typ.Type) {
	t.Symbol(id).Type = &ty
}

// Snapshot returns a read-only copy of the global bindings, for tests and
// tooling — grounded on the teacher's VerticesMap()/InternalVertices()
// read-only-copy convention (github.com/katalvlaran/lvlath core/types.go).
func (t *Table) Snapshot() map[string]Identifier {
	out := make(map[string]Identifier, len(t.global))
	for k, v := range t.global {
		out[k] = v
	}

	return out
}
