package hir

import (
	"fmt"

	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

// IdentifierCreator mints fresh signal identifiers during S6 normalization,
// S7 inlining, and S8 memorization (spec.md §4.6 "fresh local signal",
// §4.7, §4.8). Every fresh name is `{base}_{n}` for the smallest n not
// already taken, checked against the set of names the creator was seeded
// with plus every name it has minted itself so far — so two creators seeded
// from the same unitary node never collide, and a single creator never
// repeats a suffix within its own lifetime.
//
// A creator is reseeded from scratch per unitary node (spec.md §4's
// supplemented rule in SPEC_FULL.md §4): each pass that needs fresh names
// constructs a new IdentifierCreator from that unitary node's full current
// signal set immediately before running, rather than sharing one creator
// across node boundaries.
type IdentifierCreator struct {
	table *ident.Table
	taken map[string]bool
}

// NewIdentifierCreator seeds a creator from the given set of names already
// in use (typically every Signal.ID's symbol name in a unitary node at the
// moment the owning pass starts).
func NewIdentifierCreator(table *ident.Table, taken []string) *IdentifierCreator {
	set := make(map[string]bool, len(taken))
	for _, n := range taken {
		set[n] = true
	}

	return &IdentifierCreator{table: table, taken: set}
}

// Fresh declares and returns a new identifier named `{base}_{n}`, the
// smallest suffix not already taken, at the given location and with the
// given type. The chosen name is recorded as taken so later Fresh calls on
// this creator never repeat it.
func (c *IdentifierCreator) Fresh(base string, at loc.Location, ty typ.Type) ident.Identifier {
	n := 1
	var name string
	for {
		name = fmt.Sprintf("%s_%d", base, n)
		if !c.taken[name] {
			break
		}
		n++
	}
	c.taken[name] = true

	id, ok := c.table.Declare(name, at, ident.KindIdentifier)
	if !ok {
		panic("hir: IdentifierCreator minted a name its own bookkeeping thought was free: " + name)
	}
	c.table.SetType(id, ty)

	return id
}
