package hir

import (
	"testing"

	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
	"github.com/langrust/grust-sub004/internal/typ"
)

func TestIdentifierCreator_FreshSkipsTakenNames(t *testing.T) {
	table := ident.NewTable()
	taken := []string{"x_1"}

	c := NewIdentifierCreator(table, taken)
	id := c.Fresh("x", loc.None, typ.Int())

	got := table.Symbol(id).Name
	if got != "x_2" {
		t.Fatalf("Fresh() name = %q, want %q", got, "x_2")
	}
}

func TestIdentifierCreator_NeverRepeatsWithinLifetime(t *testing.T) {
	table := ident.NewTable()
	c := NewIdentifierCreator(table, nil)

	first := c.Fresh("x", loc.None, typ.Int())
	second := c.Fresh("x", loc.None, typ.Int())

	if first == second {
		t.Fatalf("expected two Fresh() calls to mint distinct identifiers")
	}
	if table.Symbol(first).Name == table.Symbol(second).Name {
		t.Fatalf("expected two Fresh() calls to mint distinct names")
	}
}
