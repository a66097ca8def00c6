package ident

import (
	"testing"

	"github.com/langrust/grust-sub004/internal/loc"
)

func TestTable_DeclareAndResolve(t *testing.T) {
	table := NewTable()

	id, ok := table.Declare("x", loc.None, KindIdentifier)
	if !ok {
		t.Fatalf("expected first declaration of x to succeed")
	}

	got, ok := table.Resolve("x")
	if !ok || got != id {
		t.Fatalf("Resolve(x) = %v, %v; want %v, true", got, ok, id)
	}
}

func TestTable_DuplicateInSameScopeFails(t *testing.T) {
	table := NewTable()

	if _, ok := table.Declare("x", loc.None, KindIdentifier); !ok {
		t.Fatalf("expected first declaration to succeed")
	}
	if _, ok := table.Declare("x", loc.None, KindIdentifier); ok {
		t.Fatalf("expected duplicate declaration in the same scope to fail")
	}
}

func TestTable_ShadowingAcrossScopesAllowed(t *testing.T) {
	table := NewTable()

	outer, ok := table.Declare("x", loc.None, KindIdentifier)
	if !ok {
		t.Fatalf("expected outer declaration to succeed")
	}

	table.Local()
	inner, ok := table.Declare("x", loc.None, KindIdentifier)
	if !ok {
		t.Fatalf("expected shadowing declaration in a nested scope to succeed")
	}
	if inner == outer {
		t.Fatalf("expected shadowing declaration to allocate a fresh identifier")
	}

	got, _ := table.Resolve("x")
	if got != inner {
		t.Fatalf("Resolve(x) inside nested scope = %v, want %v (shadowed)", got, inner)
	}

	table.Global()
	got, _ = table.Resolve("x")
	if got != outer {
		t.Fatalf("Resolve(x) after popping nested scope = %v, want %v (outer)", got, outer)
	}
}

func TestTable_ResolveUnknownFails(t *testing.T) {
	table := NewTable()
	if _, ok := table.Resolve("nope"); ok {
		t.Fatalf("expected Resolve of an undeclared name to fail")
	}
}

func TestTable_BindReopensExistingIdentifier(t *testing.T) {
	table := NewTable()

	table.Local()
	id, _ := table.Declare("x", loc.None, KindIdentifier)
	table.Global()

	table.Local()
	if !table.Bind("x", id) {
		t.Fatalf("expected Bind to succeed in a fresh scope")
	}
	got, ok := table.Resolve("x")
	if !ok || got != id {
		t.Fatalf("Resolve(x) after Bind = %v, %v; want %v, true", got, ok, id)
	}
	table.Global()
}

func TestTable_BindCollisionFails(t *testing.T) {
	table := NewTable()
	table.Local()
	id, _ := table.Declare("x", loc.None, KindIdentifier)
	if table.Bind("x", id) {
		t.Fatalf("expected Bind to fail when name is already bound in this scope")
	}
	table.Global()
}

func TestTable_GlobalWithoutLocalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected Global() with no open local scope to panic")
		}
	}()

	table := NewTable()
	table.Global()
}
