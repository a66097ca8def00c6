package hir

import (
	"reflect"
	"testing"

	"github.com/langrust/grust-sub004/internal/ident"
)

func TestDependencies_SetTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected second Set to panic")
		}
	}()

	var d Dependencies
	d.Set([]Dep{{Signal: 1, Weight: 0}})
	d.Set([]Dep{{Signal: 2, Weight: 0}})
}

func TestDependencies_Rename(t *testing.T) {
	var d Dependencies
	d.Set([]Dep{{Signal: 1, Weight: 0}, {Signal: 2, Weight: 1}})

	d.Rename(map[ident.Identifier]ident.Identifier{1: 10})

	want := []Dep{{Signal: 10, Weight: 0}, {Signal: 2, Weight: 1}}
	if !reflect.DeepEqual(d.Get(), want) {
		t.Fatalf("Rename() = %v, want %v", d.Get(), want)
	}
}

func TestShift(t *testing.T) {
	got := Shift([]Dep{{Signal: 1, Weight: 0}, {Signal: 2, Weight: 2}}, 1)
	want := []Dep{{Signal: 1, Weight: 1}, {Signal: 2, Weight: 3}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Shift() = %v, want %v", got, want)
	}
}

func TestUnion(t *testing.T) {
	a := []Dep{{Signal: 1, Weight: 0}}
	b := []Dep{{Signal: 2, Weight: 0}}
	got := Union(a, b)
	want := []Dep{{Signal: 1, Weight: 0}, {Signal: 2, Weight: 0}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Union() = %v, want %v", got, want)
	}
}
