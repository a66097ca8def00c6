package hir

import "github.com/langrust/grust-sub004/internal/ident"

// Dep is one dependency edge: this expression depends on Signal with the
// given delay weight (0 = same cycle, >=1 = through that many unit delays).
type Dep struct {
	Signal ident.Identifier
	Weight int
}

// Dependencies is the append-once cell spec.md §3 describes: "initially
// empty, filled in S4", with duplicates permitted (set-like membership is
// the consumer's job, not this type's). S4 fills the cells via Set, and S7
// and S8 call Set on the cells of the replacement expressions they build.
// S6 hoisting moves an expression together with its cell and renames no
// entry. S7's inlining calls Renamed on a cloned expression, since
// the callee's own Dependencies must survive untouched for any later call
// site that inlines the same callee again.
type Dependencies struct {
	deps []Dep
	set  bool
}

// Set records deps as this cell's one-time value. Panics if already set,
// matching spec.md §9's "mutation-after-init is a programming error" note
// for once-init cells.
func (d *Dependencies) Set(deps []Dep) {
	if d.set {
		panic("hir: Dependencies.Set called twice")
	}
	d.deps = deps
	d.set = true
}

// Get returns the recorded dependencies, or nil if Set has not run yet
// (e.g. before S4, or on an expression S4 never visits).
func (d *Dependencies) Get() []Dep {
	return d.deps
}

// Ready reports whether Set has already run.
func (d *Dependencies) Ready() bool {
	return d.set
}

// Rename rewrites every Signal reference through mapping, leaving entries
// whose signal is not a mapping key untouched. No pass calls it: S7 splices
// a callee's equations under fresh identifiers with Renamed instead.
func (d *Dependencies) Rename(mapping map[ident.Identifier]ident.Identifier) {
	for i := range d.deps {
		if to, ok := mapping[d.deps[i].Signal]; ok {
			d.deps[i].Signal = to
		}
	}
}

// Renamed returns a new, independent Dependencies cell holding every entry
// of d renamed through mapping, leaving d itself untouched.
func (d *Dependencies) Renamed(mapping map[ident.Identifier]ident.Identifier) Dependencies {
	out := make([]Dep, len(d.deps))
	for i, dep := range d.deps {
		to := dep.Signal
		if mapped, ok := mapping[dep.Signal]; ok {
			to = mapped
		}
		out[i] = Dep{Signal: to, Weight: dep.Weight}
	}

	var result Dependencies
	result.Set(out)

	return result
}

// Shift returns a copy of deps with every weight increased by delta,
// matching spec.md §4.4's FollowedBy rule: "the unit delay bumps every
// weight."
func Shift(deps []Dep, delta int) []Dep {
	out := make([]Dep, len(deps))
	for i, d := range deps {
		out[i] = Dep{Signal: d.Signal, Weight: d.Weight + delta}
	}

	return out
}

// Union concatenates dependency lists; duplicates are permitted per
// spec.md §3.
func Union(lists ...[]Dep) []Dep {
	var out []Dep
	for _, l := range lists {
		out = append(out, l...)
	}

	return out
}
