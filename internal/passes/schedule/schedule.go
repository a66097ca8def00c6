// Package schedule implements S9 (spec.md §4.9): ordering every unitary
// node's equations, and every equation scope nested inside a Match arm or a
// When branch, so that a signal's producing equation always precedes every
// equation that reads it. This is the last pass: afterward P4 holds for
// every UnitaryNode, not only the one reachable from the component.
package schedule

import (
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/graph"
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
)

// Pass9 schedules every unitary node in file and populates
// file.ScheduleOrder from the designated component's own unitary nodes.
func Pass9(file *hir.File, table *ident.Table, errs *diag.Errors) {
	for i := range file.UnitaryNodes {
		u := &file.UnitaryNodes[i]
		scheduleEquations(u.Equations, u.Location, table, errs)
		for j := range u.Equations {
			scheduleExpr(&u.Equations[j].Expression, u.Location, table, errs)
		}
	}

	file.ScheduleOrder = componentOrder(file)
}

// scheduleEquations reorders eqs in place into a valid evaluation order:
// a dependency produced by another equation in this same scope is always
// ordered before the equation that reads it. Dependencies on signals with
// no equation in this scope (inputs, memory ids, an outer scope's own
// backbone) are always available and impose no ordering constraint here.
func scheduleEquations(eqs []hir.Equation, at loc.Location, table *ident.Table, errs *diag.Errors) {
	if len(eqs) < 2 {
		return
	}

	bySignal := make(map[ident.Identifier]*hir.Equation, len(eqs))
	for i := range eqs {
		bySignal[eqs[i].Signal] = &eqs[i]
	}

	g := graph.New()
	for i := range eqs {
		g.AddVertex(eqs[i].Signal)
	}
	for i := range eqs {
		for _, dep := range eqs[i].Expression.Dependencies.Get() {
			if _, coScoped := bySignal[dep.Signal]; coScoped {
				// TopologicalOrder places an edge's source before its
				// target, so the producer is the edge's source here.
				g.AddEdge(dep.Signal, eqs[i].Signal, dep.Weight)
			}
		}
	}

	order, ok := g.TopologicalOrder()
	if !ok {
		chain, _ := g.DetectZeroWeightCycle()
		errs.Add(diag.CausalityLoop(names(table, chain), at))
		return
	}

	ordered := make([]hir.Equation, 0, len(eqs))
	for _, id := range order {
		ordered = append(ordered, *bySignal[id])
	}
	copy(eqs, ordered)
}

// scheduleExpr finds every Match arm's and When branch's own scoped
// equation list reachable from e and schedules it, recursing into the
// scheduled equations' own expressions to reach scopes nested further in.
func scheduleExpr(e *hir.StreamExpression, at loc.Location, table *ident.Table, errs *diag.Errors) {
	switch e.Kind {
	case hir.StreamFollowedBy:
		scheduleExpr(e.Delayed, at, table, errs)
	case hir.StreamMapApplication:
		for i := range e.Inputs {
			scheduleExpr(&e.Inputs[i], at, table, errs)
		}
	case hir.StreamUnitaryNodeApplication:
		for i := range e.Arguments {
			scheduleExpr(&e.Arguments[i], at, table, errs)
		}
	case hir.StreamStructure:
		for i := range e.Fields {
			scheduleExpr(&e.Fields[i].Expression, at, table, errs)
		}
	case hir.StreamArray, hir.StreamTuple:
		for i := range e.Elements {
			scheduleExpr(&e.Elements[i], at, table, errs)
		}
	case hir.StreamMatch:
		scheduleExpr(e.Scrutinee, at, table, errs)
		for i := range e.Arms {
			arm := &e.Arms[i]
			scheduleEquations(arm.Equations, at, table, errs)
			if arm.Guard != nil {
				scheduleExpr(arm.Guard, at, table, errs)
			}
			for j := range arm.Equations {
				scheduleExpr(&arm.Equations[j].Expression, at, table, errs)
			}
			scheduleExpr(&arm.Body, at, table, errs)
		}
	case hir.StreamWhen:
		scheduleExpr(e.Option, at, table, errs)
		scheduleEquations(e.PresentEqs, at, table, errs)
		for i := range e.PresentEqs {
			scheduleExpr(&e.PresentEqs[i].Expression, at, table, errs)
		}
		scheduleExpr(e.Present, at, table, errs)
		scheduleEquations(e.DefaultEqs, at, table, errs)
		for i := range e.DefaultEqs {
			scheduleExpr(&e.DefaultEqs[i].Expression, at, table, errs)
		}
		scheduleExpr(e.Default, at, table, errs)
	case hir.StreamFieldAccess, hir.StreamTupleElementAccess:
		scheduleExpr(e.Base, at, table, errs)
	case hir.StreamFold:
		scheduleExpr(e.Array, at, table, errs)
		scheduleExpr(e.Init, at, table, errs)
	case hir.StreamSort:
		scheduleExpr(e.Array, at, table, errs)
	case hir.StreamZip:
		for i := range e.Arrays {
			scheduleExpr(&e.Arrays[i], at, table, errs)
		}
	}
}

// componentOrder flattens the scheduled top-level equation order of every
// unitary node sourced from file.Component, in synthesis order — the flat
// signal sequence a runtime driving just the component would step through
// each cycle.
func componentOrder(file *hir.File) []ident.Identifier {
	if file.Component == nil {
		return nil
	}

	var out []ident.Identifier
	for i := range file.UnitaryNodes {
		u := &file.UnitaryNodes[i]
		if u.SourceNode != file.Component.Name {
			continue
		}
		for _, eq := range u.Equations {
			out = append(out, eq.Signal)
		}
	}

	return out
}

func names(table *ident.Table, chain []ident.Identifier) []string {
	out := make([]string, len(chain))
	for i, id := range chain {
		out[i] = table.Symbol(id).Name
	}

	return out
}
