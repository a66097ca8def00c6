// Package normalize implements S6 (spec.md §4.6): rewrites every unitary
// node's equations so that a UnitaryNodeApplication only ever appears at the
// root of an equation's RHS, with every one of its inputs already coerced to
// a plain SignalCall (I5).
package normalize

import (
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
)

// normalizer carries the per-unitary-node IdentifierCreator and the current
// hoist target: eqs points at the equation list a freshly materialized local
// gets appended to, which is the unitary node's own Equations everywhere
// except inside a Match arm or a When branch, where it is that arm's or
// branch's own Equations/PresentEqs/DefaultEqs (spec.md §3.4's per-scope
// equation lists).
type normalizer struct {
	unit    *hir.UnitaryNode
	creator *hir.IdentifierCreator
	eqs     *[]hir.Equation
}

// Pass6 normalizes every equation of every unitary node in file.
func Pass6(file *hir.File, table *ident.Table) {
	for i := range file.UnitaryNodes {
		u := &file.UnitaryNodes[i]
		n := &normalizer{
			unit:    u,
			creator: hir.NewIdentifierCreator(table, signalNames(table, u.AllSignals())),
			eqs:     &u.Equations,
		}

		// u.Equations grows as hoisting runs; only the equations present at
		// the start of the pass need root treatment, since anything hoisted
		// is already in final normalized form by construction.
		count := len(u.Equations)
		for j := 0; j < count; j++ {
			n.normalizeRoot(&u.Equations[j].Expression)
		}
	}
}

func signalNames(table *ident.Table, signals []hir.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = table.Symbol(s.ID).Name
	}
	return out
}

// normalizeRoot is normalize_root (spec.md §4.6): a UnitaryNodeApplication
// at this position stays in place, with each of its inputs coerced to a
// SignalCall; anything else descends into its non-call backbone.
func (n *normalizer) normalizeRoot(e *hir.StreamExpression) {
	if e.Kind == hir.StreamUnitaryNodeApplication {
		for i := range e.Arguments {
			n.toSignalCall(&e.Arguments[i])
		}
		return
	}
	n.descend(e)
}

// normalizeCascade is normalize_cascade (spec.md §4.6): a
// UnitaryNodeApplication found here is hoisted into a fresh equation at the
// current eqs sink and replaced by a SignalCall to that equation's signal.
func (n *normalizer) normalizeCascade(e *hir.StreamExpression) {
	if e.Kind == hir.StreamUnitaryNodeApplication {
		for i := range e.Arguments {
			n.toSignalCall(&e.Arguments[i])
		}
		n.hoist(e)
		return
	}
	n.descend(e)
}

// toSignalCall normalizes e in place, then hoists it if it still isn't a
// plain SignalCall (spec.md §4.6 normalize_to_signal_call). A
// UnitaryNodeApplication is already turned into a SignalCall by the
// normalizeCascade call above, so the extra check here only fires for
// anything else: a constant, a pointwise expression, a structure, and so on.
func (n *normalizer) toSignalCall(e *hir.StreamExpression) {
	n.normalizeCascade(e)
	if e.Kind != hir.StreamSignalCall {
		n.hoist(e)
	}
}

// hoist materializes a fresh local signal x_k holding e's current value,
// appends the equation x_k = e to the current eqs sink, and replaces e in
// place with SignalCall(x_k).
func (n *normalizer) hoist(e *hir.StreamExpression) {
	name := n.creator.Fresh("x", e.Location, e.Type)
	n.unit.Locals = append(n.unit.Locals, hir.Signal{ID: name, Scope: hir.ScopeLocal})
	*n.eqs = append(*n.eqs, hir.Equation{Signal: name, Expression: *e, Location: e.Location})

	*e = hir.StreamExpression{Kind: hir.StreamSignalCall, Location: e.Location, Type: e.Type, Signal: name}
}

// descend walks e's non-call backbone, cascade-normalizing every child.
func (n *normalizer) descend(e *hir.StreamExpression) {
	switch e.Kind {
	case hir.StreamFollowedBy:
		n.normalizeCascade(e.Delayed)
	case hir.StreamMapApplication:
		for i := range e.Inputs {
			n.normalizeCascade(&e.Inputs[i])
		}
	case hir.StreamNodeApplication:
		panic("normalize: a StreamNodeApplication survived past S5")
	case hir.StreamStructure:
		for i := range e.Fields {
			n.normalizeCascade(&e.Fields[i].Expression)
		}
	case hir.StreamArray, hir.StreamTuple:
		for i := range e.Elements {
			n.normalizeCascade(&e.Elements[i])
		}
	case hir.StreamMatch:
		n.normalizeCascade(e.Scrutinee)
		for i := range e.Arms {
			arm := &e.Arms[i]
			saved := n.eqs
			n.eqs = &arm.Equations
			if arm.Guard != nil {
				n.normalizeCascade(arm.Guard)
			}
			n.normalizeCascade(&arm.Body)
			n.eqs = saved
		}
	case hir.StreamWhen:
		n.normalizeCascade(e.Option)
		saved := n.eqs
		n.eqs = &e.PresentEqs
		n.normalizeCascade(e.Present)
		n.eqs = &e.DefaultEqs
		n.normalizeCascade(e.Default)
		n.eqs = saved
	case hir.StreamFieldAccess, hir.StreamTupleElementAccess:
		n.normalizeCascade(e.Base)
	case hir.StreamFold:
		n.normalizeCascade(e.Array)
		n.normalizeCascade(e.Init)
	case hir.StreamSort:
		n.normalizeCascade(e.Array)
	case hir.StreamZip:
		for i := range e.Arrays {
			n.normalizeCascade(&e.Arrays[i])
		}
	case hir.StreamMemory:
		panic("normalize: a StreamMemory appeared before S8")
	}
}
