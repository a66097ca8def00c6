// Package memorize implements S8 (spec.md §4.8): extracting all state out of
// a unitary node's equations into its Memory. A FollowedBy becomes an
// explicit read of a fresh memory buffer that records the delay's type and
// initial constant; the delayed expression itself is discarded. A
// UnitaryNodeApplication keeps its place in the equation but gains a memory
// slot of its own, since the callee may itself carry state that must survive
// across cycles rather than being recreated on every call.
package memorize

import (
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/typ"
)

// Pass8 memorizes every unitary node in file, independently: each gets its
// own IdentifierCreator seeded from its own current signal set, matching S6
// and S7's per-unitary-node reseeding convention.
func Pass8(file *hir.File, table *ident.Table) {
	for i := range file.UnitaryNodes {
		u := &file.UnitaryNodes[i]
		m := &memorizer{
			table:   table,
			unit:    u,
			creator: hir.NewIdentifierCreator(table, signalNames(table, u.AllSignals())),
		}
		for j := range u.Equations {
			m.equation(&u.Equations[j])
		}
	}
}

type memorizer struct {
	table   *ident.Table
	unit    *hir.UnitaryNode
	creator *hir.IdentifierCreator
}

func (m *memorizer) equation(eq *hir.Equation) {
	m.walk(eq.Signal, &eq.Expression)
}

// walk descends into e looking for FollowedBy and UnitaryNodeApplication
// nodes to memorize, threading lhs (the enclosing equation's own signal)
// down unchanged: a FollowedBy nested several levels deep in the same
// equation still names its buffer after that equation's signal, not its
// immediate parent expression.
func (m *memorizer) walk(lhs ident.Identifier, e *hir.StreamExpression) {
	switch e.Kind {
	case hir.StreamFollowedBy:
		m.memorizeFollowedBy(lhs, e)
	case hir.StreamMapApplication:
		for i := range e.Inputs {
			m.walk(lhs, &e.Inputs[i])
		}
	case hir.StreamUnitaryNodeApplication:
		m.memorizeCall(e)
	case hir.StreamStructure:
		for i := range e.Fields {
			m.walk(lhs, &e.Fields[i].Expression)
		}
	case hir.StreamArray, hir.StreamTuple:
		for i := range e.Elements {
			m.walk(lhs, &e.Elements[i])
		}
	case hir.StreamMatch:
		m.walk(lhs, e.Scrutinee)
		for i := range e.Arms {
			arm := &e.Arms[i]
			if arm.Guard != nil {
				m.walk(lhs, arm.Guard)
			}
			for j := range arm.Equations {
				m.equation(&arm.Equations[j])
			}
			m.walk(lhs, &arm.Body)
		}
	case hir.StreamWhen:
		m.walk(lhs, e.Option)
		for i := range e.PresentEqs {
			m.equation(&e.PresentEqs[i])
		}
		m.walk(lhs, e.Present)
		for i := range e.DefaultEqs {
			m.equation(&e.DefaultEqs[i])
		}
		m.walk(lhs, e.Default)
	case hir.StreamFieldAccess, hir.StreamTupleElementAccess:
		m.walk(lhs, e.Base)
	case hir.StreamFold:
		m.walk(lhs, e.Array)
		m.walk(lhs, e.Init)
	case hir.StreamSort:
		m.walk(lhs, e.Array)
	case hir.StreamZip:
		for i := range e.Arrays {
			m.walk(lhs, &e.Arrays[i])
		}
	}
}

// memorizeFollowedBy replaces e in place with a read of a fresh memory
// buffer holding e's type and initial constant. The delayed expression is
// not kept: it is neither stored in the buffer nor walked for further
// memorization, so a fby nested inside it is dropped with it.
func (m *memorizer) memorizeFollowedBy(lhs ident.Identifier, e *hir.StreamExpression) {
	lhsName := m.table.Symbol(lhs).Name
	key := m.creator.Fresh("mem"+lhsName, e.Location, e.Type)
	m.unit.Memory.AddBuffer(key, e.Type, e.Initial)

	*e = hir.StreamExpression{Kind: hir.StreamMemory, Location: e.Location, Type: e.Type, Key: key}
	e.Dependencies.Set([]hir.Dep{{Signal: key, Weight: 0}})
}

// memorizeCall assigns e's call site a slot in the enclosing unitary node's
// Memory without otherwise touching e, since spec.md leaves
// UnitaryNodeApplication's own shape unchanged by S8.
func (m *memorizer) memorizeCall(e *hir.StreamExpression) {
	calleeName := m.table.Symbol(e.Node).Name
	key := m.creator.Fresh("mem"+calleeName, e.Location, typ.Type{Kind: typ.Unresolved})
	m.unit.Memory.AddCalledNode(key, e.Node)
	e.MemoryKey = &key
}

func signalNames(table *ident.Table, signals []hir.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = table.Symbol(s.ID).Name
	}
	return out
}
