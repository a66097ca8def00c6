package hir

import (
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/typ"
)

// Buffer is one persistent delay cell S8 extracts from a FollowedBy
// expression (spec.md §4.8): Initial seeds cycle 0. A Buffer records only
// its Key, Type and Initial constant; the FollowedBy's delayed expression is
// not stored here or anywhere else in Memory.
type Buffer struct {
	Key     ident.Identifier
	Type    typ.Type
	Initial typ.Constant
}

// CalledNode is a persistent slot for one UnitaryNodeApplication call site,
// where the caller keeps that callee instance's state alive across cycles
// rather than recreating it. S8 assigns every call site a Key identifying
// its slot in the caller's Memory, whether or not the callee has Memory of
// its own (spec.md §4.8 "recursion into called nodes' own memory").
type CalledNode struct {
	Key     ident.Identifier
	Unitary ident.Identifier
}

// Memory is the persistent state of a UnitaryNode across cycles (spec.md §3
// "Memory"): one Buffer per fby expression at this scope, plus one
// CalledNode per UnitaryNodeApplication call site.
type Memory struct {
	Buffers     []Buffer
	CalledNodes []CalledNode
}

// AddBuffer appends a fresh Buffer under key.
func (m *Memory) AddBuffer(key ident.Identifier, ty typ.Type, initial typ.Constant) {
	m.Buffers = append(m.Buffers, Buffer{Key: key, Type: ty, Initial: initial})
}

// AddCalledNode appends a fresh CalledNode slot.
func (m *Memory) AddCalledNode(key, unitary ident.Identifier) {
	m.CalledNodes = append(m.CalledNodes, CalledNode{Key: key, Unitary: unitary})
}
