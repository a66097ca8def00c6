package hir

import (
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
)

// File is the root of a fully-compiled program (spec.md §3 "File"). Nodes
// holds every declared node exactly as S1-S4 left it; UnitaryNodes holds
// S5's per-output synthesis, progressively rewritten in place by S6-S9.
// S9 schedules every UnitaryNode's own Equations, not only the designated
// component's — a multi-output component still synthesizes one UnitaryNode
// per output, and P4 binds all of them equally. ScheduleOrder is a
// convenience on top of that: the flattened top-level signal order of the
// UnitaryNodes sourced from Component specifically, in synthesis order, nil
// until S9 runs or if no Component is designated.
type File struct {
	Table         *ident.Table
	Nodes         []Node
	UnitaryNodes  []UnitaryNode
	Component     *Node
	ScheduleOrder []ident.Identifier
	Location      loc.Location
}

// NodeByName finds a Node by its symbol id.
func (f *File) NodeByName(id ident.Identifier) (*Node, bool) {
	for i := range f.Nodes {
		if f.Nodes[i].Name == id {
			return &f.Nodes[i], true
		}
	}

	return nil, false
}

// UnitaryNodeByName finds a UnitaryNode by its synthesized symbol id.
func (f *File) UnitaryNodeByName(id ident.Identifier) (*UnitaryNode, bool) {
	for i := range f.UnitaryNodes {
		if f.UnitaryNodes[i].Name == id {
			return &f.UnitaryNodes[i], true
		}
	}

	return nil, false
}

// UnitaryNodesOf returns every UnitaryNode synthesized from the Node named
// source, in the order S5 created them (spec.md §4.5: "one per output, in
// declaration order of outputs").
func (f *File) UnitaryNodesOf(source ident.Identifier) []*UnitaryNode {
	var out []*UnitaryNode
	for i := range f.UnitaryNodes {
		if f.UnitaryNodes[i].SourceNode == source {
			out = append(out, &f.UnitaryNodes[i])
		}
	}

	return out
}
