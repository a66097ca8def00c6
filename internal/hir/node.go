package hir

import (
	"github.com/langrust/grust-sub004/internal/graph"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
)

// Node is the resolved, typed counterpart of ast.Node (spec.md §3 "Node").
// Graph is filled exactly once, by S4, and is read-only to every later pass
// (spec.md §9 "Once-init dependency graph cells"); it is keyed by Signal.ID
// over every input, output, and local of this node.
type Node struct {
	Name        ident.Identifier
	IsComponent bool
	Inputs      []Signal
	Outputs     []Signal
	Locals      []Signal
	Equations   []Equation
	Graph       graph.OnceGraph
	Location    loc.Location
}

// SignalByName finds a declared Signal of n by its symbol id, searching
// inputs, then outputs, then locals, mirroring the declaration order
// spec.md §3 lists for a Node.
func (n *Node) SignalByName(id ident.Identifier) (Signal, bool) {
	for _, s := range n.Inputs {
		if s.ID == id {
			return s, true
		}
	}
	for _, s := range n.Outputs {
		if s.ID == id {
			return s, true
		}
	}
	for _, s := range n.Locals {
		if s.ID == id {
			return s, true
		}
	}

	return Signal{}, false
}

// AllSignals returns every Signal declared on this node, inputs first, then
// outputs, then locals — the set an IdentifierCreator seeds itself from
// before minting fresh names scoped to this node.
func (n *Node) AllSignals() []Signal {
	out := make([]Signal, 0, len(n.Inputs)+len(n.Outputs)+len(n.Locals))
	out = append(out, n.Inputs...)
	out = append(out, n.Outputs...)
	out = append(out, n.Locals...)

	return out
}
