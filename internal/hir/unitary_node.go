package hir

import (
	"github.com/langrust/grust-sub004/internal/graph"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/loc"
)

// UnitaryNode is one output of a Node, synthesized by S5 (spec.md §3
// "UnitaryNode"): a node computes exactly one output per UnitaryNode, over
// only the inputs and equations that output actually depends on, determined
// by reachability in the owning Node's Graph (spec.md §4.5). Every
// NodeApplication in the program is rewritten to one UnitaryNodeApplication
// per output the caller actually uses.
//
// Graph is first set by S5 to the owning Node's graph restricted to what
// the output reaches. S7 rebuilds it after inlining splices a callee's
// equations in (spec.md §4.7 "rebuild and recheck") by assigning a freshly
// set OnceGraph value to the field, never by calling Set a second time on
// the existing cell.
type UnitaryNode struct {
	Name       ident.Identifier
	SourceNode ident.Identifier
	Output     Signal
	Inputs     []Signal
	Locals     []Signal
	Equations  []Equation
	Graph      graph.OnceGraph
	Memory     Memory
	Location   loc.Location
}

// AllSignals mirrors Node.AllSignals, seeding IdentifierCreator instances
// scoped to this unitary node (S6, S7, S8 each reseed fresh per unitary
// node, per SPEC_FULL.md §4).
func (u *UnitaryNode) AllSignals() []Signal {
	out := make([]Signal, 0, len(u.Inputs)+1+len(u.Locals))
	out = append(out, u.Inputs...)
	out = append(out, u.Output)
	out = append(out, u.Locals...)

	return out
}
