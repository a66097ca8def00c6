// Package unitary implements S5 (spec.md §4.5): synthesize one UnitaryNode
// per output of every Node, restricted to the equations and inputs that
// output actually depends on, then rewrite every StreamNodeApplication call
// site in the program into a StreamUnitaryNodeApplication against the
// synthesized node.
package unitary

import (
	"fmt"

	"github.com/langrust/grust-sub004/internal/graph"
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
)

type key struct {
	node   ident.Identifier
	output ident.Identifier
}

type synthesizer struct {
	table *ident.Table
	file  *hir.File
	byKey map[key]ident.Identifier
}

// Pass5 synthesizes every UnitaryNode and rewrites every call site, leaving
// file.Nodes exactly as S4 left it (it is now frozen, read only by
// diagnostics; everything downstream operates on file.UnitaryNodes).
func Pass5(file *hir.File, table *ident.Table) {
	s := &synthesizer{table: table, file: file, byKey: make(map[key]ident.Identifier)}

	for i := range file.Nodes {
		for _, u := range s.synthesize(&file.Nodes[i]) {
			file.UnitaryNodes = append(file.UnitaryNodes, u)
		}
	}

	for i := range file.UnitaryNodes {
		u := &file.UnitaryNodes[i]
		s.byKey[key{node: u.SourceNode, output: u.Output.ID}] = u.Name
	}

	for i := range file.UnitaryNodes {
		u := &file.UnitaryNodes[i]
		for j := range u.Equations {
			s.rewrite(&u.Equations[j].Expression)
		}
	}
}

// synthesize builds one UnitaryNode per output of n, per spec.md §4.5 steps
// 1-4: compute reachability from the output in n's graph, retain only
// equations/inputs/locals that are reachable, preserve declaration order.
func (s *synthesizer) synthesize(n *hir.Node) []hir.UnitaryNode {
	g := n.Graph.Get()

	out := make([]hir.UnitaryNode, 0, len(n.Outputs))
	for _, o := range n.Outputs {
		reached := g.Reachable(o.ID)

		var inputs []hir.Signal
		for _, in := range n.Inputs {
			if reached[in.ID] {
				inputs = append(inputs, in)
			}
		}
		var locals []hir.Signal
		for _, l := range n.Locals {
			if reached[l.ID] {
				locals = append(locals, l)
			}
		}
		var eqs []hir.Equation
		for _, eq := range n.Equations {
			if reached[eq.Signal] {
				eqs = append(eqs, eq)
			}
		}

		sub := graph.New()
		for id := range reached {
			sub.AddVertex(id)
		}
		for id := range reached {
			for _, e := range g.Neighbors(id) {
				if reached[e.To] {
					sub.AddEdge(id, e.To, e.Weight)
				}
			}
		}
		var subCell graph.OnceGraph
		subCell.Set(sub)

		name := s.freshUnitaryName(n, o)

		out = append(out, hir.UnitaryNode{
			Name:       name,
			SourceNode: n.Name,
			Output:     o,
			Inputs:     inputs,
			Locals:     locals,
			Equations:  eqs,
			Graph:      subCell,
			Location:   n.Location,
		})
	}

	return out
}

// freshUnitaryName mints the identifier naming a synthesized UnitaryNode,
// "{node}/{output}" (spec.md §8 scenario E's own "n/o1" notation).
func (s *synthesizer) freshUnitaryName(n *hir.Node, o hir.Signal) ident.Identifier {
	name := fmt.Sprintf("%s/%s", s.table.Symbol(n.Name).Name, s.table.Symbol(o.ID).Name)

	id, ok := s.table.Declare(name, n.Location, ident.KindIdentifier)
	if !ok {
		panic("unitary: synthesized unitary node name collided: " + name)
	}

	return id
}

// rewrite walks e, replacing every StreamNodeApplication it finds with the
// StreamUnitaryNodeApplication targeting the callee's already-synthesized
// unitary node (spec.md §4.5: "rewrite every NodeApplication... into
// UnitaryNodeApplication").
func (s *synthesizer) rewrite(e *hir.StreamExpression) {
	switch e.Kind {
	case hir.StreamFollowedBy:
		s.rewrite(e.Delayed)
	case hir.StreamMapApplication:
		for i := range e.Inputs {
			s.rewrite(&e.Inputs[i])
		}
	case hir.StreamNodeApplication:
		for i := range e.Arguments {
			s.rewrite(&e.Arguments[i])
		}
		s.rewriteCall(e)
	case hir.StreamUnitaryNodeApplication:
		for i := range e.Arguments {
			s.rewrite(&e.Arguments[i])
		}
	case hir.StreamStructure:
		for i := range e.Fields {
			s.rewrite(&e.Fields[i].Expression)
		}
	case hir.StreamArray, hir.StreamTuple:
		for i := range e.Elements {
			s.rewrite(&e.Elements[i])
		}
	case hir.StreamMatch:
		s.rewrite(e.Scrutinee)
		for i := range e.Arms {
			if e.Arms[i].Guard != nil {
				s.rewrite(e.Arms[i].Guard)
			}
			s.rewrite(&e.Arms[i].Body)
		}
	case hir.StreamWhen:
		s.rewrite(e.Option)
		s.rewrite(e.Present)
		s.rewrite(e.Default)
	case hir.StreamFieldAccess, hir.StreamTupleElementAccess:
		s.rewrite(e.Base)
	case hir.StreamFold:
		s.rewrite(e.Array)
		s.rewrite(e.Init)
	case hir.StreamSort:
		s.rewrite(e.Array)
	case hir.StreamZip:
		for i := range e.Arrays {
			s.rewrite(&e.Arrays[i])
		}
	}
}

// rewriteCall narrows e in place from a whole-node call to a call against
// the one unitary node o actually needs, dropping arguments for inputs the
// reduced signature doesn't read (spec.md §8 scenario E).
func (s *synthesizer) rewriteCall(e *hir.StreamExpression) {
	callee, ok := s.file.NodeByName(e.Node)
	if !ok {
		panic("unitary: node application references an unresolved node")
	}
	target, ok := s.byKey[key{node: e.Node, output: e.Output}]
	if !ok {
		panic("unitary: no unitary node synthesized for this (node, output) pair")
	}
	unode, ok := s.file.UnitaryNodeByName(target)
	if !ok {
		panic("unitary: dangling synthesized unitary node name")
	}

	argByInput := make(map[ident.Identifier]hir.StreamExpression, len(callee.Inputs))
	for i, in := range callee.Inputs {
		if i < len(e.Arguments) {
			argByInput[in.ID] = e.Arguments[i]
		}
	}

	args := make([]hir.StreamExpression, 0, len(unode.Inputs))
	for _, in := range unode.Inputs {
		args = append(args, argByInput[in.ID])
	}

	e.Kind = hir.StreamUnitaryNodeApplication
	e.Node = target
	e.Arguments = args
	e.Output = ident.Invalid
}
