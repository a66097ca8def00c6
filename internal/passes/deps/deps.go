// Package deps implements S4 (spec.md §4.4): for every node, build a
// signal-level dependency graph with delay weights, filling in every
// stream expression's Dependencies cell along the way, then check for a
// causality loop.
package deps

import (
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/graph"
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
)

type builder struct {
	table *ident.Table
	errs  *diag.Errors
	file  *hir.File

	// outputDeps[node][output] is the transitive (input, weight) set for
	// that output, computed once the node's own graph is built — consulted
	// by every caller's NodeApplication deps computation (spec.md §4.4
	// "Transitive handling of node calls").
	outputDeps map[ident.Identifier]map[ident.Identifier][]hir.Dep
}

// Pass4 builds every node's dependency graph in callee-before-caller order
// and records a CausalityLoop diagnostic for any node whose zero-weight
// projection contains a cycle.
func Pass4(file *hir.File, table *ident.Table, errs *diag.Errors) {
	b := &builder{
		table:      table,
		errs:       errs,
		file:       file,
		outputDeps: make(map[ident.Identifier]map[ident.Identifier][]hir.Dep),
	}

	for _, i := range b.nodeOrder(file) {
		b.buildNode(&file.Nodes[i])
	}
}

// nodeOrder returns node indices ordered so that a node calling another
// always comes after its callee (spec.md §4.4: "processing node
// definitions in dependency order: callees before callers; recursion among
// nodes is not permitted").
func (b *builder) nodeOrder(file *hir.File) []int {
	g := graph.New()
	byID := make(map[ident.Identifier]int, len(file.Nodes))
	for i := range file.Nodes {
		g.AddVertex(file.Nodes[i].Name)
		byID[file.Nodes[i].Name] = i
	}
	for i := range file.Nodes {
		for j := range file.Nodes[i].Equations {
			for _, callee := range collectCalls(&file.Nodes[i].Equations[j].Expression) {
				// TopologicalOrder places an edge's source before its target, so
				// the callee is the source here to land it ahead of its caller.
				g.AddEdge(callee, file.Nodes[i].Name, 0)
			}
		}
	}

	order, ok := g.TopologicalOrder()
	if !ok {
		panic("deps: recursive node calls are not permitted")
	}

	idx := make([]int, 0, len(order))
	for _, id := range order {
		idx = append(idx, byID[id])
	}

	return idx
}

// collectCalls returns every callee node named by a StreamNodeApplication
// anywhere in e, without touching Dependencies — used only to establish
// nodeOrder before any graph is built.
func collectCalls(e *hir.StreamExpression) []ident.Identifier {
	var out []ident.Identifier
	switch e.Kind {
	case hir.StreamFollowedBy:
		out = append(out, collectCalls(e.Delayed)...)
	case hir.StreamMapApplication:
		for i := range e.Inputs {
			out = append(out, collectCalls(&e.Inputs[i])...)
		}
	case hir.StreamNodeApplication:
		out = append(out, e.Node)
		for i := range e.Arguments {
			out = append(out, collectCalls(&e.Arguments[i])...)
		}
	case hir.StreamStructure:
		for i := range e.Fields {
			out = append(out, collectCalls(&e.Fields[i].Expression)...)
		}
	case hir.StreamArray, hir.StreamTuple:
		for i := range e.Elements {
			out = append(out, collectCalls(&e.Elements[i])...)
		}
	case hir.StreamMatch:
		out = append(out, collectCalls(e.Scrutinee)...)
		for i := range e.Arms {
			if e.Arms[i].Guard != nil {
				out = append(out, collectCalls(e.Arms[i].Guard)...)
			}
			out = append(out, collectCalls(&e.Arms[i].Body)...)
		}
	case hir.StreamWhen:
		out = append(out, collectCalls(e.Option)...)
		out = append(out, collectCalls(e.Present)...)
		out = append(out, collectCalls(e.Default)...)
	case hir.StreamFieldAccess, hir.StreamTupleElementAccess:
		out = append(out, collectCalls(e.Base)...)
	case hir.StreamFold:
		out = append(out, collectCalls(e.Array)...)
		out = append(out, collectCalls(e.Init)...)
	case hir.StreamSort:
		out = append(out, collectCalls(e.Array)...)
	case hir.StreamZip:
		for i := range e.Arrays {
			out = append(out, collectCalls(&e.Arrays[i])...)
		}
	}

	return out
}

func (b *builder) buildNode(n *hir.Node) {
	g := graph.New()
	for _, s := range n.AllSignals() {
		g.AddVertex(s.ID)
	}

	for i := range n.Equations {
		eq := &n.Equations[i]
		for _, dep := range b.depsOf(&eq.Expression, n) {
			g.AddEdge(eq.Signal, dep.Signal, dep.Weight)
		}
	}

	n.Graph.Set(g)

	if chain, found := g.DetectZeroWeightCycle(); found {
		b.errs.Add(diag.CausalityLoop(b.names(chain), n.Location))
	}

	b.recordOutputDeps(n, g)
}

// recordOutputDeps computes, for every output of n, the transitive set of
// n's own inputs it depends on (with delay weight summed along the path
// transitiveInputDeps's visited-once walk takes) — the per-(node, output) table every caller's
// NodeApplication deps computation consults.
func (b *builder) recordOutputDeps(n *hir.Node, g *graph.Graph) {
	inputs := make(map[ident.Identifier]bool, len(n.Inputs))
	for _, s := range n.Inputs {
		inputs[s.ID] = true
	}

	outs := make(map[ident.Identifier][]hir.Dep, len(n.Outputs))
	for _, s := range n.Outputs {
		outs[s.ID] = transitiveInputDeps(g, s.ID, inputs)
	}
	b.outputDeps[n.Name] = outs
}

// transitiveInputDeps walks g from start, recording (input, cumulative
// weight) for every reachable input-scoped signal. A signal is expanded at
// most once regardless of how many incoming paths reach it, which keeps
// this terminating even through a positive-weight feedback cycle (a
// legitimate pattern — only zero-weight cycles are forbidden, spec.md §4.4).
func transitiveInputDeps(g *graph.Graph, start ident.Identifier, inputs map[ident.Identifier]bool) []hir.Dep {
	var out []hir.Dep
	visited := map[ident.Identifier]bool{start: true}

	var walk func(id ident.Identifier, acc int)
	walk = func(id ident.Identifier, acc int) {
		for _, e := range g.Neighbors(id) {
			w := acc + e.Weight
			if inputs[e.To] {
				out = append(out, hir.Dep{Signal: e.To, Weight: w})
			}
			if !visited[e.To] {
				visited[e.To] = true
				walk(e.To, w)
			}
		}
	}
	walk(start, 0)

	return out
}

func (b *builder) names(chain []ident.Identifier) []string {
	out := make([]string, len(chain))
	for i, id := range chain {
		out[i] = b.table.Symbol(id).Name
	}

	return out
}

// depsOf computes deps(E) per spec.md §4.4's per-kind rules, recording the
// result on e.Dependencies before returning it — every stream expression,
// not only equation roots, gets its cell filled here.
func (b *builder) depsOf(e *hir.StreamExpression, n *hir.Node) []hir.Dep {
	var result []hir.Dep

	switch e.Kind {
	case hir.StreamConstant:
	case hir.StreamSignalCall:
		result = []hir.Dep{{Signal: e.Signal, Weight: 0}}
	case hir.StreamFollowedBy:
		result = hir.Shift(b.depsOf(e.Delayed, n), 1)
	case hir.StreamMapApplication:
		lists := make([][]hir.Dep, len(e.Inputs))
		for i := range e.Inputs {
			lists[i] = b.depsOf(&e.Inputs[i], n)
		}
		result = hir.Union(lists...)
	case hir.StreamNodeApplication:
		result = b.depsOfNodeApplication(e, n)
	case hir.StreamUnitaryNodeApplication:
		panic("deps: StreamUnitaryNodeApplication seen before S5")
	case hir.StreamStructure:
		lists := make([][]hir.Dep, len(e.Fields))
		for i := range e.Fields {
			lists[i] = b.depsOf(&e.Fields[i].Expression, n)
		}
		result = hir.Union(lists...)
	case hir.StreamArray, hir.StreamTuple:
		lists := make([][]hir.Dep, len(e.Elements))
		for i := range e.Elements {
			lists[i] = b.depsOf(&e.Elements[i], n)
		}
		result = hir.Union(lists...)
	case hir.StreamMatch:
		lists := [][]hir.Dep{b.depsOf(e.Scrutinee, n)}
		for i := range e.Arms {
			arm := &e.Arms[i]
			if arm.Guard != nil {
				lists = append(lists, b.depsOf(arm.Guard, n))
			}
			lists = append(lists, b.depsOf(&arm.Body, n))
		}
		result = hir.Union(lists...)
	case hir.StreamWhen:
		result = hir.Union(b.depsOf(e.Option, n), b.depsOf(e.Present, n), b.depsOf(e.Default, n))
	case hir.StreamFieldAccess:
		result = b.depsOf(e.Base, n)
	case hir.StreamTupleElementAccess:
		result = b.depsOf(e.Base, n)
	case hir.StreamFold:
		result = hir.Union(b.depsOf(e.Array, n), b.depsOf(e.Init, n))
	case hir.StreamSort:
		result = b.depsOf(e.Array, n)
	case hir.StreamZip:
		lists := make([][]hir.Dep, len(e.Arrays))
		for i := range e.Arrays {
			lists[i] = b.depsOf(&e.Arrays[i], n)
		}
		result = hir.Union(lists...)
	case hir.StreamMemory:
		panic("deps: StreamMemory seen before S8")
	default:
		panic("deps: unknown StreamKind")
	}

	e.Dependencies.Set(result)

	return result
}

// depsOfNodeApplication contributes, per input the callee's output actually
// reads, the caller-side argument's own deps shifted by the callee's
// transitive delay for that input (spec.md §4.4 "Transitive handling of
// node calls").
func (b *builder) depsOfNodeApplication(e *hir.StreamExpression, n *hir.Node) []hir.Dep {
	callee, ok := b.file.NodeByName(e.Node)
	if !ok {
		panic("deps: node application references an unresolved node")
	}
	outs, ok := b.outputDeps[e.Node]
	if !ok {
		panic("deps: callee processed after caller (node order invariant violated)")
	}

	argDeps := make([][]hir.Dep, len(callee.Inputs))
	indexByInput := make(map[ident.Identifier]int, len(callee.Inputs))
	for i, in := range callee.Inputs {
		indexByInput[in.ID] = i
		if i < len(e.Arguments) {
			argDeps[i] = b.depsOf(&e.Arguments[i], n)
		}
	}

	var lists [][]hir.Dep
	for _, id := range outs[e.Output] {
		idx, ok := indexByInput[id.Signal]
		if !ok || idx >= len(argDeps) {
			continue
		}
		lists = append(lists, hir.Shift(argDeps[idx], id.Weight))
	}

	return hir.Union(lists...)
}
