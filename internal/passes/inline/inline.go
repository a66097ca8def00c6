// Package inline implements S7 (spec.md §4.7): causal inlining. A
// UnitaryNodeApplication that sits on a zero-weight cycle of its own
// unitary node's dependency graph cannot be compiled as an ordinary call (no
// evaluation order would satisfy it), even though the computation may be
// perfectly well-defined once the callee's own delays are taken into
// account (spec.md's semi_fib/fib_call example). Such a call is spliced
// inline instead: the callee's equations are copied into the caller under
// fresh identifiers, and the caller's graph is rebuilt and rechecked.
package inline

import (
	"github.com/langrust/grust-sub004/internal/diag"
	"github.com/langrust/grust-sub004/internal/graph"
	"github.com/langrust/grust-sub004/internal/hir"
	"github.com/langrust/grust-sub004/internal/ident"
	"github.com/langrust/grust-sub004/internal/typ"
)

// Pass7 inlines every causally-cyclic call in the program, visiting unitary
// nodes bottom-up: a callee is fully resolved (including any inlining of
// its own) before any of its callers are visited. S4 forbids cross-node
// recursion, so the unitary-node call graph is guaranteed acyclic and this
// order always exists.
func Pass7(file *hir.File, table *ident.Table, errs *diag.Errors) {
	for _, idx := range callOrder(file) {
		inlineVisit(file, table, errs, idx)
	}
}

func callOrder(file *hir.File) []int {
	g := graph.New()
	byName := make(map[ident.Identifier]int, len(file.UnitaryNodes))
	for i := range file.UnitaryNodes {
		g.AddVertex(file.UnitaryNodes[i].Name)
		byName[file.UnitaryNodes[i].Name] = i
	}
	for i := range file.UnitaryNodes {
		for _, eq := range allEquations(&file.UnitaryNodes[i]) {
			if eq.Expression.Kind == hir.StreamUnitaryNodeApplication {
				// TopologicalOrder places an edge's source before its target, so
				// the callee is the source here to land it ahead of its caller.
				g.AddEdge(eq.Expression.Node, file.UnitaryNodes[i].Name, 0)
			}
		}
	}

	order, ok := g.TopologicalOrder()
	if !ok {
		panic("inline: cyclic unitary-node call graph (should be impossible, S4 forbids node recursion)")
	}

	idx := make([]int, 0, len(order))
	for _, id := range order {
		idx = append(idx, byName[id])
	}
	return idx
}

// inlineVisit repeatedly finds a zero-weight cycle in u's graph and inlines
// one call site on it, until the graph is acyclic (done) or no call site
// remains to inline (a genuine causality loop, reported as a diagnostic).
func inlineVisit(file *hir.File, table *ident.Table, errs *diag.Errors, idx int) {
	u := &file.UnitaryNodes[idx]
	for {
		g := buildGraph(u)
		chain, found := g.DetectZeroWeightCycle()
		if !found {
			var oc graph.OnceGraph
			oc.Set(g)
			u.Graph = oc
			return
		}

		eq := callOnCycle(u, chain)
		if eq == nil {
			errs.Add(diag.CausalityLoop(chainNames(table, chain), u.Location))
			var oc graph.OnceGraph
			oc.Set(g)
			u.Graph = oc
			return
		}

		inlineCall(file, table, u, eq)
	}
}

func buildGraph(u *hir.UnitaryNode) *graph.Graph {
	g := graph.New()
	for _, s := range u.AllSignals() {
		g.AddVertex(s.ID)
	}
	for _, eq := range allEquations(u) {
		for _, dep := range eq.Expression.Dependencies.Get() {
			g.AddEdge(eq.Signal, dep.Signal, dep.Weight)
		}
	}
	return g
}

func callOnCycle(u *hir.UnitaryNode, chain []ident.Identifier) *hir.Equation {
	onCycle := make(map[ident.Identifier]bool, len(chain))
	for _, id := range chain {
		onCycle[id] = true
	}
	for _, eq := range allEquations(u) {
		if onCycle[eq.Signal] && eq.Expression.Kind == hir.StreamUnitaryNodeApplication {
			return eq
		}
	}
	return nil
}

func chainNames(table *ident.Table, chain []ident.Identifier) []string {
	out := make([]string, len(chain))
	for i, id := range chain {
		out[i] = table.Symbol(id).Name
	}
	return out
}

// allEquations returns every equation owned by u, including those hoisted
// into a Match arm's or a When branch's own scoped equation list (spec.md
// §3.4), as pointers into their real backing slices.
func allEquations(u *hir.UnitaryNode) []*hir.Equation {
	var out []*hir.Equation

	var walkEqs func(eqs []hir.Equation)
	var walkExpr func(e *hir.StreamExpression)

	walkEqs = func(eqs []hir.Equation) {
		for i := range eqs {
			out = append(out, &eqs[i])
			walkExpr(&eqs[i].Expression)
		}
	}

	walkExpr = func(e *hir.StreamExpression) {
		switch e.Kind {
		case hir.StreamFollowedBy:
			walkExpr(e.Delayed)
		case hir.StreamMapApplication:
			for i := range e.Inputs {
				walkExpr(&e.Inputs[i])
			}
		case hir.StreamUnitaryNodeApplication:
			for i := range e.Arguments {
				walkExpr(&e.Arguments[i])
			}
		case hir.StreamStructure:
			for i := range e.Fields {
				walkExpr(&e.Fields[i].Expression)
			}
		case hir.StreamArray, hir.StreamTuple:
			for i := range e.Elements {
				walkExpr(&e.Elements[i])
			}
		case hir.StreamMatch:
			walkExpr(e.Scrutinee)
			for i := range e.Arms {
				arm := &e.Arms[i]
				if arm.Guard != nil {
					walkExpr(arm.Guard)
				}
				walkEqs(arm.Equations)
				walkExpr(&arm.Body)
			}
		case hir.StreamWhen:
			walkExpr(e.Option)
			walkEqs(e.PresentEqs)
			walkExpr(e.Present)
			walkEqs(e.DefaultEqs)
			walkExpr(e.Default)
		case hir.StreamFieldAccess, hir.StreamTupleElementAccess:
			walkExpr(e.Base)
		case hir.StreamFold:
			walkExpr(e.Array)
			walkExpr(e.Init)
		case hir.StreamSort:
			walkExpr(e.Array)
		case hir.StreamZip:
			for i := range e.Arrays {
				walkExpr(&e.Arrays[i])
			}
		}
	}

	walkEqs(u.Equations)
	return out
}

// inlineCall splices callee's equations into u in place of the call site
// held by eq, per spec.md §4.7's four-step procedure.
func inlineCall(file *hir.File, table *ident.Table, u *hir.UnitaryNode, eq *hir.Equation) {
	call := eq.Expression
	callee, ok := file.UnitaryNodeByName(call.Node)
	if !ok {
		panic("inline: call site references an unsynthesized unitary node")
	}

	creator := hir.NewIdentifierCreator(table, signalNames(table, u.AllSignals()))

	mapping := make(map[ident.Identifier]ident.Identifier, len(callee.Inputs)+1+len(callee.Locals))
	for i, in := range callee.Inputs {
		mapping[in.ID] = call.Arguments[i].Signal
	}

	renamedOutput := creator.Fresh(table.Symbol(callee.Output.ID).Name, callee.Location, typeOf(table, callee.Output.ID))
	mapping[callee.Output.ID] = renamedOutput

	for _, l := range callee.Locals {
		mapping[l.ID] = creator.Fresh(table.Symbol(l.ID).Name, callee.Location, typeOf(table, l.ID))
	}

	// Replace the call site before appending anything below, so this write
	// lands regardless of whether later appends reallocate the slice eq
	// points into.
	*eq = hir.Equation{
		Signal:   eq.Signal,
		Location: eq.Location,
		Expression: hir.StreamExpression{
			Kind: hir.StreamSignalCall, Location: call.Location, Type: call.Type, Signal: renamedOutput,
		},
	}
	eq.Expression.Dependencies.Set([]hir.Dep{{Signal: renamedOutput, Weight: 0}})

	u.Equations = append(u.Equations, cloneEquations(callee.Equations, mapping)...)

	u.Locals = append(u.Locals, hir.Signal{ID: renamedOutput, Scope: hir.ScopeLocal})
	for _, l := range callee.Locals {
		u.Locals = append(u.Locals, hir.Signal{ID: mapping[l.ID], Scope: hir.ScopeLocal})
	}

	mergeMemory(creator, table, u, callee.Memory)
}

func typeOf(table *ident.Table, id ident.Identifier) typ.Type {
	if sym := table.Symbol(id); sym.Type != nil {
		return *sym.Type
	}
	return typ.Type{Kind: typ.Unresolved}
}

func signalNames(table *ident.Table, signals []hir.Signal) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = table.Symbol(s.ID).Name
	}
	return out
}

func rename(id ident.Identifier, mapping map[ident.Identifier]ident.Identifier) ident.Identifier {
	if to, ok := mapping[id]; ok {
		return to
	}
	return id
}

func mergeMemory(creator *hir.IdentifierCreator, table *ident.Table, u *hir.UnitaryNode, m hir.Memory) {
	for _, b := range m.Buffers {
		key := creator.Fresh(table.Symbol(b.Key).Name, u.Location, b.Type)
		u.Memory.AddBuffer(key, b.Type, b.Initial)
	}
	for _, c := range m.CalledNodes {
		key := creator.Fresh(table.Symbol(c.Key).Name, u.Location, typeOf(table, c.Key))
		u.Memory.AddCalledNode(key, c.Unitary)
	}
}

func cloneEquations(eqs []hir.Equation, mapping map[ident.Identifier]ident.Identifier) []hir.Equation {
	out := make([]hir.Equation, len(eqs))
	for i := range eqs {
		out[i] = hir.Equation{
			Signal:     rename(eqs[i].Signal, mapping),
			Location:   eqs[i].Location,
			Expression: cloneExpr(eqs[i].Expression, mapping),
		}
	}
	return out
}

// cloneExpr deep-copies e, renaming every SignalCall and Dependencies entry
// through mapping. Every other identifier-valued field (Node, Function,
// BindID, FieldID, StructType, EnumType, Combine, Comparator) names a
// globally stable symbol that is never duplicated by splicing, so it is
// left untouched.
func cloneExpr(e hir.StreamExpression, mapping map[ident.Identifier]ident.Identifier) hir.StreamExpression {
	out := e
	out.Dependencies = e.Dependencies.Renamed(mapping)

	switch e.Kind {
	case hir.StreamSignalCall:
		out.Signal = rename(e.Signal, mapping)
	case hir.StreamFollowedBy:
		out.Delayed = clonePtr(e.Delayed, mapping)
	case hir.StreamMapApplication:
		out.Inputs = cloneList(e.Inputs, mapping)
	case hir.StreamNodeApplication:
		panic("inline: a StreamNodeApplication survived past S5")
	case hir.StreamUnitaryNodeApplication:
		out.Arguments = cloneList(e.Arguments, mapping)
	case hir.StreamStructure:
		out.Fields = cloneFields(e.Fields, mapping)
	case hir.StreamArray, hir.StreamTuple:
		out.Elements = cloneList(e.Elements, mapping)
	case hir.StreamMatch:
		out.Scrutinee = clonePtr(e.Scrutinee, mapping)
		out.Arms = cloneArms(e.Arms, mapping)
	case hir.StreamWhen:
		out.Option = clonePtr(e.Option, mapping)
		out.PresentEqs = cloneEquations(e.PresentEqs, mapping)
		out.Present = clonePtr(e.Present, mapping)
		out.DefaultEqs = cloneEquations(e.DefaultEqs, mapping)
		out.Default = clonePtr(e.Default, mapping)
	case hir.StreamFieldAccess, hir.StreamTupleElementAccess:
		out.Base = clonePtr(e.Base, mapping)
	case hir.StreamFold:
		out.Array = clonePtr(e.Array, mapping)
		out.Init = clonePtr(e.Init, mapping)
	case hir.StreamSort:
		out.Array = clonePtr(e.Array, mapping)
	case hir.StreamZip:
		out.Arrays = cloneList(e.Arrays, mapping)
	case hir.StreamMemory:
		panic("inline: a StreamMemory appeared before S8")
	}
	return out
}

func clonePtr(e *hir.StreamExpression, mapping map[ident.Identifier]ident.Identifier) *hir.StreamExpression {
	if e == nil {
		return nil
	}
	out := cloneExpr(*e, mapping)
	return &out
}

func cloneList(es []hir.StreamExpression, mapping map[ident.Identifier]ident.Identifier) []hir.StreamExpression {
	out := make([]hir.StreamExpression, len(es))
	for i := range es {
		out[i] = cloneExpr(es[i], mapping)
	}
	return out
}

func cloneFields(fs []hir.StreamField, mapping map[ident.Identifier]ident.Identifier) []hir.StreamField {
	out := make([]hir.StreamField, len(fs))
	for i := range fs {
		out[i] = hir.StreamField{FieldID: fs[i].FieldID, Location: fs[i].Location, Expression: cloneExpr(fs[i].Expression, mapping)}
	}
	return out
}

func cloneArms(arms []hir.MatchArm, mapping map[ident.Identifier]ident.Identifier) []hir.MatchArm {
	out := make([]hir.MatchArm, len(arms))
	for i := range arms {
		out[i] = hir.MatchArm{
			Pattern:   arms[i].Pattern,
			Guard:     clonePtr(arms[i].Guard, mapping),
			Equations: cloneEquations(arms[i].Equations, mapping),
			Body:      cloneExpr(arms[i].Body, mapping),
			Location:  arms[i].Location,
		}
	}
	return out
}
