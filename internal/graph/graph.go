// Package graph implements the signal-level dependency graph shared by S4
// (construction), S5 (reachability), S7 (cycle re-check after inlining), and
// S9 (scheduling) — spec.md §3 "Graph", §2's "Errors & graph library
// (shared)" line.
//
// It is adapted from the teacher library's graph primitives
// (github.com/katalvlaran/lvlath core.Graph for the adjacency-list shape and
// deterministic, sorted Neighbors(); dfs.DFS/dfs.DetectCycles/dfs.TopologicalSort
// for the White/Gray/Black three-color traversal and back-edge reconstruction)
// generalized from string vertex IDs to ident.Identifier, and from a
// publicly-exported, mutex-guarded, general-purpose library to an
// unexported, single-threaded one: spec.md §5 states this compiler is
// single-threaded end to end, so the teacher's sync.RWMutex fields would
// guard nothing here.
package graph

import (
	"sort"

	"github.com/langrust/grust-sub004/internal/ident"
)

// VertexState is the DFS visitation marker for a vertex (spec.md §3
// "Graph": "Vertices colored White/Gray/Black (DFS marker)"), matching the
// teacher's dfs.VertexState constants verbatim in name and meaning.
type VertexState int

const (
	White VertexState = iota // not yet visited
	Gray                     // on the current DFS stack
	Black                    // fully explored
)

// Edge is a directed, weighted connection between two signals. Weight is the
// number of unit delays (fby) crossed on this dependency (spec.md §3
// "delay weight"); zero means same-cycle.
type Edge struct {
	From   ident.Identifier
	To     ident.Identifier
	Weight int
}

// Graph is a directed multigraph over signal identifiers with weighted
// edges. Duplicate edges between the same pair of vertices are permitted —
// spec.md §3 "Dependencies" explicitly allows duplicate (signal, weight)
// pairs and leaves de-duplication to consumers.
type Graph struct {
	order     []ident.Identifier                 // vertices in insertion order
	present   map[ident.Identifier]bool           // membership test
	adjacency map[ident.Identifier][]*Edge        // outgoing edges per vertex
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		present:   make(map[ident.Identifier]bool),
		adjacency: make(map[ident.Identifier][]*Edge),
	}
}

// AddVertex registers id with the graph if it is not already present.
// Idempotent, like the teacher's core.Graph.AddVertex.
func (g *Graph) AddVertex(id ident.Identifier) {
	if g.present[id] {
		return
	}
	g.present[id] = true
	g.order = append(g.order, id)
}

// HasVertex reports whether id has been registered.
func (g *Graph) HasVertex(id ident.Identifier) bool {
	return g.present[id]
}

// AddEdge records a directed edge from -> to with the given delay weight,
// registering both endpoints as vertices first if needed.
func (g *Graph) AddEdge(from, to ident.Identifier, weight int) {
	g.AddVertex(from)
	g.AddVertex(to)
	g.adjacency[from] = append(g.adjacency[from], &Edge{From: from, To: to, Weight: weight})
}

// Vertices returns all registered vertices sorted ascending by identifier,
// giving deterministic iteration regardless of map/insertion order (spec.md
// §5 "Determinism": "implementations using hash-containers must iterate in
// insertion order or sort before iteration").
func (g *Graph) Vertices() []ident.Identifier {
	out := make([]ident.Identifier, len(g.order))
	copy(out, g.order)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	return out
}

// Neighbors returns the outgoing edges of id, sorted by (To, Weight) for
// deterministic traversal, matching the teacher's Neighbors()-sorted-by-ID
// convention (github.com/katalvlaran/lvlath core/methods_adjacent.go).
func (g *Graph) Neighbors(id ident.Identifier) []*Edge {
	edges := g.adjacency[id]
	out := make([]*Edge, len(edges))
	copy(out, edges)
	sort.Slice(out, func(i, j int) bool {
		if out[i].To != out[j].To {
			return out[i].To < out[j].To
		}

		return out[i].Weight < out[j].Weight
	})

	return out
}

// Visitor bundles the pre-/post-order hooks for DFSFrom, mirroring the
// teacher's DFSOptions.OnVisit/OnExit shape.
type Visitor struct {
	// OnVisit is called when a vertex is first discovered (pre-order).
	// Returning an error aborts the traversal.
	OnVisit func(id ident.Identifier) error
	// OnExit is called after all of a vertex's descendants are fully
	// explored (post-order).
	OnExit func(id ident.Identifier) error
}

// DFSFrom performs a depth-first traversal from start, honoring all edges
// regardless of weight (used by S5 reachability, which must follow edges of
// any weight per spec.md §4.5).
func (g *Graph) DFSFrom(start ident.Identifier, visitor Visitor) error {
	visited := make(map[ident.Identifier]bool)

	return g.dfsVisit(start, visited, visitor)
}

func (g *Graph) dfsVisit(id ident.Identifier, visited map[ident.Identifier]bool, visitor Visitor) error {
	if visited[id] {
		return nil
	}
	visited[id] = true

	if visitor.OnVisit != nil {
		if err := visitor.OnVisit(id); err != nil {
			return err
		}
	}

	for _, e := range g.Neighbors(id) {
		if err := g.dfsVisit(e.To, visited, visitor); err != nil {
			return err
		}
	}

	if visitor.OnExit != nil {
		if err := visitor.OnExit(id); err != nil {
			return err
		}
	}

	return nil
}

// Reachable returns the set of vertices reachable from start via edges of
// any weight, including start itself (spec.md §4.5 step 2).
func (g *Graph) Reachable(start ident.Identifier) map[ident.Identifier]bool {
	reached := make(map[ident.Identifier]bool)
	_ = g.DFSFrom(start, Visitor{
		OnVisit: func(id ident.Identifier) error {
			reached[id] = true

			return nil
		},
	})

	return reached
}

// zeroWeightProjection returns a new Graph containing every vertex of g but
// only the edges of weight 0 (spec.md §4.4 "Cycle check": "remove all
// positive-weight edges"; §4.9: "zero-weight projection").
func (g *Graph) zeroWeightProjection() *Graph {
	proj := New()
	for _, v := range g.order {
		proj.AddVertex(v)
	}
	for _, v := range g.order {
		for _, e := range g.adjacency[v] {
			if e.Weight == 0 {
				proj.AddEdge(e.From, e.To, 0)
			}
		}
	}

	return proj
}

// IsCyclicIgnoringPositiveWeights reports whether the zero-weight projection
// of g contains a cycle (spec.md §3 "Graph" op list).
func (g *Graph) IsCyclicIgnoringPositiveWeights() bool {
	_, found := g.DetectZeroWeightCycle()

	return found
}

// DetectZeroWeightCycle runs a three-color DFS over the zero-weight
// projection of g and, on the first back-edge found, reconstructs the
// offending cycle as a chain of identifiers (closed: chain[0] == chain[last]),
// for use in diag.CausalityLoop (spec.md §4.4, §4.9). Vertices are visited in
// ascending-identifier order for determinism.
func (g *Graph) DetectZeroWeightCycle() ([]ident.Identifier, bool) {
	proj := g.zeroWeightProjection()
	state := make(map[ident.Identifier]VertexState, len(proj.order))
	var path []ident.Identifier
	var cycle []ident.Identifier

	var visit func(id ident.Identifier) bool
	visit = func(id ident.Identifier) bool {
		state[id] = Gray
		path = append(path, id)

		for _, e := range proj.Neighbors(id) {
			switch state[e.To] {
			case White:
				if visit(e.To) {
					return true
				}
			case Gray:
				idx := indexOf(path, e.To)
				cycle = append(append([]ident.Identifier(nil), path[idx:]...), e.To)

				return true
			case Black:
				// fully explored elsewhere on an acyclic branch
			}
		}

		path = path[:len(path)-1]
		state[id] = Black

		return false
	}

	for _, v := range proj.Vertices() {
		if state[v] == White {
			if visit(v) {
				return cycle, true
			}
		}
	}

	return nil, false
}

func indexOf(path []ident.Identifier, id ident.Identifier) int {
	for i, v := range path {
		if v == id {
			return i
		}
	}

	return -1
}

// TopologicalOrder computes a deterministic topological ordering of the
// zero-weight projection of g via reverse post-order DFS, visiting vertices
// and neighbors in ascending-identifier order so ties break on identifier
// (spec.md §4.9). For every zero-weight edge, the edge's source appears
// before its target. ok is false if the projection contains a cycle.
func (g *Graph) TopologicalOrder() ([]ident.Identifier, bool) {
	proj := g.zeroWeightProjection()
	state := make(map[ident.Identifier]VertexState, len(proj.order))
	var postOrder []ident.Identifier
	cyclic := false

	var visit func(id ident.Identifier)
	visit = func(id ident.Identifier) {
		state[id] = Gray
		for _, e := range proj.Neighbors(id) {
			switch state[e.To] {
			case White:
				visit(e.To)
			case Gray:
				cyclic = true
			case Black:
			}
		}
		state[id] = Black
		postOrder = append(postOrder, id)
	}

	for _, v := range proj.Vertices() {
		if state[v] == White {
			visit(v)
		}
	}

	if cyclic {
		return nil, false
	}

	// reverse post-order
	order := make([]ident.Identifier, len(postOrder))
	for i, v := range postOrder {
		order[len(order)-1-i] = v
	}

	return order, true
}

// OnceGraph is an initialize-once container for a *Graph, matching spec.md
// §9's "Once-init dependency graph cells" note: Node.graph and
// UnitaryNode.graph are written exactly once, by the pass that first builds
// them, and are read-only to every later pass (spec.md §5 "Sharing"). A
// second Set is a programming error and panics, the same way double-closing
// a channel would.
type OnceGraph struct {
	g  *Graph
	ok bool
}

// Set stores g as this cell's value. Panics if called twice.
func (c *OnceGraph) Set(g *Graph) {
	if c.ok {
		panic("graph: OnceGraph.Set called twice")
	}
	c.g = g
	c.ok = true
}

// Get returns the stored graph. Panics if Set has not been called yet.
func (c *OnceGraph) Get() *Graph {
	if !c.ok {
		panic("graph: OnceGraph.Get called before Set")
	}

	return c.g
}

// Ready reports whether Set has already been called.
func (c *OnceGraph) Ready() bool {
	return c.ok
}
