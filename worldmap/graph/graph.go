// Package graph is the coalesced route graph: integer node ids, 2D
// coordinates, a reinforcement-only flag per node, and undirected weighted
// edges. Shape grounded on lvlath's core.Graph adjacency-list package in
// the reference corpus, simplified to a single writer — the campaign's
// one mutex already serializes every mutation, so no internal locking is
// needed here.
package graph

import "dyncserver/model"

// Node is a coalesced graph vertex.
type Node struct {
	ID             int
	Coord          model.Point
	IsReinforcement bool
}

// edge is one undirected weighted connection, stored twice (once per
// endpoint) in the adjacency list for O(1) neighbor iteration.
type edge struct {
	to     int
	weight float64
}

// Graph is an undirected weighted graph over integer node ids.
type Graph struct {
	nodes     []Node
	adjacency map[int][]edge
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{adjacency: make(map[int][]edge)}
}

// AddNode appends a new node with a monotonic id and returns that id.
func (g *Graph) AddNode(coord model.Point, isReinforcement bool) int {
	id := len(g.nodes)
	g.nodes = append(g.nodes, Node{ID: id, Coord: coord, IsReinforcement: isReinforcement})
	g.adjacency[id] = nil
	return id
}

// AddEdge connects a and b with the given weight. Both directions are
// recorded since the graph is undirected.
func (g *Graph) AddEdge(a, b int, weight float64) {
	g.adjacency[a] = append(g.adjacency[a], edge{to: b, weight: weight})
	g.adjacency[b] = append(g.adjacency[b], edge{to: a, weight: weight})
}

// NumNodes returns the node count; zero means the graph has not been
// built yet (the empty-route-list failure mode from the builder).
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// Node returns the node record for id. The second return is false for an
// out-of-range id.
func (g *Graph) Node(id int) (Node, bool) {
	if id < 0 || id >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[id], true
}

// Nodes returns all node ids in ascending order.
func (g *Graph) Nodes() []int {
	ids := make([]int, len(g.nodes))
	for i := range g.nodes {
		ids[i] = i
	}
	return ids
}

// Neighbors returns the node ids adjacent to n.
func (g *Graph) Neighbors(n int) []int {
	edges := g.adjacency[n]
	out := make([]int, len(edges))
	for i, e := range edges {
		out[i] = e.to
	}
	return out
}

// EdgeWeight returns the weight of the edge a-b and whether it exists.
func (g *Graph) EdgeWeight(a, b int) (float64, bool) {
	for _, e := range g.adjacency[a] {
		if e.to == b {
			return e.weight, true
		}
	}
	return 0, false
}

// HasEdge reports whether a and b are directly connected.
func (g *Graph) HasEdge(a, b int) bool {
	_, ok := g.EdgeWeight(a, b)
	return ok
}

// Edge is one undirected connection, exposed read-only for serialization.
type Edge struct {
	A, B   int
	Weight float64
}

// AllEdges returns every edge exactly once, in no particular order.
func (g *Graph) AllEdges() []Edge {
	var out []Edge
	seen := make(map[[2]int]bool)
	for a, edges := range g.adjacency {
		for _, e := range edges {
			key := [2]int{a, e.to}
			if key[0] > key[1] {
				key[0], key[1] = key[1], key[0]
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, Edge{A: key[0], B: key[1], Weight: e.weight})
		}
	}
	return out
}

// FromNodesAndEdges rebuilds a Graph from a prior AllEdges/Nodes dump,
// used by the snapshot codec to restore a graph without replaying the
// route builder. Node ids are assigned by ascending input order, which
// callers must have already sorted by original id.
func FromNodesAndEdges(nodes []Node, edges []Edge) *Graph {
	g := New()
	for _, n := range nodes {
		g.AddNode(n.Coord, n.IsReinforcement)
	}
	for _, e := range edges {
		g.AddEdge(e.A, e.B, e.Weight)
	}
	return g
}
