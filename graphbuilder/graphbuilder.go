// Package graphbuilder merges the host's submitted routes into a single
// coalesced weighted graph.
//
// The merge is grounded on the same union-find-over-a-quotient-relation
// shape used for minimum spanning forests (see lvlath's prim_kruskal
// package in the reference corpus): waypoints are nodes of a disjoint-set
// forest, and "close enough" pairs are unioned before edges are re-emitted
// between representatives.
package graphbuilder

import (
	"dyncserver/model"
	"dyncserver/worldmap/graph"
)

// mergeDistance is the quotient threshold from the spec: two waypoints in
// the same equivalence class iff their Euclidean distance is strictly
// less than this, or they are identically located (which is subsumed by
// "< mergeDistance" once degenerate zero-distance pairs are included).
const mergeDistance = 200.0

// waypoint is a single raw point parsed from a route before merging.
type waypoint struct {
	coord         model.Point
	reinforcement bool
}

// Build merges routes (each an ordered list of waypoints) into a graph.Graph.
// An empty route list yields an empty graph; callers detect that condition
// themselves (graph.Graph.NumNodes() == 0), there is no error return.
func Build(routes [][]RouteWaypoint) *graph.Graph {
	g := graph.New()
	if len(routes) == 0 {
		return g
	}

	var all []waypoint
	// rawEdges holds (i, j, weight) triples between raw waypoint indices,
	// before any merging, one per consecutive pair within a route.
	type rawEdge struct {
		i, j   int
		weight float64
	}
	var rawEdges []rawEdge

	for _, route := range routes {
		start := len(all)
		for _, wp := range route {
			all = append(all, waypoint{coord: wp.Coord, reinforcement: wp.Reinforcement})
		}
		for k := 0; k+1 < len(route); k++ {
			i, j := start+k, start+k+1
			w := all[i].coord.Dist(all[j].coord)
			rawEdges = append(rawEdges, rawEdge{i: i, j: j, weight: w})
		}
	}

	uf := newUnionFind(len(all))
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			if all[i].coord.Dist(all[j].coord) < mergeDistance {
				uf.union(i, j)
			}
		}
	}

	// Pick the lowest original index in each class as its representative.
	// Scanning i in ascending order means the first i seen for a given
	// root is already that class's minimum original index.
	repOf := make([]int, len(all))
	nodeOfRoot := make(map[int]int)
	for i := range all {
		root := uf.find(i)
		repOf[i] = root
		if _, ok := nodeOfRoot[root]; !ok {
			nodeOfRoot[root] = i
		}
	}

	// is_reinforcement is the AND over every constituent of the class.
	classReinforcement := make(map[int]bool)
	classSeen := make(map[int]bool)
	for i := range all {
		root := repOf[i]
		if !classSeen[root] {
			classReinforcement[root] = true
			classSeen[root] = true
		}
		if !all[i].reinforcement {
			classReinforcement[root] = false
		}
	}

	// Emit one graph node per representative.
	nodeID := make(map[int]int) // representative waypoint index -> node id
	for i := range all {
		root := repOf[i]
		rep := nodeOfRoot[root]
		if _, ok := nodeID[rep]; ok {
			continue
		}
		id := g.AddNode(all[rep].coord, classReinforcement[root])
		nodeID[rep] = id
	}

	// Re-emit edges between representatives, collapsing duplicates.
	seenEdge := make(map[[2]int]bool)
	for _, e := range rawEdges {
		repI := nodeOfRoot[repOf[e.i]]
		repJ := nodeOfRoot[repOf[e.j]]
		ni, nj := nodeID[repI], nodeID[repJ]
		if ni == nj {
			continue
		}
		key := [2]int{ni, nj}
		if key[0] > key[1] {
			key[0], key[1] = key[1], key[0]
		}
		if seenEdge[key] {
			continue
		}
		seenEdge[key] = true
		g.AddEdge(ni, nj, e.weight)
	}

	return g
}

// RouteWaypoint is a single parsed "x,y" or "x,y,r" entry from a route.
type RouteWaypoint struct {
	Coord         model.Point
	Reinforcement bool
}

// unionFind is a standard weighted disjoint-set forest with path
// compression, used only internally to compute equivalence classes.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}
