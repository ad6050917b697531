package graph

import "container/heap"

// HopDistances runs a breadth-first search from start and returns the
// hop-count (edge count, not weight) to every node reachable from it.
// Unreachable nodes are absent from the result, matching the spec's
// "unreachable nodes are absent" rule for the distance-from-base indices.
//
// Complexity: O(V + E).
func (g *Graph) HopDistances(start int) map[int]int {
	dist := map[int]int{start: 0}
	queue := []int{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, nb := range g.Neighbors(n) {
			if _, seen := dist[nb]; seen {
				continue
			}
			dist[nb] = dist[n] + 1
			queue = append(queue, nb)
		}
	}
	return dist
}

// ShortestPath runs Dijkstra from start to end over edge weights and
// returns the node sequence start..end inclusive. ok is false if end is
// unreachable from start.
//
// Complexity: O((V+E) log V) via a binary heap priority queue.
func (g *Graph) ShortestPath(start, end int) (path []int, ok bool) {
	if start == end {
		return []int{start}, true
	}
	dist := map[int]float64{start: 0}
	parent := map[int]int{}
	visited := map[int]bool{}

	pq := &pathQueue{{node: start, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pathItem)
		if visited[cur.node] {
			continue
		}
		visited[cur.node] = true
		if cur.node == end {
			break
		}
		for _, e := range g.adjacency[cur.node] {
			if visited[e.to] {
				continue
			}
			nd := cur.dist + e.weight
			if existing, seen := dist[e.to]; !seen || nd < existing {
				dist[e.to] = nd
				parent[e.to] = cur.node
				heap.Push(pq, pathItem{node: e.to, dist: nd})
			}
		}
	}

	if _, reached := dist[end]; !reached {
		return nil, false
	}

	// Reconstruct path by walking parents back from end to start.
	rev := []int{end}
	n := end
	for n != start {
		n = parent[n]
		rev = append(rev, n)
	}
	path = make([]int, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path, true
}

// PathWeight sums the edge weights along a node sequence produced by
// ShortestPath or any other caller-constructed path.
func (g *Graph) PathWeight(path []int) float64 {
	var total float64
	for i := 0; i+1 < len(path); i++ {
		if w, ok := g.EdgeWeight(path[i], path[i+1]); ok {
			total += w
		}
	}
	return total
}

type pathItem struct {
	node int
	dist float64
}

type pathQueue []pathItem

func (pq pathQueue) Len() int            { return len(pq) }
func (pq pathQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq pathQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *pathQueue) Push(x interface{}) { *pq = append(*pq, x.(pathItem)) }
func (pq *pathQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}
