package movement

import (
	"math/rand"

	"dyncserver/model"
	"dyncserver/worldmap"
)

// DecideSupportMove picks the next node for coalition's support unit,
// currently at currentNode, to advance to. It walks distance rings
// outward from coalition's base (nearest first) looking for a node that
// still needs infantry support and has no enemy activity, preferring in
// order: an optimal node directly adjacent to currentNode; a one-hop
// detour that lands on such a node in two moves; a one-hop detour to a
// node that merely isn't full yet; and finally the shortest path to
// whichever needy node is closest by distance ring. Returns (0, false) if
// every node is already saturated or held by the enemy.
//
// Each distance ring tries three helpers in turn: optimalAdjacentMove,
// oneHopDetour (which holds both detour tiers), and
// nearestNeedyNodeShortestStep. The detour tiers test the intermediate
// neighbor itself, not the needy node it leads to: first whether that
// neighbor needs support, then whether it is free of enemy activity and
// below max capacity.
func DecideSupportMove(currentNode int, coalition model.Coalition, m *worldmap.Map, maxInfantryInNode int, rng *rand.Rand) (int, bool) {
	if coalition != model.Red && coalition != model.Blue {
		return 0, false
	}

	longest := m.GetLongestDistance(coalition, true)
	for distance := 1; distance <= longest; distance++ {
		nodes := append([]int(nil), m.GetNodesByDistance(coalition, distance, true)...)
		if len(nodes) == 0 {
			continue
		}
		rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })

		if node, ok := optimalAdjacentMove(m, coalition, currentNode, nodes, maxInfantryInNode); ok {
			return node, true
		}

		if node, ok := oneHopDetour(m, coalition, currentNode, nodes, maxInfantryInNode, rng); ok {
			return node, true
		}

		if node, ok := nearestNeedyNodeShortestStep(m, coalition, currentNode, nodes, maxInfantryInNode); ok {
			return node, true
		}
	}
	return 0, false
}

func needsSupport(m *worldmap.Map, coalition model.Coalition, node int, maxInfantryInNode int) bool {
	if m.IsEnemyActivityInNode(coalition, node) {
		return false
	}
	_, number, _ := m.InfantryInNode(node)
	return float64(number) <= float64(maxInfantryInNode)/2.0
}

// optimalAdjacentMove returns the first shuffled node at this distance
// ring that both needs support and is directly adjacent to currentNode.
func optimalAdjacentMove(m *worldmap.Map, coalition model.Coalition, currentNode int, nodes []int, maxInfantryInNode int) (int, bool) {
	for _, node := range nodes {
		if node == currentNode {
			continue
		}
		if !needsSupport(m, coalition, node, maxInfantryInNode) {
			continue
		}
		if m.Graph.HasEdge(node, currentNode) {
			return node, true
		}
	}
	return 0, false
}

// oneHopDetour looks, for every needy node at this ring, for a neighbor of
// currentNode that is itself adjacent to that needy node: first preferring
// a neighbor that itself needs support (no enemy activity, at or under
// half capacity), then relaxing to any enemy-free
// neighbor merely under max capacity.
func oneHopDetour(m *worldmap.Map, coalition model.Coalition, currentNode int, nodes []int, maxInfantryInNode int, rng *rand.Rand) (int, bool) {
	for _, node := range nodes {
		if node == currentNode {
			continue
		}
		if !needsSupport(m, coalition, node, maxInfantryInNode) {
			continue
		}

		var halfEmpty []int
		for _, neighbor := range m.Graph.Neighbors(currentNode) {
			if !m.Graph.HasEdge(neighbor, node) {
				continue
			}
			if needsSupport(m, coalition, neighbor, maxInfantryInNode) {
				halfEmpty = append(halfEmpty, neighbor)
			}
		}
		if len(halfEmpty) > 0 {
			return halfEmpty[rng.Intn(len(halfEmpty))], true
		}

		var underMax []int
		for _, neighbor := range m.Graph.Neighbors(currentNode) {
			if !m.Graph.HasEdge(neighbor, node) {
				continue
			}
			if m.IsEnemyActivityInNode(coalition, neighbor) {
				continue
			}
			_, number, _ := m.InfantryInNode(neighbor)
			if number < maxInfantryInNode {
				underMax = append(underMax, neighbor)
			}
		}
		if len(underMax) > 0 {
			return underMax[rng.Intn(len(underMax))], true
		}
	}
	return 0, false
}

// nearestNeedyNodeShortestStep, as the last resort for this distance ring,
// finds every needy node reachable from currentNode, groups them by hop
// distance, takes the nearest group's first (already-shuffled) member, and
// returns the first step of the shortest path toward it.
func nearestNeedyNodeShortestStep(m *worldmap.Map, coalition model.Coalition, currentNode int, nodes []int, maxInfantryInNode int) (int, bool) {
	byDistance := make(map[int][]int)
	var order []int
	for _, node := range nodes {
		if node == currentNode {
			continue
		}
		if !needsSupport(m, coalition, node, maxInfantryInNode) {
			continue
		}
		path, ok := m.Graph.ShortestPath(currentNode, node)
		if !ok {
			continue
		}
		d := len(path) - 1
		if _, seen := byDistance[d]; !seen {
			order = append(order, d)
		}
		byDistance[d] = append(byDistance[d], node)
	}
	if len(order) == 0 {
		return 0, false
	}
	smallest := order[0]
	for _, d := range order {
		if d < smallest {
			smallest = d
		}
	}
	target := byDistance[smallest][0]
	path, ok := m.Graph.ShortestPath(currentNode, target)
	if !ok || len(path) < 2 {
		return 0, false
	}
	return path[1], true
}
