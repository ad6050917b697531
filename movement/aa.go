package movement

import (
	"math/rand"

	"dyncserver/model"
	"dyncserver/worldmap"
)

// FindAATarget picks the node an AA group should defend: among the nodes
// furthest from its own coalition's base (excluding reinforcement-only
// nodes) that already hold at least one of the coalition's own units, the
// one with the greatest own-minus-enemy unit advantage. Ties are broken by
// shuffling the candidate list before scanning it.
func FindAATarget(g *model.Group, m *worldmap.Map, rng *rand.Rand) (int, bool) {
	furthest := m.FindFurthestOwnGroupsNodes(g.Coalition)
	if len(furthest) == 0 {
		return 0, false
	}
	shuffled := append([]int(nil), furthest...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	enemy := g.Coalition.Opposite()
	best := -1
	bestAdvantage := -999
	for _, node := range shuffled {
		advantage := m.NumUnitsInNode(g.Coalition, node) - m.NumUnitsInNode(enemy, node)
		if advantage > bestAdvantage {
			bestAdvantage = advantage
			best = node
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}

// DecideAAMove picks the next node for a mobile AA group defending the
// node FindAATarget selects. The path-selection logic (dumb-detour
// rejection, backtrack avoidance) mirrors DecideMove exactly; the only
// difference is the final tie-break, which prefers the candidate with the
// greatest own-vs-enemy unit advantage instead of a uniform random pick.
func DecideAAMove(g *model.Group, m *worldmap.Map, rng *rand.Rand) (int, bool) {
	if g.Category != model.CategoryVehicle {
		return 0, false
	}
	nodeID, ok := m.FindGroupNode(g)
	if !ok {
		return 0, false
	}
	goal, ok := FindAATarget(g, m, rng)
	if !ok {
		return 0, false
	}
	if nodeID == goal {
		return goal, true
	}

	origin, _ := m.Graph.Node(nodeID)
	goalNode, _ := m.Graph.Node(goal)
	enemy := g.Coalition.Opposite()

	var neighborPaths [][]int
	for _, neighbor := range m.Graph.Neighbors(nodeID) {
		if neighbor == goal {
			return goal, true
		}
		path, ok := m.Graph.ShortestPath(neighbor, goal)
		if !ok {
			continue
		}
		if containsNode(path, nodeID) {
			continue
		}
		neighborPaths = append(neighborPaths, path)
	}
	if len(neighborPaths) == 0 {
		return 0, false
	}
	if len(neighborPaths) == 1 {
		return neighborPaths[0][0], true
	}

	forbidden := forbiddenDumbDetours(m, neighborPaths)
	choices, isBacktrack := candidateFirstSteps(m, neighborPaths, forbidden, origin.Coord, goalNode.Coord)
	if len(choices) == 0 {
		return 0, false
	}
	choices = filterBacktrackIfAnyAdvance(choices, isBacktrack)

	best := -1
	bestAdvantage := -999
	for _, c := range choices {
		advantage := m.NumUnitsInNode(g.Coalition, c) - m.NumUnitsInNode(enemy, c)
		if advantage > bestAdvantage {
			bestAdvantage = advantage
			best = c
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
