// Package movement implements the per-turn movement AI: which node a
// vehicle, AA, or support group should advance to next. Every decision
// function is pure given its map and rng arguments — none of them mutate
// state themselves, leaving that to the caller (package orchestrator).
package movement

import (
	"math/rand"

	"dyncserver/model"
	"dyncserver/worldmap"
)

// detourToleranceRatio is the "one third longer" detour-rejection factor
// from the source: a path whose subgraph weight is at least this multiple
// of a sibling path's weight is considered a dumb detour and forbidden.
const detourToleranceRatio = 1.33

// DecideMove picks the next node for a non-static vehicle group advancing
// toward its coalition's goal. It returns (0, false) when the group
// shouldn't move at all (wrong category, static decoy) or when no legal
// move exists.
func DecideMove(g *model.Group, m *worldmap.Map, rng *rand.Rand) (int, bool) {
	if !g.IsVehicle() {
		return 0, false
	}
	nodeID, ok := m.FindGroupNode(g)
	if !ok {
		return 0, false
	}
	goal, ok := m.CoalitionGoal(g.Coalition)
	if !ok {
		return 0, false
	}

	origin, _ := m.Graph.Node(nodeID)
	goalNode, _ := m.Graph.Node(goal)

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

	return choices[rng.Intn(len(choices))], true
}

func containsNode(path []int, node int) bool {
	for _, n := range path {
		if n == node {
			return true
		}
	}
	return false
}

// forbiddenDumbDetours compares every pair of candidate paths, truncated at
// their first common node, and forbids the first step of whichever path's
// truncated weight is at least detourToleranceRatio times the other's —
// a path that only reaches a shared junction by going far out of its way.
func forbiddenDumbDetours(m *worldmap.Map, paths [][]int) map[int]bool {
	forbidden := make(map[int]bool)
	for i := 0; i < len(paths)-1; i++ {
		for j := i + 1; j < len(paths); j++ {
			truncI, truncJ, found := truncateAtCommonNode(paths[i], paths[j])
			if !found {
				continue
			}
			sizeI := m.Graph.PathWeight(truncI)
			sizeJ := m.Graph.PathWeight(truncJ)
			if sizeI >= detourToleranceRatio*sizeJ {
				forbidden[truncI[0]] = true
			} else if sizeJ >= detourToleranceRatio*sizeI {
				forbidden[truncJ[0]] = true
			}
		}
	}
	return forbidden
}

func truncateAtCommonNode(a, b []int) (truncA, truncB []int, found bool) {
	for k, na := range a {
		for l, nb := range b {
			if na == nb {
				return a[:k+1], b[:l+1], true
			}
		}
	}
	return nil, nil, false
}

// candidateFirstSteps filters out forbidden first steps and classifies
// each survivor as a backtrack (moves further from the goal than the
// group's current position) or an advance.
func candidateFirstSteps(m *worldmap.Map, paths [][]int, forbidden map[int]bool, origin, goal model.Point) (choices []int, isBacktrack map[int]bool) {
	isBacktrack = make(map[int]bool)
	for _, path := range paths {
		first := path[0]
		if forbidden[first] {
			continue
		}
		n, _ := m.Graph.Node(first)
		isBacktrack[first] = n.Coord.Dist(goal) > origin.Dist(goal)
		choices = append(choices, first)
	}
	return choices, isBacktrack
}

// filterBacktrackIfAnyAdvance drops every backtracking choice as long as
// at least one non-backtracking choice survives; otherwise every choice
// is a backtrack and all are kept.
func filterBacktrackIfAnyAdvance(choices []int, isBacktrack map[int]bool) []int {
	anyAdvance := false
	for _, c := range choices {
		if !isBacktrack[c] {
			anyAdvance = true
			break
		}
	}
	if !anyAdvance {
		return choices
	}
	var kept []int
	for _, c := range choices {
		if !isBacktrack[c] {
			kept = append(kept, c)
		}
	}
	return kept
}
