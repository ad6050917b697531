// Package worldmap holds the coalesced graph together with every runtime
// index the decision engine consults each turn: which groups and infantry
// occupy which node, how far every node is from each coalition's goal, and
// the derived per-node scoring multiplier. A Map owns exactly one graph.Graph
// and is mutated only under the campaign's single lock (see package
// campaign), so none of its methods take one of their own.
package worldmap

import (
	"fmt"
	"math/rand"

	"dyncserver/model"
	"dyncserver/worldmap/graph"
)

// MaxSupportUnitsInGroup is the size a coalition's support pool is restocked
// to whenever it falls to the restock threshold.
const MaxSupportUnitsInGroup = 7

// SupportRestockThreshold triggers a resupply purchase. The original
// project treats "destroyed" as "at or below two remaining units," which
// reads as an off-by-one against "zero remaining" but is preserved here
// exactly: at 2 support units, the coalition still buys a restock.
const SupportRestockThreshold = 2

// infantryRecord is the occupant of a single node's infantry slot. Only one
// coalition's infantry can ever occupy a given node at a time.
type infantryRecord struct {
	Coalition model.Coalition
	Number    int
}

// Marker is a host-reported map annotation (a base marker, a corner marker
// used for renderer scaling). Position is kept as the raw host pair since
// nothing in the core ever operates on marker coordinates directly.
type Marker struct {
	Pos  [2]float64
	Name string
}

// Map is the coalesced route graph plus every per-node index the movement
// AI and battle scheduler read from. All fields are exported because the
// snapshot codec (package persistence) serializes this struct directly.
type Map struct {
	Graph *graph.Graph

	// GroupsInNodes indexes every live group by the node it currently
	// occupies. A group's presence here is the single source of truth for
	// "where is this group" — Group itself carries no node field.
	GroupsInNodes map[int]map[string]*model.Group

	// InfantryInNodes tracks static infantry garrisons, keyed by node.
	InfantryInNodes map[int]infantryRecord

	RedGoalNode  int
	BlueGoalNode int
	goalsSet     bool

	RedBullseye  model.Point
	BlueBullseye model.Point
	bullseyeSet  bool

	// RedNodesByDistance and BlueNodesByDistance index nodes by hop-count
	// from the OPPOSING coalition's goal: RedNodesByDistance buckets nodes
	// by distance from BlueGoalNode, and vice versa. This mirrors how the
	// original project names these fields. BlueGoalNode (blue's objective)
	// is red's own base, where red's garrison and support stage, so
	// RedNodesByDistance measures how far each node is from red's own base.
	RedNodesByDistance  map[int][]int
	BlueNodesByDistance map[int][]int

	SupportUnitNodes map[model.Coalition]int
	NumSupportUnits  map[model.Coalition]int

	MapMarkers    []Marker
	CornerMarkers []Marker

	// MultipliersForRed caches get_node_extra_multiplier's red-weight per
	// node. Per an explicit open question in the distilled requirements,
	// this is computed exactly once per campaign and is never recomputed
	// after later graph edits — mirroring the source, which also never
	// recomputes it.
	MultipliersForRed map[int]float64
}

// New wraps g in a freshly initialized Map with empty indices.
func New(g *graph.Graph) *Map {
	return &Map{
		Graph:               g,
		GroupsInNodes:       make(map[int]map[string]*model.Group),
		InfantryInNodes:     make(map[int]infantryRecord),
		RedNodesByDistance:  make(map[int][]int),
		BlueNodesByDistance: make(map[int][]int),
		SupportUnitNodes:    make(map[model.Coalition]int),
		NumSupportUnits: map[model.Coalition]int{
			model.Red:  MaxSupportUnitsInGroup,
			model.Blue: MaxSupportUnitsInGroup,
		},
	}
}

// CoalitionGoal returns the goal node id for a combat coalition.
func (m *Map) CoalitionGoal(c model.Coalition) (int, bool) {
	if !m.goalsSet {
		return 0, false
	}
	switch c {
	case model.Red:
		return m.RedGoalNode, true
	case model.Blue:
		return m.BlueGoalNode, true
	default:
		return 0, false
	}
}

// UpdateGoals snaps red and blue goal coordinates to their nearest graph
// node, marks both goal nodes as permanently full of enemy infantry (so the
// resupply loop never tries to reinforce an already-unreachable base), and
// resets each coalition's support staging point to the opposing base.
func (m *Map) UpdateGoals(red, blue model.Point, maxInfantryInNode int) {
	m.RedGoalNode = m.FindNodeByCenter(red)
	m.BlueGoalNode = m.FindNodeByCenter(blue)
	m.goalsSet = true

	m.InfantryInNodes[m.RedGoalNode] = infantryRecord{Coalition: model.Blue, Number: maxInfantryInNode}
	m.InfantryInNodes[m.BlueGoalNode] = infantryRecord{Coalition: model.Red, Number: maxInfantryInNode}

	m.SupportUnitNodes = map[model.Coalition]int{
		model.Red:  m.BlueGoalNode,
		model.Blue: m.RedGoalNode,
	}
}

// FindNodeByCenter returns the graph node nearest to center, breaking
// exact coincidence immediately and otherwise taking the minimum distance.
func (m *Map) FindNodeByCenter(center model.Point) int {
	best := -1
	bestDist := 0.0
	for _, id := range m.Graph.Nodes() {
		n, _ := m.Graph.Node(id)
		d := center.Dist(n.Coord)
		if d == 0 {
			return id
		}
		if best == -1 || d < bestDist {
			best = id
			bestDist = d
		}
	}
	return best
}

// UpdateNodesByDistance recomputes RedNodesByDistance and
// BlueNodesByDistance from scratch via Dijkstra from each goal. Distance is
// measured in hop-count (edge count along the shortest-weight path, not its
// total weight), matching the source's len(path)-1 convention.
func (m *Map) UpdateNodesByDistance() {
	m.RedNodesByDistance = make(map[int][]int)
	m.BlueNodesByDistance = make(map[int][]int)
	if !m.goalsSet {
		return
	}
	for _, id := range m.Graph.Nodes() {
		if path, ok := m.Graph.ShortestPath(m.RedGoalNode, id); ok {
			d := len(path) - 1
			m.BlueNodesByDistance[d] = append(m.BlueNodesByDistance[d], id)
		}
		if path, ok := m.Graph.ShortestPath(m.BlueGoalNode, id); ok {
			d := len(path) - 1
			m.RedNodesByDistance[d] = append(m.RedNodesByDistance[d], id)
		}
	}
}

// Groups returns every live group across every node, keyed by name.
func (m *Map) Groups() map[string]*model.Group {
	out := make(map[string]*model.Group)
	for _, byName := range m.GroupsInNodes {
		for name, g := range byName {
			out[name] = g
		}
	}
	return out
}

// FindGroupNodeByName returns the node currently holding group name.
func (m *Map) FindGroupNodeByName(name string) (int, bool) {
	for node, byName := range m.GroupsInNodes {
		if _, ok := byName[name]; ok {
			return node, true
		}
	}
	return 0, false
}

// FindGroupNode is FindGroupNodeByName for an already-resolved Group.
func (m *Map) FindGroupNode(g *model.Group) (int, bool) {
	return m.FindGroupNodeByName(g.Name)
}

// FindGroupByName returns the live group with the given name, if any.
func (m *Map) FindGroupByName(name string) (*model.Group, bool) {
	for _, byName := range m.GroupsInNodes {
		if g, ok := byName[name]; ok {
			return g, true
		}
	}
	return nil, false
}

// AddGroup places g at node. Returns false if a group by that name already
// exists anywhere on the map.
func (m *Map) AddGroup(g *model.Group, node int) bool {
	if _, exists := m.FindGroupByName(g.Name); exists {
		return false
	}
	if m.GroupsInNodes[node] == nil {
		m.GroupsInNodes[node] = make(map[string]*model.Group)
	}
	m.GroupsInNodes[node][g.Name] = g
	return true
}

// RemoveGroup deletes g from whichever node currently holds it.
func (m *Map) RemoveGroup(g *model.Group) bool {
	for node, byName := range m.GroupsInNodes {
		if _, ok := byName[g.Name]; ok {
			delete(byName, g.Name)
			if len(byName) == 0 {
				delete(m.GroupsInNodes, node)
			}
			return true
		}
	}
	return false
}

// UpdateGroupNodes recomputes every group's node from its units' current
// centroid, relocating any group whose centroid has drifted to a different
// node since the last call.
func (m *Map) UpdateGroupNodes() {
	for name, g := range m.Groups() {
		newNode := m.FindNodeByCenter(g.Centroid())
		oldNode, hadOld := m.FindGroupNodeByName(name)
		if hadOld && oldNode != newNode {
			delete(m.GroupsInNodes[oldNode], name)
			if len(m.GroupsInNodes[oldNode]) == 0 {
				delete(m.GroupsInNodes, oldNode)
			}
		}
		if !hadOld || oldNode != newNode {
			if m.GroupsInNodes[newNode] == nil {
				m.GroupsInNodes[newNode] = make(map[string]*model.Group)
			}
			m.GroupsInNodes[newNode][name] = g
		}
	}
}

// SetInfantryInNode overwrites node's infantry garrison.
func (m *Map) SetInfantryInNode(node int, coalition model.Coalition, number int) {
	m.InfantryInNodes[node] = infantryRecord{Coalition: coalition, Number: number}
}

// InfantryInNode returns the garrison at node, if any.
func (m *Map) InfantryInNode(node int) (coalition model.Coalition, number int, ok bool) {
	rec, ok := m.InfantryInNodes[node]
	if !ok {
		return "", 0, false
	}
	return rec.Coalition, rec.Number, true
}

// NumCoalitionInfantryInNode returns node's garrison size if it belongs to
// coalition, else zero.
func (m *Map) NumCoalitionInfantryInNode(coalition model.Coalition, node int) int {
	rec, ok := m.InfantryInNodes[node]
	if !ok || rec.Coalition != coalition {
		return 0
	}
	return rec.Number
}

// IsEnemyActivityInNode reports whether the coalition opposing own has any
// infantry garrison or any live vehicle/infantry group at node.
func (m *Map) IsEnemyActivityInNode(own model.Coalition, node int) bool {
	enemy := own.Opposite()
	if rec, ok := m.InfantryInNodes[node]; ok && rec.Coalition == enemy {
		return true
	}
	for _, g := range m.GroupsInNodes[node] {
		if g.Coalition == enemy {
			return true
		}
	}
	return false
}

// NumUnitsInNode counts coalition's live units across every group at node.
func (m *Map) NumUnitsInNode(coalition model.Coalition, node int) int {
	total := 0
	for _, g := range m.GroupsInNodes[node] {
		if g.Coalition == coalition {
			total += g.NumUnits()
		}
	}
	return total
}

// ForceUnitsPosToNode snaps every unit of g to node's coordinates,
// overriding whatever position the host last reported.
func (m *Map) ForceUnitsPosToNode(g *model.Group, node int) {
	n, ok := m.Graph.Node(node)
	if !ok {
		return
	}
	g.ForceUnitsPosToPoint(n.Coord)
}

// GetShortestPath is a thin wrapper over the graph's Dijkstra search,
// exposed on Map so callers never need to reach into m.Graph directly.
func (m *Map) GetShortestPath(from, to int) ([]int, bool) {
	return m.Graph.ShortestPath(from, to)
}

// GetNumSupportUnits returns coalition's remaining support pool.
func (m *Map) GetNumSupportUnits(coalition model.Coalition) int {
	return m.NumSupportUnits[coalition]
}

// SetNumSupportUnits overwrites coalition's support pool.
func (m *Map) SetNumSupportUnits(coalition model.Coalition, n int) {
	m.NumSupportUnits[coalition] = n
}

// DecrementNumSupportUnits reduces coalition's support pool by one, floored
// at zero.
func (m *Map) DecrementNumSupportUnits(coalition model.Coalition) {
	if m.NumSupportUnits[coalition] < 1 {
		return
	}
	m.NumSupportUnits[coalition]--
}

// GetSupportUnitNode returns the node a coalition's support unit currently
// mans.
func (m *Map) GetSupportUnitNode(coalition model.Coalition) int {
	return m.SupportUnitNodes[coalition]
}

// SetSupportUnitNode relocates coalition's support unit.
func (m *Map) SetSupportUnitNode(coalition model.Coalition, node int) {
	m.SupportUnitNodes[coalition] = node
}

// IsNodeReinforcementsPath reports whether node lies only on a
// reinforcement-only route segment.
func (m *Map) IsNodeReinforcementsPath(node int) bool {
	n, ok := m.Graph.Node(node)
	return ok && n.IsReinforcement
}

func nodesByDistance(m *Map, coalition model.Coalition) map[int][]int {
	if coalition == model.Red {
		return m.RedNodesByDistance
	}
	return m.BlueNodesByDistance
}

// GetLongestDistance returns the greatest distance bucket recorded for
// coalition. If includeReinforcement is false, buckets containing only
// reinforcement-path nodes are excluded first.
func (m *Map) GetLongestDistance(coalition model.Coalition, includeReinforcement bool) int {
	buckets := m.filteredNodesByDistance(coalition, includeReinforcement)
	longest := 0
	first := true
	for d := range buckets {
		if first || d > longest {
			longest = d
			first = false
		}
	}
	return longest
}

// GetNodesByDistance returns the nodes at exactly distance hops from
// coalition's opposing goal (see RedNodesByDistance's doc comment for the
// naming convention), applying the same reinforcement filter as
// GetLongestDistance.
func (m *Map) GetNodesByDistance(coalition model.Coalition, distance int, includeReinforcement bool) []int {
	return m.filteredNodesByDistance(coalition, includeReinforcement)[distance]
}

func (m *Map) filteredNodesByDistance(coalition model.Coalition, includeReinforcement bool) map[int][]int {
	buckets := nodesByDistance(m, coalition)
	if includeReinforcement {
		return buckets
	}
	filtered := make(map[int][]int)
	for d, nodes := range buckets {
		var kept []int
		for _, n := range nodes {
			if !m.IsNodeReinforcementsPath(n) {
				kept = append(kept, n)
			}
		}
		if len(kept) > 0 {
			filtered[d] = kept
		}
	}
	return filtered
}

// FindFurthestOwnGroupsNodes scans distance buckets from farthest to
// nearest (excluding reinforcement-only nodes) and returns the first
// non-empty set of nodes that actually hold one of coalition's units.
func (m *Map) FindFurthestOwnGroupsNodes(coalition model.Coalition) []int {
	for d := m.GetLongestDistance(coalition, false); d >= 0; d-- {
		var nodes []int
		for _, n := range m.GetNodesByDistance(coalition, d, false) {
			if m.NumUnitsInNode(coalition, n) > 0 {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) > 0 {
			return nodes
		}
	}
	return nil
}

// FindGreatestThreatNode finds, among enemyCoalition's vehicle groups, the
// node posing the greatest threat to enemyObjectiveNode: the node fewest
// hops away from it, breaking ties by the larger number of threatening
// groups. Returns -1 if enemyCoalition has no vehicle presence anywhere.
func (m *Map) FindGreatestThreatNode(enemyObjectiveNode int, enemyCoalition model.Coalition) int {
	type threat struct {
		node      int
		count     int
		pathNodes int
	}
	threats := make(map[int]*threat)
	for node, byName := range m.GroupsInNodes {
		for _, g := range byName {
			if g.Coalition != enemyCoalition || g.Category != model.CategoryVehicle {
				continue
			}
			t, ok := threats[node]
			if !ok {
				t = &threat{node: node, count: 0, pathNodes: 0}
				threats[node] = t
			}
			t.count++
			if path, ok := m.Graph.ShortestPath(enemyObjectiveNode, node); ok {
				t.pathNodes = len(path)
			}
		}
	}
	if len(threats) == 0 {
		return -1
	}
	best := -1
	var bestT *threat
	for node, t := range threats {
		if bestT == nil || t.pathNodes < bestT.pathNodes ||
			(t.pathNodes == bestT.pathNodes && t.count > bestT.count) {
			best = node
			bestT = t
		}
	}
	return best
}

// GetNodeExtraMultiplier returns coalition's share of the distance-scaled
// unit score (see ComputeScores) at node, based on that node's relative
// path-length toward each base. Distance here is measured in PATH NODE
// COUNT (hops+1), matching the source's len(dijkstra_path(...)) convention
// -- a node one edge from a base has path length 2, hence the "<=2" bases
// themselves. Returns false if node cannot reach both goals.
func (m *Map) GetNodeExtraMultiplier(node int, coalition model.Coalition) (float64, bool) {
	pathToRed, ok := m.Graph.ShortestPath(node, m.RedGoalNode)
	if !ok {
		return 0, false
	}
	pathToBlue, ok := m.Graph.ShortestPath(node, m.BlueGoalNode)
	if !ok {
		return 0, false
	}
	if len(pathToRed) <= 2 {
		if coalition == model.Red {
			return 1.0, true
		}
		return 0.0, true
	}
	if len(pathToBlue) <= 2 {
		if coalition == model.Red {
			return 0.0, true
		}
		return 1.0, true
	}
	redShare := (float64(len(pathToBlue)) - 2.0) / ((float64(len(pathToRed)) - 2.0) + (float64(len(pathToBlue)) - 2.0))
	if coalition == model.Red {
		return redShare, true
	}
	return 1.0 - redShare, true
}

// ComputeMultipliersForRed fills MultipliersForRed for every node, red's
// share only. Callers run this exactly once per campaign; see the field
// doc comment for why it is deliberately never recomputed afterward.
func (m *Map) ComputeMultipliersForRed() {
	m.MultipliersForRed = make(map[int]float64)
	for _, id := range m.Graph.Nodes() {
		if share, ok := m.GetNodeExtraMultiplier(id, model.Red); ok {
			m.MultipliersForRed[id] = share
		}
	}
}

// ShuffledCoalitions returns [red, blue] or [blue, red] with equal
// probability, used to avoid always servicing one coalition's support/AA
// procurement before the other's.
func ShuffledCoalitions(rng *rand.Rand) [2]model.Coalition {
	order := [2]model.Coalition{model.Red, model.Blue}
	if rng.Intn(2) == 1 {
		order[0], order[1] = order[1], order[0]
	}
	return order
}

// String renders a node id with its coordinates, used in log lines.
func (m *Map) String(node int) string {
	n, ok := m.Graph.Node(node)
	if !ok {
		return fmt.Sprintf("node %d", node)
	}
	return fmt.Sprintf("node %d (%.0f,%.0f)", node, n.Coord.X, n.Coord.Y)
}
