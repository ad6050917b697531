// Package campaign holds the Campaign aggregate: persistent progression
// state (stage, resources, scores, movement decisions) plus the
// ephemeral per-turn bookkeeping the battle scheduler and statistics
// extractor consume. A single mutex serializes every read and write, per
// the concurrency model described for the whole decision engine: one
// campaign, one goroutine touching it at a time.
package campaign

import (
	"sync"

	"dyncserver/model"
	"dyncserver/rng"
	"dyncserver/worldmap"
)

// MaxInfantryInNode is the garrison cap used by the support AI and by the
// always-full base garrisons UpdateGoals installs.
const MaxInfantryInNode = 4

// Campaign is the full mutable state of one ongoing dynamic campaign.
type Campaign struct {
	mu sync.Mutex

	Stage           int
	Map             *worldmap.Map
	RNG             *rng.Stream
	SoftwareVersion string

	// DestroyedUnitNamesAndGroups remembers, for each unit that has left
	// the map entirely, which group it belonged to — so stats and
	// messages can still refer to it by group after the fact.
	DestroyedUnitNamesAndGroups map[string]string
	ResourcesGeneric            map[model.Coalition]int
	ExtraScores                 map[model.Coalition]int
	UnitMovementDecisions       map[string]int
	AAUnitIDCounter             int
	AllowedAAUnits              map[model.Coalition][]string

	// Ephemeral per-turn state, cleared unconditionally by every
	// ProcessTurn call before battle scheduling — it never carries meaning
	// across turns.
	EarlyBattles            map[string]*model.Battle
	Deaths                  []model.DeathEvent
	GroupNodesMissionStart  map[string]model.GroupStartRecord
}

// New constructs a fresh, stage-zero campaign over m.
func New(m *worldmap.Map, seed int64, softwareVersion string) *Campaign {
	return &Campaign{
		Map:                         m,
		RNG:                         rng.New(seed),
		SoftwareVersion:             softwareVersion,
		DestroyedUnitNamesAndGroups: make(map[string]string),
		ResourcesGeneric:            map[model.Coalition]int{model.Red: 0, model.Blue: 0},
		ExtraScores:                 map[model.Coalition]int{model.Red: 0, model.Blue: 0},
		UnitMovementDecisions:       make(map[string]int),
		AAUnitIDCounter:             1,
		AllowedAAUnits:              map[model.Coalition][]string{model.Red: nil, model.Blue: nil},
		EarlyBattles:                make(map[string]*model.Battle),
		GroupNodesMissionStart:      make(map[string]model.GroupStartRecord),
	}
}

// Lock and Unlock expose the campaign's single mutex directly so the
// orchestrator can hold it across an entire turn, rather than per-method.
func (c *Campaign) Lock()   { c.mu.Lock() }
func (c *Campaign) Unlock() { c.mu.Unlock() }

// ClearEphemeralTurnState wipes early_battles/deaths/mission-start node
// snapshots. Called unconditionally by every turn before battle scheduling.
func (c *Campaign) ClearEphemeralTurnState() {
	c.EarlyBattles = make(map[string]*model.Battle)
	c.Deaths = nil
	c.GroupNodesMissionStart = make(map[string]model.GroupStartRecord)
}

// AddResourcesGeneric credits coalition's generic resource pool.
func (c *Campaign) AddResourcesGeneric(coalition model.Coalition, n int) {
	c.ResourcesGeneric[coalition] += n
}

// DecreaseResourcesGeneric debits coalition's pool by amount, failing
// (returning false, no mutation) if the balance would go negative.
func (c *Campaign) DecreaseResourcesGeneric(coalition model.Coalition, amount int) bool {
	if c.ResourcesGeneric[coalition] < amount {
		return false
	}
	c.ResourcesGeneric[coalition] -= amount
	return true
}

// SetMovementDecision records the node a group has decided to move to this
// turn.
func (c *Campaign) SetMovementDecision(groupName string, node int) {
	c.UnitMovementDecisions[groupName] = node
}

// CountUnits totals live unit count across every group, optionally adding
// previously-destroyed units and optionally including dynamic groups.
func (c *Campaign) CountUnits(includeDestroyed, includeDynamic bool) int {
	total := 0
	for _, g := range c.Map.Groups() {
		if !g.Dynamic || includeDynamic {
			total += g.NumUnits()
		}
	}
	if includeDestroyed {
		total += len(c.DestroyedUnitNamesAndGroups)
	}
	return total
}

// GetAllUnitData maps every unit name to the group it belongs to, for
// comparing against the host's reported unit census.
func (c *Campaign) GetAllUnitData(includeDestroyed, includeDynamic bool) map[string]string {
	out := make(map[string]string)
	for _, g := range c.Map.Groups() {
		if !g.Dynamic || includeDynamic {
			for name := range g.Units {
				out[name] = g.Name
			}
		}
	}
	if includeDestroyed {
		for name, group := range c.DestroyedUnitNamesAndGroups {
			out[name] = group
		}
	}
	return out
}

// UnitsMatch reports whether reportedUnits (unit name -> group name)
// exactly matches this campaign's own census: same count, same group
// assignment for every unit.
func (c *Campaign) UnitsMatch(reportedUnits map[string]string) bool {
	if len(reportedUnits) != c.CountUnits(true, false) {
		return false
	}
	known := c.GetAllUnitData(true, false)
	for unitName, groupName := range reportedUnits {
		existingGroup, ok := known[unitName]
		if !ok || existingGroup != groupName {
			return false
		}
	}
	return true
}

// DynamicGroupUnit is one unit belonging to a dynamic (server-minted) group,
// in the shape the processjson response reports it.
type DynamicGroupUnit struct {
	Name     string
	Type     string
	Skill    string
	Position model.Point
}

// DynamicGroup is one server-minted group (support resupply AA), in the
// shape the processjson response reports it.
type DynamicGroup struct {
	Category string
	Name     string
	Units    []DynamicGroupUnit
}

// GetAllDynamicGroups returns every dynamic group, split by coalition.
func (c *Campaign) GetAllDynamicGroups() map[model.Coalition][]DynamicGroup {
	out := map[model.Coalition][]DynamicGroup{model.Red: nil, model.Blue: nil}
	for _, g := range c.Map.Groups() {
		if !g.Dynamic {
			continue
		}
		var units []DynamicGroupUnit
		for name, u := range g.Units {
			units = append(units, DynamicGroupUnit{Name: name, Type: u.Type, Skill: u.Skill, Position: u.Position})
		}
		out[g.Coalition] = append(out[g.Coalition], DynamicGroup{
			Category: string(g.Category),
			Name:     g.Name,
			Units:    units,
		})
	}
	return out
}

// AddToBattles merges groupName into the early battle over the given node
// set, creating a new one if none yet covers exactly those nodes.
func (c *Campaign) AddToBattles(nodes []int, groupName string) {
	b := model.Battle{Nodes: nodes}
	key := b.Key()
	if existing, ok := c.EarlyBattles[key]; ok {
		existing.GroupNames = appendUnique(existing.GroupNames, groupName)
		return
	}
	b.GroupNames = []string{groupName}
	c.EarlyBattles[key] = &b
}

func appendUnique(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}

// GetBattlesDueToSameNode scans every occupied node for a coalition
// collision: both red and blue vehicle groups physically co-located after
// this turn's moves. previouslyScheduled excludes groups already folded
// into a mid-segment battle, so they aren't double-counted.
func (c *Campaign) GetBattlesDueToSameNode(previouslyScheduled map[string]bool) []model.Battle {
	var battles []model.Battle
	for node, byName := range c.Map.GroupsInNodes {
		coalitions := make(map[model.Coalition]bool)
		var names []string
		for name, g := range byName {
			if previouslyScheduled[name] || g.Category != model.CategoryVehicle {
				continue
			}
			names = append(names, name)
			if g.Coalition == model.Red || g.Coalition == model.Blue {
				coalitions[g.Coalition] = true
			}
		}
		if len(coalitions) > 1 {
			battles = append(battles, model.Battle{Nodes: []int{node}, GroupNames: names})
		}
	}
	return battles
}

// FindPotentialBattles inspects every pair of adjacent nodes and returns
// one entry per pair of opposing vehicle groups sitting on them. Movement
// decisions are not consulted here; the caller confirms which candidates
// are actually swapping places (see CrossingBattle).
func (c *Campaign) FindPotentialBattles() []CrossingBattle {
	var out []CrossingBattle
	seen := make(map[[2]string]bool)
	for nodeID, byName := range c.Map.GroupsInNodes {
		for groupName, g := range byName {
			if g.Category != model.CategoryVehicle {
				continue
			}
			for _, neighbor := range c.Map.Graph.Neighbors(nodeID) {
				for groupName2, g2 := range c.Map.GroupsInNodes[neighbor] {
					if g2.Category != model.CategoryVehicle || g2.Coalition == g.Coalition {
						continue
					}
					pairKey := [2]string{groupName, groupName2}
					if pairKey[0] > pairKey[1] {
						pairKey[0], pairKey[1] = pairKey[1], pairKey[0]
					}
					if seen[pairKey] {
						continue
					}
					seen[pairKey] = true
					out = append(out, CrossingBattle{
						GroupA: groupName, NodeA: nodeID,
						GroupB: groupName2, NodeB: neighbor,
					})
				}
			}
		}
	}
	return out
}

// CrossingBattle is a candidate mid-segment collision between GroupA
// (currently at NodeA) and GroupB (currently at NodeB, adjacent to NodeA).
// It becomes a real battle only if the turn's movement decisions send
// GroupA to NodeB and GroupB to NodeA.
type CrossingBattle struct {
	GroupA string
	NodeA  int
	GroupB string
	NodeB  int
}
