// Package battlescheduler turns this turn's movement decisions into actual
// battles: groups whose decided destinations cross mid-segment are
// teleported to the collision midpoint before the host ever sees their
// new positions, and groups that already share a node form a same-node
// battle. Both kinds are recorded on the campaign's early battle set for
// later cleanup by the statistics extractor.
package battlescheduler

import (
	"dyncserver/campaign"
	"dyncserver/model"
)

// TeleportedPosition is one group's forced midpoint position, reported
// back to the host so it can be relayed to the running mission.
type TeleportedPosition struct {
	GroupName string
	Pos       model.Point
}

// ResolveCrossingBattles inspects every candidate pair FindPotentialBattles
// returned and confirms the ones where both groups actually decided to
// move onto each other's current node. Confirmed pairs are teleported to
// the midpoint of their two origin nodes and folded into the campaign's
// early battle set. Returns the names of every group that was scheduled
// this way, and (for non-dynamic groups only) the position each was
// teleported to — dynamic groups report their own position via the
// ordinary dyngroups payload instead.
func ResolveCrossingBattles(c *campaign.Campaign) (scheduledNames map[string]bool, positions []TeleportedPosition) {
	scheduledNames = make(map[string]bool)

	for _, candidate := range c.FindPotentialBattles() {
		destA, hasA := c.UnitMovementDecisions[candidate.GroupA]
		destB, hasB := c.UnitMovementDecisions[candidate.GroupB]
		if !hasA || !hasB {
			continue
		}
		if destA != candidate.NodeB || destB != candidate.NodeA {
			continue
		}
		if scheduledNames[candidate.GroupA] || scheduledNames[candidate.GroupB] {
			continue
		}

		groupA, okA := c.Map.FindGroupByName(candidate.GroupA)
		groupB, okB := c.Map.FindGroupByName(candidate.GroupB)
		if !okA || !okB {
			continue
		}

		nodeA, _ := c.Map.Graph.Node(candidate.NodeA)
		nodeB, _ := c.Map.Graph.Node(candidate.NodeB)
		midpoint := nodeA.Coord.Midpoint(nodeB.Coord)

		teleportGroupUnits(groupA, midpoint)
		teleportGroupUnits(groupB, midpoint)

		if !groupA.Dynamic {
			positions = append(positions, TeleportedPosition{GroupName: groupA.Name, Pos: midpoint})
		}
		if !groupB.Dynamic {
			positions = append(positions, TeleportedPosition{GroupName: groupB.Name, Pos: midpoint})
		}

		scheduledNames[candidate.GroupA] = true
		scheduledNames[candidate.GroupB] = true

		c.AddToBattles([]int{candidate.NodeA, candidate.NodeB}, candidate.GroupA)
		c.AddToBattles([]int{candidate.NodeA, candidate.NodeB}, candidate.GroupB)
	}

	c.Map.UpdateGroupNodes()
	return scheduledNames, positions
}

func teleportGroupUnits(g *model.Group, pos model.Point) {
	for _, u := range g.Units {
		u.Position = pos
	}
}

// ResolveSameNodeBattles scans for nodes now holding both coalitions after
// crossing battles have relocated their participants, excluding groups
// already folded into a crossing battle this turn. Each discovered battle
// is recorded on the campaign's early battle set, same as a crossing one.
func ResolveSameNodeBattles(c *campaign.Campaign, previouslyScheduled map[string]bool) []model.Battle {
	battles := c.GetBattlesDueToSameNode(previouslyScheduled)
	for _, b := range battles {
		for _, name := range b.GroupNames {
			c.AddToBattles(b.Nodes, name)
		}
	}
	return battles
}
