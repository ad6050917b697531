package orchestrator

import (
	"dyncserver/campaign"
	"dyncserver/model"
	"dyncserver/stats"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"
)

// MissionEndResult is the outcome of one call to MissionEnd.
type MissionEndResult struct {
	Event  string // "end" or "continue"
	Result string // victory/draw description, only set when Event == "end"
}

// MissionEnd closes out a finished mission: extracts clean battle
// statistics, checks both coalitions' victory conditions (an unopposed
// group sitting on or adjacent to the enemy base), and either resets the
// campaign for a new one or advances its stage counter.
//
// The caller must hold c.Lock(). conflicts receives every clean battle
// this mission produced, ready for the caller to persist via a
// stats.Store; MissionEnd itself never touches storage.
func MissionEnd(c *campaign.Campaign, report stats.MissionReport) (result MissionEndResult, conflicts []stats.Conflict) {
	conflicts = stats.Extract(c, report)

	groups := c.Map.Groups()
	if len(groups) == 0 {
		resetForNextCampaign(c)
		return MissionEndResult{Event: "end", Result: "Draw: All units destroyed"}, conflicts
	}

	victoryRed, victoryBlue := false, false
	for name, g := range groups {
		if g.Category != model.CategoryVehicle || g.Static {
			continue
		}
		if g.Coalition != model.Red && g.Coalition != model.Blue {
			continue
		}
		node, ok := c.Map.FindGroupNodeByName(name)
		if !ok {
			continue
		}
		goal, ok := c.Map.CoalitionGoal(g.Coalition)
		if !ok {
			continue
		}
		path, ok := c.Map.GetShortestPath(node, goal)
		if !ok {
			continue
		}

		enemy := g.Coalition.Opposite()
		enemyInfantry := c.Map.NumCoalitionInfantryInNode(enemy, node)
		if enemyInfantry > 0 {
			enemyInfantry -= g.NumUnits()
			if enemyInfantry < 0 {
				enemyInfantry = 0
			}
			c.Map.SetInfantryInNode(node, enemy, enemyInfantry)
		}

		if enemyInfantry == 0 && len(path) < 3 {
			if g.Coalition == model.Red {
				victoryRed = true
			} else {
				victoryBlue = true
			}
		}
	}

	switch {
	case victoryRed && victoryBlue:
		resetForNextCampaign(c)
		return MissionEndResult{Event: "end", Result: "Draw: Both sides enter the other's base"}, conflicts
	case victoryRed:
		resetForNextCampaign(c)
		return MissionEndResult{Event: "end", Result: "Red coalition won"}, conflicts
	case victoryBlue:
		resetForNextCampaign(c)
		return MissionEndResult{Event: "end", Result: "Blue coalition won"}, conflicts
	}

	c.Stage++
	return MissionEndResult{Event: "continue"}, conflicts
}

// resetForNextCampaign zeroes the campaign back to a fresh, stage-zero
// state over a brand new, ungraphed map, ready to merge whatever routes
// the next mission submits. Every field but the embedded mutex is
// overwritten in place; the mutex itself must never be replaced while
// held.
func resetForNextCampaign(c *campaign.Campaign) {
	fresh := campaign.New(worldmap.New(graph.New()), c.RNG.Seed(), c.SoftwareVersion)
	c.Stage = fresh.Stage
	c.Map = fresh.Map
	c.RNG = fresh.RNG
	c.DestroyedUnitNamesAndGroups = fresh.DestroyedUnitNamesAndGroups
	c.ResourcesGeneric = fresh.ResourcesGeneric
	c.ExtraScores = fresh.ExtraScores
	c.UnitMovementDecisions = fresh.UnitMovementDecisions
	c.AAUnitIDCounter = fresh.AAUnitIDCounter
	c.AllowedAAUnits = fresh.AllowedAAUnits
	c.EarlyBattles = fresh.EarlyBattles
	c.Deaths = fresh.Deaths
	c.GroupNodesMissionStart = fresh.GroupNodesMissionStart
}
