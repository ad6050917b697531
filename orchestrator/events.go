package orchestrator

import (
	"fmt"

	"dyncserver/campaign"
	"dyncserver/model"
	"dyncserver/worldmap"
)

// ScoreReason enumerates the kill/eject events the host reports.
type ScoreReason string

const (
	ReasonPlayerEject ScoreReason = "player_eject"
	ReasonPlayerDeath ScoreReason = "player_death"
	ReasonAIEject     ScoreReason = "ai_eject"
	ReasonAIDeath     ScoreReason = "ai_death"
)

// ScoringTable holds the point values changescore awards for each reason,
// sourced from the scoring section of configuration.
type ScoringTable struct {
	PlayerEject float64
	PlayerDeath float64
	AIEject     float64
	AIDeath     float64

	// UnitDistanceMultiplier and UnitBaseScore feed ComputeScores' per-group
	// forward-progress bonus.
	UnitDistanceMultiplier float64
	UnitBaseScore          float64
}

func (s ScoringTable) points(reason ScoreReason) (float64, bool) {
	switch reason {
	case ReasonPlayerEject:
		return s.PlayerEject, true
	case ReasonPlayerDeath:
		return s.PlayerDeath, true
	case ReasonAIEject:
		return s.AIEject, true
	case ReasonAIDeath:
		return s.AIDeath, true
	default:
		return 0, false
	}
}

// UnitDestroyed removes a killed unit from its group, dissolving the
// group entirely once its last unit is gone, and records the kill on the
// campaign's ephemeral death log for later statistics extraction. It is a
// no-op (not an error) if the named group can't be found, matching the
// source's tolerance for late or duplicate reports.
func UnitDestroyed(c *campaign.Campaign, unitName, groupName string, timestampS float64) error {
	group, ok := c.Map.FindGroupByName(groupName)
	if !ok {
		return nil
	}

	if _, already := c.DestroyedUnitNamesAndGroups[unitName]; !already {
		c.DestroyedUnitNamesAndGroups[unitName] = groupName
	}

	c.Deaths = append(c.Deaths, model.DeathEvent{
		UnitName:   unitName,
		GroupName:  groupName,
		Coalition:  group.Coalition,
		Type:       group.Type(),
		TimestampS: timestampS,
	})

	delete(group.Units, unitName)
	if group.NumUnits() == 0 {
		delete(c.UnitMovementDecisions, groupName)
		c.Map.RemoveGroup(group)
	}
	return nil
}

// ChangeScore credits the coalition opposing the one named with points for
// reason, returning the updated (red, blue) extra-score totals.
func ChangeScore(c *campaign.Campaign, scoring ScoringTable, reason ScoreReason, coalition model.Coalition, unitName string) (red, blue int, err error) {
	if coalition != model.Red && coalition != model.Blue {
		return 0, 0, fmt.Errorf("coalition must be %q or %q to change score; was %q", model.Red, model.Blue, coalition)
	}
	points, ok := scoring.points(reason)
	if !ok {
		return c.ExtraScores[model.Red], c.ExtraScores[model.Blue], nil
	}
	winner := coalition.Opposite()
	c.ExtraScores[winner] += int(points)
	return c.ExtraScores[model.Red], c.ExtraScores[model.Blue], nil
}

// ComputeScores totals each coalition's displayed score: its accumulated
// extra_scores plus, for every one of its vehicle groups, a per-unit base
// score scaled up by how far forward that group's node sits toward the
// enemy base.
func ComputeScores(c *campaign.Campaign, scoring ScoringTable) (red, blue float64) {
	red = float64(c.ExtraScores[model.Red])
	blue = float64(c.ExtraScores[model.Blue])

	for name, g := range c.Map.Groups() {
		if g.Category != model.CategoryVehicle || (g.Coalition != model.Red && g.Coalition != model.Blue) {
			continue
		}
		node, ok := c.Map.FindGroupNodeByName(name)
		if !ok {
			continue
		}
		redShare := c.Map.MultipliersForRed[node]
		var m float64
		if g.Coalition == model.Red {
			m = redShare
		} else {
			m = 1 - redShare
		}
		groupScore := (1 + m*scoring.UnitDistanceMultiplier) * float64(g.NumUnits()) * scoring.UnitBaseScore
		if g.Coalition == model.Red {
			red += groupScore
		} else {
			blue += groupScore
		}
	}
	return red, blue
}

// SupportDestroyed decrements a coalition's support pool by one, used
// whenever the host reports that one of a coalition's support units died
// this mission.
func SupportDestroyed(c *campaign.Campaign, coalition model.Coalition) (remaining int, consideredDestroyed bool) {
	c.Map.DecrementNumSupportUnits(coalition)
	remaining = c.Map.GetNumSupportUnits(coalition)
	return remaining, remaining <= worldmap.SupportRestockThreshold
}
