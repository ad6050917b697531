// Package stats extracts clean battle outcomes from a finished mission:
// which unit types engaged each battle and which survived, discarding any
// battle whose data was contaminated by participants arriving from
// outside the original engagement. The cleanup algorithm is the same
// "external engagement" heuristic the turn-by-turn mission-end handler
// has always used — a battle is trustworthy only if every other
// participant either never got shot at by an outsider, or one whole
// coalition died out before any outsider's first shot landed.
package stats

import (
	"dyncserver/campaign"
	"dyncserver/model"
)

// ShotEvent records one shot fired at a group this mission.
type ShotEvent struct {
	WasPlane  bool
	TimeS     float64
}

// MissionReport is the host's end-of-mission summary: who shot whom and
// when, plus the mission's wall-clock bounds.
type MissionReport struct {
	// ShotGroups maps a victim group name to the shooters that hit it,
	// keyed by shooter name.
	ShotGroups  map[string]map[string]ShotEvent
	StartTimeS  float64
	MissionTimeS float64
}

// Conflict is one clean battle's unit-type composition at its start and
// end, ready for the persistence layer.
type Conflict struct {
	InitialRed, InitialBlue   []string
	SurvivingRed, SurvivingBlue []string
}

// Extract runs the cleanup algorithm over the campaign's recorded early
// battles and this mission's shot/death history, returning one Conflict
// per battle whose outcome can be trusted.
func Extract(c *campaign.Campaign, report MissionReport) []Conflict {
	timesGroupDied := latestDeathTimes(c)

	type dirtyCandidate struct {
		battle                  *model.Battle
		earliestExternal        float64
		earliestPlaneEngagement *float64
	}
	var candidates []dirtyCandidate
	type cleanBattle struct {
		battle *model.Battle
		endAt  *float64
	}
	var clean []cleanBattle

	for _, battle := range c.EarlyBattles {
		var earliestExternal *float64
		var earliestPlane *float64

		for _, groupName := range battle.GroupNames {
			shooters, shotAt := report.ShotGroups[groupName]
			if !shotAt {
				continue
			}
			for shooterName, shot := range shooters {
				if shot.WasPlane {
					if earliestExternal == nil || *earliestExternal > shot.TimeS {
						t := shot.TimeS
						earliestExternal = &t
					}
					if earliestPlane == nil || *earliestPlane > shot.TimeS {
						t := shot.TimeS
						earliestPlane = &t
					}
					continue
				}
				start, ok := c.GroupNodesMissionStart[shooterName]
				if !ok {
					continue
				}
				if !containsNode(battle.Nodes, start.Node) {
					if earliestExternal == nil || *earliestExternal > shot.TimeS {
						t := shot.TimeS
						earliestExternal = &t
					}
				}
			}
		}

		if earliestExternal != nil {
			candidates = append(candidates, dirtyCandidate{battle: battle, earliestExternal: *earliestExternal, earliestPlaneEngagement: earliestPlane})
		} else {
			clean = append(clean, cleanBattle{battle: battle, endAt: nil})
		}
	}

	for _, cand := range candidates {
		remaining := make(map[string]model.Coalition)
		for name, start := range c.GroupNodesMissionStart {
			if containsName(cand.battle.GroupNames, name) {
				remaining[name] = start.Coalition
			}
		}

		var latestDeathRed, latestDeathBlue *float64
		for _, name := range cand.battle.GroupNames {
			start, ok := c.GroupNodesMissionStart[name]
			if !ok {
				continue
			}
			if death, died := timesGroupDied[name]; died {
				if start.Coalition == model.Red {
					if latestDeathRed == nil || *latestDeathRed < death.time {
						t := death.time
						latestDeathRed = &t
					}
				} else {
					if latestDeathBlue == nil || *latestDeathBlue < death.time {
						t := death.time
						latestDeathBlue = &t
					}
				}
				delete(remaining, name)
			}
		}

		foundRed, foundBlue := false, false
		for _, coalition := range remaining {
			if coalition == model.Red {
				foundRed = true
			} else {
				foundBlue = true
			}
		}
		if foundRed && foundBlue {
			continue
		}

		if !foundRed && latestDeathRed != nil && *latestDeathRed < cand.earliestExternal {
			t := *latestDeathRed
			clean = append(clean, cleanBattle{battle: cand.battle, endAt: &t})
		} else if !foundBlue && latestDeathBlue != nil && *latestDeathBlue < cand.earliestExternal {
			t := *latestDeathBlue
			clean = append(clean, cleanBattle{battle: cand.battle, endAt: &t})
		}
	}

	var conflicts []Conflict
	for _, cb := range clean {
		var conflict Conflict
		for _, name := range cb.battle.GroupNames {
			start, ok := c.GroupNodesMissionStart[name]
			if !ok {
				continue
			}
			appendInitial(&conflict, start.Coalition, start.Type)

			death, died := timesGroupDied[name]
			survived := !died || (cb.endAt != nil && death.time > *cb.endAt)
			if survived {
				appendSurviving(&conflict, start.Coalition, start.Type)
			}
		}
		conflicts = append(conflicts, conflict)
	}
	return conflicts
}

type deathInfo struct {
	time float64
}

// latestDeathTimes finds, for every group that disappeared entirely this
// mission (no live units remain anywhere on the map), the timestamp of its
// last unit's death.
func latestDeathTimes(c *campaign.Campaign) map[string]deathInfo {
	out := make(map[string]deathInfo)
	for _, death := range c.Deaths {
		if _, stillAlive := c.Map.FindGroupByName(death.GroupName); stillAlive {
			continue
		}
		if existing, ok := out[death.GroupName]; !ok || death.TimestampS > existing.time {
			out[death.GroupName] = deathInfo{time: death.TimestampS}
		}
	}
	return out
}

func containsNode(nodes []int, n int) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}

func containsName(names []string, n string) bool {
	for _, x := range names {
		if x == n {
			return true
		}
	}
	return false
}

func appendInitial(c *Conflict, coalition model.Coalition, typ string) {
	if coalition == model.Red {
		c.InitialRed = append(c.InitialRed, typ)
	} else {
		c.InitialBlue = append(c.InitialBlue, typ)
	}
}

func appendSurviving(c *Conflict, coalition model.Coalition, typ string) {
	if coalition == model.Red {
		c.SurvivingRed = append(c.SurvivingRed, typ)
	} else {
		c.SurvivingBlue = append(c.SurvivingBlue, typ)
	}
}
