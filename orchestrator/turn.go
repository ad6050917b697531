package orchestrator

import (
	"fmt"
	"strings"

	"dyncserver/battlescheduler"
	"dyncserver/campaign"
	"dyncserver/graphbuilder"
	"dyncserver/model"
	"dyncserver/movement"
	"dyncserver/worldmap"
)

// ProcessTurn runs one full turn: ingests the host's reported world
// state, merges the route graph on first sight, updates every group's
// position and node, resolves battles, runs movement/support/AA AI, and
// returns the orders the host relays into the running mission.
//
// The caller must hold c.Lock() for the duration of the call — a turn
// touches nearly every field on the campaign and must run atomically
// with respect to any other handler.
func ProcessTurn(c *campaign.Campaign, req TurnRequest) (*TurnResult, error) {
	mapMarkers, cornerMarkers := parseMarkers(req)

	reportedUnits := make(map[string]string, len(req.Units))
	for name, u := range req.Units {
		reportedUnits[name] = u.Group
	}
	if c.Map.Graph != nil && c.Map.Graph.NumNodes() > 0 && !c.UnitsMatch(reportedUnits) {
		c.Stage = 0
		c.ClearEphemeralTurnState()
		c.UnitMovementDecisions = make(map[string]int)
		c.DestroyedUnitNamesAndGroups = make(map[string]string)
	}

	mustUpdateDistances := false
	if c.Map.Graph == nil || c.Map.Graph.NumNodes() == 0 {
		routes, err := ParseRoutes(req.Routes)
		if err != nil {
			return nil, err
		}
		c.Map.Graph = graphbuilder.Build(routes)
		mustUpdateDistances = true
	}

	for unitName, u := range req.Units {
		if _, destroyed := c.DestroyedUnitNamesAndGroups[unitName]; destroyed {
			continue
		}
		if u.Group == "" {
			return nil, ErrCorruptUnit{Field: "group"}
		}
		if u.Pos == "" {
			return nil, ErrCorruptUnit{Field: "pos"}
		}
		if u.Category == "" {
			return nil, ErrCorruptUnit{Field: "category"}
		}
		if u.Coalition == "" {
			return nil, ErrCorruptUnit{Field: "coalition"}
		}
		pos, err := ParsePoint(u.Pos)
		if err != nil {
			return nil, err
		}

		if existing, ok := findUnit(c.Map, unitName); ok {
			if c.Stage == 0 {
				existing.Position = pos
			}
			continue
		}

		group, ok := c.Map.FindGroupByName(u.Group)
		mustAddGroup := false
		if !ok {
			group = model.NewGroup(u.Group, model.Category(u.Category), model.Coalition(u.Coalition), false)
			mustAddGroup = true
		}
		group.AddUnit(&model.Unit{Name: unitName, Position: pos, Type: u.Type, Skill: model.DefaultSkill})
		if mustAddGroup {
			node := c.Map.FindNodeByCenter(group.Centroid())
			c.Map.AddGroup(group, node)
		}
	}

	if c.Stage == 0 {
		c.Map.UpdateGroupNodes()

		red, err := ParsePoint(req.GoalRed)
		if err != nil {
			return nil, err
		}
		blue, err := ParsePoint(req.GoalBlue)
		if err != nil {
			return nil, err
		}
		c.Map.UpdateGoals(red, blue, campaign.MaxInfantryInNode)
	}

	c.AddResourcesGeneric(model.Red, 1)
	c.AddResourcesGeneric(model.Blue, 1)

	if mustUpdateDistances {
		c.Map.UpdateNodesByDistance()
	}

	if len(c.Map.MapMarkers) == 0 && len(mapMarkers) > 0 {
		c.Map.MapMarkers = mapMarkers
	}
	if len(c.Map.CornerMarkers) == 0 && len(cornerMarkers) > 0 {
		c.Map.CornerMarkers = cornerMarkers
	}

	if c.Map.RedBullseye == (model.Point{}) {
		p, err := ParsePoint(req.BullseyeRed)
		if err != nil {
			return nil, err
		}
		c.Map.RedBullseye = p
	}
	if c.Map.BlueBullseye == (model.Point{}) {
		p, err := ParsePoint(req.BullseyeBlue)
		if err != nil {
			return nil, err
		}
		c.Map.BlueBullseye = p
	}

	if c.Map.MultipliersForRed == nil {
		c.Map.ComputeMultipliersForRed()
	}

	groupsPos := make(map[string]string)
	groupsDest := make(map[string]string)

	if c.Stage == 0 {
		for name, g := range c.Map.Groups() {
			if g.Category != model.CategoryVehicle || g.Static {
				continue
			}
			if node, ok := c.Map.FindGroupNodeByName(name); ok {
				if n, ok := c.Map.Graph.Node(node); ok {
					groupsPos[name] = FormatPoint(n.Coord)
				}
			}
		}
	}

	c.ClearEphemeralTurnState()

	scheduledByCrossing, teleports := battlescheduler.ResolveCrossingBattles(c)
	for _, t := range teleports {
		groupsPos[t.GroupName] = FormatPoint(t.Pos)
	}
	battlescheduler.ResolveSameNodeBattles(c, scheduledByCrossing)

	engagedInBattle := make(map[string]bool)
	for _, b := range c.EarlyBattles {
		for _, name := range b.GroupNames {
			engagedInBattle[name] = true
		}
	}

	// Apply last turn's decided moves now that this turn's battles are
	// resolved: a group that crossed paths with an enemy was teleported
	// above, and a group sharing a node with one stays where it is, so
	// only the groups not engaged in any battle need their position
	// snapped to the node they decided to move to.
	for name, destNode := range c.UnitMovementDecisions {
		if engagedInBattle[name] {
			continue
		}
		if g, ok := c.Map.FindGroupByName(name); ok {
			c.Map.ForceUnitsPosToNode(g, destNode)
		}
	}

	c.Map.UpdateGroupNodes()

	for name, g := range c.Map.Groups() {
		if g.Category != model.CategoryVehicle {
			continue
		}
		node, _ := c.Map.FindGroupNodeByName(name)
		c.GroupNodesMissionStart[name] = model.GroupStartRecord{
			Node:      node,
			Coalition: g.Coalition,
			Type:      g.Type(),
		}
	}

	for name, g := range c.Map.Groups() {
		if !g.IsVehicle() || g.SPAA || engagedInBattle[name] {
			continue
		}
		enemyInfantry := c.Map.NumCoalitionInfantryInNode(g.Coalition.Opposite(), mustNode(c.Map, name))

		var destNode int
		var decided bool
		if enemyInfantry == 0 {
			destNode, decided = movement.DecideMove(g, c.Map, c.RNG.Rand())
		} else {
			destNode, decided = mustNode(c.Map, name), true
		}
		if decided {
			g.SetDestinationNode(destNode)
			if n, ok := c.Map.Graph.Node(destNode); ok {
				groupsDest[name] = FormatPoint(n.Coord)
			}
			c.SetMovementDecision(name, destNode)
		}
	}

	coalitions := worldmap.ShuffledCoalitions(c.RNG.Rand())

	for _, coalition := range coalitions {
		if c.Map.GetNumSupportUnits(coalition) <= worldmap.SupportRestockThreshold {
			c.DecreaseResourcesGeneric(coalition, 1)
			c.Map.SetNumSupportUnits(coalition, worldmap.MaxSupportUnitsInGroup)
			if goal, ok := c.Map.CoalitionGoal(coalition.Opposite()); ok {
				c.Map.SetSupportUnitNode(coalition, goal)
			}
			continue
		}
		currentNode := c.Map.GetSupportUnitNode(coalition)
		move, ok := movement.DecideSupportMove(currentNode, coalition, c.Map, campaign.MaxInfantryInNode, c.RNG.Rand())
		if !ok {
			continue
		}
		c.Map.SetInfantryInNode(move, coalition, campaign.MaxInfantryInNode)
		c.Map.SetSupportUnitNode(coalition, move)
	}

	for _, coalition := range coalitions {
		if c.ResourcesGeneric[coalition] >= 2 {
			c.AAUnitIDCounter++
			name := fmt.Sprintf("Anti-aircraft %s %d (dyn) __spaa__", coalition, c.AAUnitIDCounter)
			newGroup := model.NewGroup(name, model.CategoryVehicle, coalition, true)
			newGroup.AddUnit(&model.Unit{
				Name:  fmt.Sprintf("Anti-aircraft unit %s %d (dyn)", coalition, c.AAUnitIDCounter),
				Type:  aaUnitType(c, coalition),
				Skill: model.DefaultSkill,
			})
			goal, ok := c.Map.CoalitionGoal(coalition.Opposite())
			if !ok {
				continue
			}
			c.Map.ForceUnitsPosToNode(newGroup, goal)
			c.Map.AddGroup(newGroup, goal)
			c.DecreaseResourcesGeneric(coalition, 2)
		}
	}

	for name, g := range c.Map.Groups() {
		if g.Category != model.CategoryVehicle || !g.SPAA {
			continue
		}
		node, ok := movement.DecideAAMove(g, c.Map, c.RNG.Rand())
		if ok {
			g.SetDestinationNode(node)
			if n, okn := c.Map.Graph.Node(node); okn {
				groupsDest[name] = FormatPoint(n.Coord)
			}
			c.SetMovementDecision(name, node)
		}
	}

	threatForBlue := c.Map.FindGreatestThreatNode(c.Map.RedGoalNode, model.Red)
	threatForRed := c.Map.FindGreatestThreatNode(c.Map.BlueGoalNode, model.Blue)
	if threatForBlue < 0 || threatForRed < 0 {
		return nil, fmt.Errorf("mission is not playable because no threats have been defined for one side or both")
	}
	coordsForBlue, _ := c.Map.Graph.Node(threatForBlue)
	coordsForRed, _ := c.Map.Graph.Node(threatForRed)

	supportRedNode := c.Map.GetSupportUnitNode(model.Red)
	supportBlueNode := c.Map.GetSupportUnitNode(model.Blue)
	supportRedCoords, _ := c.Map.Graph.Node(supportRedNode)
	supportBlueCoords, _ := c.Map.Graph.Node(supportBlueNode)

	infantryPos := map[model.Coalition][]InfantryPosition{model.Red: nil, model.Blue: nil}
	for _, coalition := range coalitions {
		for node, rec := range c.Map.InfantryInNodes {
			if rec.Coalition != coalition {
				continue
			}
			n, ok := c.Map.Graph.Node(node)
			if !ok {
				continue
			}
			infantryPos[coalition] = append(infantryPos[coalition], InfantryPosition{Pos: FormatPoint(n.Coord), Number: rec.Number})
		}
	}

	dynGroups := make(map[model.Coalition][]DynGroupPayload)
	for coalition, groups := range c.GetAllDynamicGroups() {
		for _, g := range groups {
			payload := DynGroupPayload{Category: string(g.Category), Name: g.Name}
			for _, u := range g.Units {
				payload.Units = append(payload.Units, DynGroupUnitPayload{
					Name: u.Name, Type: u.Type, Skill: u.Skill, Pos: FormatPoint(u.Position),
				})
			}
			dynGroups[coalition] = append(dynGroups[coalition], payload)
		}
	}

	result := &TurnResult{
		Stage:          c.Stage,
		Destroyed:      c.DestroyedUnitNamesAndGroups,
		GroupsPos:      groupsPos,
		GroupsDest:     groupsDest,
		AirDestRed:     FormatPoint(coordsForRed.Coord),
		AirDestBlue:    FormatPoint(coordsForBlue.Coord),
		SupportPosRed:  FormatPoint(supportRedCoords.Coord),
		SupportPosBlue: FormatPoint(supportBlueCoords.Coord),
		SupportNumRed:  c.Map.GetNumSupportUnits(model.Red),
		SupportNumBlue: c.Map.GetNumSupportUnits(model.Blue),
		InfantryPos:    infantryPos,
		DynGroups:      dynGroups,
	}
	return result, nil
}

func findUnit(m *worldmap.Map, name string) (*model.Unit, bool) {
	for _, g := range m.Groups() {
		if u, ok := g.Units[name]; ok {
			return u, true
		}
	}
	return nil, false
}

func mustNode(m *worldmap.Map, groupName string) int {
	node, _ := m.FindGroupNodeByName(groupName)
	return node
}

func aaUnitType(c *campaign.Campaign, coalition model.Coalition) string {
	allowed := c.AllowedAAUnits[coalition]
	if len(allowed) == 0 {
		return ""
	}
	idx := c.RNG.Intn(len(allowed))
	return allowed[idx]
}

func parseMarkers(req TurnRequest) (mapMarkers, cornerMarkers []worldmap.Marker) {
	for _, m := range req.MapMarkers {
		p, err := ParsePoint(m.Pos)
		if err != nil {
			continue
		}
		mapMarkers = append(mapMarkers, worldmap.Marker{Pos: [2]float64{p.X, p.Y}, Name: cleanMarkerName(m.Name)})
	}
	for _, m := range req.CornerMarkers {
		p, err := ParsePoint(m.Pos)
		if err != nil {
			continue
		}
		cornerMarkers = append(cornerMarkers, worldmap.Marker{Pos: [2]float64{p.X, p.Y}})
	}
	return mapMarkers, cornerMarkers
}

// cleanMarkerName strips the __mm__ tag out of a marker name and collapses
// the double space left behind when the tag sat in the middle of the
// string.
func cleanMarkerName(name string) string {
	cleaned := strings.ReplaceAll(name, "__mm__", "")
	return strings.ReplaceAll(cleaned, "  ", " ")
}
