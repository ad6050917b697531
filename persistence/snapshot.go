package persistence

import (
	"dyncserver/campaign"
	"dyncserver/model"
	"dyncserver/worldmap"
	"dyncserver/worldmap/graph"
)

// Snapshot is the complete on-disk shape of a campaign: explicit record
// types standing in for the original's dynamically-typed dictionaries, so
// that a field of the wrong JSON type in a corrupt or hand-edited file
// fails at json.Unmarshal. A field missing from the file is not an error;
// it decodes to its zero value.
type Snapshot struct {
	SoftwareVersion string        `json:"software_version"`
	RNGSeed         int64         `json:"rng_seed"`
	Stage           int           `json:"stage"`
	Map             MapSnapshot   `json:"map"`
	AAUnitIDCounter int           `json:"aa_unit_id_counter"`

	DestroyedUnitNamesAndGroups map[string]string   `json:"destroyed_unit_names_and_groups"`
	ResourcesGeneric            map[string]int      `json:"resources_generic"`
	ExtraScores                 map[string]int      `json:"extra_scores"`
	UnitMovementDecisions       map[string]int       `json:"unit_movement_decisions"`
	AllowedAAUnits              map[string][]string `json:"allowed_aa_units"`
}

// MapSnapshot is the on-disk shape of worldmap.Map.
type MapSnapshot struct {
	Nodes []NodeSnapshot `json:"nodes"`
	Edges []EdgeSnapshot `json:"edges"`

	GroupsInNodes   map[int]map[string]GroupSnapshot `json:"groups_in_nodes"`
	InfantryInNodes map[int]InfantrySnapshot         `json:"infantry_in_nodes"`

	RedGoalNode  int `json:"red_goal_node"`
	BlueGoalNode int `json:"blue_goal_node"`

	SupportUnitNodes map[string]int     `json:"support_unit_nodes"`
	NumSupportUnits  map[string]int     `json:"num_support_units"`

	MapMarkers    []MarkerSnapshot `json:"mapmarkers"`
	CornerMarkers []MarkerSnapshot `json:"cornermarkers"`

	MultipliersForRed map[int]float64 `json:"multipliers_for_red"`
}

type NodeSnapshot struct {
	ID              int     `json:"id"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	IsReinforcement bool    `json:"is_reinforcement"`
}

type EdgeSnapshot struct {
	A, B   int
	Weight float64
}

type GroupSnapshot struct {
	Category  string         `json:"category"`
	Coalition string         `json:"coalition"`
	Dynamic   bool           `json:"dynamic"`
	Units     map[string]UnitSnapshot `json:"units"`
}

type UnitSnapshot struct {
	Position [2]float64 `json:"position"`
	Type     string     `json:"type"`
	Skill    string     `json:"skill"`
}

type InfantrySnapshot struct {
	Coalition string `json:"coalition"`
	Number    int    `json:"number"`
}

type MarkerSnapshot struct {
	Pos  [2]float64 `json:"pos"`
	Name string     `json:"name"`
}

// FromCampaign converts a live campaign into its on-disk shape.
func FromCampaign(c *campaign.Campaign) Snapshot {
	m := c.Map

	var nodes []NodeSnapshot
	for _, id := range m.Graph.Nodes() {
		n, _ := m.Graph.Node(id)
		nodes = append(nodes, NodeSnapshot{ID: id, X: n.Coord.X, Y: n.Coord.Y, IsReinforcement: n.IsReinforcement})
	}
	var edges []EdgeSnapshot
	for _, e := range m.Graph.AllEdges() {
		edges = append(edges, EdgeSnapshot{A: e.A, B: e.B, Weight: e.Weight})
	}

	groupsInNodes := make(map[int]map[string]GroupSnapshot)
	for node, byName := range m.GroupsInNodes {
		entry := make(map[string]GroupSnapshot)
		for name, g := range byName {
			units := make(map[string]UnitSnapshot)
			for uname, u := range g.Units {
				units[uname] = UnitSnapshot{Position: [2]float64{u.Position.X, u.Position.Y}, Type: u.Type, Skill: u.Skill}
			}
			entry[name] = GroupSnapshot{
				Category:  string(g.Category),
				Coalition: string(g.Coalition),
				Dynamic:   g.Dynamic,
				Units:     units,
			}
		}
		groupsInNodes[node] = entry
	}

	infantry := make(map[int]InfantrySnapshot)
	for node, rec := range m.InfantryInNodes {
		infantry[node] = InfantrySnapshot{Coalition: string(rec.Coalition), Number: rec.Number}
	}

	var mapMarkers, cornerMarkers []MarkerSnapshot
	for _, mk := range m.MapMarkers {
		mapMarkers = append(mapMarkers, MarkerSnapshot{Pos: mk.Pos, Name: mk.Name})
	}
	for _, mk := range m.CornerMarkers {
		cornerMarkers = append(cornerMarkers, MarkerSnapshot{Pos: mk.Pos, Name: mk.Name})
	}

	destroyed := make(map[string]string, len(c.DestroyedUnitNamesAndGroups))
	for unitName, groupName := range c.DestroyedUnitNamesAndGroups {
		destroyed[unitName] = groupName
	}

	return Snapshot{
		SoftwareVersion: c.SoftwareVersion,
		RNGSeed:         c.RNG.Seed(),
		Stage:           c.Stage,
		AAUnitIDCounter: c.AAUnitIDCounter,
		Map: MapSnapshot{
			Nodes:             nodes,
			Edges:             edges,
			GroupsInNodes:     groupsInNodes,
			InfantryInNodes:   infantry,
			RedGoalNode:       m.RedGoalNode,
			BlueGoalNode:      m.BlueGoalNode,
			SupportUnitNodes:  coalitionIntMap(m.SupportUnitNodes),
			NumSupportUnits:   coalitionIntMap(m.NumSupportUnits),
			MapMarkers:        mapMarkers,
			CornerMarkers:     cornerMarkers,
			MultipliersForRed: m.MultipliersForRed,
		},
		DestroyedUnitNamesAndGroups: destroyed,
		ResourcesGeneric:            coalitionIntMap(c.ResourcesGeneric),
		ExtraScores:                 coalitionIntMap(c.ExtraScores),
		UnitMovementDecisions:       c.UnitMovementDecisions,
		AllowedAAUnits: map[string][]string{
			"red":  c.AllowedAAUnits[model.Red],
			"blue": c.AllowedAAUnits[model.Blue],
		},
	}
}

func coalitionIntMap(m map[model.Coalition]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}

// ToCampaign rebuilds a live campaign from its on-disk shape.
func ToCampaign(s Snapshot) *campaign.Campaign {
	var gNodes []graph.Node
	for _, n := range s.Map.Nodes {
		gNodes = append(gNodes, graph.Node{ID: n.ID, Coord: model.Point{X: n.X, Y: n.Y}, IsReinforcement: n.IsReinforcement})
	}
	var gEdges []graph.Edge
	for _, e := range s.Map.Edges {
		gEdges = append(gEdges, graph.Edge{A: e.A, B: e.B, Weight: e.Weight})
	}
	g := graph.FromNodesAndEdges(gNodes, gEdges)

	m := worldmap.New(g)
	m.RedGoalNode = s.Map.RedGoalNode
	m.BlueGoalNode = s.Map.BlueGoalNode
	m.SupportUnitNodes = stringToCoalitionMap(s.Map.SupportUnitNodes)
	m.NumSupportUnits = stringToCoalitionMap(s.Map.NumSupportUnits)
	m.MultipliersForRed = s.Map.MultipliersForRed

	for node, byName := range s.Map.GroupsInNodes {
		entry := make(map[string]*model.Group)
		for name, gs := range byName {
			g := model.NewGroup(name, model.Category(gs.Category), model.Coalition(gs.Coalition), gs.Dynamic)
			for uname, us := range gs.Units {
				g.Units[uname] = &model.Unit{
					Name:     uname,
					Position: model.Point{X: us.Position[0], Y: us.Position[1]},
					Type:     us.Type,
					Skill:    us.Skill,
				}
			}
			entry[name] = g
		}
		m.GroupsInNodes[node] = entry
	}
	for node, is := range s.Map.InfantryInNodes {
		m.SetInfantryInNode(node, model.Coalition(is.Coalition), is.Number)
	}
	for _, mk := range s.Map.MapMarkers {
		m.MapMarkers = append(m.MapMarkers, worldmap.Marker{Pos: mk.Pos, Name: mk.Name})
	}
	for _, mk := range s.Map.CornerMarkers {
		m.CornerMarkers = append(m.CornerMarkers, worldmap.Marker{Pos: mk.Pos, Name: mk.Name})
	}
	m.UpdateNodesByDistance()

	c := campaign.New(m, s.RNGSeed, s.SoftwareVersion)
	c.Stage = s.Stage
	c.AAUnitIDCounter = s.AAUnitIDCounter
	c.ResourcesGeneric = stringToCoalitionMap(s.ResourcesGeneric)
	c.ExtraScores = stringToCoalitionMap(s.ExtraScores)
	c.UnitMovementDecisions = s.UnitMovementDecisions
	c.AllowedAAUnits = map[model.Coalition][]string{
		model.Red:  s.AllowedAAUnits["red"],
		model.Blue: s.AllowedAAUnits["blue"],
	}
	for unitName, groupName := range s.DestroyedUnitNamesAndGroups {
		c.DestroyedUnitNamesAndGroups[unitName] = groupName
	}
	return c
}

func stringToCoalitionMap(m map[string]int) map[model.Coalition]int {
	out := make(map[model.Coalition]int, len(m))
	for k, v := range m {
		out[model.Coalition(k)] = v
	}
	return out
}
