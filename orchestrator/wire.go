// Package orchestrator drives one full turn of the campaign: ingesting
// the host's reported world state, running movement AI and battle
// scheduling, and producing the orders the host relays back into the
// running mission. It is the one place campaign, worldmap, movement, and
// battlescheduler are all used together.
package orchestrator

import (
	"fmt"
	"strconv"
	"strings"

	"dyncserver/graphbuilder"
	"dyncserver/model"
)

// ParsePoint parses a host "x,y" pair.
func ParsePoint(s string) (model.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return model.Point{}, fmt.Errorf("malformed point %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("malformed point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return model.Point{}, fmt.Errorf("malformed point %q: %w", s, err)
	}
	return model.Point{X: x, Y: y}, nil
}

// FormatPoint renders a point the way the host expects: six decimal
// places, matching the source's "%f,%f" formatting.
func FormatPoint(p model.Point) string {
	return fmt.Sprintf("%f,%f", p.X, p.Y)
}

// parseRouteWaypoint parses one "x,y" or "x,y,r" route entry.
func parseRouteWaypoint(s string) (graphbuilder.RouteWaypoint, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return graphbuilder.RouteWaypoint{}, fmt.Errorf("malformed waypoint %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return graphbuilder.RouteWaypoint{}, fmt.Errorf("malformed waypoint %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return graphbuilder.RouteWaypoint{}, fmt.Errorf("malformed waypoint %q: %w", s, err)
	}
	reinforcement := len(parts) >= 3 && strings.TrimSpace(parts[2]) == "r"
	return graphbuilder.RouteWaypoint{Coord: model.Point{X: x, Y: y}, Reinforcement: reinforcement}, nil
}

// ParseRoutes parses every route in raw, one list of waypoint strings per
// route.
func ParseRoutes(raw [][]string) ([][]graphbuilder.RouteWaypoint, error) {
	routes := make([][]graphbuilder.RouteWaypoint, len(raw))
	for i, route := range raw {
		parsed := make([]graphbuilder.RouteWaypoint, len(route))
		for j, wp := range route {
			p, err := parseRouteWaypoint(wp)
			if err != nil {
				return nil, err
			}
			parsed[j] = p
		}
		routes[i] = parsed
	}
	return routes, nil
}

// UnitReport is one entry of the host's "units" map.
type UnitReport struct {
	Group     string
	Pos       string
	Type      string
	Category  string
	Coalition string
}

// RawMarker is one host-reported map or corner marker, before name
// cleanup.
type RawMarker struct {
	Name string
	Pos  string
}

// TurnRequest is the parsed form of a processjson request body.
type TurnRequest struct {
	Routes        [][]string
	Units         map[string]UnitReport
	GoalRed       string
	GoalBlue      string
	BullseyeRed   string
	BullseyeBlue  string
	MapMarkers    []RawMarker
	CornerMarkers []RawMarker
}

// TurnResult is the parsed form of a successful processjson response,
// ready for the RPC layer to marshal to the wire shape.
type TurnResult struct {
	Stage       int
	Destroyed   map[string]string
	GroupsPos   map[string]string
	GroupsDest  map[string]string
	AirDestRed  string
	AirDestBlue string
	SupportPosRed  string
	SupportPosBlue string
	SupportNumRed  int
	SupportNumBlue int
	InfantryPos map[model.Coalition][]InfantryPosition
	DynGroups   map[model.Coalition][]DynGroupPayload
}

// InfantryPosition is one entry of the infantrypos response list.
type InfantryPosition struct {
	Pos    string
	Number int
}

// DynGroupUnitPayload is one unit within a dynamic group the host must spawn.
type DynGroupUnitPayload struct {
	Name  string
	Type  string
	Skill string
	Pos   string
}

// DynGroupPayload is one dynamic group the host must spawn.
type DynGroupPayload struct {
	Category string
	Name     string
	Units    []DynGroupUnitPayload
}

// ErrCorruptUnit reports which field was missing from a host unit report,
// matching the source's per-field "incompatible mission script" messages.
type ErrCorruptUnit struct {
	Field string
}

func (e ErrCorruptUnit) Error() string {
	return fmt.Sprintf("corrupt JSON: unit doesn't have %s-field; your mission script is incompatible with server version", e.Field)
}
