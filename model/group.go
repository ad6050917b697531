package model

import "strings"

// Name suffixes the host mission script uses to tag special group
// behavior. Per the design note on string sentinels, these are mirrored
// into explicit flags on Group at ingest time so the core never does
// string matching again once a Group exists.
const (
	tagStatic    = "__sg__"
	tagSPAA      = "__spaa__"
	tagMarker    = "__mm__"
	tagIgnoreTP  = "__ig__"
	staticPrefix = "staticgroup"
)

// Group is a named collection of Units sharing a category, coalition and
// (by invariant) unit type. All mutation of a Group's unit set happens
// through its owning Campaign so that node indices stay consistent.
type Group struct {
	Name       string
	Category   Category
	Coalition  Coalition
	Units      map[string]*Unit
	Dynamic    bool
	DestNode   int
	HasDest    bool

	// Flags mirrored from the name at ingest, see the tag constants above.
	Static      bool // __sg__: never moves, never counts toward victory
	SPAA        bool // __spaa__: server-placed dynamic AA
	Marker      bool // __mm__: map-marker decoration, not a combat entity
	IgnoreTele  bool // __ig__: preserve individual unit positions on teleport
}

// NewGroup builds a Group and derives its behavior flags from its name.
func NewGroup(name string, category Category, coalition Coalition, dynamic bool) *Group {
	return &Group{
		Name:       name,
		Category:   category,
		Coalition:  coalition,
		Units:      make(map[string]*Unit),
		Dynamic:    dynamic,
		Static:     strings.Contains(name, tagStatic) || strings.HasPrefix(name, staticPrefix),
		SPAA:       strings.Contains(name, tagSPAA),
		Marker:     strings.Contains(name, tagMarker),
		IgnoreTele: strings.Contains(name, tagIgnoreTP),
	}
}

// IsVehicle reports whether this group is an offensive vehicle group eligible
// for decide_move: category vehicle, not static, not a map marker.
func (g *Group) IsVehicle() bool {
	return g.Category == CategoryVehicle && !g.Static && !g.Marker
}

// Centroid returns the average position of the group's live units. Callers
// must guard against an empty group; an empty centroid is the zero Point.
func (g *Group) Centroid() Point {
	if len(g.Units) == 0 {
		return Point{}
	}
	var sx, sy float64
	for _, u := range g.Units {
		sx += u.Position.X
		sy += u.Position.Y
	}
	n := float64(len(g.Units))
	return Point{X: sx / n, Y: sy / n}
}

// NumUnits returns the live unit count.
func (g *Group) NumUnits() int {
	return len(g.Units)
}

// AddUnit adds u to the group, keyed by its name.
func (g *Group) AddUnit(u *Unit) {
	g.Units[u.Name] = u
}

// Type returns an arbitrary member unit's type string, relying on the
// invariant that every unit in a group shares one type. Empty for a group
// with no units.
func (g *Group) Type() string {
	for _, u := range g.Units {
		return u.Type
	}
	return ""
}

// SetDestinationNode records node as the group's chosen movement target
// for this turn.
func (g *Group) SetDestinationNode(node int) {
	g.DestNode = node
	g.HasDest = true
}

// ForceUnitsPosToPoint snaps every unit's position to pt directly, used to
// place battle participants at a collision midpoint.
func (g *Group) ForceUnitsPosToPoint(pt Point) {
	for _, u := range g.Units {
		u.Position = pt
	}
}
