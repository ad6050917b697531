package model

import (
	"sort"
	"strconv"
)

// Battle is a scheduled or detected collision between opposing vehicle
// groups. Nodes has size 1 for a same-node battle (both coalitions already
// co-located) or size 2 for a mid-segment battle resolved from movement
// decisions that would cross.
type Battle struct {
	Nodes      []int
	GroupNames []string
}

// Key returns a stable, order-independent identity for the battle's node
// set, suitable for deduplication in a set/map.
func (b Battle) Key() string {
	nodes := append([]int(nil), b.Nodes...)
	sort.Ints(nodes)
	key := ""
	for i, n := range nodes {
		if i > 0 {
			key += ","
		}
		key += strconv.Itoa(n)
	}
	return key
}

// SameNode reports whether this is a single-node (co-located) battle.
func (b Battle) SameNode() bool {
	return len(b.Nodes) == 1
}

// DeathEvent records a unit's death for early-battle cleanup bookkeeping.
type DeathEvent struct {
	UnitName   string
	GroupName  string
	Coalition  Coalition
	Type       string
	TimestampS float64
}

// GroupStartRecord snapshots a vehicle group's position at mission start,
// used by the statistics extractor to decide whether a shot originated
// from inside a battle's node set.
type GroupStartRecord struct {
	Node      int
	Coalition Coalition
	Type      string
}
