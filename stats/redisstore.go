package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// conflictRecord is the compact, id-encoded form of a Conflict actually
// written to storage: unit type strings are interned through the
// unit_types registry so the conflict log itself only ever stores small
// integers.
type conflictRecord struct {
	StartRed  []int `json:"sr,omitempty"`
	StartBlue []int `json:"sb,omitempty"`
	EndRed    []int `json:"er,omitempty"`
	EndBlue   []int `json:"eb,omitempty"`
}

func conflictsKey() string    { return "dyncserver:statistics:conflicts" }
func unitTypeIDKey() string   { return "dyncserver:statistics:unit_types:ids" }
func unitTypeNameKey() string { return "dyncserver:statistics:unit_types:names" }

// Store persists clean-battle statistics to Redis: one list entry per
// mission's conflicts (a JSON blob per entry, list-pushed so the
// mission_time sits alongside it) plus a small name<->id registry so
// entries stay compact the way the original sqlite schema's unit_types
// table did.
type Store struct {
	rdb *redis.Client
}

// NewStore wraps an already-connected redis client.
func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// missionEntry is one list element: a mission's conflicts plus its
// duration, matching the statistics(conflicts, mission_time) table shape.
type missionEntry struct {
	Conflicts   []conflictRecord `json:"conflicts"`
	MissionTime int              `json:"mission_time"`
}

// SaveMission interns every unit type referenced by conflicts and appends
// one mission entry to the conflicts log. A no-op when conflicts is empty,
// matching the source, which never bothers writing an empty mission.
func (s *Store) SaveMission(ctx context.Context, conflicts []Conflict, missionTimeS float64) error {
	if len(conflicts) == 0 {
		return nil
	}
	records := make([]conflictRecord, 0, len(conflicts))
	for _, c := range conflicts {
		rec := conflictRecord{}
		var err error
		if rec.StartRed, err = s.internAll(ctx, c.InitialRed); err != nil {
			return err
		}
		if rec.StartBlue, err = s.internAll(ctx, c.InitialBlue); err != nil {
			return err
		}
		if rec.EndRed, err = s.internAll(ctx, c.SurvivingRed); err != nil {
			return err
		}
		if rec.EndBlue, err = s.internAll(ctx, c.SurvivingBlue); err != nil {
			return err
		}
		records = append(records, rec)
	}

	entry := missionEntry{Conflicts: records, MissionTime: int(missionTimeS)}
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal mission entry: %w", err)
	}
	return s.rdb.RPush(ctx, conflictsKey(), data).Err()
}

// internAll resolves every type name to its registry id, minting a new one
// on first sight.
func (s *Store) internAll(ctx context.Context, types []string) ([]int, error) {
	ids := make([]int, 0, len(types))
	for _, t := range types {
		id, err := s.internType(ctx, t)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *Store) internType(ctx context.Context, typeName string) (int, error) {
	existing, err := s.rdb.HGet(ctx, unitTypeIDKey(), typeName).Result()
	if err == nil {
		return strconv.Atoi(existing)
	}
	if err != redis.Nil {
		return 0, fmt.Errorf("lookup unit type %q: %w", typeName, err)
	}

	id, err := s.rdb.HLen(ctx, unitTypeIDKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("count unit types: %w", err)
	}
	newID := int(id) + 1

	if err := s.rdb.HSet(ctx, unitTypeIDKey(), typeName, newID).Err(); err != nil {
		return 0, fmt.Errorf("intern unit type %q: %w", typeName, err)
	}
	if err := s.rdb.HSet(ctx, unitTypeNameKey(), strconv.Itoa(newID), typeName).Err(); err != nil {
		return 0, fmt.Errorf("record unit type name for id %d: %w", newID, err)
	}
	return newID, nil
}

// TypeName resolves a registry id back to its original type string, used
// by the human-readable text export.
func (s *Store) TypeName(ctx context.Context, id int) (string, error) {
	return s.rdb.HGet(ctx, unitTypeNameKey(), strconv.Itoa(id)).Result()
}

// AllMissions returns every stored mission entry in insertion order, for
// the human-readable text export.
func (s *Store) AllMissions(ctx context.Context) ([]missionEntry, error) {
	raw, err := s.rdb.LRange(ctx, conflictsKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	out := make([]missionEntry, 0, len(raw))
	for _, item := range raw {
		var entry missionEntry
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			return nil, fmt.Errorf("decode mission entry: %w", err)
		}
		out = append(out, entry)
	}
	return out, nil
}

// missionDuration converts a mission_time in seconds to the time.Duration
// printed in the "---Mission lasted %s---" banner, which therefore shows
// Go's duration form (5400 seconds prints as "1h30m0s").
func missionDuration(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}
