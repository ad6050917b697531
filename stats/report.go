package stats

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// WriteTextReport renders every stored mission's conflicts as a
// human-readable log, one "Mission lasted ..." block per mission and one
// "ON BATTLE START/END" pair of lines per clean battle within it.
func (s *Store) WriteTextReport(ctx context.Context, w io.Writer) error {
	missions, err := s.AllMissions(ctx)
	if err != nil {
		return err
	}
	for _, mission := range missions {
		if _, err := fmt.Fprintf(w, "---Mission lasted %s---\n", missionDuration(mission.MissionTime)); err != nil {
			return err
		}
		for _, rec := range mission.Conflicts {
			startRed, err := s.summarizeTypes(ctx, rec.StartRed)
			if err != nil {
				return err
			}
			startBlue, err := s.summarizeTypes(ctx, rec.StartBlue)
			if err != nil {
				return err
			}
			endRed, err := s.summarizeTypes(ctx, rec.EndRed)
			if err != nil {
				return err
			}
			endBlue, err := s.summarizeTypes(ctx, rec.EndBlue)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "ON BATTLE START: Red: %s --- Blue: %s\n", startRed, startBlue); err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "ON BATTLE END:   Red: %s --- Blue: %s\n", endRed, endBlue); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// summarizeTypes collapses a list of type ids into "2X F-16, A-10" form.
func (s *Store) summarizeTypes(ctx context.Context, ids []int) (string, error) {
	if len(ids) == 0 {
		return "(NONE)", nil
	}
	counts := make(map[int]int)
	order := make([]int, 0, len(ids))
	for _, id := range ids {
		if counts[id] == 0 {
			order = append(order, id)
		}
		counts[id]++
	}
	parts := make([]string, 0, len(order))
	for _, id := range order {
		name, err := s.TypeName(ctx, id)
		if err != nil {
			return "", fmt.Errorf("resolve unit type id %d: %w", id, err)
		}
		if counts[id] == 1 {
			parts = append(parts, name)
		} else {
			parts = append(parts, fmt.Sprintf("%dX %s", counts[id], name))
		}
	}
	return strings.Join(parts, ", "), nil
}
