package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"dyncserver/campaign"
)

// Store persists campaign snapshots to a single JSON file on disk.
type Store struct {
	path string
}

// NewStore targets path as the campaign's snapshot file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save serializes c and atomically replaces the snapshot file: it writes
// to a sibling temp file in the same directory, then renames it over the
// destination, so a crash mid-write never leaves a truncated snapshot
// behind for the next load to trip over.
func (s *Store) Save(c *campaign.Campaign) error {
	snap := FromCampaign(c)
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".campaign-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename snapshot into place: %w", err)
	}
	return nil
}

// Load reads and decodes the snapshot file, then checks it against
// minVersion before reconstructing the campaign.
func (s *Store) Load(minVersion string) (*campaign.Campaign, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if !IsCompatible(snap.SoftwareVersion, minVersion) {
		return nil, ErrIncompatibleSnapshot{SnapshotVersion: snap.SoftwareVersion, MinVersion: minVersion}
	}
	return ToCampaign(snap), nil
}

// Exists reports whether a snapshot file is present at all.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// ErrIncompatibleSnapshot is returned by Load when the snapshot's recorded
// version predates the server's minimum supported compatibility version.
type ErrIncompatibleSnapshot struct {
	SnapshotVersion string
	MinVersion      string
}

func (e ErrIncompatibleSnapshot) Error() string {
	return fmt.Sprintf("snapshot version %q is older than the minimum supported version %q",
		e.SnapshotVersion, e.MinVersion)
}
