package analytics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// SaveSnapshot persists one run's snapshot under dir/snapshots/. Every run
// gets its own file; latest.json is swapped in by rename so readers never
// see a partial write.
func SaveSnapshot(dir string, snap Snapshot) error {
	sdir := filepath.Join(dir, "snapshots")
	if err := os.MkdirAll(sdir, 0o755); err != nil {
		return err
	}

	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	name := fmt.Sprintf("snapshot-%s-%s.json", snap.GeneratedAt.Format("20060102T150405"), snap.RunID[:8])
	if err := os.WriteFile(filepath.Join(sdir, name), b, 0o644); err != nil {
		return err
	}

	tmp := filepath.Join(sdir, "latest.json.tmp")
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filepath.Join(sdir, "latest.json"))
}

// LoadLatest reads the most recent snapshot, or nil when none exists yet.
func LoadLatest(dir string) (*Snapshot, error) {
	b, err := os.ReadFile(filepath.Join(dir, "snapshots", "latest.json"))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return nil, fmt.Errorf("snapshot decode: %w", err)
	}
	return &snap, nil
}

// ProviderOrder returns the snapshot's provider ids in a stable order for
// rendering.
func (s Snapshot) ProviderOrder() []string {
	ids := make([]string, 0, len(s.Providers))
	for id := range s.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
