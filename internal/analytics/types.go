// Package analytics aggregates per-provider marketing metrics into one
// report snapshot, substituting deterministic fallback baselines for
// providers that are down or not configured.
package analytics

import (
	"context"
	"time"
)

// Status classifies one provider fetch. Expected auth/availability failures
// are normal return states, not errors.
type Status string

const (
	StatusOK              Status = "ok"
	StatusNotConfigured   Status = "not-configured"
	StatusUnauthenticated Status = "unauthenticated"
	StatusUnreachable     Status = "unreachable"
)

// DateRange in GA4 relative form ("7daysAgo".."today").
type DateRange struct {
	Start string
	End   string
}

func LastWeek() DateRange { return DateRange{Start: "7daysAgo", End: "today"} }

// Reading is one provider's result for one run. Ephemeral; recomputed every
// aggregation and persisted only inside the snapshot it feeds.
type Reading struct {
	Provider  string             `json:"provider"`
	Property  string             `json:"property,omitempty"`
	Status    Status             `json:"status"`
	Live      bool               `json:"live"` // false means fallback baseline
	Metrics   map[string]float64 `json:"metrics"`
	Detail    string             `json:"detail,omitempty"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// Adapter fetches a bounded set of metrics for one provider, or classifies
// why it could not.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context, rng DateRange) Reading
}

// Snapshot is the merged output of one aggregation run. Immutable once
// built; each run supersedes but never overwrites prior snapshots.
type Snapshot struct {
	RunID       string             `json:"runId"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Providers   map[string]Reading `json:"providers"`
	Totals      map[string]float64 `json:"totals"`
}

// LiveCount returns how many providers carry live vs fallback readings.
func (s Snapshot) LiveCount() (live, fallback int) {
	for _, r := range s.Providers {
		if r.Live {
			live++
		} else {
			fallback++
		}
	}
	return live, fallback
}
