package analytics

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Aggregate fans out to every adapter concurrently, each under its own
// timeout, and merges the results into one snapshot. A provider that fails
// or hangs degrades to its fallback baseline; it can never sink the run or
// delay it past the timeout budget.
func Aggregate(ctx context.Context, adapters []Adapter, rng DateRange, timeout time.Duration) Snapshot {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	readings := make([]Reading, len(adapters))
	var g errgroup.Group
	for i, ad := range adapters {
		i, ad := i, ad
		g.Go(func() error {
			readings[i] = fetchOne(ctx, ad, rng, timeout)
			return nil
		})
	}
	_ = g.Wait()

	snap := Snapshot{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Providers:   make(map[string]Reading, len(readings)),
		Totals:      make(map[string]float64),
	}
	for _, r := range readings {
		if r.Status != StatusOK {
			log.Printf("[analytics] %s degraded (%s): %s", r.Provider, r.Status, r.Detail)
			r.Live = false
			r.Metrics = FallbackMetrics(r.Provider)
		} else {
			r.Live = true
		}
		snap.Providers[r.Provider] = r
	}

	// Cross-property totals for the headline numbers.
	for id, r := range snap.Providers {
		if len(id) > 3 && id[:3] == "ga:" {
			snap.Totals["sessions"] += r.Metrics["sessions"]
			snap.Totals["pageViews"] += r.Metrics["pageViews"]
			snap.Totals["users"] += r.Metrics["users"]
		}
	}
	if yt, ok := snap.Providers["youtube"]; ok {
		snap.Totals["videoViews"] = yt.Metrics["views"]
	}

	live, fb := snap.LiveCount()
	log.Printf("[analytics] snapshot %s: %d live, %d fallback", snap.RunID, live, fb)
	return snap
}

// fetchOne runs a single adapter under its own deadline. The adapter runs in
// a goroutine of its own so that even one ignoring its context cannot stall
// the aggregation.
func fetchOne(ctx context.Context, ad Adapter, rng DateRange, timeout time.Duration) Reading {
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan Reading, 1)
	go func() {
		done <- ad.Fetch(cctx, rng)
	}()

	select {
	case r := <-done:
		if r.Provider == "" {
			r.Provider = ad.Name()
		}
		return r
	case <-cctx.Done():
		return Reading{
			Provider:  ad.Name(),
			Status:    StatusUnreachable,
			Detail:    "timed out after " + timeout.String(),
			FetchedAt: time.Now().UTC(),
		}
	}
}
