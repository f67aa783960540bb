package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	name    string
	reading Reading
	delay   time.Duration
}

func (f *fakeAdapter) Name() string { return f.name }

// Fetch deliberately ignores ctx when delayed, modeling a provider SDK that
// hangs without honoring cancellation.
func (f *fakeAdapter) Fetch(_ context.Context, _ DateRange) Reading {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	r := f.reading
	r.Provider = f.name
	r.FetchedAt = time.Now().UTC()
	return r
}

func TestAggregateMergesAndSubstitutesFallbacks(t *testing.T) {
	adapters := []Adapter{
		&fakeAdapter{name: "ga:www", reading: Reading{Status: StatusOK, Metrics: map[string]float64{"sessions": 100, "pageViews": 300, "users": 50}}},
		&fakeAdapter{name: "ga:labs", reading: Reading{Status: StatusOK, Metrics: map[string]float64{"sessions": 10, "pageViews": 20, "users": 5}}},
		&fakeAdapter{name: "youtube", reading: Reading{Status: StatusNotConfigured}},
		&fakeAdapter{name: "linkedin", reading: Reading{Status: StatusUnauthenticated, Detail: "token expired"}},
		&fakeAdapter{name: "googleads", reading: Reading{Status: StatusUnreachable, Detail: "dns"}},
	}

	snap := Aggregate(context.Background(), adapters, LastWeek(), time.Second)

	// Every provider appears exactly once, degraded or not.
	require.Len(t, snap.Providers, 5)
	assert.NotEmpty(t, snap.RunID)

	live, fallback := snap.LiveCount()
	assert.Equal(t, 2, live)
	assert.Equal(t, 3, fallback)

	// Live providers keep their numbers and flag.
	www := snap.Providers["ga:www"]
	assert.True(t, www.Live)
	assert.Equal(t, float64(100), www.Metrics["sessions"])

	// Degraded providers carry the deterministic baseline, flagged fallback,
	// with the original status preserved.
	yt := snap.Providers["youtube"]
	assert.False(t, yt.Live)
	assert.Equal(t, StatusNotConfigured, yt.Status)
	assert.Equal(t, FallbackMetrics("youtube"), yt.Metrics)

	li := snap.Providers["linkedin"]
	assert.Equal(t, StatusUnauthenticated, li.Status)
	assert.Equal(t, FallbackMetrics("linkedin"), li.Metrics)

	// GA totals sum live properties.
	assert.Equal(t, float64(110), snap.Totals["sessions"])
	assert.Equal(t, float64(320), snap.Totals["pageViews"])
}

func TestAggregateBoundsHangingProvider(t *testing.T) {
	adapters := []Adapter{
		&fakeAdapter{name: "ga:www", reading: Reading{Status: StatusOK, Metrics: map[string]float64{"sessions": 1}}},
		&fakeAdapter{name: "youtube", delay: 3 * time.Second, reading: Reading{Status: StatusOK}},
	}

	start := time.Now()
	snap := Aggregate(context.Background(), adapters, LastWeek(), 100*time.Millisecond)
	assert.Less(t, time.Since(start), 2*time.Second, "a hanging provider must not stall the run")

	yt := snap.Providers["youtube"]
	assert.Equal(t, StatusUnreachable, yt.Status)
	assert.False(t, yt.Live)
	assert.Equal(t, FallbackMetrics("youtube"), yt.Metrics)

	// The healthy provider is unaffected.
	assert.True(t, snap.Providers["ga:www"].Live)
}

func TestFallbackMetricsDeterministic(t *testing.T) {
	a := FallbackMetrics("ga:www")
	b := FallbackMetrics("ga:www")
	assert.Equal(t, a, b)
	assert.Equal(t, float64(2840), a["sessions"])

	// Unknown GA property degrades to the generic baseline, not nothing.
	gen := FallbackMetrics("ga:staging")
	assert.Equal(t, float64(1200), gen["sessions"])

	// Mutating a returned map must not leak into the table.
	a["sessions"] = 0
	assert.Equal(t, float64(2840), FallbackMetrics("ga:www")["sessions"])
}

func TestSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()

	snap := Snapshot{
		RunID:       "0123456789abcdef",
		GeneratedAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		Providers: map[string]Reading{
			"ga:www": {Provider: "ga:www", Status: StatusOK, Live: true, Metrics: map[string]float64{"sessions": 7}},
		},
		Totals: map[string]float64{"sessions": 7},
	}
	require.NoError(t, SaveSnapshot(dir, snap))

	got, err := LoadLatest(dir)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, snap.RunID, got.RunID)
	assert.Equal(t, float64(7), got.Providers["ga:www"].Metrics["sessions"])
}

func TestLoadLatestMissing(t *testing.T) {
	got, err := LoadLatest(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, got)
}
