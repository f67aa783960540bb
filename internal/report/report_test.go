package report

import (
	"testing"
	"time"

	"outreach-engine/internal/analytics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func sampleSummary() RunSummary {
	return RunSummary{
		StartedAt:  time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 8, 20, 6, 4, 30, 0, time.UTC),
		Discovered: 12,
		NewLeads:   4,
		Updated:    2,
		Sent:       7,
		SendFailed: 1,
		Skipped:    2,
		CRMSynced:  7,
		TotalLeads: 231,
		Snapshot: &analytics.Snapshot{
			RunID:       "deadbeefcafe0123",
			GeneratedAt: time.Date(2026, 8, 20, 6, 4, 0, 0, time.UTC),
			Providers: map[string]analytics.Reading{
				"ga:www":  {Provider: "ga:www", Status: analytics.StatusOK, Live: true, Metrics: map[string]float64{"sessions": 2901}},
				"youtube": {Provider: "youtube", Status: analytics.StatusUnreachable, Live: false, Metrics: analytics.FallbackMetrics("youtube")},
			},
			Totals: map[string]float64{"sessions": 2901},
		},
	}
}

func TestRenderStatusReport(t *testing.T) {
	subject, html, err := Render(sampleSummary())
	require.NoError(t, err)

	assert.Contains(t, subject, "2026-08-20")
	assert.Contains(t, subject, "7 sent")
	assert.Contains(t, subject, "4 new leads")

	// Pipeline counters and the live/fallback badges all render.
	assert.Contains(t, html, "<b>12</b>")
	assert.Contains(t, html, ">live<")
	assert.Contains(t, html, ">fallback<")
	assert.Contains(t, html, "1 live, 1 fallback")
	assert.Contains(t, html, "sessions: 2901")
}

func TestRenderSourceFailures(t *testing.T) {
	s := sampleSummary()
	s.SourceErrs = []string{"hn: status 503"}
	_, html, err := Render(s)
	require.NoError(t, err)
	assert.Contains(t, html, "hn: status 503")
}

func TestSendSkipsWithoutRecipient(t *testing.T) {
	calls := 0
	send := func(m *gomail.Message) error { calls++; return nil }
	require.NoError(t, Send(send, "from@example.com", "", sampleSummary()))
	assert.Zero(t, calls)

	require.NoError(t, Send(send, "from@example.com", "ops@example.com", sampleSummary()))
	assert.Equal(t, 1, calls)
}
