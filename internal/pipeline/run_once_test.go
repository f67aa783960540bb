package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"outreach-engine/internal/campaign"
	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/report"
	"outreach-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func campaignTestConfig(t *testing.T) config.Config {
	t.Helper()
	var cfg config.Config
	cfg.App.DataDir = t.TempDir()
	cfg.App.BaseURL = "http://127.0.0.1:38472"
	cfg.Outreach.FromEmail = "outreach@example.com"
	cfg.Outreach.ColdPerDay = 5
	cfg.Outreach.SendsPerMinute = 6000
	return cfg
}

func TestRunCampaignsFailedSendKeepsCap(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	for _, email := range []string{"a@example.com", "b@example.com"} {
		require.NoError(t, store.UpsertLead(ctx, db, &domain.Lead{
			Email:     email,
			Sources:   []string{"hn"},
			Keyword:   "need a developer",
			FirstSeen: now,
			LastSeen:  now,
		}))
	}

	cfg := campaignTestConfig(t)
	hub := events.NewHub()

	failSend := func(m *gomail.Message) error { return errors.New("relay down") }
	sum := report.RunSummary{ByCampaign: map[string]int{}}
	runCampaigns(ctx, db, cfg, hub, failSend, &sum)

	assert.Equal(t, 0, sum.Sent)
	assert.Equal(t, 2, sum.SendFailed)

	// Failed attempts must not move the cap counter.
	window := campaign.DayStart(now)
	n, err := store.SentCount(ctx, db, domain.CampaignColdOutreach, window)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	// Both leads stay eligible: the next run with a working relay reaches
	// them and only then consumes cap budget.
	sent := 0
	okSend := func(m *gomail.Message) error { sent++; return nil }
	sum2 := report.RunSummary{ByCampaign: map[string]int{}}
	runCampaigns(ctx, db, cfg, hub, okSend, &sum2)

	assert.Equal(t, 2, sent)
	assert.Equal(t, 2, sum2.Sent)
	assert.Equal(t, 0, sum2.SendFailed)
	assert.Equal(t, 2, sum2.ByCampaign[string(domain.CampaignColdOutreach)])

	n, err = store.SentCount(ctx, db, domain.CampaignColdOutreach, window)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestRunCampaignsTruncatesAtRemainingCap(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		require.NoError(t, store.UpsertLead(ctx, db, &domain.Lead{
			Email:     fmt.Sprintf("lead%d@example.com", i),
			Sources:   []string{"hn"},
			FirstSeen: now,
			LastSeen:  now,
		}))
	}

	cfg := campaignTestConfig(t)
	cfg.Outreach.ColdPerDay = 3
	// Two of today's budget already spent by an earlier run.
	window := campaign.DayStart(now)
	require.NoError(t, store.IncrementSent(ctx, db, domain.CampaignColdOutreach, window))
	require.NoError(t, store.IncrementSent(ctx, db, domain.CampaignColdOutreach, window))

	sent := 0
	okSend := func(m *gomail.Message) error { sent++; return nil }
	sum := report.RunSummary{ByCampaign: map[string]int{}}
	runCampaigns(ctx, db, cfg, events.NewHub(), okSend, &sum)

	assert.Equal(t, 1, sent)
	assert.Equal(t, 1, sum.Sent)

	n, err := store.SentCount(ctx, db, domain.CampaignColdOutreach, window)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDiscoverPublishesSourceDone(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<p>need a developer, mail me: solo@founder.example</p>`)
	}))
	defer srv.Close()

	var cfg config.Config
	cfg.Sources.Boards.Enabled = true
	cfg.Sources.Boards.Pages = []config.BoardPage{{Name: "testboard", URL: srv.URL}}
	cfg.Sources.Keywords = []string{"need a developer"}

	hub := events.NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	sum := report.RunSummary{ByCampaign: map[string]int{}}
	discoverAndIngest(ctx, db, cfg, hub, &sum)

	assert.Equal(t, 1, sum.Discovered)
	assert.Equal(t, 1, sum.NewLeads)
	assert.Empty(t, sum.SourceErrs)

	var evt events.Event
	select {
	case raw := <-ch:
		require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	default:
		t.Fatal("no event published")
	}
	assert.Equal(t, events.TypeSourceDone, evt.Type)
	assert.Contains(t, string(evt.Data), `"board"`)
	assert.Contains(t, string(evt.Data), `"candidates":1`)
}

func TestDiscoverReportsFailedSource(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	var cfg config.Config
	cfg.Sources.Boards.Enabled = true
	cfg.Sources.Boards.Pages = []config.BoardPage{{Name: "only", URL: down.URL}}
	cfg.Sources.Keywords = []string{"need a developer"}

	hub := events.NewHub()
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	sum := report.RunSummary{ByCampaign: map[string]int{}}
	discoverAndIngest(ctx, db, cfg, hub, &sum)

	require.Len(t, sum.SourceErrs, 1)
	assert.Zero(t, sum.Discovered)

	var evt events.Event
	select {
	case raw := <-ch:
		require.NoError(t, json.Unmarshal([]byte(raw), &evt))
	default:
		t.Fatal("no event published")
	}
	assert.Equal(t, events.TypeSourceDone, evt.Type)
	assert.Contains(t, string(evt.Data), `"error"`)

	// The cursor stays put so the next run retries the same window.
	cur, err := store.SourceCursor(ctx, db, "board")
	require.NoError(t, err)
	assert.True(t, cur.IsZero())
}
