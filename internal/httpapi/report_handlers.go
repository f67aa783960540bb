package httpapi

import (
	"database/sql"
	"net/http"
	"sync/atomic"
	"time"

	"outreach-engine/internal/analytics"
	"outreach-engine/internal/campaign"
	"outreach-engine/internal/config"
	"outreach-engine/internal/store"
)

type ReportHandler struct {
	DB     *sql.DB
	CfgVal *atomic.Value // stores config.Config
}

// Latest returns today's outreach counts plus the most recent analytics
// snapshot, or a snapshot-less report when no run has happened yet.
func (h ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)

	now := time.Now().UTC()
	day := campaign.DayStart(now)
	counts, err := store.CountOutreach(r.Context(), h.DB, day, now)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	totalLeads, _ := store.CountLeads(r.Context(), h.DB)
	totalSent, _ := store.TotalSent(r.Context(), h.DB)

	snap, err := analytics.LoadLatest(cfg.App.DataDir)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	writeJSON(w, map[string]any{
		"today":      counts,
		"totalLeads": totalLeads,
		"totalSent":  totalSent,
		"snapshot":   snap,
	})
}
