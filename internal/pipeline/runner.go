// Package pipeline orchestrates the scheduled outreach run end to end.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"sync/atomic"
	"time"

	"outreach-engine/internal/config"
	"outreach-engine/internal/events"

	"github.com/gofrs/flock"
)

// Status is the last-run view served by the HTTP API.
type Status struct {
	Running    bool   `json:"running"`
	LastRunAt  string `json:"last_run_at,omitempty"`
	LastOkAt   string `json:"last_ok_at,omitempty"`
	LastError  string `json:"last_error,omitempty"`
	LastSent   int    `json:"last_sent"`
	LastLeads  int    `json:"last_new_leads"`
	LastSynced int    `json:"last_crm_synced"`
}

type Runner struct {
	DB  *sql.DB
	Cfg *atomic.Value // holds config.Config
	Hub *events.Hub

	status atomic.Value // holds Status
}

func NewRunner(db *sql.DB, cfgVal *atomic.Value, hub *events.Hub) *Runner {
	r := &Runner{DB: db, Cfg: cfgVal, Hub: hub}
	r.status.Store(Status{})
	return r
}

func (r *Runner) Status() Status {
	return r.status.Load().(Status)
}

func (r *Runner) config() (config.Config, bool) {
	v := r.Cfg.Load()
	if v == nil {
		return config.Config{}, false
	}
	return v.(config.Config), true
}

// RunOnce executes one pipeline pass under the cross-process run lock. A
// second concurrent invocation (other process, or API trigger racing the
// scheduler) returns immediately without doing work.
func (r *Runner) RunOnce(ctx context.Context) error {
	cfg, ok := r.config()
	if !ok {
		return fmt.Errorf("pipeline: config not loaded")
	}

	lock := flock.New(filepath.Join(cfg.App.DataDir, "run.lock"))
	got, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("pipeline: run lock: %w", err)
	}
	if !got {
		log.Printf("[pipeline] another run holds the lock; skipping")
		return nil
	}
	defer lock.Unlock()

	st := r.Status()
	st.Running = true
	st.LastRunAt = time.Now().UTC().Format(time.RFC3339)
	r.status.Store(st)
	r.Hub.Publish(events.Make(events.TypeRunStarted, nil))

	sum, err := runOnce(ctx, r.DB, cfg, r.Hub)

	st = r.Status()
	st.Running = false
	st.LastSent = sum.Sent
	st.LastLeads = sum.NewLeads
	st.LastSynced = sum.CRMSynced
	if err != nil {
		st.LastError = err.Error()
		r.status.Store(st)
		r.Hub.Publish(events.Make(events.TypeRunFailed, map[string]string{"error": err.Error()}))
		return err
	}
	st.LastError = ""
	st.LastOkAt = time.Now().UTC().Format(time.RFC3339)
	r.status.Store(st)
	r.Hub.Publish(events.Make(events.TypeRunFinished, map[string]int{
		"sent":     sum.Sent,
		"newLeads": sum.NewLeads,
	}))
	log.Printf("[pipeline] run ok sent=%d new=%d updated=%d crm=%d/%d",
		sum.Sent, sum.NewLeads, sum.Updated, sum.CRMSynced, sum.CRMFailed)
	return nil
}

// Start launches the interval scheduler. Runs repeat every interval until
// ctx is cancelled; a failed run logs and waits for the next tick.
func (r *Runner) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := r.RunOnce(ctx); err != nil {
					log.Printf("[pipeline] scheduled run: %v", err)
				}
			}
		}
	}()
}
