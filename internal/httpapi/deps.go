// Package httpapi is the local control surface: trigger runs, inspect
// leads and outreach history, manage opt-outs and config. It binds to
// localhost; the one outward-facing route is the unsubscribe link.
package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"outreach-engine/internal/config"
	"outreach-engine/internal/events"
	"outreach-engine/internal/pipeline"
)

// RunTrigger is what the API needs from the pipeline runner.
type RunTrigger interface {
	RunOnce(ctx context.Context) error
	Status() pipeline.Status
}

type Deps struct {
	DB  *sql.DB
	Hub *events.Hub

	CfgVal *atomic.Value // stores config.Config

	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Runner RunTrigger

	// HMAC key for unsubscribe links.
	UnsubSecret string
}
