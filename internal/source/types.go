package source

import (
	"context"
	"time"

	"outreach-engine/internal/domain"
)

// Connector discovers raw candidate records from one platform. Discover is
// finite per call and restartable on the next run via the since cursor.
type Connector interface {
	Name() string
	Discover(ctx context.Context, since time.Time) ([]domain.Candidate, error)
}

// DiscoverResult carries one connector's batch back to the pipeline.
type DiscoverResult struct {
	Source     string
	Candidates []domain.Candidate
	Err        error // transient failure; the pipeline logs and skips this source
}
