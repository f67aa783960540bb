package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"outreach-engine/internal/domain"
)

// SentCount reads the persisted cap counter for (campaign, window).
func SentCount(ctx context.Context, db *sql.DB, campaign domain.Campaign, windowStart time.Time) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
SELECT sent FROM send_counters WHERE campaign = ? AND window_start = ?;`,
		string(campaign), fmtTime(windowStart)).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// IncrementSent bumps the cap counter. Called only after a successful
// dispatch; failed sends must not consume cap budget.
func IncrementSent(ctx context.Context, db *sql.DB, campaign domain.Campaign, windowStart time.Time) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO send_counters (campaign, window_start, sent)
VALUES (?, ?, 1)
ON CONFLICT(campaign, window_start) DO UPDATE SET sent = sent + 1;`,
		string(campaign), fmtTime(windowStart))
	if err != nil {
		return fmt.Errorf("increment sent: %w", err)
	}
	return nil
}

// SourceCursor returns the persisted discovery cursor for a source, zero time
// when the source has never run.
func SourceCursor(ctx context.Context, db *sql.DB, source string) (time.Time, error) {
	var s string
	err := db.QueryRowContext(ctx, `SELECT since FROM source_cursors WHERE source = ?;`, source).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, nil
	}
	return t, nil
}

func SetSourceCursor(ctx context.Context, db *sql.DB, source string, since time.Time) error {
	_, err := db.ExecContext(ctx, `
INSERT INTO source_cursors (source, since)
VALUES (?, ?)
ON CONFLICT(source) DO UPDATE SET since = excluded.since;`,
		source, fmtTime(since))
	return err
}
