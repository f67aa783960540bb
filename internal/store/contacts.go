package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"outreach-engine/internal/domain"
)

// MarkContacted records a successful send: per-campaign contact timestamp plus
// the lead's attempt counter, in one transaction.
func MarkContacted(ctx context.Context, db *sql.DB, email string, campaign domain.Campaign, at time.Time) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO lead_contacts (email, campaign, last_contacted)
VALUES (?, ?, ?)
ON CONFLICT(email, campaign) DO UPDATE SET last_contacted = excluded.last_contacted;`,
		email, string(campaign), fmtTime(at)); err != nil {
		return fmt.Errorf("mark contacted: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE leads
SET contact_attempts = contact_attempts + 1,
    last_contacted = ?
WHERE email = ?;`, fmtTime(at), email); err != nil {
		return fmt.Errorf("mark contacted: %w", err)
	}

	return tx.Commit()
}

// LastContacted returns nil when the lead was never contacted for the campaign.
func LastContacted(ctx context.Context, db *sql.DB, email string, campaign domain.Campaign) (*time.Time, error) {
	var s string
	err := db.QueryRowContext(ctx, `
SELECT last_contacted FROM lead_contacts WHERE email = ? AND campaign = ?;`,
		email, string(campaign)).Scan(&s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
