package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"outreach-engine/internal/domain"
)

// AppendOutreach writes one immutable log row per dispatch attempt.
func AppendOutreach(ctx context.Context, db *sql.DB, r domain.OutreachRecord) error {
	var msgID any
	if r.MessageID != "" {
		msgID = r.MessageID
	}
	_, err := db.ExecContext(ctx, `
INSERT INTO outreach_log (record_id, email, campaign, outcome, message_id, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);`,
		r.RecordID, r.Email, string(r.Campaign), string(r.Outcome), msgID, r.Detail, fmtTime(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("append outreach: %w", err)
	}
	return nil
}

// OutreachCounts aggregates outcomes within [from, to).
type OutreachCounts struct {
	Sent          int `json:"sent"`
	Failed        int `json:"failed"`
	SkippedOptOut int `json:"skippedOptOut"`
}

func CountOutreach(ctx context.Context, db *sql.DB, from, to time.Time) (OutreachCounts, error) {
	rows, err := db.QueryContext(ctx, `
SELECT outcome, COUNT(*)
FROM outreach_log
WHERE created_at >= ? AND created_at < ?
GROUP BY outcome;`, fmtTime(from), fmtTime(to))
	if err != nil {
		return OutreachCounts{}, err
	}
	defer rows.Close()

	var c OutreachCounts
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return OutreachCounts{}, err
		}
		switch domain.Outcome(outcome) {
		case domain.OutcomeSent:
			c.Sent = n
		case domain.OutcomeFailed:
			c.Failed = n
		case domain.OutcomeSkippedOptOut:
			c.SkippedOptOut = n
		}
	}
	return c, rows.Err()
}

func TotalSent(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `
SELECT COUNT(*) FROM outreach_log WHERE outcome = ?;`, string(domain.OutcomeSent)).Scan(&n)
	return n, err
}

func ListOutreach(ctx context.Context, db *sql.DB, limit int) ([]domain.OutreachRecord, error) {
	if limit <= 0 || limit > 2000 {
		limit = 200
	}
	rows, err := db.QueryContext(ctx, `
SELECT record_id, email, campaign, outcome, message_id, detail, created_at
FROM outreach_log
ORDER BY id DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OutreachRecord
	for rows.Next() {
		var r domain.OutreachRecord
		var campaign, outcome, createdAt string
		var msgID sql.NullString
		if err := rows.Scan(&r.RecordID, &r.Email, &campaign, &outcome, &msgID, &r.Detail, &createdAt); err != nil {
			return nil, err
		}
		r.Campaign = domain.Campaign(campaign)
		r.Outcome = domain.Outcome(outcome)
		r.MessageID = msgID.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}
