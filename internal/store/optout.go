package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"outreach-engine/internal/domain"
)

// AddOptOut appends to the registry. Returns false when the address was
// already present; existing entries are never overwritten.
func AddOptOut(ctx context.Context, db *sql.DB, e domain.OptOutEntry) (added bool, err error) {
	res, err := db.ExecContext(ctx, `
INSERT OR IGNORE INTO opt_outs (email, added_at, reason, via)
VALUES (?, ?, ?, ?);`,
		e.Email, fmtTime(e.AddedAt), e.Reason, e.Via)
	if err != nil {
		return false, fmt.Errorf("add opt-out: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func IsOptedOut(ctx context.Context, db *sql.DB, email string) (bool, error) {
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM opt_outs WHERE email = ? LIMIT 1;`, email).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func ListOptOuts(ctx context.Context, db *sql.DB) ([]domain.OptOutEntry, error) {
	rows, err := db.QueryContext(ctx, `
SELECT email, added_at, reason, via FROM opt_outs ORDER BY added_at DESC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.OptOutEntry
	for rows.Next() {
		var e domain.OptOutEntry
		var addedAt string
		if err := rows.Scan(&e.Email, &addedAt, &e.Reason, &e.Via); err != nil {
			return nil, err
		}
		e.AddedAt, _ = time.Parse(time.RFC3339, addedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}
