package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"outreach-engine/internal/domain"
)

// GetLead returns nil, nil when no lead exists for the email.
func GetLead(ctx context.Context, db *sql.DB, email string) (*domain.Lead, error) {
	row := db.QueryRowContext(ctx, `
SELECT email, display_name, sources, keyword, context_snippet,
       first_seen, last_seen, contact_attempts, last_contacted,
       crm_synced_at, crm_sync_error
FROM leads WHERE email = ?;`, email)

	l, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return l, nil
}

// UpsertLead writes the full lead row, replacing attribution metadata but never
// touching first_seen on conflict.
func UpsertLead(ctx context.Context, db *sql.DB, l *domain.Lead) error {
	sourcesJSON, _ := json.Marshal(l.Sources)
	_, err := db.ExecContext(ctx, `
INSERT INTO leads (email, display_name, sources, keyword, context_snippet,
                   first_seen, last_seen, contact_attempts, last_contacted,
                   crm_synced_at, crm_sync_error)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(email) DO UPDATE SET
  display_name = excluded.display_name,
  sources = excluded.sources,
  keyword = excluded.keyword,
  context_snippet = excluded.context_snippet,
  last_seen = excluded.last_seen;`,
		l.Email, l.DisplayName, string(sourcesJSON), l.Keyword, l.ContextSnippet,
		fmtTime(l.FirstSeen), fmtTime(l.LastSeen), l.ContactAttempts,
		fmtTimePtr(l.LastContacted), fmtTimePtr(l.CRMSyncedAt), l.CRMSyncError,
	)
	if err != nil {
		return fmt.Errorf("upsert lead: %w", err)
	}
	return nil
}

// LeadsNeverContacted lists leads with no contact history for the campaign and
// no opt-out entry, most recently discovered first. Feeds cold outreach.
func LeadsNeverContacted(ctx context.Context, db *sql.DB, campaign domain.Campaign) ([]domain.Lead, error) {
	rows, err := db.QueryContext(ctx, `
SELECT l.email, l.display_name, l.sources, l.keyword, l.context_snippet,
       l.first_seen, l.last_seen, l.contact_attempts, l.last_contacted,
       l.crm_synced_at, l.crm_sync_error
FROM leads l
WHERE NOT EXISTS (SELECT 1 FROM lead_contacts c WHERE c.email = l.email AND c.campaign = ?)
  AND NOT EXISTS (SELECT 1 FROM opt_outs o WHERE o.email = l.email)
ORDER BY l.first_seen DESC;`, string(campaign))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// LeadsContactedBefore lists leads whose last contact for the campaign is older
// than the cutoff and who are not opted out, least recently contacted first.
// Feeds re-engagement and announcement cooldowns.
func LeadsContactedBefore(ctx context.Context, db *sql.DB, campaign domain.Campaign, cutoff time.Time) ([]domain.Lead, error) {
	rows, err := db.QueryContext(ctx, `
SELECT l.email, l.display_name, l.sources, l.keyword, l.context_snippet,
       l.first_seen, l.last_seen, l.contact_attempts, l.last_contacted,
       l.crm_synced_at, l.crm_sync_error
FROM leads l
JOIN lead_contacts c ON c.email = l.email AND c.campaign = ?
WHERE c.last_contacted < ?
  AND NOT EXISTS (SELECT 1 FROM opt_outs o WHERE o.email = l.email)
ORDER BY c.last_contacted ASC;`, string(campaign), fmtTime(cutoff))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// ListLeads returns up to limit leads, newest first. Control-plane view.
func ListLeads(ctx context.Context, db *sql.DB, limit int) ([]domain.Lead, error) {
	if limit <= 0 || limit > 2000 {
		limit = 500
	}
	rows, err := db.QueryContext(ctx, `
SELECT email, display_name, sources, keyword, context_snippet,
       first_seen, last_seen, contact_attempts, last_contacted,
       crm_synced_at, crm_sync_error
FROM leads
ORDER BY first_seen DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

// LeadsPendingCRMSync lists contacted leads that were never synced or whose
// last sync failed.
func LeadsPendingCRMSync(ctx context.Context, db *sql.DB) ([]domain.Lead, error) {
	rows, err := db.QueryContext(ctx, `
SELECT email, display_name, sources, keyword, context_snippet,
       first_seen, last_seen, contact_attempts, last_contacted,
       crm_synced_at, crm_sync_error
FROM leads
WHERE last_contacted IS NOT NULL
  AND (crm_synced_at IS NULL OR crm_sync_error != '')
ORDER BY last_contacted ASC;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeads(rows)
}

func SetCRMSyncResult(ctx context.Context, db *sql.DB, email string, syncedAt *time.Time, syncErr string) error {
	_, err := db.ExecContext(ctx, `
UPDATE leads SET crm_synced_at = ?, crm_sync_error = ? WHERE email = ?;`,
		fmtTimePtr(syncedAt), syncErr, email)
	return err
}

func CountLeads(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads;`).Scan(&n)
	return n, err
}

func CountLeadsSince(ctx context.Context, db *sql.DB, since time.Time) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM leads WHERE first_seen >= ?;`, fmtTime(since)).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(r rowScanner) (*domain.Lead, error) {
	var l domain.Lead
	var sourcesJSON, firstSeen, lastSeen string
	var lastContacted, crmSyncedAt sql.NullString
	if err := r.Scan(
		&l.Email, &l.DisplayName, &sourcesJSON, &l.Keyword, &l.ContextSnippet,
		&firstSeen, &lastSeen, &l.ContactAttempts, &lastContacted,
		&crmSyncedAt, &l.CRMSyncError,
	); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(sourcesJSON), &l.Sources)
	l.FirstSeen, _ = time.Parse(time.RFC3339, firstSeen)
	l.LastSeen, _ = time.Parse(time.RFC3339, lastSeen)
	l.LastContacted = parseTimePtr(lastContacted)
	l.CRMSyncedAt = parseTimePtr(crmSyncedAt)
	return &l, nil
}

func collectLeads(rows *sql.Rows) ([]domain.Lead, error) {
	var out []domain.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}
