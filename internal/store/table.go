package store

import (
	"database/sql"
)

func Migrate(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRow(`PRAGMA user_version;`).Scan(&v); err != nil {
		return err
	}

	if v >= 1 {
		return tx.Commit()
	}

	// ---- Schema v1: tables ----

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS leads (
  email TEXT PRIMARY KEY,
  display_name TEXT NOT NULL DEFAULT '',
  sources TEXT NOT NULL DEFAULT '[]',
  keyword TEXT NOT NULL DEFAULT '',
  context_snippet TEXT NOT NULL DEFAULT '',
  first_seen TEXT NOT NULL,
  last_seen TEXT NOT NULL,
  contact_attempts INTEGER NOT NULL DEFAULT 0,
  last_contacted TEXT,
  crm_synced_at TEXT,
  crm_sync_error TEXT NOT NULL DEFAULT ''
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS lead_contacts (
  email TEXT NOT NULL,
  campaign TEXT NOT NULL,
  last_contacted TEXT NOT NULL,
  PRIMARY KEY (email, campaign)
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS opt_outs (
  email TEXT PRIMARY KEY,
  added_at TEXT NOT NULL,
  reason TEXT NOT NULL DEFAULT '',
  via TEXT NOT NULL DEFAULT 'manual'
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS outreach_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  record_id TEXT NOT NULL,
  email TEXT NOT NULL,
  campaign TEXT NOT NULL,
  outcome TEXT NOT NULL,
  message_id TEXT,
  detail TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS send_counters (
  campaign TEXT NOT NULL,
  window_start TEXT NOT NULL,
  sent INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (campaign, window_start)
);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS source_cursors (
  source TEXT PRIMARY KEY,
  since TEXT NOT NULL
);
`); err != nil {
		return err
	}

	// ---- Schema v1: indexes ----

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_leads_first_seen
ON leads(first_seen DESC);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`
CREATE INDEX IF NOT EXISTS idx_outreach_created
ON outreach_log(created_at);
`); err != nil {
		return err
	}

	if _, err := tx.Exec(`PRAGMA user_version = 1;`); err != nil {
		return err
	}

	return tx.Commit()
}
