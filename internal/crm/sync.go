package crm

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"outreach-engine/internal/store"
)

// SyncPending walks contacted leads that were never synced (or whose last
// sync failed) and upserts each into the CRM. Per-lead isolation: one
// failure marks that lead for retry next run and moves on.
func SyncPending(ctx context.Context, db *sql.DB, client *Client) (synced, failed int) {
	if !client.Configured() {
		log.Printf("[crm] not configured; skipping sync")
		return 0, 0
	}

	leads, err := store.LeadsPendingCRMSync(ctx, db)
	if err != nil {
		log.Printf("[crm] list pending: %v", err)
		return 0, 0
	}

	for _, lead := range leads {
		if err := client.UpsertContact(ctx, lead); err != nil {
			failed++
			if errors.Is(err, ErrUnauthorized) {
				log.Printf("[crm] %s: needs re-auth: %v", lead.Email, err)
			} else {
				log.Printf("[crm] %s: %v", lead.Email, err)
			}
			_ = store.SetCRMSyncResult(ctx, db, lead.Email, lead.CRMSyncedAt, err.Error())
			continue
		}
		now := time.Now()
		if err := store.SetCRMSyncResult(ctx, db, lead.Email, &now, ""); err != nil {
			log.Printf("[crm] mark synced %s: %v", lead.Email, err)
		}
		synced++
	}

	if synced+failed > 0 {
		log.Printf("[crm] sync done synced=%d failed=%d", synced, failed)
	}
	return synced, failed
}
