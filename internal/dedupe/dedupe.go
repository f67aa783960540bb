package dedupe

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

// Result classifies one candidate ingestion.
type Result int

const (
	Ignored Result = iota // invalid email or opted-out address
	Created
	Updated
)

func (r Result) String() string {
	switch r {
	case Created:
		return "created"
	case Updated:
		return "updated"
	default:
		return "ignored"
	}
}

// NormalizeEmail parses and canonicalizes an address: RFC 5322 parse, then
// trim and lowercase. The result is the lead identity.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("parse email %q: %w", raw, err)
	}
	return strings.ToLower(addr.Address), nil
}

type Ingestor struct {
	DB  *sql.DB
	Now func() time.Time // defaults to time.Now
}

func (in *Ingestor) now() time.Time {
	if in.Now != nil {
		return in.Now()
	}
	return time.Now()
}

// Ingest merges one raw candidate into the lead store. Idempotent: repeated
// ingestion of the same candidate yields Updated with no state change beyond
// the last-seen marker. Opted-out addresses never re-enter the store.
func (in *Ingestor) Ingest(ctx context.Context, c domain.Candidate) (Result, error) {
	email, err := NormalizeEmail(c.Email)
	if err != nil {
		log.Printf("[dedupe] dropping candidate source=%s: %v", c.SourceTag, err)
		return Ignored, nil
	}

	optedOut, err := store.IsOptedOut(ctx, in.DB, email)
	if err != nil {
		return Ignored, err
	}
	if optedOut {
		log.Printf("[dedupe] dropping candidate %s: opted out", email)
		return Ignored, nil
	}

	now := in.now()

	existing, err := store.GetLead(ctx, in.DB, email)
	if err != nil {
		return Ignored, err
	}

	if existing == nil {
		lead := &domain.Lead{
			Email:          email,
			DisplayName:    c.DisplayName,
			Sources:        []string{c.SourceTag},
			Keyword:        c.Keyword,
			ContextSnippet: c.ContextSnippet,
			FirstSeen:      now,
			LastSeen:       now,
		}
		if err := store.UpsertLead(ctx, in.DB, lead); err != nil {
			return Ignored, err
		}
		return Created, nil
	}

	// Re-discovery: append attribution, keep the original first-seen.
	if !existing.HasSource(c.SourceTag) {
		existing.Sources = append(existing.Sources, c.SourceTag)
	}
	if existing.DisplayName == "" {
		existing.DisplayName = c.DisplayName
	}
	if existing.ContextSnippet == "" {
		existing.ContextSnippet = c.ContextSnippet
		existing.Keyword = c.Keyword
	}
	existing.LastSeen = now

	if err := store.UpsertLead(ctx, in.DB, existing); err != nil {
		return Ignored, err
	}
	return Updated, nil
}
