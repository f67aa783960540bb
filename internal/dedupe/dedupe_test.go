package dedupe

import (
	"context"
	"testing"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Dev@Example.COM", "dev@example.com", true},
		{"  dev@example.com  ", "dev@example.com", true},
		{"Jane Doe <JANE@example.org>", "jane@example.org", true},
		{"not-an-email", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		got, err := NormalizeEmail(c.in)
		if !c.ok {
			assert.Error(t, err, c.in)
			continue
		}
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got)
	}
}

func TestIngestMergesAcrossSources(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	in := &Ingestor{DB: db, Now: func() time.Time { return now }}

	r, err := in.Ingest(ctx, domain.Candidate{
		Email: "a@x.com", SourceTag: "hn", Keyword: "need a developer",
	})
	require.NoError(t, err)
	assert.Equal(t, Created, r)

	// Same address, different casing, different source: one lead, two tags.
	r, err = in.Ingest(ctx, domain.Candidate{
		Email: "A@X.com", DisplayName: "Alex", SourceTag: "board",
	})
	require.NoError(t, err)
	assert.Equal(t, Updated, r)

	lead, err := store.GetLead(ctx, db, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, lead)
	assert.ElementsMatch(t, []string{"hn", "board"}, lead.Sources)
	assert.Equal(t, "Alex", lead.DisplayName) // filled in, was empty

	n, err := store.CountLeads(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngestIdempotent(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	in := &Ingestor{DB: db}
	c := domain.Candidate{Email: "dev@example.com", SourceTag: "hn", ContextSnippet: "looking for help"}

	r1, err := in.Ingest(ctx, c)
	require.NoError(t, err)
	r2, err := in.Ingest(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, Created, r1)
	assert.Equal(t, Updated, r2)

	lead, err := store.GetLead(ctx, db, "dev@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"hn"}, lead.Sources)
}

func TestIngestRejectsOptedOut(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, err = store.AddOptOut(ctx, db, domain.OptOutEntry{
		Email: "gone@example.com", AddedAt: time.Now().UTC(), Via: "email",
	})
	require.NoError(t, err)

	in := &Ingestor{DB: db}
	r, err := in.Ingest(ctx, domain.Candidate{Email: "Gone@Example.com", SourceTag: "hn"})
	require.NoError(t, err)
	assert.Equal(t, Ignored, r)

	lead, err := store.GetLead(ctx, db, "gone@example.com")
	require.NoError(t, err)
	assert.Nil(t, lead, "opted-out address must never re-enter the store")
}

func TestIngestDropsInvalidEmail(t *testing.T) {
	db, err := store.OpenMemory()
	require.NoError(t, err)
	defer db.Close()

	in := &Ingestor{DB: db}
	r, err := in.Ingest(context.Background(), domain.Candidate{Email: "bogus", SourceTag: "board"})
	require.NoError(t, err)
	assert.Equal(t, Ignored, r)
}
