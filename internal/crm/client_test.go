package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"outreach-engine/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCRM mimics the contacts search/create/patch surface with an in-memory
// table keyed by email.
type fakeCRM struct {
	contacts map[string]map[string]string // id -> properties
	nextID   int
	patches  int
	creates  int
}

func newFakeCRM() *fakeCRM {
	return &fakeCRM{contacts: map[string]map[string]string{}, nextID: 1}
}

func (f *fakeCRM) findByEmail(email string) string {
	for id, props := range f.contacts {
		if props["email"] == email {
			return id
		}
	}
	return ""
}

func (f *fakeCRM) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/crm/v3/objects/contacts/search", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			FilterGroups []struct {
				Filters []struct {
					Value string `json:"value"`
				} `json:"filters"`
			} `json:"filterGroups"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		email := req.FilterGroups[0].Filters[0].Value

		var results []map[string]string
		if id := f.findByEmail(email); id != "" {
			results = append(results, map[string]string{"id": id})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"results": results})
	})
	mux.HandleFunc("/crm/v3/objects/contacts", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Properties map[string]string `json:"properties"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if f.findByEmail(req.Properties["email"]) != "" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		f.creates++
		id := string(rune('0' + f.nextID))
		f.nextID++
		f.contacts[id] = req.Properties
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
	})
	mux.HandleFunc("/crm/v3/objects/contacts/", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Path[len("/crm/v3/objects/contacts/"):]
		props, ok := f.contacts[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var req struct {
			Properties map[string]string `json:"properties"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.patches++
		for k, v := range req.Properties {
			props[k] = v
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": id})
	})
	return mux
}

func testLead(contacted bool) domain.Lead {
	l := domain.Lead{
		Email:          "dev@example.com",
		DisplayName:    "Dev",
		Sources:        []string{"hn"},
		Keyword:        "need a developer",
		ContextSnippet: "we need an app",
	}
	if contacted {
		at := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		l.LastContacted = &at
	}
	return l
}

func TestUpsertCreatesThenPatches(t *testing.T) {
	fake := newFakeCRM()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	ctx := context.Background()

	require.NoError(t, c.UpsertContact(ctx, testLead(false)))
	assert.Equal(t, 1, fake.creates)
	assert.Equal(t, 0, fake.patches)

	// Second sync of the same lead updates in place: no duplicate contact.
	require.NoError(t, c.UpsertContact(ctx, testLead(true)))
	assert.Equal(t, 1, fake.creates)
	assert.Equal(t, 1, fake.patches)
	assert.Len(t, fake.contacts, 1)

	id := fake.findByEmail("dev@example.com")
	assert.Equal(t, "CONTACTED", fake.contacts[id]["outreach_lead_status"])
	assert.Contains(t, fake.contacts[id]["notes_last_contacted"], "2026-08-20")
}

func TestUpsertPreservesExternalFields(t *testing.T) {
	fake := newFakeCRM()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := NewClient(srv.URL, "test-token")
	ctx := context.Background()
	require.NoError(t, c.UpsertContact(ctx, testLead(false)))

	// Something else on the CRM side annotates the contact.
	id := fake.findByEmail("dev@example.com")
	fake.contacts[id]["hs_owner"] = "sales-rep-7"

	require.NoError(t, c.UpsertContact(ctx, testLead(true)))
	assert.Equal(t, "sales-rep-7", fake.contacts[id]["hs_owner"], "partial update must not clobber foreign fields")
}

func TestUnauthorizedClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "expired")
	err := c.UpsertContact(context.Background(), testLead(false))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestNotConfigured(t *testing.T) {
	assert.False(t, NewClient("", "").Configured())
	assert.False(t, NewClient("https://api.hubapi.com", "").Configured())
	assert.True(t, NewClient("https://api.hubapi.com", "tok").Configured())
}
