package hackernews

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"outreach-engine/internal/source/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverExtractsCandidates(t *testing.T) {
	var gotQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search_by_date", r.URL.Path)
		q := r.URL.Query()
		gotQueries = append(gotQueries, q.Get("query"))
		assert.Equal(t, "comment", q.Get("tags"))
		assert.Contains(t, q.Get("numericFilters"), "created_at_i>")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]any{
				{
					"objectID":     "1",
					"author":       "builder42",
					"comment_text": "We need a developer for our MVP, reach me at founder@startup.io if interested.",
					"created_at_i": time.Now().Unix(),
				},
				{
					"objectID":     "2",
					"author":       "lurker",
					"comment_text": "No contact info here.",
					"created_at_i": time.Now().Unix(),
				},
			},
		})
	}))
	defer srv.Close()

	s := New(Config{
		Keywords: []string{"need a developer"},
		BaseURL:  srv.URL,
	}, util.NewHostLimiter(100, 10))

	since := time.Now().Add(-24 * time.Hour)
	cands, err := s.Discover(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, cands, 1)
	assert.Equal(t, "founder@startup.io", cands[0].Email)
	assert.Equal(t, "builder42", cands[0].DisplayName)
	assert.Equal(t, "hn", cands[0].SourceTag)
	assert.Equal(t, "need a developer", cands[0].Keyword)
	assert.Contains(t, cands[0].ContextSnippet, "MVP")
	assert.Equal(t, []string{"need a developer"}, gotQueries)
}

func TestDiscoverDedupesAcrossKeywords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"hits": []map[string]any{{
				"objectID":     "1",
				"author":       "builder42",
				"comment_text": "Contact founder@startup.io",
				"created_at_i": time.Now().Unix(),
			}},
		})
	}))
	defer srv.Close()

	s := New(Config{
		Keywords: []string{"need a developer", "looking for software"},
		BaseURL:  srv.URL,
	}, util.NewHostLimiter(100, 10))

	cands, err := s.Discover(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Len(t, cands, 1, "same email from two keyword queries emits one candidate")
}

func TestDiscoverUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(Config{Keywords: []string{"x"}, BaseURL: srv.URL}, util.NewHostLimiter(100, 10))
	_, err := s.Discover(context.Background(), time.Time{})
	assert.Error(t, err)
}
