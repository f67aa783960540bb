package board

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"outreach-engine/internal/source/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardHTML = `<!DOCTYPE html>
<html><body>
  <article>Looking for software help with our shop, email jane@bakery.example please.</article>
  <p>Totally unrelated chatter about the weather.</p>
  <li>We need a developer! Contact: bob@startup.example or bob.alt@startup.example</li>
  <div class="post">need a developer again, same address bob@startup.example</div>
</body></html>`

func TestDiscoverMatchesKeywordBlocks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, boardHTML)
	}))
	defer srv.Close()

	s := New(Config{
		Pages:    []Page{{Name: "testboard", URL: srv.URL}},
		Keywords: []string{"need a developer", "looking for software"},
	}, util.NewHostLimiter(100, 10))

	cands, err := s.Discover(context.Background(), time.Time{})
	require.NoError(t, err)

	emails := map[string]bool{}
	for _, c := range cands {
		emails[c.Email] = true
		assert.Equal(t, "testboard", c.SourceTag)
		assert.NotEmpty(t, c.Keyword)
	}
	// One candidate per unique address; the repeat post adds nothing.
	assert.Equal(t, map[string]bool{
		"jane@bakery.example":     true,
		"bob@startup.example":     true,
		"bob.alt@startup.example": true,
	}, emails)
}

func TestDiscoverSurvivesOneDownPage(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()
	up := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<p>need a developer, mail me: solo@founder.example</p>`)
	}))
	defer up.Close()

	s := New(Config{
		Pages: []Page{
			{Name: "down", URL: down.URL},
			{Name: "up", URL: up.URL},
		},
		Keywords: []string{"need a developer"},
	}, util.NewHostLimiter(100, 10))

	cands, err := s.Discover(context.Background(), time.Time{})
	require.NoError(t, err, "one failing page must not sink the source")
	require.Len(t, cands, 1)
	assert.Equal(t, "solo@founder.example", cands[0].Email)
	assert.Equal(t, "up", cands[0].SourceTag)
}

func TestDiscoverAllPagesDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer down.Close()

	s := New(Config{
		Pages:    []Page{{Name: "only", URL: down.URL}},
		Keywords: []string{"need a developer"},
	}, util.NewHostLimiter(100, 10))

	_, err := s.Discover(context.Background(), time.Time{})
	assert.Error(t, err)
}
