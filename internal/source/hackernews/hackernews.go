// Package hackernews discovers candidates through the Algolia HN search API,
// which needs no API key and supports time-bounded queries.
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/source/util"
)

const defaultBaseURL = "https://hn.algolia.com/api/v1"

type Config struct {
	Keywords []string
	BaseURL  string // test override
}

type Searcher struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Searcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Searcher{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Searcher) Name() string { return "hn" }

type searchResponse struct {
	Hits []struct {
		ObjectID    string `json:"objectID"`
		Author      string `json:"author"`
		CommentText string `json:"comment_text"`
		StoryText   string `json:"story_text"`
		CreatedAtI  int64  `json:"created_at_i"`
	} `json:"hits"`
}

func (s *Searcher) Discover(ctx context.Context, since time.Time) ([]domain.Candidate, error) {
	var out []domain.Candidate
	seen := map[string]bool{}

	for _, kw := range s.cfg.Keywords {
		hits, err := s.search(ctx, kw, since)
		if err != nil {
			return out, err
		}
		for _, c := range hits {
			if seen[c.Email] {
				continue
			}
			seen[c.Email] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Searcher) search(ctx context.Context, keyword string, since time.Time) ([]domain.Candidate, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("tags", "comment")
	if !since.IsZero() {
		q.Set("numericFilters", fmt.Sprintf("created_at_i>%d", since.Unix()))
	}
	u := s.cfg.BaseURL + "/search_by_date?" + q.Encode()

	if err := s.limiter.WaitURL(ctx, u); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "OutreachEngine/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hn search: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hn search: status %d", res.StatusCode)
	}

	var sr searchResponse
	if err := json.NewDecoder(res.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("hn decode: %w", err)
	}

	var out []domain.Candidate
	for _, h := range sr.Hits {
		text := h.CommentText
		if text == "" {
			text = h.StoryText
		}
		text = util.CleanText(text)
		for _, email := range util.ExtractEmails(text) {
			out = append(out, domain.Candidate{
				Email:          email,
				DisplayName:    h.Author,
				SourceTag:      "hn",
				Keyword:        keyword,
				ContextSnippet: util.Snippet(text, 500),
			})
		}
	}
	return out, nil
}
