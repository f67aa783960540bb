// Package board scrapes configured community pages (startup directories,
// founder forums) for posts that match outreach keywords and carry a contact
// address.
package board

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/source/util"

	"github.com/PuerkitoBio/goquery"
)

type Page struct {
	Name string // source tag, e.g. "indiehackers"
	URL  string
}

type Config struct {
	Pages    []Page
	Keywords []string
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "board" }

func (s *Scraper) Discover(ctx context.Context, since time.Time) ([]domain.Candidate, error) {
	var out []domain.Candidate
	var lastErr error

	for _, p := range s.cfg.Pages {
		cands, err := s.scrapePage(ctx, p)
		if err != nil {
			// don't fail the whole run because one board is down
			lastErr = err
			continue
		}
		out = append(out, cands...)
	}

	if out == nil && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

func (s *Scraper) scrapePage(ctx context.Context, p Page) ([]domain.Candidate, error) {
	if err := s.limiter.WaitURL(ctx, p.URL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "OutreachEngine/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("board get %s: %w", p.Name, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("board get %s: status %d", p.Name, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("board parse %s: %w", p.Name, err)
	}

	var out []domain.Candidate
	seenEmails := map[string]bool{}

	// Posts render as list items / article blocks on every board we watch;
	// walk the text blocks rather than assuming one DOM shape.
	doc.Find("p, li, article, div.post, td.default").Each(func(_ int, sel *goquery.Selection) {
		text := util.CleanText(sel.Text())
		if text == "" {
			return
		}
		kw, ok := util.ContainsKeyword(text, s.cfg.Keywords)
		if !ok {
			return
		}
		for _, email := range util.ExtractEmails(text) {
			if seenEmails[email] {
				continue
			}
			seenEmails[email] = true
			out = append(out, domain.Candidate{
				Email:          email,
				SourceTag:      p.Name,
				Keyword:        kw,
				ContextSnippet: util.Snippet(text, 500),
			})
		}
	})

	return out, nil
}
