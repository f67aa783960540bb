// Package linkedin reads organization follower and share statistics from the
// LinkedIn REST API.
package linkedin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"outreach-engine/internal/analytics"
)

const defaultBaseURL = "https://api.linkedin.com"

type Adapter struct {
	OrganizationID string
	Token          string
	BaseURL        string // override for tests

	hc *http.Client
}

func (a *Adapter) Name() string { return "linkedin" }

func (a *Adapter) client() *http.Client {
	if a.hc == nil {
		a.hc = &http.Client{Timeout: 15 * time.Second}
	}
	return a.hc
}

func (a *Adapter) baseURL() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return defaultBaseURL
}

func (a *Adapter) Fetch(ctx context.Context, _ analytics.DateRange) analytics.Reading {
	r := analytics.Reading{
		Provider:  a.Name(),
		Property:  a.OrganizationID,
		FetchedAt: time.Now().UTC(),
	}
	if a.OrganizationID == "" || a.Token == "" {
		r.Status = analytics.StatusNotConfigured
		return r
	}

	urn := "urn:li:organization:" + a.OrganizationID

	var followers struct {
		Elements []struct {
			FollowerCounts struct {
				OrganicFollowerCount float64 `json:"organicFollowerCount"`
				PaidFollowerCount    float64 `json:"paidFollowerCount"`
			} `json:"followerCounts"`
		} `json:"elements"`
	}
	err := a.get(ctx, "/v2/organizationalEntityFollowerStatistics?q=organizationalEntity&organizationalEntity="+urn, &followers)
	if err != nil {
		fill(&r, err)
		return r
	}

	var shares struct {
		Elements []struct {
			TotalShareStatistics struct {
				ImpressionCount float64 `json:"impressionCount"`
				ClickCount      float64 `json:"clickCount"`
				LikeCount       float64 `json:"likeCount"`
				CommentCount    float64 `json:"commentCount"`
			} `json:"totalShareStatistics"`
		} `json:"elements"`
	}
	err = a.get(ctx, "/v2/organizationalEntityShareStatistics?q=organizationalEntity&organizationalEntity="+urn, &shares)
	if err != nil {
		fill(&r, err)
		return r
	}

	metrics := map[string]float64{"followers": 0, "impressions": 0, "clicks": 0, "engagement": 0}
	for _, e := range followers.Elements {
		metrics["followers"] += e.FollowerCounts.OrganicFollowerCount + e.FollowerCounts.PaidFollowerCount
	}
	var interactions float64
	for _, e := range shares.Elements {
		s := e.TotalShareStatistics
		metrics["impressions"] += s.ImpressionCount
		metrics["clicks"] += s.ClickCount
		interactions += s.ClickCount + s.LikeCount + s.CommentCount
	}
	if metrics["impressions"] > 0 {
		metrics["engagement"] = interactions / metrics["impressions"]
	}

	r.Status = analytics.StatusOK
	r.Metrics = metrics
	return r
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("linkedin: status %d: %s", e.code, e.body)
}

func fill(r *analytics.Reading, err error) {
	if se, ok := err.(*statusError); ok && (se.code == http.StatusUnauthorized || se.code == http.StatusForbidden) {
		r.Status = analytics.StatusUnauthenticated
	} else {
		r.Status = analytics.StatusUnreachable
	}
	r.Detail = err.Error()
}

func (a *Adapter) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL()+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	res, err := a.client().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &statusError{code: res.StatusCode, body: string(msg)}
	}
	return json.NewDecoder(res.Body).Decode(out)
}
