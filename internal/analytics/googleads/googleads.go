// Package googleads reads campaign performance totals from the Google Ads
// REST API.
package googleads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"outreach-engine/internal/analytics"
)

const defaultBaseURL = "https://googleads.googleapis.com"

type Adapter struct {
	CustomerID     string
	DeveloperToken string
	AccessToken    string
	BaseURL        string // override for tests

	hc *http.Client
}

func (a *Adapter) Name() string { return "googleads" }

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
		Property:  a.CustomerID,
		FetchedAt: time.Now().UTC(),
	}
	if a.CustomerID == "" || a.DeveloperToken == "" || a.AccessToken == "" {
		r.Status = analytics.StatusNotConfigured
		return r
	}

	query := `SELECT metrics.impressions, metrics.clicks, metrics.cost_micros,
		metrics.conversions FROM customer WHERE segments.date DURING LAST_7_DAYS`
	body, _ := json.Marshal(map[string]string{"query": query})

	customer := strings.ReplaceAll(a.CustomerID, "-", "")
	url := fmt.Sprintf("%s/v17/customers/%s/googleAds:search", a.baseURL(), customer)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		r.Status = analytics.StatusUnreachable
		r.Detail = err.Error()
		return r
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.AccessToken)
	req.Header.Set("developer-token", a.DeveloperToken)

	res, err := a.client().Do(req)
	if err != nil {
		r.Status = analytics.StatusUnreachable
		r.Detail = err.Error()
		return r
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		r.Status = analytics.StatusUnauthenticated
		r.Detail = fmt.Sprintf("status %d", res.StatusCode)
		return r
	}
	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		r.Status = analytics.StatusUnreachable
		r.Detail = fmt.Sprintf("status %d: %s", res.StatusCode, msg)
		return r
	}

	var out struct {
		Results []struct {
			Metrics struct {
				Impressions string  `json:"impressions"`
				Clicks      string  `json:"clicks"`
				CostMicros  string  `json:"costMicros"`
				Conversions float64 `json:"conversions"`
			} `json:"metrics"`
		} `json:"results"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		r.Status = analytics.StatusUnreachable
		r.Detail = "decode: " + err.Error()
		return r
	}

	metrics := map[string]float64{"impressions": 0, "clicks": 0, "costMicros": 0, "conversions": 0}
	for _, row := range out.Results {
		metrics["impressions"] += parseCount(row.Metrics.Impressions)
		metrics["clicks"] += parseCount(row.Metrics.Clicks)
		metrics["costMicros"] += parseCount(row.Metrics.CostMicros)
		metrics["conversions"] += row.Metrics.Conversions
	}

	r.Status = analytics.StatusOK
	r.Metrics = metrics
	return r
}

// parseCount handles the API's int64-as-string encoding.
func parseCount(s string) float64 {
	var v float64
	fmt.Sscanf(s, "%f", &v)
	return v
}
