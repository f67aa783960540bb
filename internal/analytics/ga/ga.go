// Package ga reads GA4 traffic metrics for one property via the Analytics
// Data API.
package ga

import (
	"context"
	"errors"
	"strconv"
	"time"

	"outreach-engine/internal/analytics"

	"google.golang.org/api/analyticsdata/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

type Adapter struct {
	PropertyName string // short label, e.g. "www"
	PropertyID   string // numeric GA4 property id
	APIKey       string
}

func (a *Adapter) Name() string { return "ga:" + a.PropertyName }

func (a *Adapter) Fetch(ctx context.Context, rng analytics.DateRange) analytics.Reading {
	r := analytics.Reading{
		Provider:  a.Name(),
		Property:  a.PropertyID,
		FetchedAt: time.Now().UTC(),
	}
	if a.PropertyID == "" || a.APIKey == "" {
		r.Status = analytics.StatusNotConfigured
		return r
	}

	svc, err := analyticsdata.NewService(ctx, option.WithAPIKey(a.APIKey))
	if err != nil {
		r.Status = analytics.StatusUnreachable
		r.Detail = err.Error()
		return r
	}

	req := &analyticsdata.RunReportRequest{
		DateRanges: []*analyticsdata.DateRange{{StartDate: rng.Start, EndDate: rng.End}},
		Metrics: []*analyticsdata.Metric{
			{Name: "sessions"},
			{Name: "screenPageViews"},
			{Name: "activeUsers"},
		},
	}
	resp, err := svc.Properties.RunReport("properties/"+a.PropertyID, req).Context(ctx).Do()
	if err != nil {
		r.Status = classify(err)
		r.Detail = err.Error()
		return r
	}

	metrics := map[string]float64{"sessions": 0, "pageViews": 0, "users": 0}
	keys := []string{"sessions", "pageViews", "users"}
	for _, row := range resp.Rows {
		for i, mv := range row.MetricValues {
			if i >= len(keys) {
				break
			}
			v, _ := strconv.ParseFloat(mv.Value, 64)
			metrics[keys[i]] += v
		}
	}

	r.Status = analytics.StatusOK
	r.Metrics = metrics
	return r
}

func classify(err error) analytics.Status {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == 401 || gerr.Code == 403 {
			return analytics.StatusUnauthenticated
		}
	}
	return analytics.StatusUnreachable
}
