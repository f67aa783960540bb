// Package youtube reads channel statistics from the YouTube Data API.
package youtube

import (
	"context"
	"errors"
	"time"

	"outreach-engine/internal/analytics"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	ytapi "google.golang.org/api/youtube/v3"
)

type Adapter struct {
	ChannelID string
	APIKey    string
}

func (a *Adapter) Name() string { return "youtube" }

func (a *Adapter) Fetch(ctx context.Context, _ analytics.DateRange) analytics.Reading {
	r := analytics.Reading{
		Provider:  a.Name(),
		Property:  a.ChannelID,
		FetchedAt: time.Now().UTC(),
	}
	if a.ChannelID == "" || a.APIKey == "" {
		r.Status = analytics.StatusNotConfigured
		return r
	}

	svc, err := ytapi.NewService(ctx, option.WithAPIKey(a.APIKey))
	if err != nil {
		r.Status = analytics.StatusUnreachable
		r.Detail = err.Error()
		return r
	}

	resp, err := svc.Channels.List([]string{"statistics"}).Id(a.ChannelID).Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) && (gerr.Code == 401 || gerr.Code == 403) {
			r.Status = analytics.StatusUnauthenticated
		} else {
			r.Status = analytics.StatusUnreachable
		}
		r.Detail = err.Error()
		return r
	}
	if len(resp.Items) == 0 {
		r.Status = analytics.StatusUnreachable
		r.Detail = "channel " + a.ChannelID + " not found"
		return r
	}

	st := resp.Items[0].Statistics
	r.Status = analytics.StatusOK
	r.Metrics = map[string]float64{
		"views":       float64(st.ViewCount),
		"subscribers": float64(st.SubscriberCount),
		"videos":      float64(st.VideoCount),
	}
	return r
}
