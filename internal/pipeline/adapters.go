package pipeline

import (
	"outreach-engine/internal/analytics"
	"outreach-engine/internal/analytics/ga"
	"outreach-engine/internal/analytics/googleads"
	"outreach-engine/internal/analytics/linkedin"
	"outreach-engine/internal/analytics/youtube"
	"outreach-engine/internal/config"
	"outreach-engine/internal/secrets"
)

// buildAdapters assembles one adapter per configured analytics provider.
// Missing credentials still produce an adapter; it reports not-configured
// and the aggregator fills in the fallback baseline.
func buildAdapters(cfg config.Config) []analytics.Adapter {
	var out []analytics.Adapter

	gaKey := secrets.GetOptional(secrets.GAAPIKey)
	for _, p := range cfg.Analytics.GAProperties {
		out = append(out, &ga.Adapter{
			PropertyName: p.Name,
			PropertyID:   p.PropertyID,
			APIKey:       gaKey,
		})
	}

	out = append(out, &youtube.Adapter{
		ChannelID: cfg.Analytics.YouTube.ChannelID,
		APIKey:    secrets.GetOptional(secrets.YouTubeAPIKey),
	})
	out = append(out, &linkedin.Adapter{
		OrganizationID: cfg.Analytics.LinkedIn.OrganizationID,
		Token:          secrets.GetOptional(secrets.LinkedInToken),
	})
	out = append(out, &googleads.Adapter{
		CustomerID:     cfg.Analytics.GoogleAds.CustomerID,
		DeveloperToken: secrets.GetOptional(secrets.GoogleAdsDevToken),
		AccessToken:    secrets.GetOptional(secrets.GoogleAdsAccessToken),
	})
	return out
}
