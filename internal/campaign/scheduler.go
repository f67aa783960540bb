// Package campaign decides which leads are eligible for outreach today under
// the per-campaign caps, cooldowns and the opt-out registry.
package campaign

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"
)

// Classifier supplies the platform activity classification for a lead. It is
// an external input (platform user-sync), never computed here.
type Classifier interface {
	Classify(ctx context.Context, email string) (domain.Activity, error)
}

type Caps struct {
	ColdPerDay      int
	AnnouncePerDay  int
	ReengagePerWeek int

	ReengageCooldown time.Duration
	AnnounceCooldown time.Duration
}

type Scheduler struct {
	DB         *sql.DB
	Classifier Classifier
	Caps       Caps
	Now        func() time.Time
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CapFor returns the configured cap for a campaign type.
func (s *Scheduler) CapFor(c domain.Campaign) int {
	switch c {
	case domain.CampaignColdOutreach:
		return s.Caps.ColdPerDay
	case domain.CampaignAnnouncement:
		return s.Caps.AnnouncePerDay
	case domain.CampaignReengagement:
		return s.Caps.ReengagePerWeek
	}
	return 0
}

// WindowStart returns the persisted-counter key for the campaign's cap
// window: UTC midnight for daily caps, ISO Monday 00:00 UTC for weekly.
func (s *Scheduler) WindowStart(c domain.Campaign, at time.Time) time.Time {
	if c == domain.CampaignReengagement {
		return WeekStart(at)
	}
	return DayStart(at)
}

func DayStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func WeekStart(t time.Time) time.Time {
	d := DayStart(t)
	// Weekday() is Sunday=0; shift to Monday-start weeks.
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Eligible returns the ordered subset of leads that may be contacted now for
// the campaign, already truncated to the remaining cap budget. Eligibility is
// re-read from the store on every call; nothing is cached across runs.
func (s *Scheduler) Eligible(ctx context.Context, campaign domain.Campaign) ([]domain.Lead, error) {
	now := s.now()

	limit := s.CapFor(campaign)
	if limit <= 0 {
		return nil, nil
	}

	windowStart := s.WindowStart(campaign, now)
	sent, err := store.SentCount(ctx, s.DB, campaign, windowStart)
	if err != nil {
		return nil, fmt.Errorf("read send counter: %w", err)
	}
	remaining := limit - sent
	if remaining <= 0 {
		log.Printf("[schedule] %s cap reached (%d/%d for window %s)", campaign, sent, limit, windowStart.Format("2006-01-02"))
		return nil, nil
	}

	pool, err := s.candidatePool(ctx, campaign, now)
	if err != nil {
		return nil, err
	}

	var out []domain.Lead
	for _, lead := range pool {
		ok, err := s.eligible(ctx, campaign, lead)
		if err != nil {
			// one lead's failure never aborts the run
			log.Printf("[schedule] skipping %s: %v", lead.Email, err)
			continue
		}
		if !ok {
			continue
		}
		out = append(out, lead)
		if len(out) == remaining {
			break
		}
	}
	return out, nil
}

// candidatePool loads the ordered base set per campaign: most recently
// discovered first for cold outreach, least recently contacted first for
// re-engagement and announcements.
func (s *Scheduler) candidatePool(ctx context.Context, campaign domain.Campaign, now time.Time) ([]domain.Lead, error) {
	switch campaign {
	case domain.CampaignColdOutreach:
		return store.LeadsNeverContacted(ctx, s.DB, campaign)
	case domain.CampaignReengagement:
		cutoff := now.Add(-s.Caps.ReengageCooldown)
		return store.LeadsContactedBefore(ctx, s.DB, campaign, cutoff)
	case domain.CampaignAnnouncement:
		cutoff := now.Add(-s.Caps.AnnounceCooldown)
		contacted, err := store.LeadsContactedBefore(ctx, s.DB, campaign, cutoff)
		if err != nil {
			return nil, err
		}
		fresh, err := store.LeadsNeverContacted(ctx, s.DB, campaign)
		if err != nil {
			return nil, err
		}
		return append(contacted, fresh...), nil
	}
	return nil, fmt.Errorf("unknown campaign %q", campaign)
}

// eligible applies the per-lead rules in order, short-circuiting on the first
// failing rule. The pool queries already exclude opted-out addresses and
// enforce contact-history shape; both are re-checked here so eligibility
// always reflects the store, not the query that produced the pool.
func (s *Scheduler) eligible(ctx context.Context, campaign domain.Campaign, lead domain.Lead) (bool, error) {
	// Rule 1: opt-out is absolute.
	optedOut, err := store.IsOptedOut(ctx, s.DB, lead.Email)
	if err != nil {
		return false, err
	}
	if optedOut {
		return false, nil
	}

	last, err := store.LastContacted(ctx, s.DB, lead.Email, campaign)
	if err != nil {
		return false, err
	}

	switch campaign {
	case domain.CampaignColdOutreach:
		// Rule 2: never contacted for this campaign type.
		if last != nil {
			return false, nil
		}

	case domain.CampaignReengagement:
		// Rule 3: cooldown elapsed AND platform activity is inactive.
		if last == nil || s.now().Sub(*last) < s.Caps.ReengageCooldown {
			return false, nil
		}
		activity := s.classify(ctx, lead.Email)
		if activity != domain.ActivityInactive {
			return false, nil
		}

	case domain.CampaignAnnouncement:
		// Announcements go to users still around; inactive users get the
		// re-engagement track instead.
		if last != nil && s.now().Sub(*last) < s.Caps.AnnounceCooldown {
			return false, nil
		}
		activity := s.classify(ctx, lead.Email)
		if activity != domain.ActivityActive && activity != domain.ActivityModerate {
			return false, nil
		}
	}

	return true, nil
}

// classify folds classifier failure into ActivityUnknown: when the activity
// input is unavailable the lead is ineligible rather than guessed at.
func (s *Scheduler) classify(ctx context.Context, email string) domain.Activity {
	if s.Classifier == nil {
		return domain.ActivityUnknown
	}
	a, err := s.Classifier.Classify(ctx, email)
	if err != nil {
		log.Printf("[schedule] activity classify %s: %v", email, err)
		return domain.ActivityUnknown
	}
	return a
}
