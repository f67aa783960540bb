package domain

import "time"

// Campaign is a category of outbound message with its own cap and cooldown.
type Campaign string

const (
	CampaignColdOutreach Campaign = "cold_outreach"
	CampaignAnnouncement Campaign = "feature_announcement"
	CampaignReengagement Campaign = "reengagement"
)

func Campaigns() []Campaign {
	return []Campaign{CampaignColdOutreach, CampaignAnnouncement, CampaignReengagement}
}

// Outcome of a single dispatch attempt.
type Outcome string

const (
	OutcomeSent          Outcome = "sent"
	OutcomeFailed        Outcome = "failed"
	OutcomeSkippedOptOut Outcome = "skipped-optout"
)

// OutreachRecord is an immutable log entry, written exactly once per dispatch
// attempt.
type OutreachRecord struct {
	RecordID  string    `json:"recordId"`
	Email     string    `json:"email"`
	Campaign  Campaign  `json:"campaign"`
	Outcome   Outcome   `json:"outcome"`
	MessageID string    `json:"messageId,omitempty"` // empty unless sent
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// OptOutEntry permanently excludes an address from outreach. Append-only.
type OptOutEntry struct {
	Email   string    `json:"email"`
	AddedAt time.Time `json:"addedAt"`
	Reason  string    `json:"reason,omitempty"`
	Via     string    `json:"via"` // email/form/manual
}
