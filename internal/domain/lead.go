package domain

import "time"

// Lead is a discovered prospect. Identity is the normalized email; there is
// exactly one Lead per normalized email in the store.
type Lead struct {
	Email           string     `json:"email"`
	DisplayName     string     `json:"displayName"`
	Sources         []string   `json:"sources"` // source tags, discovery origin first
	Keyword         string     `json:"keyword"` // matched keyword, kept for personalization
	ContextSnippet  string     `json:"contextSnippet"`
	FirstSeen       time.Time  `json:"firstSeen"`
	LastSeen        time.Time  `json:"lastSeen"`
	ContactAttempts int        `json:"contactAttempts"`
	LastContacted   *time.Time `json:"lastContacted,omitempty"` // most recent, any campaign
	CRMSyncedAt     *time.Time `json:"crmSyncedAt,omitempty"`
	CRMSyncError    string     `json:"crmSyncError,omitempty"`
}

// HasSource reports whether the lead already carries the given source tag.
func (l Lead) HasSource(tag string) bool {
	for _, s := range l.Sources {
		if s == tag {
			return true
		}
	}
	return false
}

// Candidate is a raw discovery record emitted by a source connector, before
// normalization and dedup.
type Candidate struct {
	Email          string
	DisplayName    string
	SourceTag      string
	Keyword        string
	ContextSnippet string
}

// Activity is the platform-login classification supplied by the external
// user-sync collaborator. Unknown means the classifier had no answer.
type Activity string

const (
	ActivityActive   Activity = "active"
	ActivityModerate Activity = "moderately_active"
	ActivityInactive Activity = "inactive"
	ActivityUnknown  Activity = "unknown"
)
