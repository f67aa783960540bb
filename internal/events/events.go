// Package events is the in-process fanout for run progress: the pipeline
// publishes, SSE clients subscribe.
package events

import (
	"encoding/json"
	"time"
)

// Event types published by the pipeline.
const (
	TypeRunStarted    = "run.started"
	TypeRunFinished   = "run.finished"
	TypeRunFailed     = "run.failed"
	TypeSourceDone    = "source.done"
	TypeOutreachSent  = "outreach.sent"
	TypeOptOutAdded   = "optout.added"
	TypeSnapshotReady = "snapshot.ready"
)

type Event struct {
	Type string          `json:"type"`
	At   time.Time       `json:"at"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Make serializes one event for the SSE stream.
func Make(typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		b, _ := json.Marshal(data)
		raw = b
	}
	e := Event{Type: typ, At: time.Now().UTC(), Data: raw}
	b, _ := json.Marshal(e)
	return string(b)
}
