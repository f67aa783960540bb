package httpapi

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"outreach-engine/internal/dedupe"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
	"outreach-engine/internal/mailer"
	"outreach-engine/internal/store"
)

type OptOutHandler struct {
	DB          *sql.DB
	Hub         *events.Hub
	UnsubSecret string
}

func (h OptOutHandler) List(w http.ResponseWriter, r *http.Request) {
	out, err := store.ListOptOuts(r.Context(), h.DB)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, out)
}

type addOptOutReq struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// Add records a manual opt-out (operator or platform-initiated).
func (h OptOutHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addOptOutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", 400)
		return
	}
	email, err := dedupe.NormalizeEmail(req.Email)
	if err != nil {
		http.Error(w, "invalid email", 400)
		return
	}

	added, err := h.record(r, email, req.Reason, "api")
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, map[string]any{"email": email, "added": added})
}

// Unsubscribe serves the link embedded in every outgoing mail. The token
// binds the link to the address, so nobody can unsubscribe a third party.
func (h OptOutHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rawEmail, token := q.Get("email"), q.Get("token")

	email, err := dedupe.NormalizeEmail(rawEmail)
	if err != nil || !mailer.VerifyUnsubToken(h.UnsubSecret, email, token) {
		http.Error(w, "invalid unsubscribe link", http.StatusForbidden)
		return
	}

	if _, err := h.record(r, email, "clicked unsubscribe link", "link"); err != nil {
		http.Error(w, err.Error(), 500)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<html><body style="font-family:sans-serif;text-align:center;padding-top:80px">
<h2>You're unsubscribed</h2><p>%s will not receive any further email from us.</p>
</body></html>`, email)
}

func (h OptOutHandler) record(r *http.Request, email, reason, via string) (bool, error) {
	added, err := store.AddOptOut(r.Context(), h.DB, domain.OptOutEntry{
		Email:   email,
		AddedAt: time.Now().UTC(),
		Reason:  reason,
		Via:     via,
	})
	if err != nil {
		return false, err
	}
	if added {
		h.Hub.Publish(events.Make(events.TypeOptOutAdded, map[string]string{"email": email}))
	}
	return added, nil
}
