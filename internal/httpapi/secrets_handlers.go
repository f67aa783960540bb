package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"outreach-engine/internal/secrets"
)

type SecretsHandler struct{}

type setSecretReq struct {
	Value string `json:"value"`
}

// allowedSecrets maps the URL suffix to the keychain entry it sets.
var allowedSecrets = map[string]string{
	"smtp":      secrets.SMTPPassword,
	"hubspot":   secrets.HubSpotToken,
	"ga":        secrets.GAAPIKey,
	"youtube":   secrets.YouTubeAPIKey,
	"linkedin":  secrets.LinkedInToken,
	"imap":      secrets.IMAPPassword,
	"unsub":     secrets.UnsubscribeSecret,
	"googleads": secrets.GoogleAdsDevToken,
}

// SetByPath stores one credential in the OS keychain. Expects
// /api/secrets/{name}; values are write-only, never readable back.
func (h SecretsHandler) SetByPath(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/secrets/")
	key, ok := allowedSecrets[name]
	if !ok {
		http.Error(w, "unknown secret", http.StatusNotFound)
		return
	}

	var req setSecretReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := secrets.Set(key, req.Value); err != nil {
		http.Error(w, "failed to store secret: "+err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
