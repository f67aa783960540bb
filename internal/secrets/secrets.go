// Package secrets resolves credentials: environment first (containers, CI),
// then the OS keychain (developer laptops). Secrets never live in config.yml.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's entries in the OS keychain.
const KeyringService = "outreach-engine"

// Known secret names. Each doubles as the environment variable consulted
// before the keychain.
const (
	SMTPPassword         = "SMTP_PASSWORD"
	HubSpotToken         = "HUBSPOT_ACCESS_TOKEN"
	GAAPIKey             = "GA_API_KEY"
	YouTubeAPIKey        = "YOUTUBE_API_KEY"
	LinkedInToken        = "LINKEDIN_ACCESS_TOKEN"
	GoogleAdsDevToken    = "GOOGLE_ADS_DEVELOPER_TOKEN"
	GoogleAdsAccessToken = "GOOGLE_ADS_ACCESS_TOKEN"
	IMAPPassword         = "IMAP_PASSWORD"
	UnsubscribeSecret    = "UNSUBSCRIBE_SECRET" // HMAC key for unsubscribe links
)

var ErrNotFound = errors.New("secret not found")

// Get returns the secret value, or "" with ErrNotFound when neither the
// environment nor the keychain has it. Absence is routine: callers decide
// whether the feature degrades or aborts.
func Get(name string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, nil
	}
	v, err := keyring.Get(KeyringService, name)
	if err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}
	return "", fmt.Errorf("%w: %s (set env %s or keychain entry)", ErrNotFound, name, name)
}

// GetOptional is Get for secrets whose absence just disables a provider.
func GetOptional(name string) string {
	v, _ := Get(name)
	return v
}

// Set stores the secret in the OS keychain.
func Set(name, value string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, name, value)
}

// Delete removes the secret from the OS keychain.
func Delete(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("secret name is empty")
	}
	return keyring.Delete(KeyringService, name)
}
