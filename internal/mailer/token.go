package mailer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

// UnsubToken derives the per-lead unsubscribe token from the normalized
// email, so links stay valid across runs without storing anything.
func UnsubToken(secret, email string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(email))
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

func VerifyUnsubToken(secret, email, token string) bool {
	return hmac.Equal([]byte(UnsubToken(secret, email)), []byte(token))
}

func UnsubURL(baseURL, secret, email string) string {
	return fmt.Sprintf("%s/optout?email=%s&token=%s",
		baseURL, url.QueryEscape(email), UnsubToken(secret, email))
}
