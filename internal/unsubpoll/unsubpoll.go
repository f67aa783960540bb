// Package unsubpoll scans the outreach mailbox over IMAP for unsubscribe
// replies and records the senders as opted out.
package unsubpoll

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"outreach-engine/internal/dedupe"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
)

// unsubscribeMarkers: a reply counts as an opt-out request when its subject
// contains any of these, case-insensitive.
var unsubscribeMarkers = []string{"unsubscribe", "opt out", "opt-out", "remove me", "stop emailing"}

type Poller struct {
	Host     string // host:port, IMAPS
	Username string
	Password string
	Mailbox  string
}

func (p *Poller) configured() bool {
	return p.Host != "" && p.Username != "" && p.Password != ""
}

// RunOnce connects, scans messages from the last lookback window and records
// an opt-out for each unsubscribe-looking sender. Returns how many new
// addresses were added.
func (p *Poller) RunOnce(ctx context.Context, db *sql.DB, lookback time.Duration) (added int, err error) {
	if !p.configured() {
		return 0, errors.New("unsubpoll: imap host/username/password not configured")
	}
	mailbox := p.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	c, err := imapclient.DialTLS(p.Host, nil)
	if err != nil {
		return 0, fmt.Errorf("unsubpoll: dial %s: %w", p.Host, err)
	}
	defer c.Close()

	if err := c.Login(p.Username, p.Password).Wait(); err != nil {
		return 0, fmt.Errorf("unsubpoll: login: %w", err)
	}
	defer c.Logout()

	if _, err := c.Select(mailbox, nil).Wait(); err != nil {
		return 0, fmt.Errorf("unsubpoll: select %s: %w", mailbox, err)
	}

	since := time.Now().Add(-lookback)
	data, err := c.Search(&imap.SearchCriteria{Since: since}, nil).Wait()
	if err != nil {
		return 0, fmt.Errorf("unsubpoll: search: %w", err)
	}
	nums := data.AllSeqNums()
	if len(nums) == 0 {
		return 0, nil
	}

	var seqset imap.SeqSet
	seqset.AddNum(nums...)
	msgs, err := c.Fetch(seqset, &imap.FetchOptions{Envelope: true}).Collect()
	if err != nil {
		return 0, fmt.Errorf("unsubpoll: fetch: %w", err)
	}

	for _, msg := range msgs {
		if msg.Envelope == nil || !wantsUnsubscribe(msg.Envelope.Subject) {
			continue
		}
		for _, from := range msg.Envelope.From {
			addr, err := dedupe.NormalizeEmail(from.Mailbox + "@" + from.Host)
			if err != nil {
				continue
			}
			ok, err := store.AddOptOut(ctx, db, domain.OptOutEntry{
				Email:   addr,
				AddedAt: time.Now().UTC(),
				Reason:  "unsubscribe reply",
				Via:     "email",
			})
			if err != nil {
				log.Printf("[unsubpoll] record opt-out %s: %v", addr, err)
				continue
			}
			if ok {
				added++
				log.Printf("[unsubpoll] opted out %s (reply: %q)", addr, msg.Envelope.Subject)
			}
		}
	}
	return added, nil
}

func wantsUnsubscribe(subject string) bool {
	s := strings.ToLower(subject)
	for _, marker := range unsubscribeMarkers {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
