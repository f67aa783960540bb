// Package mailer renders personalized campaign mail and delivers it through
// the SMTP relay, recording every attempt in the outreach log.
package mailer

import (
	"context"
	"database/sql"
	"log"
	"time"

	"outreach-engine/internal/domain"
	"outreach-engine/internal/store"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// SendFunc delivers one assembled message. Production wires
// gomail.Dialer.DialAndSend; tests substitute a fake.
type SendFunc func(m *gomail.Message) error

type Dispatcher struct {
	DB   *sql.DB
	Send SendFunc

	From        string
	BCC         string // monitoring copy, set on every send
	BaseURL     string
	UnsubSecret string

	Now func() time.Time
}

// NewSMTPSender returns a SendFunc backed by a STARTTLS dialer, the same
// shape the relay expects from any client.
func NewSMTPSender(host string, port int, user, password string) SendFunc {
	d := gomail.NewDialer(host, port, user, password)
	return func(m *gomail.Message) error {
		return d.DialAndSend(m)
	}
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// Dispatch sends one campaign email to one lead and returns the immutable
// OutreachRecord for the attempt. Ordering on success is log-first: the
// record is written before the lead is marked contacted, so a crash between
// the two can only under-count contacts, never re-send.
func (d *Dispatcher) Dispatch(ctx context.Context, lead domain.Lead, campaign domain.Campaign) (domain.OutreachRecord, error) {
	rec := domain.OutreachRecord{
		RecordID:  uuid.NewString(),
		Email:     lead.Email,
		Campaign:  campaign,
		CreatedAt: d.now(),
	}

	// The scheduler already filtered opt-outs; re-check here so a race
	// between scheduling and sending can never transmit. Reaching this
	// branch means the upstream check was bypassed.
	optedOut, err := store.IsOptedOut(ctx, d.DB, lead.Email)
	if err != nil {
		rec.Outcome = domain.OutcomeFailed
		rec.Detail = "optout check: " + err.Error()
		_ = store.AppendOutreach(ctx, d.DB, rec)
		return rec, err
	}
	if optedOut {
		log.Printf("[dispatch] INVARIANT: opted-out address %s reached dispatch; aborting before transport", lead.Email)
		rec.Outcome = domain.OutcomeSkippedOptOut
		if err := store.AppendOutreach(ctx, d.DB, rec); err != nil {
			return rec, err
		}
		return rec, nil
	}

	source := ""
	if len(lead.Sources) > 0 {
		source = lead.Sources[0]
	}
	subject, html, err := Render(campaign, TemplateData{
		Name:     lead.DisplayName,
		Source:   source,
		Keyword:  lead.Keyword,
		Snippet:  lead.ContextSnippet,
		UnsubURL: UnsubURL(d.BaseURL, d.UnsubSecret, lead.Email),
	})
	if err != nil {
		rec.Outcome = domain.OutcomeFailed
		rec.Detail = err.Error()
		_ = store.AppendOutreach(ctx, d.DB, rec)
		return rec, err
	}

	msgID := uuid.NewString()

	m := gomail.NewMessage()
	m.SetHeader("From", d.From)
	m.SetHeader("To", lead.Email)
	if d.BCC != "" {
		m.SetHeader("Bcc", d.BCC)
	}
	m.SetHeader("Subject", subject)
	m.SetHeader("X-Outreach-ID", msgID)
	m.SetBody("text/html", html)

	if err := d.Send(m); err != nil {
		// No in-run retry; the lead stays eligible and the cap untouched.
		rec.Outcome = domain.OutcomeFailed
		rec.Detail = err.Error()
		if lerr := store.AppendOutreach(ctx, d.DB, rec); lerr != nil {
			log.Printf("[dispatch] log write failed after transport failure for %s: %v", lead.Email, lerr)
		}
		return rec, err
	}

	rec.Outcome = domain.OutcomeSent
	rec.MessageID = msgID
	if err := store.AppendOutreach(ctx, d.DB, rec); err != nil {
		// Transport already succeeded; losing the record would re-send next
		// run, so this is the one error worth shouting about.
		log.Printf("[dispatch] INVARIANT: sent to %s but outreach log write failed: %v", lead.Email, err)
	}
	if err := store.MarkContacted(ctx, d.DB, lead.Email, campaign, rec.CreatedAt); err != nil {
		log.Printf("[dispatch] mark contacted %s: %v", lead.Email, err)
	}

	return rec, nil
}
