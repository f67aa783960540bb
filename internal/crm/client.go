// Package crm upserts contacted leads into the CRM (HubSpot v3 contacts
// shape), keyed by email. Sync is best-effort: it never blocks or reverses a
// send, and failures retry on the next scheduled run.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"outreach-engine/internal/domain"
)

// ErrUnauthorized distinguishes "needs re-auth" from "service down".
var ErrUnauthorized = errors.New("crm: unauthorized")

type Client struct {
	BaseURL string
	Token   string
	hc      *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		hc:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.BaseURL != "" && c.Token != ""
}

// ownedProperties are the only CRM fields this system writes. Partial-update
// semantics: anything else on the contact belongs to the CRM side and must
// survive a re-sync.
func ownedProperties(lead domain.Lead) map[string]string {
	source := ""
	if len(lead.Sources) > 0 {
		source = lead.Sources[0]
	}
	snippet := lead.ContextSnippet
	if len(snippet) > 1000 {
		snippet = snippet[:1000] // CRM field length limit
	}
	props := map[string]string{
		"email":                lead.Email,
		"firstname":            lead.DisplayName,
		"lead_source":          source,
		"lead_keyword":         lead.Keyword,
		"lead_context":         snippet,
		"notes_last_contacted": "",
		"outreach_lead_status": "NEW",
	}
	if lead.LastContacted != nil {
		props["notes_last_contacted"] = "Automated outreach on " + lead.LastContacted.UTC().Format("2006-01-02")
		props["outreach_lead_status"] = "CONTACTED"
	}
	return props
}

// UpsertContact searches by email and patches the existing contact, creating
// it when absent. Safe to call repeatedly for the same lead.
func (c *Client) UpsertContact(ctx context.Context, lead domain.Lead) error {
	id, err := c.searchByEmail(ctx, lead.Email)
	if err != nil {
		return err
	}
	if id != "" {
		return c.patch(ctx, id, lead)
	}

	err = c.create(ctx, lead)
	if errors.Is(err, errConflict) {
		// Created by someone else between search and create.
		id, serr := c.searchByEmail(ctx, lead.Email)
		if serr != nil {
			return serr
		}
		if id == "" {
			return fmt.Errorf("crm: contact %s conflicted but not found", lead.Email)
		}
		return c.patch(ctx, id, lead)
	}
	return err
}

var errConflict = errors.New("crm: contact exists")

func (c *Client) searchByEmail(ctx context.Context, email string) (string, error) {
	body := map[string]any{
		"filterGroups": []any{
			map[string]any{
				"filters": []any{
					map[string]any{"propertyName": "email", "operator": "EQ", "value": email},
				},
			},
		},
	}

	var out struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts/search", body, &out); err != nil {
		return "", err
	}
	if len(out.Results) == 0 {
		return "", nil
	}
	return out.Results[0].ID, nil
}

func (c *Client) create(ctx context.Context, lead domain.Lead) error {
	body := map[string]any{"properties": ownedProperties(lead)}
	return c.do(ctx, http.MethodPost, "/crm/v3/objects/contacts", body, nil)
}

func (c *Client) patch(ctx context.Context, id string, lead domain.Lead) error {
	body := map[string]any{"properties": ownedProperties(lead)}
	return c.do(ctx, http.MethodPatch, "/crm/v3/objects/contacts/"+id, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	res, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("crm %s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w (status %d)", ErrUnauthorized, res.StatusCode)
	case res.StatusCode == http.StatusConflict:
		return errConflict
	case res.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("crm %s %s: status %d: %s", method, path, res.StatusCode, msg)
	}

	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			return fmt.Errorf("crm decode: %w", err)
		}
	}
	return nil
}
