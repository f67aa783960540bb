// Package report renders and mails the run status report: pipeline counters
// plus the analytics snapshot table.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"sort"
	"time"

	"outreach-engine/internal/analytics"
	"outreach-engine/internal/mailer"

	"gopkg.in/gomail.v2"
)

// RunSummary carries the counters one pipeline run produced.
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time

	Discovered int // candidates seen across all sources
	NewLeads   int
	Updated    int
	SourceErrs []string

	Sent        int
	SendFailed  int
	Skipped     int // opt-out or cap
	ByCampaign  map[string]int
	CRMSynced   int
	CRMFailed   int
	TotalLeads  int
	TotalOptOut int

	Snapshot *analytics.Snapshot
}

type providerRow struct {
	Name    string
	Status  string
	Badge   string // "live" or "fallback"
	Metrics []string
}

var reportTmpl = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html>
<body style="font-family:-apple-system,Segoe UI,Roboto,sans-serif;max-width:680px;margin:0 auto">
  <h2>Outreach engine status - {{.Date}}</h2>
  <h3>Pipeline</h3>
  <table border="0" cellpadding="6" style="border-collapse:collapse">
    <tr><td>Candidates discovered</td><td><b>{{.S.Discovered}}</b></td></tr>
    <tr><td>New leads</td><td><b>{{.S.NewLeads}}</b></td></tr>
    <tr><td>Leads updated</td><td><b>{{.S.Updated}}</b></td></tr>
    <tr><td>Emails sent</td><td><b>{{.S.Sent}}</b></td></tr>
    <tr><td>Send failures</td><td><b>{{.S.SendFailed}}</b></td></tr>
    <tr><td>Skipped (opt-out / cap)</td><td><b>{{.S.Skipped}}</b></td></tr>
    <tr><td>CRM synced / failed</td><td><b>{{.S.CRMSynced}} / {{.S.CRMFailed}}</b></td></tr>
    <tr><td>Total leads on file</td><td><b>{{.S.TotalLeads}}</b></td></tr>
    <tr><td>Opt-out list size</td><td><b>{{.S.TotalOptOut}}</b></td></tr>
  </table>
  {{if .S.SourceErrs}}
  <h3>Source failures</h3>
  <ul>{{range .S.SourceErrs}}<li style="color:#c62828">{{.}}</li>{{end}}</ul>
  {{end}}
  {{if .Providers}}
  <h3>Analytics ({{.LiveNote}})</h3>
  <table border="1" cellpadding="6" style="border-collapse:collapse">
    <tr style="background:#eee"><th>Provider</th><th>Status</th><th>Data</th><th>Metrics</th></tr>
    {{range .Providers}}
    <tr>
      <td>{{.Name}}</td>
      <td>{{.Status}}</td>
      <td>{{if eq .Badge "live"}}<span style="color:#2e7d32">live</span>{{else}}<span style="color:#ef6c00">fallback</span>{{end}}</td>
      <td>{{range .Metrics}}{{.}}<br>{{end}}</td>
    </tr>
    {{end}}
  </table>
  {{end}}
  <p style="font-size:11px;color:#888">Run {{.S.StartedAt.Format "15:04:05"}} - {{.S.FinishedAt.Format "15:04:05"}} UTC</p>
</body>
</html>`))

// Render produces the report subject and HTML body.
func Render(s RunSummary) (subject, html string, err error) {
	date := s.FinishedAt.UTC().Format("2006-01-02")
	subject = fmt.Sprintf("Outreach status %s: %d sent, %d new leads", date, s.Sent, s.NewLeads)

	data := struct {
		Date      string
		S         RunSummary
		Providers []providerRow
		LiveNote  string
	}{Date: date, S: s}

	if s.Snapshot != nil {
		live, fb := s.Snapshot.LiveCount()
		data.LiveNote = fmt.Sprintf("%d live, %d fallback", live, fb)
		for _, id := range s.Snapshot.ProviderOrder() {
			r := s.Snapshot.Providers[id]
			row := providerRow{Name: id, Status: string(r.Status), Badge: "fallback"}
			if r.Live {
				row.Badge = "live"
			}
			for _, k := range sortedKeys(r.Metrics) {
				row.Metrics = append(row.Metrics, fmt.Sprintf("%s: %s", k, formatMetric(k, r.Metrics[k])))
			}
			data.Providers = append(data.Providers, row)
		}
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render report: %w", err)
	}
	return subject, buf.String(), nil
}

// Send mails the rendered report to the operator address. Report failure is
// logged, never fatal: the run's data is already durable.
func Send(send mailer.SendFunc, from, to string, s RunSummary) error {
	if to == "" {
		return nil
	}
	subject, html, err := Render(s)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	if err := send(m); err != nil {
		return fmt.Errorf("send report: %w", err)
	}
	log.Printf("[report] status report sent to %s", to)
	return nil
}

func formatMetric(key string, v float64) string {
	if key == "engagement" {
		return fmt.Sprintf("%.1f%%", v*100)
	}
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
