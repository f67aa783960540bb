package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"outreach-engine/internal/domain"
)

// TemplateData is what campaign templates may substitute.
type TemplateData struct {
	Name     string
	Source   string
	Keyword  string
	Snippet  string
	UnsubURL string
}

type campaignTemplate struct {
	subject func(d TemplateData) string
	body    *template.Template
}

var campaignTemplates = map[domain.Campaign]campaignTemplate{
	domain.CampaignColdOutreach: {
		subject: func(d TemplateData) string {
			return fmt.Sprintf("Saw your post on %s - we can help with %s", d.Source, d.Keyword)
		},
		body: mustTemplate("cold", `<!DOCTYPE html>
<html>
<body style="font-family:-apple-system,Segoe UI,Roboto,sans-serif;max-width:600px;margin:0 auto">
  <p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
  <p>I noticed your post on {{.Source}} about {{.Keyword}} and thought our platform might help.</p>
  {{if .Snippet}}<blockquote style="background:#e3f2fd;padding:15px;border-left:4px solid #2196f3">{{.Snippet}}</blockquote>{{end}}
  <p>We build software delivery tooling for teams exactly in that spot: rapid prototyping,
  an experienced technical team, and a 30-day free trial to see if it fits.</p>
  <p>Interested? Just reply to this email.</p>
  <p>Best regards,<br>The Team</p>
  <hr>
  <p style="font-size:11px;color:#888">You received this because we found your public post about
  software development needs. <a href="{{.UnsubURL}}">Unsubscribe</a> to never hear from us again.</p>
</body>
</html>`),
	},
	domain.CampaignAnnouncement: {
		subject: func(d TemplateData) string {
			return "What's new on the platform this week"
		},
		body: mustTemplate("announce", `<!DOCTYPE html>
<html>
<body style="font-family:-apple-system,Segoe UI,Roboto,sans-serif;max-width:600px;margin:0 auto">
  <p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
  <p>A quick rundown of what shipped recently: release notes, new integrations and the
  features our active teams asked for.</p>
  <p>Log in to take a look, and reply if anything is unclear.</p>
  <p>The Team</p>
  <hr>
  <p style="font-size:11px;color:#888"><a href="{{.UnsubURL}}">Unsubscribe</a></p>
</body>
</html>`),
	},
	domain.CampaignReengagement: {
		subject: func(d TemplateData) string {
			return "Still stuck on anything? We can help"
		},
		body: mustTemplate("reengage", `<!DOCTYPE html>
<html>
<body style="font-family:-apple-system,Segoe UI,Roboto,sans-serif;max-width:600px;margin:0 auto">
  <p>Hi {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
  <p>We noticed you haven't been around lately. If something got in the way, we'd like to
  fix it: tutorials, a walkthrough call, or just an answer to a question.</p>
  <p>Reply to this email and a human will get back to you.</p>
  <p>The Team</p>
  <hr>
  <p style="font-size:11px;color:#888"><a href="{{.UnsubURL}}">Unsubscribe</a></p>
</body>
</html>`),
	},
}

func mustTemplate(name, body string) *template.Template {
	return template.Must(template.New(name).Parse(body))
}

// Render produces the personalized subject and HTML body for one lead.
func Render(campaign domain.Campaign, d TemplateData) (subject, html string, err error) {
	t, ok := campaignTemplates[campaign]
	if !ok {
		return "", "", fmt.Errorf("no template for campaign %q", campaign)
	}
	var buf bytes.Buffer
	if err := t.body.Execute(&buf, d); err != nil {
		return "", "", fmt.Errorf("render %s: %w", campaign, err)
	}
	return t.subject(d), buf.String(), nil
}
