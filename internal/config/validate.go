package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate fills defaults and reports anything an operator needs
// to fix before a run can send mail.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var vr Validation

	if cfg.App.Port == 0 {
		cfg.App.Port = 38472
	}
	if cfg.App.Port < 0 || cfg.App.Port > 65535 {
		vr.addErr("app.port must be 1..65535")
	}
	if cfg.App.BaseURL == "" {
		vr.addWarn("app.base_url empty; unsubscribe links will be relative")
	}

	o := &cfg.Outreach
	if o.SMTPPort == 0 {
		o.SMTPPort = 587
	}
	if o.ColdPerDay == 0 {
		o.ColdPerDay = 50
	}
	if o.AnnouncePerDay == 0 {
		o.AnnouncePerDay = 100
	}
	if o.ReengagePerWeek == 0 {
		o.ReengagePerWeek = 20
	}
	if o.ReengageCooldownDays == 0 {
		o.ReengageCooldownDays = 14
	}
	if o.AnnounceCooldownDays == 0 {
		o.AnnounceCooldownDays = 7
	}
	if o.InactiveWindowDays == 0 {
		o.InactiveWindowDays = 30
	}
	if o.SendsPerMinute == 0 {
		o.SendsPerMinute = 30
	}
	if o.FromEmail == "" {
		vr.addErr("outreach.from_email is required")
	}
	if o.SMTPHost == "" {
		vr.addErr("outreach.smtp_host is required")
	}
	if o.BCCEmail == "" {
		vr.addWarn("outreach.bcc_email empty; sends will not be monitored")
	}

	for i, p := range cfg.Sources.Boards.Pages {
		if cfg.Sources.Boards.Enabled {
			if p.Name == "" {
				vr.addErr("sources.boards.pages[%d].name is required", i)
			}
			if !strings.HasPrefix(p.URL, "http") {
				vr.addErr("sources.boards.pages[%d].url must be an http(s) URL", i)
			}
		}
	}
	if (cfg.Sources.Boards.Enabled || cfg.Sources.HackerNews.Enabled) && len(cfg.Sources.Keywords) == 0 {
		vr.addErr("sources.keywords must have at least 1 term when a source is enabled")
	}

	if cfg.CRM.Enabled && cfg.CRM.BaseURL == "" {
		cfg.CRM.BaseURL = "https://api.hubapi.com"
	}

	if cfg.Unsubscribe.Enabled {
		if cfg.Unsubscribe.IMAPHost == "" || cfg.Unsubscribe.Username == "" {
			vr.addErr("unsubscribe enabled but missing imap_host/username")
		}
		if cfg.Unsubscribe.Mailbox == "" {
			cfg.Unsubscribe.Mailbox = "INBOX"
		}
	}

	if cfg.Analytics.TimeoutSeconds == 0 {
		cfg.Analytics.TimeoutSeconds = 10
	}
	for i, p := range cfg.Analytics.GAProperties {
		if p.Name == "" || p.PropertyID == "" {
			vr.addErr("analytics.ga_properties[%d] needs both name and property_id", i)
		}
	}

	return cfg, vr
}
