// internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type BoardPage struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

type GAProperty struct {
	Name       string `yaml:"name" json:"name"`               // e.g. "www" / "labs"
	PropertyID string `yaml:"property_id" json:"property_id"` // GA4 numeric id
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
		BaseURL string `yaml:"base_url" json:"base_url"` // public base for unsubscribe links
	} `yaml:"app" json:"app"`

	Outreach struct {
		FromEmail   string `yaml:"from_email" json:"from_email"`
		BCCEmail    string `yaml:"bcc_email" json:"bcc_email"` // monitoring copy on every send
		ReportEmail string `yaml:"report_email" json:"report_email"`

		SMTPHost string `yaml:"smtp_host" json:"smtp_host"`
		SMTPPort int    `yaml:"smtp_port" json:"smtp_port"`
		SMTPUser string `yaml:"smtp_user" json:"smtp_user"`

		ColdPerDay      int `yaml:"cold_per_day" json:"cold_per_day"`
		AnnouncePerDay  int `yaml:"announce_per_day" json:"announce_per_day"`
		ReengagePerWeek int `yaml:"reengage_per_week" json:"reengage_per_week"`

		ReengageCooldownDays int `yaml:"reengage_cooldown_days" json:"reengage_cooldown_days"`
		AnnounceCooldownDays int `yaml:"announce_cooldown_days" json:"announce_cooldown_days"`
		InactiveWindowDays   int `yaml:"inactive_window_days" json:"inactive_window_days"`

		SendsPerMinute int `yaml:"sends_per_minute" json:"sends_per_minute"`
	} `yaml:"outreach" json:"outreach"`

	Sources struct {
		Boards struct {
			Enabled bool        `yaml:"enabled" json:"enabled"`
			Pages   []BoardPage `yaml:"pages" json:"pages"`
		} `yaml:"boards" json:"boards"`
		HackerNews struct {
			Enabled bool `yaml:"enabled" json:"enabled"`
		} `yaml:"hackernews" json:"hackernews"`
		Keywords []string `yaml:"keywords" json:"keywords"`
	} `yaml:"sources" json:"sources"`

	CRM struct {
		Enabled bool   `yaml:"enabled" json:"enabled"`
		BaseURL string `yaml:"base_url" json:"base_url"` // default https://api.hubapi.com
	} `yaml:"crm" json:"crm"`

	Unsubscribe struct {
		Enabled  bool   `yaml:"enabled" json:"enabled"`
		IMAPHost string `yaml:"imap_host" json:"imap_host"`
		Username string `yaml:"username" json:"username"`
		Mailbox  string `yaml:"mailbox" json:"mailbox"`
	} `yaml:"unsubscribe" json:"unsubscribe"`

	Analytics struct {
		TimeoutSeconds int          `yaml:"timeout_seconds" json:"timeout_seconds"`
		GAProperties   []GAProperty `yaml:"ga_properties" json:"ga_properties"`
		YouTube        struct {
			ChannelID string `yaml:"channel_id" json:"channel_id"`
		} `yaml:"youtube" json:"youtube"`
		LinkedIn struct {
			OrganizationID string `yaml:"organization_id" json:"organization_id"`
		} `yaml:"linkedin" json:"linkedin"`
		GoogleAds struct {
			CustomerID string `yaml:"customer_id" json:"customer_id"`
		} `yaml:"googleads" json:"googleads"`
	} `yaml:"analytics" json:"analytics"`

	Report struct {
		Enabled bool `yaml:"enabled" json:"enabled"` // email the daily summary
	} `yaml:"report" json:"report"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
