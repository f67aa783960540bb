package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBase() Config {
	var cfg Config
	cfg.Outreach.FromEmail = "outreach@example.com"
	cfg.Outreach.SMTPHost = "smtp.example.com"
	return cfg
}

func TestNormalizeFillsDefaults(t *testing.T) {
	cfg, vr := NormalizeAndValidate(validBase())
	assert.True(t, vr.OK(), "errors: %v", vr.Errors)

	assert.Equal(t, 38472, cfg.App.Port)
	assert.Equal(t, 587, cfg.Outreach.SMTPPort)
	assert.Equal(t, 50, cfg.Outreach.ColdPerDay)
	assert.Equal(t, 100, cfg.Outreach.AnnouncePerDay)
	assert.Equal(t, 20, cfg.Outreach.ReengagePerWeek)
	assert.Equal(t, 14, cfg.Outreach.ReengageCooldownDays)
	assert.Equal(t, 7, cfg.Outreach.AnnounceCooldownDays)
	assert.Equal(t, 30, cfg.Outreach.InactiveWindowDays)
	assert.Equal(t, 30, cfg.Outreach.SendsPerMinute)
	assert.Equal(t, 10, cfg.Analytics.TimeoutSeconds)
}

func TestValidateRequiresSender(t *testing.T) {
	var cfg Config
	_, vr := NormalizeAndValidate(cfg)
	assert.False(t, vr.OK())
	assert.Contains(t, vr.Errors, "outreach.from_email is required")
	assert.Contains(t, vr.Errors, "outreach.smtp_host is required")
}

func TestValidateSourcesNeedKeywords(t *testing.T) {
	cfg := validBase()
	cfg.Sources.HackerNews.Enabled = true
	_, vr := NormalizeAndValidate(cfg)
	assert.False(t, vr.OK())

	cfg.Sources.Keywords = []string{"need a developer"}
	_, vr = NormalizeAndValidate(cfg)
	assert.True(t, vr.OK(), "errors: %v", vr.Errors)
}

func TestValidateBoardPages(t *testing.T) {
	cfg := validBase()
	cfg.Sources.Keywords = []string{"x"}
	cfg.Sources.Boards.Enabled = true
	cfg.Sources.Boards.Pages = []BoardPage{{Name: "", URL: "ftp://nope"}}
	_, vr := NormalizeAndValidate(cfg)
	assert.Len(t, vr.Errors, 2)
}

func TestSaveAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")

	cfg := validBase()
	cfg.Sources.Keywords = []string{"need a developer"}
	require.NoError(t, SaveAtomic(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "outreach@example.com", got.Outreach.FromEmail)
	assert.Equal(t, []string{"need a developer"}, got.Sources.Keywords)

	// Overwrite keeps a .bak of the previous content.
	cfg.Outreach.FromEmail = "new@example.com"
	require.NoError(t, SaveAtomic(path, cfg))
	_, err = os.Stat(path + ".bak")
	assert.NoError(t, err)
}

func TestEnsureUserConfigCopiesDefault(t *testing.T) {
	dir := t.TempDir()
	defaultPath := filepath.Join(dir, "default.yml")
	require.NoError(t, os.WriteFile(defaultPath, []byte("app:\n  port: 1234\n"), 0o644))

	userPath, err := EnsureUserConfig(dir, defaultPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yml"), userPath)

	got, err := Load(userPath)
	require.NoError(t, err)
	assert.Equal(t, 1234, got.App.Port)

	// Second call leaves the user copy alone.
	require.NoError(t, os.WriteFile(userPath, []byte("app:\n  port: 9999\n"), 0o644))
	userPath2, err := EnsureUserConfig(dir, defaultPath)
	require.NoError(t, err)
	got, err = Load(userPath2)
	require.NoError(t, err)
	assert.Equal(t, 9999, got.App.Port)
}
