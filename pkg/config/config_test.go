package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "https://myaccount.puprime.com/login", cfg.Portal.LoginURL)
	assert.Equal(t, "puprime_data", cfg.Mongo.Database)
	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.Stealth)
	assert.Equal(t, 500, cfg.Scrape.MaxPages)
	assert.Equal(t, 3, cfg.Scrape.StallPages)
	assert.Equal(t, 6*time.Hour, cfg.Schedule.Interval)
	assert.Greater(t, cfg.Schedule.FailureCooldown, time.Duration(0))

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.example.com:27017")
	t.Setenv("DATABASE_NAME", "portal_test")
	t.Setenv("PORTAL_EMAIL", "ib@example.com")
	t.Setenv("PORTAL_PASSWORD", "hunter2")
	t.Setenv("PUSCRAPER_HEADLESS", "false")
	t.Setenv("PUSCRAPER_SYNC_INTERVAL", "2h")
	t.Setenv("PUSCRAPER_MAX_PAGES", "75")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "mongodb://db.example.com:27017", cfg.Mongo.URI)
	assert.Equal(t, "portal_test", cfg.Mongo.Database)
	assert.Equal(t, "ib@example.com", cfg.Portal.Email)
	assert.Equal(t, "hunter2", cfg.Portal.Password)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 2*time.Hour, cfg.Schedule.Interval)
	assert.Equal(t, 75, cfg.Scrape.MaxPages)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
portal:
  email: file@example.com
mongo:
  uri: mongodb://filehost:27017
  database: filedb
scrape:
  max_pages: 42
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "file@example.com", cfg.Portal.Email)
	assert.Equal(t, "mongodb://filehost:27017", cfg.Mongo.URI)
	assert.Equal(t, "filedb", cfg.Mongo.Database)
	assert.Equal(t, 42, cfg.Scrape.MaxPages)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFileMissingIsNotAnError(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.LoadFromFile(""))
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("portal: [not a map"), 0o644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty login url", func(c *Config) { c.Portal.LoginURL = "" }},
		{"empty mongo uri", func(c *Config) { c.Mongo.URI = "" }},
		{"empty database", func(c *Config) { c.Mongo.Database = "" }},
		{"zero step timeout", func(c *Config) { c.Browser.StepTimeout = 0 }},
		{"zero max pages", func(c *Config) { c.Scrape.MaxPages = 0 }},
		{"zero stall pages", func(c *Config) { c.Scrape.StallPages = 0 }},
		{"inverted key delays", func(c *Config) { c.Scrape.KeyDelayMax = c.Scrape.KeyDelayMin - time.Millisecond }},
		{"zero interval", func(c *Config) { c.Schedule.Interval = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"email":     "flag@example.com",
		"headless":  false,
		"interval":  90 * time.Minute,
		"addr":      ":9090",
		"log-level": "warn",
	})

	assert.Equal(t, "flag@example.com", cfg.Portal.Email)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 90*time.Minute, cfg.Schedule.Interval)
	assert.Equal(t, ":9090", cfg.API.Addr)
	assert.Equal(t, "warn", cfg.Logging.Level)
}
