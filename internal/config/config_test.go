package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://www.ebay.com/globaldeals/tech", cfg.Scraper.URL)
	assert.Equal(t, 2*time.Second, cfg.Scraper.SettleDelay)
	assert.Equal(t, 15*time.Second, cfg.Scraper.PresenceTimeout)
	assert.Equal(t, 50, cfg.Scraper.MaxScrolls)
	assert.Equal(t, "ebay_tech_deals.csv", cfg.Storage.RawPath)
	assert.Equal(t, "cleaned_ebay_deals.csv", cfg.Storage.CleanPath)
	assert.False(t, cfg.Database.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SCRAPER_URL", "https://example.com/deals")
	t.Setenv("SCRAPER_SETTLE_DELAY", "500ms")
	t.Setenv("SCRAPER_MAX_SCROLLS", "7")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("STORAGE_RAW_PATH", "/tmp/raw.csv")
	t.Setenv("REDIS_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/deals", cfg.Scraper.URL)
	assert.Equal(t, 500*time.Millisecond, cfg.Scraper.SettleDelay)
	assert.Equal(t, 7, cfg.Scraper.MaxScrolls)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "/tmp/raw.csv", cfg.Storage.RawPath)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SCRAPER_MAX_SCROLLS", "many")
	t.Setenv("SCRAPER_SETTLE_DELAY", "2 seconds")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Scraper.MaxScrolls)
	assert.Equal(t, 2*time.Second, cfg.Scraper.SettleDelay)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"relative url", func(c *Config) { c.Scraper.URL = "/deals" }, "absolute URL"},
		{"no scroll bound", func(c *Config) {
			c.Scraper.MaxScrolls = 0
			c.Scraper.MaxScrollDuration = 0
		}, "SCRAPER_MAX_SCROLLS"},
		{"duration bound only", func(c *Config) { c.Scraper.MaxScrolls = 0 }, ""},
		{"zero presence timeout", func(c *Config) { c.Scraper.PresenceTimeout = 0 }, "PRESENCE_TIMEOUT"},
		{"negative settle", func(c *Config) { c.Scraper.SettleDelay = -time.Second }, "negative"},
		{"missing clean path", func(c *Config) { c.Storage.CleanPath = "" }, "STORAGE_"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "port"},
		{"db without name", func(c *Config) {
			c.Database.Enabled = true
			c.Database.Name = ""
		}, "DB_NAME"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)
			tt.modify(cfg)

			err = cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
