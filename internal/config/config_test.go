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

	assert.Equal(t, "https://www.amazon.in", cfg.Scraper.BaseURL)
	assert.Equal(t, "electronics", cfg.Scraper.Category)
	assert.Equal(t, 3, cfg.Scraper.MaxAttempts)
	assert.Equal(t, 60*time.Second, cfg.Scraper.TitleTimeout)
	assert.Equal(t, 120*time.Second, cfg.Scraper.ReviewTimeout)
	assert.True(t, cfg.Browser.Headless)
	assert.NotEmpty(t, cfg.Browser.UserAgents)

	require.NoError(t, cfg.Validate())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SCRAPER_MAX_ATTEMPTS", "5")
	t.Setenv("SCRAPER_PAUSE_MIN", "1s")
	t.Setenv("BROWSER_HEADLESS", "false")
	t.Setenv("BROWSER_USER_AGENTS", "agent-one,agent-two")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Scraper.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Scraper.PauseMin)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"agent-one", "agent-two"}, cfg.Browser.UserAgents)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "zero attempts",
			mutate:  func(c *Config) { c.Scraper.MaxAttempts = 0 },
			wantErr: "SCRAPER_MAX_ATTEMPTS",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Scraper.ConcurrentLimit = 0 },
			wantErr: "SCRAPER_CONCURRENT_LIMIT",
		},
		{
			name: "inverted retry delay",
			mutate: func(c *Config) {
				c.Scraper.RetryDelayMin = 10 * time.Second
				c.Scraper.RetryDelayMax = time.Second
			},
			wantErr: "SCRAPER_RETRY_DELAY_MIN",
		},
		{
			name: "inverted pause",
			mutate: func(c *Config) {
				c.Scraper.PauseMin = 10 * time.Second
				c.Scraper.PauseMax = time.Second
			},
			wantErr: "SCRAPER_PAUSE_MIN",
		},
		{
			name:    "relative base URL",
			mutate:  func(c *Config) { c.Scraper.BaseURL = "www.amazon.in" },
			wantErr: "SCRAPER_BASE_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			require.NoError(t, err)

			tt.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
