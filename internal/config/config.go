package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prodsight/amazon-review-scraper/internal/browser"
)

type Config struct {
	Server  ServerConfig
	Scraper ScraperConfig
	Browser BrowserConfig
	Cache   CacheConfig
	Review  ReviewConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	BaseURL         string
	Category        string
	MaxAttempts     int
	RetryDelayMin   time.Duration
	RetryDelayMax   time.Duration
	PauseMin        time.Duration
	PauseMax        time.Duration
	TitleTimeout    time.Duration
	ReviewTimeout   time.Duration
	ConcurrentLimit int
}

type BrowserConfig struct {
	Headless       bool
	NavTimeout     time.Duration
	ViewportWidth  int
	ViewportHeight int
	UserAgents     []string
	ProxyServer    string
}

type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type ReviewConfig struct {
	GeminiAPIKey string
	Model        string
	Timeout      time.Duration
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "5000"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 10*time.Minute),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Scraper: ScraperConfig{
			BaseURL:         getEnvOrDefault("SCRAPER_BASE_URL", "https://www.amazon.in"),
			Category:        getEnvOrDefault("SCRAPER_CATEGORY", "electronics"),
			MaxAttempts:     getIntOrDefault("SCRAPER_MAX_ATTEMPTS", 3),
			RetryDelayMin:   getDurationOrDefault("SCRAPER_RETRY_DELAY_MIN", 2*time.Second),
			RetryDelayMax:   getDurationOrDefault("SCRAPER_RETRY_DELAY_MAX", 5*time.Second),
			PauseMin:        getDurationOrDefault("SCRAPER_PAUSE_MIN", 2*time.Second),
			PauseMax:        getDurationOrDefault("SCRAPER_PAUSE_MAX", 5*time.Second),
			TitleTimeout:    getDurationOrDefault("SCRAPER_TITLE_TIMEOUT", 60*time.Second),
			ReviewTimeout:   getDurationOrDefault("SCRAPER_REVIEW_TIMEOUT", 120*time.Second),
			ConcurrentLimit: getIntOrDefault("SCRAPER_CONCURRENT_LIMIT", 2),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			NavTimeout:     getDurationOrDefault("BROWSER_NAV_TIMEOUT", 120*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			UserAgents:     getStringSliceOrDefault("BROWSER_USER_AGENTS", browser.DefaultUserAgents()),
			ProxyServer:    getEnvOrDefault("BROWSER_PROXY", ""),
		},
		Cache: CacheConfig{
			Addr:     getEnvOrDefault("REDIS_ADDR", ""),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       getIntOrDefault("REDIS_DB", 0),
			TTL:      getDurationOrDefault("CACHE_TTL", 15*time.Minute),
		},
		Review: ReviewConfig{
			GeminiAPIKey: getEnvOrDefault("GOOGLE_GEMINI_API_KEY", ""),
			Model:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
			Timeout:      getDurationOrDefault("REVIEW_TIMEOUT", 10*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Scraper.MaxAttempts < 1 {
		return fmt.Errorf("SCRAPER_MAX_ATTEMPTS must be at least 1")
	}

	if c.Scraper.ConcurrentLimit < 1 {
		return fmt.Errorf("SCRAPER_CONCURRENT_LIMIT must be at least 1")
	}

	if c.Scraper.RetryDelayMin > c.Scraper.RetryDelayMax {
		return fmt.Errorf("SCRAPER_RETRY_DELAY_MIN cannot be greater than SCRAPER_RETRY_DELAY_MAX")
	}

	if c.Scraper.PauseMin > c.Scraper.PauseMax {
		return fmt.Errorf("SCRAPER_PAUSE_MIN cannot be greater than SCRAPER_PAUSE_MAX")
	}

	if !strings.HasPrefix(c.Scraper.BaseURL, "http") {
		return fmt.Errorf("SCRAPER_BASE_URL must be an absolute URL")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
