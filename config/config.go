package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Sources   SourcesConfig
	Webhook   WebhookConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// MaxConcurrent is the global ceiling on in-flight scrape requests.
	MaxConcurrent int // default: 8
}

// BrowserConfig controls the browsers launched for rendered sources.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in some containers).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is applied to both the browser and the HTTP engine.
	Proxy string

	// Settle is how long to wait after navigation for client-side rendering.
	Settle time.Duration // default: 2s

	// BlockedResourceTypes lists resource types the browser fails.
	// default: ["Image", "Font", "Media"]
	BlockedResourceTypes []string

	// BlockAds fails requests to known ad and tracking hosts.
	BlockAds bool // default: true
}

// ScraperConfig controls per-call deadlines.
type ScraperConfig struct {
	// DefaultTimeout is used by sources that do not set their own.
	DefaultTimeout time.Duration // default: 30s

	// MaxTimeout is the maximum timeout a client may request.
	MaxTimeout time.Duration // default: 120s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-client rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per client.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// SourcesConfig controls which sources are registered and how.
type SourcesConfig struct {
	// File is an optional TOML file with per-source overrides.
	File string

	// EnableFixture registers the offline test-fixture source as enabled.
	EnableFixture bool // default: false

	// Overrides is keyed by source id. Populated by LoadOverrides.
	Overrides map[string]SourceOverride
}

// WebhookConfig controls scrape outcome notifications.
type WebhookConfig struct {
	// URL receives a POST per scrape attempt; empty disables notifications.
	URL string

	// Secret signs each body with HMAC-SHA256 when set.
	Secret string
}

// SourceOverride adjusts a built-in source at construction time.
type SourceOverride struct {
	Enabled *bool             `toml:"enabled"`
	Timeout string            `toml:"timeout"` // Go duration, e.g. "20s"
	Headers map[string]string `toml:"headers"`
}

// TimeoutDuration parses Timeout; zero when unset.
func (o SourceOverride) TimeoutDuration() (time.Duration, error) {
	if o.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(o.Timeout)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", o.Timeout)
	}
	return d, nil
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	proxy := os.Getenv("HARVEST_PROXY")
	return &Config{
		Server: ServerConfig{
			Host:          envOr("HARVEST_HOST", "0.0.0.0"),
			Port:          envIntOr("HARVEST_PORT", 8080),
			Mode:          envOr("HARVEST_MODE", "release"),
			MaxConcurrent: envIntOr("HARVEST_MAX_CONCURRENT", 8),
		},
		Browser: BrowserConfig{
			Headless:   envBoolOr("HARVEST_HEADLESS", true),
			NoSandbox:  envBoolOr("HARVEST_NO_SANDBOX", false),
			BrowserBin: os.Getenv("HARVEST_BROWSER_BIN"),
			Proxy:      proxy,
			Settle:     envDurationOr("HARVEST_BROWSER_SETTLE", 2*time.Second),
			BlockedResourceTypes: envSliceOr("HARVEST_BLOCKED_RESOURCES", []string{
				"Image", "Font", "Media",
			}),
			BlockAds: envBoolOr("HARVEST_BLOCK_ADS", true),
		},
		Scraper: ScraperConfig{
			DefaultTimeout: envDurationOr("HARVEST_DEFAULT_TIMEOUT", 30*time.Second),
			MaxTimeout:     envDurationOr("HARVEST_MAX_TIMEOUT", 120*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("HARVEST_AUTH_ENABLED", false),
			APIKeys: envSliceOr("HARVEST_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("HARVEST_RATE_RPS", 2.0),
			Burst:             envIntOr("HARVEST_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("HARVEST_LOG_LEVEL", "info"),
			Format: envOr("HARVEST_LOG_FORMAT", "json"),
		},
		Sources: SourcesConfig{
			File:          os.Getenv("HARVEST_SOURCES_FILE"),
			EnableFixture: envBoolOr("HARVEST_FIXTURE_SOURCE", false),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("HARVEST_WEBHOOK_URL"),
			Secret: os.Getenv("HARVEST_WEBHOOK_SECRET"),
		},
	}
}

// LoadOverrides reads Sources.File, if set, into Sources.Overrides.
//
// The file has one table per source id:
//
//	[sources.hacker-news]
//	enabled = false
//	timeout = "20s"
//	headers = { Cookie = "..." }
func (c *Config) LoadOverrides() error {
	if c.Sources.File == "" {
		return nil
	}
	data, err := os.ReadFile(c.Sources.File)
	if err != nil {
		return fmt.Errorf("config: read sources file: %w", err)
	}
	overrides, err := ParseOverrides(data)
	if err != nil {
		return fmt.Errorf("config: %s: %w", c.Sources.File, err)
	}
	c.Sources.Overrides = overrides
	return nil
}

// ParseOverrides decodes a TOML sources document and validates timeouts.
func ParseOverrides(data []byte) (map[string]SourceOverride, error) {
	var doc struct {
		Sources map[string]SourceOverride `toml:"sources"`
	}
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	for id, o := range doc.Sources {
		if _, err := o.TimeoutDuration(); err != nil {
			return nil, fmt.Errorf("source %q: %w", id, err)
		}
	}
	if doc.Sources == nil {
		doc.Sources = map[string]SourceOverride{}
	}
	return doc.Sources, nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
