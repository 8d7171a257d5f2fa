package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Server.Port != 8080 || cfg.Server.MaxConcurrent != 8 {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.Browser.Settle != 2*time.Second {
		t.Errorf("settle = %v", cfg.Browser.Settle)
	}
	if cfg.Scraper.MaxTimeout != 120*time.Second {
		t.Errorf("max timeout = %v", cfg.Scraper.MaxTimeout)
	}
	if cfg.Sources.EnableFixture {
		t.Error("fixture source should be off by default")
	}
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("HARVEST_PORT", "9090")
	t.Setenv("HARVEST_BROWSER_SETTLE", "500ms")
	t.Setenv("HARVEST_BLOCKED_RESOURCES", "Image, Stylesheet")
	t.Setenv("HARVEST_FIXTURE_SOURCE", "true")
	t.Setenv("HARVEST_RATE_RPS", "not-a-number")

	cfg := Load()
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Browser.Settle != 500*time.Millisecond {
		t.Errorf("settle = %v", cfg.Browser.Settle)
	}
	if got := cfg.Browser.BlockedResourceTypes; len(got) != 2 || got[1] != "Stylesheet" {
		t.Errorf("blocked = %v", got)
	}
	if !cfg.Sources.EnableFixture {
		t.Error("fixture source not enabled")
	}
	if cfg.RateLimit.RequestsPerSecond != 2.0 {
		t.Errorf("invalid value should fall back, got %v", cfg.RateLimit.RequestsPerSecond)
	}
}

func TestParseOverrides(t *testing.T) {
	doc := []byte(`
[sources.hacker-news]
enabled = false
timeout = "20s"

[sources.quotes.headers]
Cookie = "session=1"
`)
	got, err := ParseOverrides(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hn := got["hacker-news"]
	if hn.Enabled == nil || *hn.Enabled {
		t.Errorf("enabled = %v", hn.Enabled)
	}
	if d, _ := hn.TimeoutDuration(); d != 20*time.Second {
		t.Errorf("timeout = %v", d)
	}
	if got["quotes"].Headers["Cookie"] != "session=1" {
		t.Errorf("headers = %v", got["quotes"].Headers)
	}
	if got["quotes"].Enabled != nil {
		t.Error("unset enabled should stay nil")
	}
}

func TestParseOverrides_Invalid(t *testing.T) {
	for _, doc := range []string{
		`[sources.x]
timeout = "soon"`,
		`[sources.x]
timeout = "-1s"`,
		`not toml at all [`,
	} {
		if _, err := ParseOverrides([]byte(doc)); err == nil {
			t.Errorf("expected error for %q", doc)
		}
	}
}

func TestLoadOverrides_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.toml")
	if err := os.WriteFile(path, []byte("[sources.books]\nenabled = true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load()
	cfg.Sources.File = path
	if err := cfg.LoadOverrides(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o := cfg.Sources.Overrides["books"]; o.Enabled == nil || !*o.Enabled {
		t.Errorf("override = %+v", o)
	}

	cfg.Sources.File = filepath.Join(t.TempDir(), "missing.toml")
	if err := cfg.LoadOverrides(); err == nil {
		t.Error("expected error for missing file")
	}
}
