package sources

import (
	"log/slog"
	"time"

	"github.com/use-agent/harvest/adapter"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
)

var allFormats = []models.Format{models.FormatJSON, models.FormatCSV, models.FormatXML}

// Builtin constructs every known source, applying per-source overrides from
// cfg. The returned order is the catalog's listing order.
func Builtin(cfg *config.Config, fetcher engine.Fetcher, launcher engine.Launcher) []adapter.Adapter {
	o := func(desc models.SourceDescriptor) models.SourceDescriptor {
		return applyOverride(desc, cfg)
	}
	return []adapter.Adapter{
		NewDOMAdapter(o(hackerNewsDescriptor()), fetcher, hackerNewsSpec),
		NewDOMAdapter(o(quotesDescriptor()), fetcher, quotesSpec),
		NewDOMAdapter(o(booksDescriptor()), fetcher, booksSpec),
		NewDOMAdapter(o(goBlogDescriptor()), fetcher, goBlogSpec),
		NewJSONAdapter(o(devtoDescriptor()), fetcher, devtoAPI),
		NewJSONAdapter(o(githubDescriptor()), fetcher, githubAPI),
		NewBrowserAdapter(o(steamDescriptor()), launcher, cfg.Browser.Settle, steamCandidates),
		NewFixtureAdapter(o(FixtureDescriptor(cfg.Sources.EnableFixture)), fixtureRecords),
	}
}

// FixtureDescriptor describes the offline test-fixture source.
func FixtureDescriptor(enabled bool) models.SourceDescriptor {
	return models.SourceDescriptor{
		ID:                   "test-fixture",
		DisplayName:          "Test fixture",
		Description:          "Five static product records served from memory.",
		SourceURL:            "fixture://products",
		Enabled:              enabled,
		SupportedFormats:     allFormats,
		DefaultFormat:        models.FormatJSON,
		EstimatedRecordCount: 5,
		Timeout:              time.Second,
	}
}

// NewFixture returns the test-fixture adapter on its own, for tests and
// offline use.
func NewFixture(enabled bool) *FixtureAdapter {
	return NewFixtureAdapter(FixtureDescriptor(enabled), fixtureRecords)
}

func applyOverride(desc models.SourceDescriptor, cfg *config.Config) models.SourceDescriptor {
	if desc.Timeout <= 0 {
		desc.Timeout = cfg.Scraper.DefaultTimeout
	}
	ov, ok := cfg.Sources.Overrides[desc.ID]
	if !ok {
		return desc
	}
	if ov.Enabled != nil {
		desc.Enabled = *ov.Enabled
	}
	if d, err := ov.TimeoutDuration(); err == nil && d > 0 {
		desc.Timeout = d
	}
	if len(ov.Headers) > 0 {
		merged := make(map[string]string, len(desc.DefaultHeaders)+len(ov.Headers))
		for k, v := range desc.DefaultHeaders {
			merged[k] = v
		}
		for k, v := range ov.Headers {
			merged[k] = v
		}
		desc.DefaultHeaders = merged
	}
	slog.Debug("source override applied", "source", desc.ID, "enabled", desc.Enabled, "timeout", desc.Timeout)
	return desc
}

func htmlHeaders() map[string]string {
	return map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.9",
	}
}
