// Command harvest serves the extraction API and runs one-off scrapes from
// the command line.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/harvest/activity"
	"github.com/use-agent/harvest/api/handler"
	"github.com/use-agent/harvest/catalog"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/orchestrator"
	"github.com/use-agent/harvest/sources"
	"github.com/use-agent/harvest/webhook"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "harvest",
	Short:   "Structured record extraction from a catalog of web sources",
	Version: version,
	Long: `harvest pulls lists of records from registered web sources (HTML pages,
JSON APIs and browser-rendered storefronts) and returns them as JSON, CSV
or XML, either over HTTP or straight to stdout.`,
	SilenceUsage: true,
}

func main() {
	handler.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildService wires the fetcher, browser launcher, catalog and activity log
// into an orchestrator.
func buildService(cfg *config.Config) (*orchestrator.Service, error) {
	if err := cfg.LoadOverrides(); err != nil {
		return nil, err
	}

	fetcher := engine.NewHTTPEngine(cfg.Browser.Proxy)
	launcher := engine.NewRodLauncher(engine.BrowserOptions{
		Headless:         cfg.Browser.Headless,
		NoSandbox:        cfg.Browser.NoSandbox,
		Bin:              cfg.Browser.BrowserBin,
		Proxy:            cfg.Browser.Proxy,
		BlockedResources: cfg.Browser.BlockedResourceTypes,
		BlockAds:         cfg.Browser.BlockAds,
	})

	c, err := catalog.New(sources.Builtin(cfg, fetcher, launcher)...)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	slog.Debug("catalog ready", "sources", c.Len(), "enabled", len(c.Enabled()))

	svc := orchestrator.New(c, activity.New(activity.DefaultCapacity), cfg.Scraper.MaxTimeout)
	if cfg.Webhook.URL != "" {
		svc.SetNotifier(webhook.New(cfg.Webhook.URL, cfg.Webhook.Secret))
		slog.Info("webhook notifications enabled", "url", cfg.Webhook.URL)
	}
	return svc, nil
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(h))
}
