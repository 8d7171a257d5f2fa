package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// WaitStrategy selects what Navigate waits for after the navigation starts.
type WaitStrategy int

const (
	// WaitDOMReady waits for DOMContentLoaded.
	WaitDOMReady WaitStrategy = iota
	// WaitLoad waits for the window load event.
	WaitLoad
)

func (w WaitStrategy) String() string {
	if w == WaitLoad {
		return "load"
	}
	return "domcontentloaded"
}

// Launcher starts browser processes. Every Launch returns a new, isolated
// browser that the caller owns and must Close.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser is one running browser process.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Page is a single tab bound to the context it was opened with.
type Page interface {
	// Prepare sets the user agent and extra request headers and installs the
	// stealth script. It must be called before Navigate.
	Prepare(userAgent string, headers map[string]string) error
	Navigate(url string, wait WaitStrategy) error
	// Eval runs js (a function expression) in the page and returns its
	// JSON-encoded result.
	Eval(js string, args ...any) ([]byte, error)
	Close() error
}

// IsFrameDetached reports whether err is the transient "frame detached"
// condition Chrome raises when a navigation replaces the frame mid-wait.
func IsFrameDetached(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "detached")
}

// BrowserOptions configures RodLauncher.
type BrowserOptions struct {
	Headless         bool
	NoSandbox        bool
	Bin              string
	Proxy            string
	BlockedResources []string
	BlockAds         bool
}

// RodLauncher launches a fresh Chromium per call through rod's launcher. Each
// browser gets its own user-data directory, removed again on Close.
type RodLauncher struct {
	opts BrowserOptions
}

// NewRodLauncher returns a Launcher backed by rod.
func NewRodLauncher(opts BrowserOptions) *RodLauncher {
	return &RodLauncher{opts: opts}
}

// Launch starts Chromium and connects to it over CDP.
func (r *RodLauncher) Launch(ctx context.Context) (Browser, error) {
	l := launcher.New().
		Context(ctx).
		Headless(r.opts.Headless).
		NoSandbox(r.opts.NoSandbox)

	if r.opts.Bin != "" {
		l = l.Bin(r.opts.Bin)
	}
	if r.opts.Proxy != "" {
		l = l.Proxy(r.opts.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("browser: launch: %w", err)
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	slog.Debug("browser launched", "controlURL", controlURL)

	return &rodBrowser{browser: b, launcher: l, opts: r.opts}, nil
}

type rodBrowser struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     BrowserOptions
}

func (b *rodBrowser) NewPage(ctx context.Context) (Page, error) {
	page, err := b.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("browser: open page: %w", err)
	}
	return &rodPage{raw: page, page: page.Context(ctx), opts: b.opts}, nil
}

// Close disconnects and kills the browser process, then removes its
// user-data directory.
func (b *rodBrowser) Close() error {
	err := b.browser.Close()
	b.launcher.Kill()
	b.launcher.Cleanup()
	if err != nil {
		return fmt.Errorf("browser: close: %w", err)
	}
	return nil
}

type rodPage struct {
	raw    *rod.Page // not bound to the request context, used for cleanup
	page   *rod.Page
	router *rod.HijackRouter
	opts   BrowserOptions
}

func (p *rodPage) Prepare(userAgent string, headers map[string]string) error {
	if _, err := p.page.EvalOnNewDocument(stealth.JS); err != nil {
		slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
	}

	if userAgent != "" {
		if err := p.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      userAgent,
			AcceptLanguage: "en-US,en;q=0.9",
		}); err != nil {
			return fmt.Errorf("browser: set user agent: %w", err)
		}
	}

	if len(headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(headers)}).Call(p.page); err != nil {
			return fmt.Errorf("browser: set headers: %w", err)
		}
	}

	p.router = setupHijack(p.page, p.opts.BlockedResources, p.opts.BlockAds)
	return nil
}

func (p *rodPage) Navigate(url string, wait WaitStrategy) error {
	switch wait {
	case WaitLoad:
		if err := p.page.Navigate(url); err != nil {
			return fmt.Errorf("browser: navigate: %w", err)
		}
		if err := p.page.WaitLoad(); err != nil {
			return fmt.Errorf("browser: wait load: %w", err)
		}
	default:
		// The listener must exist before Navigate or the event can be missed.
		waitDOM := p.page.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)
		if err := p.page.Navigate(url); err != nil {
			return fmt.Errorf("browser: navigate: %w", err)
		}
		waitDOM()
	}
	return nil
}

func (p *rodPage) Eval(js string, args ...any) ([]byte, error) {
	res, err := p.page.Eval(js, args...)
	if err != nil {
		return nil, fmt.Errorf("browser: eval: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("browser: encode eval result: %w", err)
	}
	return raw, nil
}

func (p *rodPage) Close() error {
	if p.router != nil {
		_ = p.router.Stop()
	}
	if err := p.raw.Close(); err != nil {
		return fmt.Errorf("browser: close page: %w", err)
	}
	return nil
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
