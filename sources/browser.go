package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/use-agent/harvest/adapter"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/extractor"
	"github.com/use-agent/harvest/models"
)

// Candidate is one selector set tried by the in-page extraction routine.
// Field selectors are relative to each item.
type Candidate struct {
	Item     string `json:"item"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
	Platform string `json:"platform"`
}

// extractJS returns {selector, items} for the first candidate whose item
// selector matches anything. Missing sub-elements read as "".
const extractJS = `(candidates) => {
	const clean = (s) => (s || '').replace(/\s+/g, ' ').trim();
	const text = (root, sel) => {
		if (!sel) return '';
		try {
			const el = root.querySelector(sel);
			return el ? clean(el.textContent) : '';
		} catch (e) {
			return '';
		}
	};
	const platforms = (root, sel) => {
		if (!sel) return '';
		try {
			const seen = [];
			root.querySelectorAll(sel).forEach((el) => {
				const v = clean(el.getAttribute('title') || el.getAttribute('aria-label') || el.className.baseVal || el.className);
				if (v && !seen.includes(v)) seen.push(v);
			});
			return seen.join(', ');
		} catch (e) {
			return '';
		}
	};
	for (const c of candidates) {
		let nodes;
		try {
			nodes = document.querySelectorAll(c.item);
		} catch (e) {
			continue;
		}
		if (nodes.length === 0) continue;
		const items = [];
		nodes.forEach((n) => {
			items.push({
				name: text(n, c.name),
				price: text(n, c.price),
				discount: text(n, c.discount),
				platform: platforms(n, c.platform),
				url: n.href || '',
			});
		});
		return { selector: c.item, items };
	}
	return { selector: '', items: [] };
}`

type evalItem struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	Discount string `json:"discount"`
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type evalResult struct {
	Selector string     `json:"selector"`
	Items    []evalItem `json:"items"`
}

// BrowserAdapter renders a JavaScript storefront in a headless browser and
// extracts priced items. Every call launches and tears down its own browser.
type BrowserAdapter struct {
	desc       models.SourceDescriptor
	launcher   engine.Launcher
	settle     time.Duration
	candidates []Candidate
}

// NewBrowserAdapter returns an adapter that tries candidates in order.
func NewBrowserAdapter(desc models.SourceDescriptor, launcher engine.Launcher, settle time.Duration, candidates []Candidate) *BrowserAdapter {
	desc.Kind = models.KindBrowser
	return &BrowserAdapter{desc: desc, launcher: launcher, settle: settle, candidates: candidates}
}

func (a *BrowserAdapter) Describe() models.SourceDescriptor { return a.desc.Clone() }

func (a *BrowserAdapter) SupportsFormat(f models.Format) bool {
	return adapter.SupportsFormat(a.desc, f)
}

// Scrape runs the browser lifecycle: launch, open and prepare a page,
// navigate (falling back once from DOM-ready to full load when the frame
// detaches), settle, evaluate, and tear down page then browser on every path.
func (a *BrowserAdapter) Scrape(ctx context.Context, opts models.ScrapeOptions) (*models.ScrapeResult, error) {
	if err := adapter.ValidateOptions(opts); err != nil {
		return nil, err
	}
	started := time.Now()

	ctx, cancel := adapter.WithTimeout(ctx, a.desc, opts)
	defer cancel()

	browser, err := a.launcher.Launch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, adapter.NetworkFailure(ctx.Err(), "launch browser")
		}
		return nil, models.NewScrapeError(models.ErrCodeInternal, "failed to launch browser", err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			slog.Warn("browser close failed", "source", a.desc.ID, "error", err)
		}
	}()

	page, err := browser.NewPage(ctx)
	if err != nil {
		return nil, adapter.NetworkFailure(err, "open page")
	}
	defer func() {
		if err := page.Close(); err != nil {
			slog.Warn("page close failed", "source", a.desc.ID, "error", err)
		}
	}()

	if err := page.Prepare(engine.ChromeUA, adapter.Headers(a.desc, opts)); err != nil {
		return nil, adapter.NetworkFailure(err, "prepare page")
	}

	if err := a.navigate(page); err != nil {
		return nil, adapter.NetworkFailure(err, "navigate to "+a.desc.SourceURL)
	}

	// Fixed settle interval; there is no reliable completion signal.
	timer := time.NewTimer(a.settle)
	select {
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		return nil, adapter.NetworkFailure(ctx.Err(), "waiting for page to render")
	}

	raw, err := page.Eval(extractJS, a.candidates)
	if err != nil {
		if ctx.Err() != nil {
			return nil, adapter.NetworkFailure(ctx.Err(), "evaluate extraction")
		}
		return nil, models.ParseError("extraction routine failed", err)
	}

	var out evalResult
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, models.ParseError("unexpected extraction result", err)
	}

	records := make([]models.Record, 0, len(out.Items))
	for _, it := range out.Items {
		if it.Name == "" {
			continue
		}
		records = append(records, itemRecord(it))
	}
	if len(records) == 0 {
		return nil, models.ParseError(
			fmt.Sprintf("no items matched any of %d candidate selectors", len(a.candidates)), nil)
	}
	slog.Debug("browser extraction matched", "source", a.desc.ID, "selector", out.Selector, "items", len(records))

	return adapter.NewResult(a.desc, adapter.ApplyLimit(records, opts), started), nil
}

// navigate tries DOM-ready first and, only on a detached frame, full load
// once more.
func (a *BrowserAdapter) navigate(page engine.Page) error {
	err := page.Navigate(a.desc.SourceURL, engine.WaitDOMReady)
	if err == nil || !engine.IsFrameDetached(err) {
		return err
	}
	slog.Warn("frame detached during navigation, retrying with full load",
		"source", a.desc.ID, "error", err)
	return page.Navigate(a.desc.SourceURL, engine.WaitLoad)
}

func itemRecord(it evalItem) models.Record {
	discounted, _ := extractor.DiscountedPrice(it.Price, it.Discount)
	return models.RecordOf(
		"name", it.Name,
		"originalPrice", it.Price,
		"discount", it.Discount,
		"discountedPrice", discounted,
		"platform", it.Platform,
		"url", it.URL,
	)
}
