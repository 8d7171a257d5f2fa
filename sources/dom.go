// Package sources holds the adapter variants (DOM, JSON API, headless
// browser, fixture) and the built-in source definitions.
package sources

import (
	"context"
	"time"

	"github.com/use-agent/harvest/adapter"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/extractor"
	"github.com/use-agent/harvest/models"
)

// DOMAdapter fetches one HTML page and extracts the repeating item group
// described by its spec.
type DOMAdapter struct {
	desc    models.SourceDescriptor
	fetcher engine.Fetcher
	spec    *extractor.Compiled
}

// NewDOMAdapter binds a descriptor to an already compiled extraction spec.
func NewDOMAdapter(desc models.SourceDescriptor, fetcher engine.Fetcher, spec *extractor.Compiled) *DOMAdapter {
	desc.Kind = models.KindDOM
	return &DOMAdapter{desc: desc, fetcher: fetcher, spec: spec}
}

func (a *DOMAdapter) Describe() models.SourceDescriptor { return a.desc.Clone() }

func (a *DOMAdapter) SupportsFormat(f models.Format) bool {
	return adapter.SupportsFormat(a.desc, f)
}

// Scrape performs one GET of the source URL. Items missing a required field
// are skipped; too few usable items is a parse error.
func (a *DOMAdapter) Scrape(ctx context.Context, opts models.ScrapeOptions) (*models.ScrapeResult, error) {
	if err := adapter.ValidateOptions(opts); err != nil {
		return nil, err
	}
	started := time.Now()

	ctx, cancel := adapter.WithTimeout(ctx, a.desc, opts)
	defer cancel()

	res, err := a.fetcher.Fetch(ctx, &engine.FetchRequest{
		URL:     a.desc.SourceURL,
		Headers: adapter.Headers(a.desc, opts),
	})
	if err != nil {
		return nil, adapter.NetworkFailure(err, "fetch "+a.desc.SourceURL)
	}

	doc, err := extractor.ParseDocument(res.Body, res.ContentType)
	if err != nil {
		return nil, models.ParseError("response is not parseable html", err)
	}

	base := res.FinalURL
	if base == "" {
		base = a.desc.SourceURL
	}
	records, err := extractor.Run(doc, a.spec, base)
	if err != nil {
		return nil, err
	}

	return adapter.NewResult(a.desc, adapter.ApplyLimit(records, opts), started), nil
}
