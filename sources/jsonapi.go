package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/use-agent/harvest/adapter"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
)

// JSONAPI describes a typed JSON endpoint. T is the decoded response body.
type JSONAPI[T any] struct {
	// MaxLimit is the upstream's own page size cap. Larger requested limits
	// are clamped to it silently.
	MaxLimit int

	// MinItems is the fewest projected records that count as a usable
	// response. Fewer fail with a parse error; zero accepts an empty list.
	MinItems int

	// Request builds the upstream call for the clamped limit.
	Request func(limit int) *engine.FetchRequest

	// Project maps the payload to records. It returns a parse error when the
	// item collection is missing.
	Project func(payload T) ([]models.Record, error)
}

// JSONAdapter calls a JSON API once and projects its item collection into
// normalized records.
type JSONAdapter[T any] struct {
	desc    models.SourceDescriptor
	fetcher engine.Fetcher
	api     JSONAPI[T]
}

// NewJSONAdapter returns an adapter for api.
func NewJSONAdapter[T any](desc models.SourceDescriptor, fetcher engine.Fetcher, api JSONAPI[T]) *JSONAdapter[T] {
	desc.Kind = models.KindJSONAPI
	return &JSONAdapter[T]{desc: desc, fetcher: fetcher, api: api}
}

func (a *JSONAdapter[T]) Describe() models.SourceDescriptor { return a.desc.Clone() }

func (a *JSONAdapter[T]) SupportsFormat(f models.Format) bool {
	return adapter.SupportsFormat(a.desc, f)
}

func (a *JSONAdapter[T]) Scrape(ctx context.Context, opts models.ScrapeOptions) (*models.ScrapeResult, error) {
	if err := adapter.ValidateOptions(opts); err != nil {
		return nil, err
	}
	started := time.Now()
	limit := adapter.ClampLimit(opts, a.api.MaxLimit)

	ctx, cancel := adapter.WithTimeout(ctx, a.desc, opts)
	defer cancel()

	// Precedence: descriptor defaults, then the endpoint's own, then the caller's.
	req := a.api.Request(limit)
	headers := adapter.Headers(a.desc, models.ScrapeOptions{})
	maps.Copy(headers, req.Headers)
	maps.Copy(headers, opts.Headers)
	req.Headers = headers

	res, err := a.fetcher.Fetch(ctx, req)
	if err != nil {
		return nil, adapter.NetworkFailure(err, "fetch "+req.URL)
	}

	var payload T
	if err := json.Unmarshal(res.Body, &payload); err != nil {
		return nil, models.ParseError("unexpected response shape", err)
	}
	records, err := a.api.Project(payload)
	if err != nil {
		return nil, err
	}
	if len(records) < a.api.MinItems {
		return nil, models.ParseError(
			fmt.Sprintf("expected at least %d items, upstream returned %d", a.api.MinItems, len(records)), nil)
	}

	return adapter.NewResult(a.desc, adapter.ApplyLimit(records, opts.WithLimit(limit)), started), nil
}
