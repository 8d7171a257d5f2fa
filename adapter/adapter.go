// Package adapter defines the contract every source implements and the
// helper functions adapters compose explicitly: option validation, limits,
// deadlines, header merging and error mapping.
package adapter

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
)

// Adapter fetches and parses one external source.
//
// Scrape fails with a validation error when a limit <= 0 was requested, a
// network error when the upstream is unreachable, non-2xx or times out, and
// a parse error when the upstream payload no longer has the expected shape.
// Implementations hold no cross-request state.
type Adapter interface {
	Describe() models.SourceDescriptor
	SupportsFormat(f models.Format) bool
	Scrape(ctx context.Context, opts models.ScrapeOptions) (*models.ScrapeResult, error)
}

// ValidateOptions checks that any limit or timeout present is positive.
func ValidateOptions(opts models.ScrapeOptions) error {
	if opts.Limit != nil && *opts.Limit <= 0 {
		return models.ValidationError("limit must be positive, got %d", *opts.Limit)
	}
	if opts.Timeout != nil && *opts.Timeout <= 0 {
		return models.ValidationError("timeout must be positive, got %d", *opts.Timeout)
	}
	return nil
}

// ApplyLimit returns the first limit records in source order. Without a
// limit the input is returned unchanged.
func ApplyLimit(records []models.Record, opts models.ScrapeOptions) []models.Record {
	if opts.Limit == nil || *opts.Limit >= len(records) {
		return records
	}
	return records[:*opts.Limit]
}

// ClampLimit returns the limit to request upstream: the caller's limit capped
// at max, or max when none was given.
func ClampLimit(opts models.ScrapeOptions, max int) int {
	if opts.Limit == nil || *opts.Limit > max {
		return max
	}
	return *opts.Limit
}

// Timeout returns the per-call deadline: the request's when given, else the
// descriptor's.
func Timeout(desc models.SourceDescriptor, opts models.ScrapeOptions) time.Duration {
	if d := opts.TimeoutDuration(); d > 0 {
		return d
	}
	return desc.Timeout
}

// WithTimeout derives a context bounded by Timeout(desc, opts).
func WithTimeout(ctx context.Context, desc models.SourceDescriptor, opts models.ScrapeOptions) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, Timeout(desc, opts))
}

// Headers overlays request headers on the descriptor's defaults.
func Headers(desc models.SourceDescriptor, opts models.ScrapeOptions) map[string]string {
	h := make(map[string]string, len(desc.DefaultHeaders)+len(opts.Headers))
	maps.Copy(h, desc.DefaultHeaders)
	maps.Copy(h, opts.Headers)
	return h
}

// SupportsFormat is the descriptor-driven format check adapters delegate to.
func SupportsFormat(desc models.SourceDescriptor, f models.Format) bool {
	return desc.Supports(f)
}

// NewResult builds a ScrapeResult, keeping RecordCount equal to the number
// of records.
func NewResult(desc models.SourceDescriptor, records []models.Record, started time.Time) *models.ScrapeResult {
	if records == nil {
		records = []models.Record{}
	}
	return &models.ScrapeResult{
		Records:     records,
		RecordCount: len(records),
		Duration:    time.Since(started),
		SourceURL:   desc.SourceURL,
		Timestamp:   started.UTC(),
	}
}

// NetworkFailure maps a transport, status or deadline error to a network
// ScrapeError. Errors that already carry a code pass through unchanged.
func NetworkFailure(err error, msg string) error {
	if err == nil {
		return nil
	}
	if _, ok := models.AsScrapeError(err); ok {
		return err
	}

	var se *engine.StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NetworkError(msg+": timed out", err)
	case errors.Is(err, context.Canceled):
		return models.NetworkError(msg+": canceled", err)
	case errors.As(err, &se):
		return models.NetworkError(fmt.Sprintf("%s: upstream returned HTTP %d", msg, se.StatusCode), err)
	default:
		return models.NetworkError(msg, err)
	}
}
