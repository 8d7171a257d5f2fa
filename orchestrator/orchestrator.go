// Package orchestrator is the request-facing extraction service. It resolves
// a source in the catalog, validates the request, invokes the adapter once,
// formats the result and records every attempt in the activity log.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/use-agent/harvest/activity"
	"github.com/use-agent/harvest/adapter"
	"github.com/use-agent/harvest/catalog"
	"github.com/use-agent/harvest/formatter"
	"github.com/use-agent/harvest/models"
)

// RecentActivitySize is how many entries Status reports.
const RecentActivitySize = 10

// Service dispatches scrape requests. It holds no per-request state; the
// activity log is its only shared mutable dependency.
type Service struct {
	catalog    *catalog.Catalog
	log        *activity.Log
	maxTimeout time.Duration
	notifier   Notifier
}

// Notifier is told about every recorded attempt. Implementations must not
// block.
type Notifier interface {
	Notify(models.ActivityEntry)
}

// New returns a Service. maxTimeout caps the per-call timeout a client may
// request; zero means no cap.
func New(c *catalog.Catalog, log *activity.Log, maxTimeout time.Duration) *Service {
	return &Service{catalog: c, log: log, maxTimeout: maxTimeout}
}

// SetNotifier attaches n; nil detaches. Call before serving requests.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Scrape runs one extraction. It always returns an envelope; on failure the
// typed *models.ScrapeError is returned as well so callers can map it to a
// transport status. The adapter is attempted at most once.
func (s *Service) Scrape(ctx context.Context, req models.ScrapeRequest) (*models.ScrapeResponse, error) {
	started := time.Now()

	a, format, err := s.resolve(req)
	if err != nil {
		return s.fail(req.Source, format, started, err)
	}

	opts := s.clampTimeout(req.Options)
	result, err := a.Scrape(ctx, opts)
	if err != nil {
		return s.fail(req.Source, format, started, err)
	}

	// RecordCount is derived, never trusted.
	result.RecordCount = len(result.Records)

	data, err := formatter.Format(result.Records, format)
	if err != nil {
		return s.fail(req.Source, format, started, err)
	}

	elapsed := time.Since(started)
	count := result.RecordCount
	s.record(models.ActivityEntry{
		SourceID:    req.Source,
		Format:      format,
		Timestamp:   started.UTC(),
		Duration:    elapsed.Milliseconds(),
		RecordCount: count,
		Success:     true,
	})
	slog.Info("scrape completed",
		"source", req.Source,
		"format", format,
		"records", count,
		"duration_ms", elapsed.Milliseconds(),
	)

	return &models.ScrapeResponse{
		Success: true,
		Data:    data,
		Metadata: models.ResponseMetadata{
			Source:      req.Source,
			Format:      format,
			Timestamp:   started.UTC(),
			Duration:    elapsed.Milliseconds(),
			RecordCount: &count,
		},
	}, nil
}

// resolve performs every fail-fast check. None of them invoke the adapter.
func (s *Service) resolve(req models.ScrapeRequest) (adapter.Adapter, models.Format, error) {
	a, desc, ok := s.catalog.Lookup(req.Source)
	if !ok {
		return nil, req.Format, models.SourceNotFoundError(req.Source)
	}
	if !desc.Enabled {
		return nil, req.Format, models.ValidationError("source %q is disabled", req.Source)
	}

	format := desc.DefaultFormat
	if req.Format != "" {
		f, known := models.ParseFormat(string(req.Format))
		if !known || !desc.Supports(f) {
			return nil, f, models.UnsupportedFormatError(req.Source, f)
		}
		format = f
	}

	if err := adapter.ValidateOptions(req.Options); err != nil {
		return nil, format, err
	}
	return a, format, nil
}

func (s *Service) clampTimeout(opts models.ScrapeOptions) models.ScrapeOptions {
	if s.maxTimeout > 0 && opts.TimeoutDuration() > s.maxTimeout {
		return opts.WithTimeout(s.maxTimeout)
	}
	return opts
}

// fail records a failed attempt and builds the failure envelope.
func (s *Service) fail(source string, format models.Format, started time.Time, err error) (*models.ScrapeResponse, error) {
	se := normalize(err)
	elapsed := time.Since(started)

	s.record(models.ActivityEntry{
		SourceID:    source,
		Format:      format,
		Timestamp:   started.UTC(),
		Duration:    elapsed.Milliseconds(),
		RecordCount: 0,
		Success:     false,
		Error:       se.Detail(),
	})
	slog.Warn("scrape failed",
		"source", source,
		"format", format,
		"code", se.Code,
		"duration_ms", elapsed.Milliseconds(),
		"error", se.Detail(),
	)

	return &models.ScrapeResponse{
		Success:   false,
		Error:     se.Detail(),
		ErrorCode: se.Code,
		Metadata: models.ResponseMetadata{
			Source:    source,
			Format:    format,
			Timestamp: started.UTC(),
			Duration:  elapsed.Milliseconds(),
		},
	}, se
}

func (s *Service) record(e models.ActivityEntry) {
	stored := s.log.Append(e)
	if s.notifier != nil {
		s.notifier.Notify(stored)
	}
}

// normalize turns any adapter error into a typed ScrapeError, keeping the
// original message.
func normalize(err error) *models.ScrapeError {
	if se, ok := models.AsScrapeError(err); ok {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return models.NetworkError(err.Error(), err)
	}
	return models.NewScrapeError(models.ErrCodeInternal, err.Error(), nil)
}

// Sources returns the enabled descriptors in catalog order.
func (s *Service) Sources() []models.SourceDescriptor {
	return s.catalog.Enabled()
}

// Describe returns the descriptor registered under id.
func (s *Service) Describe(id string) (models.SourceDescriptor, error) {
	_, desc, ok := s.catalog.Lookup(id)
	if !ok {
		return models.SourceDescriptor{}, models.SourceNotFoundError(id)
	}
	return desc, nil
}

// Status summarises the catalog and recent activity.
func (s *Service) Status() models.StatusResponse {
	return models.StatusResponse{
		ActiveSources:  len(s.catalog.Enabled()),
		TotalScrapes:   s.log.Len(),
		RecentActivity: s.log.Recent(RecentActivitySize),
		SystemHealth:   "healthy",
	}
}
