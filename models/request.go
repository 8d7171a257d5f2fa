package models

import (
	"math"
	"time"
)

// ScrapeRequest is the payload for POST /api/v1/scrape.
type ScrapeRequest struct {
	// Source is the catalog id of the source to extract from. Required.
	Source string `json:"source" binding:"required"`

	// Format selects the output encoding: "json", "csv" or "xml".
	// Empty means the source's default format.
	Format Format `json:"format,omitempty"`

	// Options are per-call overrides. All fields are optional.
	Options ScrapeOptions `json:"options,omitempty"`
}

// ScrapeOptions tune a single extraction call.
type ScrapeOptions struct {
	// Limit caps the number of returned records. When set it must be positive.
	Limit *int `json:"limit,omitempty"`

	// Timeout is the call deadline in milliseconds. Default: the source's timeout.
	Timeout *int `json:"timeout,omitempty"`

	// Headers are merged over the source's default headers.
	Headers map[string]string `json:"headers,omitempty"`
}

// WithLimit returns a copy of o with Limit set to n.
func (o ScrapeOptions) WithLimit(n int) ScrapeOptions {
	o.Limit = &n
	return o
}

// WithTimeout returns a copy of o with Timeout set to d (rounded to ms).
func (o ScrapeOptions) WithTimeout(d time.Duration) ScrapeOptions {
	ms := int(d.Milliseconds())
	o.Timeout = &ms
	return o
}

// maxTimeoutMs is the largest millisecond count a time.Duration can hold.
const maxTimeoutMs = int64(math.MaxInt64 / int64(time.Millisecond))

// TimeoutDuration returns the requested timeout, or 0 when unset. Values too
// large for a time.Duration saturate at the maximum duration.
func (o ScrapeOptions) TimeoutDuration() time.Duration {
	if o.Timeout == nil {
		return 0
	}
	if int64(*o.Timeout) > maxTimeoutMs {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(*o.Timeout) * time.Millisecond
}

// ScrapeResult is what an adapter returns for one successful call.
// RecordCount always equals len(Records).
type ScrapeResult struct {
	Records     []Record
	RecordCount int
	Duration    time.Duration
	SourceURL   string
	Timestamp   time.Time
}
