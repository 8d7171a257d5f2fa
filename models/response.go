package models

import "time"

// ScrapeResponse is the envelope returned for every scrape attempt.
type ScrapeResponse struct {
	// Success indicates whether the extraction completed without errors.
	Success bool `json:"success"`

	// Data is the formatted payload: the record list for JSON, text for CSV/XML.
	Data any `json:"data,omitempty"`

	// Error is the failure message; populated only when Success is false.
	Error string `json:"error,omitempty"`

	// ErrorCode is the machine-readable error code (see errors.go).
	ErrorCode string `json:"errorCode,omitempty"`

	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata describes the attempt that produced a ScrapeResponse.
type ResponseMetadata struct {
	Source    string    `json:"source"`
	Format    Format    `json:"format"`
	Timestamp time.Time `json:"timestamp"`

	// Duration is the wall time spent on the attempt, in milliseconds.
	Duration int64 `json:"duration"`

	// RecordCount is set on success only.
	RecordCount *int `json:"recordCount,omitempty"`
}

// StatusResponse is the response for GET /api/v1/status.
type StatusResponse struct {
	ActiveSources  int             `json:"activeSources"`
	TotalScrapes   int             `json:"totalScrapes"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
	SystemHealth   string          `json:"systemHealth"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	Uptime        string `json:"uptime"`
	Version       string `json:"version"`
	ActiveSources int    `json:"activeSources"`
}

// ActivityEntry records the outcome of one scrape attempt.
type ActivityEntry struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"sourceId"`
	Format      Format    `json:"format"`
	Timestamp   time.Time `json:"timestamp"`
	Duration    int64     `json:"duration"` // milliseconds
	RecordCount int       `json:"recordCount"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
}
