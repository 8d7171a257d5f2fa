package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Format is an output encoding for scraped records.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXML  Format = "xml"
)

// AllFormats lists every known format in a stable order.
var AllFormats = []Format{FormatJSON, FormatCSV, FormatXML}

// ParseFormat normalises s and reports whether it names a known format.
func ParseFormat(s string) (Format, bool) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatJSON, FormatCSV, FormatXML:
		return f, true
	default:
		return f, false
	}
}

// SourceKind identifies the adapter variant behind a source.
type SourceKind string

const (
	KindDOM     SourceKind = "dom"
	KindJSONAPI SourceKind = "json-api"
	KindBrowser SourceKind = "browser"
	KindFixture SourceKind = "fixture"
)

// SourceDescriptor describes one registered source. It is built once when the
// adapter is constructed and never mutated afterwards.
type SourceDescriptor struct {
	ID                   string            `json:"id"`
	DisplayName          string            `json:"displayName"`
	Description          string            `json:"description"`
	SourceURL            string            `json:"sourceUrl"`
	Kind                 SourceKind        `json:"kind"`
	Enabled              bool              `json:"enabled"`
	SupportedFormats     []Format          `json:"supportedFormats"`
	DefaultFormat        Format            `json:"defaultFormat"`
	EstimatedRecordCount int               `json:"estimatedRecordCount"`
	Timeout              time.Duration     `json:"-"`
	DefaultHeaders       map[string]string `json:"-"`
}

// Supports reports whether f is one of the descriptor's formats.
func (d SourceDescriptor) Supports(f Format) bool {
	for _, sf := range d.SupportedFormats {
		if sf == f {
			return true
		}
	}
	return false
}

// Validate checks the descriptor invariants.
func (d SourceDescriptor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("descriptor: empty id")
	}
	if len(d.SupportedFormats) == 0 {
		return fmt.Errorf("descriptor %q: no supported formats", d.ID)
	}
	seen := make(map[Format]struct{}, len(d.SupportedFormats))
	for _, f := range d.SupportedFormats {
		if _, ok := ParseFormat(string(f)); !ok {
			return fmt.Errorf("descriptor %q: unknown format %q", d.ID, f)
		}
		if _, dup := seen[f]; dup {
			return fmt.Errorf("descriptor %q: duplicate format %q", d.ID, f)
		}
		seen[f] = struct{}{}
	}
	if !d.Supports(d.DefaultFormat) {
		return fmt.Errorf("descriptor %q: default format %q not in supported formats", d.ID, d.DefaultFormat)
	}
	if d.Timeout <= 0 {
		return fmt.Errorf("descriptor %q: timeout must be positive", d.ID)
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate the adapter's descriptor.
func (d SourceDescriptor) Clone() SourceDescriptor {
	c := d
	c.SupportedFormats = append([]Format(nil), d.SupportedFormats...)
	if d.DefaultHeaders != nil {
		c.DefaultHeaders = make(map[string]string, len(d.DefaultHeaders))
		for k, v := range d.DefaultHeaders {
			c.DefaultHeaders[k] = v
		}
	}
	return c
}

// MarshalJSON renders the timeout in milliseconds, matching request options.
func (d SourceDescriptor) MarshalJSON() ([]byte, error) {
	type plain SourceDescriptor
	return json.Marshal(struct {
		plain
		TimeoutMs int64 `json:"timeoutMs"`
	}{plain(d), d.Timeout.Milliseconds()})
}
