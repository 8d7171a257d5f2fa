package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	// Client errors: the request itself is wrong.
	ErrCodeSourceNotFound    = "SOURCE_NOT_FOUND"
	ErrCodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	ErrCodeInvalidInput      = "INVALID_INPUT"

	// Upstream errors raised by adapters.
	ErrCodeNetwork = "NETWORK_ERROR" // transient, caller may retry
	ErrCodeParse   = "PARSE_ERROR"   // upstream shape drift, operator-actionable

	// Route-layer errors.
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeOverloaded   = "OVERLOADED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// Is matches another *ScrapeError by code, so errors.Is(err, ErrNetwork)
// works against the sentinel values below.
func (e *ScrapeError) Is(target error) bool {
	t, ok := target.(*ScrapeError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Code == e.Code
}

// Detail returns the human-facing message including the wrapped cause.
func (e *ScrapeError) Detail() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// Sentinels for errors.Is checks. Only the code is compared.
var (
	ErrSourceNotFound    = &ScrapeError{Code: ErrCodeSourceNotFound}
	ErrUnsupportedFormat = &ScrapeError{Code: ErrCodeUnsupportedFormat}
	ErrValidation        = &ScrapeError{Code: ErrCodeInvalidInput}
	ErrNetwork           = &ScrapeError{Code: ErrCodeNetwork}
	ErrParse             = &ScrapeError{Code: ErrCodeParse}
)

// SourceNotFoundError reports an id that is not in the catalog.
func SourceNotFoundError(id string) *ScrapeError {
	return NewScrapeError(ErrCodeSourceNotFound, fmt.Sprintf("source %q not found", id), nil)
}

// UnsupportedFormatError reports a format the source cannot produce.
func UnsupportedFormatError(id string, format Format) *ScrapeError {
	return NewScrapeError(ErrCodeUnsupportedFormat,
		fmt.Sprintf("format %q is not supported by source %q", format, id), nil)
}

// ValidationError reports a malformed request.
func ValidationError(format string, args ...any) *ScrapeError {
	return NewScrapeError(ErrCodeInvalidInput, fmt.Sprintf(format, args...), nil)
}

// NetworkError reports an unreachable, failing or timed-out upstream.
func NetworkError(message string, err error) *ScrapeError {
	return NewScrapeError(ErrCodeNetwork, message, err)
}

// ParseError reports an upstream payload that no longer has the expected shape.
func ParseError(message string, err error) *ScrapeError {
	return NewScrapeError(ErrCodeParse, message, err)
}

// AsScrapeError extracts a *ScrapeError from err's chain.
func AsScrapeError(err error) (*ScrapeError, bool) {
	var se *ScrapeError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// CodeOf returns the code of the first ScrapeError in err's chain,
// or ErrCodeInternal for anything else.
func CodeOf(err error) string {
	if se, ok := AsScrapeError(err); ok {
		return se.Code
	}
	return ErrCodeInternal
}
