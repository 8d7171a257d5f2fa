// Package engine holds the fetch engines adapters use to reach upstream
// sources: a plain HTTP engine with a Chrome TLS fingerprint, and a headless
// browser launcher built on rod.
package engine

import (
	"context"
	"time"
)

// Fetcher is implemented by HTTPEngine. Adapters depend on this interface so
// tests can count or fake upstream calls.
type Fetcher interface {
	Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error)
}

// FetchRequest contains everything an engine needs to fetch a resource.
type FetchRequest struct {
	Method  string // default GET
	URL     string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration // 0 means rely on ctx only
}

// FetchResult is the output of a successful fetch.
type FetchResult struct {
	Body        []byte
	StatusCode  int
	ContentType string
	FinalURL    string
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req *FetchRequest) (*FetchResult, error)

func (f FetcherFunc) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	return f(ctx, req)
}
