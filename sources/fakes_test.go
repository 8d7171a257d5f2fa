package sources

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/use-agent/harvest/engine"
)

// fakeFetcher returns a canned response and records every request.
type fakeFetcher struct {
	mu       sync.Mutex
	requests []*engine.FetchRequest
	body     string
	ctype    string
	err      error
}

func (f *fakeFetcher) Fetch(ctx context.Context, req *engine.FetchRequest) (*engine.FetchResult, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &engine.FetchResult{Body: []byte(f.body), StatusCode: 200, ContentType: f.ctype}, nil
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// fakeLauncher hands out one fakeBrowser per Launch.
type fakeLauncher struct {
	launches atomic.Int32
	err      error
	browser  *fakeBrowser
}

func (l *fakeLauncher) Launch(ctx context.Context) (engine.Browser, error) {
	l.launches.Add(1)
	if l.err != nil {
		return nil, l.err
	}
	return l.browser, nil
}

type fakeBrowser struct {
	closes atomic.Int32
	page   *fakePage
}

func (b *fakeBrowser) NewPage(ctx context.Context) (engine.Page, error) {
	return b.page, nil
}

func (b *fakeBrowser) Close() error {
	b.closes.Add(1)
	return nil
}

// fakePage fails navigations with the queued errors, in order.
type fakePage struct {
	mu          sync.Mutex
	navErrs     []error
	strategies  []engine.WaitStrategy
	userAgent   string
	headers     map[string]string
	evalResult  string
	evalErr     error
	evalArgs    []any
	closes      atomic.Int32
	closedFirst *atomic.Bool // set when the page closes before its browser
	browser     *fakeBrowser
}

func (p *fakePage) Prepare(userAgent string, headers map[string]string) error {
	p.userAgent = userAgent
	p.headers = headers
	return nil
}

func (p *fakePage) Navigate(url string, wait engine.WaitStrategy) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.strategies = append(p.strategies, wait)
	if len(p.navErrs) == 0 {
		return nil
	}
	err := p.navErrs[0]
	p.navErrs = p.navErrs[1:]
	return err
}

func (p *fakePage) Eval(js string, args ...any) ([]byte, error) {
	p.evalArgs = args
	if p.evalErr != nil {
		return nil, p.evalErr
	}
	return []byte(p.evalResult), nil
}

func (p *fakePage) Close() error {
	p.closes.Add(1)
	if p.closedFirst != nil && p.browser != nil && p.browser.closes.Load() == 0 {
		p.closedFirst.Store(true)
	}
	return nil
}

func newFakeBrowser(page *fakePage) (*fakeLauncher, *fakeBrowser) {
	b := &fakeBrowser{page: page}
	page.browser = b
	page.closedFirst = &atomic.Bool{}
	return &fakeLauncher{browser: b}, b
}
