package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
)

const steamEval = `{"selector":"a.tab_item","items":[
	{"name":"Alpha","price":"$20.00","discount":"-25%","platform":"win, mac","url":"https://store/1"},
	{"name":"","price":"$5.00","discount":"-10%","platform":"","url":""},
	{"name":"Beta","price":"$10.00","discount":"","platform":"","url":"https://store/2"},
	{"name":"Gamma","price":"","discount":"-50%","platform":"linux","url":"https://store/3"}
]}`

func newSteam(l engine.Launcher) *BrowserAdapter {
	return NewBrowserAdapter(steamDescriptor(), l, time.Millisecond, steamCandidates)
}

func TestBrowserAdapter_FrameDetachedRetriesOnce(t *testing.T) {
	page := &fakePage{
		navErrs:    []error{errors.New("navigation failed: Frame detached")},
		evalResult: steamEval,
	}
	launcher, browser := newFakeBrowser(page)

	res, err := newSteam(launcher).Scrape(context.Background(), models.ScrapeOptions{})
	require.NoError(t, err)

	assert.Equal(t, []engine.WaitStrategy{engine.WaitDOMReady, engine.WaitLoad}, page.strategies,
		"expected exactly one fallback navigation")
	assert.EqualValues(t, 1, page.closes.Load())
	assert.EqualValues(t, 1, browser.closes.Load())
	assert.True(t, page.closedFirst.Load(), "page must close before the browser")
	assert.Equal(t, 3, res.RecordCount)
}

func TestBrowserAdapter_SecondDetachIsNetworkError(t *testing.T) {
	page := &fakePage{
		navErrs: []error{errors.New("frame detached"), errors.New("frame detached")},
	}
	launcher, browser := newFakeBrowser(page)

	_, err := newSteam(launcher).Scrape(context.Background(), models.ScrapeOptions{})
	require.ErrorIs(t, err, models.ErrNetwork)

	assert.Len(t, page.strategies, 2, "fallback must not loop")
	assert.EqualValues(t, 1, page.closes.Load())
	assert.EqualValues(t, 1, browser.closes.Load())
}

func TestBrowserAdapter_OtherNavigationErrorNoRetry(t *testing.T) {
	page := &fakePage{navErrs: []error{errors.New("net::ERR_CONNECTION_REFUSED")}}
	launcher, browser := newFakeBrowser(page)

	_, err := newSteam(launcher).Scrape(context.Background(), models.ScrapeOptions{})
	require.ErrorIs(t, err, models.ErrNetwork)

	assert.Equal(t, []engine.WaitStrategy{engine.WaitDOMReady}, page.strategies)
	assert.EqualValues(t, 1, page.closes.Load())
	assert.EqualValues(t, 1, browser.closes.Load())
}

func TestBrowserAdapter_NoMatchesIsParseError(t *testing.T) {
	page := &fakePage{evalResult: `{"selector":"","items":[]}`}
	launcher, browser := newFakeBrowser(page)

	_, err := newSteam(launcher).Scrape(context.Background(), models.ScrapeOptions{})
	require.ErrorIs(t, err, models.ErrParse)
	assert.EqualValues(t, 1, page.closes.Load())
	assert.EqualValues(t, 1, browser.closes.Load())
}

func TestBrowserAdapter_EvalFailureIsParseError(t *testing.T) {
	page := &fakePage{evalErr: errors.New("TypeError: x is undefined")}
	launcher, browser := newFakeBrowser(page)

	_, err := newSteam(launcher).Scrape(context.Background(), models.ScrapeOptions{})
	require.ErrorIs(t, err, models.ErrParse)
	assert.EqualValues(t, 1, browser.closes.Load())
}

func TestBrowserAdapter_RecordsAndDiscounts(t *testing.T) {
	page := &fakePage{evalResult: steamEval}
	launcher, _ := newFakeBrowser(page)

	res, err := newSteam(launcher).Scrape(context.Background(), models.ScrapeOptions{}.WithLimit(2))
	require.NoError(t, err)
	require.Len(t, res.Records, 2)

	alpha := res.Records[0]
	assert.Equal(t, []string{"name", "originalPrice", "discount", "discountedPrice", "platform", "url"}, alpha.Keys())
	assert.Equal(t, "$15.00", alpha.Text("discountedPrice"))
	assert.Equal(t, "win, mac", alpha.Text("platform"))

	beta := res.Records[1]
	assert.Equal(t, "Beta", beta.Text("name"))
	assert.Equal(t, "", beta.Text("discountedPrice"), "no discount means no computed price")

	assert.Equal(t, engine.ChromeUA, page.userAgent)
	assert.Contains(t, page.headers, "Cookie")
	require.Len(t, page.evalArgs, 1)
	assert.Equal(t, steamCandidates, page.evalArgs[0])
}

func TestBrowserAdapter_InvalidLimitLaunchesNothing(t *testing.T) {
	page := &fakePage{evalResult: steamEval}
	launcher, _ := newFakeBrowser(page)

	_, err := newSteam(launcher).Scrape(context.Background(), models.ScrapeOptions{}.WithLimit(0))
	require.ErrorIs(t, err, models.ErrValidation)
	assert.EqualValues(t, 0, launcher.launches.Load())
}

func TestBrowserAdapter_LaunchFailure(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("chromium not found")}

	_, err := newSteam(launcher).Scrape(context.Background(), models.ScrapeOptions{})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeInternal, models.CodeOf(err))
}

func TestBrowserAdapter_SettleHonoursDeadline(t *testing.T) {
	page := &fakePage{evalResult: steamEval}
	launcher, browser := newFakeBrowser(page)
	a := NewBrowserAdapter(steamDescriptor(), launcher, time.Hour, steamCandidates)

	start := time.Now()
	_, err := a.Scrape(context.Background(), models.ScrapeOptions{}.WithTimeout(30*time.Millisecond))
	require.ErrorIs(t, err, models.ErrNetwork)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.EqualValues(t, 1, browser.closes.Load())
}
