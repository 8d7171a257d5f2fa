package sources

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/formatter"
	"github.com/use-agent/harvest/models"
)

func TestBuiltin_DescriptorsValidAndUnique(t *testing.T) {
	cfg := config.Load()
	adapters := Builtin(cfg, &fakeFetcher{}, &fakeLauncher{})

	seen := map[string]bool{}
	for _, a := range adapters {
		d := a.Describe()
		require.NoError(t, d.Validate(), d.ID)
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
		for _, f := range models.AllFormats {
			assert.Equal(t, d.Supports(f), a.SupportsFormat(f), "%s/%s", d.ID, f)
		}
	}
	for _, id := range []string{"hacker-news", "quotes", "books", "go-blog", "devto-articles", "github-repos", "steam-specials", "test-fixture"} {
		assert.True(t, seen[id], "missing %s", id)
	}
}

func TestBuiltin_Overrides(t *testing.T) {
	off := false
	cfg := config.Load()
	cfg.Sources.EnableFixture = true
	cfg.Sources.Overrides = map[string]config.SourceOverride{
		"quotes": {Enabled: &off, Timeout: "3s", Headers: map[string]string{"Cookie": "a=b"}},
	}

	byID := map[string]models.SourceDescriptor{}
	for _, a := range Builtin(cfg, &fakeFetcher{}, &fakeLauncher{}) {
		byID[a.Describe().ID] = a.Describe()
	}

	q := byID["quotes"]
	assert.False(t, q.Enabled)
	assert.Equal(t, 3*time.Second, q.Timeout)
	assert.Equal(t, "a=b", q.DefaultHeaders["Cookie"])
	assert.NotEmpty(t, q.DefaultHeaders["Accept"], "defaults kept alongside override headers")

	assert.True(t, byID["test-fixture"].Enabled)
	assert.True(t, byID["hacker-news"].Enabled)
}

func TestFixture_CSVWithLimit(t *testing.T) {
	res, err := NewFixture(true).Scrape(context.Background(), models.ScrapeOptions{}.WithLimit(3))
	require.NoError(t, err)

	out, err := formatter.Format(res.Records, models.FormatCSV)
	require.NoError(t, err)

	lines := strings.Split(out.(string), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "id,name,category,price,inStock", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,Widget,"))
	assert.True(t, strings.HasPrefix(lines[2], `2,"Gadget, Deluxe",`))
	assert.True(t, strings.HasPrefix(lines[3], "3,Gizmo,"))
}

func TestFixture_FreshRecordsPerCall(t *testing.T) {
	a := NewFixture(true)
	first, err := a.Scrape(context.Background(), models.ScrapeOptions{})
	require.NoError(t, err)
	first.Records[0].Set("name", "mutated")

	second, err := a.Scrape(context.Background(), models.ScrapeOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Widget", second.Records[0].Text("name"))
	assert.Equal(t, 5, second.RecordCount)
}
