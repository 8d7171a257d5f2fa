package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/harvest/adapter"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/models"
	"github.com/use-agent/harvest/sources"
)

type stubAdapter struct {
	desc    models.SourceDescriptor
	formats []models.Format // what SupportsFormat answers; nil means the descriptor's
}

func (s stubAdapter) Describe() models.SourceDescriptor { return s.desc.Clone() }

func (s stubAdapter) SupportsFormat(f models.Format) bool {
	list := s.formats
	if list == nil {
		list = s.desc.SupportedFormats
	}
	for _, x := range list {
		if x == f {
			return true
		}
	}
	return false
}

func (s stubAdapter) Scrape(context.Context, models.ScrapeOptions) (*models.ScrapeResult, error) {
	return &models.ScrapeResult{}, nil
}

func stub(id string, enabled bool) stubAdapter {
	return stubAdapter{desc: models.SourceDescriptor{
		ID:               id,
		Enabled:          enabled,
		SupportedFormats: []models.Format{models.FormatJSON, models.FormatCSV},
		DefaultFormat:    models.FormatJSON,
		Timeout:          time.Second,
	}}
}

func TestLookup_RoundTripsEveryID(t *testing.T) {
	noFetch := engine.FetcherFunc(func(context.Context, *engine.FetchRequest) (*engine.FetchResult, error) {
		t.Fatal("catalog construction must not fetch")
		return nil, nil
	})
	c, err := New(sources.Builtin(config.Load(), noFetch, engine.NewRodLauncher(engine.BrowserOptions{}))...)
	require.NoError(t, err)

	for _, id := range c.IDs() {
		a, desc, ok := c.Lookup(id)
		require.True(t, ok, id)
		assert.Equal(t, id, a.Describe().ID)
		assert.Equal(t, id, desc.ID)
	}
	assert.Equal(t, 8, c.Len())
}

func TestLookup_Missing(t *testing.T) {
	c := MustNew(stub("a", true))
	a, desc, ok := c.Lookup("does-not-exist")
	assert.False(t, ok)
	assert.Nil(t, a)
	assert.Empty(t, desc.ID)
}

func TestEnabled_RegistrationOrder(t *testing.T) {
	c := MustNew(stub("z", true), stub("off", false), stub("a", true), stub("m", true))

	var ids []string
	for _, d := range c.Enabled() {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"z", "a", "m"}, ids)
	assert.Equal(t, []string{"z", "off", "a", "m"}, c.IDs())
}

func TestNew_Rejects(t *testing.T) {
	invalid := stub("bad", true)
	invalid.desc.DefaultFormat = models.FormatXML

	mismatch := stub("liar", true)
	mismatch.formats = models.AllFormats

	tests := []struct {
		name     string
		adapters []stubAdapter
	}{
		{"duplicate id", []stubAdapter{stub("a", true), stub("a", false)}},
		{"invalid descriptor", []stubAdapter{invalid}},
		{"format mismatch", []stubAdapter{mismatch}},
		{"empty id", []stubAdapter{stub("", true)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var list []adapter.Adapter
			for _, a := range tt.adapters {
				list = append(list, a)
			}
			_, err := New(list...)
			assert.Error(t, err)
		})
	}
}

func TestDescriptorsAreCopies(t *testing.T) {
	c := MustNew(stub("a", true))
	_, d, _ := c.Lookup("a")
	d.SupportedFormats[0] = models.FormatXML

	_, again, _ := c.Lookup("a")
	assert.Equal(t, models.FormatJSON, again.SupportedFormats[0])
}
