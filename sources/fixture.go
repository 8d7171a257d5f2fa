package sources

import (
	"context"
	"time"

	"github.com/use-agent/harvest/adapter"
	"github.com/use-agent/harvest/models"
)

// FixtureAdapter serves a fixed in-memory record set. It never touches the
// network and is used for smoke tests and offline demos.
type FixtureAdapter struct {
	desc    models.SourceDescriptor
	records func() []models.Record
}

// NewFixtureAdapter returns an adapter serving records from fn, which is
// called once per Scrape so callers never share record maps.
func NewFixtureAdapter(desc models.SourceDescriptor, fn func() []models.Record) *FixtureAdapter {
	desc.Kind = models.KindFixture
	return &FixtureAdapter{desc: desc, records: fn}
}

func (a *FixtureAdapter) Describe() models.SourceDescriptor { return a.desc.Clone() }

func (a *FixtureAdapter) SupportsFormat(f models.Format) bool {
	return adapter.SupportsFormat(a.desc, f)
}

func (a *FixtureAdapter) Scrape(ctx context.Context, opts models.ScrapeOptions) (*models.ScrapeResult, error) {
	if err := adapter.ValidateOptions(opts); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, adapter.NetworkFailure(err, "fixture")
	}
	started := time.Now()
	return adapter.NewResult(a.desc, adapter.ApplyLimit(a.records(), opts), started), nil
}

// fixtureRecords is the five-record catalog served by test-fixture.
func fixtureRecords() []models.Record {
	return []models.Record{
		models.RecordOf("id", 1, "name", "Widget", "category", "tools", "price", 9.99, "inStock", true),
		models.RecordOf("id", 2, "name", "Gadget, Deluxe", "category", "tools", "price", 24.5, "inStock", false),
		models.RecordOf("id", 3, "name", "Gizmo", "category", "toys", "price", 4.25, "inStock", true),
		models.RecordOf("id", 4, "name", `The "Thing"`, "category", "misc", "price", 100.0, "inStock", true),
		models.RecordOf("id", 5, "name", "Doohickey", "category", "toys", "price", 0.5, "inStock", false),
	}
}
