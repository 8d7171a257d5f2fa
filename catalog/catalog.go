// Package catalog maps source ids to their adapters. A Catalog is built once
// at startup and is read-only afterwards, so it needs no locking.
package catalog

import (
	"fmt"

	"github.com/use-agent/harvest/adapter"
	"github.com/use-agent/harvest/models"
)

type entry struct {
	adapter adapter.Adapter
	desc    models.SourceDescriptor
}

// Catalog is an immutable id -> (adapter, descriptor) map that remembers
// registration order.
type Catalog struct {
	byID  map[string]entry
	order []string
}

// New registers every adapter under its descriptor id. It fails on an
// invalid descriptor, a duplicate id, or an adapter whose SupportsFormat
// disagrees with its descriptor.
func New(adapters ...adapter.Adapter) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]entry, len(adapters))}
	for _, a := range adapters {
		desc := a.Describe()
		if err := desc.Validate(); err != nil {
			return nil, fmt.Errorf("catalog: %w", err)
		}
		if _, dup := c.byID[desc.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate source id %q", desc.ID)
		}
		for _, f := range models.AllFormats {
			if a.SupportsFormat(f) != desc.Supports(f) {
				return nil, fmt.Errorf("catalog: source %q: adapter and descriptor disagree on format %q", desc.ID, f)
			}
		}
		c.byID[desc.ID] = entry{adapter: a, desc: desc}
		c.order = append(c.order, desc.ID)
	}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(adapters ...adapter.Adapter) *Catalog {
	c, err := New(adapters...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup returns the adapter and a copy of its descriptor. ok is false when
// id is not registered.
func (c *Catalog) Lookup(id string) (a adapter.Adapter, desc models.SourceDescriptor, ok bool) {
	e, ok := c.byID[id]
	if !ok {
		return nil, models.SourceDescriptor{}, false
	}
	return e.adapter, e.desc.Clone(), true
}

// Enabled returns the enabled descriptors in registration order.
func (c *Catalog) Enabled() []models.SourceDescriptor {
	out := make([]models.SourceDescriptor, 0, len(c.order))
	for _, id := range c.order {
		if d := c.byID[id].desc; d.Enabled {
			out = append(out, d.Clone())
		}
	}
	return out
}

// Len returns the number of registered sources, enabled or not.
func (c *Catalog) Len() int { return len(c.order) }

// IDs returns every registered id in registration order.
func (c *Catalog) IDs() []string {
	return append([]string(nil), c.order...)
}
