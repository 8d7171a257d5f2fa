// Package activity keeps a bounded, in-memory ledger of scrape attempts.
package activity

import (
	"sync"

	"github.com/google/uuid"
	"github.com/use-agent/harvest/models"
)

// DefaultCapacity is the number of entries kept unless configured otherwise.
const DefaultCapacity = 100

// Log is a fixed-capacity ring of ActivityEntry values. Once full, every
// Append evicts the oldest entry. It is safe for concurrent use; appends are
// serialized so eviction stays strictly FIFO. Nothing is persisted.
type Log struct {
	mu      sync.RWMutex
	entries []models.ActivityEntry
	start   int // index of the oldest entry once the ring is full
	total   int // appends since creation, including evicted ones
}

// New creates a Log holding at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{entries: make([]models.ActivityEntry, 0, capacity)}
}

// Append stores e, assigning an id when it has none, and returns the stored
// entry.
func (l *Log) Append(e models.ActivityEntry) models.ActivityEntry {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.total++
	if len(l.entries) < cap(l.entries) {
		l.entries = append(l.entries, e)
		return e
	}
	l.entries[l.start] = e
	l.start = (l.start + 1) % len(l.entries)
	return e
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Total returns the number of appends ever made, including evicted ones.
func (l *Log) Total() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.total
}

// Entries returns a copy of the retained entries, oldest first.
func (l *Log) Entries() []models.ActivityEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.ActivityEntry, 0, len(l.entries))
	out = append(out, l.entries[l.start:]...)
	out = append(out, l.entries[:l.start]...)
	return out
}

// Recent returns up to n entries, newest first.
func (l *Log) Recent(n int) []models.ActivityEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	size := len(l.entries)
	if n > size {
		n = size
	}
	if n <= 0 {
		return []models.ActivityEntry{}
	}
	out := make([]models.ActivityEntry, n)
	for i := 0; i < n; i++ {
		// Newest is just before start in ring order.
		idx := (l.start - 1 - i + 2*size) % size
		out[i] = l.entries[idx]
	}
	return out
}
