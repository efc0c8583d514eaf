// Package books holds the latest orderbook snapshot per instrument for the
// current session.
package books

import (
	"sync"

	"github.com/quantfold/pairbot/internal/domain"
)

// Cache stores the most recent BookSnapshot per instrument. Last write wins;
// no ordering or versioning is enforced beyond feed arrival order. Readers
// outside the detection loop may call Get/All at any time; critical sections
// are single-key and short.
type Cache struct {
	mu    sync.RWMutex
	books map[string]domain.BookSnapshot
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{books: make(map[string]domain.BookSnapshot)}
}

// Put unconditionally overwrites the snapshot for the instrument.
func (c *Cache) Put(snap domain.BookSnapshot) {
	c.mu.Lock()
	c.books[snap.InstrumentID] = snap
	c.mu.Unlock()
}

// Get returns the most recent snapshot for the instrument, or false if the
// instrument has never been observed.
func (c *Cache) Get(instrumentID string) (domain.BookSnapshot, bool) {
	c.mu.RLock()
	snap, ok := c.books[instrumentID]
	c.mu.RUnlock()
	return snap, ok
}

// Len returns the number of instruments with at least one observation.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.books)
}

// All returns a copy of every cached snapshot, for diagnostics and session
// archiving.
func (c *Cache) All() []domain.BookSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.BookSnapshot, 0, len(c.books))
	for _, snap := range c.books {
		out = append(out, snap)
	}
	return out
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.books = make(map[string]domain.BookSnapshot)
	c.mu.Unlock()
}
