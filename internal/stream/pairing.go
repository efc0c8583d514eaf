// Package stream turns the unordered per-instrument update feed into paired
// YES/NO snapshots and drives the per-session detection loop.
package stream

import (
	"github.com/quantfold/pairbot/internal/books"
	"github.com/quantfold/pairbot/internal/domain"
	"github.com/quantfold/pairbot/internal/subs"
)

// Pairing converts a single incoming snapshot into zero or one completed
// pair: the fresh snapshot on the updated side, the last cached snapshot on
// the other. No pair is produced until both sides of a market have been
// observed at least once.
type Pairing struct {
	registry *subs.Registry
	cache    *books.Cache
}

// NewPairing creates a pairing stage over the given registry and cache.
func NewPairing(registry *subs.Registry, cache *books.Cache) *Pairing {
	return &Pairing{registry: registry, cache: cache}
}

// Apply overwrites the cache entry for the snapshot's instrument and attempts
// to complete the pair for its market. Updates for unregistered instruments
// are cached but produce nothing.
func (p *Pairing) Apply(snap domain.BookSnapshot) (domain.Pair, bool) {
	p.cache.Put(snap)

	m, ok := p.registry.MarketForToken(snap.InstrumentID)
	if !ok {
		return domain.Pair{}, false
	}

	if snap.InstrumentID == m.YesTokenID {
		other, ok := p.cache.Get(m.NoTokenID)
		if !ok {
			return domain.Pair{}, false
		}
		return domain.Pair{MarketID: m.MarketID, Yes: snap, No: other}, true
	}

	other, ok := p.cache.Get(m.YesTokenID)
	if !ok {
		return domain.Pair{}, false
	}
	return domain.Pair{MarketID: m.MarketID, Yes: other, No: snap}, true
}
