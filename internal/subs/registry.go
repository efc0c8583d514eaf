// Package subs maps markets to their YES/NO instruments and derives the
// instrument set a session must subscribe to.
package subs

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/quantfold/pairbot/internal/domain"
)

// Registry holds the market -> (yes, no) instrument mapping for the current
// session. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	markets map[string]domain.MarketPair
	byToken map[string]string // instrument -> market ID
	logger  *slog.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		markets: make(map[string]domain.MarketPair),
		byToken: make(map[string]string),
		logger:  logger.With(slog.String("component", "subs_registry")),
	}
}

// Register upserts the mapping for one market. It rejects a market whose YES
// and NO instruments are identical, and an instrument that is already bound
// to a different market: one instrument must never map to two markets.
// Re-registering the same market replaces its prior mapping.
func (r *Registry) Register(m domain.MarketPair) error {
	if m.YesTokenID == m.NoTokenID {
		return fmt.Errorf("subs: register %s: %w", m.MarketID, domain.ErrSameInstrument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tok := range []string{m.YesTokenID, m.NoTokenID} {
		if owner, ok := r.byToken[tok]; ok && owner != m.MarketID {
			return fmt.Errorf("subs: register %s: token %s: %w", m.MarketID, tok, domain.ErrInstrumentBound)
		}
	}

	if prev, ok := r.markets[m.MarketID]; ok {
		delete(r.byToken, prev.YesTokenID)
		delete(r.byToken, prev.NoTokenID)
	}

	r.markets[m.MarketID] = m
	r.byToken[m.YesTokenID] = m.MarketID
	r.byToken[m.NoTokenID] = m.MarketID

	r.logger.Info("market registered",
		slog.String("market", m.MarketID),
		slog.String("yes", m.YesTokenID),
		slog.String("no", m.NoTokenID),
	)
	return nil
}

// MarketForToken returns the market owning the given instrument.
func (r *Registry) MarketForToken(tokenID string) (domain.MarketPair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byToken[tokenID]
	if !ok {
		return domain.MarketPair{}, false
	}
	return r.markets[id], true
}

// Market returns the registered mapping for a market ID.
func (r *Registry) Market(marketID string) (domain.MarketPair, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.markets[marketID]
	return m, ok
}

// Markets returns all registered market pairs, ordered by market ID.
func (r *Registry) Markets() []domain.MarketPair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.MarketPair, 0, len(r.markets))
	for _, m := range r.markets {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MarketID < out[j].MarketID })
	return out
}

// InstrumentsToSubscribe returns the union of YES/NO instruments across all
// registered markets, sorted for deterministic subscription payloads. An
// empty registry yields an empty slice.
func (r *Registry) InstrumentsToSubscribe() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byToken))
	for tok := range r.byToken {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered markets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.markets)
}

// Clear drops all registrations. Pairing attempts for now-unregistered
// markets silently stop producing pairs afterwards.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markets = make(map[string]domain.MarketPair)
	r.byToken = make(map[string]string)
}
