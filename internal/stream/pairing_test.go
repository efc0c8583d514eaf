package stream

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairbot/internal/books"
	"github.com/quantfold/pairbot/internal/domain"
	"github.com/quantfold/pairbot/internal/subs"
)

func newPairingFixture(t *testing.T) (*Pairing, *books.Cache) {
	t.Helper()
	registry := subs.NewRegistry(slog.New(slog.DiscardHandler))
	require.NoError(t, registry.Register(domain.MarketPair{
		MarketID: "m1", YesTokenID: "yes1", NoTokenID: "no1",
	}))
	cache := books.NewCache()
	return NewPairing(registry, cache), cache
}

func snap(token string, bid, ask float64) domain.BookSnapshot {
	return domain.BookSnapshot{InstrumentID: token, BestBid: bid, BestAsk: ask}
}

func TestApplyNoPairUntilBothSidesSeen(t *testing.T) {
	p, _ := newPairingFixture(t)

	_, ok := p.Apply(snap("yes1", 0.45, 0.47))
	require.False(t, ok)

	pair, ok := p.Apply(snap("no1", 0.48, 0.50))
	require.True(t, ok)
	require.Equal(t, "m1", pair.MarketID)
	require.Equal(t, "yes1", pair.Yes.InstrumentID)
	require.Equal(t, "no1", pair.No.InstrumentID)
	require.Equal(t, 0.47, pair.Yes.BestAsk)
	require.Equal(t, 0.50, pair.No.BestAsk)
}

func TestApplyFreshSideReplacesCached(t *testing.T) {
	p, _ := newPairingFixture(t)

	p.Apply(snap("yes1", 0.45, 0.47))
	p.Apply(snap("no1", 0.48, 0.50))

	// A fresh YES update pairs with the cached NO book.
	pair, ok := p.Apply(snap("yes1", 0.40, 0.42))
	require.True(t, ok)
	require.Equal(t, 0.42, pair.Yes.BestAsk)
	require.Equal(t, 0.50, pair.No.BestAsk)
}

func TestApplyUnregisteredInstrumentCachedOnly(t *testing.T) {
	p, cache := newPairingFixture(t)

	_, ok := p.Apply(snap("stray", 0.10, 0.12))
	require.False(t, ok)

	// The update is still cached for diagnostics.
	got, ok := cache.Get("stray")
	require.True(t, ok)
	require.Equal(t, 0.12, got.BestAsk)
}
