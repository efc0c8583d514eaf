package subs

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairbot/internal/domain"
)

func newTestRegistry() *Registry {
	return NewRegistry(slog.New(slog.DiscardHandler))
}

func TestRegisterAndLookup(t *testing.T) {
	r := newTestRegistry()

	err := r.Register(domain.MarketPair{MarketID: "m1", YesTokenID: "yes1", NoTokenID: "no1"})
	require.NoError(t, err)
	require.Equal(t, 1, r.Len())

	m, ok := r.MarketForToken("yes1")
	require.True(t, ok)
	require.Equal(t, "m1", m.MarketID)

	m, ok = r.MarketForToken("no1")
	require.True(t, ok)
	require.Equal(t, "m1", m.MarketID)

	_, ok = r.MarketForToken("unknown")
	require.False(t, ok)

	m, ok = r.Market("m1")
	require.True(t, ok)
	require.Equal(t, "yes1", m.YesTokenID)
}

func TestRegisterRejectsSameInstrument(t *testing.T) {
	r := newTestRegistry()

	err := r.Register(domain.MarketPair{MarketID: "m1", YesTokenID: "tok", NoTokenID: "tok"})
	require.ErrorIs(t, err, domain.ErrSameInstrument)
	require.Equal(t, 0, r.Len())
}

func TestRegisterRejectsBoundInstrument(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.Register(domain.MarketPair{MarketID: "m1", YesTokenID: "yes1", NoTokenID: "no1"}))

	err := r.Register(domain.MarketPair{MarketID: "m2", YesTokenID: "yes1", NoTokenID: "no2"})
	require.ErrorIs(t, err, domain.ErrInstrumentBound)

	// The failed registration must not leave partial state behind.
	_, ok := r.MarketForToken("no2")
	require.False(t, ok)
	require.Equal(t, 1, r.Len())
}

func TestReRegisterReplacesMapping(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.Register(domain.MarketPair{MarketID: "m1", YesTokenID: "yes1", NoTokenID: "no1"}))
	require.NoError(t, r.Register(domain.MarketPair{MarketID: "m1", YesTokenID: "yes2", NoTokenID: "no2"}))

	require.Equal(t, 1, r.Len())

	_, ok := r.MarketForToken("yes1")
	require.False(t, ok)

	m, ok := r.MarketForToken("yes2")
	require.True(t, ok)
	require.Equal(t, "m1", m.MarketID)
}

func TestInstrumentsToSubscribe(t *testing.T) {
	r := newTestRegistry()

	require.Empty(t, r.InstrumentsToSubscribe())

	require.NoError(t, r.Register(domain.MarketPair{MarketID: "m1", YesTokenID: "b", NoTokenID: "a"}))
	require.NoError(t, r.Register(domain.MarketPair{MarketID: "m2", YesTokenID: "d", NoTokenID: "c"}))

	require.Equal(t, []string{"a", "b", "c", "d"}, r.InstrumentsToSubscribe())
}

func TestClear(t *testing.T) {
	r := newTestRegistry()

	require.NoError(t, r.Register(domain.MarketPair{MarketID: "m1", YesTokenID: "yes1", NoTokenID: "no1"}))
	r.Clear()

	require.Equal(t, 0, r.Len())
	_, ok := r.MarketForToken("yes1")
	require.False(t, ok)
}
