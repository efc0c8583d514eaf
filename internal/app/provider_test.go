package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairbot/internal/config"
)

func TestStaticProviderCurrentMarkets(t *testing.T) {
	p := NewStaticProvider([]config.MarketConfig{
		{MarketID: "m1", Question: "q1", YesTokenID: "yes1", NoTokenID: "no1"},
		{MarketID: "m2", Question: "q2", YesTokenID: "yes2", NoTokenID: "no2"},
	})

	markets, err := p.CurrentMarkets(context.Background())
	require.NoError(t, err)
	require.Len(t, markets, 2)
	require.Equal(t, "m1", markets[0].MarketID)
	require.Equal(t, "yes2", markets[1].YesTokenID)

	// Mutating the returned slice must not affect later answers.
	markets[0].MarketID = "hacked"
	again, err := p.CurrentMarkets(context.Background())
	require.NoError(t, err)
	require.Equal(t, "m1", again[0].MarketID)
}
