package detect

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairbot/internal/domain"
)

func pairWithAsks(yesAsk, noAsk float64) domain.Pair {
	return domain.Pair{
		MarketID: "m1",
		Yes:      domain.BookSnapshot{InstrumentID: "yes1", BestBid: yesAsk - 0.02, BestAsk: yesAsk},
		No:       domain.BookSnapshot{InstrumentID: "no1", BestBid: noAsk - 0.02, BestAsk: noAsk},
	}
}

func TestDetectArbitrageFires(t *testing.T) {
	// 0.47 + 0.50 = 0.97 -> 3% guaranteed profit.
	opp, ok := DetectArbitrage(pairWithAsks(0.47, 0.50), 0.01)
	require.True(t, ok)
	require.Equal(t, "m1", opp.MarketID)
	require.Equal(t, "yes1", opp.YesTokenID)
	require.Equal(t, "no1", opp.NoTokenID)
	require.InDelta(t, 0.97, opp.TotalCost, 1e-9)
	require.InDelta(t, 0.03, opp.ProfitFraction, 1e-9)
}

func TestDetectArbitrageThresholdInclusive(t *testing.T) {
	// Profit exactly equal to the threshold fires.
	_, ok := DetectArbitrage(pairWithAsks(0.47, 0.50), 0.03)
	require.True(t, ok)

	_, ok = DetectArbitrage(pairWithAsks(0.47, 0.50), 0.05)
	require.False(t, ok)
}

func TestDetectArbitrageNoProfit(t *testing.T) {
	_, ok := DetectArbitrage(pairWithAsks(0.52, 0.50), 0.01)
	require.False(t, ok)

	// Zero-sum pricing with zero threshold still needs profit >= 0.
	_, ok = DetectArbitrage(pairWithAsks(0.50, 0.50), 0)
	require.True(t, ok)
}

func TestDetectArbitrageEmptySide(t *testing.T) {
	p := pairWithAsks(0.47, 0.50)
	p.No.BestAsk = 0 // no asks on the NO book
	_, ok := DetectArbitrage(p, 0.01)
	require.False(t, ok)
}
