package detect

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairbot/internal/domain"
)

func newTestScalp() *Scalp {
	return NewScalp(slog.New(slog.DiscardHandler))
}

func yesBook(bid, ask float64) domain.BookSnapshot {
	return domain.BookSnapshot{InstrumentID: "yes1", BestBid: bid, BestAsk: ask}
}

func testMarket() domain.MarketPair {
	return domain.MarketPair{MarketID: "m1", YesTokenID: "yes1", NoTokenID: "no1"}
}

func TestDetectSignalFirstObservationNeverFires(t *testing.T) {
	s := newTestScalp()
	require.False(t, s.DetectSignal("m1", yesBook(0.49, 0.51), 0.0001))
}

func TestDetectSignalBoundaryInclusive(t *testing.T) {
	s := newTestScalp()

	// Baseline mid 0.50.
	require.False(t, s.DetectSignal("m1", yesBook(0.49, 0.51), 0.01))

	// Mid 0.505 is exactly a 1% move: fires.
	require.True(t, s.DetectSignal("m1", yesBook(0.495, 0.515), 0.01))
}

func TestDetectSignalBaselineSlides(t *testing.T) {
	s := newTestScalp()

	// Baseline 0.50, then three sub-threshold drifts of ~0.8% each. The
	// baseline is overwritten every time, so drift never accumulates.
	require.False(t, s.DetectSignal("m1", yesBook(0.49, 0.51), 0.01))
	require.False(t, s.DetectSignal("m1", yesBook(0.494, 0.514), 0.01))
	require.False(t, s.DetectSignal("m1", yesBook(0.498, 0.518), 0.01))
	require.False(t, s.DetectSignal("m1", yesBook(0.502, 0.522), 0.01))

	// A real 2% jump from the latest baseline fires.
	require.True(t, s.DetectSignal("m1", yesBook(0.515, 0.535), 0.01))
}

func TestDetectSignalDownMoveFires(t *testing.T) {
	s := newTestScalp()
	require.False(t, s.DetectSignal("m1", yesBook(0.49, 0.51), 0.01))
	require.True(t, s.DetectSignal("m1", yesBook(0.475, 0.495), 0.01))
}

func TestDetectSignalUnquotableBookKeepsBaseline(t *testing.T) {
	s := newTestScalp()
	require.False(t, s.DetectSignal("m1", yesBook(0.49, 0.51), 0.01))

	// One-sided book: mid is 0, no signal and no baseline change.
	require.False(t, s.DetectSignal("m1", yesBook(0, 0.51), 0.01))

	// The old 0.50 baseline still applies.
	require.True(t, s.DetectSignal("m1", yesBook(0.505, 0.525), 0.01))
}

func TestTryOpenPositionEnforcesBudgetAndSingleton(t *testing.T) {
	s := newTestScalp()
	m := testMarket()

	require.NoError(t, s.TryOpenPosition(m, 0.50, 1.0, 2))
	require.Equal(t, 1, s.TradesToday())

	err := s.TryOpenPosition(m, 0.51, 1.0, 2)
	require.ErrorIs(t, err, domain.ErrPositionOpen)
	require.Equal(t, 1, s.TradesToday())

	m2 := domain.MarketPair{MarketID: "m2", YesTokenID: "yes2", NoTokenID: "no2"}
	require.NoError(t, s.TryOpenPosition(m2, 0.40, 1.0, 2))

	m3 := domain.MarketPair{MarketID: "m3", YesTokenID: "yes3", NoTokenID: "no3"}
	err = s.TryOpenPosition(m3, 0.30, 1.0, 2)
	require.ErrorIs(t, err, domain.ErrBudgetExhausted)
	require.Equal(t, 2, s.TradesToday())
}

func TestCloseNeverRefundsBudget(t *testing.T) {
	s := newTestScalp()
	m := testMarket()

	require.NoError(t, s.TryOpenPosition(m, 0.50, 1.0, 5))
	s.ClosePosition("m1", "take_profit")
	require.Equal(t, 1, s.TradesToday())

	// Double close is a no-op.
	s.ClosePosition("m1", "take_profit")
	require.Equal(t, 1, s.TradesToday())
	_, ok := s.Position("m1")
	require.False(t, ok)

	// Budget frees only on explicit reset.
	s.ResetTradeBudget()
	require.Equal(t, 0, s.TradesToday())
}

func TestIsExpiredBoundary(t *testing.T) {
	s := newTestScalp()
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	now := base
	s.SetClock(func() time.Time { return now })

	require.NoError(t, s.TryOpenPosition(testMarket(), 0.50, 1.0, 5))

	now = base.Add(89 * time.Second)
	require.False(t, s.IsExpired("m1", 90*time.Second))

	now = base.Add(90 * time.Second)
	require.True(t, s.IsExpired("m1", 90*time.Second))

	// Markets without a position are never expired.
	require.False(t, s.IsExpired("m2", 90*time.Second))
}

func TestResetBaselinesKeepsPositionsAndBudget(t *testing.T) {
	s := newTestScalp()

	require.False(t, s.DetectSignal("m1", yesBook(0.49, 0.51), 0.01))
	require.NoError(t, s.TryOpenPosition(testMarket(), 0.50, 1.0, 5))

	s.ResetBaselines()

	// Baselines are gone: same 2% move no longer fires on first sight.
	require.False(t, s.DetectSignal("m1", yesBook(0.50, 0.52), 0.01))

	// Position and budget survive.
	_, ok := s.Position("m1")
	require.True(t, ok)
	require.Equal(t, 1, s.TradesToday())
}
