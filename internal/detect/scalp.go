package detect

import (
	"log/slog"
	"sync"
	"time"

	"github.com/quantfold/pairbot/internal/domain"
)

// Scalp tracks per-market momentum state: a sliding single-sample mid-price
// baseline, the open position lifecycle, and the process-lifetime trade
// budget. Baselines are session-scoped; positions and the budget counter
// survive session changes.
type Scalp struct {
	mu        sync.Mutex
	baselines map[string]float64
	positions map[string]domain.ScalpPosition
	trades    int
	now       func() time.Time
	logger    *slog.Logger
}

// NewScalp creates a momentum detector with an empty baseline set and a zero
// trade counter.
func NewScalp(logger *slog.Logger) *Scalp {
	return &Scalp{
		baselines: make(map[string]float64),
		positions: make(map[string]domain.ScalpPosition),
		now:       time.Now,
		logger:    logger.With(slog.String("component", "scalp_detector")),
	}
}

// DetectSignal observes the market's YES mid-price and reports whether the
// fractional move since the previous observation meets thresholdPct
// (boundary inclusive). The first observation stores the baseline and never
// signals. The baseline is overwritten on every call regardless of firing,
// so the comparison window is always exactly "since the previous call":
// repeated sub-threshold drift never accumulates into a signal.
func (s *Scalp) DetectSignal(marketID string, yes domain.BookSnapshot, thresholdPct float64) bool {
	mid := yes.MidPrice()
	if mid <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	baseline, ok := s.baselines[marketID]
	s.baselines[marketID] = mid
	if !ok || baseline <= 0 {
		return false
	}

	delta := (mid - baseline) / baseline
	if delta < 0 {
		delta = -delta
	}
	fired := delta >= thresholdPct
	if fired {
		s.logger.Info("scalp signal",
			slog.String("market", marketID),
			slog.Float64("baseline", baseline),
			slog.Float64("mid", mid),
		)
	}
	return fired
}

// CanOpenTrade reports whether the trade counter is strictly below the daily
// maximum.
func (s *Scalp) CanOpenTrade(maxTradesPerDay int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades < maxTradesPerDay
}

// OpenPosition unconditionally inserts or replaces the open position for the
// market and increments the trade counter. It does not enforce the budget or
// the at-most-one invariant; callers composing check-then-act should prefer
// TryOpenPosition.
func (s *Scalp) OpenPosition(m domain.MarketPair, entryPrice, size float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openLocked(m, entryPrice, size)
}

// TryOpenPosition atomically checks the trade budget and the absence of an
// existing open position, then opens. It returns ErrBudgetExhausted or
// ErrPositionOpen when rejected.
func (s *Scalp) TryOpenPosition(m domain.MarketPair, entryPrice, size float64, maxTradesPerDay int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.trades >= maxTradesPerDay {
		return domain.ErrBudgetExhausted
	}
	if _, open := s.positions[m.MarketID]; open {
		return domain.ErrPositionOpen
	}
	s.openLocked(m, entryPrice, size)
	return nil
}

// openLocked records the position and bumps the counter. Caller holds s.mu.
func (s *Scalp) openLocked(m domain.MarketPair, entryPrice, size float64) {
	s.positions[m.MarketID] = domain.ScalpPosition{
		MarketID:   m.MarketID,
		TokenID:    m.YesTokenID,
		EntryPrice: entryPrice,
		Size:       size,
		OpenedAt:   s.now(),
	}
	s.trades++
	s.logger.Info("scalp position opened",
		slog.String("market", m.MarketID),
		slog.Float64("entry", entryPrice),
		slog.Float64("size", size),
		slog.Int("trades_today", s.trades),
	)
}

// ClosePosition removes the open position if present. Closing a market with
// no open position is a no-op, never an error. The trade counter is not
// decremented.
func (s *Scalp) ClosePosition(marketID, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.positions[marketID]; !ok {
		return
	}
	delete(s.positions, marketID)
	s.logger.Info("scalp position closed",
		slog.String("market", marketID),
		slog.String("reason", reason),
	)
}

// Position returns the open position for the market, if any.
func (s *Scalp) Position(marketID string) (domain.ScalpPosition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.positions[marketID]
	return pos, ok
}

// OpenPositions returns a copy of every open position.
func (s *Scalp) OpenPositions() []domain.ScalpPosition {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ScalpPosition, 0, len(s.positions))
	for _, pos := range s.positions {
		out = append(out, pos)
	}
	return out
}

// IsExpired reports whether an open position exists and has been held for at
// least maxHold. A market with no open position is simply not expired.
func (s *Scalp) IsExpired(marketID string, maxHold time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.positions[marketID]
	if !ok {
		return false
	}
	return s.now().Sub(pos.OpenedAt) >= maxHold
}

// TradesToday returns the current value of the trade budget counter.
func (s *Scalp) TradesToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.trades
}

// ResetTradeBudget zeroes the trade counter. The reset trigger is an explicit
// external call (e.g. the operator's daily rollover); the detector never
// infers calendar-day logic itself.
func (s *Scalp) ResetTradeBudget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = 0
	s.logger.Info("trade budget reset")
}

// ResetBaselines drops all per-market baselines. Called on session change;
// open positions and the trade counter are deliberately untouched.
func (s *Scalp) ResetBaselines() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.baselines = make(map[string]float64)
}

// SetClock overrides the detector's time source. Tests only.
func (s *Scalp) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}
