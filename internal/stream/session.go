package stream

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quantfold/pairbot/internal/books"
	"github.com/quantfold/pairbot/internal/detect"
	"github.com/quantfold/pairbot/internal/domain"
	"github.com/quantfold/pairbot/internal/subs"
)

// Sink accepts execution intents from the detection loop. Submit must never
// block; it reports whether the intent was accepted.
type Sink interface {
	Submit(intent domain.ExecutionIntent) bool
}

// Config holds the signal parameters for one session.
type Config struct {
	ProfitThreshold    float64
	ScalpEnabled       bool
	ScalpThresholdPct  float64
	ScalpOrderSize     float64
	ScalpTakeProfitPct float64
	ScalpStopLossPct   float64
	ScalpMaxHold       time.Duration
	MaxTradesPerDay    int
	TickInterval       time.Duration
}

// Session is one market-subscription epoch: a single consumer loop that
// interleaves feed events with a fixed housekeeping tick. A message, once
// dequeued, runs to completion (cache update, pairing attempt, both
// detectors) before the next is considered.
type Session struct {
	cfg      Config
	registry *subs.Registry
	cache    *books.Cache
	pairing  *Pairing
	scalp    *detect.Scalp
	sink     Sink
	mirror   *books.MirrorPump // optional
	logger   *slog.Logger
	now      func() time.Time
}

// NewSession wires a session over shared per-session state. mirror may be nil.
func NewSession(cfg Config, registry *subs.Registry, cache *books.Cache, scalp *detect.Scalp, sink Sink, mirror *books.MirrorPump, logger *slog.Logger) *Session {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &Session{
		cfg:      cfg,
		registry: registry,
		cache:    cache,
		pairing:  NewPairing(registry, cache),
		scalp:    scalp,
		sink:     sink,
		mirror:   mirror,
		logger:   logger.With(slog.String("component", "session")),
		now:      time.Now,
	}
}

// Run consumes the feed until ctx is cancelled or the feed terminates. A
// closed events channel or an event carrying an error ends the session; the
// owner is responsible for rebuilding subscriptions and starting the next
// one. There is no per-message retry here.
func (s *Session) Run(ctx context.Context, events <-chan domain.BookEvent) error {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	s.logger.Info("session started",
		slog.Int("markets", s.registry.Len()),
		slog.Int("instruments", len(s.registry.InstrumentsToSubscribe())),
	)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return domain.ErrFeedTerminated
			}
			if ev.Err != nil {
				return fmt.Errorf("session: feed: %w", ev.Err)
			}
			s.handleUpdate(ev.Snapshot)
		case <-ticker.C:
			s.housekeep()
		}
	}
}

// handleUpdate runs one feed message to completion: cache overwrite, pairing
// attempt, then both detectors on the completed pair.
func (s *Session) handleUpdate(snap domain.BookSnapshot) {
	if s.mirror != nil {
		s.mirror.Offer(snap)
	}

	pair, ok := s.pairing.Apply(snap)
	if !ok {
		return
	}

	if opp, fired := detect.DetectArbitrage(pair, s.cfg.ProfitThreshold); fired {
		opp.ID = uuid.New().String()
		s.logger.Info("arbitrage opportunity",
			slog.String("opp_id", opp.ID),
			slog.String("market", opp.MarketID),
			slog.Float64("yes_ask", opp.YesAsk),
			slog.Float64("no_ask", opp.NoAsk),
			slog.Float64("profit", opp.ProfitFraction),
		)
		s.submit(domain.ExecutionIntent{
			ID:        opp.ID,
			Kind:      domain.IntentArbitrage,
			MarketID:  opp.MarketID,
			Arb:       opp,
			Size:      0, // sized by the execution collaborator
			CreatedAt: s.now().UTC(),
		})
	}

	if !s.cfg.ScalpEnabled {
		return
	}
	if !s.scalp.DetectSignal(pair.MarketID, pair.Yes, s.cfg.ScalpThresholdPct) {
		return
	}
	m, ok := s.registry.Market(pair.MarketID)
	if !ok {
		return
	}
	mid := pair.Yes.MidPrice()
	if err := s.scalp.TryOpenPosition(m, mid, s.cfg.ScalpOrderSize, s.cfg.MaxTradesPerDay); err != nil {
		s.logger.Debug("scalp open rejected",
			slog.String("market", pair.MarketID),
			slog.String("reason", err.Error()),
		)
		return
	}
	s.submit(domain.ExecutionIntent{
		ID:        uuid.New().String(),
		Kind:      domain.IntentScalpOpen,
		MarketID:  pair.MarketID,
		TokenID:   m.YesTokenID,
		Price:     mid,
		Size:      s.cfg.ScalpOrderSize,
		CreatedAt: s.now().UTC(),
	})
}

// housekeep runs on every tick: close open scalp positions that have hit
// take-profit, stop-loss, or the max-hold expiry.
func (s *Session) housekeep() {
	if !s.cfg.ScalpEnabled {
		return
	}
	for _, pos := range s.scalp.OpenPositions() {
		reason := s.exitReason(pos)
		if reason == "" {
			continue
		}

		// Best-effort exit price: latest YES mid, falling back to entry.
		price := pos.EntryPrice
		if snap, ok := s.cache.Get(pos.TokenID); ok {
			if mid := snap.MidPrice(); mid > 0 {
				price = mid
			}
		}

		s.scalp.ClosePosition(pos.MarketID, reason)
		s.submit(domain.ExecutionIntent{
			ID:        uuid.New().String(),
			Kind:      domain.IntentScalpClose,
			MarketID:  pos.MarketID,
			TokenID:   pos.TokenID,
			Price:     price,
			Size:      pos.Size,
			Reason:    reason,
			CreatedAt: s.now().UTC(),
		})
	}
}

// exitReason decides whether a position should be closed and why. Expiry is
// checked first so a stale book can never keep a position alive past max
// hold.
func (s *Session) exitReason(pos domain.ScalpPosition) string {
	if s.cfg.ScalpMaxHold > 0 && s.scalp.IsExpired(pos.MarketID, s.cfg.ScalpMaxHold) {
		return "expired"
	}
	snap, ok := s.cache.Get(pos.TokenID)
	if !ok {
		return ""
	}
	mid := snap.MidPrice()
	if mid <= 0 {
		return ""
	}
	pnl := pos.PnLFraction(mid)
	if s.cfg.ScalpTakeProfitPct > 0 && pnl >= s.cfg.ScalpTakeProfitPct {
		return "take_profit"
	}
	if s.cfg.ScalpStopLossPct > 0 && pnl <= -s.cfg.ScalpStopLossPct {
		return "stop_loss"
	}
	return ""
}

// submit hands an intent to the sink and logs when the sink sheds it.
func (s *Session) submit(intent domain.ExecutionIntent) {
	if s.sink == nil {
		return
	}
	if !s.sink.Submit(intent) {
		s.logger.Warn("execution intent dropped",
			slog.String("intent_id", intent.ID),
			slog.String("kind", string(intent.Kind)),
			slog.String("market", intent.MarketID),
		)
	}
}
