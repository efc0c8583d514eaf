// Package executor is the handoff boundary between the detection loop and
// the external execution collaborator: a fixed worker pool that receives
// immutable intents over a channel, applies the execute-stage gates, and
// forwards outcomes to the risk collaborator.
package executor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/quantfold/pairbot/internal/domain"
)

// Config holds the execute-stage parameters. Detection is permissive; these
// gates are the conservative second stage.
type Config struct {
	Workers         int
	QueueSize       int
	RatePerSec      float64
	Burst           int
	Cooldown        time.Duration
	ExecutionSpread float64 // arb gate: total cost must be <= 1 - spread
	MinYesPrice     float64 // leg price floors; 0 disables
	MinNoPrice      float64
}

// Pool runs execution attempts independently of the detection loop. A slow
// or failing attempt never blocks book-update processing: Submit sheds load
// instead of waiting.
type Pool struct {
	cfg      Config
	intents  chan domain.ExecutionIntent
	placer   domain.OrderPlacer
	risk     domain.RiskReporter
	bus      domain.SignalBus        // optional
	store    domain.OpportunityStore // optional
	cooldown *Cooldown
	limiter  *rate.Limiter
	kill     atomic.Bool
	logger   *slog.Logger
}

// NewPool creates a pool. bus and store may be nil; placer must not be.
func NewPool(cfg Config, placer domain.OrderPlacer, risk domain.RiskReporter, bus domain.SignalBus, store domain.OpportunityStore, logger *slog.Logger) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RatePerSec)
		if cfg.Burst < 1 {
			cfg.Burst = 1
		}
	}
	return &Pool{
		cfg:      cfg,
		intents:  make(chan domain.ExecutionIntent, cfg.QueueSize),
		placer:   placer,
		risk:     risk,
		bus:      bus,
		store:    store,
		cooldown: NewCooldown(cfg.Cooldown),
		limiter:  rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		logger:   logger.With(slog.String("component", "executor")),
	}
}

// Submit enqueues an intent without blocking. It returns false when the
// queue is full and the intent was shed.
func (p *Pool) Submit(intent domain.ExecutionIntent) bool {
	select {
	case p.intents <- intent:
		return true
	default:
		return false
	}
}

// SetKillSwitch pauses (true) or resumes (false) execution. Queued and new
// intents are discarded while paused; detection keeps running.
func (p *Pool) SetKillSwitch(on bool) {
	p.kill.Store(on)
	p.logger.Warn("kill switch", slog.Bool("on", on))
}

// Run starts the workers and a periodic cooldown sweep, and blocks until ctx
// is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	p.logger.Info("executor started", slog.Int("workers", p.cfg.Workers))
	defer p.logger.Info("executor stopped")

	var wg sync.WaitGroup
	for i := 0; i < p.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx)
		}()
	}

	sweep := time.NewTicker(30 * time.Second)
	defer sweep.Stop()
	for {
		select {
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		case <-sweep.C:
			p.cooldown.Cleanup()
		}
	}
}

func (p *Pool) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case intent := <-p.intents:
			p.process(ctx, intent)
		}
	}
}

// process runs one intent through the execute-stage pipeline: kill switch,
// cooldown, gates, rate limit, placement, reporting.
func (p *Pool) process(ctx context.Context, intent domain.ExecutionIntent) {
	log := p.logger.With(
		slog.String("intent_id", intent.ID),
		slog.String("kind", string(intent.Kind)),
		slog.String("market", intent.MarketID),
	)

	if p.kill.Load() {
		log.Debug("kill switch on, intent discarded")
		return
	}

	// Position exits always go through; only new exposure is cooled down.
	if intent.Kind != domain.IntentScalpClose && !p.cooldown.Allow(intent.MarketID) {
		log.Debug("market in cooldown, intent discarded")
		return
	}

	if intent.Kind == domain.IntentArbitrage && !p.arbGate(intent.Arb, log) {
		return
	}

	p.journal(ctx, intent, log)

	if err := p.limiter.Wait(ctx); err != nil {
		return
	}

	result, err := p.placer.PlaceOrder(ctx, intent)
	if err != nil {
		log.Error("order placement failed", slog.String("error", err.Error()))
		result = domain.ExecutionResult{
			IntentID:    intent.ID,
			Success:     false,
			Message:     err.Error(),
			CompletedAt: time.Now().UTC(),
		}
	} else {
		log.Info("order placed",
			slog.Bool("success", result.Success),
			slog.String("order_ref", result.OrderRef),
		)
	}

	if result.Success && intent.Kind == domain.IntentArbitrage && p.store != nil {
		if err := p.store.MarkExecuted(ctx, intent.Arb.ID); err != nil {
			log.Warn("mark executed failed", slog.String("error", err.Error()))
		}
	}

	if p.risk != nil {
		p.risk.ReportExecution(ctx, intent, result)
	}
	p.publish(ctx, "executions", result, log)
}

// arbGate applies the execution-spread safety margin and the per-leg price
// floors. Detection already passed the permissive profit threshold; this is
// the stricter gate that decides whether to act.
func (p *Pool) arbGate(opp domain.Opportunity, log *slog.Logger) bool {
	if opp.TotalCost > 1-p.cfg.ExecutionSpread {
		log.Debug("arb rejected by execution spread",
			slog.Float64("total_cost", opp.TotalCost),
			slog.Float64("spread", p.cfg.ExecutionSpread),
		)
		return false
	}
	if p.cfg.MinYesPrice > 0 && opp.YesAsk < p.cfg.MinYesPrice {
		log.Debug("arb rejected by yes price floor", slog.Float64("yes_ask", opp.YesAsk))
		return false
	}
	if p.cfg.MinNoPrice > 0 && opp.NoAsk < p.cfg.MinNoPrice {
		log.Debug("arb rejected by no price floor", slog.Float64("no_ask", opp.NoAsk))
		return false
	}
	return true
}

// journal records the opportunity and publishes it for external observers.
// Failures here never stop the execution attempt.
func (p *Pool) journal(ctx context.Context, intent domain.ExecutionIntent, log *slog.Logger) {
	if intent.Kind == domain.IntentArbitrage && p.store != nil {
		if err := p.store.Insert(ctx, intent.Arb); err != nil {
			log.Warn("opportunity journal failed", slog.String("error", err.Error()))
		}
	}
	p.publish(ctx, "opportunities", intent, log)
}

func (p *Pool) publish(ctx context.Context, channel string, v any, log *slog.Logger) {
	if p.bus == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := p.bus.Publish(ctx, channel, payload); err != nil {
		log.Warn("bus publish failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
	if err := p.bus.StreamAppend(ctx, channel, payload); err != nil {
		log.Warn("bus stream append failed",
			slog.String("channel", channel),
			slog.String("error", err.Error()),
		)
	}
}
