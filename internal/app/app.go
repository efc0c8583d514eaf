// Package app provides the top-level application lifecycle for the pair bot.
// It wires infrastructure, starts the execution pool and book mirror, and
// runs the session loop: one market subscription epoch after another until
// shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	s3blob "github.com/quantfold/pairbot/internal/blob/s3"
	"github.com/quantfold/pairbot/internal/books"
	"github.com/quantfold/pairbot/internal/config"
	"github.com/quantfold/pairbot/internal/detect"
	"github.com/quantfold/pairbot/internal/domain"
	"github.com/quantfold/pairbot/internal/executor"
	"github.com/quantfold/pairbot/internal/feed"
	"github.com/quantfold/pairbot/internal/notify"
	"github.com/quantfold/pairbot/internal/stream"
	"github.com/quantfold/pairbot/internal/subs"
)

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration and logger.
func New(cfg *config.Config, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. It wires all dependencies, starts the
// long-lived goroutines, and blocks until the context is cancelled or a
// fatal fault occurs.
func (a *App) Run(ctx context.Context) error {
	a.logger.InfoContext(ctx, "starting application",
		slog.Int("markets", len(a.cfg.Markets)),
		slog.String("log_level", a.cfg.LogLevel),
	)

	deps, cleanup, err := Wire(ctx, a.cfg, a.logger)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	// Process-lifetime state: the momentum detector carries open positions
	// and the trade budget across sessions.
	scalp := detect.NewScalp(a.logger)

	risk := executor.Reporters{executor.NewLogRiskReporter(a.logger)}
	var senders []notify.Sender
	if a.cfg.Notify.TelegramToken != "" && a.cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(a.cfg.Notify.TelegramToken, a.cfg.Notify.TelegramChatID))
	}
	if a.cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(a.cfg.Notify.DiscordWebhookURL))
	}
	if len(senders) > 0 {
		risk = append(risk, notify.NewExecutionReporter(senders, a.cfg.Notify.Events, a.logger))
	}

	pool := executor.NewPool(executor.Config{
		Workers:         a.cfg.Executor.Workers,
		QueueSize:       a.cfg.Executor.QueueSize,
		RatePerSec:      a.cfg.Executor.RatePerSec,
		Burst:           a.cfg.Executor.Burst,
		Cooldown:        a.cfg.Executor.Cooldown.Duration,
		ExecutionSpread: a.cfg.Executor.ExecutionSpread,
		MinYesPrice:     a.cfg.Executor.MinYesPrice,
		MinNoPrice:      a.cfg.Executor.MinNoPrice,
	},
		executor.NewDryRunPlacer(a.logger),
		risk,
		deps.Bus,
		deps.Opportunities,
		a.logger,
	)
	if a.cfg.Executor.KillSwitch {
		pool.SetKillSwitch(true)
	}

	var pump *books.MirrorPump
	if deps.Mirror != nil {
		pump = books.NewMirrorPump(deps.Mirror, 0, a.logger)
	}

	var archiver *s3blob.Archiver
	if a.cfg.Session.ArchiveSessions && deps.Blob != nil {
		archiver = s3blob.NewArchiver(deps.Blob, a.cfg.S3.Prefix, a.logger)
	}

	provider := NewStaticProvider(a.cfg.Markets)
	wsFeed := feed.NewWSFeed(a.cfg.Feed.WsHost, a.cfg.Feed.PingInterval.Duration, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return pool.Run(ctx)
	})
	if pump != nil {
		g.Go(func() error {
			return pump.Run(ctx)
		})
	}
	g.Go(func() error {
		return a.sessionLoop(ctx, provider, wsFeed, scalp, pool, pump, archiver)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// sessionLoop runs subscription epochs back to back. Each session gets a
// fresh registry, book cache, and momentum baselines; a feed fault ends the
// session and the loop rebuilds everything from the provider's current
// market set after the refresh pause.
func (a *App) sessionLoop(
	ctx context.Context,
	provider domain.MarketProvider,
	wsFeed *feed.WSFeed,
	scalp *detect.Scalp,
	pool *executor.Pool,
	pump *books.MirrorPump,
	archiver *s3blob.Archiver,
) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := a.runSession(ctx, provider, wsFeed, scalp, pool, pump, archiver)
		switch {
		case errors.Is(err, context.Canceled):
			return err
		case errors.Is(err, domain.ErrNoInstruments):
			// Nothing to subscribe to: with a static market set this
			// cannot heal itself, so treat it as fatal.
			return err
		case err != nil:
			a.logger.Warn("session ended", slog.String("reason", err.Error()))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.cfg.Session.RefreshInterval.Duration):
		}
	}
}

// runSession builds one subscription epoch and consumes it to completion.
func (a *App) runSession(
	ctx context.Context,
	provider domain.MarketProvider,
	wsFeed *feed.WSFeed,
	scalp *detect.Scalp,
	pool *executor.Pool,
	pump *books.MirrorPump,
	archiver *s3blob.Archiver,
) error {
	markets, err := provider.CurrentMarkets(ctx)
	if err != nil {
		return fmt.Errorf("app: current markets: %w", err)
	}

	registry := subs.NewRegistry(a.logger)
	for _, m := range markets {
		if err := registry.Register(m); err != nil {
			a.logger.Warn("market rejected",
				slog.String("market", m.MarketID),
				slog.String("reason", err.Error()),
			)
		}
	}
	if registry.Len() == 0 {
		return fmt.Errorf("app: no subscribable markets: %w", domain.ErrNoInstruments)
	}

	cache := books.NewCache()
	sessionID := uuid.New().String()
	startedAt := time.Now().UTC()

	events, closeFeed, err := wsFeed.Open(ctx, registry.InstrumentsToSubscribe())
	if err != nil {
		return err
	}
	defer closeFeed()

	session := stream.NewSession(stream.Config{
		ProfitThreshold:    a.cfg.Detector.ProfitThreshold,
		ScalpEnabled:       a.cfg.Scalp.Enabled,
		ScalpThresholdPct:  a.cfg.Scalp.ThresholdPct,
		ScalpOrderSize:     a.cfg.Scalp.OrderSize,
		ScalpTakeProfitPct: a.cfg.Scalp.TakeProfitPct,
		ScalpStopLossPct:   a.cfg.Scalp.StopLossPct,
		ScalpMaxHold:       a.cfg.Scalp.MaxHold.Duration,
		MaxTradesPerDay:    a.cfg.Scalp.MaxTradesPerDay,
		TickInterval:       a.cfg.Session.TickInterval.Duration,
	}, registry, cache, scalp, pool, pump, a.logger)

	a.logger.Info("session opened", slog.String("session_id", sessionID))
	runErr := session.Run(ctx, events)

	// Per-session state is torn down here; open positions and the trade
	// budget deliberately survive into the next session.
	if archiver != nil {
		arc := s3blob.SessionArchive{
			SessionID:  sessionID,
			StartedAt:  startedAt,
			EndedAt:    time.Now().UTC(),
			EndReason:  endReason(runErr),
			Markets:    registry.Markets(),
			Books:      cache.All(),
			TradesUsed: scalp.TradesToday(),
		}
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		if err := archiver.Archive(actx, arc); err != nil {
			a.logger.Warn("session archive failed", slog.String("error", err.Error()))
		}
		cancel()
	}
	cache.Clear()
	registry.Clear()
	scalp.ResetBaselines()

	return runErr
}

// endReason maps a session outcome to the archive label.
func endReason(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, context.Canceled):
		return "shutdown"
	case errors.Is(err, domain.ErrFeedTerminated):
		return "feed_terminated"
	default:
		return "feed_fault"
	}
}

// Close tears down all resources in reverse registration order. It is safe
// to call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down application")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
