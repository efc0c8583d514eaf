package executor

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairbot/internal/domain"
)

// fakePlacer records every placed intent and signals each arrival.
type fakePlacer struct {
	mu      sync.Mutex
	placed  []domain.ExecutionIntent
	arrived chan struct{}
}

func newFakePlacer() *fakePlacer {
	return &fakePlacer{arrived: make(chan struct{}, 64)}
}

func (f *fakePlacer) PlaceOrder(ctx context.Context, intent domain.ExecutionIntent) (domain.ExecutionResult, error) {
	f.mu.Lock()
	f.placed = append(f.placed, intent)
	f.mu.Unlock()
	f.arrived <- struct{}{}
	return domain.ExecutionResult{IntentID: intent.ID, Success: true, OrderRef: "ref-" + intent.ID}, nil
}

func (f *fakePlacer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.placed)
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestPool(cfg Config, placer domain.OrderPlacer) *Pool {
	return NewPool(cfg, placer, nil, nil, nil, testLogger())
}

func arbIntent(id string, yesAsk, noAsk float64) domain.ExecutionIntent {
	return domain.ExecutionIntent{
		ID:       id,
		Kind:     domain.IntentArbitrage,
		MarketID: "m1",
		Arb: domain.Opportunity{
			ID:             id,
			MarketID:       "m1",
			YesAsk:         yesAsk,
			NoAsk:          noAsk,
			TotalCost:      yesAsk + noAsk,
			ProfitFraction: 1 - yesAsk - noAsk,
		},
	}
}

func TestSubmitShedsWhenQueueFull(t *testing.T) {
	// Pool is never run, so the queue only drains by capacity.
	p := newTestPool(Config{Workers: 1, QueueSize: 2}, newFakePlacer())

	require.True(t, p.Submit(domain.ExecutionIntent{ID: "1"}))
	require.True(t, p.Submit(domain.ExecutionIntent{ID: "2"}))
	require.False(t, p.Submit(domain.ExecutionIntent{ID: "3"}))
}

func TestArbGateExecutionSpread(t *testing.T) {
	p := newTestPool(Config{ExecutionSpread: 0.01}, newFakePlacer())
	log := testLogger()

	// Total cost 0.97 <= 0.99: passes.
	require.True(t, p.arbGate(arbIntent("a", 0.47, 0.50).Arb, log))

	// Total cost 0.995 > 0.99: profitable but inside the safety margin.
	require.False(t, p.arbGate(arbIntent("b", 0.495, 0.50).Arb, log))

	// Boundary: exactly 1 - spread passes.
	require.True(t, p.arbGate(arbIntent("c", 0.49, 0.50).Arb, log))
}

func TestArbGatePriceFloors(t *testing.T) {
	p := newTestPool(Config{ExecutionSpread: 0.01, MinYesPrice: 0.10, MinNoPrice: 0.10}, newFakePlacer())
	log := testLogger()

	require.False(t, p.arbGate(arbIntent("a", 0.05, 0.50).Arb, log))
	require.False(t, p.arbGate(arbIntent("b", 0.50, 0.05).Arb, log))
	require.True(t, p.arbGate(arbIntent("c", 0.47, 0.50).Arb, log))
}

func TestProcessSkipsKillSwitch(t *testing.T) {
	placer := newFakePlacer()
	p := newTestPool(Config{}, placer)
	p.SetKillSwitch(true)

	p.process(context.Background(), arbIntent("a", 0.47, 0.50))
	require.Equal(t, 0, placer.count())

	p.SetKillSwitch(false)
	p.process(context.Background(), arbIntent("b", 0.47, 0.50))
	require.Equal(t, 1, placer.count())
}

func TestProcessCooldownExemptsExits(t *testing.T) {
	placer := newFakePlacer()
	p := newTestPool(Config{Cooldown: time.Hour}, placer)
	ctx := context.Background()

	p.process(ctx, arbIntent("a", 0.47, 0.50))
	require.Equal(t, 1, placer.count())

	// Same market inside the cooldown window: dropped.
	p.process(ctx, arbIntent("b", 0.46, 0.50))
	require.Equal(t, 1, placer.count())

	// A scalp close on the cooled-down market still goes through.
	p.process(ctx, domain.ExecutionIntent{
		ID: "c", Kind: domain.IntentScalpClose, MarketID: "m1", Price: 0.5, Size: 1,
	})
	require.Equal(t, 2, placer.count())
}

func TestPoolRunExecutesSubmittedIntents(t *testing.T) {
	placer := newFakePlacer()
	p := newTestPool(Config{Workers: 2, QueueSize: 8, RatePerSec: 1000, Burst: 10}, placer)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.True(t, p.Submit(arbIntent("a", 0.47, 0.50)))
	require.True(t, p.Submit(arbIntent("b", 0.40, 0.50)))

	for range 2 {
		select {
		case <-placer.arrived:
		case <-time.After(2 * time.Second):
			t.Fatal("intent not executed before timeout")
		}
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
	require.Equal(t, 2, placer.count())
}
