package notify

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quantfold/pairbot/internal/domain"
)

// memorySender collects delivered notifications.
type memorySender struct {
	mu       sync.Mutex
	received []Notification
}

func (m *memorySender) Deliver(ctx context.Context, n Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.received = append(m.received, n)
	return nil
}

func (m *memorySender) Name() string { return "memory" }

func TestRenderExecution(t *testing.T) {
	intent := domain.ExecutionIntent{
		Kind:     domain.IntentArbitrage,
		MarketID: "m1",
		Arb: domain.Opportunity{
			YesAsk: 0.47, NoAsk: 0.50, TotalCost: 0.97, ProfitFraction: 0.03,
		},
	}

	n := renderExecution(intent, domain.ExecutionResult{Success: true, OrderRef: "ref-1"})
	require.Equal(t, EventArbExecuted, n.Event)
	require.Equal(t, "Arbitrage executed", n.Title)
	require.Contains(t, n.Body, "m1")
	require.Contains(t, n.Body, "ref-1")

	n = renderExecution(intent, domain.ExecutionResult{Success: false, Message: "rejected"})
	require.Equal(t, EventExecutionFailed, n.Event)
	require.Contains(t, n.Body, "rejected")

	n = renderExecution(domain.ExecutionIntent{Kind: domain.IntentScalpClose, Reason: "expired"},
		domain.ExecutionResult{Success: true})
	require.Equal(t, EventScalpClosed, n.Event)
	require.Contains(t, n.Body, "expired")
}

func TestExecutionReporterRespectsEventFilter(t *testing.T) {
	sender := &memorySender{}
	r := NewExecutionReporter([]Sender{sender}, []string{EventArbExecuted}, slog.New(slog.DiscardHandler))

	ctx := context.Background()
	r.ReportExecution(ctx,
		domain.ExecutionIntent{Kind: domain.IntentArbitrage, MarketID: "m1"},
		domain.ExecutionResult{Success: true})
	r.ReportExecution(ctx,
		domain.ExecutionIntent{Kind: domain.IntentScalpOpen, MarketID: "m1"},
		domain.ExecutionResult{Success: true})

	require.Len(t, sender.received, 1)
	require.Equal(t, "Arbitrage executed", sender.received[0].Title)
}

func TestExecutionReporterEmptyFilterAllowsAll(t *testing.T) {
	sender := &memorySender{}
	r := NewExecutionReporter([]Sender{sender}, nil, slog.New(slog.DiscardHandler))

	ctx := context.Background()
	r.ReportExecution(ctx,
		domain.ExecutionIntent{Kind: domain.IntentScalpOpen, MarketID: "m1"},
		domain.ExecutionResult{Success: true})

	require.Len(t, sender.received, 1)
	require.Equal(t, EventScalpOpened, sender.received[0].Event)
}
