package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/quantfold/pairbot/internal/domain"
)

// Event type names used to filter notifications.
const (
	EventArbExecuted     = "arb_executed"
	EventScalpOpened     = "scalp_opened"
	EventScalpClosed     = "scalp_closed"
	EventExecutionFailed = "execution_failed"
)

// ExecutionReporter forwards execution outcomes to the notification channels.
// It implements domain.RiskReporter so it can sit next to (or instead of) the
// external risk collaborator.
type ExecutionReporter struct {
	senders []Sender
	events  map[string]bool // allowed event types; empty allows all
	logger  *slog.Logger
}

var _ domain.RiskReporter = (*ExecutionReporter)(nil)

// NewExecutionReporter builds a reporter delivering to the given senders.
// Only event types listed in events are forwarded; an empty list allows all.
func NewExecutionReporter(senders []Sender, events []string, logger *slog.Logger) *ExecutionReporter {
	allowed := make(map[string]bool, len(events))
	for _, e := range events {
		allowed[strings.TrimSpace(e)] = true
	}
	return &ExecutionReporter{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// ReportExecution renders one execution attempt and fans it out to every
// sender. Delivery is best effort; a failing sender is logged and does not
// block the remaining ones, and nothing propagates back to the executor.
func (r *ExecutionReporter) ReportExecution(ctx context.Context, intent domain.ExecutionIntent, result domain.ExecutionResult) {
	n := renderExecution(intent, result)

	if len(r.events) > 0 && !r.events[n.Event] {
		r.logger.DebugContext(ctx, "event filtered out",
			slog.String("event", n.Event),
		)
		return
	}

	for _, s := range r.senders {
		if err := s.Deliver(ctx, n); err != nil {
			r.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("event", n.Event),
				slog.String("error", err.Error()),
			)
			continue
		}
		r.logger.DebugContext(ctx, "notification sent",
			slog.String("sender", s.Name()),
			slog.String("title", n.Title),
		)
	}
}

// renderExecution builds the notification for one intent/result pair.
func renderExecution(intent domain.ExecutionIntent, result domain.ExecutionResult) Notification {
	if !result.Success {
		return Notification{
			Event: EventExecutionFailed,
			Title: "Execution failed",
			Body:  fmt.Sprintf("market %s\nkind: %s\nreason: %s", intent.MarketID, intent.Kind, result.Message),
		}
	}

	switch intent.Kind {
	case domain.IntentArbitrage:
		return Notification{
			Event: EventArbExecuted,
			Title: "Arbitrage executed",
			Body: fmt.Sprintf("market %s\nYES ask %.4f + NO ask %.4f = %.4f\nprofit %.4f\norder %s",
				intent.MarketID, intent.Arb.YesAsk, intent.Arb.NoAsk,
				intent.Arb.TotalCost, intent.Arb.ProfitFraction, result.OrderRef),
		}
	case domain.IntentScalpOpen:
		return Notification{
			Event: EventScalpOpened,
			Title: "Scalp opened",
			Body: fmt.Sprintf("market %s\nentry %.4f size %.2f\norder %s",
				intent.MarketID, intent.Price, intent.Size, result.OrderRef),
		}
	case domain.IntentScalpClose:
		return Notification{
			Event: EventScalpClosed,
			Title: "Scalp closed",
			Body: fmt.Sprintf("market %s\nexit %.4f size %.2f\nreason: %s\norder %s",
				intent.MarketID, intent.Price, intent.Size, intent.Reason, result.OrderRef),
		}
	default:
		return Notification{
			Event: EventExecutionFailed,
			Title: "Unknown intent kind",
			Body:  string(intent.Kind),
		}
	}
}
