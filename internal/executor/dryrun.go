package executor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quantfold/pairbot/internal/domain"
)

// DryRunPlacer is the default stand-in for the external execution
// collaborator: it accepts every intent, logs it, and reports success
// without touching an exchange.
type DryRunPlacer struct {
	logger *slog.Logger
}

var _ domain.OrderPlacer = (*DryRunPlacer)(nil)

// NewDryRunPlacer creates a placer that only logs.
func NewDryRunPlacer(logger *slog.Logger) *DryRunPlacer {
	return &DryRunPlacer{logger: logger.With(slog.String("component", "dry_run_placer"))}
}

// PlaceOrder logs the intent and fabricates a successful result.
func (d *DryRunPlacer) PlaceOrder(ctx context.Context, intent domain.ExecutionIntent) (domain.ExecutionResult, error) {
	d.logger.InfoContext(ctx, "dry-run order",
		slog.String("intent_id", intent.ID),
		slog.String("kind", string(intent.Kind)),
		slog.String("market", intent.MarketID),
		slog.Float64("price", intent.Price),
		slog.Float64("size", intent.Size),
	)
	return domain.ExecutionResult{
		IntentID:    intent.ID,
		Success:     true,
		OrderRef:    "dry-" + uuid.New().String(),
		Message:     "dry run",
		CompletedAt: time.Now().UTC(),
	}, nil
}

// LogRiskReporter is the default stand-in for the external risk collaborator.
type LogRiskReporter struct {
	logger *slog.Logger
}

var _ domain.RiskReporter = (*LogRiskReporter)(nil)

// NewLogRiskReporter creates a reporter that only logs.
func NewLogRiskReporter(logger *slog.Logger) *LogRiskReporter {
	return &LogRiskReporter{logger: logger.With(slog.String("component", "risk_reporter"))}
}

// ReportExecution logs the outcome of one execution attempt.
func (r *LogRiskReporter) ReportExecution(ctx context.Context, intent domain.ExecutionIntent, result domain.ExecutionResult) {
	r.logger.InfoContext(ctx, "execution reported",
		slog.String("intent_id", intent.ID),
		slog.String("kind", string(intent.Kind)),
		slog.String("market", intent.MarketID),
		slog.Bool("success", result.Success),
		slog.String("order_ref", result.OrderRef),
	)
}
