package executor

import (
	"context"

	"github.com/quantfold/pairbot/internal/domain"
)

// Reporters fans one execution outcome out to several risk reporters.
type Reporters []domain.RiskReporter

var _ domain.RiskReporter = (Reporters)(nil)

// ReportExecution delivers to every reporter in order.
func (rs Reporters) ReportExecution(ctx context.Context, intent domain.ExecutionIntent, result domain.ExecutionResult) {
	for _, r := range rs {
		r.ReportExecution(ctx, intent, result)
	}
}
