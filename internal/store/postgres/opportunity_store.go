package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantfold/pairbot/internal/domain"
)

// OpportunityStore implements domain.OpportunityStore using PostgreSQL.
type OpportunityStore struct {
	pool *pgxpool.Pool
}

// NewOpportunityStore creates a store backed by the given connection pool.
func NewOpportunityStore(pool *pgxpool.Pool) *OpportunityStore {
	return &OpportunityStore{pool: pool}
}

const oppSelectCols = `id, market_id, yes_token_id, no_token_id,
	yes_ask, no_ask, total_cost, profit_fraction, detected_at, executed`

// Insert journals a detected opportunity.
func (s *OpportunityStore) Insert(ctx context.Context, opp domain.Opportunity) error {
	const query = `
		INSERT INTO opportunities (
			id, market_id, yes_token_id, no_token_id,
			yes_ask, no_ask, total_cost, profit_fraction,
			detected_at, executed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING`

	_, err := s.pool.Exec(ctx, query,
		opp.ID, opp.MarketID, opp.YesTokenID, opp.NoTokenID,
		opp.YesAsk, opp.NoAsk, opp.TotalCost, opp.ProfitFraction,
		opp.DetectedAt, opp.Executed,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert opportunity %s: %w", opp.ID, err)
	}
	return nil
}

// MarkExecuted flags an opportunity as acted upon.
func (s *OpportunityStore) MarkExecuted(ctx context.Context, id string) error {
	const query = `
		UPDATE opportunities SET
			executed    = TRUE,
			executed_at = $2
		WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres: mark opportunity executed %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListRecent returns the most recent opportunities ordered by detection time.
func (s *OpportunityStore) ListRecent(ctx context.Context, limit int) ([]domain.Opportunity, error) {
	query := `SELECT ` + oppSelectCols + ` FROM opportunities ORDER BY detected_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list recent opportunities: %w", err)
	}
	defer rows.Close()

	var opps []domain.Opportunity
	for rows.Next() {
		var opp domain.Opportunity
		if err := rows.Scan(
			&opp.ID, &opp.MarketID, &opp.YesTokenID, &opp.NoTokenID,
			&opp.YesAsk, &opp.NoAsk, &opp.TotalCost, &opp.ProfitFraction,
			&opp.DetectedAt, &opp.Executed,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan opportunity: %w", err)
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: iterate opportunities: %w", err)
	}
	return opps, nil
}

// Compile-time interface check.
var _ domain.OpportunityStore = (*OpportunityStore)(nil)
