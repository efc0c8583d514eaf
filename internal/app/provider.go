package app

import (
	"context"

	"github.com/quantfold/pairbot/internal/config"
	"github.com/quantfold/pairbot/internal/domain"
)

// StaticProvider serves the market set from the [[markets]] entries in the
// configuration file. It stands in for an external market scheduler; the
// session loop treats its answer as the set for the next subscription epoch.
type StaticProvider struct {
	markets []domain.MarketPair
}

var _ domain.MarketProvider = (*StaticProvider)(nil)

// NewStaticProvider converts configured market entries into domain pairs.
func NewStaticProvider(entries []config.MarketConfig) *StaticProvider {
	markets := make([]domain.MarketPair, 0, len(entries))
	for _, e := range entries {
		markets = append(markets, domain.MarketPair{
			MarketID:   e.MarketID,
			Question:   e.Question,
			YesTokenID: e.YesTokenID,
			NoTokenID:  e.NoTokenID,
		})
	}
	return &StaticProvider{markets: markets}
}

// CurrentMarkets returns the configured set. The slice is copied so callers
// cannot mutate the provider's state.
func (p *StaticProvider) CurrentMarkets(ctx context.Context) ([]domain.MarketPair, error) {
	out := make([]domain.MarketPair, len(p.markets))
	copy(out, p.markets)
	return out, nil
}
