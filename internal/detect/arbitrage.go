// Package detect evaluates completed YES/NO pairs for the two trading
// signals: cross-market arbitrage and single-leg price momentum.
package detect

import (
	"time"

	"github.com/quantfold/pairbot/internal/domain"
)

// DetectArbitrage computes the cost of acquiring one full guaranteed-payout
// unit (best ask of each side) and fires when the profit fraction meets the
// threshold. It is a pure function of the pair: no state, no debouncing.
// Detection is intentionally permissive; the execution layer applies its own
// stricter spread gate before acting.
func DetectArbitrage(p domain.Pair, profitThreshold float64) (domain.Opportunity, bool) {
	yesAsk := p.Yes.BestAsk
	noAsk := p.No.BestAsk
	if yesAsk <= 0 || noAsk <= 0 {
		return domain.Opportunity{}, false
	}

	totalCost := yesAsk + noAsk
	profit := 1 - totalCost
	if profit < profitThreshold {
		return domain.Opportunity{}, false
	}

	return domain.Opportunity{
		MarketID:       p.MarketID,
		YesTokenID:     p.Yes.InstrumentID,
		NoTokenID:      p.No.InstrumentID,
		YesAsk:         yesAsk,
		NoAsk:          noAsk,
		TotalCost:      totalCost,
		ProfitFraction: profit,
		DetectedAt:     time.Now().UTC(),
	}, true
}
