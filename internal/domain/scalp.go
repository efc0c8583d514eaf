package domain

import "time"

// ScalpPosition is a single-leg momentum position. At most one exists per
// market at any time.
type ScalpPosition struct {
	MarketID   string
	TokenID    string
	EntryPrice float64
	Size       float64
	OpenedAt   time.Time
}

// Age returns how long the position has been open.
func (p ScalpPosition) Age(now time.Time) time.Duration {
	return now.Sub(p.OpenedAt)
}

// PnLFraction returns the fractional move of price against the entry price.
// Positive means the position is in profit.
func (p ScalpPosition) PnLFraction(price float64) float64 {
	if p.EntryPrice <= 0 {
		return 0
	}
	return (price - p.EntryPrice) / p.EntryPrice
}
