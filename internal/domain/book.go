package domain

import "time"

// PriceLevel is a single price+size entry in an orderbook.
type PriceLevel struct {
	Price float64
	Size  float64
}

// BookSnapshot is the latest known view of one instrument's orderbook. It is
// replaced wholesale on every feed update; there are no incremental diff
// semantics at this layer.
type BookSnapshot struct {
	InstrumentID string
	Bids         []PriceLevel
	Asks         []PriceLevel
	BestBid      float64
	BestAsk      float64
	Timestamp    time.Time
}

// MidPrice returns (best bid + best ask) / 2, or 0 when either side of the
// book is empty.
func (s BookSnapshot) MidPrice() float64 {
	if s.BestBid <= 0 || s.BestAsk <= 0 {
		return 0
	}
	return (s.BestBid + s.BestAsk) / 2
}

// Pair combines the current snapshots of a market's YES and NO instruments.
// It is a transient value recomputed per update and never persisted.
type Pair struct {
	MarketID string
	Yes      BookSnapshot
	No       BookSnapshot
}

// BookEvent is one item of the feed sequence consumed by a session. Exactly
// one of Snapshot or Err is meaningful; a non-nil Err ends the session.
type BookEvent struct {
	Snapshot BookSnapshot
	Err      error
}
