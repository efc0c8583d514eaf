package domain

import "time"

// Opportunity is a detected cross-market arbitrage: buying both outcomes of
// the market costs TotalCost while the combined position always redeems for
// exactly 1 unit.
type Opportunity struct {
	ID             string
	MarketID       string
	YesTokenID     string
	NoTokenID      string
	YesAsk         float64
	NoAsk          float64
	TotalCost      float64
	ProfitFraction float64
	DetectedAt     time.Time
	Executed       bool
}

// IntentKind discriminates the execution intents handed to the worker pool.
type IntentKind string

const (
	IntentArbitrage  IntentKind = "arbitrage"
	IntentScalpOpen  IntentKind = "scalp_open"
	IntentScalpClose IntentKind = "scalp_close"
)

// ExecutionIntent is an immutable copy of the data an execution task needs.
// The detection loop never shares mutable state with spawned tasks; it hands
// one of these over a channel and moves on.
type ExecutionIntent struct {
	ID        string
	Kind      IntentKind
	MarketID  string
	Arb       Opportunity // set when Kind == IntentArbitrage
	TokenID   string      // scalp leg instrument
	Price     float64     // scalp entry / exit reference price
	Size      float64
	Reason    string // scalp close reason: "take_profit", "stop_loss", "expired"
	CreatedAt time.Time
}

// ExecutionResult is what the execution collaborator reports back for one
// intent.
type ExecutionResult struct {
	IntentID    string
	Success     bool
	OrderRef    string
	Message     string
	CompletedAt time.Time
}
