package domain

import "context"

// BookMirror is a remote copy of the in-process book cache that external
// components (diagnostics, balancers) can read without touching the detection
// loop. Writes happen off the hot path.
type BookMirror interface {
	SetSnapshot(ctx context.Context, snap BookSnapshot) error
	GetSnapshot(ctx context.Context, instrumentID string) (BookSnapshot, error)
}

// SignalBus publishes detected opportunities and execution results for
// external collaborators. Publish is ephemeral pub/sub; StreamAppend is a
// durable, trimmed stream.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	StreamAppend(ctx context.Context, stream string, payload []byte) error
}

// OpportunityStore journals detected opportunities for later analysis.
type OpportunityStore interface {
	Insert(ctx context.Context, opp Opportunity) error
	MarkExecuted(ctx context.Context, id string) error
	ListRecent(ctx context.Context, limit int) ([]Opportunity, error)
}

// BlobWriter writes opaque objects to blob storage (session archives).
type BlobWriter interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
}

// MarketProvider is the external market scheduler: it supplies the set of
// markets currently worth subscribing to. A change in the returned set starts
// a new session.
type MarketProvider interface {
	CurrentMarkets(ctx context.Context) ([]MarketPair, error)
}

// OrderPlacer is the external execution collaborator. The core does not wait
// on it from the detection loop; only worker-pool tasks call it.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, intent ExecutionIntent) (ExecutionResult, error)
}

// RiskReporter is the external risk/position collaborator. It receives every
// execution attempt's outcome together with the identifiers the core used.
type RiskReporter interface {
	ReportExecution(ctx context.Context, intent ExecutionIntent, result ExecutionResult)
}
