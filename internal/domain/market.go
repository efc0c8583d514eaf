package domain

// MarketPair identifies one binary market and its two constituent
// instruments. The YES and NO token IDs are distinct and never reassigned
// after registration.
type MarketPair struct {
	MarketID   string
	Question   string
	YesTokenID string
	NoTokenID  string
}
