package journal

import "time"

// Record captures one live bid submission. Records are written after the
// marketplace accepted the order, so a token present in the journal has a
// standing (or expired) offer from this bidder.
type Record struct {
	TokenID   string    `json:"token_id"`
	OrderHash string    `json:"order_hash"`
	AmountWei string    `json:"amount_wei"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Journal defines the interface for the bid journal. It abstracts the
// underlying storage mechanism (e.g., BadgerDB, in-memory) from the rest
// of the application. Tokens recorded here are excluded from further bids.
type Journal interface {
	// RecordBid persists a single bid record, keyed by token ID.
	RecordBid(rec *Record) error

	// HasBid reports whether a bid was ever recorded for the token.
	HasBid(tokenID string) (bool, error)

	// BidTokenIDs returns every token ID with a recorded bid.
	BidTokenIDs() ([]string, error)

	// Close gracefully closes the connection to the database.
	Close() error
}
