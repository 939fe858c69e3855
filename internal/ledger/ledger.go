// Package ledger models the blockchain integration as a pluggable
// capability so a real chain client can replace the simulated one without
// touching the signing workflow.
package ledger

import (
	"context"
	"time"
)

// Record is the receipt returned when a document hash is stored
type Record struct {
	TransactionHash string
	BlockNumber     int64
	Timestamp       time.Time
	Network         string
}

// Ledger stores document hashes and verifies previously stored ones
type Ledger interface {
	// Store anchors the document hash and returns the transaction receipt
	Store(ctx context.Context, documentHash string) (*Record, error)

	// Verify reports whether the document hash matches the transaction
	Verify(ctx context.Context, documentHash, transactionHash string) (bool, error)
}
