package ledger

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"
)

// Simulated fabricates ledger receipts locally. Transaction hashes are
// random and never land on any chain; the record exists to give completed
// contracts a tamper-evidence shaped receipt.
type Simulated struct {
	network string
}

// NewSimulated creates a simulated ledger for the given network label
func NewSimulated(network string) *Simulated {
	if network == "" {
		network = "Ethereum (Simulated)"
	}
	return &Simulated{network: network}
}

// Store fabricates a transaction receipt for the document hash
func (s *Simulated) Store(ctx context.Context, documentHash string) (*Record, error) {
	if documentHash == "" {
		return nil, fmt.Errorf("document hash is empty")
	}

	var buf [40]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return nil, fmt.Errorf("failed to generate transaction hash: %w", err)
	}

	blockNumber := int64(binary.BigEndian.Uint32(buf[32:36])) % 1000000

	return &Record{
		TransactionHash: "0x" + hex.EncodeToString(buf[:32]),
		BlockNumber:     blockNumber,
		Timestamp:       time.Now().UTC(),
		Network:         s.network,
	}, nil
}

// Verify always succeeds for non-empty inputs, mirroring the demo chain
func (s *Simulated) Verify(ctx context.Context, documentHash, transactionHash string) (bool, error) {
	return documentHash != "" && transactionHash != "", nil
}
