package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// ─── Audit Chain ────────────────────────────────────────────────────────────
// Each balance-affecting transaction is sealed into a hash-linked block.
// The chain is a single-writer tamper-evidence structure, not a distributed
// ledger: appends happen inside the same critical section as the ledger
// write they describe.

// Block is one tamper-evident record in the audit chain. Sequence numbers
// are strictly monotonic; PreviousHash of the genesis block is empty.
type Block struct {
	Sequence     int64     `json:"sequence"`
	PreviousHash string    `json:"previous_hash"`
	Hash         string    `json:"hash"`
	Payload      string    `json:"payload"`
	CreatedAt    time.Time `json:"created_at"`
}

// BlockPayload is the canonical serialization of one ledger transaction.
// Field names are declared in alphabetical order so the JSON encoding is
// byte-stable for a given transaction; re-ordering a field changes every
// hash downstream.
type BlockPayload struct {
	Amount      float64 `json:"amount"`
	CreatedAt   string  `json:"created_at"`
	Description string  `json:"description"`
	EventID     string  `json:"event_id"`
	Type        string  `json:"type"`
	UserID      int64   `json:"user_id"`
}

// EncodePayload produces the canonical payload string for an event.
// The description is the event's audit note ("reason" if present).
func EncodePayload(ev ActivityEvent) string {
	desc := ""
	if ev.Details.Award != nil {
		desc = ev.Details.Award.Reason
	}
	p := BlockPayload{
		Amount:      ev.PCCTokens,
		CreatedAt:   ev.CreatedAt.UTC().Format(time.RFC3339Nano),
		Description: desc,
		EventID:     ev.ID,
		Type:        string(ev.Type),
		UserID:      ev.UserID,
	}
	data, _ := json.Marshal(p)
	return string(data)
}

// ChainHash computes a block's hash from its predecessor's hash and its
// payload. The genesis block uses an empty previous hash.
func ChainHash(previousHash, payload string) string {
	sum := sha256.Sum256([]byte(previousHash + payload))
	return hex.EncodeToString(sum[:])
}

// VerifyLink recomputes b's hash and checks it against both the stored
// hash and the expected previous hash.
func (b Block) VerifyLink(expectedPrevious string) bool {
	if b.PreviousHash != expectedPrevious {
		return false
	}
	return ChainHash(b.PreviousHash, b.Payload) == b.Hash
}
