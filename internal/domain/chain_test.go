package domain

import (
	"strings"
	"testing"
	"time"
)

// ─── Canonical Payload ──────────────────────────────────────────────────────

func testEvent() ActivityEvent {
	return ActivityEvent{
		ID:        "evt-1",
		UserID:    42,
		Type:      ActivityManualAward,
		CarbonKg:  16.0,
		PCCTokens: 2.0,
		Details: EventDetails{
			Award: &AwardDetails{Reason: "community cleanup"},
		},
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEncodePayload_Stable(t *testing.T) {
	ev := testEvent()
	first := EncodePayload(ev)
	for i := 0; i < 10; i++ {
		if got := EncodePayload(ev); got != first {
			t.Fatalf("payload not stable: %q vs %q", got, first)
		}
	}
}

func TestEncodePayload_FieldOrder(t *testing.T) {
	payload := EncodePayload(testEvent())

	// Canonical encoding keeps keys in alphabetical order.
	keys := []string{"amount", "created_at", "description", "event_id", "type", "user_id"}
	last := -1
	for _, k := range keys {
		idx := strings.Index(payload, `"`+k+`"`)
		if idx < 0 {
			t.Fatalf("payload missing key %q: %s", k, payload)
		}
		if idx < last {
			t.Errorf("key %q out of order in %s", k, payload)
		}
		last = idx
	}
}

// ─── Hash Chain ─────────────────────────────────────────────────────────────

func TestChainHash_Genesis(t *testing.T) {
	h1 := ChainHash("", "payload")
	h2 := ChainHash("", "payload")
	if h1 != h2 {
		t.Errorf("hash not deterministic: %s vs %s", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}
}

func TestChainHash_DependsOnPrevious(t *testing.T) {
	if ChainHash("", "payload") == ChainHash("abc", "payload") {
		t.Error("hash should change with previous hash")
	}
	if ChainHash("abc", "payload") == ChainHash("abc", "payload2") {
		t.Error("hash should change with payload")
	}
}

func TestBlock_VerifyLink(t *testing.T) {
	payload := EncodePayload(testEvent())
	genesis := Block{
		Sequence:     1,
		PreviousHash: "",
		Payload:      payload,
		Hash:         ChainHash("", payload),
	}
	if !genesis.VerifyLink("") {
		t.Error("genesis block should verify against empty previous hash")
	}

	next := Block{
		Sequence:     2,
		PreviousHash: genesis.Hash,
		Payload:      payload,
		Hash:         ChainHash(genesis.Hash, payload),
	}
	if !next.VerifyLink(genesis.Hash) {
		t.Error("second block should verify against genesis hash")
	}
	if next.VerifyLink("") {
		t.Error("second block must not verify against wrong previous hash")
	}

	tampered := next
	tampered.Payload = strings.Replace(tampered.Payload, "2", "3", 1)
	if tampered.VerifyLink(genesis.Hash) {
		t.Error("tampered payload should fail verification")
	}
}
