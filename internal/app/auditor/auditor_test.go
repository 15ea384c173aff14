package auditor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeVerifier struct {
	mu     sync.Mutex
	calls  int
	ok     bool
	badSeq int64
	err    error
}

func (f *fakeVerifier) VerifyChain() (bool, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.ok, f.badSeq, f.err
}

func (f *fakeVerifier) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestRunOnce_Intact(t *testing.T) {
	v := &fakeVerifier{ok: true, badSeq: -1}
	a := New(Config{Interval: time.Minute}, v)

	a.RunOnce()

	stats := a.Stats()
	if stats.Runs != 1 {
		t.Errorf("Runs = %d, want 1", stats.Runs)
	}
	if stats.Failures != 0 {
		t.Errorf("Failures = %d, want 0", stats.Failures)
	}
	if !stats.LastOK || stats.LastBadSeq != -1 {
		t.Errorf("last = (%v, %d), want (true, -1)", stats.LastOK, stats.LastBadSeq)
	}
}

func TestRunOnce_Corruption(t *testing.T) {
	v := &fakeVerifier{ok: false, badSeq: 3, err: errors.New("audit chain integrity violation: block 3")}
	a := New(Config{Interval: time.Minute}, v)

	a.RunOnce()
	a.RunOnce()

	stats := a.Stats()
	if stats.Failures != 2 {
		t.Errorf("Failures = %d, want 2", stats.Failures)
	}
	if stats.LastOK {
		t.Error("LastOK = true, want false")
	}
	if stats.LastBadSeq != 3 {
		t.Errorf("LastBadSeq = %d, want 3", stats.LastBadSeq)
	}
}

func TestStart_DisabledByDefault(t *testing.T) {
	v := &fakeVerifier{ok: true, badSeq: -1}
	a := New(DefaultConfig(), v)

	a.Start(context.Background())
	defer a.Stop()

	time.Sleep(30 * time.Millisecond)
	if v.callCount() != 0 {
		t.Errorf("disabled auditor ran %d passes, want 0", v.callCount())
	}
	if a.Stats().Enabled {
		t.Error("Stats().Enabled = true, want false")
	}
}

func TestStart_PeriodicRuns(t *testing.T) {
	v := &fakeVerifier{ok: true, badSeq: -1}
	a := New(Config{Interval: 10 * time.Millisecond}, v)

	a.Start(context.Background())
	time.Sleep(60 * time.Millisecond)
	a.Stop()

	calls := v.callCount()
	if calls < 2 {
		t.Errorf("calls = %d, want at least 2", calls)
	}

	// No further runs after Stop.
	time.Sleep(30 * time.Millisecond)
	if v.callCount() != calls {
		t.Errorf("auditor kept running after Stop: %d -> %d", calls, v.callCount())
	}
}
