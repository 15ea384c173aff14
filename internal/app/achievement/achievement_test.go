package achievement

import (
	"fmt"
	"testing"
	"time"

	"github.com/greenloop-network/greenloop/internal/domain"
	"github.com/greenloop-network/greenloop/internal/infra/sqlite"
)

func newTestService(t *testing.T) (*Service, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(DefaultConfig(), db), db
}

// logSegregation writes one scored segregation history row through the
// regular ledger path.
func logSegregation(t *testing.T, db *sqlite.DB, householdID int64, logDate string, score int) {
	t.Helper()
	ev := domain.ActivityEvent{
		ID:        fmt.Sprintf("evt-%d-%s", householdID, logDate),
		UserID:    1,
		Type:      domain.ActivitySegregation,
		CarbonKg:  10.0,
		PCCTokens: 1.25,
		Details: domain.EventDetails{
			Segregation: &domain.SegregationDetails{
				HouseholdID: householdID, LogDate: logDate, Score: score,
				DryKg: 8, WetKg: 2,
			},
		},
		CreatedAt: time.Now().UTC(),
	}
	if _, err := db.RecordEvent(ev); err != nil {
		t.Fatalf("RecordEvent(%s) error: %v", logDate, err)
	}
}

// ─── AwardOnce ──────────────────────────────────────────────────────────────

func TestAwardOnce(t *testing.T) {
	svc, _ := newTestService(t)
	svc.EnsureBadge("first_waste_report", "Active Reporter", domain.BadgeReporting, "", "")

	fresh, err := svc.AwardOnce(42, "first_waste_report")
	if err != nil {
		t.Fatalf("AwardOnce() error: %v", err)
	}
	if !fresh {
		t.Error("first grant should be fresh")
	}

	fresh, err = svc.AwardOnce(42, "first_waste_report")
	if err != nil {
		t.Fatalf("second AwardOnce() error: %v", err)
	}
	if fresh {
		t.Error("duplicate grant should be a no-op")
	}
}

func TestAwardOnce_UndefinedBadgeIsNoop(t *testing.T) {
	svc, _ := newTestService(t)

	fresh, err := svc.AwardOnce(42, "never_seeded")
	if err != nil {
		t.Fatalf("AwardOnce() error: %v", err)
	}
	if fresh {
		t.Error("undefined badge must not grant")
	}
}

// ─── Triggers ───────────────────────────────────────────────────────────────

func TestOnTrainingCompleted(t *testing.T) {
	svc, db := newTestService(t)

	if err := svc.OnTrainingCompleted(6, 3, 90); err != nil {
		t.Fatalf("OnTrainingCompleted() error: %v", err)
	}

	badge, err := db.GetBadge("training_module_3_completed")
	if err != nil {
		t.Fatalf("badge not seeded: %v", err)
	}
	if badge.Category != domain.BadgeTraining {
		t.Errorf("category = %s, want TRAINING", badge.Category)
	}
	count, _ := db.BadgeCountForUser(6)
	if count != 1 {
		t.Errorf("badge count = %d, want 1", count)
	}

	// Retake of the same module does not duplicate.
	if err := svc.OnTrainingCompleted(6, 3, 100); err != nil {
		t.Fatalf("second OnTrainingCompleted() error: %v", err)
	}
	count, _ = db.BadgeCountForUser(6)
	if count != 1 {
		t.Errorf("badge count after retake = %d, want 1", count)
	}
}

func TestOnReportSubmitted(t *testing.T) {
	svc, db := newTestService(t)

	for i := 0; i < 3; i++ {
		if err := svc.OnReportSubmitted(9); err != nil {
			t.Fatalf("OnReportSubmitted() error: %v", err)
		}
	}
	count, _ := db.BadgeCountForUser(9)
	if count != 1 {
		t.Errorf("badge count = %d, want 1 (first report only)", count)
	}
}

func TestOnSegregationLogged_Streak(t *testing.T) {
	svc, db := newTestService(t)
	db.EnsureAccount(1)

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	// Six clean days: below the streak threshold.
	for i := 0; i < 6; i++ {
		logSegregation(t, db, 9, base.AddDate(0, 0, -i).Format("2006-01-02"), 85)
	}
	if err := svc.OnSegregationLogged(9, 4); err != nil {
		t.Fatalf("OnSegregationLogged() error: %v", err)
	}
	count, _ := db.BadgeCountForUser(4)
	if count != 0 {
		t.Errorf("badge count after 6 days = %d, want 0", count)
	}

	// Seventh clean day completes the streak.
	logSegregation(t, db, 9, base.AddDate(0, 0, -6).Format("2006-01-02"), 92)
	if err := svc.OnSegregationLogged(9, 4); err != nil {
		t.Fatalf("OnSegregationLogged() error: %v", err)
	}
	count, _ = db.BadgeCountForUser(4)
	if count != 1 {
		t.Errorf("badge count after 7 days = %d, want 1", count)
	}

	badge, err := db.GetBadge("segregation_streak_7_household_9")
	if err != nil {
		t.Fatalf("streak badge not seeded: %v", err)
	}
	if badge.Category != domain.BadgeSegregation {
		t.Errorf("category = %s, want SEGREGATION", badge.Category)
	}
}

func TestOnSegregationLogged_LowScoresDoNotCount(t *testing.T) {
	svc, db := newTestService(t)
	db.EnsureAccount(1)

	base := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	for i := 0; i < 7; i++ {
		logSegregation(t, db, 12, base.AddDate(0, 0, -i).Format("2006-01-02"), 60)
	}
	if err := svc.OnSegregationLogged(12, 5); err != nil {
		t.Fatalf("OnSegregationLogged() error: %v", err)
	}
	count, _ := db.BadgeCountForUser(5)
	if count != 0 {
		t.Errorf("badge count = %d, want 0 (scores below threshold)", count)
	}
}
