// Package ledger implements the transactional reward core. It converts
// verified activities into carbon/token amounts through the rating
// functions, persists them through a single atomic store write (event +
// balance + audit block), and fences source-backed awards so each
// physical event is rewarded at most once.
package ledger

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/greenloop-network/greenloop/internal/domain"
	"github.com/greenloop-network/greenloop/internal/infra/observability"
	"github.com/greenloop-network/greenloop/internal/infra/sqlite"
)

// AchievementSink receives the activity triggers the badge awarder
// evaluates. Implementations must be idempotent; the ledger calls them
// best-effort after a committed write.
type AchievementSink interface {
	OnSegregationLogged(householdID, ownerUserID int64) error
	OnTrainingCompleted(userID, moduleID int64, scorePercent float64) error
	OnReportSubmitted(reporterID int64) error
}

// Config controls ledger behavior.
type Config struct {
	// Epsilon is the negligible-amount threshold: records where both
	// |carbon_kg| and |pcc_tokens| fall below it are skipped entirely,
	// keeping audit noise out of the chain.
	Epsilon float64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{Epsilon: 1e-6}
}

// Service is the reward ledger.
type Service struct {
	config       Config
	db           *sqlite.DB
	achievements AchievementSink // nil when badge awarding is disabled
}

// New creates a reward ledger backed by the given store.
func New(cfg Config, db *sqlite.DB) *Service {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = DefaultConfig().Epsilon
	}
	return &Service{config: cfg, db: db}
}

// SetAchievements attaches the badge awarder.
func (s *Service) SetAchievements(a AchievementSink) { s.achievements = a }

// ─── Accounts ───────────────────────────────────────────────────────────────

// EnsureAccount creates a zero-balance account for a new user.
func (s *Service) EnsureAccount(userID int64) error {
	return s.db.EnsureAccount(userID)
}

// Balance returns the user's running PCC balance.
func (s *Service) Balance(userID int64) (float64, error) {
	return s.db.GetBalance(userID)
}

// Events returns the user's activity events, newest first.
func (s *Service) Events(userID int64, limit int) ([]domain.ActivityEvent, error) {
	return s.db.EventsForUser(userID, limit)
}

// ─── Recording ──────────────────────────────────────────────────────────────

// Record writes one activity event and its balance effect. Amounts below
// epsilon are a no-op and return (nil, nil): no event, no balance change.
// The write is atomic with the audit chain append.
func (s *Service) Record(userID int64, activityType domain.ActivityType, carbonKg, pccTokens float64, details domain.EventDetails) (*domain.ActivityEvent, error) {
	if !activityType.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidActivity, activityType)
	}
	if abs(carbonKg) < s.config.Epsilon && abs(pccTokens) < s.config.Epsilon {
		observability.RecordNoops.Inc()
		return nil, nil
	}

	ev := domain.ActivityEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      activityType,
		CarbonKg:  carbonKg,
		PCCTokens: pccTokens,
		Details:   details,
		CreatedAt: time.Now().UTC(),
	}

	start := time.Now()
	newBalance, err := s.db.RecordEvent(ev)
	if err != nil {
		observability.RecordFailures.WithLabelValues(errKind(err)).Inc()
		return nil, err
	}
	observability.RecordDuration.Observe(time.Since(start).Seconds())
	observability.EventsRecorded.WithLabelValues(string(activityType)).Inc()
	observability.ChainBlocksAppended.Inc()
	if pccTokens > 0 {
		observability.TokensMinted.Add(pccTokens)
	}

	log.Printf("[ledger] recorded %s for user %d: carbon=%.3fkg pcc=%.4f balance=%.4f",
		activityType, userID, carbonKg, pccTokens, newBalance)
	return &ev, nil
}

// ActivityMetrics is the tagged input for RecordActivity: Type selects
// which section is read.
type ActivityMetrics struct {
	Type domain.ActivityType

	Segregation     *SegregationInput
	ReportRef       string
	ResolutionHours float64
	HouseholdID     int64
	Label           string
	ModuleID        int64
	ScorePercent    float64
}

// RecordActivity dispatches raw activity metrics through the rating
// engine and records the result.
func (s *Service) RecordActivity(userID int64, m ActivityMetrics) (*domain.ActivityEvent, error) {
	switch m.Type {
	case domain.ActivitySegregation:
		if m.Segregation == nil {
			return nil, fmt.Errorf("%w: segregation metrics missing", domain.ErrInvalidActivity)
		}
		ev, _, err := s.RecordSegregation(userID, *m.Segregation)
		return ev, err
	case domain.ActivityReportResolution:
		return s.RecordReportResolution(userID, m.ReportRef, m.ResolutionHours)
	case domain.ActivityHouseholdClassification:
		return s.RecordClassification(userID, m.HouseholdID, m.Label)
	case domain.ActivityTraining:
		return s.RecordTraining(userID, m.ModuleID, m.ScorePercent)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidActivity, m.Type)
	}
}

// SegregationInput carries the raw metrics of one segregation pickup.
type SegregationInput struct {
	HouseholdID int64
	OwnerUserID int64 // household owner, for streak badges
	LogDate     string
	DryKg       float64
	WetKg       float64
	RejectKg    float64
}

// RecordSegregation scores a pickup, rates it, and records the reward for
// the given user. Returns the computed quality score alongside the event.
func (s *Service) RecordSegregation(userID int64, in SegregationInput) (*domain.ActivityEvent, int, error) {
	score := domain.SegregationScore(in.DryKg, in.WetKg, in.RejectKg)
	carbonKg, pccTokens := domain.RateSegregation(in.DryKg, in.WetKg, in.RejectKg, score)

	details := domain.EventDetails{
		Segregation: &domain.SegregationDetails{
			DryKg:       in.DryKg,
			HouseholdID: in.HouseholdID,
			LogDate:     in.LogDate,
			RejectKg:    in.RejectKg,
			Score:       score,
			WetKg:       in.WetKg,
		},
	}

	ev, err := s.Record(userID, domain.ActivitySegregation, carbonKg, pccTokens, details)
	if err != nil {
		return nil, score, err
	}

	if ev != nil && s.achievements != nil {
		if err := s.achievements.OnSegregationLogged(in.HouseholdID, in.OwnerUserID); err != nil {
			log.Printf("[ledger] streak badge check for household %d: %v", in.HouseholdID, err)
		}
	}
	return ev, score, nil
}

// RecordReportResolution rewards the reporter of a resolved waste report.
// Negative resolutionHours mean the duration is unknown.
func (s *Service) RecordReportResolution(userID int64, reportRef string, resolutionHours float64) (*domain.ActivityEvent, error) {
	carbonKg, pccTokens := domain.RateReportResolution(resolutionHours)
	details := domain.EventDetails{
		Report: &domain.ReportDetails{ReportRef: reportRef, ResolutionHours: resolutionHours},
	}
	return s.Record(userID, domain.ActivityReportResolution, carbonKg, pccTokens, details)
}

// RecordClassification rewards a household classification outcome.
// Non-rewarding labels (anything but GREEN/YELLOW) are a no-op.
func (s *Service) RecordClassification(userID, householdID int64, label string) (*domain.ActivityEvent, error) {
	carbonKg, pccTokens := domain.RateHouseholdClassification(label)
	details := domain.EventDetails{
		Classification: &domain.ClassificationDetails{HouseholdID: householdID, Label: label},
	}
	return s.Record(userID, domain.ActivityHouseholdClassification, carbonKg, pccTokens, details)
}

// RecordTraining rewards a completed training module and triggers the
// training badge.
func (s *Service) RecordTraining(userID, moduleID int64, scorePercent float64) (*domain.ActivityEvent, error) {
	carbonKg, pccTokens := domain.RateTraining(scorePercent)
	details := domain.EventDetails{
		Training: &domain.TrainingDetails{ModuleID: moduleID, ScorePercent: scorePercent},
	}
	ev, err := s.Record(userID, domain.ActivityTraining, carbonKg, pccTokens, details)
	if err != nil {
		return nil, err
	}

	if s.achievements != nil {
		if err := s.achievements.OnTrainingCompleted(userID, moduleID, scorePercent); err != nil {
			log.Printf("[ledger] training badge for user %d: %v", userID, err)
		}
	}
	return ev, nil
}

// ─── Awards ─────────────────────────────────────────────────────────────────

// AwardManual grants tokens directly (admin flow). The carbon figure is
// derived from the flat token amount via the shared conversion.
func (s *Service) AwardManual(userID int64, tokens float64, reason string) (newBalance float64, err error) {
	if tokens <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	carbonKg := tokens / domain.PCCPerKgCO2

	details := domain.EventDetails{Award: &domain.AwardDetails{Reason: reason}}
	if _, err := s.Record(userID, domain.ActivityManualAward, carbonKg, tokens, details); err != nil {
		return 0, err
	}
	return s.db.GetBalance(userID)
}

// RegisterSource records a rewardable physical event and its owner so a
// later AwardForSource call can claim it exactly once.
func (s *Service) RegisterSource(sourceType, sourceRef string, ownerUserID int64) error {
	return s.db.RegisterSource(sourceType, sourceRef, ownerUserID)
}

// AwardForSource grants tokens for a physical source event (e.g. an
// approved segregation log). The source's one-shot awarded flag and the
// ledger write commit in the same transaction; a second call for the
// same source fails with ErrAlreadyAwarded and changes nothing.
func (s *Service) AwardForSource(sourceType, sourceRef string, tokens float64, reason string) (newBalance float64, err error) {
	if tokens <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	carbonKg := tokens / domain.PCCPerKgCO2

	activityType := domain.ActivityManualAward
	if sourceType == "segregation_log" {
		activityType = domain.ActivitySegregationReward
	}

	ev := domain.ActivityEvent{
		ID:        uuid.NewString(),
		Type:      activityType,
		CarbonKg:  carbonKg,
		PCCTokens: tokens,
		Details: domain.EventDetails{
			Award: &domain.AwardDetails{Reason: reason, SourceRef: sourceRef, SourceType: sourceType},
		},
		SourceType: sourceType,
		SourceRef:  sourceRef,
		CreatedAt:  time.Now().UTC(),
	}

	owner, newBalance, err := s.db.AwardForSource(ev, tokens, reason)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyAwarded) {
			observability.AwardConflicts.Inc()
		} else {
			observability.RecordFailures.WithLabelValues(errKind(err)).Inc()
		}
		return 0, err
	}

	observability.EventsRecorded.WithLabelValues(string(activityType)).Inc()
	observability.ChainBlocksAppended.Inc()
	observability.TokensMinted.Add(tokens)

	log.Printf("[ledger] awarded %.4f PCC to user %d for %s/%s", tokens, owner, sourceType, sourceRef)
	return newBalance, nil
}

// ─── Audit ──────────────────────────────────────────────────────────────────

// VerifyChain recomputes the full audit chain. Returns the sequence of
// the first bad block, or -1 when intact.
func (s *Service) VerifyChain() (ok bool, firstBadSeq int64, err error) {
	ok, firstBadSeq, err = s.db.VerifyChain()
	if err != nil {
		return false, firstBadSeq, err
	}
	observability.ChainVerifyRuns.Inc()
	if n, lenErr := s.db.BlockCount(); lenErr == nil {
		observability.ChainLength.Set(float64(n))
	}
	if !ok {
		observability.ChainVerifyFailures.Inc()
		log.Printf("[ledger] audit chain broken at block %d", firstBadSeq)
		return false, firstBadSeq, fmt.Errorf("%w: block %d", domain.ErrChainIntegrity, firstBadSeq)
	}
	return true, -1, nil
}

// Blocks returns audit chain blocks, oldest first.
func (s *Service) Blocks(limit int) ([]domain.Block, error) {
	return s.db.Blocks(limit)
}

// Totals returns chain-wide carbon, token, and event counts.
func (s *Service) Totals() (carbonKg, pccTokens float64, events int64, err error) {
	return s.db.Totals()
}

// TotalsByActivity breaks totals down per activity type.
func (s *Service) TotalsByActivity() ([]sqlite.ActivityTotal, error) {
	return s.db.TotalsByActivity()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func errKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound), errors.Is(err, domain.ErrSourceNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyAwarded):
		return "conflict"
	default:
		return "storage"
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
