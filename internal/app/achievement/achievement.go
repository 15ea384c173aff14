// Package achievement grants one-shot badges in response to ledger
// activity. Badge definitions are keyed by a globally unique criteria key
// and created lazily; grants ride on a storage-level uniqueness guarantee,
// so re-delivered triggers never duplicate a badge.
package achievement

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/greenloop-network/greenloop/internal/domain"
	"github.com/greenloop-network/greenloop/internal/infra/observability"
	"github.com/greenloop-network/greenloop/internal/infra/sqlite"
)

// Config controls streak badge evaluation.
type Config struct {
	// StreakDays is the trailing window length and the minimum number of
	// qualifying segregation logs inside it.
	StreakDays int
	// StreakMinScore is the minimum segregation score for a log to count
	// toward the streak.
	StreakMinScore int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{StreakDays: 7, StreakMinScore: 80}
}

// Service is the badge awarder.
type Service struct {
	config Config
	db     *sqlite.DB
	now    func() time.Time
}

// New creates a badge awarder backed by the given store.
func New(cfg Config, db *sqlite.DB) *Service {
	if cfg.StreakDays <= 0 {
		cfg.StreakDays = DefaultConfig().StreakDays
	}
	if cfg.StreakMinScore <= 0 {
		cfg.StreakMinScore = DefaultConfig().StreakMinScore
	}
	return &Service{config: cfg, db: db, now: time.Now}
}

// ─── Badge Operations ───────────────────────────────────────────────────────

// EnsureBadge creates a badge definition if its criteria key is new and
// returns the stored definition either way.
func (s *Service) EnsureBadge(criteriaKey, name string, category domain.BadgeCategory, description, icon string) (domain.Badge, error) {
	return s.db.EnsureBadge(criteriaKey, name, category, description, icon)
}

// AwardOnce grants the badge with the given criteria key to the user if
// they do not already hold it. A missing definition is a logged no-op, not
// an error: triggers may fire before their badge is seeded.
func (s *Service) AwardOnce(userID int64, criteriaKey string) (fresh bool, err error) {
	badge, err := s.db.GetBadge(criteriaKey)
	if errors.Is(err, domain.ErrBadgeNotFound) {
		log.Printf("[achievement] no badge defined for %q, skipping", criteriaKey)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	fresh, err = s.db.AwardBadgeOnce(userID, badge.ID)
	if err != nil {
		return false, err
	}
	if fresh {
		observability.BadgesAwarded.WithLabelValues(string(badge.Category)).Inc()
		log.Printf("[achievement] awarded %q to user %d", badge.CriteriaKey, userID)
	}
	return fresh, nil
}

// BadgesForUser returns the user's badges, newest grant first.
func (s *Service) BadgesForUser(userID int64) ([]domain.Badge, error) {
	return s.db.BadgesForUser(userID)
}

// ─── Activity Triggers ──────────────────────────────────────────────────────

// OnTrainingCompleted grants the per-module completion badge.
func (s *Service) OnTrainingCompleted(userID, moduleID int64, scorePercent float64) error {
	key := fmt.Sprintf("training_module_%d_completed", moduleID)
	if _, err := s.EnsureBadge(key, fmt.Sprintf("Training Graduate: Module %d", moduleID),
		domain.BadgeTraining, "Completed a waste management training module", "badge_training"); err != nil {
		return err
	}
	_, err := s.AwardOnce(userID, key)
	return err
}

// OnReportSubmitted grants the first-report badge to a reporter.
func (s *Service) OnReportSubmitted(reporterID int64) error {
	const key = "first_waste_report"
	if _, err := s.EnsureBadge(key, "Active Reporter",
		domain.BadgeReporting, "Submitted a waste report", "badge_reporting"); err != nil {
		return err
	}
	_, err := s.AwardOnce(reporterID, key)
	return err
}

// OnSegregationLogged checks the household's trailing streak and grants
// the streak badge to the household owner once the window holds enough
// high-score logs. The badge is per household, so a long-running streak
// awards only once.
func (s *Service) OnSegregationLogged(householdID, ownerUserID int64) error {
	since := s.now().UTC().AddDate(0, 0, -(s.config.StreakDays - 1)).Format("2006-01-02")
	n, err := s.db.HighScoreLogCount(householdID, since, s.config.StreakMinScore)
	if err != nil {
		return err
	}
	if n < s.config.StreakDays {
		return nil
	}

	key := fmt.Sprintf("segregation_streak_%d_household_%d", s.config.StreakDays, householdID)
	if _, err := s.EnsureBadge(key, "Segregation Star",
		domain.BadgeSegregation, fmt.Sprintf("%d days of clean segregation in a row", s.config.StreakDays),
		"badge_segregation"); err != nil {
		return err
	}
	_, err = s.AwardOnce(ownerUserID, key)
	return err
}
