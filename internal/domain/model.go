// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of the architecture; it depends on nothing.
package domain

import (
	"time"
)

// ─── Activity Types ─────────────────────────────────────────────────────────

// ActivityType classifies a balance-affecting activity.
type ActivityType string

const (
	ActivitySegregation             ActivityType = "SEGREGATION"
	ActivitySegregationReward       ActivityType = "SEGREGATION_REWARD"
	ActivityReportResolution        ActivityType = "REPORT_RESOLUTION"
	ActivityHouseholdClassification ActivityType = "HOUSEHOLD_CLASSIFICATION"
	ActivityManualAward             ActivityType = "MANUAL_AWARD"
	ActivityTraining                ActivityType = "TRAINING"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivitySegregation, ActivitySegregationReward, ActivityReportResolution,
		ActivityHouseholdClassification, ActivityManualAward, ActivityTraining:
		return true
	}
	return false
}

// ─── Account ────────────────────────────────────────────────────────────────

// Account holds a user's running PCC balance.
// The balance is mutated only inside the same transaction as the
// activity event that authorizes the change.
type Account struct {
	UserID  int64   `json:"user_id"`
	Balance float64 `json:"balance"`
}

// ─── Activity Events ────────────────────────────────────────────────────────

// ActivityEvent is one immutable row in the append-only reward log.
// SourceType/SourceRef are set only for source-fenced awards and carry a
// uniqueness constraint in storage, so a physical event can be rewarded
// at most once.
type ActivityEvent struct {
	ID         string       `json:"id"`
	UserID     int64        `json:"user_id"`
	Type       ActivityType `json:"activity_type"`
	CarbonKg   float64      `json:"carbon_kg"`
	PCCTokens  float64      `json:"pcc_tokens"`
	Details    EventDetails `json:"details"`
	SourceType string       `json:"source_type,omitempty"`
	SourceRef  string       `json:"source_ref,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// EventDetails is a tagged variant: exactly one of the typed sections is
// set, matching the event's activity type. Notes carries free-form audit
// annotations (award reasons, operator remarks).
type EventDetails struct {
	Segregation    *SegregationDetails    `json:"segregation,omitempty"`
	Report         *ReportDetails         `json:"report,omitempty"`
	Classification *ClassificationDetails `json:"classification,omitempty"`
	Training       *TrainingDetails       `json:"training,omitempty"`
	Award          *AwardDetails          `json:"award,omitempty"`
	Notes          map[string]string      `json:"notes,omitempty"`
}

// SegregationDetails records the weights behind a segregation reward.
type SegregationDetails struct {
	DryKg       float64 `json:"dry_kg"`
	HouseholdID int64   `json:"household_id"`
	LogDate     string  `json:"log_date"`
	RejectKg    float64 `json:"reject_kg"`
	Score       int     `json:"score"`
	WetKg       float64 `json:"wet_kg"`
}

// ReportDetails records the resolution metrics behind a report reward.
type ReportDetails struct {
	ReportRef       string  `json:"report_ref"`
	ResolutionHours float64 `json:"resolution_hours"`
}

// ClassificationDetails records a household classification outcome.
type ClassificationDetails struct {
	HouseholdID int64  `json:"household_id"`
	Label       string `json:"label"`
}

// TrainingDetails records a completed training module.
type TrainingDetails struct {
	ModuleID     int64   `json:"module_id"`
	ScorePercent float64 `json:"score_percent"`
}

// AwardDetails records a manual or source-fenced token grant.
type AwardDetails struct {
	Reason     string `json:"reason,omitempty"`
	SourceRef  string `json:"source_ref,omitempty"`
	SourceType string `json:"source_type,omitempty"`
}

// ─── Source Records ─────────────────────────────────────────────────────────

// SourceRecord is the idempotency fence for award flows: the one-shot
// Awarded flag transitions false → true exactly once, atomically with the
// activity event it authorizes.
type SourceRecord struct {
	SourceType    string    `json:"source_type"`
	SourceRef     string    `json:"source_ref"`
	OwnerUserID   int64     `json:"owner_user_id"`
	Awarded       bool      `json:"awarded"`
	AwardedTokens float64   `json:"awarded_tokens,omitempty"`
	AwardReason   string    `json:"award_reason,omitempty"`
	AwardedAt     time.Time `json:"awarded_at,omitempty"`
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// BadgeCategory groups badges for display and metrics.
type BadgeCategory string

const (
	BadgeTraining    BadgeCategory = "TRAINING"
	BadgeSegregation BadgeCategory = "SEGREGATION"
	BadgeReporting   BadgeCategory = "REPORTING"
	BadgeComposting  BadgeCategory = "COMPOSTING"
	BadgeCarbon      BadgeCategory = "CARBON"
)

// Badge is a criteria-keyed achievement definition. The criteria key is
// globally unique; definitions are created lazily and never duplicated.
type Badge struct {
	ID          int64         `json:"id"`
	CriteriaKey string        `json:"criteria_key"`
	Name        string        `json:"name"`
	Category    BadgeCategory `json:"category"`
	Description string        `json:"description,omitempty"`
	Icon        string        `json:"icon,omitempty"`
	Active      bool          `json:"active"`
	CreatedAt   time.Time     `json:"created_at"`
}

// UserBadge is one grant of a badge to a user. The (user, badge) pair
// appears at most once.
type UserBadge struct {
	UserID    int64     `json:"user_id"`
	BadgeID   int64     `json:"badge_id"`
	AwardedAt time.Time `json:"awarded_at"`
}
