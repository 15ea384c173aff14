package sqlite

import (
	"database/sql"
	"time"

	"github.com/greenloop-network/greenloop/internal/domain"
)

// ─── Badge Operations ───────────────────────────────────────────────────────

// EnsureBadge creates the badge definition for criteriaKey if missing and
// returns it. Concurrent creators racing on the same key are resolved by
// the UNIQUE constraint; the loser reads the winner's row.
func (db *DB) EnsureBadge(criteriaKey, name string, category domain.BadgeCategory, description, icon string) (domain.Badge, error) {
	db.mu.Lock()
	_, err := db.db.Exec(`
		INSERT INTO badges (criteria_key, name, category, description, icon)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(criteria_key) DO NOTHING
	`, criteriaKey, name, string(category), description, icon)
	db.mu.Unlock()
	if err != nil {
		return domain.Badge{}, err
	}
	return db.GetBadge(criteriaKey)
}

// GetBadge looks up a badge definition by criteria key.
func (db *DB) GetBadge(criteriaKey string) (domain.Badge, error) {
	var b domain.Badge
	var category, createdStr string
	var active int
	err := db.db.QueryRow(`
		SELECT id, criteria_key, name, category, description, icon, is_active, created_at
		FROM badges WHERE criteria_key = ?
	`, criteriaKey).Scan(&b.ID, &b.CriteriaKey, &b.Name, &category, &b.Description, &b.Icon, &active, &createdStr)
	if err == sql.ErrNoRows {
		return b, domain.ErrBadgeNotFound
	}
	if err != nil {
		return b, err
	}
	b.Category = domain.BadgeCategory(category)
	b.Active = active == 1
	b.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdStr)
	return b, nil
}

// AwardBadgeOnce grants badgeID to the user unless already granted.
// Returns true only for a fresh grant; the duplicate path is a silent
// no-op so repeated triggers stay idempotent.
func (db *DB) AwardBadgeOnce(userID, badgeID int64) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	res, err := db.db.Exec(`
		INSERT INTO user_badges (user_id, badge_id, awarded_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, badge_id) DO NOTHING
	`, userID, badgeID, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// BadgesForUser returns the badges granted to a user, newest first.
func (db *DB) BadgesForUser(userID int64) ([]domain.Badge, error) {
	rows, err := db.db.Query(`
		SELECT b.id, b.criteria_key, b.name, b.category, b.description, b.icon, b.is_active
		FROM user_badges ub
		JOIN badges b ON b.id = ub.badge_id
		WHERE ub.user_id = ?
		ORDER BY ub.awarded_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Badge
	for rows.Next() {
		var b domain.Badge
		var category string
		var active int
		if err := rows.Scan(&b.ID, &b.CriteriaKey, &b.Name, &category, &b.Description, &b.Icon, &active); err != nil {
			return nil, err
		}
		b.Category = domain.BadgeCategory(category)
		b.Active = active == 1
		result = append(result, b)
	}
	return result, rows.Err()
}

// BadgeCountForUser returns how many badges a user holds.
func (db *DB) BadgeCountForUser(userID int64) (int64, error) {
	var n int64
	err := db.db.QueryRow(`SELECT COUNT(*) FROM user_badges WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}
