package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/greenloop-network/greenloop/internal/domain"
)

// timeFormat is the stored timestamp layout for ledger rows.
const timeFormat = time.RFC3339Nano

// ─── Accounts ───────────────────────────────────────────────────────────────

// EnsureAccount creates a zero-balance account for the user if one does
// not exist. Called by the identity collaborator when a user is created.
func (db *DB) EnsureAccount(userID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.db.Exec(`
		INSERT INTO accounts (user_id) VALUES (?)
		ON CONFLICT(user_id) DO NOTHING
	`, userID)
	return err
}

// AccountExists reports whether the user has a ledger account.
func (db *DB) AccountExists(userID int64) (bool, error) {
	var n int
	err := db.db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE user_id = ?`, userID).Scan(&n)
	return n > 0, err
}

// GetBalance returns the user's running PCC balance.
func (db *DB) GetBalance(userID int64) (float64, error) {
	var balance float64
	err := db.db.QueryRow(`SELECT balance FROM accounts WHERE user_id = ?`, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, domain.ErrAccountNotFound
	}
	return balance, err
}

// ─── Event Recording ────────────────────────────────────────────────────────

// RecordEvent atomically inserts an activity event, applies its token
// amount to the user's balance, and seals the transaction into the audit
// chain. Either all three effects land or none do.
func (db *DB) RecordEvent(ev domain.ActivityEvent) (newBalance float64, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	newBalance, err = db.appendEventTx(tx, ev)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return newBalance, nil
}

// appendEventTx performs the full ledger effect inside an open transaction:
// account lookup, event insert, balance increment, chain append, and (for
// segregation events) a history row for streak evaluation.
func (db *DB) appendEventTx(tx *sql.Tx, ev domain.ActivityEvent) (float64, error) {
	var balance float64
	err := tx.QueryRow(`SELECT balance FROM accounts WHERE user_id = ?`, ev.UserID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, domain.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("load account: %w", err)
	}

	details, err := json.Marshal(ev.Details)
	if err != nil {
		return 0, fmt.Errorf("encode details: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO events (id, user_id, activity_type, carbon_kg, pcc_tokens, details, source_type, source_ref, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, ev.ID, ev.UserID, string(ev.Type), ev.CarbonKg, ev.PCCTokens,
		string(details), ev.SourceType, ev.SourceRef, ev.CreatedAt.UTC().Format(timeFormat))
	if isUniqueViolation(err) {
		return 0, domain.ErrAlreadyAwarded
	}
	if err != nil {
		return 0, fmt.Errorf("insert event: %w", err)
	}

	newBalance := balance + ev.PCCTokens
	if _, err := tx.Exec(`UPDATE accounts SET balance = ? WHERE user_id = ?`, newBalance, ev.UserID); err != nil {
		return 0, fmt.Errorf("update balance: %w", err)
	}

	if err := appendBlockTx(tx, domain.EncodePayload(ev), ev.CreatedAt); err != nil {
		return 0, err
	}

	if ev.Type == domain.ActivitySegregation && ev.Details.Segregation != nil {
		seg := ev.Details.Segregation
		_, err := tx.Exec(`
			INSERT INTO segregation_history (household_id, user_id, log_date, score)
			VALUES (?, ?, ?, ?)
		`, seg.HouseholdID, ev.UserID, seg.LogDate, seg.Score)
		if err != nil {
			return 0, fmt.Errorf("insert history: %w", err)
		}
	}

	return newBalance, nil
}

// ─── Source-Fenced Awards ───────────────────────────────────────────────────

// RegisterSource records a rewardable physical event (e.g. a segregation
// log) with its owner. Idempotent; the awarded flag starts false.
func (db *DB) RegisterSource(sourceType, sourceRef string, ownerUserID int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	_, err := db.db.Exec(`
		INSERT INTO source_records (source_type, source_ref, owner_user_id)
		VALUES (?, ?, ?)
		ON CONFLICT(source_type, source_ref) DO NOTHING
	`, sourceType, sourceRef, ownerUserID)
	return err
}

// GetSource returns the source record, or domain.ErrSourceNotFound.
func (db *DB) GetSource(sourceType, sourceRef string) (domain.SourceRecord, error) {
	rec := domain.SourceRecord{SourceType: sourceType, SourceRef: sourceRef}
	var awarded int
	var awardedAt sql.NullString
	err := db.db.QueryRow(`
		SELECT owner_user_id, awarded, awarded_tokens, award_reason, awarded_at
		FROM source_records WHERE source_type = ? AND source_ref = ?
	`, sourceType, sourceRef).Scan(&rec.OwnerUserID, &awarded, &rec.AwardedTokens, &rec.AwardReason, &awardedAt)
	if err == sql.ErrNoRows {
		return rec, domain.ErrSourceNotFound
	}
	if err != nil {
		return rec, err
	}
	rec.Awarded = awarded == 1
	if awardedAt.Valid {
		rec.AwardedAt, _ = time.Parse(timeFormat, awardedAt.String)
	}
	return rec, nil
}

// AwardForSource flips the source's one-shot awarded flag and records the
// reward event in the same transaction. The flag flip is a compare-and-set:
// a concurrent caller that loses the race gets domain.ErrAlreadyAwarded,
// never a second event.
func (db *DB) AwardForSource(ev domain.ActivityEvent, tokens float64, reason string) (owner int64, newBalance float64, err error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.db.Begin()
	if err != nil {
		return 0, 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var awarded int
	err = tx.QueryRow(`
		SELECT owner_user_id, awarded FROM source_records
		WHERE source_type = ? AND source_ref = ?
	`, ev.SourceType, ev.SourceRef).Scan(&owner, &awarded)
	if err == sql.ErrNoRows {
		return 0, 0, domain.ErrSourceNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("load source: %w", err)
	}

	// Compare-and-set on the awarded flag. RowsAffected == 0 means a
	// concurrent award already claimed this source.
	res, err := tx.Exec(`
		UPDATE source_records
		SET awarded = 1, awarded_tokens = ?, award_reason = ?, awarded_at = ?
		WHERE source_type = ? AND source_ref = ? AND awarded = 0
	`, tokens, reason, ev.CreatedAt.UTC().Format(timeFormat), ev.SourceType, ev.SourceRef)
	if err != nil {
		return 0, 0, fmt.Errorf("claim source: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, 0, domain.ErrAlreadyAwarded
	}

	ev.UserID = owner
	newBalance, err = db.appendEventTx(tx, ev)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit: %w", err)
	}
	return owner, newBalance, nil
}

// ─── Queries ────────────────────────────────────────────────────────────────

// EventsForUser returns the user's activity events, newest first.
func (db *DB) EventsForUser(userID int64, limit int) ([]domain.ActivityEvent, error) {
	rows, err := db.db.Query(`
		SELECT id, user_id, activity_type, carbon_kg, pcc_tokens, details, source_type, source_ref, created_at
		FROM events WHERE user_id = ?
		ORDER BY created_at DESC LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityEvent
	for rows.Next() {
		var ev domain.ActivityEvent
		var atype, details, createdStr string
		if err := rows.Scan(&ev.ID, &ev.UserID, &atype, &ev.CarbonKg, &ev.PCCTokens,
			&details, &ev.SourceType, &ev.SourceRef, &createdStr); err != nil {
			return nil, err
		}
		ev.Type = domain.ActivityType(atype)
		if err := json.Unmarshal([]byte(details), &ev.Details); err != nil {
			return nil, fmt.Errorf("decode details: %w", err)
		}
		ev.CreatedAt, _ = time.Parse(timeFormat, createdStr)
		result = append(result, ev)
	}
	return result, rows.Err()
}

// SumTokensForUser sums pcc_tokens over the user's events. The result must
// always equal the account balance (reconciliation invariant).
func (db *DB) SumTokensForUser(userID int64) (float64, error) {
	var sum sql.NullFloat64
	err := db.db.QueryRow(`
		SELECT SUM(pcc_tokens) FROM events WHERE user_id = ?
	`, userID).Scan(&sum)
	return sum.Float64, err
}

// Totals returns chain-wide carbon, token, and event counts.
func (db *DB) Totals() (carbonKg, pccTokens float64, events int64, err error) {
	var c, p sql.NullFloat64
	err = db.db.QueryRow(`
		SELECT SUM(carbon_kg), SUM(pcc_tokens), COUNT(*) FROM events
	`).Scan(&c, &p, &events)
	return c.Float64, p.Float64, events, err
}

// ActivityTotal aggregates carbon and tokens for one activity type.
type ActivityTotal struct {
	Type      domain.ActivityType `json:"activity_type"`
	CarbonKg  float64             `json:"carbon_kg"`
	PCCTokens float64             `json:"pcc_tokens"`
	Events    int64               `json:"events"`
}

// TotalsByActivity breaks down totals per activity type.
func (db *DB) TotalsByActivity() ([]ActivityTotal, error) {
	rows, err := db.db.Query(`
		SELECT activity_type, SUM(carbon_kg), SUM(pcc_tokens), COUNT(*)
		FROM events GROUP BY activity_type ORDER BY activity_type
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ActivityTotal
	for rows.Next() {
		var t ActivityTotal
		var atype string
		if err := rows.Scan(&atype, &t.CarbonKg, &t.PCCTokens, &t.Events); err != nil {
			return nil, err
		}
		t.Type = domain.ActivityType(atype)
		result = append(result, t)
	}
	return result, rows.Err()
}

// HighScoreLogCount counts segregation history rows for a household on or
// after sinceDate (YYYY-MM-DD) with at least minScore. Used for streak
// badge evaluation.
func (db *DB) HighScoreLogCount(householdID int64, sinceDate string, minScore int) (int, error) {
	var n int
	err := db.db.QueryRow(`
		SELECT COUNT(*) FROM segregation_history
		WHERE household_id = ? AND log_date >= ? AND score >= ?
	`, householdID, sinceDate, minScore).Scan(&n)
	return n, err
}
