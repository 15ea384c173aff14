// Package sqlite provides persistent storage for the reward ledger:
// accounts, activity events, the hash-chained audit log, source records,
// and badges. A single write mutex serializes every write transaction:
// the chain tail and account balances share one critical section, so a
// ledger write and its audit block are inseparable.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// DB wraps the sqlite handle for ledger storage.
type DB struct {
	mu sync.Mutex // guards all write transactions
	db *sql.DB
}

// Open creates (or opens) the ledger database under dir and applies
// migrations. The file is created with WAL journaling and a busy timeout
// so readers never block behind the single writer.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dir, "greenloop.db")

	handle, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := &DB{db: handle}
	if err := db.migrate(); err != nil {
		handle.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the underlying database handle.
func (db *DB) Close() error {
	return db.db.Close()
}

// ─── Schema ─────────────────────────────────────────────────────────────────

// Migrations returns the schema migration statements.
// Each string is a single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		// Running PCC balance, one row per user. Mutated only inside
		// the same transaction as the authorizing event insert.
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id    INTEGER PRIMARY KEY,
			balance    REAL NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Append-only activity event log
		`CREATE TABLE IF NOT EXISTS events (
			id            TEXT PRIMARY KEY,
			user_id       INTEGER NOT NULL,
			activity_type TEXT NOT NULL,
			carbon_kg     REAL NOT NULL,
			pcc_tokens    REAL NOT NULL,
			details       TEXT NOT NULL DEFAULT '{}',
			source_type   TEXT NOT NULL DEFAULT '',
			source_ref    TEXT NOT NULL DEFAULT '',
			created_at    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_user ON events(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_type ON events(activity_type)`,
		// Storage-layer idempotency fence: one rewarded event per source.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_source
			ON events(source_type, source_ref) WHERE source_type != ''`,

		// Hash-chained audit blocks, strictly sequence-ordered
		`CREATE TABLE IF NOT EXISTS blocks (
			seq           INTEGER PRIMARY KEY AUTOINCREMENT,
			previous_hash TEXT NOT NULL DEFAULT '',
			hash          TEXT NOT NULL,
			payload       TEXT NOT NULL,
			created_at    TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// One-shot award fence per physical source event
		`CREATE TABLE IF NOT EXISTS source_records (
			source_type    TEXT NOT NULL,
			source_ref     TEXT NOT NULL,
			owner_user_id  INTEGER NOT NULL,
			awarded        INTEGER NOT NULL DEFAULT 0,
			awarded_tokens REAL NOT NULL DEFAULT 0,
			award_reason   TEXT NOT NULL DEFAULT '',
			awarded_at     TEXT,
			PRIMARY KEY (source_type, source_ref)
		)`,

		// Segregation quality history, kept for streak badge evaluation
		`CREATE TABLE IF NOT EXISTS segregation_history (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			household_id INTEGER NOT NULL,
			user_id      INTEGER NOT NULL,
			log_date     TEXT NOT NULL,
			score        INTEGER NOT NULL,
			created_at   TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_seg_history_household
			ON segregation_history(household_id, log_date)`,

		// Badge definitions, lazily created, keyed by criteria
		`CREATE TABLE IF NOT EXISTS badges (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			criteria_key TEXT NOT NULL UNIQUE,
			name         TEXT NOT NULL,
			category     TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			icon         TEXT NOT NULL DEFAULT '',
			is_active    INTEGER NOT NULL DEFAULT 1,
			created_at   TEXT NOT NULL DEFAULT (datetime('now'))
		)`,

		// Badge grants, at most one per (user, badge)
		`CREATE TABLE IF NOT EXISTS user_badges (
			user_id    INTEGER NOT NULL,
			badge_id   INTEGER NOT NULL,
			awarded_at TEXT NOT NULL DEFAULT (datetime('now')),
			PRIMARY KEY (user_id, badge_id)
		)`,
	}
}

func (db *DB) migrate() error {
	for _, stmt := range Migrations() {
		if _, err := db.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
