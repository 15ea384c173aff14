package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/greenloop-network/greenloop/internal/domain"
)

// ─── Audit Chain Storage ────────────────────────────────────────────────────
// Blocks are appended only from inside a ledger write transaction, which
// the DB write mutex serializes. Two appends can therefore never read the
// same chain tip.

// appendBlockTx seals a payload onto the chain inside an open transaction.
func appendBlockTx(tx *sql.Tx, payload string, now time.Time) error {
	var prev string
	err := tx.QueryRow(`SELECT hash FROM blocks ORDER BY seq DESC LIMIT 1`).Scan(&prev)
	if err == sql.ErrNoRows {
		prev = ""
	} else if err != nil {
		return fmt.Errorf("read chain tip: %w", err)
	}

	hash := domain.ChainHash(prev, payload)
	_, err = tx.Exec(`
		INSERT INTO blocks (previous_hash, hash, payload, created_at)
		VALUES (?, ?, ?, ?)
	`, prev, hash, payload, now.UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("append block: %w", err)
	}
	return nil
}

// Blocks returns up to limit blocks in sequence order, oldest first.
// A limit <= 0 returns the whole chain.
func (db *DB) Blocks(limit int) ([]domain.Block, error) {
	q := `SELECT seq, previous_hash, hash, payload, created_at FROM blocks ORDER BY seq`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Block
	for rows.Next() {
		var b domain.Block
		var createdStr string
		if err := rows.Scan(&b.Sequence, &b.PreviousHash, &b.Hash, &b.Payload, &createdStr); err != nil {
			return nil, err
		}
		b.CreatedAt, _ = time.Parse(timeFormat, createdStr)
		result = append(result, b)
	}
	return result, rows.Err()
}

// BlockCount returns the chain length.
func (db *DB) BlockCount() (int64, error) {
	var n int64
	err := db.db.QueryRow(`SELECT COUNT(*) FROM blocks`).Scan(&n)
	return n, err
}

// VerifyChain walks the chain from genesis, recomputing every hash from
// the stored payload and checking the link to its predecessor. It returns
// the sequence number of the first bad block, or -1 when the chain is
// intact. O(chain length); intended as an out-of-band audit, not for the
// request hot path.
func (db *DB) VerifyChain() (ok bool, firstBadSeq int64, err error) {
	rows, err := db.db.Query(`SELECT seq, previous_hash, hash, payload FROM blocks ORDER BY seq`)
	if err != nil {
		return false, -1, err
	}
	defer rows.Close()

	prev := ""
	for rows.Next() {
		var b domain.Block
		if err := rows.Scan(&b.Sequence, &b.PreviousHash, &b.Hash, &b.Payload); err != nil {
			return false, -1, err
		}
		if !b.VerifyLink(prev) {
			return false, b.Sequence, nil
		}
		prev = b.Hash
	}
	if err := rows.Err(); err != nil {
		return false, -1, err
	}
	return true, -1, nil
}
