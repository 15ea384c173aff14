package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Callers match these with errors.Is; storage maps driver errors onto them.

var (
	// Ledger errors
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidAmount   = errors.New("token amount must be positive")
	ErrInvalidActivity = errors.New("unknown activity type")

	// Source-fenced award errors
	ErrSourceNotFound = errors.New("source record not found")
	ErrAlreadyAwarded = errors.New("source already awarded")

	// Audit chain errors
	ErrChainIntegrity = errors.New("audit chain integrity check failed")

	// Badge errors
	ErrBadgeNotFound = errors.New("badge definition not found")
)
