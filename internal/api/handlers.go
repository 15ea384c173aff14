package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greenloop-network/greenloop/internal/domain"
)

// ─── Ledger Queries ─────────────────────────────────────────────────────────

// handleBalance returns a user's running PCC balance.
// GET /api/ledger/{userID}/balance
func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	balance, err := s.ledger.Balance(userID)
	if errors.Is(err, domain.ErrAccountNotFound) {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"balance": balance,
	})
}

// handleEvents returns a user's activity events, newest first.
// GET /api/ledger/{userID}/events?limit=N
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	events, err := s.ledger.Events(userID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"events":  events,
		"count":   len(events),
	})
}

// ─── Audit Chain ────────────────────────────────────────────────────────────

// handleChainVerify recomputes the full audit chain.
// GET /api/chain/verify
func (s *Server) handleChainVerify(w http.ResponseWriter, r *http.Request) {
	ok, badSeq, err := s.ledger.VerifyChain()
	if err != nil && !errors.Is(err, domain.ErrChainIntegrity) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"intact":        ok,
		"first_bad_seq": badSeq,
	})
}

// handleChainBlocks returns audit chain blocks, oldest first.
// GET /api/chain/blocks?limit=N
func (s *Server) handleChainBlocks(w http.ResponseWriter, r *http.Request) {
	limit := 0 // all
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	blocks, err := s.ledger.Blocks(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blocks": blocks,
		"count":  len(blocks),
	})
}

// ─── Badges ─────────────────────────────────────────────────────────────────

// handleBadges returns a user's earned badges.
// GET /api/badges/{userID}
func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDParam(w, r)
	if !ok {
		return
	}

	badges, err := s.badges.BadgesForUser(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id": userID,
		"badges":  badges,
		"count":   len(badges),
	})
}

// ─── Stats ──────────────────────────────────────────────────────────────────

// handleStats returns chain-wide totals, the per-activity breakdown, and
// auditor state.
// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	carbonKg, pccTokens, events, err := s.ledger.Totals()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	byActivity, err := s.ledger.TotalsByActivity()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]interface{}{
		"total_carbon_kg":  carbonKg,
		"total_pcc_tokens": pccTokens,
		"total_events":     events,
		"by_activity":      byActivity,
	}
	if s.auditor != nil {
		resp["auditor"] = s.auditor.Stats()
	}

	writeJSON(w, http.StatusOK, resp)
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return 0, false
	}
	return userID, true
}
