// Package api provides the HTTP ops and audit surface for GreenLoop.
// It exposes read-only ledger queries, chain verification, badge listings,
// and Prometheus metrics. Writes go through the application services, not
// this server.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/greenloop-network/greenloop/internal/app/achievement"
	"github.com/greenloop-network/greenloop/internal/app/auditor"
	"github.com/greenloop-network/greenloop/internal/app/ledger"
)

// Server is the GreenLoop HTTP server.
type Server struct {
	ledger         *ledger.Service
	badges         *achievement.Service
	auditor        *auditor.Auditor
	metricsEnabled bool
}

// NewServer creates the ops server over the application services.
func NewServer(l *ledger.Service, b *achievement.Service) *Server {
	return &Server{ledger: l, badges: b}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetAuditor attaches the background auditor for /api/stats reporting.
func (s *Server) SetAuditor(a *auditor.Auditor) { s.auditor = a }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/ledger/{userID}", func(r chi.Router) {
			r.Get("/balance", s.handleBalance)
			r.Get("/events", s.handleEvents)
		})
		r.Route("/chain", func(r chi.Router) {
			r.Get("/verify", s.handleChainVerify)
			r.Get("/blocks", s.handleChainBlocks)
		})
		r.Get("/badges/{userID}", s.handleBadges)
		r.Get("/stats", s.handleStats)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
