// Package observability defines Prometheus metrics for the reward ledger.
// Metrics cover the ledger write path, the audit chain, and badge grants;
// they are registered via promauto and served on the ops /metrics endpoint.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// EventsRecorded counts committed activity events by activity type.
var EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "ledger",
	Name:      "events_recorded_total",
	Help:      "Total activity events committed to the ledger.",
}, []string{"activity_type"})

// RecordNoops counts negligible-amount records skipped below epsilon.
var RecordNoops = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "ledger",
	Name:      "record_noops_total",
	Help:      "Total record calls skipped as negligible.",
})

// RecordFailures counts failed ledger writes by error kind.
var RecordFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "ledger",
	Name:      "record_failures_total",
	Help:      "Total failed ledger writes by error kind.",
}, []string{"kind"})

// AwardConflicts counts source awards rejected as already awarded.
var AwardConflicts = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "ledger",
	Name:      "award_conflicts_total",
	Help:      "Total source award attempts rejected by the idempotency fence.",
})

// TokensMinted tracks total PCC tokens minted.
var TokensMinted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "ledger",
	Name:      "tokens_minted_total",
	Help:      "Total PCC tokens credited across all accounts.",
})

// RecordDuration observes end-to-end ledger write latency.
var RecordDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "greenloop",
	Subsystem: "ledger",
	Name:      "record_duration_seconds",
	Help:      "Latency of a full ledger write (event + balance + block).",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
})

// ─── Audit Chain Metrics ────────────────────────────────────────────────────

// ChainBlocksAppended counts blocks sealed onto the audit chain.
var ChainBlocksAppended = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "chain",
	Name:      "blocks_appended_total",
	Help:      "Total blocks appended to the audit chain.",
})

// ChainVerifyRuns counts out-of-band chain verifications.
var ChainVerifyRuns = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "chain",
	Name:      "verify_runs_total",
	Help:      "Total chain verification passes.",
})

// ChainVerifyFailures counts verifications that found a broken link.
var ChainVerifyFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "chain",
	Name:      "verify_failures_total",
	Help:      "Total chain verifications that detected corruption.",
})

// ChainLength tracks the current chain length.
var ChainLength = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "greenloop",
	Subsystem: "chain",
	Name:      "length",
	Help:      "Current number of blocks in the audit chain.",
})

// ─── Badge Metrics ──────────────────────────────────────────────────────────

// BadgesAwarded counts fresh badge grants by category.
var BadgesAwarded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "greenloop",
	Subsystem: "badges",
	Name:      "awarded_total",
	Help:      "Total fresh badge grants by category.",
}, []string{"category"})
