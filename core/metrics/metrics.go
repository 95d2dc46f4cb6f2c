package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Node action metrics
	ActionCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbook_action_calls_total",
			Help: "Total number of read-only action calls",
		},
		[]string{"action", "status"}, // get_order_book, success/error
	)

	ActionCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orderbook_action_call_duration_seconds",
			Help:    "Duration of read-only action calls",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"action"},
	)

	Submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbook_submissions_total",
			Help: "Total number of transactions submitted",
		},
		[]string{"action", "status"}, // place_buy_order, accepted/rejected/invalid
	)

	// Confirmation metrics
	Confirmations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbook_confirmations_total",
			Help: "Total number of transaction confirmation waits",
		},
		[]string{"status"}, // ok/failed/timeout/error
	)

	ConfirmationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orderbook_confirmation_duration_seconds",
			Help:    "Time from submission hash to confirmed result",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	// Cache metrics
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbook_cache_lookups_total",
			Help: "Total number of cache lookups",
		},
		[]string{"source", "result"}, // client/node, hit/miss/error
	)

	// Attestation metrics
	AttestationVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderbook_attestation_verifications_total",
			Help: "Total number of attestation signature recoveries",
		},
		[]string{"status"}, // success/error
	)
)

// Status label values shared by the counters above.
const (
	StatusSuccess  = "success"
	StatusError    = "error"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusInvalid  = "invalid"
	StatusOK       = "ok"
	StatusFailed   = "failed"
	StatusTimeout  = "timeout"
	ResultHit      = "hit"
	ResultMiss     = "miss"
)
