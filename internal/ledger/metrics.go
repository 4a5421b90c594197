// internal/ledger/metrics.go
package ledger

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	earnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_earns_total",
		Help: "Earn operations processed, labeled by outcome",
	}, []string{"outcome"})

	exchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_exchanges_total",
		Help: "Exchange operations processed, labeled by outcome",
	}, []string{"outcome"})

	tokensEarned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_tokens_earned_total",
		Help: "Tokens credited across all earn operations",
	})

	tokensSpent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_tokens_spent_total",
		Help: "Tokens debited across all completed exchanges",
	})

	roundTripDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ledger_backend_round_trip_seconds",
		Help:    "Simulated backend round-trip duration per operation",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
