// Package metrics provides Prometheus metrics for homefeed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeSkipped     = "skipped"
	OutcomeRejected    = "rejected"
	OutcomeInvalid     = "invalid"
	OutcomeUnreachable = "unreachable"
)

var (
	// FetchTotal counts feed fetches by feed and outcome.
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homefeed",
			Name:      "fetch_total",
			Help:      "Total number of feed fetches",
		},
		[]string{"feed", "outcome"},
	)

	// MutationTotal counts user-initiated mutations.
	MutationTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homefeed",
			Name:      "mutation_total",
			Help:      "Total number of mutation calls",
		},
		[]string{"kind", "outcome"},
	)

	// RefreshInFlight tracks refreshAll calls that have not settled.
	RefreshInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "homefeed",
			Name:      "refresh_in_flight",
			Help:      "Number of refresh operations still waiting on a fetch",
		},
	)
)

// RecordFetch records one fetch settlement.
func RecordFetch(feed, outcome string) {
	FetchTotal.WithLabelValues(feed, outcome).Inc()
}

// RecordMutation records one mutation attempt.
func RecordMutation(kind, outcome string) {
	MutationTotal.WithLabelValues(kind, outcome).Inc()
}
