// Package metrics holds the Prometheus counters of the service,
// exposed on /metrics by the HTTP server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TalliesCreated counts successfully committed direct-debit batches.
	TalliesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "membership_tallies_created_total",
		Help: "Number of direct-debit tallies created.",
	})

	// TransactionsDebited counts the member debits inside committed
	// tallies.
	TransactionsDebited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "membership_transactions_debited_total",
		Help: "Number of member debit transactions written into tallies.",
	})

	// FeeComputations counts full monthly-fee computations, cache hits
	// excluded.
	FeeComputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "membership_fee_computations_total",
		Help: "Number of monthly fee computations served from scratch.",
	})
)
