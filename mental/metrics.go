package mental

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	revisionOperation     = "revision"
	objectClaimsOperation = "object_claims"
)

var (
	// claimsAppended counts ledger appends by claim kind.
	claimsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "household_mental_claims_appended_total",
		Help: "Total claims appended to the ledger by kind",
	}, []string{"kind"})

	// replaysTotal counts materializations by operation.
	replaysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "household_mental_replays_total",
		Help: "Total ledger replays by operation",
	}, []string{"operation"})

	// replayedClaims tracks the number of claims read per replay.
	replayedClaims = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "household_mental_replayed_claims",
		Help:    "Number of claims replayed per materialization",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"operation"})
)
