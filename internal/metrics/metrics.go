package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RankingsComputed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepthink_rankings_total",
			Help: "Total number of rankings computed",
		},
		[]string{"kind"},
	)

	HistoryEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepthink_history_entries_total",
			Help: "Total number of history entries recorded",
		},
		[]string{"entity", "action"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deepthink_store_operation_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "op"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepthink_store_operation_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"backend", "op"},
	)
)

// ObserveStore records the duration of a store call started at start and counts it as failed when err is set.
func ObserveStore(backend, op string, start time.Time, err error) {
	StoreOperationDuration.WithLabelValues(backend, op).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(backend, op).Inc()
	}
}
