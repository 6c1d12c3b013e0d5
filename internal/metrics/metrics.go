// internal/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyncRuns counts sync runs by trigger ("manual"/"scheduled") and
	// outcome ("ok"/"error").
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_sync_runs_total",
		Help: "Number of sync runs, by trigger and outcome.",
	}, []string{"trigger", "outcome"})

	// Records counts processed records by source and disposition
	// ("created"/"updated"/"skipped").
	Records = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_sync_records_total",
		Help: "Number of records processed, by source and disposition.",
	}, []string{"source", "disposition"})

	// PagesFetched counts successfully fetched upstream pages per source.
	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_sync_pages_fetched_total",
		Help: "Number of upstream pages fetched, by source.",
	}, []string{"source"})

	// RateLimited counts 429 responses observed per source.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "event_sync_rate_limited_total",
		Help: "Number of 429 responses received from upstream, by source.",
	}, []string{"source"})
)
