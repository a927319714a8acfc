// Package metrics exposes Prometheus instrumentation for fetch activity.
// Collectors register on the default registry; the sync command serves
// them when --metrics-addr is set.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts fetch invocations by query mode and outcome.
	// Outcomes: ok, error, skipped (malformed entry).
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mongofetch",
		Name:      "fetches_total",
		Help:      "Fetch invocations by query mode and outcome.",
	}, []string{"mode", "outcome"})

	// DocumentsFetched counts documents drained from result cursors,
	// before any transform is applied.
	DocumentsFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mongofetch",
		Name:      "documents_fetched_total",
		Help:      "Documents returned by the data source before transform.",
	})
)
