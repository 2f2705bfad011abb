// Package metrics holds the Prometheus collectors for file conversions.
// Collectors register with the default registry on import; the watch
// command serves them through promhttp.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// File statuses.
const (
	StatusConverted = "converted"
	StatusPartial   = "partial"
	StatusFailed    = "failed"
	StatusCached    = "cached"
)

// Declaration outcomes.
const (
	OutcomeConverted = "converted"
	OutcomeFailed    = "failed"
)

var (
	// filesTotal counts processed files.
	// Labels: status (converted, partial, failed, cached)
	filesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tscanon",
		Subsystem: "converter",
		Name:      "files_total",
		Help:      "Total source files processed by status",
	}, []string{"status"})

	// declarationsTotal counts exported declarations by outcome.
	// Labels: outcome (converted, failed)
	declarationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tscanon",
		Subsystem: "converter",
		Name:      "declarations_total",
		Help:      "Total declarations converted or rejected",
	}, []string{"outcome"})

	durationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tscanon",
		Subsystem: "converter",
		Name:      "duration_seconds",
		Help:      "Time to check and convert one source file",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
)

// RecordFile records one file conversion.
//
// Inputs:
//   - converted: declarations that produced a canonical node.
//   - failed: declarations that produced a conversion error.
//   - d: wall time spent checking and converting.
func RecordFile(converted, failed int, d time.Duration) {
	status := StatusConverted
	if failed > 0 {
		status = StatusPartial
		if converted == 0 {
			status = StatusFailed
		}
	}
	filesTotal.WithLabelValues(status).Inc()
	declarationsTotal.WithLabelValues(OutcomeConverted).Add(float64(converted))
	declarationsTotal.WithLabelValues(OutcomeFailed).Add(float64(failed))
	durationSeconds.Observe(d.Seconds())
}

// RecordFileError records a file that could not be read or parsed at all.
func RecordFileError() {
	filesTotal.WithLabelValues(StatusFailed).Inc()
}

// RecordCacheHit records a file served from the schema index without
// re-conversion.
func RecordCacheHit() {
	filesTotal.WithLabelValues(StatusCached).Inc()
}
