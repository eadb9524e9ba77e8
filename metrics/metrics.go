// Package metrics provides Prometheus metrics for go-aduan.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts engine operations by outcome.
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aduan",
			Name:      "engine_runs_total",
			Help:      "Total number of clustering engine operations",
		},
		[]string{"operation", "status"},
	)

	// RunDuration measures engine operation duration.
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aduan",
			Name:      "engine_run_duration_seconds",
			Help:      "Duration of clustering engine operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// BatchSize observes how many reports an operation received.
	BatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aduan",
			Name:      "batch_size",
			Help:      "Distribution of report batch sizes",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"operation"},
	)

	// ReportsOutcome counts reports that ended clustered or orphaned.
	ReportsOutcome = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aduan",
			Name:      "reports_total",
			Help:      "Reports processed, by outcome",
		},
		[]string{"outcome"},
	)

	// ActiveClusters is the number of active clusters seen by the last maintenance pass.
	ActiveClusters = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "aduan",
			Name:      "active_clusters",
			Help:      "Number of active clusters after the last maintenance pass",
		},
	)

	// JobRunsTotal counts scheduled job executions.
	JobRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aduan",
			Name:      "job_runs_total",
			Help:      "Total number of scheduled job runs",
		},
		[]string{"job", "status"},
	)
)

// RecordRun records one engine operation.
func RecordRun(operation string, err error, batchSize int, duration float64) {
	RunsTotal.WithLabelValues(operation, status(err)).Inc()
	RunDuration.WithLabelValues(operation).Observe(duration)
	BatchSize.WithLabelValues(operation).Observe(float64(batchSize))
}

// RecordOutcome records how many reports were clustered and orphaned.
func RecordOutcome(clustered, orphaned int) {
	ReportsOutcome.WithLabelValues("clustered").Add(float64(clustered))
	ReportsOutcome.WithLabelValues("orphaned").Add(float64(orphaned))
}

// RecordJob records a scheduled job run.
func RecordJob(job string, err error) {
	JobRunsTotal.WithLabelValues(job, status(err)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
