package metrics

import (
	"arbiter-hq/minos/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks metrics for governed orchestrator runs and the evidence
// they leave behind.
//
// Metrics:
//   - minos_runs_total: Completed runs by exit status
//   - minos_run_duration_seconds: Wall clock duration of governed runs
//   - minos_run_restarts: Restart counts observed per run
//   - minos_run_churn_signal: Churn signal observed per run
//   - minos_bundle_size_bytes: Size of persisted evidence bundles
//   - minos_spool_ingests_total: Spool directory ingests by result
type RunMetrics struct {
	runsTotal         *prometheus.CounterVec
	runDuration       *prometheus.HistogramVec
	runRestarts       prometheus.Histogram
	runChurn          prometheus.Histogram
	bundleSize        prometheus.Histogram
	spoolIngestsTotal *prometheus.CounterVec
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "runs_total",
				Help:      "Total number of governed runs by exit status",
			},
			[]string{"exit_status"},
		),

		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall clock duration of governed runs in seconds",
				Buckets:   cfg.RunDurationBuckets,
			},
			[]string{"exit_status"},
		),

		runRestarts: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "run_restarts",
				Help:      "Agent restart counts observed per governed run",
				Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
			},
		),

		runChurn: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "run_churn_signal",
				Help:      "Churn signal observed per governed run",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),

		bundleSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "bundle_size_bytes",
				Help:      "Size of persisted evidence bundles in bytes",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),

		spoolIngestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "spool_ingests_total",
				Help:      "Spool directory ingest attempts by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		rm.runsTotal,
		rm.runDuration,
		rm.runRestarts,
		rm.runChurn,
		rm.bundleSize,
		rm.spoolIngestsTotal,
	)

	return rm
}

// RecordRun records a completed governed run.
func (rm *RunMetrics) RecordRun(exitStatus string, durationS, restarts, churn float64) {
	rm.runsTotal.WithLabelValues(exitStatus).Inc()
	rm.runDuration.WithLabelValues(exitStatus).Observe(durationS)
	rm.runRestarts.Observe(restarts)
	rm.runChurn.Observe(churn)
}

// RecordBundle records the size of a persisted evidence bundle.
func (rm *RunMetrics) RecordBundle(bytes int64) {
	rm.bundleSize.Observe(float64(bytes))
}

// RecordSpoolIngest records a spool directory ingest attempt.
func (rm *RunMetrics) RecordSpoolIngest(result string) {
	rm.spoolIngestsTotal.WithLabelValues(result).Inc()
}
