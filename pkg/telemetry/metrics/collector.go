package metrics

import (
	"time"

	"arbiter-hq/minos/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector is the central registry for all Prometheus metrics in Minos.
// It owns the verdict and run metric families and provides a unified
// recording interface for the pipeline, orchestrator adapter, and spool
// watcher.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	verdictMetrics *VerdictMetrics
	runMetrics     *RunMetrics
}

// NewCollector creates a metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "minos",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "minos"
	}
	if len(cfg.EvaluationDurationBuckets) == 0 {
		// Evaluations are in-memory threshold checks, well under a second.
		cfg.EvaluationDurationBuckets = prometheus.ExponentialBuckets(0.000001, 4, 10)
	}
	if len(cfg.RunDurationBuckets) == 0 {
		// Governed orchestrator runs range from seconds to tens of minutes.
		cfg.RunDurationBuckets = []float64{1, 5, 15, 60, 180, 600, 1800, 3600}
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
	}

	c.verdictMetrics = NewVerdictMetrics(cfg, registry)
	c.runMetrics = NewRunMetrics(cfg, registry)

	return c
}

// RecordVerdict records a rendered verdict with its evaluation duration and
// the number of threshold exceedances that informed it.
func (c *Collector) RecordVerdict(verdict, policyID string, duration time.Duration, exceedances int) {
	if !c.config.Enabled {
		return
	}

	c.verdictMetrics.RecordVerdict(verdict, policyID, duration, exceedances)
}

// RecordRun records metrics for a completed orchestrator run.
func (c *Collector) RecordRun(exitStatus string, durationS, restarts, churn float64) {
	if !c.config.Enabled {
		return
	}

	c.runMetrics.RecordRun(exitStatus, durationS, restarts, churn)
}

// RecordBundle records the size of a persisted evidence bundle.
func (c *Collector) RecordBundle(bytes int64) {
	if !c.config.Enabled {
		return
	}

	c.runMetrics.RecordBundle(bytes)
}

// RecordSpoolIngest records a spool directory ingest attempt.
// Result is "governed", "malformed", or "error".
func (c *Collector) RecordSpoolIngest(result string) {
	if !c.config.Enabled {
		return
	}

	c.runMetrics.RecordSpoolIngest(result)
}

// Registry returns the Prometheus registry used by this collector. Use it
// to serve the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
