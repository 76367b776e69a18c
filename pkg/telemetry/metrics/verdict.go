package metrics

import (
	"time"

	"arbiter-hq/minos/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// VerdictMetrics tracks metrics for the evaluation engine.
//
// Metrics:
//   - minos_verdicts_total: Rendered verdicts by verdict and policy
//   - minos_evaluation_duration_seconds: Verdict evaluation duration
//   - minos_exceedances_total: Threshold exceedances by verdict
type VerdictMetrics struct {
	verdictsTotal      *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	exceedancesTotal   *prometheus.CounterVec
}

// NewVerdictMetrics creates and registers verdict metrics with the provided registry.
func NewVerdictMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *VerdictMetrics {
	vm := &VerdictMetrics{
		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "verdicts_total",
				Help:      "Total number of rendered verdicts",
			},
			[]string{"verdict", "policy_id"},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of verdict evaluation in seconds",
				Buckets:   cfg.EvaluationDurationBuckets,
			},
		),

		exceedancesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "exceedances_total",
				Help:      "Total number of threshold exceedances across verdicts",
			},
			[]string{"verdict"},
		),
	}

	registry.MustRegister(
		vm.verdictsTotal,
		vm.evaluationDuration,
		vm.exceedancesTotal,
	)

	return vm
}

// RecordVerdict records a rendered verdict.
func (vm *VerdictMetrics) RecordVerdict(verdict, policyID string, duration time.Duration, exceedances int) {
	vm.verdictsTotal.WithLabelValues(verdict, policyID).Inc()
	vm.evaluationDuration.Observe(duration.Seconds())
	if exceedances > 0 {
		vm.exceedancesTotal.WithLabelValues(verdict).Add(float64(exceedances))
	}
}
