// Package metrics provides Prometheus instrumentation for the governance
// engine: verdict counters, evaluation and run duration histograms, and
// evidence bundle sizes. All metric families are registered on a caller
// supplied registry so tests and embedders stay isolated from the global
// default registry.
package metrics
