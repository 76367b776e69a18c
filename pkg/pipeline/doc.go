// Package pipeline wires the governance stages together: a raw run record
// is normalized into metrics, evaluated against the active policy, and
// persisted as a tamper-evident evidence bundle, with optional verdict
// ledger and Prometheus recording.
package pipeline
