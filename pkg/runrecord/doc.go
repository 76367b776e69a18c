// Package runrecord defines the raw evidence produced by one execution of
// the external multi-agent orchestrator and normalizes it into the metrics
// consumed by the decision engine.
//
// A RawRecord is created exactly once per run, at process completion, by the
// orchestration adapter. It is never mutated afterwards. Normalize validates
// the record shape (known exit status, non-negative counters) and produces an
// immutable Metrics value; a malformed record is reported to the caller as a
// MalformedRecordError and is never silently defaulted.
//
// The package also owns the structural log scan that derives restart and
// self-revision counts from captured orchestrator output. Only line markers
// are matched; the semantic content of agent output is never interpreted.
package runrecord
