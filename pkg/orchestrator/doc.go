// Package orchestrator is the thin adapter between the governance core and
// the external multi-agent orchestration process.
//
// The orchestrator is a black box reached through a single bounded call:
// Execute launches the configured command, captures its stdout and stderr
// verbatim into the run directory, and assembles the raw run record at
// process completion. The invocation is always bounded by the policy's
// orchestrator wall-clock budget plus a grace window; on expiry the whole
// process group is forcibly terminated and the record carries a timeout
// exit status rather than blocking further.
//
// Captured streams are opaque bytes to this package. The only parsing
// applied afterwards is the telemetry collector's structural marker scan
// for restart and self-revision counts.
//
// Provider API key variables are stripped from the child environment by
// default so a governed run cannot make accidental live calls; a policy
// may explicitly allow them through, or forbid the launch entirely when
// they are present. The names (never the values) of stripped and passed
// variables are recorded in the invocation artifact.
package orchestrator
