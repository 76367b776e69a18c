// Package policy loads and validates governance policy documents into
// immutable in-memory snapshots.
//
// A policy document is YAML or JSON and carries an identifier, wall-clock
// budgets, and soft/hard threshold maps keyed by metric name. Validation
// enforces a non-empty policy_id, non-negative thresholds and timeouts, and
// soft <= hard for every metric present in both maps. Every violated
// constraint is collected into a single InvalidPolicyError so operators can
// fix all issues in one pass.
//
// A loaded Policy is never mutated; reloading a document produces a new
// Policy value. Each governed run binds to exactly one policy snapshot.
package policy
