// Minos is a post-hoc execution governance engine for untrusted multi-agent
// runs. It launches (or ingests measurements of) an orchestrator run,
// normalizes the observed behavior into metrics, applies policy thresholds,
// and renders an ALLOW, MARGINAL, or REFUSE verdict backed by a
// tamper-evident evidence bundle.
//
// Usage:
//
//	# Launch and govern an orchestrator run
//	minos run "compare the three answers and pick one"
//
//	# Govern a pre-recorded run record
//	minos evaluate --record run.json
//
//	# Verify an evidence bundle's integrity
//	minos verify data/runs/run-1a2b3c4d5e6f
//
//	# Validate or inspect the active policy
//	minos policy validate
//	minos policy show
//
//	# Query verdict history
//	minos history --verdict REFUSE
//
//	# Watch a spool directory for dropped run records
//	minos watch
package main

func main() {
	Execute()
}
