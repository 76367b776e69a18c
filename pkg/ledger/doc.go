// Package ledger persists rendered verdicts in a SQLite database so
// operators can query governance history across runs. The ledger is a
// convenience index over the evidence bundles; the bundles on disk remain
// the authoritative record.
package ledger
