// Package verdict renders the admissibility verdict for a governed run by
// applying policy thresholds to normalized run metrics.
//
// Evaluate is a pure function of (metrics, policy): it never fails, has no
// side effects, and repeated calls with identical inputs yield identical
// decisions apart from the evaluation timestamp. The algorithm is
// refusal-first: an incomplete execution is itself a hard violation, so the
// absence of evidence of good behavior is treated as failure rather than a
// default pass.
//
// Verdict resolution, highest priority first:
//
//	any hard violation        -> REFUSE
//	no hard, any soft         -> MARGINAL
//	no violations             -> ALLOW
//
// A violation requires strict excess: an observation equal to its threshold
// never violates. Sub-threshold observations are retained in the decision's
// violation list for audit, flagged as not exceeded.
package verdict
