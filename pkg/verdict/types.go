package verdict

import "time"

// Verdict is the governance outcome for one run.
type Verdict string

const (
	// VerdictAllow admits the run: no threshold was exceeded and the
	// execution completed.
	VerdictAllow Verdict = "ALLOW"

	// VerdictMarginal admits the run with reservations: at least one soft
	// limit was exceeded, no hard limit was.
	VerdictMarginal Verdict = "MARGINAL"

	// VerdictRefuse rejects the run: a hard limit was exceeded or the
	// execution did not complete.
	VerdictRefuse Verdict = "REFUSE"
)

// LimitKind distinguishes warn limits from fail limits.
type LimitKind string

const (
	// LimitHard marks a fail limit; strict excess forces REFUSE.
	LimitHard LimitKind = "hard"

	// LimitSoft marks a warn limit; strict excess degrades to MARGINAL.
	LimitSoft LimitKind = "soft"
)

// IncompleteExecution is the synthetic hard violation recorded when the run
// did not complete or exceeded its wall-clock budget. Completion is a
// prerequisite for any positive verdict.
const IncompleteExecution = "incomplete_execution"

// Violation is one threshold check outcome. Entries with Exceeded false are
// sub-threshold observations retained for audit.
type Violation struct {
	// Metric is the metric name checked, or IncompleteExecution for the
	// synthetic completion check.
	Metric string `json:"metric"`

	// Kind is the limit kind that was checked.
	Kind LimitKind `json:"limit_kind"`

	// Observed is the collector's observation for the metric. Zero when the
	// metric was missing.
	Observed float64 `json:"observed"`

	// Threshold is the policy limit the observation was checked against.
	Threshold float64 `json:"threshold"`

	// Exceeded reports whether this check failed.
	Exceeded bool `json:"exceeded"`

	// Missing reports that the policy thresholds a metric the collector did
	// not produce. A missing metric cannot be evaluated as passing.
	Missing bool `json:"missing,omitempty"`
}

// Decision is the terminal governance verdict for one (run record, policy)
// pair. It is produced once, never re-evaluated, and immutable thereafter.
type Decision struct {
	// Verdict is the resolved outcome.
	Verdict Verdict `json:"verdict"`

	// Violations lists every check performed, ordered by metric name then
	// limit kind for determinism.
	Violations []Violation `json:"violations"`

	// RunID binds the decision to the governed run.
	RunID string `json:"run_id"`

	// PolicyID binds the decision to the policy snapshot it was rendered
	// under.
	PolicyID string `json:"policy_id"`

	// EvaluatedAt is when the decision was rendered. It is excluded from
	// the determinism guarantee.
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Exceedances returns only the violations that actually failed their check.
func (d *Decision) Exceedances() []Violation {
	var out []Violation
	for _, v := range d.Violations {
		if v.Exceeded {
			out = append(out, v)
		}
	}
	return out
}
