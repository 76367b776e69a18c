package verdict

import (
	"sort"
	"time"

	"arbiter-hq/minos/pkg/policy"
	"arbiter-hq/minos/pkg/runrecord"
)

// Evaluate applies a policy to normalized run metrics and renders the
// decision. It never fails: given validated inputs it always produces a
// Decision, and identical inputs always produce identical decisions apart
// from EvaluatedAt.
func Evaluate(m *runrecord.Metrics, p *policy.Policy) *Decision {
	var violations []Violation
	hardViolated := false

	// Hard pass. Strict excess only; a missing metric cannot be evaluated
	// as passing and fails the check.
	for _, metric := range sortedKeys(p.HardThresholds) {
		threshold := p.HardThresholds[metric]
		v := checkLimit(m, metric, LimitHard, threshold)
		if v.Exceeded {
			hardViolated = true
		}
		violations = append(violations, v)
	}

	// Completion is a prerequisite for any positive verdict: a run that did
	// not complete, or that exceeded a wall-clock budget, records a
	// synthetic hard violation.
	if incomplete, v := checkCompletion(m, p); incomplete {
		hardViolated = true
		violations = append(violations, v)
	}

	// Soft pass, only when the hard pass recorded no violation.
	if !hardViolated {
		for _, metric := range sortedKeys(p.SoftThresholds) {
			violations = append(violations, checkLimit(m, metric, LimitSoft, p.SoftThresholds[metric]))
		}
	}

	sort.Slice(violations, func(i, j int) bool {
		if violations[i].Metric != violations[j].Metric {
			return violations[i].Metric < violations[j].Metric
		}
		return violations[i].Kind < violations[j].Kind
	})

	return &Decision{
		Verdict:     resolve(violations),
		Violations:  violations,
		RunID:       m.RunID,
		PolicyID:    p.PolicyID,
		EvaluatedAt: time.Now().UTC(),
	}
}

// checkLimit evaluates one metric against one limit.
func checkLimit(m *runrecord.Metrics, metric string, kind LimitKind, threshold float64) Violation {
	observed, ok := m.Lookup(metric)
	if !ok {
		return Violation{
			Metric:    metric,
			Kind:      kind,
			Threshold: threshold,
			Exceeded:  true,
			Missing:   true,
		}
	}
	return Violation{
		Metric:    metric,
		Kind:      kind,
		Observed:  observed,
		Threshold: threshold,
		Exceeded:  observed > threshold,
	}
}

// checkCompletion reports whether the run failed the completion
// prerequisite and, if so, the synthetic violation describing it.
func checkCompletion(m *runrecord.Metrics, p *policy.Policy) (bool, Violation) {
	duration, _ := m.Lookup(runrecord.MetricDurationS)

	budget := 0.0
	switch {
	case m.ExitStatus != runrecord.ExitCompleted:
		// Status already encodes the failure; no budget applies.
	case p.TimeoutS > 0 && duration > float64(p.TimeoutS):
		budget = float64(p.TimeoutS)
	case p.OrchestratorTimeoutS > 0 && duration > float64(p.OrchestratorTimeoutS):
		budget = float64(p.OrchestratorTimeoutS)
	default:
		return false, Violation{}
	}

	return true, Violation{
		Metric:    IncompleteExecution,
		Kind:      LimitHard,
		Observed:  duration,
		Threshold: budget,
		Exceeded:  true,
	}
}

// resolve applies the verdict priority order.
func resolve(violations []Violation) Verdict {
	soft := false
	for _, v := range violations {
		if !v.Exceeded {
			continue
		}
		if v.Kind == LimitHard {
			return VerdictRefuse
		}
		soft = true
	}
	if soft {
		return VerdictMarginal
	}
	return VerdictAllow
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
