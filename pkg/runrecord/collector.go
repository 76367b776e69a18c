package runrecord

import "fmt"

// Normalize validates a raw run record and produces the normalized metrics
// structure consumed by the decision engine.
//
// It fails with MalformedRecordError when required fields are out of range:
// the exit status must be one of the known enumerated values, and all
// counters must be non-negative. Every problem found is reported, and a
// malformed record is never silently defaulted. Normalize has no side
// effects.
func Normalize(raw *RawRecord) (*Metrics, error) {
	if raw == nil {
		return nil, &MalformedRecordError{Problems: []string{"record is nil"}}
	}

	var problems []string
	if !raw.ExitStatus.Valid() {
		problems = append(problems,
			fmt.Sprintf("exit_status %q is not one of completed, failed, timeout", raw.ExitStatus))
	}
	if raw.RestartCount < 0 {
		problems = append(problems,
			fmt.Sprintf("restart_count must be non-negative, got %d", raw.RestartCount))
	}
	if raw.DurationS < 0 {
		problems = append(problems,
			fmt.Sprintf("duration_s must be non-negative, got %g", raw.DurationS))
	}
	if raw.ChurnSignal < 0 {
		problems = append(problems,
			fmt.Sprintf("churn_signal must be non-negative, got %g", raw.ChurnSignal))
	}
	if len(problems) > 0 {
		return nil, &MalformedRecordError{RunID: raw.RunID, Problems: problems}
	}

	logRefs := make([]string, len(raw.RawLogRefs))
	copy(logRefs, raw.RawLogRefs)

	return &Metrics{
		RunID:      raw.RunID,
		ExitStatus: raw.ExitStatus,
		Values: map[string]float64{
			MetricRestartCount: float64(raw.RestartCount),
			MetricDurationS:    raw.DurationS,
			MetricChurnSignal:  raw.ChurnSignal,
		},
		RawLogRefs: logRefs,
	}, nil
}

// ComputeChurn derives the instability score from a self-revision count and
// the elapsed wall-clock time: revisions per minute. A zero or near-zero
// duration yields zero rather than an unbounded score.
func ComputeChurn(revisions int, durationS float64) float64 {
	if revisions <= 0 || durationS <= 0 {
		return 0
	}
	return float64(revisions) / (durationS / 60.0)
}
