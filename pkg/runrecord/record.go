package runrecord

import (
	"encoding/json"
	"fmt"
)

// ExitStatus classifies how the external orchestrator process ended.
type ExitStatus string

const (
	// ExitCompleted indicates the orchestrator exited with status zero
	// within its time budget.
	ExitCompleted ExitStatus = "completed"

	// ExitFailed indicates the orchestrator exited with a non-zero status.
	ExitFailed ExitStatus = "failed"

	// ExitTimeout indicates the orchestrator was terminated after exceeding
	// its wall-clock budget.
	ExitTimeout ExitStatus = "timeout"
)

// Valid reports whether s is one of the known exit statuses.
func (s ExitStatus) Valid() bool {
	switch s {
	case ExitCompleted, ExitFailed, ExitTimeout:
		return true
	}
	return false
}

// Canonical metric names produced by Normalize. Policies threshold these
// names; the collector guarantees all three are present in Metrics.Values.
const (
	MetricRestartCount = "restart_count"
	MetricDurationS    = "duration_s"
	MetricChurnSignal  = "churn_signal"
)

// RawRecord is the raw evidence of one execution attempt, as assembled by
// the orchestration adapter at process completion.
type RawRecord struct {
	// RunID identifies the governed run (e.g. "run-3f2a9c41d07b").
	RunID string `json:"run_id"`

	// ExitStatus is how the orchestrator process ended.
	ExitStatus ExitStatus `json:"exit_status"`

	// RestartCount is the number of internal agent restarts observed in the
	// captured output.
	RestartCount int `json:"restart_count"`

	// DurationS is the elapsed wall-clock time of the run in seconds.
	DurationS float64 `json:"duration_s"`

	// ChurnSignal is the derived instability score (self-revision events per
	// minute of wall-clock time).
	ChurnSignal float64 `json:"churn_signal"`

	// RawLogRefs are paths to the captured stdout/stderr artifacts. They are
	// hashed and stored, never interpreted.
	RawLogRefs []string `json:"raw_log_refs,omitempty"`
}

// Metrics is the normalized, immutable view of a RawRecord consumed by the
// decision engine. Values maps canonical metric names to observations.
type Metrics struct {
	RunID      string             `json:"run_id"`
	ExitStatus ExitStatus         `json:"exit_status"`
	Values     map[string]float64 `json:"values"`
	RawLogRefs []string           `json:"raw_log_refs,omitempty"`
}

// Lookup returns the observed value for a metric name and whether the
// collector produced it.
func (m Metrics) Lookup(name string) (float64, bool) {
	v, ok := m.Values[name]
	return v, ok
}

// rawRecordDoc mirrors RawRecord with pointer fields so that absent required
// fields can be distinguished from zero values when parsing files.
type rawRecordDoc struct {
	RunID        string      `json:"run_id"`
	ExitStatus   *ExitStatus `json:"exit_status"`
	RestartCount *int        `json:"restart_count"`
	DurationS    *float64    `json:"duration_s"`
	ChurnSignal  *float64    `json:"churn_signal"`
	RawLogRefs   []string    `json:"raw_log_refs"`
}

// ParseRawRecord decodes a raw run record from its JSON document form,
// failing with MalformedRecordError when required fields are absent.
// Range validation is left to Normalize.
func ParseRawRecord(data []byte) (*RawRecord, error) {
	var doc rawRecordDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedRecordError{
			Problems: []string{fmt.Sprintf("invalid JSON: %v", err)},
		}
	}

	var problems []string
	if doc.ExitStatus == nil {
		problems = append(problems, "exit_status is required")
	}
	if doc.RestartCount == nil {
		problems = append(problems, "restart_count is required")
	}
	if doc.DurationS == nil {
		problems = append(problems, "duration_s is required")
	}
	if len(problems) > 0 {
		return nil, &MalformedRecordError{Problems: problems}
	}

	rec := &RawRecord{
		RunID:        doc.RunID,
		ExitStatus:   *doc.ExitStatus,
		RestartCount: *doc.RestartCount,
		DurationS:    *doc.DurationS,
		RawLogRefs:   doc.RawLogRefs,
	}
	if doc.ChurnSignal != nil {
		rec.ChurnSignal = *doc.ChurnSignal
	}
	return rec, nil
}
