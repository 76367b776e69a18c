package policy

import (
	"sort"
	"time"
)

// Policy is an immutable governance configuration snapshot. It identifies
// the configuration, bounds the run's wall-clock time, and carries the
// soft (warn) and hard (fail) limits per metric name.
//
// The store owns the canonical copy; consumers hold read-only references
// and must not mutate the threshold maps.
type Policy struct {
	// PolicyID is the opaque identifier of this governance configuration.
	PolicyID string `yaml:"policy_id" json:"policy_id"`

	// ConfigPath points at the orchestrator's own configuration. It is
	// opaque to the governance core and only echoed into evidence.
	ConfigPath string `yaml:"config_path,omitempty" json:"config_path,omitempty"`

	// TimeoutS bounds the total wall-clock seconds of a governed run.
	TimeoutS int `yaml:"timeout_s" json:"timeout_s"`

	// OrchestratorTimeoutS bounds the external orchestrator invocation.
	OrchestratorTimeoutS int `yaml:"orchestrator_timeout_s" json:"orchestrator_timeout_s"`

	// SoftThresholds maps metric names to warn limits. Strict excess
	// degrades the verdict to MARGINAL.
	SoftThresholds map[string]float64 `yaml:"soft_thresholds,omitempty" json:"soft_thresholds,omitempty"`

	// HardThresholds maps metric names to fail limits. Strict excess
	// forces REFUSE.
	HardThresholds map[string]float64 `yaml:"hard_thresholds,omitempty" json:"hard_thresholds,omitempty"`

	// OrchestratorArgs are extra arguments passed to the orchestrator
	// command verbatim.
	OrchestratorArgs []string `yaml:"orchestrator_args,omitempty" json:"orchestrator_args,omitempty"`

	// ForbidLiveKeys refuses to launch the orchestrator when provider API
	// key variables are present in the environment.
	ForbidLiveKeys bool `yaml:"forbid_live_keys,omitempty" json:"forbid_live_keys,omitempty"`

	// AllowLiveKeys passes provider API key variables through to the
	// orchestrator. By default they are stripped.
	AllowLiveKeys bool `yaml:"allow_live_keys,omitempty" json:"allow_live_keys,omitempty"`
}

// OrchestratorTimeout returns the orchestrator budget as a duration.
func (p *Policy) OrchestratorTimeout() time.Duration {
	return time.Duration(p.OrchestratorTimeoutS) * time.Second
}

// Timeout returns the total run budget as a duration.
func (p *Policy) Timeout() time.Duration {
	return time.Duration(p.TimeoutS) * time.Second
}

// SoftThreshold returns the soft limit for a metric and whether one is set.
func (p *Policy) SoftThreshold(metric string) (float64, bool) {
	v, ok := p.SoftThresholds[metric]
	return v, ok
}

// HardThreshold returns the hard limit for a metric and whether one is set.
func (p *Policy) HardThreshold(metric string) (float64, bool) {
	v, ok := p.HardThresholds[metric]
	return v, ok
}

// ThresholdedMetrics returns the sorted union of metric names present in
// either threshold map. Sorting keeps downstream evaluation deterministic.
func (p *Policy) ThresholdedMetrics() []string {
	seen := make(map[string]struct{}, len(p.SoftThresholds)+len(p.HardThresholds))
	for name := range p.SoftThresholds {
		seen[name] = struct{}{}
	}
	for name := range p.HardThresholds {
		seen[name] = struct{}{}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// clone returns a deep copy so that a loaded snapshot shares no maps or
// slices with the parsed document.
func (p *Policy) clone() *Policy {
	cp := *p
	if p.SoftThresholds != nil {
		cp.SoftThresholds = make(map[string]float64, len(p.SoftThresholds))
		for k, v := range p.SoftThresholds {
			cp.SoftThresholds[k] = v
		}
	}
	if p.HardThresholds != nil {
		cp.HardThresholds = make(map[string]float64, len(p.HardThresholds))
		for k, v := range p.HardThresholds {
			cp.HardThresholds[k] = v
		}
	}
	if p.OrchestratorArgs != nil {
		cp.OrchestratorArgs = append([]string(nil), p.OrchestratorArgs...)
	}
	return &cp
}
