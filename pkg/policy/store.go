package policy

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a policy document. The document may be YAML
// or JSON (JSON is a YAML subset). On success the returned Policy is a
// private deep copy, detached from any buffers the caller holds.
func Parse(data []byte) (*Policy, error) {
	var doc Policy
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &InvalidPolicyError{Errors: []FieldError{{
			Field:   "(document)",
			Message: fmt.Sprintf("cannot parse: %v", err),
		}}}
	}

	if err := validate(&doc); err != nil {
		return nil, err
	}
	return doc.clone(), nil
}

// validate enforces the policy constraints, collecting every violation.
func validate(p *Policy) error {
	var errs []FieldError

	if p.PolicyID == "" {
		errs = append(errs, FieldError{
			Field:   "policy_id",
			Message: "policy_id is required and must be non-empty",
		})
	}
	if p.TimeoutS < 0 {
		errs = append(errs, FieldError{
			Field:   "timeout_s",
			Message: fmt.Sprintf("must be non-negative, got %d", p.TimeoutS),
		})
	}
	if p.OrchestratorTimeoutS < 0 {
		errs = append(errs, FieldError{
			Field:   "orchestrator_timeout_s",
			Message: fmt.Sprintf("must be non-negative, got %d", p.OrchestratorTimeoutS),
		})
	}
	if p.ForbidLiveKeys && p.AllowLiveKeys {
		errs = append(errs, FieldError{
			Field:   "allow_live_keys",
			Message: "cannot allow and forbid live keys in the same policy",
		})
	}

	errs = append(errs, validateThresholds("soft_thresholds", p.SoftThresholds)...)
	errs = append(errs, validateThresholds("hard_thresholds", p.HardThresholds)...)

	// A metric may not hard-fail below where it soft-warns.
	for _, metric := range sortedKeys(p.SoftThresholds) {
		soft := p.SoftThresholds[metric]
		hard, ok := p.HardThresholds[metric]
		if !ok {
			continue
		}
		if hard < soft {
			errs = append(errs, FieldError{
				Field: "hard_thresholds." + metric,
				Message: fmt.Sprintf("hard threshold %g is below soft threshold %g",
					hard, soft),
			})
		}
	}

	if len(errs) > 0 {
		return &InvalidPolicyError{PolicyID: p.PolicyID, Errors: errs}
	}
	return nil
}

func validateThresholds(field string, thresholds map[string]float64) []FieldError {
	var errs []FieldError
	for _, metric := range sortedKeys(thresholds) {
		if v := thresholds[metric]; v < 0 {
			errs = append(errs, FieldError{
				Field:   field + "." + metric,
				Message: fmt.Sprintf("must be non-negative, got %g", v),
			})
		}
	}
	return errs
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Store owns the canonical policy snapshot for a governance process.
// Consumers receive read-only references; Reload swaps in a new snapshot
// without mutating the one previously handed out.
type Store struct {
	mu      sync.RWMutex
	path    string
	current *Policy
}

// NewStore creates a store bound to a policy document path. No document is
// read until Load is called.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads, parses, and validates the bound document, making the result
// the current snapshot.
func (s *Store) Load() (*Policy, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &InvalidPolicyError{Errors: []FieldError{{
			Field:   "(document)",
			Message: fmt.Sprintf("cannot read %s: %v", s.path, err),
		}}}
	}

	p, err := Parse(data)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return p, nil
}

// Current returns the current snapshot, or nil before the first successful
// Load.
func (s *Store) Current() *Policy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads the bound document. On validation failure the previous
// snapshot stays current.
func (s *Store) Reload() (*Policy, error) {
	return s.Load()
}

// Path returns the bound document path.
func (s *Store) Path() string {
	return s.path
}
