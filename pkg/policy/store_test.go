package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func validDoc() string {
	return `
policy_id: canary-v1
config_path: configs/three_agents.yaml
timeout_s: 900
orchestrator_timeout_s: 600
soft_thresholds:
  restart_count: 5
  duration_s: 30
hard_thresholds:
  restart_count: 10
  duration_s: 60
`
}

func TestParse_ValidDocument(t *testing.T) {
	p, err := Parse([]byte(validDoc()))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if p.PolicyID != "canary-v1" {
		t.Errorf("PolicyID = %q, want %q", p.PolicyID, "canary-v1")
	}
	if p.OrchestratorTimeoutS != 600 {
		t.Errorf("OrchestratorTimeoutS = %d, want 600", p.OrchestratorTimeoutS)
	}
	if soft, ok := p.SoftThreshold("restart_count"); !ok || soft != 5 {
		t.Errorf("SoftThreshold(restart_count) = %g, %v; want 5, true", soft, ok)
	}
	if hard, ok := p.HardThreshold("duration_s"); !ok || hard != 60 {
		t.Errorf("HardThreshold(duration_s) = %g, %v; want 60, true", hard, ok)
	}
}

func TestParse_JSONDocument(t *testing.T) {
	doc := `{"policy_id":"json-v1","timeout_s":120,"orchestrator_timeout_s":90,` +
		`"hard_thresholds":{"restart_count":4}}`

	p, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.PolicyID != "json-v1" {
		t.Errorf("PolicyID = %q, want %q", p.PolicyID, "json-v1")
	}
}

func TestParse_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{
			name:       "empty policy id",
			doc:        `{"policy_id":"","timeout_s":10}`,
			wantFields: []string{"policy_id"},
		},
		{
			name: "hard below soft",
			doc: `
policy_id: p1
soft_thresholds:
  restart_count: 10
hard_thresholds:
  restart_count: 5
`,
			wantFields: []string{"hard_thresholds.restart_count"},
		},
		{
			name: "negative threshold",
			doc: `
policy_id: p1
soft_thresholds:
  churn_signal: -1
`,
			wantFields: []string{"soft_thresholds.churn_signal"},
		},
		{
			name:       "negative timeouts",
			doc:        `{"policy_id":"p1","timeout_s":-5,"orchestrator_timeout_s":-1}`,
			wantFields: []string{"timeout_s", "orchestrator_timeout_s"},
		},
		{
			name:       "conflicting key handling",
			doc:        `{"policy_id":"p1","forbid_live_keys":true,"allow_live_keys":true}`,
			wantFields: []string{"allow_live_keys"},
		},
		{
			name:       "unparseable document",
			doc:        `{policy_id: [`,
			wantFields: []string{"(document)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			var invalid *InvalidPolicyError
			if !errors.As(err, &invalid) {
				t.Fatalf("Parse() error = %v, want *InvalidPolicyError", err)
			}

			got := make(map[string]bool, len(invalid.Errors))
			for _, fe := range invalid.Errors {
				got[fe.Field] = true
			}
			for _, field := range tt.wantFields {
				if !got[field] {
					t.Errorf("missing violation for field %q in %v", field, invalid.Errors)
				}
			}
		})
	}
}

func TestParse_CollectsAllViolations(t *testing.T) {
	doc := `
policy_id: ""
timeout_s: -1
soft_thresholds:
  restart_count: 10
hard_thresholds:
  restart_count: 5
`
	_, err := Parse([]byte(doc))
	var invalid *InvalidPolicyError
	if !errors.As(err, &invalid) {
		t.Fatalf("Parse() error = %v, want *InvalidPolicyError", err)
	}
	if len(invalid.Errors) != 3 {
		t.Errorf("violations = %d, want 3: %v", len(invalid.Errors), invalid.Errors)
	}
}

func TestParse_ReturnsDetachedCopy(t *testing.T) {
	p1, err := Parse([]byte(validDoc()))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	p2, err := Parse([]byte(validDoc()))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	p1.SoftThresholds["restart_count"] = 999
	if p2.SoftThresholds["restart_count"] != 5 {
		t.Error("mutating one parsed policy leaked into another")
	}
}

func TestStore_LoadAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(validDoc()), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	if store.Current() != nil {
		t.Error("Current() before Load should be nil")
	}

	first, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if store.Current() != first {
		t.Error("Current() should return the loaded snapshot")
	}

	// A reload after an edit produces a new value; the old snapshot is
	// untouched.
	edited := `{"policy_id":"canary-v2","timeout_s":900,"orchestrator_timeout_s":600}`
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatal(err)
	}
	second, err := store.Reload()
	if err != nil {
		t.Fatalf("Reload() error: %v", err)
	}
	if second == first {
		t.Error("Reload() should produce a new Policy value")
	}
	if first.PolicyID != "canary-v1" {
		t.Errorf("previous snapshot mutated: PolicyID = %q", first.PolicyID)
	}
	if second.PolicyID != "canary-v2" {
		t.Errorf("new snapshot PolicyID = %q, want canary-v2", second.PolicyID)
	}
}

func TestStore_ReloadKeepsPreviousOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	if err := os.WriteFile(path, []byte(validDoc()), 0o644); err != nil {
		t.Fatal(err)
	}

	store := NewStore(path)
	first, err := store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"policy_id":""}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Reload(); err == nil {
		t.Fatal("Reload() with invalid document expected error")
	}
	if store.Current() != first {
		t.Error("failed Reload() must keep the previous snapshot current")
	}
}

func TestStore_LoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := store.Load()
	var invalid *InvalidPolicyError
	if !errors.As(err, &invalid) {
		t.Fatalf("Load() error = %v, want *InvalidPolicyError", err)
	}
}

func TestThresholdedMetrics(t *testing.T) {
	p := &Policy{
		PolicyID:       "p1",
		SoftThresholds: map[string]float64{"duration_s": 30, "restart_count": 5},
		HardThresholds: map[string]float64{"restart_count": 10, "churn_signal": 4},
	}

	got := p.ThresholdedMetrics()
	want := []string{"churn_signal", "duration_s", "restart_count"}
	if len(got) != len(want) {
		t.Fatalf("ThresholdedMetrics() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ThresholdedMetrics()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
