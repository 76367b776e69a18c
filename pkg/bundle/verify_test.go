package bundle

import (
	"os"
	"path/filepath"
	"testing"
)

func persistTestBundle(t *testing.T) string {
	t.Helper()
	runDir := filepath.Join(t.TempDir(), "run")
	logDir := t.TempDir()
	stdout := writeLog(t, logDir, "stdout.log", "[agent_a] line one\n[agent_a] line two\n")

	p := testPolicy()
	m := testMetrics(t)
	if _, err := Persist(runDir, p, m, testDecision(m, p), []string{stdout}); err != nil {
		t.Fatalf("Persist() error: %v", err)
	}
	return runDir
}

func TestVerify_FreshBundlePasses(t *testing.T) {
	runDir := persistTestBundle(t)

	report, err := Verify(runDir)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if !report.OK() {
		t.Errorf("fresh bundle failed verification: %+v", report.Problems)
	}
	// decision, policy, metrics, stdout.log
	if report.Checked != 4 {
		t.Errorf("Checked = %d, want 4", report.Checked)
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	tests := []struct {
		name     string
		tamper   func(t *testing.T, runDir string)
		wantKind string
		wantFile string
	}{
		{
			name: "altered content file",
			tamper: func(t *testing.T, runDir string) {
				path := filepath.Join(runDir, DecisionFile)
				data, err := os.ReadFile(path)
				if err != nil {
					t.Fatal(err)
				}
				// Same length, different bytes: the size check passes but
				// the digest must not.
				data[len(data)-2] ^= 0x01
				if err := os.WriteFile(path, data, 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantKind: ProblemDigestMismatch,
			wantFile: DecisionFile,
		},
		{
			name: "deleted log",
			tamper: func(t *testing.T, runDir string) {
				if err := os.Remove(filepath.Join(runDir, "stdout.log")); err != nil {
					t.Fatal(err)
				}
			},
			wantKind: ProblemMissing,
			wantFile: "stdout.log",
		},
		{
			name: "truncated metrics",
			tamper: func(t *testing.T, runDir string) {
				if err := os.WriteFile(filepath.Join(runDir, MetricsFile), []byte("{}"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantKind: ProblemDigestMismatch,
			wantFile: MetricsFile,
		},
		{
			name: "planted file",
			tamper: func(t *testing.T, runDir string) {
				if err := os.WriteFile(filepath.Join(runDir, "extra.log"), []byte("planted"), 0o644); err != nil {
					t.Fatal(err)
				}
			},
			wantKind: ProblemUnlisted,
			wantFile: "extra.log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runDir := persistTestBundle(t)
			tt.tamper(t, runDir)

			report, err := Verify(runDir)
			if err != nil {
				t.Fatalf("Verify() error: %v", err)
			}
			if report.OK() {
				t.Fatal("tampered bundle passed verification")
			}

			found := false
			for _, p := range report.Problems {
				if p.Kind == tt.wantKind && p.Name == tt.wantFile {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s problem for %s, got %+v", tt.wantKind, tt.wantFile, report.Problems)
			}
		})
	}
}

func TestVerify_SizeMismatch(t *testing.T) {
	runDir := persistTestBundle(t)

	// Appending to the log changes its length; both the size and the
	// digest checks must fire.
	f, err := os.OpenFile(filepath.Join(runDir, "stdout.log"), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("[agent_b] appended after sealing\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	report, err := Verify(runDir)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	kinds := make(map[string]bool)
	for _, p := range report.Problems {
		if p.Name == "stdout.log" {
			kinds[p.Kind] = true
		}
	}
	if !kinds[ProblemSizeMismatch] || !kinds[ProblemDigestMismatch] {
		t.Errorf("appended log: problems = %+v, want size and digest mismatches", report.Problems)
	}
}

func TestVerify_MissingIntegrityFilesIsError(t *testing.T) {
	runDir := persistTestBundle(t)
	if err := os.Remove(filepath.Join(runDir, ManifestFile)); err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(runDir); err == nil {
		t.Error("Verify() without manifest expected error")
	}

	runDir = persistTestBundle(t)
	if err := os.Remove(filepath.Join(runDir, HashesFile)); err != nil {
		t.Fatal(err)
	}
	if _, err := Verify(runDir); err == nil {
		t.Error("Verify() without hashes expected error")
	}
}
