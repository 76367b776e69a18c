package spool

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"arbiter-hq/minos/pkg/bundle"
	"arbiter-hq/minos/pkg/pipeline"
	"arbiter-hq/minos/pkg/policy"
)

func fsnotifyCreate(name string) fsnotify.Event {
	return fsnotify.Event{Name: name, Op: fsnotify.Create}
}

const testPolicyDoc = `
policy_id: spool-test
timeout_s: 600
orchestrator_timeout_s: 300
hard_thresholds:
  restart_count: 5
`

func testStore(t *testing.T) *policy.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.yaml")
	if err := os.WriteFile(path, []byte(testPolicyDoc), 0o644); err != nil {
		t.Fatal(err)
	}
	store := policy.NewStore(path)
	if _, err := store.Load(); err != nil {
		t.Fatal(err)
	}
	return store
}

func spoolRecord(runID string) string {
	return `{
		"run_id": "` + runID + `",
		"exit_status": "completed",
		"restart_count": 1,
		"duration_s": 90,
		"churn_signal": 0.3
	}`
}

func TestIngest_GovernsAndArchives(t *testing.T) {
	spoolDir := t.TempDir()
	runsRoot := t.TempDir()
	recordPath := filepath.Join(spoolDir, "run-spool1.json")
	if err := os.WriteFile(recordPath, []byte(spoolRecord("run-spool1")), 0o644); err != nil {
		t.Fatal(err)
	}

	ing := NewIngestor(testStore(t), pipeline.New(), runsRoot, nil)
	if err := ing.Ingest(context.Background(), recordPath); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}

	report, err := bundle.Verify(filepath.Join(runsRoot, "run-spool1"))
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if !report.OK() {
		t.Errorf("governed bundle fails verification: %+v", report.Problems)
	}

	if _, err := os.Stat(recordPath); !os.IsNotExist(err) {
		t.Error("spooled record not moved out of the drop directory")
	}
	if _, err := os.Stat(filepath.Join(spoolDir, ProcessedDir, "run-spool1.json")); err != nil {
		t.Errorf("processed record not archived: %v", err)
	}
}

func TestIngest_QuarantinesMalformed(t *testing.T) {
	spoolDir := t.TempDir()
	recordPath := filepath.Join(spoolDir, "broken.json")
	if err := os.WriteFile(recordPath, []byte(`{"run_id": "run-broken"`), 0o644); err != nil {
		t.Fatal(err)
	}

	ing := NewIngestor(testStore(t), pipeline.New(), t.TempDir(), nil)
	if err := ing.Ingest(context.Background(), recordPath); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(spoolDir, MalformedDir, "broken.json")); err != nil {
		t.Errorf("malformed record not quarantined: %v", err)
	}
}

func TestIngest_QuarantinesOutOfRangeRecord(t *testing.T) {
	spoolDir := t.TempDir()
	recordPath := filepath.Join(spoolDir, "negative.json")
	record := `{"run_id": "run-neg", "exit_status": "completed", "restart_count": -2, "duration_s": 10, "churn_signal": 0}`
	if err := os.WriteFile(recordPath, []byte(record), 0o644); err != nil {
		t.Fatal(err)
	}

	ing := NewIngestor(testStore(t), pipeline.New(), t.TempDir(), nil)
	if err := ing.Ingest(context.Background(), recordPath); err != nil {
		t.Fatalf("Ingest() error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(spoolDir, MalformedDir, "negative.json")); err != nil {
		t.Errorf("out-of-range record not quarantined: %v", err)
	}
}

func TestWatcher_IngestsDroppedFile(t *testing.T) {
	spoolDir := t.TempDir()

	w, err := NewWatcher(WatcherConfig{Dir: spoolDir, Debounce: 50 * time.Millisecond}, nil)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}

	var (
		mu   sync.Mutex
		seen []string
	)
	handled := make(chan struct{}, 4)
	handle := func(ctx context.Context, path string) error {
		mu.Lock()
		seen = append(seen, filepath.Base(path))
		mu.Unlock()
		handled <- struct{}{}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx, handle) }()

	// Give the watcher time to register before dropping the record.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(spoolDir, "run-w1.json"), []byte(spoolRecord("run-w1")), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-handled:
	case <-time.After(5 * time.Second):
		t.Fatal("dropped record was never handled")
	}

	mu.Lock()
	got := append([]string(nil), seen...)
	mu.Unlock()
	if len(got) != 1 || got[0] != "run-w1.json" {
		t.Errorf("handled = %v, want [run-w1.json]", got)
	}

	if err := w.Stop(); err != nil {
		t.Errorf("Stop() error: %v", err)
	}
	if err := <-done; err != nil {
		t.Errorf("Watch() returned error: %v", err)
	}
}

func TestWatcher_SweepsExistingFiles(t *testing.T) {
	spoolDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(spoolDir, "stale.json"), []byte(spoolRecord("run-stale")), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(WatcherConfig{Dir: spoolDir, Debounce: 50 * time.Millisecond}, nil)
	if err != nil {
		t.Fatal(err)
	}

	handled := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx, func(ctx context.Context, path string) error {
		handled <- filepath.Base(path)
		return nil
	})
	defer w.Stop()

	select {
	case name := <-handled:
		if name != "stale.json" {
			t.Errorf("swept %q, want stale.json", name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pre-existing record was never swept")
	}
}

func TestWatcher_IgnoresNonJSON(t *testing.T) {
	w, err := NewWatcher(WatcherConfig{Dir: t.TempDir()}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer w.watcher.Close()

	cases := []struct {
		name string
		want bool
	}{
		{"record.json", true},
		{"record.txt", false},
		{".hidden.json", false},
		{"record.JSON", true},
	}
	for _, tc := range cases {
		got := w.shouldProcessEvent(fsnotifyCreate(tc.name))
		if got != tc.want {
			t.Errorf("shouldProcessEvent(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNewWatcher_MissingDir(t *testing.T) {
	if _, err := NewWatcher(WatcherConfig{Dir: filepath.Join(t.TempDir(), "nope")}, nil); err == nil {
		t.Error("NewWatcher() with missing directory expected error")
	}
}
