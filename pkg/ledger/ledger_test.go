package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"arbiter-hq/minos/pkg/verdict"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "verdicts.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func entryAt(runID, v string, at time.Time) *Entry {
	return &Entry{
		RunID:       runID,
		PolicyID:    "cautious-default",
		Verdict:     v,
		ExitStatus:  "completed",
		EvaluatedAt: at,
		BundleDir:   "/var/lib/minos/runs/" + runID,
	}
}

func TestAppendAndGet(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()

	e := entryAt("run-aaa111bbb222", "REFUSE", time.Now().UTC())
	e.Violations = []verdict.Violation{
		{Metric: "restart_count", Kind: verdict.LimitHard, Observed: 5, Threshold: 3, Exceeded: true},
	}
	if err := l.Append(ctx, e); err != nil {
		t.Fatalf("Append() error: %v", err)
	}

	got, err := l.Get(ctx, "run-aaa111bbb222")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Verdict != "REFUSE" || got.PolicyID != "cautious-default" {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.Violations) != 1 || !got.Violations[0].Exceeded {
		t.Errorf("Violations = %+v, want exceeded restart_count", got.Violations)
	}
	if got.EvaluatedAt.IsZero() {
		t.Error("EvaluatedAt not restored")
	}
}

func TestGet_Missing(t *testing.T) {
	l := openTestLedger(t)
	if _, err := l.Get(context.Background(), "run-missing000000"); err == nil {
		t.Error("Get() for unknown run expected error")
	}
}

func TestAppend_ReplacesSameRun(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := l.Append(ctx, entryAt("run-x", "MARGINAL", now)); err != nil {
		t.Fatal(err)
	}
	if err := l.Append(ctx, entryAt("run-x", "ALLOW", now.Add(time.Minute))); err != nil {
		t.Fatalf("re-Append() error: %v", err)
	}

	got, err := l.Get(ctx, "run-x")
	if err != nil {
		t.Fatal(err)
	}
	if got.Verdict != "ALLOW" {
		t.Errorf("Verdict = %q, want re-evaluated ALLOW", got.Verdict)
	}

	entries, err := l.Query(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Query() = %d entries, want 1", len(entries))
	}
}

func TestQuery_FiltersAndOrder(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seed := []*Entry{
		entryAt("run-1", "ALLOW", base),
		entryAt("run-2", "REFUSE", base.Add(time.Hour)),
		entryAt("run-3", "REFUSE", base.Add(2*time.Hour)),
		entryAt("run-4", "MARGINAL", base.Add(3*time.Hour)),
	}
	seed[3].PolicyID = "lenient"
	for _, e := range seed {
		if err := l.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	refused, err := l.Query(ctx, Filter{Verdict: "REFUSE"})
	if err != nil {
		t.Fatal(err)
	}
	if len(refused) != 2 {
		t.Fatalf("Query(REFUSE) = %d entries, want 2", len(refused))
	}
	if refused[0].RunID != "run-3" || refused[1].RunID != "run-2" {
		t.Errorf("Query order = %s, %s, want newest first", refused[0].RunID, refused[1].RunID)
	}

	byPolicy, err := l.Query(ctx, Filter{PolicyID: "lenient"})
	if err != nil {
		t.Fatal(err)
	}
	if len(byPolicy) != 1 || byPolicy[0].RunID != "run-4" {
		t.Errorf("Query(lenient) = %+v", byPolicy)
	}

	since, err := l.Query(ctx, Filter{Since: base.Add(90 * time.Minute)})
	if err != nil {
		t.Fatal(err)
	}
	if len(since) != 2 {
		t.Errorf("Query(Since) = %d entries, want 2", len(since))
	}

	limited, err := l.Query(ctx, Filter{Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 || limited[0].RunID != "run-4" {
		t.Errorf("Query(Limit 1) = %+v, want just run-4", limited)
	}
}

func TestPruneBefore(t *testing.T) {
	l := openTestLedger(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	for _, e := range []*Entry{
		entryAt("run-old", "ALLOW", base),
		entryAt("run-new", "ALLOW", base.Add(48*time.Hour)),
	} {
		if err := l.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	pruned, err := l.PruneBefore(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("PruneBefore() error: %v", err)
	}
	if len(pruned) != 1 || pruned[0].RunID != "run-old" {
		t.Errorf("pruned = %+v, want run-old", pruned)
	}
	if pruned[0].BundleDir == "" {
		t.Error("pruned entry lost its bundle dir")
	}

	remaining, err := l.Query(ctx, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].RunID != "run-new" {
		t.Errorf("remaining = %+v, want run-new only", remaining)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") expected error")
	}
}
