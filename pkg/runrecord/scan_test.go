package runrecord

import (
	"strings"
	"testing"
)

func TestScanner_Scan(t *testing.T) {
	log := strings.Join([]string{
		"[orchestrator] starting 3 agents",
		"[agent_a] working on answer",
		"[orchestrator] restarting agent_b after stall",
		"[agent_b] new answer submitted",
		"[agent_a] revision 2 of answer",
		"[orchestrator] restart agent_c",
		"plain line without any marker",
	}, "\n")

	scanner, err := NewScanner("", "")
	if err != nil {
		t.Fatalf("NewScanner() error: %v", err)
	}

	counts, err := scanner.Scan(strings.NewReader(log))
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if counts.Restarts != 2 {
		t.Errorf("Restarts = %d, want 2", counts.Restarts)
	}
	if counts.Revisions != 2 {
		t.Errorf("Revisions = %d, want 2", counts.Revisions)
	}
}

func TestScanner_CustomPatterns(t *testing.T) {
	scanner, err := NewScanner(`^RETRY\b`, `^SELFEDIT\b`)
	if err != nil {
		t.Fatalf("NewScanner() error: %v", err)
	}

	log := "RETRY step 1\nSELFEDIT pass\nRETRY step 2\nnothing\n"
	counts, err := scanner.Scan(strings.NewReader(log))
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if counts.Restarts != 2 || counts.Revisions != 1 {
		t.Errorf("counts = %+v, want {Restarts:2 Revisions:1}", counts)
	}
}

func TestNewScanner_InvalidPattern(t *testing.T) {
	if _, err := NewScanner(`([`, ""); err == nil {
		t.Error("NewScanner() with invalid restart pattern expected error")
	}
	if _, err := NewScanner("", `([`); err == nil {
		t.Error("NewScanner() with invalid revision pattern expected error")
	}
}

func TestScanner_EmptyLog(t *testing.T) {
	scanner, err := NewScanner("", "")
	if err != nil {
		t.Fatalf("NewScanner() error: %v", err)
	}
	counts, err := scanner.Scan(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if counts.Restarts != 0 || counts.Revisions != 0 {
		t.Errorf("counts = %+v, want zeros", counts)
	}
}
