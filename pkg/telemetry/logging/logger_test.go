package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Info("bundle persisted", "run_id", "run-abc123def456")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "bundle persisted" {
		t.Errorf("msg = %v, want %q", entry["msg"], "bundle persisted")
	}
	if entry["run_id"] != "run-abc123def456" {
		t.Errorf("run_id = %v, want run-abc123def456", entry["run_id"])
	}
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Info("verdict rendered", "verdict", "ALLOW")

	out := buf.String()
	if !strings.Contains(out, "verdict rendered") || !strings.Contains(out, "verdict=ALLOW") {
		t.Errorf("text output missing fields: %s", out)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Debug("suppressed")
	logger.Info("suppressed too")
	logger.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "suppressed") {
		t.Errorf("below-level entries were emitted: %s", out)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("warn entry missing: %s", out)
	}
}

func TestNew_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("New() with empty config error: %v", err)
	}

	logger.Info("hello")
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("default format is not JSON: %v", err)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("New() with invalid level expected error")
	}
}

func TestNew_InvalidFormat(t *testing.T) {
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New() with invalid format expected error")
	}
}

func TestNew_InstallsDefault(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	if _, err := New(Config{Writer: &buf}); err != nil {
		t.Fatalf("New() error: %v", err)
	}

	slog.Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Error("New() did not install the logger as slog default")
	}
}
