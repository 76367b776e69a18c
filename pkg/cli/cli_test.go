package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestJSONFormatter(t *testing.T) {
	f := &JSONFormatter{Indent: true}
	data := map[string]any{"verdict": "ALLOW", "run_id": "run-abc"}

	out, err := f.Format(data)
	if err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(out, &decoded); err != nil {
		t.Fatalf("output not valid JSON: %v", err)
	}
	if decoded["verdict"] != "ALLOW" {
		t.Errorf("verdict = %v", decoded["verdict"])
	}

	var buf bytes.Buffer
	if err := f.FormatTo(&buf, data); err != nil {
		t.Fatalf("FormatTo() error: %v", err)
	}
	if !strings.Contains(buf.String(), "run-abc") {
		t.Errorf("FormatTo output = %q", buf.String())
	}
}

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{}
	out, err := f.Format("REFUSE")
	if err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	if string(out) != "REFUSE\n" {
		t.Errorf("Format() = %q", out)
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter("json").(*JSONFormatter); !ok {
		t.Error("NewFormatter(json) did not return JSONFormatter")
	}
	if _, ok := NewFormatter("text").(*TextFormatter); !ok {
		t.Error("NewFormatter(text) did not return TextFormatter")
	}
	if _, ok := NewFormatter("bogus").(*TextFormatter); !ok {
		t.Error("NewFormatter(bogus) did not fall back to text")
	}
}

func TestCommandError(t *testing.T) {
	cause := errors.New("boom")
	err := NewCommandError("evaluate", cause)
	if !errors.Is(err, cause) {
		t.Error("CommandError does not unwrap to cause")
	}
	if !strings.Contains(err.Error(), "evaluate") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestConfigError(t *testing.T) {
	cases := []struct {
		name string
		err  *ConfigError
		want []string
	}{
		{"field only", NewConfigError("", "spool.dir", "missing"), []string{"spool.dir", "missing"}},
		{"path and field", NewConfigError("minos.yaml", "spool.dir", "missing"), []string{"minos.yaml", "spool.dir"}},
		{"path only", NewConfigError("minos.yaml", "", "unreadable"), []string{"minos.yaml", "unreadable"}},
		{"message only", NewConfigError("", "", "bad"), []string{"bad"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, want := range tc.want {
				if !strings.Contains(tc.err.Error(), want) {
					t.Errorf("Error() = %q, want %q mentioned", tc.err.Error(), want)
				}
			}
		})
	}
}

func TestSetupSignalHandler_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := SetupSignalHandler(parent)
	defer stop()

	cancel()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("derived context not cancelled with its parent")
	}
}
