package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestHashContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty", content: ""},
		{name: "json artifact", content: `{"verdict":"ALLOW"}`},
		{name: "multiline log", content: "[agent_a] one\n[agent_b] two\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := sha256.Sum256([]byte(tt.content))
			want := hex.EncodeToString(sum[:])
			if got := HashContent([]byte(tt.content)); got != want {
				t.Errorf("HashContent() = %s, want %s", got, want)
			}
		})
	}
}

func TestHashFile_MatchesHashContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact.json")
	content := []byte(`{"policy_id":"p1"}` + "\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	fromFile, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile() error: %v", err)
	}
	if fromFile != HashContent(content) {
		t.Errorf("HashFile() = %s, HashContent() = %s", fromFile, HashContent(content))
	}
}

func TestHashFile_MissingFile(t *testing.T) {
	if _, err := HashFile(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Error("HashFile() on missing file expected error")
	}
}
