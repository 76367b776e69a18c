package bundle

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Problem kinds reported by Verify.
const (
	ProblemMissing        = "missing"
	ProblemDigestMismatch = "digest_mismatch"
	ProblemSizeMismatch   = "size_mismatch"
	ProblemUnhashed       = "unhashed"
	ProblemUnlisted       = "unlisted"
)

// Problem describes one integrity failure found in a bundle.
type Problem struct {
	// Name is the bundle file involved.
	Name string `json:"name"`

	// Kind is one of the Problem* constants.
	Kind string `json:"kind"`

	// Detail is a human-readable description.
	Detail string `json:"detail"`
}

// Report is the outcome of verifying one bundle directory.
type Report struct {
	RunDir   string    `json:"run_dir"`
	Checked  int       `json:"checked"`
	Problems []Problem `json:"problems,omitempty"`
}

// OK reports whether the bundle passed every integrity check.
func (r *Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) add(name, kind, detail string) {
	r.Problems = append(r.Problems, Problem{Name: name, Kind: kind, Detail: detail})
}

// Verify recomputes the digest of every file listed in hashes.json and the
// byte length of every file listed in manifest.json, and checks that the
// two integrity files agree with each other and with the directory
// contents. Deleting or altering any listed file surfaces as a problem in
// the report.
//
// An unreadable integrity file is an error: without it no verification
// claim can be made at all.
func Verify(runDir string) (*Report, error) {
	report := &Report{RunDir: runDir}

	var manifest Manifest
	if err := readJSON(filepath.Join(runDir, ManifestFile), &manifest); err != nil {
		return nil, err
	}
	var hashes Hashes
	if err := readJSON(filepath.Join(runDir, HashesFile), &hashes); err != nil {
		return nil, err
	}

	// Digest checks: every hashed file must exist and match.
	for _, name := range sortedDigestNames(hashes.Digests) {
		want := hashes.Digests[name]
		path := filepath.Join(runDir, name)
		got, err := HashFile(path)
		if err != nil {
			report.add(name, ProblemMissing, fmt.Sprintf("cannot hash: %v", err))
			continue
		}
		report.Checked++
		if got != want {
			report.add(name, ProblemDigestMismatch,
				fmt.Sprintf("digest %s does not match recorded %s", got, want))
		}
	}

	// Size checks: every manifest entry must exist at its recorded length,
	// and every entry except hashes.json must also be hashed.
	for _, entry := range manifest.Files {
		path := filepath.Join(runDir, entry.Name)
		info, err := os.Stat(path)
		if err != nil {
			report.add(entry.Name, ProblemMissing, fmt.Sprintf("cannot stat: %v", err))
			continue
		}
		if info.Size() != entry.Size {
			report.add(entry.Name, ProblemSizeMismatch,
				fmt.Sprintf("size %d does not match recorded %d", info.Size(), entry.Size))
		}
		if entry.Name == HashesFile {
			continue
		}
		if _, ok := hashes.Digests[entry.Name]; !ok {
			report.add(entry.Name, ProblemUnhashed, "listed in manifest but not hashed")
		}
	}

	// Directory sweep: nothing may live in the bundle that the manifest
	// does not account for.
	dirEntries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, NewPersistenceError("read", runDir, err)
	}
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		name := de.Name()
		if name == ManifestFile {
			continue
		}
		if _, ok := manifest.Entry(name); !ok {
			report.add(name, ProblemUnlisted, "present in bundle but not listed in manifest")
		}
	}

	return report, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return NewPersistenceError("read", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return NewPersistenceError("read", path, fmt.Errorf("invalid JSON: %w", err))
	}
	return nil
}

func sortedDigestNames(digests map[string]string) []string {
	names := make([]string, 0, len(digests))
	for name := range digests {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
