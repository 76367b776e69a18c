package bundle

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"arbiter-hq/minos/pkg/policy"
	"arbiter-hq/minos/pkg/runrecord"
	"arbiter-hq/minos/pkg/verdict"
)

// Persist writes the evidence bundle for one governed run into runDir and
// returns the manifest. The write order is fixed: raw log copies first,
// then policy and metrics, then decision.json as the final content
// artifact, then hashes.json, then manifest.json last, after all digests
// and byte lengths are known. Decision.json going last keeps its absence
// meaningful: a bundle interrupted mid-persist never carries a decision.
//
// Raw log references are copied into runDir by base name; a reference that
// already lives inside runDir is hashed in place. Any failure aborts with a
// PersistenceError and leaves the partial bundle untouched.
func Persist(runDir string, p *policy.Policy, m *runrecord.Metrics, d *verdict.Decision, rawLogRefs []string) (*Manifest, error) {
	logger := slog.Default().With("component", "bundle", "run_dir", runDir)

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, NewPersistenceError("mkdir", runDir, err)
	}

	digests := make(map[string]string)

	// Phase one: raw log captures.
	names := map[string]struct{}{
		PolicyFile:   {},
		MetricsFile:  {},
		DecisionFile: {},
	}
	for _, ref := range rawLogRefs {
		name := filepath.Base(ref)
		if name == HashesFile || name == ManifestFile {
			return nil, NewPersistenceError("copy", ref,
				fmt.Errorf("log name collides with reserved bundle file %s", name))
		}
		if _, dup := names[name]; dup {
			return nil, NewPersistenceError("copy", ref,
				fmt.Errorf("duplicate bundle file name %s", name))
		}
		names[name] = struct{}{}

		digest, err := importLog(runDir, ref)
		if err != nil {
			return nil, err
		}
		digests[name] = digest
	}

	// Phase two: JSON artifacts, decision last.
	for _, artifact := range []struct {
		name string
		v    any
	}{
		{PolicyFile, p},
		{MetricsFile, m},
		{DecisionFile, d},
	} {
		digest, err := writeJSON(filepath.Join(runDir, artifact.name), artifact.v)
		if err != nil {
			return nil, err
		}
		digests[artifact.name] = digest
	}

	// Phase three: the hash file, covering every artifact written so far.
	hashes := &Hashes{
		Schema:      hashesSchema,
		Algorithm:   "sha256",
		GeneratedAt: time.Now().UTC(),
		Digests:     digests,
	}
	if _, err := writeJSON(filepath.Join(runDir, HashesFile), hashes); err != nil {
		return nil, err
	}

	// Phase four: the manifest, written last so its byte lengths are
	// final.
	entries := make([]ManifestEntry, 0, len(digests)+1)
	for name := range digests {
		entries = append(entries, ManifestEntry{Name: name})
	}
	entries = append(entries, ManifestEntry{Name: HashesFile})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	for i := range entries {
		path := filepath.Join(runDir, entries[i].Name)
		info, err := os.Stat(path)
		if err != nil {
			return nil, NewPersistenceError("stat", path, err)
		}
		entries[i].Size = info.Size()
	}

	manifest := &Manifest{
		Schema:      manifestSchema,
		RunDir:      runDir,
		GeneratedAt: time.Now().UTC(),
		Files:       entries,
	}
	if _, err := writeJSON(filepath.Join(runDir, ManifestFile), manifest); err != nil {
		return nil, err
	}

	logger.Info("evidence bundle persisted",
		"run_id", d.RunID,
		"verdict", string(d.Verdict),
		"files", len(entries),
	)
	return manifest, nil
}

// writeJSON atomically writes v as indented JSON with a trailing newline
// and returns the hex SHA-256 digest of the bytes written.
func writeJSON(path string, v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", NewPersistenceError("marshal", path, err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", NewPersistenceError("write", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", NewPersistenceError("write", path, err)
	}
	return HashContent(data), nil
}

// importLog brings one raw log reference into the bundle directory and
// returns its digest. Logs already inside runDir are hashed in place; the
// capture is verbatim either way.
func importLog(runDir, ref string) (string, error) {
	dest := filepath.Join(runDir, filepath.Base(ref))

	absRef, err := filepath.Abs(ref)
	if err != nil {
		return "", NewPersistenceError("copy", ref, err)
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return "", NewPersistenceError("copy", dest, err)
	}
	if absRef == absDest {
		digest, err := HashFile(ref)
		if err != nil {
			return "", NewPersistenceError("read", ref, err)
		}
		return digest, nil
	}

	src, err := os.Open(ref)
	if err != nil {
		return "", NewPersistenceError("read", ref, err)
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return "", NewPersistenceError("copy", dest, err)
	}
	defer dst.Close()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dst, h), src); err != nil {
		return "", NewPersistenceError("copy", dest, err)
	}
	if err := dst.Close(); err != nil {
		return "", NewPersistenceError("copy", dest, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
