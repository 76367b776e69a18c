package bundle

import "time"

// Bundle file names. The integrity files are written after every content
// artifact, hashes before manifest.
const (
	DecisionFile = "decision.json"
	PolicyFile   = "policy.json"
	MetricsFile  = "metrics.json"
	HashesFile   = "hashes.json"
	ManifestFile = "manifest.json"
)

// Schema identifiers embedded in the integrity files.
const (
	manifestSchema = "minos.manifest.v1"
	hashesSchema   = "minos.hashes.v1"
)

// ManifestEntry records one bundle file and its byte length.
type ManifestEntry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Manifest lists every bundle file except itself, ordered by name. It is
// always the last file written.
type Manifest struct {
	Schema      string          `json:"schema"`
	RunDir      string          `json:"run_dir"`
	GeneratedAt time.Time       `json:"generated_at"`
	Files       []ManifestEntry `json:"files"`
}

// Entry returns the manifest entry for a file name, if listed.
func (m *Manifest) Entry(name string) (ManifestEntry, bool) {
	for _, e := range m.Files {
		if e.Name == name {
			return e, true
		}
	}
	return ManifestEntry{}, false
}

// Hashes maps bundle file names to hex SHA-256 digests. It covers every
// content artifact; it cannot cover itself or the manifest written after
// it.
type Hashes struct {
	Schema      string            `json:"schema"`
	Algorithm   string            `json:"algorithm"`
	GeneratedAt time.Time         `json:"generated_at"`
	Digests     map[string]string `json:"sha256"`
}
