package runrecord

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
)

// Default marker patterns for orchestrator debug output. Operators running a
// different orchestrator override these in the governance config.
const (
	DefaultRestartMarker  = `(?i)^\[[^\]]+\]\s*restart`
	DefaultRevisionMarker = `(?i)^\[[^\]]+\]\s*(revis|new answer)`
)

// maxScanLine bounds the line buffer for marker scanning. Orchestrator logs
// can contain very long single-line payloads.
const maxScanLine = 1024 * 1024

// MarkerCounts holds the structural counts extracted from a captured log.
type MarkerCounts struct {
	Restarts  int
	Revisions int
}

// Scanner counts restart and self-revision marker lines in captured
// orchestrator output. Matching is purely structural: a line either matches
// a marker pattern or it does not.
type Scanner struct {
	restart  *regexp.Regexp
	revision *regexp.Regexp
}

// NewScanner compiles the marker patterns. Empty patterns fall back to the
// package defaults.
func NewScanner(restartPattern, revisionPattern string) (*Scanner, error) {
	if restartPattern == "" {
		restartPattern = DefaultRestartMarker
	}
	if revisionPattern == "" {
		revisionPattern = DefaultRevisionMarker
	}

	restart, err := regexp.Compile(restartPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid restart marker pattern %q: %w", restartPattern, err)
	}
	revision, err := regexp.Compile(revisionPattern)
	if err != nil {
		return nil, fmt.Errorf("invalid revision marker pattern %q: %w", revisionPattern, err)
	}

	return &Scanner{restart: restart, revision: revision}, nil
}

// Scan counts marker lines in r.
func (s *Scanner) Scan(r io.Reader) (MarkerCounts, error) {
	var counts MarkerCounts

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxScanLine)
	for scanner.Scan() {
		line := scanner.Bytes()
		if s.restart.Match(line) {
			counts.Restarts++
		}
		if s.revision.Match(line) {
			counts.Revisions++
		}
	}
	if err := scanner.Err(); err != nil {
		return MarkerCounts{}, fmt.Errorf("scanning log: %w", err)
	}
	return counts, nil
}

// ScanFile counts marker lines in the log file at path.
func (s *Scanner) ScanFile(path string) (MarkerCounts, error) {
	f, err := os.Open(path)
	if err != nil {
		return MarkerCounts{}, fmt.Errorf("opening log %s: %w", path, err)
	}
	defer f.Close()
	return s.Scan(f)
}
