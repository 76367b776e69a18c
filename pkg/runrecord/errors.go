package runrecord

import (
	"fmt"
	"strings"
)

// MalformedRecordError reports a raw run record whose shape fails
// validation. All problems found are collected so the caller can fix the
// input in one pass. The error is recoverable: the caller owns the input.
type MalformedRecordError struct {
	// RunID identifies the offending record, when known.
	RunID string

	// Problems lists every validation failure found.
	Problems []string
}

// Error implements the error interface.
func (e *MalformedRecordError) Error() string {
	switch len(e.Problems) {
	case 0:
		return "malformed run record"
	case 1:
		return fmt.Sprintf("malformed run record: %s", e.Problems[0])
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "malformed run record with %d problems:\n", len(e.Problems))
	for _, p := range e.Problems {
		fmt.Fprintf(&sb, "  - %s\n", p)
	}
	return sb.String()
}
