package bundle

import "fmt"

// PersistenceError reports an I/O failure while writing or reading a
// bundle. It is fatal to the run: the caller must not retry the write
// (retrying against a full disk or a permissions error is not safe to
// default to), and the partial bundle is left on disk for inspection.
type PersistenceError struct {
	// Op is the operation that failed ("write", "copy", "read", "stat").
	Op string

	// Path is the file or directory involved.
	Path string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("bundle persistence error [op=%s, path=%s]: %v", e.Op, e.Path, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NewPersistenceError creates a new PersistenceError.
func NewPersistenceError(op, path string, cause error) *PersistenceError {
	return &PersistenceError{Op: op, Path: path, Cause: cause}
}
