package policy

import (
	"fmt"
	"strings"
)

// FieldError reports one violated constraint in a policy document.
type FieldError struct {
	// Field is the dotted path to the offending field
	// (e.g. "hard_thresholds.restart_count").
	Field string

	// Message is a human-readable description of the violation.
	Message string
}

// Error returns the formatted field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidPolicyError reports a policy document that fails validation. Every
// violated constraint is listed, not just the first, so operators can fix
// all issues in one pass. The error is recoverable and always raised before
// any evaluation occurs.
type InvalidPolicyError struct {
	// PolicyID identifies the offending document, when one was present.
	PolicyID string

	// Errors contains all constraint violations found.
	Errors []FieldError
}

// Error returns a formatted string containing all violations.
func (e *InvalidPolicyError) Error() string {
	if len(e.Errors) == 0 {
		return "invalid policy"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("invalid policy: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "invalid policy with %d violations:\n", len(e.Errors))
	for _, fe := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", fe.Error())
	}
	return sb.String()
}
