package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RunIDKey is the context key for governed run identifiers.
	RunIDKey contextKey = "run_id"

	// PolicyIDKey is the context key for policy identifiers.
	PolicyIDKey contextKey = "policy_id"
)

// WithRunID adds a run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the run identifier from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// WithPolicyID adds a policy identifier to the context.
func WithPolicyID(ctx context.Context, policyID string) context.Context {
	return context.WithValue(ctx, PolicyIDKey, policyID)
}

// GetPolicyID retrieves the policy identifier from the context.
func GetPolicyID(ctx context.Context) string {
	if policyID, ok := ctx.Value(PolicyIDKey).(string); ok {
		return policyID
	}
	return ""
}

// ContextFields extracts common fields from context for logging. Returns a
// slice of key-value pairs suitable for logger.With().
func ContextFields(ctx context.Context) []any {
	var fields []any
	if runID := GetRunID(ctx); runID != "" {
		fields = append(fields, "run_id", runID)
	}
	if policyID := GetPolicyID(ctx); policyID != "" {
		fields = append(fields, "policy_id", policyID)
	}
	return fields
}
