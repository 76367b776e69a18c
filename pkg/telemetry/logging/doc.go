// Package logging provides structured logging for the governance engine on
// top of log/slog, with level and format parsing plus context propagation
// of run and policy identifiers.
package logging
