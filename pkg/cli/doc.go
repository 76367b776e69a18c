// Package cli provides shared helpers for the minos command line tool:
// output formatting, command error types, and signal handling.
package cli
