// Package config provides YAML-based configuration for the Minos
// governance engine with defaults, validation, and MINOS_* environment
// variable overrides.
package config
