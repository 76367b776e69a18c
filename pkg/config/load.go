package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use LoadWithEnvOverrides
// for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Variables follow the naming convention
// MINOS_SECTION_FIELD (e.g., MINOS_POLICY_PATH) and always take precedence
// over file-based configuration.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// NewDefaultWithEnv returns the default configuration with MINOS_*
// environment overrides applied and validated. It covers running without
// a configuration file at all.
func NewDefaultWithEnv() (*Config, error) {
	cfg := NewDefault()
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format MINOS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("MINOS_POLICY_PATH"); val != "" {
		cfg.Policy.Path = val
	}

	if val := os.Getenv("MINOS_RUNS_ROOT_DIR"); val != "" {
		cfg.Runs.RootDir = val
	}

	if val := os.Getenv("MINOS_ORCHESTRATOR_COMMAND"); val != "" {
		cfg.Orchestrator.Command = val
	}
	if val := os.Getenv("MINOS_ORCHESTRATOR_GRACE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Orchestrator.Grace = d
		}
	}

	if val := os.Getenv("MINOS_SPOOL_DIR"); val != "" {
		cfg.Spool.Dir = val
	}
	if val := os.Getenv("MINOS_SPOOL_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Spool.Debounce = d
		}
	}

	if val := os.Getenv("MINOS_LEDGER_PATH"); val != "" {
		cfg.Ledger.Path = val
	}

	if val := os.Getenv("MINOS_RETENTION_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Retention.Enabled = b
		}
	}
	if val := os.Getenv("MINOS_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Retention.Days = i
		}
	}
	if val := os.Getenv("MINOS_RETENTION_SCHEDULE"); val != "" {
		cfg.Retention.Schedule = val
	}

	if val := os.Getenv("MINOS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("MINOS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("MINOS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("MINOS_TELEMETRY_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Metrics.ListenAddress = val
	}
}
