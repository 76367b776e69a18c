package config

import "time"

// Default values for configuration fields.
const (
	DefaultPolicyPath = "./policy.yaml"

	DefaultRunsRootDir = "data/runs"

	DefaultOrchestratorGrace = 30 * time.Second

	DefaultSpoolDebounce = 500 * time.Millisecond

	DefaultLedgerPath = "data/verdicts.db"

	DefaultRetentionDays     = 90
	DefaultRetentionSchedule = "0 3 * * *"

	DefaultLoggingLevel  = "info"
	DefaultLoggingFormat = "json"

	DefaultMetricsEnabled   = true
	DefaultMetricsNamespace = "minos"
)

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	if cfg.Policy.Path == "" {
		cfg.Policy.Path = DefaultPolicyPath
	}

	if cfg.Runs.RootDir == "" {
		cfg.Runs.RootDir = DefaultRunsRootDir
	}

	if cfg.Orchestrator.Grace == 0 {
		cfg.Orchestrator.Grace = DefaultOrchestratorGrace
	}

	if cfg.Spool.Debounce == 0 {
		cfg.Spool.Debounce = DefaultSpoolDebounce
	}

	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = DefaultLedgerPath
	}

	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultRetentionDays
	}
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}

	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}

// NewDefault returns a Config populated with all defaults. Useful when no
// configuration file is present.
func NewDefault() *Config {
	cfg := &Config{}
	cfg.Telemetry.Metrics.Enabled = DefaultMetricsEnabled
	ApplyDefaults(cfg)
	return cfg
}
