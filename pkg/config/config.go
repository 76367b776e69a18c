package config

import "time"

// Config is the root configuration for the Minos governance engine.
// It is loaded from a YAML file, with environment variable overrides
// following the MINOS_SECTION_FIELD convention.
type Config struct {
	// Policy configures where the active policy document lives.
	Policy PolicyConfig `yaml:"policy"`

	// Runs configures where evidence bundles are persisted.
	Runs RunsConfig `yaml:"runs"`

	// Orchestrator configures the untrusted multi-agent command that
	// `minos run` launches and measures.
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`

	// Spool configures the drop directory watched by `minos watch`.
	Spool SpoolConfig `yaml:"spool"`

	// Ledger configures the SQLite verdict history.
	Ledger LedgerConfig `yaml:"ledger"`

	// Retention configures pruning of aged ledger rows and bundles.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry configures logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PolicyConfig locates the governance policy document.
type PolicyConfig struct {
	// Path is the YAML or JSON policy document to load.
	Path string `yaml:"path"`
}

// RunsConfig controls evidence bundle placement.
type RunsConfig struct {
	// RootDir is the directory under which per-run bundle directories
	// are created.
	RootDir string `yaml:"root_dir"`
}

// OrchestratorConfig describes how to launch the governed orchestrator.
type OrchestratorConfig struct {
	// Command is the orchestrator executable.
	Command string `yaml:"command"`

	// BaseArgs are arguments always passed before policy args and the prompt.
	BaseArgs []string `yaml:"base_args"`

	// TimeoutFlag, when set, is passed with the policy's orchestrator
	// budget in seconds (e.g. "--timeout").
	TimeoutFlag string `yaml:"timeout_flag"`

	// ConfigFlag, when set, is passed with the policy's config_path
	// (e.g. "--config").
	ConfigFlag string `yaml:"config_flag"`

	// RestartMarker and RevisionMarker override the default log line
	// patterns used to derive restart and churn counts.
	RestartMarker  string `yaml:"restart_marker"`
	RevisionMarker string `yaml:"revision_marker"`

	// Grace is how long past the orchestrator budget the process may
	// live before it is killed.
	Grace time.Duration `yaml:"grace"`
}

// SpoolConfig describes the run-record drop directory.
type SpoolConfig struct {
	// Dir is the watched directory. Files matching *.json are treated
	// as raw run records.
	Dir string `yaml:"dir"`

	// Debounce is how long a file must be quiet before it is ingested.
	Debounce time.Duration `yaml:"debounce"`
}

// LedgerConfig describes the verdict history database.
type LedgerConfig struct {
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// RetentionConfig controls pruning of aged governance artifacts.
type RetentionConfig struct {
	// Enabled turns the retention scheduler on.
	Enabled bool `yaml:"enabled"`

	// Days is the age past which ledger rows and bundle directories
	// are pruned.
	Days int `yaml:"days"`

	// Schedule is a cron expression for when pruning runs.
	Schedule string `yaml:"schedule"`
}

// TelemetryConfig groups logging and metrics configuration.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig controls structured log output.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns metric recording on.
	Enabled bool `yaml:"enabled"`

	// Namespace prefixes all metric names.
	Namespace string `yaml:"namespace"`

	// ListenAddress, when set, serves /metrics over HTTP in `minos watch`.
	ListenAddress string `yaml:"listen_address"`

	// Histogram buckets. Defaulted by the collector when empty.
	EvaluationDurationBuckets []float64 `yaml:"evaluation_duration_buckets"`
	RunDurationBuckets        []float64 `yaml:"run_duration_buckets"`
}
