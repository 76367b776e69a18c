package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arbiter-hq/minos/pkg/config"
	"arbiter-hq/minos/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "minos",
	Short: "Minos - post-hoc execution governance for multi-agent runs",
	Long: `Minos governs untrusted multi-agent orchestrator runs after the fact.

It measures a run's observable behavior (restarts, duration, answer churn),
applies policy thresholds, and renders an ALLOW, MARGINAL, or REFUSE verdict.
Every verdict is persisted as a tamper-evident evidence bundle whose
integrity can be re-verified at any time.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "minos.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json)")
}

// loadConfig loads the configuration file, applies environment overrides,
// and installs the configured logger. With --verbose the log level drops
// to debug regardless of configuration.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if _, statErr := os.Stat(cfgFile); os.IsNotExist(statErr) {
		// No config file is fine: run with defaults and env overrides.
		cfg, err = config.NewDefaultWithEnv()
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.LoadWithEnvOverrides(cfgFile)
		if err != nil {
			return nil, err
		}
	}

	level := cfg.Telemetry.Logging.Level
	if verbose {
		level = "debug"
	}
	if _, err := logging.New(logging.Config{
		Level:     level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}
