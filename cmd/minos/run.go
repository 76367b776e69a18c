package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"arbiter-hq/minos/pkg/cli"
	"arbiter-hq/minos/pkg/config"
	"arbiter-hq/minos/pkg/ledger"
	"arbiter-hq/minos/pkg/orchestrator"
	"arbiter-hq/minos/pkg/pipeline"
	"arbiter-hq/minos/pkg/policy"
	"arbiter-hq/minos/pkg/runrecord"
	"arbiter-hq/minos/pkg/verdict"
)

var runFlags struct {
	command    string
	policyPath string
}

var runCmd = &cobra.Command{
	Use:   "run PROMPT",
	Short: "Launch and govern an orchestrator run",
	Long: `Launch the configured multi-agent orchestrator with the given prompt,
measure its behavior, evaluate it against the active policy, and persist
the verdict as an evidence bundle.

The command exits non-zero when the verdict is REFUSE.

Examples:
  # Govern a run with the configured orchestrator
  minos run "compare the three answers and pick one"

  # Override the orchestrator command
  minos run --command ./massgen "summarize the findings"`,
	Args: cobra.ExactArgs(1),
	RunE: runGoverned,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.command, "command", "", "override orchestrator command")
	runCmd.Flags().StringVar(&runFlags.policyPath, "policy", "", "override policy document path")
}

func runGoverned(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}
	if runFlags.command != "" {
		cfg.Orchestrator.Command = runFlags.command
	}
	if runFlags.policyPath != "" {
		cfg.Policy.Path = runFlags.policyPath
	}
	if cfg.Orchestrator.Command == "" {
		return cli.NewConfigError(cfgFile, "orchestrator.command", "no orchestrator command configured")
	}

	// An unusable policy aborts before anything is launched or persisted.
	store := policy.NewStore(cfg.Policy.Path)
	pol, err := store.Load()
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	adapter, err := orchestrator.New(orchestrator.Config{
		Command:        cfg.Orchestrator.Command,
		BaseArgs:       cfg.Orchestrator.BaseArgs,
		TimeoutFlag:    cfg.Orchestrator.TimeoutFlag,
		ConfigFlag:     cfg.Orchestrator.ConfigFlag,
		RestartMarker:  cfg.Orchestrator.RestartMarker,
		RevisionMarker: cfg.Orchestrator.RevisionMarker,
		Grace:          cfg.Orchestrator.Grace,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	// Capture into a staging directory; the bundle import copies the logs
	// under the final run directory.
	staging, err := os.MkdirTemp("", "minos-run-")
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer os.RemoveAll(staging)

	rec, err := adapter.Execute(ctx, args[0], pol, staging)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	result, err := govern(ctx, cfg, pol, rec)
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if err := printResult(cmd, result); err != nil {
		return err
	}
	if result.Decision.Verdict == verdict.VerdictRefuse {
		return fmt.Errorf("run %s refused by policy %s", result.Decision.RunID, pol.PolicyID)
	}
	return nil
}

// govern pushes a raw record through the pipeline with the configured
// ledger attached.
func govern(ctx context.Context, cfg *config.Config, pol *policy.Policy, rec *runrecord.RawRecord) (*pipeline.Result, error) {
	opts := []pipeline.Option{}
	if cfg.Ledger.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Ledger.Path), 0o755); err != nil {
			return nil, err
		}
		history, err := ledger.Open(cfg.Ledger.Path)
		if err != nil {
			return nil, err
		}
		defer history.Close()
		opts = append(opts, pipeline.WithLedger(history))
	}

	runDir := filepath.Join(cfg.Runs.RootDir, rec.RunID)
	return pipeline.New(opts...).Govern(ctx, pol, rec, runDir)
}

// printResult renders a pipeline result in the selected output format.
func printResult(cmd *cobra.Command, result *pipeline.Result) error {
	formatter := cli.NewFormatter(outputFormat)
	if outputFormat == "json" {
		return formatter.FormatTo(cmd.OutOrStdout(), map[string]any{
			"run_id":     result.Decision.RunID,
			"policy_id":  result.Decision.PolicyID,
			"verdict":    result.Decision.Verdict,
			"violations": result.Decision.Violations,
			"bundle_dir": result.BundleDir,
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run:     %s\n", result.Decision.RunID)
	fmt.Fprintf(out, "policy:  %s\n", result.Decision.PolicyID)
	fmt.Fprintf(out, "verdict: %s\n", result.Decision.Verdict)
	fmt.Fprintf(out, "bundle:  %s\n", result.BundleDir)
	for _, v := range result.Decision.Exceedances() {
		fmt.Fprintf(out, "  %s limit exceeded on %s: observed %g, threshold %g\n",
			v.Kind, v.Metric, v.Observed, v.Threshold)
	}
	return nil
}
