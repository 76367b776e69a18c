package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"arbiter-hq/minos/pkg/cli"
	"arbiter-hq/minos/pkg/policy"
	"arbiter-hq/minos/pkg/runrecord"
	"arbiter-hq/minos/pkg/verdict"
)

var evaluateFlags struct {
	recordPath string
	policyPath string
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Govern a pre-recorded run record",
	Long: `Evaluate a raw run record JSON file against the active policy without
launching anything. The verdict is persisted as an evidence bundle exactly
as if the run had been launched by minos.

Examples:
  # Govern a record produced by an external harness
  minos evaluate --record run.json

  # Evaluate against a specific policy document
  minos evaluate --record run.json --policy strict.yaml`,
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringVarP(&evaluateFlags.recordPath, "record", "r", "", "run record JSON file (required)")
	evaluateCmd.Flags().StringVar(&evaluateFlags.policyPath, "policy", "", "override policy document path")
	evaluateCmd.MarkFlagRequired("record")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}
	if evaluateFlags.policyPath != "" {
		cfg.Policy.Path = evaluateFlags.policyPath
	}

	store := policy.NewStore(cfg.Policy.Path)
	pol, err := store.Load()
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	data, err := os.ReadFile(evaluateFlags.recordPath)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}
	rec, err := runrecord.ParseRawRecord(data)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	result, err := govern(ctx, cfg, pol, rec)
	if err != nil {
		return cli.NewCommandError("evaluate", err)
	}

	if err := printResult(cmd, result); err != nil {
		return err
	}
	if result.Decision.Verdict == verdict.VerdictRefuse {
		return fmt.Errorf("run %s refused by policy %s", result.Decision.RunID, pol.PolicyID)
	}
	return nil
}
