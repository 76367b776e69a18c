package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"arbiter-hq/minos/pkg/cli"
	"arbiter-hq/minos/pkg/ledger"
)

var historyFlags struct {
	verdict  string
	policyID string
	since    string
	limit    int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query the verdict ledger",
	Long: `List previously rendered verdicts, newest first.

Examples:
  # All recent verdicts
  minos history

  # Only refusals
  minos history --verdict REFUSE

  # Verdicts under one policy since a point in time
  minos history --policy-id cautious-default --since 2026-08-01T00:00:00Z`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.verdict, "verdict", "", "filter by verdict (ALLOW, MARGINAL, REFUSE)")
	historyCmd.Flags().StringVar(&historyFlags.policyID, "policy-id", "", "filter by policy identifier")
	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "only verdicts evaluated at or after this RFC 3339 time")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 0, "maximum entries to return")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}

	filter := ledger.Filter{
		Verdict:  historyFlags.verdict,
		PolicyID: historyFlags.policyID,
		Limit:    historyFlags.limit,
	}
	if historyFlags.since != "" {
		since, err := time.Parse(time.RFC3339, historyFlags.since)
		if err != nil {
			return cli.NewCommandError("history", fmt.Errorf("invalid --since value %q: %w", historyFlags.since, err))
		}
		filter.Since = since
	}

	history, err := ledger.Open(cfg.Ledger.Path)
	if err != nil {
		return cli.NewCommandError("history", err)
	}
	defer history.Close()

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
	entries, err := history.Query(ctx, filter)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return cli.NewFormatter("json").FormatTo(out, entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "no verdicts recorded")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %-8s  %-20s  %s  %s\n",
			e.EvaluatedAt.Format(time.RFC3339), e.Verdict, e.PolicyID, e.RunID, e.BundleDir)
	}
	return nil
}
