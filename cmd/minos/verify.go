package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arbiter-hq/minos/pkg/bundle"
	"arbiter-hq/minos/pkg/cli"
)

var verifyCmd = &cobra.Command{
	Use:   "verify BUNDLE_DIR",
	Short: "Verify an evidence bundle's integrity",
	Long: `Re-hash every file in an evidence bundle and compare against the recorded
digests and manifest. Reports missing files, digest mismatches, size
mismatches, and files present on disk but absent from the integrity records.

The command exits non-zero when the bundle fails verification.

Examples:
  minos verify data/runs/run-1a2b3c4d5e6f`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}

	report, err := bundle.Verify(args[0])
	if err != nil {
		return cli.NewCommandError("verify", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		if err := cli.NewFormatter("json").FormatTo(out, report); err != nil {
			return err
		}
	} else {
		if report.OK() {
			fmt.Fprintf(out, "bundle %s: OK\n", args[0])
		} else {
			fmt.Fprintf(out, "bundle %s: FAILED\n", args[0])
			for _, p := range report.Problems {
				fmt.Fprintf(out, "  %s: %s (%s)\n", p.Name, p.Kind, p.Detail)
			}
		}
	}

	if !report.OK() {
		return fmt.Errorf("bundle %s failed verification with %d problems", args[0], len(report.Problems))
	}
	return nil
}
