package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arbiter-hq/minos/pkg/cli"
	"arbiter-hq/minos/pkg/policy"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and validate governance policy documents",
}

var policyFlags struct {
	path string
}

var policyValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a policy document",
	Long: `Parse and validate a policy document, reporting every violation at once.

Examples:
  minos policy validate
  minos policy validate --policy strict.yaml`,
	RunE: runPolicyValidate,
}

var policyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active policy",
	RunE:  runPolicyShow,
}

func init() {
	rootCmd.AddCommand(policyCmd)
	policyCmd.AddCommand(policyValidateCmd)
	policyCmd.AddCommand(policyShowCmd)

	policyCmd.PersistentFlags().StringVar(&policyFlags.path, "policy", "", "override policy document path")
}

// loadPolicyStore resolves the policy path from flags and config and loads it.
func loadPolicyStore() (*policy.Store, *policy.Policy, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, cli.NewConfigError(cfgFile, "", fmt.Sprintf("failed to load config: %v", err))
	}
	if policyFlags.path != "" {
		cfg.Policy.Path = policyFlags.path
	}
	store := policy.NewStore(cfg.Policy.Path)
	pol, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	return store, pol, nil
}

func runPolicyValidate(cmd *cobra.Command, args []string) error {
	store, pol, err := loadPolicyStore()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "policy %s (%s): valid\n", pol.PolicyID, store.Path())
	return nil
}

func runPolicyShow(cmd *cobra.Command, args []string) error {
	_, pol, err := loadPolicyStore()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return cli.NewFormatter("json").FormatTo(out, pol)
	}

	fmt.Fprintf(out, "policy_id:              %s\n", pol.PolicyID)
	fmt.Fprintf(out, "timeout_s:              %d\n", pol.TimeoutS)
	fmt.Fprintf(out, "orchestrator_timeout_s: %d\n", pol.OrchestratorTimeoutS)
	if pol.ConfigPath != "" {
		fmt.Fprintf(out, "config_path:            %s\n", pol.ConfigPath)
	}
	if pol.ForbidLiveKeys {
		fmt.Fprintln(out, "forbid_live_keys:       true")
	}
	if pol.AllowLiveKeys {
		fmt.Fprintln(out, "allow_live_keys:        true")
	}
	for _, metric := range pol.ThresholdedMetrics() {
		if soft, ok := pol.SoftThreshold(metric); ok {
			fmt.Fprintf(out, "soft %-22s %g\n", metric+":", soft)
		}
		if hard, ok := pol.HardThreshold(metric); ok {
			fmt.Fprintf(out, "hard %-22s %g\n", metric+":", hard)
		}
	}
	return nil
}
