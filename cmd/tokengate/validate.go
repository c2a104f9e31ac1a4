package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Herocku2/solana-token-creatorf/pkg/cli"
	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/upload"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Load the configuration file with environment overrides and report
whether it is valid.

Missing storage credentials do not fail validation because the upload
route reports them per request. They are listed as warnings instead.

Examples:
  # Validate a configuration file
  tokengate validate --config config.yaml

  # Validate defaults plus environment
  tokengate validate`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", err.Error())
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Configuration valid")
	fmt.Fprintf(out, "  devnet candidates:  %d\n", len(cfg.Networks.Devnet.Candidates))
	fmt.Fprintf(out, "  mainnet candidates: %d\n", len(cfg.Networks.Mainnet.Candidates))
	fmt.Fprintf(out, "  admission:          %d requests / %s (store: %s)\n",
		cfg.Admission.MaxRequests, cfg.Admission.Window, cfg.Admission.Store.Backend)
	if cfg.Admission.Disabled {
		fmt.Fprintln(out, "  admission:          disabled")
	}

	if missing := upload.SettingsFromConfig(cfg.Storage).Missing(); len(missing) > 0 {
		fmt.Fprintf(out, "⚠ storage not configured, missing: %v\n", missing)
	}
	return nil
}
