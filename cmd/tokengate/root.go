package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Herocku2/solana-token-creatorf/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "tokengate",
	Short: "Tokengate - RPC and upload gateway for the Solana token creator",
	Long: `Tokengate shields the token creator's browser client from direct chain
RPC calls. It forwards JSON-RPC requests to the fastest live endpoint of each
network, rate limits clients per IP and relays metadata uploads to an
S3-compatible content-addressed store.

Without --config the built-in defaults are used. Environment variables
(TOKENGATE_*, FILEBASE_*, NEXT_PUBLIC_SOLANA_*_RPC) override both.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
