package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Herocku2/solana-token-creatorf/pkg/cli"
	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/maintenance"
	"github.com/Herocku2/solana-token-creatorf/pkg/security/secrets"
	securetls "github.com/Herocku2/solana-token-creatorf/pkg/security/tls"
	"github.com/Herocku2/solana-token-creatorf/pkg/server"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/health"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/tracing"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
	watch         bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the gateway server",
	Long: `Start the gateway server with the specified configuration.

The server forwards RPC calls to the selected endpoint of each network,
applies admission control to the API routes and relays uploads.

When a configuration file is given it is watched: candidate lists and the
admission policy are applied live. SIGHUP forces a reload.

Examples:
  # Start with defaults
  tokengate run

  # Start with custom config
  tokengate run --config /etc/tokengate/config.yaml

  # Override listen address
  tokengate run --listen 0.0.0.0:8080

  # Validate config without starting server
  tokengate run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting server")
	runCmd.Flags().BoolVar(&runFlags.watch, "watch", true, "reload the config file when it changes")
}

func runServer(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if runFlags.listenAddress != "" {
		cfg.Proxy.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(logging.ConfigFrom(cfg.Telemetry.Logging))
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	slog.SetDefault(logger)

	ctx, cancel := cli.SetupSignalHandler(context.Background())
	defer cancel()

	secretMgr, err := secrets.NewManagerFromConfig(cfg.Secrets)
	if err != nil {
		return cli.NewConfigError("secrets", err.Error())
	}
	defer secretMgr.Close()

	resolved, err := secrets.ResolveConfig(ctx, secretMgr, cfg)
	if err != nil {
		return cli.NewConfigError("secrets", err.Error())
	}

	if runFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Configuration valid")
		return nil
	}

	tracer, err := tracing.New(ctx, cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer func() {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = tracer.Shutdown(shutdownCtx)
	}()

	comps, err := newComponents(ctx, resolved)
	if err != nil {
		return cli.NewCommandError("run", err)
	}
	defer comps.Close()

	scheduler := maintenance.NewScheduler()
	if err := scheduler.Add(ctx, maintenance.SweepJob(comps.controller, cfg.Admission.SweepSchedule)); err != nil {
		return cli.NewConfigError("admission.sweep_schedule", err.Error())
	}
	if err := scheduler.Add(ctx, maintenance.PrewarmJob(comps.selector, cfg.Selector.PrewarmSchedule)); err != nil {
		return cli.NewConfigError("selector.prewarm_schedule", err.Error())
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	checker := health.New(2 * time.Second)
	checker.RegisterCheck("config", health.ConfigCheck(config.GetConfig))
	checker.RegisterSelectionChecks(comps.selector)

	tlsCfg, reloader, err := securetls.NewServerTLS(ctx, cfg.Proxy.TLS)
	if err != nil {
		return cli.NewConfigError("proxy.tls", err.Error())
	}
	if reloader != nil {
		checker.RegisterCheck("tls", health.CertificateCheck(reloader))
	}

	srv, err := server.NewServer(resolved, server.Dependencies{
		Forwarder: comps.forwarder,
		Selection: comps.selector,
		Admitter:  comps.controller,
		Uploader:  comps.relay,
		Checker:   checker,
		Version:   versionInfo(),
		Metrics:   comps.collector,
		Tracer:    tracer.Provider(),
		TLS:       tlsCfg,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	if cfgFile != "" {
		startReloaders(ctx, comps, secretMgr)
	}

	printBanner(cmd, cfg)

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("run", err)
	}
	return nil
}

// startReloaders applies configuration changes from file edits (when
// --watch is set) and from SIGHUP. SIGHUP also drops cached secrets.
func startReloaders(ctx context.Context, comps *components, secretMgr *secrets.Manager) {
	logger := slog.Default().With("component", "config-watcher")
	apply := func(cfg *config.Config) error {
		resolved, err := secrets.ResolveConfig(ctx, secretMgr, cfg)
		if err != nil {
			logger.Error("failed to resolve secrets in reloaded configuration", "error", err)
			return err
		}
		if err := comps.apply(resolved); err != nil {
			logger.Error("failed to apply reloaded configuration", "error", err)
			return err
		}
		logger.Info("configuration reloaded")
		return nil
	}

	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, config.DefaultWatchDebounce, logger)
		if err != nil {
			logger.Error("config watcher disabled", "error", err)
		} else {
			go func() {
				defer watcher.Stop()
				if err := watcher.Watch(ctx, apply); err != nil {
					logger.Error("config watcher stopped", "error", err)
				}
			}()
		}
	}

	reloads, stop := cli.ReloadSignals()
	go func() {
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-reloads:
				if err := secretMgr.Refresh(ctx); err != nil {
					logger.Warn("failed to refresh secrets", "error", err)
				}
				cfg, err := config.ReloadConfig(cfgFile)
				if err != nil {
					logger.Error("reload failed, keeping previous configuration", "error", err)
					continue
				}
				_ = apply(cfg)
			}
		}
	}()
}

func printBanner(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); !ok || f != os.Stdout {
		return
	}
	fmt.Fprintf(out, "Tokengate %s\n", Version)
	scheme := "http"
	if cfg.Proxy.TLS.Enabled {
		scheme = "https"
	}
	fmt.Fprintf(out, "  listen:     %s://%s\n", scheme, cfg.Proxy.ListenAddress)
	fmt.Fprintf(out, "  devnet:     %d candidates\n", len(cfg.Networks.Devnet.Candidates))
	fmt.Fprintf(out, "  mainnet:    %d candidates\n", len(cfg.Networks.Mainnet.Candidates))
	fmt.Fprintf(out, "  admission:  %d requests / %s\n", cfg.Admission.MaxRequests, cfg.Admission.Window)
}
