package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/limits"
	"github.com/Herocku2/solana-token-creatorf/pkg/providers"
	"github.com/Herocku2/solana-token-creatorf/pkg/proxy"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/metrics"
	"github.com/Herocku2/solana-token-creatorf/pkg/upload"
)

// roundSlack is added to the probe timeout to bound a whole probe round.
const roundSlack = 500 * time.Millisecond

// components are the long-lived parts of the gateway built from config.
type components struct {
	collector  *metrics.Collector
	rpcClient  *providers.Client
	registry   *routing.Registry
	selector   *routing.Selector
	forwarder  *proxy.Forwarder
	controller *limits.Controller
	relay      *upload.Relay
}

// newSelector builds the endpoint registry and selector. observer may be nil.
func newSelector(cfg *config.Config, observer routing.Observer) (*routing.Registry, *routing.Selector, error) {
	registry, err := routing.RegistryFromConfig(cfg.Networks)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build endpoint registry: %w", err)
	}

	probeClient := providers.NewClient(providers.ClientConfig{
		Name:    "prober",
		Timeout: cfg.Selector.ProbeTimeout,
	})
	prober := routing.NewHTTPProber(probeClient, cfg.Selector.ProbeMethod, cfg.Selector.ProbeTimeout)

	opts := []routing.SelectorOption{}
	if observer != nil {
		opts = append(opts, routing.WithObserver(observer))
	}
	selector := routing.NewSelector(registry, prober, routing.SelectorConfig{
		TTL:          cfg.Selector.CacheTTL,
		RoundTimeout: cfg.Selector.ProbeTimeout + roundSlack,
	}, opts...)

	return registry, selector, nil
}

func newComponents(ctx context.Context, cfg *config.Config) (*components, error) {
	c := &components{
		collector: metrics.NewCollector(cfg.Telemetry.Metrics, nil),
	}

	var err error
	c.registry, c.selector, err = newSelector(cfg, c.collector)
	if err != nil {
		return nil, err
	}

	c.rpcClient = providers.NewClient(providers.ClientConfig{Name: "rpc-proxy"})
	c.forwarder = proxy.NewForwarder(c.rpcClient, c.selector, cfg.RPC.RequestTimeout,
		proxy.WithForwardObserver(c.collector),
	)

	store, err := limits.NewStore(cfg.Admission.Store)
	if err != nil {
		return nil, err
	}
	c.controller = limits.NewController(limits.Config{
		Policy:        limits.PolicyFromConfig(cfg.Admission),
		SweepInterval: cfg.Admission.SweepInterval,
		Store:         store,
		Metrics:       limits.NewMetrics(cfg.Telemetry.Metrics.Namespace, c.collector.Registry()),
	})

	backend, err := upload.NewS3Backend(ctx, upload.S3ConfigFromConfig(cfg.Storage))
	if err != nil {
		_ = c.controller.Close()
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}
	c.relay = upload.NewRelay(upload.SettingsFromConfig(cfg.Storage), backend,
		upload.WithObserver(c.collector),
	)
	if !c.relay.Configured() {
		slog.Warn("storage backend not configured, uploads will fail",
			"component", "upload",
			"error", c.relay.Check(),
		)
	}

	return c, nil
}

// apply hot-swaps the parts of cfg that take effect without a restart:
// candidate lists and the admission policy. A segment whose candidates
// changed drops its cached selection.
func (c *components) apply(cfg *config.Config) error {
	var errs []error

	for segment, urls := range routing.URLsFromConfig(cfg.Networks) {
		changed, err := c.registry.Replace(segment, urls)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if changed {
			c.selector.Invalidate(segment)
			slog.Info("endpoint candidates updated",
				"component", "config-watcher",
				"segment", segment,
				"candidates", len(urls),
			)
		}
	}

	c.controller.UpdatePolicy(limits.PolicyFromConfig(cfg.Admission))
	return errors.Join(errs...)
}

func (c *components) Close() error {
	c.rpcClient.CloseIdleConnections()
	return c.controller.Close()
}
