package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Herocku2/solana-token-creatorf/pkg/cli"
	"github.com/Herocku2/solana-token-creatorf/pkg/config"
	"github.com/Herocku2/solana-token-creatorf/pkg/routing"
	"github.com/Herocku2/solana-token-creatorf/pkg/security/secrets"
	"github.com/Herocku2/solana-token-creatorf/pkg/telemetry/logging"
)

var probeFlags struct {
	segment string
	output  string
	timeout time.Duration
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Probe the configured RPC endpoints once",
	Long: `Run one probe round against the candidate endpoints of each network
and report liveness, latency and the endpoint the selector would pick.

Endpoint URLs are printed with credentials and query strings redacted.

Examples:
  # Probe every network
  tokengate probe

  # Probe mainnet only, as JSON
  tokengate probe --segment mainnet --output json`,
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().StringVarP(&probeFlags.segment, "segment", "s", "", "network to probe: devnet, mainnet (all when empty)")
	probeCmd.Flags().StringVarP(&probeFlags.output, "output", "o", "table", "output format: table, json")
	probeCmd.Flags().DurationVar(&probeFlags.timeout, "timeout", 30*time.Second, "overall deadline for the probe rounds")
}

// probeResult is one probed candidate.
type probeResult struct {
	Segment   string  `json:"segment"`
	Endpoint  string  `json:"endpoint"`
	Alive     bool    `json:"alive"`
	LatencyMs float64 `json:"latency_ms,omitempty"`
	Selected  bool    `json:"selected"`
	Error     string  `json:"error,omitempty"`
}

// probeReport is the probe command's output.
type probeReport struct {
	Results []probeResult `json:"results"`
}

// Header implements cli.Tabular.
func (r probeReport) Header() table.Row {
	return table.Row{"Segment", "Endpoint", "Alive", "Latency", "Selected", "Error"}
}

// Rows implements cli.Tabular.
func (r probeReport) Rows() []table.Row {
	rows := make([]table.Row, 0, len(r.Results))
	for _, res := range r.Results {
		latency := "-"
		if res.Alive {
			latency = strconv.FormatFloat(res.LatencyMs, 'f', 1, 64) + "ms"
		}
		selected := ""
		if res.Selected {
			selected = "✓"
		}
		rows = append(rows, table.Row{res.Segment, res.Endpoint, res.Alive, latency, selected, res.Error})
	}
	return rows
}

func runProbe(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(probeFlags.output)
	if err != nil {
		return err
	}

	segments := routing.Segments
	if probeFlags.segment != "" {
		seg, err := routing.ParseSegment(probeFlags.segment)
		if err != nil {
			return cli.NewConfigError("segment", err.Error())
		}
		segments = []routing.Segment{seg}
	}

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, probeFlags.timeout)
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

	report, err := probeSegments(ctx, resolved, segments)
	if err != nil {
		return cli.NewCommandError("probe", err)
	}
	return writeReport(cmd.OutOrStdout(), format, report)
}

// probeSegments runs one forced probe round per segment.
func probeSegments(ctx context.Context, cfg *config.Config, segments []routing.Segment) (probeReport, error) {
	_, selector, err := newSelector(cfg, nil)
	if err != nil {
		return probeReport{}, err
	}

	var report probeReport
	for _, seg := range segments {
		sel := selector.Refresh(ctx, seg)
		for _, h := range sel.Health {
			res := probeResult{
				Segment:  string(seg),
				Endpoint: logging.RedactURL(h.Endpoint.URL),
				Alive:    h.Alive,
				Selected: !sel.Fallback && h.Endpoint == sel.Endpoint,
			}
			if h.Alive {
				res.LatencyMs = h.LatencyMs()
			}
			if h.Err != nil {
				res.Error = h.Err.Error()
			}
			report.Results = append(report.Results, res)
		}
	}
	return report, nil
}

func writeReport(w io.Writer, format cli.OutputFormat, report probeReport) error {
	return cli.NewFormatter(format).FormatTo(w, report)
}
