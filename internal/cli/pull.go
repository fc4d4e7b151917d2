package cli

import (
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/wire"
)

// PullOptions holds flags for the pull command.
type PullOptions struct {
	*RootOptions
	All     bool
	Metrics bool
}

// PullResult is the outcome of pulling one kind.
type PullResult struct {
	Kind   atoms.Kind   `json:"kind"`
	Result string       `json:"result"`
	Events []wire.Event `json:"events"`
}

// PullReport collects the results of one pull command.
type PullReport struct {
	Results []PullResult `json:"results"`
	Metrics string       `json:"metrics,omitempty"`
}

func (r PullReport) String() string {
	var b strings.Builder
	for _, res := range r.Results {
		fmt.Fprintf(&b, "%s: %s (%d events)\n", res.Kind, res.Result, len(res.Events))
		for _, e := range res.Events {
			fmt.Fprintf(&b, "  %s\n", e)
		}
	}
	if r.Metrics != "" {
		b.WriteString("\n")
		b.WriteString(r.Metrics)
	}
	return b.String()
}

// NewPullCommand creates the pull command.
func NewPullCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PullOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pull [kind...]",
		Short: "Drain kinds and print their wire events",
		Long: `Pull one or more atom kinds, the way the metrics daemon would.

Each stored kind is drained only if its cooldown has passed since the
previous pull; otherwise the result is "skip" and nothing changes. The
snapshot is written before the command exits.

Example:
  atomstore pull voice_call_session incoming_sms
  atomstore pull --all --metrics
  atomstore pull --all --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if opts.All && len(args) > 0 {
				return fmt.Errorf("--all does not take kind arguments")
			}
			if !opts.All && len(args) == 0 {
				return fmt.Errorf("requires at least one kind or --all")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPull(opts, args, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.All, "all", false, "pull every kind")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print store and collector metrics after pulling")

	return cmd
}

func runPull(opts *PullOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	kinds := atoms.Kinds()
	if !opts.All {
		kinds = kinds[:0]
		for _, name := range args {
			k, err := atoms.ParseKind(name)
			if err != nil {
				return fail(f, ExitCommandError, ErrCodeUnknownKind, "invalid kind", err)
			}
			kinds = append(kinds, k)
		}
	}

	ctx := commandContext(cmd)
	a, err := openApp(ctx, opts.RootOptions, cmd, f)
	if err != nil {
		return err
	}
	defer closeApp(a)

	var report PullReport
	for _, k := range kinds {
		res, events := a.collector.Pull(ctx, k)
		f.VerboseLog("pulled %s: %s", k, res)
		if events == nil {
			events = []wire.Event{}
		}
		report.Results = append(report.Results, PullResult{Kind: k, Result: res.String(), Events: events})
	}

	if err := a.collector.Flush(); err != nil {
		return fail(f, ExitFailure, ErrCodeWrite, "failed to write snapshot", err)
	}

	if opts.Metrics {
		text, err := renderMetrics(a.registry)
		if err != nil {
			return fail(f, ExitFailure, ErrCodeWrite, "failed to render metrics", err)
		}
		report.Metrics = text
	}
	return f.Success(report)
}

// renderMetrics writes every gathered family in the Prometheus text format.
func renderMetrics(g prometheus.Gatherer) (string, error) {
	families, err := g.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}
	var b strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
			return "", fmt.Errorf("encode metrics: %w", err)
		}
	}
	return b.String(), nil
}
