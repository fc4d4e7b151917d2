package cli

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/config"
	"github.com/roach88/atomstore/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// History renders ledger entries as a table in text mode.
type History []store.PullEntry

func (h History) String() string {
	if len(h) == 0 {
		return "no pulls recorded\n"
	}
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tKIND\tRESULT\tEVENTS")
	for _, e := range h {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.At.Format(time.RFC3339), e.Kind, e.Result, e.Events)
	}
	w.Flush()
	return b.String()
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [kind]",
		Short: "Show recent pulls from the ledger",
		Long: `Show recorded pulls, newest first. The ledger is kept only by the
sqlite backend.

Example:
  atomstore history --config atomstore.yaml
  atomstore history data_call_session --limit 5`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, args, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "maximum entries to show (0 for all)")

	return cmd
}

func runHistory(opts *HistoryOptions, args []string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	var kind string
	if len(args) == 1 {
		k, err := atoms.ParseKind(args[0])
		if err != nil {
			return fail(f, ExitCommandError, ErrCodeUnknownKind, "invalid kind", err)
		}
		kind = k.String()
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if cfg.Backend != config.BackendSqlite {
		return fail(f, ExitCommandError, ErrCodeUnsupported, "history unavailable",
			errors.New("pull ledger requires the sqlite backend"))
	}

	st, err := store.Open(cfg.SqlitePath)
	if err != nil {
		return fail(f, ExitCommandError, ErrCodeBackend, "failed to open database", err)
	}
	defer st.Close()

	entries, err := st.PullHistory(commandContext(cmd), kind, opts.Limit)
	if err != nil {
		return fail(f, ExitFailure, ErrCodeBackend, "failed to read history", err)
	}
	return f.Success(History(entries))
}
