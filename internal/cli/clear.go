package cli

import (
	"github.com/spf13/cobra"
)

// ClearResult reports a cleared store.
type ClearResult struct {
	Cleared bool `json:"cleared"`
}

func (ClearResult) String() string { return "store cleared\n" }

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discard every stored record",
		Long: `Conclude open sessions, discard every stored record and reset all
pull timestamps to now. The empty snapshot is written immediately.

Example:
  atomstore clear --config atomstore.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			a, err := openApp(commandContext(cmd), rootOpts, cmd, f)
			if err != nil {
				return err
			}
			defer closeApp(a)

			if err := a.collector.Clear(); err != nil {
				return fail(f, ExitFailure, ErrCodeWrite, "failed to write snapshot", err)
			}
			return f.Success(ClearResult{Cleared: true})
		},
	}
}
