package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/atomstore/internal/atoms"
	"github.com/roach88/atomstore/internal/config"
)

// KindInfo describes one atom kind as configured.
type KindInfo struct {
	Kind     string `json:"kind"`
	AtomID   int32  `json:"atom_id"`
	Source   string `json:"source"` // "pulled", "stored" or "live"
	Capacity int    `json:"capacity,omitempty"`
	Cooldown string `json:"cooldown,omitempty"`
}

// KindList renders as an aligned table in text mode.
type KindList []KindInfo

func (l KindList) String() string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tATOM\tSOURCE\tCAPACITY\tCOOLDOWN")
	for _, k := range l {
		capacity, cooldown := "-", "-"
		if k.Capacity > 0 {
			capacity = fmt.Sprint(k.Capacity)
		}
		if k.Cooldown != "" {
			cooldown = k.Cooldown
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", k.Kind, k.AtomID, k.Source, capacity, cooldown)
	}
	w.Flush()
	return b.String()
}

// NewKindsCommand creates the kinds command.
func NewKindsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List atom kinds with their capacity and cooldown",
		Long: `List every atom kind known to the store.

Capacity depends on low_memory; cooldown applies to pulled kinds and
reflects the cooldown and cooldowns settings.

Example:
  atomstore kinds
  atomstore kinds --config atomstore.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts.Config)
			if err != nil {
				return fail(f, ExitCommandError, ErrCodeConfig, "failed to load config", err)
			}
			list, err := listKinds(cfg)
			if err != nil {
				return fail(f, ExitCommandError, ErrCodeConfig, "invalid cooldowns", err)
			}
			return f.Success(list)
		},
	}
}

func listKinds(cfg *config.Config) (KindList, error) {
	cooldowns, err := cfg.KindCooldowns()
	if err != nil {
		return nil, err
	}
	profile := cfg.Profile()

	var out KindList
	for _, k := range atoms.Kinds() {
		info := KindInfo{Kind: k.String(), AtomID: k.AtomID()}
		switch {
		case k.Live():
			info.Source = "live"
		case k.Drained():
			info.Source = "pulled"
			d, ok := cooldowns[k]
			if !ok {
				d = cfg.Cooldown
			}
			info.Cooldown = d.String()
		default:
			info.Source = "stored"
		}
		if k.Stored() {
			info.Capacity = profile.MaxLength(k)
		}
		out = append(out, info)
	}
	return out, nil
}
