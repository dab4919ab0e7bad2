package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newQuickCmd builds the quick subcommand: a positional shortcut for the
// common lookup, with the country falling back to the configured default.
func newQuickCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quick <city> [country]",
		Short: "Quick lookup with positional arguments",
		Example: `  weather-cli quick Puchong MY
  weather-cli quick "New York" US
  weather-cli quick London          # uses defaults.country from config`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.RangeArgs(1, 2)(cmd, args); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			o.city = args[0]
			if len(args) > 1 {
				o.country = args[1]
			} else {
				cfg, _, err := setup(o)
				if err != nil {
					return err
				}
				if cfg.DefaultCountry == "" {
					return usageError{fmt.Errorf("no country given and defaults.country not configured")}
				}
				o.country = cfg.DefaultCountry
			}
			return runLookup(cmd, o)
		},
	}

	addCommonFlags(cmd, o)
	return cmd
}
