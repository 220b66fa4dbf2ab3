package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/jirascope/pkg/config"
)

// configCommand creates the config command, which prints the effective
// configuration as TOML.
func (c *CLI) configCommand() *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as TOML, including the full style
tables. The output is a valid config file and can be used as a starting point.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if !defaults {
				loaded, err := c.loadConfig()
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.Styles = cfg.Rules()
			return cfg.Encode(os.Stdout)
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "ignore the config file and print built-in defaults")
	return cmd
}
