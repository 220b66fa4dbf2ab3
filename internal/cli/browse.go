package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/jirascope/pkg/issue"
)

// browseCommand creates the browse command, which lets the user pick one
// subgraph of a snapshot and renders only that one.
func (c *CLI) browseCommand() *cobra.Command {
	var flags batchFlags

	cmd := &cobra.Command{
		Use:               "browse [snapshot]",
		Short:             "Pick a subgraph interactively and render it",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeSnapshot,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var path string
			if len(args) == 1 {
				path = args[0]
			}

			cfg, err := c.effectiveConfig(cmd, &flags)
			if err != nil {
				return err
			}
			subgraphs, err := loadSubgraphs(ctx, cfg, path)
			if err != nil {
				return err
			}
			if len(subgraphs) == 0 {
				printInfo("Snapshot contains no subgraphs")
				return nil
			}

			final, err := tea.NewProgram(NewSubgraphListModel(subgraphs), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			m, ok := final.(SubgraphListModel)
			if !ok || m.Selected == nil {
				printInfo("Nothing selected")
				return nil
			}

			return c.renderBatch(ctx, cfg, flags.noCache, []issue.Subgraph{*m.Selected})
		},
	}

	flags.register(cmd)
	return cmd
}
