package cli

import (
	"github.com/spf13/cobra"
)

// snapshotExts are the file extensions a snapshot argument may have.
var snapshotExts = []string{"json", "yaml", "yml"}

// completeSnapshot completes the optional snapshot argument of dot and
// browse with JSON and YAML files.
func completeSnapshot(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return snapshotExts, cobra.ShellCompDirectiveFilterFileExt
}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for jirascope and write it to stdout.

  $ source <(jirascope completion bash)
  $ jirascope completion zsh > "${fpath[1]}/_jirascope"
  $ jirascope completion fish > ~/.config/fish/completions/jirascope.fish
  PS> jirascope completion powershell | Out-String | Invoke-Expression

Snapshot arguments complete to .json, .yaml and .yml files.`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, out := cmd.Root(), cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
