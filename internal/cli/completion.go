package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

func newCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion <shell>",
		Short: "Generate shell completion scripts",
		Long: `Generate a completion script for assfilter and print it to stdout.

  bash:        source <(assfilter completion bash)
  zsh:         assfilter completion zsh > "${fpath[1]}/_assfilter"
  fish:        assfilter completion fish > ~/.config/fish/completions/assfilter.fish
  powershell:  assfilter completion powershell | Out-String | Invoke-Expression`,
		// Completion reads no config.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:         completionShells,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, w := cmd.Root(), cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(w, true)
			case "zsh":
				return root.GenZshCompletion(w)
			case "fish":
				return root.GenFishCompletion(w, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(w)
			default:
				return usageError(fmt.Errorf("unsupported shell %q", args[0]))
			}
		},
	}

	return cmd
}
