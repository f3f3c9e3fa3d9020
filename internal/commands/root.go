package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finwatch-dev/finwatch/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "finwatch",
		Short:   "Unseen-transaction notifier for Slack",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newRunCommand(),
		newAccountsCommand(),
		newBufferCommand(),
		newExportCommand(),
	)

	return rootCmd
}
