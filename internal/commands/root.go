package commands

import (
	"github.com/spf13/cobra"

	"github.com/faheemho18/monefy-pwa-clone/internal/buildinfo"
	"github.com/faheemho18/monefy-pwa-clone/internal/config"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(newEnv())
}

func newRootCommand(e *env) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "monefy",
		Short:   "Household income and expense records kept in a local store",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return e.load(cmd) },
	}

	rootCmd.PersistentFlags().StringVarP(&e.dir, "dir", "C", ".", "data directory holding "+config.FileName)
	rootCmd.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		newInitCommand(e),
		newAddCommand(e),
		newEditCommand(e),
		newDeleteCommand(e),
		newListCommand(e),
		newCategoryCommand(e),
		newSummaryCommand(e),
		newExportCommand(e),
		newImportCommand(e),
		newBackupCommand(e),
		newRestoreCommand(e),
		newImportBankCommand(e),
		newUsageCommand(e),
		newClearCommand(e),
		newLogCommand(e),
	)

	return rootCmd
}
