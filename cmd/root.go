package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cce",
		Short: "Copyright renewal clearance for historical registration records",
		Long: `cce matches book copyright registrations against renewal records and
classifies each registration by its likely renewal status.

The pipeline parses registration markup and renewal spreadsheets, matches the
two record sets, sorts every registration into a disposition cohort, and
exports the results for analysis.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	// Add subcommands
	cmd.AddCommand(newParseRegistrationsCmd())
	cmd.AddCommand(newParseRenewalsCmd())
	cmd.AddCommand(newEnrichCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newExportCmd())
	cmd.AddCommand(newFetchTextsCmd())
	cmd.AddCommand(newReportCmd())

	return cmd
}
