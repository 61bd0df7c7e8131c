package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/baberabb/cce-go/internal/export"
	"github.com/baberabb/cce-go/internal/extract"
)

func newExportCmd() *cobra.Command {
	var runDir string
	var outputDir string
	var minYear int
	var maxYear int

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Flatten a finished run into Parquet files",
		Long: `Reads a run's output directory and writes two Parquet files: the
flattened registrations with their dispositions, and the unclaimed renewals
expanded to one registration number per row for reconciliation.`,
		Example: `  cce export --run ./output --output ./output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = runDir
			}

			arena, err := extract.LoadRegistrations(filepath.Join(runDir, "registrations_processed.ndjson"))
			if err != nil {
				return err
			}
			rows := export.FlattenRegistrations(arena.All(), arena)
			if err := export.WriteRegistrations(filepath.Join(outputDir, "registrations.parquet"), rows); err != nil {
				return err
			}

			unmatched, err := extract.LoadRenewals(filepath.Join(runDir, "renewals_unmatched.ndjson"))
			if err != nil {
				return err
			}
			renewalRows := export.ExpandRenewals(unmatched, minYear, maxYear)
			if err := export.WriteRenewals(filepath.Join(outputDir, "renewals_unmatched.parquet"), renewalRows); err != nil {
				return err
			}

			slog.Info("export complete", "registrations", len(rows), "unmatched_renewals", len(renewalRows))
			return nil
		},
	}

	cmd.Flags().StringVar(&runDir, "run", "./output", "Run output directory to export")
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory for Parquet files (defaults to the run directory)")
	cmd.Flags().IntVar(&minYear, "min-year", 1930, "Oldest registration year kept in the renewal export")
	cmd.Flags().IntVar(&maxYear, "max-year", 1963, "Newest registration year kept in the renewal export")

	return cmd
}
