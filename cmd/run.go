package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/baberabb/cce-go/internal/disposition"
	"github.com/baberabb/cce-go/internal/extract"
	"github.com/baberabb/cce-go/internal/pipeline"
	"github.com/baberabb/cce-go/internal/report"
)

func newRunCmd() *cobra.Command {
	var registrations string
	var renewals string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Match registrations against renewals and sort them into cohorts",
		Long: `Runs the full clearance pipeline: load both record sets, find the renewal
matches for every registration, classify each registration into a disposition
cohort, and write the cohort files, the final renewal-status buckets, and a
run summary into the output directory.`,
		Example: `  cce run --registrations registrations.ndjson --renewals renewals.ndjson --output ./out`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := pipeline.Run(pipeline.Config{
				RegistrationsPath: registrations,
				RenewalsPath:      renewals,
				OutputDir:         outputDir,
			})
			if err != nil {
				return err
			}

			inRange, err := extract.LoadRegistrations(
				filepath.Join(outputDir, string(disposition.CohortInRange)+".ndjson"))
			if err != nil {
				return err
			}
			bucketCounts, err := report.WriteFinalBuckets(outputDir, inRange.All())
			if err != nil {
				return err
			}

			report.RenderSummary(os.Stdout, result, bucketCounts)
			return report.WriteSummaryYAML(filepath.Join(outputDir, "summary.yaml"), result, bucketCounts)
		},
	}

	cmd.Flags().StringVar(&registrations, "registrations", "registrations.ndjson", "Registration record file")
	cmd.Flags().StringVar(&renewals, "renewals", "renewals.ndjson", "Renewal record file")
	cmd.Flags().StringVar(&outputDir, "output", "./output", "Output directory for cohort and bucket files")

	return cmd
}
