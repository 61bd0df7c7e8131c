package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/baberabb/cce-go/internal/report"
)

func newReportCmd() *cobra.Command {
	var runDir string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Re-render the summary tables for a finished run",
		Long: `Reads a run's summary.yaml and prints the cohort, bucket, and
disposition tallies again without re-running the pipeline.`,
		Example: `  cce report --run ./output`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, bucketCounts, err := report.LoadSummary(filepath.Join(runDir, "summary.yaml"))
			if err != nil {
				return err
			}
			report.RenderSummary(os.Stdout, result, bucketCounts)
			return nil
		},
	}

	cmd.Flags().StringVar(&runDir, "run", "./output", "Run output directory")

	return cmd
}
