package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/baberabb/cce-go/internal/extract"
)

func newParseRegistrationsCmd() *cobra.Command {
	var inputDir string
	var output string

	cmd := &cobra.Command{
		Use:   "parse-registrations",
		Short: "Parse registration markup into a structured record file",
		Long: `Walks a directory of copyright registration markup and writes one JSON
record per line. Child entries keep a reference to their parent so dependent
registrations can be classified together later.`,
		Example: `  # Parse the 1930-1963 registration volumes
  cce parse-registrations --input ./registrations/xml --output registrations.ndjson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := extract.NewRegistrationParser()
			if err := parser.ProcessDirectory(inputDir); err != nil {
				return err
			}
			parser.AttachCrossRefs()
			arena := parser.Arena()
			if err := extract.SaveRegistrations(output, arena.All()); err != nil {
				return err
			}
			slog.Info("wrote registrations", "path", output, "records", arena.Len())
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "Directory of registration markup files (required)")
	cmd.Flags().StringVar(&output, "output", "registrations.ndjson", "Output record file")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func newParseRenewalsCmd() *cobra.Command {
	var inputDir string
	var output string

	cmd := &cobra.Command{
		Use:   "parse-renewals",
		Short: "Parse renewal spreadsheets into a structured record file",
		Long: `Reads tab-delimited renewal spreadsheets and writes one JSON record per
line. Rows missing structured registration numbers or dates have them
recovered from the full-text transcription where possible.`,
		Example: `  # Parse every renewal spreadsheet in a directory
  cce parse-renewals --input ./renewals --output renewals.ndjson`,
		RunE: func(cmd *cobra.Command, args []string) error {
			renewals, err := extract.ParseRenewalDirectory(inputDir)
			if err != nil {
				return err
			}
			if len(renewals) == 0 {
				return fmt.Errorf("no renewal records found under %s", inputDir)
			}
			if err := extract.SaveRenewals(output, renewals); err != nil {
				return err
			}
			slog.Info("wrote renewals", "path", output, "records", len(renewals))
			return nil
		},
	}

	cmd.Flags().StringVar(&inputDir, "input", "", "Directory of .tsv renewal spreadsheets (required)")
	cmd.Flags().StringVar(&output, "output", "renewals.ndjson", "Output record file")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}
