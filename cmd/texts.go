package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/baberabb/cce-go/internal/texts"
)

func newFetchTextsCmd() *cobra.Command {
	var output string
	var firstYear int
	var lastYear int
	var concurrency int

	cmd := &cobra.Command{
		Use:   "fetch-texts",
		Short: "List scanned texts available on the Internet Archive",
		Long: `Scrolls the Internet Archive's bulk search endpoint for scanned texts
published in the years a clearance run covers, so cleared titles can be
paired with a readable copy. The default year range tracks the rolling
public-domain cutoff.`,
		Example: `  cce fetch-texts --output ia-texts.ndjson

  # A narrower crawl
  cce fetch-texts --first-year 1930 --last-year 1963`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if firstYear == 0 || lastYear == 0 {
				first, last := texts.YearRange(time.Now())
				if firstYear == 0 {
					firstYear = first
				}
				if lastYear == 0 {
					lastYear = last
				}
			}

			client := texts.NewClient("", concurrency)
			items := client.FetchRange(cmd.Context(), firstYear, lastYear)
			if err := texts.SaveItems(output, items); err != nil {
				return err
			}
			slog.Info("wrote text availability list", "path", output, "items", len(items))
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "ia-texts.ndjson", "Output record file")
	cmd.Flags().IntVar(&firstYear, "first-year", 0, "First publication year to crawl (default: rolling cutoff minus ten years)")
	cmd.Flags().IntVar(&lastYear, "last-year", 0, "Last publication year to crawl (default: 1973)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Concurrent year crawls")

	return cmd
}
