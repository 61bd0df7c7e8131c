package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/baberabb/cce-go/internal/enrich"
	"github.com/baberabb/cce-go/internal/extract"
)

func newEnrichCmd() *cobra.Command {
	var input string
	var output string
	var provider string
	var model string
	var temperature float64
	var concurrency int

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill missing renewal fields from transcriptions with an LLM",
		Long: `Sends renewal records whose structured fields could not be recovered by
the regex pass to an LLM provider, and merges the extracted fields back in.
Records that already have their fields are left untouched.`,
		Example: `  # Enrich with a local Ollama model
  cce enrich --input renewals.ndjson --provider ollama

  # Enrich with Gemini
  cce enrich --input renewals.ndjson --provider gemini --model gemini-1.5-flash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if model == "" {
				switch provider {
				case "ollama":
					model = os.Getenv("OLLAMA_MODEL")
					if model == "" {
						model = "mistral-small3.2:24b"
					}
				case "gemini":
					model = os.Getenv("GEMINI_MODEL")
					if model == "" {
						model = "gemini-1.5-flash"
					}
				}
			}

			p, err := enrich.NewProvider(provider)
			if err != nil {
				return err
			}
			renewals, err := extract.LoadRenewals(input)
			if err != nil {
				return err
			}

			e := enrich.New(p, model, temperature, concurrency)
			updated := e.EnrichAll(cmd.Context(), renewals)
			slog.Info("enrichment complete", "records", len(renewals), "updated", updated)

			if output == "" {
				output = input
			}
			return extract.SaveRenewals(output, renewals)
		},
	}

	cmd.Flags().StringVar(&input, "input", "renewals.ndjson", "Renewal record file to enrich")
	cmd.Flags().StringVar(&output, "output", "", "Output file (defaults to rewriting the input)")
	cmd.Flags().StringVar(&provider, "provider", "ollama", "LLM provider (ollama or gemini)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (defaults to provider's default)")
	cmd.Flags().Float64Var(&temperature, "temperature", 0, "Sampling temperature")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Concurrent provider requests")

	return cmd
}
