package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/baberabb/cce-go/internal/cce"
)

const promptTemplate = `The following text is a transcribed copyright renewal
record for a book. Extract the structured fields and respond with a single
JSON object using exactly these keys:

  "author_names": list of author names
  "title": the title of the book
  "registration_numbers": list of original registration numbers
  "registration_dates": list of original registration dates, ISO format
  "renewal_numbers": list of renewal numbers (they start with R)
  "claimants": list of renewal claimants

Use an empty list or empty string for anything the record does not state.
Respond with the JSON object only, no commentary.

Record:
%s`

// Fields is the structured output expected back from the provider.
type Fields struct {
	AuthorNames         []string `json:"author_names"`
	Title               string   `json:"title"`
	RegistrationNumbers []string `json:"registration_numbers"`
	RegistrationDates   []string `json:"registration_dates"`
	RenewalNumbers      []string `json:"renewal_numbers"`
	Claimants           []string `json:"claimants"`
}

// Enricher runs renewal transcriptions through a provider with bounded
// concurrency.
type Enricher struct {
	provider    Provider
	model       string
	temperature float64
	concurrency int
}

// New builds an enricher. concurrency values below 1 are clamped to 1.
func New(provider Provider, model string, temperature float64, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		provider:    provider,
		model:       model,
		temperature: temperature,
		concurrency: concurrency,
	}
}

// NeedsEnrichment reports whether a renewal is worth sending to the
// provider: it has a transcription but the regex pass left structured
// fields empty.
func NeedsEnrichment(r *cce.Renewal) bool {
	if r.FullText == "" {
		return false
	}
	return len(r.Regnums) == 0 || len(r.RegDates) == 0 || r.Title == "" || r.Author == ""
}

// EnrichAll fills missing fields on every renewal that needs it, in place.
// Provider failures are logged and leave the renewal untouched. It returns
// the number of renewals updated.
func (e *Enricher) EnrichAll(ctx context.Context, renewals []*cce.Renewal) int {
	var pending []*cce.Renewal
	for _, r := range renewals {
		if NeedsEnrichment(r) {
			pending = append(pending, r)
		}
	}
	if len(pending) == 0 {
		return 0
	}
	slog.Info("Enriching renewal records", "pending", len(pending), "concurrency", e.concurrency)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, e.concurrency)
	var mu sync.Mutex
	updated := 0

	for i, r := range pending {
		wg.Add(1)
		go func(idx int, r *cce.Renewal) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Debug("Enriching record", "uuid", r.ID, "progress", fmt.Sprintf("%d/%d", idx+1, len(pending)))
			if err := e.enrichOne(ctx, r); err != nil {
				slog.Warn("failed to enrich renewal", "uuid", r.ID, "error", err)
				return
			}
			mu.Lock()
			updated++
			mu.Unlock()
		}(i, r)
	}
	wg.Wait()

	slog.Info("Enrichment finished", "updated", updated, "failed", len(pending)-updated)
	return updated
}

func (e *Enricher) enrichOne(ctx context.Context, r *cce.Renewal) error {
	raw, err := e.provider.Complete(ctx, Request{
		Model:       e.model,
		Temperature: e.temperature,
		Prompt:      fmt.Sprintf(promptTemplate, r.FullText),
	})
	if err != nil {
		return err
	}
	fields, err := ParseFields(raw)
	if err != nil {
		return err
	}
	Apply(r, fields)
	return nil
}

// ParseFields decodes a provider response, tolerating a Markdown code
// fence around the JSON object.
func ParseFields(raw string) (*Fields, error) {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
		cleaned = strings.TrimSpace(cleaned)
	}
	var fields Fields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}
	return &fields, nil
}

// Apply copies extracted fields onto a renewal, filling only what the
// regex pass left empty. Existing structured data always wins over the
// provider's reading.
func Apply(r *cce.Renewal, f *Fields) {
	if r.Title == "" {
		r.Title = strings.TrimSpace(f.Title)
	}
	if r.Author == "" && len(f.AuthorNames) > 0 {
		r.Author = strings.Join(trimAll(f.AuthorNames), "; ")
	}
	if len(r.Regnums) == 0 {
		r.Regnums = trimAll(f.RegistrationNumbers)
	}
	if len(r.RegDates) == 0 {
		r.RegDates = trimAll(f.RegistrationDates)
	}
	if r.RenewalID == "" && len(f.RenewalNumbers) > 0 {
		r.RenewalID = strings.TrimSpace(f.RenewalNumbers[0])
	}
	if len(r.Claimants) == 0 {
		r.Claimants = trimAll(f.Claimants)
	}
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}
