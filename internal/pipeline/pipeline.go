// Package pipeline drives a full clearance run: load records, match them
// against the renewal index, classify every registration into a cohort,
// and write the cohort files plus the matched/unmatched renewal split.
package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/disposition"
	"github.com/baberabb/cce-go/internal/extract"
	"github.com/baberabb/cce-go/internal/gazetteer"
	"github.com/baberabb/cce-go/internal/index"
	"github.com/baberabb/cce-go/internal/match"
	"github.com/baberabb/cce-go/internal/regnum"
)

// ErrAlreadyRunning reports a second run pointed at an output directory
// that another process holds.
var ErrAlreadyRunning = errors.New("another run already holds this output directory")

// Config locates the inputs and output directory for one run.
type Config struct {
	RegistrationsPath string
	RenewalsPath      string
	OutputDir         string

	// Now fixes the rolling cutoff; zero means the wall clock.
	Now time.Time
}

// Result summarizes a finished run.
type Result struct {
	RunID             string                     `json:"run_id" yaml:"run_id"`
	Started           time.Time                  `json:"started" yaml:"started"`
	Elapsed           time.Duration              `json:"elapsed" yaml:"elapsed"`
	CutoffYear        int                        `json:"cutoff_year" yaml:"cutoff_year"`
	Registrations     int                        `json:"registrations" yaml:"registrations"`
	Renewals          int                        `json:"renewals" yaml:"renewals"`
	Cohorts           map[disposition.Cohort]int `json:"cohorts" yaml:"cohorts"`
	Dispositions      map[string]int             `json:"dispositions" yaml:"dispositions"`
	MatchedRenewals   int                        `json:"matched_renewals" yaml:"matched_renewals"`
	UnmatchedRenewals int                        `json:"unmatched_renewals" yaml:"unmatched_renewals"`
}

// Run executes the whole pipeline. The output directory is locked for the
// duration so two runs never interleave their cohort files.
func Run(cfg Config) (*Result, error) {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	lock := flock.New(filepath.Join(cfg.OutputDir, ".run.lock"))
	held, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !held {
		return nil, ErrAlreadyRunning
	}
	defer lock.Unlock()

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	result := &Result{
		RunID:        uuid.NewString(),
		Started:      now,
		Cohorts:      make(map[disposition.Cohort]int),
		Dispositions: make(map[string]int),
	}
	started := time.Now()
	slog.Info("starting clearance run", "run_id", result.RunID, "output", cfg.OutputDir)

	arena, err := extract.LoadRegistrations(cfg.RegistrationsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load registrations: %w", err)
	}
	renewals, err := extract.LoadRenewals(cfg.RenewalsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load renewals: %w", err)
	}
	result.Registrations = arena.Len()
	result.Renewals = len(renewals)

	gaz, err := gazetteer.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load gazetteer: %w", err)
	}

	idx := index.Build(renewals)
	engine := match.NewEngine(idx)

	slog.Info("matching registrations against renewals", "registrations", arena.Len(), "indexed_renewals", idx.Len())
	foreignXrefs := matchPhase(arena, engine, gaz)

	slog.Info("classifying registrations", "foreign_cross_references", len(foreignXrefs))
	classifier := disposition.New(gaz, foreignXrefs, now)
	result.CutoffYear = classifier.CutoffYear()
	cohorts := classifyPhase(arena, classifier, result)

	if err := writeCohorts(cfg.OutputDir, cohorts); err != nil {
		return nil, err
	}
	// The combined file keeps parent/child context together for exports
	// that need to look across cohorts.
	processed := filepath.Join(cfg.OutputDir, "registrations_processed.ndjson")
	if err := extract.SaveRegistrations(processed, arena.All()); err != nil {
		return nil, fmt.Errorf("failed to write processed registrations: %w", err)
	}
	if err := writeRenewalSplit(cfg.OutputDir, renewals, engine.Used(), result); err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(started)
	slog.Info("run finished", "run_id", result.RunID, "elapsed", result.Elapsed)
	return result, nil
}

// matchPhase attaches renewal matches to every registration and collects
// the numbers mentioned by likely-foreign registrations, keyed with
// hyphens stripped so they line up with later lookups.
func matchPhase(arena *cce.Arena, engine *match.Engine, gaz *gazetteer.Gazetteer) map[string][]*cce.Registration {
	foreignXrefs := make(map[string][]*cce.Registration)
	arena.WalkAll(func(r *cce.Registration) {
		matches := engine.FindMatches(r)
		r.Renewals = matches
		r.Disposition = matches[0].Label

		if r.IsForeign(gaz) {
			for _, xref := range r.ParseXrefs() {
				for _, number := range xref.Regnums {
					key := regnum.StripHyphens(number)
					foreignXrefs[key] = append(foreignXrefs[key], xref)
				}
			}
		}
	})
	return foreignXrefs
}

// classifyPhase assigns cohorts in arena order, so every parent is
// classified before its children, and tallies the outcome.
func classifyPhase(arena *cce.Arena, classifier *disposition.Classifier, result *Result) map[disposition.Cohort][]*cce.Registration {
	cohorts := make(map[disposition.Cohort][]*cce.Registration)
	arena.WalkAll(func(r *cce.Registration) {
		cohort := classifier.Classify(r)
		cohorts[cohort] = append(cohorts[cohort], r)
		result.Cohorts[cohort]++
		result.Dispositions[r.Disposition]++
	})
	return cohorts
}

func writeCohorts(dir string, cohorts map[disposition.Cohort][]*cce.Registration) error {
	for _, cohort := range disposition.Cohorts {
		regs := cohorts[cohort]
		path := filepath.Join(dir, string(cohort)+".ndjson")
		if err := extract.SaveRegistrations(path, regs); err != nil {
			return fmt.Errorf("failed to write %s cohort: %w", cohort, err)
		}
		slog.Info("wrote cohort", "cohort", cohort, "records", len(regs))
	}
	return nil
}

// writeRenewalSplit separates the renewals claimed by some registration
// from the ones no registration ever matched. The unclaimed file is the
// input for manual reconciliation.
func writeRenewalSplit(dir string, renewals []*cce.Renewal, used *match.UsedSet, result *Result) error {
	var matched, unmatched []*cce.Renewal
	for _, r := range renewals {
		if used.Contains(r) {
			matched = append(matched, r)
		} else {
			unmatched = append(unmatched, r)
		}
	}
	result.MatchedRenewals = len(matched)
	result.UnmatchedRenewals = len(unmatched)

	if err := extract.SaveRenewals(filepath.Join(dir, "renewals_matched.ndjson"), matched); err != nil {
		return fmt.Errorf("failed to write matched renewals: %w", err)
	}
	if err := extract.SaveRenewals(filepath.Join(dir, "renewals_unmatched.ndjson"), unmatched); err != nil {
		return fmt.Errorf("failed to write unmatched renewals: %w", err)
	}
	slog.Info("split renewals", "matched", len(matched), "unmatched", len(unmatched))
	return nil
}
