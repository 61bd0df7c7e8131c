package pipeline

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/disposition"
	"github.com/baberabb/cce-go/internal/extract"
	"github.com/baberabb/cce-go/internal/match"
)

var clock = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func writeFixtures(t *testing.T, dir string) (regPath, renPath string) {
	t.Helper()

	renewed := cce.NewRegistration("reg-renewed", []string{"A11111"})
	renewed.Title = "The Long Valley"
	renewed.Authors = []string{"John Steinbeck"}
	renewed.RegDates = []*cce.Date{{Raw: "1938-09-19"}}

	foreign := cce.NewRegistration("reg-foreign", []string{"AF1000"})
	foreign.Title = "Printed In Paris"
	foreign.Notes = []string{"For the complete work see 19Sep38, A22222."}

	mentioned := cce.NewRegistration("reg-mentioned", []string{"A22222"})
	mentioned.Title = "Mentioned Abroad"
	mentioned.RegDates = []*cce.Date{{Raw: "1938-09-19"}}

	late := cce.NewRegistration("reg-late", []string{"A33333"})
	late.Title = "A Very Recent Book"
	late.RegDates = []*cce.Date{{Raw: "1970-01-01"}}

	regPath = filepath.Join(dir, "registrations.ndjson")
	regs := []*cce.Registration{renewed, foreign, mentioned, late}
	if err := extract.SaveRegistrations(regPath, regs); err != nil {
		t.Fatal(err)
	}

	renPath = filepath.Join(dir, "renewals.ndjson")
	renewals := []*cce.Renewal{
		{ID: "ren-claimed", Regnums: []string{"A11111"}, RegDates: []string{"1938-09-19"}, Title: "The Long Valley"},
		{ID: "ren-orphan", Regnums: []string{"Z99999"}, Title: "Nobody Registered This"},
	}
	if err := extract.SaveRenewals(renPath, renewals); err != nil {
		t.Fatal(err)
	}
	return regPath, renPath
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	regPath, renPath := writeFixtures(t, dir)
	out := filepath.Join(dir, "out")

	result, err := Run(Config{
		RegistrationsPath: regPath,
		RenewalsPath:      renPath,
		OutputDir:         out,
		Now:               clock,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.RunID == "" {
		t.Error("missing run id")
	}
	if result.CutoffYear != 1929 {
		t.Errorf("cutoff year = %d", result.CutoffYear)
	}
	if result.Registrations != 4 || result.Renewals != 2 {
		t.Errorf("counts = %d registrations, %d renewals", result.Registrations, result.Renewals)
	}
	wantCohorts := map[disposition.Cohort]int{
		disposition.CohortInRange: 1,
		disposition.CohortForeign: 2,
		disposition.CohortTooNew:  1,
	}
	for cohort, want := range wantCohorts {
		if got := result.Cohorts[cohort]; got != want {
			t.Errorf("cohort %s = %d, want %d", cohort, got, want)
		}
	}
	if result.MatchedRenewals != 1 || result.UnmatchedRenewals != 1 {
		t.Errorf("renewal split = %d/%d", result.MatchedRenewals, result.UnmatchedRenewals)
	}

	inRange, err := extract.LoadRegistrations(filepath.Join(out, "in_range.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	reg, ok := inRange.Get("reg-renewed")
	if !ok {
		t.Fatal("renewed registration missing from in-range cohort")
	}
	if reg.Disposition != match.LabelDateMatch {
		t.Errorf("disposition = %q", reg.Disposition)
	}

	foreignCohort, err := extract.LoadRegistrations(filepath.Join(out, "foreign.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	mentioned, ok := foreignCohort.Get("reg-mentioned")
	if !ok {
		t.Fatal("cross-referenced registration missing from foreign cohort")
	}
	if !strings.Contains(mentioned.Disposition, "Possible foreign publication") {
		t.Errorf("disposition = %q", mentioned.Disposition)
	}
	if mentioned.ForeignXref == nil {
		t.Error("missing attached foreign cross-reference")
	}

	unmatched, err := extract.LoadRenewals(filepath.Join(out, "renewals_unmatched.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	if len(unmatched) != 1 || unmatched[0].ID != "ren-orphan" {
		t.Errorf("unmatched renewals = %+v", unmatched)
	}
}

func TestRunRefusesHeldOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	regPath, renPath := writeFixtures(t, dir)
	out := filepath.Join(dir, "out")

	cfg := Config{RegistrationsPath: regPath, RenewalsPath: renPath, OutputDir: out, Now: clock}
	if _, err := Run(cfg); err != nil {
		t.Fatalf("first run: %v", err)
	}

	lock := flock.New(filepath.Join(out, ".run.lock"))
	held, err := lock.TryLock()
	if err != nil || !held {
		t.Fatalf("could not take lock for test: held=%v err=%v", held, err)
	}
	defer lock.Unlock()

	if _, err := Run(cfg); err != ErrAlreadyRunning {
		t.Errorf("err = %v, want ErrAlreadyRunning", err)
	}
}
