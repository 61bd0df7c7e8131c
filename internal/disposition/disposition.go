// Package disposition sorts classified registrations into their final,
// mutually exclusive cohorts. It runs after the match engine, once the
// foreign cross-reference table is complete, and propagates an excluded
// parent's cohort to otherwise-eligible children.
package disposition

import (
	"time"

	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/gazetteer"
	"github.com/baberabb/cce-go/internal/regnum"
)

// Cohort is one of the mutually exclusive output categories.
type Cohort string

const (
	CohortForeign             Cohort = "foreign"
	CohortNotBooksProper      Cohort = "not_books_proper"
	CohortTooOld              Cohort = "too_old"
	CohortTooNew              Cohort = "too_new"
	CohortPreviouslyPublished Cohort = "previously_published"
	CohortError               Cohort = "error"
	CohortInRange             Cohort = "in_range"
)

// Cohorts lists every cohort in a stable order for reporting.
var Cohorts = []Cohort{
	CohortInRange,
	CohortForeign,
	CohortPreviouslyPublished,
	CohortTooOld,
	CohortTooNew,
	CohortNotBooksProper,
	CohortError,
}

// UpperBoundYear is the last year whose registrations still required
// renewal; anything later is under copyright regardless.
const UpperBoundYear = 1963

// Classifier assigns cohorts. It keeps per-identifier results so a child's
// classification can consult its parent's.
type Classifier struct {
	gaz         *gazetteer.Gazetteer
	foreignXref map[string][]*cce.Registration
	cutoffYear  int
	cohortByID  map[string]Cohort
}

// New builds a classifier. foreignXrefs maps registration numbers to the
// stub records, extracted from registrations already classified foreign,
// that mention them. now fixes the rolling cutoff (current year - 95).
func New(gaz *gazetteer.Gazetteer, foreignXrefs map[string][]*cce.Registration, now time.Time) *Classifier {
	return &Classifier{
		gaz:         gaz,
		foreignXref: foreignXrefs,
		cutoffYear:  now.Year() - 95,
		cohortByID:  make(map[string]Cohort),
	}
}

// CutoffYear exposes the rolling lower bound, before which everything
// published in the US is public domain.
func (c *Classifier) CutoffYear() int {
	return c.cutoffYear
}

// Classify assigns the registration its final cohort, overwriting the
// disposition label for every cohort except in-range, which keeps the
// match engine's renewal disposition. Parents must be classified before
// their children.
func (c *Classifier) Classify(r *cce.Registration) Cohort {
	cohort := c.classify(r)

	if r.ParentID != "" {
		parentCohort, known := c.cohortByID[r.ParentID]
		// Children are in general totally independent registrations, but
		// an otherwise-eligible child frequently shares its parent's
		// disqualifying status even when its own fields don't show it.
		if known && cohort == CohortInRange && parentCohort != CohortInRange {
			r.Disposition = "Classified with parent."
			r.Warn("This registration seems okay, but it was associated with a registration which was a foreign publication, a previously published work, or out of range. To be safe, this registration will be put in the same category as its 'parent'; it should be checked manually.")
			cohort = parentCohort
		}
	}

	if r.ID != "" {
		c.cohortByID[r.ID] = cohort
	}
	return cohort
}

func (c *Classifier) classify(r *cce.Registration) Cohort {
	if r.IsForeign(c.gaz) {
		r.Disposition = "Foreign publication."
		return CohortForeign
	}

	bookProper := false
	for _, number := range r.Regnums {
		if regnum.IsBookProper(number) {
			bookProper = true
		}
		if refs, ok := c.foreignXref[regnum.StripHyphens(number)]; ok && len(refs) > 0 {
			r.Warn("Possible foreign publication -- mentioned in a registration for a likely foreign publication.")
			r.ForeignXref = refs[0]
			r.Disposition = "Possible foreign publication - check manually."
			return CohortForeign
		}
	}

	if len(r.Regnums) == 0 {
		return c.fail(r, "No registration number.")
	}
	if !bookProper {
		r.Disposition = "Not a book proper."
		return CohortNotBooksProper
	}

	best, ok := r.BestGuessDate()
	if !ok {
		return c.fail(r, "No registration or publication date.")
	}
	if best.Year() < c.cutoffYear {
		r.Disposition = "Published before cutoff year."
		return CohortTooOld
	}
	if best.Year() > UpperBoundYear {
		r.Disposition = "Published after cutoff year."
		return CohortTooNew
	}

	if r.PreviouslyPublished() {
		r.Disposition = "Has previous publications, which must be checked manually."
		return CohortPreviouslyPublished
	}

	return CohortInRange
}

func (c *Classifier) fail(r *cce.Registration, reason string) Cohort {
	r.Disposition = "Error"
	r.Error = reason
	return CohortError
}
