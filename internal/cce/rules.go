package cce

import (
	"regexp"
	"strings"

	"github.com/baberabb/cce-go/internal/gazetteer"
	"github.com/baberabb/cce-go/internal/regnum"
)

// The b/t and p/d substitutions in these patterns absorb the most common
// OCR confusions in the source material.
var (
	previouslyPublishedAbroad = regexp.MustCompile(`(?i)[pd]u[bt][.,]? abroad`)
	previouslyPublished       = regexp.MustCompile(`(?i)[pd]rev[.,]? [pd]u[bt]`)
	previouslyRegistered      = regexp.MustCompile(`(?i)[pd]rev[.,]? reg`)
	previouslySomething       = regexp.MustCompile(`(?i)[pd]rev[.,i]`)
)

// Low-confidence keywords checked as a last resort.
var foreignKeywords = []string{"abroad", "american ed.", "american edition"}

// IsForeign determines whether this registration is for a foreign work,
// based solely on the record's metadata. The rule cascade is ordered from
// strongest to weakest signal and short-circuits on the first hit; each hit
// appends an explanatory warning. The verdict is memoized so the warnings
// are emitted at most once.
func (r *Registration) IsForeign(g *gazetteer.Gazetteer) bool {
	if r.foreign != nil {
		return *r.foreign
	}
	v := r.classifyForeign(g)
	r.foreign = &v
	return v
}

func (r *Registration) classifyForeign(g *gazetteer.Gazetteer) bool {
	// Maybe the registration itself is a foreign or interim registration.
	for _, number := range r.Regnums {
		if r.regnumIsForeign(number) {
			return true
		}
	}

	// Maybe a previous registration number is.
	for _, number := range r.PreviousRegnums {
		if r.regnumIsForeign(number) {
			return true
		}
	}

	// Maybe the previous-publication information or the notes say the work
	// was previously published abroad, without a registration number.
	for _, fv := range r.textFields() {
		if previouslyPublishedAbroad.MatchString(fv.value) {
			r.Warn("%s %q indicates work was previously published abroad.", fv.field, fv.value)
			return true
		}
		if strings.Contains(fv.value, "AI.") || strings.Contains(fv.value, "AI-") {
			r.Warn("%s '%s' seems to mention an interim registration.", fv.field, fv.value)
			return true
		}
	}

	// Maybe the book was published in a foreign place.
	for _, place := range r.Places() {
		if g.IsForeign(place) {
			r.Warn("Publication place '%s' looks foreign.", place)
			return true
		}
	}

	// Maybe a previous publication mentions certain keywords. These are
	// not terribly reliable, so this test runs last.
	for _, fv := range r.textFields() {
		lower := strings.ToLower(fv.value)
		for _, keyword := range foreignKeywords {
			if strings.Contains(lower, keyword) {
				r.Warn("%s %q mentions the keyword '%s', which indicates this _may_ have originally been a foreign publication.", fv.field, fv.value, keyword)
				return true
			}
		}
	}
	return false
}

func (r *Registration) regnumIsForeign(number string) bool {
	switch regnum.Classify(number) {
	case regnum.Foreign:
		r.Warn("Regnum '%s' indicates a foreign registration.", number)
		return true
	case regnum.Interim:
		r.Warn("Regnum '%s' indicates an interim (and foreign) registration.", number)
		return true
	}
	return false
}

type fieldValue struct {
	field string
	value string
}

func (r *Registration) textFields() []fieldValue {
	out := make([]fieldValue, 0, len(r.PreviousPublications)+len(r.Notes))
	for _, v := range r.PreviousPublications {
		out = append(out, fieldValue{"Previous publication", v})
	}
	for _, v := range r.Notes {
		out = append(out, fieldValue{"Note", v})
	}
	return out
}

// PreviouslyPublished checks whether the work looks like it was previously
// published, in which case earlier registrations which may have been
// renewed must be checked manually. The three note patterns are tried in
// strict priority order; the first hit determines the warning text even
// though the verdict is the same for all three.
func (r *Registration) PreviouslyPublished() bool {
	if len(r.PreviousPublications) > 0 {
		return true
	}

	if len(r.NewMatterClaimed) > 0 {
		r.Warn("New matter claimed (%s) implies the existence of a previous publication, which must be checked manually. New matter found in this title may be out of copyright even if the previous publication was renewed.",
			strings.Join(r.NewMatterClaimed, ", "))
		return true
	}

	for _, note := range r.Notes {
		if previouslyPublished.MatchString(note) {
			r.Warn("Note (%q) seems to mention a previous publication, which must be checked manually.", note)
			return true
		}
		if previouslyRegistered.MatchString(note) {
			r.Warn("Note (%q) seems to mention a previous registration, which must be checked manually.", note)
			return true
		}
		if previouslySomething.MatchString(note) {
			r.Warn("Note (%q) seems to mention... something... happening previously, most likely a publication or registration. This must be checked manually.", note)
			return true
		}
	}
	return false
}
