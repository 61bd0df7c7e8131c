package cce

import (
	"regexp"

	"github.com/baberabb/cce-go/internal/dates"
	"github.com/baberabb/cce-go/internal/regnum"
)

// Cross-references to other registrations appear inside free-text notes in
// a few shapes: date then number, number then date, or a bare number.
var (
	dateAndNumberXref  = regexp.MustCompile(`([0-9]{0,2}[A-Z][a-z]{2}[0-9]{2})[;,] ?(A[A-Z]?[0-9-]+)`)
	numberAndDateXref  = regexp.MustCompile(`(A[A-Z]?[0-9-]+)[;,] ?([0-9]{0,2}[A-Z][a-z]{2}[0-9]{2})`)
	possibleNumberXref = regexp.MustCompile(`(A{1,2}[0-9-]{4,})`)
)

// ParseXrefs looks for cross-references to other registrations in the
// record's notes, yielding a synthesized stub registration for each one
// found. The stubs carry only the referenced number, an optional date, and
// the note they came from.
func (r *Registration) ParseXrefs() []*Registration {
	var out []*Registration
	for _, note := range r.Notes {
		if xref := r.xrefFromNote(note); xref != nil {
			out = append(out, xref)
		}
	}
	return out
}

func (r *Registration) xrefFromNote(note string) *Registration {
	if note == "" {
		return nil
	}

	var number, date string
	if m := dateAndNumberXref.FindStringSubmatch(note); m != nil {
		date, number = m[1], m[2]
	} else if m := numberAndDateXref.FindStringSubmatch(note); m != nil {
		number, date = m[1], m[2]
	}
	if date != "" {
		if parsed, ok := dates.Parse(date, &r.Warnings); ok {
			date = dates.ISO(parsed)
		} else {
			date = ""
		}
	}
	if number == "" {
		if m := possibleNumberXref.FindStringSubmatch(note); m != nil {
			number = m[1]
		}
	}
	if number == "" {
		return nil
	}

	stub := NewRegistration("", []string{regnum.StripHyphens(number)})
	if date != "" {
		stub.RegDates = []*Date{{Raw: date, Normalized: date}}
	}
	stub.Notes = []string{note}
	return stub
}
