// Package cce defines the structured registration and renewal records the
// clearance engine operates on, along with the record-level rules (foreign
// origin, previous publication, cross-reference extraction) that read a
// single record's fields.
package cce

import (
	"fmt"
	"sort"
	"time"

	"github.com/baberabb/cce-go/internal/normalize"
)

// Registration is one bibliographic copyright entry.
//
// A registration may own dependent child entries; parent and children are
// referenced by identifier and resolved through an Arena, never embedded.
type Registration struct {
	ID                   string       `json:"uuid,omitempty"`
	Regnums              []string     `json:"regnums,omitempty"`
	RegDates             []*Date      `json:"reg_dates,omitempty"`
	Title                string       `json:"title,omitempty"`
	Authors              []string     `json:"authors,omitempty"`
	Notes                []string     `json:"notes,omitempty"`
	Publishers           []*Publisher `json:"publishers,omitempty"`
	PreviousRegnums      []string     `json:"previous_regnums,omitempty"`
	PreviousPublications []string     `json:"previous_publications,omitempty"`
	NewMatterClaimed     []string     `json:"new_matter_claimed,omitempty"`

	ParentID string   `json:"parent,omitempty"`
	ChildIDs []string `json:"children,omitempty"`

	// Xrefs are synthesized stub registrations recovered from crossRef
	// markup: title/author fragments pointing at this record. They never
	// enter classification themselves.
	Xrefs []*Registration `json:"xrefs,omitempty"`

	Warnings    []string `json:"warnings,omitempty"`
	Error       string   `json:"error,omitempty"`
	Disposition string   `json:"disposition,omitempty"`

	// Renewals holds the match engine's output for this registration.
	Renewals []*RenewalMatch `json:"renewals,omitempty"`

	// ForeignXref is the summary of the foreign registration that mentioned
	// this record's number, attached for manual audit.
	ForeignXref *Registration `json:"foreign_xref,omitempty"`

	// Memoized foreign verdict; the rule cascade appends warnings, so it
	// must run at most once per record.
	foreign *bool
}

// RenewalMatch pairs a matched renewal with the confidence label the match
// engine assigned it.
type RenewalMatch struct {
	Renewal *Renewal `json:"renewal,omitempty"`
	Label   string   `json:"label"`
}

// NewRegistration constructs a registration, dropping empty registration
// numbers. Callers never see a record with an empty regnum entry.
func NewRegistration(id string, regnums []string) *Registration {
	r := &Registration{ID: id}
	for _, n := range regnums {
		if n != "" {
			r.Regnums = append(r.Regnums, n)
		}
	}
	return r
}

// Warn appends a warning to the record's audit trail.
func (r *Registration) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// RenewalKey is the normalized (title, author) pair used to look a
// registration up in the renewal index.
type RenewalKey struct {
	Title  string
	Author string
}

// KeyFor builds a renewal key from raw title and author strings. Token
// order is discarded so reorderings produce the same key.
func KeyFor(title, author string) RenewalKey {
	return RenewalKey{
		Title:  normalize.SortedWords(title),
		Author: normalize.SortedWords(author),
	}
}

// RenewalKey returns the record's lookup key, built from its title and
// first author.
func (r *Registration) RenewalKey() RenewalKey {
	author := ""
	if len(r.Authors) > 0 {
		author = r.Authors[0]
	}
	return KeyFor(r.Title, author)
}

// RegistrationDates resolves and returns the record's registration dates,
// earliest first. Unparseable dates are recorded as warnings and skipped.
func (r *Registration) RegistrationDates() []time.Time {
	var out []time.Time
	for _, d := range r.RegDates {
		if parsed, ok := d.Resolve(&r.Warnings); ok {
			out = append(out, parsed)
		}
	}
	sortDates(out)
	return out
}

// PublicationDates resolves and returns the publication dates found across
// the record's publisher blocks, earliest first.
func (r *Registration) PublicationDates() []time.Time {
	var out []time.Time
	for _, p := range r.Publishers {
		for _, d := range p.Dates {
			if parsed, ok := d.Resolve(&r.Warnings); ok {
				out = append(out, parsed)
			}
		}
	}
	sortDates(out)
	return out
}

// BestGuessDate prefers the earliest resolvable registration date, falling
// back to the earliest publication date. ok is false when neither exists.
func (r *Registration) BestGuessDate() (time.Time, bool) {
	if reg := r.RegistrationDates(); len(reg) > 0 {
		return reg[0], true
	}
	if pub := r.PublicationDates(); len(pub) > 0 {
		return pub[0], true
	}
	return time.Time{}, false
}

// Places yields every place mentioned in the context of where this book
// was published.
func (r *Registration) Places() []string {
	var out []string
	for _, p := range r.Publishers {
		out = append(out, p.Places...)
	}
	return out
}

// AuthorMatch reports whether any of the record's authors matches the
// given author string by word overlap.
func (r *Registration) AuthorMatch(other string) bool {
	if other == "" {
		return false
	}
	for _, a := range r.Authors {
		if normalize.Match(a, other) {
			return true
		}
	}
	return false
}

// TitleMatch reports whether the record's title matches the given title by
// word overlap.
func (r *Registration) TitleMatch(other string) bool {
	return normalize.Match(r.Title, other)
}

func sortDates(ts []time.Time) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}
