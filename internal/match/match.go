// Package match finds renewal candidates for a registration and grades
// them. Candidate retrieval runs through an ordered list of lookup
// strategies; within a non-empty candidate set an ordered list of tie-break
// rules assigns each candidate a confidence label. Both cascades are
// first-class lists so their priority order is visible and testable.
package match

import (
	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/dates"
	"github.com/baberabb/cce-go/internal/index"
)

// Confidence labels. The leading word (Renewed / Probably / Possibly / Not)
// drives the final bucket sort, so it is part of the contract.
const (
	LabelDateMatch  = "Renewed. (Date match.)"
	LabelYearMatch  = "Probably renewed. (Year match.)"
	LabelAuthor     = "Probably renewed. (Author match.)"
	LabelTitle      = "Probably renewed. (Title match.)"
	LabelIndistinct = "Possibly renewed, but none of these renewals seem like a good match."
	LabelKeyOnly    = "Possibly renewed, based solely on title/author match."
	LabelTitleOnly  = "Possibly renewed, based solely on title match."
	LabelNotRenewed = "Not renewed."
)

// lookup is one candidate-retrieval strategy. It returns the candidates it
// found and whether the engine should keep the registration's own tie-break
// labels (rank=true) or stamp every candidate with the strategy's fixed
// lower-confidence label.
type lookup struct {
	name  string
	rank  bool
	label string
	find  func(e *Engine, r *cce.Registration) []*cce.Renewal
}

// tieBreak is one ranking rule. Candidates are removed from further
// consideration once they match at an earlier rule.
type tieBreak struct {
	name    string
	label   string
	matches func(r *cce.Registration, ren *cce.Renewal) bool
}

// Engine matches registrations against an immutable renewal index. The
// used-renewals set is the engine's only mutable state.
type Engine struct {
	idx  *index.Index
	used *UsedSet
}

// NewEngine returns an engine over a fully built index.
func NewEngine(idx *index.Index) *Engine {
	return &Engine{idx: idx, used: NewUsedSet()}
}

// Used exposes the set of renewals claimed by some match, so that a later
// reconciliation pass can report the renewals never claimed by any
// registration.
func (e *Engine) Used() *UsedSet {
	return e.used
}

// The lookup cascade: each strategy is attempted only when the previous
// one produced no candidates.
var lookups = []lookup{
	{
		name: "registration number",
		rank: true,
		find: func(e *Engine, r *cce.Registration) []*cce.Renewal {
			var out []*cce.Renewal
			for _, number := range r.Regnums {
				out = append(out, e.idx.ByRegnum(number)...)
			}
			return out
		},
	},
	{
		name:  "title/author key",
		label: LabelKeyOnly,
		find: func(e *Engine, r *cce.Registration) []*cce.Renewal {
			return e.idx.ByKey(r.RenewalKey())
		},
	},
	{
		name:  "cross-reference merge",
		label: LabelKeyOnly,
		find: func(e *Engine, r *cce.Registration) []*cce.Renewal {
			if len(r.Xrefs) == 0 {
				return nil
			}
			mergeXref(r)
			return e.idx.ByKey(r.RenewalKey())
		},
	},
	{
		name:  "title alone",
		label: LabelTitleOnly,
		find: func(e *Engine, r *cce.Registration) []*cce.Renewal {
			return e.idx.ByTitle(r.Title)
		},
	},
}

// The tie-break cascade, strongest first: date > year > author > title.
var tieBreaks = []tieBreak{
	{
		name:    "date",
		label:   LabelDateMatch,
		matches: dateMatch,
	},
	{
		name:    "year",
		label:   LabelYearMatch,
		matches: yearMatch,
	},
	{
		name:  "author",
		label: LabelAuthor,
		matches: func(r *cce.Registration, ren *cce.Renewal) bool {
			return r.AuthorMatch(ren.Author)
		},
	},
	{
		name:  "title",
		label: LabelTitle,
		matches: func(r *cce.Registration, ren *cce.Renewal) bool {
			return r.TitleMatch(ren.Title)
		},
	},
}

// FindMatches runs the full cascade for one registration. The result is
// never empty: with no candidates at all it is a single absent-match
// sentinel labeled not renewed. Every matched renewal is recorded in the
// used set.
func (e *Engine) FindMatches(r *cce.Registration) []*cce.RenewalMatch {
	for _, strategy := range lookups {
		candidates := strategy.find(e, r)
		if len(candidates) == 0 {
			continue
		}
		results := e.rank(r, candidates)
		if !strategy.rank {
			// A match found without a number lookup caps out at the
			// strategy's own low-confidence label, whatever the ranking
			// said; ranking still fixes the candidate order.
			for _, m := range results {
				m.Label = strategy.label
			}
		}
		for _, m := range results {
			e.used.Add(m.Renewal)
		}
		return results
	}
	return []*cce.RenewalMatch{{Label: LabelNotRenewed}}
}

// rank assigns each candidate the label of the first tie-break rule it
// satisfies. Candidates matching no rule remain, collectively, under the
// single low-confidence indistinct label.
func (e *Engine) rank(r *cce.Registration, candidates []*cce.Renewal) []*cce.RenewalMatch {
	var out []*cce.RenewalMatch
	remaining := candidates
	for _, rule := range tieBreaks {
		if len(remaining) == 0 {
			break
		}
		var next []*cce.Renewal
		for _, candidate := range remaining {
			if rule.matches(r, candidate) {
				out = append(out, &cce.RenewalMatch{Renewal: candidate, Label: rule.label})
			} else {
				next = append(next, candidate)
			}
		}
		remaining = next
	}
	for _, candidate := range remaining {
		out = append(out, &cce.RenewalMatch{Renewal: candidate, Label: LabelIndistinct})
	}
	return out
}

func dateMatch(r *cce.Registration, ren *cce.Renewal) bool {
	resolved := r.RegistrationDates()
	if len(resolved) == 0 {
		return false
	}
	known := make(map[string]struct{}, len(resolved))
	for _, t := range resolved {
		known[dates.ISO(t)] = struct{}{}
	}
	for _, raw := range ren.RegDates {
		if _, ok := known[raw]; ok {
			return true
		}
	}
	return false
}

func yearMatch(r *cce.Registration, ren *cce.Renewal) bool {
	years := make(map[int]struct{})
	for _, t := range r.RegistrationDates() {
		years[t.Year()] = struct{}{}
	}
	if len(years) == 0 {
		return false
	}
	for _, raw := range ren.RegDates {
		if year, ok := dates.LooseYear(raw); ok {
			if _, hit := years[year]; hit {
				return true
			}
		}
	}
	return false
}

// mergeXref fills the registration's missing title and authors from its
// first cross-reference stub carrying them, then notes the merge so the
// match can be audited.
func mergeXref(r *cce.Registration) {
	merged := false
	for _, xref := range r.Xrefs {
		if r.Title == "" && xref.Title != "" {
			r.Title = xref.Title
			merged = true
		}
		if len(r.Authors) == 0 && len(xref.Authors) > 0 {
			r.Authors = append(r.Authors, xref.Authors...)
			merged = true
		}
	}
	if merged {
		r.Warn("Title/author merged from a cross-reference record for matching.")
	}
}
