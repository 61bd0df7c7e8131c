// Package dates resolves the raw date strings found on registration and
// renewal records. The source material mixes ISO dates, compact forms like
// "19Jun58", and OCR damage, so parsing is layered: full-string attempts,
// a year-month fallback, a two-digit-year correction, and a sanity window
// that rejects anything outside the plausible historical range.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// MinYear and MaxYear bound the plausible window. A parse outside the
	// window is almost certainly a misread, not a real date.
	MinYear = 1900
	MaxYear = 1995
)

// Layouts attempted against the full raw string, in order.
var fullLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	"2Jan06",
	"02Jan06",
	"2Jan2006",
	"02Jan2006",
	"January 2, 2006",
	"Jan. 2, 2006",
	"2006-01",
	"2006",
}

// Layouts attempted against the first seven characters when the eighth is a
// separator (e.g. "1958-06-19" cut down to "1958-06").
var yearMonthLayouts = []string{
	"2006-01",
	"2006/01",
}

// Parse resolves raw into a calendar date. On total failure it appends a
// diagnostic to warnings (when non-nil) and returns the zero time with
// ok=false.
func Parse(raw string, warnings *[]string) (time.Time, bool) {
	attempts := []struct {
		value   string
		layouts []string
	}{
		{raw, fullLayouts},
	}
	if len(raw) > 7 && raw[7] == '-' {
		attempts = append(attempts, struct {
			value   string
			layouts []string
		}{raw[:7], yearMonthLayouts})
	}

	for _, attempt := range attempts {
		for _, layout := range attempt.layouts {
			parsed, err := time.Parse(layout, attempt.value)
			if err != nil {
				continue
			}
			if parsed.Year() > 2000 && (len(raw) == 6 || len(raw) == 7) {
				// A very common format is "19Jun58", which the two-digit
				// year rules read as 2058. Subtract 100 years.
				parsed = parsed.AddDate(-100, 0, 0)
			}
			if parsed.Year() < MinYear || parsed.Year() > MaxYear {
				continue
			}
			return parsed, true
		}
	}

	if warnings != nil {
		*warnings = append(*warnings, fmt.Sprintf("Could not parse date %s", raw))
	}
	return time.Time{}, false
}

// ISO formats a resolved date the way the rest of the pipeline stores it.
func ISO(t time.Time) string {
	return t.Format("2006-01-02")
}

var yearPattern = regexp.MustCompile(`\b(1[89]\d\d)\b`)

// LooseYear pulls a plausible four-digit year out of a raw date string
// without requiring the whole string to parse. Used for year-only matching.
func LooseYear(raw string) (int, bool) {
	if t, ok := Parse(raw, nil); ok {
		return t.Year(), true
	}
	if m := yearPattern.FindString(raw); m != "" {
		year, err := strconv.Atoi(m)
		if err == nil {
			return year, true
		}
	}
	return 0, false
}
