package cce

import (
	"time"

	"github.com/baberabb/cce-go/internal/dates"
)

// Date is one raw date string from a source record, plus its normalized
// form once resolved. The raw text is always preserved for auditing.
type Date struct {
	Raw        string `json:"raw"`
	Normalized string `json:"normalized,omitempty"`
	ParseError string `json:"parse_error,omitempty"`
}

// Resolve parses the raw text, stamping the normalized form on success and
// a parse error otherwise. Failures append a diagnostic to warnings, once:
// a date that already carries its verdict is never re-parsed, so repeated
// resolution (the tie-break rules consult dates once per candidate) leaves
// the warning trail unchanged.
func (d *Date) Resolve(warnings *[]string) (time.Time, bool) {
	if d == nil || d.Raw == "" {
		return time.Time{}, false
	}
	if d.ParseError != "" {
		return time.Time{}, false
	}
	if d.Normalized != "" {
		return dates.Parse(d.Normalized, nil)
	}
	parsed, ok := dates.Parse(d.Raw, warnings)
	if !ok {
		d.ParseError = "Could not parse date."
		return time.Time{}, false
	}
	d.Normalized = dates.ISO(parsed)
	return parsed, true
}
