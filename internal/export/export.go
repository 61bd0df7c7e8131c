// Package export flattens the run's nested records into tabular Parquet
// files for downstream analysis.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/dates"
	"github.com/baberabb/cce-go/internal/regnum"
)

// fieldSeparator joins multi-valued fields into one column.
const fieldSeparator = "|"

// RegistrationRow is one flattened registration. Multi-valued fields are
// pipe-joined.
type RegistrationRow struct {
	ID           string `parquet:"uuid"`
	Regnums      string `parquet:"regnums"`
	RegDates     string `parquet:"reg_dates"`
	Title        string `parquet:"title"`
	Authors      string `parquet:"authors"`
	Claimants    string `parquet:"claimants"`
	Disposition  string `parquet:"disposition"`
	Confidence   string `parquet:"confidence"`
	RenewalIDs   string `parquet:"renewal_ids"`
	RenewalDates string `parquet:"renewal_dates"`
	Parent       string `parquet:"parent"`
}

// RenewalRow is one unclaimed renewal, expanded to a single registration
// number per row.
type RenewalRow struct {
	ID          string `parquet:"uuid"`
	Regnum      string `parquet:"regnum"`
	RegDate     string `parquet:"reg_date"`
	RenewalID   string `parquet:"renewal_id"`
	RenewalDate string `parquet:"renewal_date"`
	Author      string `parquet:"author"`
	Title       string `parquet:"title"`
	Claimants   string `parquet:"claimants"`
}

// Confidence grades derived from the leading words of a disposition.
const (
	ConfidenceDefinitely = "definitely"
	ConfidenceProbably   = "probably"
	ConfidencePossibly   = "possibly"
	ConfidenceNot        = "not"
)

func confidenceFor(disposition string) string {
	switch {
	case strings.HasPrefix(disposition, "Renewed"):
		return ConfidenceDefinitely
	case strings.HasPrefix(disposition, "Probably"):
		return ConfidenceProbably
	case strings.HasPrefix(disposition, "Possibly"):
		return ConfidencePossibly
	default:
		return ConfidenceNot
	}
}

// FlattenRegistrations turns registrations into rows. A child entry with no
// title or authors of its own inherits them from its parent, and the
// parent's registration numbers and dates are merged in so the row stands
// alone.
func FlattenRegistrations(regs []*cce.Registration, arena *cce.Arena) []RegistrationRow {
	rows := make([]RegistrationRow, 0, len(regs))
	for _, r := range regs {
		row := RegistrationRow{
			ID:          r.ID,
			Title:       r.Title,
			Authors:     strings.Join(r.Authors, fieldSeparator),
			Disposition: r.Disposition,
			Confidence:  confidenceFor(r.Disposition),
			Parent:      r.ParentID,
		}

		regnums := append([]string(nil), r.Regnums...)
		regDates := rawDates(r.RegDates)
		if parent := arena.Parent(r); parent != nil {
			if row.Title == "" {
				row.Title = parent.Title
			}
			if row.Authors == "" {
				row.Authors = strings.Join(parent.Authors, fieldSeparator)
			}
			regnums = mergeUnique(regnums, parent.Regnums)
			regDates = mergeUnique(regDates, rawDates(parent.RegDates))
		}
		row.Regnums = strings.Join(regnums, fieldSeparator)
		row.RegDates = strings.Join(regDates, fieldSeparator)

		var claimants []string
		for _, pub := range r.Publishers {
			claimants = append(claimants, pub.Claimants...)
		}
		row.Claimants = strings.Join(claimants, fieldSeparator)

		var renewalIDs, renewalDates []string
		for _, m := range r.Renewals {
			if m.Renewal == nil {
				continue
			}
			if m.Renewal.RenewalID != "" {
				renewalIDs = append(renewalIDs, m.Renewal.RenewalID)
			}
			if m.Renewal.RenewalDate != "" {
				renewalDates = append(renewalDates, m.Renewal.RenewalDate)
			}
		}
		row.RenewalIDs = strings.Join(renewalIDs, fieldSeparator)
		row.RenewalDates = strings.Join(renewalDates, fieldSeparator)

		rows = append(rows, row)
	}
	return rows
}

// ExpandRenewals turns unclaimed renewals into one row per registration
// number, keeping only domestic book registrations whose registration year
// falls inside [minYear, maxYear]. Rows outside the window cannot belong to
// any in-scope registration and would only add noise.
func ExpandRenewals(renewals []*cce.Renewal, minYear, maxYear int) []RenewalRow {
	var rows []RenewalRow
	for _, r := range renewals {
		regDate := ""
		if len(r.RegDates) > 0 {
			regDate = r.RegDates[0]
		}
		year, hasYear := dates.LooseYear(regDate)
		if hasYear && (year < minYear || year > maxYear) {
			continue
		}
		for _, number := range r.Regnums {
			if regnum.Classify(number) != regnum.Domestic || !strings.HasPrefix(strings.ToUpper(number), "A") {
				continue
			}
			rows = append(rows, RenewalRow{
				ID:          r.ID,
				Regnum:      regnum.StripHyphens(number),
				RegDate:     regDate,
				RenewalID:   r.RenewalID,
				RenewalDate: r.RenewalDate,
				Author:      r.Author,
				Title:       r.Title,
				Claimants:   strings.Join(r.Claimants, fieldSeparator),
			})
		}
	}
	return rows
}

// WriteRegistrations writes rows to a Parquet file.
func WriteRegistrations(path string, rows []RegistrationRow) error {
	return writeParquet(path, rows)
}

// WriteRenewals writes rows to a Parquet file.
func WriteRenewals(path string, rows []RenewalRow) error {
	return writeParquet(path, rows)
}

func writeParquet[T any](path string, rows []T) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}
	writer := parquet.NewGenericWriter[T](f)
	if _, err := writer.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	slog.Info("wrote parquet file", "path", path, "rows", len(rows))
	return nil
}

func rawDates(ds []*cce.Date) []string {
	var out []string
	for _, d := range ds {
		if d.Normalized != "" {
			out = append(out, d.Normalized)
		} else if d.Raw != "" {
			out = append(out, d.Raw)
		}
	}
	return out
}

func mergeUnique(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base))
	for _, v := range base {
		seen[v] = struct{}{}
	}
	for _, v := range extra {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			base = append(base, v)
		}
	}
	return base
}
