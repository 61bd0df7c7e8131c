package extract

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/regnum"
)

var (
	// Registration numbers and registration dates as they appear in
	// free-form renewal text.
	fullTextRegnum = regexp.MustCompile(`[A-QS-Z][\w-]*?\d{3,}-?\w*\d+`)
	fullTextDate   = regexp.MustCompile(`\d{1,2}[A-Z][a-z]{2}\d{2}`)
)

// headerAliases maps the column spellings seen across the renewal
// spreadsheets onto canonical names.
var headerAliases = map[string]string{
	"entry_id":     "entry_id",
	"uuid":         "entry_id",
	"oreg":         "oreg",
	"odat":         "odat",
	"id":           "id",
	"rdat":         "rdat",
	"dreg":         "rdat",
	"author":       "author",
	"auth":         "author",
	"title":        "title",
	"titl":         "title",
	"new_matter":   "new_matter",
	"full_text":    "full_text",
	"claimants":    "claimants",
	"notes":        "notes",
	"see_also_ren": "see_also_ren",
	"see_also_reg": "see_also_reg",
}

// ParseRenewalFile reads one tab-delimited renewal spreadsheet.
func ParseRenewalFile(path string) ([]*cce.Renewal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	var columns []string
	var renewals []*cce.Renewal
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if columns == nil {
			columns = make([]string, len(fields))
			for i, h := range fields {
				columns[i] = headerAliases[strings.ToLower(strings.TrimSpace(h))]
			}
			continue
		}
		row := map[string]string{}
		for i, value := range fields {
			if i < len(columns) && columns[i] != "" {
				row[columns[i]] = strings.TrimSpace(value)
			}
		}
		renewals = append(renewals, renewalFromRow(row))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return renewals, nil
}

// ParseRenewalDirectory parses every .tsv file under root.
func ParseRenewalDirectory(root string) ([]*cce.Renewal, error) {
	paths, err := filepath.Glob(filepath.Join(root, "*.tsv"))
	if err != nil {
		return nil, fmt.Errorf("failed to list renewal files: %w", err)
	}
	var all []*cce.Renewal
	for _, path := range paths {
		renewals, err := ParseRenewalFile(path)
		if err != nil {
			slog.Warn("skipping malformed renewal file", "path", path, "error", err)
			continue
		}
		all = append(all, renewals...)
	}
	slog.Info("parsed renewals", "records", len(all))
	return all, nil
}

// renewalFromRow builds a renewal from one spreadsheet row. When the
// structured regnum or date columns are empty, both are recovered from
// the full-text transcription.
func renewalFromRow(row map[string]string) *cce.Renewal {
	r := &cce.Renewal{
		ID:          row["entry_id"],
		RenewalID:   row["id"],
		RenewalDate: row["rdat"],
		Author:      row["author"],
		Title:       row["title"],
		NewMatter:   row["new_matter"],
		FullText:    row["full_text"],
		Claimants:   splitMulti(row["claimants"]),
		Notes:       row["notes"],
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if oreg := row["oreg"]; oreg != "" {
		r.Regnums = splitMulti(oreg)
	}
	if date := row["odat"]; date != "" {
		r.RegDates = splitMulti(date)
	}
	r.SeeAlsoRenewal = splitMulti(row["see_also_ren"])
	r.SeeAlsoRegistration = splitMulti(row["see_also_reg"])

	if len(r.Regnums) == 0 && r.FullText != "" {
		r.Regnums = fullTextRegnum.FindAllString(r.FullText, -1)
	}
	if len(r.RegDates) == 0 && r.FullText != "" {
		r.RegDates = datesFromFullText(r.FullText)
	}
	// A single row frequently renews a compact range like "A100-102".
	r.Regnums = regnum.ExpandRanges(r.Regnums, regnum.DefaultMaxRange)
	return r
}

// datesFromFullText recovers registration dates from a transcription.
// The final date in the text is the renewal date, not a registration
// date, so it is dropped.
func datesFromFullText(text string) []string {
	raw := fullTextDate.FindAllString(text, -1)
	if len(raw) < 2 {
		return nil
	}
	raw = raw[:len(raw)-1]
	var dates []string
	for _, r := range raw {
		if iso, ok := convertFullTextDate(r); ok {
			dates = append(dates, iso)
		}
	}
	return dates
}

// convertFullTextDate turns a ddMmmyy token into an ISO date in the
// twentieth century. Impossible dates like 31Feb are walked back a day
// at a time, matching how the transcriptions were originally cleaned.
func convertFullTextDate(raw string) (string, bool) {
	for attempt := 0; attempt < 4; attempt++ {
		parsed, err := time.Parse("2Jan06", raw)
		if err == nil {
			if parsed.Year() > 2000 {
				parsed = parsed.AddDate(-100, 0, 0)
			}
			return parsed.Format("2006-01-02"), true
		}
		day, rest, ok := splitDay(raw)
		if !ok || day <= 1 {
			return "", false
		}
		raw = fmt.Sprintf("%d%s", day-1, rest)
	}
	return "", false
}

func splitDay(raw string) (int, string, bool) {
	i := 0
	for i < len(raw) && raw[i] >= '0' && raw[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	day := 0
	for _, c := range raw[:i] {
		day = day*10 + int(c-'0')
	}
	return day, raw[i:], true
}

func splitMulti(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, "|") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
