// Package report turns a finished run into its human-facing outputs: the
// final renewal-status buckets, a tally table, and a machine-readable
// summary file.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/disposition"
	"github.com/baberabb/cce-go/internal/extract"
	"github.com/baberabb/cce-go/internal/pipeline"
)

// bucket routes an in-range registration to a final output file based on
// the leading words of its disposition label. Order matters: the first
// matching prefix wins.
type bucket struct {
	name     string
	prefixes []string
}

var buckets = []bucket{
	{name: "renewed", prefixes: []string{"Renewed"}},
	{name: "probably-renewed", prefixes: []string{"Probably renewed"}},
	{name: "possibly-renewed", prefixes: []string{"Possibly"}},
	{name: "not-renewed", prefixes: []string{"Not renewed"}},
}

const undeterminedBucket = "undetermined"

func bucketFor(disposition string) string {
	for _, b := range buckets {
		for _, prefix := range b.prefixes {
			if strings.HasPrefix(disposition, prefix) {
				return b.name
			}
		}
	}
	return undeterminedBucket
}

// WriteFinalBuckets splits the in-range cohort into FINAL-<bucket>.ndjson
// files under dir and returns the per-bucket counts. Registrations whose
// disposition fits no bucket land in FINAL-undetermined.ndjson.
func WriteFinalBuckets(dir string, inRange []*cce.Registration) (map[string]int, error) {
	grouped := make(map[string][]*cce.Registration)
	for _, r := range inRange {
		name := bucketFor(r.Disposition)
		grouped[name] = append(grouped[name], r)
	}

	counts := make(map[string]int)
	names := make([]string, 0, len(buckets)+1)
	for _, b := range buckets {
		names = append(names, b.name)
	}
	names = append(names, undeterminedBucket)
	for _, name := range names {
		regs := grouped[name]
		if name == undeterminedBucket && len(regs) == 0 {
			continue
		}
		path := filepath.Join(dir, "FINAL-"+name+".ndjson")
		if err := extract.SaveRegistrations(path, regs); err != nil {
			return nil, fmt.Errorf("failed to write final bucket %s: %w", name, err)
		}
		counts[name] = len(regs)
		slog.Info("wrote final bucket", "bucket", name, "records", len(regs))
	}
	return counts, nil
}

// RenderSummary prints the run tallies as text tables.
func RenderSummary(w io.Writer, result *pipeline.Result, bucketCounts map[string]int) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Cohort", "Registrations"})
	for _, cohort := range disposition.Cohorts {
		t.AppendRow(table.Row{string(cohort), result.Cohorts[cohort]})
	}
	t.AppendFooter(table.Row{"total", result.Registrations})
	t.Render()

	if len(bucketCounts) > 0 {
		fb := table.NewWriter()
		fb.SetOutputMirror(w)
		fb.SetStyle(table.StyleRounded)
		fb.AppendHeader(table.Row{"Final Bucket", "Registrations"})
		for _, b := range buckets {
			if count, ok := bucketCounts[b.name]; ok {
				fb.AppendRow(table.Row{b.name, count})
			}
		}
		if count, ok := bucketCounts[undeterminedBucket]; ok {
			fb.AppendRow(table.Row{undeterminedBucket, count})
		}
		fb.Render()
	}

	d := table.NewWriter()
	d.SetOutputMirror(w)
	d.SetStyle(table.StyleRounded)
	d.AppendHeader(table.Row{"Disposition", "Registrations"})
	for _, row := range sortedDispositions(result.Dispositions) {
		d.AppendRow(table.Row{row.label, row.count})
	}
	d.Render()

	fmt.Fprintf(w, "renewal records: %d claimed by a match, %d unclaimed\n",
		result.MatchedRenewals, result.UnmatchedRenewals)
}

type dispositionRow struct {
	label string
	count int
}

func sortedDispositions(tallies map[string]int) []dispositionRow {
	rows := make([]dispositionRow, 0, len(tallies))
	for label, count := range tallies {
		rows = append(rows, dispositionRow{label, count})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].count != rows[j].count {
			return rows[i].count > rows[j].count
		}
		return rows[i].label < rows[j].label
	})
	return rows
}

// summaryDocument is the shape of the summary.yaml written after a run.
type summaryDocument struct {
	Run     *pipeline.Result `yaml:"run"`
	Buckets map[string]int   `yaml:"final_buckets,omitempty"`
}

// WriteSummaryYAML records the run result next to the cohort files.
func WriteSummaryYAML(path string, result *pipeline.Result, bucketCounts map[string]int) error {
	doc := summaryDocument{Run: result, Buckets: bucketCounts}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}

// LoadSummary reads a summary.yaml back, so a finished run can be
// re-rendered without re-running the pipeline.
func LoadSummary(path string) (*pipeline.Result, map[string]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read run summary: %w", err)
	}
	var doc summaryDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("failed to parse run summary: %w", err)
	}
	if doc.Run == nil {
		return nil, nil, fmt.Errorf("run summary %s holds no run section", path)
	}
	return doc.Run, doc.Buckets, nil
}
