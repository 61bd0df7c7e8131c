package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/disposition"
	"github.com/baberabb/cce-go/internal/extract"
	"github.com/baberabb/cce-go/internal/match"
	"github.com/baberabb/cce-go/internal/pipeline"
)

func TestBucketFor(t *testing.T) {
	tests := []struct {
		disposition string
		want        string
	}{
		{match.LabelDateMatch, "renewed"},
		{match.LabelYearMatch, "probably-renewed"},
		{match.LabelAuthor, "probably-renewed"},
		{match.LabelIndistinct, "possibly-renewed"},
		{match.LabelKeyOnly, "possibly-renewed"},
		{match.LabelTitleOnly, "possibly-renewed"},
		{match.LabelNotRenewed, "not-renewed"},
		{"", "undetermined"},
		{"Classified with parent.", "undetermined"},
	}
	for _, tt := range tests {
		if got := bucketFor(tt.disposition); got != tt.want {
			t.Errorf("bucketFor(%q) = %q, want %q", tt.disposition, got, tt.want)
		}
	}
}

func TestWriteFinalBuckets(t *testing.T) {
	dir := t.TempDir()

	regs := make([]*cce.Registration, 0, 3)
	for i, disp := range []string{match.LabelDateMatch, match.LabelDateMatch, match.LabelNotRenewed} {
		r := cce.NewRegistration(string(rune('a'+i)), []string{"A1"})
		r.Disposition = disp
		regs = append(regs, r)
	}

	counts, err := WriteFinalBuckets(dir, regs)
	if err != nil {
		t.Fatalf("WriteFinalBuckets: %v", err)
	}
	if counts["renewed"] != 2 || counts["not-renewed"] != 1 {
		t.Errorf("counts = %v", counts)
	}
	if _, ok := counts["undetermined"]; ok {
		t.Error("empty undetermined bucket should not be written")
	}

	renewed, err := extract.LoadRegistrations(filepath.Join(dir, "FINAL-renewed.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	if renewed.Len() != 2 {
		t.Errorf("renewed bucket holds %d records", renewed.Len())
	}

	// Empty buckets still get a file so downstream scripts can rely on it.
	empty, err := extract.LoadRegistrations(filepath.Join(dir, "FINAL-probably-renewed.ndjson"))
	if err != nil {
		t.Fatal(err)
	}
	if empty.Len() != 0 {
		t.Errorf("probably-renewed bucket holds %d records", empty.Len())
	}
}

func TestRenderSummary(t *testing.T) {
	result := &pipeline.Result{
		Registrations: 5,
		Cohorts: map[disposition.Cohort]int{
			disposition.CohortInRange: 3,
			disposition.CohortForeign: 2,
		},
		Dispositions: map[string]int{
			match.LabelDateMatch:   2,
			"Foreign publication.": 2,
			match.LabelNotRenewed:  1,
		},
		MatchedRenewals:   2,
		UnmatchedRenewals: 7,
	}

	var buf bytes.Buffer
	RenderSummary(&buf, result, map[string]int{"renewed": 2, "not-renewed": 1})
	out := buf.String()
	for _, want := range []string{"in_range", "foreign", "renewed", "Foreign publication.", "2 claimed by a match, 7 unclaimed"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestWriteSummaryYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "summary.yaml")
	result := &pipeline.Result{RunID: "run-1", CutoffYear: 1929}
	if err := WriteSummaryYAML(path, result, map[string]int{"renewed": 2}); err != nil {
		t.Fatalf("WriteSummaryYAML: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data := string(raw)
	for _, want := range []string{"run_id: run-1", "cutoff_year: 1929", "renewed: 2"} {
		if !strings.Contains(data, want) {
			t.Errorf("summary yaml missing %q:\n%s", want, data)
		}
	}

	loaded, buckets, err := LoadSummary(path)
	if err != nil {
		t.Fatalf("LoadSummary: %v", err)
	}
	if loaded.RunID != "run-1" || loaded.CutoffYear != 1929 {
		t.Errorf("loaded summary = %+v", loaded)
	}
	if buckets["renewed"] != 2 {
		t.Errorf("loaded buckets = %v", buckets)
	}
}
