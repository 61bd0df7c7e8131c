package cce

import (
	"strings"
	"testing"

	"github.com/baberabb/cce-go/internal/gazetteer"
)

func testGazetteer(t *testing.T) *gazetteer.Gazetteer {
	t.Helper()
	g, err := gazetteer.Load()
	if err != nil {
		t.Fatalf("gazetteer.Load() failed: %v", err)
	}
	return g
}

func TestIsForeign(t *testing.T) {
	g := testGazetteer(t)

	tests := []struct {
		name        string
		setup       func(*Registration)
		want        bool
		wantWarning string
	}{
		{
			name:        "foreign regnum prefix",
			setup:       func(r *Registration) { r.Regnums = []string{"AF12345"} },
			want:        true,
			wantWarning: "foreign registration",
		},
		{
			name:        "interim regnum prefix",
			setup:       func(r *Registration) { r.Regnums = []string{"AI-5521"} },
			want:        true,
			wantWarning: "interim (and foreign)",
		},
		{
			name:        "foreign previous regnum",
			setup:       func(r *Registration) { r.PreviousRegnums = []string{"AF999"} },
			want:        true,
			wantWarning: "foreign registration",
		},
		{
			name:        "published abroad note",
			setup:       func(r *Registration) { r.Notes = []string{"Pub. abroad 1936."} },
			want:        true,
			wantWarning: "previously published abroad",
		},
		{
			name:        "interim marker in previous publication",
			setup:       func(r *Registration) { r.PreviousPublications = []string{"AI. 4521, Mar. 1950"} },
			want:        true,
			wantWarning: "interim registration",
		},
		{
			name: "foreign publication place",
			setup: func(r *Registration) {
				r.Publishers = []*Publisher{{Places: []string{"London"}}}
			},
			want:        true,
			wantWarning: "looks foreign",
		},
		{
			name:        "low confidence keyword",
			setup:       func(r *Registration) { r.Notes = []string{"First american edition."} },
			want:        true,
			wantWarning: "keyword",
		},
		{
			name: "domestic record",
			setup: func(r *Registration) {
				r.Regnums = []string{"A123456"}
				r.Publishers = []*Publisher{{Places: []string{"New York"}}}
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistration("", nil)
			tt.setup(r)
			if got := r.IsForeign(g); got != tt.want {
				t.Fatalf("IsForeign() = %v, want %v", got, tt.want)
			}
			if tt.wantWarning != "" {
				if len(r.Warnings) == 0 || !strings.Contains(r.Warnings[len(r.Warnings)-1], tt.wantWarning) {
					t.Errorf("warnings %v missing %q", r.Warnings, tt.wantWarning)
				}
			}
		})
	}
}

func TestIsForeignMemoized(t *testing.T) {
	g := testGazetteer(t)
	r := NewRegistration("", []string{"AF12345"})

	if !r.IsForeign(g) {
		t.Fatal("expected foreign")
	}
	warnings := len(r.Warnings)
	if !r.IsForeign(g) {
		t.Fatal("expected foreign on second call")
	}
	if len(r.Warnings) != warnings {
		t.Errorf("second call appended warnings: %v", r.Warnings)
	}
}

func TestPreviouslyPublished(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(*Registration)
		want        bool
		wantWarning string
	}{
		{
			name:  "previous publication notice",
			setup: func(r *Registration) { r.PreviousPublications = []string{"Prev. pub. 1936"} },
			want:  true,
		},
		{
			name:        "new matter claimed",
			setup:       func(r *Registration) { r.NewMatterClaimed = []string{"introd."} },
			want:        true,
			wantWarning: "New matter claimed",
		},
		{
			name:        "previously published note",
			setup:       func(r *Registration) { r.Notes = []string{"Prev. pub. in England."} },
			want:        true,
			wantWarning: "previous publication",
		},
		{
			name:        "previously registered note",
			setup:       func(r *Registration) { r.Notes = []string{"Prev. reg. 1944."} },
			want:        true,
			wantWarning: "previous registration",
		},
		{
			name:        "vague previously note",
			setup:       func(r *Registration) { r.Notes = []string{"Previously issued as..."} },
			want:        true,
			wantWarning: "something",
		},
		{
			name:  "clean record",
			setup: func(r *Registration) { r.Notes = []string{"An ordinary note."} },
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistration("", nil)
			tt.setup(r)
			if got := r.PreviouslyPublished(); got != tt.want {
				t.Fatalf("PreviouslyPublished() = %v, want %v", got, tt.want)
			}
			if tt.wantWarning != "" {
				if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0], tt.wantWarning) {
					t.Errorf("warnings %v missing %q", r.Warnings, tt.wantWarning)
				}
			}
		})
	}
}
