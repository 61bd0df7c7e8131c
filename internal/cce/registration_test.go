package cce

import (
	"testing"

	"github.com/baberabb/cce-go/internal/dates"
)

func TestNewRegistrationDropsEmptyRegnums(t *testing.T) {
	r := NewRegistration("id-1", []string{"A100", "", "A200", ""})
	if len(r.Regnums) != 2 {
		t.Fatalf("expected 2 regnums, got %v", r.Regnums)
	}
	for _, n := range r.Regnums {
		if n == "" {
			t.Error("empty regnum survived construction")
		}
	}
}

func TestRenewalKey(t *testing.T) {
	r := NewRegistration("", nil)
	r.Title = "The Great Gatsby"
	r.Authors = []string{"Fitzgerald, F. Scott", "Someone Else"}

	key := r.RenewalKey()
	if key.Title != "gatsby great the" {
		t.Errorf("unexpected title key %q", key.Title)
	}
	if key.Author != "f fitzgerald scott" {
		t.Errorf("unexpected author key %q", key.Author)
	}

	// Same key regardless of word order; only the first author counts.
	other := NewRegistration("", nil)
	other.Title = "Great Gatsby, The"
	other.Authors = []string{"F. Scott Fitzgerald"}
	if other.RenewalKey() != key {
		t.Errorf("reordered record produced different key: %+v vs %+v", other.RenewalKey(), key)
	}
}

func TestBestGuessDate(t *testing.T) {
	t.Run("prefers earliest registration date", func(t *testing.T) {
		r := NewRegistration("", nil)
		r.RegDates = []*Date{{Raw: "1955-03-01"}, {Raw: "1951-06-19"}}
		r.Publishers = []*Publisher{{Dates: []*Date{{Raw: "1949-01-01"}}}}

		got, ok := r.BestGuessDate()
		if !ok {
			t.Fatal("expected a date")
		}
		if dates.ISO(got) != "1951-06-19" {
			t.Errorf("got %s, want 1951-06-19", dates.ISO(got))
		}
	})

	t.Run("falls back to publication date", func(t *testing.T) {
		r := NewRegistration("", nil)
		r.RegDates = []*Date{{Raw: "not a date"}}
		r.Publishers = []*Publisher{{Dates: []*Date{{Raw: "1949-11-02"}}}}

		got, ok := r.BestGuessDate()
		if !ok {
			t.Fatal("expected a date")
		}
		if dates.ISO(got) != "1949-11-02" {
			t.Errorf("got %s, want 1949-11-02", dates.ISO(got))
		}
		if len(r.Warnings) == 0 {
			t.Error("expected a warning for the unparseable registration date")
		}
	})

	t.Run("absent when nothing resolves", func(t *testing.T) {
		r := NewRegistration("", nil)
		if _, ok := r.BestGuessDate(); ok {
			t.Error("expected no date")
		}
	})
}

func TestDateResolveStampsNormalized(t *testing.T) {
	d := &Date{Raw: "19Jun58"}
	var warnings []string
	if _, ok := d.Resolve(&warnings); !ok {
		t.Fatal("expected parse to succeed")
	}
	if d.Normalized != "1958-06-19" {
		t.Errorf("normalized = %q, want 1958-06-19", d.Normalized)
	}

	bad := &Date{Raw: "31Feb50"}
	if _, ok := bad.Resolve(&warnings); ok {
		t.Fatal("expected parse to fail")
	}
	if bad.ParseError == "" {
		t.Error("expected parse error to be recorded")
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}

func TestDateResolveRepeatsWithoutNewWarnings(t *testing.T) {
	good := &Date{Raw: "19Jun58"}
	bad := &Date{Raw: "banana"}
	var warnings []string

	for i := 0; i < 3; i++ {
		parsed, ok := good.Resolve(&warnings)
		if !ok || parsed.Year() != 1958 {
			t.Fatalf("resolve %d: parsed = %v, ok = %v", i, parsed, ok)
		}
		if _, ok := bad.Resolve(&warnings); ok {
			t.Fatalf("resolve %d: expected failure", i)
		}
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one", warnings)
	}
}

func TestParseXrefs(t *testing.T) {
	tests := []struct {
		name       string
		note       string
		wantRegnum string
		wantDate   string
	}{
		{"date then number", "Prev. reg. 19Jun58; A123456", "A123456", "1958-06-19"},
		{"number then date", "Prev. reg. A123456, 19Jun58", "A123456", "1958-06-19"},
		{"bare number", "See also A98765-", "A98765", ""},
		{"hyphens stripped", "12Jan50; AB12-345", "AB12345", "1950-01-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistration("", nil)
			r.Notes = []string{tt.note}
			xrefs := r.ParseXrefs()
			if len(xrefs) != 1 {
				t.Fatalf("expected one xref, got %d", len(xrefs))
			}
			stub := xrefs[0]
			if len(stub.Regnums) != 1 || stub.Regnums[0] != tt.wantRegnum {
				t.Errorf("regnums = %v, want [%s]", stub.Regnums, tt.wantRegnum)
			}
			if tt.wantDate == "" {
				if len(stub.RegDates) != 0 {
					t.Errorf("unexpected dates %v", stub.RegDates)
				}
			} else if len(stub.RegDates) != 1 || stub.RegDates[0].Normalized != tt.wantDate {
				t.Errorf("dates = %v, want %s", stub.RegDates, tt.wantDate)
			}
		})
	}

	t.Run("no reference in note", func(t *testing.T) {
		r := NewRegistration("", nil)
		r.Notes = []string{"an ordinary note"}
		if xrefs := r.ParseXrefs(); len(xrefs) != 0 {
			t.Errorf("expected no xrefs, got %d", len(xrefs))
		}
	})
}

func TestArena(t *testing.T) {
	arena := NewArena()

	parent := NewRegistration("p1", []string{"A100"})
	child := NewRegistration("c1", []string{"A101"})
	child.ParentID = "p1"
	parent.ChildIDs = []string{"c1"}

	arena.Add(parent)
	arena.Add(child)

	synthetic := NewRegistration("", nil)
	id := arena.Add(synthetic)
	if id == "" {
		t.Fatal("expected a synthetic identifier")
	}

	roots := arena.Roots()
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}

	if got := arena.Parent(child); got != parent {
		t.Error("parent resolution failed")
	}
	if kids := arena.Children(parent); len(kids) != 1 || kids[0] != child {
		t.Error("child resolution failed")
	}

	var visited []string
	arena.Walk(parent, func(r *Registration) { visited = append(visited, r.ID) })
	if len(visited) != 2 || visited[0] != "p1" || visited[1] != "c1" {
		t.Errorf("walk order = %v, want [p1 c1]", visited)
	}
}
