package index

import (
	"testing"

	"github.com/baberabb/cce-go/internal/cce"
)

func TestBuild(t *testing.T) {
	renewals := []*cce.Renewal{
		{ID: "r1", Regnums: []string{"A100", "A-101"}, Title: "The Long Valley", Author: "Steinbeck, John"},
		{ID: "r2", Regnums: nil, Title: "The Long Valley", Author: "Someone Else"},
		{ID: "r3", Regnums: []string{"A100"}, Title: "Another Book", Author: "Steinbeck, John"},
	}

	idx := Build(renewals)

	if idx.Len() != 3 {
		t.Errorf("Len() = %d, want 3", idx.Len())
	}

	t.Run("regnum lookup strips hyphens", func(t *testing.T) {
		if got := idx.ByRegnum("A101"); len(got) != 1 || got[0].ID != "r1" {
			t.Errorf("ByRegnum(A101) = %v", ids(got))
		}
		if got := idx.ByRegnum("A-100"); len(got) != 2 {
			t.Errorf("ByRegnum(A-100) = %v, want r1 and r3", ids(got))
		}
	})

	t.Run("renewal without numbers still title indexed", func(t *testing.T) {
		got := idx.ByTitle("the long valley")
		if len(got) != 2 {
			t.Fatalf("ByTitle = %v, want r1 and r2", ids(got))
		}
	})

	t.Run("key lookup", func(t *testing.T) {
		key := cce.KeyFor("The Long Valley", "John Steinbeck")
		got := idx.ByKey(key)
		if len(got) != 1 || got[0].ID != "r1" {
			t.Errorf("ByKey = %v, want [r1]", ids(got))
		}
	})

	t.Run("empty keys never match", func(t *testing.T) {
		if got := idx.ByKey(cce.RenewalKey{}); got != nil {
			t.Errorf("ByKey(zero) = %v", ids(got))
		}
		if got := idx.ByTitle(""); got != nil {
			t.Errorf("ByTitle(empty) = %v", ids(got))
		}
	})

	t.Run("unknown keys", func(t *testing.T) {
		if got := idx.ByRegnum("Z999"); got != nil {
			t.Errorf("expected nil, got %v", ids(got))
		}
		if got := idx.ByTitle("no such title"); got != nil {
			t.Errorf("expected nil, got %v", ids(got))
		}
	})
}

func ids(renewals []*cce.Renewal) []string {
	out := make([]string, len(renewals))
	for i, r := range renewals {
		out[i] = r.ID
	}
	return out
}
