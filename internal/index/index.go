// Package index builds the lookup tables the match engine queries. The
// index is built once from the full renewal pool before any lookup runs;
// it is never mutated afterwards, so concurrent readers are safe.
package index

import (
	"github.com/baberabb/cce-go/internal/cce"
	"github.com/baberabb/cce-go/internal/normalize"
	"github.com/baberabb/cce-go/internal/regnum"
)

// Index maps three kinds of normalized keys to the renewals sharing them.
type Index struct {
	byRegnum map[string][]*cce.Renewal
	byKey    map[cce.RenewalKey][]*cce.Renewal
	byTitle  map[string][]*cce.Renewal
	count    int
}

// Build constructs the index from the renewal pool. A renewal with several
// registration numbers contributes to every number variant it lists; one
// with no numbers at all still participates in the title and title/author
// tables.
func Build(renewals []*cce.Renewal) *Index {
	idx := &Index{
		byRegnum: make(map[string][]*cce.Renewal),
		byKey:    make(map[cce.RenewalKey][]*cce.Renewal),
		byTitle:  make(map[string][]*cce.Renewal),
		count:    len(renewals),
	}
	for _, r := range renewals {
		for _, number := range r.Regnums {
			if number == "" {
				continue
			}
			key := regnum.StripHyphens(number)
			idx.byRegnum[key] = append(idx.byRegnum[key], r)
		}
		if key := r.RenewalKey(); key != (cce.RenewalKey{}) {
			idx.byKey[key] = append(idx.byKey[key], r)
		}
		if r.Title != "" {
			idx.byTitle[titleKey(r.Title)] = append(idx.byTitle[titleKey(r.Title)], r)
		}
	}
	return idx
}

// titleKey normalizes a title for the title-alone table, falling back to
// the raw title when normalization strips everything.
func titleKey(title string) string {
	if k := normalize.Text(title); k != "" {
		return k
	}
	return title
}

// ByRegnum returns the renewals filed under the given registration number.
// The number is hyphen-stripped before lookup.
func (idx *Index) ByRegnum(number string) []*cce.Renewal {
	return idx.byRegnum[regnum.StripHyphens(number)]
}

// ByKey returns the renewals sharing a normalized (title, author) key.
// An empty key never matches: a record carrying no title and no author
// has nothing to look up.
func (idx *Index) ByKey(key cce.RenewalKey) []*cce.Renewal {
	if key == (cce.RenewalKey{}) {
		return nil
	}
	return idx.byKey[key]
}

// ByTitle returns the renewals sharing a normalized title.
func (idx *Index) ByTitle(title string) []*cce.Renewal {
	if title == "" {
		return nil
	}
	return idx.byTitle[titleKey(title)]
}

// Len reports how many renewals were indexed.
func (idx *Index) Len() int {
	return idx.count
}
