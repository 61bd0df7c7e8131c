// Package gazetteer knows about places in the real world, just well enough
// to guess whether a publication place is outside the United States.
package gazetteer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed countries.json
var countriesJSON []byte

// Foreign publishing cities big enough to be mentioned without a country.
var foreignCities = []string{"Paris", "London", "Berlin"}

// Country-name entries that must never count as foreign: the home country,
// and Georgia, which is almost always the US state in this corpus.
var excludedNames = map[string]struct{}{
	"United States Of America": {},
	"Georgia":                  {},
}

// Extra names that behave like countries in place strings.
var extraNames = []string{"England", "Scotland", "Eng.", "U.K.", "UK"}

// Gazetteer is an immutable set of foreign place-name rules, loaded once at
// startup and passed explicitly to the classifiers that need it.
type Gazetteer struct {
	foreignCountries map[string]struct{}
	countryEndings   []string
}

// Load builds the gazetteer from the embedded country list. A malformed
// resource is a fatal configuration error for the foreign classifier.
func Load() (*Gazetteer, error) {
	var doc struct {
		Countries []string `json:"countries"`
	}
	if err := json.Unmarshal(countriesJSON, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse embedded country list: %w", err)
	}
	if len(doc.Countries) == 0 {
		return nil, fmt.Errorf("embedded country list is empty")
	}

	g := &Gazetteer{foreignCountries: make(map[string]struct{})}
	for _, name := range doc.Countries {
		if _, excluded := excludedNames[name]; excluded {
			continue
		}
		g.add(name)
	}
	for _, name := range extraNames {
		g.add(name)
	}
	return g, nil
}

func (g *Gazetteer) add(name string) {
	// Trailing periods are stripped from place strings before lookup, so
	// abbreviated names like "Eng." are stored without them too.
	name = strings.TrimSuffix(name, ".")
	g.foreignCountries[name] = struct{}{}
	g.countryEndings = append(g.countryEndings, ", "+name)
}

// IsForeign makes a best guess as to whether a place name is in another
// country.
func (g *Gazetteer) IsForeign(place string) bool {
	place = strings.TrimSuffix(strings.TrimSpace(place), ".")
	if place == "" {
		return false
	}
	for _, city := range foreignCities {
		if place == city {
			return true
		}
	}
	if _, ok := g.foreignCountries[place]; ok {
		return true
	}
	if strings.Contains(place, ",") {
		// This will incorrectly flag "London, Ontario" but it will
		// correctly flag "London, New York", which is more common.
		for _, city := range foreignCities {
			if strings.Contains(place, city) {
				return true
			}
		}
	}
	for _, ending := range g.countryEndings {
		if strings.HasSuffix(place, ending) {
			return true
		}
	}
	return false
}
