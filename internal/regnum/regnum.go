// Package regnum normalizes and classifies historical registration numbers.
package regnum

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Class is the eligibility class encoded by a number's prefix.
type Class int

const (
	// Domestic numbers are ordinary US registrations.
	Domestic Class = iota
	// Foreign numbers (AF...) mark a work first published abroad.
	Foreign
	// Interim numbers (AI...) mark an ad-interim registration; interim
	// registrations are treated as foreign for eligibility purposes.
	Interim
)

func (c Class) String() string {
	switch c {
	case Foreign:
		return "foreign"
	case Interim:
		return "interim"
	default:
		return "domestic"
	}
}

var (
	foreignPrefixes = []string{"AF", "AFO", "AF0"}
	interimPrefixes = []string{"AI", "AIO", "AI0"}
)

// Classify returns the eligibility class encoded by the number's prefix.
func Classify(number string) Class {
	upper := strings.ToUpper(number)
	for _, p := range interimPrefixes {
		if strings.HasPrefix(upper, p) {
			return Interim
		}
	}
	for _, p := range foreignPrefixes {
		if strings.HasPrefix(upper, p) {
			return Foreign
		}
	}
	return Domestic
}

// IsBookProper reports whether the number denotes a standard monograph
// registration: domestic class A, excluding the reserved AA sub-range.
func IsBookProper(number string) bool {
	if Classify(number) != Domestic {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(number))
	if !strings.HasPrefix(lower, "a") {
		return false
	}
	return !strings.HasPrefix(lower, "aa")
}

// DefaultMaxRange bounds how wide a compact range may be before expansion
// is refused and the token passed through with hyphens stripped.
const DefaultMaxRange = 30

// ExpandRanges expands compact numeric ranges like "A100-102" into the
// individual identifiers they denote, zero-padded to the width of the range
// start. Tokens without a hyphen pass through unchanged; a range wider than
// maxRange, or one that cannot be parsed, is emitted with hyphens stripped.
// The result is deduplicated and sorted.
func ExpandRanges(numbers []string, maxRange int) []string {
	if maxRange <= 0 {
		maxRange = DefaultMaxRange
	}
	seen := make(map[string]struct{})
	for _, token := range numbers {
		for _, out := range expandToken(token, maxRange) {
			seen[out] = struct{}{}
		}
	}
	expanded := make([]string, 0, len(seen))
	for n := range seen {
		expanded = append(expanded, n)
	}
	sort.Strings(expanded)
	return expanded
}

func expandToken(token string, maxRange int) []string {
	if !strings.Contains(token, "-") {
		return []string{token}
	}

	prefix, start, end, ok := splitRange(token)
	if !ok || end < start || end-start+1 >= maxRange {
		return []string{strings.ReplaceAll(token, "-", "")}
	}

	width := len(strconv.Itoa(start))
	out := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		out = append(out, fmt.Sprintf("%s%0*d", prefix, width, i))
	}
	return out
}

// splitRange pulls the alphabetic prefix and the two numeric bounds out of
// a hyphenated token. Both "A100-102" and "AI-100-102" forms occur.
func splitRange(token string) (prefix string, start, end int, ok bool) {
	parts := strings.Split(token, "-")
	var startPart, endPart string
	switch len(parts) {
	case 2:
		startPart, endPart = parts[0], parts[1]
	case 3:
		prefix = parts[0]
		startPart, endPart = parts[1], parts[2]
	default:
		return "", 0, 0, false
	}

	digits := strings.Builder{}
	letters := strings.Builder{}
	for _, r := range startPart {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			letters.WriteRune(r)
		}
	}
	if prefix == "" {
		prefix = letters.String()
	}

	start, err := strconv.Atoi(digits.String())
	if err != nil {
		return "", 0, 0, false
	}
	end, err = strconv.Atoi(endPart)
	if err != nil {
		return "", 0, 0, false
	}
	return prefix, start, end, true
}

// StripHyphens is the lookup normalization applied to registration numbers
// before they key into the renewal index.
func StripHyphens(number string) string {
	return strings.ReplaceAll(number, "-", "")
}
