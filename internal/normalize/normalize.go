// Package normalize canonicalizes title and author strings for matching.
package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var notAlnum = regexp.MustCompile(`[^0-9A-Za-z ]`)

// Text strips everything other than ASCII letters, digits and spaces,
// lowercases the result, and collapses runs of whitespace.
func Text(v string) string {
	if v == "" {
		return ""
	}
	cleaned := notAlnum.ReplaceAllString(v, "")
	return strings.Join(strings.Fields(strings.ToLower(cleaned)), " ")
}

// SortedWords normalizes v and rejoins its tokens in sorted order. Two
// strings that differ only in word order produce the same key.
func SortedWords(v string) string {
	words := strings.Fields(Text(v))
	sort.Strings(words)
	return strings.Join(words, " ")
}

// WordsMatch reports whether two strings are close enough to be considered
// the same title or author. Exact equality after normalization always
// matches; otherwise the token-set intersection must exceed quotient times
// the larger token count. Empty input never matches.
func WordsMatch(t1, t2 string, quotient float64) bool {
	if t1 == "" || t2 == "" {
		return false
	}

	norm1 := Text(t1)
	norm2 := Text(t2)
	if norm1 == "" || norm2 == "" {
		return false
	}
	if norm1 == norm2 {
		return true
	}

	w1 := strings.Fields(norm1)
	w2 := strings.Fields(norm2)
	seen := make(map[string]struct{}, len(w1))
	for _, w := range w1 {
		seen[w] = struct{}{}
	}
	intersection := make(map[string]struct{})
	for _, w := range w2 {
		if _, ok := seen[w]; ok {
			intersection[w] = struct{}{}
		}
	}

	bigger := len(w1)
	if len(w2) > bigger {
		bigger = len(w2)
	}
	return float64(len(intersection)) > float64(bigger)*quotient
}

// DefaultQuotient is the word-overlap threshold used throughout matching.
const DefaultQuotient = 0.75

// Match is WordsMatch with the default quotient.
func Match(t1, t2 string) bool {
	return WordsMatch(t1, t2, DefaultQuotient)
}
