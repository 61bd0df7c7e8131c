package match

import (
	"sync"

	"github.com/baberabb/cce-go/internal/cce"
)

// UsedSet records which renewals were claimed by some match. It is
// append-only and safe for concurrent writers, so classification may be
// parallelized at the granularity of whole registration trees.
type UsedSet struct {
	mu   sync.Mutex
	seen map[*cce.Renewal]struct{}
}

// NewUsedSet returns an empty set.
func NewUsedSet() *UsedSet {
	return &UsedSet{seen: make(map[*cce.Renewal]struct{})}
}

// Add marks a renewal as claimed. Nil (the absent-match sentinel) is
// ignored.
func (s *UsedSet) Add(r *cce.Renewal) {
	if r == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen[r] = struct{}{}
}

// Contains reports whether the renewal was claimed by any match.
func (s *UsedSet) Contains(r *cce.Renewal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[r]
	return ok
}

// Len reports how many distinct renewals have been claimed.
func (s *UsedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}
