package cce

import "github.com/google/uuid"

// Arena owns every registration in a run, indexed by identifier.
// Parent/child relationships are stored on the records as identifier
// references and resolved here, which keeps the record graph acyclic and
// serialization order explicit: roots first, then descendants.
type Arena struct {
	byID  map[string]*Registration
	order []string
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{byID: make(map[string]*Registration)}
}

// Add inserts a registration, assigning a synthetic identifier when the
// source record had none. It returns the record's identifier.
func (a *Arena) Add(r *Registration) string {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := a.byID[r.ID]; !exists {
		a.order = append(a.order, r.ID)
	}
	a.byID[r.ID] = r
	return r.ID
}

// Get resolves an identifier. The second return is false for unknown IDs.
func (a *Arena) Get(id string) (*Registration, bool) {
	r, ok := a.byID[id]
	return r, ok
}

// Parent resolves a record's parent reference, or nil for roots.
func (a *Arena) Parent(r *Registration) *Registration {
	if r.ParentID == "" {
		return nil
	}
	return a.byID[r.ParentID]
}

// Children resolves a record's child references, skipping dangling IDs.
func (a *Arena) Children(r *Registration) []*Registration {
	out := make([]*Registration, 0, len(r.ChildIDs))
	for _, id := range r.ChildIDs {
		if child, ok := a.byID[id]; ok {
			out = append(out, child)
		}
	}
	return out
}

// Roots returns every registration without a parent, in insertion order.
func (a *Arena) Roots() []*Registration {
	var out []*Registration
	for _, id := range a.order {
		if r := a.byID[id]; r.ParentID == "" {
			out = append(out, r)
		}
	}
	return out
}

// Walk visits a registration tree parent-first. Child classification reads
// the parent's already-computed disposition, so this order is load-bearing.
func (a *Arena) Walk(root *Registration, visit func(*Registration)) {
	visit(root)
	for _, child := range a.Children(root) {
		a.Walk(child, visit)
	}
}

// WalkAll visits every registration, each tree parent-first. Records whose
// parent reference dangles are visited last, as if they were roots.
func (a *Arena) WalkAll(visit func(*Registration)) {
	seen := make(map[string]struct{}, len(a.byID))
	wrapped := func(r *Registration) {
		if _, ok := seen[r.ID]; ok {
			return
		}
		seen[r.ID] = struct{}{}
		visit(r)
	}
	for _, root := range a.Roots() {
		a.Walk(root, wrapped)
	}
	for _, id := range a.order {
		wrapped(a.byID[id])
	}
}

// Len reports the number of registrations in the arena.
func (a *Arena) Len() int {
	return len(a.byID)
}

// All returns every registration in insertion order.
func (a *Arena) All() []*Registration {
	out := make([]*Registration, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.byID[id])
	}
	return out
}
