package concept

import "strings"

// Set is a collection of lowercase concept strings. Insertion order is
// irrelevant; membership and substring coverage are what matter.
type Set map[string]struct{}

// NewSet creates a Set from the given concepts.
func NewSet(concepts ...string) Set {
	s := make(Set, len(concepts))
	s.Add(concepts...)
	return s
}

// Add inserts concepts into the set.
func (s Set) Add(concepts ...string) {
	for _, c := range concepts {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			s[c] = struct{}{}
		}
	}
}

// Contains reports exact membership.
func (s Set) Contains(c string) bool {
	_, ok := s[c]
	return ok
}

// Covers reports whether the concept is represented in the set: an exact
// member, a substring of a member, or a member is a substring of it.
func (s Set) Covers(c string) bool {
	if s.Contains(c) {
		return true
	}
	for member := range s {
		if strings.Contains(member, c) || strings.Contains(c, member) {
			return true
		}
	}
	return false
}

// Len returns the number of concepts in the set.
func (s Set) Len() int { return len(s) }
