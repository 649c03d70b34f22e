package preload

import "sync"

// Set records which locators have finished loading, and what each resolved
// to: the locator itself if it loaded, or the fallback locator if it failed.
// Entries are only ever added and the first resolution of a locator wins.
type Set struct {
	mu       sync.RWMutex
	resolved map[string]string
	// values counts how many requested locators resolved to each value.
	values map[string]int
}

func NewSet() *Set {
	return &Set{
		resolved: make(map[string]string),
		values:   make(map[string]int),
	}
}

// Add records that requested resolved to resolved. Returns false if requested
// was already present, in which case the set is unchanged.
func (s *Set) Add(requested, resolved string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resolved[requested]; ok {
		return false
	}
	s.resolved[requested] = resolved
	s.values[resolved]++
	return true
}

// Resolved returns what requested resolved to.
func (s *Set) Resolved(requested string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resolved, ok := s.resolved[requested]
	return resolved, ok
}

// Has returns true if loc has been requested and resolved, or if loc is
// itself the result of some resolution, which is the case for the fallback
// locator once any image has failed.
func (s *Set) Has(loc string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.resolved[loc]; ok {
		return true
	}
	return s.values[loc] > 0
}

// HasAll returns true if every one of locs has been resolved.
func (s *Set) HasAll(locs ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, loc := range locs {
		if _, ok := s.resolved[loc]; !ok {
			return false
		}
	}
	return true
}

// Len returns the number of resolved locators.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.resolved)
}
