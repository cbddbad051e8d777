package crawler

import "sync"

// VisitedSet records every URL that has been claimed during a crawl.
// It only grows; nothing is ever removed.
type VisitedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedSet creates an empty visited set.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{seen: make(map[string]struct{})}
}

// Claim inserts rawURL if absent and reports whether this call inserted it.
// The caller that gets true owns fetching and recording the URL.
func (v *VisitedSet) Claim(rawURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.seen[rawURL]; ok {
		return false
	}
	v.seen[rawURL] = struct{}{}
	return true
}

// Contains reports whether rawURL has been claimed.
func (v *VisitedSet) Contains(rawURL string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.seen[rawURL]
	return ok
}

// Len returns the number of claimed URLs.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.seen)
}
