// Package intern provides string interning for the repeated element and
// attribute names of CDA documents.
package intern

import "sync"

// Interner deduplicates strings so repeated parses share one canonical copy
// of each name. All methods are safe for concurrent use; mutating operations
// are serialized behind a single mutex.
type Interner struct {
	mu     sync.Mutex
	table  map[string]string
	hits   uint64
	misses uint64
}

// New creates an empty interner.
func New() *Interner {
	return &Interner{
		table: make(map[string]string, 128),
	}
}

// Intern returns the canonical stored copy of s, storing s itself on first
// sight.
func (i *Interner) Intern(s string) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	if canonical, ok := i.table[s]; ok {
		i.hits++
		return canonical
	}
	i.misses++
	i.table[s] = s
	return s
}

// Len returns the number of interned strings.
func (i *Interner) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.table)
}

// Clear drops all interned strings and resets the counters. The interner has
// no implicit teardown; callers own the reset.
func (i *Interner) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.table = make(map[string]string, 128)
	i.hits = 0
	i.misses = 0
}

// Stats contains interner counters. A fresh value is returned per call and is
// never mutated afterwards.
type Stats struct {
	Hits    uint64
	Misses  uint64
	Size    int
	HitRate float64
}

// Stats returns a snapshot of the interner counters.
func (i *Interner) Stats() Stats {
	i.mu.Lock()
	defer i.mu.Unlock()

	total := i.hits + i.misses
	var rate float64
	if total > 0 {
		rate = float64(i.hits) / float64(total)
	}
	return Stats{
		Hits:    i.hits,
		Misses:  i.misses,
		Size:    len(i.table),
		HitRate: rate,
	}
}
