// Package pool provides object pools that make repeated large-document
// processing tractable by reusing element storage and scratch buffers.
package pool

import (
	"sync"

	"github.com/gocda/engine/document"
)

// DefaultMaxPoolSize bounds the free list when no size is given.
const DefaultMaxPoolSize = 256

// Storage is a reusable element wrapper handed out by the pool. The wrapped
// element is reset to an empty state on every acquire.
type Storage struct {
	Element *document.Element
}

// Reset clears the wrapped element for reuse: empty name, no attributes,
// no children, no text.
func (s *Storage) Reset() {
	el := s.Element
	el.Name = ""
	el.Namespace = ""
	el.Prefix = ""
	el.Text = ""
	for k := range el.Attributes {
		delete(el.Attributes, k)
	}
	el.Children = el.Children[:0]
}

// ElementPool is a bounded free list of element storage. All mutating
// operations are serialized behind a single mutex; statistics reads are
// snapshots taken under the same lock.
type ElementPool struct {
	mu          sync.Mutex
	free        []*Storage
	maxPoolSize int

	acquires    uint64
	reuses      uint64
	allocations uint64
	releases    uint64
	dropped     uint64
}

// NewElementPool creates a pool whose free list holds at most maxPoolSize
// entries. Non-positive sizes fall back to DefaultMaxPoolSize.
func NewElementPool(maxPoolSize int) *ElementPool {
	if maxPoolSize <= 0 {
		maxPoolSize = DefaultMaxPoolSize
	}
	return &ElementPool{
		free:        make([]*Storage, 0, maxPoolSize),
		maxPoolSize: maxPoolSize,
	}
}

// Acquire returns a reset storage wrapper, preferring reuse from the free
// list over a fresh allocation.
func (p *ElementPool) Acquire() *Storage {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.acquires++
	if n := len(p.free); n > 0 {
		st := p.free[n-1]
		p.free = p.free[:n-1]
		p.reuses++
		st.Reset()
		return st
	}

	p.allocations++
	return &Storage{Element: document.NewElement("")}
}

// Release returns storage to the free list, or drops it when the list is at
// capacity.
func (p *ElementPool) Release(st *Storage) {
	if st == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.releases++
	if len(p.free) >= p.maxPoolSize {
		p.dropped++
		return
	}
	p.free = append(p.free, st)
}

// Preallocate tops up the free list with fresh storage, up to capacity.
func (p *ElementPool) Preallocate(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := 0; i < n && len(p.free) < p.maxPoolSize; i++ {
		p.free = append(p.free, &Storage{Element: document.NewElement("")})
	}
}

// Clear drops the free list and resets the counters. The pool has no implicit
// teardown; callers own the reset.
func (p *ElementPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.free = p.free[:0]
	p.acquires = 0
	p.reuses = 0
	p.allocations = 0
	p.releases = 0
	p.dropped = 0
}

// Stats contains pool counters plus the derived reuse rate. A fresh value is
// returned per call and never mutated afterwards.
type Stats struct {
	Acquires    uint64
	Reuses      uint64
	Allocations uint64
	Releases    uint64
	Dropped     uint64
	FreeList    int
	ReuseRate   float64
}

// Stats returns a snapshot of the pool counters.
func (p *ElementPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := p.reuses + p.allocations
	var rate float64
	if total > 0 {
		rate = float64(p.reuses) / float64(total)
	}
	return Stats{
		Acquires:    p.acquires,
		Reuses:      p.reuses,
		Allocations: p.allocations,
		Releases:    p.releases,
		Dropped:     p.dropped,
		FreeList:    len(p.free),
		ReuseRate:   rate,
	}
}
