package cache

import "github.com/gocda/engine/document"

// QueryCache memoizes query results keyed by the raw expression string.
// Results are stored as returned by the compute closure and handed back
// unchanged on every hit; the cache never invalidates on its own, so callers
// must bust it explicitly after swapping the underlying tree.
type QueryCache struct {
	cache *Cache[string, []*document.Element]
}

// NewQueryCache creates a query cache with the given capacity.
func NewQueryCache(capacity int) *QueryCache {
	return &QueryCache{
		cache: New[string, []*document.Element](capacity),
	}
}

// GetOrCompute returns the cached result for expr, or invokes compute, stores
// the result, and returns it. The bool reports whether the result came from
// the cache. A compute failure is not cached.
func (q *QueryCache) GetOrCompute(expr string, compute func() ([]*document.Element, error)) ([]*document.Element, bool, error) {
	if results, ok := q.cache.Get(expr); ok {
		return results, true, nil
	}

	results, err := compute()
	if err != nil {
		return nil, false, err
	}
	q.cache.Set(expr, results)
	return results, false, nil
}

// Invalidate drops every cached result.
func (q *QueryCache) Invalidate() {
	q.cache.Clear()
}

// InvalidateExpression drops the cached result for a single expression.
func (q *QueryCache) InvalidateExpression(expr string) {
	q.cache.Delete(expr)
}

// Len returns the number of cached expressions.
func (q *QueryCache) Len() int {
	return q.cache.Len()
}

// Stats returns the underlying cache statistics.
func (q *QueryCache) Stats() Stats {
	return q.cache.Stats()
}
