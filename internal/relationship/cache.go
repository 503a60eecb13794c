package relationship

import (
	"sync"

	"github.com/dmaslov/skillfit/internal/skills"
)

// Cache stores computed entries keyed by the ordered name pair plus the
// enrichment hashes the computation saw. Both similarity and type are pure
// functions of the two skills' enrichment, so a row is valid exactly as long
// as both hashes still match; a mismatch means the enrichment changed and
// the row must be recomputed.
type Cache interface {
	Get(a, b, hashA, hashB string) (*Entry, bool)
	Put(a, b, hashA, hashB string, entry *Entry)
}

type cacheKey struct {
	a, b string
}

type cacheRow struct {
	hashA, hashB string
	entry        *Entry
}

// MemoryCache is the in-process cache used when persistence is disabled and
// by tests. Constructed per run, never ambient global state.
type MemoryCache struct {
	mu   sync.RWMutex
	rows map[cacheKey]cacheRow
}

// NewMemoryCache creates an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{rows: make(map[cacheKey]cacheRow)}
}

// Get returns a cached entry when present and not stale.
func (c *MemoryCache) Get(a, b, hashA, hashB string) (*Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	row, ok := c.rows[cacheKey{a: a, b: b}]
	if !ok || row.hashA != hashA || row.hashB != hashB {
		return nil, false
	}
	return row.entry, true
}

// Put stores an entry under the ordered pair.
func (c *MemoryCache) Put(a, b, hashA, hashB string, entry *Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rows[cacheKey{a: a, b: b}] = cacheRow{hashA: hashA, hashB: hashB, entry: entry}
}

// Len returns the number of cached rows.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rows)
}

// CachedClassifier answers from the cache when a row with matching
// enrichment hashes exists, delegating to the chain and storing the result
// otherwise. Both the scorer and the matrix builder classify through this
// when caching is enabled.
type CachedClassifier struct {
	chain *Chain
	cache Cache
}

// NewCachedClassifier wraps a chain with a cache.
func NewCachedClassifier(chain *Chain, cache Cache) *CachedClassifier {
	return &CachedClassifier{chain: chain, cache: cache}
}

// Classify implements Classifier.
func (c *CachedClassifier) Classify(a, b *skills.Skill) *Entry {
	if a == nil || b == nil {
		return c.chain.Classify(a, b)
	}

	hashA, hashB := a.EnrichmentHash(), b.EnrichmentHash()
	if entry, ok := c.cache.Get(a.Name, b.Name, hashA, hashB); ok {
		return entry
	}

	entry := c.chain.Classify(a, b)
	c.cache.Put(a.Name, b.Name, hashA, hashB, entry)
	return entry
}
