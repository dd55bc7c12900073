package style

import "sync"

// Keyed is implemented by tree nodes that can be cached: Key must be a
// stable, unique identifier for the node's lifetime (the DOM runtime uses a
// monotonic node counter), distinct from the CSS `id` selector attribute
// which need not be unique.
type Keyed interface {
	CacheKey() uint64
}

// MatchCache remembers each node's cascaded []MatchedRule so a render pass
// that touches many unchanged nodes doesn't re-walk the stylesheet for each
// one. Invalidate on any change reachable by that node (its own class/id/
// pseudo-state, an ancestor's, a sibling's index) since selectors may depend
// on any of those; InvalidateAll covers stylesheet/theme swaps.
type MatchCache struct {
	mu      sync.Mutex
	entries map[uint64][]MatchedRule
}

// NewMatchCache creates an empty cache.
func NewMatchCache() *MatchCache {
	return &MatchCache{entries: map[uint64][]MatchedRule{}}
}

// Lookup returns the cached rules for key, if present.
func (c *MatchCache) Lookup(key uint64) ([]MatchedRule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	return v, ok
}

// Store records rules for key, replacing any previous entry.
func (c *MatchCache) Store(key uint64, rules []MatchedRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = rules
}

// Invalidate drops the cached entry for a single node. Callers invalidate a
// whole subtree by invalidating each node in it (the DOM runtime already
// walks subtrees for mount/unmount, so this reuses that walk rather than
// the cache tracking parent/child relationships itself).
func (c *MatchCache) Invalidate(key uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll drops every cached entry, used when the stylesheet is
// hot-reloaded or the active theme changes (variable resolution, and
// therefore final computed values, may have shifted even where the matched
// rule set itself did not).
func (c *MatchCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[uint64][]MatchedRule{}
}
