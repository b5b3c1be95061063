package abtree

import "github.com/standardbeagle/pulsedex/internal/cache"

// pageKey identifies one decoded ABNode block within a shard's node
// stream.
type pageKey struct {
	shard  int
	offset int64
}

// PageCache is the LRU page cache a Reader descends the tree through, per
// §4.6's "reading each ABNode block on demand through an LRU page cache."
type PageCache struct {
	inner *cache.LRU[pageKey, *decodedNode]
}

// NewPageCache builds a PageCache holding at most capacity decoded pages.
func NewPageCache(capacity int) *PageCache {
	return &PageCache{inner: cache.New[pageKey, *decodedNode](capacity)}
}

// Get returns a cached page, marking it most-recently-used.
func (c *PageCache) Get(shard int, offset int64) (*decodedNode, bool) {
	return c.inner.Get(pageKey{shard, offset})
}

// Put inserts a decoded page, evicting the least-recently-used entry if
// the cache is at capacity.
func (c *PageCache) Put(shard int, offset int64, node *decodedNode) {
	c.inner.Put(pageKey{shard, offset}, node)
}

// Stats returns a snapshot of the underlying cache's counters.
func (c *PageCache) Stats() cache.Stats {
	return c.inner.Stats()
}
