package nldi

import (
	"context"
	"sync"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/geokshitij/flowData/internal/observability"
)

// CachedFetcher wraps a Fetcher with an in-memory LRU cache keyed by site
// number. Basin geometry is static, so repeated jobs over the same station
// list skip the upstream round trip. Every caller gets its own copy of the
// cached feature; concurrent jobs may mutate what they receive without
// racing on the shared entry.
type CachedFetcher struct {
	inner   Fetcher
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedFetcher creates a cache decorator around a basin fetcher.
func NewCachedFetcher(inner Fetcher, maxEntries int, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedFetcher) Basin(ctx context.Context, site string) (*geojson.Feature, error) {
	if f, ok := c.cache.get(site); ok {
		c.metrics.BasinCache.WithLabelValues("hit").Inc()
		return cloneFeature(f), nil
	}
	c.metrics.BasinCache.WithLabelValues("miss").Inc()

	f, err := c.inner.Basin(ctx, site)
	if err != nil {
		return nil, err
	}
	if f == nil {
		// Only cache delineated basins so transient "not found" responses
		// can be retried.
		return nil, nil
	}
	c.cache.put(site, f)
	return cloneFeature(f), nil
}

// cloneFeature deep-copies a feature so the cached entry stays pristine.
// The geometry and the properties map are both fresh; property values are
// plain JSON scalars and slices, shared safely.
func cloneFeature(f *geojson.Feature) *geojson.Feature {
	var g orb.Geometry
	if f.Geometry != nil {
		g = orb.Clone(f.Geometry)
	}
	c := geojson.NewFeature(g)
	c.ID = f.ID
	c.Properties = make(geojson.Properties, len(f.Properties))
	for k, v := range f.Properties {
		c.Properties[k] = v
	}
	return c
}

// lruCache is a simple thread-safe LRU cache for basin features.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   string
	value *geojson.Feature
	prev  *entry
	next  *entry
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry),
	}
}

func (c *lruCache) get(key string) (*geojson.Feature, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache) put(key string, value *geojson.Feature) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
