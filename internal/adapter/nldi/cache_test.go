package nldi

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geokshitij/flowData/internal/observability"
)

// countingFetcher serves canned features and records how often each site
// reaches the upstream.
type countingFetcher struct {
	features map[string]*geojson.Feature
	err      error
	calls    map[string]int
}

func newCountingFetcher() *countingFetcher {
	return &countingFetcher{
		features: make(map[string]*geojson.Feature),
		calls:    make(map[string]int),
	}
}

func (f *countingFetcher) Basin(_ context.Context, site string) (*geojson.Feature, error) {
	f.calls[site]++
	if f.err != nil {
		return nil, f.err
	}
	return f.features[site], nil
}

func testFeature() *geojson.Feature {
	return geojson.NewFeature(orb.Polygon{
		{{-111.6, 36.8}, {-111.5, 36.8}, {-111.5, 36.9}, {-111.6, 36.8}},
	})
}

func TestCachedFetcher_HitSkipsUpstream(t *testing.T) {
	inner := newCountingFetcher()
	inner.features["09380000"] = testFeature()
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	first, err := cached.Basin(context.Background(), "09380000")
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := cached.Basin(context.Background(), "09380000")
	require.NoError(t, err)
	require.NotNil(t, second)

	assert.Equal(t, first.Geometry, second.Geometry)
	assert.Equal(t, 1, inner.calls["09380000"])
}

func TestCachedFetcher_CallersOwnTheirCopy(t *testing.T) {
	inner := newCountingFetcher()
	inner.features["09380000"] = testFeature()
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	first, err := cached.Basin(context.Background(), "09380000")
	require.NoError(t, err)
	second, err := cached.Basin(context.Background(), "09380000")
	require.NoError(t, err)

	// Each caller gets an independent feature; writing a property on one
	// must not leak into another caller's copy or the cached entry.
	assert.NotSame(t, first, second)
	first.Properties["areasqkm"] = 104.2

	assert.NotContains(t, second.Properties, "areasqkm")
	third, err := cached.Basin(context.Background(), "09380000")
	require.NoError(t, err)
	assert.NotContains(t, third.Properties, "areasqkm")
}

func TestCachedFetcher_ConcurrentReadersDoNotShareState(t *testing.T) {
	inner := newCountingFetcher()
	inner.features["09380000"] = testFeature()
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	// Warm the cache, then hammer it from parallel goroutines that each
	// mutate the feature they got back, the way the download orchestrator
	// does when attaching the computed area.
	_, err := cached.Basin(context.Background(), "09380000")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			f, err := cached.Basin(context.Background(), "09380000")
			assert.NoError(t, err)
			f.Properties["areasqkm"] = float64(n)
		}(i)
	}
	wg.Wait()
}

func TestCachedFetcher_EmptyResultNotCached(t *testing.T) {
	inner := newCountingFetcher()
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	for i := 0; i < 2; i++ {
		feature, err := cached.Basin(context.Background(), "09999999")
		require.NoError(t, err)
		assert.Nil(t, feature)
	}

	// Undelineated sites hit the upstream every time so a later successful
	// delineation is picked up.
	assert.Equal(t, 2, inner.calls["09999999"])
}

func TestCachedFetcher_ErrorPassesThrough(t *testing.T) {
	inner := newCountingFetcher()
	inner.err = errors.New("nldi down")
	cached := NewCachedFetcher(inner, 10, observability.NewMetricsForTesting())

	_, err := cached.Basin(context.Background(), "09380000")
	assert.ErrorContains(t, err, "nldi down")
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	cache := newLRUCache(2)
	a, b, c := testFeature(), testFeature(), testFeature()

	cache.put("a", a)
	cache.put("b", b)

	// Touch "a" so "b" becomes the eviction candidate.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", c)

	_, ok = cache.get("b")
	assert.False(t, ok)
	got, ok := cache.get("a")
	assert.True(t, ok)
	assert.Same(t, a, got)
	_, ok = cache.get("c")
	assert.True(t, ok)
}

func TestLRUCache_PutUpdatesExistingKey(t *testing.T) {
	cache := newLRUCache(2)
	first, second := testFeature(), testFeature()

	cache.put("a", first)
	cache.put("a", second)

	got, ok := cache.get("a")
	require.True(t, ok)
	assert.Same(t, second, got)
}
