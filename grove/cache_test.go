package grove

import (
	"testing"

	"genogrove/types"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryCacheSeesNewKeys(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := newIntervalGrove(t, WithQueryCache(1_000), WithMetrics(reg))
	mustInsert(t, g, "chr1", 100, 200, NoData{})

	q := types.MustInterval(150, 160)
	assert.Equal(t, 1, g.Intersect(q).Len())
	assert.Equal(t, 1, g.Intersect(q).Len())

	mustInsert(t, g, "chr1", 155, 158, NoData{})
	assert.Equal(t, 2, g.Intersect(q).Len())
	assert.Equal(t, 2, g.Intersect(q, "chr1", "chr2").Len())
	assert.True(t, g.Intersect(q, "chr2").Empty())

	assert.Equal(t, 5.0, testutil.ToFloat64(g.metrics.queries))
	hits := testutil.ToFloat64(g.metrics.cacheHits)
	misses := testutil.ToFloat64(g.metrics.cacheMisses)
	assert.Equal(t, 5.0, hits+misses)
	assert.GreaterOrEqual(t, misses, 4.0)
	assert.Equal(t, 2.0, testutil.ToFloat64(g.metrics.inserts.WithLabelValues("unsorted")))
}

func TestMetricsTrackEdgesAndModes(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := newWeightedGrove(t, WithMetrics(reg))
	a := mustInsert(t, g, "chr1", 1, 2, NoData{})
	b := g.AddExternalKey(types.MustInterval(0, 0), NoData{})
	_, err := g.InsertDataBulk("chr2", []types.Interval{types.MustInterval(1, 2), types.MustInterval(3, 4)}, nil)
	require.NoError(t, err)

	require.NoError(t, g.AddEdge(a, b, 1))
	require.NoError(t, g.AddEdge(b, a, 1))
	assert.Equal(t, 2.0, testutil.ToFloat64(g.metrics.edges))
	g.ClearGraph()
	assert.Equal(t, 0.0, testutil.ToFloat64(g.metrics.edges))

	assert.Equal(t, 1.0, testutil.ToFloat64(g.metrics.inserts.WithLabelValues("external")))
	assert.Equal(t, 2.0, testutil.ToFloat64(g.metrics.inserts.WithLabelValues("bulk")))

	n, err := testutil.GatherAndCount(reg, "genogrove_grove_inserted_keys_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNoCacheNoMetrics(t *testing.T) {
	g := newIntervalGrove(t)
	mustInsert(t, g, "chr1", 1, 2, NoData{})
	assert.Nil(t, g.cache)
	assert.Nil(t, g.metrics)
	assert.Equal(t, 1, g.Intersect(types.MustInterval(2, 2)).Len())
	require.NoError(t, g.Close())
}

func TestCachedResultsAreNotShared(t *testing.T) {
	g := newIntervalGrove(t, WithQueryCache(1_000))
	a := mustInsert(t, g, "chr1", 100, 200, NoData{})
	mustInsert(t, g, "chr1", 150, 250, NoData{})
	q := types.MustInterval(160, 170)

	first := g.Intersect(q)
	require.Equal(t, 2, first.Len())
	first.Keys()[0] = nil

	second := g.Intersect(q)
	require.Equal(t, 2, second.Len())
	assert.Same(t, a, second.Keys()[0])
	second.Keys()[1] = nil

	third := g.Intersect(q)
	assert.Same(t, a, third.Keys()[0])
	assert.NotNil(t, third.Keys()[1])
}
