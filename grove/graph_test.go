package grove

import (
	"testing"

	"genogrove/graph"
	"genogrove/types"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWeightedGrove(t *testing.T, opts ...Option) *Grove[types.Interval, NoData, float64] {
	t.Helper()
	g, err := New[types.Interval, NoData, float64](types.IntervalType{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func mustInsert[D, E any](t *testing.T, g *Grove[types.Interval, D, E], label string, start, end uint64, data D) *Key[types.Interval, D] {
	t.Helper()
	k, err := g.InsertData(label, types.MustInterval(start, end), data, ModeUnsorted)
	require.NoError(t, err)
	return k
}

func TestNeighborsIfScenario(t *testing.T) {
	g := newWeightedGrove(t)
	a := mustInsert(t, g, "chr1", 1, 10, NoData{})
	b := mustInsert(t, g, "chr1", 20, 30, NoData{})
	c := mustInsert(t, g, "chr1", 40, 50, NoData{})
	require.NoError(t, g.AddEdge(a, b, 0.95))
	require.NoError(t, g.AddEdge(a, c, 0.8))

	strong := g.NeighborsIf(a, func(w float64) bool { return w > 0.9 })
	require.Len(t, strong, 1)
	assert.Same(t, b, strong[0])

	assert.Equal(t, []*Key[types.Interval, NoData]{b, c}, g.Neighbors(a))
	assert.Equal(t, 2, g.OutDegree(a))
	assert.Equal(t, 0, g.OutDegree(b))
	assert.True(t, g.HasEdge(a, b))
	assert.False(t, g.HasEdge(b, a))

	edges := g.Edges(a)
	require.Len(t, edges, 2)
	assert.Same(t, c, edges[1].To)
	assert.Equal(t, 0.8, edges[1].Meta)
}

func TestClearGraphKeepsKeys(t *testing.T) {
	g := newWeightedGrove(t)
	a := mustInsert(t, g, "chr1", 1, 10, NoData{})
	b := mustInsert(t, g, "chr2", 1, 10, NoData{})
	ext := g.AddExternalKey(types.MustInterval(0, 0), NoData{})

	assert.True(t, g.GraphEmpty())
	require.NoError(t, g.RemoveEdge(a, b)) // absent: no-op
	assert.Equal(t, 0, g.EdgeCount())

	require.NoError(t, g.AddEdge(a, b, 1))
	require.NoError(t, g.AddEdge(ext, a, 1))
	assert.Equal(t, 2, g.EdgeCount())
	assert.Equal(t, 3, g.VertexCount())
	assert.Equal(t, 2, g.VertexCountWithOutEdges())

	g.ClearGraph()
	assert.Equal(t, 0, g.EdgeCount())
	assert.True(t, g.GraphEmpty())
	assert.Equal(t, 0, g.VertexCount())
	assert.Equal(t, 2, g.IndexedVertexCount())
	assert.Equal(t, 1, g.ExternalVertexCount())
}

func TestVertexCountsAreIndependentOfStorage(t *testing.T) {
	g := newWeightedGrove(t)
	var keys []*Key[types.Interval, NoData]
	for i := uint64(0); i < 5; i++ {
		keys = append(keys, mustInsert(t, g, "chr1", i*10, i*10+5, NoData{}))
	}
	require.NoError(t, g.AddEdge(keys[0], keys[1], 0))
	require.NoError(t, g.AddEdge(keys[0], keys[1], 0))

	assert.Equal(t, 5, g.IndexedVertexCount())
	assert.Equal(t, 2, g.VertexCount())
	assert.Equal(t, 1, g.VertexCountWithOutEdges())
	assert.Equal(t, 2, g.EdgeCount())

	require.NoError(t, g.RemoveEdge(keys[0], keys[1]))
	assert.Equal(t, 0, g.EdgeCount())
	assert.False(t, g.HasEdge(keys[0], keys[1]))
}

func TestLinkIfOnlyComparesNeighbours(t *testing.T) {
	g := newWeightedGrove(t)
	exons := []*Key[types.Interval, NoData]{
		mustInsert(t, g, "chr1", 100, 200, NoData{}),
		mustInsert(t, g, "chr1", 300, 400, NoData{}),
		mustInsert(t, g, "chr1", 5_000, 5_100, NoData{}),
		mustInsert(t, g, "chr1", 5_200, 5_300, NoData{}),
	}
	calls := 0
	added, err := g.LinkIf(exons, func(a, b *Key[types.Interval, NoData]) (float64, bool) {
		calls++
		gap := b.Value().Start - a.Value().End
		return float64(gap), gap < 1_000
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, added)
	assert.True(t, g.HasEdge(exons[0], exons[1]))
	assert.False(t, g.HasEdge(exons[1], exons[2]))
	assert.False(t, g.HasEdge(exons[0], exons[2]))
	assert.Equal(t, 100.0, g.Edges(exons[2])[0].Meta)
}

func TestLinkWithoutMetadata(t *testing.T) {
	g := newIntervalGrove(t)
	a := mustInsert(t, g, "chr1", 1, 10, NoData{})
	b := mustInsert(t, g, "chr1", 5, 20, NoData{})
	c := mustInsert(t, g, "chr1", 30, 40, NoData{})

	added, err := g.Link([]*Key[types.Interval, NoData]{a, b, c}, func(x, y *Key[types.Interval, NoData]) bool {
		return x.Value().Overlaps(y.Value())
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, []*Key[types.Interval, NoData]{b}, g.Neighbors(a))

	added, err = g.Link(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
}

func TestForeignKeysAreRejected(t *testing.T) {
	g := newWeightedGrove(t)
	other := newWeightedGrove(t)
	a := mustInsert(t, g, "chr1", 1, 10, NoData{})
	foreign := mustInsert(t, other, "chr1", 1, 10, NoData{})

	assert.True(t, g.Owns(a))
	assert.False(t, g.Owns(foreign))
	assert.True(t, errors.Is(g.AddEdge(a, foreign, 1), ErrForeignKey))
	assert.True(t, errors.Is(g.AddEdge(foreign, a, 1), ErrForeignKey))
	assert.True(t, errors.Is(g.AddEdge(a, nil, 1), ErrForeignKey))
	assert.True(t, errors.Is(g.RemoveEdge(foreign, a), ErrForeignKey))
	assert.False(t, g.HasEdge(foreign, a))
	assert.Nil(t, g.Neighbors(foreign))
	assert.Equal(t, 0, g.OutDegree(foreign))

	_, err := g.LinkIf([]*Key[types.Interval, NoData]{a, foreign}, func(_, _ *Key[types.Interval, NoData]) (float64, bool) {
		return 0, true
	})
	assert.True(t, errors.Is(err, ErrForeignKey))
	assert.True(t, g.GraphEmpty())
}

func TestEdgePolicyOption(t *testing.T) {
	g := newWeightedGrove(t, WithEdgePolicy(graph.Reject))
	a := mustInsert(t, g, "chr1", 1, 10, NoData{})
	b := g.AddExternalKey(types.MustInterval(0, 0), NoData{})
	require.NoError(t, g.AddEdge(a, b, 1))
	assert.True(t, errors.Is(g.AddEdge(a, b, 2), graph.ErrDuplicateEdge))
	assert.Equal(t, graph.Reject, g.EdgePolicy())

	list := g.EdgeList()
	require.Len(t, list, 1)
	assert.Same(t, a, list[0].From)
	assert.Same(t, b, list[0].To)
	assert.Equal(t, 1.0, list[0].Meta)
}
