package grove

import (
	"bytes"
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"genogrove/bplustree"
	"genogrove/types"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intervalGrove = Grove[types.Interval, NoData, struct{}]

func newIntervalGrove(t *testing.T, opts ...Option) *intervalGrove {
	t.Helper()
	g, err := New[types.Interval, NoData, struct{}](types.IntervalType{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	return g
}

func refsOf[V, D any](keys []*Key[V, D]) []uint32 {
	out := make([]uint32, len(keys))
	for i, k := range keys {
		out[i] = k.Ref()
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestIntersectScenario(t *testing.T) {
	g := newIntervalGrove(t)
	for _, iv := range []types.Interval{
		types.MustInterval(100, 199),
		types.MustInterval(150, 249),
		types.MustInterval(300, 399),
	} {
		_, err := g.InsertData("chr1", iv, NoData{}, ModeUnsorted)
		require.NoError(t, err)
	}

	res := g.Intersect(types.MustInterval(175, 224), "chr1")
	assert.Equal(t, []types.Interval{types.MustInterval(100, 199), types.MustInterval(150, 249)}, res.Values())
	assert.Equal(t, []string{"chr1", "chr1"}, res.Labels())
	assert.Equal(t, types.MustInterval(175, 224), res.Query())

	agg, err := res.Aggregate()
	require.NoError(t, err)
	assert.Equal(t, types.MustInterval(100, 249), agg)

	empty := g.Intersect(types.MustInterval(175, 224), "chr2")
	assert.True(t, empty.Empty())
	_, err = empty.Aggregate()
	assert.True(t, errors.Is(err, types.ErrEmptyAggregate))
}

func TestIntersectClosedBoundaryOnEveryPath(t *testing.T) {
	g := newIntervalGrove(t)
	_, err := g.InsertData("unsorted", types.MustInterval(100, 200), NoData{}, ModeUnsorted)
	require.NoError(t, err)
	_, err = g.InsertData("sorted", types.MustInterval(100, 200), NoData{}, ModeSorted)
	require.NoError(t, err)
	_, err = g.InsertDataBulk("bulk", []types.Interval{types.MustInterval(100, 200)}, nil)
	require.NoError(t, err)

	for _, label := range []string{"unsorted", "sorted", "bulk"} {
		assert.Equal(t, 1, g.Intersect(types.MustInterval(200, 300), label).Len(), label)
		assert.True(t, g.Intersect(types.MustInterval(201, 300), label).Empty(), label)
	}
	assert.Equal(t, 3, g.Intersect(types.MustInterval(200, 300)).Len())
}

func TestIntersectMatchesBruteForce(t *testing.T) {
	g := newIntervalGrove(t, WithOrder(4))
	rng := rand.New(rand.NewSource(1))
	labels := []string{"chr1", "chr2", "chrX"}

	type stored struct {
		label string
		value types.Interval
		ref   uint32
	}
	var all []stored
	for i := 0; i < 2_000; i++ {
		label := labels[rng.Intn(len(labels))]
		start := uint64(rng.Intn(50_000))
		v := types.MustInterval(start, start+uint64(rng.Intn(1_000)))
		k, err := g.InsertData(label, v, NoData{}, ModeUnsorted)
		require.NoError(t, err)
		all = append(all, stored{label, v, k.Ref()})
	}
	require.NoError(t, g.Validate())
	assert.Equal(t, labels, g.Labels())
	assert.Equal(t, len(all), g.IndexedVertexCount())

	for i := 0; i < 100; i++ {
		start := uint64(rng.Intn(50_000))
		q := types.MustInterval(start, start+uint64(rng.Intn(2_000)))

		var want []uint32
		wantByLabel := map[string][]uint32{}
		for _, s := range all {
			if s.value.Overlaps(q) {
				want = append(want, s.ref)
				wantByLabel[s.label] = append(wantByLabel[s.label], s.ref)
			}
		}
		assert.Equal(t, want, nilIfEmpty(refsOf(g.Intersect(q).Keys())))
		for _, label := range labels {
			assert.Equal(t, wantByLabel[label], nilIfEmpty(refsOf(g.Intersect(q, label).Keys())), "%s %s", label, q)
		}
	}
}

func nilIfEmpty(refs []uint32) []uint32 {
	if len(refs) == 0 {
		return nil
	}
	return refs
}

func TestIntersectIgnoresRepeatedAndUnknownLabels(t *testing.T) {
	g := newIntervalGrove(t)
	_, err := g.InsertData("chr1", types.MustInterval(1, 10), NoData{}, ModeUnsorted)
	require.NoError(t, err)
	_, err = g.InsertData("chr2", types.MustInterval(5, 10), NoData{}, ModeUnsorted)
	require.NoError(t, err)

	res := g.Intersect(types.MustInterval(5, 5), "chr2", "nope", "chr2", "chr1")
	assert.Equal(t, []string{"chr2", "chr1"}, res.Labels())
}

func TestBulkThenSorted(t *testing.T) {
	g := newIntervalGrove(t)
	keys, err := g.InsertDataBulk("chr1", []types.Interval{
		types.MustInterval(100, 199),
		types.MustInterval(200, 299),
		types.MustInterval(300, 399),
	}, nil)
	require.NoError(t, err)
	require.Len(t, keys, 3)

	_, err = g.InsertData("chr1", types.MustInterval(400, 499), NoData{}, ModeSorted)
	require.NoError(t, err)

	_, err = g.InsertData("chr1", types.MustInterval(150, 160), NoData{}, ModeSorted)
	var perr *bplus.PreconditionError
	require.True(t, errors.As(err, &perr))
	assert.True(t, errors.Is(err, bplus.ErrNotSorted))
	assert.Equal(t, 4, g.IndexedVertexCount())
	assert.Equal(t, 4, g.Size("chr1"))
}

func TestInsertDataBulk(t *testing.T) {
	g, err := New[types.Interval, string, struct{}](types.IntervalType{}, WithOrder(4))
	require.NoError(t, err)
	defer g.Close()

	var values []types.Interval
	var names []string
	for i := 0; i < 50; i++ {
		values = append(values, types.MustInterval(uint64(i*10), uint64(i*10+5)))
		names = append(names, fmt.Sprintf("f%d", i))
	}
	keys, err := g.InsertDataBulk("chr1", values, names)
	require.NoError(t, err)
	require.Len(t, keys, len(values))
	for i, k := range keys {
		assert.Equal(t, values[i], k.Value())
		assert.Equal(t, names[i], k.Data())
		assert.Equal(t, "chr1", k.Label())
	}
	require.NoError(t, g.Validate())
	assert.Equal(t, keys, g.Keys("chr1"))

	_, err = g.InsertDataBulk("chr2", values, names[:3])
	assert.True(t, errors.Is(err, ErrDataLength))

	// a failed bulk load on a new label leaves no trace of the label
	_, err = g.InsertDataBulk("chr3", []types.Interval{types.MustInterval(5, 6), types.MustInterval(1, 2)}, nil)
	assert.True(t, errors.Is(err, bplus.ErrNotSorted))
	assert.Equal(t, []string{"chr1"}, g.Labels())

	// appending to a non-empty index needs strictly greater keys
	_, err = g.InsertDataBulk("chr1", []types.Interval{values[len(values)-1]}, nil)
	assert.True(t, errors.Is(err, bplus.ErrNotSorted))
	more, err := g.InsertDataBulk("chr1", []types.Interval{types.MustInterval(1_000, 1_001)}, nil)
	require.NoError(t, err)
	assert.Equal(t, "", more[0].Data())

	keys, err = g.InsertDataBulk("chr1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestExternalKeysAreNotIndexed(t *testing.T) {
	g := newIntervalGrove(t)
	_, err := g.InsertData("chr1", types.MustInterval(1, 100), NoData{}, ModeUnsorted)
	require.NoError(t, err)
	ext := g.AddExternalKey(types.MustInterval(1, 100), NoData{})

	assert.True(t, ext.External())
	assert.Equal(t, "", ext.Label())
	assert.Equal(t, 1, g.Intersect(types.MustInterval(50, 50)).Len())
	assert.Equal(t, 1, g.IndexedVertexCount())
	assert.Equal(t, 1, g.ExternalVertexCount())
	assert.Equal(t, []string{"chr1"}, g.Labels())

	got, ok := g.Key(ext.Ref())
	require.True(t, ok)
	assert.Same(t, ext, got)
}

func TestKeysStayPutAcrossArenaGrowth(t *testing.T) {
	g := newIntervalGrove(t)
	first, err := g.InsertData("chr1", types.MustInterval(0, 0), NoData{}, ModeSorted)
	require.NoError(t, err)
	for i := 1; i < 2*chunkSize+5; i++ {
		_, err := g.InsertData("chr1", types.MustInterval(uint64(i), uint64(i)), NoData{}, ModeSorted)
		require.NoError(t, err)
	}
	assert.Equal(t, types.MustInterval(0, 0), first.Value())
	got, ok := g.Key(0)
	require.True(t, ok)
	assert.Same(t, first, got)

	last, ok := g.Key(uint32(2*chunkSize + 4))
	require.True(t, ok)
	assert.Equal(t, uint64(2*chunkSize+4), last.Value().Start)
	_, ok = g.Key(uint32(2*chunkSize + 5))
	assert.False(t, ok)
}

func TestKeyEquality(t *testing.T) {
	kt := types.IntervalType{}
	g, err := New[types.Interval, string, struct{}](kt)
	require.NoError(t, err)
	defer g.Close()

	a, err := g.InsertData("chr1", types.MustInterval(1, 2), "x", ModeUnsorted)
	require.NoError(t, err)
	b, err := g.InsertData("chr1", types.MustInterval(1, 2), "x", ModeUnsorted)
	require.NoError(t, err)
	c, err := g.InsertData("chr1", types.MustInterval(1, 2), "y", ModeUnsorted)
	require.NoError(t, err)

	assert.True(t, a.HasData())
	assert.True(t, Equal[types.Interval, string](kt, a, b))
	assert.False(t, Equal[types.Interval, string](kt, a, c))
	c.SetData("x")
	assert.True(t, Equal[types.Interval, string](kt, a, c))

	plain := newIntervalGrove(t)
	p, err := plain.InsertData("chr1", types.MustInterval(1, 2), NoData{}, ModeUnsorted)
	require.NoError(t, err)
	q := plain.AddExternalKey(types.MustInterval(1, 2), NoData{})
	assert.False(t, p.HasData())
	assert.True(t, Equal[types.Interval, NoData](kt, p, q))
	assert.False(t, Equal[types.Interval, NoData](kt, p, nil))
}

func TestCoordinateGrove(t *testing.T) {
	g, err := New[types.Coordinate, string, struct{}](types.CoordinateType{})
	require.NoError(t, err)
	defer g.Close()

	_, err = g.InsertData("chr1", types.MustCoordinate(100, 200, types.StrandForward), "fwd", ModeUnsorted)
	require.NoError(t, err)
	_, err = g.InsertData("chr1", types.MustCoordinate(150, 250, types.StrandReverse), "rev", ModeUnsorted)
	require.NoError(t, err)

	names := func(res *QueryResult[types.Coordinate, string]) []string {
		var out []string
		for _, k := range res.Keys() {
			out = append(out, k.Data())
		}
		return out
	}
	assert.Equal(t, []string{"fwd"}, names(g.Intersect(types.MustCoordinate(160, 170, types.StrandForward))))
	assert.Equal(t, []string{"fwd", "rev"}, names(g.Intersect(types.MustCoordinate(160, 170, types.StrandAny))))
	assert.Empty(t, names(g.Intersect(types.MustCoordinate(160, 170, types.StrandNone))))
}

func TestInsertDataRejectsUnknownMode(t *testing.T) {
	g := newIntervalGrove(t)
	_, err := g.InsertData("chr1", types.MustInterval(1, 2), NoData{}, Mode(7))
	assert.Error(t, err)
	assert.Empty(t, g.Labels())
	assert.Equal(t, "sorted", ModeSorted.String())
}

func TestDataCodecTypeMismatch(t *testing.T) {
	_, err := New[types.Interval, string, struct{}](types.IntervalType{}, WithDataCodec[int](JSONCodec[int]{}))
	assert.Error(t, err)
}

// positiveOnly fails to aggregate negative values.
type positiveOnly struct{ types.NumericType }

func (positiveOnly) Aggregate(values []types.Numeric) (types.Numeric, error) {
	for _, v := range values {
		if v.Value < 0 {
			return types.Numeric{}, errors.Errorf("negative value %d", v.Value)
		}
	}
	return types.NumericType{}.Aggregate(values)
}

func TestRefusedKeysGiveBackArenaSlots(t *testing.T) {
	g, err := New[types.Numeric, NoData, struct{}](positiveOnly{}, WithOrder(3))
	require.NoError(t, err)
	defer g.Close()

	for _, v := range []int64{5, 7} {
		_, err := g.InsertData("n", types.Numeric{Value: v}, NoData{}, ModeUnsorted)
		require.NoError(t, err)
	}
	_, err = g.InsertData("n", types.Numeric{Value: -1}, NoData{}, ModeUnsorted)
	assert.Error(t, err)
	_, ok := g.Key(2)
	assert.False(t, ok)

	_, err = g.InsertDataBulk("m", []types.Numeric{{Value: -3}, {Value: -2}}, nil)
	assert.Error(t, err)
	assert.Equal(t, []string{"n"}, g.Labels())
	_, ok = g.Key(2)
	assert.False(t, ok)

	k, err := g.InsertData("n", types.Numeric{Value: 9}, NoData{}, ModeUnsorted)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), k.Ref())
	assert.Equal(t, 3, g.IndexedVertexCount())
	require.NoError(t, g.Validate())

	var buf bytes.Buffer
	_, err = g.WriteTo(&buf)
	require.NoError(t, err)
	loaded, err := ReadGrove[types.Numeric, NoData, struct{}](&buf, positiveOnly{})
	require.NoError(t, err)
	defer loaded.Close()
	assert.Equal(t, 3, loaded.IndexedVertexCount())
	assert.Equal(t, 1, loaded.Intersect(types.Numeric{Value: 9}).Len())
}

func TestArenaTruncateAcrossChunks(t *testing.T) {
	var a arena[types.Interval, NoData]
	for i := 0; i < chunkSize+3; i++ {
		a.alloc(types.MustInterval(uint64(i), uint64(i)), NoData{}, "x", kindIndexed)
	}
	kept := a.get(chunkSize - 2)

	a.truncate(chunkSize - 1)
	assert.Equal(t, chunkSize-1, a.len())
	assert.Len(t, a.chunks, 1)
	assert.Nil(t, a.get(chunkSize-1))

	k := a.alloc(types.MustInterval(1, 1), NoData{}, "x", kindIndexed)
	assert.Equal(t, uint32(chunkSize-1), k.ref)
	k = a.alloc(types.MustInterval(2, 2), NoData{}, "x", kindIndexed)
	assert.Equal(t, uint32(chunkSize), k.ref)
	assert.Len(t, a.chunks, 2)
	assert.Same(t, kept, a.get(chunkSize-2))
	assert.True(t, a.owns(k))
}

type opaquePayload struct {
	name  string
	score int
}

func TestKeyEqualityWithOptions(t *testing.T) {
	kt := types.IntervalType{}
	g, err := New[types.Interval, opaquePayload, struct{}](kt)
	require.NoError(t, err)
	defer g.Close()

	a, err := g.InsertData("chr1", types.MustInterval(1, 2), opaquePayload{name: "x", score: 1}, ModeUnsorted)
	require.NoError(t, err)
	b, err := g.InsertData("chr1", types.MustInterval(1, 2), opaquePayload{name: "x", score: 1}, ModeUnsorted)
	require.NoError(t, err)
	c, err := g.InsertData("chr1", types.MustInterval(1, 2), opaquePayload{name: "x", score: 2}, ModeUnsorted)
	require.NoError(t, err)

	allow := cmp.AllowUnexported(opaquePayload{})
	assert.True(t, Equal[types.Interval, opaquePayload](kt, a, b, allow))
	assert.False(t, Equal[types.Interval, opaquePayload](kt, a, c, allow))
	assert.Panics(t, func() { Equal[types.Interval, opaquePayload](kt, a, b) })
}
