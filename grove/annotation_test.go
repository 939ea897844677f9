package grove

import (
	"io"
	"strings"
	"testing"

	"genogrove/reader"
	"genogrove/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readBED(t *testing.T, text string) []reader.Record {
	t.Helper()
	r, err := reader.NewReader(strings.NewReader(text), reader.FormatBED)
	require.NoError(t, err)
	defer r.Close()
	var out []reader.Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func annotationGrove(t *testing.T, text string) *Grove[types.Coordinate, string, struct{}] {
	t.Helper()
	g, err := New[types.Coordinate, string, struct{}](types.CoordinateType{})
	require.NoError(t, err)
	t.Cleanup(func() { g.Close() })
	for _, rec := range readBED(t, text) {
		_, err := g.InsertData(rec.Label, rec.Coordinate, rec.Name, ModeUnsorted)
		require.NoError(t, err)
	}
	return g
}

func hitNames(g *Grove[types.Coordinate, string, struct{}], rec reader.Record, stranded bool) []string {
	var out []string
	for _, k := range g.Intersect(rec.Query(stranded), rec.Label).Keys() {
		out = append(out, k.Data())
	}
	return out
}

func TestUnstrandedRecordsHitStrandedFeatures(t *testing.T) {
	g := annotationGrove(t, "chr1\t100\t200\tfwd\t0\t+\nchr1\t150\t250\trev\t0\t-\n")
	recs := readBED(t, "chr1\t175\t225\nchr1\t300\t400\n")
	require.Len(t, recs, 2)
	require.Equal(t, types.StrandNone, recs[0].Coordinate.Strand)

	assert.Equal(t, []string{"fwd", "rev"}, hitNames(g, recs[0], false))
	assert.Empty(t, hitNames(g, recs[0], true))
	assert.Empty(t, hitNames(g, recs[1], false))
}

func TestStrandedRecordsHitUnstrandedFeatures(t *testing.T) {
	g := annotationGrove(t, "chr1\t100\t200\tplain\n")
	recs := readBED(t, "chr1\t150\t160\tq\t0\t+\n")
	require.Len(t, recs, 1)

	assert.Equal(t, []string{"plain"}, hitNames(g, recs[0], false))
	assert.Empty(t, hitNames(g, recs[0], true))

	g = annotationGrove(t, "chr1\t100\t200\tfwd\t0\t+\nchr1\t100\t200\trev\t0\t-\n")
	assert.Equal(t, []string{"fwd", "rev"}, hitNames(g, recs[0], false))
	assert.Equal(t, []string{"fwd"}, hitNames(g, recs[0], true))
}
