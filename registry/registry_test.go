package registry

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRegistry(t *testing.T) {
	r := NewIndexRegistry()
	assert.Equal(t, uint32(0), r.Register("chr1"))
	assert.Equal(t, uint32(1), r.Register("chr2"))
	assert.Equal(t, uint32(0), r.Register("chr1"))
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, []string{"chr1", "chr2"}, r.Labels())

	id, ok := r.ID("chr2")
	require.True(t, ok)
	label, err := r.Label(id)
	require.NoError(t, err)
	assert.Equal(t, "chr2", label)

	_, ok = r.ID("chrX")
	assert.False(t, ok)
	_, err = r.Label(7)
	assert.True(t, errors.Is(err, ErrUnknownID))

	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, uint32(0), r.Register("chrX"))
}

func TestMetadataRegistry(t *testing.T) {
	type source struct{ File, Kind string }
	r := NewMetadataRegistry[source]()
	a := r.Add(source{"a.bed", "peak"})
	b := r.Add(source{"b.gtf", "exon"})
	assert.NotEqual(t, a, b)

	got, err := r.Get(b)
	require.NoError(t, err)
	assert.Equal(t, "exon", got.Kind)
	assert.Equal(t, 2, r.Len())

	r.Clear()
	_, err = r.Get(a)
	assert.True(t, errors.Is(err, ErrUnknownID))
}
