package grove

import (
	"encoding/binary"
	"slices"
	"strings"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pkg/errors"
)

// queryCache memoizes Intersect. Entries are keyed by the grove
// generation, so any tree mutation makes older entries unreachable and
// they age out under the cost limit.
type queryCache[V, D any] struct {
	c *ristretto.Cache[string, []*Key[V, D]]
}

func newQueryCache[V, D any](maxCost int64) (*queryCache[V, D], error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, []*Key[V, D]]{
		NumCounters: max(maxCost*10, 1024),
		MaxCost:     maxCost,
		BufferItems: 64,
		// cost is counted in matched keys, not bytes
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create query cache")
	}
	return &queryCache[V, D]{c: c}, nil
}

// get and set copy the slice so that no caller shares the cached one.
func (q *queryCache[V, D]) get(key string) ([]*Key[V, D], bool) {
	keys, ok := q.c.Get(key)
	if !ok {
		return nil, false
	}
	return slices.Clone(keys), true
}

func (q *queryCache[V, D]) set(key string, keys []*Key[V, D]) {
	if q.c.Set(key, slices.Clone(keys), int64(len(keys))+1) {
		q.c.Wait()
	}
}

func (q *queryCache[V, D]) close() {
	q.c.Close()
}

// cacheKey encodes generation, labels and the binary query.
func (g *Grove[V, D, E]) cacheKey(query V, labels []string) string {
	var sb strings.Builder
	var buf [binary.MaxVarintLen64]byte
	sb.Write(buf[:binary.PutUvarint(buf[:], g.gen)])
	sb.Write(buf[:binary.PutUvarint(buf[:], uint64(len(labels)))])
	for _, l := range labels {
		sb.Write(buf[:binary.PutUvarint(buf[:], uint64(len(l)))])
		sb.WriteString(l)
	}
	sb.Write(g.kt.AppendBinary(nil, query))
	return sb.String()
}
