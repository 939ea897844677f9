package grove

import (
	"genogrove/types"

	"github.com/pkg/errors"
)

// QueryResult is the outcome of Intersect. Keys point into the grove's
// arena; they are not copies.
type QueryResult[V, D any] struct {
	kt    types.KeyType[V]
	query V
	keys  []*Key[V, D]
}

func (r *QueryResult[V, D]) Query() V {
	return r.query
}

// Keys returns the matches grouped by index, in key order within each
// index. Indices come in the order they were queried, ascending by label
// when Intersect searched all of them. The slice belongs to this result.
func (r *QueryResult[V, D]) Keys() []*Key[V, D] {
	return r.keys
}

func (r *QueryResult[V, D]) Len() int {
	return len(r.keys)
}

func (r *QueryResult[V, D]) Empty() bool {
	return len(r.keys) == 0
}

// Labels returns the index label of each match, parallel to Keys.
func (r *QueryResult[V, D]) Labels() []string {
	out := make([]string, len(r.keys))
	for i, k := range r.keys {
		out[i] = k.label
	}
	return out
}

// Values returns the matched values, parallel to Keys.
func (r *QueryResult[V, D]) Values() []V {
	out := make([]V, len(r.keys))
	for i, k := range r.keys {
		out[i] = k.value
	}
	return out
}

// Aggregate reduces the matched values with the key type; it fails with
// types.ErrEmptyAggregate when nothing matched.
func (r *QueryResult[V, D]) Aggregate() (V, error) {
	v, err := r.kt.Aggregate(r.Values())
	if err != nil {
		return v, errors.Wrapf(err, "aggregate result of %s", r.kt.Format(r.query))
	}
	return v, nil
}
