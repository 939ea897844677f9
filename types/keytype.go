// Key types stored in a grove.
/*
A key type is split in two halves:

  - the value itself (Interval, Coordinate, Numeric, Kmer or a user type), a small
    immutable struct that is copied freely
  - a KeyType descriptor that knows how to order, intersect, aggregate and
    (de)serialize values of that type

Trees and groves take the descriptor at construction time, the same way a
comparator is injected into a B+ tree.
*/
package types

import (
	"github.com/pkg/errors"
)

var (
	// ErrEmptyAggregate is returned when Aggregate is called without values.
	ErrEmptyAggregate = errors.New("aggregate of empty input")
	// ErrShortBuffer is returned by DecodeBinary when src is truncated.
	ErrShortBuffer = errors.New("short buffer")
)

// KeyType describes how values of type V behave inside a tree.
//
// Compare and Overlap must be total and free of side effects. Search relies on
// the following property: whenever Overlap(x, q) holds, either
// Overlap(Aggregate(S), q) holds for every set S containing x, or
// Compare(x, q) == 0. Aggregate must also be associative so that subtree
// summaries can be combined.
type KeyType[V any] interface {
	// Name identifies the type in serialized groves.
	Name() string
	Compare(a, b V) int
	Overlap(a, b V) bool
	Aggregate(values []V) (V, error)
	Format(v V) string
	AppendBinary(dst []byte, v V) []byte
	// DecodeBinary decodes one value from the front of src and returns the
	// number of bytes consumed.
	DecodeBinary(src []byte) (V, int, error)
}

// Bounded is implemented by key types that can tell when a scan in key order
// has moved past every possible match.
type Bounded[V any] interface {
	// Beyond reports whether key, and every key ordered after it, cannot
	// overlap query.
	Beyond(key, query V) bool
}

// Less is a convenience wrapper around Compare.
func Less[V any](kt KeyType[V], a, b V) bool {
	return kt.Compare(a, b) < 0
}

// Equal is a convenience wrapper around Compare.
func Equal[V any](kt KeyType[V], a, b V) bool {
	return kt.Compare(a, b) == 0
}

// Max returns the greatest of values according to kt.
func Max[V any](kt KeyType[V], values []V) (V, error) {
	var out V
	if len(values) == 0 {
		return out, ErrEmptyAggregate
	}
	out = values[0]
	for _, v := range values[1:] {
		if kt.Compare(v, out) > 0 {
			out = v
		}
	}
	return out, nil
}

func cmpUint64(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
