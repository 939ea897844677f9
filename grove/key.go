package grove

import (
	"genogrove/types"

	"github.com/google/go-cmp/cmp"
)

// NoData is the payload type of groves whose keys carry no payload. It
// takes no space in Key.
type NoData struct{}

// Key couples a stored value with its payload. Keys are allocated by a
// Grove, never copied by it, and stay at the same address for the
// lifetime of the Grove.
type Key[V, D any] struct {
	value V
	data  D
	label string // "" for external keys
	ref   uint32
	kind  keyKind
}

type keyKind uint8

const (
	kindIndexed keyKind = iota
	kindExternal
)

func (k *Key[V, D]) Value() V {
	return k.value
}

func (k *Key[V, D]) Data() D {
	return k.data
}

// SetData replaces the payload. The value is immutable once stored.
func (k *Key[V, D]) SetData(d D) {
	k.data = d
}

// HasData reports whether keys of this type carry a payload. It depends
// only on D.
func (k *Key[V, D]) HasData() bool {
	return hasData[D]()
}

// Label is the index the key is stored under, "" for external keys.
func (k *Key[V, D]) Label() string {
	return k.label
}

// External reports whether the key only exists as a graph vertex.
func (k *Key[V, D]) External() bool {
	return k.kind == kindExternal
}

// Ref is the arena handle of the key, unique within its Grove.
func (k *Key[V, D]) Ref() uint32 {
	return k.ref
}

// Equal reports whether a and b hold equal values under kt and, when D is
// not NoData, equal payloads. Payloads are compared with cmp.Equal and
// opts; payload structs with unexported fields need an option such as
// cmp.AllowUnexported, or cmp.Equal panics.
func Equal[V, D any](kt types.KeyType[V], a, b *Key[V, D], opts ...cmp.Option) bool {
	if a == nil || b == nil {
		return a == b
	}
	if kt.Compare(a.value, b.value) != 0 {
		return false
	}
	if !hasData[D]() {
		return true
	}
	return cmp.Equal(a.data, b.data, opts...)
}

func hasData[D any]() bool {
	var d D
	_, none := any(d).(NoData)
	return !none
}
