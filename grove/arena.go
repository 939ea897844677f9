package grove

import "fmt"

const (
	chunkShift = 12
	chunkSize  = 1 << chunkShift
	chunkMask  = chunkSize - 1

	maxKeys = 1<<32 - 1
)

// arena is the append-only key store. Keys live in fixed-size chunks that
// are never reallocated, so a *Key stays valid as the arena grows.
type arena[V, D any] struct {
	chunks [][]Key[V, D]
	n      int
}

func (a *arena[V, D]) alloc(value V, data D, label string, kind keyKind) *Key[V, D] {
	if uint64(a.n) >= maxKeys {
		panic(fmt.Sprintf("grove: key arena full (%d keys)", a.n))
	}
	if a.n&chunkMask == 0 {
		a.chunks = append(a.chunks, make([]Key[V, D], 0, chunkSize))
	}
	last := len(a.chunks) - 1
	a.chunks[last] = append(a.chunks[last], Key[V, D]{
		value: value,
		data:  data,
		label: label,
		ref:   uint32(a.n),
		kind:  kind,
	})
	a.n++
	return &a.chunks[last][len(a.chunks[last])-1]
}

// truncate drops every key from ref n on. Only keys that were never handed
// out may be dropped.
func (a *arena[V, D]) truncate(n int) {
	for a.n > n {
		a.n--
		last := len(a.chunks) - 1
		chunk := a.chunks[last]
		chunk[len(chunk)-1] = Key[V, D]{}
		if chunk = chunk[:len(chunk)-1]; len(chunk) == 0 {
			a.chunks[last] = nil
			a.chunks = a.chunks[:last]
			continue
		}
		a.chunks[last] = chunk
	}
}

func (a *arena[V, D]) get(ref uint32) *Key[V, D] {
	if int(ref) >= a.n {
		return nil
	}
	return &a.chunks[ref>>chunkShift][ref&chunkMask]
}

// owns reports whether k was allocated by this arena.
func (a *arena[V, D]) owns(k *Key[V, D]) bool {
	return k != nil && a.get(k.ref) == k
}

func (a *arena[V, D]) len() int {
	return a.n
}
