package grove

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Mode selects the insertion path of InsertData.
type Mode int

const (
	// ModeUnsorted descends from the root; any order is accepted.
	ModeUnsorted Mode = iota
	// ModeSorted appends to the rightmost leaf and requires the value to
	// be >= the current maximum of the index.
	ModeSorted
)

func (m Mode) String() string {
	switch m {
	case ModeUnsorted:
		return "unsorted"
	case ModeSorted:
		return "sorted"
	}
	return "unknown"
}

// InsertData stores value with its payload under label, creating the index
// on first use. In ModeSorted a value below the index maximum is rejected
// with a *bplus.PreconditionError and nothing is stored. A key the tree
// refuses, for instance because Aggregate fails, gives its arena slot back.
func (g *Grove[V, D, E]) InsertData(label string, value V, data D, mode Mode) (*Key[V, D], error) {
	idx, created := g.indexFor(label)
	var err error
	switch mode {
	case ModeUnsorted:
	case ModeSorted:
		err = idx.tree.CheckAppend(value)
	default:
		err = errors.Errorf("unknown insert mode %d", mode)
	}
	if err != nil {
		g.dropIfEmpty(idx, created)
		return nil, errors.Wrapf(err, "insert into %s", label)
	}

	base, before := g.keys.len(), idx.tree.Len()
	k := g.keys.alloc(value, data, label, kindIndexed)
	if mode == ModeSorted {
		err = idx.tree.InsertSorted(value, k.ref)
	} else {
		err = idx.tree.Insert(value, k.ref)
	}
	if err != nil {
		g.rollback(idx, created, base, before)
		return nil, errors.Wrapf(err, "insert into %s", label)
	}
	g.gen++
	g.metrics.inserted(mode.String(), 1)
	return k, nil
}

// InsertDataBulk stores pre-sorted values under label through the bulk
// path and returns one key per value in input order. data is either empty
// or parallel to values. An empty index is built bottom-up; a non-empty
// one requires every value to be strictly greater than its maximum. On a
// precondition failure nothing is stored.
func (g *Grove[V, D, E]) InsertDataBulk(label string, values []V, data []D) ([]*Key[V, D], error) {
	if len(data) != 0 && len(data) != len(values) {
		return nil, errors.Wrapf(ErrDataLength, "%d values, %d payloads", len(values), len(data))
	}
	if len(values) == 0 {
		return nil, nil
	}
	idx, created := g.indexFor(label)
	if err := idx.tree.CheckBulk(values); err != nil {
		g.dropIfEmpty(idx, created)
		return nil, errors.Wrapf(err, "bulk insert into %s", label)
	}

	base, before := g.keys.len(), idx.tree.Len()
	keys := make([]*Key[V, D], len(values))
	refs := make([]uint32, len(values))
	var zero D
	for i, v := range values {
		d := zero
		if len(data) != 0 {
			d = data[i]
		}
		keys[i] = g.keys.alloc(v, d, label, kindIndexed)
		refs[i] = keys[i].ref
	}
	if err := idx.tree.InsertBulk(values, refs); err != nil {
		g.rollback(idx, created, base, before)
		return nil, errors.Wrapf(err, "bulk insert into %s", label)
	}
	g.gen++
	g.metrics.inserted("bulk", len(values))
	g.log.Debug("bulk insert",
		zap.String("label", label),
		zap.Int("keys", len(values)),
		zap.Bool("new_index", created),
		zap.Int("height", idx.tree.Height()))
	return keys, nil
}

// rollback releases the arena slots of keys a failed tree call did not
// store. Refs are handed to the tree in allocation order, so the ones it
// kept are the first Len()-before.
func (g *Grove[V, D, E]) rollback(idx *index[V], created bool, base, before int) {
	stored := idx.tree.Len() - before
	if stored > 0 {
		g.gen++
	}
	g.keys.truncate(base + stored)
	g.dropIfEmpty(idx, created)
}

// AddExternalKey stores a key that is only a graph vertex: it belongs to
// no index and never appears in Intersect results.
func (g *Grove[V, D, E]) AddExternalKey(value V, data D) *Key[V, D] {
	k := g.keys.alloc(value, data, "", kindExternal)
	g.external++
	g.metrics.inserted("external", 1)
	return k
}
