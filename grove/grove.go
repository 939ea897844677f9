// Package grove is a multi-index interval store: one B+ tree per index
// label over a shared append-only key arena, plus a directed graph overlay
// between stored and external keys.
package grove

import (
	"fmt"
	"io"

	"genogrove/bplustree"
	"genogrove/graph"
	"genogrove/registry"
	"genogrove/types"

	"github.com/google/btree"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrForeignKey is returned when a key from another grove is used.
	ErrForeignKey = errors.New("key does not belong to this grove")
	// ErrDataLength is returned by InsertDataBulk when payloads and values
	// differ in count.
	ErrDataLength = errors.New("payload count does not match value count")
)

const labelDegree = 8

// index is the per-label tree.
type index[V any] struct {
	label string
	id    uint32 // registry id, used by the file format
	tree  *bplus.Tree[V]
}

func lessIndex[V any](a, b *index[V]) bool {
	return a.label < b.label
}

// Grove owns the key arena, the per-label trees and the graph overlay.
// V is the key value, D the payload (NoData for none) and E the edge
// metadata (struct{} for none). A Grove is not safe for concurrent use.
type Grove[V, D, E any] struct {
	kt       types.KeyType[V]
	opts     options
	keys     arena[V, D]
	indices  *btree.BTreeG[*index[V]]
	registry *registry.IndexRegistry
	graph    *graph.Overlay[E]
	codec    DataCodec[D]
	external int
	gen      uint64 // bumped on every tree mutation, part of cache keys
	cache    *queryCache[V, D]
	metrics  *metrics
	log      *zap.Logger
}

// New returns an empty grove ordered by kt.
func New[V, D, E any](kt types.KeyType[V], opts ...Option) (*Grove[V, D, E], error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	codec, err := codecFor[D](o)
	if err != nil {
		return nil, err
	}
	g := &Grove[V, D, E]{
		kt:       kt,
		opts:     o,
		indices:  btree.NewG[*index[V]](labelDegree, lessIndex[V]),
		registry: registry.NewIndexRegistry(),
		graph:    graph.New[E](o.edgePolicy),
		codec:    codec,
		metrics:  newMetrics(o.registerer),
		log:      o.logger.With(zap.String("key_type", kt.Name())),
	}
	if o.cacheCost > 0 {
		if g.cache, err = newQueryCache[V, D](o.cacheCost); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Close releases the query cache. The grove must not be used afterwards.
func (g *Grove[V, D, E]) Close() error {
	if g.cache != nil {
		g.cache.close()
		g.cache = nil
	}
	return nil
}

func (g *Grove[V, D, E]) KeyType() types.KeyType[V] {
	return g.kt
}

// Order is the node order used for new trees.
func (g *Grove[V, D, E]) Order() int {
	return g.opts.treeConfig().Order
}

func (g *Grove[V, D, E]) lookup(label string) (*index[V], bool) {
	return g.indices.Get(&index[V]{label: label})
}

// indexFor returns the tree for label, creating it on first use.
func (g *Grove[V, D, E]) indexFor(label string) (*index[V], bool) {
	if idx, ok := g.lookup(label); ok {
		return idx, false
	}
	idx := &index[V]{
		label: label,
		id:    g.registry.Register(label),
		tree:  bplus.NewTree(g.kt, g.opts.treeConfig()),
	}
	g.indices.ReplaceOrInsert(idx)
	g.log.Debug("created index", zap.String("label", label), zap.Uint32("id", idx.id))
	return idx, true
}

// dropIfEmpty removes an index created by a call that then failed.
func (g *Grove[V, D, E]) dropIfEmpty(idx *index[V], created bool) {
	if created && idx.tree.Empty() {
		g.indices.Delete(idx)
	}
}

// Labels returns the index labels in ascending order.
func (g *Grove[V, D, E]) Labels() []string {
	out := make([]string, 0, g.indices.Len())
	g.indices.Ascend(func(idx *index[V]) bool {
		out = append(out, idx.label)
		return true
	})
	return out
}

// Size returns the number of keys stored under label.
func (g *Grove[V, D, E]) Size(label string) int {
	if idx, ok := g.lookup(label); ok {
		return idx.tree.Len()
	}
	return 0
}

// IndexedVertexCount is the number of keys stored in any tree. It counts
// storage, not graph participation.
func (g *Grove[V, D, E]) IndexedVertexCount() int {
	n := 0
	g.indices.Ascend(func(idx *index[V]) bool {
		n += idx.tree.Len()
		return true
	})
	return n
}

// ExternalVertexCount is the number of keys added with AddExternalKey.
func (g *Grove[V, D, E]) ExternalVertexCount() int {
	return g.external
}

// Key returns the key with handle ref.
func (g *Grove[V, D, E]) Key(ref uint32) (*Key[V, D], bool) {
	k := g.keys.get(ref)
	return k, k != nil
}

// Keys returns the keys stored under label in key order.
func (g *Grove[V, D, E]) Keys(label string) []*Key[V, D] {
	idx, ok := g.lookup(label)
	if !ok {
		return nil
	}
	return g.resolve(idx.tree.Refs())
}

func (g *Grove[V, D, E]) resolve(refs []uint32) []*Key[V, D] {
	out := make([]*Key[V, D], len(refs))
	for i, r := range refs {
		out[i] = g.keys.get(r)
	}
	return out
}

// Owns reports whether k was issued by this grove.
func (g *Grove[V, D, E]) Owns(k *Key[V, D]) bool {
	return g.keys.owns(k)
}

func (g *Grove[V, D, E]) checkOwned(keys ...*Key[V, D]) error {
	for _, k := range keys {
		if !g.keys.owns(k) {
			if k == nil {
				return errors.Wrap(ErrForeignKey, "nil key")
			}
			return errors.Wrapf(ErrForeignKey, "key %s (ref %d)", g.kt.Format(k.value), k.ref)
		}
	}
	return nil
}

// Validate checks the structure of every tree.
func (g *Grove[V, D, E]) Validate() error {
	var err error
	g.indices.Ascend(func(idx *index[V]) bool {
		if err = idx.tree.Validate(); err != nil {
			err = errors.Wrapf(err, "index %s", idx.label)
		}
		return err == nil
	})
	return err
}

// Inspect writes a dump of every tree to w.
func (g *Grove[V, D, E]) Inspect(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "grove key_type=%s indices=%d keys=%d external=%d edges=%d\n",
		g.kt.Name(), g.indices.Len(), g.keys.len(), g.external, g.graph.EdgeCount()); err != nil {
		return err
	}
	var err error
	g.indices.Ascend(func(idx *index[V]) bool {
		if _, err = fmt.Fprintf(w, "index %q (id %d)\n", idx.label, idx.id); err != nil {
			return false
		}
		err = idx.tree.Inspect(w)
		return err == nil
	})
	return err
}
