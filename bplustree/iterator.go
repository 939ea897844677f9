package bplus

// Iterator provides a forward-only scan over the leaf chain.
type Iterator[V any] struct {
	tree  *Tree[V]
	leaf  *Node[V]
	index int
	valid bool
}

// SeekFirst positions the iterator at the smallest key.
func (t *Tree[V]) SeekFirst() *Iterator[V] {
	it := &Iterator[V]{tree: t}
	it.leaf = t.leftmostLeaf()
	it.valid = it.leaf != nil && len(it.leaf.keys) > 0
	return it
}

// SeekGE positions the iterator at the first key >= target.
func (t *Tree[V]) SeekGE(target V) *Iterator[V] {
	it := &Iterator[V]{tree: t}
	leaf := t.findLeafGE(target)
	if leaf == nil || len(leaf.keys) == 0 {
		return it
	}
	i := lowerBound(leaf.keys, target, t.kt.Compare)
	if i >= len(leaf.keys) {
		// move to next leaf if present
		next := t.nodes.get(leaf.next)
		if next == nil || len(next.keys) == 0 {
			return it
		}
		leaf, i = next, 0
	}
	it.leaf = leaf
	it.index = i
	it.valid = true
	return it
}

// Valid reports whether the iterator points at a key.
func (it *Iterator[V]) Valid() bool {
	return it.valid
}

// Next advances the iterator. Returns false when exhausted.
func (it *Iterator[V]) Next() bool {
	if !it.valid {
		return false
	}
	it.index++
	if it.index < len(it.leaf.keys) {
		return true
	}
	// move to next leaf
	next := it.tree.nodes.get(it.leaf.next)
	if next == nil || len(next.keys) == 0 {
		it.valid = false
		return false
	}
	it.leaf = next
	it.index = 0
	return true
}

// Key returns the current key.
func (it *Iterator[V]) Key() V {
	if !it.valid {
		var zero V
		return zero
	}
	return it.leaf.keys[it.index]
}

// Ref returns the arena ref stored with the current key.
func (it *Iterator[V]) Ref() uint32 {
	if !it.valid {
		return 0
	}
	return it.leaf.refs[it.index]
}

// Refs returns every stored ref in key order.
func (t *Tree[V]) Refs() []uint32 {
	out := make([]uint32, 0, t.size)
	for it := t.SeekFirst(); it.Valid(); it.Next() {
		out = append(out, it.Ref())
	}
	return out
}
