package bplus

import "genogrove/types"

// NewTree creates an empty tree ordered by kt. Uses default config if cfg is nil.
func NewTree[V any](kt types.KeyType[V], cfg *Config) *Tree[V] {
	cfg = cfg.OrDefault()
	t := &Tree[V]{
		kt:    kt,
		order: cfg.Order,
		fill:  cfg.BulkFill,
		nodes: newNodeStore[V](),
		log:   cfg.Logger,
	}
	if b, ok := kt.(types.Bounded[V]); ok {
		t.bounded = b
	}
	return t
}

// Order returns the maximum number of entries per node.
func (t *Tree[V]) Order() int {
	return t.order
}

// Len returns the number of stored keys.
func (t *Tree[V]) Len() int {
	return t.size
}

// Empty reports whether the tree holds no keys.
func (t *Tree[V]) Empty() bool {
	return t.size == 0
}

// Height returns the number of levels, 0 for an empty tree.
func (t *Tree[V]) Height() int {
	h := 0
	for id := t.root; id != 0; {
		n := t.nodes.get(id)
		h++
		if n.isLeaf() {
			break
		}
		id = n.children[0]
	}
	return h
}

// NodeCount returns the number of allocated nodes.
func (t *Tree[V]) NodeCount() int {
	return t.nodes.len()
}

// Max returns the greatest key, false when the tree is empty.
func (t *Tree[V]) Max() (V, bool) {
	var zero V
	if t.rightmost == 0 {
		return zero, false
	}
	leaf := t.nodes.get(t.rightmost)
	if len(leaf.keys) == 0 {
		return zero, false
	}
	return leaf.keys[len(leaf.keys)-1], true
}

// Min returns the smallest key, false when the tree is empty.
func (t *Tree[V]) Min() (V, bool) {
	var zero V
	leaf := t.leftmostLeaf()
	if leaf == nil || len(leaf.keys) == 0 {
		return zero, false
	}
	return leaf.keys[0], true
}

func (t *Tree[V]) leftmostLeaf() *Node[V] {
	for id := t.root; id != 0; {
		n := t.nodes.get(id)
		if n.isLeaf() {
			return n
		}
		id = n.children[0]
	}
	return nil
}

// recomputeRightmost walks the rightmost spine; used after bulk loads and decoding.
func (t *Tree[V]) recomputeRightmost() {
	t.rightmost = 0
	for id := t.root; id != 0; {
		n := t.nodes.get(id)
		if n.isLeaf() {
			t.rightmost = id
			return
		}
		id = n.children[len(n.children)-1]
	}
}
