package bplus

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrLengthMismatch is returned when keys and refs differ in length.
var ErrLengthMismatch = errors.New("keys and refs differ in length")

// CheckBulk validates keys for InsertBulk without modifying the tree: keys
// must be ascending and, when the tree already holds data, strictly greater
// than Max().
func (t *Tree[V]) CheckBulk(keys []V) error {
	for i := 1; i < len(keys); i++ {
		if t.kt.Compare(keys[i], keys[i-1]) < 0 {
			return &PreconditionError{
				Op:    "bulk",
				Key:   t.kt.Format(keys[i]),
				Bound: t.kt.Format(keys[i-1]),
				Index: i,
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}
	if maxKey, ok := t.Max(); ok && t.kt.Compare(keys[0], maxKey) <= 0 {
		return &PreconditionError{
			Op:     "bulk",
			Key:    t.kt.Format(keys[0]),
			Bound:  t.kt.Format(maxKey),
			Index:  0,
			Strict: true,
		}
	}
	return nil
}

// InsertBulk inserts pre-sorted keys. An empty tree is built bottom-up in
// O(n) with leaves packed to the configured fill factor; a non-empty tree
// gets the keys appended through the rightmost leaf. On a precondition
// failure nothing is inserted.
func (t *Tree[V]) InsertBulk(keys []V, refs []uint32) error {
	if len(keys) != len(refs) {
		return errors.Wrapf(ErrLengthMismatch, "%d keys, %d refs", len(keys), len(refs))
	}
	if err := t.CheckBulk(keys); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if t.root != 0 {
		for i := range keys {
			if err := t.appendRightmost(keys[i], refs[i]); err != nil {
				return err
			}
		}
		return nil
	}
	return t.buildBottomUp(keys, refs)
}

// buildBottomUp packs the leaves, links them, then builds internal levels
// from the leaf separators until one root remains.
func (t *Tree[V]) buildBottomUp(keys []V, refs []uint32) error {
	target := t.bulkTarget()

	level := make([]*Node[V], 0, len(keys)/target+1)
	firsts := make([]V, 0, cap(level)) // smallest key below each node of the level
	var prev *Node[V]
	start := 0
	for _, n := range packSizes(len(keys), target, t.order) {
		leaf := t.newNode(NodeLeaf)
		leaf.keys = append(leaf.keys, keys[start:start+n]...)
		leaf.refs = append(leaf.refs, refs[start:start+n]...)
		if err := t.resummarize(leaf); err != nil {
			return err
		}
		if prev != nil {
			prev.next = leaf.id
		}
		prev = leaf
		level = append(level, leaf)
		firsts = append(firsts, leaf.keys[0])
		start += n
	}
	leaves := len(level)

	for len(level) > 1 {
		var upper []*Node[V]
		var upperFirsts []V
		start = 0
		for _, n := range packSizes(len(level), target, t.order) {
			node := t.newNode(NodeInternal)
			for i := start; i < start+n; i++ {
				if i > start {
					node.keys = append(node.keys, firsts[i])
				}
				node.children = append(node.children, level[i].id)
				level[i].parent = node.id
			}
			if err := t.resummarize(node); err != nil {
				return err
			}
			upper = append(upper, node)
			upperFirsts = append(upperFirsts, firsts[start])
			start += n
		}
		level, firsts = upper, upperFirsts
	}

	t.root = level[0].id
	t.size = len(keys)
	t.recomputeRightmost()
	t.log.Debug("bulk loaded tree",
		zap.Int("keys", len(keys)),
		zap.Int("leaves", leaves),
		zap.Int("height", t.Height()),
		zap.Int("target_fill", target))
	return nil
}

// bulkTarget is the number of entries per node aimed for by bulk loads.
func (t *Tree[V]) bulkTarget() int {
	target := int(float64(t.order)*t.fill + 0.5)
	return min(max(target, minEntries(t.order)), t.order)
}

// packSizes splits n entries into groups of target entries. A short tail
// is merged into the previous group when it fits the order, or shared
// evenly with it otherwise, so that every group but a lone root holds at
// least minEntries(order).
func packSizes(n, target, order int) []int {
	if n <= order {
		return []int{n}
	}
	sizes := make([]int, 0, n/target+1)
	for rest := n; rest > 0; rest -= target {
		sizes = append(sizes, min(rest, target))
	}
	last := sizes[len(sizes)-1]
	if last >= minEntries(order) {
		return sizes
	}
	sizes = sizes[:len(sizes)-1]
	combined := sizes[len(sizes)-1] + last
	if combined <= order {
		sizes[len(sizes)-1] = combined
		return sizes
	}
	left := (combined + 1) / 2
	sizes[len(sizes)-1] = left
	return append(sizes, combined-left)
}
