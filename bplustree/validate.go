package bplus

import "github.com/pkg/errors"

// ErrInvalid is the cause of every Validate failure.
var ErrInvalid = errors.New("invalid tree")

// Validate checks the structural invariants: key order along the leaf chain,
// separator ranges, entry bounds, parent links, equal leaf depth, summaries,
// the rightmost-leaf cache and the key count.
func (t *Tree[V]) Validate() error {
	if t.root == 0 {
		if t.size != 0 || t.rightmost != 0 {
			return errors.Wrap(ErrInvalid, "empty tree with size or rightmost set")
		}
		return nil
	}
	root := t.nodes.get(t.root)
	if root.parent != 0 {
		return errors.Wrapf(ErrInvalid, "root %d has parent %d", root.id, root.parent)
	}
	leafDepth := -1
	var leaves []*Node[V]
	var walk func(n *Node[V], depth int, lo, hi *V) error
	walk = func(n *Node[V], depth int, lo, hi *V) error {
		if n.entries() > t.order {
			return errors.Wrapf(ErrInvalid, "node %d has %d entries, order %d", n.id, n.entries(), t.order)
		}
		if n.id != t.root && n.entries() < minEntries(t.order) {
			return errors.Wrapf(ErrInvalid, "node %d has %d entries, min %d", n.id, n.entries(), minEntries(t.order))
		}
		for i := 1; i < len(n.keys); i++ {
			if t.kt.Compare(n.keys[i-1], n.keys[i]) > 0 {
				return errors.Wrapf(ErrInvalid, "node %d keys out of order at %d", n.id, i)
			}
		}
		for _, k := range n.keys {
			if lo != nil && t.kt.Compare(k, *lo) < 0 {
				return errors.Wrapf(ErrInvalid, "node %d key %s below separator %s", n.id, t.kt.Format(k), t.kt.Format(*lo))
			}
			if hi != nil && t.kt.Compare(k, *hi) > 0 {
				return errors.Wrapf(ErrInvalid, "node %d key %s above separator %s", n.id, t.kt.Format(k), t.kt.Format(*hi))
			}
		}
		want := *n
		if err := t.resummarize(&want); err != nil {
			return err
		}
		if t.kt.Compare(want.summary, n.summary) != 0 || t.kt.Format(want.summary) != t.kt.Format(n.summary) {
			return errors.Wrapf(ErrInvalid, "node %d summary %s, want %s", n.id, t.kt.Format(n.summary), t.kt.Format(want.summary))
		}

		if n.isLeaf() {
			if len(n.refs) != len(n.keys) {
				return errors.Wrapf(ErrInvalid, "leaf %d has %d keys and %d refs", n.id, len(n.keys), len(n.refs))
			}
			if leafDepth == -1 {
				leafDepth = depth
			} else if leafDepth != depth {
				return errors.Wrapf(ErrInvalid, "leaf %d at depth %d, others at %d", n.id, depth, leafDepth)
			}
			leaves = append(leaves, n)
			return nil
		}
		if len(n.children) != len(n.keys)+1 {
			return errors.Wrapf(ErrInvalid, "node %d has %d keys and %d children", n.id, len(n.keys), len(n.children))
		}
		for i, cid := range n.children {
			child := t.nodes.get(cid)
			if child == nil {
				return errors.Wrapf(ErrInvalid, "node %d child %d missing", n.id, cid)
			}
			if child.parent != n.id {
				return errors.Wrapf(ErrInvalid, "node %d parent is %d, want %d", cid, child.parent, n.id)
			}
			clo, chi := lo, hi
			if i > 0 {
				clo = &n.keys[i-1]
			}
			if i < len(n.keys) {
				chi = &n.keys[i]
			}
			if err := walk(child, depth+1, clo, chi); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root, 0, nil, nil); err != nil {
		return err
	}

	count := 0
	for i, leaf := range leaves {
		count += len(leaf.keys)
		var wantNext int64
		if i+1 < len(leaves) {
			wantNext = leaves[i+1].id
			if t.kt.Compare(leaf.keys[len(leaf.keys)-1], leaves[i+1].keys[0]) > 0 {
				return errors.Wrapf(ErrInvalid, "leaf %d ends after leaf %d starts", leaf.id, leaves[i+1].id)
			}
		}
		if leaf.next != wantNext {
			return errors.Wrapf(ErrInvalid, "leaf %d next is %d, want %d", leaf.id, leaf.next, wantNext)
		}
	}
	if count != t.size {
		return errors.Wrapf(ErrInvalid, "size %d, counted %d", t.size, count)
	}
	if last := leaves[len(leaves)-1].id; t.rightmost != last {
		return errors.Wrapf(ErrInvalid, "rightmost cache %d, want %d", t.rightmost, last)
	}
	return nil
}
