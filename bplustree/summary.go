package bplus

import "github.com/pkg/errors"

// merge aggregates two summaries.
func (t *Tree[V]) merge(a, b V) (V, error) {
	v, err := t.kt.Aggregate([]V{a, b})
	if err != nil {
		return v, errors.Wrap(err, "aggregate summaries")
	}
	return v, nil
}

// resummarize recomputes n.summary from its own keys or children.
func (t *Tree[V]) resummarize(n *Node[V]) error {
	var vals []V
	if n.isLeaf() {
		vals = n.keys
	} else {
		vals = make([]V, len(n.children))
		for i, cid := range n.children {
			vals[i] = t.nodes.get(cid).summary
		}
	}
	s, err := t.kt.Aggregate(vals)
	if err != nil {
		return errors.Wrapf(err, "summarize node %d", n.id)
	}
	n.summary = s
	return nil
}

// widenPath folds v into the summary of n and of every ancestor. It does
// not touch keys, so on error the summaries are at worst wider than needed.
func (t *Tree[V]) widenPath(n *Node[V], v V) error {
	for ; n != nil; n = t.nodes.get(n.parent) {
		s, err := t.merge(n.summary, v)
		if err != nil {
			return err
		}
		n.summary = s
	}
	return nil
}
