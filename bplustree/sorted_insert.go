package bplus

// CheckAppend reports a *PreconditionError if key would break the order of
// the tree when appended, i.e. key < Max().
func (t *Tree[V]) CheckAppend(key V) error {
	maxKey, ok := t.Max()
	if ok && t.kt.Compare(key, maxKey) < 0 {
		return &PreconditionError{
			Op:    "sorted",
			Key:   t.kt.Format(key),
			Bound: t.kt.Format(maxKey),
			Index: -1,
		}
	}
	return nil
}

// InsertSorted appends key to the cached rightmost leaf without descending
// from the root. key must be >= Max(); otherwise a *PreconditionError is
// returned and the tree is unchanged.
func (t *Tree[V]) InsertSorted(key V, ref uint32) error {
	if err := t.CheckAppend(key); err != nil {
		return err
	}
	return t.appendRightmost(key, ref)
}

// appendRightmost assumes the order precondition has been checked.
func (t *Tree[V]) appendRightmost(key V, ref uint32) error {
	if t.root == 0 {
		t.newRootLeaf(key, ref)
		return nil
	}
	leaf := t.nodes.get(t.rightmost)
	if err := t.widenPath(leaf, key); err != nil {
		return err
	}
	leaf.keys = append(leaf.keys, key)
	leaf.refs = append(leaf.refs, ref)
	t.size++

	if len(leaf.keys) > t.order {
		// splitLeaf moves the rightmost cache to the new sibling
		return t.splitLeaf(leaf)
	}
	return nil
}
