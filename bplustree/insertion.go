package bplus

// Insert adds key with its arena ref by full root-to-leaf descent. Any key
// order is accepted. When Aggregate fails on the new key, it is not stored.
func (t *Tree[V]) Insert(key V, ref uint32) error {
	// If tree is empty
	if t.root == 0 {
		t.newRootLeaf(key, ref)
		return nil
	}

	//find leaf
	leaf := t.findLeaf(key)

	// widen first: a failing Aggregate leaves the tree without the key
	if err := t.widenPath(leaf, key); err != nil {
		return err
	}
	i := upperBound(leaf.keys, key, t.kt.Compare)
	leaf.keys = insertAt(leaf.keys, i, key)
	leaf.refs = insertAt(leaf.refs, i, ref)
	t.size++

	if len(leaf.keys) > t.order {
		return t.splitLeaf(leaf)
	}
	return nil
}

func (t *Tree[V]) newRootLeaf(key V, ref uint32) {
	root := t.newNode(NodeLeaf)
	root.keys = append(root.keys, key)
	root.refs = append(root.refs, ref)
	root.summary = key
	t.root = root.id
	t.rightmost = root.id
	t.size = 1
}
