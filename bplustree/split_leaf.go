package bplus

// splitLeaf splits an overflowing leaf and pushes the first key of the new
// right sibling into the parent.
func (t *Tree[V]) splitLeaf(leaf *Node[V]) error {
	mid := (len(leaf.keys) + 1) / 2

	right := t.newNode(NodeLeaf)
	right.keys = append(right.keys, leaf.keys[mid:]...)
	right.refs = append(right.refs, leaf.refs[mid:]...)
	right.next = leaf.next // right inherits leaf's old next pointer
	right.parent = leaf.parent

	clear(leaf.keys[mid:])
	leaf.keys = leaf.keys[:mid]
	leaf.refs = leaf.refs[:mid]
	leaf.next = right.id

	if t.rightmost == leaf.id {
		t.rightmost = right.id
	}

	if err := t.resummarize(leaf); err != nil {
		return err
	}
	if err := t.resummarize(right); err != nil {
		return err
	}

	sepKey := right.keys[0]
	if leaf.id == t.root {
		return t.createNewRoot(leaf, sepKey, right)
	}
	return t.insertIntoParent(leaf.parent, leaf.id, sepKey, right.id)
}
