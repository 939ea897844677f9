package bplus

// splitInternal splits a node holding order+1 children and promotes the
// separator between the two halves.
func (t *Tree[V]) splitInternal(node *Node[V]) error {
	// left keeps children [0:lc), right gets [lc:)
	// keys: left keeps [0:lc-1), promote key[lc-1], right gets [lc:)
	lc := (len(node.children) + 1) / 2
	promote := node.keys[lc-1]

	right := t.newNode(NodeInternal)
	right.keys = append(right.keys, node.keys[lc:]...)
	right.children = append(right.children, node.children[lc:]...)
	right.parent = node.parent

	// update parent pointers for children moved to right
	for _, cid := range right.children {
		t.nodes.get(cid).parent = right.id
	}

	// shrink left node
	clear(node.keys[lc-1:])
	node.keys = node.keys[:lc-1]
	node.children = node.children[:lc]

	if err := t.resummarize(node); err != nil {
		return err
	}
	if err := t.resummarize(right); err != nil {
		return err
	}

	if node.id == t.root {
		return t.createNewRoot(node, promote, right)
	}
	// insert promote into parent
	return t.insertIntoParent(node.parent, node.id, promote, right.id)
}

// createNewRoot grows the tree by one level above left and right.
func (t *Tree[V]) createNewRoot(left *Node[V], sepKey V, right *Node[V]) error {
	newRoot := t.newNode(NodeInternal)
	newRoot.keys = append(newRoot.keys, sepKey)
	newRoot.children = append(newRoot.children, left.id, right.id)
	left.parent = newRoot.id
	right.parent = newRoot.id
	t.root = newRoot.id
	return t.resummarize(newRoot)
}
