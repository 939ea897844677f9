package bplus

// newNode allocates a node of the given type in the tree's node store.
func (t *Tree[V]) newNode(nodeType NodeType) *Node[V] {
	n := &Node[V]{
		nodeType: nodeType,
		keys:     make([]V, 0, t.order+1),
	}
	if nodeType == NodeInternal {
		n.children = make([]int64, 0, t.order+2)
	} else {
		n.refs = make([]uint32, 0, t.order+1)
	}
	t.nodes.put(n)
	return n
}
