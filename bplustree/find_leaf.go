package bplus

// findLeaf descends to the leaf where key belongs. Equal keys go right of
// existing ones.
func (t *Tree[V]) findLeaf(key V) *Node[V] {
	nodeId := t.root
	for {
		n := t.nodes.get(nodeId)
		if n == nil {
			return nil
		}
		if n.isLeaf() {
			return n
		}
		i := upperBound(n.keys, key, t.kt.Compare)
		if i >= len(n.children) {
			i = len(n.children) - 1
		}
		nodeId = n.children[i]
	}
}

// findLeafGE descends to the leftmost leaf that may contain a key >= target.
func (t *Tree[V]) findLeafGE(target V) *Node[V] {
	nodeId := t.root
	for {
		n := t.nodes.get(nodeId)
		if n == nil {
			return nil
		}
		if n.isLeaf() {
			return n
		}
		i := lowerBound(n.keys, target, t.kt.Compare)
		if i >= len(n.children) {
			i = len(n.children) - 1
		}
		nodeId = n.children[i]
	}
}
