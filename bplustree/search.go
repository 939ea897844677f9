package bplus

// Search returns the arena refs of every key overlapping query, in key order.
//
// The descent uses node summaries and separator ranges to find the first
// leaf that may hold a match; from there leaves are scanned along the next
// chain until the key type reports that the scan is past any possible match.
func (t *Tree[V]) Search(query V) []uint32 {
	var out []uint32
	t.Scan(query, func(_ V, ref uint32) bool {
		out = append(out, ref)
		return true
	})
	return out
}

// Scan calls fn for every key overlapping query until fn returns false.
func (t *Tree[V]) Scan(query V, fn func(key V, ref uint32) bool) {
	if t.root == 0 {
		return
	}
	leaf := t.firstCandidateLeaf(t.nodes.get(t.root), query)
	for leaf != nil {
		if len(leaf.keys) > 0 && t.beyond(leaf.keys[0], query) {
			return
		}
		if t.leafCandidate(leaf, query) {
			for i, k := range leaf.keys {
				if t.beyond(k, query) {
					return
				}
				if t.kt.Overlap(k, query) && !fn(k, leaf.refs[i]) {
					return
				}
			}
		}
		leaf = t.nodes.get(leaf.next)
	}
}

// firstCandidateLeaf returns the leftmost leaf below n that may hold a key
// overlapping query, or nil.
func (t *Tree[V]) firstCandidateLeaf(n *Node[V], query V) *Node[V] {
	if n.isLeaf() {
		if t.leafCandidate(n, query) {
			return n
		}
		return nil
	}
	for i, cid := range n.children {
		if i > 0 && t.beyond(n.keys[i-1], query) {
			// every key from here on is ordered past the query
			return nil
		}
		child := t.nodes.get(cid)
		if !t.childCandidate(n, i, child, query) {
			continue
		}
		if leaf := t.firstCandidateLeaf(child, query); leaf != nil {
			return leaf
		}
	}
	return nil
}

// childCandidate: the child summary overlaps query, or query falls inside
// the separator range [keys[i-1], keys[i]] where an equal key would live.
func (t *Tree[V]) childCandidate(parent *Node[V], i int, child *Node[V], query V) bool {
	if t.kt.Overlap(child.summary, query) {
		return true
	}
	if i > 0 && t.kt.Compare(parent.keys[i-1], query) > 0 {
		return false
	}
	if i < len(parent.keys) && t.kt.Compare(query, parent.keys[i]) > 0 {
		return false
	}
	return true
}

func (t *Tree[V]) leafCandidate(leaf *Node[V], query V) bool {
	if len(leaf.keys) == 0 {
		return false
	}
	if t.kt.Overlap(leaf.summary, query) {
		return true
	}
	return t.kt.Compare(leaf.keys[0], query) <= 0 && t.kt.Compare(query, leaf.keys[len(leaf.keys)-1]) <= 0
}

func (t *Tree[V]) beyond(key, query V) bool {
	return t.bounded != nil && t.bounded.Beyond(key, query)
}
