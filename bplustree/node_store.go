package bplus

// nodeStore owns every node of one tree. Nodes are addressed by their index;
// slot 0 is reserved so that id 0 can mean "no node".
type nodeStore[V any] struct {
	nodes []*Node[V]
}

func newNodeStore[V any]() *nodeStore[V] {
	return &nodeStore[V]{
		nodes: make([]*Node[V], 1, 64),
	}
}

// put assigns the next id to n and stores it.
func (s *nodeStore[V]) put(n *Node[V]) {
	n.id = int64(len(s.nodes))
	s.nodes = append(s.nodes, n)
}

// get returns the node for id, nil for 0 or unknown ids.
func (s *nodeStore[V]) get(id int64) *Node[V] {
	if id <= 0 || id >= int64(len(s.nodes)) {
		return nil
	}
	return s.nodes[id]
}

func (s *nodeStore[V]) len() int {
	return len(s.nodes) - 1
}

func (s *nodeStore[V]) reset() {
	clear(s.nodes)
	s.nodes = s.nodes[:1]
}
