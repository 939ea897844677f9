package bplus

import "github.com/pkg/errors"

// insertIntoParent inserts sepKey and rightId into the parent of leftId.
// If the parent overflows, it splits and propagates upward. The parent
// summary already covers both halves, so it is left untouched.
func (t *Tree[V]) insertIntoParent(parentId int64, leftId int64, sepKey V, rightId int64) error {
	parent := t.nodes.get(parentId)
	if parent == nil {
		return errors.Errorf("node %d has no parent %d", leftId, parentId)
	}

	// find index of leftId in parent's children
	idx := 0
	for idx < len(parent.children) && parent.children[idx] != leftId {
		idx++
	}
	if idx == len(parent.children) {
		return errors.Errorf("node %d is not a child of %d", leftId, parentId)
	}

	// keys: insert at idx, children: insert rightId at idx+1
	parent.keys = insertAt(parent.keys, idx, sepKey)
	parent.children = insertAt(parent.children, idx+1, rightId)
	t.nodes.get(rightId).parent = parent.id

	// if overflow, split internal and propagate
	if len(parent.children) > t.order {
		return t.splitInternal(parent)
	}
	return nil
}
