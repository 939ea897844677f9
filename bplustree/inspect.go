// Tree inspection for debugging.
// Use Inspect(w) to print a human-readable dump of one per-index tree.

package bplus

import (
	"fmt"
	"io"
	"strings"
)

// Inspect writes a level-by-level (BFS) dump of the tree to w: internal
// nodes with their separators and children, leaves with key -> arena ref.
func (t *Tree[V]) Inspect(w io.Writer) error {
	var err error
	p := func(format string, args ...interface{}) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	p("  order=%d keys=%d nodes=%d height=%d root=%d rightmost=%d\n",
		t.order, t.size, t.nodes.len(), t.Height(), t.root, t.rightmost)
	if t.root == 0 {
		p("  (empty tree)\n")
		return err
	}

	queue := []int64{t.root}
	level := 0
	for len(queue) > 0 {
		size := len(queue)
		p("  Level %d:\n", level)
		for i := 0; i < size; i++ {
			node := t.nodes.get(queue[i])
			keyStrs := make([]string, len(node.keys))
			for j, k := range node.keys {
				keyStrs[j] = t.kt.Format(k)
			}
			if !node.isLeaf() {
				p("    [node %d] INTERNAL summary=%s keys=[%s] children=%v\n",
					node.id, t.kt.Format(node.summary), strings.Join(keyStrs, " "), node.children)
				queue = append(queue, node.children...)
				continue
			}
			p("    [node %d] LEAF summary=%s numKeys=%d next=%d\n",
				node.id, t.kt.Format(node.summary), len(node.keys), node.next)
			for j := range node.keys {
				p("      %s -> %d\n", keyStrs[j], node.refs[j])
			}
		}
		queue = queue[size:]
		level++
	}
	return err
}
