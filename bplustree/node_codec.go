package bplus

import (
	"encoding/binary"

	"genogrove/types"

	"github.com/pkg/errors"
)

// ErrCorrupt is returned when an encoded tree cannot be decoded.
var ErrCorrupt = errors.New("corrupt tree encoding")

const (
	nodeTagInternal = 0
	nodeTagLeaf     = 1

	maxDecodeDepth = 64
)

// AppendBinary serializes the tree structure to dst.
// Format:
//   - Header: order(uvarint), size(uvarint), hasRoot(1)
//   - Nodes in pre-order: tag(1), numKeys(uvarint), keys (KeyType encoding)
//   - For leaf nodes: one uvarint ref per key
//   - For internal nodes: numKeys+1 child nodes follow
//
// Summaries, parent ids, next links and the rightmost-leaf cache are not
// stored; Decode rebuilds them.
func (t *Tree[V]) AppendBinary(dst []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(t.order))
	dst = binary.AppendUvarint(dst, uint64(t.size))
	if t.root == 0 {
		return append(dst, 0)
	}
	dst = append(dst, 1)
	return t.appendNode(dst, t.nodes.get(t.root))
}

func (t *Tree[V]) appendNode(dst []byte, n *Node[V]) []byte {
	if n.isLeaf() {
		dst = append(dst, nodeTagLeaf)
	} else {
		dst = append(dst, nodeTagInternal)
	}
	dst = binary.AppendUvarint(dst, uint64(len(n.keys)))
	for _, k := range n.keys {
		dst = t.kt.AppendBinary(dst, k)
	}
	if n.isLeaf() {
		for _, r := range n.refs {
			dst = binary.AppendUvarint(dst, uint64(r))
		}
		return dst
	}
	for _, cid := range n.children {
		dst = t.appendNode(dst, t.nodes.get(cid))
	}
	return dst
}

// Decode rebuilds a tree from the front of src and returns the number of
// bytes consumed. The stored order overrides cfg.Order.
func Decode[V any](kt types.KeyType[V], src []byte, cfg *Config) (*Tree[V], int, error) {
	cfg = cfg.OrDefault()
	d := &decoder[V]{src: src}
	order, err := d.uvarint()
	if err != nil {
		return nil, 0, err
	}
	if order < MinOrder || order > 1<<16 {
		return nil, 0, errors.Wrapf(ErrCorrupt, "order %d", order)
	}
	cfg.Order = int(order)
	t := NewTree(kt, cfg)
	d.tree = t

	size, err := d.uvarint()
	if err != nil {
		return nil, 0, err
	}
	hasRoot, err := d.byte()
	if err != nil {
		return nil, 0, err
	}
	if hasRoot == 0 {
		if size != 0 {
			return nil, 0, errors.Wrapf(ErrCorrupt, "empty tree with size %d", size)
		}
		return t, d.off, nil
	}

	root, err := d.node(0, 0)
	if err != nil {
		return nil, 0, err
	}
	if uint64(d.keys) != size {
		return nil, 0, errors.Wrapf(ErrCorrupt, "decoded %d keys, header says %d", d.keys, size)
	}
	t.root = root.id
	t.size = d.keys
	t.recomputeRightmost()
	return t, d.off, nil
}

type decoder[V any] struct {
	tree     *Tree[V]
	src      []byte
	off      int
	keys     int
	prevLeaf *Node[V]
}

func (d *decoder[V]) uvarint() (uint64, error) {
	v, n := binary.Uvarint(d.src[d.off:])
	if n <= 0 {
		return 0, errors.Wrapf(ErrCorrupt, "bad uvarint at offset %d", d.off)
	}
	d.off += n
	return v, nil
}

func (d *decoder[V]) byte() (byte, error) {
	if d.off >= len(d.src) {
		return 0, errors.Wrapf(ErrCorrupt, "unexpected end at offset %d", d.off)
	}
	b := d.src[d.off]
	d.off++
	return b, nil
}

func (d *decoder[V]) node(parent int64, depth int) (*Node[V], error) {
	t := d.tree
	if depth > maxDecodeDepth {
		return nil, errors.Wrap(ErrCorrupt, "tree too deep")
	}
	tag, err := d.byte()
	if err != nil {
		return nil, err
	}
	if tag != nodeTagLeaf && tag != nodeTagInternal {
		return nil, errors.Wrapf(ErrCorrupt, "node tag %d", tag)
	}
	numKeys, err := d.uvarint()
	if err != nil {
		return nil, err
	}
	if numKeys > uint64(t.order) {
		return nil, errors.Wrapf(ErrCorrupt, "%d keys exceed order %d", numKeys, t.order)
	}

	var n *Node[V]
	if tag == nodeTagLeaf {
		if numKeys == 0 {
			return nil, errors.Wrap(ErrCorrupt, "empty leaf")
		}
		n = t.newNode(NodeLeaf)
	} else {
		if numKeys == 0 {
			return nil, errors.Wrap(ErrCorrupt, "internal node without separators")
		}
		n = t.newNode(NodeInternal)
	}
	n.parent = parent

	for i := uint64(0); i < numKeys; i++ {
		k, used, err := t.kt.DecodeBinary(d.src[d.off:])
		if err != nil {
			return nil, errors.Wrapf(err, "decode key at offset %d", d.off)
		}
		d.off += used
		n.keys = append(n.keys, k)
	}

	if n.isLeaf() {
		for i := uint64(0); i < numKeys; i++ {
			r, err := d.uvarint()
			if err != nil {
				return nil, err
			}
			if r > uint64(^uint32(0)) {
				return nil, errors.Wrapf(ErrCorrupt, "ref %d out of range", r)
			}
			n.refs = append(n.refs, uint32(r))
		}
		if d.prevLeaf != nil {
			d.prevLeaf.next = n.id
		}
		d.prevLeaf = n
		d.keys += len(n.keys)
	} else {
		for i := uint64(0); i <= numKeys; i++ {
			child, err := d.node(n.id, depth+1)
			if err != nil {
				return nil, err
			}
			n.children = append(n.children, child.id)
		}
	}
	if err := t.resummarize(n); err != nil {
		return nil, err
	}
	return n, nil
}
