// Structure of the per-index B+ Tree
/*
Tree
 ├── Internal Node (separators + child ids + subtree summary)
 │      └── Child Internal Nodes ...
 │             └── Leaf Nodes (keys + arena refs + next id + summary)


- keys: sorted ascending order by KeyType.Compare, duplicates allowed
- internal nodes: children length == len(keys)+1
- child i holds keys in [keys[i-1], keys[i]]
- leaf nodes: refs length == len(keys)
- leaf nodes linked with `next` for range scans
- all leaf nodes at same depth
- summary: KeyType.Aggregate over everything below the node
- nodes are addressed by int64 ids into the node store, 0 means none

*/
package bplus

import (
	"genogrove/types"

	"go.uber.org/zap"
)

type NodeType int

const (
	NodeInternal NodeType = iota
	NodeLeaf
)

const (
	DefaultOrder = 32
	MinOrder     = 3

	DefaultBulkFill = 0.85
	MinBulkFill     = 0.75
	MaxBulkFill     = 0.90
)

type Node[V any] struct {
	id       int64
	nodeType NodeType
	keys     []V      // keys in the node (sorted keys)
	children []int64  // only for internal node
	refs     []uint32 // only for leaf node, handles into the grove key arena
	next     int64    // only for leaf node
	parent   int64
	summary  V
}

// entries is what the order bounds: keys for a leaf, children for an internal node.
func (n *Node[V]) entries() int {
	if n.nodeType == NodeLeaf {
		return len(n.keys)
	}
	return len(n.children)
}

func (n *Node[V]) isLeaf() bool {
	return n.nodeType == NodeLeaf
}

type Tree[V any] struct {
	kt        types.KeyType[V]
	bounded   types.Bounded[V] // nil when the key type cannot stop scans early
	order     int
	fill      float64
	nodes     *nodeStore[V]
	root      int64 // root node id
	rightmost int64 // cached rightmost leaf id
	size      int
	log       *zap.Logger
}

// Config holds tree parameters.
type Config struct {
	Order    int         // max entries per node, default 32
	BulkFill float64     // target leaf utilisation for bulk loads, default 0.85
	Logger   *zap.Logger // default zap.NewNop()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Order:    DefaultOrder,
		BulkFill: DefaultBulkFill,
		Logger:   zap.NewNop(),
	}
}

// OrDefault returns DefaultConfig if c is nil, otherwise normalizes c.
func (c *Config) OrDefault() *Config {
	if c == nil {
		return DefaultConfig()
	}
	if c.Order < MinOrder {
		c.Order = DefaultOrder
	}
	if c.BulkFill <= 0 {
		c.BulkFill = DefaultBulkFill
	}
	c.BulkFill = min(max(c.BulkFill, MinBulkFill), MaxBulkFill)
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c
}

func minEntries(order int) int {
	return (order + 1) / 2
}
