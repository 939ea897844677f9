// Package graph holds the directed edge overlay of a grove. Vertices are
// arena handles (uint32) issued by the grove; the overlay never owns keys.
package graph

import (
	"slices"

	"github.com/pkg/errors"
)

// ErrDuplicateEdge is returned by AddEdge under the Reject policy.
var ErrDuplicateEdge = errors.New("edge already exists")

// DuplicatePolicy decides what AddEdge does when the ordered pair is
// already connected.
type DuplicatePolicy int

const (
	// AllowMulti keeps parallel edges, each with its own metadata.
	AllowMulti DuplicatePolicy = iota
	// Reject refuses the second edge with ErrDuplicateEdge.
	Reject
	// Overwrite replaces the metadata of the existing edge.
	Overwrite
)

func (p DuplicatePolicy) String() string {
	switch p {
	case AllowMulti:
		return "multi"
	case Reject:
		return "reject"
	case Overwrite:
		return "overwrite"
	}
	return "unknown"
}

// ParsePolicy is the inverse of DuplicatePolicy.String.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "multi":
		return AllowMulti, nil
	case "reject":
		return Reject, nil
	case "overwrite":
		return Overwrite, nil
	}
	return AllowMulti, errors.Errorf("unknown duplicate edge policy %q", s)
}

// Target is one outgoing edge of a vertex.
type Target[E any] struct {
	To   uint32
	Meta E
}

// Edge is a (source, target, metadata) triple as listed by EdgeList.
type Edge[E any] struct {
	From uint32
	To   uint32
	Meta E
}

// Overlay stores directed edges by source handle. Targets keep insertion
// order. It is not safe for concurrent use.
type Overlay[E any] struct {
	policy DuplicatePolicy
	out    map[uint32][]Target[E]
	edges  int
}

// New returns an empty overlay with the given duplicate policy.
func New[E any](policy DuplicatePolicy) *Overlay[E] {
	return &Overlay[E]{
		policy: policy,
		out:    make(map[uint32][]Target[E]),
	}
}

func (o *Overlay[E]) Policy() DuplicatePolicy {
	return o.policy
}

// AddEdge records from -> to carrying meta.
func (o *Overlay[E]) AddEdge(from, to uint32, meta E) error {
	targets := o.out[from]
	if o.policy != AllowMulti {
		if i := indexOf(targets, to); i >= 0 {
			if o.policy == Reject {
				return errors.Wrapf(ErrDuplicateEdge, "%d -> %d", from, to)
			}
			targets[i].Meta = meta
			return nil
		}
	}
	o.out[from] = append(targets, Target[E]{To: to, Meta: meta})
	o.edges++
	return nil
}

// RemoveEdge deletes every edge from -> to and returns how many were
// removed. Removing an absent edge is a no-op.
func (o *Overlay[E]) RemoveEdge(from, to uint32) int {
	targets, ok := o.out[from]
	if !ok {
		return 0
	}
	kept := slices.DeleteFunc(targets, func(t Target[E]) bool { return t.To == to })
	removed := len(targets) - len(kept)
	if len(kept) == 0 {
		delete(o.out, from)
	} else {
		o.out[from] = kept
	}
	o.edges -= removed
	return removed
}

func (o *Overlay[E]) HasEdge(from, to uint32) bool {
	return indexOf(o.out[from], to) >= 0
}

// Edges returns a copy of the outgoing edges of from.
func (o *Overlay[E]) Edges(from uint32) []Target[E] {
	return slices.Clone(o.out[from])
}

// EdgeList returns every edge, sources ascending, targets in insertion order.
func (o *Overlay[E]) EdgeList() []Edge[E] {
	out := make([]Edge[E], 0, o.edges)
	for _, from := range o.sources() {
		for _, t := range o.out[from] {
			out = append(out, Edge[E]{From: from, To: t.To, Meta: t.Meta})
		}
	}
	return out
}

// Neighbors returns the targets of from. A target reached by parallel
// edges appears once per edge.
func (o *Overlay[E]) Neighbors(from uint32) []uint32 {
	return o.NeighborsIf(from, nil)
}

// NeighborsIf returns the targets of from whose edge metadata satisfies
// pred. A nil pred accepts every edge.
func (o *Overlay[E]) NeighborsIf(from uint32, pred func(E) bool) []uint32 {
	targets := o.out[from]
	if len(targets) == 0 {
		return nil
	}
	out := make([]uint32, 0, len(targets))
	for _, t := range targets {
		if pred == nil || pred(t.Meta) {
			out = append(out, t.To)
		}
	}
	return out
}

func (o *Overlay[E]) OutDegree(from uint32) int {
	return len(o.out[from])
}

func (o *Overlay[E]) EdgeCount() int {
	return o.edges
}

// VertexCount returns the number of distinct handles that are the source
// or target of at least one edge.
func (o *Overlay[E]) VertexCount() int {
	seen := make(map[uint32]struct{}, len(o.out)*2)
	for from, targets := range o.out {
		seen[from] = struct{}{}
		for _, t := range targets {
			seen[t.To] = struct{}{}
		}
	}
	return len(seen)
}

// VertexCountWithOutEdges returns the number of handles with out-degree > 0.
func (o *Overlay[E]) VertexCountWithOutEdges() int {
	return len(o.out)
}

// Clear removes every edge.
func (o *Overlay[E]) Clear() {
	clear(o.out)
	o.edges = 0
}

func (o *Overlay[E]) Empty() bool {
	return o.edges == 0
}

func (o *Overlay[E]) sources() []uint32 {
	out := make([]uint32, 0, len(o.out))
	for from := range o.out {
		out = append(out, from)
	}
	slices.Sort(out)
	return out
}

func indexOf[E any](targets []Target[E], to uint32) int {
	return slices.IndexFunc(targets, func(t Target[E]) bool { return t.To == to })
}
