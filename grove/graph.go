package grove

import "genogrove/graph"

// Target is one outgoing edge as seen from a grove key.
type Target[V, D, E any] struct {
	To   *Key[V, D]
	Meta E
}

// Edge is a resolved edge of the overlay.
type Edge[V, D, E any] struct {
	From *Key[V, D]
	To   *Key[V, D]
	Meta E
}

// EdgePolicy is the duplicate policy the overlay was created with.
func (g *Grove[V, D, E]) EdgePolicy() graph.DuplicatePolicy {
	return g.graph.Policy()
}

// AddEdge records from -> to. Both keys must come from this grove.
func (g *Grove[V, D, E]) AddEdge(from, to *Key[V, D], meta E) error {
	if err := g.checkOwned(from, to); err != nil {
		return err
	}
	if err := g.graph.AddEdge(from.ref, to.ref, meta); err != nil {
		return err
	}
	g.metrics.setEdges(g.graph.EdgeCount())
	return nil
}

// RemoveEdge deletes every edge from -> to; absent edges are a no-op.
func (g *Grove[V, D, E]) RemoveEdge(from, to *Key[V, D]) error {
	if err := g.checkOwned(from, to); err != nil {
		return err
	}
	if g.graph.RemoveEdge(from.ref, to.ref) > 0 {
		g.metrics.setEdges(g.graph.EdgeCount())
	}
	return nil
}

// HasEdge reports whether from -> to exists. Foreign keys have no edges.
func (g *Grove[V, D, E]) HasEdge(from, to *Key[V, D]) bool {
	if !g.keys.owns(from) || !g.keys.owns(to) {
		return false
	}
	return g.graph.HasEdge(from.ref, to.ref)
}

// Edges returns the outgoing edges of from in insertion order.
func (g *Grove[V, D, E]) Edges(from *Key[V, D]) []Target[V, D, E] {
	if !g.keys.owns(from) {
		return nil
	}
	targets := g.graph.Edges(from.ref)
	if len(targets) == 0 {
		return nil
	}
	out := make([]Target[V, D, E], len(targets))
	for i, t := range targets {
		out[i] = Target[V, D, E]{To: g.keys.get(t.To), Meta: t.Meta}
	}
	return out
}

// EdgeList returns every edge, ordered by source handle.
func (g *Grove[V, D, E]) EdgeList() []Edge[V, D, E] {
	edges := g.graph.EdgeList()
	out := make([]Edge[V, D, E], len(edges))
	for i, e := range edges {
		out[i] = Edge[V, D, E]{From: g.keys.get(e.From), To: g.keys.get(e.To), Meta: e.Meta}
	}
	return out
}

// Neighbors returns the targets of from, once per edge.
func (g *Grove[V, D, E]) Neighbors(from *Key[V, D]) []*Key[V, D] {
	return g.NeighborsIf(from, nil)
}

// NeighborsIf returns the targets of from whose edge metadata satisfies
// pred; a nil pred accepts all.
func (g *Grove[V, D, E]) NeighborsIf(from *Key[V, D], pred func(E) bool) []*Key[V, D] {
	if !g.keys.owns(from) {
		return nil
	}
	refs := g.graph.NeighborsIf(from.ref, pred)
	if len(refs) == 0 {
		return nil
	}
	return g.resolve(refs)
}

func (g *Grove[V, D, E]) OutDegree(from *Key[V, D]) int {
	if !g.keys.owns(from) {
		return 0
	}
	return g.graph.OutDegree(from.ref)
}

func (g *Grove[V, D, E]) EdgeCount() int {
	return g.graph.EdgeCount()
}

// VertexCount counts distinct keys that are an endpoint of at least one
// edge. It is unrelated to IndexedVertexCount and ExternalVertexCount.
func (g *Grove[V, D, E]) VertexCount() int {
	return g.graph.VertexCount()
}

// VertexCountWithOutEdges counts distinct keys with at least one outgoing
// edge.
func (g *Grove[V, D, E]) VertexCountWithOutEdges() int {
	return g.graph.VertexCountWithOutEdges()
}

// ClearGraph removes every edge; keys are untouched.
func (g *Grove[V, D, E]) ClearGraph() {
	g.graph.Clear()
	g.metrics.setEdges(0)
}

func (g *Grove[V, D, E]) GraphEmpty() bool {
	return g.graph.Empty()
}

// LinkIf evaluates pred on each consecutive pair of keys and adds an edge
// a -> b carrying the returned metadata when pred reports true.
// Non-adjacent pairs are never compared. It returns the number of edges
// added; on error the edges added so far are kept.
func (g *Grove[V, D, E]) LinkIf(keys []*Key[V, D], pred func(a, b *Key[V, D]) (E, bool)) (int, error) {
	if err := g.checkOwned(keys...); err != nil {
		return 0, err
	}
	added := 0
	for i := 1; i < len(keys); i++ {
		meta, ok := pred(keys[i-1], keys[i])
		if !ok {
			continue
		}
		if err := g.graph.AddEdge(keys[i-1].ref, keys[i].ref, meta); err != nil {
			g.metrics.setEdges(g.graph.EdgeCount())
			return added, err
		}
		added++
	}
	g.metrics.setEdges(g.graph.EdgeCount())
	return added, nil
}

// Link is LinkIf for overlays without metadata: edges carry the zero E.
func (g *Grove[V, D, E]) Link(keys []*Key[V, D], pred func(a, b *Key[V, D]) bool) (int, error) {
	return g.LinkIf(keys, func(a, b *Key[V, D]) (E, bool) {
		var zero E
		return zero, pred(a, b)
	})
}
