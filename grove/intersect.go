package grove

// Intersect returns the keys overlapping query in the given indices, or in
// every index when no label is given. Unknown labels contribute nothing.
func (g *Grove[V, D, E]) Intersect(query V, labels ...string) *QueryResult[V, D] {
	g.metrics.queried()
	res := &QueryResult[V, D]{kt: g.kt, query: query}

	var cacheKey string
	if g.cache != nil {
		cacheKey = g.cacheKey(query, labels)
		if keys, ok := g.cache.get(cacheKey); ok {
			g.metrics.cacheHit()
			res.keys = keys
			return res
		}
		g.metrics.cacheMiss()
	}

	collect := func(idx *index[V]) {
		idx.tree.Scan(query, func(_ V, ref uint32) bool {
			res.keys = append(res.keys, g.keys.get(ref))
			return true
		})
	}
	if len(labels) == 0 {
		g.indices.Ascend(func(idx *index[V]) bool {
			collect(idx)
			return true
		})
	} else {
		seen := make(map[string]struct{}, len(labels))
		for _, l := range labels {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			if idx, ok := g.lookup(l); ok {
				collect(idx)
			}
		}
	}

	if g.cache != nil {
		g.cache.set(cacheKey, res.keys)
	}
	return res
}
