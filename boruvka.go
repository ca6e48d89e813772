package cluster

import "slices"

// BoruvkaMST computes the minimum spanning tree of g with Borůvka's
// algorithm. Each round finds, in parallel across points, the lightest edge
// leaving every component and then merges along those edges. Because edges
// are compared in the canonical order the result is the same tree PrimMST
// returns, for any worker count. Returns n-1 edges in canonical order.
func BoruvkaMST(g Graph, workers int) []Edge {
	n := g.Len()
	if n <= 1 {
		return nil
	}

	uf := newDisjointSet(n)
	component := make([]int, n)
	nearest := make([]Edge, n) // lightest edge from point i out of its component
	found := make([]bool, n)
	compBest := make([]Edge, n)
	compFound := make([]bool, n)

	edges := make([]Edge, 0, n-1)
	for len(edges) < n-1 {
		for i := range component {
			component[i] = uf.find(i)
		}

		parallelRows(n, workers, func(start, end int) {
			for i := start; i < end; i++ {
				found[i] = false
				for j := 0; j < n; j++ {
					if component[j] == component[i] {
						continue
					}
					e := newEdge(i, j, g.Weight(i, j))
					if !found[i] || edgeLess(e, nearest[i]) {
						nearest[i] = e
						found[i] = true
					}
				}
			}
		})

		// Reduce per component in index order so the outcome does not
		// depend on goroutine scheduling.
		clear(compFound)
		for i := 0; i < n; i++ {
			if !found[i] {
				continue
			}
			c := component[i]
			if !compFound[c] || edgeLess(nearest[i], compBest[c]) {
				compBest[c] = nearest[i]
				compFound[c] = true
			}
		}

		for c := 0; c < n; c++ {
			if !compFound[c] {
				continue
			}
			e := compBest[c]
			// Two components often pick the same edge; add it once.
			if uf.find(e.A) != uf.find(e.B) {
				uf.union(e.A, e.B)
				edges = append(edges, e)
			}
		}
	}

	slices.SortFunc(edges, compareEdges)
	return edges
}
