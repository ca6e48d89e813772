package cluster

import (
	"cmp"
	"slices"
)

// Edge is an undirected weighted edge with A < B.
type Edge struct {
	A, B   int
	Weight float64
}

func newEdge(a, b int, w float64) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b, Weight: w}
}

// compareEdges is the canonical edge order: weight, then A, then B. It is a
// strict total order over distinct edges, which makes the minimum spanning
// tree unique no matter which algorithm builds it.
func compareEdges(e, f Edge) int {
	if c := cmp.Compare(e.Weight, f.Weight); c != 0 {
		return c
	}
	if c := cmp.Compare(e.A, f.A); c != 0 {
		return c
	}
	return cmp.Compare(e.B, f.B)
}

func edgeLess(e, f Edge) bool { return compareEdges(e, f) < 0 }

// PrimMST computes the minimum spanning tree of g with Prim's algorithm in
// O(n²) weight lookups. Returns n-1 edges in canonical order.
func PrimMST(g Graph) []Edge {
	n := g.Len()
	if n <= 1 {
		return nil
	}

	inTree := make([]bool, n)
	// best[j] is the lightest known edge between the tree and j.
	best := make([]Edge, n)

	inTree[0] = true
	for j := 1; j < n; j++ {
		best[j] = newEdge(0, j, g.Weight(0, j))
	}

	edges := make([]Edge, 0, n-1)
	for len(edges) < n-1 {
		next := -1
		for j := 0; j < n; j++ {
			if !inTree[j] && (next < 0 || edgeLess(best[j], best[next])) {
				next = j
			}
		}

		edges = append(edges, best[next])
		inTree[next] = true

		for k := 0; k < n; k++ {
			if inTree[k] {
				continue
			}
			if e := newEdge(next, k, g.Weight(next, k)); edgeLess(e, best[k]) {
				best[k] = e
			}
		}
	}

	slices.SortFunc(edges, compareEdges)
	return edges
}
