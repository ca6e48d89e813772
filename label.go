package cluster

import "slices"

// Merge is one row of a single-linkage dendrogram in scipy format: the two
// merged node IDs, the merge distance and the size of the merged cluster.
// Points are nodes 0..n-1; the merge in row r creates node n+r.
type Merge struct {
	Left, Right int
	Distance    float64
	Size        int
}

// Dendrogram is the full single-linkage hierarchy: n-1 merges in order of
// non-decreasing distance (non-increasing λ).
type Dendrogram []Merge

// SingleLinkage turns MST edges into a dendrogram by agglomerating along
// edges in canonical (weight-ascending) order.
func SingleLinkage(edges []Edge, n int) Dendrogram {
	if len(edges) == 0 {
		return nil
	}

	sorted := slices.Clone(edges)
	slices.SortFunc(sorted, compareEdges)

	uf := NewUnionFind(n)
	result := make(Dendrogram, 0, len(sorted))

	for _, e := range sorted {
		a := uf.Find(e.A)
		b := uf.Find(e.B)
		id := uf.Merge(a, b)
		result = append(result, Merge{Left: a, Right: b, Distance: e.Weight, Size: uf.Size(id)})
	}

	return result
}

// Rows returns the dendrogram as scipy linkage rows
// [left, right, distance, size].
func (d Dendrogram) Rows() [][4]float64 {
	rows := make([][4]float64, len(d))
	for i, m := range d {
		rows[i] = [4]float64{float64(m.Left), float64(m.Right), m.Distance, float64(m.Size)}
	}
	return rows
}
