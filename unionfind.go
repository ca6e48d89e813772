package cluster

// UnionFind is the disjoint-set structure behind single-linkage labelling.
// It holds 2n-1 slots: points 0..n-1 and merged clusters n..2n-2. Every
// merge creates a fresh root with the next cluster ID.
type UnionFind struct {
	parent []int
	size   []int
	// next is the ID for the next merged cluster, starting at n.
	next int
}

// NewUnionFind creates a UnionFind for n initial points.
func NewUnionFind(n int) *UnionFind {
	total := max(2*n-1, 1)
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &UnionFind{parent: parent, size: size, next: n}
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Size returns the number of points under root.
func (uf *UnionFind) Size(root int) int { return uf.size[root] }

// Merge joins two distinct roots under a new cluster ID and returns it.
func (uf *UnionFind) Merge(rootA, rootB int) int {
	id := uf.next
	uf.next++
	uf.size[id] = uf.size[rootA] + uf.size[rootB]
	uf.parent[rootA] = id
	uf.parent[rootB] = id
	return id
}

// disjointSet is a plain union-find with union by rank and path halving,
// used where set identity matters but set IDs do not.
type disjointSet struct {
	parent []int
	rank   []int
}

func newDisjointSet(n int) *disjointSet {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &disjointSet{parent: parent, rank: make([]int, n)}
}

func (s *disjointSet) find(x int) int {
	for s.parent[x] != x {
		s.parent[x] = s.parent[s.parent[x]]
		x = s.parent[x]
	}
	return x
}

func (s *disjointSet) union(x, y int) {
	xr, yr := s.find(x), s.find(y)
	switch {
	case xr == yr:
	case s.rank[xr] < s.rank[yr]:
		s.parent[xr] = yr
	case s.rank[xr] > s.rank[yr]:
		s.parent[yr] = xr
	default:
		s.parent[yr] = xr
		s.rank[xr]++
	}
}
