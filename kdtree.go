package cluster

import (
	"cmp"
	"math"
	"slices"
)

const defaultLeafSize = 40

// KDTree is an exact k-nearest-neighbor index over a Dataset for metrics
// that decompose along coordinate axes (Euclidean, Manhattan, Chebyshev,
// Minkowski).
// Points are not copied; the tree keeps a permutation of indices and a
// bounding box per node. Queries are safe for concurrent use.
type KDTree struct {
	ds       *Dataset
	metric   Metric
	p        float64 // Minkowski exponent of metric
	leafSize int
	idx      []int // tree order -> point index
	nodes    []kdNode
}

type kdNode struct {
	start, end  int
	left, right int // child node indices; -1 for leaves
	lo, hi      []float64
}

// NewKDTree builds a KD-tree over ds. It fails with ErrInvalidParameter if
// the metric cannot be bounded by axis-aligned boxes.
func NewKDTree(ds *Dataset, metric Metric, leafSize int) (*KDTree, error) {
	p, ok := minkowskiP(metric)
	if !ok {
		return nil, invalidParamf("cluster: metric %T is not supported by the KD-tree", metric)
	}
	if leafSize < 1 {
		leafSize = 1
	}

	idx := make([]int, ds.Len())
	for i := range idx {
		idx[i] = i
	}
	t := &KDTree{ds: ds, metric: metric, p: p, leafSize: leafSize, idx: idx}
	t.build(0, ds.Len())
	return t, nil
}

// build creates the node for idx[start:end] and returns its index.
func (t *KDTree) build(start, end int) int {
	dims := t.ds.Dims()
	node := kdNode{start: start, end: end, left: -1, right: -1,
		lo: make([]float64, dims), hi: make([]float64, dims)}
	for d := 0; d < dims; d++ {
		node.lo[d] = math.Inf(1)
		node.hi[d] = math.Inf(-1)
	}
	for _, pt := range t.idx[start:end] {
		row := t.ds.Row(pt)
		for d, v := range row {
			node.lo[d] = min(node.lo[d], v)
			node.hi[d] = max(node.hi[d], v)
		}
	}

	id := len(t.nodes)
	t.nodes = append(t.nodes, node)
	if end-start <= t.leafSize {
		return id
	}

	// Split at the median of the dimension with the greatest spread.
	splitDim, maxSpread := 0, -1.0
	for d := 0; d < dims; d++ {
		if spread := node.hi[d] - node.lo[d]; spread > maxSpread {
			splitDim, maxSpread = d, spread
		}
	}
	slices.SortFunc(t.idx[start:end], func(a, b int) int {
		if c := cmp.Compare(t.ds.Row(a)[splitDim], t.ds.Row(b)[splitDim]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	mid := start + (end-start)/2

	left := t.build(start, mid)
	right := t.build(mid, end)
	t.nodes[id].left, t.nodes[id].right = left, right
	return id
}

// Len returns the number of indexed points.
func (t *KDTree) Len() int { return t.ds.Len() }

// Dataset returns the indexed points.
func (t *KDTree) Dataset() *Dataset { return t.ds }

// QueryKNN returns the k nearest indexed points to query, sorted by
// ascending distance with ties broken by point index.
func (t *KDTree) QueryKNN(query []float64, k int) (indices []int, distances []float64) {
	k = min(k, t.ds.Len())
	if k <= 0 {
		return nil, nil
	}
	h := make(knnHeap, 0, k)
	t.search(0, query, k, &h)
	return h.sorted()
}

func (t *KDTree) search(nodeID int, query []float64, k int, h *knnHeap) {
	node := &t.nodes[nodeID]
	if node.left < 0 {
		for _, pt := range t.idx[node.start:node.end] {
			h.offer(knnItem{index: pt, dist: t.metric.Distance(query, t.ds.Row(pt))}, k)
		}
		return
	}

	near, far := node.left, node.right
	nearDist, farDist := t.boxDistance(near, query), t.boxDistance(far, query)
	if farDist < nearDist {
		near, far = far, near
		farDist = nearDist
	}

	t.search(near, query, k, h)
	if !h.prunable(farDist, k) {
		t.search(far, query, k, h)
	}
}

// boxDistance is a lower bound on the distance from point to any point in
// the node's bounding box. It is shrunk by boundSlack so rounding differences
// against Metric.Distance never prune a box that holds a true neighbor.
func (t *KDTree) boxDistance(nodeID int, point []float64) float64 {
	node := &t.nodes[nodeID]
	var acc float64
	for d, v := range point {
		var gap float64
		if v < node.lo[d] {
			gap = node.lo[d] - v
		} else if v > node.hi[d] {
			gap = v - node.hi[d]
		}
		switch {
		case math.IsInf(t.p, 1):
			acc = max(acc, gap)
		case t.p == 1:
			acc += gap
		case t.p == 2:
			acc += gap * gap
		default:
			acc += math.Pow(gap, t.p)
		}
	}
	switch {
	case t.p == 2:
		acc = math.Sqrt(acc)
	case t.p != 1 && !math.IsInf(t.p, 1):
		acc = math.Pow(acc, 1/t.p)
	}
	return acc * (1 - boundSlack)
}
