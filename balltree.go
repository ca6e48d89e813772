package cluster

import (
	"cmp"
	"math"
	"slices"
)

// BallTree is an exact k-nearest-neighbor index that bounds each node by a
// ball around the mean of its points. Unlike the KD-tree's boxes, balls keep
// pruning in high dimensions, so the tree serves data with many features.
// The metric must satisfy the triangle inequality; NewBallTree accepts the
// Minkowski family. Queries are safe for concurrent use.
type BallTree struct {
	ds       *Dataset
	metric   Metric
	leafSize int
	idx      []int // tree order -> point index
	nodes    []ballNode
}

type ballNode struct {
	start, end  int
	left, right int // child node indices; -1 for leaves
	center      []float64
	radius      float64
}

// NewBallTree builds a ball tree over ds. It fails with ErrInvalidParameter
// if the metric is not known to be a true metric.
func NewBallTree(ds *Dataset, metric Metric, leafSize int) (*BallTree, error) {
	if !BallTreeValidMetric(metric) {
		return nil, invalidParamf("cluster: metric %T is not supported by the ball tree", metric)
	}
	if leafSize < 1 {
		leafSize = 1
	}

	idx := make([]int, ds.Len())
	for i := range idx {
		idx[i] = i
	}
	t := &BallTree{ds: ds, metric: metric, leafSize: leafSize, idx: idx}
	t.build(0, ds.Len())
	return t, nil
}

// build creates the node for idx[start:end] and returns its index.
func (t *BallTree) build(start, end int) int {
	dims := t.ds.Dims()
	center := make([]float64, dims)
	for _, pt := range t.idx[start:end] {
		for d, v := range t.ds.Row(pt) {
			center[d] += v
		}
	}
	count := float64(end - start)
	for d := range center {
		center[d] /= count
	}

	var radius float64
	for _, pt := range t.idx[start:end] {
		radius = max(radius, t.metric.Distance(center, t.ds.Row(pt)))
	}

	id := len(t.nodes)
	t.nodes = append(t.nodes, ballNode{start: start, end: end, left: -1, right: -1, center: center, radius: radius})
	if end-start <= t.leafSize {
		return id
	}

	splitDim := t.spreadDim(start, end)
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

// spreadDim returns the dimension with the greatest spread among
// idx[start:end].
func (t *BallTree) spreadDim(start, end int) int {
	best, bestSpread := 0, -1.0
	for d := 0; d < t.ds.Dims(); d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, pt := range t.idx[start:end] {
			v := t.ds.Row(pt)[d]
			lo, hi = min(lo, v), max(hi, v)
		}
		if hi-lo > bestSpread {
			best, bestSpread = d, hi-lo
		}
	}
	return best
}

// Len returns the number of indexed points.
func (t *BallTree) Len() int { return t.ds.Len() }

// Dataset returns the indexed points.
func (t *BallTree) Dataset() *Dataset { return t.ds }

// QueryKNN returns the k nearest indexed points to query, sorted by
// ascending distance with ties broken by point index.
func (t *BallTree) QueryKNN(query []float64, k int) (indices []int, distances []float64) {
	k = min(k, t.ds.Len())
	if k <= 0 {
		return nil, nil
	}
	h := make(knnHeap, 0, k)
	t.search(0, query, k, &h)
	return h.sorted()
}

func (t *BallTree) search(nodeID int, query []float64, k int, h *knnHeap) {
	node := &t.nodes[nodeID]
	if node.left < 0 {
		for _, pt := range t.idx[node.start:node.end] {
			h.offer(knnItem{index: pt, dist: t.metric.Distance(query, t.ds.Row(pt))}, k)
		}
		return
	}

	near, far := node.left, node.right
	nearDist, farDist := t.ballDistance(near, query), t.ballDistance(far, query)
	if farDist < nearDist {
		near, far = far, near
		farDist = nearDist
	}

	t.search(near, query, k, h)
	if !h.prunable(farDist, k) {
		t.search(far, query, k, h)
	}
}

// ballDistance is a lower bound on the distance from point to any point in
// the node: the distance to the center minus the radius, widened by
// boundSlack on both terms.
func (t *BallTree) ballDistance(nodeID int, point []float64) float64 {
	node := &t.nodes[nodeID]
	d := t.metric.Distance(point, node.center)
	return max(0, d*(1-boundSlack)-node.radius*(1+boundSlack))
}
