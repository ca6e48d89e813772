package cluster

import "container/heap"

// SpatialIndex answers exact k-nearest-neighbor queries over a Dataset.
// KDTree and BallTree implement it.
type SpatialIndex interface {
	// Dataset returns the indexed points.
	Dataset() *Dataset

	// QueryKNN returns the k nearest indexed points to query, sorted by
	// ascending distance with ties broken by point index.
	QueryKNN(query []float64, k int) (indices []int, distances []float64)
}

var (
	_ SpatialIndex = (*KDTree)(nil)
	_ SpatialIndex = (*BallTree)(nil)
)

// boundSlack shrinks node lower bounds so that rounding differences against
// Metric.Distance never prune a node holding a true neighbor.
const boundSlack = 1e-12

type knnItem struct {
	index int
	dist  float64
}

// less orders items by distance, then index.
func (a knnItem) less(b knnItem) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.index < b.index
}

// knnHeap is a max-heap (worst neighbor on top) used as a bounded priority
// queue for KNN queries.
type knnHeap []knnItem

func (h knnHeap) Len() int            { return len(h) }
func (h knnHeap) Less(i, j int) bool  { return h[j].less(h[i]) }
func (h knnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap) Push(x interface{}) { *h = append(*h, x.(knnItem)) }
func (h *knnHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// offer adds item if the heap holds fewer than k items or item beats the
// current worst.
func (h *knnHeap) offer(item knnItem, k int) {
	if h.Len() < k {
		heap.Push(h, item)
	} else if item.less((*h)[0]) {
		(*h)[0] = item
		heap.Fix(h, 0)
	}
}

// prunable reports whether a node whose points are at least bound away
// cannot improve a full heap.
func (h knnHeap) prunable(bound float64, k int) bool {
	return h.Len() == k && bound > h[0].dist
}

// sorted drains the heap into ascending order.
func (h *knnHeap) sorted() (indices []int, distances []float64) {
	indices = make([]int, h.Len())
	distances = make([]float64, h.Len())
	for i := h.Len() - 1; i >= 0; i-- {
		item := heap.Pop(h).(knnItem)
		indices[i] = item.index
		distances[i] = item.dist
	}
	return indices, distances
}
