package cluster

import "math"

// Graph is the complete mutual-reachability graph over a dataset. Weight
// is symmetric; Weight(a, a) is never consulted.
type Graph interface {
	Len() int
	Weight(a, b int) float64
}

// reach combines two scaled core distances and a raw distance. NaN inputs
// (cosine distance to a zero vector) make the pair unreachable.
func reach(coreA, coreB, d float64) float64 {
	r := max(d, coreA, coreB)
	if math.IsNaN(r) {
		return math.Inf(1)
	}
	return r
}

// scaleCore returns alpha * core. Alpha scales density sensitivity: values
// above 1 smear sparse regions further.
func scaleCore(core []float64, alpha float64) []float64 {
	scaled := make([]float64, len(core))
	for i, c := range core {
		scaled[i] = alpha * c
	}
	return scaled
}

// DenseGraph stores every mutual-reachability weight in an n*n matrix.
type DenseGraph struct {
	n int
	w []float64
}

func (g *DenseGraph) Len() int                { return g.n }
func (g *DenseGraph) Weight(a, b int) float64 { return g.w[a*g.n+b] }

// MutualReachability builds the dense mutual-reachability graph
// mr[i,j] = max(alpha*core[i], alpha*core[j], dist[i,j]) from a flat n*n
// distance matrix, splitting rows across workers.
func MutualReachability(dist, core []float64, n int, alpha float64, workers int) *DenseGraph {
	scaled := scaleCore(core, alpha)
	w := make([]float64, n*n)

	parallelRows(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			ci := scaled[i]
			for j := 0; j < n; j++ {
				w[i*n+j] = reach(ci, scaled[j], dist[i*n+j])
			}
		}
	})

	return &DenseGraph{n: n, w: w}
}

// VectorGraph computes mutual-reachability weights on demand from the
// dataset, so it needs O(n) memory instead of O(n²).
type VectorGraph struct {
	ds     *Dataset
	core   []float64 // already scaled by alpha
	metric Metric
}

// NewVectorGraph returns the on-the-fly mutual-reachability graph of ds.
func NewVectorGraph(ds *Dataset, core []float64, metric Metric, alpha float64) *VectorGraph {
	return &VectorGraph{ds: ds, core: scaleCore(core, alpha), metric: metric}
}

func (g *VectorGraph) Len() int { return g.ds.Len() }

func (g *VectorGraph) Weight(a, b int) float64 {
	return reach(g.core[a], g.core[b], g.metric.Distance(g.ds.Row(a), g.ds.Row(b)))
}
