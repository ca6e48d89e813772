package cluster

import (
	"math"
	"slices"
)

// ComputeCoreDistances returns, for every point of ds, the distance to its
// minSamples-th nearest other point. It uses a KD-tree when the metric
// supports one, a ball tree above 60 dimensions, and a full distance matrix
// for other metrics; all give the same values. Fails with ErrInvalidParameter unless 1 <= minSamples < n.
func ComputeCoreDistances(ds *Dataset, minSamples int, metric Metric, workers int) ([]float64, error) {
	if err := checkMinSamples(minSamples, ds.Len()); err != nil {
		return nil, err
	}
	if metric == nil {
		metric = EuclideanMetric{}
	}
	workers = defaultWorkers(workers)

	if BallTreeValidMetric(metric) {
		algo := AlgorithmBoruvkaKDTree
		if !KDTreeValidMetric(metric) || ds.Dims() > maxKDTreeDims {
			algo = AlgorithmBoruvkaBalltree
		}
		tree, err := newSpatialIndex(ds, metric, defaultLeafSize, algo)
		if err != nil {
			return nil, err
		}
		return CoreDistancesTree(tree, minSamples, workers), nil
	}
	dist := ComputePairwiseDistances(ds, metric, workers)
	return CoreDistancesFromMatrix(dist, ds.Len(), minSamples, workers), nil
}

func checkMinSamples(minSamples, n int) error {
	if minSamples < 1 {
		return invalidParamf("cluster: MinSamples must be >= 1, got %d", minSamples)
	}
	if minSamples >= n {
		return invalidParamf("cluster: MinSamples must be < number of points (%d), got %d", n, minSamples)
	}
	return nil
}

// CoreDistancesFromMatrix computes core distances from a flat n*n distance
// matrix. minSamples must already be validated against n.
func CoreDistancesFromMatrix(dist []float64, n, minSamples, workers int) []float64 {
	core := make([]float64, n)

	parallelRows(n, workers, func(start, end int) {
		neighbors := make([]float64, n-1)
		for i := start; i < end; i++ {
			k := 0
			for j := 0; j < n; j++ {
				if j == i {
					continue
				}
				// An undefined distance never makes a point a near neighbor.
				d := dist[i*n+j]
				if math.IsNaN(d) {
					d = math.Inf(1)
				}
				neighbors[k] = d
				k++
			}
			slices.Sort(neighbors)
			core[i] = neighbors[minSamples-1]
		}
	})

	return core
}
