package cluster

import "github.com/cockroachdb/errors"

// Algorithm selects how core distances and the MST are built.
type Algorithm string

const (
	AlgorithmAuto            Algorithm = "auto"
	AlgorithmBrute           Algorithm = "brute"
	AlgorithmBoruvkaBrute    Algorithm = "boruvka_brute"
	AlgorithmPrimsKDTree     Algorithm = "prims_kdtree"
	AlgorithmBoruvkaKDTree   Algorithm = "boruvka_kdtree"
	AlgorithmPrimsBalltree   Algorithm = "prims_balltree"
	AlgorithmBoruvkaBalltree Algorithm = "boruvka_balltree"
)

// maxKDTreeDims is the dimensionality above which auto selection switches
// from the KD-tree to the ball tree; bounding boxes stop pruning well past it.
const maxKDTreeDims = 60

// KDTreeValidMetric reports whether the metric supports KD-tree
// acceleration: Euclidean, Manhattan, Chebyshev and Minkowski with P >= 1.
func KDTreeValidMetric(m Metric) bool {
	_, ok := minkowskiP(m)
	return ok
}

// BallTreeValidMetric reports whether the metric supports ball tree
// acceleration. Any metric with the triangle inequality would do; the
// accepted set is currently the same as for the KD-tree.
func BallTreeValidMetric(m Metric) bool {
	_, ok := minkowskiP(m)
	return ok
}

// selectAlgorithm resolves AlgorithmAuto into a concrete choice from the
// metric and dimensionality, and rejects forced tree choices the metric
// cannot support.
func selectAlgorithm(cfg HDBSCANConfig, dims int) (Algorithm, error) {
	switch cfg.Algorithm {
	case AlgorithmAuto:
		switch {
		case !BallTreeValidMetric(cfg.Metric):
			return AlgorithmBrute, nil
		case KDTreeValidMetric(cfg.Metric) && dims <= maxKDTreeDims:
			return AlgorithmBoruvkaKDTree, nil
		default:
			return AlgorithmBoruvkaBalltree, nil
		}
	case AlgorithmPrimsKDTree, AlgorithmBoruvkaKDTree:
		if !KDTreeValidMetric(cfg.Metric) {
			return "", errors.WithHint(
				invalidParamf("cluster: metric %T is not supported by KD-tree algorithms", cfg.Metric),
				"use AlgorithmBrute or AlgorithmBoruvkaBrute with this metric",
			)
		}
	case AlgorithmPrimsBalltree, AlgorithmBoruvkaBalltree:
		if !BallTreeValidMetric(cfg.Metric) {
			return "", errors.WithHint(
				invalidParamf("cluster: metric %T is not supported by ball tree algorithms", cfg.Metric),
				"use AlgorithmBrute or AlgorithmBoruvkaBrute with this metric",
			)
		}
	}
	return cfg.Algorithm, nil
}
