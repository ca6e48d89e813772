package cluster

import (
	"math"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"
)

// Metric is a distance function over vectors of equal length.
//
// Distance is a low-level fast path: callers must pass vectors of the same
// length. A length mismatch is a programming error and panics. Use
// CheckedDistance where the inputs come from outside the package.
type Metric interface {
	Distance(a, b []float64) float64
}

// MetricFunc adapts a plain function into a Metric.
type MetricFunc func(a, b []float64) float64

func (f MetricFunc) Distance(a, b []float64) float64 { return f(a, b) }

// EuclideanMetric computes the Euclidean (L2) distance.
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 2) }

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, 1) }

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, math.Inf(1)) }

// MinkowskiMetric computes the Minkowski distance (Σ|a_i-b_i|^P)^(1/P).
// P must be >= 1; P = 1, 2 and +Inf match Manhattan, Euclidean and
// Chebyshev.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 { return floats.Distance(a, b, m.P) }

// CosineMetric computes the cosine distance: 1 - cosine similarity.
// For a zero vector the result is NaN (0/0).
type CosineMetric struct{}

func (CosineMetric) Distance(a, b []float64) float64 { return 1 - CosineSimilarity(a, b) }

// CosineSimilarity returns the cosine of the angle between a and b, in
// [-1, 1]. Panics if the lengths differ.
func CosineSimilarity(a, b []float64) float64 {
	return floats.Dot(a, b) / (floats.Norm(a, 2) * floats.Norm(b, 2))
}

// CheckedDistance is the caller-facing form of m.Distance: it returns
// ErrDimensionMismatch instead of panicking when the lengths differ.
func CheckedDistance(m Metric, a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "cluster: cannot compare vectors of length %d and %d", len(a), len(b))
	}
	if m == nil {
		m = EuclideanMetric{}
	}
	return m.Distance(a, b), nil
}

// minkowskiP returns the Minkowski exponent of the metric and whether the
// metric decomposes along coordinate axes, which KD-tree pruning requires.
func minkowskiP(m Metric) (float64, bool) {
	switch mt := m.(type) {
	case EuclideanMetric, *EuclideanMetric:
		return 2, true
	case ManhattanMetric, *ManhattanMetric:
		return 1, true
	case ChebyshevMetric, *ChebyshevMetric:
		return math.Inf(1), true
	case MinkowskiMetric:
		return mt.P, mt.P >= 1
	case *MinkowskiMetric:
		return mt.P, mt.P >= 1
	default:
		return 0, false
	}
}

// ComputePairwiseDistances computes the full n*n distance matrix of ds,
// flat row-major. Rows are split across workers; the result is bitwise
// identical for any worker count.
func ComputePairwiseDistances(ds *Dataset, metric Metric, workers int) []float64 {
	n := ds.Len()
	result := make([]float64, n*n)

	// Cell (i, j) is written only by row min(i, j), so blocks never overlap.
	parallelRows(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			a := ds.Row(i)
			for j := i + 1; j < n; j++ {
				d := metric.Distance(a, ds.Row(j))
				result[i*n+j] = d
				result[j*n+i] = d
			}
		}
	})

	return result
}
