package cluster

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Dataset is an immutable set of n points of equal dimensionality, stored
// flat in row-major order. The index of a point is its identity for every
// stage of clustering. A Dataset is safe for concurrent readers.
type Dataset struct {
	data []float64
	n    int
	dims int
}

// NewDataset validates points and copies them into a Dataset. It fails with
// ErrEmptyInput for zero points, ErrDimensionMismatch for ragged or
// zero-length points, and ErrInvalidParameter for NaN or infinite coordinates.
func NewDataset(points [][]float64) (*Dataset, error) {
	n := len(points)
	if n == 0 {
		return nil, errors.Wrap(ErrEmptyInput, "cluster: dataset has no points")
	}
	dims := len(points[0])
	if dims == 0 {
		return nil, errors.Wrap(ErrDimensionMismatch, "cluster: points must have at least one coordinate")
	}

	data := make([]float64, n*dims)
	for i, p := range points {
		if len(p) != dims {
			return nil, errors.Wrapf(ErrDimensionMismatch, "cluster: point %d has %d coordinates, want %d", i, len(p), dims)
		}
		if err := checkFinite(i, p); err != nil {
			return nil, err
		}
		copy(data[i*dims:], p)
	}

	return &Dataset{data: data, n: n, dims: dims}, nil
}

// NewDatasetFlat builds a Dataset from flat row-major data with n rows of
// dims columns. The slice is copied.
func NewDatasetFlat(data []float64, n, dims int) (*Dataset, error) {
	if n <= 0 {
		return nil, errors.Wrap(ErrEmptyInput, "cluster: dataset has no points")
	}
	if dims <= 0 || len(data) != n*dims {
		return nil, errors.Wrapf(ErrDimensionMismatch, "cluster: flat data length %d does not match %d x %d", len(data), n, dims)
	}
	cp := make([]float64, len(data))
	copy(cp, data)
	for i := 0; i < n; i++ {
		if err := checkFinite(i, cp[i*dims:(i+1)*dims]); err != nil {
			return nil, err
		}
	}
	return &Dataset{data: cp, n: n, dims: dims}, nil
}

func checkFinite(i int, p []float64) error {
	for j, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalidParamf("cluster: point %d coordinate %d is not finite (%v)", i, j, v)
		}
	}
	return nil
}

// Len returns the number of points.
func (d *Dataset) Len() int { return d.n }

// Dims returns the dimensionality of every point.
func (d *Dataset) Dims() int { return d.dims }

// Row returns point i. The returned slice aliases the dataset and must not
// be modified.
func (d *Dataset) Row(i int) []float64 {
	return d.data[i*d.dims : (i+1)*d.dims : (i+1)*d.dims]
}

// Points returns a copy of the dataset as one slice per point.
func (d *Dataset) Points() [][]float64 {
	out := make([][]float64, d.n)
	for i := range out {
		out[i] = append([]float64(nil), d.Row(i)...)
	}
	return out
}

// checkDataset rejects a nil Dataset at the entry points that accept one.
func checkDataset(ds *Dataset) error {
	if ds == nil {
		return errors.Wrap(ErrEmptyInput, "cluster: dataset is nil")
	}
	return nil
}
