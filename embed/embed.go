// Package embed reduces high-dimensional points to a few coordinates for
// plotting or for clustering in a smaller space. The cluster package does
// not depend on it; callers compose the two in either order.
package embed

import (
	"math/rand/v2"
	"slices"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/TrevorS/cluster"
)

// Reduction is the output of a Reducer.
type Reduction struct {
	// Embeddings holds one low-dimensional point per retained input point.
	Embeddings *cluster.Dataset

	// OriginalIndices[i] is the index in the input of Embeddings row i,
	// ascending.
	OriginalIndices []int
}

// Reducer maps a dataset to outputDim dimensions. When sampleSize is
// positive and smaller than the dataset, only a sample of that many points
// is reduced.
type Reducer interface {
	Reduce(ds *cluster.Dataset, outputDim, sampleSize int) (*Reduction, error)
}

// PCA projects points onto their top principal components, computed with a
// thin SVD of the centered data.
type PCA struct {
	// Seed drives subsampling.
	Seed uint64

	// Logger receives explained-variance details. nil disables logging.
	Logger *zap.Logger
}

var _ Reducer = PCA{}

// Reduce implements Reducer.
func (p PCA) Reduce(ds *cluster.Dataset, outputDim, sampleSize int) (*Reduction, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if ds == nil {
		return nil, errors.Wrap(cluster.ErrEmptyInput, "embed: dataset is nil")
	}

	dims := ds.Dims()
	if outputDim < 1 || outputDim > dims {
		return nil, errors.Wrapf(cluster.ErrInvalidParameter, "embed: outputDim must be in [1, %d], got %d", dims, outputDim)
	}
	if sampleSize < 0 {
		return nil, errors.Wrapf(cluster.ErrInvalidParameter, "embed: sampleSize must be >= 0, got %d", sampleSize)
	}

	indices := Subsample(ds.Len(), sampleSize, p.Seed)
	m := len(indices)
	if outputDim > m {
		return nil, errors.WithHint(
			errors.Wrapf(cluster.ErrInvalidParameter, "embed: outputDim %d exceeds the %d retained points", outputDim, m),
			"raise sampleSize or lower outputDim",
		)
	}

	x := mat.NewDense(m, dims, nil)
	for r, i := range indices {
		x.SetRow(r, ds.Row(i))
	}
	center(x)

	var svd mat.SVD
	if ok := svd.Factorize(x, mat.SVDThin); !ok {
		return nil, errors.Wrap(cluster.ErrFit, "embed: SVD did not converge")
	}
	var v mat.Dense
	svd.VTo(&v)

	var proj mat.Dense
	proj.Mul(x, v.Slice(0, dims, 0, outputDim))

	values := svd.Values(nil)
	log.Debug("pca reduction",
		zap.Int("points", m),
		zap.Int("input_dims", dims),
		zap.Int("output_dims", outputDim),
		zap.Float64("explained_variance_ratio", explainedRatio(values, outputDim)))

	flat := make([]float64, 0, m*outputDim)
	for r := 0; r < m; r++ {
		flat = append(flat, proj.RawRowView(r)...)
	}
	out, err := cluster.NewDatasetFlat(flat, m, outputDim)
	if err != nil {
		return nil, err
	}
	return &Reduction{Embeddings: out, OriginalIndices: indices}, nil
}

// ReduceDimensions reduces ds with PCA seeded by seed.
func ReduceDimensions(ds *cluster.Dataset, outputDim, sampleSize int, seed uint64) (*Reduction, error) {
	return PCA{Seed: seed}.Reduce(ds, outputDim, sampleSize)
}

// Subsample returns sampleSize distinct indices from [0, n) in ascending
// order, chosen with a PCG generator seeded by seed. A sampleSize of 0 or
// at least n returns every index.
func Subsample(n, sampleSize int, seed uint64) []int {
	if sampleSize <= 0 || sampleSize >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	picked := rng.Perm(n)[:sampleSize]
	slices.Sort(picked)
	return picked
}

// center subtracts each column's mean in place.
func center(x *mat.Dense) {
	rows, cols := x.Dims()
	col := make([]float64, rows)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, x)
		mean := stat.Mean(col, nil)
		for i := 0; i < rows; i++ {
			x.Set(i, j, col[i]-mean)
		}
	}
}

func explainedRatio(singular []float64, k int) float64 {
	total, kept := 0.0, 0.0
	for i, s := range singular {
		total += s * s
		if i < k {
			kept += s * s
		}
	}
	if total == 0 {
		return 0
	}
	return kept / total
}
