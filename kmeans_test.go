package cluster

import (
	"math"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TrevorS/cluster/internal/synth"
)

var blobCenters = [][]float64{{0, 0}, {5, 5}, {-5, 5}}

func threeBlobs(seed uint64) synth.Set {
	return synth.ThreeBlobs(synth.New(seed), 0.5)
}

// nearestCenter returns the index of the blob center closest to p.
func nearestCenter(p []float64) (int, float64) {
	best, bestDist := -1, math.Inf(1)
	for i, c := range blobCenters {
		if d := (EuclideanMetric{}).Distance(p, c); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, bestDist
}

func TestKMeansThreeBlobs(t *testing.T) {
	set := threeBlobs(42)
	cfg := DefaultKMeansConfig(3)

	res, err := KMeansDataset(mustDataset(t, set.Points), cfg)
	require.NoError(t, err)

	require.Equal(t, 3, res.NumClusters())
	checkPartition(t, &res.Result, len(set.Points))
	assert.Empty(t, res.Outliers)
	assert.True(t, res.Converged)

	seen := make(map[int]bool)
	for c, centroid := range res.Centroids {
		center, dist := nearestCenter(centroid)
		assert.Less(t, dist, 0.5, "centroid %d = %v", c, centroid)
		assert.False(t, seen[center], "two centroids near center %v", blobCenters[center])
		seen[center] = true
	}

	for blob := 1; blob <= 3; blob++ {
		_, frac := majorityLabel(res.Assignments, indicesWithLabel(set.Labels, blob))
		assert.Equal(t, 1.0, frac, "blob %d is split", blob)
	}
}

func TestKMeansInertiaTrace(t *testing.T) {
	data := randomPoints(300, 2, 9)
	cfg := DefaultKMeansConfig(6)

	res, err := KMeansDataset(mustDataset(t, data), cfg)
	require.NoError(t, err)

	require.Len(t, res.InertiaTrace, res.Iterations+1)
	for i := 1; i < len(res.InertiaTrace); i++ {
		prev, cur := res.InertiaTrace[i-1], res.InertiaTrace[i]
		assert.LessOrEqual(t, cur, prev*(1+1e-12), "inertia rose at step %d", i)
	}
	assert.Equal(t, res.Inertia, res.InertiaTrace[len(res.InertiaTrace)-1])

	// Inertia is the sum of squared distances to the assigned centroids.
	var sum float64
	for i, p := range data {
		sum += sqDistance(p, res.Centroids[res.Assignments[i]-1])
	}
	assert.InDelta(t, sum, res.Inertia, 1e-6*sum)
}

func TestKMeansDeterministic(t *testing.T) {
	data := randomPoints(200, 3, 2)

	run := func(cfg KMeansConfig) *CentroidResult {
		res, err := KMeansDataset(mustDataset(t, data), cfg)
		require.NoError(t, err)
		return res
	}

	cfg := DefaultKMeansConfig(4)
	cfg.Workers = 1
	a := run(cfg)

	cfg.Workers = 4
	b := run(cfg)
	assert.Equal(t, a.Assignments, b.Assignments)
	assert.Equal(t, a.Centroids, b.Centroids)

	cfg.Rand = newRand(42)
	c := run(cfg)
	assert.Equal(t, a.Assignments, c.Assignments, "Rand seeded 42 should match Seed 42")
}

func TestKMeansClusterCount(t *testing.T) {
	data := [][]float64{{0, 0}, {1, 0}, {0, 1}, {5, 5}}

	for _, k := range []int{0, -1, 5} {
		_, err := KMeans(data, DefaultKMeansConfig(k))
		assert.True(t, errors.Is(err, ErrInvalidParameter), "k=%d: err = %v", k, err)
		assert.True(t, errors.Is(err, ErrFit), "k=%d: err = %v", k, err)
	}

	res, err := KMeansDataset(mustDataset(t, data), DefaultKMeansConfig(4))
	require.NoError(t, err)
	assert.Equal(t, 4, res.NumClusters())
	assert.Zero(t, res.Inertia)

	one, err := KMeans(data, DefaultKMeansConfig(1))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 1, 1}, one.Assignments)
}

func TestKMeansConfigValidation(t *testing.T) {
	data := randomPoints(10, 2, 1)
	tests := []struct {
		name   string
		mutate func(*KMeansConfig)
	}{
		{"negative MaxIterations", func(c *KMeansConfig) { c.MaxIterations = -1 }},
		{"negative Tolerance", func(c *KMeansConfig) { c.Tolerance = -1 }},
		{"NaN Tolerance", func(c *KMeansConfig) { c.Tolerance = math.NaN() }},
		{"negative Workers", func(c *KMeansConfig) { c.Workers = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultKMeansConfig(2)
			tt.mutate(&cfg)
			_, err := KMeans(data, cfg)
			assert.True(t, errors.Is(err, ErrInvalidParameter), "err = %v", err)
		})
	}
}

func TestKMeansIterationCap(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	cfg := DefaultKMeansConfig(8)
	cfg.MaxIterations = 1
	cfg.Tolerance = 1e-12
	cfg.Logger = zap.New(core)

	res, err := KMeansDataset(mustDataset(t, randomPoints(400, 2, 8)), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Iterations)
	assert.False(t, res.Converged)
	assert.Equal(t, 1, logs.FilterMessage("kmeans reached the iteration cap").Len())
}

func TestUpdateCentroidsReseedsEmptyCluster(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0, 0}, {1, 0}, {10, 0}})
	labels := []int{0, 0, 0}
	sqDists := []float64{1, 0, 81}

	centroids, reseeded := updateCentroids(ds, 2, labels, sqDists)
	assert.Equal(t, 1, reseeded)
	assert.InDeltaSlice(t, []float64{11.0 / 3, 0}, centroids[0], 1e-12)
	assert.Equal(t, []float64{10, 0}, centroids[1])
}

func TestSeedPlusPlusDistinct(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0}, {1}, {2}, {3}, {4}})
	centroids := seedPlusPlus(ds, 5, newRand(1))

	seen := make(map[float64]bool)
	for _, c := range centroids {
		assert.False(t, seen[c[0]], "centroid %v picked twice", c)
		seen[c[0]] = true
	}
}
