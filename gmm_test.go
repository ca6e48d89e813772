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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

func TestGMMThreeBlobs(t *testing.T) {
	set := threeBlobs(42)
	cfg := DefaultGMMConfig(3)

	res, err := GMMDataset(mustDataset(t, set.Points), cfg)
	require.NoError(t, err)

	require.Equal(t, 3, res.NumClusters())
	checkPartition(t, &res.Result, len(set.Points))
	assert.Empty(t, res.Outliers)

	used := make(map[int]bool)
	for blob := 1; blob <= 3; blob++ {
		label, frac := majorityLabel(res.Assignments, indicesWithLabel(set.Labels, blob))
		assert.GreaterOrEqual(t, frac, 0.95, "blob %d is split", blob)
		assert.False(t, used[label], "blobs share component %d", label)
		used[label] = true
	}

	assert.InDelta(t, 1.0, floats.Sum(res.Weights), 1e-9)
	for c, w := range res.Weights {
		assert.InDelta(t, 1.0/3, w, 0.05, "weight %d", c)
		_, dist := nearestCenter(res.Means[c])
		assert.Less(t, dist, 0.5, "mean %d = %v", c, res.Means[c])
		for d := range res.Covariances[c] {
			assert.Greater(t, res.Covariances[c][d][d], 0.0)
		}
		assert.Equal(t, res.Covariances[c][0][1], res.Covariances[c][1][0], "covariance %d is not symmetric", c)
	}

	for i, resp := range res.Responsibilities {
		assert.InDelta(t, 1.0, floats.Sum(resp), 1e-9, "responsibilities of point %d", i)
		assert.Equal(t, floats.MaxIdx(resp)+1, res.Assignments[i])
	}
	assert.False(t, math.IsNaN(res.LogLikelihood))
	assert.GreaterOrEqual(t, res.BestRun, 0)
	assert.Less(t, res.BestRun, cfg.NRuns)
}

func TestGMMDeterministic(t *testing.T) {
	data := threeBlobs(3).Points

	cfg := DefaultGMMConfig(3)
	cfg.NRuns = 4
	cfg.Workers = 1
	a, err := GMMDataset(mustDataset(t, data), cfg)
	require.NoError(t, err)

	cfg.Workers = 4
	b, err := GMMDataset(mustDataset(t, data), cfg)
	require.NoError(t, err)

	assert.Equal(t, a.Assignments, b.Assignments)
	assert.Equal(t, a.BestRun, b.BestRun)
	assert.Equal(t, a.LogLikelihood, b.LogLikelihood)
	assert.Equal(t, a.Means, b.Means)
}

func TestGMMSingleComponent(t *testing.T) {
	data := randomPoints(80, 2, 4)
	res, err := GMMDataset(mustDataset(t, data), DefaultGMMConfig(1))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Weights[0], 1e-9)
	col := make([]float64, len(data))
	for d := 0; d < 2; d++ {
		for i, p := range data {
			col[i] = p[d]
		}
		assert.InDelta(t, stat.Mean(col, nil), res.Means[0][d], 1e-9)
		// Maximum-likelihood (biased) variance plus the regularizer.
		_, variance := stat.PopMeanVariance(col, nil)
		assert.InDelta(t, variance+1e-6, res.Covariances[0][d][d], 1e-6*variance)
	}
	for i := range data {
		assert.Equal(t, 1, res.Assignments[i])
	}
}

func TestEMLogLikelihoodNonDecreasing(t *testing.T) {
	ds := mustDataset(t, threeBlobs(8).Points)
	k := 3

	start := lloyd(ds, k, 2, 1e-4, newRand(5), 1, zap.NewNop())
	run := &emRun{resp: make([][]float64, ds.Len())}
	for i, c := range start.labels {
		run.resp[i] = make([]float64, k)
		run.resp[i][c] = 1
	}

	// Without regularization every M step is an exact maximization.
	prev := math.Inf(-1)
	for iter := 0; iter < 25; iter++ {
		mStep(ds, run, 0)
		ll, err := eStep(ds, run)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, ll, prev-1e-9, "log-likelihood fell at iteration %d", iter)
		prev = ll
	}
}

func TestGMMClusterCount(t *testing.T) {
	data := [][]float64{{0, 0}, {1, 1}, {2, 0}}
	for _, k := range []int{0, 4} {
		_, err := GMM(data, DefaultGMMConfig(k))
		assert.True(t, errors.Is(err, ErrInvalidParameter), "k=%d: err = %v", k, err)
		assert.True(t, errors.Is(err, ErrFit), "k=%d: err = %v", k, err)
	}
}

func TestGMMConfigValidation(t *testing.T) {
	data := randomPoints(10, 2, 1)
	tests := []struct {
		name   string
		mutate func(*GMMConfig)
	}{
		{"negative NRuns", func(c *GMMConfig) { c.NRuns = -1 }},
		{"negative MaxIterations", func(c *GMMConfig) { c.MaxIterations = -3 }},
		{"negative Tolerance", func(c *GMMConfig) { c.Tolerance = -1 }},
		{"negative RegCovar", func(c *GMMConfig) { c.RegCovar = -1 }},
		{"NaN RegCovar", func(c *GMMConfig) { c.RegCovar = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGMMConfig(2)
			tt.mutate(&cfg)
			_, err := GMM(data, cfg)
			assert.True(t, errors.Is(err, ErrInvalidParameter), "err = %v", err)
		})
	}
}

func TestEStepRejectsSingularCovariance(t *testing.T) {
	ds := mustDataset(t, [][]float64{{0, 0}, {0, 0}, {0, 0}})
	run := &emRun{resp: [][]float64{{1}, {1}, {1}}}
	// Identical points with no regularization give a zero covariance.
	mStep(ds, run, 0)

	_, err := eStep(ds, run)
	assert.True(t, errors.Is(err, ErrFit), "err = %v", err)
}

func TestFitRunsKeepsSurvivors(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fit := func(seed uint64) (*emRun, error) {
		if seed%2 == 0 {
			return nil, errors.Wrap(ErrFit, "singular")
		}
		return &emRun{logLikelihood: float64(seed)}, nil
	}

	runs, err := fitRuns([]uint64{1, 2, 3, 4}, 2, zap.New(core), fit)
	require.NoError(t, err)
	require.Len(t, runs, 4)
	assert.Nil(t, runs[1])
	assert.Nil(t, runs[3])
	assert.Equal(t, 3.0, runs[2].logLikelihood)
	assert.Equal(t, 2, logs.FilterMessage("gmm run failed").Len())
}

func TestFitRunsAllFail(t *testing.T) {
	fit := func(uint64) (*emRun, error) { return nil, errors.Wrap(ErrFit, "singular") }

	runs, err := fitRuns([]uint64{1, 2, 3}, 3, zap.NewNop(), fit)
	assert.Nil(t, runs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFit), "err = %v", err)
	assert.Contains(t, err.Error(), "all 3 gmm runs failed")
}
