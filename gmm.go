package cluster

import (
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// GMMConfig controls the full-covariance Gaussian mixture engine.
type GMMConfig struct {
	// NClusters is the number of mixture components. Must be in [1, n].
	NClusters int

	// NRuns is the number of independent restarts; the run with the highest
	// log-likelihood is kept. Default: 10.
	NRuns int

	// MaxIterations caps EM iterations per run. Default: 100.
	MaxIterations int

	// Tolerance stops EM once the mean log-likelihood changes by less than
	// this. Default: 1e-4.
	Tolerance float64

	// RegCovar is added to every covariance diagonal to keep it positive
	// definite. Default: 1e-6.
	RegCovar float64

	// Seed seeds the PCG generator when Rand is nil. Default: 42.
	Seed uint64

	// Rand, when set, supplies the per-run seeds and Seed is ignored.
	Rand *rand.Rand

	// Workers bounds how many runs execute at once. 0 means
	// runtime.NumCPU().
	Workers int

	// Logger receives per-run outcomes. nil disables logging.
	Logger *zap.Logger
}

// DefaultGMMConfig returns a GMMConfig for k components with the documented
// defaults.
func DefaultGMMConfig(k int) GMMConfig {
	return GMMConfig{
		NClusters:     k,
		NRuns:         10,
		MaxIterations: 100,
		Tolerance:     1e-4,
		RegCovar:      1e-6,
		Seed:          42,
	}
}

func (cfg *GMMConfig) applyDefaults() {
	if cfg.NRuns == 0 {
		cfg.NRuns = 10
	}
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 100
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 1e-4
	}
	if cfg.RegCovar == 0 {
		cfg.RegCovar = 1e-6
	}
	if cfg.Rand == nil {
		cfg.Rand = newRand(cfg.Seed)
	}
	cfg.Workers = defaultWorkers(cfg.Workers)
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

func (cfg *GMMConfig) validate(n int) error {
	if cfg.NClusters < 1 || cfg.NClusters > n {
		return clusterCountError("gmm", cfg.NClusters, n)
	}
	if cfg.NRuns < 1 {
		return invalidParamf("cluster: gmm NRuns must be >= 1, got %d", cfg.NRuns)
	}
	if cfg.MaxIterations < 1 {
		return invalidParamf("cluster: gmm MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) {
		return invalidParamf("cluster: gmm Tolerance must be >= 0, got %v", cfg.Tolerance)
	}
	if cfg.RegCovar < 0 || math.IsNaN(cfg.RegCovar) {
		return invalidParamf("cluster: gmm RegCovar must be >= 0, got %v", cfg.RegCovar)
	}
	if cfg.Workers < 1 {
		return invalidParamf("cluster: Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// GMM clusters points by fitting a Gaussian mixture and taking each point's
// most probable component. Cluster IDs are 1..k; there are no outliers.
func GMM(data [][]float64, cfg GMMConfig) (*Result, error) {
	ds, err := NewDataset(data)
	if err != nil {
		return nil, err
	}
	res, err := GMMDataset(ds, cfg)
	if err != nil {
		return nil, err
	}
	return &res.Result, nil
}

// GMMDataset fits the mixture on ds and returns the best run's parameters
// and soft responsibilities along with the labels.
func GMMDataset(ds *Dataset, cfg GMMConfig) (*MixtureResult, error) {
	if err := checkDataset(ds); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(ds.Len()); err != nil {
		return nil, err
	}

	start := time.Now()
	log := cfg.Logger.With(zap.String("engine", "gmm"), zap.Int("k", cfg.NClusters))

	// Seeds are drawn up front so each run's outcome is independent of
	// scheduling.
	seeds := make([]uint64, cfg.NRuns)
	for r := range seeds {
		seeds[r] = cfg.Rand.Uint64()
	}

	runs, err := fitRuns(seeds, cfg.Workers, log, func(seed uint64) (*emRun, error) {
		return fitMixture(ds, cfg, seed)
	})
	if err != nil {
		return nil, err
	}

	best := -1
	for r, run := range runs {
		if run == nil {
			continue
		}
		if best < 0 || run.logLikelihood > runs[best].logLikelihood {
			best = r
		}
	}

	run := runs[best]
	log.Debug("gmm finished",
		zap.Int("best_run", best),
		zap.Float64("log_likelihood", run.logLikelihood),
		zap.Int("iterations", run.iterations),
		zap.Duration("elapsed", time.Since(start)))
	if !run.converged {
		log.Info("best gmm run reached the iteration cap", zap.Int("run", best))
	}

	labels := make([]int, ds.Len())
	for i, resp := range run.resp {
		labels[i] = floats.MaxIdx(resp) + 1
	}

	covs := make([][][]float64, len(run.covs))
	for c, s := range run.covs {
		covs[c] = symRows(s)
	}

	return &MixtureResult{
		Result:           *newResult(labels),
		Weights:          run.weights,
		Means:            run.means,
		Covariances:      covs,
		LogLikelihood:    run.logLikelihood,
		Iterations:       run.iterations,
		Converged:        run.converged,
		BestRun:          best,
		Responsibilities: run.resp,
	}, nil
}

// fitRuns calls fit once per seed on an errgroup bounded by workers. A
// failed run leaves a nil entry and does not stop the others; the error is
// non-nil only when every run failed.
func fitRuns(seeds []uint64, workers int, log *zap.Logger, fit func(seed uint64) (*emRun, error)) ([]*emRun, error) {
	runs := make([]*emRun, len(seeds))

	var g errgroup.Group
	g.SetLimit(workers)
	for r, seed := range seeds {
		g.Go(func() error {
			run, err := fit(seed)
			if err != nil {
				log.Warn("gmm run failed", zap.Int("run", r), zap.Error(err))
				return errors.Wrapf(err, "cluster: gmm run %d", r)
			}
			runs[r] = run
			return nil
		})
	}
	err := g.Wait()

	if slices.ContainsFunc(runs, func(run *emRun) bool { return run != nil }) {
		return runs, nil
	}
	return nil, errors.Wrapf(err, "cluster: all %d gmm runs failed", len(seeds))
}

// emRun is one fitted mixture.
type emRun struct {
	weights       []float64
	means         [][]float64
	covs          []*mat.SymDense
	resp          [][]float64
	logLikelihood float64
	iterations    int
	converged     bool
}

// fitMixture runs one EM restart: k-means initialization from seed, then
// alternating M and E steps until the mean log-likelihood settles.
func fitMixture(ds *Dataset, cfg GMMConfig, seed uint64) (*emRun, error) {
	n, k := ds.Len(), cfg.NClusters

	start := lloyd(ds, k, cfg.MaxIterations, cfg.Tolerance, newRand(seed), 1, zap.NewNop())
	resp := make([][]float64, n)
	for i, c := range start.labels {
		resp[i] = make([]float64, k)
		resp[i][c] = 1
	}

	run := &emRun{resp: resp}
	mStep(ds, run, cfg.RegCovar)
	ll, err := eStep(ds, run)
	if err != nil {
		return nil, err
	}

	for iter := 1; iter <= cfg.MaxIterations; iter++ {
		mStep(ds, run, cfg.RegCovar)
		next, err := eStep(ds, run)
		if err != nil {
			return nil, err
		}
		run.iterations = iter

		change := math.Abs(next - ll)
		ll = next
		if change < cfg.Tolerance {
			run.converged = true
			break
		}
	}

	run.logLikelihood = ll
	return run, nil
}

// eStep recomputes responsibilities from the current parameters and
// returns the mean per-sample log-likelihood.
func eStep(ds *Dataset, run *emRun) (float64, error) {
	k := len(run.weights)
	normals := make([]*distmv.Normal, k)
	for c := range normals {
		nrm, ok := distmv.NewNormal(run.means[c], run.covs[c], nil)
		if !ok {
			return 0, errors.Wrapf(ErrFit, "cluster: gmm component %d covariance is not positive definite", c)
		}
		normals[c] = nrm
	}

	logW := make([]float64, k)
	for c, w := range run.weights {
		logW[c] = math.Log(w)
	}

	total := 0.0
	logp := make([]float64, k)
	for i := range run.resp {
		x := ds.Row(i)
		for c, nrm := range normals {
			logp[c] = logW[c] + nrm.LogProb(x)
		}
		lse := floats.LogSumExp(logp)
		for c := range logp {
			run.resp[i][c] = math.Exp(logp[c] - lse)
		}
		total += lse
	}

	ll := total / float64(len(run.resp))
	if math.IsNaN(ll) || math.IsInf(ll, 0) {
		return 0, errors.Wrapf(ErrFit, "cluster: gmm log-likelihood is not finite (%v)", ll)
	}
	return ll, nil
}

// mStep re-estimates weights, means and covariances from the
// responsibilities. reg is added to every covariance diagonal.
func mStep(ds *Dataset, run *emRun, reg float64) {
	n, dims := ds.Len(), ds.Dims()
	k := len(run.resp[0])

	run.weights = make([]float64, k)
	run.means = make([][]float64, k)
	run.covs = make([]*mat.SymDense, k)

	diff := make([]float64, dims)
	for c := 0; c < k; c++ {
		nk := 10 * epsilon
		mean := make([]float64, dims)
		for i := 0; i < n; i++ {
			r := run.resp[i][c]
			nk += r
			floats.AddScaled(mean, r, ds.Row(i))
		}
		floats.Scale(1/nk, mean)

		cov := mat.NewSymDense(dims, nil)
		for i := 0; i < n; i++ {
			r := run.resp[i][c]
			if r == 0 {
				continue
			}
			floats.SubTo(diff, ds.Row(i), mean)
			cov.SymRankOne(cov, r/nk, mat.NewVecDense(dims, diff))
		}
		for d := 0; d < dims; d++ {
			cov.SetSym(d, d, cov.At(d, d)+reg)
		}

		run.weights[c] = nk / float64(n)
		run.means[c] = mean
		run.covs[c] = cov
	}
}

// epsilon is the float64 machine epsilon.
const epsilon = 2.220446049250313e-16

func symRows(s *mat.SymDense) [][]float64 {
	d := s.SymmetricDim()
	rows := make([][]float64, d)
	for i := range rows {
		rows[i] = make([]float64, d)
		for j := range rows[i] {
			rows[i][j] = s.At(i, j)
		}
	}
	return rows
}
