package cluster

import (
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
)

// KMeansConfig controls Lloyd's k-means with k-means++ seeding.
type KMeansConfig struct {
	// NClusters is the number of clusters. Must be in [1, n].
	NClusters int

	// MaxIterations caps Lloyd iterations. Default: 100. Hitting the cap is
	// not an error.
	MaxIterations int

	// Tolerance stops iterating once no centroid moves farther than this.
	// Default: 1e-4.
	Tolerance float64

	// Seed seeds the PCG generator when Rand is nil. Default: 42.
	Seed uint64

	// Rand, when set, supplies all randomness and Seed is ignored.
	Rand *rand.Rand

	// Workers bounds the goroutines used by the assignment step. 0 means
	// runtime.NumCPU().
	Workers int

	// Logger receives iteration and reseed events. nil disables logging.
	Logger *zap.Logger
}

// DefaultKMeansConfig returns a KMeansConfig for k clusters with the
// documented defaults.
func DefaultKMeansConfig(k int) KMeansConfig {
	return KMeansConfig{
		NClusters:     k,
		MaxIterations: 100,
		Tolerance:     1e-4,
		Seed:          42,
	}
}

func (cfg *KMeansConfig) applyDefaults() {
	if cfg.MaxIterations == 0 {
		cfg.MaxIterations = 100
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = 1e-4
	}
	if cfg.Rand == nil {
		cfg.Rand = newRand(cfg.Seed)
	}
	cfg.Workers = defaultWorkers(cfg.Workers)
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

func (cfg *KMeansConfig) validate(n int) error {
	if cfg.NClusters < 1 || cfg.NClusters > n {
		return clusterCountError("kmeans", cfg.NClusters, n)
	}
	if cfg.MaxIterations < 1 {
		return invalidParamf("cluster: kmeans MaxIterations must be >= 1, got %d", cfg.MaxIterations)
	}
	if cfg.Tolerance < 0 || math.IsNaN(cfg.Tolerance) {
		return invalidParamf("cluster: kmeans Tolerance must be >= 0, got %v", cfg.Tolerance)
	}
	if cfg.Workers < 1 {
		return invalidParamf("cluster: Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// newRand returns a PCG-backed generator for seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// KMeans clusters points into NClusters groups. Every point gets a cluster
// ID in 1..k; there are no outliers.
func KMeans(data [][]float64, cfg KMeansConfig) (*Result, error) {
	ds, err := NewDataset(data)
	if err != nil {
		return nil, err
	}
	res, err := KMeansDataset(ds, cfg)
	if err != nil {
		return nil, err
	}
	return &res.Result, nil
}

// KMeansDataset clusters ds and returns centroids and the inertia trace
// along with the labels.
func KMeansDataset(ds *Dataset, cfg KMeansConfig) (*CentroidResult, error) {
	if err := checkDataset(ds); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(ds.Len()); err != nil {
		return nil, err
	}

	start := time.Now()
	log := cfg.Logger.With(zap.String("engine", "kmeans"), zap.Int("k", cfg.NClusters))

	run := lloyd(ds, cfg.NClusters, cfg.MaxIterations, cfg.Tolerance, cfg.Rand, cfg.Workers, log)

	if !run.converged {
		log.Info("kmeans reached the iteration cap", zap.Int("iterations", run.iterations))
	}
	log.Debug("kmeans finished",
		zap.Int("iterations", run.iterations),
		zap.Float64("inertia", run.inertia),
		zap.Duration("elapsed", time.Since(start)))

	labels := make([]int, len(run.labels))
	for i, c := range run.labels {
		labels[i] = c + 1
	}
	return &CentroidResult{
		Result:       *newResult(labels),
		Centroids:    run.centroids,
		Inertia:      run.inertia,
		Iterations:   run.iterations,
		Converged:    run.converged,
		InertiaTrace: run.trace,
	}, nil
}

// lloydRun is the outcome of one k-means fit. Labels are 0-based.
type lloydRun struct {
	labels     []int
	centroids  [][]float64
	inertia    float64
	iterations int
	converged  bool
	trace      []float64
}

// lloyd runs k-means++ seeding followed by Lloyd iterations. k must already
// be validated against the dataset size.
func lloyd(ds *Dataset, k, maxIter int, tol float64, rng *rand.Rand, workers int, log *zap.Logger) lloydRun {
	n := ds.Len()
	centroids := seedPlusPlus(ds, k, rng)

	labels := make([]int, n)
	sqDists := make([]float64, n)
	run := lloydRun{}

	for iter := 1; iter <= maxIter; iter++ {
		assignNearest(ds, centroids, labels, sqDists, workers)
		run.trace = append(run.trace, floats.Sum(sqDists))
		run.iterations = iter

		next, reseeded := updateCentroids(ds, k, labels, sqDists)
		if reseeded > 0 {
			log.Info("reseeded empty clusters", zap.Int("iteration", iter), zap.Int("clusters", reseeded))
		}

		shift := 0.0
		for c := range centroids {
			shift = math.Max(shift, floats.Distance(centroids[c], next[c], 2))
		}
		centroids = next

		if shift < tol {
			run.converged = true
			break
		}
	}

	assignNearest(ds, centroids, labels, sqDists, workers)
	run.inertia = floats.Sum(sqDists)
	run.trace = append(run.trace, run.inertia)
	run.labels = labels
	run.centroids = centroids
	return run
}

// seedPlusPlus picks k initial centroids: the first uniformly at random,
// each later one with probability proportional to its squared distance to
// the nearest centroid chosen so far.
func seedPlusPlus(ds *Dataset, k int, rng *rand.Rand) [][]float64 {
	n := ds.Len()
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clonePoint(ds.Row(rng.IntN(n))))

	minSq := make([]float64, n)
	for i := range minSq {
		minSq[i] = sqDistance(ds.Row(i), centroids[0])
	}

	for len(centroids) < k {
		target := rng.Float64() * floats.Sum(minSq)
		chosen := n - 1
		cum := 0.0
		for i, w := range minSq {
			cum += w
			if cum > target {
				chosen = i
				break
			}
		}

		c := clonePoint(ds.Row(chosen))
		centroids = append(centroids, c)
		for i := range minSq {
			minSq[i] = math.Min(minSq[i], sqDistance(ds.Row(i), c))
		}
	}
	return centroids
}

// assignNearest sets labels[i] to the nearest centroid (lowest index on
// ties) and sqDists[i] to the squared distance to it.
func assignNearest(ds *Dataset, centroids [][]float64, labels []int, sqDists []float64, workers int) {
	parallelRows(ds.Len(), workers, func(start, end int) {
		for i := start; i < end; i++ {
			p := ds.Row(i)
			best, bestSq := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := sqDistance(p, centroid); d < bestSq {
					best, bestSq = c, d
				}
			}
			labels[i] = best
			sqDists[i] = bestSq
		}
	})
}

// updateCentroids returns the mean of every cluster. A cluster that lost
// all its points is moved onto the point farthest from its own centroid;
// the number of such reseeds is returned.
func updateCentroids(ds *Dataset, k int, labels []int, sqDists []float64) ([][]float64, int) {
	dims := ds.Dims()
	sums := make([][]float64, k)
	for c := range sums {
		sums[c] = make([]float64, dims)
	}
	counts := make([]int, k)
	for i, c := range labels {
		floats.Add(sums[c], ds.Row(i))
		counts[c]++
	}

	reseeded := 0
	taken := make(map[int]bool)
	for c := range sums {
		if counts[c] > 0 {
			floats.Scale(1/float64(counts[c]), sums[c])
			continue
		}
		far := -1
		for i, d := range sqDists {
			if !taken[i] && (far < 0 || d > sqDists[far]) {
				far = i
			}
		}
		taken[far] = true
		copy(sums[c], ds.Row(far))
		reseeded++
	}
	return sums, reseeded
}

func sqDistance(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

func clonePoint(p []float64) []float64 {
	return append([]float64(nil), p...)
}
