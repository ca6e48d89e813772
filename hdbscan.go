package cluster

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// HDBSCANConfig controls density-based clustering.
// Start with [DefaultHDBSCANConfig] and override the fields you need.
type HDBSCANConfig struct {
	// MinClusterSize is the smallest group of points considered a cluster.
	// Must be >= 2. Default: 5.
	MinClusterSize int

	// MinSamples is the neighbor rank used for core distances. Higher values
	// label more points as noise. 0 means MinClusterSize. Must be < n.
	MinSamples int

	// Metric measures point distance. Default: EuclideanMetric.
	Metric Metric

	// ClusterSelectionMethod is SelectEOM (default) or SelectLeaf.
	ClusterSelectionMethod SelectionMethod

	// ClusterSelectionEpsilon is a distance below which clusters are not
	// split further. 0 disables it. Must be >= 0. Default: 1e-4.
	ClusterSelectionEpsilon float64

	// Alpha scales core distances before the mutual-reachability
	// transform. 0 means 1. Must be > 0. Default: 1.
	Alpha float64

	// Algorithm selects the core-distance and MST strategy. Default: auto.
	Algorithm Algorithm

	// LeafSize is the KD-tree and ball tree leaf capacity. Default: 40.
	LeafSize int

	// Workers bounds the goroutines used by parallel stages. 0 means
	// runtime.NumCPU(); 1 runs everything sequentially.
	Workers int

	// Logger receives stage timings and warnings. nil disables logging.
	Logger *zap.Logger
}

// DefaultHDBSCANConfig returns an HDBSCANConfig with the documented defaults.
func DefaultHDBSCANConfig() HDBSCANConfig {
	return HDBSCANConfig{
		MinClusterSize:          5,
		Metric:                  EuclideanMetric{},
		ClusterSelectionMethod:  SelectEOM,
		ClusterSelectionEpsilon: 1e-4,
		Alpha:                   1.0,
		Algorithm:               AlgorithmAuto,
		LeafSize:                defaultLeafSize,
	}
}

func (cfg *HDBSCANConfig) applyDefaults() {
	if cfg.MinSamples == 0 {
		cfg.MinSamples = cfg.MinClusterSize
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.ClusterSelectionMethod == "" {
		cfg.ClusterSelectionMethod = SelectEOM
	}
	if cfg.Alpha == 0 {
		cfg.Alpha = 1.0
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = defaultLeafSize
	}
	cfg.Workers = defaultWorkers(cfg.Workers)
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
}

func (cfg *HDBSCANConfig) validate(n int) error {
	if cfg.MinClusterSize < 2 {
		return errors.WithHint(
			invalidParamf("cluster: MinClusterSize must be >= 2, got %d", cfg.MinClusterSize),
			"a cluster needs at least two points",
		)
	}
	if cfg.MinSamples < 0 {
		return invalidParamf("cluster: MinSamples must be >= 0 (0 means MinClusterSize), got %d", cfg.MinSamples)
	}
	if err := checkMinSamples(cfg.MinSamples, n); err != nil {
		return errors.WithHint(err, "lower MinSamples (or MinClusterSize when MinSamples is 0) or add points")
	}
	if cfg.Alpha < 0 || math.IsNaN(cfg.Alpha) || math.IsInf(cfg.Alpha, 0) {
		return invalidParamf("cluster: Alpha must be a finite value > 0, got %v", cfg.Alpha)
	}
	if cfg.ClusterSelectionEpsilon < 0 || math.IsNaN(cfg.ClusterSelectionEpsilon) {
		return invalidParamf("cluster: ClusterSelectionEpsilon must be >= 0, got %v", cfg.ClusterSelectionEpsilon)
	}
	switch cfg.ClusterSelectionMethod {
	case SelectEOM, SelectLeaf:
	default:
		return invalidParamf("cluster: ClusterSelectionMethod must be %q or %q, got %q", SelectEOM, SelectLeaf, cfg.ClusterSelectionMethod)
	}
	switch cfg.Algorithm {
	case AlgorithmAuto, AlgorithmBrute, AlgorithmBoruvkaBrute, AlgorithmPrimsKDTree, AlgorithmBoruvkaKDTree,
		AlgorithmPrimsBalltree, AlgorithmBoruvkaBalltree:
	default:
		return invalidParamf("cluster: invalid Algorithm %q", cfg.Algorithm)
	}
	metric := cfg.Metric
	if m, ok := metric.(*MinkowskiMetric); ok && m != nil {
		metric = *m
	}
	if m, ok := metric.(MinkowskiMetric); ok && !(m.P >= 1) {
		return invalidParamf("cluster: MinkowskiMetric P must be >= 1, got %v", m.P)
	}
	if cfg.LeafSize < 1 {
		return invalidParamf("cluster: LeafSize must be >= 1, got %d", cfg.LeafSize)
	}
	if cfg.Workers < 1 {
		return invalidParamf("cluster: Workers must be >= 0, got %d", cfg.Workers)
	}
	return nil
}

// HDBSCAN clusters points with HDBSCAN. Cluster IDs are 1..k and outliers
// get 0.
func HDBSCAN(data [][]float64, cfg HDBSCANConfig) (*Result, error) {
	ds, err := NewDataset(data)
	if err != nil {
		return nil, err
	}
	res, err := HDBSCANDataset(ds, cfg)
	if err != nil {
		return nil, err
	}
	return &res.Result, nil
}

// HDBSCANDataset clusters ds and returns the full density result, including
// the condensed tree and per-point scores.
func HDBSCANDataset(ds *Dataset, cfg HDBSCANConfig) (*DensityResult, error) {
	if err := checkDataset(ds); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(ds.Len()); err != nil {
		return nil, err
	}

	algo, err := selectAlgorithm(cfg, ds.Dims())
	if err != nil {
		return nil, err
	}

	log := cfg.Logger.With(zap.String("engine", "hdbscan"), zap.String("algorithm", string(algo)))

	edges, err := spanningTree(ds, cfg, algo, log)
	if err != nil {
		return nil, err
	}

	if inf := countInfEdges(edges); inf > 0 {
		log.Warn("spanning tree has +Inf edges; the data has disconnected components",
			zap.Int("edges", inf))
	}

	return extractClusters(edges, ds.Len(), cfg, log), nil
}

// spanningTree computes core distances and the MST of the mutual
// reachability graph with the chosen algorithm.
func spanningTree(ds *Dataset, cfg HDBSCANConfig, algo Algorithm, log *zap.Logger) ([]Edge, error) {
	n := ds.Len()
	start := time.Now()

	var (
		core  []float64
		graph Graph
	)
	switch algo {
	case AlgorithmPrimsKDTree, AlgorithmBoruvkaKDTree, AlgorithmPrimsBalltree, AlgorithmBoruvkaBalltree:
		tree, err := newSpatialIndex(ds, cfg.Metric, cfg.LeafSize, algo)
		if err != nil {
			return nil, err
		}
		core = CoreDistancesTree(tree, cfg.MinSamples, cfg.Workers)
		graph = NewVectorGraph(ds, core, cfg.Metric, cfg.Alpha)
	default:
		dist := ComputePairwiseDistances(ds, cfg.Metric, cfg.Workers)
		core = CoreDistancesFromMatrix(dist, n, cfg.MinSamples, cfg.Workers)
		graph = MutualReachability(dist, core, n, cfg.Alpha, cfg.Workers)
	}
	log.Debug("core distances", zap.Int("points", n), zap.Duration("elapsed", time.Since(start)))

	start = time.Now()
	var edges []Edge
	switch algo {
	case AlgorithmBoruvkaBrute, AlgorithmBoruvkaKDTree, AlgorithmBoruvkaBalltree:
		edges = BoruvkaMST(graph, cfg.Workers)
	default:
		edges = PrimMST(graph)
	}
	log.Debug("minimum spanning tree", zap.Int("edges", len(edges)), zap.Duration("elapsed", time.Since(start)))

	return edges, nil
}

func newSpatialIndex(ds *Dataset, metric Metric, leafSize int, algo Algorithm) (SpatialIndex, error) {
	if algo == AlgorithmPrimsBalltree || algo == AlgorithmBoruvkaBalltree {
		return NewBallTree(ds, metric, leafSize)
	}
	return NewKDTree(ds, metric, leafSize)
}

// extractClusters runs the pipeline from MST edges onward: single linkage,
// condensation, selection, labelling and scoring.
func extractClusters(edges []Edge, n int, cfg HDBSCANConfig, log *zap.Logger) *DensityResult {
	start := time.Now()

	dendrogram := SingleLinkage(edges, n)
	tree := CondenseTree(dendrogram, cfg.MinClusterSize)
	stability := ComputeStability(tree)

	var selected map[int]bool
	switch cfg.ClusterSelectionMethod {
	case SelectLeaf:
		selected = SelectClustersLeaf(tree)
	default:
		selected, _ = SelectClustersEOM(tree, stability)
	}
	selected = EpsilonSearch(tree, selected, cfg.ClusterSelectionEpsilon)

	labels, clusterIDs := LabelPoints(tree, selected)

	stabilities := make(map[int]float64, len(clusterIDs))
	for i, c := range clusterIDs {
		stabilities[i+1] = stability[c]
	}

	res := &DensityResult{
		Result:            *newResult(labels),
		Probabilities:     Probabilities(tree, labels, clusterIDs),
		OutlierScores:     OutlierScores(tree),
		Stabilities:       stabilities,
		TreeClusters:      clusterIDs,
		CondensedTree:     tree,
		SingleLinkageTree: dendrogram,
	}

	log.Debug("cluster extraction",
		zap.Int("clusters", res.NumClusters()),
		zap.Int("outliers", len(res.Outliers)),
		zap.Duration("elapsed", time.Since(start)))

	return res
}

func countInfEdges(edges []Edge) int {
	count := 0
	for _, e := range edges {
		if math.IsInf(e.Weight, 1) {
			count++
		}
	}
	return count
}
