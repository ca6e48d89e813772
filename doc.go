// Package cluster groups unlabeled numeric points into clusters.
//
// The main engine is HDBSCAN (Hierarchical Density-Based Spatial Clustering
// of Applications with Noise). It builds the minimum spanning tree of the
// mutual-reachability graph, condenses the resulting single-linkage
// hierarchy with a minimum cluster size, and extracts the flat clustering
// that maximizes cluster stability. Points that belong to no stable cluster
// are reported as outliers. Two simpler engines share the same result
// shape: Lloyd's k-means with k-means++ seeding, and a full-covariance
// Gaussian mixture fitted by EM with restarts.
//
// Basic usage:
//
//	cfg := cluster.DefaultHDBSCANConfig()
//	cfg.MinClusterSize = 10
//	res, err := cluster.HDBSCAN(points, cfg)
//	// res.Assignments[i] is the cluster ID of point i (0 = outlier)
//	// res.Clusters[id] lists the points of cluster id
//
// The centroid and mixture engines are seeded explicitly and are
// deterministic for a given seed:
//
//	res, err := cluster.KMeans(points, cluster.DefaultKMeansConfig(3))
//	res, err := cluster.GMM(points, cluster.DefaultGMMConfig(3))
//
// All three are also available as [Engine] values, and the ...Dataset entry
// points return detailed results (membership probabilities, GLOSH outlier
// scores, centroids, mixture parameters).
//
// # Algorithm selection
//
// With HDBSCANConfig.Algorithm set to "auto", core distances come from an
// exact KD-tree and the spanning tree from parallel Borůvka over an
// on-the-fly graph when the metric is Euclidean, Manhattan or Chebyshev.
// Other metrics use the full distance matrix. Every algorithm returns the
// same spanning tree: ties between equal weights are broken by point index.
package cluster
