package cluster

import "slices"

// Result is the output shared by every engine.
type Result struct {
	// Clusters maps each cluster ID (1..k) to its points in ascending order.
	Clusters map[int][]int

	// Outliers lists the points that belong to no cluster, ascending. Only
	// density-based clustering produces outliers.
	Outliers []int

	// Assignments[i] is the cluster ID of point i, or 0 for an outlier.
	Assignments []int
}

// newResult builds a Result from per-point labels, where 0 marks noise.
func newResult(assignments []int) *Result {
	r := &Result{
		Clusters:    make(map[int][]int),
		Outliers:    []int{},
		Assignments: assignments,
	}
	for i, label := range assignments {
		if label == 0 {
			r.Outliers = append(r.Outliers, i)
			continue
		}
		r.Clusters[label] = append(r.Clusters[label], i)
	}
	return r
}

// NumClusters returns the number of clusters found.
func (r *Result) NumClusters() int { return len(r.Clusters) }

// ClusterIDs returns the cluster IDs in ascending order.
func (r *Result) ClusterIDs() []int {
	ids := make([]int, 0, len(r.Clusters))
	for id := range r.Clusters {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// GroupByCluster groups items by the parallel assignments slice, keeping
// input order within each group. Outliers are grouped under 0.
//
// If the two slices differ in length it returns an empty map rather than an
// error or a partial grouping.
func GroupByCluster[T any](assignments []int, items []T) map[int][]T {
	groups := make(map[int][]T)
	if len(assignments) != len(items) {
		return groups
	}
	for i, label := range assignments {
		groups[label] = append(groups[label], items[i])
	}
	return groups
}

// DensityResult is the detailed output of HDBSCAN.
type DensityResult struct {
	Result

	// Probabilities indicates how strongly each point belongs to its
	// cluster, in [0, 1]. Outliers have probability 0.
	Probabilities []float64

	// OutlierScores is the GLOSH score of each point, in [0, 1]. Values
	// near 1 indicate strong outliers.
	OutlierScores []float64

	// Stabilities maps each cluster ID in Clusters to its stability.
	Stabilities map[int]float64

	// TreeClusters maps each cluster ID in Clusters to its node in
	// CondensedTree (index ID-1).
	TreeClusters []int

	CondensedTree     *CondensedTree
	SingleLinkageTree Dendrogram
}

// CentroidResult is the detailed output of k-means.
type CentroidResult struct {
	Result

	// Centroids[c-1] is the centroid of cluster c.
	Centroids [][]float64

	// Inertia is the final within-cluster sum of squared distances.
	Inertia float64

	Iterations int
	Converged  bool

	// InertiaTrace records the inertia after every assignment step; it is
	// non-increasing.
	InertiaTrace []float64
}

// MixtureResult is the detailed output of the Gaussian mixture engine.
type MixtureResult struct {
	Result

	// Weights, Means and Covariances describe component c at index c-1.
	Weights     []float64
	Means       [][]float64
	Covariances [][][]float64

	// LogLikelihood is the mean per-sample log-likelihood of the best run.
	LogLikelihood float64

	Iterations int
	Converged  bool

	// BestRun is the index of the restart that was kept.
	BestRun int

	// Responsibilities[i][c-1] is the posterior probability of component c
	// for point i.
	Responsibilities [][]float64
}
