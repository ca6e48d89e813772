package cluster

import (
	"math"
	"slices"
)

// OutlierScores computes GLOSH outlier scores in [0, 1]. A point's score is
// (λmax - λp) / λmax, where λp is the λ at which it left its cluster and
// λmax is the highest λ reached anywhere in that cluster's subtree.
func OutlierScores(tree *CondensedTree) []float64 {
	n := tree.NumPoints
	result := make([]float64, n)
	if len(tree.Entries) == 0 {
		return result
	}

	deaths := maxLambdas(tree)

	// Propagate deaths bottom-up: children have larger IDs than parents.
	clusters := tree.clusterEntries()
	slices.SortFunc(clusters, func(a, b CondensedTreeEntry) int { return b.Child - a.Child })
	for _, e := range clusters {
		deaths[e.Parent] = math.Max(deaths[e.Parent], deaths[e.Child])
	}

	for _, e := range tree.Entries {
		point := e.Child
		if point >= n {
			continue
		}

		lambdaMax := deaths[e.Parent]
		switch {
		case lambdaMax == 0 || math.IsInf(e.Lambda, 1):
			result[point] = 0
		case math.IsInf(lambdaMax, 1):
			result[point] = 1
		default:
			result[point] = (lambdaMax - e.Lambda) / lambdaMax
		}
	}
	return result
}
