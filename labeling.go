package cluster

import (
	"maps"
	"math"
	"slices"
)

// LabelPoints assigns every point the label of its nearest selected
// ancestor in the condensed tree. Selected clusters are numbered 1..k in
// ascending cluster-ID order; points with no selected ancestor get 0.
// It also returns the cluster ID behind each label (index label-1).
func LabelPoints(tree *CondensedTree, selected map[int]bool) (labels []int, clusterIDs []int) {
	n := tree.NumPoints
	labels = make([]int, n)

	clusterIDs = slices.Sorted(maps.Keys(selected))
	labelOf := make(map[int]int, len(clusterIDs))
	for i, c := range clusterIDs {
		labelOf[c] = i + 1
	}

	parentOf := tree.parentOf()
	root := tree.Root()
	for p := 0; p < n; p++ {
		node, ok := parentOf[p]
		for ok && node != root {
			if l, sel := labelOf[node]; sel {
				labels[p] = l
				break
			}
			node, ok = parentOf[node]
		}
	}
	return labels, clusterIDs
}

// Probabilities returns each point's membership strength in its cluster:
// the λ at which it left the tree divided by the largest λ among the
// cluster's direct entries, clamped to [0, 1]. Noise points get 0.
func Probabilities(tree *CondensedTree, labels, clusterIDs []int) []float64 {
	deaths := maxLambdas(tree)
	probs := make([]float64, len(labels))

	for _, e := range tree.Entries {
		point := e.Child
		if point >= tree.NumPoints || labels[point] == 0 {
			continue
		}

		maxLambda := deaths[clusterIDs[labels[point]-1]]
		switch {
		case maxLambda == 0 || math.IsInf(e.Lambda, 1):
			probs[point] = 1
		default:
			probs[point] = math.Min(e.Lambda, maxLambda) / maxLambda
		}
	}
	return probs
}

// maxLambdas returns, for every cluster, the largest λ among its direct
// entries.
func maxLambdas(tree *CondensedTree) map[int]float64 {
	deaths := make(map[int]float64)
	for _, e := range tree.Entries {
		if e.Lambda > deaths[e.Parent] {
			deaths[e.Parent] = e.Lambda
		}
	}
	return deaths
}
