package cluster

import (
	"maps"
	"slices"
)

// SelectionMethod picks how flat clusters are extracted from the condensed
// tree.
type SelectionMethod string

const (
	// SelectEOM maximizes total stability (excess of mass).
	SelectEOM SelectionMethod = "eom"
	// SelectLeaf takes the leaves of the cluster tree.
	SelectLeaf SelectionMethod = "leaf"
)

// SelectClustersEOM performs excess-of-mass selection. Clusters are visited
// bottom-up; leaves start selected. A cluster is selected only if its own
// stability is strictly greater than the summed stability of its children,
// in which case its descendants are deselected; otherwise it carries that
// sum upward and its descendants' selections stand. The root is never
// selected.
//
// Returns the selected cluster IDs and the propagated stabilities.
func SelectClustersEOM(tree *CondensedTree, stability map[int]float64) (map[int]bool, map[int]float64) {
	stab := maps.Clone(stability)
	if stab == nil {
		stab = make(map[int]float64)
	}
	root := tree.Root()
	childrenOf := tree.childrenOf()

	// Children always have larger IDs than their parents, so descending ID
	// order is bottom-up.
	nodes := tree.Clusters()
	slices.Reverse(nodes)

	isCluster := make(map[int]bool, len(nodes))
	for _, node := range nodes {
		if node != root {
			isCluster[node] = true
		}
	}

	for _, node := range nodes {
		if node == root {
			continue
		}
		children := childrenOf[node]
		if len(children) == 0 {
			continue
		}

		subtree := 0.0
		for _, child := range children {
			subtree += stab[child]
		}

		if stab[node] > subtree {
			for _, d := range descendants(childrenOf, node) {
				isCluster[d] = false
			}
		} else {
			isCluster[node] = false
			stab[node] = subtree
		}
	}

	selected := make(map[int]bool)
	for id, ok := range isCluster {
		if ok {
			selected[id] = true
		}
	}
	return selected, stab
}

// SelectClustersLeaf selects every leaf of the cluster tree. A tree with no
// splits yields no clusters.
func SelectClustersLeaf(tree *CondensedTree) map[int]bool {
	childrenOf := tree.childrenOf()
	leaves := make(map[int]bool)
	for _, e := range tree.clusterEntries() {
		if len(childrenOf[e.Child]) == 0 {
			leaves[e.Child] = true
		}
	}
	return leaves
}

// EpsilonSearch makes a flat cut at distance epsilon. Every selected
// cluster born at a distance (1/λ) below epsilon is replaced by its nearest
// ancestor born above epsilon. When no ancestor below the root qualifies,
// the highest ancestor below the root is used instead; the root itself is
// never returned. Clusters nested inside another result cluster are dropped
// so the selection stays flat.
func EpsilonSearch(tree *CondensedTree, selected map[int]bool, epsilon float64) map[int]bool {
	if epsilon <= 0 {
		return selected
	}

	root := tree.Root()
	parentOf := make(map[int]int)
	birth := make(map[int]float64)
	for _, e := range tree.clusterEntries() {
		parentOf[e.Child] = e.Parent
		birth[e.Child] = e.Lambda
	}

	result := make(map[int]bool, len(selected))
	for c := range selected {
		result[epsilonAncestor(parentOf, birth, root, c, epsilon)] = true
	}

	for c := range result {
		for p, ok := parentOf[c]; ok; p, ok = parentOf[p] {
			if result[p] {
				delete(result, c)
				break
			}
		}
	}
	return result
}

// epsilonAncestor climbs from c to the cluster that stands for it in an
// epsilon cut.
func epsilonAncestor(parentOf map[int]int, birth map[int]float64, root, c int, epsilon float64) int {
	if lambda, ok := birth[c]; !ok || 1/lambda >= epsilon {
		return c
	}
	for {
		parent, ok := parentOf[c]
		if !ok || parent == root {
			return c
		}
		if 1/birth[parent] > epsilon {
			return parent
		}
		c = parent
	}
}

// descendants returns every cluster strictly below node.
func descendants(childrenOf map[int][]int, node int) []int {
	var out []int
	queue := slices.Clone(childrenOf[node])
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		out = append(out, c)
		queue = append(queue, childrenOf[c]...)
	}
	return out
}
