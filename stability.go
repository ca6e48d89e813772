package cluster

// ComputeStability returns the stability of every cluster in the tree:
//
//	stability(C) = Σ over entries with Parent == C of (entry.Lambda - birth(C)) * entry.ChildSize
//
// birth(C) is the λ of the entry where C appears as a child; the root is
// born at 0. This equals the per-member sum of (death - birth) over the
// cluster's points.
func ComputeStability(tree *CondensedTree) map[int]float64 {
	births := map[int]float64{tree.Root(): 0}
	for _, e := range tree.clusterEntries() {
		births[e.Child] = e.Lambda
	}

	stability := make(map[int]float64, len(births))
	for c := range births {
		stability[c] = 0
	}
	for _, e := range tree.Entries {
		birth := births[e.Parent]
		// Both ends at +Inf (duplicate points) contribute nothing.
		if e.Lambda == birth {
			continue
		}
		stability[e.Parent] += (e.Lambda - birth) * float64(e.ChildSize)
	}

	return stability
}
