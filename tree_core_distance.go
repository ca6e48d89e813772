package cluster

// CoreDistancesTree computes core distances with KNN queries against a
// spatial index instead of a full distance matrix. For each point it asks for
// minSamples+1 neighbors (the point itself is one of them) and keeps the
// minSamples-th non-self distance. If duplicates of a point crowd the point
// out of its own result, every returned distance is 0 and so is the answer.
// minSamples must already be validated.
func CoreDistancesTree(tree SpatialIndex, minSamples, workers int) []float64 {
	ds := tree.Dataset()
	n := ds.Len()
	core := make([]float64, n)

	parallelRows(n, workers, func(start, end int) {
		for i := start; i < end; i++ {
			indices, distances := tree.QueryKNN(ds.Row(i), minSamples+1)
			seen := 0
			for j, idx := range indices {
				if idx == i {
					continue
				}
				seen++
				if seen == minSamples {
					core[i] = distances[j]
					break
				}
			}
		}
	})

	return core
}
