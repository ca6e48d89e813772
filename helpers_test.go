package cluster

import (
	"math/rand/v2"
	"testing"

	"github.com/TrevorS/cluster/internal/synth"
)

// blobsWithNoise returns 150 blob points (three blobs of 50, spread 0.5)
// followed by 20 uniform noise points in [-10, 10]².
func blobsWithNoise(seed uint64) synth.Set {
	g := synth.New(seed)
	return synth.Concat(synth.ThreeBlobs(g, 0.5), g.Noise(20, 2, -10, 10))
}

func mustDataset(t testing.TB, points [][]float64) *Dataset {
	t.Helper()
	ds, err := NewDataset(points)
	if err != nil {
		t.Fatalf("NewDataset: %v", err)
	}
	return ds
}

func randomPoints(n, dims int, seed uint64) [][]float64 {
	rng := rand.New(rand.NewPCG(seed, seed))
	points := make([][]float64, n)
	for i := range points {
		points[i] = make([]float64, dims)
		for j := range points[i] {
			points[i][j] = rng.Float64() * 100
		}
	}
	return points
}

// majorityLabel returns the most common label among idx and the fraction of
// idx carrying it.
func majorityLabel(labels []int, idx []int) (int, float64) {
	counts := make(map[int]int)
	for _, i := range idx {
		counts[labels[i]]++
	}
	best, bestCount := 0, -1
	for l, c := range counts {
		if c > bestCount || (c == bestCount && l < best) {
			best, bestCount = l, c
		}
	}
	return best, float64(bestCount) / float64(len(idx))
}

func indicesWithLabel(labels []int, want int) []int {
	var out []int
	for i, l := range labels {
		if l == want {
			out = append(out, i)
		}
	}
	return out
}

// checkPartition fails unless res covers every point exactly once.
func checkPartition(t *testing.T, res *Result, n int) {
	t.Helper()
	if len(res.Assignments) != n {
		t.Fatalf("len(Assignments) = %d, want %d", len(res.Assignments), n)
	}
	seen := make([]bool, n)
	for id, members := range res.Clusters {
		if id < 1 {
			t.Errorf("cluster ID %d, want >= 1", id)
		}
		for _, p := range members {
			if seen[p] {
				t.Errorf("point %d appears twice", p)
			}
			seen[p] = true
			if res.Assignments[p] != id {
				t.Errorf("Assignments[%d] = %d, but point is in cluster %d", p, res.Assignments[p], id)
			}
		}
	}
	for _, p := range res.Outliers {
		if seen[p] {
			t.Errorf("outlier %d is also in a cluster", p)
		}
		seen[p] = true
		if res.Assignments[p] != 0 {
			t.Errorf("Assignments[%d] = %d for an outlier", p, res.Assignments[p])
		}
	}
	for p, ok := range seen {
		if !ok {
			t.Errorf("point %d is neither clustered nor an outlier", p)
		}
	}
}
