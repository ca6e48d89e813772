package cluster

import (
	"math"
	"testing"
)

func TestOutlierScores(t *testing.T) {
	got := OutlierScores(fadingTree())
	want := []float64{0.75, 0.5, 0, 0, 0, 0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("score[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOutlierScoresPropagateDeaths(t *testing.T) {
	// Point 4 leaves cluster 9 early; 9's deepest λ lives in child 11.
	got := OutlierScores(&CondensedTree{
		NumPoints: 7,
		Entries: []CondensedTreeEntry{
			{Parent: 7, Child: 8, Lambda: 1, ChildSize: 2},
			{Parent: 7, Child: 9, Lambda: 1, ChildSize: 5},
			{Parent: 8, Child: 5, Lambda: 2, ChildSize: 1},
			{Parent: 8, Child: 6, Lambda: 2, ChildSize: 1},
			{Parent: 9, Child: 4, Lambda: 2, ChildSize: 1},
			{Parent: 9, Child: 10, Lambda: 4, ChildSize: 2},
			{Parent: 9, Child: 11, Lambda: 4, ChildSize: 2},
			{Parent: 10, Child: 0, Lambda: 5, ChildSize: 1},
			{Parent: 10, Child: 1, Lambda: 5, ChildSize: 1},
			{Parent: 11, Child: 2, Lambda: 8, ChildSize: 1},
			{Parent: 11, Child: 3, Lambda: 8, ChildSize: 1},
		},
	})
	if math.Abs(got[4]-0.75) > 1e-12 {
		t.Errorf("score[4] = %v, want 0.75", got[4])
	}
	if got[2] != 0 || got[0] != 0 {
		t.Errorf("leaf scores = %v, %v, want 0", got[0], got[2])
	}
}

func TestOutlierScoresInfinite(t *testing.T) {
	inf := math.Inf(1)
	got := OutlierScores(&CondensedTree{
		NumPoints: 3,
		Entries: []CondensedTreeEntry{
			{Parent: 3, Child: 0, Lambda: 1, ChildSize: 1},
			{Parent: 3, Child: 1, Lambda: 2, ChildSize: 1},
			{Parent: 3, Child: 2, Lambda: inf, ChildSize: 1},
		},
	})
	want := []float64{1, 1, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("score[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOutlierScoresEmpty(t *testing.T) {
	got := OutlierScores(CondenseTree(nil, 2))
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("scores = %v, want [0]", got)
	}
}
