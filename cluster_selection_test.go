package cluster

import (
	"maps"
	"slices"
	"testing"
)

func selectedIDs(m map[int]bool) []int {
	var ids []int
	for id, ok := range m {
		if ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

func TestSelectClustersEOM(t *testing.T) {
	tests := []struct {
		name      string
		leafDeath float64
		want      []int
		wantStab9 float64
	}{
		// Children win a tie with their parent.
		{"tie keeps children", 3, []int{10, 11, 12}, 4},
		{"stable parent", 2.5, []int{9, 10}, 4},
		{"stable children", 5, []int{10, 11, 12}, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := nestedTree(tt.leafDeath)
			stability := ComputeStability(tree)
			before := maps.Clone(stability)

			selected, propagated := SelectClustersEOM(tree, stability)
			if got := selectedIDs(selected); !slices.Equal(got, tt.want) {
				t.Errorf("selected = %v, want %v", got, tt.want)
			}
			if propagated[9] != tt.wantStab9 {
				t.Errorf("propagated[9] = %v, want %v", propagated[9], tt.wantStab9)
			}
			if !maps.Equal(stability, before) {
				t.Error("input stability map was modified")
			}
			if selected[tree.Root()] {
				t.Error("root must never be selected")
			}
		})
	}
}

func TestSelectClustersEOMNoClusters(t *testing.T) {
	tree := &CondensedTree{
		NumPoints: 3,
		Entries: []CondensedTreeEntry{
			{Parent: 3, Child: 0, Lambda: 1, ChildSize: 1},
			{Parent: 3, Child: 1, Lambda: 1, ChildSize: 1},
			{Parent: 3, Child: 2, Lambda: 1, ChildSize: 1},
		},
	}
	selected, _ := SelectClustersEOM(tree, ComputeStability(tree))
	if len(selected) != 0 {
		t.Errorf("selected = %v, want none", selected)
	}
}

func TestSelectClustersLeaf(t *testing.T) {
	if got := selectedIDs(SelectClustersLeaf(nestedTree(2.5))); !slices.Equal(got, []int{10, 11, 12}) {
		t.Errorf("leaves = %v, want [10 11 12]", got)
	}
	if got := SelectClustersLeaf(CondenseTree(nil, 2)); len(got) != 0 {
		t.Errorf("leaves of an empty tree = %v, want none", got)
	}
}

func TestEpsilonSearch(t *testing.T) {
	leaves := map[int]bool{10: true, 11: true, 12: true}

	tests := []struct {
		name     string
		selected map[int]bool
		epsilon  float64
		want     []int
	}{
		{"disabled", leaves, 0, []int{10, 11, 12}},
		{"below every birth distance", leaves, 0.1, []int{10, 11, 12}},
		// 11 and 12 are born at distance 0.5; their parent 9 at 1.
		{"merges into parent", leaves, 0.75, []int{9, 10}},
		{"exactly at leaf birth", leaves, 0.5, []int{10, 11, 12}},
		{"exactly at parent birth", leaves, 1, []int{9, 10}},
		// Only the root is born above 2; the cut stops one level below it.
		{"stops below root", leaves, 2, []int{9, 10}},
		{"far above every split", leaves, 1000, []int{9, 10}},
		{"nested input collapses", map[int]bool{9: true, 11: true}, 0.1, []int{9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := selectedIDs(EpsilonSearch(nestedTree(3), tt.selected, tt.epsilon))
			if !slices.Equal(got, tt.want) {
				t.Errorf("EpsilonSearch = %v, want %v", got, tt.want)
			}
		})
	}
}
