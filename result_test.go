package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewResult(t *testing.T) {
	r := newResult([]int{2, 0, 1, 2, 0})

	assert.Equal(t, map[int][]int{1: {2}, 2: {0, 3}}, r.Clusters)
	assert.Equal(t, []int{1, 4}, r.Outliers)
	assert.Equal(t, 2, r.NumClusters())
	assert.Equal(t, []int{1, 2}, r.ClusterIDs())

	empty := newResult([]int{1, 1})
	assert.NotNil(t, empty.Outliers)
	assert.Empty(t, empty.Outliers)
}

func TestGroupByCluster(t *testing.T) {
	names := []string{"a", "b", "c", "d"}
	got := GroupByCluster([]int{1, 0, 1, 2}, names)
	assert.Equal(t, map[int][]string{0: {"b"}, 1: {"a", "c"}, 2: {"d"}}, got)

	mismatch := GroupByCluster([]int{1, 1}, names)
	assert.NotNil(t, mismatch)
	assert.Empty(t, mismatch)
}
