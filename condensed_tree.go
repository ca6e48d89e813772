package cluster

import (
	"math"
	"slices"
)

// CondensedTreeEntry is one edge of the condensed tree. A point entry
// (ChildSize == 1, Child < NumPoints) records the λ at which the point fell
// out of Parent; a cluster entry records the λ at which Child split off.
type CondensedTreeEntry struct {
	Parent    int
	Child     int
	Lambda    float64
	ChildSize int
}

// CondensedTree is the dendrogram pruned to splits that keep at least
// MinClusterSize points on both sides. Points keep their IDs 0..n-1; the
// root cluster is NumPoints and later clusters count up from there in
// breadth-first order, so a child ID is always greater than its parent's.
type CondensedTree struct {
	Entries   []CondensedTreeEntry
	NumPoints int
}

// Root returns the ID of the cluster containing every point.
func (t *CondensedTree) Root() int { return t.NumPoints }

// CondenseTree condenses a single-linkage dendrogram. Whenever a merge has
// a side with fewer than minClusterSize points, those points fall out of
// the surviving cluster at λ = 1/distance (+Inf at distance 0) instead of
// forming a new cluster.
func CondenseTree(dendrogram Dendrogram, minClusterSize int) *CondensedTree {
	numRows := len(dendrogram)
	if numRows == 0 {
		return &CondensedTree{NumPoints: 1}
	}

	numPoints := numRows + 1
	root := 2 * numRows
	nextLabel := numPoints + 1

	relabel := make(map[int]int)
	relabel[root] = numPoints
	ignore := make([]bool, 2*numPoints-1)

	var entries []CondensedTreeEntry

	// collapse emits a point entry for every leaf below subtreeRoot and
	// stops the outer walk from visiting that subtree again.
	collapse := func(subtreeRoot, parentCluster int, lambda float64) {
		for _, sub := range bfsFromHierarchy(dendrogram, subtreeRoot, numPoints) {
			if sub < numPoints {
				entries = append(entries, CondensedTreeEntry{
					Parent:    parentCluster,
					Child:     sub,
					Lambda:    lambda,
					ChildSize: 1,
				})
			}
			ignore[sub] = true
		}
	}

	size := func(node int) int {
		if node < numPoints {
			return 1
		}
		return dendrogram[node-numPoints].Size
	}

	for _, node := range bfsFromHierarchy(dendrogram, root, numPoints) {
		if ignore[node] || node < numPoints {
			continue
		}

		m := dendrogram[node-numPoints]
		lambda := math.Inf(1)
		if m.Distance > 0 {
			lambda = 1 / m.Distance
		}

		leftCount, rightCount := size(m.Left), size(m.Right)
		leftBig := leftCount >= minClusterSize
		rightBig := rightCount >= minClusterSize
		parentCluster := relabel[node]

		switch {
		case leftBig && rightBig:
			relabel[m.Left] = nextLabel
			nextLabel++
			entries = append(entries, CondensedTreeEntry{
				Parent:    parentCluster,
				Child:     relabel[m.Left],
				Lambda:    lambda,
				ChildSize: leftCount,
			})

			relabel[m.Right] = nextLabel
			nextLabel++
			entries = append(entries, CondensedTreeEntry{
				Parent:    parentCluster,
				Child:     relabel[m.Right],
				Lambda:    lambda,
				ChildSize: rightCount,
			})

		case !leftBig && !rightBig:
			collapse(m.Left, parentCluster, lambda)
			collapse(m.Right, parentCluster, lambda)

		case !leftBig:
			// Right continues as the same cluster.
			relabel[m.Right] = parentCluster
			collapse(m.Left, parentCluster, lambda)

		default:
			relabel[m.Left] = parentCluster
			collapse(m.Right, parentCluster, lambda)
		}
	}

	return &CondensedTree{Entries: entries, NumPoints: numPoints}
}

// bfsFromHierarchy returns every node reachable from bfsRoot in
// breadth-first order.
func bfsFromHierarchy(d Dendrogram, bfsRoot, numPoints int) []int {
	result := []int{bfsRoot}
	for i := 0; i < len(result); i++ {
		if x := result[i]; x >= numPoints {
			m := d[x-numPoints]
			result = append(result, m.Left, m.Right)
		}
	}
	return result
}

// clusterEntries returns only the cluster-to-cluster entries.
func (t *CondensedTree) clusterEntries() []CondensedTreeEntry {
	var out []CondensedTreeEntry
	for _, e := range t.Entries {
		if e.Child >= t.NumPoints {
			out = append(out, e)
		}
	}
	return out
}

// childrenOf maps every cluster to its child clusters.
func (t *CondensedTree) childrenOf() map[int][]int {
	children := make(map[int][]int)
	for _, e := range t.clusterEntries() {
		children[e.Parent] = append(children[e.Parent], e.Child)
	}
	return children
}

// parentOf maps every cluster except the root, and every point, to the
// cluster directly above it.
func (t *CondensedTree) parentOf() map[int]int {
	parents := make(map[int]int, len(t.Entries))
	for _, e := range t.Entries {
		parents[e.Child] = e.Parent
	}
	return parents
}

// Clusters returns the IDs of every cluster in the tree, root first.
func (t *CondensedTree) Clusters() []int {
	ids := []int{t.Root()}
	for _, e := range t.clusterEntries() {
		ids = append(ids, e.Child)
	}
	slices.Sort(ids)
	return ids
}

// TreeNode is the per-cluster view of a condensed tree.
type TreeNode struct {
	ID int
	// Parent is -1 for the root.
	Parent int
	// Birth is the λ at which the cluster split off its parent (0 for the
	// root).
	Birth float64
	// Size is the number of points in the cluster at birth.
	Size int
	// Deaths maps each member point to the λ at which it left this cluster,
	// either by falling out directly or through a split into child clusters.
	Deaths map[int]float64
}

// Nodes returns one TreeNode per cluster, ordered by ID.
func (t *CondensedTree) Nodes() []TreeNode {
	byParent := make(map[int][]CondensedTreeEntry)
	for _, e := range t.Entries {
		byParent[e.Parent] = append(byParent[e.Parent], e)
	}

	var pointsUnder func(c int) []int
	pointsUnder = func(c int) []int {
		var pts []int
		for _, e := range byParent[c] {
			if e.Child < t.NumPoints {
				pts = append(pts, e.Child)
			} else {
				pts = append(pts, pointsUnder(e.Child)...)
			}
		}
		return pts
	}

	nodes := []TreeNode{{ID: t.Root(), Parent: -1, Size: t.NumPoints}}
	for _, e := range t.clusterEntries() {
		nodes = append(nodes, TreeNode{ID: e.Child, Parent: e.Parent, Birth: e.Lambda, Size: e.ChildSize})
	}
	slices.SortFunc(nodes, func(a, b TreeNode) int { return a.ID - b.ID })

	for i := range nodes {
		deaths := make(map[int]float64, nodes[i].Size)
		for _, e := range byParent[nodes[i].ID] {
			if e.Child < t.NumPoints {
				deaths[e.Child] = e.Lambda
				continue
			}
			for _, p := range pointsUnder(e.Child) {
				deaths[p] = e.Lambda
			}
		}
		nodes[i].Deaths = deaths
	}
	return nodes
}
