package cluster

import "testing"

func benchDataset(b *testing.B, n, dims int) *Dataset {
	b.Helper()
	return mustDataset(b, randomPoints(n, dims, 42))
}

// --- Pairwise Distances ---

func benchPairwiseDistances(b *testing.B, n int) {
	ds := benchDataset(b, n, 2)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ComputePairwiseDistances(ds, EuclideanMetric{}, 1)
	}
}

func BenchmarkPairwiseDistances_100(b *testing.B)  { benchPairwiseDistances(b, 100) }
func BenchmarkPairwiseDistances_500(b *testing.B)  { benchPairwiseDistances(b, 500) }
func BenchmarkPairwiseDistances_1000(b *testing.B) { benchPairwiseDistances(b, 1000) }

// --- Core Distances ---

func benchCoreDistancesMatrix(b *testing.B, n int) {
	ds := benchDataset(b, n, 2)
	dist := ComputePairwiseDistances(ds, EuclideanMetric{}, 1)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CoreDistancesFromMatrix(dist, n, 5, 1)
	}
}

func benchCoreDistancesTree(b *testing.B, n int) {
	ds := benchDataset(b, n, 2)
	tree, err := NewKDTree(ds, EuclideanMetric{}, defaultLeafSize)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		CoreDistancesTree(tree, 5, 1)
	}
}

func BenchmarkCoreDistancesMatrix_500(b *testing.B) { benchCoreDistancesMatrix(b, 500) }
func BenchmarkCoreDistancesTree_500(b *testing.B)   { benchCoreDistancesTree(b, 500) }
func BenchmarkCoreDistancesTree_5000(b *testing.B)  { benchCoreDistancesTree(b, 5000) }

// --- MST ---

func benchMST(b *testing.B, n int, boruvka bool) {
	ds := benchDataset(b, n, 2)
	core, err := ComputeCoreDistances(ds, 5, EuclideanMetric{}, 1)
	if err != nil {
		b.Fatal(err)
	}
	g := NewVectorGraph(ds, core, EuclideanMetric{}, 1)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if boruvka {
			BoruvkaMST(g, 0)
		} else {
			PrimMST(g)
		}
	}
}

func BenchmarkPrimMST_1000(b *testing.B)    { benchMST(b, 1000, false) }
func BenchmarkBoruvkaMST_1000(b *testing.B) { benchMST(b, 1000, true) }

// --- End to end ---

func benchHDBSCAN(b *testing.B, n int, algo Algorithm) {
	data := randomPoints(n, 2, 42)
	cfg := DefaultHDBSCANConfig()
	cfg.Algorithm = algo
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := HDBSCAN(data, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkHDBSCAN_Brute_500(b *testing.B)   { benchHDBSCAN(b, 500, AlgorithmBrute) }
func BenchmarkHDBSCAN_KDTree_500(b *testing.B)  { benchHDBSCAN(b, 500, AlgorithmBoruvkaKDTree) }
func BenchmarkHDBSCAN_KDTree_2000(b *testing.B) { benchHDBSCAN(b, 2000, AlgorithmBoruvkaKDTree) }

func BenchmarkKMeans_2000(b *testing.B) {
	ds := benchDataset(b, 2000, 2)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := KMeansDataset(ds, DefaultKMeansConfig(8)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkGMM_1000(b *testing.B) {
	ds := benchDataset(b, 1000, 2)
	cfg := DefaultGMMConfig(4)
	cfg.NRuns = 4
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := GMMDataset(ds, cfg); err != nil {
			b.Fatal(err)
		}
	}
}
