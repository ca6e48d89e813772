// Package synth generates seeded synthetic datasets: isotropic Gaussian
// blobs and uniform background noise.
package synth

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Blob describes one Gaussian cluster.
type Blob struct {
	Center []float64
	StdDev float64
	Size   int
}

// Set is a generated dataset with ground-truth labels. Labels are 1-based
// blob numbers; noise points are labelled 0.
type Set struct {
	Points [][]float64
	Labels []int
}

// Generator draws points from a PCG source.
type Generator struct {
	rng *rand.Rand
}

// New returns a Generator seeded with seed.
func New(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed))}
}

// Blobs draws every blob in order, Size points each.
func (g *Generator) Blobs(blobs []Blob) Set {
	var s Set
	for b, blob := range blobs {
		norms := make([]distuv.Normal, len(blob.Center))
		for d, mu := range blob.Center {
			norms[d] = distuv.Normal{Mu: mu, Sigma: blob.StdDev, Src: g.rng}
		}
		for i := 0; i < blob.Size; i++ {
			p := make([]float64, len(norms))
			for d := range norms {
				p[d] = norms[d].Rand()
			}
			s.Points = append(s.Points, p)
			s.Labels = append(s.Labels, b+1)
		}
	}
	return s
}

// Noise draws n points uniformly from the box [lo, hi] in every dimension.
func (g *Generator) Noise(n, dims int, lo, hi float64) Set {
	u := distuv.Uniform{Min: lo, Max: hi, Src: g.rng}
	s := Set{Points: make([][]float64, n), Labels: make([]int, n)}
	for i := range s.Points {
		p := make([]float64, dims)
		for d := range p {
			p[d] = u.Rand()
		}
		s.Points[i] = p
	}
	return s
}

// Concat joins sets in order.
func Concat(sets ...Set) Set {
	var out Set
	for _, s := range sets {
		out.Points = append(out.Points, s.Points...)
		out.Labels = append(out.Labels, s.Labels...)
	}
	return out
}

// ThreeBlobs returns the standard scenario: 50 points around each of
// (0,0), (5,5) and (-5,5) with the given spread.
func ThreeBlobs(g *Generator, stdDev float64) Set {
	return g.Blobs([]Blob{
		{Center: []float64{0, 0}, StdDev: stdDev, Size: 50},
		{Center: []float64{5, 5}, StdDev: stdDev, Size: 50},
		{Center: []float64{-5, 5}, StdDev: stdDev, Size: 50},
	})
}
