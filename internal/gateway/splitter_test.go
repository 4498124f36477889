package gateway

import (
	"math/rand"
	"testing"
)

func seededSplitter(probA float64) *Splitter {
	s := NewSplitter(probA)
	rng := rand.New(rand.NewSource(7))
	s.randFn = rng.Float64
	return s
}

func TestSplitConvergesToConfiguredProbability(t *testing.T) {
	for _, probA := range []float64{0.1, 0.5, 0.9} {
		s := seededSplitter(probA)

		const n = 20000
		hitsA := 0
		for i := 0; i < n; i++ {
			if s.Pick("a", "b") == "a" {
				hitsA++
			}
		}

		fraction := float64(hitsA) / n
		if diff := fraction - probA; diff < -0.02 || diff > 0.02 {
			t.Fatalf("P=%v: fraction %v did not converge", probA, fraction)
		}
	}
}

func TestSplitExtremes(t *testing.T) {
	alwaysB := seededSplitter(0)
	for i := 0; i < 100; i++ {
		if alwaysB.Pick("a", "b") != "b" {
			t.Fatalf("P=0 must always pick backend B")
		}
	}

	alwaysA := seededSplitter(1)
	for i := 0; i < 100; i++ {
		if alwaysA.Pick("a", "b") != "a" {
			t.Fatalf("P=1 must always pick backend A")
		}
	}
}
