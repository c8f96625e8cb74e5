package engine

import (
	"math"
)

// factorials caches 0! through 20!, enough for any goal count the model
// will ever evaluate.
var factorials = buildFactorialTable(20)

func buildFactorialTable(n int) []float64 {
	table := make([]float64, n+1)
	table[0] = 1
	for i := 1; i <= n; i++ {
		table[i] = table[i-1] * float64(i)
	}
	return table
}

// PoissonPMF returns P(X = k) for X ~ Poisson(lambda).
func PoissonPMF(lambda float64, k int) float64 {
	if lambda <= 0 || k < 0 {
		return 0
	}
	if k >= len(factorials) {
		return 0
	}
	return math.Pow(lambda, float64(k)) * math.Exp(-lambda) / factorials[k]
}

// BoundedPoisson returns the distribution over 0..maxGoals goals. The tail
// beyond maxGoals is truncated, not redistributed, so the slice sums to
// slightly under one for large lambdas.
func BoundedPoisson(lambda float64, maxGoals int) []float64 {
	dist := make([]float64, maxGoals+1)
	for k := 0; k <= maxGoals; k++ {
		dist[k] = PoissonPMF(lambda, k)
	}
	return dist
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
