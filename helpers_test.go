package tsstat

import (
	"math"
	"math/rand/v2"
	"slices"
)

// seeds used by the majority checks; a property must hold for all but two.
var seeds = []uint64{1, 2, 3, 5, 8, 13, 21}

func rng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*7919+17))
}

func noise(seed uint64, n int) []float64 {
	r := rng(seed)
	v := make([]float64, n)
	for i := range v {
		v[i] = r.NormFloat64()
	}
	return v
}

func ar1(seed uint64, n int, phi float64) []float64 {
	e := noise(seed, n)
	v := make([]float64, n)
	for i := 1; i < n; i++ {
		v[i] = phi*v[i-1] + e[i]
	}
	return v
}

func walk(seed uint64, n int) []float64 { return ar1(seed, n, 1) }

func sine(n, period int, amplitude, sd float64, seed uint64) []float64 {
	e := noise(seed, n)
	v := make([]float64, n)
	for i := range v {
		v[i] = amplitude*math.Sin(2*math.Pi*float64(i)/float64(period)) + sd*e[i]
	}
	return v
}

// seasonalWalk is a sine cycle plus a seasonal random walk y[t] = y[t-m] + e.
func seasonalWalk(seed uint64, n, m int) []float64 {
	v := noise(seed, n)
	for i := m; i < n; i++ {
		v[i] += v[i-m]
	}
	for i := range v {
		v[i] += 10 * math.Sin(2*math.Pi*float64(i)/float64(m))
	}
	return v
}

func exponential(seed uint64, n int) []float64 {
	r := rng(seed)
	v := make([]float64, n)
	for i := range v {
		v[i] = r.ExpFloat64()
	}
	return v
}

// regressor returns n sorted draws from U(lo, hi) as single-column rows.
func regressor(seed uint64, n int, lo, hi float64) ([]float64, [][]float64) {
	r := rng(seed + 100)
	x := make([]float64, n)
	for i := range x {
		x[i] = lo + (hi-lo)*r.Float64()
	}
	slices.Sort(x)
	rows := make([][]float64, n)
	for i, v := range x {
		rows[i] = []float64{v}
	}
	return x, rows
}

// majority counts the seeds for which pred holds.
func majority(pred func(seed uint64) bool) int {
	hits := 0
	for _, s := range seeds {
		if pred(s) {
			hits++
		}
	}
	return hits
}
