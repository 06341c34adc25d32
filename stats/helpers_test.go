package stats

import (
	"math"
	"math/rand/v2"

	"github.com/sartorproj/tsstat/timeseries"
)

// seeds used by the majority checks; a property must hold for all but two.
var seeds = []uint64{1, 2, 3, 5, 8, 13, 21}

func rng(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed*7919+17))
}

func whiteNoise(seed uint64, n int) *timeseries.Series {
	r := rng(seed)
	v := make([]float64, n)
	for i := range v {
		v[i] = r.NormFloat64()
	}
	return timeseries.New(v)
}

func ar1(seed uint64, n int, phi float64) *timeseries.Series {
	r := rng(seed)
	v := make([]float64, n)
	for i := 1; i < n; i++ {
		v[i] = phi*v[i-1] + r.NormFloat64()
	}
	return timeseries.New(v)
}

func randomWalk(seed uint64, n int) *timeseries.Series {
	return ar1(seed, n, 1)
}

// seasonalWalk is a sine cycle plus a seasonal random walk y[t] = y[t-m] + e.
func seasonalWalk(seed uint64, n, m int) *timeseries.Series {
	r := rng(seed)
	v := make([]float64, n)
	for i := range v {
		v[i] = r.NormFloat64()
		if i >= m {
			v[i] += v[i-m]
		}
	}
	for i := range v {
		v[i] += 10 * math.Sin(2*math.Pi*float64(i)/float64(m))
	}
	return timeseries.New(v)
}

func sine(n, period int, noise float64, seed uint64) *timeseries.Series {
	r := rng(seed)
	v := make([]float64, n)
	for i := range v {
		v[i] = 10*math.Sin(2*math.Pi*float64(i)/float64(period)) + noise*r.NormFloat64()
	}
	return timeseries.New(v)
}

func exponential(seed uint64, n int) *timeseries.Series {
	r := rng(seed)
	v := make([]float64, n)
	for i := range v {
		v[i] = r.ExpFloat64()
	}
	return timeseries.New(v)
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
