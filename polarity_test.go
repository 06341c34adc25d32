package tsstat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type polarityCase struct {
	category Category
	test     TestID
	opts     []Option
	alpha    float64
	positive func(seed uint64) *Input // data for which the claim holds
	negative func(seed uint64) *Input
}

func (c polarityCase) run(t *testing.T) {
	t.Helper()
	d := NewDispatcher()
	alpha := c.alpha
	if alpha == 0 {
		alpha = DefaultAlpha
	}
	verdict := func(in *Input, want bool) func(uint64) bool {
		return func(uint64) bool {
			v, err := d.Check(context.Background(), c.category, c.test, in, alpha, c.opts...)
			return err == nil && v.Positive == want
		}
	}
	pos := majority(func(seed uint64) bool { return verdict(c.positive(seed), true)(seed) })
	neg := majority(func(seed uint64) bool { return verdict(c.negative(seed), false)(seed) })
	assert.GreaterOrEqual(t, pos, len(seeds)-2, "positive case")
	assert.GreaterOrEqual(t, neg, len(seeds)-2, "negative case")
}

func stationaryAR(seed uint64) *Input { return Univariate(ar1(seed, 300, 0.1)) }
func unitRoot(seed uint64) *Input     { return Univariate(walk(seed, 300)) }

func TestStationarityPolarity(t *testing.T) {
	for _, id := range CategoryStationarity.Tests() {
		t.Run(string(id), func(t *testing.T) {
			polarityCase{
				category: CategoryStationarity,
				test:     id,
				positive: stationaryAR,
				negative: unitRoot,
			}.run(t)
		})
	}
}

func TestNormalityPolarity(t *testing.T) {
	for _, id := range CategoryNormality.Tests() {
		t.Run(string(id), func(t *testing.T) {
			polarityCase{
				category: CategoryNormality,
				test:     id,
				positive: func(seed uint64) *Input { return Univariate(noise(seed, 200)) },
				negative: func(seed uint64) *Input { return Univariate(exponential(seed, 200)) },
			}.run(t)
		})
	}
}

func TestLinearityPolarity(t *testing.T) {
	linear := func(seed uint64) *Input {
		x, rows := regressor(seed, 200, 0, 10)
		e := noise(seed, 200)
		y := make([]float64, len(x))
		for i, v := range x {
			y[i] = 1 + 2*v + e[i]
		}
		return Regression(y, rows)
	}
	quadratic := func(seed uint64) *Input {
		x, rows := regressor(seed, 200, 0, 10)
		e := noise(seed, 200)
		y := make([]float64, len(x))
		for i, v := range x {
			y[i] = 1 + 2*v + 0.5*v*v + e[i]
		}
		return Regression(y, rows)
	}
	for _, id := range CategoryLinearity.Tests() {
		t.Run(string(id), func(t *testing.T) {
			polarityCase{
				category: CategoryLinearity,
				test:     id,
				positive: linear,
				negative: quadratic,
			}.run(t)
		})
	}
}

func TestHeteroscedasticityPolarity(t *testing.T) {
	model := func(grows bool) func(uint64) *Input {
		return func(seed uint64) *Input {
			x, rows := regressor(seed, 200, 1, 10)
			e := noise(seed, 200)
			y := make([]float64, len(x))
			for i, v := range x {
				sd := 1.0
				if grows {
					sd = 0.2 * v * v
				}
				y[i] = 1 + 2*v + sd*e[i]
			}
			return Regression(y, rows)
		}
	}
	for _, id := range CategoryHeteroscedasticity.Tests() {
		t.Run(string(id), func(t *testing.T) {
			polarityCase{
				category: CategoryHeteroscedasticity,
				test:     id,
				positive: model(true),
				negative: model(false),
			}.run(t)
		})
	}
}

func TestCorrelationPolarity(t *testing.T) {
	univariate := func(phi float64) func(uint64) *Input {
		return func(seed uint64) *Input { return Univariate(ar1(seed, 300, phi)) }
	}
	regressionWith := func(phi float64) func(uint64) *Input {
		return func(seed uint64) *Input {
			x, rows := regressor(seed, 300, 0, 10)
			e := ar1(seed, 300, phi)
			y := make([]float64, len(x))
			for i, v := range x {
				y[i] = 1 + 2*v + e[i]
			}
			return Regression(y, rows)
		}
	}
	bivariate := func(linked bool) func(uint64) *Input {
		return func(seed uint64) *Input {
			x := noise(seed, 300)
			y := noise(seed+1000, 300)
			if linked {
				for i := 2; i < len(y); i++ {
					y[i] = x[i-2] + 0.3*y[i]
				}
			}
			return Bivariate(y, x)
		}
	}
	cases := []polarityCase{
		{test: ALB, positive: univariate(0.8), negative: univariate(0)},
		{test: ALM, positive: univariate(0.8), negative: univariate(0)},
		{test: BGLM, positive: regressionWith(0.8), negative: regressionWith(0)},
		{test: ACF, opts: []Option{WithLags(3)}, alpha: 0.01, positive: univariate(0.8), negative: univariate(0)},
		{test: PACF, opts: []Option{WithLags(3)}, alpha: 0.01, positive: univariate(0.8), negative: univariate(0)},
		{test: CCF, opts: []Option{WithLags(3)}, alpha: 0.01, positive: bivariate(true), negative: bivariate(false)},
	}
	for _, c := range cases {
		c.category = CategoryCorrelation
		t.Run(string(c.test), c.run)
	}
}

func TestRegularityPolarity(t *testing.T) {
	regular := func(uint64) *Input { return Univariate(sine(300, 50, 1, 0, 1)) }
	irregular := func(seed uint64) *Input { return Univariate(noise(seed, 300)) }
	cases := []polarityCase{
		{test: Sample, opts: []Option{WithTolerance(0.5)}},
		{test: Approx, opts: []Option{WithTolerance(0.5)}},
		{test: Spectral, opts: []Option{WithTolerance(0.5), With("normalize", true)}},
		{test: Perm, opts: []Option{WithTolerance(0.8), With("normalize", true)}},
		{test: SVD, opts: []Option{WithTolerance(0.8), With("normalize", true)}},
	}
	for _, c := range cases {
		c.category, c.positive, c.negative = CategoryRegularity, regular, irregular
		t.Run(string(c.test), c.run)
	}
}

func TestSeasonalityPolarity(t *testing.T) {
	periodic := func(seed uint64) *Input { return Univariate(sine(240, 12, 10, 1, seed)) }
	evolving := func(seed uint64) *Input { return Univariate(seasonalWalk(seed, 240, 12)) }
	flat := func(seed uint64) *Input { return Univariate(noise(seed, 240)) }
	cases := []polarityCase{
		{test: QS, positive: periodic},
		{test: OCSB, positive: evolving},
		{test: CH, positive: evolving},
		{test: SeasonalStrength, positive: periodic},
	}
	for _, c := range cases {
		c.category, c.negative = CategorySeasonality, flat
		c.opts = []Option{WithPeriod(12)}
		t.Run(string(c.test), c.run)
	}
}

func TestStabilityPolarity(t *testing.T) {
	polarityCase{
		category: CategoryStability,
		test:     StabilityIndex,
		positive: func(seed uint64) *Input { return Univariate(ar1(seed, 200, 0.1)) },
		negative: func(seed uint64) *Input { return Univariate(walk(seed, 200)) },
	}.run(t)
}

func TestLumpiness(t *testing.T) {
	bursts := func(seed uint64) *Input {
		e := noise(seed, 200)
		for i := range e {
			if (i/10)%2 == 0 {
				e[i] *= 3
			} else {
				e[i] *= 0.1
			}
		}
		return Univariate(e)
	}
	lumpy := majority(func(seed uint64) bool {
		ok, err := IsLumpy(bursts(seed))
		return err == nil && ok
	})
	calm := majority(func(seed uint64) bool {
		ok, err := IsLumpy(Univariate(noise(seed, 200)))
		return err == nil && !ok
	})
	assert.GreaterOrEqual(t, lumpy, len(seeds)-2)
	assert.GreaterOrEqual(t, calm, len(seeds)-2)
}
