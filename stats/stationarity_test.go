package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/tsstat/timeseries"
)

func TestMacKinnon(t *testing.T) {
	assert.Less(t, MacKinnonP(-4, RegressionConstant), MacKinnonP(-2, RegressionConstant))
	assert.Less(t, MacKinnonP(-2, RegressionConstant), MacKinnonP(0, RegressionConstant))
	assert.Equal(t, 1.0, MacKinnonP(10, RegressionConstant))
	assert.Equal(t, 0.0, MacKinnonP(-100, RegressionConstant))

	crit := MacKinnonCrit(RegressionConstant, 100000)
	assert.InDelta(t, -3.43, crit["1%"], 0.01)
	assert.InDelta(t, -2.86, crit["5%"], 0.01)
	assert.InDelta(t, -2.57, crit["10%"], 0.01)
	assert.Less(t, crit["1%"], crit["5%"])
}

func TestADF(t *testing.T) {
	t.Run("white noise rejects unit root", func(t *testing.T) {
		res, err := ADF(whiteNoise(1, 300), DefaultADFOptions())
		require.NoError(t, err)
		assert.Less(t, res.PValue, 0.01)
		assert.Less(t, res.Statistic, res.CriticalValues["1%"])
		assert.False(t, math.IsNaN(res.ICBest))
		assert.Equal(t, 300-1-res.UsedLag, res.NObs)
	})

	t.Run("random walk keeps unit root", func(t *testing.T) {
		hits := majority(func(seed uint64) bool {
			res, err := ADF(randomWalk(seed, 300), DefaultADFOptions())
			return err == nil && res.PValue > 0.05
		})
		assert.GreaterOrEqual(t, hits, len(seeds)-2)
	})

	t.Run("fixed lag", func(t *testing.T) {
		res, err := ADF(whiteNoise(2, 200), ADFOptions{MaxLag: 3, Regression: RegressionConstantTrend, Autolag: AutolagNone})
		require.NoError(t, err)
		assert.Equal(t, 3, res.UsedLag)
		assert.True(t, math.IsNaN(res.ICBest))
	})

	t.Run("autolag methods", func(t *testing.T) {
		for _, al := range []Autolag{AutolagAIC, AutolagBIC, AutolagT} {
			res, err := ADF(ar1(3, 250, 0.5), ADFOptions{MaxLag: -1, Regression: RegressionConstant, Autolag: al})
			require.NoError(t, err, al)
			assert.Less(t, res.PValue, 0.05, al)
		}
	})

	t.Run("constant series", func(t *testing.T) {
		_, err := ADF(timeseries.New([]float64{3, 3, 3, 3, 3, 3, 3, 3, 3, 3}), DefaultADFOptions())
		assert.ErrorIs(t, err, ErrConstantSeries)
	})
}

func TestADFShortSeries(t *testing.T) {
	assert.Equal(t, 8, MaxADFLag(20, 0))
	assert.Equal(t, 8, MaxADFLag(20, 1))
	assert.Equal(t, 6, MaxADFLag(20, 3))

	for _, reg := range []Regression{RegressionNone, RegressionConstant, RegressionConstantTrend, RegressionQuadraticTrend} {
		res, err := ADF(ar1(1, 20, 0.3), ADFOptions{MaxLag: -1, Regression: reg, Autolag: AutolagAIC})
		require.NoError(t, err, reg)
		assert.LessOrEqual(t, res.UsedLag, MaxADFLag(20, reg.Terms()))
	}

	_, err := ADF(ar1(1, 20, 0.3), ADFOptions{MaxLag: 9, Regression: RegressionNone, Autolag: AutolagNone})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestKPSS(t *testing.T) {
	t.Run("white noise is stationary", func(t *testing.T) {
		hits := majority(func(seed uint64) bool {
			res, err := KPSS(whiteNoise(seed, 200), DefaultKPSSOptions())
			return err == nil && res.PValue > 0.05
		})
		assert.GreaterOrEqual(t, hits, len(seeds)-2)
	})

	t.Run("trend is not level stationary", func(t *testing.T) {
		r := rng(4)
		v := make([]float64, 200)
		for i := range v {
			v[i] = 0.5*float64(i) + r.NormFloat64()
		}
		res, err := KPSS(timeseries.New(v), DefaultKPSSOptions())
		require.NoError(t, err)
		assert.Equal(t, 0.01, res.PValue)
		assert.Greater(t, res.Statistic, res.CriticalValues["1%"])

		res, err = KPSS(timeseries.New(v), KPSSOptions{Regression: RegressionConstantTrend, NLags: -1})
		require.NoError(t, err)
		assert.Greater(t, res.PValue, 0.01)
	})

	t.Run("p-value bounds", func(t *testing.T) {
		res, err := KPSS(randomWalk(5, 150), KPSSOptions{Regression: RegressionConstant, NLags: -1, LagMethod: "legacy"})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, res.PValue, 0.01)
		assert.LessOrEqual(t, res.PValue, 0.10)
		assert.Len(t, res.CriticalValues, 4)
	})

	t.Run("too many lags", func(t *testing.T) {
		_, err := KPSS(whiteNoise(6, 20), KPSSOptions{Regression: RegressionConstant, NLags: 20})
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestPhillipsPerron(t *testing.T) {
	res, err := PhillipsPerron(whiteNoise(7, 200), DefaultPPOptions())
	require.NoError(t, err)
	assert.False(t, res.ShouldDiff)
	assert.Equal(t, 0.01, res.PValue)
	assert.Equal(t, 199, res.NObs)

	hits := majority(func(seed uint64) bool {
		res, err := PhillipsPerron(randomWalk(seed, 200), DefaultPPOptions())
		return err == nil && res.ShouldDiff
	})
	assert.GreaterOrEqual(t, hits, len(seeds)-2)
}

func TestZivotAndrews(t *testing.T) {
	x := whiteNoise(8, 200)
	res, err := ZivotAndrews(x, DefaultZAOptions())
	require.NoError(t, err)
	assert.Less(t, res.Statistic, res.CriticalValues["5%"])
	assert.Equal(t, 0.01, res.PValue)
	assert.GreaterOrEqual(t, res.BreakIndex, 29)
	assert.LessOrEqual(t, res.BreakIndex, 171)

	_, err = ZivotAndrews(x, ZAOptions{Regression: RegressionNone, Trim: 0.15})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestERS(t *testing.T) {
	res, err := ERS(whiteNoise(9, 200), DefaultERSOptions())
	require.NoError(t, err)
	assert.Less(t, res.Statistic, res.CriticalValues["5%"])
	assert.Less(t, res.PValue, 0.05)

	res, err = ERS(whiteNoise(9, 200), ERSOptions{Lags: -1, Regression: RegressionConstantTrend, Autolag: AutolagAIC})
	require.NoError(t, err)
	assert.InDelta(t, -2.89, res.CriticalValues["5%"], 1e-9)
}

func TestVarianceRatio(t *testing.T) {
	res, err := VarianceRatio(whiteNoise(10, 300), DefaultVROptions())
	require.NoError(t, err)
	assert.Less(t, res.Ratio, 0.8)
	assert.Less(t, res.PValue, 0.01)

	hits := majority(func(seed uint64) bool {
		res, err := VarianceRatio(randomWalk(seed, 300), DefaultVROptions())
		return err == nil && res.PValue > 0.01
	})
	assert.GreaterOrEqual(t, hits, len(seeds)-2)
}

func TestRangeUnitRoot(t *testing.T) {
	res, err := RangeUnitRoot(whiteNoise(11, 500))
	require.NoError(t, err)
	assert.Equal(t, 0.01, res.PValue)
	assert.Less(t, res.Statistic, res.CriticalValues["1%"])

	monotone := make([]float64, 100)
	for i := range monotone {
		monotone[i] = float64(i)
	}
	res, err = RangeUnitRoot(timeseries.New(monotone))
	require.NoError(t, err)
	assert.InDelta(t, 99/math.Sqrt(100), res.Statistic, 1e-12)
	assert.Equal(t, 0.95, res.PValue)
}

func TestParseRegressionAndAutolag(t *testing.T) {
	r, err := ParseRegression("nc")
	require.NoError(t, err)
	assert.Equal(t, RegressionNone, r)
	r, err = ParseRegression("CT")
	require.NoError(t, err)
	assert.Equal(t, RegressionConstantTrend, r)
	_, err = ParseRegression("x")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	a, err := ParseAutolag("tstat")
	require.NoError(t, err)
	assert.Equal(t, AutolagT, a)
	_, err = ParseAutolag("hqic")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
