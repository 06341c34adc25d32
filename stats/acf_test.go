package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/tsstat/timeseries"
)

func TestACF(t *testing.T) {
	acf, err := ACF(ar1(1, 500, 0.8), 10)
	require.NoError(t, err)
	require.Len(t, acf, 11)
	assert.InDelta(t, 1, acf[0], 1e-12)
	assert.InDelta(t, 0.8, acf[1], 0.1)
	assert.Greater(t, acf[1], acf[5])

	acf, err = ACF(whiteNoise(1, 1000), -1)
	require.NoError(t, err)
	assert.Len(t, acf, DefaultACFLags(1000)+1)

	_, err = ACF(timeseries.New([]float64{2, 2, 2, 2}), 2)
	assert.ErrorIs(t, err, ErrConstantSeries)
}

func TestPACF(t *testing.T) {
	pacf, err := PACF(ar1(2, 1000, 0.7), 10)
	require.NoError(t, err)
	assert.InDelta(t, 1, pacf[0], 1e-12)
	assert.InDelta(t, 0.7, pacf[1], 0.08)
	for k := 2; k <= 10; k++ {
		assert.Less(t, math.Abs(pacf[k]), 0.12, "lag %d", k)
	}

	_, err = PACF(timeseries.New([]float64{1, 2}), 0)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestCCF(t *testing.T) {
	x := whiteNoise(3, 200)
	ccf, err := CCF(x, x, 5, false)
	require.NoError(t, err)
	assert.InDelta(t, 1, ccf[0], 1e-12)

	lagged := make([]float64, 200)
	copy(lagged[3:], x.Values[:197])
	ccf, err = CCF(timeseries.New(lagged), x, 5, true)
	require.NoError(t, err)
	assert.Greater(t, ccf[3], 0.9)

	res, err := CCFWithConfidence(timeseries.New(lagged), x, 5)
	require.NoError(t, err)
	assert.InDelta(t, ccf[3], res.MaxAbs, 1e-12)

	_, err = CCF(x, whiteNoise(3, 100), 5, true)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestACFWithConfidence(t *testing.T) {
	result, err := ACFWithConfidence(ar1(4, 100, 0.9), 20)
	require.NoError(t, err)
	assert.InDelta(t, 1.96/math.Sqrt(100), result.ConfBounds, 1e-12)
	assert.InDelta(t, 0.196, result.CriticalValues["5%"], 1e-3)
	assert.Greater(t, result.CriticalValues["1%"], result.CriticalValues["10%"])
	assert.InDelta(t, result.Values[1], result.MaxAbs, 1e-12)
	assert.Equal(t, 20, result.Lags[20])
}

func TestSignificantLags(t *testing.T) {
	values := []float64{1.0, 0.5, 0.3, 0.1, 0.05, -0.2, -0.5}
	assert.Equal(t, []int{1, 2, 5, 6}, SignificantLags(values, 0.15))
}

func TestLjungBox(t *testing.T) {
	hits := majority(func(seed uint64) bool {
		res, err := LjungBox(whiteNoise(seed, 300), LjungBoxOptions{Lags: 10})
		return err == nil && res.PValue > 0.05
	})
	assert.GreaterOrEqual(t, hits, len(seeds)-2)

	res, err := LjungBox(ar1(1, 300, 0.9), LjungBoxOptions{Lags: 10})
	require.NoError(t, err)
	assert.Less(t, res.PValue, 1e-6)
	assert.Len(t, res.LBStat, 10)
	for k := range res.LBStat {
		assert.GreaterOrEqual(t, res.LBStat[k], res.BPStat[k])
	}

	res, err = LjungBox(whiteNoise(1, 100), LjungBoxOptions{})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Lags)

	res, err = LjungBox(whiteNoise(1, 100), LjungBoxOptions{Period: 4})
	require.NoError(t, err)
	assert.Equal(t, 8, res.Lags)

	res, err = LjungBox(whiteNoise(1, 100), LjungBoxOptions{Lags: 4, ModelDF: 2})
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.LBPValue[0]))
	assert.True(t, math.IsNaN(res.LBPValue[1]))
	assert.False(t, math.IsNaN(res.PValue))
	assert.Equal(t, 2, res.DOF)
}

func TestBoxPierce(t *testing.T) {
	s := whiteNoise(5, 100)
	bp, err := BoxPierce(s, 10, 0)
	require.NoError(t, err)
	lb, err := LjungBox(s, LjungBoxOptions{Lags: 10})
	require.NoError(t, err)
	assert.True(t, bp.BoxPierce)
	assert.InDelta(t, lb.BPStat[9], bp.Statistic, 1e-12)
	assert.Less(t, bp.Statistic, lb.Statistic)
}
