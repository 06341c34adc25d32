package autoarima

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/tsstat/timeseries"
)

func ar1(n int, phi float64, seed uint64) *timeseries.Series {
	r := rand.New(rand.NewPCG(seed, seed+1))
	values := make([]float64, n)
	for i := 1; i < n; i++ {
		values[i] = phi*values[i-1] + r.NormFloat64()
	}
	return timeseries.New(values)
}

func TestAutoARIMA(t *testing.T) {
	adf := DefaultConfig()
	adf.StationTest = "adf"

	tests := []struct {
		name   string
		series *timeseries.Series
		config *Config
		wantD  int
	}{
		{"stationary AR(1) stepwise", ar1(300, 0.6, 1), adf, 0},
		{"random walk stepwise", ar1(300, 1, 2), nil, 1},
		{"stationary AR(1) exhaustive", ar1(300, 0.6, 3), &Config{MaxP: 3, MaxD: 2, MaxQ: 3, MaxOrder: 3, Criterion: "bic", StationTest: "adf", Alpha: 0.05}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := AutoARIMA(tt.series, tt.config)
			require.NoError(t, err)
			require.NotNil(t, res.Model)
			assert.Equal(t, tt.wantD, res.Order.D)
			assert.False(t, res.Fallback)
			assert.Positive(t, res.ModelsEvaluated)

			resid, err := res.Residuals()
			require.NoError(t, err)
			assert.Len(t, resid, tt.series.Len()-tt.wantD)
		})
	}
}

func TestAutoARIMAExhaustiveRespectsMaxOrder(t *testing.T) {
	res, err := AutoARIMA(ar1(200, 0.5, 4), &Config{MaxP: 3, MaxD: 1, MaxQ: 3, MaxOrder: 1, Criterion: "aic"})
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Order.P+res.Order.Q, 1)
	assert.Equal(t, 3, res.ModelsEvaluated)
}

func TestAutoARIMAPicksAR(t *testing.T) {
	res, err := AutoARIMA(ar1(500, 0.8, 5), &Config{MaxP: 2, MaxD: 0, MaxQ: 0, Criterion: "bic"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, res.Order.P, 1)
}

func TestAutoARIMAUnknownCriterion(t *testing.T) {
	_, err := AutoARIMA(ar1(100, 0.5, 6), &Config{Criterion: "hqic"})
	assert.Error(t, err)
}
