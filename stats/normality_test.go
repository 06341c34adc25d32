package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/tsstat/timeseries"
)

func TestJarqueBera(t *testing.T) {
	x := timeseries.New([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})
	res, err := JarqueBera(x)
	require.NoError(t, err)
	assert.InDelta(t, 0, res.Skew, 1e-12)
	assert.InDelta(t, 1.775758, res.Kurtosis, 1e-6)
	assert.InDelta(t, 0.624487, res.Statistic, 1e-5)

	_, err = JarqueBera(timeseries.New([]float64{1, 2}))
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = JarqueBera(timeseries.New([]float64{4, 4, 4, 4}))
	assert.ErrorIs(t, err, ErrConstantSeries)
}

func TestNormalityPolarity(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*timeseries.Series) (float64, error)
	}{
		{"jarque-bera", func(s *timeseries.Series) (float64, error) {
			r, err := JarqueBera(s)
			if err != nil {
				return 0, err
			}
			return r.PValue, nil
		}},
		{"normaltest", func(s *timeseries.Series) (float64, error) {
			r, err := NormalTest(s)
			if err != nil {
				return 0, err
			}
			return r.PValue, nil
		}},
		{"shapiro-wilk", func(s *timeseries.Series) (float64, error) {
			r, err := ShapiroWilk(s)
			if err != nil {
				return 0, err
			}
			return r.PValue, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normal := majority(func(seed uint64) bool {
				p, err := tt.fn(whiteNoise(seed, 200))
				return err == nil && p > 0.05
			})
			assert.GreaterOrEqual(t, normal, len(seeds)-2)

			p, err := tt.fn(exponential(3, 500))
			require.NoError(t, err)
			assert.Less(t, p, 1e-3)
		})
	}
}

func TestNormalTestMinimumLength(t *testing.T) {
	_, err := NormalTest(whiteNoise(1, 7))
	assert.ErrorIs(t, err, ErrInsufficientData)
	_, err = NormalTest(whiteNoise(1, 8))
	assert.NoError(t, err)
}

func TestShapiroWilkThree(t *testing.T) {
	res, err := ShapiroWilk(timeseries.New([]float64{3, 1, 2}))
	require.NoError(t, err)
	assert.InDelta(t, 1, res.Statistic, 1e-12)
	assert.InDelta(t, 1, res.PValue, 1e-9)
}

func TestAndersonDarling(t *testing.T) {
	res, err := AndersonDarling(exponential(4, 300))
	require.NoError(t, err)
	require.Len(t, res.CriticalValues, 5)
	assert.Equal(t, []float64{15, 10, 5, 2.5, 1}, res.SignificanceLevels)
	assert.Greater(t, res.Statistic, res.CriticalValues[4])

	for i := 1; i < len(res.CriticalValues); i++ {
		assert.Greater(t, res.CriticalValues[i], res.CriticalValues[i-1])
	}

	hits := majority(func(seed uint64) bool {
		res, err := AndersonDarling(whiteNoise(seed, 200))
		return err == nil && res.Statistic < res.CriticalValues[2]
	})
	assert.GreaterOrEqual(t, hits, len(seeds)-2)
}
