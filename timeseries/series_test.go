package timeseries

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCopiesValues(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	s := New(values)
	values[0] = 100

	assert.Equal(t, 5, s.Len())
	assert.Equal(t, 1.0, s.Values[0])
}

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"simple", []float64{1, 2, 3, 4, 5}, 3.0},
		{"single", []float64{5}, 5.0},
		{"negative", []float64{-1, -2, -3}, -2.0},
		{"mixed", []float64{-1, 0, 1}, 0.0},
		{"empty", []float64{}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, New(tt.values).Mean(), 1e-10)
		})
	}
}

func TestVarianceAndStd(t *testing.T) {
	s := New([]float64{2, 4, 4, 4, 5, 5, 7, 9})

	assert.InDelta(t, 4.571428571428571, s.Variance(), 1e-10)
	assert.InDelta(t, math.Sqrt(4.571428571428571), s.Std(), 1e-10)
	assert.InDelta(t, 2.0, s.PopStd(), 1e-10)
}

func TestMinMaxMedian(t *testing.T) {
	s := New([]float64{3, 1, 4, 1, 5, 9, 2, 6})

	assert.Equal(t, 1.0, s.Min())
	assert.Equal(t, 9.0, s.Max())
	assert.InDelta(t, 3.5, s.Median(), 1e-12)
	assert.True(t, math.IsNaN(New(nil).Min()))
}

func TestDiff(t *testing.T) {
	s := New([]float64{1, 3, 6, 10, 15})

	assert.Equal(t, []float64{2, 3, 4, 5}, s.Diff().Values)
	assert.Equal(t, []float64{1, 1, 1}, s.DiffN(2).Values)
	assert.Equal(t, s.Values, s.DiffN(0).Values)
	assert.Empty(t, New([]float64{1}).Diff().Values)
}

func TestSeasonalDiff(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5, 6, 7, 8})

	assert.Equal(t, []float64{4, 4, 4, 4}, s.SeasonalDiff(4).Values)
	assert.Empty(t, s.SeasonalDiff(8).Values)
}

func TestLagAndSlice(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})

	assert.Equal(t, []float64{1, 2, 3, 4}, s.Lag(1).Values)
	assert.Equal(t, []float64{2, 3, 4}, s.Slice(1, 4).Values)
	assert.Empty(t, s.Slice(3, 1).Values)
}

func TestCopyIsIndependent(t *testing.T) {
	s := New([]float64{1, 2, 3})
	c := s.Copy()
	c.Values[0] = 42

	assert.Equal(t, 1.0, s.Values[0])
}

func TestNormalize(t *testing.T) {
	z := New([]float64{1, 2, 3, 4, 5}).Normalize()

	assert.InDelta(t, 0, z.Mean(), 1e-12)
	assert.InDelta(t, 1, z.Std(), 1e-12)

	constant := New([]float64{2, 2, 2}).Normalize()
	assert.Equal(t, []float64{2, 2, 2}, constant.Values)
}

func TestMissingValues(t *testing.T) {
	s := New([]float64{1, math.NaN(), 3})

	assert.True(t, s.HasNaN())
	assert.Equal(t, []float64{1, 3}, s.DropNaN().Values)
	assert.False(t, s.DropNaN().HasNaN())
}

func TestIsConstant(t *testing.T) {
	assert.True(t, New([]float64{4, 4, 4}).IsConstant())
	assert.False(t, New([]float64{4, 4, 5}).IsConstant())
}

func TestEmbed(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})

	emb, err := s.Embed(3, 1)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 2, 3}, {2, 3, 4}, {3, 4, 5}}, emb)

	emb, err = s.Embed(2, 2)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 3}, {2, 4}, {3, 5}}, emb)

	_, err = s.Embed(6, 1)
	assert.Error(t, err)
}

func TestWindows(t *testing.T) {
	s := New([]float64{1, 2, 3, 4, 5})

	w := s.Windows(2)
	require.Len(t, w, 3)
	assert.Equal(t, []float64{5}, w[2])
	assert.Nil(t, s.Windows(0))
}
