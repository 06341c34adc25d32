package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/tsstat/timeseries"
)

func TestTiledMeasures(t *testing.T) {
	// windows [1 3] [5 7] [2 2]; the trailing 9 is not a full window
	s := timeseries.New([]float64{1, 3, 5, 7, 2, 2, 9})
	opts := TileOptions{Freq: 2}

	stability, err := Stability(s, opts)
	require.NoError(t, err)
	assert.InDelta(t, 16.0/3, stability, 1e-12)

	lumpiness, err := Lumpiness(s, opts)
	require.NoError(t, err)
	assert.InDelta(t, 4.0/3, lumpiness, 1e-12)
}

func TestTiledMeasuresNeedTwoWindows(t *testing.T) {
	s := timeseries.New([]float64{1, 3, 5})
	opts := TileOptions{Freq: 2}

	_, err := Stability(s, opts)
	assert.ErrorIs(t, err, ErrInsufficientData)

	lumpiness, err := Lumpiness(s, opts)
	require.NoError(t, err)
	assert.Zero(t, lumpiness)

	_, err = Stability(timeseries.New([]float64{4, 4, 4, 4}), TileOptions{Freq: 2, Scale: true})
	assert.ErrorIs(t, err, ErrConstantSeries)
}
