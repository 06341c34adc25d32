package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/sartorproj/tsstat/timeseries"
)

// TileOptions configures the tiled stability measures.
type TileOptions struct {
	Freq  int  // Window width; 10 is used when Freq <= 1
	Scale bool // Standardise the series first
}

// DefaultTileOptions uses windows of 10 on the standardised series.
func DefaultTileOptions() TileOptions {
	return TileOptions{Freq: 1, Scale: true}
}

// tiles splits the non-missing values into full, non-overlapping windows.
func tiles(series *timeseries.Series, opts TileOptions) ([][]float64, int, error) {
	width := opts.Freq
	if width <= 1 {
		width = 10
	}
	s := series.DropNaN()
	if opts.Scale {
		if s.IsConstant() {
			return nil, width, ErrConstantSeries
		}
		s = s.Normalize()
	}
	var out [][]float64
	for _, w := range s.Windows(width) {
		if len(w) == width {
			out = append(out, w)
		}
	}
	return out, width, nil
}

// Stability is the sample variance of the means of non-overlapping windows.
// Values near zero indicate a stable level; at least two full windows are
// required.
func Stability(series *timeseries.Series, opts TileOptions) (float64, error) {
	windows, width, err := tiles(series, opts)
	if err != nil {
		return math.NaN(), fmt.Errorf("stability: %w", err)
	}
	if len(windows) < 2 {
		return math.NaN(), fmt.Errorf("stability: %w: need two windows of %d", ErrInsufficientData, width)
	}
	means := make([]float64, len(windows))
	for i, w := range windows {
		if means[i], err = mstats.Mean(w); err != nil {
			return math.NaN(), fmt.Errorf("stability: window %d: %w", i, err)
		}
	}
	return mstats.SampleVariance(means)
}

// Lumpiness is the sample variance of the variances of non-overlapping
// windows. It is zero for series shorter than two windows.
func Lumpiness(series *timeseries.Series, opts TileOptions) (float64, error) {
	windows, _, err := tiles(series, opts)
	if err != nil {
		return math.NaN(), fmt.Errorf("lumpiness: %w", err)
	}
	if len(windows) < 2 {
		return 0, nil
	}
	vars := make([]float64, len(windows))
	for i, w := range windows {
		if vars[i], err = mstats.SampleVariance(w); err != nil {
			return math.NaN(), fmt.Errorf("lumpiness: window %d: %w", i, err)
		}
	}
	return mstats.SampleVariance(vars)
}
