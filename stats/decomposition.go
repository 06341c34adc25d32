package stats

import (
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"

	"github.com/sartorproj/tsstat/timeseries"
)

// DecompositionResult represents the decomposition of a time series.
type DecompositionResult struct {
	Original *timeseries.Series
	Trend    *timeseries.Series
	Seasonal *timeseries.Series
	Residual *timeseries.Series
	Period   int
	Type     string // "additive" or "multiplicative"
}

// Decompose performs seasonal decomposition of a time series.
// Uses classical decomposition with moving average for trend; the trend and
// residual are NaN for the first and last period/2 observations.
// Type can be "additive" (Y = T + S + R) or "multiplicative" (Y = T * S * R).
func Decompose(series *timeseries.Series, period int, decompositionType string) (*DecompositionResult, error) {
	n := series.Len()
	if period < 2 {
		return nil, fmt.Errorf("decompose: %w: period %d", ErrInvalidArgument, period)
	}
	if n < 2*period {
		return nil, fmt.Errorf("decompose: %w: %d observations for period %d", ErrInsufficientData, n, period)
	}
	multiplicative := false
	switch decompositionType {
	case "additive", "":
		decompositionType = "additive"
	case "multiplicative":
		multiplicative = true
		for _, v := range series.Values {
			if v <= 0 {
				return nil, fmt.Errorf("decompose: %w: multiplicative model needs positive values", ErrInvalidArgument)
			}
		}
	default:
		return nil, fmt.Errorf("decompose: %w: type %q", ErrInvalidArgument, decompositionType)
	}

	trend := movingAverage(series.Values, period)

	detrended := make([]float64, n)
	for i := 0; i < n; i++ {
		switch {
		case math.IsNaN(trend[i]):
			detrended[i] = math.NaN()
		case multiplicative:
			detrended[i] = series.Values[i] / trend[i]
		default:
			detrended[i] = series.Values[i] - trend[i]
		}
	}

	// Average the detrended values at each position of the cycle
	pattern := make([]float64, period)
	counts := make([]int, period)
	for i, v := range detrended {
		if !math.IsNaN(v) {
			pattern[i%period] += v
			counts[i%period]++
		}
	}
	for i := range pattern {
		if counts[i] > 0 {
			pattern[i] /= float64(counts[i])
		}
	}
	// pattern has period >= 2 entries, so Mean cannot fail.
	center, _ := mstats.Mean(pattern)
	for i := range pattern {
		if multiplicative {
			pattern[i] /= center
		} else {
			pattern[i] -= center
		}
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := 0; i < n; i++ {
		seasonal[i] = pattern[i%period]
		switch {
		case math.IsNaN(trend[i]):
			residual[i] = math.NaN()
		case multiplicative:
			residual[i] = series.Values[i] / (trend[i] * seasonal[i])
		default:
			residual[i] = series.Values[i] - trend[i] - seasonal[i]
		}
	}

	return &DecompositionResult{
		Original: series,
		Trend:    component(series, trend, "trend"),
		Seasonal: component(series, seasonal, "seasonal"),
		Residual: component(series, residual, "residual"),
		Period:   period,
		Type:     decompositionType,
	}, nil
}

func component(series *timeseries.Series, values []float64, name string) *timeseries.Series {
	return &timeseries.Series{
		Values:     values,
		Timestamps: series.Timestamps,
		Name:       name,
	}
}

// movingAverage is the centered moving average of order period; even periods
// use the 2 x period filter.
func movingAverage(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}

	half := period / 2
	for i := half; i < n-half; i++ {
		sum := 0.0
		if period%2 == 0 {
			sum += 0.5*values[i-half] + 0.5*values[i+half]
			for j := i - half + 1; j < i+half; j++ {
				sum += values[j]
			}
		} else {
			for j := i - half; j <= i+half; j++ {
				sum += values[j]
			}
		}
		trend[i] = sum / float64(period)
	}
	return trend
}

// STL performs Seasonal and Trend decomposition using Loess.
// This is a simplified implementation: the seasonal pattern is a weighted
// cycle mean and the trend a triangular-kernel smoother, refined with
// bisquare robustness weights for robustIters passes.
func STL(series *timeseries.Series, period int, robustIters int) (*DecompositionResult, error) {
	n := series.Len()
	if period < 2 {
		return nil, fmt.Errorf("stl: %w: period %d", ErrInvalidArgument, period)
	}
	if n < 2*period {
		return nil, fmt.Errorf("stl: %w: %d observations for period %d", ErrInsufficientData, n, period)
	}

	if robustIters < 1 {
		robustIters = 2
	}

	trend := make([]float64, n)
	seasonal := make([]float64, n)
	residual := make([]float64, n)
	weights := make([]float64, n)

	for i := range weights {
		weights[i] = 1.0
	}

	trendWindow := period
	if trendWindow%2 == 0 {
		trendWindow++
	}
	halfWindow := trendWindow / 2

	for iter := 0; iter < robustIters; iter++ {
		pattern := make([]float64, period)
		counts := make([]float64, period)
		for i := 0; i < n; i++ {
			idx := i % period
			pattern[idx] += (series.Values[i] - trend[i]) * weights[i]
			counts[idx] += weights[i]
		}
		for i := 0; i < period; i++ {
			if counts[i] > 0 {
				pattern[i] /= counts[i]
			}
		}
		center, _ := mstats.Mean(pattern) // period >= 2 entries
		for i := 0; i < n; i++ {
			seasonal[i] = pattern[i%period] - center
		}

		for i := 0; i < n; i++ {
			sum := 0.0
			weightSum := 0.0
			for j := -halfWindow; j <= halfWindow; j++ {
				idx := i + j
				if idx >= 0 && idx < n {
					w := weights[idx] * (1 - math.Abs(float64(j))/float64(halfWindow+1))
					sum += (series.Values[idx] - seasonal[idx]) * w
					weightSum += w
				}
			}
			if weightSum > 0 {
				trend[i] = sum / weightSum
			}
		}

		for i := 0; i < n; i++ {
			residual[i] = series.Values[i] - trend[i] - seasonal[i]
		}

		if iter < robustIters-1 {
			abs := make([]float64, n)
			for i, r := range residual {
				abs[i] = math.Abs(r)
			}
			med, err := mstats.Median(abs)
			if err != nil {
				return nil, fmt.Errorf("stl: %w", err)
			}
			h := 6 * med
			if h > 0 {
				for i := 0; i < n; i++ {
					u := math.Abs(residual[i]) / h
					if u < 1 {
						weights[i] = (1 - u*u) * (1 - u*u)
					} else {
						weights[i] = 0
					}
				}
			}
		}
	}

	return &DecompositionResult{
		Original: series,
		Trend:    component(series, trend, "trend"),
		Seasonal: component(series, seasonal, "seasonal"),
		Residual: component(series, residual, "residual"),
		Period:   period,
		Type:     "additive",
	}, nil
}
