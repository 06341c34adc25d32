package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/tsstat/timeseries"
)

// DefaultACFLags is min(10*log10(n), n-1).
func DefaultACFLags(n int) int {
	return max(0, min(int(10*math.Log10(float64(n))), n-1))
}

// ACF calculates the Autocorrelation Function for the given series.
// Returns ACF values for lags 0 to maxLag; a negative maxLag selects
// DefaultACFLags.
func ACF(series *timeseries.Series, maxLag int) ([]float64, error) {
	n := series.Len()
	if n < 2 {
		return nil, fmt.Errorf("acf: %w: %d observations", ErrInsufficientData, n)
	}
	if maxLag < 0 {
		maxLag = DefaultACFLags(n)
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mean := series.Mean()
	variance := 0.0
	for _, v := range series.Values {
		diff := v - mean
		variance += diff * diff
	}

	if variance == 0 {
		return nil, fmt.Errorf("acf: %w", ErrConstantSeries)
	}

	acf := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for i := k; i < n; i++ {
			sum += (series.Values[i] - mean) * (series.Values[i-k] - mean)
		}
		acf[k] = sum / variance
	}

	return acf, nil
}

// PACF calculates the Partial Autocorrelation Function using the Durbin-Levinson algorithm.
// Returns PACF values for lags 0 to maxLag; a non-positive maxLag selects
// min(10*log10(n), n/2-1).
func PACF(series *timeseries.Series, maxLag int) ([]float64, error) {
	n := series.Len()
	if maxLag <= 0 {
		maxLag = min(int(10*math.Log10(float64(n))), n/2-1)
	}
	if maxLag >= n {
		maxLag = n - 1
	}
	if maxLag < 1 {
		return nil, fmt.Errorf("pacf: %w: %d observations", ErrInsufficientData, n)
	}

	acf, err := ACF(series, maxLag)
	if err != nil {
		return nil, fmt.Errorf("pacf: %w", err)
	}

	pacf := make([]float64, maxLag+1)
	pacf[0] = 1.0

	phi := make([][]float64, maxLag+1)
	for i := range phi {
		phi[i] = make([]float64, maxLag+1)
	}

	phi[1][1] = acf[1]
	pacf[1] = acf[1]

	for k := 2; k <= maxLag; k++ {
		num := acf[k]
		den := 1.0
		for j := 1; j < k; j++ {
			num -= phi[k-1][j] * acf[k-j]
			den -= phi[k-1][j] * acf[j]
		}

		if den == 0 {
			pacf[k] = 0
			continue
		}

		phi[k][k] = num / den
		pacf[k] = phi[k][k]

		for j := 1; j < k; j++ {
			phi[k][j] = phi[k-1][j] - phi[k][k]*phi[k-1][k-j]
		}
	}

	return pacf, nil
}

// CCF calculates the cross-correlation of x[t+k] with y[t] for k = 0..maxLag.
// With adjusted set the lag-k cross-covariance is divided by n-k instead of n.
// The series are normalised by their population standard deviations.
func CCF(x, y *timeseries.Series, maxLag int, adjusted bool) ([]float64, error) {
	n := x.Len()
	if n != y.Len() {
		return nil, fmt.Errorf("ccf: %w: lengths %d and %d", ErrInvalidArgument, n, y.Len())
	}
	if n < 2 {
		return nil, fmt.Errorf("ccf: %w: %d observations", ErrInsufficientData, n)
	}
	if maxLag < 0 {
		maxLag = DefaultACFLags(n)
	}
	if maxLag >= n {
		maxLag = n - 1
	}
	mx, vx := stat.PopMeanVariance(x.Values, nil)
	my, vy := stat.PopMeanVariance(y.Values, nil)
	if vx == 0 || vy == 0 {
		return nil, fmt.Errorf("ccf: %w", ErrConstantSeries)
	}
	scale := math.Sqrt(vx * vy)

	out := make([]float64, maxLag+1)
	for k := 0; k <= maxLag; k++ {
		sum := 0.0
		for t := 0; t+k < n; t++ {
			sum += (x.Values[t+k] - mx) * (y.Values[t] - my)
		}
		d := float64(n)
		if adjusted {
			d = float64(n - k)
		}
		out[k] = sum / d / scale
	}
	return out, nil
}

// CorrelogramResult holds a correlation sequence with its white-noise bounds.
type CorrelogramResult struct {
	Lags           []int
	Values         []float64
	MaxAbs         float64            // Largest |r_k| over the tested lags
	ConfBounds     float64            // 95% confidence bounds (±1.96/sqrt(n))
	CriticalValues map[string]float64 // Bounds at 1%, 5%, 10%
}

// WhiteNoiseBounds returns z(1-a/2)/sqrt(n) for a = 1%, 5% and 10%.
func WhiteNoiseBounds(n int) map[string]float64 {
	out := make(map[string]float64, 3)
	for _, a := range []struct {
		label string
		level float64
	}{{"1%", 0.01}, {"5%", 0.05}, {"10%", 0.10}} {
		out[a.label] = distuv.UnitNormal.Quantile(1-a.level/2) / math.Sqrt(float64(n))
	}
	return out
}

// correlogram summarises values; the first `from` lags are excluded from MaxAbs.
func correlogram(values []float64, n, from int) *CorrelogramResult {
	lags := make([]int, len(values))
	maxAbs := 0.0
	for i := range lags {
		lags[i] = i
		if i >= from {
			maxAbs = math.Max(maxAbs, math.Abs(values[i]))
		}
	}
	return &CorrelogramResult{
		Lags:           lags,
		Values:         values,
		MaxAbs:         maxAbs,
		ConfBounds:     1.96 / math.Sqrt(float64(n)),
		CriticalValues: WhiteNoiseBounds(n),
	}
}

// ACFWithConfidence calculates ACF with confidence bounds.
func ACFWithConfidence(series *timeseries.Series, maxLag int) (*CorrelogramResult, error) {
	acf, err := ACF(series, maxLag)
	if err != nil {
		return nil, err
	}
	if len(acf) < 2 {
		return nil, fmt.Errorf("acf: %w: no lags beyond zero", ErrInsufficientData)
	}
	return correlogram(acf, series.Len(), 1), nil
}

// PACFWithConfidence calculates PACF with confidence bounds.
func PACFWithConfidence(series *timeseries.Series, maxLag int) (*CorrelogramResult, error) {
	pacf, err := PACF(series, maxLag)
	if err != nil {
		return nil, err
	}
	return correlogram(pacf, series.Len(), 1), nil
}

// CCFWithConfidence calculates the adjusted CCF with confidence bounds.
// Lag zero takes part in MaxAbs.
func CCFWithConfidence(x, y *timeseries.Series, maxLag int) (*CorrelogramResult, error) {
	ccf, err := CCF(x, y, maxLag, true)
	if err != nil {
		return nil, err
	}
	return correlogram(ccf, x.Len(), 0), nil
}

// SignificantLags returns the lags where ACF/PACF values exceed confidence bounds.
func SignificantLags(values []float64, confBound float64) []int {
	var significant []int
	for i := 1; i < len(values); i++ { // Skip lag 0
		if math.Abs(values[i]) > confBound {
			significant = append(significant, i)
		}
	}
	return significant
}
