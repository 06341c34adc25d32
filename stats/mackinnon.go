package stats

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// MacKinnon (1994) response surface for the single-series Dickey-Fuller
// distribution. Coefficients are stored unscaled; the small-p polynomial is
// scaled by (1, 1, 1e-2) and the large-p polynomial by (1, 1e-1, 1e-1, 1e-2).
type mackinnonSurface struct {
	star, min, max float64
	small          [3]float64
	large          [4]float64
	crit           [3][4]float64 // MacKinnon (2010) 1%, 5%, 10% with 1/T expansion
}

var mackinnon = map[Regression]mackinnonSurface{
	RegressionNone: {
		star: -1.04, min: -19.04, max: math.Inf(1),
		small: [3]float64{0.6344, 1.2378, 3.2496},
		large: [4]float64{0.4797, 9.3557, -0.6999, 3.3066},
		crit: [3][4]float64{
			{-2.56574, -2.2358, -3.627, 0},
			{-1.94100, -0.2686, -3.365, 31.223},
			{-1.61682, 0.2656, -2.714, 25.364},
		},
	},
	RegressionConstant: {
		star: -1.61, min: -18.83, max: 2.74,
		small: [3]float64{2.1659, 1.4412, 3.8269},
		large: [4]float64{1.7339, 9.3202, -1.2745, -1.0368},
		crit: [3][4]float64{
			{-3.43035, -6.5393, -16.786, -79.433},
			{-2.86154, -2.8903, -4.234, -40.040},
			{-2.56677, -1.5384, -2.809, 0},
		},
	},
	RegressionConstantTrend: {
		star: -2.89, min: -16.18, max: 0.7,
		small: [3]float64{3.2512, 1.6047, 4.9588},
		large: [4]float64{2.5261, 6.1654, -3.7956, -6.0285},
		crit: [3][4]float64{
			{-3.95877, -9.0531, -28.428, -134.155},
			{-3.41049, -4.3904, -9.036, -45.374},
			{-3.12705, -2.5856, -3.925, -22.380},
		},
	},
	RegressionQuadraticTrend: {
		star: -3.21, min: -17.17, max: 0.54,
		small: [3]float64{4.0003, 1.658, 4.8288},
		large: [4]float64{3.0718, 6.1654, -3.7956, -6.0285},
		crit: [3][4]float64{
			{-4.37113, -11.5882, -35.819, -334.047},
			{-3.83239, -5.9057, -12.490, -118.284},
			{-3.55326, -4.2090, -5.467, -32.000},
		},
	},
}

var percentLabels = [3]string{"1%", "5%", "10%"}

// MacKinnonP returns the approximate p-value of a Dickey-Fuller t statistic.
func MacKinnonP(stat float64, reg Regression) float64 {
	s, ok := mackinnon[reg]
	if !ok || math.IsNaN(stat) {
		return math.NaN()
	}
	if stat > s.max {
		return 1
	}
	if stat < s.min {
		return 0
	}
	var v float64
	if stat <= s.star {
		v = s.small[0] + s.small[1]*stat + s.small[2]*1e-2*stat*stat
	} else {
		v = s.large[0] + s.large[1]*1e-1*stat + s.large[2]*1e-1*stat*stat + s.large[3]*1e-2*stat*stat*stat
	}
	return distuv.UnitNormal.CDF(v)
}

// MacKinnonCrit returns the 1%, 5% and 10% critical values of the
// Dickey-Fuller distribution for a regression with nobs observations.
func MacKinnonCrit(reg Regression, nobs int) map[string]float64 {
	s, ok := mackinnon[reg]
	if !ok {
		return nil
	}
	out := make(map[string]float64, 3)
	t := float64(nobs)
	for i, c := range s.crit {
		out[percentLabels[i]] = c[0] + c[1]/t + c[2]/(t*t) + c[3]/(t*t*t)
	}
	return out
}

// interp is piecewise linear interpolation of (xp, fp) at x, clamped to the
// end values like numpy.interp. xp must be increasing.
func interp(x float64, xp, fp []float64) float64 {
	if x <= xp[0] {
		return fp[0]
	}
	last := len(xp) - 1
	if x >= xp[last] {
		return fp[last]
	}
	for i := 1; i <= last; i++ {
		if x <= xp[i] {
			w := (x - xp[i-1]) / (xp[i] - xp[i-1])
			return fp[i-1] + w*(fp[i]-fp[i-1])
		}
	}
	return fp[last]
}
