package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/tsstat/regression"
	"github.com/sartorproj/tsstat/timeseries"
)

// ZAOptions configures the Zivot-Andrews test.
type ZAOptions struct {
	MaxLag     int        // Used when Autolag is none; negative selects 12*(n/100)^(1/4)
	Regression Regression // RegressionConstant, RegressionTrend or RegressionConstantTrend
	Autolag    Autolag    // Lag selection through an ADF regression with trend
	Trim       float64    // Fraction trimmed from each end when searching for the break
}

// DefaultZAOptions searches for a break in the intercept with AIC lags.
func DefaultZAOptions() ZAOptions {
	return ZAOptions{MaxLag: -1, Regression: RegressionConstant, Autolag: AutolagAIC, Trim: 0.15}
}

// ZAResult represents the result of a Zivot-Andrews test.
type ZAResult struct {
	Statistic      float64
	PValue         float64
	CriticalValues map[string]float64
	BaseLag        int
	BreakIndex     int // Last observation before the selected break
}

// Zivot-Andrews (1992) quantiles of the minimum t statistic.
var (
	zaProbs = []float64{0.01, 0.025, 0.05, 0.10, 0.50, 0.90, 0.95, 0.975, 0.99}
	zaCrit  = map[Regression][]float64{
		RegressionConstant:      {-5.34, -5.02, -4.80, -4.58, -3.75, -2.99, -2.77, -2.56, -2.32},
		RegressionTrend:         {-4.93, -4.67, -4.42, -4.11, -3.23, -2.48, -2.31, -2.17, -1.97},
		RegressionConstantTrend: {-5.57, -5.30, -5.08, -4.82, -4.00, -3.25, -3.06, -2.85, -2.61},
	}
)

// ZivotAndrews tests for a unit root against trend stationarity with a
// single structural break at an unknown date. The null hypothesis is a unit
// root without a break.
func ZivotAndrews(series *timeseries.Series, opts ZAOptions) (*ZAResult, error) {
	x := series.Values
	n := len(x)
	if series.IsConstant() {
		return nil, fmt.Errorf("zivot-andrews: %w", ErrConstantSeries)
	}
	crit, ok := zaCrit[opts.Regression]
	if !ok {
		return nil, fmt.Errorf("zivot-andrews: %w: regression %q", ErrInvalidArgument, opts.Regression)
	}
	trim := opts.Trim
	if trim == 0 {
		trim = 0.15
	}
	if trim < 0 || trim > 1.0/3 {
		return nil, fmt.Errorf("zivot-andrews: %w: trim %g outside [0, 1/3]", ErrInvalidArgument, trim)
	}

	var baselag int
	switch {
	case opts.Autolag != "" && opts.Autolag != AutolagNone:
		base, err := adf(x, ADFOptions{MaxLag: -1, Regression: RegressionConstantTrend, Autolag: opts.Autolag})
		if err != nil {
			return nil, fmt.Errorf("zivot-andrews: base lag: %w", err)
		}
		baselag = base.UsedLag
	case opts.MaxLag >= 0:
		baselag = opts.MaxLag
	default:
		baselag = int(12 * math.Pow(float64(n)/100, 0.25))
	}

	trimcnt := int(float64(n) * trim)
	basecols := 4
	if opts.Regression == RegressionConstantTrend {
		basecols = 5
	}
	rows := n - baselag - 1
	if rows <= basecols+baselag {
		return nil, fmt.Errorf("zivot-andrews: %w: %d observations for %d lags", ErrInsufficientData, n, baselag)
	}

	// Constant and trend are scaled to unit norm for conditioning.
	nf := float64(n)
	cConst := 1 / math.Sqrt(nf)
	tScale := math.Sqrt(3) / math.Pow(nf, 1.5)
	xnorm := math.Sqrt(floats.Dot(x, x))

	endog := make([]float64, rows)
	design := mat.NewDense(rows, basecols+baselag, nil)
	for r := 0; r < rows; r++ {
		t := r + baselag + 1
		endog[r] = x[t] - x[t-1]
		design.Set(r, 0, cConst)
		design.Set(r, 1, float64(t+1)*tScale)
		design.Set(r, basecols-1, x[t-1]/xnorm)
		for j := 1; j <= baselag; j++ {
			design.Set(r, basecols-1+j, (x[t-j]-x[t-j-1])/xnorm)
		}
	}

	best := math.Inf(1)
	bestBP := -1
	for bp := trimcnt + 1; bp <= n-trimcnt; bp++ {
		for r := 0; r < rows; r++ {
			t := r + baselag + 1
			du, dt := 0.0, 0.0
			if t >= bp {
				du = cConst
				dt = float64(t-bp+1) * tScale
			}
			switch opts.Regression {
			case RegressionConstant:
				design.Set(r, 2, du)
			case RegressionTrend:
				design.Set(r, 2, dt)
			case RegressionConstantTrend:
				design.Set(r, 2, du)
				design.Set(r, 3, dt)
			}
		}
		fit, err := regression.OLS(endog, design)
		if err != nil {
			continue
		}
		if s := fit.TValues[basecols-1]; s < best {
			best, bestBP = s, bp
		}
	}
	if bestBP < 0 {
		return nil, fmt.Errorf("zivot-andrews: %w: no admissible break date", regression.ErrSingular)
	}

	return &ZAResult{
		Statistic: best,
		PValue:    interp(best, crit, zaProbs),
		CriticalValues: map[string]float64{
			"1%":  crit[0],
			"5%":  crit[2],
			"10%": crit[3],
		},
		BaseLag:    baselag,
		BreakIndex: bestBP - 1,
	}, nil
}

// ERSOptions configures the Elliott-Rothenberg-Stock DF-GLS test.
type ERSOptions struct {
	Lags       int        // Fixed lag count; negative selects with Autolag
	Regression Regression // RegressionConstant or RegressionConstantTrend
	Autolag    Autolag
}

// DefaultERSOptions uses GLS demeaning with AIC lags.
func DefaultERSOptions() ERSOptions {
	return ERSOptions{Lags: -1, Regression: RegressionConstant, Autolag: AutolagAIC}
}

// ERSResult represents the result of a DF-GLS test.
type ERSResult struct {
	Statistic      float64
	PValue         float64
	Lags           int
	NObs           int
	CriticalValues map[string]float64
}

// ERS performs the Elliott, Rothenberg and Stock DF-GLS unit root test: the
// series is GLS detrended and an ADF regression without deterministic terms
// is run on the result.
func ERS(series *timeseries.Series, opts ERSOptions) (*ERSResult, error) {
	y := series.Values
	n := len(y)
	if series.IsConstant() {
		return nil, fmt.Errorf("ers: %w", ErrConstantSeries)
	}

	var cbar float64
	var zcols [][]float64
	switch opts.Regression {
	case RegressionConstant, "":
		cbar = -7
		zcols = trendColumns(RegressionConstant, n)
	case RegressionConstantTrend:
		cbar = -13.5
		zcols = trendColumns(RegressionConstantTrend, n)
	default:
		return nil, fmt.Errorf("ers: %w: regression %q", ErrInvalidArgument, opts.Regression)
	}
	rho := 1 + cbar/float64(n)

	quasi := func(v []float64) []float64 {
		out := make([]float64, len(v))
		out[0] = v[0]
		for i := 1; i < len(v); i++ {
			out[i] = v[i] - rho*v[i-1]
		}
		return out
	}
	dz := make([][]float64, len(zcols))
	for j, c := range zcols {
		dz[j] = quasi(c)
	}
	dzM, err := regression.FromColumns(dz...)
	if err != nil {
		return nil, fmt.Errorf("ers: %w", err)
	}
	gls, err := regression.OLS(quasi(y), dzM)
	if err != nil {
		return nil, fmt.Errorf("ers: detrend: %w", err)
	}
	detrended := make([]float64, n)
	for i := range y {
		v := y[i]
		for j, c := range zcols {
			v -= gls.Params[j] * c[i]
		}
		detrended[i] = v
	}

	adfOpts := ADFOptions{MaxLag: opts.Lags, Regression: RegressionNone, Autolag: AutolagNone}
	if opts.Lags < 0 {
		adfOpts.Autolag = opts.Autolag
		if adfOpts.Autolag == "" || adfOpts.Autolag == AutolagNone {
			adfOpts.Autolag = AutolagAIC
		}
	}
	res, err := adf(detrended, adfOpts)
	if err != nil {
		return nil, fmt.Errorf("ers: %w", err)
	}

	out := &ERSResult{
		Statistic: res.Statistic,
		Lags:      res.UsedLag,
		NObs:      res.NObs,
	}
	if opts.Regression == RegressionConstantTrend {
		out.PValue = MacKinnonP(res.Statistic, RegressionConstant)
		out.CriticalValues = map[string]float64{"1%": -3.48, "5%": -2.89, "10%": -2.57}
	} else {
		out.PValue = MacKinnonP(res.Statistic, RegressionNone)
		out.CriticalValues = MacKinnonCrit(RegressionNone, n)
	}
	return out, nil
}

// VROptions configures the Lo-MacKinlay variance ratio test.
type VROptions struct {
	Lags     int        // Holding period q, at least 2
	Trend    Regression // RegressionConstant removes the drift, RegressionNone does not
	Debiased bool
	Robust   bool // Heteroscedasticity-robust variance
	Overlap  bool
}

// DefaultVROptions returns a robust, debiased, overlapping two-period ratio.
func DefaultVROptions() VROptions {
	return VROptions{Lags: 2, Trend: RegressionConstant, Debiased: true, Robust: true, Overlap: true}
}

// VRResult represents the result of a variance ratio test.
type VRResult struct {
	Statistic float64
	PValue    float64
	Ratio     float64
	Lags      int
}

// VarianceRatio tests the random walk null by comparing the variance of
// q-period differences with q times the variance of one-period differences.
func VarianceRatio(series *timeseries.Series, opts VROptions) (*VRResult, error) {
	q := opts.Lags
	if q == 0 {
		q = 2
	}
	if q < 2 {
		return nil, fmt.Errorf("variance ratio: %w: lags %d", ErrInvalidArgument, q)
	}
	y := series.Values
	if !opts.Overlap {
		if extra := (len(y) - 1) % q; extra != 0 {
			y = y[:len(y)-extra]
		}
	}
	nq := len(y) - 1
	if nq < 2*q {
		return nil, fmt.Errorf("variance ratio: %w: %d observations for lag %d", ErrInsufficientData, len(y), q)
	}
	nqf, qf := float64(nq), float64(q)

	mu := 0.0
	switch opts.Trend {
	case RegressionConstant, "":
		mu = (y[nq] - y[0]) / nqf
	case RegressionNone:
	default:
		return nil, fmt.Errorf("variance ratio: %w: trend %q", ErrInvalidArgument, opts.Trend)
	}

	z2 := make([]float64, nq)
	for i := 0; i < nq; i++ {
		d := y[i+1] - y[i] - mu
		z2[i] = d * d
	}
	sigma1 := floats.Sum(z2) / nqf
	if sigma1 == 0 {
		return nil, fmt.Errorf("variance ratio: %w", ErrConstantSeries)
	}

	sigmaQ := 0.0
	if opts.Overlap {
		for i := q; i <= nq; i++ {
			d := y[i] - y[i-q] - qf*mu
			sigmaQ += d * d
		}
		sigmaQ /= nqf * qf
	} else {
		for i := q; i <= nq; i += q {
			d := y[i] - y[i-q] - qf*mu
			sigmaQ += d * d
		}
		sigmaQ /= nqf
	}
	if opts.Debiased && opts.Overlap {
		sigma1 *= nqf / (nqf - 1)
		m := qf * (nqf - qf + 1) * (1 - qf/nqf)
		sigmaQ *= nqf * qf / m
	}

	var theta float64
	switch {
	case !opts.Overlap:
		theta = 2 * (qf - 1)
	case !opts.Robust:
		theta = 2 * (2*qf - 1) * (qf - 1) / (3 * qf)
	default:
		sum := floats.Sum(z2)
		scale := sum * sum
		for k := 1; k < q; k++ {
			delta := nqf * floats.Dot(z2[k:], z2[:nq-k]) / scale
			w := 1 - float64(k)/qf
			theta += 4 * w * w * delta
		}
	}

	vr := sigmaQ / sigma1
	stat := math.Sqrt(nqf) * (vr - 1) / math.Sqrt(theta)
	return &VRResult{
		Statistic: stat,
		PValue:    2 - 2*distuv.UnitNormal.CDF(math.Abs(stat)),
		Ratio:     vr,
		Lags:      q,
	}, nil
}

// RURResult represents the result of a range unit root test.
type RURResult struct {
	Statistic      float64
	PValue         float64
	CriticalValues map[string]float64
}

// Aparicio et al. (2006) quantiles of the range unit root statistic.
var (
	rurProbs = []float64{0.01, 0.025, 0.05, 0.10, 0.90, 0.95}
	rurSizes = []float64{25, 50, 100, 150, 200, 250, 500, 1000, 2000, 3000, 4000, 5000}
	rurTable = [][]float64{
		{0.6626, 0.8126, 0.9192, 1.0712, 2.4863, 2.7312},
		{0.7977, 0.9274, 1.0478, 1.1964, 2.6821, 2.9613},
		{0.9070, 1.0243, 1.1412, 1.2888, 2.8317, 3.1393},
		{0.9543, 1.0768, 1.1869, 1.3294, 2.8915, 3.2049},
		{0.9833, 1.0984, 1.2101, 1.3494, 2.9308, 3.2482},
		{0.9982, 1.1137, 1.2242, 1.3632, 2.9571, 3.2842},
		{1.0494, 1.1643, 1.2712, 1.4076, 3.0207, 3.3584},
		{1.0846, 1.1959, 1.2988, 1.4344, 3.0653, 3.4073},
		{1.1121, 1.2200, 1.3230, 1.4556, 3.0948, 3.4439},
		{1.1204, 1.2295, 1.3303, 1.4656, 3.1054, 3.4632},
		{1.1309, 1.2347, 1.3378, 1.4693, 3.1165, 3.4717},
		{1.1377, 1.2402, 1.3408, 1.4729, 3.1252, 3.4807},
	}
)

// RangeUnitRoot performs the range unit root test. The statistic counts new
// running maxima and minima, scaled by sqrt(n); stationary series set few
// records. The p-value is the tabulated level bracketing the statistic, so it
// takes one of 0.01, 0.025, 0.05, 0.10, 0.90 or 0.95.
func RangeUnitRoot(series *timeseries.Series) (*RURResult, error) {
	x := series.Values
	n := len(x)
	if n < 2 {
		return nil, fmt.Errorf("range unit root: %w: %d observations", ErrInsufficientData, n)
	}

	crit := make([]float64, len(rurProbs))
	col := make([]float64, len(rurSizes))
	for j := range rurProbs {
		for i, row := range rurTable {
			col[i] = row[j]
		}
		crit[j] = interp(float64(n), rurSizes, col)
	}

	count := 0
	hi, lo := x[0], x[0]
	for _, v := range x[1:] {
		if v > hi {
			hi = v
			count++
		}
		if v < lo {
			lo = v
			count++
		}
	}
	stat := float64(count) / math.Sqrt(float64(n))

	k := len(rurProbs) - 1
	for i := len(rurProbs) - 1; i >= 0; i-- {
		if stat < crit[i] {
			k = i
		} else {
			break
		}
	}

	return &RURResult{
		Statistic: stat,
		PValue:    rurProbs[k],
		CriticalValues: map[string]float64{
			"10%":  crit[3],
			"5%":   crit[2],
			"2.5%": crit[1],
			"1%":   crit[0],
		},
	}, nil
}
