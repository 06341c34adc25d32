package stats

import (
	"errors"
	"fmt"
	"math"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/tsstat/regression"
	"github.com/sartorproj/tsstat/timeseries"
)

// QSOptions configures the QS test.
type QSOptions struct {
	Period int  // Observations per cycle, at least 2
	Diff   bool // Test the first differences
}

// QSResult represents the result of a QS test.
type QSResult struct {
	Statistic float64
	PValue    float64
}

// QS runs the QS test of Gomez and Maravall: a Ljung-Box type statistic on
// the autocorrelations at the seasonal lags m and 2m. Negative
// autocorrelations are not evidence of seasonality and zero the statistic.
func QS(series *timeseries.Series, opts QSOptions) (*QSResult, error) {
	m := opts.Period
	if m < 2 {
		return nil, fmt.Errorf("qs: %w: period %d", ErrInvalidArgument, m)
	}
	y := series.DropNaN()
	if opts.Diff {
		y = y.Diff()
	}
	n := y.Len()
	if n <= 2*m {
		return nil, fmt.Errorf("qs: %w: %d observations for period %d", ErrInsufficientData, n, m)
	}
	acf, err := ACF(y, 2*m)
	if err != nil {
		return nil, fmt.Errorf("qs: %w", err)
	}
	r1, r2 := acf[m], acf[2*m]
	if r1 <= 0 || r2 <= 0 {
		r1, r2 = 0, 0
	}
	nf, mf := float64(n), float64(m)
	qs := nf * (nf + 2) * (r1*r1/(nf-mf) + r2*r2/(nf-2*mf))
	return &QSResult{Statistic: qs, PValue: distuv.ChiSquared{K: 2}.Survival(qs)}, nil
}

// OCSBOptions configures the Osborn-Chui-Smith-Birchenhall test.
type OCSBOptions struct {
	Period    int
	MaxLag    int    // Highest AR order considered (default 3)
	LagMethod string // "aic" (default), "bic" or "fixed"
}

// OCSBResult represents the result of an OCSB test. D is 1 when seasonal
// differencing is required.
type OCSBResult struct {
	Statistic     float64
	CriticalValue float64 // 5% critical value
	D             int
	Lag           int
}

// OCSBCritical is the simulated 5% critical value of the OCSB statistic.
func OCSBCritical(m int) float64 {
	l := math.Log(float64(m)) - 0.7656451
	return -0.2937411*math.Exp(-0.2850853*l-0.05983644*l*l) - 1.652202
}

// OCSBMinLength is the shortest series OCSB can fit with period m and up to
// maxlag autoregressive terms.
func OCSBMinLength(m, maxlag int) int {
	return max(2*m+5+maxlag, m+2*maxlag+5)
}

// OCSB tests the null hypothesis of a seasonal unit root. The statistic is
// the t value on the lagged first differences in the regression of
// (1-B)(1-B^m)y on its own lags and the filtered (1-B^m)y[t-1] and
// (1-B)y[t-m].
func OCSB(series *timeseries.Series, opts OCSBOptions) (*OCSBResult, error) {
	m := opts.Period
	if m < 2 {
		return nil, fmt.Errorf("ocsb: %w: period %d", ErrInvalidArgument, m)
	}
	maxlag := opts.MaxLag
	if maxlag < 0 {
		return nil, fmt.Errorf("ocsb: %w: max lag %d", ErrInvalidArgument, maxlag)
	}
	x := series.Values
	if len(x) < OCSBMinLength(m, maxlag) {
		return nil, fmt.Errorf("ocsb: %w: %d observations for period %d", ErrInsufficientData, len(x), m)
	}
	if series.IsConstant() {
		return nil, fmt.Errorf("ocsb: %w", ErrConstantSeries)
	}

	lag := maxlag
	switch opts.LagMethod {
	case "fixed":
	case "", "aic", "bic":
		if maxlag > 0 {
			best, bestIC := -1, math.Inf(1)
			for l := 1; l <= maxlag; l++ {
				fit, err := fitOCSB(x, m, l, maxlag)
				if err != nil {
					continue
				}
				ic := fit.AIC
				if opts.LagMethod == "bic" {
					ic = fit.BIC
				}
				if ic < bestIC {
					best, bestIC = l, ic
				}
			}
			if best < 0 {
				return nil, fmt.Errorf("ocsb: %w: no lag order could be fitted", regression.ErrSingular)
			}
			lag = best
		}
	default:
		return nil, fmt.Errorf("ocsb: %w: lag method %q", ErrInvalidArgument, opts.LagMethod)
	}

	fit, err := fitOCSB(x, m, lag, lag)
	if err != nil {
		return nil, fmt.Errorf("ocsb: %w", err)
	}
	stat := fit.TValues[len(fit.TValues)-1]
	crit := OCSBCritical(m)
	d := 0
	if stat > crit {
		d = 1
	}
	return &OCSBResult{Statistic: stat, CriticalValue: crit, D: d, Lag: lag}, nil
}

// fitOCSB fits the OCSB regression with lag AR terms on the sample that
// starts after maxlag lags, so fits with different lags are comparable.
func fitOCSB(x []float64, m, lag, maxlag int) (*regression.Fit, error) {
	n := len(x)
	dm := func(t int) float64 { return x[t] - x[t-m] }
	d1 := func(t int) float64 { return x[t] - x[t-1] }
	y := func(t int) float64 { return dm(t) - dm(t-1) }

	// AR(lag) on (1-B)(1-B^m)y without intercept
	phi := []float64{}
	start := m + 2 + maxlag
	if lag > 0 {
		rows := n - start
		endog := make([]float64, rows)
		design := mat.NewDense(rows, lag, nil)
		for r := 0; r < rows; r++ {
			t := start + r
			endog[r] = y(t)
			for j := 1; j <= lag; j++ {
				design.Set(r, j-1, y(t-j))
			}
		}
		ar, err := regression.OLS(endog, design)
		if err != nil {
			return nil, err
		}
		phi = ar.Params
	}
	filter := func(f func(int) float64, t int) float64 {
		v := f(t)
		for j, p := range phi {
			v -= p * f(t-j-1)
		}
		return v
	}

	rows := n - start
	endog := make([]float64, rows)
	design := mat.NewDense(rows, lag+2, nil)
	for r := 0; r < rows; r++ {
		t := start + r
		endog[r] = y(t)
		for j := 1; j <= lag; j++ {
			design.Set(r, j-1, y(t-j))
		}
		design.Set(r, lag, filter(dm, t-1))
		design.Set(r, lag+1, filter(d1, t-m))
	}
	return regression.OLS(endog, design)
}

// CHResult represents the result of a Canova-Hansen test. D is 1 when
// seasonal differencing is required.
type CHResult struct {
	Statistic     float64
	CriticalValue float64 // 5% critical value
	D             int
}

var chCrit = []float64{
	0.4617146, 0.7479655, 1.0007818, 1.2375350, 1.4625240, 1.6920200,
	1.9043096, 2.1169602, 2.3268562, 2.5406922, 2.7391007,
}

// CHCritical is the 5% critical value of the Canova-Hansen statistic with
// m-1 seasonal frequencies.
func CHCritical(m int) float64 {
	switch {
	case m >= 2 && m <= 12:
		return chCrit[m-2]
	case m == 24:
		return 5.098624
	case m == 52:
		return 10.341416
	case m == 365:
		return 65.44445
	}
	return 0.269 * math.Pow(float64(m), 0.928)
}

// CanovaHansen tests the null hypothesis of deterministic (stable) seasonality
// against a seasonal unit root at all seasonal frequencies.
func CanovaHansen(series *timeseries.Series, m int) (*CHResult, error) {
	if m < 2 {
		return nil, fmt.Errorf("canova-hansen: %w: period %d", ErrInvalidArgument, m)
	}
	x := series.Values
	n := len(x)
	if n < 2*m+5 {
		return nil, fmt.Errorf("canova-hansen: %w: %d observations for period %d", ErrInsufficientData, n, m)
	}
	if series.IsConstant() {
		return nil, fmt.Errorf("canova-hansen: %w", ErrConstantSeries)
	}

	k := m - 1
	dummies := seasonalDummies(n, m)
	fit, err := regression.OLS(x, regression.AddConstant(dummies))
	if err != nil {
		return nil, fmt.Errorf("canova-hansen: %w", err)
	}

	scores := mat.NewDense(n, k, nil)
	cum := mat.NewDense(n, k, nil)
	for j := 0; j < k; j++ {
		run := 0.0
		for t := 0; t < n; t++ {
			v := fit.Resid[t] * dummies.At(t, j)
			scores.Set(t, j, v)
			run += v
			cum.Set(t, j, run)
		}
	}

	ltrunc := int(math.Round(float64(m) * math.Pow(float64(n)/100, 0.25)))
	var omega mat.Dense
	omega.Mul(scores.T(), scores)
	for l := 1; l <= ltrunc && l < n; l++ {
		var cross mat.Dense
		cross.Mul(scores.Slice(l, n, 0, k).T(), scores.Slice(0, n-l, 0, k))
		w := 1 - float64(l)/float64(ltrunc+1)
		cross.Scale(w, &cross)
		omega.Add(&omega, &cross)
		omega.Add(&omega, cross.T())
	}
	omega.Scale(1/float64(n), &omega)

	var ff mat.Dense
	ff.Mul(cum.T(), cum)
	var solved mat.Dense
	if err := solved.Solve(&omega, &ff); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) {
			return nil, fmt.Errorf("canova-hansen: %w: %v", regression.ErrSingular, err)
		}
	}
	stat := mat.Trace(&solved) / float64(n*n)
	crit := CHCritical(m)
	d := 0
	if stat > crit {
		d = 1
	}
	return &CHResult{Statistic: stat, CriticalValue: crit, D: d}, nil
}

// seasonalDummies returns the first m-1 of the columns cos(2πit/m),
// sin(2πit/m) for i = 1..m and t = 1..n.
func seasonalDummies(n, m int) *mat.Dense {
	out := mat.NewDense(n, m-1, nil)
	for t := 1; t <= n; t++ {
		for c := 0; c < m-1; c++ {
			i := float64(c/2 + 1)
			arg := 2 * math.Pi * i * float64(t) / float64(m)
			if c%2 == 0 {
				out.Set(t-1, c, math.Cos(arg))
			} else {
				out.Set(t-1, c, math.Sin(arg))
			}
		}
	}
	return out
}

// decompose runs the classical ("classical" or "") or STL ("stl") additive
// decomposition.
func decompose(series *timeseries.Series, period int, method string) (*DecompositionResult, error) {
	switch method {
	case "", "classical":
		return Decompose(series, period, "additive")
	case "stl":
		return STL(series, period, 2)
	}
	return nil, fmt.Errorf("%w: decomposition method %q", ErrInvalidArgument, method)
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func componentShare(component, residual []float64) (float64, error) {
	vc, err := mstats.PopulationVariance(finite(component))
	if err != nil {
		return math.NaN(), err
	}
	vr, err := mstats.PopulationVariance(finite(residual))
	if err != nil {
		return math.NaN(), err
	}
	if vc+vr == 0 {
		return 0, nil
	}
	return vc / (vc + vr), nil
}

// SeasonalStrength is var(S) / (var(S) + var(R)) of an additive decomposition,
// in [0, 1]. Values near 1 indicate a dominant seasonal component.
func SeasonalStrength(series *timeseries.Series, period int, method string) (float64, error) {
	d, err := decompose(series, period, method)
	if err != nil {
		return math.NaN(), fmt.Errorf("seasonal strength: %w", err)
	}
	return componentShare(d.Seasonal.Values, d.Residual.Values)
}

// TrendStrength is var(T) / (var(T) + var(R)) of an additive decomposition.
func TrendStrength(series *timeseries.Series, period int, method string) (float64, error) {
	d, err := decompose(series, period, method)
	if err != nil {
		return math.NaN(), fmt.Errorf("trend strength: %w", err)
	}
	return componentShare(d.Trend.Values, d.Residual.Values)
}

// Spikiness is the mean absolute remainder over the mean absolute seasonal
// component. It is +Inf when the seasonal component is identically zero.
func Spikiness(series *timeseries.Series, period int, method string) (float64, error) {
	d, err := decompose(series, period, method)
	if err != nil {
		return math.NaN(), fmt.Errorf("spikiness: %w", err)
	}
	absMean := func(values []float64) (float64, error) {
		vs := finite(values)
		for i, v := range vs {
			vs[i] = math.Abs(v)
		}
		return mstats.Mean(vs)
	}
	resid, err := absMean(d.Residual.Values)
	if err != nil {
		return math.NaN(), fmt.Errorf("spikiness: remainder: %w", err)
	}
	seasonal, err := absMean(d.Seasonal.Values)
	if err != nil {
		return math.NaN(), fmt.Errorf("spikiness: seasonal: %w", err)
	}
	return resid / seasonal, nil
}
