package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/tsstat/regression"
	"github.com/sartorproj/tsstat/timeseries"
)

// tStatStop is the one-sided 5% normal quantile used by the t-stat autolag.
const tStatStop = 1.6448536269514722

// ADFOptions configures the Augmented Dickey-Fuller test.
type ADFOptions struct {
	MaxLag     int // Negative selects ceil(12*(n/100)^(1/4))
	Regression Regression
	Autolag    Autolag
}

// DefaultADFOptions returns a constant-only regression with AIC lag selection.
func DefaultADFOptions() ADFOptions {
	return ADFOptions{MaxLag: -1, Regression: RegressionConstant, Autolag: AutolagAIC}
}

// ADFResult represents the result of an Augmented Dickey-Fuller test.
type ADFResult struct {
	Statistic      float64
	PValue         float64
	UsedLag        int
	NObs           int
	CriticalValues map[string]float64 // Critical values at 1%, 5%, 10%
	ICBest         float64            // Best information criterion, NaN without autolag
}

// ADF performs the Augmented Dickey-Fuller test for unit root.
// The null hypothesis is that the series has a unit root (is non-stationary).
// A small p-value rejects the null in favour of stationarity.
func ADF(series *timeseries.Series, opts ADFOptions) (*ADFResult, error) {
	if series.IsConstant() {
		return nil, fmt.Errorf("adf: %w", ErrConstantSeries)
	}
	return adf(series.Values, opts)
}

// Terms is the number of deterministic regressors r adds.
func (r Regression) Terms() int {
	switch r {
	case RegressionConstant:
		return 1
	case RegressionConstantTrend:
		return 2
	case RegressionQuadraticTrend:
		return 3
	}
	return 0
}

// trendColumns returns the deterministic regressors 1, t, t^2 for t = 1..nobs.
func trendColumns(reg Regression, nobs int) [][]float64 {
	k := reg.Terms()
	cols := make([][]float64, k)
	for j := range cols {
		cols[j] = make([]float64, nobs)
		for i := range cols[j] {
			cols[j][i] = math.Pow(float64(i+1), float64(j))
		}
	}
	return cols
}

// adfDesign builds the Dickey-Fuller regression with lag augmenting
// differences: dy[t] on y[t-1] and dy[t-1..t-lag].
func adfDesign(x []float64, lag int) (dy, level []float64, lagged [][]float64) {
	diff := make([]float64, len(x)-1)
	for i := range diff {
		diff[i] = x[i+1] - x[i]
	}
	nobs := len(diff) - lag
	dy = make([]float64, nobs)
	level = make([]float64, nobs)
	lagged = make([][]float64, lag)
	for j := range lagged {
		lagged[j] = make([]float64, nobs)
	}
	for i := 0; i < nobs; i++ {
		t := i + lag
		dy[i] = diff[t]
		level[i] = x[t]
		for j := 1; j <= lag; j++ {
			lagged[j-1][i] = diff[t-j]
		}
	}
	return dy, level, lagged
}

// MaxADFLag is the largest number of augmenting lags a Dickey-Fuller
// regression on n observations with ntrend deterministic terms can carry
// while leaving at least one residual degree of freedom.
func MaxADFLag(n, ntrend int) int {
	return min(n/2-ntrend-1, (n-ntrend-3)/2)
}

func adf(x []float64, opts ADFOptions) (*ADFResult, error) {
	n := len(x)
	reg := opts.Regression
	if reg == "" {
		reg = RegressionConstant
	}
	if _, ok := mackinnon[reg]; !ok {
		return nil, fmt.Errorf("adf: %w: regression %q", ErrInvalidArgument, reg)
	}
	ntrend := reg.Terms()

	maxlag := opts.MaxLag
	if maxlag < 0 {
		maxlag = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
		maxlag = min(MaxADFLag(n, ntrend), maxlag)
		if maxlag < 0 {
			return nil, fmt.Errorf("adf: %w: %d observations", ErrInsufficientData, n)
		}
	} else if maxlag > MaxADFLag(n, ntrend) {
		return nil, fmt.Errorf("adf: %w: maxlag %d must not exceed %d", ErrInvalidArgument, maxlag, MaxADFLag(n, ntrend))
	}

	usedlag := maxlag
	icbest := math.NaN()
	autolag := opts.Autolag
	if autolag == "" {
		autolag = AutolagNone
	}
	if autolag != AutolagNone {
		dy, level, lagged := adfDesign(x, maxlag)
		full := append(trendColumns(reg, len(dy)), level)
		full = append(full, lagged...)
		startlag := ntrend + 1
		best, ic, err := selectLag(dy, full, startlag, maxlag, autolag)
		if err != nil {
			return nil, fmt.Errorf("adf: %w", err)
		}
		usedlag, icbest = best, ic
	}

	dy, level, lagged := adfDesign(x, usedlag)
	cols := append([][]float64{level}, lagged...)
	cols = append(cols, trendColumns(reg, len(dy))...)
	design, err := regression.FromColumns(cols...)
	if err != nil {
		return nil, fmt.Errorf("adf: %w", err)
	}
	fit, err := regression.OLS(dy, design)
	if err != nil {
		return nil, fmt.Errorf("adf: %w", err)
	}
	stat := fit.TValues[0]
	return &ADFResult{
		Statistic:      stat,
		PValue:         MacKinnonP(stat, reg),
		UsedLag:        usedlag,
		NObs:           len(dy),
		CriticalValues: MacKinnonCrit(reg, len(dy)),
		ICBest:         icbest,
	}, nil
}

// selectLag fits dy on the first startlag..startlag+maxlag columns of full and
// returns the chosen number of augmenting lags with its criterion value.
func selectLag(dy []float64, full [][]float64, startlag, maxlag int, method Autolag) (int, float64, error) {
	fits := make([]*regression.Fit, maxlag+1)
	for l := 0; l <= maxlag; l++ {
		design, err := regression.FromColumns(full[:startlag+l]...)
		if err != nil {
			return 0, 0, err
		}
		fit, err := regression.OLS(dy, design)
		if err != nil {
			return 0, 0, err
		}
		fits[l] = fit
	}

	switch method {
	case AutolagAIC, AutolagBIC:
		ic := make([]float64, len(fits))
		for i, f := range fits {
			if method == AutolagAIC {
				ic[i] = f.AIC
			} else {
				ic[i] = f.BIC
			}
		}
		best := floats.MinIdx(ic)
		return best, ic[best], nil
	case AutolagT:
		for l := maxlag; l >= 0; l-- {
			tv := math.Abs(fits[l].TValues[len(fits[l].TValues)-1])
			if tv >= tStatStop || l == 0 {
				return l, tv, nil
			}
		}
	}
	return 0, 0, fmt.Errorf("%w: autolag %q", ErrInvalidArgument, method)
}

// KPSSOptions configures the KPSS test.
type KPSSOptions struct {
	Regression Regression // RegressionConstant or RegressionConstantTrend
	NLags      int        // Negative selects LagMethod
	LagMethod  string     // "auto" (Hobijn et al.) or "legacy"
}

// DefaultKPSSOptions tests level stationarity with automatic bandwidth.
func DefaultKPSSOptions() KPSSOptions {
	return KPSSOptions{Regression: RegressionConstant, NLags: -1, LagMethod: "auto"}
}

// KPSSResult represents the result of a KPSS test.
type KPSSResult struct {
	Statistic      float64
	PValue         float64
	Lags           int
	CriticalValues map[string]float64
}

var (
	kpssPValues = []float64{0.10, 0.05, 0.025, 0.01}
	kpssLabels  = []string{"10%", "5%", "2.5%", "1%"}
	kpssCritC   = []float64{0.347, 0.463, 0.574, 0.739}
	kpssCritCT  = []float64{0.119, 0.146, 0.176, 0.216}
)

// KPSS performs the Kwiatkowski-Phillips-Schmidt-Shin test for stationarity.
// The null hypothesis is that the series is stationary. The p-value is
// interpolated from the tabulated critical values and so lies in [0.01, 0.10].
func KPSS(series *timeseries.Series, opts KPSSOptions) (*KPSSResult, error) {
	x := series.Values
	n := len(x)
	if n < 3 {
		return nil, fmt.Errorf("kpss: %w: %d observations", ErrInsufficientData, n)
	}

	var resid []float64
	var crit []float64
	switch opts.Regression {
	case RegressionConstant, "":
		mean := series.Mean()
		resid = make([]float64, n)
		for i, v := range x {
			resid[i] = v - mean
		}
		crit = kpssCritC
	case RegressionConstantTrend:
		design, err := regression.FromColumns(trendColumns(RegressionConstantTrend, n)...)
		if err != nil {
			return nil, fmt.Errorf("kpss: %w", err)
		}
		fit, err := regression.OLS(x, design)
		if err != nil {
			return nil, fmt.Errorf("kpss: %w", err)
		}
		resid = fit.Resid
		crit = kpssCritCT
	default:
		return nil, fmt.Errorf("kpss: %w: regression %q", ErrInvalidArgument, opts.Regression)
	}

	nlags := opts.NLags
	if nlags < 0 {
		switch opts.LagMethod {
		case "auto", "":
			nlags = kpssAutolag(resid)
		case "legacy":
			nlags = int(math.Ceil(12 * math.Pow(float64(n)/100, 0.25)))
		default:
			return nil, fmt.Errorf("kpss: %w: lag method %q", ErrInvalidArgument, opts.LagMethod)
		}
		nlags = min(nlags, n-1)
	} else if nlags >= n {
		return nil, fmt.Errorf("kpss: %w: lags %d must be below %d", ErrInvalidArgument, nlags, n)
	}

	cum := make([]float64, n)
	floats.CumSum(cum, resid)
	eta := floats.Dot(cum, cum) / float64(n*n)
	s := longRunVariance(resid, nlags)
	if s == 0 {
		return nil, fmt.Errorf("kpss: %w", ErrConstantSeries)
	}
	stat := eta / s

	cv := make(map[string]float64, len(crit))
	for i, c := range crit {
		cv[kpssLabels[i]] = c
	}
	return &KPSSResult{
		Statistic:      stat,
		PValue:         interp(stat, crit, kpssPValues),
		Lags:           nlags,
		CriticalValues: cv,
	}, nil
}

// longRunVariance is the Newey-West estimate with Bartlett weights.
func longRunVariance(resid []float64, lags int) float64 {
	n := len(resid)
	s := floats.Dot(resid, resid)
	for i := 1; i <= lags; i++ {
		prod := floats.Dot(resid[i:], resid[:n-i])
		s += 2 * prod * (1 - float64(i)/float64(lags+1))
	}
	return s / float64(n)
}

func kpssAutolag(resid []float64) int {
	n := len(resid)
	nf := float64(n)
	covlags := int(math.Pow(nf, 2.0/9.0))
	s0 := floats.Dot(resid, resid) / nf
	s1 := 0.0
	for i := 1; i <= covlags && i < n; i++ {
		prod := floats.Dot(resid[i:], resid[:n-i]) / (nf / 2)
		s0 += prod
		s1 += float64(i) * prod
	}
	if s0 == 0 {
		return 0
	}
	sHat := s1 / s0
	gamma := 1.1447 * math.Pow(sHat*sHat, 1.0/3.0)
	return int(gamma * math.Pow(nf, 1.0/3.0))
}

// PPOptions configures the Phillips-Perron test.
type PPOptions struct {
	LShort bool    // Short (4) or long (12) bandwidth constant
	Alpha  float64 // Level used for ShouldDiff (default 0.05)
}

// DefaultPPOptions uses the short bandwidth and a 5% level.
func DefaultPPOptions() PPOptions {
	return PPOptions{LShort: true, Alpha: 0.05}
}

// PPResult represents the result of a Phillips-Perron test.
type PPResult struct {
	Statistic  float64 // Z(alpha) statistic
	PValue     float64
	Lags       int
	NObs       int
	ShouldDiff bool // PValue > Alpha
}

// Z(alpha) quantiles with constant and trend (Banerjee et al. 1993), rows by
// probability and columns by sample size.
var (
	ppProbs = []float64{0.01, 0.025, 0.05, 0.10, 0.90, 0.95, 0.975, 0.99}
	ppSizes = []float64{25, 50, 100, 250, 500, 100000}
	ppTable = [][]float64{
		{-22.5, -25.7, -27.4, -28.4, -28.9, -29.5},
		{-19.9, -22.4, -23.6, -24.4, -24.8, -25.1},
		{-17.9, -19.8, -20.7, -21.3, -21.5, -21.8},
		{-15.6, -16.8, -17.5, -18.0, -18.1, -18.3},
		{-3.66, -3.71, -3.74, -3.75, -3.76, -3.77},
		{-2.51, -2.60, -2.62, -2.64, -2.65, -2.66},
		{-1.53, -1.66, -1.73, -1.78, -1.78, -1.79},
		{-0.43, -0.65, -0.75, -0.82, -0.84, -0.87},
	}
)

// PhillipsPerron performs the Phillips-Perron Z(alpha) test for a unit root
// in a regression with constant and linear trend. The null hypothesis is a
// unit root; the p-value is interpolated and lies in [0.01, 0.99].
func PhillipsPerron(series *timeseries.Series, opts PPOptions) (*PPResult, error) {
	x := series.Values
	if len(x) < 4 {
		return nil, fmt.Errorf("pp: %w: %d observations", ErrInsufficientData, len(x))
	}
	if series.IsConstant() {
		return nil, fmt.Errorf("pp: %w", ErrConstantSeries)
	}
	if opts.Alpha == 0 {
		opts.Alpha = 0.05
	}

	yt := x[1:]
	yt1 := x[:len(x)-1]
	n := len(yt)
	nf := float64(n)
	design := mat.NewDense(n, 3, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
		design.Set(i, 1, float64(i+1)-nf/2)
		design.Set(i, 2, yt1[i])
	}
	fit, err := regression.OLS(yt, design)
	if err != nil {
		return nil, fmt.Errorf("pp: %w", err)
	}
	alpha := fit.Params[2]
	u := fit.Resid

	scalar := 12.0
	if opts.LShort {
		scalar = 4
	}
	l := int(math.Trunc(scalar * math.Pow(nf/100, 0.25)))
	ssqru := floats.Dot(u, u) / nf
	ssqrtl := longRunVariance(u, l)

	var sumSq, sumIdx, sum float64
	for i, v := range yt1 {
		sumSq += v * v
		sumIdx += float64(i+1) * v
		sum += v
	}
	trm1 := nf * nf * (nf*nf - 1) * sumSq / 12
	trm2 := nf * sumIdx * sumIdx
	trm3 := nf * (nf + 1) * sumIdx * sum
	trm4 := nf * (nf + 1) * (2*nf + 1) * sum * sum / 6
	dx := trm1 - trm2 + trm3 - trm4
	if dx == 0 {
		return nil, fmt.Errorf("pp: %w", ErrConstantSeries)
	}
	stat := nf*(alpha-1) - math.Pow(nf, 6)/(24*dx)*(ssqrtl-ssqru)

	ipl := make([]float64, len(ppTable))
	for i, row := range ppTable {
		ipl[i] = interp(nf, ppSizes, row)
	}
	p := interp(stat, ipl, ppProbs)
	return &PPResult{
		Statistic:  stat,
		PValue:     p,
		Lags:       l,
		NObs:       n,
		ShouldDiff: p > opts.Alpha,
	}, nil
}
