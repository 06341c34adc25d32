package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/tsstat/timeseries"
)

// NormalityResult is the statistic and p-value of a normality test.
type NormalityResult struct {
	Statistic float64
	PValue    float64
}

// JBResult represents the result of a Jarque-Bera test.
type JBResult struct {
	Statistic float64
	PValue    float64
	Skew      float64
	Kurtosis  float64 // Pearson kurtosis, 3 for a normal distribution
}

// moments returns the biased sample skewness and Pearson kurtosis.
func moments(x []float64) (skew, kurt float64, err error) {
	mean := stat.Mean(x, nil)
	m2 := stat.Moment(2, x, nil)
	if m2 == 0 {
		return 0, 0, ErrConstantSeries
	}
	m3 := stat.MomentAbout(3, x, mean, nil)
	m4 := stat.MomentAbout(4, x, mean, nil)
	return m3 / math.Pow(m2, 1.5), m4 / (m2 * m2), nil
}

// JarqueBera tests normality from the sample skewness and kurtosis.
// The null hypothesis is that the data are normally distributed.
func JarqueBera(series *timeseries.Series) (*JBResult, error) {
	n := series.Len()
	if n < 3 {
		return nil, fmt.Errorf("jarque-bera: %w: %d observations", ErrInsufficientData, n)
	}
	skew, kurt, err := moments(series.Values)
	if err != nil {
		return nil, fmt.Errorf("jarque-bera: %w", err)
	}
	jb := float64(n) / 6 * (skew*skew + (kurt-3)*(kurt-3)/4)
	return &JBResult{
		Statistic: jb,
		PValue:    distuv.ChiSquared{K: 2}.Survival(jb),
		Skew:      skew,
		Kurtosis:  kurt,
	}, nil
}

// skewZ is D'Agostino's normal transform of the sample skewness.
func skewZ(b2, n float64) float64 {
	y := b2 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	if y == 0 {
		y = 1
	}
	return delta * math.Log(y/alpha+math.Sqrt((y/alpha)*(y/alpha)+1))
}

// kurtosisZ is the Anscombe-Glynn transform of the sample kurtosis.
func kurtosisZ(b2, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - e) / math.Sqrt(varb2)
	sqrtbeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtbeta1*(2/sqrtbeta1+math.Sqrt(1+4/(sqrtbeta1*sqrtbeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}

// NormalTest runs D'Agostino and Pearson's omnibus test, combining the
// skewness and kurtosis z-scores into a chi-squared statistic with two
// degrees of freedom. At least 8 observations are required.
func NormalTest(series *timeseries.Series) (*NormalityResult, error) {
	n := series.Len()
	if n < 8 {
		return nil, fmt.Errorf("normaltest: %w: %d observations, need 8", ErrInsufficientData, n)
	}
	skew, kurt, err := moments(series.Values)
	if err != nil {
		return nil, fmt.Errorf("normaltest: %w", err)
	}
	nf := float64(n)
	zs, zk := skewZ(skew, nf), kurtosisZ(kurt, nf)
	k2 := zs*zs + zk*zk
	return &NormalityResult{Statistic: k2, PValue: distuv.ChiSquared{K: 2}.Survival(k2)}, nil
}

// Omnibus is the omnibus normality test applied to regression residuals. It
// computes the same K^2 statistic as NormalTest.
func Omnibus(resid *timeseries.Series) (*NormalityResult, error) {
	res, err := NormalTest(resid)
	if err != nil {
		return nil, fmt.Errorf("omnibus: %w", err)
	}
	return res, nil
}

// ShapiroWilk runs the Shapiro-Wilk test with Royston's (1995) approximation
// for the coefficients and the p-value. Valid for 3 to 5000 observations.
func ShapiroWilk(series *timeseries.Series) (*NormalityResult, error) {
	n := series.Len()
	if n < 3 {
		return nil, fmt.Errorf("shapiro-wilk: %w: %d observations", ErrInsufficientData, n)
	}
	x := append([]float64(nil), series.Values...)
	sort.Float64s(x)
	if x[0] == x[n-1] {
		return nil, fmt.Errorf("shapiro-wilk: %w", ErrConstantSeries)
	}
	nf := float64(n)

	a := make([]float64, n)
	if n == 3 {
		a[0], a[2] = -math.Sqrt2/2, math.Sqrt2/2
	} else {
		m := make([]float64, n)
		mm := 0.0
		for i := range m {
			m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (nf + 0.25))
			mm += m[i] * m[i]
		}
		u := 1 / math.Sqrt(nf)
		poly := func(c0 float64, c []float64) float64 {
			v, p := c0, u
			for _, ci := range c {
				v += ci * p
				p *= u
			}
			return v
		}
		rootMM := math.Sqrt(mm)
		an := poly(m[n-1]/rootMM, []float64{0.221157, -0.147981, -2.071190, 4.434685, -2.706056})
		var phi float64
		lo, hi := 1, n-1
		if n > 5 {
			an1 := poly(m[n-2]/rootMM, []float64{0.042981, -0.293762, -1.752461, 5.682633, -3.582633})
			phi = (mm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
			a[1], a[n-2] = -an1, an1
			lo, hi = 2, n-2
		} else {
			phi = (mm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
		}
		a[0], a[n-1] = -an, an
		for i := lo; i < hi; i++ {
			a[i] = m[i] / math.Sqrt(phi)
		}
	}

	mean := stat.Mean(x, nil)
	num, ss := 0.0, 0.0
	for i, v := range x {
		num += a[i] * v
		ss += (v - mean) * (v - mean)
	}
	w := math.Min(num*num/ss, 1)

	var p float64
	switch {
	case n == 3:
		p = math.Max(6/math.Pi*(math.Asin(math.Sqrt(w))-math.Asin(math.Sqrt(0.75))), 0)
	case n <= 11:
		gamma := -2.273 + 0.459*nf
		mu := 0.5440 - 0.39978*nf + 0.025054*nf*nf - 0.0006714*nf*nf*nf
		sigma := math.Exp(1.3822 - 0.77857*nf + 0.062767*nf*nf - 0.0020322*nf*nf*nf)
		y := math.Log(1 - w)
		if y >= gamma {
			p = 1e-99
			break
		}
		z := (-math.Log(gamma-y) - mu) / sigma
		p = distuv.UnitNormal.Survival(z)
	default:
		ln := math.Log(nf)
		mu := -1.5861 - 0.31082*ln - 0.083751*ln*ln + 0.0038915*ln*ln*ln
		sigma := math.Exp(-0.4803 - 0.082676*ln + 0.0030302*ln*ln)
		z := (math.Log(1-w) - mu) / sigma
		p = distuv.UnitNormal.Survival(z)
	}
	return &NormalityResult{Statistic: w, PValue: math.Min(p, 1)}, nil
}

// ADNormResult represents the result of an Anderson-Darling test for normality.
// CriticalValues[i] applies at SignificanceLevels[i] percent.
type ADNormResult struct {
	Statistic          float64
	CriticalValues     []float64
	SignificanceLevels []float64
}

var (
	adNormLevels = []float64{15, 10, 5, 2.5, 1}
	adNormAvals  = []float64{0.576, 0.656, 0.787, 0.918, 1.092}
)

// AndersonDarling computes the Anderson-Darling A^2 statistic against a normal
// distribution with estimated mean and variance. No p-value is produced; the
// critical values are Stephens' small-sample corrected table.
func AndersonDarling(series *timeseries.Series) (*ADNormResult, error) {
	n := series.Len()
	if n < 2 {
		return nil, fmt.Errorf("anderson-darling: %w: %d observations", ErrInsufficientData, n)
	}
	y := append([]float64(nil), series.Values...)
	sort.Float64s(y)
	mean, std := stat.MeanStdDev(y, nil)
	if std == 0 {
		return nil, fmt.Errorf("anderson-darling: %w", ErrConstantSeries)
	}
	nf := float64(n)
	s := 0.0
	for i := range y {
		lo := (y[i] - mean) / std
		hi := (y[n-1-i] - mean) / std
		s += (2*float64(i+1) - 1) / nf * (math.Log(distuv.UnitNormal.CDF(lo)) + math.Log(distuv.UnitNormal.Survival(hi)))
	}
	a2 := -nf - s

	crit := make([]float64, len(adNormAvals))
	for i, v := range adNormAvals {
		crit[i] = math.Round(v/(1+4/nf-25/(nf*nf))*1000) / 1000
	}
	return &ADNormResult{
		Statistic:          a2,
		CriticalValues:     crit,
		SignificanceLevels: append([]float64(nil), adNormLevels...),
	}, nil
}
