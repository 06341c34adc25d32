package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sartorproj/tsstat/timeseries"
)

// LjungBoxOptions configures the portmanteau tests.
type LjungBoxOptions struct {
	Lags      int  // Highest lag tested; 0 selects min(10, n/5), or min(2*Period, n/5)
	ModelDF   int  // Degrees of freedom used by a fitted model (p + q for ARIMA)
	Period    int  // Seasonal period used for the default lag count
	BoxPierce bool // Report the Box-Pierce statistic instead of Ljung-Box
}

// LjungBoxResult represents the result of a Ljung-Box test.
// Statistic and PValue refer to the highest lag; the per-lag tables hold
// both portmanteau statistics for lags 1..Lags.
type LjungBoxResult struct {
	Statistic float64
	PValue    float64
	Lags      int
	DOF       int // Degrees of freedom at the highest lag
	BoxPierce bool

	LBStat   []float64
	LBPValue []float64
	BPStat   []float64
	BPPValue []float64
}

// LjungBox performs the Ljung-Box test for autocorrelation in residuals.
// The null hypothesis is that there is no autocorrelation up to each lag.
// P-values are NaN at lags where Lags - ModelDF is not positive.
func LjungBox(series *timeseries.Series, opts LjungBoxOptions) (*LjungBoxResult, error) {
	n := series.Len()
	lags := opts.Lags
	if lags <= 0 {
		if opts.Period > 1 {
			lags = min(2*opts.Period, n/5)
		} else {
			lags = min(10, n/5)
		}
	}
	if lags >= n {
		lags = n - 1
	}
	if lags < 1 {
		return nil, fmt.Errorf("ljung-box: %w: %d observations", ErrInsufficientData, n)
	}

	acf, err := ACF(series, lags)
	if err != nil {
		return nil, fmt.Errorf("ljung-box: %w", err)
	}

	nf := float64(n)
	res := &LjungBoxResult{
		Lags:      lags,
		BoxPierce: opts.BoxPierce,
		LBStat:    make([]float64, lags),
		LBPValue:  make([]float64, lags),
		BPStat:    make([]float64, lags),
		BPPValue:  make([]float64, lags),
	}
	lb, bp := 0.0, 0.0
	for k := 1; k <= lags; k++ {
		lb += acf[k] * acf[k] / (nf - float64(k))
		bp += acf[k] * acf[k]
		res.LBStat[k-1] = nf * (nf + 2) * lb
		res.BPStat[k-1] = nf * bp
		if dof := k - opts.ModelDF; dof > 0 {
			chi := distuv.ChiSquared{K: float64(dof)}
			res.LBPValue[k-1] = chi.Survival(res.LBStat[k-1])
			res.BPPValue[k-1] = chi.Survival(res.BPStat[k-1])
		} else {
			res.LBPValue[k-1] = math.NaN()
			res.BPPValue[k-1] = math.NaN()
		}
	}

	res.DOF = lags - opts.ModelDF
	if opts.BoxPierce {
		res.Statistic, res.PValue = res.BPStat[lags-1], res.BPPValue[lags-1]
	} else {
		res.Statistic, res.PValue = res.LBStat[lags-1], res.LBPValue[lags-1]
	}
	return res, nil
}

// BoxPierce performs the Box-Pierce test for autocorrelation.
// Similar to Ljung-Box but with a simpler formula.
func BoxPierce(series *timeseries.Series, lags, modelDF int) (*LjungBoxResult, error) {
	return LjungBox(series, LjungBoxOptions{Lags: lags, ModelDF: modelDF, BoxPierce: true})
}
