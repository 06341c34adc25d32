package regression

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// AcorrLM runs the Lagrange multiplier test for residual autocorrelation:
// x[t] is regressed on a constant and nlags of its own lags.
func AcorrLM(x []float64, nlags, ddof int) (*LMResult, error) {
	if nlags <= 0 {
		nlags = DefaultLags(len(x))
	}
	y, design, err := lagDesign(x, nlags)
	if err != nil {
		return nil, fmt.Errorf("acorr lm: %w", err)
	}
	aux, err := OLS(y, design)
	if err != nil {
		return nil, fmt.Errorf("acorr lm: %w", err)
	}
	return lmFromAux(aux, nlags, float64(len(y)-ddof)), nil
}

// BGResult extends the LM quadruple with the Durbin-Watson statistic of the
// original residuals.
type BGResult struct {
	LMResult
	DurbinWatson float64
}

// BreuschGodfrey tests the residuals of fit for serial correlation up to order
// nlags. Pre-sample lagged residuals are set to zero.
func BreuschGodfrey(fit *Fit, nlags int) (*BGResult, error) {
	n := fit.NObs
	if nlags <= 0 {
		nlags = DefaultLags(n)
	}
	if n-fit.K-nlags < 1 {
		return nil, fmt.Errorf("%w: %d observations for %d regressors and %d lags", ErrInsufficientData, n, fit.K, nlags)
	}

	lags := mat.NewDense(n, nlags, nil)
	for t := 0; t < n; t++ {
		for j := 1; j <= nlags; j++ {
			if t-j >= 0 {
				lags.Set(t, j-1, fit.Resid[t-j])
			}
		}
	}
	exog := fit.X
	if !fit.HasConstant {
		exog = AddConstant(fit.X)
	}
	base, err := OLS(fit.Resid, exog)
	if err != nil {
		return nil, fmt.Errorf("breusch-godfrey: %w", err)
	}
	full, err := OLS(fit.Resid, HStack(exog, lags))
	if err != nil {
		return nil, fmt.Errorf("breusch-godfrey: %w", err)
	}
	fval, fp, _ := CompareF(base, full)
	lm := float64(n) * full.RSquared
	return &BGResult{
		LMResult: LMResult{
			LM:       lm,
			LMPValue: distuv.ChiSquared{K: float64(nlags)}.Survival(lm),
			F:        fval,
			FPValue:  fp,
			DF:       nlags,
		},
		DurbinWatson: DurbinWatson(fit.Resid),
	}, nil
}

// DurbinWatson calculates the Durbin-Watson statistic for the residuals.
// The statistic ranges from 0 to 4; values near 2 indicate no first order
// autocorrelation.
func DurbinWatson(residuals []float64) float64 {
	if len(residuals) < 2 {
		return 0
	}

	sumSqDiff := 0.0
	sumSq := residuals[0] * residuals[0]
	for i := 1; i < len(residuals); i++ {
		diff := residuals[i] - residuals[i-1]
		sumSqDiff += diff * diff
		sumSq += residuals[i] * residuals[i]
	}

	if sumSq == 0 {
		return 0
	}
	return sumSqDiff / sumSq
}
