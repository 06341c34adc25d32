package regression

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultLags is the lag count used by the LM diagnostics when none is given:
// min(10, n/5), at least one.
func DefaultLags(n int) int {
	return max(1, min(10, n/5))
}

// lagDesign regresses x[t] on a constant and x[t-1..t-nlags], dropping the
// first nlags observations.
func lagDesign(x []float64, nlags int) ([]float64, *mat.Dense, error) {
	n := len(x)
	rows := n - nlags
	if nlags < 1 || rows <= nlags+1 {
		return nil, nil, fmt.Errorf("%w: %d observations for %d lags", ErrInsufficientData, n, nlags)
	}
	design := mat.NewDense(rows, nlags+1, nil)
	y := make([]float64, rows)
	for i := 0; i < rows; i++ {
		t := i + nlags
		y[i] = x[t]
		design.Set(i, 0, 1)
		for j := 1; j <= nlags; j++ {
			design.Set(i, j, x[t-j])
		}
	}
	return y, design, nil
}

func lmFromAux(aux *Fit, df int, nobs float64) *LMResult {
	lm := nobs * aux.RSquared
	fval, fp := aux.FTest()
	return &LMResult{
		LM:       lm,
		LMPValue: distuv.ChiSquared{K: float64(df)}.Survival(lm),
		F:        fval,
		FPValue:  fp,
		DF:       df,
	}
}

// ARCH runs Engle's test for autoregressive conditional heteroscedasticity on
// a residual series. nlags <= 0 selects DefaultLags.
func ARCH(resid []float64, nlags, ddof int) (*LMResult, error) {
	if nlags <= 0 {
		nlags = DefaultLags(len(resid))
	}
	sq := make([]float64, len(resid))
	for i, v := range resid {
		sq[i] = v * v
	}
	y, design, err := lagDesign(sq, nlags)
	if err != nil {
		return nil, fmt.Errorf("arch: %w", err)
	}
	aux, err := OLS(y, design)
	if err != nil {
		return nil, fmt.Errorf("arch: %w", err)
	}
	return lmFromAux(aux, nlags, float64(len(y)-ddof)), nil
}

// BreuschPagan tests whether the squared residuals depend on exogHet, which
// must include a constant column. With robust set the Koenker studentized form
// n*R^2 is used; otherwise the original ESS/2 form.
func BreuschPagan(resid []float64, exogHet *mat.Dense, robust bool) (*LMResult, error) {
	n, k := exogHet.Dims()
	if n != len(resid) {
		return nil, fmt.Errorf("%w: %d residuals, %d rows", ErrDimension, len(resid), n)
	}
	y := make([]float64, n)
	for i, v := range resid {
		y[i] = v * v
	}
	if !robust {
		floats.Scale(1/(floats.Sum(y)/float64(n)), y)
	}
	aux, err := OLS(y, exogHet)
	if err != nil {
		return nil, fmt.Errorf("breusch-pagan: %w", err)
	}
	res := lmFromAux(aux, k-1, float64(n))
	if !robust {
		res.LM = (aux.CenteredTSS - aux.SSR) / 2
		res.LMPValue = distuv.ChiSquared{K: float64(k - 1)}.Survival(res.LM)
	}
	return res, nil
}

// White runs White's general test: the squared residuals are regressed on all
// products and squares of the regressors, which must include a constant.
func White(resid []float64, exog *mat.Dense) (*LMResult, error) {
	n, k := exog.Dims()
	if n != len(resid) {
		return nil, fmt.Errorf("%w: %d residuals, %d rows", ErrDimension, len(resid), n)
	}
	var cols [][]float64
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			col := make([]float64, n)
			for r := 0; r < n; r++ {
				col[r] = exog.At(r, i) * exog.At(r, j)
			}
			cols = append(cols, col)
		}
	}
	design, err := FromColumns(cols...)
	if err != nil {
		return nil, err
	}
	y := make([]float64, n)
	for i, v := range resid {
		y[i] = v * v
	}
	aux, err := OLS(y, design)
	if err != nil {
		return nil, fmt.Errorf("white: %w", err)
	}
	return lmFromAux(aux, len(cols)-1, float64(n)), nil
}

// GQOptions configures the Goldfeld-Quandt test.
type GQOptions struct {
	Split       float64 // Observation index, or a fraction of the sample when below 1 (default n/2)
	Drop        float64 // Observations dropped after the split, or a fraction when below 1
	Alternative string  // "increasing" (default), "decreasing" or "two-sided"
}

// GQResult holds the Goldfeld-Quandt F statistic.
type GQResult struct {
	F           float64
	PValue      float64
	Alternative string
}

// GoldfeldQuandt compares residual variances of the regression fitted on the
// two halves of the sample.
func GoldfeldQuandt(y []float64, x *mat.Dense, opts GQOptions) (*GQResult, error) {
	n, _ := x.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("%w: %d observations, %d rows", ErrDimension, len(y), n)
	}
	split := n / 2
	switch {
	case opts.Split > 0 && opts.Split < 1:
		split = int(float64(n) * opts.Split)
	case opts.Split >= 1:
		split = int(opts.Split)
	}
	start2 := split
	switch {
	case opts.Drop > 0 && opts.Drop < 1:
		start2 = split + int(float64(n)*opts.Drop)
	case opts.Drop >= 1:
		start2 = split + int(opts.Drop)
	}
	if split <= 0 || start2 >= n {
		return nil, fmt.Errorf("goldfeld-quandt: split %d and drop leave an empty subsample", split)
	}

	first, err := OLS(y[:split], Rows(x, 0, split))
	if err != nil {
		return nil, fmt.Errorf("goldfeld-quandt: first subsample: %w", err)
	}
	second, err := OLS(y[start2:], Rows(x, start2, n))
	if err != nil {
		return nil, fmt.Errorf("goldfeld-quandt: second subsample: %w", err)
	}

	fval := second.MSEResid() / first.MSEResid()
	d2, d1 := float64(second.DFResid), float64(first.DFResid)
	res := &GQResult{F: fval}
	switch opts.Alternative {
	case "", "i", "inc", "increasing":
		res.Alternative = "increasing"
		res.PValue = distuv.F{D1: d2, D2: d1}.Survival(fval)
	case "d", "dec", "decreasing":
		res.Alternative = "decreasing"
		res.PValue = distuv.F{D1: d1, D2: d2}.Survival(1 / fval)
	case "two-sided", "two_sided", "2":
		res.Alternative = "two-sided"
		dist := distuv.F{D1: d2, D2: d1}
		res.PValue = 2 * min(dist.CDF(fval), dist.Survival(fval))
	default:
		return nil, fmt.Errorf("goldfeld-quandt: unknown alternative %q", opts.Alternative)
	}
	return res, nil
}
