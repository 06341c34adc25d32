package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LMResult is the (lm, lm p-value, f, f p-value) quadruple shared by the
// Lagrange multiplier diagnostics.
type LMResult struct {
	LM       float64
	LMPValue float64
	F        float64
	FPValue  float64
	DF       int
}

// FResult is a single F statistic with its p-value and degrees of freedom.
type FResult struct {
	F      float64
	PValue float64
	DF1    int
	DF2    int
}

// TResult is a t statistic with its two-sided p-value.
type TResult struct {
	Statistic float64
	PValue    float64
	DF        int
}

// ResetOptions configures the RESET specification test.
type ResetOptions struct {
	Power    int    // Highest power of the auxiliary terms (default 3)
	TestType string // "fitted" (default) or "exog"
	UseF     bool   // Report the F form instead of the chi-squared Wald form
}

// ContrastResult is the Wald contrast reported by RESET.
type ContrastResult struct {
	Statistic float64
	PValue    float64
	DF1       int
	DF2       int
	UseF      bool
}

// RESET runs Ramsey's regression specification error test. Powers 2..Power of
// the fitted values (or of each non-constant regressor) are added to the
// regression and tested jointly.
func RESET(fit *Fit, opts ResetOptions) (*ContrastResult, error) {
	if opts.Power == 0 {
		opts.Power = 3
	}
	if opts.Power < 2 {
		return nil, fmt.Errorf("reset: power must be at least 2, got %d", opts.Power)
	}
	if opts.TestType == "" {
		opts.TestType = "fitted"
	}

	var bases [][]float64
	switch opts.TestType {
	case "fitted":
		bases = [][]float64{fit.Fitted}
	case "exog":
		for j := 0; j < fit.K; j++ {
			col := mat.Col(nil, j, fit.X)
			if isConstantColumn(col) {
				continue
			}
			bases = append(bases, col)
		}
	default:
		return nil, fmt.Errorf("reset: unknown test type %q", opts.TestType)
	}

	var aux [][]float64
	for _, b := range bases {
		scale := 0.0
		for _, v := range b {
			scale = math.Max(scale, math.Abs(v))
		}
		if scale == 0 {
			scale = 1
		}
		for p := 2; p <= opts.Power; p++ {
			col := make([]float64, len(b))
			for i, v := range b {
				col[i] = math.Pow(v/scale, float64(p))
			}
			aux = append(aux, col)
		}
	}
	auxM, err := FromColumns(aux...)
	if err != nil {
		return nil, err
	}
	full, err := OLS(fit.Y, HStack(fit.X, auxM))
	if err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	fval, fp, q := CompareF(fit, full)
	res := &ContrastResult{DF1: q, DF2: full.DFResid, UseF: opts.UseF}
	if opts.UseF {
		res.Statistic, res.PValue = fval, fp
	} else {
		res.Statistic = fval * float64(q)
		res.PValue = distuv.ChiSquared{K: float64(q)}.Survival(res.Statistic)
	}
	return res, nil
}

// RecursiveResiduals returns the standardized one-step-ahead prediction errors
// of fit, starting after the first skip observations.
func RecursiveResiduals(fit *Fit, skip int) ([]float64, error) {
	if skip < fit.K {
		skip = fit.K
	}
	if skip >= fit.NObs {
		return nil, fmt.Errorf("%w: skip %d leaves no recursive residuals", ErrInsufficientData, skip)
	}
	out := make([]float64, 0, fit.NObs-skip)
	for t := skip; t < fit.NObs; t++ {
		sub := Rows(fit.X, 0, t)
		var xtx mat.SymDense
		xtx.SymOuterK(1, sub.T())
		var chol mat.Cholesky
		if ok := chol.Factorize(&xtx); !ok {
			return nil, fmt.Errorf("%w: first %d rows", ErrSingular, t)
		}
		var xty mat.VecDense
		xty.MulVec(sub.T(), mat.NewVecDense(t, fit.Y[:t]))
		var b mat.VecDense
		if err := chol.SolveVecTo(&b, &xty); err != nil && !tolerable(err) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
		xt := mat.NewVecDense(fit.K, mat.Row(nil, t, fit.X))
		var v mat.VecDense
		if err := chol.SolveVecTo(&v, xt); err != nil && !tolerable(err) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
		pred := mat.Dot(xt, &b)
		scale := math.Sqrt(1 + mat.Dot(xt, &v))
		out = append(out, (fit.Y[t]-pred)/scale)
	}
	return out, nil
}

// HarveyCollier tests linearity with a t-test that the mean of the recursive
// residuals is zero. A zero skip means the number of regressors.
func HarveyCollier(fit *Fit, skip int) (*TResult, error) {
	rr, err := RecursiveResiduals(fit, skip)
	if err != nil {
		return nil, err
	}
	if len(rr) < 2 {
		return nil, fmt.Errorf("%w: need two recursive residuals", ErrInsufficientData)
	}
	mean, sd := stat.MeanStdDev(rr, nil)
	df := len(rr) - 1
	t := mean / (sd / math.Sqrt(float64(len(rr))))
	p := 2 * distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(df)}.Survival(math.Abs(t))
	return &TResult{Statistic: t, PValue: p, DF: df}, nil
}

// LinearLM regresses the residuals on the regressors and their squares and
// tests the squared terms jointly.
func LinearLM(fit *Fit) (*LMResult, error) {
	var sq [][]float64
	for j := 0; j < fit.K; j++ {
		col := mat.Col(nil, j, fit.X)
		if isConstantColumn(col) {
			continue
		}
		for i, v := range col {
			col[i] = v * v
		}
		sq = append(sq, col)
	}
	if len(sq) == 0 {
		return nil, errors.New("linear lm: no non-constant regressors")
	}
	sqM, err := FromColumns(sq...)
	if err != nil {
		return nil, err
	}
	aux, err := OLS(fit.Resid, HStack(fit.X, sqM))
	if err != nil {
		return nil, fmt.Errorf("linear lm: %w", err)
	}
	base, err := OLS(fit.Resid, fit.X)
	if err != nil {
		return nil, fmt.Errorf("linear lm: %w", err)
	}
	fval, fp, q := CompareF(base, aux)
	lm := float64(fit.NObs) * aux.RSquared
	return &LMResult{
		LM:       lm,
		LMPValue: distuv.ChiSquared{K: float64(q)}.Survival(lm),
		F:        fval,
		FPValue:  fp,
		DF:       q,
	}, nil
}

// Rainbow runs Utts' rainbow test: the fit on the central frac of observations
// is compared with the fit on all of them. center is a fraction of the sample.
func Rainbow(fit *Fit, frac, center float64) (*FResult, error) {
	if frac <= 0 || frac >= 1 {
		return nil, fmt.Errorf("rainbow: frac must be in (0, 1), got %g", frac)
	}
	if center <= 0 || center >= 1 {
		return nil, fmt.Errorf("rainbow: center must be in (0, 1), got %g", center)
	}
	n := float64(fit.NObs)
	centerObs := math.Round(center * n)
	lo := int(math.Ceil(centerObs - frac*n/2))
	hi := int(math.Floor(float64(lo) + frac*n))
	lo = max(lo, 0)
	hi = min(hi, fit.NObs)
	if hi-lo <= fit.K {
		return nil, fmt.Errorf("%w: central subsample has %d rows for %d parameters", ErrInsufficientData, hi-lo, fit.K)
	}

	mid, err := OLS(fit.Y[lo:hi], Rows(fit.X, lo, hi))
	if err != nil {
		return nil, fmt.Errorf("rainbow: %w", err)
	}
	df1 := fit.NObs - mid.NObs
	fval := (fit.SSR - mid.SSR) / float64(df1) / mid.SSR * float64(mid.DFResid)
	return &FResult{
		F:      fval,
		PValue: distuv.F{D1: float64(df1), D2: float64(mid.DFResid)}.Survival(fval),
		DF1:    df1,
		DF2:    mid.DFResid,
	}, nil
}

func isConstantColumn(col []float64) bool {
	for _, v := range col {
		if v != col[0] {
			return false
		}
	}
	return true
}
