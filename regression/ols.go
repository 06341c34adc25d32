package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	// ErrSingular is returned when the design matrix does not have full column rank.
	ErrSingular = errors.New("regression: design matrix is singular")
	// ErrInsufficientData is returned when there are fewer observations than parameters.
	ErrInsufficientData = errors.New("regression: not enough observations")
	// ErrDimension is returned when endog and exog disagree in length.
	ErrDimension = errors.New("regression: dimension mismatch")
)

// rankTol is the relative size below which a diagonal element of R counts as zero.
const rankTol = 1e-10

// Fit holds the results of an ordinary least squares regression.
type Fit struct {
	Params  []float64
	StdErr  []float64
	TValues []float64
	Resid   []float64
	Fitted  []float64

	SSR         float64 // Sum of squared residuals
	CenteredTSS float64
	RSquared    float64
	LLF         float64 // Gaussian log-likelihood
	AIC         float64
	BIC         float64

	NObs        int
	K           int
	DFResid     int
	HasConstant bool

	X   *mat.Dense
	Y   []float64
	cov *mat.Dense // (X'X)^-1
}

// OLS fits y = X b + e by least squares using a QR decomposition of X.
func OLS(y []float64, x *mat.Dense) (*Fit, error) {
	n, k := x.Dims()
	if n != len(y) {
		return nil, fmt.Errorf("%w: %d observations, %d design rows", ErrDimension, len(y), n)
	}
	if n <= k {
		return nil, fmt.Errorf("%w: %d observations for %d parameters", ErrInsufficientData, n, k)
	}
	for _, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("regression: endog contains non-finite values")
		}
	}

	var qr mat.QR
	qr.Factorize(x)

	var r mat.Dense
	qr.RTo(&r)
	rk := mat.NewTriDense(k, mat.Upper, nil)
	maxDiag := 0.0
	for i := 0; i < k; i++ {
		for j := i; j < k; j++ {
			rk.SetTri(i, j, r.At(i, j))
		}
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}
	for i := 0; i < k; i++ {
		if math.Abs(r.At(i, i)) <= rankTol*maxDiag || maxDiag == 0 {
			return nil, fmt.Errorf("%w: column %d is collinear", ErrSingular, i)
		}
	}

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, mat.NewVecDense(n, y)); err != nil && !tolerable(err) {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}

	var rinv mat.TriDense
	if err := rinv.InverseTri(rk); err != nil && !tolerable(err) {
		return nil, fmt.Errorf("%w: %v", ErrSingular, err)
	}
	cov := mat.NewDense(k, k, nil)
	cov.Mul(&rinv, rinv.T())

	f := &Fit{
		Params:  make([]float64, k),
		StdErr:  make([]float64, k),
		TValues: make([]float64, k),
		Resid:   make([]float64, n),
		Fitted:  make([]float64, n),
		NObs:    n,
		K:       k,
		DFResid: n - k,
		X:       x,
		Y:       y,
		cov:     cov,
	}
	for i := 0; i < k; i++ {
		f.Params[i] = beta.AtVec(i)
	}

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)
	for i := 0; i < n; i++ {
		f.Fitted[i] = fitted.AtVec(i)
		f.Resid[i] = y[i] - f.Fitted[i]
	}
	f.SSR = floats.Dot(f.Resid, f.Resid)

	mean := floats.Sum(y) / float64(n)
	for _, v := range y {
		f.CenteredTSS += (v - mean) * (v - mean)
	}
	f.HasConstant = hasConstant(x)
	if f.HasConstant {
		f.RSquared = 1 - f.SSR/f.CenteredTSS
	} else {
		f.RSquared = 1 - f.SSR/floats.Dot(y, y)
	}

	s2 := f.SSR / float64(f.DFResid)
	for i := 0; i < k; i++ {
		f.StdErr[i] = math.Sqrt(s2 * cov.At(i, i))
		f.TValues[i] = f.Params[i] / f.StdErr[i]
	}

	nf := float64(n)
	f.LLF = -nf / 2 * (math.Log(2*math.Pi) + math.Log(f.SSR/nf) + 1)
	f.AIC = -2*f.LLF + 2*float64(k)
	f.BIC = -2*f.LLF + math.Log(nf)*float64(k)

	return f, nil
}

// tolerable reports whether err is only a conditioning warning.
func tolerable(err error) bool {
	var c mat.Condition
	return errors.As(err, &c) && !math.IsInf(float64(c), 0)
}

func hasConstant(x *mat.Dense) bool {
	n, k := x.Dims()
	for j := 0; j < k; j++ {
		first := x.At(0, j)
		if first == 0 {
			continue
		}
		constant := true
		for i := 1; i < n; i++ {
			if x.At(i, j) != first {
				constant = false
				break
			}
		}
		if constant {
			return true
		}
	}
	return false
}

// MSEResid returns the residual mean square SSR / DFResid.
func (f *Fit) MSEResid() float64 {
	return f.SSR / float64(f.DFResid)
}

// DFModel returns the model degrees of freedom, excluding the constant.
func (f *Fit) DFModel() int {
	if f.HasConstant {
		return f.K - 1
	}
	return f.K
}

// FTest returns the overall F statistic for the regression and its p-value.
func (f *Fit) FTest() (fval, pval float64) {
	dfm := f.DFModel()
	if dfm == 0 {
		return math.NaN(), math.NaN()
	}
	ess := f.CenteredTSS - f.SSR
	if !f.HasConstant {
		ess = floats.Dot(f.Y, f.Y) - f.SSR
	}
	fval = (ess / float64(dfm)) / f.MSEResid()
	return fval, distuv.F{D1: float64(dfm), D2: float64(f.DFResid)}.Survival(fval)
}

// Predict returns X b for a design matrix with the fitted column layout.
func (f *Fit) Predict(x *mat.Dense) []float64 {
	n, _ := x.Dims()
	var out mat.VecDense
	out.MulVec(x, mat.NewVecDense(f.K, f.Params))
	pred := make([]float64, n)
	for i := range pred {
		pred[i] = out.AtVec(i)
	}
	return pred
}

// CompareF tests the restriction of full down to restricted, where restricted is
// nested in full. It returns the F statistic, its p-value and the number of
// restrictions.
func CompareF(restricted, full *Fit) (fval, pval float64, q int) {
	q = full.K - restricted.K
	if q <= 0 {
		return math.NaN(), math.NaN(), q
	}
	fval = ((restricted.SSR - full.SSR) / float64(q)) / full.MSEResid()
	return fval, distuv.F{D1: float64(q), D2: float64(full.DFResid)}.Survival(fval), q
}

// AddConstant returns a copy of x with a leading column of ones.
func AddConstant(x *mat.Dense) *mat.Dense {
	n, k := x.Dims()
	out := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		out.Set(i, 0, 1)
		for j := 0; j < k; j++ {
			out.Set(i, j+1, x.At(i, j))
		}
	}
	return out
}

// FromColumns builds a design matrix from equal-length columns.
func FromColumns(cols ...[]float64) (*mat.Dense, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrDimension)
	}
	n := len(cols[0])
	out := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		if len(c) != n {
			return nil, fmt.Errorf("%w: column %d has %d rows, want %d", ErrDimension, j, len(c), n)
		}
		out.SetCol(j, c)
	}
	return out, nil
}

// FromRows builds a design matrix from rows of equal width.
func FromRows(rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty design", ErrDimension)
	}
	k := len(rows[0])
	out := mat.NewDense(len(rows), k, nil)
	for i, r := range rows {
		if len(r) != k {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimension, i, len(r), k)
		}
		out.SetRow(i, r)
	}
	return out, nil
}

// HStack concatenates matrices with the same number of rows.
func HStack(ms ...*mat.Dense) *mat.Dense {
	n, _ := ms[0].Dims()
	total := 0
	for _, m := range ms {
		_, c := m.Dims()
		total += c
	}
	out := mat.NewDense(n, total, nil)
	off := 0
	for _, m := range ms {
		_, c := m.Dims()
		for i := 0; i < n; i++ {
			for j := 0; j < c; j++ {
				out.Set(i, off+j, m.At(i, j))
			}
		}
		off += c
	}
	return out
}

// Rows returns rows [lo, hi) of x as a new matrix.
func Rows(x *mat.Dense, lo, hi int) *mat.Dense {
	_, k := x.Dims()
	return mat.DenseCopyOf(x.Slice(lo, hi, 0, k))
}
