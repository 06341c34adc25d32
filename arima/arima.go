// Package arima fits ARIMA(p,d,q) models by conditional sum of squares. The
// fitted residuals feed the residual-based diagnostics.
package arima

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/sartorproj/tsstat/stats"
	"github.com/sartorproj/tsstat/timeseries"
)

var (
	// ErrNotFitted is returned when results are requested before Fit.
	ErrNotFitted = errors.New("arima: model is not fitted")
	// ErrInsufficientData is returned when the series is too short for the order.
	ErrInsufficientData = errors.New("arima: insufficient data for order")
)

// Order represents ARIMA model order (p, d, q).
type Order struct {
	P int // AR order (number of autoregressive terms)
	D int // Differencing order
	Q int // MA order (number of moving average terms)
}

func (o Order) String() string {
	return fmt.Sprintf("ARIMA(%d,%d,%d)", o.P, o.D, o.Q)
}

// Model represents an ARIMA model.
type Model struct {
	Order     Order
	ARCoeffs  []float64 // AR coefficients (phi)
	MACoeffs  []float64 // MA coefficients (theta)
	Intercept float64   // Mean of the differenced series
	Variance  float64   // Residual variance
	stats.InformationCriteria

	fitted    bool
	nobs      int
	residuals []float64
}

// New creates a new ARIMA model with the specified order.
func New(p, d, q int) *Model {
	return &Model{Order: Order{P: p, D: d, Q: q}}
}

// Fit estimates the coefficients on series by minimising the conditional sum
// of squares. The AR terms start from their Yule-Walker estimates.
func (m *Model) Fit(series *timeseries.Series) error {
	p, d, q := m.Order.P, m.Order.D, m.Order.Q
	if p < 0 || d < 0 || q < 0 {
		return fmt.Errorf("arima: negative order %s", m.Order)
	}
	if series.Len() < p+q+d+10 {
		return fmt.Errorf("%w: %d observations for %s", ErrInsufficientData, series.Len(), m.Order)
	}

	y := series.DiffN(d).Values
	mean := floats.Sum(y) / float64(len(y))
	centered := make([]float64, len(y))
	for i, v := range y {
		centered[i] = v - mean
	}

	init := make([]float64, p+q)
	if p > 0 {
		acf, err := stats.ACF(timeseries.New(centered), p)
		if err != nil {
			return fmt.Errorf("arima: %w", err)
		}
		if phi, err := yuleWalker(acf, p); err == nil {
			copy(init, phi)
		}
	}

	params := init
	if p+q > 0 {
		problem := optimize.Problem{
			Func: func(x []float64) float64 {
				r := m.css(centered, x)
				return floats.Dot(r, r)
			},
		}
		res, err := optimize.Minimize(problem, init, nil, &optimize.NelderMead{})
		if err != nil && res == nil {
			return fmt.Errorf("arima: css: %w", err)
		}
		params = res.X
	}

	m.ARCoeffs = append([]float64(nil), params[:p]...)
	m.MACoeffs = append([]float64(nil), params[p:]...)
	m.Intercept = mean
	m.residuals = m.css(centered, params)
	m.nobs = len(y)

	sse := floats.Dot(m.residuals, m.residuals)
	k := p + q + 1
	n := float64(len(y))
	m.Variance = sse / math.Max(n-float64(k), 1)
	loglik := math.Inf(-1)
	if sse > 0 {
		loglik = -n / 2 * (math.Log(2*math.Pi*sse/n) + 1)
	}
	m.InformationCriteria = *stats.CalculateIC(loglik, len(y), k)
	m.fitted = true
	return nil
}

// css returns the conditional residuals of the centered series for the
// parameter vector [phi..., theta...]. The first p residuals are zero.
// Explosive parameters are penalised with large residuals.
func (m *Model) css(y, params []float64) []float64 {
	p, q := m.Order.P, m.Order.Q
	resid := make([]float64, len(y))
	for _, c := range params {
		if math.Abs(c) >= 1 {
			for i := range resid {
				resid[i] = 1e10
			}
			return resid
		}
	}
	for t := p; t < len(y); t++ {
		pred := 0.0
		for i := 0; i < p; i++ {
			pred += params[i] * y[t-i-1]
		}
		for j := 0; j < q && t-j-1 >= 0; j++ {
			pred += params[p+j] * resid[t-j-1]
		}
		resid[t] = y[t] - pred
	}
	return resid
}

// Residuals returns a copy of the in-sample residuals of the differenced series.
func (m *Model) Residuals() ([]float64, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	return append([]float64(nil), m.residuals...), nil
}

// Summary describes a fitted model.
type Summary struct {
	Order     Order
	ARCoeffs  []float64
	MACoeffs  []float64
	Intercept float64
	Variance  float64
	stats.InformationCriteria
	NObs     int
	LjungBox *stats.LjungBoxResult // Residual portmanteau test with p+q model degrees of freedom
}

// Summary returns a summary of the fitted model.
func (m *Model) Summary() (*Summary, error) {
	if !m.fitted {
		return nil, ErrNotFitted
	}
	lb, err := stats.LjungBox(timeseries.New(m.residuals), stats.LjungBoxOptions{
		Lags:    min(10, m.nobs/5),
		ModelDF: m.Order.P + m.Order.Q,
	})
	if err != nil {
		return nil, fmt.Errorf("arima: summary: %w", err)
	}
	return &Summary{
		Order:               m.Order,
		ARCoeffs:            m.ARCoeffs,
		MACoeffs:            m.MACoeffs,
		Intercept:           m.Intercept,
		Variance:            m.Variance,
		InformationCriteria: m.InformationCriteria,
		NObs:                m.nobs,
		LjungBox:            lb,
	}, nil
}

// yuleWalker solves the Toeplitz system R phi = r for the AR coefficients.
func yuleWalker(acf []float64, order int) ([]float64, error) {
	if order <= 0 || len(acf) <= order {
		return nil, fmt.Errorf("arima: yule-walker needs %d autocorrelations", order+1)
	}
	r := mat.NewSymDense(order, nil)
	for i := 0; i < order; i++ {
		for j := i; j < order; j++ {
			r.SetSym(i, j, acf[j-i])
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(r); !ok {
		return nil, errors.New("arima: autocorrelation matrix is not positive definite")
	}
	var phi mat.VecDense
	if err := chol.SolveVecTo(&phi, mat.NewVecDense(order, append([]float64(nil), acf[1:order+1]...))); err != nil {
		return nil, err
	}
	out := make([]float64, order)
	for i := range out {
		out[i] = math.Max(-0.99, math.Min(0.99, phi.AtVec(i)))
	}
	return out, nil
}
