package tsstat

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/sartorproj/tsstat/regression"
	"github.com/sartorproj/tsstat/timeseries"
)

// Shape is the structural form of an Input.
type Shape int

const (
	ShapeUnivariate Shape = iota + 1
	ShapeBivariate
	ShapeRegression
)

func (s Shape) String() string {
	switch s {
	case ShapeUnivariate:
		return "univariate"
	case ShapeBivariate:
		return "bivariate"
	case ShapeRegression:
		return "regression"
	}
	return "unknown"
}

// Number is any real numeric element type accepted by UnivariateOf.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Input is the data a test runs on. Build one with Univariate, Bivariate or
// Regression; the constructors copy their arguments.
type Input struct {
	shape Shape
	x     []float64
	y     []float64   // second series of a bivariate input
	exog  [][]float64 // regressor rows of a regression input, one per observation

	parseErr error
}

// Univariate wraps a single series.
func Univariate(x []float64) *Input {
	return &Input{shape: ShapeUnivariate, x: clone(x)}
}

// UnivariateOf converts any numeric slice to a univariate input.
func UnivariateOf[T Number](x []T) *Input {
	v := make([]float64, len(x))
	for i, e := range x {
		v[i] = float64(e)
	}
	return &Input{shape: ShapeUnivariate, x: v}
}

// FromSeries wraps the values of a timeseries.Series.
func FromSeries(s *timeseries.Series) *Input {
	return Univariate(s.Values)
}

// ParseValues builds a univariate input from text cells. Empty cells and
// "NA"/"NaN" become NaN; any other unparseable cell makes validation fail
// with NotNumeric.
func ParseValues(cells []string) *Input {
	in := &Input{shape: ShapeUnivariate, x: make([]float64, len(cells))}
	for i, c := range cells {
		c = strings.TrimSpace(c)
		switch strings.ToUpper(c) {
		case "", "NA", "NAN", "NULL":
			in.x[i] = nan
			continue
		}
		v, err := strconv.ParseFloat(c, 64)
		if err != nil {
			if in.parseErr == nil {
				in.parseErr = invalid("", NotNumeric, "cell %d: %q is not a number", i, c)
			}
			in.x[i] = nan
			continue
		}
		in.x[i] = v
	}
	return in
}

// Bivariate wraps two series observed at the same instants.
func Bivariate(x, y []float64) *Input {
	return &Input{shape: ShapeBivariate, x: clone(x), y: clone(y)}
}

// Regression wraps a response and its regressors. exog holds one row per
// observation; a constant column is added when none is present.
func Regression(endog []float64, exog [][]float64) *Input {
	rows := make([][]float64, len(exog))
	for i, r := range exog {
		rows[i] = clone(r)
	}
	return &Input{shape: ShapeRegression, x: clone(endog), exog: rows}
}

// Shape returns the structural form of the input.
func (in *Input) Shape() Shape { return in.shape }

// Len returns the number of observations.
func (in *Input) Len() int { return len(in.x) }

// Values returns a copy of the primary series.
func (in *Input) Values() []float64 { return clone(in.x) }

func (in *Input) series() *timeseries.Series {
	return timeseries.New(in.x)
}

func (in *Input) exogWidth() int {
	if len(in.exog) == 0 {
		return 0
	}
	return len(in.exog[0])
}

// design returns the regressor matrix with a leading constant unless one of
// the columns is already constant.
func (in *Input) design() (*mat.Dense, error) {
	x, err := regression.FromRows(in.exog)
	if err != nil {
		return nil, err
	}
	_, k := x.Dims()
	for j := 0; j < k; j++ {
		if isConstant(mat.Col(nil, j, x)) {
			return x, nil
		}
	}
	return regression.AddConstant(x), nil
}

// fit regresses the response on the design.
func (in *Input) fit() (*regression.Fit, error) {
	x, err := in.design()
	if err != nil {
		return nil, err
	}
	return regression.OLS(in.x, x)
}

func isConstant(col []float64) bool {
	for _, v := range col {
		if v != col[0] || v == 0 {
			return false
		}
	}
	return len(col) > 0
}

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append(make([]float64, 0, len(v)), v...)
}
