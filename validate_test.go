package tsstat

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertReason(t *testing.T, err error, want Reason) {
	t.Helper()
	require.Error(t, err)
	got, ok := ReasonOf(err)
	require.True(t, ok, "expected an InvalidInputError, got %T: %v", err, err)
	assert.Equal(t, want, got, err.Error())
}

// boundaryInput builds an input of length n in the entry's first shape.
func boundaryInput(e Entry, n int) *Input {
	switch e.Shapes[0] {
	case ShapeBivariate:
		return Bivariate(ar1(1, n, 0.3), noise(2, n))
	case ShapeRegression:
		x, rows := regressor(1, n, 0, 10)
		eps := noise(3, n)
		y := make([]float64, n)
		for i := range y {
			y[i] = 1 + 2*x[i] + eps[i]
		}
		return Regression(y, rows)
	}
	return Univariate(ar1(1, n, 0.3))
}

// assertRunsAtMinimum runs e at exactly its minimum length and one below.
func assertRunsAtMinimum(t *testing.T, c Category, e Entry, opts ...Option) {
	t.Helper()
	o, err := buildOptions(&e, opts)
	require.NoError(t, err)
	need := e.minLength(boundaryInput(e, 200), o)
	d := NewDispatcher()

	_, err = d.Run(t.Context(), c, e.ID, boundaryInput(e, need), opts...)
	assert.NoError(t, err, "%s at n=%d", e.ID, need)

	_, err = d.Run(t.Context(), c, e.ID, boundaryInput(e, need-1), opts...)
	assertReason(t, err, TooShort)
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestMinimumLengthBoundary(t *testing.T) {
	for _, c := range Categories() {
		for _, e := range Catalog(c) {
			t.Run(string(c)+"/"+string(e.ID), func(t *testing.T) {
				var opts []Option
				if slices.Contains(e.Requires, "period") {
					opts = append(opts, WithPeriod(4))
				}
				assertRunsAtMinimum(t, c, e, opts...)
			})
		}
	}
}

func TestMinimumLengthFollowsOptions(t *testing.T) {
	entry := func(c Category, id TestID) Entry {
		i := slices.IndexFunc(Catalog(c), func(e Entry) bool { return e.ID == id })
		require.GreaterOrEqual(t, i, 0)
		return Catalog(c)[i]
	}
	cases := []struct {
		name string
		c    Category
		id   TestID
		opts []Option
	}{
		{"adf without constant", CategoryStationarity, ADF, []Option{WithRegression("n")}},
		{"adf quadratic trend", CategoryStationarity, ADF, []Option{WithRegression("ctt"), WithLags(8)}},
		{"adf constant trend", CategoryStationarity, ADF, []Option{WithRegression("ct"), WithLags(8)}},
		{"ers", CategoryStationarity, ERS, nil},
		{"ers trend", CategoryStationarity, ERS, []Option{WithRegression("ct")}},
		{"ocsb short period", CategorySeasonality, OCSB, []Option{WithPeriod(2)}},
		{"ocsb period 12", CategorySeasonality, OCSB, []Option{WithPeriod(12)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assertRunsAtMinimum(t, tc.c, entry(tc.c, tc.id), tc.opts...)
		})
	}
}

func TestMinimumLengthFollowsLags(t *testing.T) {
	_, err := Stationarity(ADF, Univariate(noise(1, 25)), WithLags(10))
	assertReason(t, err, TooShort)

	var in *InvalidInputError
	require.True(t, errors.As(err, &in))
	assert.Equal(t, ADF, in.Test)
	assert.Contains(t, in.Detail, "need at least 26")
}

func TestSeasonalMinimumLength(t *testing.T) {
	_, err := Seasonality(CH, Univariate(noise(1, 28)), WithPeriod(12))
	assertReason(t, err, TooShort)
}

func TestEmptyInput(t *testing.T) {
	_, err := Normality(SW, Univariate(nil))
	assertReason(t, err, Empty)

	_, err = Normality(SW, nil)
	assertReason(t, err, Empty)
}

func TestNonFiniteInput(t *testing.T) {
	x := noise(1, 50)
	x[7] = math.Inf(1)
	_, err := Normality(JB, Univariate(x))
	assertReason(t, err, NonFinite)

	x[7] = math.NaN()
	_, err = Normality(JB, Univariate(x))
	assertReason(t, err, NonFinite)
}

func TestWrongShape(t *testing.T) {
	x, rows := regressor(1, 50, 0, 1)

	_, err := Linearity(RR, Univariate(x))
	assertReason(t, err, WrongDimensionality)
	assert.ErrorIs(t, err, ErrWrongDimensionality)

	_, err = Normality(DP, Regression(x, rows))
	assertReason(t, err, WrongDimensionality)

	_, err = Correlation(CCF, Univariate(x))
	assertReason(t, err, WrongDimensionality)
}

func TestLengthMismatch(t *testing.T) {
	_, err := Correlation(CCF, Bivariate(noise(1, 50), noise(2, 49)))
	assertReason(t, err, LengthMismatch)

	_, rows := regressor(1, 49, 0, 1)
	_, err = Linearity(RR, Regression(noise(1, 50), rows))
	assertReason(t, err, LengthMismatch)

	_, rows = regressor(1, 50, 0, 1)
	rows[3] = append(rows[3], 1)
	_, err = Linearity(RR, Regression(noise(1, 50), rows))
	assertReason(t, err, LengthMismatch)
}

func TestNoRegressors(t *testing.T) {
	rows := make([][]float64, 50)
	for i := range rows {
		rows[i] = []float64{}
	}
	_, err := Heteroscedasticity(BP, Regression(noise(1, 50), rows))
	assertReason(t, err, WrongDimensionality)
}

func TestParseValues(t *testing.T) {
	in := ParseValues([]string{"1", " 2.5", "NA", "", "nan", "4"})
	v := in.Values()
	require.Len(t, v, 6)
	assert.Equal(t, 2.5, v[1])
	assert.True(t, math.IsNaN(v[2]))
	assert.True(t, math.IsNaN(v[3]))
	assert.True(t, math.IsNaN(v[4]))

	_, err := Normality(JB, ParseValues([]string{"1", "2", "three", "4"}))
	assertReason(t, err, NotNumeric)
	assert.ErrorIs(t, err, ErrNotNumeric)

	var in2 *InvalidInputError
	require.True(t, errors.As(err, &in2))
	assert.Equal(t, JB, in2.Test)
}

func withGaps(n int) []float64 {
	x := ar1(3, n, 0.5)
	for _, i := range []int{5, 40, 41, 90} {
		x[i] = math.NaN()
	}
	return x
}

func TestGapsAreOptIn(t *testing.T) {
	tests := []struct {
		category Category
		test     TestID
		opts     []Option
	}{
		{CategoryCorrelation, ACF, nil},
		{CategorySeasonality, QS, []Option{WithPeriod(12)}},
		{CategoryStability, StabilityIndex, nil},
	}
	d := NewDispatcher()
	for _, tt := range tests {
		t.Run(string(tt.test), func(t *testing.T) {
			in := Univariate(withGaps(240))

			_, err := d.Run(t.Context(), tt.category, tt.test, in, tt.opts...)
			assertReason(t, err, NonFinite)
			assert.Contains(t, err.Error(), "DropMissing")

			res, err := d.Run(t.Context(), tt.category, tt.test, in, append(tt.opts, DropMissing())...)
			require.NoError(t, err)
			assert.False(t, math.IsNaN(res.Statistic()))
		})
	}
}

func TestDropMissingIgnoredWithoutGapSupport(t *testing.T) {
	_, err := Stationarity(ADF, Univariate(withGaps(200)), DropMissing())
	assertReason(t, err, NonFinite)
}

func TestDropMissingCanEmptyTheSeries(t *testing.T) {
	x := []float64{math.NaN(), math.NaN(), math.NaN()}
	_, err := Correlation(ACF, Univariate(x), DropMissing())
	assertReason(t, err, Empty)
}

func TestInputIsCopied(t *testing.T) {
	x := noise(1, 60)
	in := Univariate(x)
	x[0] = math.NaN()
	_, err := Normality(JB, in)
	assert.NoError(t, err)
}

func TestUnivariateOf(t *testing.T) {
	in := UnivariateOf([]int{1, 2, 3})
	assert.Equal(t, []float64{1, 2, 3}, in.Values())
	assert.Equal(t, ShapeUnivariate, in.Shape())
	assert.Equal(t, 3, in.Len())
}

func TestUnmatchedSampleEntropyIsUndecidable(t *testing.T) {
	v := make([]float64, 12)
	for i := range v {
		v[i] = math.Pow(1.5, float64(i))
	}
	res, err := Regularity(Sample, Univariate(v), WithTolerance(1e-9))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(res.Statistic()))

	_, err = CheckRegularity(Sample, Univariate(v), 0.05, WithTolerance(1e-9))
	assert.ErrorIs(t, err, ErrUndecidable)
}
