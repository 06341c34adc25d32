package tsstat

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/tsstat/regression"
)

// fixtureRegistry holds one category of hand-written tests that count their
// invocations.
func fixtureRegistry(t *testing.T, calls *atomic.Int32) *Registry {
	t.Helper()
	r := NewRegistry()
	count := func(raw RawResult, err error) Adapter {
		return func(*Input, *Options) (RawResult, error) {
			calls.Add(1)
			return raw, err
		}
	}
	entries := []Entry{
		{
			ID:      "ok",
			Aliases: []string{"fine"},
			Invoke:  count(0.01, nil),
			Extract: func(raw RawResult) (*Result, error) {
				p, err := as[float64](raw)
				if err != nil {
					return nil, err
				}
				return newResult(2.5).p(p).build(true)
			},
		},
		{
			ID: "panics",
			Invoke: func(*Input, *Options) (RawResult, error) {
				calls.Add(1)
				var m map[string]int
				m["boom"]++
				return nil, nil
			},
			Extract: func(RawResult) (*Result, error) { return nil, nil },
		},
		{
			ID:      "fails",
			Invoke:  count(nil, regression.ErrSingular),
			Extract: func(RawResult) (*Result, error) { return nil, nil },
		},
		{
			ID:      "bad_p",
			Invoke:  count(1.7, nil),
			Extract: func(raw RawResult) (*Result, error) { return newResult(0).p(raw.(float64)).build(true) },
		},
		{
			ID:      "wrong_type",
			Invoke:  count("text", nil),
			Extract: func(raw RawResult) (*Result, error) { _, err := as[float64](raw); return nil, err },
		},
	}
	for _, e := range entries {
		e.Category = CategoryNormality
		require.NoError(t, r.Register(e))
	}
	return r
}

func TestUnknownTestInvokesNothing(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(WithRegistry(fixtureRegistry(t, &calls)))
	in := Univariate(noise(1, 20))

	_, err := d.Run(t.Context(), CategoryNormality, "nope", in)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTest)
	var unknown *UnknownTestError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nope", unknown.Test)

	_, err = d.Run(t.Context(), "astrology", "ok", in)
	assert.ErrorIs(t, err, ErrUnknownTest)

	assert.Zero(t, calls.Load())
}

func TestInvalidInputInvokesNothing(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(WithRegistry(fixtureRegistry(t, &calls)))

	_, err := d.Run(t.Context(), CategoryNormality, "ok", Univariate([]float64{1, math.Inf(-1)}))
	assertReason(t, err, NonFinite)
	_, err = d.Run(t.Context(), CategoryNormality, "ok", Univariate(nil))
	assertReason(t, err, Empty)
	_, err = d.Check(t.Context(), CategoryNormality, "ok", Univariate(noise(1, 10)), 0)
	assertReason(t, err, InvalidAlpha)

	assert.Zero(t, calls.Load())
}

func TestAliasesResolveToCanonicalID(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(WithRegistry(fixtureRegistry(t, &calls)))
	res, err := d.Run(t.Context(), CategoryNormality, " FINE ", Univariate(noise(1, 20)))
	require.NoError(t, err)
	assert.Equal(t, TestID("ok"), res.Test())
	assert.Equal(t, CategoryNormality, res.Category())

	codes := []struct {
		category Category
		code     string
		want     TestID
	}{
		{CategoryStationarity, "augmented_dickey_fuller", ADF},
		{CategoryStationarity, "dfgls", ERS},
		{CategoryStationarity, "KPSS", KPSS},
		{CategoryStationarity, "range_unit_root", RUR},
		{CategoryHeteroscedasticity, "engle", ARCH},
		{CategoryHeteroscedasticity, "breusch-pagan", BP},
		{CategoryHeteroscedasticity, "breusch-pagan-lagrange-multiplier", BP},
		{CategoryHeteroscedasticity, "goldfeld-quandt", GQ},
		{CategoryCorrelation, "ac", ACF},
		{CategoryCorrelation, "pc", PACF},
		{CategoryCorrelation, "acor_lb", ALB},
		{CategoryCorrelation, "a_lb", ALB},
		{CategoryCorrelation, "a_lm", ALM},
		{CategoryCorrelation, "lm", ALM},
		{CategoryCorrelation, "bg", BGLM},
		{CategoryCorrelation, "cc", CCF},
		{CategoryCorrelation, "cross_correlation", CCF},
		{CategoryCorrelation, "cross-correlation", CCF},
		{CategoryLinearity, "lm", LM},
	}
	for _, tc := range codes {
		id, err := tc.category.Parse(tc.code)
		require.NoError(t, err, "%s %q", tc.category, tc.code)
		assert.Equal(t, tc.want, id, "%s %q", tc.category, tc.code)
	}
	_, err = CategoryNormality.Parse("adf")
	assert.ErrorIs(t, err, ErrUnknownTest)
}

func TestPanicBecomesComputationError(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(WithRegistry(fixtureRegistry(t, &calls)))
	_, err := d.Run(t.Context(), CategoryNormality, "panics", Univariate(noise(1, 20)))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComputation)
	assert.Contains(t, err.Error(), "panic")
}

func TestRoutineErrorIsWrapped(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(WithRegistry(fixtureRegistry(t, &calls)))
	_, err := d.Run(t.Context(), CategoryNormality, "fails", Univariate(noise(1, 20)))
	assert.ErrorIs(t, err, ErrComputation)
	assert.ErrorIs(t, err, regression.ErrSingular)

	var ce *ComputationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, TestID("fails"), ce.Test)
}

func TestMalformedResults(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(WithRegistry(fixtureRegistry(t, &calls)))
	for _, id := range []TestID{"bad_p", "wrong_type"} {
		_, err := d.Run(t.Context(), CategoryNormality, id, Univariate(noise(1, 20)))
		assert.ErrorIs(t, err, ErrMalformedResult, id)

		var m *MalformedResultError
		require.ErrorAs(t, err, &m)
		assert.Equal(t, id, m.Test)
	}
}

func TestRunAllKeepsCatalogOrder(t *testing.T) {
	var calls atomic.Int32
	d := NewDispatcher(WithRegistry(fixtureRegistry(t, &calls)), WithConcurrency(2))
	out, err := d.CheckAll(t.Context(), CategoryNormality, Univariate(noise(1, 20)), 0.05)
	require.NoError(t, err)

	var ids []TestID
	for _, o := range out {
		ids = append(ids, o.Test)
	}
	assert.Equal(t, []TestID{"ok", "panics", "fails", "bad_p", "wrong_type"}, ids)

	require.NoError(t, out[0].Err)
	require.NotNil(t, out[0].Verdict)
	assert.True(t, out[0].Verdict.Positive)
	for _, o := range out[1:] {
		assert.Error(t, o.Err, o.Test)
		assert.Nil(t, o.Verdict)
	}
	assert.EqualValues(t, 5, calls.Load())
}

func TestRunAllBuiltin(t *testing.T) {
	out, err := NewDispatcher().RunAll(t.Context(), CategoryNormality, Univariate(noise(2, 100)), With("dist", "norm"))
	require.NoError(t, err)
	require.Len(t, out, len(CategoryNormality.Tests()))
	for i, o := range out {
		assert.Equal(t, CategoryNormality.Tests()[i], o.Test)
		assert.NoError(t, o.Err, o.Test)
		assert.Nil(t, o.Verdict)
	}

	_, err = NewDispatcher().RunAll(t.Context(), CategoryNormality, Univariate(noise(2, 100)), WithPeriod(4))
	assertReason(t, err, UnsupportedOption)
}

func TestRunAllRecordsPerTestFailures(t *testing.T) {
	// Long enough for every minimum except Zivot-Andrews.
	out, err := NewDispatcher().RunAll(t.Context(), CategoryStationarity, Univariate(ar1(4, 26, 0.2)))
	require.NoError(t, err)
	require.Len(t, out, 7)
	for _, o := range out {
		if o.Test == ZA {
			assertReason(t, o.Err, TooShort)
			continue
		}
		assert.NotErrorIs(t, o.Err, ErrTooShort, o.Test)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := Univariate(noise(1, 100))

	_, err := NewDispatcher().Run(ctx, CategoryNormality, JB, in)
	assert.ErrorIs(t, err, context.Canceled)

	out, err := NewDispatcher().RunAll(ctx, CategoryNormality, in)
	assert.ErrorIs(t, err, context.Canceled)
	for _, o := range out {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
}

func TestDeterministic(t *testing.T) {
	in := Univariate(ar1(5, 150, 0.4))
	for _, c := range []struct {
		category Category
		test     TestID
	}{
		{CategoryStationarity, ADF},
		{CategoryStationarity, KPSS},
		{CategoryNormality, SW},
		{CategoryRegularity, Sample},
	} {
		a, err := NewDispatcher().Run(t.Context(), c.category, c.test, in)
		require.NoError(t, err)
		b, err := NewDispatcher().Run(t.Context(), c.category, c.test, in)
		require.NoError(t, err)
		assert.Equal(t, math.Float64bits(a.Statistic()), math.Float64bits(b.Statistic()), c.test)
		pa, _ := a.PValue()
		pb, _ := b.PValue()
		assert.Equal(t, math.Float64bits(pa), math.Float64bits(pb), c.test)
	}
}

func TestStationaryNoiseAgreesAcrossTests(t *testing.T) {
	x := []float64{1.0, 1.02, 0.99, 1.01, 1.00, 0.98, 1.03}
	e := noise(9, 50)
	for i := len(x); i < 50; i++ {
		x = append(x, 1+0.015*e[i])
	}
	in := Univariate(x)

	adf, err := CheckStationarity(ADF, in, 0.05)
	require.NoError(t, err)
	assert.True(t, adf.Positive)
	assert.Equal(t, BasisPValue, adf.Basis)

	kpss, err := CheckStationarity(KPSS, in, 0.05)
	require.NoError(t, err)
	assert.True(t, kpss.Positive)

	ok, err := IsStationary(in)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCollinearRegressorsSurfaceSingular(t *testing.T) {
	x, _ := regressor(1, 60, 0, 10)
	rows := make([][]float64, len(x))
	y := make([]float64, len(x))
	e := noise(1, 60)
	for i, v := range x {
		rows[i] = []float64{v, 2 * v}
		y[i] = v + e[i]
	}
	_, err := Linearity(LM, Regression(y, rows))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrComputation)
	assert.True(t, errors.Is(err, regression.ErrSingular))
}

func TestDispatcherLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	d := NewDispatcher(WithLogger(logger))
	_, err := d.Run(t.Context(), CategoryNormality, JB, Univariate(noise(1, 30)))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "test=jb")
	assert.Contains(t, buf.String(), "category=normality")
	assert.Contains(t, buf.String(), "n=30")
}

func TestFeatures(t *testing.T) {
	f, err := Features(Univariate(sine(120, 12, 10, 1, 3)), 12)
	require.NoError(t, err)
	assert.Greater(t, f.SeasonalStrength, 0.64)
	assert.GreaterOrEqual(t, f.TrendStrength, 0.0)
	assert.LessOrEqual(t, f.TrendStrength, 1.0)

	_, err = Features(Univariate(noise(1, 120)), 1)
	assertReason(t, err, InvalidOption)

	_, err = Features(Univariate(noise(1, 20)), 12)
	assertReason(t, err, TooShort)

	_, err = Features(Univariate(noise(1, 120)), 12, WithLags(2))
	assertReason(t, err, UnsupportedOption)
}

func TestCatalog(t *testing.T) {
	total := 0
	for _, c := range Categories() {
		entries := Catalog(c)
		require.NotEmpty(t, entries, c)
		total += len(entries)
		assert.Contains(t, c.Tests(), c.Default())
		for _, e := range entries {
			assert.Equal(t, c, e.Category)
			assert.NotEmpty(t, e.Shapes)
		}
		parsed, err := ParseCategory(" " + string(c) + " ")
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, 37, total)

	_, err := ParseCategory("astrology")
	assert.ErrorIs(t, err, ErrUnknownTest)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	e := Entry{
		ID:       "x",
		Category: CategoryNormality,
		Invoke:   func(*Input, *Options) (RawResult, error) { return nil, nil },
		Extract:  func(RawResult) (*Result, error) { return nil, nil },
	}
	require.NoError(t, r.Register(e))
	assert.Error(t, r.Register(e))

	e.ID, e.Aliases = "y", []string{"x"}
	assert.Error(t, r.Register(e))

	e.Invoke = nil
	e.ID, e.Aliases = "z", nil
	assert.Error(t, r.Register(e))
}
