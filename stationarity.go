package tsstat

import (
	"slices"

	"github.com/sartorproj/tsstat/stats"
)

// Stationarity runs a unit-root or stationarity test.
func Stationarity(test TestID, in *Input, opts ...Option) (*Result, error) {
	return runDefault(CategoryStationarity, test, in, opts)
}

// CheckStationarity decides whether the series is stationary at level alpha.
func CheckStationarity(test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	return checkDefault(CategoryStationarity, test, in, alpha, opts)
}

// IsStationary runs ADF at the 5% level unless Using or WithAlpha is given.
func IsStationary(in *Input, opts ...Option) (bool, error) {
	return isDefault(CategoryStationarity, in, opts)
}

func regressionOpt(o *Options, def stats.Regression, allowed ...stats.Regression) (stats.Regression, error) {
	if !o.Has("regression") {
		return def, nil
	}
	r, err := stats.ParseRegression(o.String("regression", ""))
	if err != nil || !slices.Contains(allowed, r) {
		return "", invalid("", InvalidOption, "regression %q is not one of %v", o.String("regression", ""), allowed)
	}
	return r, nil
}

func autolagOpt(o *Options, def stats.Autolag) (stats.Autolag, error) {
	if !o.Has("autolag") {
		return def, nil
	}
	a, err := stats.ParseAutolag(o.String("autolag", ""))
	if err != nil {
		return "", invalid("", InvalidOption, "%v", err)
	}
	return a, nil
}

// adfMin keeps the requested augmenting lags within stats.MaxADFLag.
func adfMin(_ *Input, o *Options) int {
	n := max(20, 2*o.Int("lags", 0)+6)
	if r, err := stats.ParseRegression(o.String("regression", "c")); err == nil {
		k := r.Terms()
		lags := o.Int("lags", 0)
		n = max(n, 2*(lags+k+1), 2*lags+k+3)
	}
	return n
}

func stationarityEntries() []Entry {
	plusP := Rule{Polarity: RejectNullMeansPositive}
	return []Entry{
		{
			ID:        ADF,
			Aliases:   []string{"augmented_dickey_fuller"},
			MinLength: adfMin,
			MinDoc:    "20, or 2*lags+6 (2*lags+8 with ctt)",
			Accepts:   []string{"lags", "regression", "autolag"},
			Rule:      plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				opts := stats.DefaultADFOptions()
				var err error
				if opts.Regression, err = regressionOpt(o, opts.Regression, stats.RegressionNone, stats.RegressionConstant,
					stats.RegressionConstantTrend, stats.RegressionQuadraticTrend); err != nil {
					return nil, err
				}
				if opts.Autolag, err = autolagOpt(o, opts.Autolag); err != nil {
					return nil, err
				}
				opts.MaxLag = o.Int("lags", opts.MaxLag)
				return stats.ADF(in.series(), opts)
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.ADFResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).critMap(r.CriticalValues).
					extra("used_lag", r.UsedLag).extra("nobs", r.NObs).extra("ic_best", r.ICBest).
					build(true)
			},
		},
		{
			ID:        KPSS,
			Aliases:   []string{"kwiatkowski_phillips_schmidt_shin"},
			MinLength: fixedMin(20),
			MinDoc:    "20",
			Accepts:   []string{"regression", "lags"},
			Rule:      Rule{Polarity: RejectNullMeansNegative},
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				opts := stats.DefaultKPSSOptions()
				var err error
				if opts.Regression, err = regressionOpt(o, opts.Regression, stats.RegressionConstant, stats.RegressionConstantTrend); err != nil {
					return nil, err
				}
				opts.NLags = o.Int("lags", opts.NLags)
				return stats.KPSS(in.series(), opts)
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.KPSSResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).critMap(r.CriticalValues).
					extra("lags", r.Lags).
					build(true)
			},
		},
		{
			ID:        PP,
			Aliases:   []string{"phillips_perron"},
			MinLength: fixedMin(20),
			MinDoc:    "20",
			Accepts:   []string{"lshort", "test_alpha"},
			Rule:      plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				opts := stats.DefaultPPOptions()
				opts.LShort = o.Bool("lshort", opts.LShort)
				opts.Alpha = o.Float("test_alpha", opts.Alpha)
				return stats.PhillipsPerron(in.series(), opts)
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.PPResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).
					extra("lags", r.Lags).extra("nobs", r.NObs).extra("should_diff", r.ShouldDiff).
					build(true)
			},
		},
		{
			ID:      ZA,
			Aliases: []string{"zivot_andrews"},
			MinLength: func(_ *Input, o *Options) int {
				return max(30, 3*o.Int("lags", 0)+10)
			},
			MinDoc:  "30, or 3*lags+10",
			Accepts: []string{"lags", "regression", "autolag", "trim"},
			Rule:    plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				opts := stats.DefaultZAOptions()
				var err error
				if opts.Regression, err = regressionOpt(o, opts.Regression, stats.RegressionConstant, stats.RegressionTrend,
					stats.RegressionConstantTrend); err != nil {
					return nil, err
				}
				if opts.Autolag, err = autolagOpt(o, opts.Autolag); err != nil {
					return nil, err
				}
				opts.MaxLag = o.Int("lags", opts.MaxLag)
				opts.Trim = o.Float("trim", opts.Trim)
				return stats.ZivotAndrews(in.series(), opts)
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.ZAResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).critMap(r.CriticalValues).
					extra("base_lag", r.BaseLag).extra("break_index", r.BreakIndex).
					build(true)
			},
		},
		{
			ID:        ERS,
			Aliases:   []string{"elliott_rothenberg_stock", "dfgls"},
			MinLength: func(_ *Input, o *Options) int { return max(20, 2*o.Int("lags", 0)+6) },
			MinDoc:    "20, or 2*lags+6",
			Accepts:   []string{"lags", "regression", "autolag"},
			Rule:      plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				opts := stats.DefaultERSOptions()
				var err error
				if opts.Regression, err = regressionOpt(o, opts.Regression, stats.RegressionConstant, stats.RegressionConstantTrend); err != nil {
					return nil, err
				}
				if opts.Autolag, err = autolagOpt(o, opts.Autolag); err != nil {
					return nil, err
				}
				opts.Lags = o.Int("lags", opts.Lags)
				return stats.ERS(in.series(), opts)
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.ERSResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).critMap(r.CriticalValues).
					extra("lags", r.Lags).extra("nobs", r.NObs).
					build(true)
			},
		},
		{
			ID:      VR,
			Aliases: []string{"variance_ratio"},
			MinLength: func(_ *Input, o *Options) int {
				return max(20, 4*o.Int("lags", 2))
			},
			MinDoc:  "20, or 4*lags",
			Accepts: []string{"lags", "regression", "debiased", "robust", "overlap"},
			Rule:    plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				opts := stats.DefaultVROptions()
				var err error
				if opts.Trend, err = regressionOpt(o, opts.Trend, stats.RegressionConstant, stats.RegressionNone); err != nil {
					return nil, err
				}
				opts.Lags = o.Int("lags", opts.Lags)
				if opts.Lags < 2 {
					return nil, invalid("", InvalidOption, "lags must be at least 2, got %d", opts.Lags)
				}
				opts.Debiased = o.Bool("debiased", opts.Debiased)
				opts.Robust = o.Bool("robust", opts.Robust)
				opts.Overlap = o.Bool("overlap", opts.Overlap)
				return stats.VarianceRatio(in.series(), opts)
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.VRResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).
					extra("ratio", r.Ratio).extra("lags", r.Lags).
					build(true)
			},
		},
		{
			ID:        RUR,
			Aliases:   []string{"range_unit_root"},
			MinLength: fixedMin(25),
			MinDoc:    "25",
			Rule:      plusP,
			Invoke: func(in *Input, _ *Options) (RawResult, error) {
				return stats.RangeUnitRoot(in.series())
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.RURResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).critMap(r.CriticalValues).build(true)
			},
		},
	}
}
