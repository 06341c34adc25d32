package tsstat

import (
	"fmt"
	"math"

	"github.com/sartorproj/tsstat/regression"
	"github.com/sartorproj/tsstat/stats"
	"github.com/sartorproj/tsstat/timeseries"
)

// Correlation runs an autocorrelation or cross-correlation test.
func Correlation(test TestID, in *Input, opts ...Option) (*Result, error) {
	return runDefault(CategoryCorrelation, test, in, opts)
}

// CheckCorrelation decides whether the series is autocorrelated.
func CheckCorrelation(test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	return checkDefault(CategoryCorrelation, test, in, alpha, opts)
}

// IsCorrelated runs the Ljung-Box test at the 5% level unless Using or
// WithAlpha is given.
func IsCorrelated(in *Input, opts ...Option) (bool, error) {
	return isDefault(CategoryCorrelation, in, opts)
}

// correlogramLags maps an absent or zero lags option to the routine default.
func correlogramLags(o *Options) int {
	if l := o.Int("lags", 0); l > 0 {
		return l
	}
	return -1
}

func extractCorrelogram(raw RawResult) (*Result, error) {
	r, err := as[*stats.CorrelogramResult](raw)
	if err != nil {
		return nil, err
	}
	return newResult(r.MaxAbs).critMap(r.CriticalValues).seq(r.Values).
		extra("conf_bounds", r.ConfBounds).
		build(true)
}

func correlationEntries() []Entry {
	plusP := Rule{Polarity: RejectNullMeansPositive}
	upper := Rule{Polarity: RejectNullMeansPositive, Tail: UpperTail}
	lagsMin := func(def int) func(*Input, *Options) int {
		return func(_ *Input, o *Options) int {
			if l := o.Int("lags", 0); l > 0 {
				return max(def, l+2)
			}
			return def
		}
	}
	return []Entry{
		{
			ID:        ALB,
			Aliases:   []string{"lb", "ljungbox", "acorr_ljungbox", "acor_lb", "a_lb"},
			MinLength: lagsMin(5),
			MinDoc:    "5, or lags+2",
			Accepts:   []string{"lags", "model_df", "period", "box_pierce"},
			Rule:      plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				return stats.LjungBox(in.series(), stats.LjungBoxOptions{
					Lags:      o.Int("lags", 0),
					ModelDF:   o.Int("model_df", 0),
					Period:    o.Int("period", 0),
					BoxPierce: o.Bool("box_pierce", false),
				})
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.LjungBoxResult](raw)
				if err != nil {
					return nil, err
				}
				q, p := r.LBStat, r.LBPValue
				if r.BoxPierce {
					q, p = r.BPStat, r.BPPValue
				}
				b := newResult(r.Statistic).p(r.PValue).seq(q).
					extra("lags", r.Lags).extra("dof", r.DOF)
				for i, pv := range p {
					b.extra(fmt.Sprintf("p_value_%d", i+1), pv)
				}
				return b.build(true)
			},
		},
		{
			ID:        ALM,
			Aliases:   []string{"acorr_lm", "a_lm", "lm"},
			MinLength: func(in *Input, o *Options) int { return max(10, 2*o.Int("lags", 0)+3) },
			MinDoc:    "10, or 2*lags+3",
			Accepts:   []string{"lags", "ddof"},
			Rule:      plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				return regression.AcorrLM(in.x, o.Int("lags", 0), o.Int("ddof", 0))
			},
			Extract: extractLM,
		},
		{
			ID:      BGLM,
			Aliases: []string{"breusch_godfrey", "bg"},
			Shapes:  []Shape{ShapeRegression},
			MinLength: func(in *Input, o *Options) int {
				return max(10, params(in)+o.Int("lags", 0)+3)
			},
			MinDoc:  "10, or k+lags+4",
			Accepts: []string{"lags"},
			Rule:    plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				fit, err := in.fit()
				if err != nil {
					return nil, err
				}
				return regression.BreuschGodfrey(fit, o.Int("lags", 0))
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*regression.BGResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.LM).p(r.LMPValue).
					extra("f", r.F).extra("f_pvalue", r.FPValue).extra("df", r.DF).
					extra("durbin_watson", r.DurbinWatson).
					build(true)
			},
		},
		{
			ID:        ACF,
			Aliases:   []string{"auto", "ac"},
			MinLength: lagsMin(4),
			MinDoc:    "4, or lags+2",
			Accepts:   []string{"lags"},
			Gaps:      true,
			Rule:      upper,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				return stats.ACFWithConfidence(in.series(), correlogramLags(o))
			},
			Extract: extractCorrelogram,
		},
		{
			ID:        PACF,
			Aliases:   []string{"partial", "pc"},
			MinLength: lagsMin(6),
			MinDoc:    "6, or lags+2",
			Accepts:   []string{"lags"},
			Rule:      upper,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				return stats.PACFWithConfidence(in.series(), o.Int("lags", 0))
			},
			Extract: extractCorrelogram,
		},
		{
			ID:        CCF,
			Aliases:   []string{"cross", "cross_correlation", "cross-correlation", "cc"},
			Shapes:    []Shape{ShapeBivariate},
			MinLength: lagsMin(4),
			MinDoc:    "4, or lags+2",
			Accepts:   []string{"lags", "adjusted"},
			Rule:      upper,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				x, y := in.series(), timeseries.New(in.y)
				if o.Bool("adjusted", true) {
					return stats.CCFWithConfidence(x, y, correlogramLags(o))
				}
				values, err := stats.CCF(x, y, correlogramLags(o), false)
				if err != nil {
					return nil, err
				}
				maxAbs := 0.0
				for _, v := range values {
					maxAbs = math.Max(maxAbs, math.Abs(v))
				}
				return &stats.CorrelogramResult{
					Values:         values,
					MaxAbs:         maxAbs,
					ConfBounds:     1.96 / math.Sqrt(float64(x.Len())),
					CriticalValues: stats.WhiteNoiseBounds(x.Len()),
				}, nil
			},
			Extract: extractCorrelogram,
		},
	}
}
