package tsstat

import (
	"github.com/sartorproj/tsstat/regression"
)

// Linearity runs a specification test of a linear regression.
func Linearity(test TestID, in *Input, opts ...Option) (*Result, error) {
	return runDefault(CategoryLinearity, test, in, opts)
}

// CheckLinearity decides whether the regression relationship is linear.
func CheckLinearity(test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	return checkDefault(CategoryLinearity, test, in, alpha, opts)
}

// IsLinear runs the RESET test at the 5% level unless Using or WithAlpha is
// given.
func IsLinear(in *Input, opts ...Option) (bool, error) {
	return isDefault(CategoryLinearity, in, opts)
}

// params is the number of coefficients once a constant is added.
func params(in *Input) int { return in.exogWidth() + 1 }

func extractLM(raw RawResult) (*Result, error) {
	r, err := as[*regression.LMResult](raw)
	if err != nil {
		return nil, err
	}
	return newResult(r.LM).p(r.LMPValue).
		extra("f", r.F).extra("f_pvalue", r.FPValue).extra("df", r.DF).
		build(true)
}

func linearityEntries() []Entry {
	minusP := Rule{Polarity: RejectNullMeansNegative}
	regressionOnly := []Shape{ShapeRegression}
	return []Entry{
		{
			ID:      RR,
			Aliases: []string{"reset", "ramsey_reset"},
			Shapes:  regressionOnly,
			MinLength: func(in *Input, o *Options) int {
				return max(10, 2*params(in)+o.Int("power", 3)+2)
			},
			MinDoc:  "10, or 2*(k+1)+power+2",
			Accepts: []string{"power", "test_type", "use_f"},
			Rule:    minusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				fit, err := in.fit()
				if err != nil {
					return nil, err
				}
				return regression.RESET(fit, regression.ResetOptions{
					Power:    o.Int("power", 3),
					TestType: o.String("test_type", "fitted"),
					UseF:     o.Bool("use_f", false),
				})
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*regression.ContrastResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).
					extra("df1", r.DF1).extra("df2", r.DF2).extra("use_f", r.UseF).
					build(true)
			},
		},
		{
			ID:      HC,
			Aliases: []string{"harvey_collier"},
			Shapes:  regressionOnly,
			MinLength: func(in *Input, o *Options) int {
				return max(10, params(in)+o.Int("skip", 0)+5)
			},
			MinDoc:  "10, or k+skip+6",
			Accepts: []string{"skip"},
			Rule:    minusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				fit, err := in.fit()
				if err != nil {
					return nil, err
				}
				return regression.HarveyCollier(fit, o.Int("skip", 0))
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*regression.TResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).extra("df", r.DF).build(true)
			},
		},
		{
			ID:        LM,
			Aliases:   []string{"linear_lm"},
			Shapes:    regressionOnly,
			MinLength: func(in *Input, _ *Options) int { return max(10, 2*params(in)+4) },
			MinDoc:    "10, or 2*(k+1)+4",
			Rule:      minusP,
			Invoke: func(in *Input, _ *Options) (RawResult, error) {
				fit, err := in.fit()
				if err != nil {
					return nil, err
				}
				return regression.LinearLM(fit)
			},
			Extract: extractLM,
		},
		{
			ID:        RB,
			Aliases:   []string{"rainbow"},
			Shapes:    regressionOnly,
			MinLength: func(in *Input, _ *Options) int { return max(10, 4*params(in)) },
			MinDoc:    "10, or 4*(k+1)",
			Accepts:   []string{"frac", "center"},
			Rule:      minusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				fit, err := in.fit()
				if err != nil {
					return nil, err
				}
				return regression.Rainbow(fit, o.Float("frac", 0.5), o.Float("center", 0.5))
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*regression.FResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.F).p(r.PValue).extra("df1", r.DF1).extra("df2", r.DF2).build(true)
			},
		},
	}
}
