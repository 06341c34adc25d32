package tsstat

import (
	"github.com/sartorproj/tsstat/regression"
)

// Heteroscedasticity runs a test of constant residual variance.
func Heteroscedasticity(test TestID, in *Input, opts ...Option) (*Result, error) {
	return runDefault(CategoryHeteroscedasticity, test, in, opts)
}

// CheckHeteroscedasticity decides whether the residual variance changes.
func CheckHeteroscedasticity(test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	return checkDefault(CategoryHeteroscedasticity, test, in, alpha, opts)
}

// IsHeteroscedastic runs the Breusch-Pagan test at the 5% level unless Using
// or WithAlpha is given.
func IsHeteroscedastic(in *Input, opts ...Option) (bool, error) {
	return isDefault(CategoryHeteroscedasticity, in, opts)
}

func heteroscedasticityEntries() []Entry {
	plusP := Rule{Polarity: RejectNullMeansPositive}
	regressionOnly := []Shape{ShapeRegression}
	return []Entry{
		{
			ID:        BP,
			Aliases:   []string{"breusch_pagan", "breusch-pagan", "breusch-pagan-lagrange-multiplier"},
			Shapes:    regressionOnly,
			MinLength: func(in *Input, _ *Options) int { return max(10, 2*params(in)+2) },
			MinDoc:    "10, or 2*(k+1)+2",
			Accepts:   []string{"robust"},
			Rule:      plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				fit, err := in.fit()
				if err != nil {
					return nil, err
				}
				return regression.BreuschPagan(fit.Resid, fit.X, o.Bool("robust", true))
			},
			Extract: extractLM,
		},
		{
			ID:      ARCH,
			Aliases: []string{"engle"},
			Shapes:  []Shape{ShapeUnivariate, ShapeRegression},
			MinLength: func(in *Input, o *Options) int {
				lags := o.Int("lags", 0)
				if lags == 0 {
					lags = regression.DefaultLags(in.Len())
				}
				return max(10, 2*lags+3)
			},
			MinDoc:  "10, or 2*lags+3",
			Accepts: []string{"lags", "ddof"},
			Rule:    plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				resid := in.x
				if in.shape == ShapeRegression {
					fit, err := in.fit()
					if err != nil {
						return nil, err
					}
					resid = fit.Resid
				}
				return regression.ARCH(resid, o.Int("lags", 0), o.Int("ddof", 0))
			},
			Extract: extractLM,
		},
		{
			ID:        GQ,
			Aliases:   []string{"goldfeld_quandt", "goldfeld-quandt"},
			Shapes:    regressionOnly,
			MinLength: func(in *Input, _ *Options) int { return max(12, 4*params(in)+2) },
			MinDoc:    "12, or 4*(k+1)+2",
			Accepts:   []string{"split", "drop", "alternative"},
			Rule:      plusP,
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				x, err := in.design()
				if err != nil {
					return nil, err
				}
				return regression.GoldfeldQuandt(in.x, x, regression.GQOptions{
					Split:       o.Float("split", 0),
					Drop:        o.Float("drop", 0),
					Alternative: o.String("alternative", "increasing"),
				})
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*regression.GQResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.F).p(r.PValue).build(true)
			},
		},
		{
			ID:     White,
			Shapes: regressionOnly,
			MinLength: func(in *Input, _ *Options) int {
				k := params(in)
				return max(10, k*(k+1)/2+5)
			},
			MinDoc: "10, or (k+1)(k+2)/2+5",
			Rule:   plusP,
			Invoke: func(in *Input, _ *Options) (RawResult, error) {
				fit, err := in.fit()
				if err != nil {
					return nil, err
				}
				return regression.White(fit.Resid, fit.X)
			},
			Extract: extractLM,
		},
	}
}
