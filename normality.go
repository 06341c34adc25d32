package tsstat

import (
	"fmt"

	"github.com/sartorproj/tsstat/stats"
)

// Normality runs a test of the null hypothesis that the data are normal.
func Normality(test TestID, in *Input, opts ...Option) (*Result, error) {
	return runDefault(CategoryNormality, test, in, opts)
}

// CheckNormality decides whether the data are normally distributed.
func CheckNormality(test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	return checkDefault(CategoryNormality, test, in, alpha, opts)
}

// IsNormal runs the D'Agostino-Pearson test at the 5% level unless Using or
// WithAlpha is given.
func IsNormal(in *Input, opts ...Option) (bool, error) {
	return isDefault(CategoryNormality, in, opts)
}

func extractNormality(raw RawResult) (*Result, error) {
	r, err := as[*stats.NormalityResult](raw)
	if err != nil {
		return nil, err
	}
	return newResult(r.Statistic).p(r.PValue).build(true)
}

func normalityEntries() []Entry {
	minusP := Rule{Polarity: RejectNullMeansNegative}
	return []Entry{
		{
			ID:        DP,
			Aliases:   []string{"dagostino", "dagostino_pearson", "normaltest"},
			MinLength: fixedMin(8),
			MinDoc:    "8",
			Rule:      minusP,
			Invoke: func(in *Input, _ *Options) (RawResult, error) {
				return stats.NormalTest(in.series())
			},
			Extract: extractNormality,
		},
		{
			ID:        JB,
			Aliases:   []string{"jarque_bera"},
			MinLength: fixedMin(3),
			MinDoc:    "3",
			Rule:      minusP,
			Invoke: func(in *Input, _ *Options) (RawResult, error) {
				return stats.JarqueBera(in.series())
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.JBResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).p(r.PValue).
					extra("skew", r.Skew).extra("kurtosis", r.Kurtosis).
					build(true)
			},
		},
		{
			ID:        OB,
			Aliases:   []string{"omnibus"},
			MinLength: fixedMin(8),
			MinDoc:    "8",
			Rule:      minusP,
			Invoke: func(in *Input, _ *Options) (RawResult, error) {
				return stats.Omnibus(in.series())
			},
			Extract: extractNormality,
		},
		{
			ID:        SW,
			Aliases:   []string{"shapiro", "shapiro_wilk"},
			MinLength: fixedMin(3),
			MinDoc:    "3",
			Rule:      minusP,
			Invoke: func(in *Input, _ *Options) (RawResult, error) {
				return stats.ShapiroWilk(in.series())
			},
			Extract: extractNormality,
		},
		{
			ID:        AD,
			Aliases:   []string{"anderson", "anderson_darling"},
			MinLength: fixedMin(8),
			MinDoc:    "8",
			Accepts:   []string{"dist"},
			Rule:      Rule{Polarity: RejectNullMeansNegative, Tail: UpperTail},
			Invoke: func(in *Input, _ *Options) (RawResult, error) {
				return stats.AndersonDarling(in.series())
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.ADNormResult](raw)
				if err != nil {
					return nil, err
				}
				labels := make([]string, len(r.SignificanceLevels))
				for i, l := range r.SignificanceLevels {
					labels[i] = fmt.Sprintf("%g%%", l)
				}
				return newResult(r.Statistic).crit(labels, r.CriticalValues).build(true)
			},
		},
	}
}
