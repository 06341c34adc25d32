package tsstat

import (
	"github.com/sartorproj/tsstat/stats"
)

// Stability computes a tiled-window feature of the series.
func Stability(test TestID, in *Input, opts ...Option) (*Result, error) {
	return runDefault(CategoryStability, test, in, opts)
}

// CheckStability decides whether the series is stable.
func CheckStability(test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	return checkDefault(CategoryStability, test, in, alpha, opts)
}

// IsStable reports whether the variance of the window means stays at or
// below the threshold (0.5 by default).
func IsStable(in *Input, opts ...Option) (bool, error) {
	return isDefault(CategoryStability, in, opts)
}

// IsLumpy reports whether the variance of the window variances exceeds the
// threshold (0.5 by default).
func IsLumpy(in *Input, opts ...Option) (bool, error) {
	v, err := checkDefault(CategoryStability, Lumpiness, in, DefaultAlpha, opts)
	if err != nil {
		return false, err
	}
	return !v.Positive, nil
}

func tileOptions(o *Options) stats.TileOptions {
	opts := stats.DefaultTileOptions()
	opts.Freq = o.Int("freq", opts.Freq)
	opts.Scale = o.Bool("scale", opts.Scale)
	return opts
}

func tileWidth(o *Options) int {
	if f := o.Int("freq", 1); f > 1 {
		return f
	}
	return 10
}

func stabilityEntries() []Entry {
	accepts := []string{"freq", "threshold", "scale"}
	return []Entry{
		{
			ID:        StabilityIndex,
			MinLength: func(_ *Input, o *Options) int { return 2 * tileWidth(o) },
			MinDoc:    "two windows",
			Accepts:   accepts,
			Gaps:      true,
			// Stable when the variance of the means does not exceed the threshold.
			Rule: Rule{Polarity: RejectNullMeansNegative, Tail: UpperTail, Key: "threshold"},
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				v, err := stats.Stability(in.series(), tileOptions(o))
				if err != nil {
					return nil, err
				}
				return thresholdRaw{value: v, threshold: o.Float("threshold", 0.5)}, nil
			},
			Extract: extractThreshold,
		},
		{
			ID:        Lumpiness,
			MinLength: func(_ *Input, o *Options) int { return tileWidth(o) },
			MinDoc:    "one window",
			Accepts:   accepts,
			Gaps:      true,
			Rule:      Rule{Polarity: RejectNullMeansNegative, Tail: UpperTail, Key: "threshold"},
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				v, err := stats.Lumpiness(in.series(), tileOptions(o))
				if err != nil {
					return nil, err
				}
				return thresholdRaw{value: v, threshold: o.Float("threshold", 0.5)}, nil
			},
			Extract: extractThreshold,
		},
	}
}
