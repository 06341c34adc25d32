package tsstat

import (
	"github.com/sartorproj/tsstat/stats"
	"github.com/sartorproj/tsstat/timeseries"
)

// Regularity computes an entropy of the series. The series counts as regular
// when the entropy is below the tolerance, which defaults to 0.2 times the
// population standard deviation and is also the matching radius of the
// sample and approximate entropies.
func Regularity(test TestID, in *Input, opts ...Option) (*Result, error) {
	return runDefault(CategoryRegularity, test, in, opts)
}

// CheckRegularity decides whether the series is regular. alpha has no effect
// on the tolerance comparison but must still lie in (0, 1).
func CheckRegularity(test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	return checkDefault(CategoryRegularity, test, in, alpha, opts)
}

// IsRegular runs the sample entropy unless Using is given.
func IsRegular(in *Input, opts ...Option) (bool, error) {
	return isDefault(CategoryRegularity, in, opts)
}

type entropyRaw struct {
	entropy   float64
	tolerance float64
}

type entropyFunc func(*timeseries.Series, stats.EntropyOptions) (float64, error)

func entropyAdapter(fn entropyFunc) Adapter {
	return func(in *Input, o *Options) (RawResult, error) {
		s := in.series()
		tol := o.Float("tolerance", 0)
		if tol == 0 {
			tol = stats.DefaultTolerance(s)
		}
		e, err := fn(s, stats.EntropyOptions{
			Order:     o.Int("order", 0),
			Delay:     o.Int("delay", 0),
			Tolerance: tol,
			Metric:    o.String("metric", ""),
			Normalize: o.Bool("normalize", false),
			SF:        o.Float("sf", 0),
			Method:    o.String("method", ""),
			NPerSeg:   o.Int("nperseg", 0),
		})
		if err != nil {
			return nil, err
		}
		return entropyRaw{entropy: e, tolerance: tol}, nil
	}
}

func extractEntropy(raw RawResult) (*Result, error) {
	r, err := as[entropyRaw](raw)
	if err != nil {
		return nil, err
	}
	return newResult(r.entropy).critMap(map[string]float64{"tolerance": r.tolerance}).build(true)
}

func regularityEntries() []Entry {
	rule := Rule{Polarity: RejectNullMeansPositive, Tail: LowerTail, Key: "tolerance"}
	entry := func(id TestID, aliases []string, fn entropyFunc, accepts ...string) Entry {
		return Entry{
			ID:        id,
			Aliases:   aliases,
			MinLength: fixedMin(10),
			MinDoc:    "10",
			Accepts:   append([]string{"tolerance"}, accepts...),
			Rule:      rule,
			Invoke:    entropyAdapter(fn),
			Extract:   extractEntropy,
		}
	}
	return []Entry{
		entry(Sample, []string{"sample_entropy"}, stats.SampleEntropy, "order", "metric"),
		entry(Approx, []string{"approximate", "app", "approx_entropy"}, stats.ApproxEntropy, "order", "metric"),
		entry(Perm, []string{"permutation", "perm_entropy"}, stats.PermEntropy, "order", "delay", "normalize"),
		entry(Spectral, []string{"spectral_entropy"}, stats.SpectralEntropy, "sf", "method", "nperseg", "normalize"),
		entry(SVD, []string{"svd_entropy"}, stats.SVDEntropy, "order", "delay", "normalize"),
	}
}
