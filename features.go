package tsstat

import (
	"github.com/sartorproj/tsstat/stats"
)

// SeasonalFeatures are the decomposition-based strengths of a series.
type SeasonalFeatures struct {
	SeasonalStrength float64 `json:"seasonal_strength"`
	TrendStrength    float64 `json:"trend_strength"`
	Spikiness        float64 `json:"spikiness"`
}

// Features decomposes the series with the given period and reports its
// seasonal strength, trend strength and spikiness. WithDecomposition("stl")
// selects STL over the classical decomposition.
func Features(in *Input, period int, opts ...Option) (*SeasonalFeatures, error) {
	e := &Entry{
		ID:        "features",
		Shapes:    []Shape{ShapeUnivariate},
		MinLength: func(*Input, *Options) int { return 2 * period },
		Accepts:   []string{"decomposition"},
	}
	if period < 2 {
		return nil, invalid(e.ID, InvalidOption, "period must be at least 2, got %d", period)
	}
	o, err := buildOptions(e, opts)
	if err != nil {
		return nil, err
	}
	valid, err := validate(in, e, o)
	if err != nil {
		return nil, err
	}

	s, method := valid.series(), o.String("decomposition", "classical")
	var f SeasonalFeatures
	if f.SeasonalStrength, err = stats.SeasonalStrength(s, period, method); err != nil {
		return nil, &ComputationError{Test: e.ID, Err: err}
	}
	if f.TrendStrength, err = stats.TrendStrength(s, period, method); err != nil {
		return nil, &ComputationError{Test: e.ID, Err: err}
	}
	if f.Spikiness, err = stats.Spikiness(s, period, method); err != nil {
		return nil, &ComputationError{Test: e.ID, Err: err}
	}
	return &f, nil
}
