package tsstat

import (
	"github.com/sartorproj/tsstat/arima"
	"github.com/sartorproj/tsstat/autoarima"
	"github.com/sartorproj/tsstat/stats"
	"github.com/sartorproj/tsstat/timeseries"
)

// Seasonality runs a seasonality test. Every test requires WithPeriod.
func Seasonality(test TestID, in *Input, opts ...Option) (*Result, error) {
	return runDefault(CategorySeasonality, test, in, opts)
}

// CheckSeasonality decides whether the series is seasonal.
func CheckSeasonality(test TestID, in *Input, alpha float64, opts ...Option) (Verdict, error) {
	return checkDefault(CategorySeasonality, test, in, alpha, opts)
}

// IsSeasonal runs the QS test at the 5% level unless Using or WithAlpha is
// given. WithPeriod is required.
func IsSeasonal(in *Input, opts ...Option) (bool, error) {
	return isDefault(CategorySeasonality, in, opts)
}

type qsRaw struct {
	*stats.QSResult
	model *arima.Order // residual model, nil when the data were tested directly
}

// qsSeries returns the series the QS statistic is computed on. With
// residuals requested the data are replaced by the residuals of an
// automatically selected ARIMA, then of an ARIMA(0,1,1), and finally left
// unchanged when neither can be fitted.
func qsSeries(s *timeseries.Series, o *Options) (*timeseries.Series, *arima.Order) {
	if !o.Bool("residuals", false) {
		return s, nil
	}
	if o.Bool("autoarima", true) {
		cfg := autoarima.DefaultConfig()
		cfg.MaxP, cfg.MaxQ = 3, 3
		cfg.Stepwise = false
		cfg.MaxOrder = 3
		if o.Int("period", 0) < 8 {
			cfg.MaxOrder = 1
		}
		if res, err := autoarima.AutoARIMA(s, cfg); err == nil {
			if resid, err := res.Residuals(); err == nil {
				return timeseries.New(resid), &res.Order
			}
		}
	}
	m := arima.New(0, 1, 1)
	if err := m.Fit(s); err == nil {
		if resid, err := m.Residuals(); err == nil {
			return timeseries.New(resid), &m.Order
		}
	}
	return s, nil
}

func seasonalityEntries() []Entry {
	period := func(o *Options) int { return o.Int("period", 2) }
	required := []string{"period"}
	return []Entry{
		{
			ID:        QS,
			MinLength: func(_ *Input, o *Options) int { return 2*period(o) + 3 },
			MinDoc:    "2*period+3",
			Accepts:   []string{"period", "diff", "residuals", "autoarima"},
			Requires:  required,
			Gaps:      true,
			Rule:      Rule{Polarity: RejectNullMeansPositive},
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				s, model := qsSeries(in.series(), o)
				r, err := stats.QS(s, stats.QSOptions{Period: period(o), Diff: o.Bool("diff", true)})
				if err != nil {
					return nil, err
				}
				return qsRaw{QSResult: r, model: model}, nil
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[qsRaw](raw)
				if err != nil {
					return nil, err
				}
				b := newResult(r.Statistic).p(r.PValue)
				if r.model != nil {
					b.extra("residual_p", r.model.P).extra("residual_d", r.model.D).extra("residual_q", r.model.Q)
				}
				return b.build(true)
			},
		},
		{
			ID:      OCSB,
			Aliases: []string{"osborn"},
			MinLength: func(_ *Input, o *Options) int {
				return stats.OCSBMinLength(period(o), o.Int("max_lag", 3))
			},
			MinDoc:   "2*period+5+max_lag, at least period+2*max_lag+5",
			Accepts:  []string{"period", "max_lag", "lag_method"},
			Requires: required,
			Rule:     Rule{Polarity: RejectNullMeansNegative, Tail: LowerTail, Key: "5%"},
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				return stats.OCSB(in.series(), stats.OCSBOptions{
					Period:    period(o),
					MaxLag:    o.Int("max_lag", 3),
					LagMethod: o.String("lag_method", "aic"),
				})
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.OCSBResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).critMap(map[string]float64{"5%": r.CriticalValue}).
					extra("d", r.D).extra("lag", r.Lag).
					build(true)
			},
		},
		{
			ID:        CH,
			Aliases:   []string{"canova_hansen"},
			MinLength: func(_ *Input, o *Options) int { return 2*period(o) + 5 },
			MinDoc:    "2*period+5",
			Accepts:   []string{"period"},
			Requires:  required,
			Rule:      Rule{Polarity: RejectNullMeansPositive, Tail: UpperTail, Key: "5%"},
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				return stats.CanovaHansen(in.series(), period(o))
			},
			Extract: func(raw RawResult) (*Result, error) {
				r, err := as[*stats.CHResult](raw)
				if err != nil {
					return nil, err
				}
				return newResult(r.Statistic).critMap(map[string]float64{"5%": r.CriticalValue}).
					extra("d", r.D).
					build(true)
			},
		},
		{
			ID:        SeasonalStrength,
			Aliases:   []string{"strength"},
			MinLength: func(_ *Input, o *Options) int { return 2 * period(o) },
			MinDoc:    "2*period",
			Accepts:   []string{"period", "decomposition", "threshold"},
			Requires:  required,
			Rule:      Rule{Polarity: RejectNullMeansPositive, Tail: UpperTail, Key: "threshold"},
			Invoke: func(in *Input, o *Options) (RawResult, error) {
				v, err := stats.SeasonalStrength(in.series(), period(o), o.String("decomposition", "classical"))
				if err != nil {
					return nil, err
				}
				return thresholdRaw{value: v, threshold: o.Float("threshold", 0.64)}, nil
			},
			Extract: extractThreshold,
		},
	}
}

// thresholdRaw is a scalar feature compared with a fixed threshold.
type thresholdRaw struct {
	value     float64
	threshold float64
}

func extractThreshold(raw RawResult) (*Result, error) {
	r, err := as[thresholdRaw](raw)
	if err != nil {
		return nil, err
	}
	return newResult(r.value).critMap(map[string]float64{"threshold": r.threshold}).build(true)
}
