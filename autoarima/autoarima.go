// Package autoarima implements automatic non-seasonal ARIMA order selection.
package autoarima

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/tsstat/arima"
	"github.com/sartorproj/tsstat/stats"
	"github.com/sartorproj/tsstat/timeseries"
)

// ErrNoModel is returned when neither the search nor the ARIMA(0,1,1)
// fallback could be fitted.
var ErrNoModel = errors.New("autoarima: no model could be fitted")

// Config holds configuration for auto ARIMA search.
type Config struct {
	MaxP        int     // Maximum AR order (default: 5)
	MaxD        int     // Maximum differencing order (default: 2)
	MaxQ        int     // Maximum MA order (default: 5)
	MaxOrder    int     // Maximum p+q in the exhaustive search; 0 means no limit
	Stepwise    bool    // Use stepwise search instead of exhaustive
	Criterion   string  // Information criterion: "aic", "aicc" or "bic" (default: "aicc")
	StationTest string  // Unit root test for d: "kpss", "adf" or "pp" (default: "kpss")
	Alpha       float64 // Level of the unit root test (default: 0.05)
}

// DefaultConfig returns the default auto ARIMA configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxP:        5,
		MaxD:        2,
		MaxQ:        5,
		MaxOrder:    5,
		Stepwise:    true,
		Criterion:   "aicc",
		StationTest: "kpss",
		Alpha:       0.05,
	}
}

// Result represents the result of auto ARIMA model selection.
type Result struct {
	Model           *arima.Model
	Order           arima.Order
	Criterion       float64
	ModelsEvaluated int
	Fallback        bool // The ARIMA(0,1,1) fallback was used
}

// Residuals returns the residuals of the selected model.
func (r *Result) Residuals() ([]float64, error) {
	return r.Model.Residuals()
}

// AutoARIMA selects d with repeated unit root tests and then (p, q) by
// information criterion. When no candidate can be fitted an ARIMA(0,1,1)
// is tried before giving up.
func AutoARIMA(series *timeseries.Series, config *Config) (*Result, error) {
	if config == nil {
		config = DefaultConfig()
	}
	switch config.Criterion {
	case "", "aic", "aicc", "bic":
	default:
		return nil, fmt.Errorf("autoarima: unknown criterion %q", config.Criterion)
	}

	d, err := stats.NDiffs(series, config.MaxD, config.StationTest, config.Alpha)
	if err != nil {
		return nil, fmt.Errorf("autoarima: %w", err)
	}

	s := &searcher{series: series, d: d, config: config, best: math.Inf(1)}
	if config.Stepwise {
		s.stepwise()
	} else {
		s.exhaustive()
	}
	if s.model != nil {
		return &Result{
			Model:           s.model,
			Order:           s.model.Order,
			Criterion:       s.best,
			ModelsEvaluated: s.evaluated,
		}, nil
	}

	fallback := arima.New(0, 1, 1)
	if err := fallback.Fit(series); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoModel, err)
	}
	return &Result{
		Model:           fallback,
		Order:           fallback.Order,
		Criterion:       criterion(fallback, config.Criterion),
		ModelsEvaluated: s.evaluated + 1,
		Fallback:        true,
	}, nil
}

func criterion(m *arima.Model, name string) float64 {
	switch name {
	case "aic":
		return m.AIC
	case "bic":
		return m.BIC
	}
	return m.AICc
}

type searcher struct {
	series    *timeseries.Series
	d         int
	config    *Config
	model     *arima.Model
	best      float64
	evaluated int
	tried     map[[2]int]bool
}

// try fits ARIMA(p,d,q) once and reports whether it improved on the best.
func (s *searcher) try(p, q int) bool {
	if p < 0 || q < 0 || p > s.config.MaxP || q > s.config.MaxQ {
		return false
	}
	if s.tried == nil {
		s.tried = make(map[[2]int]bool)
	}
	if s.tried[[2]int{p, q}] {
		return false
	}
	s.tried[[2]int{p, q}] = true

	model := arima.New(p, s.d, q)
	if err := model.Fit(s.series); err != nil {
		return false
	}
	s.evaluated++
	c := criterion(model, s.config.Criterion)
	if math.IsNaN(c) || c >= s.best {
		return false
	}
	s.best, s.model = c, model
	return true
}

func (s *searcher) exhaustive() {
	for p := 0; p <= s.config.MaxP; p++ {
		for q := 0; q <= s.config.MaxQ; q++ {
			if s.config.MaxOrder > 0 && p+q > s.config.MaxOrder {
				continue
			}
			s.try(p, q)
		}
	}
}

// stepwise starts from the Hyndman-Khandakar initial models and moves to the
// best neighbour until no neighbour improves the criterion.
func (s *searcher) stepwise() {
	for _, start := range [][2]int{{2, 2}, {0, 0}, {1, 0}, {0, 1}} {
		s.try(start[0], start[1])
	}
	for improved := s.model != nil; improved; {
		improved = false
		p, q := s.model.Order.P, s.model.Order.Q
		for _, step := range [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {-1, -1}} {
			if s.try(p+step[0], q+step[1]) {
				improved = true
			}
		}
	}
}
