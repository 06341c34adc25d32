package stats

import (
	"fmt"
	"math"

	"github.com/sartorproj/tsstat/timeseries"
)

// NDiffs determines the number of first differences required for stationarity.
// testType is "kpss" (default), "adf" or "pp"; each difference is tested at
// level alpha (default 0.05) until the test no longer asks for differencing.
// maxD is the maximum number of differences to consider (default 2).
func NDiffs(series *timeseries.Series, maxD int, testType string, alpha float64) (int, error) {
	if maxD <= 0 {
		maxD = 2
	}
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.05
	}

	current := series
	for d := 0; d < maxD; d++ {
		if current.IsConstant() {
			return d, nil
		}
		need, err := needsDiff(current, testType, alpha)
		if err != nil {
			return d, fmt.Errorf("ndiffs: d=%d: %w", d, err)
		}
		if !need {
			return d, nil
		}
		current = current.Diff()
		if current.Len() < 10 {
			return d + 1, nil
		}
	}
	return maxD, nil
}

func needsDiff(series *timeseries.Series, testType string, alpha float64) (bool, error) {
	switch testType {
	case "", "kpss":
		res, err := KPSS(series, DefaultKPSSOptions())
		if err != nil {
			return false, err
		}
		return res.PValue < alpha, nil
	case "adf":
		res, err := ADF(series, DefaultADFOptions())
		if err != nil {
			return false, err
		}
		return res.PValue >= alpha, nil
	case "pp":
		res, err := PhillipsPerron(series, PPOptions{LShort: true, Alpha: alpha})
		if err != nil {
			return false, err
		}
		return res.ShouldDiff, nil
	}
	return false, fmt.Errorf("%w: unit root test %q", ErrInvalidArgument, testType)
}

// NSDiffs determines the number of seasonal differences required.
// testType "seas" (default) differences while the seasonal strength is at
// least 0.64; "ch" and "ocsb" use the Canova-Hansen and OCSB tests.
// period is the seasonal period (e.g., 12 for monthly data with yearly seasonality).
func NSDiffs(series *timeseries.Series, period, maxD int, testType string) (int, error) {
	if maxD <= 0 {
		maxD = 1
	}
	if period <= 1 {
		return 0, nil
	}

	current := series
	for d := 0; d < maxD; d++ {
		if current.IsConstant() {
			return d, nil
		}
		var need bool
		switch testType {
		case "", "seas":
			if current.Len() < 2*period {
				return d, nil
			}
			strength, err := SeasonalStrength(current, period, "classical")
			if err != nil {
				return d, fmt.Errorf("nsdiffs: %w", err)
			}
			need = strength >= 0.64
		case "ch":
			if current.Len() < 2*period+5 {
				return d, nil
			}
			res, err := CanovaHansen(current, period)
			if err != nil {
				return d, fmt.Errorf("nsdiffs: %w", err)
			}
			need = res.D == 1
		case "ocsb":
			if current.Len() < 2*period+8 {
				return d, nil
			}
			res, err := OCSB(current, OCSBOptions{Period: period, MaxLag: 3})
			if err != nil {
				return d, fmt.Errorf("nsdiffs: %w", err)
			}
			need = res.D == 1
		default:
			return 0, fmt.Errorf("nsdiffs: %w: seasonal test %q", ErrInvalidArgument, testType)
		}
		if !need {
			return d, nil
		}
		current = current.SeasonalDiff(period)
	}
	return maxD, nil
}

// AICc calculates the corrected Akaike Information Criterion.
// AICc = AIC + 2(k)(k+1)/(n-k-1) where k is number of parameters.
// This corrects for small sample sizes.
func AICc(aic float64, nObs int, nParams int) float64 {
	k := float64(nParams)
	n := float64(nObs)

	if n-k-1 <= 0 {
		return math.Inf(1)
	}

	return aic + 2*k*(k+1)/(n-k-1)
}

// InformationCriteria holds AIC, AICc, and BIC for a fitted model.
type InformationCriteria struct {
	AIC    float64
	AICc   float64
	BIC    float64
	LogLik float64
}

// CalculateIC calculates all information criteria.
// logLik is the log-likelihood, nObs is the number of observations,
// nParams is the number of estimated parameters.
func CalculateIC(logLik float64, nObs int, nParams int) *InformationCriteria {
	k := float64(nParams)
	n := float64(nObs)

	aic := -2*logLik + 2*k
	return &InformationCriteria{
		AIC:    aic,
		AICc:   AICc(aic, nObs, nParams),
		BIC:    -2*logLik + k*math.Log(n),
		LogLik: logLik,
	}
}
