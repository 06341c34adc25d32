// Package tsstat runs statistical tests on time series through one facade and
// reports every result in the same shape.
//
// Tests are grouped into categories, each answering one yes/no question
// about the data: is it stationary, normal, linear, heteroscedastic,
// autocorrelated, regular, seasonal, stable. Within a category a test is
// named by a short code ("adf", "kpss") or one of its aliases.
//
// # Quick Start
//
//	in := tsstat.Univariate(values)
//
//	// Normalized statistics
//	res, err := tsstat.Stationarity(tsstat.ADF, in, tsstat.WithRegression("ct"))
//	p, ok := res.PValue()
//
//	// A verdict at a chosen level
//	v, err := tsstat.CheckStationarity(tsstat.KPSS, in, 0.05)
//	fmt.Println(v) // the series is stationary
//
//	// The category default at 5%
//	ok, err := tsstat.IsSeasonal(in, tsstat.WithPeriod(12))
//
// # Results and verdicts
//
// A Result carries the statistic, an optional p-value, optional critical
// values keyed by level ("1%", "5%", "10%") or by name ("threshold",
// "tolerance"), test-specific extras and, for correlograms, the full
// sequence. Each test has a Rule stating whether rejecting its null
// hypothesis supports or refutes the category's claim, and whether the
// decision reads the p-value or compares the statistic with a critical value.
//
// When a critical value is chosen from alpha, the tabulated level nearest to
// alpha*100 is used if it lies within half a percentage point; otherwise the
// verdict is undecidable.
//
// # Dispatching
//
// The package functions use a shared Dispatcher. NewDispatcher builds one
// with its own logger or concurrency limit; RunAll and CheckAll run every
// test of a category and return the outcomes in catalog order.
//
//	d := tsstat.NewDispatcher(tsstat.WithLogger(logger))
//	outcomes, err := d.CheckAll(ctx, tsstat.CategoryNormality, in, 0.05)
//
// # Errors
//
// Precondition failures are *InvalidInputError and are raised before any
// numerical routine runs; their Reason says which check failed. Routine
// failures are *ComputationError and unwrap to the sentinel errors of the
// stats and regression packages. Unknown codes give *UnknownTestError,
// inconsistent routine output *MalformedResultError and results without a
// usable decision basis *UndecidableError.
//
// # Packages
//
//   - timeseries: series container and CSV loading
//   - stats: unit-root, normality, autocorrelation, seasonality, entropy and stability routines
//   - regression: OLS and the regression diagnostics
//   - arima: CSS-fitted ARIMA(p,d,q) used for residual-based testing
//   - autoarima: automatic ARIMA order selection
package tsstat
