// Package stats provides statistical tests and analysis functions for time series.
//
// Every routine takes a *timeseries.Series (or plain slices for the spectral
// helpers) and returns a typed result with the raw statistic, p-value and,
// where the test publishes them, critical values keyed by level ("1%",
// "5%", "10%"). Errors wrap ErrInsufficientData, ErrConstantSeries or
// ErrInvalidArgument.
//
// # Stationarity Tests
//
// Unit root and stationarity tests:
//
//	// Augmented Dickey-Fuller test
//	// H0: Series has unit root (non-stationary)
//	adf, err := stats.ADF(series, stats.DefaultADFOptions())
//
//	// KPSS test
//	// H0: Series is stationary
//	kpss, err := stats.KPSS(series, stats.DefaultKPSSOptions())
//
//	// Phillips-Perron, Zivot-Andrews, ERS (DF-GLS), variance ratio and
//	// range unit root
//	pp, err := stats.PhillipsPerron(series, stats.DefaultPPOptions())
//	za, err := stats.ZivotAndrews(series, stats.DefaultZAOptions())
//	ers, err := stats.ERS(series, stats.DefaultERSOptions())
//	vr, err := stats.VarianceRatio(series, stats.DefaultVROptions())
//	rur, err := stats.RangeUnitRoot(series)
//
// # Seasonality
//
//	qs, err := stats.QS(series, stats.QSOptions{Period: 12})
//	ocsb, err := stats.OCSB(series, stats.OCSBOptions{Period: 12, MaxLag: 3})
//	ch, err := stats.CanovaHansen(series, 12)
//	strength, err := stats.SeasonalStrength(series, 12, "stl")
//
// # Differencing Analysis
//
//	d, err := stats.NDiffs(series, 2, "kpss", 0.05)
//	sd, err := stats.NSDiffs(series, 12, 1, "ocsb")
//
// # Autocorrelation Functions
//
//	acf, err := stats.ACF(series, 20)
//	pacf, err := stats.PACF(series, 20)
//	res, err := stats.ACFWithConfidence(series, 20)
//	significant := stats.SignificantLags(res.Values, res.ConfBounds)
//
// # Residual Diagnostics
//
//	lb, err := stats.LjungBox(residuals, stats.LjungBoxOptions{Lags: 10, ModelDF: p + q})
//	jb, err := stats.JarqueBera(residuals)
//	sw, err := stats.ShapiroWilk(residuals)
//
// # Regularity and Stability
//
//	apen, err := stats.ApproxEntropy(series, stats.EntropyOptions{})
//	se, err := stats.SpectralEntropy(series, stats.EntropyOptions{Method: "welch"})
//	s, err := stats.Stability(series, stats.DefaultTileOptions())
//	l, err := stats.Lumpiness(series, stats.DefaultTileOptions())
//
// # Time Series Decomposition
//
//	decomp, err := stats.Decompose(series, 12, "additive")
//	stl, err := stats.STL(series, 12, 2)
package stats
