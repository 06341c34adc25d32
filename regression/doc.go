// Package regression provides ordinary least squares on gonum matrices and the
// regression diagnostics built on it.
//
// # Fitting
//
//	x, _ := regression.FromColumns(xs)
//	fit, err := regression.OLS(y, regression.AddConstant(x))
//	fmt.Println(fit.Params, fit.TValues, fit.RSquared)
//
// OLS solves through a QR decomposition and reports ErrSingular when the design
// does not have full column rank.
//
// # Diagnostics
//
// Linearity: RESET, HarveyCollier, LinearLM and Rainbow.
//
// Heteroscedasticity: BreuschPagan, White, GoldfeldQuandt and ARCH.
//
// Serial correlation: AcorrLM, BreuschGodfrey and DurbinWatson.
//
// The Lagrange multiplier tests share the LMResult quadruple
// (LM, LMPValue, F, FPValue).
package regression
