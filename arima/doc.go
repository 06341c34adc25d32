// Package arima fits ARIMA(p,d,q) models by conditional sum of squares.
//
// The series is differenced d times and centered; the AR and MA coefficients
// then minimise the sum of squared one-step residuals, starting from the
// Yule-Walker AR estimates:
//
//	model := arima.New(1, 1, 1)
//	if err := model.Fit(series); err != nil {
//	    return err
//	}
//	resid, _ := model.Residuals()
//	summary, _ := model.Summary()
//	fmt.Printf("%s AICc=%.2f LB p=%.3f\n", summary.Order, summary.AICc, summary.LjungBox.PValue)
//
// For automatic order selection, use the autoarima package.
package arima
