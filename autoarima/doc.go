// Package autoarima selects a non-seasonal ARIMA order automatically.
//
// The differencing order comes from stats.NDiffs; (p, q) are then searched
// stepwise or exhaustively by AIC, AICc or BIC. When nothing can be fitted
// an ARIMA(0,1,1) is used:
//
//	res, err := autoarima.AutoARIMA(series, autoarima.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("%s after %d fits\n", res.Order, res.ModelsEvaluated)
//	resid, _ := res.Residuals()
package autoarima
