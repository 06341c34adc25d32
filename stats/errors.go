package stats

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInsufficientData is returned when a series is too short for a routine.
	ErrInsufficientData = errors.New("stats: insufficient data")
	// ErrConstantSeries is returned when a routine needs variation in the data.
	ErrConstantSeries = errors.New("stats: series is constant")
	// ErrInvalidArgument is returned for out-of-range parameters.
	ErrInvalidArgument = errors.New("stats: invalid argument")
)

// Regression selects the deterministic terms of a unit-root regression.
type Regression string

const (
	RegressionNone           Regression = "n"
	RegressionConstant       Regression = "c"
	RegressionTrend          Regression = "t" // Zivot-Andrews break in trend only
	RegressionConstantTrend  Regression = "ct"
	RegressionQuadraticTrend Regression = "ctt"
)

// ParseRegression accepts the short codes and "nc" for no deterministic terms.
func ParseRegression(s string) (Regression, error) {
	switch strings.ToLower(s) {
	case "n", "nc", "none":
		return RegressionNone, nil
	case "c":
		return RegressionConstant, nil
	case "t":
		return RegressionTrend, nil
	case "ct":
		return RegressionConstantTrend, nil
	case "ctt":
		return RegressionQuadraticTrend, nil
	}
	return "", fmt.Errorf("%w: regression %q", ErrInvalidArgument, s)
}

// Autolag selects how the number of augmenting lags is chosen.
type Autolag string

const (
	AutolagAIC  Autolag = "aic"
	AutolagBIC  Autolag = "bic"
	AutolagT    Autolag = "t-stat"
	AutolagNone Autolag = "none"
)

// ParseAutolag accepts the method names case-insensitively.
func ParseAutolag(s string) (Autolag, error) {
	switch strings.ToLower(s) {
	case "aic":
		return AutolagAIC, nil
	case "bic":
		return AutolagBIC, nil
	case "t-stat", "tstat":
		return AutolagT, nil
	case "none", "":
		return AutolagNone, nil
	}
	return "", fmt.Errorf("%w: autolag %q", ErrInvalidArgument, s)
}
