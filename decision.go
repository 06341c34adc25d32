package tsstat

import (
	"fmt"
	"math"
)

// DefaultAlpha is the significance level of the Is* checkers.
const DefaultAlpha = 0.05

// Polarity states what rejecting the null hypothesis says about the claim a
// category makes.
type Polarity int

const (
	// RejectNullMeansPositive: rejection supports the claim (ADF: stationary).
	RejectNullMeansPositive Polarity = iota
	// RejectNullMeansNegative: rejection refutes the claim (KPSS: not stationary).
	RejectNullMeansNegative
)

// Tail selects how a statistic is compared with a critical value.
type Tail int

const (
	// TailNone decides on the p-value.
	TailNone Tail = iota
	// LowerTail rejects when the statistic is below the critical value.
	LowerTail
	// UpperTail rejects when the statistic is above the critical value.
	UpperTail
)

// Rule maps a Result to a verdict. Key names a fixed critical value such as
// "threshold"; when empty the critical value is chosen from alpha.
type Rule struct {
	Polarity Polarity
	Tail     Tail
	Key      string
}

func (r Rule) String() string {
	sign := "+"
	if r.Polarity == RejectNullMeansNegative {
		sign = "-"
	}
	switch r.Tail {
	case LowerTail:
		sign += " lower"
	case UpperTail:
		sign += " upper"
	default:
		sign += " p"
	}
	if r.Key != "" {
		sign += " " + r.Key
	}
	return sign
}

// Basis records what a verdict was decided on.
type Basis string

const (
	BasisPValue        Basis = "p-value"
	BasisCriticalValue Basis = "critical value"
)

// Verdict is the boolean answer to a category's claim.
type Verdict struct {
	Test     TestID
	Category Category
	Alpha    float64
	Positive bool
	Basis    Basis
	Level    string // Critical value label used, empty on the p-value path
}

// String renders the verdict as a sentence, e.g. "the series is stationary".
func (v Verdict) String() string {
	info, ok := categoryInfo[v.Category]
	if !ok {
		if v.Positive {
			return "positive"
		}
		return "negative"
	}
	if v.Positive {
		return info.positive
	}
	return info.negative
}

// Decide turns a result into a verdict at level alpha.
func Decide(res *Result, alpha float64, rule Rule) (Verdict, error) {
	if !(alpha > 0 && alpha < 1) {
		return Verdict{}, invalid(res.test, InvalidAlpha, "alpha %v outside (0, 1)", alpha)
	}
	v := Verdict{Test: res.test, Category: res.category, Alpha: alpha}

	var reject bool
	switch {
	case rule.Tail == TailNone:
		if !res.hasP {
			return Verdict{}, &UndecidableError{Test: res.test, Detail: "no p-value"}
		}
		if math.IsNaN(res.pvalue) {
			return Verdict{}, &UndecidableError{Test: res.test, Detail: "p-value is NaN"}
		}
		reject = res.pvalue < alpha
		v.Basis = BasisPValue
	default:
		cv, err := pickCritical(res, alpha, rule)
		if err != nil {
			return Verdict{}, err
		}
		if math.IsNaN(res.stat) || math.IsNaN(cv.Value) {
			return Verdict{}, &UndecidableError{Test: res.test, Detail: "statistic or critical value is NaN"}
		}
		if rule.Tail == LowerTail {
			reject = res.stat < cv.Value
		} else {
			reject = res.stat > cv.Value
		}
		v.Basis, v.Level = BasisCriticalValue, cv.Label
	}
	v.Positive = reject != (rule.Polarity == RejectNullMeansNegative)
	return v, nil
}

// pickCritical returns the critical value named by the rule, or the one whose
// level lies within half a percentage point of alpha.
func pickCritical(res *Result, alpha float64, rule Rule) (CriticalValue, error) {
	if len(res.crit) == 0 {
		return CriticalValue{}, &UndecidableError{Test: res.test, Detail: "no critical values"}
	}
	if rule.Key != "" {
		for _, c := range res.crit {
			if c.Label == rule.Key {
				return c, nil
			}
		}
		return CriticalValue{}, &UndecidableError{Test: res.test, Detail: fmt.Sprintf("no critical value %q", rule.Key)}
	}
	target := alpha * 100
	best, dist := -1, math.Inf(1)
	for i, c := range res.crit {
		if math.IsNaN(c.Level) {
			continue
		}
		if d := math.Abs(c.Level - target); d < dist {
			best, dist = i, d
		}
	}
	if best < 0 || dist > 0.5+1e-9 {
		return CriticalValue{}, &UndecidableError{
			Test:   res.test,
			Detail: fmt.Sprintf("no tabulated level within 0.5 points of %g%%", target),
		}
	}
	return res.crit[best], nil
}
