package tsstat

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// Option is a named, test-specific parameter. Values are checked against the
// option table when a test is dispatched.
type Option struct {
	name  string
	value any
}

// Name returns the option name.
func (o Option) Name() string { return o.name }

// Value returns the option value as supplied.
func (o Option) Value() any { return o.value }

// With builds an option from a name and a value. The value may be of the
// native type or its text form.
func With(name string, value any) Option { return Option{name: name, value: value} }

func WithLags(n int) Option                { return With("lags", n) }
func WithRegression(r string) Option       { return With("regression", r) }
func WithAutolag(method string) Option     { return With("autolag", method) }
func WithPeriod(m int) Option              { return With("period", m) }
func WithTolerance(r float64) Option       { return With("tolerance", r) }
func WithThreshold(t float64) Option       { return With("threshold", t) }
func WithOrder(order int) Option           { return With("order", order) }
func WithDelay(delay int) Option           { return With("delay", delay) }
func WithMetric(metric string) Option      { return With("metric", metric) }
func WithMethod(method string) Option      { return With("method", method) }
func WithFreq(freq int) Option             { return With("freq", freq) }
func WithScale(scale bool) Option          { return With("scale", scale) }
func WithDecomposition(kind string) Option { return With("decomposition", kind) }

// DropMissing lets tests that tolerate gaps drop NaN observations instead of
// rejecting the input.
func DropMissing() Option { return With("drop_missing", true) }

// Using selects the test run by the Is* checkers.
func Using(test TestID) Option { return With("test", string(test)) }

// WithAlpha sets the significance level used by the Is* checkers.
func WithAlpha(alpha float64) Option { return With("alpha", alpha) }

// ParseOption converts a name=value pair from text, as given on a command
// line, into an Option.
func ParseOption(name, value string) (Option, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	spec, ok := optionTable[name]
	if !ok {
		return Option{}, invalid("", UnsupportedOption, "unknown option %q", name)
	}
	if _, err := spec.coerce(strings.TrimSpace(value)); err != nil {
		return Option{}, invalid("", spec.reason(), "%s: %v", name, err)
	}
	return With(name, strings.TrimSpace(value)), nil
}

// OptionNames returns every option name the package understands, sorted.
func OptionNames() []string {
	names := make([]string, 0, len(optionTable))
	for n := range optionTable {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Options is the checked option set handed to adapters.
type Options struct {
	DropMissing bool
	Test        TestID
	Alpha       float64 // 0 when not given

	values map[string]any
}

// Has reports whether the caller supplied the named option.
func (o *Options) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// Int returns the named option or def when it was not supplied.
func (o *Options) Int(name string, def int) int {
	if v, ok := o.values[name].(int); ok {
		return v
	}
	return def
}

// Float returns the named option or def when it was not supplied.
func (o *Options) Float(name string, def float64) float64 {
	if v, ok := o.values[name].(float64); ok {
		return v
	}
	return def
}

// Bool returns the named option or def when it was not supplied.
func (o *Options) Bool(name string, def bool) bool {
	if v, ok := o.values[name].(bool); ok {
		return v
	}
	return def
}

// String returns the named option or def when it was not supplied.
func (o *Options) String(name string, def string) string {
	if v, ok := o.values[name].(string); ok {
		return v
	}
	return def
}

// universal options are accepted by every test.
var universal = []string{"drop_missing", "test", "alpha"}

// buildOptions checks opts against the entry and collects their values.
func buildOptions(e *Entry, opts []Option) (*Options, error) {
	o := &Options{values: make(map[string]any)}
	for _, opt := range opts {
		spec, ok := optionTable[opt.name]
		if !ok {
			return nil, invalid(e.ID, UnsupportedOption, "unknown option %q", opt.name)
		}
		if !slices.Contains(universal, opt.name) && !slices.Contains(e.Accepts, opt.name) {
			return nil, invalid(e.ID, UnsupportedOption, "%s does not accept option %q", e.ID, opt.name)
		}
		v, err := spec.coerce(opt.value)
		if err != nil {
			return nil, invalid(e.ID, spec.reason(), "%s: %v", opt.name, err)
		}
		switch opt.name {
		case "drop_missing":
			o.DropMissing = v.(bool)
		case "test":
			o.Test = TestID(v.(string))
		case "alpha":
			o.Alpha = v.(float64)
		default:
			o.values[opt.name] = v
		}
	}
	for _, name := range e.Requires {
		if !o.Has(name) {
			return nil, invalid(e.ID, MissingOption, "%s requires option %q", e.ID, name)
		}
	}
	return o, nil
}

type optionKind int

const (
	intKind optionKind = iota
	floatKind
	boolKind
	enumKind
	stringKind
)

type optionSpec struct {
	kind  optionKind
	check func(v any) error
	enum  []string
	alpha bool
}

func (s optionSpec) reason() Reason {
	if s.alpha {
		return InvalidAlpha
	}
	return InvalidOption
}

func (s optionSpec) coerce(raw any) (any, error) {
	var v any
	var err error
	switch s.kind {
	case intKind:
		v, err = toInt(raw)
	case floatKind:
		v, err = toFloat(raw)
	case boolKind:
		v, err = toBool(raw)
	case enumKind:
		var str string
		if str, err = toString(raw); err == nil {
			str = strings.ToLower(str)
			if !slices.Contains(s.enum, str) {
				err = fmt.Errorf("%q is not one of %s", str, strings.Join(s.enum, ", "))
			}
			v = str
		}
	case stringKind:
		v, err = toString(raw)
	}
	if err != nil {
		return nil, err
	}
	if s.check != nil {
		if err := s.check(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func toInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("%v is not an integer", v)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v)
		}
		return n, nil
	}
	return 0, fmt.Errorf("%T is not an integer", raw)
}

func toFloat(raw any) (float64, error) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%q is not a number", v)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%T is not a number", raw)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not finite", f)
	}
	return f, nil
}

func toBool(raw any) (bool, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("%q is not a boolean", v)
		}
		return b, nil
	}
	return false, fmt.Errorf("%T is not a boolean", raw)
}

func toString(raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case TestID:
		return string(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return "", fmt.Errorf("%T is not a string", raw)
}

func atLeast[T int | float64](lo T) func(any) error {
	return func(v any) error {
		if x := v.(T); x < lo {
			return fmt.Errorf("%v is below %v", x, lo)
		}
		return nil
	}
}

func above(lo float64) func(any) error {
	return func(v any) error {
		if x := v.(float64); x <= lo {
			return fmt.Errorf("%v must be greater than %v", x, lo)
		}
		return nil
	}
}

func openInterval(lo, hi float64) func(any) error {
	return func(v any) error {
		if x := v.(float64); x <= lo || x >= hi {
			return fmt.Errorf("%v is outside (%v, %v)", x, lo, hi)
		}
		return nil
	}
}

func intOpt(lo int) optionSpec { return optionSpec{kind: intKind, check: atLeast(lo)} }

func floatOpt(check func(any) error) optionSpec { return optionSpec{kind: floatKind, check: check} }

func boolOpt() optionSpec { return optionSpec{kind: boolKind} }

func enumOpt(values ...string) optionSpec { return optionSpec{kind: enumKind, enum: values} }

var optionTable = map[string]optionSpec{
	"drop_missing": boolOpt(),
	"test":         {kind: stringKind},
	"alpha":        {kind: floatKind, check: openInterval(0, 1), alpha: true},

	// stationarity
	"lags":       intOpt(0),
	"regression": enumOpt("n", "c", "t", "ct", "ctt", "nc"),
	"autolag":    enumOpt("aic", "bic", "t-stat", "tstat", "none"),
	"lshort":     boolOpt(),
	"test_alpha": floatOpt(openInterval(0, 1)),
	"trim":       floatOpt(openInterval(0, 0.5)),
	"debiased":   boolOpt(),
	"robust":     boolOpt(),
	"overlap":    boolOpt(),

	// normality
	"dist": enumOpt("norm"),

	// linearity and heteroscedasticity
	"power":       intOpt(2),
	"test_type":   enumOpt("fitted", "exog"),
	"use_f":       boolOpt(),
	"skip":        intOpt(0),
	"frac":        floatOpt(openInterval(0, 1)),
	"center":      floatOpt(openInterval(0, 1)),
	"ddof":        intOpt(0),
	"split":       floatOpt(atLeast(0.0)),
	"drop":        floatOpt(atLeast(0.0)),
	"alternative": enumOpt("increasing", "decreasing", "two-sided"),

	// correlation
	"model_df":   intOpt(0),
	"box_pierce": boolOpt(),
	"adjusted":   boolOpt(),

	// seasonality
	"period":        intOpt(2),
	"max_lag":       intOpt(0),
	"lag_method":    enumOpt("aic", "bic", "fixed"),
	"diff":          boolOpt(),
	"residuals":     boolOpt(),
	"autoarima":     boolOpt(),
	"decomposition": enumOpt("classical", "stl"),
	"threshold":     floatOpt(nil),

	// regularity
	"order":     intOpt(2),
	"delay":     intOpt(1),
	"tolerance": floatOpt(above(0)),
	"metric":    enumOpt("chebyshev", "euclidean"),
	"normalize": boolOpt(),
	"sf":        floatOpt(above(0)),
	"method":    enumOpt("fft", "welch"),
	"nperseg":   intOpt(2),

	// stability
	"freq":  intOpt(0),
	"scale": boolOpt(),
}
