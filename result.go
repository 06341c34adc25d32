package tsstat

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

// RawResult is whatever a numerical routine returned. It never leaves the
// package.
type RawResult any

// CriticalValue is one tabulated threshold of a test statistic. Level is the
// significance level in percent, or NaN for labels such as "threshold".
type CriticalValue struct {
	Label string
	Level float64
	Value float64
}

// Result is the normalized outcome of a test. It is immutable; the accessors
// return copies.
type Result struct {
	test     TestID
	category Category
	stat     float64
	pvalue   float64
	hasP     bool
	crit     []CriticalValue
	extra    map[string]float64
	values   []float64
}

// Test returns the canonical identifier of the test that produced r.
func (r *Result) Test() TestID { return r.test }

// Category returns the category the test belongs to.
func (r *Result) Category() Category { return r.category }

// Statistic returns the test statistic. It may be NaN.
func (r *Result) Statistic() float64 { return r.stat }

// PValue returns the p-value and whether the test produces one.
func (r *Result) PValue() (float64, bool) { return r.pvalue, r.hasP }

// CriticalValues returns the tabulated critical values ordered by label.
func (r *Result) CriticalValues() []CriticalValue {
	return append([]CriticalValue(nil), r.crit...)
}

// CriticalValue returns the critical value stored under label.
func (r *Result) CriticalValue(label string) (float64, bool) {
	for _, c := range r.crit {
		if c.Label == label {
			return c.Value, true
		}
	}
	return 0, false
}

// Extra returns a copy of the test-specific auxiliary outputs. Counts are
// stored as floats and flags as 0 or 1.
func (r *Result) Extra() map[string]float64 { return maps.Clone(r.extra) }

// Values returns a copy of the array-valued output, if any.
func (r *Result) Values() []float64 { return clone(r.values) }

func (r *Result) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: statistic=%.6g", r.test, r.stat)
	if r.hasP {
		fmt.Fprintf(&b, " p=%.6g", r.pvalue)
	}
	for _, c := range r.crit {
		fmt.Fprintf(&b, " cv[%s]=%.6g", c.Label, c.Value)
	}
	return b.String()
}

// builder assembles a Result and checks it for internal consistency.
type builder struct {
	r      Result
	labels []string
	cvs    []float64
	err    error
}

func newResult(stat float64) *builder {
	return &builder{r: Result{stat: stat}}
}

func (b *builder) p(p float64) *builder {
	b.r.pvalue, b.r.hasP = p, true
	return b
}

// critMap adds critical values keyed by label, ordered by ascending level.
func (b *builder) critMap(m map[string]float64) *builder {
	labels := make([]string, 0, len(m))
	for l := range m {
		labels = append(labels, l)
	}
	sortLabels(labels)
	for _, l := range labels {
		b.labels = append(b.labels, l)
		b.cvs = append(b.cvs, m[l])
	}
	return b
}

func (b *builder) crit(labels []string, values []float64) *builder {
	b.labels = append(b.labels, labels...)
	b.cvs = append(b.cvs, values...)
	return b
}

// extra records a scalar auxiliary output; v must be a float64, int or bool.
func (b *builder) extra(key string, v any) *builder {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case int:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	default:
		if b.err == nil {
			b.err = fmt.Errorf("extra %q has non-scalar type %T", key, v)
		}
		return b
	}
	if b.r.extra == nil {
		b.r.extra = make(map[string]float64)
	}
	b.r.extra[key] = f
	return b
}

func (b *builder) seq(v []float64) *builder {
	b.r.values = clone(v)
	return b
}

// build validates the assembled result. needDecision requires a p-value or
// at least one critical value.
func (b *builder) build(needDecision bool) (*Result, error) {
	r := b.r
	if b.err != nil {
		return nil, &MalformedResultError{Detail: b.err.Error()}
	}
	if r.hasP && !math.IsNaN(r.pvalue) && (r.pvalue < 0 || r.pvalue > 1) {
		return nil, &MalformedResultError{Detail: fmt.Sprintf("p-value %g outside [0, 1]", r.pvalue)}
	}
	if len(b.labels) != len(b.cvs) {
		return nil, &MalformedResultError{Detail: fmt.Sprintf("%d critical value labels for %d values", len(b.labels), len(b.cvs))}
	}
	for i, l := range b.labels {
		r.crit = append(r.crit, CriticalValue{Label: l, Level: percentLevel(l), Value: b.cvs[i]})
	}
	if needDecision && !r.hasP && len(r.crit) == 0 {
		return nil, &MalformedResultError{Detail: "neither a p-value nor critical values"}
	}
	return &r, nil
}

// percentLevel parses labels such as "5%" or "2.5%" and returns NaN otherwise.
func percentLevel(label string) float64 {
	s, ok := strings.CutSuffix(strings.TrimSpace(label), "%")
	if !ok {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func sortLabels(labels []string) {
	slices.SortFunc(labels, func(a, b string) int {
		la, lb := percentLevel(a), percentLevel(b)
		switch {
		case math.IsNaN(la) && math.IsNaN(lb):
			return strings.Compare(a, b)
		case math.IsNaN(la):
			return 1
		case math.IsNaN(lb):
			return -1
		}
		return cmp.Compare(la, lb)
	})
}

// as asserts the raw shape an extractor expects.
func as[T any](raw RawResult) (T, error) {
	v, ok := raw.(T)
	if !ok {
		var want T
		return want, malformed(fmt.Sprintf("%T", want), raw)
	}
	return v, nil
}
