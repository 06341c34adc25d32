// Package timeseries provides the series container and the transformations the
// statistical routines share.
package timeseries

import (
	"errors"
	"math"
	"time"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Series represents a time series with optional timestamps and values.
type Series struct {
	Timestamps []time.Time
	Values     []float64
	Name       string
}

// New creates a new series from values. The values are copied.
func New(values []float64) *Series {
	v := make([]float64, len(values))
	copy(v, values)
	return &Series{Values: v}
}

// NewWithTimestamps creates a time series with explicit timestamps.
func NewWithTimestamps(timestamps []time.Time, values []float64) (*Series, error) {
	if len(timestamps) != len(values) {
		return nil, errors.New("timestamps and values must have the same length")
	}
	s := New(values)
	s.Timestamps = make([]time.Time, len(timestamps))
	copy(s.Timestamps, timestamps)
	return s, nil
}

// Len returns the length of the series.
func (s *Series) Len() int {
	return len(s.Values)
}

// Mean calculates the arithmetic mean of the series.
func (s *Series) Mean() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	return stat.Mean(s.Values, nil)
}

// Variance calculates the sample variance (n-1 denominator) of the series.
func (s *Series) Variance() float64 {
	if len(s.Values) < 2 {
		return 0
	}
	return stat.Variance(s.Values, nil)
}

// Std calculates the sample standard deviation of the series.
func (s *Series) Std() float64 {
	return math.Sqrt(s.Variance())
}

// PopStd calculates the population standard deviation (n denominator).
func (s *Series) PopStd() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sd, err := mstats.StandardDeviationPopulation(s.Values)
	if err != nil {
		return 0
	}
	return sd
}

// Min returns the minimum value in the series.
func (s *Series) Min() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Min(s.Values)
}

// Max returns the maximum value in the series.
func (s *Series) Max() float64 {
	if len(s.Values) == 0 {
		return math.NaN()
	}
	return floats.Max(s.Values)
}

// Median returns the median value of the series.
func (s *Series) Median() float64 {
	m, err := mstats.Median(s.Values)
	if err != nil {
		return math.NaN()
	}
	return m
}

// IsConstant reports whether every value equals the first one.
func (s *Series) IsConstant() bool {
	for _, v := range s.Values {
		if v != s.Values[0] {
			return false
		}
	}
	return true
}

// HasNaN reports whether the series contains missing values.
func (s *Series) HasNaN() bool {
	for _, v := range s.Values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// DropNaN returns a copy of the series without missing values.
func (s *Series) DropNaN() *Series {
	withTS := len(s.Timestamps) == len(s.Values)
	out := &Series{Name: s.Name, Values: make([]float64, 0, len(s.Values))}
	for i, v := range s.Values {
		if math.IsNaN(v) {
			continue
		}
		out.Values = append(out.Values, v)
		if withTS {
			out.Timestamps = append(out.Timestamps, s.Timestamps[i])
		}
	}
	return out
}

// Diff calculates the first difference of the series (d=1).
func (s *Series) Diff() *Series {
	return s.DiffN(1)
}

// DiffN applies first differencing n times.
func (s *Series) DiffN(n int) *Series {
	if n <= 0 {
		return s.Copy()
	}
	out := s
	for i := 0; i < n; i++ {
		out = out.lagDiff(1, "_diff")
	}
	return out
}

// SeasonalDiff calculates the seasonal difference y[t] - y[t-m].
func (s *Series) SeasonalDiff(m int) *Series {
	return s.lagDiff(m, "_seasonal_diff")
}

func (s *Series) lagDiff(k int, suffix string) *Series {
	if k <= 0 || len(s.Values) <= k {
		return &Series{Values: []float64{}, Name: s.Name + suffix}
	}

	result := make([]float64, len(s.Values)-k)
	for i := k; i < len(s.Values); i++ {
		result[i-k] = s.Values[i] - s.Values[i-k]
	}

	var timestamps []time.Time
	if len(s.Timestamps) == len(s.Values) {
		timestamps = make([]time.Time, len(result))
		copy(timestamps, s.Timestamps[k:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + suffix,
	}
}

// Lag returns the series shifted by k, aligned with Values[k:].
func (s *Series) Lag(k int) *Series {
	if k <= 0 || k >= len(s.Values) {
		return &Series{Values: []float64{}}
	}

	result := make([]float64, len(s.Values)-k)
	copy(result, s.Values[:len(s.Values)-k])

	var timestamps []time.Time
	if len(s.Timestamps) == len(s.Values) {
		timestamps = make([]time.Time, len(result))
		copy(timestamps, s.Timestamps[k:])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     result,
		Name:       s.Name + "_lag",
	}
}

// Slice returns a slice of the series from start to end (exclusive).
func (s *Series) Slice(start, end int) *Series {
	if start < 0 {
		start = 0
	}
	if end > len(s.Values) {
		end = len(s.Values)
	}
	if start >= end {
		return &Series{Values: []float64{}}
	}

	values := make([]float64, end-start)
	copy(values, s.Values[start:end])

	var timestamps []time.Time
	if len(s.Timestamps) >= end {
		timestamps = make([]time.Time, len(values))
		copy(timestamps, s.Timestamps[start:end])
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Copy creates a deep copy of the series.
func (s *Series) Copy() *Series {
	values := make([]float64, len(s.Values))
	copy(values, s.Values)

	var timestamps []time.Time
	if s.Timestamps != nil {
		timestamps = make([]time.Time, len(s.Timestamps))
		copy(timestamps, s.Timestamps)
	}

	return &Series{
		Timestamps: timestamps,
		Values:     values,
		Name:       s.Name,
	}
}

// Normalize standardizes the series (z-score with the sample standard deviation).
// Missing values stay missing.
func (s *Series) Normalize() *Series {
	clean := s.DropNaN()
	mean := clean.Mean()
	std := clean.Std()

	out := s.Copy()
	out.Name = s.Name + "_normalized"
	if std == 0 {
		return out
	}
	for i, v := range out.Values {
		out.Values[i] = (v - mean) / std
	}
	return out
}

// Embed builds the time-delay embedding of the series. Row i holds
// Values[i], Values[i+delay], ..., Values[i+(order-1)*delay].
func (s *Series) Embed(order, delay int) ([][]float64, error) {
	if order < 1 || delay < 1 {
		return nil, errors.New("order and delay must be positive")
	}
	rows := len(s.Values) - (order-1)*delay
	if rows < 1 {
		return nil, errors.New("series too short for embedding")
	}
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, order)
		for j := range row {
			row[j] = s.Values[i+j*delay]
		}
		out[i] = row
	}
	return out, nil
}

// Windows splits the series into consecutive non-overlapping windows of the
// given width. The final window may be shorter.
func (s *Series) Windows(width int) [][]float64 {
	if width <= 0 {
		return nil
	}
	var out [][]float64
	for lo := 0; lo < len(s.Values); lo += width {
		hi := min(lo+width, len(s.Values))
		out = append(out, s.Values[lo:hi])
	}
	return out
}
