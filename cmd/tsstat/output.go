package main

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"
	"text/tabwriter"

	"github.com/sartorproj/tsstat"
)

// number marshals NaN and infinities as null.
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

type verdictRecord struct {
	Alpha    number `json:"alpha"`
	Positive bool   `json:"positive"`
	Claim    string `json:"claim"`
	Basis    string `json:"basis"`
	Level    string `json:"level,omitempty"`
}

type resultRecord struct {
	Category       string            `json:"category"`
	Test           string            `json:"test"`
	Statistic      *number           `json:"statistic,omitempty"`
	PValue         *number           `json:"p_value,omitempty"`
	CriticalValues map[string]number `json:"critical_values,omitempty"`
	Extra          map[string]number `json:"extra,omitempty"`
	Values         []number          `json:"values,omitempty"`
	Verdict        *verdictRecord    `json:"verdict,omitempty"`
	Error          string            `json:"error,omitempty"`

	levels []string // critical value labels in result order
}

func newRecord(c tsstat.Category, test tsstat.TestID, res *tsstat.Result, v *tsstat.Verdict, err error) resultRecord {
	rec := resultRecord{Category: string(c), Test: string(test)}
	if err != nil {
		rec.Error = err.Error()
	}
	if res != nil {
		stat := number(res.Statistic())
		rec.Statistic = &stat
		if p, ok := res.PValue(); ok {
			pv := number(p)
			rec.PValue = &pv
		}
		for _, cv := range res.CriticalValues() {
			if rec.CriticalValues == nil {
				rec.CriticalValues = make(map[string]number)
			}
			rec.CriticalValues[cv.Label] = number(cv.Value)
			rec.levels = append(rec.levels, cv.Label)
		}
		if extra := res.Extra(); len(extra) > 0 {
			rec.Extra = make(map[string]number, len(extra))
			for k, x := range extra {
				rec.Extra[k] = number(x)
			}
		}
		for _, x := range res.Values() {
			rec.Values = append(rec.Values, number(x))
		}
	}
	if v != nil {
		rec.Verdict = &verdictRecord{
			Alpha:    number(v.Alpha),
			Positive: v.Positive,
			Claim:    v.String(),
			Basis:    string(v.Basis),
			Level:    v.Level,
		}
	}
	return rec
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeText(w io.Writer, records ...resultRecord) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\t%s\n", rec.Category, rec.Test)
		if rec.Error != "" {
			fmt.Fprintf(tw, "  error\t%s\n", rec.Error)
			continue
		}
		if rec.Statistic != nil {
			fmt.Fprintf(tw, "  statistic\t%s\n", formatNumber(*rec.Statistic))
		}
		if rec.PValue != nil {
			fmt.Fprintf(tw, "  p-value\t%s\n", formatNumber(*rec.PValue))
		}
		for _, label := range rec.levels {
			fmt.Fprintf(tw, "  critical %s\t%s\n", label, formatNumber(rec.CriticalValues[label]))
		}
		for _, k := range slices.Sorted(maps.Keys(rec.Extra)) {
			fmt.Fprintf(tw, "  %s\t%s\n", k, formatNumber(rec.Extra[k]))
		}
		if rec.Verdict != nil {
			fmt.Fprintf(tw, "  verdict\t%s (alpha %s, %s)\n", rec.Verdict.Claim, formatNumber(rec.Verdict.Alpha), basis(rec.Verdict))
		}
	}
	return tw.Flush()
}

func basis(v *verdictRecord) string {
	if v.Level == "" {
		return v.Basis
	}
	return v.Basis + " " + v.Level
}

func formatNumber(n number) string {
	return strconv.FormatFloat(float64(n), 'g', 6, 64)
}
