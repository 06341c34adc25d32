package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sartorproj/tsstat/internal/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.PathEnv, "")
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

// writeCSV writes a date column, a seasonal series y, a noise column x and a
// response z = 1 + 2x + e.
func writeCSV(t *testing.T, n int, na ...int) string {
	t.Helper()
	r := rand.New(rand.NewPCG(7, 11))
	var b strings.Builder
	b.WriteString("date,y,x,z\n")
	for i := 0; i < n; i++ {
		x := r.NormFloat64()
		y := fmt.Sprintf("%g", 10*math.Sin(2*math.Pi*float64(i)/12)+r.NormFloat64())
		for _, j := range na {
			if i == j {
				y = "NA"
			}
		}
		fmt.Fprintf(&b, "2020-01-%02d,%s,%g,%g\n", i%28+1, y, x, 1+2*x+r.NormFloat64())
	}
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))
	return path
}

func TestList(t *testing.T) {
	out, err := execute(t, "list", "stationarity")
	require.NoError(t, err)
	assert.Contains(t, out, "adf*")
	assert.Contains(t, out, "kpss")
	assert.NotContains(t, out, "normality")

	out, err = execute(t, "list", "--output", "json")
	require.NoError(t, err)
	var records []catalogRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	assert.Len(t, records, 37)

	_, err = execute(t, "list", "astrology")
	assert.Error(t, err)
}

func TestRunJSON(t *testing.T) {
	path := writeCSV(t, 120)
	out, err := execute(t, "run", "correlation", "ljungbox", "-f", path, "-c", "x", "-o", "lags=4", "--output", "json")
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "alb", rec["test"])
	assert.Equal(t, "correlation", rec["category"])
	assert.Contains(t, rec, "p_value")
	assert.EqualValues(t, 4, rec["extra"].(map[string]any)["lags"])
}

func TestRunText(t *testing.T) {
	path := writeCSV(t, 120)
	out, err := execute(t, "run", "stationarity", "kpss", "-f", path, "-c", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "statistic")
	assert.Contains(t, out, "critical 1%")
}

func TestRunRegression(t *testing.T) {
	path := writeCSV(t, 120)
	out, err := execute(t, "check", "linearity", "rr", "-f", path, "-c", "z", "--exog", "x", "--output", "json")
	require.NoError(t, err)

	var rec resultRecord
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	require.NotNil(t, rec.Verdict)
	assert.Equal(t, "p-value", rec.Verdict.Basis)
}

func TestRunBivariate(t *testing.T) {
	path := writeCSV(t, 120)
	_, err := execute(t, "run", "correlation", "ccf", "-f", path, "-c", "z", "--y", "x")
	assert.NoError(t, err)

	_, err = execute(t, "run", "correlation", "ccf", "-f", path, "-c", "z", "--y", "x", "--exog", "x")
	assert.Error(t, err)
}

func TestCheckDefaultTest(t *testing.T) {
	path := writeCSV(t, 144)
	out, err := execute(t, "check", "seasonality", "-f", path, "-o", "period=12", "--alpha", "0.01")
	require.NoError(t, err)
	assert.Contains(t, out, "the series is seasonal")
	assert.Contains(t, out, "qs")
}

func TestAllRecordsFailures(t *testing.T) {
	path := writeCSV(t, 26)
	out, err := execute(t, "all", "stationarity", "-f", path, "-c", "x", "--output", "json")
	require.NoError(t, err)

	var records []resultRecord
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 7)
	for _, r := range records {
		if r.Test == "za" {
			assert.Contains(t, r.Error, "too_short")
		}
	}
}

func TestMissingValues(t *testing.T) {
	path := writeCSV(t, 144, 10, 50)
	_, err := execute(t, "run", "correlation", "acf", "-f", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non_finite")

	_, err = execute(t, "run", "correlation", "acf", "-f", path, "--drop-missing")
	assert.NoError(t, err)
}

func TestFeatures(t *testing.T) {
	path := writeCSV(t, 144)
	out, err := execute(t, "features", "-f", path, "--period", "12", "--output", "json")
	require.NoError(t, err)

	var f map[string]float64
	require.NoError(t, json.Unmarshal([]byte(out), &f))
	assert.Greater(t, f["seasonal_strength"], 0.64)
}

func TestBadOptions(t *testing.T) {
	path := writeCSV(t, 60)
	_, err := execute(t, "run", "normality", "jb", "-f", path, "-o", "lags")
	assert.Error(t, err)

	_, err = execute(t, "run", "normality", "jb", "-f", path, "-o", "lags=2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported_option")

	_, err = execute(t, "run", "normality", "jb", "-f", path, "--output", "xml")
	assert.Error(t, err)

	_, err = execute(t, "run", "normality", "jb")
	assert.Error(t, err, "--file is required")
}

func TestNumberMarshalsNaNAsNull(t *testing.T) {
	b, err := json.Marshal(map[string]number{"a": number(math.NaN()), "b": 1.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": null, "b": 1.5}`, string(b))
}
