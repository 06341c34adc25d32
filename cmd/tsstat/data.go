package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sartorproj/tsstat"
	"github.com/sartorproj/tsstat/timeseries"
)

// dataFlags select the input columns and the test options.
type dataFlags struct {
	file        string
	column      string
	y           string
	exog        []string
	options     []string
	dropMissing bool
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "CSV file, or - for stdin")
	cmd.Flags().StringVarP(&f.column, "column", "c", "", "value column (default from config, then the last column)")
	cmd.Flags().StringVar(&f.y, "y", "", "second series column for bivariate tests")
	cmd.Flags().StringSliceVar(&f.exog, "exog", nil, "regressor columns for regression tests")
	cmd.Flags().StringArrayVarP(&f.options, "option", "o", nil, "test option as key=value, repeatable")
	cmd.Flags().BoolVar(&f.dropMissing, "drop-missing", false, "drop missing observations where the test allows gaps")
	_ = cmd.MarkFlagRequired("file")
}

// input loads the selected columns and shapes them for the test.
func (a *app) input(cmd *cobra.Command, f *dataFlags) (*tsstat.Input, error) {
	if f.y != "" && len(f.exog) > 0 {
		return nil, fmt.Errorf("--y and --exog are mutually exclusive")
	}
	opts := a.cfg.CSVOptions()
	if f.column != "" {
		opts.ValueColumn = f.column
	}
	if f.y != "" {
		opts.Columns = []string{f.y}
	}
	opts.Columns = append(opts.Columns, f.exog...)

	var r io.Reader = cmd.InOrStdin()
	if f.file != "-" {
		file, err := os.Open(f.file)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}
	frame, err := timeseries.ReadFrame(r, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.file, err)
	}

	// The value column is always loaded first.
	x, err := frame.Column(frame.Names()[0])
	if err != nil {
		return nil, err
	}
	switch {
	case f.y != "":
		y, err := frame.Column(f.y)
		if err != nil {
			return nil, err
		}
		return tsstat.Bivariate(x, y), nil
	case len(f.exog) > 0:
		rows := make([][]float64, len(x))
		for i := range rows {
			rows[i] = make([]float64, len(f.exog))
		}
		for j, name := range f.exog {
			col, err := frame.Column(name)
			if err != nil {
				return nil, err
			}
			for i, v := range col {
				rows[i][j] = v
			}
		}
		return tsstat.Regression(x, rows), nil
	}
	return tsstat.Univariate(x), nil
}

// testOptions parses the -o pairs. Missing values are dropped when the flag
// or the configuration asks for it.
func (a *app) testOptions(f *dataFlags) ([]tsstat.Option, error) {
	var opts []tsstat.Option
	for _, kv := range f.options {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("option %q: want key=value", kv)
		}
		opt, err := tsstat.ParseOption(name, value)
		if err != nil {
			return nil, err
		}
		opts = append(opts, opt)
	}
	if f.dropMissing || a.cfg.DropMissing {
		opts = append(opts, tsstat.DropMissing())
	}
	return opts, nil
}
