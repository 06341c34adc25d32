package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sartorproj/tsstat"
)

type catalogRecord struct {
	Category  string   `json:"category"`
	Test      string   `json:"test"`
	Default   bool     `json:"default,omitempty"`
	Aliases   []string `json:"aliases,omitempty"`
	Input     []string `json:"input"`
	Rule      string   `json:"rule"`
	MinLength string   `json:"min_length"`
	Options   []string `json:"options,omitempty"`
	Required  []string `json:"required,omitempty"`
	Gaps      bool     `json:"gaps,omitempty"`
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [category]",
		Short: "List the available tests",
		Long: `List every test with its aliases, accepted input, decision rule and
minimum length. The rule reads "+" when rejecting the null supports the
category's claim and "-" when it refutes it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			categories := tsstat.Categories()
			if len(args) == 1 {
				c, err := tsstat.ParseCategory(args[0])
				if err != nil {
					return err
				}
				categories = []tsstat.Category{c}
			}

			var records []catalogRecord
			for _, c := range categories {
				for _, e := range tsstat.Catalog(c) {
					rec := catalogRecord{
						Category:  string(c),
						Test:      string(e.ID),
						Default:   e.ID == c.Default(),
						Aliases:   e.Aliases,
						Rule:      e.Rule.String(),
						MinLength: e.MinDoc,
						Options:   e.Accepts,
						Required:  e.Requires,
						Gaps:      e.Gaps,
					}
					for _, s := range e.Shapes {
						rec.Input = append(rec.Input, s.String())
					}
					records = append(records, rec)
				}
			}
			if a.json() {
				return writeJSON(cmd.OutOrStdout(), records)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tTEST\tALIASES\tINPUT\tRULE\tMIN")
			for _, r := range records {
				test := r.Test
				if r.Default {
					test += "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Category, test,
					strings.Join(r.Aliases, ","), strings.Join(r.Input, ","), r.Rule, r.MinLength)
			}
			return tw.Flush()
		},
	}
}

func newRunCmd(a *app) *cobra.Command {
	var data dataFlags
	cmd := &cobra.Command{
		Use:   "run <category> <test>",
		Short: "Run one test and print its normalized result",
		Long: `Run one test and print its statistic, p-value, critical values and extras.

Example: tsstat run stationarity kpss -f sales.csv -c units -o regression=ct -o lags=4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := tsstat.ParseCategory(args[0])
			if err != nil {
				return err
			}
			in, opts, err := a.prepare(cmd, &data)
			if err != nil {
				return err
			}
			res, err := a.dispatcher.Run(cmd.Context(), c, tsstat.TestID(args[1]), in, opts...)
			if err != nil {
				return err
			}
			return a.print(cmd, newRecord(c, res.Test(), res, nil, nil))
		},
	}
	data.register(cmd)
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var data dataFlags
	var alpha float64
	cmd := &cobra.Command{
		Use:   "check <category> [test]",
		Short: "Decide a category's claim at a significance level",
		Long: `Decide whether the data are stationary, normal, linear, heteroscedastic,
correlated, regular, seasonal or stable. The category's default test is used
when none is named.

Example: tsstat check stationarity kpss -f sales.csv --alpha 0.01`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := tsstat.ParseCategory(args[0])
			if err != nil {
				return err
			}
			test := c.Default()
			if len(args) == 2 {
				test = tsstat.TestID(args[1])
			}
			in, opts, err := a.prepare(cmd, &data)
			if err != nil {
				return err
			}
			res, v, err := a.dispatcher.Evaluate(cmd.Context(), c, test, in, a.alpha(cmd, alpha), opts...)
			if err != nil {
				return err
			}
			return a.print(cmd, newRecord(c, res.Test(), res, &v, nil))
		},
	}
	data.register(cmd)
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "significance level (default from config)")
	return cmd
}

func newAllCmd(a *app) *cobra.Command {
	var data dataFlags
	var alpha float64
	cmd := &cobra.Command{
		Use:   "all <category>",
		Short: "Run every test of a category",
		Long: `Run every test of a category and print each result with its verdict.
Options a test does not accept are skipped for that test; a failing test
is reported without stopping the others.

Example: tsstat all normality -f residuals.csv --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := tsstat.ParseCategory(args[0])
			if err != nil {
				return err
			}
			in, opts, err := a.prepare(cmd, &data)
			if err != nil {
				return err
			}
			outcomes, err := a.dispatcher.CheckAll(cmd.Context(), c, in, a.alpha(cmd, alpha), opts...)
			if err != nil {
				return err
			}
			records := make([]resultRecord, len(outcomes))
			for i, o := range outcomes {
				records[i] = newRecord(c, o.Test, o.Result, o.Verdict, o.Err)
			}
			return a.print(cmd, records...)
		},
	}
	data.register(cmd)
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "significance level (default from config)")
	return cmd
}

func newFeaturesCmd(a *app) *cobra.Command {
	var data dataFlags
	var period int
	var decomposition string
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Print seasonal strength, trend strength and spikiness",
		Long: `Decompose the series and print its seasonal strength, trend strength and
spikiness.

Example: tsstat features -f sales.csv -c units --period 12 --decomposition stl`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, _, err := a.prepare(cmd, &data)
			if err != nil {
				return err
			}
			f, err := tsstat.Features(in, period, tsstat.WithDecomposition(decomposition))
			if err != nil {
				return err
			}
			if a.json() {
				return writeJSON(cmd.OutOrStdout(), map[string]number{
					"seasonal_strength": number(f.SeasonalStrength),
					"trend_strength":    number(f.TrendStrength),
					"spikiness":         number(f.Spikiness),
				})
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "seasonal strength\t%s\n", formatNumber(number(f.SeasonalStrength)))
			fmt.Fprintf(tw, "trend strength\t%s\n", formatNumber(number(f.TrendStrength)))
			fmt.Fprintf(tw, "spikiness\t%s\n", formatNumber(number(f.Spikiness)))
			return tw.Flush()
		},
	}
	data.register(cmd)
	cmd.Flags().IntVar(&period, "period", 0, "seasonal period")
	cmd.Flags().StringVar(&decomposition, "decomposition", "classical", "decomposition: classical|stl")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

func (a *app) prepare(cmd *cobra.Command, data *dataFlags) (*tsstat.Input, []tsstat.Option, error) {
	in, err := a.input(cmd, data)
	if err != nil {
		return nil, nil, err
	}
	opts, err := a.testOptions(data)
	if err != nil {
		return nil, nil, err
	}
	return in, opts, nil
}

// alpha prefers the flag, then the configuration.
func (a *app) alpha(cmd *cobra.Command, flag float64) float64 {
	if cmd.Flags().Changed("alpha") {
		return flag
	}
	return a.cfg.Alpha
}

func (a *app) print(cmd *cobra.Command, records ...resultRecord) error {
	if !a.json() {
		return writeText(cmd.OutOrStdout(), records...)
	}
	if len(records) == 1 {
		return writeJSON(cmd.OutOrStdout(), records[0])
	}
	return writeJSON(cmd.OutOrStdout(), records)
}
