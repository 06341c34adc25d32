// Command tsstat runs time-series statistical tests on CSV data.
//
//	tsstat list stationarity
//	tsstat run stationarity adf -f sales.csv -c units -o regression=ct
//	tsstat check seasonality -f sales.csv -c units -o period=12 --alpha 0.01
//	tsstat all normality -f residuals.csv --output json
//	tsstat features -f sales.csv -c units --period 12
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sartorproj/tsstat"
	"github.com/sartorproj/tsstat/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgPath  string
	output   string
	logLevel string

	cfg        *config.Config
	dispatcher *tsstat.Dispatcher
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "tsstat",
		Short: "Run time-series statistical tests and read their verdicts",
		Long: `Run unit-root, normality, linearity, heteroscedasticity, autocorrelation,
entropy, seasonality and stability tests on a column of a CSV file.

Settings come from a YAML profile (--config or $TSSTAT_CONFIG) and TSSTAT_*
environment variables; flags override both.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "YAML profile (default $TSSTAT_CONFIG)")
	root.PersistentFlags().StringVar(&a.output, "output", "", "output format: text|json")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug|info|warn|error")

	root.AddCommand(
		newListCmd(a),
		newRunCmd(a),
		newCheckCmd(a),
		newAllCmd(a),
		newFeaturesCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.output != "" {
		cfg.Output = a.output
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	a.dispatcher = tsstat.NewDispatcher(
		tsstat.WithLogger(cfg.Logger(cmd.ErrOrStderr())),
		tsstat.WithConcurrency(cfg.Concurrency),
	)
	return nil
}

func (a *app) json() bool { return a.cfg.Output == "json" }
