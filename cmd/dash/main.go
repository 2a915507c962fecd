package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/komsit37/divdash/pkg/dash/columns"
	"github.com/komsit37/divdash/pkg/dash/enrich"
	"github.com/komsit37/divdash/pkg/dash/filter"
	"github.com/komsit37/divdash/pkg/dash/pipeline"
	"github.com/komsit37/divdash/pkg/dash/render"
	"github.com/komsit37/divdash/pkg/dash/simulate"
	"github.com/komsit37/divdash/pkg/dash/source"
	"github.com/komsit37/divdash/pkg/dash/store"
	"github.com/komsit37/divdash/pkg/dash/timeframe"
	"github.com/komsit37/divdash/pkg/dash/types"
)

const (
	quoteCacheTTL  = 5 * time.Minute
	quoteCacheSize = 32
	// keyColWidth is reserved for the label column when wrapping to the terminal.
	keyColWidth = 16
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		os.Exit(1)
	}
}

// app carries what every subcommand needs once flags and config are read.
type app struct {
	v      *viper.Viper
	logger *zap.Logger
	runner *pipeline.Runner
	opts   pipeline.ExecuteOptions
	close  func()
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "dash",
		Short:         "Single-security dividend dashboard in the terminal",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v.SetEnvPrefix("DASH")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if cfgFile != "" {
				v.SetConfigFile(cfgFile)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("read config %s: %w", cfgFile, err)
				}
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file")
	pf.String("market", "data/jepq.json", "market document: path or http(s) URL")
	pf.String("events", "data/events.json", "event calendar: path or http(s) URL")
	pf.String("store", "file:.divdash/position.json", "position store: memory | file:<path> | badger:<dir>")
	pf.String("position-key", store.DefaultKey, "storage key of the saved position")
	pf.String("format", "table", "output format: table | json")
	pf.Bool("pretty", false, "indent JSON output")
	pf.Bool("color", true, "colour table output")
	pf.Int("max-col-width", 0, "wrap table cells at this width (0 = fit terminal)")
	pf.Bool("live", false, "overlay a live Yahoo Finance quote")
	pf.String("symbol", "", "symbol for the live quote (default: document ticker)")
	pf.Duration("timeout", 10*time.Second, "fetch timeout")
	pf.String("log-level", "warn", "log level: debug | info | warn | error")
	pf.Float64("fx", simulate.DefaultFX, "local currency per USD for the simulator")
	pf.String("timeframe", string(timeframe.TF1M), "default chart timeframe")
	pf.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})

	rootCmd.AddCommand(
		newShowCmd(v),
		newToneCmd(v),
		newEventsCmd(v),
		newSimCmd(v),
		newChartCmd(v),
		newPositionCmd(v),
	)
	return rootCmd
}

// setup builds the logger, renderer, sources and store from the merged
// flag, env and file config. The caller must call a.close.
func setup(cmd *cobra.Command, v *viper.Viper) (*app, error) {
	logger, err := newLogger(v.GetString("log_level"), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	maxWidth := v.GetInt("max_col_width")
	if maxWidth <= 0 {
		if w := terminalWidth(os.Stdout); w > keyColWidth*2 {
			maxWidth = w - keyColWidth
		}
	}
	rend, err := render.New(v.GetString("format"), cmd.OutOrStdout(), render.RenderOptions{
		Color:       v.GetBool("color"),
		PrettyJSON:  v.GetBool("pretty"),
		MaxColWidth: maxWidth,
	})
	if err != nil {
		return nil, err
	}

	st, err := store.Open(v.GetString("store"), v.GetString("position_key"))
	if err != nil {
		return nil, err
	}

	timeout := v.GetDuration("timeout")
	loader := source.NewLoader(timeout, logger)
	runner := &pipeline.Runner{
		Market:   loader,
		Events:   loader,
		Store:    st,
		Renderer: rend,
		Logger:   logger,
	}
	if v.GetBool("live") {
		runner.Quotes = enrich.NewCacheService(enrich.NewYFService(timeout), quoteCacheTTL, quoteCacheSize)
	}

	a := &app{
		v:      v,
		logger: logger,
		runner: runner,
		opts: pipeline.ExecuteOptions{
			MarketLocation: v.GetString("market"),
			EventsLocation: v.GetString("events"),
			Symbol:         v.GetString("symbol"),
		},
	}
	a.close = func() {
		if err := st.Close(); err != nil {
			logger.Warn("close store", zap.Error(err))
		}
		_ = logger.Sync()
	}
	logger.Debug("config",
		zap.String("market", a.opts.MarketLocation),
		zap.String("events", a.opts.EventsLocation),
		zap.String("store", v.GetString("store")),
		zap.Bool("live", runner.Quotes != nil))
	return a, nil
}

// withTimeout bounds a whole command: both fetches plus the quote.
func (a *app) withTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.v.GetDuration("timeout")*2)
}

// run wraps a subcommand body with setup and teardown.
func run(v *viper.Viper, fn func(ctx context.Context, a *app, cmd *cobra.Command) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd, v)
		if err != nil {
			return err
		}
		defer a.close()
		ctx, cancel := a.withTimeout(cmd)
		defer cancel()
		return fn(ctx, a, cmd)
	}
}

func newShowCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the full dashboard",
		Args:  cobra.NoArgs,
		RunE: run(v, func(ctx context.Context, a *app, _ *cobra.Command) error {
			return a.runner.Show(ctx, a.opts)
		}),
	}
}

func newToneCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tone",
		Short: "Show the market tone score and advice",
		Args:  cobra.NoArgs,
		RunE: run(v, func(ctx context.Context, a *app, _ *cobra.Command) error {
			return a.runner.ShowTone(ctx, a.opts)
		}),
	}
}

func newEventsCmd(v *viper.Viper) *cobra.Command {
	var expr string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show upcoming market events by D-day",
		Args:  cobra.NoArgs,
		RunE: run(v, func(ctx context.Context, a *app, _ *cobra.Command) error {
			f, err := filter.Parse(expr)
			if err != nil {
				return err
			}
			opts := a.opts
			opts.Filter = f
			return a.runner.ShowEvents(ctx, opts)
		}),
	}
	cmd.Flags().StringVar(&expr, "filter", "", "match type or title: a,b | glob* | /regex/ | substring")
	return cmd
}

func newSimCmd(v *viper.Viper) *cobra.Command {
	var in simulate.Input
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "Project dividend income for an investment",
		Args:  cobra.NoArgs,
		RunE: run(v, func(ctx context.Context, a *app, _ *cobra.Command) error {
			in.FXRate = a.v.GetFloat64("fx")
			return a.runner.Simulate(ctx, a.opts, in)
		}),
	}
	f := cmd.Flags()
	f.Float64Var(&in.Invested, "invested", 0, "amount invested in local currency")
	f.Float64Var(&in.BuyPrice, "price", 0, "buy price in USD (default: last close)")
	f.Float64Var(&in.MonthlyDividend, "dividend", 0, "monthly dividend per share in USD (default: monthly average)")
	f.IntVar(&in.Months, "months", 12, "months to project")
	f.BoolVar(&in.Reinvest, "reinvest", false, "reinvest dividends at the buy price")
	_ = cmd.MarkFlagRequired("invested")
	return cmd
}

func newChartCmd(v *viper.Viper) *cobra.Command {
	var (
		tfName string
		cols   []string
		sets   []string
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Show the price series for a timeframe",
		Args:  cobra.NoArgs,
		RunE: run(v, func(ctx context.Context, a *app, _ *cobra.Command) error {
			if tfName == "" {
				tfName = a.v.GetString("timeframe")
			}
			tf, err := timeframe.Parse(tfName)
			if err != nil {
				return err
			}
			expanded, err := columns.ExpandSets(sets)
			if err != nil {
				return err
			}
			return a.runner.Chart(ctx, a.opts, tf, append(expanded, cols...))
		}),
	}
	cmd.Flags().StringVar(&tfName, "tf", "", "timeframe: 1D 5D 1M 6M YTD 1Y 5Y MAX")
	cmd.Flags().StringSliceVar(&cols, "columns", nil, "columns to show")
	cmd.Flags().StringSliceVar(&sets, "sets", nil, "column sets: ohlc, ohlcv, compact, all")
	return cmd
}

func newPositionCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position",
		Short: "Show, save or reset the saved position",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Value the saved position at the latest close",
		Args:  cobra.NoArgs,
		RunE: run(v, func(ctx context.Context, a *app, _ *cobra.Command) error {
			return a.runner.ShowPosition(ctx, a.opts)
		}),
	}

	var avg, shares float64
	save := &cobra.Command{
		Use:   "save",
		Short: "Save average price and share count",
		Args:  cobra.NoArgs,
		RunE: run(v, func(ctx context.Context, a *app, cmd *cobra.Command) error {
			err := a.runner.SavePosition(ctx, types.UserPosition{Avg: types.Float(avg), Shares: types.Float(shares)})
			if errors.Is(err, pipeline.ErrInvalidPosition) {
				return fmt.Errorf("%w (got --avg %g --shares %g)", err, avg, shares)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "position saved")
			return nil
		}),
	}
	save.Flags().Float64Var(&avg, "avg", 0, "average buy price in USD")
	save.Flags().Float64Var(&shares, "shares", 0, "shares held")
	_ = save.MarkFlagRequired("avg")
	_ = save.MarkFlagRequired("shares")

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Remove the saved position",
		Args:  cobra.NoArgs,
		RunE: run(v, func(ctx context.Context, a *app, cmd *cobra.Command) error {
			if err := a.runner.ResetPosition(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "position reset")
			return nil
		}),
	}

	cmd.AddCommand(show, save, reset)
	return cmd
}
