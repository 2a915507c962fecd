package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/komsit37/divdash/pkg/dash/columns"
	"github.com/komsit37/divdash/pkg/dash/enrich"
	"github.com/komsit37/divdash/pkg/dash/filter"
	"github.com/komsit37/divdash/pkg/dash/render"
	"github.com/komsit37/divdash/pkg/dash/simulate"
	"github.com/komsit37/divdash/pkg/dash/source"
	"github.com/komsit37/divdash/pkg/dash/store"
	"github.com/komsit37/divdash/pkg/dash/timeframe"
	"github.com/komsit37/divdash/pkg/dash/types"
	"github.com/komsit37/divdash/pkg/dash/view"
)

// ErrInvalidPosition is returned when a position to save is incomplete.
var ErrInvalidPosition = errors.New("position needs a positive avg and shares")

type Runner struct {
	Market   source.MarketSource
	Events   source.EventSource
	Quotes   enrich.QuoteService // nil disables the live overlay
	Store    store.Store         // nil means no saved position
	Renderer render.Renderer
	Logger   *zap.Logger
	Now      func() time.Time
}

type ExecuteOptions struct {
	MarketLocation string
	EventsLocation string
	// Symbol overrides the ticker used for live quotes.
	Symbol string
	Filter filter.Filter
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

// Load fetches both documents concurrently and reads the saved position.
// Failures are recorded on the state, never returned.
func (r *Runner) Load(ctx context.Context, opts ExecuteOptions) *State {
	log := r.logger()
	st := &State{Today: r.now(), MarketLocation: opts.MarketLocation}

	var wg conc.WaitGroup
	wg.Go(func() {
		st.Market, st.MarketErr = r.loadMarket(ctx, opts)
		if st.MarketErr != nil {
			log.Warn("market data unavailable", zap.String("location", opts.MarketLocation), zap.Error(st.MarketErr))
		}
	})
	wg.Go(func() {
		if r.Events == nil || strings.TrimSpace(opts.EventsLocation) == "" {
			st.EventsErr = errors.New("no events location configured")
			return
		}
		st.Events, st.EventsErr = r.Events.LoadEvents(ctx, opts.EventsLocation)
		if st.EventsErr != nil {
			log.Warn("events unavailable", zap.String("location", opts.EventsLocation), zap.Error(st.EventsErr))
		}
	})
	wg.Wait()

	if r.Store != nil {
		pos, err := r.Store.Load(ctx)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			st.PositionErr = err
			log.Warn("saved position unavailable", zap.Error(err))
		default:
			st.Position = pos
		}
	}
	return st
}

func (r *Runner) loadMarket(ctx context.Context, opts ExecuteOptions) (*types.MarketData, error) {
	if r.Market == nil {
		return nil, errors.New("no market source")
	}
	md, err := r.Market.LoadMarket(ctx, opts.MarketLocation)
	if err != nil {
		return nil, err
	}
	if r.Quotes == nil {
		return md, nil
	}
	sym := opts.Symbol
	if sym == "" {
		sym = md.Ticker
	}
	q, err := r.Quotes.Get(ctx, sym)
	if err != nil {
		r.logger().Warn("live quote failed; using document prices", zap.String("sym", sym), zap.Error(err))
		return md, nil
	}
	enrich.Apply(md, q)
	return md, nil
}

// Show displays the full dashboard.
func (r *Runner) Show(ctx context.Context, opts ExecuteOptions) error {
	st := r.Load(ctx, opts)
	st.Compute(opts.Filter, r.logger())

	steps := []func(*State) error{
		r.displayStatus,
		r.displayMarket,
		r.displayTone,
		r.displayEvents,
		r.displayAlerts,
		r.displayHolding,
	}
	for _, step := range steps {
		if err := step(st); err != nil {
			return err
		}
	}
	return r.Renderer.Flush()
}

// ShowTone displays the status line and the tone panel.
func (r *Runner) ShowTone(ctx context.Context, opts ExecuteOptions) error {
	st := r.Load(ctx, opts)
	st.Compute(opts.Filter, r.logger())
	if err := r.displayStatus(st); err != nil {
		return err
	}
	if err := r.displayTone(st); err != nil {
		return err
	}
	return r.Renderer.Flush()
}

// ShowEvents displays the ranked event board.
func (r *Runner) ShowEvents(ctx context.Context, opts ExecuteOptions) error {
	st := r.Load(ctx, opts)
	st.Compute(opts.Filter, r.logger())
	if err := r.displayEvents(st); err != nil {
		return err
	}
	return r.Renderer.Flush()
}

// ShowPosition displays the saved position valued at the latest close.
func (r *Runner) ShowPosition(ctx context.Context, opts ExecuteOptions) error {
	st := r.Load(ctx, opts)
	st.Compute(opts.Filter, r.logger())
	if err := r.displayStatus(st); err != nil {
		return err
	}
	if err := r.displayHolding(st); err != nil {
		return err
	}
	return r.Renderer.Flush()
}

// SavePosition validates and persists a position.
func (r *Runner) SavePosition(ctx context.Context, pos types.UserPosition) error {
	if r.Store == nil {
		return errors.New("no position store configured")
	}
	if !positive(pos.Avg) || !positive(pos.Shares) {
		return ErrInvalidPosition
	}
	if err := r.Store.Save(ctx, pos); err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	r.logger().Info("position saved", zap.Float64("avg", *pos.Avg), zap.Float64("shares", *pos.Shares))
	return nil
}

// ResetPosition removes the saved position.
func (r *Runner) ResetPosition(ctx context.Context) error {
	if r.Store == nil {
		return errors.New("no position store configured")
	}
	if err := r.Store.Reset(ctx); err != nil {
		return fmt.Errorf("reset position: %w", err)
	}
	r.logger().Info("position reset")
	return nil
}

// Simulate runs the dividend simulator. A zero BuyPrice or MonthlyDividend
// is taken from the market document when it loads.
func (r *Runner) Simulate(ctx context.Context, opts ExecuteOptions, in simulate.Input) error {
	if in.BuyPrice == 0 || in.MonthlyDividend == 0 {
		md, err := r.loadMarket(ctx, opts)
		if err != nil {
			r.logger().Warn("market data unavailable for simulator defaults", zap.Error(err))
		} else {
			if in.BuyPrice == 0 && md.Summary.LastClose != nil {
				in.BuyPrice = *md.Summary.LastClose
			}
			if in.MonthlyDividend == 0 && md.DividendSummary.MonthlyAvgDividend != nil {
				in.MonthlyDividend = *md.DividendSummary.MonthlyAvgDividend
			}
		}
	}
	if err := r.Renderer.Display(view.SectionSimulator, view.SimulatorOf(in, simulate.Run(in))); err != nil {
		return err
	}
	return r.Renderer.Flush()
}

// Chart displays the price series for a timeframe with the given columns.
func (r *Runner) Chart(ctx context.Context, opts ExecuteOptions, tf timeframe.Timeframe, cols []string) error {
	cols, err := columns.Compute(cols)
	if err != nil {
		return err
	}
	md, err := r.loadMarket(ctx, opts)
	if err != nil {
		r.logger().Warn("market data unavailable", zap.String("location", opts.MarketLocation), zap.Error(err))
		if err := r.Renderer.Display(view.SectionStatus, view.LoadError(opts.MarketLocation)); err != nil {
			return err
		}
		return r.Renderer.Flush()
	}
	if err := r.Renderer.Display(view.SectionStatus, view.StatusOf(md)); err != nil {
		return err
	}
	if err := r.Renderer.Display(view.SectionChart, view.ChartOf(md.Series, tf, cols)); err != nil {
		return err
	}
	return r.Renderer.Flush()
}

func (r *Runner) displayStatus(st *State) error {
	if st.MarketErr != nil {
		return r.Renderer.Display(view.SectionStatus, view.LoadError(st.MarketLocation))
	}
	return r.Renderer.Display(view.SectionStatus, view.StatusOf(st.Market))
}

func (r *Runner) displayMarket(st *State) error {
	if st.MarketErr != nil {
		for _, s := range []view.Section{view.SectionPrice, view.SectionRange52, view.SectionDividends} {
			if err := r.Renderer.Display(s, view.Unavailable{Message: view.SectionFailText}); err != nil {
				return err
			}
		}
		return nil
	}
	md := st.Market
	if err := r.Renderer.Display(view.SectionPrice, view.PriceOf(md.Summary)); err != nil {
		return err
	}
	if err := r.Renderer.Display(view.SectionRange52, view.Range52Of(md.Summary, md.Derived)); err != nil {
		return err
	}
	return r.Renderer.Display(view.SectionDividends, view.DividendsOf(md.DividendSummary, md.Dividends))
}

func (r *Runner) displayTone(st *State) error {
	if st.Tone == nil {
		return r.Renderer.Display(view.SectionTone, view.Unavailable{Message: view.SectionFailText})
	}
	return r.Renderer.Display(view.SectionTone, view.Tone{Result: *st.Tone})
}

func (r *Runner) displayEvents(st *State) error {
	if st.EventsErr != nil {
		return r.Renderer.Display(view.SectionEvents, view.Unavailable{Message: view.EventsFailText})
	}
	return r.Renderer.Display(view.SectionEvents, view.EventsOf(st.Ranked))
}

func (r *Runner) displayAlerts(st *State) error {
	return r.Renderer.Display(view.SectionAlerts, view.AlertsOf(st.Alerts))
}

func (r *Runner) displayHolding(st *State) error {
	if st.PositionErr != nil {
		return r.Renderer.Display(view.SectionHolding, view.Unavailable{Message: view.SectionFailText})
	}
	return r.Renderer.Display(view.SectionHolding, view.HoldingOf(st.Holding, st.HoldingOK))
}

func positive(v *float64) bool {
	return v != nil && *v > 0 && !math.IsInf(*v, 0)
}
