package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/komsit37/divdash/pkg/dash/alerts"
	"github.com/komsit37/divdash/pkg/dash/filter"
	"github.com/komsit37/divdash/pkg/dash/simulate"
	"github.com/komsit37/divdash/pkg/dash/source"
	"github.com/komsit37/divdash/pkg/dash/store"
	"github.com/komsit37/divdash/pkg/dash/timeframe"
	"github.com/komsit37/divdash/pkg/dash/tone"
	"github.com/komsit37/divdash/pkg/dash/types"
	"github.com/komsit37/divdash/pkg/dash/view"
)

var today = time.Date(2025, 3, 19, 9, 0, 0, 0, time.UTC)

const fixture = `{
	"ticker": "JEPQ",
	"summary": {"asof": "2025-03-18", "last_close": 55.0, "change": 0.2, "change_pct": 0.36,
		"range_52w_low": 44, "range_52w_high": 58},
	"series": [
		{"time": 1741824000, "open": 54.8, "high": 55.1, "low": 54.6, "close": 54.9},
		{"time": 1742256000, "open": 54.9, "high": 55.2, "low": 54.7, "close": 55.0}
	],
	"derived": {"pos52": 78.6, "vol_vs_avg_pct": 35},
	"dividend_summary": {"monthly_avg_dividend": 0.45},
	"dividends": [{"date": "2025-03-01", "amount": 0.45}]
}`

type fakeMarket struct {
	doc string
	err error
}

func (f fakeMarket) LoadMarket(ctx context.Context, spec string) (*types.MarketData, error) {
	if f.err != nil {
		return nil, f.err
	}
	var root map[string]any
	if err := json.Unmarshal([]byte(f.doc), &root); err != nil {
		return nil, err
	}
	return source.NormalizeMarket(root), nil
}

type fakeEvents struct {
	evts []types.MarketEvent
	err  error
}

func (f fakeEvents) LoadEvents(ctx context.Context, spec string) ([]types.MarketEvent, error) {
	return f.evts, f.err
}

type fakeQuotes struct {
	q   types.Quote
	err error
	sym string
}

func (f *fakeQuotes) Get(ctx context.Context, sym string) (types.Quote, error) {
	f.sym = sym
	return f.q, f.err
}

type displayed struct {
	section view.Section
	vm      any
}

type recorder struct {
	got     []displayed
	flushed int
}

func (r *recorder) Display(section view.Section, vm any) error {
	r.got = append(r.got, displayed{section, vm})
	return nil
}

func (r *recorder) Flush() error {
	r.flushed++
	return nil
}

func (r *recorder) sections() []view.Section {
	out := make([]view.Section, 0, len(r.got))
	for _, d := range r.got {
		out = append(out, d.section)
	}
	return out
}

func (r *recorder) find(s view.Section) any {
	for _, d := range r.got {
		if d.section == s {
			return d.vm
		}
	}
	return nil
}

var sampleEvents = []types.MarketEvent{
	{Date: "2025-03-21", Title: "Quarterly futures expiry", Type: "futures"},
	{Date: "2025-04-17", Title: "Monthly options expiry", Type: "options"},
	{Date: "2025-03-01", Title: "Old"},
}

func newRunner(rec *recorder) *Runner {
	return &Runner{
		Market:   fakeMarket{doc: fixture},
		Events:   fakeEvents{evts: sampleEvents},
		Store:    store.NewMemoryStore(),
		Renderer: rec,
		Now:      func() time.Time { return today },
	}
}

var opts = ExecuteOptions{MarketLocation: "data/jepq.json", EventsLocation: "data/events.json"}

func TestShowAllSections(t *testing.T) {
	rec := &recorder{}
	r := newRunner(rec)
	require.NoError(t, r.Store.Save(context.Background(), types.UserPosition{Avg: types.Float(50), Shares: types.Float(10)}))

	require.NoError(t, r.Show(context.Background(), opts))
	assert.Equal(t, 1, rec.flushed)
	assert.Equal(t, []view.Section{
		view.SectionStatus, view.SectionPrice, view.SectionRange52, view.SectionDividends,
		view.SectionTone, view.SectionEvents, view.SectionAlerts, view.SectionHolding,
	}, rec.sections())

	st := rec.find(view.SectionStatus).(view.Status)
	assert.Equal(t, "JEPQ", st.Ticker)
	assert.Equal(t, "2025-03-18", st.AsOf)

	tn := rec.find(view.SectionTone).(view.Tone)
	assert.Equal(t, 62, tn.Score) // 50 + 12 volume surge
	assert.Equal(t, tone.Risk, tn.Label)

	ev := rec.find(view.SectionEvents).(view.Events)
	require.Len(t, ev.Items, 2)
	assert.Equal(t, "D-2", ev.Items[0].Tag)
	assert.True(t, ev.Items[0].Urgent)

	al := rec.find(view.SectionAlerts).(view.Alerts)
	var sources []string
	for _, a := range al.Items {
		sources = append(sources, a.Source)
	}
	assert.Equal(t, []string{"tone", "events", "52w", "position"}, sources)
	assert.Equal(t, alerts.Warn, al.Items[1].Level)

	h := rec.find(view.SectionHolding).(view.Holding)
	assert.True(t, h.Saved)
	assert.Equal(t, "$550.00", h.Value)
	assert.Equal(t, "+50.00 (+10.00%)", h.PnL)
	assert.Equal(t, "$4.50", h.Monthly)
}

func TestShowMarketFailure(t *testing.T) {
	rec := &recorder{}
	core, logs := observer.New(zap.WarnLevel)
	r := newRunner(rec)
	r.Market = fakeMarket{err: errors.New("connection refused")}
	r.Logger = zap.New(core)

	require.NoError(t, r.Show(context.Background(), opts))

	st := rec.find(view.SectionStatus).(view.Status)
	assert.Equal(t, "data load error: check data/jepq.json", st.Line())
	for _, s := range []view.Section{view.SectionPrice, view.SectionRange52, view.SectionDividends, view.SectionTone} {
		assert.Equal(t, view.Unavailable{Message: view.SectionFailText}, rec.find(s), s)
	}

	// Events still render on their own.
	ev := rec.find(view.SectionEvents).(view.Events)
	assert.Len(t, ev.Items, 2)
	assert.Equal(t, 1, logs.FilterMessage("market data unavailable").Len())
}

func TestShowEventsFailure(t *testing.T) {
	rec := &recorder{}
	r := newRunner(rec)
	r.Events = fakeEvents{err: errors.New("404")}

	require.NoError(t, r.Show(context.Background(), opts))
	assert.Equal(t, view.Unavailable{Message: view.EventsFailText}, rec.find(view.SectionEvents))
	_, ok := rec.find(view.SectionPrice).(view.Price)
	assert.True(t, ok)

	al := rec.find(view.SectionAlerts).(view.Alerts)
	for _, a := range al.Items {
		assert.NotEqual(t, "events", a.Source)
	}
}

func TestShowWithoutSavedPosition(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, newRunner(rec).Show(context.Background(), opts))
	h := rec.find(view.SectionHolding).(view.Holding)
	assert.False(t, h.Saved)
	assert.Equal(t, view.NoHoldingText, h.Message)
}

func TestShowEventsFiltered(t *testing.T) {
	rec := &recorder{}
	f, err := filter.Parse("options")
	require.NoError(t, err)
	o := opts
	o.Filter = f

	require.NoError(t, newRunner(rec).ShowEvents(context.Background(), o))
	assert.Equal(t, []view.Section{view.SectionEvents}, rec.sections())
	ev := rec.find(view.SectionEvents).(view.Events)
	require.Len(t, ev.Items, 1)
	assert.Equal(t, "Monthly options expiry", ev.Items[0].Title)
}

func TestLiveQuoteOverlay(t *testing.T) {
	rec := &recorder{}
	q := &fakeQuotes{q: types.Quote{Price: types.Float(57.3), ChangePct: types.Float(1.5)}}
	r := newRunner(rec)
	r.Quotes = q

	st := r.Load(context.Background(), opts)
	require.NoError(t, st.MarketErr)
	assert.Equal(t, "JEPQ", q.sym)
	assert.Equal(t, 57.3, *st.Market.Summary.LastClose)
	assert.Equal(t, 1.5, *st.Market.Summary.ChangePct)
	assert.InDelta(t, (57.3-44)/(58-44)*100, *st.Market.Derived.Pos52WPct, 1e-9)

	q.err = errors.New("rate limited")
	q.q = types.Quote{}
	st = r.Load(context.Background(), ExecuteOptions{MarketLocation: "x", Symbol: "QQQ"})
	require.NoError(t, st.MarketErr)
	assert.Equal(t, "QQQ", q.sym)
	assert.Equal(t, 55.0, *st.Market.Summary.LastClose)
}

func TestSimulateUsesMarketDefaults(t *testing.T) {
	rec := &recorder{}
	in := simulate.Input{Invested: 1_350_000, FXRate: 1350, Months: 12}
	require.NoError(t, newRunner(rec).Simulate(context.Background(), opts, in))

	s := rec.find(view.SectionSimulator).(view.Simulator)
	assert.True(t, s.Available)
	assert.Equal(t, 55.0, s.Input.BuyPrice)
	assert.Equal(t, 0.45, s.Input.MonthlyDividend)
	assert.Equal(t, "18.1818 shares", s.InitialShares)
}

func TestSimulateUnavailable(t *testing.T) {
	rec := &recorder{}
	r := newRunner(rec)
	r.Market = fakeMarket{err: errors.New("down")}
	require.NoError(t, r.Simulate(context.Background(), opts, simulate.Input{Invested: 1000, FXRate: 1350, Months: 3}))

	s := rec.find(view.SectionSimulator).(view.Simulator)
	assert.False(t, s.Available)
}

func TestChart(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, newRunner(rec).Chart(context.Background(), opts, timeframe.TFMax, []string{"date", "close"}))
	c := rec.find(view.SectionChart).(view.Chart)
	assert.Equal(t, [][]string{{"2025-03-13", "54.90"}, {"2025-03-18", "55.00"}}, c.Rows)

	err := newRunner(&recorder{}).Chart(context.Background(), opts, timeframe.TFMax, []string{"bogus"})
	assert.Error(t, err)
}

func TestSaveAndResetPosition(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{}
	r := newRunner(rec)

	assert.ErrorIs(t, r.SavePosition(ctx, types.UserPosition{Avg: types.Float(50)}), ErrInvalidPosition)
	assert.ErrorIs(t, r.SavePosition(ctx, types.UserPosition{Avg: types.Float(-1), Shares: types.Float(2)}), ErrInvalidPosition)

	require.NoError(t, r.SavePosition(ctx, types.UserPosition{Avg: types.Float(52.1), Shares: types.Float(18)}))
	require.NoError(t, r.ShowPosition(ctx, opts))
	h := rec.find(view.SectionHolding).(view.Holding)
	assert.Equal(t, "52.10", h.Avg)

	require.NoError(t, r.ResetPosition(ctx))
	_, err := r.Store.Load(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
