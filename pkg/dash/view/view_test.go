package view

import (
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komsit37/divdash/pkg/dash/events"
	"github.com/komsit37/divdash/pkg/dash/format"
	"github.com/komsit37/divdash/pkg/dash/position"
	"github.com/komsit37/divdash/pkg/dash/simulate"
	"github.com/komsit37/divdash/pkg/dash/timeframe"
	"github.com/komsit37/divdash/pkg/dash/types"
)

func TestStatusLine(t *testing.T) {
	assert.Equal(t, "As of 2025-03-10 (UTC)", Status{AsOf: "2025-03-10"}.Line())
	assert.Equal(t, "As of —", Status{}.Line())
	assert.Equal(t, "data load error: check data/jepq.json", LoadError("data/jepq.json").Line())
}

func TestPriceOf(t *testing.T) {
	p := PriceOf(types.MarketSummary{
		LastClose: types.Float(55.2),
		Change:    types.Float(-0.41),
		ChangePct: types.Float(-0.74),
		DayLow:    types.Float(54.9),
		DayHigh:   types.Float(55.6),
		Volume:    types.Int(4_512_300),
	})
	assert.Equal(t, "55.20", p.Close)
	assert.Equal(t, "-0.41 (-0.74%)", p.Change)
	assert.Equal(t, "$55.20  -0.41 (-0.74%)", p.Pill)
	assert.Equal(t, "54.90 ~ 55.60", p.DayRange)
	assert.Equal(t, format.Placeholder, p.Range52)
	assert.Equal(t, "4,512,300", p.Volume)
	assert.Equal(t, Down, p.Direction)

	empty := PriceOf(types.MarketSummary{})
	assert.Equal(t, format.Placeholder, empty.Pill)
	assert.Equal(t, format.Placeholder, empty.Change)
	assert.Equal(t, Flat, empty.Direction)
}

func TestRange52Of(t *testing.T) {
	s := types.MarketSummary{Range52WLow: types.Float(44), Range52WHigh: types.Float(58)}
	r := Range52Of(s, types.DerivedMetrics{
		Pos52WPct:   types.Float(82.26),
		BucketStats: &types.BucketStats{Zone: "high", Avg3M: types.Float(1.2), MaxDD: types.Float(-6.5), SampleSize: 140},
	})
	assert.Equal(t, "82.3%", r.Pct)
	assert.Equal(t, position.ZoneHigh, r.Classification.Zone)
	assert.Equal(t, "Historically in this band: avg 3m return +1.20%, max drawdown -6.50%, n=140", r.History)
	assert.Equal(t, gaugeWidth+2, utf8.RuneCountInString(r.Gauge))

	// Stats for another zone are not shown.
	r = Range52Of(s, types.DerivedMetrics{
		Pos52WPct:   types.Float(20),
		BucketStats: &types.BucketStats{Zone: "high", Avg3M: types.Float(1.2)},
	})
	assert.Empty(t, r.History)

	r = Range52Of(s, types.DerivedMetrics{})
	assert.Equal(t, format.Placeholder, r.Pct)
	assert.Equal(t, position.PendingMessage, r.Classification.Message)
}

func TestGauge(t *testing.T) {
	assert.Equal(t, '●', []rune(Gauge(0, true))[1])
	g := []rune(Gauge(100, true))
	assert.Equal(t, '●', g[len(g)-2])
	assert.NotContains(t, Gauge(50, false), "●")
}

func TestDividendsOf(t *testing.T) {
	d := DividendsOf(types.DividendSummary{
		LastDividend:     types.Float(0.45),
		LastDividendDate: "2025-03-01",
		TTMDividend:      types.Float(5.4),
		TTMYieldPct:      types.Float(9.81),
	}, []types.DividendRecord{{Date: "2025-02-01", Amount: 0.44}, {Date: "2025-03-01", Amount: 0.45}})
	assert.Equal(t, "$0.45 · 2025-03-01", d.Last)
	assert.Equal(t, "$5.40", d.TTM)
	assert.Equal(t, "9.81%", d.TTMYield)
	assert.Equal(t, format.Placeholder, d.MonthlyAvg)
	require.Len(t, d.Recent, 2)
	assert.Equal(t, DividendRow{Date: "2025-03-01", Amount: "$0.45"}, d.Recent[0])
	assert.Empty(t, d.Message)

	assert.Equal(t, NoDividendsText, DividendsOf(types.DividendSummary{}, nil).Message)
}

func TestEventsOf(t *testing.T) {
	today := time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC)
	ranked := events.Rank([]types.MarketEvent{
		{Date: "2025-03-21", Title: "Quarterly futures expiry", Type: "futures", AvgMovePct: types.Float(2.4)},
	}, today)
	ev := EventsOf(ranked)
	require.Len(t, ev.Items, 1)
	row := ev.Items[0]
	assert.Equal(t, "FUTURES", row.Badge)
	assert.Equal(t, "D-2", row.Tag)
	assert.True(t, row.Urgent)
	assert.Equal(t, "●●●", row.Impact)
	assert.Equal(t, "high", row.Level)
	assert.Equal(t, "avg move 2.40%", row.AvgMove)

	assert.Equal(t, NoEventsText, EventsOf(nil).Message)
}

func TestHoldingOf(t *testing.T) {
	h, ok := position.Evaluate(&types.UserPosition{Avg: types.Float(52.10), Shares: types.Float(18)}, types.Float(55), types.Float(0.45))
	v := HoldingOf(h, ok)
	assert.True(t, v.Saved)
	assert.Equal(t, "52.10", v.Avg)
	assert.Equal(t, "18", v.Shares)
	assert.Equal(t, "$937.80", v.Cost)
	assert.Equal(t, "$990.00", v.Value)
	assert.Equal(t, "+52.20 (+5.57%)", v.PnL)
	assert.Equal(t, "$8.10", v.Monthly)
	assert.Equal(t, Up, v.Direction)

	assert.Equal(t, NoHoldingText, HoldingOf(position.Holding{}, false).Message)
}

func TestSimulatorOf(t *testing.T) {
	in := simulate.Input{Invested: 1_350_000, FXRate: 1350, BuyPrice: 50, Months: 12, MonthlyDividend: 0.30}
	s := SimulatorOf(in, simulate.Run(in))
	assert.Equal(t, "20.0000 shares", s.InitialShares)
	assert.Equal(t, "$6.00 / month (est.)", s.MonthlyIncome)
	assert.Equal(t, "$72.00 over 12 months (est.)", s.TotalDividends)
	assert.Equal(t, "— (reinvest off)", s.EndingShares)

	in.Reinvest = true
	s = SimulatorOf(in, simulate.Run(in))
	assert.Equal(t, "21.4885 shares", s.EndingShares)

	in.FXRate = 0
	s = SimulatorOf(in, simulate.Run(in))
	assert.False(t, s.Available)
	assert.Equal(t, format.Placeholder, s.InitialShares)
	assert.Equal(t, format.Placeholder, s.EndingShares)
}

func TestChartOf(t *testing.T) {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	var series []types.Bar
	for i := 0; i < 40; i++ {
		series = append(series, types.Bar{Time: d.AddDate(0, 0, i).Unix(), Close: 50})
	}
	c := ChartOf(series, timeframe.TF5D, []string{"date", "close"})
	assert.Len(t, c.Rows, 11)
	assert.Len(t, c.Bars, 11)
	assert.Equal(t, []string{"2025-02-09", "50.00"}, c.Rows[10])
}
