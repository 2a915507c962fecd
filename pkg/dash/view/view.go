package view

import (
	"fmt"
	"strings"

	"github.com/komsit37/divdash/pkg/dash/alerts"
	"github.com/komsit37/divdash/pkg/dash/columns"
	"github.com/komsit37/divdash/pkg/dash/dividend"
	"github.com/komsit37/divdash/pkg/dash/events"
	"github.com/komsit37/divdash/pkg/dash/format"
	"github.com/komsit37/divdash/pkg/dash/position"
	"github.com/komsit37/divdash/pkg/dash/simulate"
	"github.com/komsit37/divdash/pkg/dash/timeframe"
	"github.com/komsit37/divdash/pkg/dash/tone"
	"github.com/komsit37/divdash/pkg/dash/types"
)

// Section names a UI region.
type Section string

const (
	SectionStatus    Section = "status"
	SectionPrice     Section = "price"
	SectionRange52   Section = "range52"
	SectionDividends Section = "dividends"
	SectionTone      Section = "tone"
	SectionEvents    Section = "events"
	SectionAlerts    Section = "alerts"
	SectionHolding   Section = "position"
	SectionSimulator Section = "simulator"
	SectionChart     Section = "chart"
)

// Fixed fallback texts.
const (
	NoEventsText    = "No event data yet."
	EventsFailText  = "events could not be loaded"
	NoDividendsText = "No dividend data yet."
	NoAlertsText    = "Nothing to flag today."
	NoHoldingText   = "No saved position. Use `position save --avg --shares`."
	SectionFailText = "unavailable"
)

// Direction is the sign of a price move, used for colouring.
type Direction int

const (
	Flat Direction = iota
	Up
	Down
)

func directionOf(v *float64) Direction {
	switch {
	case v == nil || *v == 0:
		return Flat
	case *v > 0:
		return Up
	default:
		return Down
	}
}

// Status is the as-of line. Error replaces it when the market data failed.
type Status struct {
	Ticker string `json:"ticker,omitempty"`
	AsOf   string `json:"asof"`
	Error  string `json:"error,omitempty"`
}

// Line renders the status text.
func (s Status) Line() string {
	if s.Error != "" {
		return s.Error
	}
	if s.AsOf == "" {
		return "As of " + format.Placeholder
	}
	return fmt.Sprintf("As of %s (UTC)", s.AsOf)
}

// StatusOf builds the status line.
func StatusOf(md *types.MarketData) Status {
	if md == nil {
		return Status{}
	}
	return Status{Ticker: md.Ticker, AsOf: md.Summary.AsOf}
}

// LoadError is the fixed text shown when the market document failed to load.
func LoadError(location string) Status {
	return Status{Error: fmt.Sprintf("data load error: check %s", location)}
}

// Unavailable replaces a section whose source failed.
type Unavailable struct {
	Message string `json:"message"`
}

// Price is the price summary.
type Price struct {
	Close     string    `json:"close"`
	Change    string    `json:"change"`
	Pill      string    `json:"pill"`
	DayRange  string    `json:"day_range"`
	Range52   string    `json:"range_52w"`
	Volume    string    `json:"volume"`
	Direction Direction `json:"direction"`
}

// PriceOf builds the price summary.
func PriceOf(s types.MarketSummary) Price {
	p := Price{
		Close:     format.Price(s.LastClose),
		Change:    format.Placeholder,
		Pill:      format.Placeholder,
		DayRange:  format.Range(s.DayLow, s.DayHigh),
		Range52:   format.Range(s.Range52WLow, s.Range52WHigh),
		Volume:    format.Int(s.Volume),
		Direction: directionOf(s.Change),
	}
	if s.Change != nil && s.ChangePct != nil {
		p.Change = fmt.Sprintf("%s (%s%%)", format.Signed(s.Change, 2), format.Signed(s.ChangePct, 2))
	}
	if s.LastClose != nil {
		p.Pill = "$" + format.Price(s.LastClose)
		if p.Change != format.Placeholder {
			p.Pill += "  " + p.Change
		}
	}
	return p
}

// Range52 is the 52-week gauge.
type Range52 struct {
	Low            string                  `json:"low"`
	High           string                  `json:"high"`
	Pct            string                  `json:"pct"`
	Gauge          string                  `json:"gauge"`
	Classification position.Classification `json:"classification"`
	History        string                  `json:"history,omitempty"`
}

const gaugeWidth = 30

// Range52Of builds the 52-week gauge.
func Range52Of(s types.MarketSummary, d types.DerivedMetrics) Range52 {
	c := position.Classify(d.Pos52WPct)
	r := Range52{
		Low:            format.Price(s.Range52WLow),
		High:           format.Price(s.Range52WHigh),
		Pct:            format.Placeholder,
		Classification: c,
		Gauge:          Gauge(0, false),
	}
	if c.Known {
		r.Pct = fmt.Sprintf("%.1f%%", c.ClampedPct)
		r.Gauge = Gauge(c.ClampedPct, true)
	}
	if st := d.BucketStats; st != nil && c.Known && (st.Zone == "" || st.Zone == string(c.Zone)) {
		parts := make([]string, 0, 3)
		if st.Avg3M != nil {
			parts = append(parts, "avg 3m return "+format.Signed(st.Avg3M, 2)+"%")
		}
		if st.MaxDD != nil {
			parts = append(parts, "max drawdown "+format.Pct(st.MaxDD))
		}
		if st.SampleSize > 0 {
			parts = append(parts, fmt.Sprintf("n=%d", st.SampleSize))
		}
		r.History = "Historically in this band: " + strings.Join(parts, ", ")
	}
	return r
}

// Gauge draws a fixed-width bar with a marker at pct.
func Gauge(pct float64, known bool) string {
	if !known {
		return "[" + strings.Repeat("·", gaugeWidth) + "]"
	}
	pos := int(pct / 100 * float64(gaugeWidth-1))
	b := []rune(strings.Repeat("━", pos) + strings.Repeat("·", gaugeWidth-pos))
	b[pos] = '●'
	return "[" + string(b) + "]"
}

// Dividends is the dividend panel.
type Dividends struct {
	Last       string        `json:"last"`
	TTM        string        `json:"ttm"`
	TTMYield   string        `json:"ttm_yield"`
	MonthlyAvg string        `json:"monthly_avg"`
	Recent     []DividendRow `json:"recent"`
	Message    string        `json:"message,omitempty"`
}

type DividendRow struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// DividendsOf builds the dividend panel.
func DividendsOf(ds types.DividendSummary, records []types.DividendRecord) Dividends {
	d := Dividends{
		Last:       format.Placeholder,
		TTM:        format.USD(ds.TTMDividend),
		TTMYield:   format.Pct(ds.TTMYieldPct),
		MonthlyAvg: format.USD(ds.MonthlyAvgDividend),
	}
	if ds.LastDividend != nil && ds.LastDividendDate != "" {
		d.Last = format.USD(ds.LastDividend) + " · " + ds.LastDividendDate
	}
	for _, r := range dividend.Recent(records, dividend.RecentCount) {
		amt := r.Amount
		d.Recent = append(d.Recent, DividendRow{Date: r.Date, Amount: format.USD(&amt)})
	}
	if len(d.Recent) == 0 {
		d.Message = NoDividendsText
	}
	return d
}

// Tone is the tone panel.
type Tone struct {
	tone.Result
}

// Events is the event board.
type Events struct {
	Items   []EventRow `json:"items"`
	Message string     `json:"message,omitempty"`
}

type EventRow struct {
	Badge   string `json:"badge"`
	Tag     string `json:"tag"`
	DDay    int    `json:"dday"`
	Title   string `json:"title"`
	Date    string `json:"date"`
	Note    string `json:"note,omitempty"`
	Urgent  bool   `json:"urgent"`
	Impact  string `json:"impact"`
	Level   string `json:"impact_level"`
	AvgMove string `json:"avg_move,omitempty"`
}

// EventsOf builds the event board from ranked events.
func EventsOf(ranked []events.Ranked) Events {
	ev := Events{Items: make([]EventRow, 0, len(ranked))}
	for _, r := range ranked {
		row := EventRow{
			Badge:  string(r.Badge),
			Tag:    r.Tag(),
			DDay:   r.DDay,
			Title:  format.Or(r.Title),
			Date:   format.Or(r.Date),
			Note:   r.Note,
			Urgent: r.Urgent,
			Impact: events.Dots(r.Impact),
			Level:  events.ImpactName(r.Impact),
		}
		if r.AvgMovePct != nil {
			row.AvgMove = "avg move " + format.Pct(r.AvgMovePct)
		}
		ev.Items = append(ev.Items, row)
	}
	if len(ev.Items) == 0 {
		ev.Message = NoEventsText
	}
	return ev
}

// Alerts is the alerts panel.
type Alerts struct {
	Items   []alerts.Alert `json:"items"`
	Message string         `json:"message,omitempty"`
}

// AlertsOf wraps aggregated alerts.
func AlertsOf(items []alerts.Alert) Alerts {
	a := Alerts{Items: items}
	if len(items) == 0 {
		a.Items = []alerts.Alert{}
		a.Message = NoAlertsText
	}
	return a
}

// Holding is the saved-position panel.
type Holding struct {
	Saved     bool      `json:"saved"`
	Avg       string    `json:"avg"`
	Shares    string    `json:"shares"`
	Cost      string    `json:"cost"`
	Value     string    `json:"value"`
	PnL       string    `json:"pnl"`
	Monthly   string    `json:"monthly_income"`
	Direction Direction `json:"direction"`
	Message   string    `json:"message,omitempty"`
}

// HoldingOf builds the saved-position panel.
func HoldingOf(h position.Holding, ok bool) Holding {
	if !ok {
		return Holding{Message: NoHoldingText}
	}
	out := Holding{
		Saved:     true,
		Avg:       format.Price(&h.Avg),
		Shares:    fmt.Sprintf("%g", h.Shares),
		Cost:      format.USD(&h.Cost),
		Value:     format.USD(h.MarketValue),
		PnL:       format.Placeholder,
		Monthly:   format.USD(h.MonthlyIncome),
		Direction: directionOf(h.PnL),
	}
	if h.PnL != nil && h.PnLPct != nil {
		out.PnL = fmt.Sprintf("%s (%s%%)", format.Signed(h.PnL, 2), format.Signed(h.PnLPct, 2))
	}
	return out
}

// Simulator is the dividend simulator output.
type Simulator struct {
	Input          simulate.Input `json:"input"`
	Available      bool           `json:"available"`
	InitialShares  string         `json:"initial_shares"`
	MonthlyIncome  string         `json:"monthly_income"`
	TotalDividends string         `json:"total_dividends"`
	EndingShares   string         `json:"ending_shares"`
}

// SimulatorOf formats a simulation. Unavailable results show placeholders.
func SimulatorOf(in simulate.Input, r simulate.Result) Simulator {
	s := Simulator{
		Input:          in,
		Available:      r.Available,
		InitialShares:  format.Placeholder,
		MonthlyIncome:  format.Placeholder,
		TotalDividends: format.Placeholder,
		EndingShares:   format.Placeholder,
	}
	if !r.Available {
		return s
	}
	s.InitialShares = format.Shares(r.InitialShares)
	s.MonthlyIncome = format.USD(&r.MonthlyIncome) + " / month (est.)"
	s.TotalDividends = format.USD(&r.TotalDividends) + fmt.Sprintf(" over %d months (est.)", r.Months)
	if r.Reinvest {
		s.EndingShares = format.Shares(r.EndingShares)
	} else {
		s.EndingShares = format.Placeholder + " (reinvest off)"
	}
	return s
}

// Chart is the price series table for a timeframe.
type Chart struct {
	Timeframe timeframe.Timeframe `json:"timeframe"`
	Columns   []string            `json:"columns"`
	Rows      [][]string          `json:"rows"`
	Bars      []types.Bar         `json:"-"`
}

// ChartOf slices the series to tf and resolves the requested columns.
func ChartOf(series []types.Bar, tf timeframe.Timeframe, cols []string) Chart {
	bars := timeframe.Slice(series, tf)
	return Chart{Timeframe: tf, Columns: cols, Rows: columns.Rows(bars, cols), Bars: bars}
}
