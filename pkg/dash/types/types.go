package types

// MarketData is the canonical form of the primary market document.
type MarketData struct {
	Ticker          string
	Summary         MarketSummary
	Series          []Bar
	Derived         DerivedMetrics
	DividendSummary DividendSummary
	Dividends       []DividendRecord
}

// MarketSummary holds the latest session values. Every field is optional.
type MarketSummary struct {
	AsOf         string
	LastClose    *float64
	Change       *float64
	ChangePct    *float64 // percent value, e.g., -2.1 for -2.1%
	DayLow       *float64
	DayHigh      *float64
	Range52WLow  *float64
	Range52WHigh *float64
	Volume       *int64
}

// DerivedMetrics are values computed upstream from the series.
type DerivedMetrics struct {
	Pos52WPct      *float64 // 0..100
	VolumeVsAvgPct *float64 // may be negative
	RiskScore      *float64 // 0..100, optional precomputed base for tone
	BucketStats    *BucketStats
}

// BucketStats summarizes historical forward returns for the current 52-week zone.
type BucketStats struct {
	Zone       string
	Avg3M      *float64
	MaxDD      *float64
	SampleSize int
}

// DividendSummary holds trailing dividend figures.
type DividendSummary struct {
	LastDividend       *float64
	LastDividendDate   string
	TTMDividend        *float64
	TTMYieldPct        *float64
	MonthlyAvgDividend *float64
}

// DividendRecord is one distribution; records are kept in chronological order.
type DividendRecord struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

// Bar is one OHLCV candle; Time is unix seconds.
type Bar struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Event types with dedicated presentation.
const (
	EventFutures = "futures"
	EventOptions = "options"
)

// MarketEvent is a calendar entry such as an options or futures expiry.
type MarketEvent struct {
	Date        string   `json:"date"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Note        string   `json:"note,omitempty"`
	ImpactLevel int      `json:"impact_level,omitempty"`
	AvgMovePct  *float64 `json:"avg_move_pct,omitempty"`
}

// UserPosition is the locally saved holding. Nil fields were left blank.
type UserPosition struct {
	Avg    *float64 `json:"avg"`
	Shares *float64 `json:"shares"`
}

// Quote contains live values used to refresh the summary.
type Quote struct {
	Price     *float64
	ChangePct *float64
	Name      string
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int64) *int64 { return &v }
