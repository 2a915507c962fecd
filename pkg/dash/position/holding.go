package position

import "github.com/komsit37/divdash/pkg/dash/types"

// Holding is the evaluation of a saved position against the latest close.
type Holding struct {
	Avg           float64  `json:"avg"`
	Shares        float64  `json:"shares"`
	Cost          float64  `json:"cost"`
	MarketValue   *float64 `json:"market_value,omitempty"`
	PnL           *float64 `json:"pnl,omitempty"`
	PnLPct        *float64 `json:"pnl_pct,omitempty"`
	MonthlyIncome *float64 `json:"monthly_income,omitempty"`
}

// Evaluate values a saved position. It returns false when the position is
// incomplete (missing or non-positive avg or shares).
func Evaluate(pos *types.UserPosition, lastClose, monthlyDividend *float64) (Holding, bool) {
	if pos == nil || pos.Avg == nil || pos.Shares == nil || *pos.Avg <= 0 || *pos.Shares <= 0 {
		return Holding{}, false
	}
	h := Holding{Avg: *pos.Avg, Shares: *pos.Shares}
	h.Cost = h.Avg * h.Shares
	if lastClose != nil && *lastClose > 0 {
		mv := *lastClose * h.Shares
		pnl := mv - h.Cost
		h.MarketValue = &mv
		h.PnL = &pnl
		h.PnLPct = types.Float(pnl / h.Cost * 100)
	}
	if monthlyDividend != nil && *monthlyDividend > 0 {
		h.MonthlyIncome = types.Float(*monthlyDividend * h.Shares)
	}
	return h, true
}
