package simulate

import "math"

// DefaultFX is the local-currency per USD rate used when none is given.
const DefaultFX = 1350

// Input is the simulator form. Invested is in local currency; prices and
// dividends are in USD.
type Input struct {
	Invested        float64 `json:"invested"`
	FXRate          float64 `json:"fx_rate"`
	BuyPrice        float64 `json:"buy_price"`
	Months          int     `json:"months"`
	Reinvest        bool    `json:"reinvest"`
	MonthlyDividend float64 `json:"monthly_dividend"`
}

// Result is the projection. When Available is false no computation was made
// and the numeric fields are zero.
type Result struct {
	Available      bool    `json:"available"`
	Months         int     `json:"months"`
	Reinvest       bool    `json:"reinvest"`
	InitialShares  float64 `json:"initial_shares"`
	MonthlyIncome  float64 `json:"monthly_income"`
	TotalDividends float64 `json:"total_dividends"`
	EndingShares   float64 `json:"ending_shares"`
}

// Run projects the share count and dividend income month by month. With
// reinvestment each payout buys fractional shares at the constant buy price.
func Run(in Input) Result {
	if !positive(in.Invested) || !positive(in.FXRate) || !positive(in.BuyPrice) || !positive(in.MonthlyDividend) {
		return Result{}
	}
	months := in.Months
	if months < 1 {
		months = 1
	}

	usd := in.Invested / in.FXRate
	shares0 := usd / in.BuyPrice

	shares := shares0
	total := 0.0
	for i := 0; i < months; i++ {
		div := shares * in.MonthlyDividend
		total += div
		if in.Reinvest {
			shares += div / in.BuyPrice
		}
	}

	return Result{
		Available:      true,
		Months:         months,
		Reinvest:       in.Reinvest,
		InitialShares:  shares0,
		MonthlyIncome:  shares0 * in.MonthlyDividend,
		TotalDividends: total,
		EndingShares:   shares,
	}
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
