package simulate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseInput() Input {
	return Input{
		Invested:        1_350_000,
		FXRate:          1350,
		BuyPrice:        50,
		Months:          12,
		MonthlyDividend: 0.30,
	}
}

func TestRunWithoutReinvest(t *testing.T) {
	got := Run(baseInput())
	require.True(t, got.Available)
	assert.InDelta(t, 20.0, got.InitialShares, 1e-9)
	assert.InDelta(t, 6.00, got.MonthlyIncome, 1e-9)
	assert.InDelta(t, 72.00, got.TotalDividends, 1e-9)
	assert.InDelta(t, 20.0, got.EndingShares, 1e-9)
	assert.Equal(t, 12, got.Months)
}

func TestRunWithReinvest(t *testing.T) {
	in := baseInput()
	in.Reinvest = true
	got := Run(in)
	require.True(t, got.Available)
	assert.Greater(t, got.EndingShares, 20.0)
	assert.GreaterOrEqual(t, got.TotalDividends, 72.0)

	// Growth factor per month is 1 + 0.30/50.
	want := 20 * math.Pow(1+0.30/50, 12)
	assert.InDelta(t, want, got.EndingShares, 1e-9)
	assert.InDelta(t, (want-20)*50, got.TotalDividends, 1e-9)
}

func TestRunUnavailable(t *testing.T) {
	tests := map[string]func(*Input){
		"no investment":     func(in *Input) { in.Invested = 0 },
		"no fx":             func(in *Input) { in.FXRate = 0 },
		"no price":          func(in *Input) { in.BuyPrice = 0 },
		"no dividend":       func(in *Input) { in.MonthlyDividend = 0 },
		"negative price":    func(in *Input) { in.BuyPrice = -1 },
		"nan fx":            func(in *Input) { in.FXRate = math.NaN() },
		"infinite dividend": func(in *Input) { in.MonthlyDividend = math.Inf(1) },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := baseInput()
			mutate(&in)
			got := Run(in)
			assert.False(t, got.Available)
			assert.Zero(t, got.TotalDividends)
			assert.False(t, math.IsNaN(got.EndingShares))
		})
	}
}

func TestRunMonthsFloor(t *testing.T) {
	in := baseInput()
	in.Months = 0
	got := Run(in)
	require.True(t, got.Available)
	assert.Equal(t, 1, got.Months)
	assert.InDelta(t, 6.0, got.TotalDividends, 1e-9)
}
