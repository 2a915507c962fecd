package timeframe

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// Timeframe selects a trailing window of the price series.
type Timeframe string

const (
	TF1D  Timeframe = "1D"
	TF5D  Timeframe = "5D"
	TF1M  Timeframe = "1M"
	TF6M  Timeframe = "6M"
	TFYTD Timeframe = "YTD"
	TF1Y  Timeframe = "1Y"
	TF5Y  Timeframe = "5Y"
	TFMax Timeframe = "MAX"
)

// All lists the timeframes in display order.
var All = []Timeframe{TF1D, TF5D, TF1M, TF6M, TFYTD, TF1Y, TF5Y, TFMax}

var ErrUnknownTimeframe = errors.New("unknown timeframe")

const day = int64(24 * 60 * 60)

// Windows are calendar days back from the last bar. Daily bars skip weekends,
// so the short windows are padded.
var lookback = map[Timeframe]int64{
	TF1D: 3 * day,
	TF5D: 10 * day,
	TF1M: 31 * day,
	TF6M: 183 * day,
	TF1Y: 365 * day,
	TF5Y: 5 * 365 * day,
}

// Parse validates a timeframe name, case-insensitively.
func Parse(s string) (Timeframe, error) {
	tf := Timeframe(strings.ToUpper(strings.TrimSpace(s)))
	for _, v := range All {
		if v == tf {
			return tf, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownTimeframe, s, joined())
}

// Cutoff returns the earliest unix time kept for tf, relative to last.
// ok is false for MAX.
func Cutoff(tf Timeframe, last int64) (cut int64, ok bool) {
	if tf == TFYTD {
		y := time.Unix(last, 0).UTC().Year()
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC).Unix(), true
	}
	back, ok := lookback[tf]
	if !ok {
		return 0, false
	}
	return last - back, true
}

// Slice returns the bars with time >= the cutoff of tf. MAX and unknown
// timeframes return the full series.
func Slice(series []types.Bar, tf Timeframe) []types.Bar {
	if len(series) == 0 {
		return nil
	}
	cut, ok := Cutoff(tf, series[len(series)-1].Time)
	if !ok {
		return series
	}
	out := make([]types.Bar, 0, len(series))
	for _, b := range series {
		if b.Time >= cut {
			out = append(out, b)
		}
	}
	return out
}

func joined() string {
	parts := make([]string, len(All))
	for i, v := range All {
		parts[i] = string(v)
	}
	return strings.Join(parts, ",")
}
