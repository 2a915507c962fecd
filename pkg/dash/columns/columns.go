package columns

import (
	"fmt"
	"strings"
	"time"

	"github.com/komsit37/divdash/pkg/dash/format"
	"github.com/komsit37/divdash/pkg/dash/types"
)

// Resolver converts a bar (and the bar before it, if any) into a cell value.
type Resolver func(b types.Bar, prev *types.Bar) string

// Registry maps column keys to resolvers.
var Registry = map[string]Resolver{}

// Default is the column order when none is requested.
var Default = []string{"date", "open", "high", "low", "close", "volume", "chg%"}

func init() {
	Registry["date"] = func(b types.Bar, _ *types.Bar) string {
		return time.Unix(b.Time, 0).UTC().Format("2006-01-02")
	}
	Registry["time"] = func(b types.Bar, _ *types.Bar) string {
		return fmt.Sprint(b.Time)
	}
	Registry["open"] = func(b types.Bar, _ *types.Bar) string { return format.Price(&b.Open) }
	Registry["high"] = func(b types.Bar, _ *types.Bar) string { return format.Price(&b.High) }
	Registry["low"] = func(b types.Bar, _ *types.Bar) string { return format.Price(&b.Low) }
	Registry["close"] = func(b types.Bar, _ *types.Bar) string { return format.Price(&b.Close) }
	Registry["volume"] = func(b types.Bar, _ *types.Bar) string { return format.Int(&b.Volume) }
	// chg% is close over the previous close
	Registry["chg%"] = func(b types.Bar, prev *types.Bar) string {
		if prev == nil || prev.Close == 0 {
			return format.Placeholder
		}
		pct := (b.Close - prev.Close) / prev.Close * 100
		return format.Signed(&pct, 2) + "%"
	}
	// range is the intraday high-low spread as a percent of the low
	Registry["range%"] = func(b types.Bar, _ *types.Bar) string {
		if b.Low == 0 {
			return format.Placeholder
		}
		pct := (b.High - b.Low) / b.Low * 100
		return format.Pct(&pct)
	}
}

// UnknownColumnError reports a column with no resolver.
type UnknownColumnError struct {
	Name      string
	Available []string
}

func (e *UnknownColumnError) Error() string {
	return "unknown column: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

// Compute returns explicit columns de-duplicated in order, or Default when
// none are given. Unknown columns are an error.
func Compute(explicit []string) ([]string, error) {
	if len(explicit) == 0 {
		return append([]string(nil), Default...), nil
	}
	seen := map[string]struct{}{}
	out := make([]string, 0, len(explicit))
	for _, k := range explicit {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		if _, ok := Registry[k]; !ok {
			return nil, &UnknownColumnError{Name: k, Available: available()}
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out, nil
}

// Rows resolves every bar into a row of cells for cols.
func Rows(bars []types.Bar, cols []string) [][]string {
	rows := make([][]string, 0, len(bars))
	for i, b := range bars {
		var prev *types.Bar
		if i > 0 {
			prev = &bars[i-1]
		}
		row := make([]string, len(cols))
		for j, c := range cols {
			if r, ok := Registry[c]; ok {
				row[j] = r(b, prev)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func available() []string {
	return []string{"date", "time", "open", "high", "low", "close", "volume", "chg%", "range%"}
}
