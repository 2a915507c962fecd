package columns

import (
	"slices"
	"strings"
)

// Sets defines named column groups that expand into lists of columns.
var Sets = map[string][]string{
	"ohlc":    {"date", "open", "high", "low", "close"},
	"ohlcv":   {"date", "open", "high", "low", "close", "volume"},
	"compact": {"date", "close", "chg%"},
	"all":     {"date", "time", "open", "high", "low", "close", "volume", "chg%", "range%"},
}

// ExpandSets concatenates the columns of the named sets, case-insensitively,
// keeping the first occurrence of each column.
func ExpandSets(names []string) ([]string, error) {
	var out []string
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		cols, ok := Sets[key]
		if !ok {
			return nil, &UnknownSetError{Name: name, Available: availableSets()}
		}
		for _, c := range cols {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

// UnknownSetError reports an unknown column set name.
type UnknownSetError struct {
	Name      string
	Available []string
}

func (e *UnknownSetError) Error() string {
	return "unknown column set: " + e.Name + "; available: " + strings.Join(e.Available, ", ")
}

func availableSets() []string {
	return []string{"ohlc", "ohlcv", "compact", "all"}
}
