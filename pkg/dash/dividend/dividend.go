package dividend

import "github.com/komsit37/divdash/pkg/dash/types"

// RecentCount is how many distributions the dividend list shows.
const RecentCount = 12

// Recent returns up to n of the latest records, newest first. The input,
// which is chronological, is not modified.
func Recent(records []types.DividendRecord, n int) []types.DividendRecord {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	start := len(records) - n
	if start < 0 {
		start = 0
	}
	tail := records[start:]
	out := make([]types.DividendRecord, len(tail))
	for i, r := range tail {
		out[len(tail)-1-i] = r
	}
	return out
}
