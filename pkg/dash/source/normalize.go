package source

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// Upstream producers have used several names for the same metric over time.
// The first key present with a usable value wins.
var (
	keysPos52      = []string{"pos_52w_pct", "pos52"}
	keysRiskScore  = []string{"risk_score", "score"}
	keysVolVsAvg   = []string{"volume_vs_avg_pct", "vol_vs_avg_pct"}
	keysChangePct  = []string{"change_pct", "pct_change"}
	keysBucketAvg  = []string{"avg_3m", "avg_ret_3m", "avg_ret_3m_pct"}
	keysBucketDD   = []string{"max_dd", "avg_max_dd", "worst_max_dd", "worst_max_dd_pct"}
	keysBucketSize = []string{"sample_size", "samples"}
)

// NormalizeMarket maps a decoded market document onto the canonical schema.
// Missing or malformed fields are left unset.
func NormalizeMarket(root map[string]any) *types.MarketData {
	md := &types.MarketData{
		Ticker: str(root, "ticker"),
	}

	s := obj(root, "summary")
	md.Summary = types.MarketSummary{
		AsOf:         str(s, "asof"),
		LastClose:    num(s, "last_close"),
		Change:       num(s, "change"),
		ChangePct:    num(s, keysChangePct...),
		DayLow:       num(s, "day_low"),
		DayHigh:      num(s, "day_high"),
		Range52WLow:  num(s, "range_52w_low"),
		Range52WHigh: num(s, "range_52w_high"),
	}
	if v := num(s, "volume"); v != nil {
		md.Summary.Volume = types.Int(int64(*v))
	}

	md.Series = normalizeSeries(list(root, "series"))

	d := obj(root, "derived")
	md.Derived = types.DerivedMetrics{
		Pos52WPct:      num(d, keysPos52...),
		VolumeVsAvgPct: num(d, keysVolVsAvg...),
		RiskScore:      num(d, keysRiskScore...),
	}
	if md.Derived.Pos52WPct == nil {
		md.Derived.Pos52WPct = Pos52(md.Summary)
	}
	md.Derived.BucketStats = normalizeBucketStats(d, md.Derived.Pos52WPct)

	ds := obj(root, "dividend_summary")
	md.DividendSummary = types.DividendSummary{
		LastDividend:       num(ds, "last_dividend"),
		LastDividendDate:   str(ds, "last_dividend_date"),
		TTMDividend:        num(ds, "ttm_dividend"),
		TTMYieldPct:        num(ds, "ttm_yield_pct"),
		MonthlyAvgDividend: num(ds, "monthly_avg_dividend"),
	}
	md.Dividends = normalizeDividends(list(root, "dividends"))
	return md
}

// NormalizeEvents accepts either {events: [...]} or a bare list of events.
func NormalizeEvents(root any) []types.MarketEvent {
	var raw []any
	switch r := root.(type) {
	case map[string]any:
		raw = list(r, "events")
	case []any:
		raw = r
	}
	out := make([]types.MarketEvent, 0, len(raw))
	for _, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		ev := types.MarketEvent{
			Date:       str(m, "date"),
			Title:      str(m, "title"),
			Type:       strings.ToLower(str(m, "type")),
			Note:       str(m, "note"),
			AvgMovePct: num(m, "avg_move_pct"),
		}
		if lvl := num(m, "impact_level"); lvl != nil {
			ev.ImpactLevel = int(*lvl)
		}
		out = append(out, ev)
	}
	return out
}

// Pos52 computes the 52-week position from the summary when the range is valid.
func Pos52(s types.MarketSummary) *float64 {
	if s.LastClose == nil || s.Range52WLow == nil || s.Range52WHigh == nil {
		return nil
	}
	lo, hi := *s.Range52WLow, *s.Range52WHigh
	if hi <= lo {
		return nil
	}
	return types.Float((*s.LastClose - lo) / (hi - lo) * 100)
}

func normalizeSeries(raw []any) []types.Bar {
	out := make([]types.Bar, 0, len(raw))
	for _, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		t, o, h, l, c := num(m, "time"), num(m, "open"), num(m, "high"), num(m, "low"), num(m, "close")
		if t == nil || o == nil || h == nil || l == nil || c == nil {
			continue
		}
		b := types.Bar{Time: int64(*t), Open: *o, High: *h, Low: *l, Close: *c}
		if v := num(m, "volume"); v != nil {
			b.Volume = int64(*v)
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

func normalizeDividends(raw []any) []types.DividendRecord {
	out := make([]types.DividendRecord, 0, len(raw))
	for _, e := range raw {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		amt := num(m, "amount")
		date := str(m, "date")
		if amt == nil || date == "" {
			continue
		}
		out = append(out, types.DividendRecord{Date: date, Amount: *amt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// normalizeBucketStats reads either the flat {zone, avg_3m, max_dd} form or
// the nested {buckets: {p0_35: {...}}} form keyed by the current bucket.
func normalizeBucketStats(derived map[string]any, pos *float64) *types.BucketStats {
	bs := obj(derived, "pos52_bucket_stats")
	if bs == nil {
		return nil
	}
	if buckets := obj(bs, "buckets"); buckets != nil {
		key := str(derived, "pos52_bucket")
		if key == "" {
			key = bucketKey(pos)
		}
		b := obj(buckets, key)
		if b == nil {
			return nil
		}
		return bucketFrom(b, zoneOfBucket(key))
	}
	return bucketFrom(bs, str(bs, "zone"))
}

func bucketFrom(m map[string]any, zone string) *types.BucketStats {
	st := &types.BucketStats{
		Zone:  zone,
		Avg3M: num(m, keysBucketAvg...),
		MaxDD: num(m, keysBucketDD...),
	}
	if n := num(m, keysBucketSize...); n != nil {
		st.SampleSize = int(*n)
	}
	if st.Avg3M == nil && st.MaxDD == nil {
		return nil
	}
	return st
}

func bucketKey(pos *float64) string {
	if pos == nil {
		return ""
	}
	switch p := *pos; {
	case p < 35:
		return "p0_35"
	case p < 70:
		return "p35_70"
	case p < 90:
		return "p70_90"
	default:
		return "p90_100"
	}
}

func zoneOfBucket(key string) string {
	switch key {
	case "p0_35":
		return "low"
	case "p35_70":
		return "mid"
	case "p70_90", "p90_100":
		return "high"
	}
	return ""
}

func obj(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

func list(m map[string]any, key string) []any {
	if m == nil {
		return nil
	}
	v, _ := m[key].([]any)
	return v
}

func str(m map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if t, ok := v.(time.Time); ok {
			return t.Format("2006-01-02")
		}
		if s := strings.TrimSpace(cast.ToString(v)); s != "" {
			return s
		}
	}
	return ""
}

// num returns the first finite numeric value among keys. Booleans are not numbers here.
func num(m map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if _, isBool := v.(bool); isBool {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		return &f
	}
	return nil
}
