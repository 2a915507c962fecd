package events

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/komsit37/divdash/pkg/dash/filter"
	"github.com/komsit37/divdash/pkg/dash/types"
)

const (
	// MaxBoard is the maximum number of events on the board.
	MaxBoard = 10
	// OldestDDay keeps yesterday's events visible; anything older is dropped.
	OldestDDay = -1
	// UrgentWithin flags events from today up to this many days ahead.
	UrgentWithin = 3

	dateLayout = "2006-01-02"
)

// Badge is the event category shown on the board.
type Badge string

const (
	BadgeFutures Badge = "FUTURES"
	BadgeOptions Badge = "OPTIONS"
	BadgeEvent   Badge = "EVENT"
)

// Impact levels on a 3-dot scale.
const (
	ImpactLow  = 1
	ImpactMid  = 2
	ImpactHigh = 3
)

// Ranked is an event with its computed day offset and presentation tags.
type Ranked struct {
	types.MarketEvent
	DDay   int   `json:"dday"`
	Badge  Badge `json:"badge"`
	Urgent bool  `json:"urgent"`
	Impact int   `json:"impact"`
}

// Tag renders the D-day label: D-DAY, D-3, D+1.
func (r Ranked) Tag() string { return DDayTag(r.DDay) }

// Ranker orders events for the board. Dropped events are logged.
type Ranker struct {
	Logger *zap.Logger
	Filter filter.Filter
}

// Rank is a convenience for a Ranker without logging or filtering.
func Rank(evts []types.MarketEvent, today time.Time) []Ranked {
	return (&Ranker{}).Rank(evts, today)
}

// Rank returns at most MaxBoard events sorted ascending by D-day. Events with
// an unparsable date or a D-day below OldestDDay are excluded. Equal D-days
// keep their input order.
func (r *Ranker) Rank(evts []types.MarketEvent, today time.Time) []Ranked {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	out := make([]Ranked, 0, len(evts))
	for _, e := range evts {
		if r.Filter != nil && !filter.Any(r.Filter, e.Type, e.Title) {
			continue
		}
		dday, err := DaysUntil(e.Date, today)
		if err != nil {
			logger.Warn("dropping event with bad date",
				zap.String("title", e.Title), zap.String("date", e.Date), zap.Error(err))
			continue
		}
		if dday < OldestDDay {
			continue
		}
		out = append(out, Ranked{
			MarketEvent: e,
			DDay:        dday,
			Badge:       BadgeFor(e.Type),
			Urgent:      IsUrgent(dday),
			Impact:      ImpactOf(e),
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].DDay < out[j].DDay })
	if len(out) > MaxBoard {
		out = out[:MaxBoard]
	}
	return out
}

// DaysUntil returns the signed number of calendar days from today to date
// (YYYY-MM-DD). Both are compared as calendar dates in today's location.
func DaysUntil(date string, today time.Time) (int, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), today.Location())
	if err != nil {
		return 0, fmt.Errorf("parse event date %q: %w", date, err)
	}
	y, m, dd := today.Date()
	t0 := time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
	t1 := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return int(t1.Sub(t0).Hours() / 24), nil
}

// DDayTag renders a D-day offset.
func DDayTag(dday int) string {
	switch {
	case dday == 0:
		return "D-DAY"
	case dday > 0:
		return fmt.Sprintf("D-%d", dday)
	default:
		return fmt.Sprintf("D+%d", -dday)
	}
}

// IsUrgent reports whether an event is today or within UrgentWithin days.
func IsUrgent(dday int) bool { return dday >= 0 && dday <= UrgentWithin }

// BadgeFor maps an event type to its badge.
func BadgeFor(typ string) Badge {
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case types.EventFutures:
		return BadgeFutures
	case types.EventOptions:
		return BadgeOptions
	default:
		return BadgeEvent
	}
}

// ImpactOf returns the event's own impact level when it is 1..3, else one
// inferred from the type.
func ImpactOf(e types.MarketEvent) int {
	if e.ImpactLevel >= ImpactLow && e.ImpactLevel <= ImpactHigh {
		return e.ImpactLevel
	}
	switch BadgeFor(e.Type) {
	case BadgeFutures:
		return ImpactHigh
	case BadgeOptions:
		return ImpactMid
	default:
		return ImpactLow
	}
}

// ImpactName is low, mid or high.
func ImpactName(level int) string {
	switch level {
	case ImpactHigh:
		return "high"
	case ImpactMid:
		return "mid"
	default:
		return "low"
	}
}

// Dots renders an impact level on the 3-dot scale, e.g. "●●○".
func Dots(level int) string {
	if level < ImpactLow {
		level = ImpactLow
	}
	if level > ImpactHigh {
		level = ImpactHigh
	}
	return strings.Repeat("●", level) + strings.Repeat("○", ImpactHigh-level)
}
