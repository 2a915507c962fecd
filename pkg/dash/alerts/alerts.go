package alerts

import (
	"fmt"

	"github.com/komsit37/divdash/pkg/dash/events"
	"github.com/komsit37/divdash/pkg/dash/position"
	"github.com/komsit37/divdash/pkg/dash/tone"
)

// Level orders alerts by severity.
type Level string

const (
	Info Level = "info"
	Warn Level = "warn"
)

// Alert is one line on the alerts panel.
type Alert struct {
	Level  Level  `json:"level"`
	Source string `json:"source"`
	Text   string `json:"text"`
}

// HoldingMovePct is the saved-position gain or loss that raises an alert.
const HoldingMovePct = 10

// Input collects what the aggregator reads. Nil members (a failed or
// missing section) contribute nothing.
type Input struct {
	Tone     *tone.Result
	Events   []events.Ranked
	Position *position.Classification
	Holding  *position.Holding
}

// Build aggregates alerts from tone, upcoming events, the 52-week zone and
// the saved position, in that order.
func Build(in Input) []Alert {
	var out []Alert

	if t := in.Tone; t != nil {
		switch t.Label {
		case tone.Risk:
			out = append(out, Alert{Level: Warn, Source: "tone",
				Text: fmt.Sprintf("tone is cautious (score %d): hold off on new entries", t.Score)})
		case tone.Safe:
			out = append(out, Alert{Level: Info, Source: "tone",
				Text: fmt.Sprintf("tone is stable (score %d): accumulation favoured", t.Score)})
		}
	}

	for _, e := range in.Events {
		if !e.Urgent {
			continue
		}
		lvl := Info
		if e.Impact >= events.ImpactHigh {
			lvl = Warn
		}
		out = append(out, Alert{Level: lvl, Source: "events",
			Text: fmt.Sprintf("%s %s (%s)", e.Tag(), e.Title, e.Date)})
	}

	if p := in.Position; p != nil && p.Known {
		switch p.Zone {
		case position.ZoneHigh:
			out = append(out, Alert{Level: Warn, Source: "52w",
				Text: fmt.Sprintf("price in the upper 52-week band (%.0f%%)", p.ClampedPct)})
		case position.ZoneLow:
			out = append(out, Alert{Level: Info, Source: "52w",
				Text: fmt.Sprintf("price in the lower 52-week band (%.0f%%)", p.ClampedPct)})
		}
	}

	if h := in.Holding; h != nil && h.PnLPct != nil {
		switch pct := *h.PnLPct; {
		case pct <= -HoldingMovePct:
			out = append(out, Alert{Level: Warn, Source: "position",
				Text: fmt.Sprintf("saved position is down %.1f%%", -pct)})
		case pct >= HoldingMovePct:
			out = append(out, Alert{Level: Info, Source: "position",
				Text: fmt.Sprintf("saved position is up %.1f%%", pct)})
		}
	}
	return out
}
