package position

import (
	"fmt"
	"math"
)

// Zone is the 52-week range band of the current price.
type Zone string

const (
	ZoneLow  Zone = "low"
	ZoneMid  Zone = "mid"
	ZoneHigh Zone = "high"
)

// Zone thresholds: below LowBelow is low, at or above HighFrom is high.
const (
	LowBelow = 35
	HighFrom = 70
)

// PendingMessage is shown while the 52-week position is unknown.
const PendingMessage = "52-week position is still being computed."

// Classification is the 52-week gauge content. Zone is empty when the
// position is unknown.
type Classification struct {
	Zone       Zone    `json:"zone,omitempty"`
	ClampedPct float64 `json:"clamped_pct"`
	Known      bool    `json:"known"`
	Tag        string  `json:"tag"`
	Message    string  `json:"message"`
}

// Classify maps a 0..100 percentile to its zone and advisory message.
func Classify(pct *float64) Classification {
	if pct == nil || math.IsNaN(*pct) {
		return Classification{Message: PendingMessage}
	}
	p := Clamp(*pct)
	z := ZoneOf(p)
	return Classification{
		Zone:       z,
		ClampedPct: p,
		Known:      true,
		Tag:        tags[z],
		Message:    message(z, p),
	}
}

// ZoneOf returns the zone for an already clamped percentile.
func ZoneOf(p float64) Zone {
	switch {
	case p < LowBelow:
		return ZoneLow
	case p >= HighFrom:
		return ZoneHigh
	default:
		return ZoneMid
	}
}

// Clamp bounds a percentage to [0,100].
func Clamp(p float64) float64 { return math.Max(0, math.Min(100, p)) }

var tags = map[Zone]string{
	ZoneLow:  "lower band",
	ZoneMid:  "middle band",
	ZoneHigh: "upper band",
}

func message(z Zone, p float64) string {
	switch z {
	case ZoneHigh:
		return fmt.Sprintf("Price sits in the top %.0f%% of its 52-week range. "+
			"Scaling in gradually tends to be safer than chasing here.", p)
	case ZoneLow:
		return fmt.Sprintf("Price sits near the bottom %.0f%% of its 52-week range. "+
			"Volatility may widen, so build in steps and keep an eye on the dividend trend.", math.Max(0, 100-p))
	default:
		return "Price sits in the middle of its 52-week range. " +
			"Regular accumulation manages the average cost better than timing."
	}
}
