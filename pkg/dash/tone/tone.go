package tone

import (
	"fmt"
	"math"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// Label is the tone category derived from the score.
type Label string

const (
	Safe    Label = "safe"
	Neutral Label = "neutral"
	Risk    Label = "risk"
)

// Advice is a per-action recommendation tag.
type Advice string

const (
	AdviceOK      Advice = "ok"
	AdviceCaution Advice = "caution"
	AdviceReview  Advice = "review"
	AdviceAvoid   Advice = "avoid"
)

// Actions holds the advice for a new entry, an existing holding and
// dollar-cost averaging.
type Actions struct {
	Entry Advice `json:"entry"`
	Hold  Advice `json:"hold"`
	DCA   Advice `json:"dca"`
}

// Result is the tone panel content.
type Result struct {
	Score   int      `json:"score"`
	Label   Label    `json:"label"`
	Title   string   `json:"title"`
	Actions Actions  `json:"actions"`
	Reasons []string `json:"reasons"`
}

const (
	baseScore  = 50
	maxReasons = 3

	// NoDataReason is the single reason shown when no input triggered.
	NoDataReason = "insufficient data (summary will appear once collected)"
)

// Score adjustments.
const (
	pos52HighAt  = 85
	pos52LowAt   = 30
	pos52HighAdj = 14
	pos52LowAdj  = -10
	volSurgeAt   = 30
	volRiseAt    = 10
	volSurgeAdj  = 12
	volRiseAdj   = 6
	dayDropAt    = -2
	dayRallyAt   = 2
	dayDropAdj   = 8
	dayRallyAdj  = -4
	safeUpTo     = 30
	neutralUpTo  = 60
)

var (
	titles = map[Label]string{
		Safe:    "Stable (favours accumulation)",
		Neutral: "Neutral (wait and see)",
		Risk:    "Caution (manage risk)",
	}
	actions = map[Label]Actions{
		Safe:    {Entry: AdviceOK, Hold: AdviceOK, DCA: AdviceOK},
		Neutral: {Entry: AdviceCaution, Hold: AdviceOK, DCA: AdviceCaution},
		Risk:    {Entry: AdviceAvoid, Hold: AdviceReview, DCA: AdviceAvoid},
	}
)

// Compute scores the day's market tone. It is pure: equal inputs give equal results.
func Compute(summary types.MarketSummary, derived types.DerivedMetrics) Result {
	score := float64(baseScore)
	var reasons []string

	if derived.RiskScore != nil {
		score = *derived.RiskScore
		reasons = append(reasons, fmt.Sprintf("risk score %d", round(*derived.RiskScore)))
	}

	if p := derived.Pos52WPct; p != nil {
		switch {
		case *p >= pos52HighAt:
			score += pos52HighAdj
			reasons = append(reasons, fmt.Sprintf("near 52-week high (%d%%)", round(*p)))
		case *p <= pos52LowAt:
			score += pos52LowAdj
			reasons = append(reasons, fmt.Sprintf("near 52-week low (%d%%)", round(*p)))
		default:
			reasons = append(reasons, fmt.Sprintf("mid 52-week range (%d%%)", round(*p)))
		}
	}

	if v := derived.VolumeVsAvgPct; v != nil {
		switch {
		case *v >= volSurgeAt:
			score += volSurgeAdj
			reasons = append(reasons, fmt.Sprintf("volume surge (+%d%%)", round(*v)))
		case *v >= volRiseAt:
			score += volRiseAdj
			reasons = append(reasons, fmt.Sprintf("volume rising (+%d%%)", round(*v)))
		}
	}

	if c := summary.ChangePct; c != nil {
		switch {
		case *c <= dayDropAt:
			score += dayDropAdj
			reasons = append(reasons, fmt.Sprintf("down on the day (%.1f%%)", *c))
		case *c >= dayRallyAt:
			score += dayRallyAdj
			reasons = append(reasons, fmt.Sprintf("up on the day (+%.1f%%)", *c))
		}
	}

	final := Clamp(score)
	label := Classify(final)

	if len(reasons) > maxReasons {
		reasons = reasons[:maxReasons]
	}
	if len(reasons) == 0 {
		reasons = []string{NoDataReason}
	}

	return Result{
		Score:   final,
		Label:   label,
		Title:   titles[label],
		Actions: actions[label],
		Reasons: reasons,
	}
}

// Clamp rounds a raw score into [0,100]. NaN maps to the neutral base.
func Clamp(score float64) int {
	if math.IsNaN(score) {
		return baseScore
	}
	return round(math.Max(0, math.Min(100, score)))
}

// Classify maps a clamped score to its label.
func Classify(score int) Label {
	switch {
	case score <= safeUpTo:
		return Safe
	case score <= neutralUpTo:
		return Neutral
	default:
		return Risk
	}
}

func round(v float64) int { return int(math.Round(v)) }
