package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/komsit37/divdash/pkg/dash/alerts"
	"github.com/komsit37/divdash/pkg/dash/events"
	"github.com/komsit37/divdash/pkg/dash/filter"
	"github.com/komsit37/divdash/pkg/dash/position"
	"github.com/komsit37/divdash/pkg/dash/tone"
	"github.com/komsit37/divdash/pkg/dash/types"
)

// State is everything one dashboard pass knows. Load fills the inputs, each
// with its own error; Compute derives the rest. A failed input leaves its
// derived fields nil.
type State struct {
	Today time.Time

	MarketLocation string
	Market         *types.MarketData
	MarketErr      error

	Events    []types.MarketEvent
	EventsErr error

	Position    *types.UserPosition
	PositionErr error

	Tone      *tone.Result
	Ranked    []events.Ranked
	Zone      *position.Classification
	Holding   position.Holding
	HoldingOK bool
	Alerts    []alerts.Alert
}

// Compute derives tone, ranked events, the 52-week zone, the holding
// evaluation and alerts from whatever inputs loaded.
func (s *State) Compute(f filter.Filter, logger *zap.Logger) {
	var lastClose, monthly *float64
	if md := s.Market; s.MarketErr == nil && md != nil {
		t := tone.Compute(md.Summary, md.Derived)
		s.Tone = &t
		c := position.Classify(md.Derived.Pos52WPct)
		s.Zone = &c
		lastClose = md.Summary.LastClose
		monthly = md.DividendSummary.MonthlyAvgDividend
	}

	if s.EventsErr == nil {
		s.Ranked = (&events.Ranker{Logger: logger, Filter: f}).Rank(s.Events, s.Today)
	}

	if s.PositionErr == nil {
		s.Holding, s.HoldingOK = position.Evaluate(s.Position, lastClose, monthly)
	}

	in := alerts.Input{Tone: s.Tone, Events: s.Ranked, Position: s.Zone}
	if s.HoldingOK {
		in.Holding = &s.Holding
	}
	s.Alerts = alerts.Build(in)
}
