package source

import (
	"context"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// MarketSource loads the primary market document from a location spec
// (a filepath or an http(s) URL).
type MarketSource interface {
	LoadMarket(ctx context.Context, spec string) (*types.MarketData, error)
}

// EventSource loads the market event calendar from a location spec.
type EventSource interface {
	LoadEvents(ctx context.Context, spec string) ([]types.MarketEvent, error)
}
