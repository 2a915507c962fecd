package store

import (
	"context"
	"errors"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// DefaultKey is the storage key of the saved position.
const DefaultKey = "jepq.position"

// ErrNotFound is returned by Load when no position has been saved.
var ErrNotFound = errors.New("no saved position")

// Store persists the single user position under a fixed key.
type Store interface {
	Load(ctx context.Context) (*types.UserPosition, error)
	Save(ctx context.Context, pos types.UserPosition) error
	Reset(ctx context.Context) error
	Close() error
}

func clone(p types.UserPosition) *types.UserPosition {
	cp := types.UserPosition{}
	if p.Avg != nil {
		cp.Avg = types.Float(*p.Avg)
	}
	if p.Shares != nil {
		cp.Shares = types.Float(*p.Shares)
	}
	return &cp
}
