package store

import (
	"context"
	"sync"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// MemoryStore keeps the position in-memory. Useful for tests or ephemeral runs.
type MemoryStore struct {
	mu  sync.RWMutex
	pos *types.UserPosition
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load(ctx context.Context) (*types.UserPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pos == nil {
		return nil, ErrNotFound
	}
	return clone(*s.pos), nil
}

func (s *MemoryStore) Save(ctx context.Context, pos types.UserPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = clone(pos)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pos = nil
	return nil
}

func (s *MemoryStore) Close() error { return nil }
