package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// BadgerStore keeps the position in an embedded Badger database.
type BadgerStore struct {
	store *badgerhold.Store
	key   string
}

var _ Store = (*BadgerStore)(nil)

type positionRecord struct {
	Avg       *float64
	Shares    *float64
	UpdatedAt time.Time
}

// OpenBadgerStore opens (creating if needed) a Badger database in dir.
func OpenBadgerStore(dir, key string) (*BadgerStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create badger directory: %w", err)
	}
	options := badgerhold.DefaultOptions
	options.Dir = dir
	options.ValueDir = dir
	options.Logger = nil

	s, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &BadgerStore{store: s, key: key}, nil
}

func (s *BadgerStore) Load(ctx context.Context) (*types.UserPosition, error) {
	var rec positionRecord
	err := s.store.Get(s.key, &rec)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get position: %w", err)
	}
	return &types.UserPosition{Avg: rec.Avg, Shares: rec.Shares}, nil
}

func (s *BadgerStore) Save(ctx context.Context, pos types.UserPosition) error {
	rec := positionRecord{Avg: pos.Avg, Shares: pos.Shares, UpdatedAt: time.Now()}
	if err := s.store.Upsert(s.key, rec); err != nil {
		return fmt.Errorf("upsert position: %w", err)
	}
	return nil
}

func (s *BadgerStore) Reset(ctx context.Context) error {
	err := s.store.Delete(s.key, positionRecord{})
	if err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("delete position: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error { return s.store.Close() }
