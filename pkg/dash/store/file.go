package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/komsit37/divdash/pkg/dash/types"
)

// FileStore keeps a JSON object of key -> position in a single file, so
// several keys can share one file.
type FileStore struct {
	path string
	key  string
	mu   sync.RWMutex
}

var _ Store = (*FileStore)(nil)

func NewFileStore(path, key string) *FileStore {
	return &FileStore{path: path, key: key}
}

func (s *FileStore) Load(ctx context.Context) (*types.UserPosition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.readUnlocked()
	if err != nil {
		return nil, err
	}
	raw, ok := entries[s.key]
	if !ok {
		return nil, ErrNotFound
	}
	var pos types.UserPosition
	if err := json.Unmarshal(raw, &pos); err != nil {
		return nil, fmt.Errorf("decode %s[%s]: %w", s.path, s.key, err)
	}
	return &pos, nil
}

func (s *FileStore) Save(ctx context.Context, pos types.UserPosition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readUnlocked()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(pos)
	if err != nil {
		return err
	}
	entries[s.key] = raw
	return s.writeUnlocked(entries)
}

func (s *FileStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readUnlocked()
	if err != nil {
		return err
	}
	if _, ok := entries[s.key]; !ok {
		return nil
	}
	delete(entries, s.key)
	return s.writeUnlocked(entries)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) readUnlocked() (map[string]json.RawMessage, error) {
	entries := map[string]json.RawMessage{}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entries, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileStore) writeUnlocked(entries map[string]json.RawMessage) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}
