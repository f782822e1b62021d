package catalog

import (
	"context"
	"slices"
	"sync"
)

type MemStore struct {
	mu    sync.RWMutex
	items []Item
}

func NewMemStore(seed ...Item) *MemStore {
	return &MemStore{items: slices.Clone(seed)}
}

func (s *MemStore) Init(ctx context.Context) error { return nil }

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) Load(ctx context.Context) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *MemStore) Save(ctx context.Context, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = slices.Clone(items)
	return nil
}
