package auth

import (
	"context"
	"maps"
	"sync"
)

type MemCredentials struct {
	mu    sync.RWMutex
	users map[string]string
}

func NewMemCredentials() *MemCredentials {
	return &MemCredentials{users: make(map[string]string)}
}

// Set stores password verbatim; pass a bcrypt hash to store a hashed entry.
func (s *MemCredentials) Set(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

func (s *MemCredentials) Load(_ context.Context) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.users)
}
