// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package backend

import (
	"context"
	"sync"

	"github.com/ManuGH/fetchdemo/internal/user"
)

// MemoryStore implements Store using a map (thread-safe).
type MemoryStore struct {
	mu    sync.RWMutex
	next  user.ID
	users map[user.ID]user.User
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[user.ID]user.User)}
}

func (s *MemoryStore) Create(_ context.Context, u user.User) (user.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.users[s.next] = u
	return s.next, nil
}

func (s *MemoryStore) Get(_ context.Context, id user.ID) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return user.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) Delete(_ context.Context, id user.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }
