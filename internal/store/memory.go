package store

import (
	"context"
	"sync"

	"chatseal/internal/domain"
)

// MemoryKeyStore keeps key pairs in a process-local map.
type MemoryKeyStore struct {
	mu    sync.RWMutex
	pairs map[domain.UserID]domain.SerializedKeyPair
}

var _ domain.KeyStore = (*MemoryKeyStore)(nil)

func NewMemoryKeyStore() *MemoryKeyStore {
	return &MemoryKeyStore{pairs: make(map[domain.UserID]domain.SerializedKeyPair)}
}

func (s *MemoryKeyStore) Get(_ context.Context, user domain.UserID) (domain.SerializedKeyPair, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.pairs[user]
	return p, ok, nil
}

func (s *MemoryKeyStore) Set(_ context.Context, user domain.UserID, pair domain.SerializedKeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[user] = pair
	return nil
}

func (s *MemoryKeyStore) Delete(_ context.Context, user domain.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pairs, user)
	return nil
}
