package session

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store with the same per-key semantics as the
// Redis implementation. Used in tests and single-binary development runs.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string]string
	logins map[string]string
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]map[string]string),
		logins: make(map[string]string),
	}
}

func (s *MemoryStore) Get(ctx context.Context, userID, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.data[userID]
	if !ok {
		return "", false, nil
	}
	val, ok := fields[key]
	return val, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, userID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.data[userID]
	if !ok {
		fields = make(map[string]string)
		s.data[userID] = fields
	}
	fields[key] = value
	return nil
}

func (s *MemoryStore) ClearKeys(ctx context.Context, userID string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields, ok := s.data[userID]
	if !ok {
		return nil
	}
	for _, k := range keys {
		delete(fields, k)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

func (s *MemoryStore) BindClient(ctx context.Context, userID, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logins[clientID] = userID
	return nil
}

func (s *MemoryStore) DeleteByClient(ctx context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.logins[clientID]
	if !ok {
		return nil
	}
	delete(s.data, userID)
	delete(s.logins, clientID)
	return nil
}
