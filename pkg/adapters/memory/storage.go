package memory

import (
	"context"
	"errors"
	"sync"
)

// Storage implements ports.Storage in memory.
// FailWrites simulates quota exhaustion for tests.
type Storage struct {
	mu         sync.RWMutex
	data       map[string]string
	failWrites bool
}

// NewStorage creates an empty in-memory storage.
func NewStorage() *Storage {
	return &Storage{data: make(map[string]string)}
}

// FailWrites toggles simulated write failures.
func (s *Storage) FailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}

// GetItem returns the value for key.
func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// SetItem stores value under key.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrites {
		return errors.New("storage quota exceeded")
	}
	s.data[key] = value
	return nil
}

// RemoveItem deletes key.
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}
