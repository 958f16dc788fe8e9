package memory

import (
	"context"
	"sync"

	"github.com/nvalim/lattice/pkg/domain"
)

// InventorySource implements ports.InventorySource from a settable snapshot.
type InventorySource struct {
	mu       sync.RWMutex
	statuses map[string][]domain.InventoryStatus
	err      error
}

// NewInventorySource creates an empty source; every form reports unlimited
// stock until SetStatuses is called.
func NewInventorySource() *InventorySource {
	return &InventorySource{statuses: make(map[string][]domain.InventoryStatus)}
}

// SetStatuses replaces the snapshot for a form.
func (s *InventorySource) SetStatuses(formID string, statuses []domain.InventoryStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[formID] = append([]domain.InventoryStatus(nil), statuses...)
}

// FailWith makes every fetch return err; pass nil to recover.
func (s *InventorySource) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// FetchStatus returns a copy of the form's snapshot.
func (s *InventorySource) FetchStatus(ctx context.Context, formID string) ([]domain.InventoryStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]domain.InventoryStatus(nil), s.statuses[formID]...), nil
}
