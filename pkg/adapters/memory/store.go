// Package memory provides in-memory implementations of every Lattice port.
// They back tests and single-process setups; all of them are safe for
// concurrent use and copy data on the way in and out.
package memory

import (
	"context"
	"sync"

	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/ports"
)

// TemplateStore implements ports.TemplateStore in memory.
type TemplateStore struct {
	mu   sync.RWMutex
	data map[string]*ports.Template
}

// NewTemplateStore creates an empty in-memory template store.
func NewTemplateStore() *TemplateStore {
	return &TemplateStore{data: make(map[string]*ports.Template)}
}

// Load retrieves a deep copy of the stored template.
func (s *TemplateStore) Load(ctx context.Context, id string) (*ports.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tpl, ok := s.data[id]
	if !ok {
		return nil, domain.ErrTemplateNotFound
	}
	return &ports.Template{Name: tpl.Name, Graph: tpl.Graph.Clone()}, nil
}

// Save stores a deep copy so callers can't mutate the stored template by
// keeping their pointer.
func (s *TemplateStore) Save(ctx context.Context, id string, tpl *ports.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = &ports.Template{Name: tpl.Name, Graph: tpl.Graph.Clone()}
	return nil
}

// List returns the known template ids.
func (s *TemplateStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
