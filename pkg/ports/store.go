package ports

import (
	"context"

	"github.com/nvalim/lattice/pkg/domain"
)

// Template pairs a form graph with its display name.
type Template struct {
	Name  string            `json:"name"`
	Graph *domain.FormGraph `json:"graph"`
}

// TemplateStore persists form templates for the editing session.
// This is the Save collaborator of the editor-side autosave path.
type TemplateStore interface {
	// Load retrieves a template by id.
	// Returns domain.ErrTemplateNotFound if the template does not exist.
	Load(ctx context.Context, id string) (*Template, error)

	// Save persists the template under the given id.
	Save(ctx context.Context, id string, tpl *Template) error
}

// Storage is a browser-local-storage-shaped key/value port used for draft
// persistence. Implementations may fail (quota, connectivity); callers must
// treat every failure as non-fatal.
type Storage interface {
	// GetItem returns the value for key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)

	// SetItem stores value under key.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}
