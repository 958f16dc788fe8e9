// Package file implements a filesystem-backed template store. Templates are
// YAML documents, one file per form, suitable for keeping form definitions in
// version control.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/nvalim/lattice/pkg/domain"
	"github.com/nvalim/lattice/pkg/ports"
)

// Store implements ports.TemplateStore using the local filesystem.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath. An empty basePath defaults to
// ".lattice/templates".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".lattice", "templates")
	}
	return &Store{BasePath: basePath}
}

type templateFile struct {
	Name  string                  `yaml:"name"`
	Root  string                  `yaml:"root"`
	Steps map[string]*domain.Step `yaml:"steps"`
	Meta  map[string]any          `yaml:"meta,omitempty"`
}

// Save writes the template atomically: temp file in the same directory, fsync,
// then rename over the destination.
func (s *Store) Save(ctx context.Context, id string, tpl *ports.Template) error {
	if id == "" {
		return fmt.Errorf("template id cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure template directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, id+".yaml")

	doc := templateFile{Name: tpl.Name}
	if tpl.Graph != nil {
		doc.Root = tpl.Graph.RootStepID
		doc.Steps = tpl.Graph.Steps
	}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal template: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+id+"-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename cannot replace an existing file on Windows.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing template for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}
	return nil
}

// Load reads and decodes a template file.
func (s *Store) Load(ctx context.Context, id string) (*ports.Template, error) {
	if id == "" {
		return nil, fmt.Errorf("template id cannot be empty")
	}

	data, err := os.ReadFile(filepath.Join(s.BasePath, id+".yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("failed to read template file: %w", err)
	}

	var doc templateFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal template: %w", err)
	}

	g := domain.NewFormGraph()
	g.RootStepID = doc.Root
	if doc.Steps != nil {
		g.Steps = doc.Steps
	}
	// IDs live in the map keys on disk; fill them back in.
	for id, step := range g.Steps {
		if step != nil && step.ID == "" {
			step.ID = id
		}
	}
	return &ports.Template{Name: doc.Name, Graph: g}, nil
}

// Delete removes a template file. Deleting a missing template is a no-op.
func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("template id cannot be empty")
	}
	err := os.Remove(filepath.Join(s.BasePath, id+".yaml"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete template file: %w", err)
	}
	return nil
}

// List returns the ids of all stored templates.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yaml" {
			name := entry.Name()
			ids = append(ids, name[:len(name)-len(".yaml")])
		}
	}
	return ids, nil
}
