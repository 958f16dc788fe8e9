package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/nvalim/lattice/pkg/domain"
)

// TemplateMeta is the optional free-form header of a template file. The meta
// block is an open map on disk; mapstructure pulls the known keys out and
// leaves the rest in Extra.
type TemplateMeta struct {
	Author      string            `json:"author" mapstructure:"author"`
	Version     string            `json:"version" mapstructure:"version"`
	Description string            `json:"description" mapstructure:"description"`
	Tags        []string          `json:"tags" mapstructure:"tags"`
	Extra       map[string]any    `json:"extra,omitempty" mapstructure:",remain"`
}

// LoadMeta reads just the meta block of a template file. A template without a
// meta block yields an empty TemplateMeta.
func (s *Store) LoadMeta(ctx context.Context, id string) (*TemplateMeta, error) {
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

	meta := &TemplateMeta{}
	if len(doc.Meta) > 0 {
		if err := mapstructure.Decode(doc.Meta, meta); err != nil {
			return nil, fmt.Errorf("failed to decode template meta: %w", err)
		}
	}
	return meta, nil
}
