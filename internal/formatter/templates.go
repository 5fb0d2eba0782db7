package formatter

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/filisonic/easyhr/internal/models"
	"github.com/filisonic/easyhr/internal/shared"
	"gopkg.in/yaml.v3"
)

//go:embed templates/default.yaml
var defaultPack []byte

// TemplatePack is a YAML document of email templates used to seed the template table.
type TemplatePack struct {
	Templates []*models.EmailTemplate `yaml:"templates"`
}

// ParseTemplatePack decodes and validates a YAML template pack.
//
// Templates without a category default to general; names must be unique within the pack.
func ParseTemplatePack(data []byte) (*TemplatePack, error) {
	var pack TemplatePack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("%w: parse template pack: %v", shared.ErrInvalidInput, err)
	}
	if len(pack.Templates) == 0 {
		return nil, fmt.Errorf("%w: template pack has no templates", shared.ErrInvalidInput)
	}

	seen := make(map[string]bool, len(pack.Templates))
	for i, t := range pack.Templates {
		if t == nil {
			return nil, fmt.Errorf("%w: template %d is empty", shared.ErrInvalidInput, i+1)
		}
		if t.Category == "" {
			t.Category = models.CategoryGeneral
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("template %d (%s): %w", i+1, t.Name, err)
		}
		if seen[t.Name] {
			return nil, fmt.Errorf("%w: template name %q appears twice", shared.ErrDuplicate, t.Name)
		}
		seen[t.Name] = true
	}
	return &pack, nil
}

// LoadTemplatePack reads a template pack from path, or the built-in pack when path is empty.
func LoadTemplatePack(path string) (*TemplatePack, error) {
	if path == "" {
		return ParseTemplatePack(defaultPack)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template pack: %w", err)
	}
	return ParseTemplatePack(data)
}
