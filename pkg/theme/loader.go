// loader.go — Load extra themes from YAML.
package theme

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// File is the on-disk shape of a theme file.
type File struct {
	Themes []Theme `yaml:"themes"`
}

// Load decodes a theme file from r and registers every theme in it.
// It returns the ids that were registered.
func (r *Registry) Load(src io.Reader) ([]string, error) {
	var f File
	if err := yaml.NewDecoder(src).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse themes: %w", err)
	}

	ids := make([]string, 0, len(f.Themes))
	for i, t := range f.Themes {
		if err := r.Register(t); err != nil {
			return ids, fmt.Errorf("theme %d: %w", i, err)
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}

// LoadFile registers the themes in the YAML file at path.
func (r *Registry) LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open theme file: %w", err)
	}
	defer f.Close()
	return r.Load(f)
}
