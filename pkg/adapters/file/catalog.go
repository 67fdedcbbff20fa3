package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Catalog implements ports.PresetCatalog over a directory of YAML or JSON files.
//
// A file holds either a single preset:
//
//	name: dusk
//	colors: ["#0f2027", "#2c5364"]
//
// or a list under the "presets" key. A single preset without a name takes the file name.
// The directory is read on every call so edits are picked up without a restart.
type Catalog struct {
	Dir string
}

// presetDocument is the union of both file shapes.
type presetDocument struct {
	Name        string          `mapstructure:"name"`
	Label       string          `mapstructure:"label"`
	Description string          `mapstructure:"description"`
	Colors      []string        `mapstructure:"colors"`
	Presets     []domain.Preset `mapstructure:"presets"`
}

// NewCatalog creates a catalog rooted at dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{Dir: dir}
}

// List returns every preset found in the directory, sorted by name.
func (c *Catalog) List(ctx context.Context) ([]domain.Preset, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}

	seen := make(map[string]string)
	var presets []domain.Preset

	for _, entry := range entries {
		if entry.IsDir() || !isPresetFile(entry.Name()) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(c.Dir, entry.Name())
		found, err := decodePresetFile(path)
		if err != nil {
			return nil, err
		}

		for _, p := range found {
			if prev, ok := seen[p.Name]; ok {
				return nil, fmt.Errorf("collision detected: preset '%s' is defined in both '%s' and '%s'", p.Name, prev, entry.Name())
			}
			seen[p.Name] = entry.Name()
			presets = append(presets, p)
		}
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// Get resolves a preset by name.
func (c *Catalog) Get(ctx context.Context, name string) (domain.Preset, error) {
	presets, err := c.List(ctx)
	if err != nil {
		return domain.Preset{}, err
	}
	for _, p := range presets {
		if p.Name == name {
			return p, nil
		}
	}
	return domain.Preset{}, fmt.Errorf("%w: %s", domain.ErrPresetNotFound, name)
}

func decodePresetFile(path string) ([]domain.Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	// JSON is valid YAML, so one decoder handles both extensions.
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	var doc presetDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &doc,
		ErrorUnused: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	presets := doc.Presets
	if len(doc.Colors) > 0 {
		name := doc.Name
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		presets = append(presets, domain.Preset{
			Name:        name,
			Label:       doc.Label,
			Description: doc.Description,
			Colors:      doc.Colors,
		})
	}

	for _, p := range presets {
		if p.Name == "" {
			return nil, fmt.Errorf("%s: preset missing name", filepath.Base(path))
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: preset %q: %w", filepath.Base(path), p.Name, err)
		}
	}
	return presets, nil
}

func isPresetFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
