package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/spectrum/pkg/domain"
)

// Catalog implements ports.PresetCatalog using an in-memory map.
type Catalog struct {
	mu      sync.RWMutex
	presets map[string]domain.Preset
}

// NewCatalog creates a catalog from the given presets. Later duplicates shadow earlier ones.
// Every preset is validated so a broken entry fails at startup, not when applied.
func NewCatalog(presets ...domain.Preset) (*Catalog, error) {
	c := &Catalog{presets: make(map[string]domain.Preset, len(presets))}
	for _, p := range presets {
		if err := c.Put(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewBuiltinCatalog creates a catalog holding the shipped presets.
func NewBuiltinCatalog() *Catalog {
	c, err := NewCatalog(domain.BuiltinPresets()...)
	if err != nil {
		// builtin presets are covered by tests
		panic(err)
	}
	return c
}

// Put adds or replaces a preset.
func (c *Catalog) Put(p domain.Preset) error {
	if p.Name == "" {
		return fmt.Errorf("preset missing name")
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("preset %q: %w", p.Name, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.presets[p.Name] = p.Clone()
	return nil
}

// Get resolves a preset by name.
func (c *Catalog) Get(ctx context.Context, name string) (domain.Preset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.presets[name]
	if !ok {
		return domain.Preset{}, fmt.Errorf("%w: %s", domain.ErrPresetNotFound, name)
	}
	return p.Clone(), nil
}

// List returns every preset sorted by name.
func (c *Catalog) List(ctx context.Context) ([]domain.Preset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.Preset, 0, len(c.presets))
	for _, p := range c.presets {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
