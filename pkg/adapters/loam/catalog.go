package loam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/ports"
)

// WatchPattern selects the documents the catalog reacts to.
const WatchPattern = "**/*.{md,json,yaml,yml}"

var (
	_ ports.PresetCatalog = (*Catalog)(nil)
	_ ports.Watchable     = (*Catalog)(nil)
)

// Catalog adapts a Loam repository of preset documents to ports.PresetCatalog.
type Catalog struct {
	Repo *loam.TypedRepository[PresetMetadata]
}

// New creates a new Loam catalog.
func New(repo *loam.TypedRepository[PresetMetadata]) *Catalog {
	return &Catalog{
		Repo: repo,
	}
}

// Open initializes a read-only Loam repository at path and wraps it.
func Open(path string) (*Catalog, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PresetMetadata](repo)), nil
}

// Create initializes a writable Loam repository at path, creating the directory.
func Create(path string) (*Catalog, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preset directory: %w", err)
	}
	repo, err := loam.Init(path, loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PresetMetadata](repo)), nil
}

// Put writes a preset as a Markdown document named after it. The description
// becomes the document body.
func (c *Catalog) Put(ctx context.Context, p domain.Preset) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("preset %s: %w", p.Name, err)
	}
	err := c.Repo.Save(ctx, &loam.DocumentModel[PresetMetadata]{
		ID:      p.Name + ".md",
		Content: p.Description,
		Data: PresetMetadata{
			Name:   p.Name,
			Label:  p.Label,
			Colors: append([]string(nil), p.Colors...),
		},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", p.Name, err)
	}
	return nil
}

// List returns every non-draft preset, sorted by name.
func (c *Catalog) List(ctx context.Context) ([]domain.Preset, error) {
	docs, err := c.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	presets := make([]domain.Preset, 0, len(docs))

	for _, doc := range docs {
		if doc.Data.Draft {
			continue
		}
		p := toPreset(doc.ID, doc.Data, doc.Content)
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s (%s): %w", p.Name, doc.ID, err)
		}
		if prev, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("collision detected: preset '%s' is defined in both '%s' and '%s'", p.Name, prev, doc.ID)
		}
		seen[p.Name] = doc.ID
		presets = append(presets, p)
	}

	sort.Slice(presets, func(i, j int) bool { return presets[i].Name < presets[j].Name })
	return presets, nil
}

// Get resolves a preset by its name, falling back to the document path
// without extension.
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

// Watch implements ports.Watchable. It emits the normalized id of every
// changed preset document.
func (c *Catalog) Watch(ctx context.Context) (<-chan string, error) {
	events, err := c.Repo.Watch(ctx, WatchPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func toPreset(docID string, meta PresetMetadata, body string) domain.Preset {
	name := meta.Name
	if name == "" {
		name = trimExtension(docID)
	}
	desc := meta.Description
	if desc == "" {
		desc = strings.TrimSpace(body)
	}
	return domain.Preset{
		Name:        name,
		Label:       meta.Label,
		Description: desc,
		Colors:      append([]string(nil), meta.Colors...),
	}
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
