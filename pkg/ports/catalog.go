package ports

import (
	"context"

	"github.com/aretw0/spectrum/pkg/domain"
)

// PresetCatalog defines how named presets are discovered.
// This allows the preset source (Loam, FS, Memory) to be decoupled.
type PresetCatalog interface {
	// List returns every preset, sorted by name.
	List(ctx context.Context) ([]domain.Preset, error)

	// Get resolves a preset by name.
	// Returns domain.ErrPresetNotFound if no preset has that name.
	Get(ctx context.Context, name string) (domain.Preset, error)
}

// Watchable defines an interface for catalogs that can notify about backend changes.
// This is typically used to hot-reload presets in long-running servers.
type Watchable interface {
	// Watch returns a channel that receives the ID of each changed document.
	Watch(ctx context.Context) (<-chan string, error)
}
