package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/aretw0/spectrum/pkg/ports"
)

// PresetCatalogContractTest is a reusable test suite that verifies if an adapter complies with ports.PresetCatalog.
func PresetCatalogContractTest(t *testing.T, catalog ports.PresetCatalog, expected []domain.Preset) {
	t.Helper()
	ctx := context.Background()

	// 1. Get (Success)
	t.Run("Get_Success", func(t *testing.T) {
		for _, want := range expected {
			got, err := catalog.Get(ctx, want.Name)
			if err != nil {
				t.Fatalf("unexpected error getting preset %s: %v", want.Name, err)
			}
			if len(got.Colors) != len(want.Colors) {
				t.Fatalf("color count mismatch for %s. got %v, want %v", want.Name, got.Colors, want.Colors)
			}
			for i := range want.Colors {
				if got.Colors[i] != want.Colors[i] {
					t.Errorf("color %d mismatch for %s. got %q, want %q", i, want.Name, got.Colors[i], want.Colors[i])
				}
			}
		}
	})

	// 2. Get (NotFound)
	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := catalog.Get(ctx, "non-existent-preset")
		if !errors.Is(err, domain.ErrPresetNotFound) {
			t.Errorf("expected ErrPresetNotFound, got %v", err)
		}
	})

	// 3. List
	t.Run("List", func(t *testing.T) {
		presets, err := catalog.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing presets: %v", err)
		}

		if len(presets) != len(expected) {
			t.Errorf("expected %d presets, got %d", len(expected), len(presets))
		}

		for i := 1; i < len(presets); i++ {
			if presets[i-1].Name > presets[i].Name {
				t.Errorf("presets not sorted: %s before %s", presets[i-1].Name, presets[i].Name)
			}
		}

		lookup := make(map[string]bool)
		for _, p := range presets {
			lookup[p.Name] = true
		}
		for _, want := range expected {
			if !lookup[want.Name] {
				t.Errorf("preset %s missing from list", want.Name)
			}
		}
	})
}
