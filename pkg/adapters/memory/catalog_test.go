package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/spectrum/pkg/adapters/memory"
	"github.com/aretw0/spectrum/pkg/domain"
	contract "github.com/aretw0/spectrum/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCatalog_Contract(t *testing.T) {
	catalog := memory.NewBuiltinCatalog()
	contract.PresetCatalogContractTest(t, catalog, domain.BuiltinPresets())
}

func TestCatalog_RejectsInvalidPreset(t *testing.T) {
	_, err := memory.NewCatalog(domain.Preset{Name: "broken", Colors: []string{"#fff"}})
	assert.ErrorIs(t, err, domain.ErrTooFewColors)

	_, err = memory.NewCatalog(domain.Preset{Colors: []string{"#fff", "#000"}})
	assert.Error(t, err)
}

func TestCatalog_GetReturnsCopy(t *testing.T) {
	catalog, err := memory.NewCatalog(domain.Preset{Name: "duo", Colors: []string{"#fff", "#000"}})
	require.NoError(t, err)

	p, err := catalog.Get(context.Background(), "duo")
	require.NoError(t, err)
	p.Colors[0] = "red"

	again, err := catalog.Get(context.Background(), "duo")
	require.NoError(t, err)
	assert.Equal(t, "#fff", again.Colors[0])
}
