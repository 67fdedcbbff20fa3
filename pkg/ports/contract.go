package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/spectrum/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunGradientStoreContract runs a suite of tests to verify that a GradientStore implementation
// adheres to the defined interface contract.
func RunGradientStoreContract(t *testing.T, store GradientStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newSnapshot := func(id string) *domain.Snapshot {
		g := domain.NewGradient(nil, "")
		return &domain.Snapshot{
			SessionID:  id,
			Colors:     g.Colors,
			Drafts:     g.Colors,
			Direction:  g.Direction,
			Expression: g.Expression(),
			UpdatedAt:  time.Now().UTC().Truncate(time.Second),
		}
	}

	t.Run("Save and Load", func(t *testing.T) {
		snap := newSnapshot(sessionID)
		snap.Colors = []string{"#111111", "#222222", "#333333"}
		snap.Drafts = []string{"#111111", "#22", "#333333"}
		snap.Direction = "135deg"
		snap.Expression = domain.Serialize(snap.Colors, snap.Direction)
		snap.Metadata = map[string]string{"surface": "contract"}

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.Colors, loaded.Colors)
		assert.Equal(t, snap.Drafts, loaded.Drafts)
		assert.Equal(t, "135deg", loaded.Direction)
		assert.Equal(t, snap.Expression, loaded.Expression)
		assert.Equal(t, "contract", loaded.Metadata["surface"])
		assert.True(t, snap.UpdatedAt.Equal(loaded.UpdatedAt), "UpdatedAt should round-trip")
	})

	t.Run("Load Returns Independent Copy", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, newSnapshot(sessionID)))

		first, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		first.Colors[0] = "#000000"

		second, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.DefaultColors[0], second.Colors[0])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, newSnapshot(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, "never-saved-"+sessionID), "Delete of unknown session should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, newSnapshot(id1))
		_ = store.Save(ctx, id2, newSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
