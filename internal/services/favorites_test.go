package services

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFavoriteLifecycle(t *testing.T) {
	mgr, cfg := newTestStore(t)
	addVerifiedUser(t, mgr, "alice")
	uploaded := uploadApproved(t, mgr, cfg, "alice", "Notes", "Physics", "notes.pdf")

	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		require.NoError(t, AddFavorite(handle, "alice", uploaded.ResourceID))
		// Re-adding is a silent no-op.
		require.NoError(t, AddFavorite(handle, "alice", uploaded.ResourceID))

		favorites, err := ListFavorites(handle, "alice")
		require.NoError(t, err)
		require.Len(t, favorites, 1)
		assert.Equal(t, "Notes", favorites[0].Title)

		require.NoError(t, RemoveFavorite(handle, "alice", uploaded.ResourceID))
		assert.Equal(t, KindNotFound, KindOf(RemoveFavorite(handle, "alice", uploaded.ResourceID)))

		favorites, err = ListFavorites(handle, "alice")
		require.NoError(t, err)
		assert.Empty(t, favorites)
		return nil
	}))
}

func TestAddFavoriteRequiresApprovedResource(t *testing.T) {
	mgr, _ := newTestStore(t)
	addVerifiedUser(t, mgr, "alice")

	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		assert.Equal(t, KindNotFound, KindOf(AddFavorite(handle, "alice", 9999)))
		return nil
	}))
}
