package services

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderWritesInteraction(t *testing.T) {
	mgr, cfg := newTestStore(t)
	addVerifiedUser(t, mgr, "alice")
	uploaded := uploadApproved(t, mgr, cfg, "alice", "Notes", "Physics", "notes.pdf")

	rec := NewRecorder(cfg.DatabasePath, zerolog.Nop())
	rec.Record("alice", uploaded.ResourceID, InteractionUpload, 2)

	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		var row struct {
			Type  string `db:"interaction_type"`
			Value int    `db:"interaction_value"`
		}
		require.NoError(t, handle.Get(&row, `
SELECT interaction_type, interaction_value FROM user_interactions WHERE user_id = ?
`, "alice"))
		assert.Equal(t, InteractionUpload, row.Type)
		assert.Equal(t, 2, row.Value)
		return nil
	}))
}

func TestRecorderNotify(t *testing.T) {
	mgr, cfg := newTestStore(t)
	addVerifiedUser(t, mgr, "alice")

	rec := NewRecorder(cfg.DatabasePath, zerolog.Nop())
	rec.Notify("alice", "your resource was approved", "approval", nil)

	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		var message string
		require.NoError(t, handle.Get(&message,
			`SELECT message FROM notifications WHERE user_id = ?`, "alice"))
		assert.Equal(t, "your resource was approved", message)
		return nil
	}))
}

func TestRecorderSwallowsFailures(t *testing.T) {
	// A store path pointing at a directory cannot be opened for writing;
	// the recorder must not panic or surface the failure.
	rec := NewRecorder(t.TempDir(), zerolog.Nop())
	rec.Record("alice", 1, InteractionDownload, 3)
	rec.Notify("alice", "hello", "info", nil)
}
