package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adrp/studyshare/internal/config"
	"github.com/adrp/studyshare/internal/db"
	"github.com/adrp/studyshare/internal/schema"
	"github.com/adrp/studyshare/internal/services"
)

func newTestMenu(t *testing.T, script string) (*Menu, *bytes.Buffer, *db.Manager) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Load()
	cfg.DatabasePath = filepath.Join(root, "test.db")
	cfg.ResourcesDir = filepath.Join(root, "resources")
	cfg.VideosDir = filepath.Join(root, "videos")
	cfg.ExportsDir = filepath.Join(root, "exports")
	cfg.DownloadDir = root

	store := db.NewManager(cfg.DatabasePath, zerolog.Nop())
	require.NoError(t, store.With(func(handle *sqlx.DB) error {
		return schema.Ensure(handle, cfg, zerolog.Nop())
	}))

	out := &bytes.Buffer{}
	rec := services.NewRecorder(cfg.DatabasePath, zerolog.Nop())
	return New(strings.NewReader(script), out, store, cfg, rec, zerolog.Nop()), out, store
}

func writeSource(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	return path
}

func TestRunExit(t *testing.T) {
	menu, out, _ := newTestMenu(t, "3\n")
	menu.Run()
	assert.Contains(t, out.String(), "Goodbye")
}

func TestRunStopsWhenInputEnds(t *testing.T) {
	menu, _, _ := newTestMenu(t, "")
	menu.Run()
}

func TestSignupThroughMenu(t *testing.T) {
	script := strings.Join([]string{
		"1",                 // Sign Up
		"alice",             // username
		"password123",       // password
		"Alice A",           // full name
		"alice@example.com", // email
		"student",           // user type
		"3",                 // Exit
	}, "\n") + "\n"
	menu, out, store := newTestMenu(t, script)
	menu.Run()
	assert.Contains(t, out.String(), "registered successfully")

	require.NoError(t, store.With(func(handle *sqlx.DB) error {
		pending, err := services.ListPendingUsers(handle)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "alice", pending[0].Username)
		return nil
	}))
}

func TestSignupRejectsShortUsername(t *testing.T) {
	menu, out, _ := newTestMenu(t, "1\nab\n3\n")
	menu.Run()
	assert.Contains(t, out.String(), "at least 3 characters")
}

func TestLoginRejectsUnverified(t *testing.T) {
	script := strings.Join([]string{
		"1", "alice", "password123", "", "", "student",
		"2", "alice", "password123",
		"3",
	}, "\n") + "\n"
	menu, out, _ := newTestMenu(t, script)
	menu.Run()
	assert.Contains(t, out.String(), "Login failed")
}

func TestDownloadWithWarningSkipsInteractionRecord(t *testing.T) {
	script := strings.Join([]string{
		"2", "alice", "password123",
		"3", "1", // download resource 1
		"12", "3",
	}, "\n") + "\n"
	menu, out, store := newTestMenu(t, script)

	require.NoError(t, store.With(func(handle *sqlx.DB) error {
		if err := services.AddUser(handle, "alice", "password123", "", "", "student"); err != nil {
			return err
		}
		return services.VerifyUser(handle, "alice")
	}))
	uploaded, err := services.UploadResource(store, menu.cfg, services.UploadInput{
		Actor:        "alice",
		Title:        "Notes",
		CategoryName: "Physics",
		SourcePath:   writeSource(t, "notes.pdf"),
	})
	require.NoError(t, err)
	require.NoError(t, store.With(func(handle *sqlx.DB) error {
		if err := services.ApproveResource(handle, uploaded.ResourceID); err != nil {
			return err
		}
		// Break download bookkeeping so the download degrades to a warning.
		_, err := handle.Exec(`DROP TABLE download_history`)
		return err
	}))

	menu.Run()
	assert.Contains(t, out.String(), "Warning:")

	// A degraded download must not count as an interaction.
	require.NoError(t, store.With(func(handle *sqlx.DB) error {
		var interactions int
		require.NoError(t, handle.Get(&interactions,
			`SELECT COUNT(*) FROM user_interactions WHERE interaction_type = ?`, services.InteractionDownload))
		assert.Zero(t, interactions)
		return nil
	}))
}

func TestAdminLoginAndVerifyFlow(t *testing.T) {
	script := strings.Join([]string{
		"1", "alice", "password123", "", "", "student",
		"2", "admin", "admin123", // seeded admin account
		"1",     // Verify Users
		"alice", // verify her
		"6",     // back to main menu
		"2", "alice", "password123", // alice can log in now
		"12", // logout
		"3",  // exit
	}, "\n") + "\n"
	menu, out, _ := newTestMenu(t, script)
	menu.Run()
	assert.Contains(t, out.String(), "Welcome to Admin Panel, admin")
	assert.Contains(t, out.String(), "'alice' verified successfully")
	assert.Contains(t, out.String(), "Welcome admin (admin)")
	assert.Contains(t, out.String(), "Welcome alice (user)")
}
