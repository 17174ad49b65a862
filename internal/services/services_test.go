package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/adrp/studyshare/internal/config"
	"github.com/adrp/studyshare/internal/db"
	"github.com/adrp/studyshare/internal/schema"
)

// newTestStore gives each test its own store file and storage directories.
func newTestStore(t *testing.T) (*db.Manager, config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Load()
	cfg.DatabasePath = filepath.Join(root, "test.db")
	cfg.ResourcesDir = filepath.Join(root, "resources")
	cfg.VideosDir = filepath.Join(root, "videos")
	cfg.ExportsDir = filepath.Join(root, "exports")
	cfg.DownloadDir = root

	mgr := db.NewManager(cfg.DatabasePath, zerolog.Nop())
	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		return schema.Ensure(handle, cfg, zerolog.Nop())
	}))
	return mgr, cfg
}

// addVerifiedUser registers an account and immediately verifies it.
func addVerifiedUser(t *testing.T, mgr *db.Manager, username string) {
	t.Helper()
	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		if err := AddUser(handle, username, "password123", "", "", "student"); err != nil {
			return err
		}
		return VerifyUser(handle, username)
	}))
}

// writeSourceFile drops an upload candidate on disk and returns its path.
func writeSourceFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// uploadApproved runs the full upload path and approves the result.
func uploadApproved(t *testing.T, mgr *db.Manager, cfg config.Config, actor, title, category, sourceName string) *UploadResult {
	t.Helper()
	result, err := UploadResource(mgr, cfg, UploadInput{
		Actor:        actor,
		Title:        title,
		CategoryName: category,
		SourcePath:   writeSourceFile(t, sourceName, "content of "+title),
	})
	require.NoError(t, err)
	require.NoError(t, mgr.With(func(handle *sqlx.DB) error {
		return ApproveResource(handle, result.ResourceID)
	}))
	return result
}
