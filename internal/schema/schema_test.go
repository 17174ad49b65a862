package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/adrp/studyshare/internal/config"
	"github.com/adrp/studyshare/internal/db"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	root := t.TempDir()
	cfg := config.Load()
	cfg.DatabasePath = filepath.Join(root, "test.db")
	cfg.ResourcesDir = filepath.Join(root, "resources")
	cfg.VideosDir = filepath.Join(root, "videos")
	cfg.ExportsDir = filepath.Join(root, "exports")
	return cfg
}

func TestEnsureIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	handle, err := db.Open(cfg.DatabasePath)
	require.NoError(t, err)
	defer handle.Close()

	require.NoError(t, Ensure(handle, cfg, zerolog.Nop()))
	require.NoError(t, Ensure(handle, cfg, zerolog.Nop()))

	var admins int
	require.NoError(t, handle.Get(&admins, `SELECT COUNT(*) FROM users WHERE role = 'admin'`))
	assert.Equal(t, 1, admins)

	for _, dir := range []string{cfg.ResourcesDir, cfg.VideosDir, cfg.ExportsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestEnsureSeedsAdminWithHashedPassword(t *testing.T) {
	cfg := testConfig(t)
	handle, err := db.Open(cfg.DatabasePath)
	require.NoError(t, err)
	defer handle.Close()

	require.NoError(t, Ensure(handle, cfg, zerolog.Nop()))

	var admin struct {
		Password   string `db:"password"`
		IsVerified bool   `db:"is_verified"`
		UserType   string `db:"user_type"`
	}
	require.NoError(t, handle.Get(&admin,
		`SELECT password, is_verified, user_type FROM users WHERE username = ?`, cfg.AdminUsername))
	assert.True(t, admin.IsVerified)
	assert.Equal(t, "admin", admin.UserType)
	assert.NotEqual(t, cfg.AdminPassword, admin.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(cfg.AdminPassword)))
}

func TestEnsureCreatesExpectedTables(t *testing.T) {
	cfg := testConfig(t)
	handle, err := db.Open(cfg.DatabasePath)
	require.NoError(t, err)
	defer handle.Close()

	require.NoError(t, Ensure(handle, cfg, zerolog.Nop()))

	tables := []string{}
	require.NoError(t, handle.Select(&tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	for _, want := range []string{
		"users", "categories", "resources", "reviews", "favorites",
		"study_groups", "group_members", "messages", "notifications",
		"download_history", "study_sessions", "learning_progress",
		"calendar_events", "user_interactions",
	} {
		assert.Contains(t, tables, want)
	}

	indexes := []string{}
	require.NoError(t, handle.Select(&indexes,
		`SELECT name FROM sqlite_master WHERE type = 'index' AND name NOT LIKE 'sqlite_%'`))
	assert.Contains(t, indexes, "uq_reviews_resource_reviewer")
	assert.Contains(t, indexes, "idx_resources_category")
}
