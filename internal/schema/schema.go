// Package schema owns startup side effects: storage directories, idempotent
// table and index creation, and the one-time admin account seed. Any failure
// here is fatal; the process must not serve requests over an unverified schema.
package schema

import (
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/adrp/studyshare/internal/config"
)

const TimeLayout = "2006-01-02 15:04:05"

const ddl = `
CREATE TABLE IF NOT EXISTS users (
    username TEXT PRIMARY KEY COLLATE NOCASE,
    password TEXT NOT NULL,
    role TEXT DEFAULT 'user',
    is_verified INTEGER DEFAULT 0,
    full_name TEXT,
    email TEXT,
    user_type TEXT DEFAULT 'student',
    join_date TEXT DEFAULT (datetime('now')),
    last_active TEXT,
    study_streak INTEGER DEFAULT 0,
    total_study_hours INTEGER DEFAULT 0
);

CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT UNIQUE COLLATE NOCASE,
    description TEXT,
    color TEXT,
    created_by TEXT,
    created_date TEXT DEFAULT (datetime('now')),
    is_active INTEGER DEFAULT 1,
    FOREIGN KEY (created_by) REFERENCES users(username) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS resources (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT,
    description TEXT,
    category_name TEXT,
    uploaded_by TEXT,
    file_path TEXT,
    file_type TEXT,
    upload_date TEXT DEFAULT (datetime('now')),
    status TEXT DEFAULT 'pending',
    download_count INTEGER DEFAULT 0,
    file_size INTEGER,
    tags TEXT,
    is_video INTEGER DEFAULT 0,
    video_duration TEXT,
    share_link TEXT,
    difficulty_level TEXT,
    estimated_time TEXT,
    FOREIGN KEY (category_name) REFERENCES categories(name) ON DELETE SET NULL,
    FOREIGN KEY (uploaded_by) REFERENCES users(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS reviews (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    resource_id INTEGER,
    reviewer TEXT,
    rating INTEGER,
    comment TEXT,
    review_date TEXT DEFAULT (datetime('now')),
    helpfulness INTEGER DEFAULT 0,
    FOREIGN KEY (resource_id) REFERENCES resources(id) ON DELETE CASCADE,
    FOREIGN KEY (reviewer) REFERENCES users(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS favorites (
    user_id TEXT,
    resource_id INTEGER,
    added_date TEXT DEFAULT (datetime('now')),
    PRIMARY KEY (user_id, resource_id),
    FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE,
    FOREIGN KEY (resource_id) REFERENCES resources(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS study_groups (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT,
    description TEXT,
    subject TEXT,
    created_by TEXT,
    created_date TEXT DEFAULT (datetime('now')),
    max_members INTEGER DEFAULT 20,
    is_private INTEGER DEFAULT 0,
    meeting_schedule TEXT,
    group_code TEXT UNIQUE,
    FOREIGN KEY (created_by) REFERENCES users(username) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id INTEGER,
    member_username TEXT,
    join_date TEXT DEFAULT (datetime('now')),
    role TEXT DEFAULT 'member',
    is_active INTEGER DEFAULT 1,
    contribution_score INTEGER DEFAULT 0,
    PRIMARY KEY (group_id, member_username),
    FOREIGN KEY (group_id) REFERENCES study_groups(id) ON DELETE CASCADE,
    FOREIGN KEY (member_username) REFERENCES users(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    sender TEXT,
    recipient TEXT,
    subject TEXT,
    message TEXT,
    sent_date TEXT DEFAULT (datetime('now')),
    is_read INTEGER DEFAULT 0,
    message_type TEXT DEFAULT 'direct',
    group_id INTEGER DEFAULT NULL,
    FOREIGN KEY (sender) REFERENCES users(username) ON DELETE CASCADE,
    FOREIGN KEY (recipient) REFERENCES users(username) ON DELETE CASCADE,
    FOREIGN KEY (group_id) REFERENCES study_groups(id) ON DELETE SET NULL
);

CREATE TABLE IF NOT EXISTS notifications (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT,
    message TEXT,
    notification_type TEXT,
    is_read INTEGER DEFAULT 0,
    created_date TEXT DEFAULT (datetime('now')),
    related_id INTEGER,
    action_url TEXT,
    FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS download_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT,
    resource_id INTEGER,
    download_date TEXT DEFAULT (datetime('now')),
    source TEXT DEFAULT 'direct',
    FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE,
    FOREIGN KEY (resource_id) REFERENCES resources(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS study_sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT,
    resource_id INTEGER,
    start_time TEXT,
    end_time TEXT,
    duration_minutes INTEGER,
    progress_percentage INTEGER,
    session_type TEXT,
    notes TEXT,
    FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE,
    FOREIGN KEY (resource_id) REFERENCES resources(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS calendar_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT,
    title TEXT,
    description TEXT,
    start_datetime TEXT,
    end_datetime TEXT,
    event_type TEXT,
    related_id INTEGER,
    reminder_minutes INTEGER DEFAULT 15,
    is_completed INTEGER DEFAULT 0,
    FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS learning_progress (
    user_id TEXT,
    category_name TEXT,
    total_resources INTEGER,
    completed_resources INTEGER,
    total_time_minutes INTEGER,
    last_updated TEXT DEFAULT (datetime('now')),
    PRIMARY KEY (user_id, category_name),
    FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS user_interactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    user_id TEXT,
    resource_id INTEGER,
    interaction_type TEXT,
    interaction_date TEXT DEFAULT (datetime('now')),
    interaction_value INTEGER DEFAULT 1,
    FOREIGN KEY (user_id) REFERENCES users(username) ON DELETE CASCADE,
    FOREIGN KEY (resource_id) REFERENCES resources(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_users_username ON users(username);
CREATE INDEX IF NOT EXISTS idx_resources_category ON resources(category_name);
CREATE INDEX IF NOT EXISTS idx_resources_uploaded_by ON resources(uploaded_by);
CREATE INDEX IF NOT EXISTS idx_reviews_resource_id ON reviews(resource_id);
CREATE INDEX IF NOT EXISTS idx_favorites_user_id ON favorites(user_id);
CREATE UNIQUE INDEX IF NOT EXISTS uq_reviews_resource_reviewer ON reviews(resource_id, reviewer);
`

// Ensure creates the storage directories and the full table/index set, then
// seeds the admin account if its handle is absent. Safe to run on every start.
func Ensure(handle *sqlx.DB, cfg config.Config, log zerolog.Logger) error {
	for _, dir := range []string{cfg.ResourcesDir, cfg.VideosDir, cfg.ExportsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	if _, err := handle.Exec(ddl); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if err := seedAdmin(handle, cfg, log); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	return nil
}

func seedAdmin(handle *sqlx.DB, cfg config.Config, log zerolog.Logger) error {
	var exists bool
	if err := handle.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, cfg.AdminUsername); err != nil {
		return err
	}
	if exists {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = handle.Exec(`
INSERT INTO users (username, password, role, is_verified, user_type, join_date)
VALUES (?, ?, 'admin', 1, 'admin', ?)
`, cfg.AdminUsername, string(hashed), time.Now().UTC().Format(TimeLayout))
	if err != nil {
		return err
	}
	log.Info().Str("username", cfg.AdminUsername).Msg("default admin account created")
	return nil
}
