package db

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// ErrUnavailable is returned once lock-contention retries are exhausted.
// The caller must not assume any partial progress was made.
var ErrUnavailable = errors.New("database unavailable: retries exhausted")

const (
	DefaultBusyTimeout = 30 * time.Second
	DefaultMaxRetries  = 5
	DefaultRetryUnit   = 2 * time.Second
)

// Manager opens connections to the shared store with concurrency pragmas
// applied and retries acquisition when the engine reports lock contention.
type Manager struct {
	Path        string
	BusyTimeout time.Duration
	MaxRetries  int
	RetryUnit   time.Duration
	Log         zerolog.Logger

	sleep func(time.Duration)
	open  func(path string) (*sqlx.DB, error)
}

func NewManager(path string, log zerolog.Logger) *Manager {
	return &Manager{
		Path:        path,
		BusyTimeout: DefaultBusyTimeout,
		MaxRetries:  DefaultMaxRetries,
		RetryUnit:   DefaultRetryUnit,
		Log:         log,
		sleep:       time.Sleep,
		open:        openSqlite,
	}
}

// Acquire opens a handle with WAL journaling, relaxed-but-safe sync and a
// busy-wait ceiling so the engine itself blocks briefly before reporting
// contention. A locked error during open or pragma setup is retried with
// linearly increasing backoff (attempt × RetryUnit); any other failure
// propagates immediately. The returned handle must be closed by the caller.
func (m *Manager) Acquire() (*sqlx.DB, error) {
	var lastErr error
	for attempt := 1; attempt <= m.MaxRetries; attempt++ {
		handle, err := m.open(m.Path)
		if err == nil {
			err = applyPragmas(handle, m.BusyTimeout)
			if err == nil {
				return handle, nil
			}
			_ = handle.Close()
		}
		if !IsLocked(err) {
			return nil, err
		}
		lastErr = err
		if attempt < m.MaxRetries {
			wait := time.Duration(attempt) * m.RetryUnit
			m.Log.Warn().
				Int("attempt", attempt).
				Int("max_retries", m.MaxRetries).
				Dur("wait", wait).
				Msg("database locked, retrying")
			m.sleep(wait)
		}
	}
	m.Log.Error().Err(lastErr).Int("retries", m.MaxRetries).Msg("database acquisition failed")
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// With runs fn under a scoped handle. The handle is released exactly once on
// every exit path, including a panic inside fn.
func (m *Manager) With(fn func(*sqlx.DB) error) error {
	handle, err := m.Acquire()
	if err != nil {
		return err
	}
	defer handle.Close()
	return fn(handle)
}

// Open returns a lightweight handle with only the busy-wait ceiling and
// foreign keys applied: no WAL setup, no retry wrapping. Used by simple flows;
// the engine serializes writers itself, so both styles coexist safely.
func Open(path string) (*sqlx.DB, error) {
	handle, err := openSqlite(path)
	if err != nil {
		return nil, err
	}
	for _, pragma := range []string{
		"PRAGMA busy_timeout=" + strconv.FormatInt(DefaultBusyTimeout.Milliseconds(), 10),
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := handle.Exec(pragma); err != nil {
			_ = handle.Close()
			return nil, err
		}
	}
	return handle, nil
}

// IsLocked reports whether err is the engine's lock-contention signal.
func IsLocked(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}

func openSqlite(path string) (*sqlx.DB, error) {
	handle, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single shared file: extra pooled connections only add lock churn.
	handle.SetMaxOpenConns(1)
	return handle, nil
}

func applyPragmas(handle *sqlx.DB, busyTimeout time.Duration) error {
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=" + strconv.FormatInt(busyTimeout.Milliseconds(), 10),
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := handle.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}
