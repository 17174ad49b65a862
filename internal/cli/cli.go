// Package cli is the terminal surface: numbered menus that read a choice,
// dispatch into the service layer, print the outcome and return to the loop.
// Every caller-facing failure is printed with its reason; nothing here aborts
// the process.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/adrp/studyshare/internal/config"
	"github.com/adrp/studyshare/internal/db"
	"github.com/adrp/studyshare/internal/services"
)

type Menu struct {
	in    *bufio.Scanner
	out   io.Writer
	store *db.Manager
	cfg   config.Config
	rec   *services.Recorder
	log   zerolog.Logger
}

func New(in io.Reader, out io.Writer, store *db.Manager, cfg config.Config, rec *services.Recorder, log zerolog.Logger) *Menu {
	return &Menu{
		in:    bufio.NewScanner(in),
		out:   out,
		store: store,
		cfg:   cfg,
		rec:   rec,
		log:   log,
	}
}

// Run drives the top-level menu until the user exits or input ends.
func (m *Menu) Run() {
	for {
		m.printf("\n=== Resource Management System ===\n")
		m.printf("1. Sign Up\n2. Login\n3. Exit\n")
		choice, ok := m.prompt("Choose (1-3): ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			m.signup()
		case "2":
			username, role := m.login()
			switch role {
			case "user":
				m.userLoop(username)
			case "admin":
				m.adminLoop(username)
			}
		case "3":
			m.printf("Exiting system. Goodbye!\n")
			return
		default:
			m.printf("Invalid choice. Try again.\n")
		}
	}
}

func (m *Menu) signup() {
	username, ok := m.prompt("Enter new username: ")
	if !ok {
		return
	}
	if len(username) < 3 {
		m.printf("Username must be at least 3 characters long!\n")
		return
	}
	password, ok := m.prompt("Enter new password: ")
	if !ok {
		return
	}
	if len(password) < 6 {
		m.printf("Password must be at least 6 characters long!\n")
		return
	}
	fullName, _ := m.prompt("Enter full name: ")
	email, _ := m.prompt("Enter email: ")
	userType, _ := m.prompt("Enter user type (student/teacher): ")

	err := m.store.With(func(handle *sqlx.DB) error {
		return services.AddUser(handle, username, password, fullName, email, strings.ToLower(userType))
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("User registered successfully! Awaiting admin verification.\n")
}

func (m *Menu) login() (string, string) {
	username, ok := m.prompt("Enter username: ")
	if !ok {
		return "", ""
	}
	password, ok := m.prompt("Enter password: ")
	if !ok {
		return "", ""
	}
	var role string
	err := m.store.With(func(handle *sqlx.DB) error {
		var err error
		role, err = services.ValidateUser(handle, username, password)
		return err
	})
	if err != nil {
		m.printf("Login failed. Invalid credentials or account not verified.\n")
		return "", ""
	}
	m.printf("Login successful! Welcome %s (%s)\n", username, role)
	return username, role
}

// prompt reads a trimmed line; ok is false once input is exhausted.
func (m *Menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(m.in.Text()), true
}

// promptID reads a numeric identifier; "back" and empty input return ok=false.
func (m *Menu) promptID(label string) (int64, bool) {
	raw, ok := m.prompt(label)
	if !ok || raw == "" || strings.EqualFold(raw, "back") {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		m.printf("Value must be a valid number!\n")
		return 0, false
	}
	return id, true
}

func (m *Menu) printf(format string, args ...interface{}) {
	fmt.Fprintf(m.out, format, args...)
}

// fail prints the caller-facing reason and returns control to the menu loop.
func (m *Menu) fail(err error) {
	switch services.KindOf(err) {
	case services.KindUnavailable:
		m.printf("Error: the database is busy, please try again shortly.\n")
	default:
		m.printf("Error: %v\n", err)
	}
	m.log.Debug().Err(err).Msg("menu action failed")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
