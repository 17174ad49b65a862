package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/adrp/studyshare/internal/models"
)

var userTypes = map[string]bool{"student": true, "teacher": true}

// AddUser registers an account in the unverified state. The handle is unique
// case-insensitively; a duplicate reports as a validation failure.
func AddUser(handle *sqlx.DB, username, password, fullName, email, userType string) error {
	username = strings.TrimSpace(username)
	if len(username) < 3 {
		return ErrValidation("username must be at least 3 characters long")
	}
	if len(password) < 6 {
		return ErrValidation("password must be at least 6 characters long")
	}
	if !userTypes[userType] {
		userType = "student"
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return WrapError(err, "hash password")
	}
	_, err = handle.Exec(`
INSERT INTO users (username, password, role, is_verified, full_name, email, user_type, join_date)
VALUES (?, ?, 'user', 0, ?, ?, ?, ?)
`, username, string(hashed), nullIfEmpty(fullName), nullIfEmpty(email), userType, now())
	if err != nil {
		if isConstraint(err) {
			return ErrValidation("username already exists")
		}
		return WrapError(err, "add user")
	}
	return nil
}

// ValidateUser checks credentials against verified accounts only and touches
// last_active on success. Returns the account's role.
func ValidateUser(handle *sqlx.DB, username, password string) (string, error) {
	var row struct {
		Password string `db:"password"`
		Role     string `db:"role"`
	}
	err := handle.Get(&row, `SELECT password, role FROM users WHERE username = ? AND is_verified = 1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrValidation("invalid credentials or account not verified")
	}
	if err != nil {
		return "", WrapError(err, "validate user")
	}
	if bcrypt.CompareHashAndPassword([]byte(row.Password), []byte(password)) != nil {
		return "", ErrValidation("invalid credentials or account not verified")
	}
	_, err = handle.Exec(`UPDATE users SET last_active = ? WHERE username = ?`, now(), username)
	if err != nil {
		return "", WrapError(err, "touch last active")
	}
	return row.Role, nil
}

// VerifyUser flips an account to verified. The transition happens once;
// a verified account stays verified.
func VerifyUser(handle *sqlx.DB, username string) error {
	var verified bool
	err := handle.Get(&verified, `SELECT is_verified FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound("user '" + username + "' not found")
	}
	if err != nil {
		return WrapError(err, "verify user")
	}
	if verified {
		return ErrInvalidState("user '" + username + "' is already verified")
	}
	_, err = handle.Exec(`UPDATE users SET is_verified = 1 WHERE username = ?`, username)
	return WrapError(err, "verify user")
}

func ListPendingUsers(handle *sqlx.DB) ([]models.User, error) {
	users := []models.User{}
	err := handle.Select(&users, `
SELECT username, password, role, is_verified, full_name, email, user_type,
       join_date, last_active, study_streak, total_study_hours
FROM users WHERE is_verified = 0 ORDER BY join_date
`)
	return users, WrapError(err, "list pending users")
}

// UpdateProfile applies the non-empty fields only.
func UpdateProfile(handle *sqlx.DB, username, fullName, email, userType string) error {
	sets := []string{}
	args := []interface{}{}
	if fullName != "" {
		sets = append(sets, "full_name = ?")
		args = append(args, fullName)
	}
	if email != "" {
		sets = append(sets, "email = ?")
		args = append(args, email)
	}
	if userType != "" {
		if !userTypes[userType] {
			userType = "student"
		}
		sets = append(sets, "user_type = ?")
		args = append(args, userType)
	}
	if len(sets) == 0 {
		return ErrValidation("no updates provided")
	}
	args = append(args, username)
	_, err := handle.Exec(`UPDATE users SET `+strings.Join(sets, ", ")+` WHERE username = ?`, args...)
	return WrapError(err, "update profile")
}

func IsVerified(handle *sqlx.DB, username string) (bool, error) {
	var verified bool
	err := handle.Get(&verified, `SELECT is_verified FROM users WHERE username = ?`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return verified, WrapError(err, "check verification")
}

func nullIfEmpty(value string) interface{} {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func isConstraint(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "constraint")
}
