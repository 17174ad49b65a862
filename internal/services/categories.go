package services

import (
	"database/sql"
	"errors"
	"regexp"

	"github.com/jmoiron/sqlx"

	"github.com/adrp/studyshare/internal/models"
)

const DefaultCategoryColor = "#007bff"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// EnsureCategory creates the category on first use if it does not exist yet.
// Existing categories are left untouched, active or not.
func EnsureCategory(handle *sqlx.DB, name, color, createdBy string) error {
	var exists bool
	if err := handle.Get(&exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE name = ?)`, name); err != nil {
		return WrapError(err, "check category")
	}
	if exists {
		return nil
	}
	if !hexColor.MatchString(color) {
		color = DefaultCategoryColor
	}
	_, err := handle.Exec(`
INSERT INTO categories (name, description, color, created_by, created_date, is_active)
VALUES (?, '', ?, ?, ?, 1)
`, name, color, createdBy, now())
	return WrapError(err, "create category")
}

// CreateCategory is the explicit admin path; duplicates are rejected.
func CreateCategory(handle *sqlx.DB, name, description, color, createdBy string) error {
	if name == "" {
		return ErrValidation("category name cannot be empty")
	}
	var exists bool
	if err := handle.Get(&exists, `SELECT EXISTS(SELECT 1 FROM categories WHERE name = ?)`, name); err != nil {
		return WrapError(err, "check category")
	}
	if exists {
		return ErrValidation("category '" + name + "' already exists")
	}
	if !hexColor.MatchString(color) {
		color = DefaultCategoryColor
	}
	_, err := handle.Exec(`
INSERT INTO categories (name, description, color, created_by, created_date, is_active)
VALUES (?, ?, ?, ?, ?, 1)
`, name, nullIfEmpty(description), color, createdBy, now())
	return WrapError(err, "create category")
}

func UpdateCategory(handle *sqlx.DB, id int64, name, description, color string) error {
	current, err := getCategory(handle, id)
	if err != nil {
		return err
	}
	if name == "" {
		name = current.Name
	}
	if name != current.Name {
		// Resources reference categories by name, so a rename would break them.
		var dependents int
		if err := handle.Get(&dependents,
			`SELECT COUNT(*) FROM resources WHERE category_name = ?`, current.Name); err != nil {
			return WrapError(err, "check category usage")
		}
		if dependents > 0 {
			return ErrInvalidState("category '" + current.Name + "' is referenced by existing resources and cannot be renamed")
		}
	}
	if description == "" && current.Description != nil {
		description = *current.Description
	}
	if !hexColor.MatchString(color) {
		color = current.Color
	}
	_, err = handle.Exec(`UPDATE categories SET name = ?, description = ?, color = ? WHERE id = ?`,
		name, nullIfEmpty(description), color, id)
	return WrapError(err, "update category")
}

// SetCategoryActive soft-activates or soft-deactivates; categories are never
// removed so historical references stay resolvable.
func SetCategoryActive(handle *sqlx.DB, id int64, active bool) error {
	current, err := getCategory(handle, id)
	if err != nil {
		return err
	}
	if current.IsActive == active {
		if active {
			return ErrInvalidState("category '" + current.Name + "' is already active")
		}
		return ErrInvalidState("category '" + current.Name + "' is already inactive")
	}
	flag := 0
	if active {
		flag = 1
	}
	_, err = handle.Exec(`UPDATE categories SET is_active = ? WHERE id = ?`, flag, id)
	return WrapError(err, "set category active")
}

func ListCategories(handle *sqlx.DB) ([]models.Category, error) {
	categories := []models.Category{}
	err := handle.Select(&categories, `
SELECT id, name, description, color, created_by, created_date, is_active
FROM categories ORDER BY is_active DESC, name ASC
`)
	return categories, WrapError(err, "list categories")
}

func getCategory(handle *sqlx.DB, id int64) (*models.Category, error) {
	var category models.Category
	err := handle.Get(&category, `
SELECT id, name, description, color, created_by, created_date, is_active
FROM categories WHERE id = ?
`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("category not found")
	}
	if err != nil {
		return nil, WrapError(err, "get category")
	}
	return &category, nil
}
