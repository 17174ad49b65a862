package services

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/adrp/studyshare/internal/models"
)

// RateResource records one review per (resource, reviewer). The rating bounds
// and the duplicate check run before any write; the unique index on
// (resource_id, reviewer) backstops the check under concurrent writers.
func RateResource(handle *sqlx.DB, actor string, resourceID int64, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return ErrValidation("rating must be between 1 and 5")
	}
	var title string
	err := handle.Get(&title, `SELECT title FROM resources WHERE id = ? AND status = 'approved'`, resourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound("resource not found or not approved")
	}
	if err != nil {
		return WrapError(err, "check resource")
	}
	var exists bool
	if err := handle.Get(&exists, `
SELECT EXISTS(SELECT 1 FROM reviews WHERE resource_id = ? AND reviewer = ?)
`, resourceID, actor); err != nil {
		return WrapError(err, "check existing review")
	}
	if exists {
		return ErrInvalidState("you have already rated this resource")
	}
	_, err = handle.Exec(`
INSERT INTO reviews (resource_id, reviewer, rating, comment, review_date)
VALUES (?, ?, ?, ?, ?)
`, resourceID, actor, rating, nullIfEmpty(comment), now())
	if err != nil {
		if isConstraint(err) {
			return ErrInvalidState("you have already rated this resource")
		}
		return WrapError(err, "submit review")
	}
	return nil
}

func ListReviews(handle *sqlx.DB, resourceID int64) (string, []models.Review, error) {
	var title string
	err := handle.Get(&title, `SELECT title FROM resources WHERE id = ?`, resourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNotFound("resource not found")
	}
	if err != nil {
		return "", nil, WrapError(err, "check resource")
	}
	reviews := []models.Review{}
	err = handle.Select(&reviews, `
SELECT id, resource_id, reviewer, rating, comment, review_date, helpfulness
FROM reviews WHERE resource_id = ? ORDER BY review_date DESC
`, resourceID)
	return title, reviews, WrapError(err, "list reviews")
}
