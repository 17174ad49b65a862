package services

import (
	"github.com/jmoiron/sqlx"
)

// AddFavorite marks an approved resource. Re-adding an existing favorite is a
// no-op through the (user, resource) primary key.
func AddFavorite(handle *sqlx.DB, actor string, resourceID int64) error {
	var exists bool
	err := handle.Get(&exists, `
SELECT EXISTS(SELECT 1 FROM resources WHERE id = ? AND status = 'approved')
`, resourceID)
	if err != nil {
		return WrapError(err, "check resource")
	}
	if !exists {
		return ErrNotFound("resource not found or not approved")
	}
	_, err = handle.Exec(`
INSERT OR IGNORE INTO favorites (user_id, resource_id, added_date) VALUES (?, ?, ?)
`, actor, resourceID, now())
	return WrapError(err, "add favorite")
}

func RemoveFavorite(handle *sqlx.DB, actor string, resourceID int64) error {
	result, err := handle.Exec(`DELETE FROM favorites WHERE user_id = ? AND resource_id = ?`, actor, resourceID)
	if err != nil {
		return WrapError(err, "remove favorite")
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound("resource is not in your favorites")
	}
	return WrapError(err, "remove favorite")
}

type FavoriteListing struct {
	ResourceID   int64   `db:"id"`
	Title        string  `db:"title"`
	CategoryName *string `db:"category_name"`
	AddedDate    string  `db:"added_date"`
}

func ListFavorites(handle *sqlx.DB, actor string) ([]FavoriteListing, error) {
	favorites := []FavoriteListing{}
	err := handle.Select(&favorites, `
SELECT r.id, r.title, r.category_name, f.added_date
FROM favorites f
JOIN resources r ON f.resource_id = r.id
WHERE f.user_id = ?
ORDER BY f.added_date DESC
`, actor)
	return favorites, WrapError(err, "list favorites")
}
