package services

import (
	"github.com/jmoiron/sqlx"
)

type Recommendation struct {
	ResourceID    int64   `db:"id"`
	Title         string  `db:"title"`
	CategoryName  *string `db:"category_name"`
	DownloadCount int64   `db:"download_count"`
	AvgRating     float64 `db:"avg_rating"`
}

// Recommend ranks approved resources for the actor. With no interaction
// history it falls back to overall popularity (downloads, then rating). With
// history it takes the actor's single most-interacted-with category, excludes
// resources the actor already touched, and ranks by rating then downloads.
// Capped at 10 either way.
func Recommend(handle *sqlx.DB, actor string) ([]Recommendation, bool, error) {
	categories := []string{}
	err := handle.Select(&categories, `
SELECT r.category_name
FROM user_interactions ui
JOIN resources r ON ui.resource_id = r.id
WHERE ui.user_id = ? AND r.category_name IS NOT NULL
GROUP BY r.category_name
ORDER BY COUNT(*) DESC
`, actor)
	if err != nil {
		return nil, false, WrapError(err, "load interaction history")
	}

	recommendations := []Recommendation{}
	if len(categories) == 0 {
		err = handle.Select(&recommendations, `
SELECT r.id, r.title, r.category_name, r.download_count,
       COALESCE(AVG(rev.rating), 0) AS avg_rating
FROM resources r
LEFT JOIN reviews rev ON r.id = rev.resource_id
WHERE r.status = 'approved'
GROUP BY r.id
ORDER BY r.download_count DESC, avg_rating DESC
LIMIT 10
`)
		return recommendations, false, WrapError(err, "recommend popular")
	}

	err = handle.Select(&recommendations, `
SELECT r.id, r.title, r.category_name, r.download_count,
       COALESCE(AVG(rev.rating), 0) AS avg_rating
FROM resources r
LEFT JOIN reviews rev ON r.id = rev.resource_id
WHERE r.status = 'approved' AND r.category_name = ?
  AND r.id NOT IN (SELECT resource_id FROM user_interactions WHERE user_id = ?)
GROUP BY r.id
ORDER BY avg_rating DESC, r.download_count DESC
LIMIT 10
`, categories[0], actor)
	return recommendations, true, WrapError(err, "recommend by category")
}
