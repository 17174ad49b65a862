package services

import (
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adrp/studyshare/internal/config"
	"github.com/adrp/studyshare/internal/db"
	"github.com/adrp/studyshare/internal/models"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Extensions routed to the video root; everything else goes to the generic
// resource root.
var videoExtensions = map[string]bool{
	".mp4": true, ".avi": true, ".mkv": true, ".mov": true, ".wmv": true, ".flv": true,
}

type UploadInput struct {
	Actor         string
	Title         string
	Description   string
	CategoryName  string
	CategoryColor string
	Tags          string
	Difficulty    string
	EstimatedTime string
	VideoDuration string
	SourcePath    string
}

type UploadResult struct {
	ResourceID int64
	ShareToken string
	DestPath   string
	IsVideo    bool
}

// UploadResource runs the two-phase upload: actor/category checks under one
// handle, the file copy with no handle held, then the pending row insert under
// a fresh handle. A copy failure leaves no trace in the store. A Phase C
// failure after a successful copy leaves an orphaned file on disk; that gap is
// accepted and no compensating cleanup is performed.
func UploadResource(mgr *db.Manager, cfg config.Config, in UploadInput) (*UploadResult, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrValidation("title cannot be empty")
	}
	if strings.TrimSpace(in.CategoryName) == "" {
		return nil, ErrValidation("category name cannot be empty")
	}

	// Phase A: verify the actor and resolve the category, then release.
	err := mgr.With(func(handle *sqlx.DB) error {
		verified, err := IsVerified(handle, in.Actor)
		if err != nil {
			return err
		}
		if !verified {
			return ErrValidation("user not verified")
		}
		return EnsureCategory(handle, in.CategoryName, in.CategoryColor, in.Actor)
	})
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(in.SourcePath)
	if err != nil {
		return nil, ErrValidation("file not found at: " + in.SourcePath)
	}
	ext := strings.ToLower(filepath.Ext(in.SourcePath))
	isVideo := videoExtensions[ext]
	destDir := cfg.ResourcesDir
	if isVideo {
		destDir = cfg.VideosDir
	}
	destPath := filepath.Join(destDir, filepath.Base(in.SourcePath))

	// Phase B: copy with no handle held. Failure aborts the whole operation.
	if err := copyFile(in.SourcePath, destPath); err != nil {
		return nil, WrapError(err, "copy file")
	}

	token := newShareToken()

	// Phase C: re-acquire and insert the pending row.
	var resourceID int64
	err = mgr.With(func(handle *sqlx.DB) error {
		result, err := handle.Exec(`
INSERT INTO resources
  (title, description, category_name, uploaded_by, file_path, file_type,
   upload_date, status, download_count, file_size, tags, is_video,
   video_duration, share_link, difficulty_level, estimated_time)
VALUES (?, ?, ?, ?, ?, ?, ?, 'pending', 0, ?, ?, ?, ?, ?, ?, ?)
`, in.Title, in.Description, in.CategoryName, in.Actor, destPath, ext,
			now(), info.Size(), nullIfEmpty(in.Tags), boolToInt(isVideo),
			nullIfEmpty(in.VideoDuration), token, nullIfEmpty(in.Difficulty), nullIfEmpty(in.EstimatedTime))
		if err != nil {
			return err
		}
		resourceID, err = result.LastInsertId()
		return err
	})
	if err != nil {
		return nil, WrapError(err, "record upload")
	}
	return &UploadResult{ResourceID: resourceID, ShareToken: token, DestPath: destPath, IsVideo: isVideo}, nil
}

type DownloadResult struct {
	Title    string
	DestPath string
	NewCount int64
	// Warning is set when the file was delivered but the counter update
	// failed; the delivered file is never rolled back.
	Warning string
}

// DownloadResource runs the two-phase download: lookup under one handle, the
// stream copy with no handle held, then counter and history updates under a
// fresh handle. Once the copy has succeeded the caller already has the file,
// so a Phase C failure is downgraded to a warning.
func DownloadResource(mgr *db.Manager, cfg config.Config, actor string, resourceID int64) (*DownloadResult, error) {
	var (
		filePath string
		count    int64
		title    string
	)
	err := mgr.With(func(handle *sqlx.DB) error {
		var row struct {
			FilePath string `db:"file_path"`
			Count    int64  `db:"download_count"`
			Title    string `db:"title"`
		}
		err := handle.Get(&row, `
SELECT file_path, download_count, title FROM resources WHERE id = ? AND status = 'approved'
`, resourceID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("resource not found or not approved")
		}
		if err != nil {
			return err
		}
		filePath, count, title = row.FilePath, row.Count, row.Title
		return nil
	})
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); err != nil {
		return nil, ErrInvalidState("source file no longer exists")
	}
	destPath := filepath.Join(cfg.DownloadDir, cfg.DownloadPrefix+filepath.Base(filePath))
	if err := copyFile(filePath, destPath); err != nil {
		return nil, WrapError(err, "download file")
	}

	result := &DownloadResult{Title: title, DestPath: destPath, NewCount: count + 1}
	err = mgr.With(func(handle *sqlx.DB) error {
		// Counter and history commit together or not at all.
		tx, err := handle.Beginx()
		if err != nil {
			return err
		}
		defer tx.Rollback()
		if _, err := tx.Exec(`
UPDATE resources SET download_count = COALESCE(download_count, 0) + 1 WHERE id = ?
`, resourceID); err != nil {
			return err
		}
		if _, err := tx.Exec(`
INSERT INTO download_history (user_id, resource_id, download_date) VALUES (?, ?, ?)
`, actor, resourceID, now()); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		mgr.Log.Warn().Err(err).Int64("resource_id", resourceID).
			Msg("download succeeded but statistics update failed")
		result.Warning = "download successful but statistics could not be updated"
	}
	return result, nil
}

// ResourceFilter selects which approved resources to list.
type ResourceFilter struct {
	VideosOnly    bool
	DocumentsOnly bool
	Category      string
	Search        string
	Difficulty    string
}

type ResourceListing struct {
	models.Resource
	AvgRating   float64 `db:"avg_rating"`
	ReviewCount int     `db:"review_count"`
}

func ListResources(handle *sqlx.DB, filter ResourceFilter) ([]ResourceListing, error) {
	query := `
SELECT r.id, r.title, r.description, r.category_name, r.uploaded_by, r.file_path,
       r.file_type, r.upload_date, r.status, r.download_count, r.file_size, r.tags,
       r.is_video, r.video_duration, r.share_link, r.difficulty_level, r.estimated_time,
       COALESCE(AVG(rev.rating), 0) AS avg_rating, COUNT(rev.id) AS review_count
FROM resources r
LEFT JOIN reviews rev ON r.id = rev.resource_id
WHERE r.status = 'approved'`
	args := []interface{}{}
	switch {
	case filter.VideosOnly:
		query += " AND r.is_video = 1"
	case filter.DocumentsOnly:
		query += " AND r.is_video = 0"
	case filter.Category != "":
		query += " AND r.category_name LIKE ?"
		args = append(args, "%"+filter.Category+"%")
	case filter.Search != "":
		query += " AND (r.title LIKE ? OR r.description LIKE ?)"
		term := "%" + filter.Search + "%"
		args = append(args, term, term)
	case filter.Difficulty != "":
		query += " AND r.difficulty_level = ?"
		args = append(args, filter.Difficulty)
	}
	query += " GROUP BY r.id ORDER BY r.upload_date DESC"

	listings := []ResourceListing{}
	err := handle.Select(&listings, query, args...)
	return listings, WrapError(err, "list resources")
}

func ListPendingResources(handle *sqlx.DB) ([]models.Resource, error) {
	resources := []models.Resource{}
	err := handle.Select(&resources, `
SELECT id, title, description, category_name, uploaded_by, file_path, file_type,
       upload_date, status, download_count, file_size, tags, is_video,
       video_duration, share_link, difficulty_level, estimated_time
FROM resources WHERE status = 'pending' ORDER BY upload_date DESC
`)
	return resources, WrapError(err, "list pending resources")
}

// setStatus enforces the single forward transition pending -> approved/rejected.
func setStatus(handle *sqlx.DB, resourceID int64, status string) error {
	var current string
	err := handle.Get(&current, `SELECT status FROM resources WHERE id = ?`, resourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound("resource not found")
	}
	if err != nil {
		return WrapError(err, "check resource status")
	}
	if current != StatusPending {
		return ErrInvalidState("resource is not pending (current status: " + current + ")")
	}
	_, err = handle.Exec(`UPDATE resources SET status = ? WHERE id = ?`, status, resourceID)
	return WrapError(err, "update resource status")
}

func ApproveResource(handle *sqlx.DB, resourceID int64) error {
	return setStatus(handle, resourceID, StatusApproved)
}

func RejectResource(handle *sqlx.DB, resourceID int64) error {
	return setStatus(handle, resourceID, StatusRejected)
}

// ShareLink returns the share token for an approved resource.
func ShareLink(handle *sqlx.DB, resourceID int64) (title, token string, err error) {
	var row struct {
		Title string  `db:"title"`
		Token *string `db:"share_link"`
	}
	err = handle.Get(&row, `SELECT title, share_link FROM resources WHERE id = ? AND status = 'approved'`, resourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", ErrNotFound("resource not found or not approved")
	}
	if err != nil {
		return "", "", WrapError(err, "get share link")
	}
	if row.Token == nil {
		return "", "", ErrInvalidState("resource has no share link")
	}
	return row.Title, *row.Token, nil
}

// AccessShared resolves a share token to its approved resource. The token
// grants anonymous access, so no actor is required.
func AccessShared(handle *sqlx.DB, token string) (*models.Resource, error) {
	var resource models.Resource
	err := handle.Get(&resource, `
SELECT id, title, description, category_name, uploaded_by, file_path, file_type,
       upload_date, status, download_count, file_size, tags, is_video,
       video_duration, share_link, difficulty_level, estimated_time
FROM resources WHERE share_link = ? AND status = 'approved'
`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("invalid share link or resource not found")
	}
	if err != nil {
		return nil, WrapError(err, "access shared resource")
	}
	return &resource, nil
}

// BumpDownloadCount records an anonymous download made through a share token.
func BumpDownloadCount(handle *sqlx.DB, resourceID int64) error {
	_, err := handle.Exec(`UPDATE resources SET download_count = COALESCE(download_count, 0) + 1 WHERE id = ?`, resourceID)
	return WrapError(err, "bump download count")
}

func newShareToken() string {
	return uuid.NewString()[:8]
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
