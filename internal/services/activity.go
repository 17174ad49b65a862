package services

import (
	"github.com/rs/zerolog"

	"github.com/adrp/studyshare/internal/db"
)

// Interaction kinds and their weights feeding the recommendation ranking.
const (
	InteractionDownload = "download"
	InteractionRate     = "rate"
	InteractionShare    = "share"
	InteractionFavorite = "favorite"
	InteractionUpload   = "upload"
)

// Recorder appends interaction facts and notifications after a primary
// operation has committed. Both writes are best-effort: any failure is logged
// at warn level and swallowed so the primary operation's outcome is never
// affected. Each write uses its own lightweight handle.
type Recorder struct {
	Path string
	Log  zerolog.Logger
}

func NewRecorder(path string, log zerolog.Logger) *Recorder {
	return &Recorder{Path: path, Log: log}
}

func (r *Recorder) Record(actor string, resourceID int64, kind string, weight int) {
	handle, err := db.Open(r.Path)
	if err != nil {
		r.Log.Warn().Err(err).Str("kind", kind).Msg("could not log interaction")
		return
	}
	defer handle.Close()
	_, err = handle.Exec(`
INSERT INTO user_interactions (user_id, resource_id, interaction_type, interaction_date, interaction_value)
VALUES (?, ?, ?, ?, ?)
`, actor, resourceID, kind, now(), weight)
	if err != nil {
		r.Log.Warn().Err(err).Str("actor", actor).Str("kind", kind).Msg("could not log interaction")
	}
}

func (r *Recorder) Notify(user, message, kind string, relatedID *int64) {
	handle, err := db.Open(r.Path)
	if err != nil {
		r.Log.Warn().Err(err).Str("user", user).Msg("could not create notification")
		return
	}
	defer handle.Close()
	_, err = handle.Exec(`
INSERT INTO notifications (user_id, message, notification_type, created_date, related_id)
VALUES (?, ?, ?, ?, ?)
`, user, message, kind, now(), relatedID)
	if err != nil {
		r.Log.Warn().Err(err).Str("user", user).Msg("could not create notification")
	}
}
