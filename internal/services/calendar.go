package services

import (
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/adrp/studyshare/internal/models"
)

type EventInput struct {
	Title           string
	Description     string
	Start           string
	End             string
	EventType       string
	RelatedID       *int64
	ReminderMinutes int
}

// AddEvent validates the time window and reminder offset before any write.
func AddEvent(handle *sqlx.DB, actor string, in EventInput) (int64, error) {
	var exists bool
	if err := handle.Get(&exists, `SELECT EXISTS(SELECT 1 FROM users WHERE username = ?)`, actor); err != nil {
		return 0, WrapError(err, "check user")
	}
	if !exists {
		return 0, ErrNotFound("user not found")
	}
	if in.Title == "" {
		return 0, ErrValidation("event title cannot be empty")
	}
	if _, err := time.Parse(TimeLayout, in.Start); err != nil {
		return 0, ErrValidation("invalid start date format, use YYYY-MM-DD HH:MM:SS")
	}
	if _, err := time.Parse(TimeLayout, in.End); err != nil {
		return 0, ErrValidation("invalid end date format, use YYYY-MM-DD HH:MM:SS")
	}
	if in.ReminderMinutes < 0 {
		return 0, ErrValidation("reminder minutes must be non-negative")
	}
	eventType := in.EventType
	if eventType == "" {
		eventType = "study_session"
	}
	result, err := handle.Exec(`
INSERT INTO calendar_events
  (user_id, title, description, start_datetime, end_datetime, event_type, related_id, reminder_minutes, is_completed)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0)
`, actor, in.Title, nullIfEmpty(in.Description), in.Start, in.End, eventType, in.RelatedID, in.ReminderMinutes)
	if err != nil {
		return 0, WrapError(err, "add event")
	}
	eventID, err := result.LastInsertId()
	return eventID, WrapError(err, "add event")
}

func ListEvents(handle *sqlx.DB, actor string) ([]models.CalendarEvent, error) {
	events := []models.CalendarEvent{}
	err := handle.Select(&events, `
SELECT id, user_id, title, description, start_datetime, end_datetime,
       event_type, related_id, reminder_minutes, is_completed
FROM calendar_events WHERE user_id = ? ORDER BY start_datetime
`, actor)
	return events, WrapError(err, "list events")
}

func CompleteEvent(handle *sqlx.DB, actor string, eventID int64) error {
	var completed bool
	err := handle.Get(&completed, `
SELECT is_completed FROM calendar_events WHERE id = ? AND user_id = ?
`, eventID, actor)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound("event not found")
	}
	if err != nil {
		return WrapError(err, "check event")
	}
	if completed {
		return ErrInvalidState("event is already completed")
	}
	_, err = handle.Exec(`UPDATE calendar_events SET is_completed = 1 WHERE id = ?`, eventID)
	return WrapError(err, "complete event")
}
