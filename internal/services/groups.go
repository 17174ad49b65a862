package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/adrp/studyshare/internal/models"
)

type GroupInput struct {
	Name            string
	Description     string
	Subject         string
	MaxMembers      int
	IsPrivate       bool
	MeetingSchedule string
}

type GroupMembership struct {
	models.StudyGroup
	MemberRole string `db:"member_role"`
}

// CreateGroup creates a study group with a unique join code and enrolls the
// creator as its first member with the admin role.
func CreateGroup(handle *sqlx.DB, actor string, in GroupInput) (int64, string, error) {
	verified, err := IsVerified(handle, actor)
	if err != nil {
		return 0, "", err
	}
	if !verified {
		return 0, "", ErrValidation("user not verified or not found")
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, "", ErrValidation("group name cannot be empty")
	}
	if in.MaxMembers < 1 {
		return 0, "", ErrValidation("maximum members must be at least 1")
	}
	code := newGroupCode()
	result, err := handle.Exec(`
INSERT INTO study_groups
  (name, description, subject, created_by, created_date, max_members, is_private, meeting_schedule, group_code)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, in.Name, nullIfEmpty(in.Description), nullIfEmpty(in.Subject), actor, now(),
		in.MaxMembers, boolToInt(in.IsPrivate), nullIfEmpty(in.MeetingSchedule), code)
	if err != nil {
		return 0, "", WrapError(err, "create group")
	}
	groupID, err := result.LastInsertId()
	if err != nil {
		return 0, "", WrapError(err, "create group")
	}
	_, err = handle.Exec(`
INSERT INTO group_members (group_id, member_username, join_date, role, is_active)
VALUES (?, ?, ?, 'admin', 1)
`, groupID, actor, now())
	if err != nil {
		return 0, "", WrapError(err, "enroll creator")
	}
	return groupID, code, nil
}

func ListGroupsFor(handle *sqlx.DB, username string) ([]GroupMembership, error) {
	groups := []GroupMembership{}
	err := handle.Select(&groups, `
SELECT g.id, g.name, g.description, g.subject, g.created_by, g.created_date,
       g.max_members, g.is_private, g.meeting_schedule, g.group_code,
       gm.role AS member_role
FROM study_groups g
JOIN group_members gm ON g.id = gm.group_id
WHERE gm.member_username = ? AND gm.is_active = 1
`, username)
	return groups, WrapError(err, "list groups")
}

// JoinGroup enrolls the actor through a join code. The capacity check and the
// insert run under the same handle but not in one transaction; the engine's
// single-writer serialization keeps the non-concurrent case correct.
func JoinGroup(handle *sqlx.DB, actor, code string) (int64, error) {
	verified, err := IsVerified(handle, actor)
	if err != nil {
		return 0, err
	}
	if !verified {
		return 0, ErrValidation("user not verified or not found")
	}
	var group struct {
		ID         int64 `db:"id"`
		MaxMembers int   `db:"max_members"`
	}
	err = handle.Get(&group, `SELECT id, max_members FROM study_groups WHERE group_code = ?`, code)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound("invalid group code")
	}
	if err != nil {
		return 0, WrapError(err, "look up group")
	}
	var current int
	if err := handle.Get(&current, `
SELECT COUNT(*) FROM group_members WHERE group_id = ? AND is_active = 1
`, group.ID); err != nil {
		return 0, WrapError(err, "count members")
	}
	if current >= group.MaxMembers {
		return 0, ErrInvalidState("group is full")
	}
	var member bool
	if err := handle.Get(&member, `
SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = ? AND member_username = ?)
`, group.ID, actor); err != nil {
		return 0, WrapError(err, "check membership")
	}
	if member {
		return 0, ErrInvalidState("you are already a member of this group")
	}
	_, err = handle.Exec(`
INSERT INTO group_members (group_id, member_username, join_date, role, is_active)
VALUES (?, ?, ?, 'member', 1)
`, group.ID, actor, now())
	if err != nil {
		return 0, WrapError(err, "join group")
	}
	return group.ID, nil
}

func newGroupCode() string {
	return strings.ToUpper(uuid.NewString()[:6])
}
