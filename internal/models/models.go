package models

// Timestamps are stored as TEXT in the store using services.TimeLayout.

type User struct {
	Username        string  `db:"username"`
	Password        string  `db:"password"`
	Role            string  `db:"role"`
	IsVerified      bool    `db:"is_verified"`
	FullName        *string `db:"full_name"`
	Email           *string `db:"email"`
	UserType        string  `db:"user_type"`
	JoinDate        string  `db:"join_date"`
	LastActive      *string `db:"last_active"`
	StudyStreak     int     `db:"study_streak"`
	TotalStudyHours int     `db:"total_study_hours"`
}

type Category struct {
	ID          int64   `db:"id"`
	Name        string  `db:"name"`
	Description *string `db:"description"`
	Color       string  `db:"color"`
	CreatedBy   *string `db:"created_by"`
	CreatedDate string  `db:"created_date"`
	IsActive    bool    `db:"is_active"`
}

type Resource struct {
	ID            int64   `db:"id"`
	Title         string  `db:"title"`
	Description   string  `db:"description"`
	CategoryName  *string `db:"category_name"`
	UploadedBy    string  `db:"uploaded_by"`
	FilePath      string  `db:"file_path"`
	FileType      string  `db:"file_type"`
	UploadDate    string  `db:"upload_date"`
	Status        string  `db:"status"`
	DownloadCount int64   `db:"download_count"`
	FileSize      int64   `db:"file_size"`
	Tags          *string `db:"tags"`
	IsVideo       bool    `db:"is_video"`
	VideoDuration *string `db:"video_duration"`
	ShareLink     *string `db:"share_link"`
	Difficulty    *string `db:"difficulty_level"`
	EstimatedTime *string `db:"estimated_time"`
}

type Review struct {
	ID          int64   `db:"id"`
	ResourceID  int64   `db:"resource_id"`
	Reviewer    string  `db:"reviewer"`
	Rating      int     `db:"rating"`
	Comment     *string `db:"comment"`
	ReviewDate  string  `db:"review_date"`
	Helpfulness int     `db:"helpfulness"`
}

type Favorite struct {
	UserID     string `db:"user_id"`
	ResourceID int64  `db:"resource_id"`
	AddedDate  string `db:"added_date"`
}

type StudyGroup struct {
	ID              int64   `db:"id"`
	Name            string  `db:"name"`
	Description     *string `db:"description"`
	Subject         *string `db:"subject"`
	CreatedBy       *string `db:"created_by"`
	CreatedDate     string  `db:"created_date"`
	MaxMembers      int     `db:"max_members"`
	IsPrivate       bool    `db:"is_private"`
	MeetingSchedule *string `db:"meeting_schedule"`
	GroupCode       string  `db:"group_code"`
}

type GroupMember struct {
	GroupID           int64  `db:"group_id"`
	MemberUsername    string `db:"member_username"`
	JoinDate          string `db:"join_date"`
	Role              string `db:"role"`
	IsActive          bool   `db:"is_active"`
	ContributionScore int    `db:"contribution_score"`
}

type Notification struct {
	ID        int64   `db:"id"`
	UserID    string  `db:"user_id"`
	Message   string  `db:"message"`
	Type      string  `db:"notification_type"`
	IsRead    bool    `db:"is_read"`
	CreatedAt string  `db:"created_date"`
	RelatedID *int64  `db:"related_id"`
	ActionURL *string `db:"action_url"`
}

type DownloadRecord struct {
	ID           int64  `db:"id"`
	UserID       string `db:"user_id"`
	ResourceID   int64  `db:"resource_id"`
	DownloadDate string `db:"download_date"`
	Source       string `db:"source"`
}

type CalendarEvent struct {
	ID              int64   `db:"id"`
	UserID          string  `db:"user_id"`
	Title           string  `db:"title"`
	Description     *string `db:"description"`
	StartDatetime   string  `db:"start_datetime"`
	EndDatetime     string  `db:"end_datetime"`
	EventType       string  `db:"event_type"`
	RelatedID       *int64  `db:"related_id"`
	ReminderMinutes int     `db:"reminder_minutes"`
	IsCompleted     bool    `db:"is_completed"`
}

type Interaction struct {
	ID         int64  `db:"id"`
	UserID     string `db:"user_id"`
	ResourceID int64  `db:"resource_id"`
	Type       string `db:"interaction_type"`
	Date       string `db:"interaction_date"`
	Value      int    `db:"interaction_value"`
}
