package cli

import (
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/adrp/studyshare/internal/services"
)

func (m *Menu) userLoop(username string) {
	for {
		m.printf("\n=== User Menu - %s ===\n", username)
		m.printf("1. Upload Resource\n2. View Resources\n3. Download Resource\n")
		m.printf("4. Share Resource Link\n5. Access Shared Resource\n6. Rate/Review Resource\n")
		m.printf("7. View Reviews\n8. Favorites\n9. Calendar Management\n")
		m.printf("10. Study Groups\n11. Update Profile\n12. Logout\n")
		choice, ok := m.prompt("Choose (1-12): ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			m.uploadResource(username)
		case "2":
			m.viewResources(username)
		case "3":
			m.downloadResource(username)
		case "4":
			m.shareLink(username)
		case "5":
			m.accessShared()
		case "6":
			m.rateResource(username)
		case "7":
			m.viewReviews()
		case "8":
			m.favoritesLoop(username)
		case "9":
			m.calendarLoop(username)
		case "10":
			m.groupLoop(username)
		case "11":
			m.updateProfile(username)
		case "12":
			m.printf("Logging out...\n")
			return
		default:
			m.printf("Invalid choice. Try again.\n")
		}
	}
}

func (m *Menu) uploadResource(username string) {
	title, _ := m.prompt("Enter resource title: ")
	description, _ := m.prompt("Enter resource description: ")
	category, _ := m.prompt("Enter category name: ")
	color, _ := m.prompt("Enter category color (optional): ")
	tags, _ := m.prompt("Enter tags (comma-separated): ")
	difficulty, _ := m.prompt("Difficulty level (beginner/intermediate/advanced): ")
	estimated, _ := m.prompt("Estimated study time (e.g., 30 minutes): ")
	sourcePath, _ := m.prompt("Enter file path to upload: ")
	sourcePath = strings.Trim(sourcePath, `"'`)

	in := services.UploadInput{
		Actor:         username,
		Title:         title,
		Description:   description,
		CategoryName:  category,
		CategoryColor: color,
		Tags:          tags,
		Difficulty:    orDefault(difficulty, "beginner"),
		EstimatedTime: estimated,
		SourcePath:    sourcePath,
	}
	if isVideoPath(sourcePath) {
		duration, _ := m.prompt("Enter video duration (e.g., 1h 30m): ")
		in.VideoDuration = orDefault(duration, "Unknown")
	}
	result, err := services.UploadResource(m.store, m.cfg, in)
	if err != nil {
		m.fail(err)
		return
	}
	m.rec.Record(username, result.ResourceID, services.InteractionUpload, 2)
	m.printf("Resource uploaded (ID: %d) - Awaiting approval.\n", result.ResourceID)
	m.printf("Share link: %s\n", result.ShareToken)
}

func (m *Menu) viewResources(username string) {
	m.printf("\n--- Filter Options ---\n")
	m.printf("1. All approved resources\n2. Videos only\n3. Documents only\n")
	m.printf("4. By category\n5. Search by title/description\n6. By difficulty level\n7. Recommended for you\n")
	choice, ok := m.prompt("Choose filter (1-7): ")
	if !ok {
		return
	}
	if choice == "7" {
		m.showRecommendations(username)
		return
	}
	filter := services.ResourceFilter{}
	switch choice {
	case "2":
		filter.VideosOnly = true
	case "3":
		filter.DocumentsOnly = true
	case "4":
		filter.Category, _ = m.prompt("Enter category name: ")
	case "5":
		filter.Search, _ = m.prompt("Enter search term: ")
	case "6":
		filter.Difficulty, _ = m.prompt("Difficulty (beginner/intermediate/advanced): ")
	}
	var listings []services.ResourceListing
	err := m.store.With(func(handle *sqlx.DB) error {
		var err error
		listings, err = services.ListResources(handle, filter)
		return err
	})
	if err != nil {
		m.fail(err)
		return
	}
	if len(listings) == 0 {
		m.printf("No resources found.\n")
		return
	}
	for _, r := range listings {
		kind := "Document"
		if r.IsVideo {
			kind = "Video"
		}
		m.printf("ID: %d | Title: %s\n", r.ID, r.Title)
		m.printf("  Description: %s\n", r.Description)
		m.printf("  Category: %s | Difficulty: %s | Type: %s\n",
			orDefault(strValue(r.CategoryName), "Uncategorized"), orDefault(strValue(r.Difficulty), "beginner"), kind)
		if r.ReviewCount > 0 {
			m.printf("  Upload Date: %s | Downloads: %d | Rating: %.1f/5 (%d reviews)\n",
				r.UploadDate, r.DownloadCount, r.AvgRating, r.ReviewCount)
		} else {
			m.printf("  Upload Date: %s | Downloads: %d | No ratings yet\n", r.UploadDate, r.DownloadCount)
		}
		m.printf("  Share Link: %s\n", strValue(r.ShareLink))
		m.printf("%s\n", strings.Repeat("-", 80))
	}
}

func (m *Menu) showRecommendations(username string) {
	var (
		recs     []services.Recommendation
		personal bool
	)
	err := m.store.With(func(handle *sqlx.DB) error {
		var err error
		recs, personal, err = services.Recommend(handle, username)
		return err
	})
	if err != nil {
		m.fail(err)
		return
	}
	if !personal {
		m.printf("No interaction history found. Showing popular resources instead.\n")
	}
	if len(recs) == 0 {
		m.printf("No recommendations available at the moment.\n")
		return
	}
	m.printf("\nRecommended Resources for %s:\n", username)
	for _, rec := range recs {
		m.printf("ID: %d | %s | Category: %s | Downloads: %d | Rating: %.1f/5\n",
			rec.ResourceID, rec.Title, orDefault(strValue(rec.CategoryName), "Uncategorized"), rec.DownloadCount, rec.AvgRating)
	}
}

func (m *Menu) downloadResource(username string) {
	resourceID, ok := m.promptID("Enter resource ID to download: ")
	if !ok {
		return
	}
	result, err := services.DownloadResource(m.store, m.cfg, username, resourceID)
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Downloading '%s'...\n", result.Title)
	m.printf("File downloaded as: %s\n", result.DestPath)
	if result.Warning != "" {
		m.printf("Warning: %s\n", result.Warning)
		return
	}
	m.printf("Updated download count to: %d\n", result.NewCount)
	m.rec.Record(username, resourceID, services.InteractionDownload, 3)
}

func (m *Menu) shareLink(username string) {
	resourceID, ok := m.promptID("Enter resource ID to get share link: ")
	if !ok {
		return
	}
	var title, token string
	err := m.store.With(func(handle *sqlx.DB) error {
		var err error
		title, token, err = services.ShareLink(handle, resourceID)
		return err
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("\nResource: %s\nShare Link: %s\n", title, token)
	m.printf("Anyone with this link can access the resource!\n")
	m.rec.Record(username, resourceID, services.InteractionShare, 1)
}

func (m *Menu) accessShared() {
	token, ok := m.prompt("Enter share link: ")
	if !ok {
		return
	}
	err := m.store.With(func(handle *sqlx.DB) error {
		resource, err := services.AccessShared(handle, token)
		if err != nil {
			return err
		}
		m.printf("\nResource Found!\nTitle: %s\nDescription: %s\nUploaded by: %s\n",
			resource.Title, resource.Description, resource.UploadedBy)
		confirm, _ := m.prompt("\nDownload this resource? (y/n): ")
		if strings.EqualFold(confirm, "y") {
			if err := services.BumpDownloadCount(handle, resource.ID); err != nil {
				return err
			}
			m.printf("Resource download initiated!\n")
		}
		return nil
	})
	if err != nil {
		m.fail(err)
	}
}

func (m *Menu) rateResource(username string) {
	resourceID, ok := m.promptID("Enter resource ID to rate: ")
	if !ok {
		return
	}
	ratingRaw, _ := m.prompt("Enter rating (1-5): ")
	rating, err := strconv.Atoi(ratingRaw)
	if err != nil {
		m.printf("Invalid rating!\n")
		return
	}
	comment, _ := m.prompt("Enter your review (optional): ")
	err = m.store.With(func(handle *sqlx.DB) error {
		return services.RateResource(handle, username, resourceID, rating, comment)
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Review submitted successfully!\n")
	m.rec.Record(username, resourceID, services.InteractionRate, rating)
}

func (m *Menu) viewReviews() {
	resourceID, ok := m.promptID("Enter resource ID to view reviews: ")
	if !ok {
		return
	}
	err := m.store.With(func(handle *sqlx.DB) error {
		title, reviews, err := services.ListReviews(handle, resourceID)
		if err != nil {
			return err
		}
		m.printf("\nReviews for '%s':\n", title)
		if len(reviews) == 0 {
			m.printf("No reviews yet.\n")
			return nil
		}
		for _, rev := range reviews {
			m.printf("Reviewer: %s | Rating: %d/5 | Date: %s\n", rev.Reviewer, rev.Rating, rev.ReviewDate)
			if rev.Comment != nil && *rev.Comment != "" {
				m.printf("Comment: %s\n", *rev.Comment)
			}
			m.printf("%s\n", strings.Repeat("-", 50))
		}
		return nil
	})
	if err != nil {
		m.fail(err)
	}
}

func (m *Menu) favoritesLoop(username string) {
	for {
		m.printf("\n=== Favorites - %s ===\n", username)
		m.printf("1. View Favorites\n2. Add Favorite\n3. Remove Favorite\n4. Back\n")
		choice, ok := m.prompt("Choose (1-4): ")
		if !ok || choice == "4" {
			return
		}
		switch choice {
		case "1":
			err := m.store.With(func(handle *sqlx.DB) error {
				favorites, err := services.ListFavorites(handle, username)
				if err != nil {
					return err
				}
				if len(favorites) == 0 {
					m.printf("No favorites yet.\n")
					return nil
				}
				for _, fav := range favorites {
					m.printf("ID: %d | %s | Category: %s | Added: %s\n",
						fav.ResourceID, fav.Title, orDefault(strValue(fav.CategoryName), "Uncategorized"), fav.AddedDate)
				}
				return nil
			})
			if err != nil {
				m.fail(err)
			}
		case "2":
			resourceID, ok := m.promptID("Enter resource ID to favorite: ")
			if !ok {
				continue
			}
			err := m.store.With(func(handle *sqlx.DB) error {
				return services.AddFavorite(handle, username, resourceID)
			})
			if err != nil {
				m.fail(err)
				continue
			}
			m.printf("Added to favorites!\n")
			m.rec.Record(username, resourceID, services.InteractionFavorite, 2)
		case "3":
			resourceID, ok := m.promptID("Enter resource ID to remove: ")
			if !ok {
				continue
			}
			err := m.store.With(func(handle *sqlx.DB) error {
				return services.RemoveFavorite(handle, username, resourceID)
			})
			if err != nil {
				m.fail(err)
				continue
			}
			m.printf("Removed from favorites.\n")
		default:
			m.printf("Invalid choice. Try again.\n")
		}
	}
}

func (m *Menu) calendarLoop(username string) {
	for {
		m.printf("\n=== Calendar Management - %s ===\n", username)
		m.printf("1. Add Calendar Event\n2. View Calendar Events\n3. Mark Event Completed\n4. Back\n")
		choice, ok := m.prompt("Choose (1-4): ")
		if !ok || choice == "4" {
			return
		}
		switch choice {
		case "1":
			m.addEvent(username)
		case "2":
			err := m.store.With(func(handle *sqlx.DB) error {
				events, err := services.ListEvents(handle, username)
				if err != nil {
					return err
				}
				if len(events) == 0 {
					m.printf("No calendar events found.\n")
					return nil
				}
				for _, event := range events {
					status := "Not Completed"
					if event.IsCompleted {
						status = "Completed"
					}
					m.printf("ID: %d | Title: %s\n", event.ID, event.Title)
					m.printf("  Start: %s | End: %s | Type: %s\n", event.StartDatetime, event.EndDatetime, event.EventType)
					m.printf("  Reminder: %d minutes before | Status: %s\n", event.ReminderMinutes, status)
				}
				return nil
			})
			if err != nil {
				m.fail(err)
			}
		case "3":
			eventID, ok := m.promptID("Enter event ID to complete: ")
			if !ok {
				continue
			}
			err := m.store.With(func(handle *sqlx.DB) error {
				return services.CompleteEvent(handle, username, eventID)
			})
			if err != nil {
				m.fail(err)
				continue
			}
			m.printf("Event marked as completed.\n")
		default:
			m.printf("Invalid choice. Try again.\n")
		}
	}
}

func (m *Menu) addEvent(username string) {
	title, _ := m.prompt("Enter event title (e.g., Study Math Chapter 3): ")
	description, _ := m.prompt("Enter event description (optional): ")
	start, _ := m.prompt("Enter start date and time (YYYY-MM-DD HH:MM:SS): ")
	end, _ := m.prompt("Enter end date and time (YYYY-MM-DD HH:MM:SS): ")
	eventType, _ := m.prompt("Enter event type (e.g., study_session, deadline): ")
	reminderRaw, _ := m.prompt("Enter reminder minutes before event (default 15): ")
	reminder := 15
	if reminderRaw != "" {
		parsed, err := strconv.Atoi(reminderRaw)
		if err != nil {
			m.printf("Invalid reminder minutes! Using default (15).\n")
		} else {
			reminder = parsed
		}
	}
	var relatedID *int64
	relatedRaw, _ := m.prompt("Enter related resource or group ID (optional, press Enter to skip): ")
	if id, err := strconv.ParseInt(relatedRaw, 10, 64); err == nil {
		relatedID = &id
	}
	var eventID int64
	err := m.store.With(func(handle *sqlx.DB) error {
		var err error
		eventID, err = services.AddEvent(handle, username, services.EventInput{
			Title:           title,
			Description:     description,
			Start:           start,
			End:             end,
			EventType:       eventType,
			RelatedID:       relatedID,
			ReminderMinutes: reminder,
		})
		return err
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Event added successfully (ID: %d)!\n", eventID)
}

func (m *Menu) groupLoop(username string) {
	for {
		m.printf("\n=== Study Groups - %s ===\n", username)
		m.printf("1. Create Study Group\n2. View My Study Groups\n3. Join Study Group\n4. Back\n")
		choice, ok := m.prompt("Choose (1-4): ")
		if !ok || choice == "4" {
			return
		}
		switch choice {
		case "1":
			m.createGroup(username)
		case "2":
			err := m.store.With(func(handle *sqlx.DB) error {
				groups, err := services.ListGroupsFor(handle, username)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					m.printf("You are not a member of any study groups.\n")
					return nil
				}
				for _, group := range groups {
					privacy := "Public"
					if group.IsPrivate {
						privacy = "Private"
					}
					m.printf("ID: %d | Name: %s\n", group.ID, group.Name)
					m.printf("  Subject: %s | Max Members: %d | Privacy: %s | Your Role: %s\n",
						orDefault(strValue(group.Subject), "None"), group.MaxMembers, privacy, group.MemberRole)
					if group.IsPrivate {
						m.printf("  Group Code: %s\n", group.GroupCode)
					}
				}
				return nil
			})
			if err != nil {
				m.fail(err)
			}
		case "3":
			code, ok := m.prompt("Enter group code: ")
			if !ok {
				continue
			}
			var groupID int64
			err := m.store.With(func(handle *sqlx.DB) error {
				var err error
				groupID, err = services.JoinGroup(handle, username, code)
				return err
			})
			if err != nil {
				m.fail(err)
				continue
			}
			m.printf("Joined study group successfully (ID: %d)!\n", groupID)
		default:
			m.printf("Invalid choice. Try again.\n")
		}
	}
}

func (m *Menu) createGroup(username string) {
	name, _ := m.prompt("Enter study group name: ")
	description, _ := m.prompt("Enter group description: ")
	subject, _ := m.prompt("Enter subject (e.g., Math, Physics): ")
	maxRaw, _ := m.prompt("Enter maximum members (default 20): ")
	maxMembers := 20
	if maxRaw != "" {
		parsed, err := strconv.Atoi(maxRaw)
		if err != nil {
			m.printf("Invalid number! Using default (20).\n")
		} else {
			maxMembers = parsed
		}
	}
	private, _ := m.prompt("Is the group private? (y/n): ")
	schedule, _ := m.prompt("Enter meeting schedule (e.g., Weekly, Mon 3PM): ")

	var (
		groupID int64
		code    string
	)
	err := m.store.With(func(handle *sqlx.DB) error {
		var err error
		groupID, code, err = services.CreateGroup(handle, username, services.GroupInput{
			Name:            name,
			Description:     description,
			Subject:         subject,
			MaxMembers:      maxMembers,
			IsPrivate:       strings.EqualFold(private, "y"),
			MeetingSchedule: schedule,
		})
		return err
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Study group '%s' created successfully (ID: %d, Code: %s)!\n", name, groupID, code)
	if strings.EqualFold(private, "y") {
		m.printf("Share the group code '%s' with others to join.\n", code)
	}
}

func (m *Menu) updateProfile(username string) {
	fullName, _ := m.prompt("New full name (press Enter to skip): ")
	email, _ := m.prompt("New email (press Enter to skip): ")
	userType, _ := m.prompt("New user type (student/teacher, press Enter to skip): ")
	err := m.store.With(func(handle *sqlx.DB) error {
		return services.UpdateProfile(handle, username, fullName, email, strings.ToLower(userType))
	})
	if err != nil {
		m.fail(err)
		return
	}
	m.printf("Profile updated successfully!\n")
}

func isVideoPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".mp4", ".avi", ".mkv", ".mov", ".wmv", ".flv"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func strValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
