package cli

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/adrp/studyshare/internal/services"
)

func (m *Menu) adminLoop(username string) {
	m.printf("\nWelcome to Admin Panel, %s!\n", username)
	for {
		m.printf("\n=== Admin Menu - %s ===\n", username)
		m.printf("1. Verify Users\n2. Approve Resources\n3. Reject Resources\n")
		m.printf("4. Manage Categories\n5. View System Statistics\n6. Back to Main Menu\n")
		choice, ok := m.prompt("Choose (1-6): ")
		if !ok || choice == "6" {
			return
		}
		switch choice {
		case "1":
			m.verifyUsers()
		case "2":
			m.reviewPending(true)
		case "3":
			m.reviewPending(false)
		case "4":
			m.categoryLoop(username)
		case "5":
			m.systemStats()
		default:
			m.printf("Invalid choice! Please select 1-6.\n")
		}
	}
}

func (m *Menu) verifyUsers() {
	err := m.store.With(func(handle *sqlx.DB) error {
		pending, err := services.ListPendingUsers(handle)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			m.printf("No pending users to verify!\n")
			return nil
		}
		m.printf("\nPENDING USERS FOR VERIFICATION\n")
		for i, user := range pending {
			m.printf("%d. Username: %s | Name: %s | Type: %s | Joined: %s\n",
				i+1, user.Username, orDefault(strValue(user.FullName), "Not provided"), user.UserType, user.JoinDate)
		}
		username, ok := m.prompt("\nEnter username to verify (or 'back' to return): ")
		if !ok || username == "" || strings.EqualFold(username, "back") {
			return nil
		}
		if err := services.VerifyUser(handle, username); err != nil {
			return err
		}
		m.printf("User '%s' verified successfully!\n", username)
		return nil
	})
	if err != nil {
		m.fail(err)
	}
}

// reviewPending lists pending resources, then approves or rejects one.
func (m *Menu) reviewPending(approve bool) {
	err := m.store.With(func(handle *sqlx.DB) error {
		pending, err := services.ListPendingResources(handle)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			if approve {
				m.printf("No pending resources to approve!\n")
			} else {
				m.printf("No pending resources to reject!\n")
			}
			return nil
		}
		m.printf("\nPENDING RESOURCES\n")
		for _, resource := range pending {
			m.printf("ID: %d | %s | by %s | %s | Category: %s | %s\n",
				resource.ID, resource.Title, resource.UploadedBy, resource.FileType,
				orDefault(strValue(resource.CategoryName), "Uncategorized"), resource.UploadDate)
		}
		resourceID, ok := m.promptID("\nEnter resource ID (or 'back' to return): ")
		if !ok {
			return nil
		}
		if approve {
			if err := services.ApproveResource(handle, resourceID); err != nil {
				return err
			}
			m.printf("Resource ID %d approved successfully!\n", resourceID)
		} else {
			reason, _ := m.prompt("Enter rejection reason: ")
			if reason == "" {
				m.printf("Rejection reason cannot be empty!\n")
				return nil
			}
			if err := services.RejectResource(handle, resourceID); err != nil {
				return err
			}
			m.printf("Resource ID %d rejected successfully!\n", resourceID)
			m.log.Info().Int64("resource_id", resourceID).Str("reason", reason).Msg("resource rejected")
		}
		return nil
	})
	if err != nil {
		m.fail(err)
	}
}

func (m *Menu) categoryLoop(username string) {
	for {
		m.printf("\n=== Category Management ===\n")
		m.printf("1. View all categories\n2. Add new category\n3. Edit category\n")
		m.printf("4. Deactivate category\n5. Activate category\n6. Back\n")
		choice, ok := m.prompt("Choose option (1-6): ")
		if !ok || choice == "6" {
			return
		}
		var err error
		switch choice {
		case "1":
			err = m.store.With(func(handle *sqlx.DB) error {
				categories, err := services.ListCategories(handle)
				if err != nil {
					return err
				}
				if len(categories) == 0 {
					m.printf("No categories found.\n")
					return nil
				}
				for _, cat := range categories {
					status := "Inactive"
					if cat.IsActive {
						status = "Active"
					}
					m.printf("ID: %d | Name: %s | Color: %s | %s\n", cat.ID, cat.Name, cat.Color, status)
					m.printf("  Description: %s | Created: %s\n",
						orDefault(strValue(cat.Description), "No description"), cat.CreatedDate)
				}
				return nil
			})
		case "2":
			name, _ := m.prompt("Category name: ")
			description, _ := m.prompt("Description (optional): ")
			color, _ := m.prompt("Color (hex, e.g., #ff5733, default #007bff): ")
			err = m.store.With(func(handle *sqlx.DB) error {
				return services.CreateCategory(handle, name, description, color, username)
			})
			if err == nil {
				m.printf("Category '%s' added successfully!\n", name)
			}
		case "3":
			categoryID, ok := m.promptID("Category ID to edit: ")
			if !ok {
				continue
			}
			name, _ := m.prompt("New name (press Enter to keep current): ")
			description, _ := m.prompt("New description (press Enter to keep current): ")
			color, _ := m.prompt("New color (press Enter to keep current): ")
			err = m.store.With(func(handle *sqlx.DB) error {
				return services.UpdateCategory(handle, categoryID, name, description, color)
			})
			if err == nil {
				m.printf("Category ID %d updated successfully!\n", categoryID)
			}
		case "4", "5":
			activate := choice == "5"
			categoryID, ok := m.promptID("Category ID: ")
			if !ok {
				continue
			}
			err = m.store.With(func(handle *sqlx.DB) error {
				return services.SetCategoryActive(handle, categoryID, activate)
			})
			if err == nil {
				if activate {
					m.printf("Category ID %d activated successfully!\n", categoryID)
				} else {
					m.printf("Category ID %d deactivated successfully!\n", categoryID)
				}
			}
		default:
			m.printf("Invalid choice! Please select 1-6.\n")
		}
		if err != nil {
			m.fail(err)
		}
	}
}

func (m *Menu) systemStats() {
	err := m.store.With(func(handle *sqlx.DB) error {
		stats, err := services.CollectStats(handle, m.cfg.ResourcesDir)
		if err != nil {
			return err
		}
		m.printf("\nSYSTEM STATISTICS DASHBOARD\n")
		m.printf("\nUSER STATISTICS\n")
		m.printf("  Total Users: %d\n  Verified: %d\n  Pending: %d\n",
			stats.Users.Total, stats.Users.Verified, stats.Users.Pending)
		m.printf("\nRESOURCE STATISTICS\n")
		m.printf("  Total Resources: %d\n  Approved: %d\n  Pending: %d\n  Rejected: %d\n",
			stats.Resources.Total, stats.Resources.Approved, stats.Resources.Pending, stats.Resources.Rejected)
		m.printf("\nCATEGORY STATISTICS\n")
		m.printf("  Total Categories: %d\n  Active: %d\n  Inactive: %d\n",
			stats.Categories.Total, stats.Categories.Active, stats.Categories.Inactive)
		if len(stats.TopCategories) > 0 {
			m.printf("\nTOP CATEGORIES BY APPROVED RESOURCES\n")
			for i, cat := range stats.TopCategories {
				m.printf("  %d. %s: %d resources\n", i+1, cat.Name, cat.Count)
			}
		}
		m.printf("\nRECENT ACTIVITY (Last 7 Days)\n")
		m.printf("  New Users: %d\n  New Resources: %d\n", stats.RecentUsers, stats.RecentResources)
		m.printf("\nHOST\n")
		m.printf("  Memory: %s / %s used\n",
			formatBytes(stats.Host.MemoryUsedBytes), formatBytes(stats.Host.MemoryTotalBytes))
		m.printf("  Disk:   %s / %s used\n",
			formatBytes(stats.Host.DiskUsedBytes), formatBytes(stats.Host.DiskTotalBytes))
		return nil
	})
	if err != nil {
		m.fail(err)
	}
}

func formatBytes(value uint64) string {
	const unit = 1024
	if value < unit {
		return fmt.Sprintf("%d B", value)
	}
	div, exp := uint64(unit), 0
	for n := value / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(value)/float64(div), "KMGTPE"[exp])
}
