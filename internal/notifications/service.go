package notifications

import (
	"fmt"

	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"
)

// Send stores a notification for one user, or for all admin users when
// userID is nil (broadcast). Best-effort like the activity log.
func Send(userID *uint, title, message string, ntype models.NotificationType, link string) error {
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    ntype,
		Link:    link,
	}

	if err := database.DB.Create(&n).Error; err != nil {
		return fmt.Errorf("notification send failed: %w", err)
	}

	return nil
}
