package activity

import (
	"fmt"

	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"
)

// Record appends a row to the activity log. Callers treat it as
// best-effort: a failed activity write never rolls back the financial
// mutation it describes.
func Record(userID uint, branchID *uint, action, details string) error {
	entry := models.Activity{
		UserID:   userID,
		BranchID: branchID,
		Action:   action,
		Details:  details,
	}

	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("activity record failed: %w", err)
	}

	return nil
}
