package activity

import (
	"fmt"

	"butterbakery-backend/internal/auth"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/activities?branch_id=1&action=cash_box_deposit&limit=100
func ListActivitiesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		roleVal := c.Locals(auth.CtxUserRoleKey)
		role, ok := roleVal.(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "تعذر تحديد صلاحيات المستخدم")
		}

		var branchID *uint
		if role != models.RoleAdmin {
			bVal := c.Locals(auth.CtxBranchIDKey)
			bPtr, ok := bVal.(*uint)
			if ok && bPtr != nil {
				branchID = bPtr
			}
		} else {
			bidStr := c.Query("branch_id")
			if bidStr != "" {
				var bid uint
				if _, err := fmt.Sscan(bidStr, &bid); err == nil && bid > 0 {
					branchID = &bid
				}
			}
		}

		limit := c.QueryInt("limit", 100)
		if limit < 1 || limit > 500 {
			limit = 100
		}

		dbq := database.DB.Model(&models.Activity{})
		if branchID != nil {
			dbq = dbq.Where("branch_id = ?", *branchID)
		}
		if action := c.Query("action"); action != "" {
			dbq = dbq.Where("action = ?", action)
		}
		if userIDStr := c.Query("user_id"); userIDStr != "" {
			var uid uint
			if _, err := fmt.Sscan(userIDStr, &uid); err == nil && uid > 0 {
				dbq = dbq.Where("user_id = ?", uid)
			}
		}

		var entries []models.Activity
		if err := dbq.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب سجل الحركات")
		}

		return c.JSON(entries)
	}
}
