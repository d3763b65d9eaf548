package notifications

import (
	"butterbakery-backend/internal/auth"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/notifications?unread=true
// Admin users also see broadcast notifications (user_id IS NULL).
func ListNotificationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "تعذر تحديد المستخدم الحالي")
		}
		role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)

		dbq := database.DB.Model(&models.Notification{})
		if role == models.RoleAdmin {
			dbq = dbq.Where("user_id = ? OR user_id IS NULL", userID)
		} else {
			dbq = dbq.Where("user_id = ?", userID)
		}
		if c.Query("unread") == "true" {
			dbq = dbq.Where("is_read = ?", false)
		}

		var items []models.Notification
		if err := dbq.Order("created_at DESC").Limit(200).Find(&items).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب الإشعارات")
		}

		return c.JSON(items)
	}
}

// POST /api/notifications/:id/read
func MarkNotificationReadHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var n models.Notification
		if err := database.DB.First(&n, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "الإشعار غير موجود")
		}

		if err := database.DB.Model(&n).Update("is_read", true).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر تحديث الإشعار")
		}

		return c.JSON(fiber.Map{"id": n.ID, "is_read": true})
	}
}

// POST /api/notifications/generate-alerts
func GenerateAlertsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sent, err := GenerateAlerts()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر توليد التنبيهات")
		}

		return c.JSON(fiber.Map{"alerts_sent": sent})
	}
}
