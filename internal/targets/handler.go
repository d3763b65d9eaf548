package targets

import (
	"fmt"
	"time"

	"butterbakery-backend/internal/activity"
	"butterbakery-backend/internal/auth"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateTargetRequest struct {
	Year         int             `json:"year"`
	Month        int             `json:"month"` // 1-12
	TargetAmount decimal.Decimal `json:"target_amount"`
	Notes        string          `json:"notes"`
	BranchID     *uint           `json:"branch_id"`
}

type TargetResponse struct {
	ID           uint            `json:"id"`
	BranchID     uint            `json:"branch_id"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	Notes        string          `json:"notes"`
	CreatedAt    string          `json:"created_at"`
}

type TargetAchievementResponse struct {
	BranchID     uint            `json:"branch_id"`
	Year         int             `json:"year"`
	Month        int             `json:"month"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	ActualSales  decimal.Decimal `json:"actual_sales"`
	Achievement  decimal.Decimal `json:"achievement_percent"`
}

func targetResponse(t *models.MonthlyTarget) TargetResponse {
	return TargetResponse{
		ID:           t.ID,
		BranchID:     t.BranchID,
		Year:         t.Year,
		Month:        t.Month,
		TargetAmount: t.TargetAmount,
		Notes:        t.Notes,
		CreatedAt:    t.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func resolveBranchID(c *fiber.Ctx, bodyBranchID *uint) (uint, error) {
	role, ok := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "تعذر تحديد صلاحيات المستخدم")
	}

	if role != models.RoleAdmin {
		branchIDPtr, ok := c.Locals(auth.CtxBranchIDKey).(*uint)
		if !ok || branchIDPtr == nil {
			return 0, fiber.NewError(fiber.StatusForbidden, "لا يوجد فرع مرتبط بالمستخدم")
		}
		return *branchIDPtr, nil
	}

	if bodyBranchID != nil {
		return *bodyBranchID, nil
	}
	bidStr := c.Query("branch_id")
	if bidStr == "" {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id مطلوب")
	}
	var bid uint
	if _, err := fmt.Sscan(bidStr, &bid); err != nil || bid == 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "branch_id غير صالح")
	}
	return bid, nil
}

func parseYearMonth(c *fiber.Ctx) (int, int, error) {
	yearStr := c.Query("year")
	monthStr := c.Query("month")
	if yearStr == "" || monthStr == "" {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year و month مطلوبان")
	}
	var year, month int
	if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "year غير صالح")
	}
	if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
		return 0, 0, fiber.NewError(fiber.StatusBadRequest, "month غير صالح")
	}
	return year, month, nil
}

// -------------------------------------------------
// POST /api/targets
// -------------------------------------------------
func CreateTargetHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTargetRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if body.Year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year غير صالح")
		}
		if body.Month < 1 || body.Month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month غير صالح")
		}
		if !body.TargetAmount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "الهدف يجب أن يكون أكبر من صفر")
		}

		branchID, err := resolveBranchID(c, body.BranchID)
		if err != nil {
			return err
		}
		userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "تعذر تحديد المستخدم الحالي")
		}

		var count int64
		database.DB.Model(&models.MonthlyTarget{}).
			Where("branch_id = ? AND year = ? AND month = ?", branchID, body.Year, body.Month).
			Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusConflict, "يوجد هدف لهذا الفرع في هذا الشهر بالفعل")
		}

		target := models.MonthlyTarget{
			BranchID:     branchID,
			Year:         body.Year,
			Month:        body.Month,
			TargetAmount: body.TargetAmount,
			Notes:        body.Notes,
			CreatedBy:    userID,
		}
		if err := database.DB.Create(&target).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حفظ الهدف الشهري")
		}

		if err := activity.Record(userID, &branchID, "monthly_target_created",
			fmt.Sprintf("هدف شهري %d/%d بمبلغ %s", target.Month, target.Year, target.TargetAmount.StringFixed(2))); err != nil {
			fmt.Printf("activity log failed: %v\n", err)
		}

		return c.Status(fiber.StatusCreated).JSON(targetResponse(&target))
	}
}

// -------------------------------------------------
// GET /api/targets?year=2025
// -------------------------------------------------
func ListTargetsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchID(c, nil)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("branch_id = ?", branchID)
		if yearStr := c.Query("year"); yearStr != "" {
			var year int
			if _, err := fmt.Sscan(yearStr, &year); err == nil && year >= 2000 {
				dbq = dbq.Where("year = ?", year)
			}
		}

		var targets []models.MonthlyTarget
		if err := dbq.Order("year DESC, month DESC").Find(&targets).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب الأهداف الشهرية")
		}

		res := make([]TargetResponse, 0, len(targets))
		for i := range targets {
			res = append(res, targetResponse(&targets[i]))
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// GET /api/targets/achievement?year=2025&month=8
// -------------------------------------------------
func TargetAchievementHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchID(c, nil)
		if err != nil {
			return err
		}
		year, month, err := parseYearMonth(c)
		if err != nil {
			return err
		}

		var target models.MonthlyTarget
		if err := database.DB.
			Where("branch_id = ? AND year = ? AND month = ?", branchID, year, month).
			First(&target).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "لا يوجد هدف لهذا الفرع في هذا الشهر")
		}

		monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
		monthEnd := monthStart.AddDate(0, 1, 0)

		var sales []models.DailySales
		if err := database.DB.
			Where("branch_id = ? AND date >= ? AND date < ?", branchID, monthStart, monthEnd).
			Find(&sales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب المبيعات")
		}

		actual := decimal.Zero
		for _, s := range sales {
			actual = actual.Add(s.TotalSales)
		}

		achievement := decimal.Zero
		if target.TargetAmount.IsPositive() {
			achievement = actual.Div(target.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
		}

		return c.JSON(TargetAchievementResponse{
			BranchID:     branchID,
			Year:         year,
			Month:        month,
			TargetAmount: target.TargetAmount,
			ActualSales:  actual,
			Achievement:  achievement,
		})
	}
}
