package dashboard

import (
	"fmt"
	"time"

	"butterbakery-backend/internal/auth"
	"butterbakery-backend/internal/cashbox"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type SummaryResponse struct {
	BranchID           uint            `json:"branch_id"`
	Date               string          `json:"date"`
	TodaySales         decimal.Decimal `json:"today_sales"`
	TodayCashSales     decimal.Decimal `json:"today_cash_sales"`
	CashBoxBalance     decimal.Decimal `json:"cash_box_balance"`
	PendingTransfers   int64           `json:"pending_transfers"`
	MonthSales         decimal.Decimal `json:"month_sales"`
	MonthTarget        decimal.Decimal `json:"month_target"`
	TargetAchievement  decimal.Decimal `json:"target_achievement_percent"`
}

func resolveBranchID(c *fiber.Ctx) (uint, error) {
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

// GET /api/dashboard/summary
func SummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchID(c)
		if err != nil {
			return err
		}

		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

		res := SummaryResponse{
			BranchID: branchID,
			Date:     today.Format("2006-01-02"),
		}

		var todaySales []models.DailySales
		if err := database.DB.
			Where("branch_id = ? AND date >= ? AND date < ?", branchID, today, today.AddDate(0, 0, 1)).
			Find(&todaySales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب مبيعات اليوم")
		}
		for _, s := range todaySales {
			res.TodaySales = res.TodaySales.Add(s.TotalSales)
			res.TodayCashSales = res.TodayCashSales.Add(s.TotalCashSales)
		}

		balance, err := cashbox.GetBranchCashBoxBalance(branchID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب رصيد الصندوق")
		}
		res.CashBoxBalance = balance

		database.DB.Model(&models.CashTransferToHQ{}).
			Where("branch_id = ? AND status = ?", branchID, models.TransferStatusPending).
			Count(&res.PendingTransfers)

		var monthSales []models.DailySales
		if err := database.DB.
			Where("branch_id = ? AND date >= ?", branchID, monthStart).
			Find(&monthSales).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب مبيعات الشهر")
		}
		for _, s := range monthSales {
			res.MonthSales = res.MonthSales.Add(s.TotalSales)
		}

		var target models.MonthlyTarget
		if err := database.DB.
			Where("branch_id = ? AND year = ? AND month = ?", branchID, now.Year(), int(now.Month())).
			First(&target).Error; err == nil {
			res.MonthTarget = target.TargetAmount
			if target.TargetAmount.IsPositive() {
				res.TargetAchievement = res.MonthSales.Div(target.TargetAmount).Mul(decimal.NewFromInt(100)).Round(2)
			}
		}

		return c.JSON(res)
	}
}
