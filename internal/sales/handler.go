package sales

import (
	"errors"
	"fmt"
	"time"

	"butterbakery-backend/internal/activity"
	"butterbakery-backend/internal/auth"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateDailySalesRequest struct {
	Date              *string         `json:"date"` // "YYYY-MM-DD"، الافتراضي اليوم
	TotalCashSales    decimal.Decimal `json:"total_cash_sales"`
	TotalNetworkSales decimal.Decimal `json:"total_network_sales"`
	Notes             string          `json:"notes"`
	BranchID          *uint           `json:"branch_id"` // للمدير فقط
}

type DailySalesResponse struct {
	ID                uint                    `json:"id"`
	BranchID          uint                    `json:"branch_id"`
	CashierID         uint                    `json:"cashier_id"`
	Date              string                  `json:"date"`
	TotalCashSales    decimal.Decimal         `json:"total_cash_sales"`
	TotalNetworkSales decimal.Decimal         `json:"total_network_sales"`
	TotalSales        decimal.Decimal         `json:"total_sales"`
	Status            models.DailySalesStatus `json:"status"`
	Notes             string                  `json:"notes"`
	CreatedAt         string                  `json:"created_at"`
}

func dailySalesResponse(r *models.DailySales) DailySalesResponse {
	return DailySalesResponse{
		ID:                r.ID,
		BranchID:          r.BranchID,
		CashierID:         r.CashierID,
		Date:              r.Date.Format("2006-01-02"),
		TotalCashSales:    r.TotalCashSales,
		TotalNetworkSales: r.TotalNetworkSales,
		TotalSales:        r.TotalSales,
		Status:            r.Status,
		Notes:             r.Notes,
		CreatedAt:         r.CreatedAt.Format("2006-01-02 15:04:05"),
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

// -------------------------------------------------
// POST /api/daily-sales
// -------------------------------------------------
func CreateDailySalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateDailySalesRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if body.TotalCashSales.IsNegative() || body.TotalNetworkSales.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "المبالغ يجب ألا تكون سالبة")
		}

		branchID, err := resolveBranchID(c, body.BranchID)
		if err != nil {
			return err
		}
		cashierID, ok := c.Locals(auth.CtxUserIDKey).(uint)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "تعذر تحديد المستخدم الحالي")
		}

		var date time.Time
		if body.Date == nil || *body.Date == "" {
			now := time.Now()
			date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		} else {
			d, err := time.Parse("2006-01-02", *body.Date)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "صيغة التاريخ غير صالحة، المطلوب 'YYYY-MM-DD'")
			}
			date = d
		}

		record := models.DailySales{
			BranchID:          branchID,
			CashierID:         cashierID,
			Date:              date,
			TotalCashSales:    body.TotalCashSales,
			TotalNetworkSales: body.TotalNetworkSales,
			TotalSales:        body.TotalCashSales.Add(body.TotalNetworkSales),
			Status:            models.DailySalesStatusPending,
			Notes:             body.Notes,
		}

		if err := database.DB.Create(&record).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر حفظ المبيعات اليومية")
		}

		if err := activity.Record(cashierID, &branchID, "daily_sales_created",
			fmt.Sprintf("تسجيل مبيعات يومية بمبلغ %s", record.TotalSales.StringFixed(2))); err != nil {
			fmt.Printf("activity log failed: %v\n", err)
		}

		return c.Status(fiber.StatusCreated).JSON(dailySalesResponse(&record))
	}
}

// -------------------------------------------------
// GET /api/daily-sales?from=2025-01-01&to=2025-01-31
// -------------------------------------------------
func ListDailySalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := resolveBranchID(c, nil)
		if err != nil {
			return err
		}

		dbq := database.DB.Where("branch_id = ?", branchID)

		if fromStr := c.Query("from"); fromStr != "" {
			from, err := time.Parse("2006-01-02", fromStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "تاريخ from غير صالح")
			}
			dbq = dbq.Where("date >= ?", from)
		}
		if toStr := c.Query("to"); toStr != "" {
			to, err := time.Parse("2006-01-02", toStr)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "تاريخ to غير صالح")
			}
			dbq = dbq.Where("date <= ?", to)
		}
		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var records []models.DailySales
		if err := dbq.Order("date DESC, id DESC").Find(&records).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "تعذر جلب المبيعات اليومية")
		}

		res := make([]DailySalesResponse, 0, len(records))
		for i := range records {
			res = append(res, dailySalesResponse(&records[i]))
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// GET /api/daily-sales/:id
// -------------------------------------------------
func GetDailySalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "معرّف سجل المبيعات غير صالح")
		}

		record, err := GetDailySalesByID(uint(id))
		if err != nil {
			if errors.Is(err, ErrDailySalesNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "سجل المبيعات اليومية غير موجود")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ غير متوقع")
		}

		return c.JSON(dailySalesResponse(record))
	}
}
