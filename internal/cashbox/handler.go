package cashbox

import (
	"errors"
	"fmt"
	"time"

	"butterbakery-backend/internal/auth"
	"butterbakery-backend/internal/models"
	"butterbakery-backend/internal/sales"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateCashBoxRequest struct {
	InitialBalance decimal.Decimal `json:"initial_balance"`
	BranchID       *uint           `json:"branch_id"` // للمدير فقط
}

type CreateTransactionRequest struct {
	Amount          decimal.Decimal          `json:"amount"`
	Type            models.TransactionType   `json:"type"`   // deposit | withdrawal | transfer_to_hq
	Source          models.TransactionSource `json:"source"` // daily_sales | manual | transfer
	Date            *string                  `json:"date"`   // "YYYY-MM-DD"، الافتراضي اليوم
	Notes           string                   `json:"notes"`
	ReferenceNumber string                   `json:"reference_number"`
	BranchID        *uint                    `json:"branch_id"`
}

type CreateTransferRequest struct {
	Amount          decimal.Decimal       `json:"amount"`
	TransferMethod  models.TransferMethod `json:"transfer_method"` // bank_transfer | courier | cash_delivery
	Date            *string               `json:"date"`
	Notes           string                `json:"notes"`
	ReferenceNumber string                `json:"reference_number"`
	BranchID        *uint                 `json:"branch_id"`
}

type RejectTransferRequest struct {
	Reason string `json:"reason"`
}

type CashBoxResponse struct {
	ID          uint            `json:"id"`
	BranchID    uint            `json:"branch_id"`
	Balance     decimal.Decimal `json:"balance"`
	LastUpdated string          `json:"last_updated"`
	CreatedBy   uint            `json:"created_by"`
	CreatedAt   string          `json:"created_at"`
}

type TransactionResponse struct {
	ID              uint                     `json:"id"`
	BranchID        uint                     `json:"branch_id"`
	CashBoxID       uint                     `json:"cash_box_id"`
	Amount          decimal.Decimal          `json:"amount"`
	Type            models.TransactionType   `json:"type"`
	Source          models.TransactionSource `json:"source"`
	CreatedBy       uint                     `json:"created_by"`
	Date            string                   `json:"date"`
	Notes           string                   `json:"notes"`
	ReferenceNumber string                   `json:"reference_number"`
	Timestamp       string                   `json:"timestamp"`
}

type TransferResponse struct {
	ID              uint                  `json:"id"`
	BranchID        uint                  `json:"branch_id"`
	CashBoxID       uint                  `json:"cash_box_id"`
	Amount          decimal.Decimal       `json:"amount"`
	TransferMethod  models.TransferMethod `json:"transfer_method"`
	Date            string                `json:"date"`
	CreatedBy       uint                  `json:"created_by"`
	Notes           string                `json:"notes"`
	ReferenceNumber string                `json:"reference_number"`
	Status          models.TransferStatus `json:"status"`
	ApprovedAt      *string               `json:"approved_at"`
	ApprovedBy      *uint                 `json:"approved_by"`
	RejectionReason string                `json:"rejection_reason,omitempty"`
}

func cashBoxResponse(box *models.BranchCashBox) CashBoxResponse {
	return CashBoxResponse{
		ID:          box.ID,
		BranchID:    box.BranchID,
		Balance:     box.Balance,
		LastUpdated: box.LastUpdated.Format("2006-01-02 15:04:05"),
		CreatedBy:   box.CreatedBy,
		CreatedAt:   box.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func transactionResponse(trx *models.CashBoxTransaction) TransactionResponse {
	return TransactionResponse{
		ID:              trx.ID,
		BranchID:        trx.BranchID,
		CashBoxID:       trx.CashBoxID,
		Amount:          trx.Amount,
		Type:            trx.Type,
		Source:          trx.Source,
		CreatedBy:       trx.CreatedBy,
		Date:            trx.Date.Format("2006-01-02"),
		Notes:           trx.Notes,
		ReferenceNumber: trx.ReferenceNumber,
		Timestamp:       trx.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func transferResponse(t *models.CashTransferToHQ) TransferResponse {
	res := TransferResponse{
		ID:              t.ID,
		BranchID:        t.BranchID,
		CashBoxID:       t.CashBoxID,
		Amount:          t.Amount,
		TransferMethod:  t.TransferMethod,
		Date:            t.Date.Format("2006-01-02"),
		CreatedBy:       t.CreatedBy,
		Notes:           t.Notes,
		ReferenceNumber: t.ReferenceNumber,
		Status:          t.Status,
		ApprovedBy:      t.ApprovedBy,
		RejectionReason: t.RejectionReason,
	}
	if t.ApprovedAt != nil {
		s := t.ApprovedAt.Format("2006-01-02 15:04:05")
		res.ApprovedAt = &s
	}
	return res
}

// branch_id resolution: non-admin roles are scoped by the JWT claim,
// admins pass branch_id explicitly (body or query).
func getBranchIDForRequest(c *fiber.Ctx, bodyBranchID *uint) (uint, error) {
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

func getUserID(c *fiber.Ctx) (uint, error) {
	userID, ok := c.Locals(auth.CtxUserIDKey).(uint)
	if !ok {
		return 0, fiber.NewError(fiber.StatusForbidden, "تعذر تحديد المستخدم الحالي")
	}
	return userID, nil
}

func parseBusinessDate(s *string) (time.Time, error) {
	if s == nil || *s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "صيغة التاريخ غير صالحة، المطلوب 'YYYY-MM-DD'")
	}
	return d, nil
}

func parseDateRange(c *fiber.Ctx) (time.Time, time.Time, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "from و to مطلوبان (YYYY-MM-DD)")
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "تاريخ from غير صالح")
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "تاريخ to غير صالح")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fiber.NewError(fiber.StatusBadRequest, "تاريخ to قبل تاريخ from")
	}
	return from, to, nil
}

func serviceError(err error) error {
	switch {
	case errors.Is(err, ErrCashBoxNotFound):
		return fiber.NewError(fiber.StatusNotFound, "لا يوجد صندوق نقدية لهذا الفرع")
	case errors.Is(err, ErrCashBoxExists):
		return fiber.NewError(fiber.StatusConflict, "يوجد صندوق نقدية لهذا الفرع بالفعل")
	case errors.Is(err, ErrTransactionNotFound):
		return fiber.NewError(fiber.StatusNotFound, "العملية غير موجودة")
	case errors.Is(err, ErrTransferNotFound):
		return fiber.NewError(fiber.StatusNotFound, "التحويل غير موجود")
	case errors.Is(err, sales.ErrDailySalesNotFound):
		return fiber.NewError(fiber.StatusNotFound, "سجل المبيعات اليومية غير موجود")
	case errors.Is(err, ErrInvalidTransferState):
		return fiber.NewError(fiber.StatusConflict, "لا يمكن تعديل تحويل مكتمل")
	case errors.Is(err, ErrUnsupportedTransactionType):
		return fiber.NewError(fiber.StatusBadRequest, "نوع العملية غير مدعوم")
	case errors.Is(err, ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, "المبلغ غير صالح")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "حدث خطأ غير متوقع")
	}
}

// -------------------------------------------------
// POST /api/cash-box
// -------------------------------------------------
func CreateCashBoxHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCashBoxRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		branchID, err := getBranchIDForRequest(c, body.BranchID)
		if err != nil {
			return err
		}
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		box, err := CreateBranchCashBox(branchID, body.InitialBalance, userID)
		if err != nil {
			return serviceError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(cashBoxResponse(box))
	}
}

// -------------------------------------------------
// GET /api/cash-box
// -------------------------------------------------
func GetCashBoxHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := getBranchIDForRequest(c, nil)
		if err != nil {
			return err
		}

		box, err := GetBranchCashBox(branchID)
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(cashBoxResponse(box))
	}
}

// -------------------------------------------------
// GET /api/cash-box/balance
// -------------------------------------------------
func GetCashBoxBalanceHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := getBranchIDForRequest(c, nil)
		if err != nil {
			return err
		}

		balance, err := GetBranchCashBoxBalance(branchID)
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(fiber.Map{
			"branch_id": branchID,
			"balance":   balance,
		})
	}
}

// -------------------------------------------------
// POST /api/cash-box/transactions
// -------------------------------------------------
func CreateTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransactionRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if !body.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "المبلغ يجب أن يكون أكبر من صفر")
		}

		switch body.Type {
		case models.TransactionTypeDeposit, models.TransactionTypeWithdrawal, models.TransactionTypeTransferToHQ:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "نوع العملية غير صالح (deposit|withdrawal|transfer_to_hq)")
		}

		if body.Source == "" {
			body.Source = models.SourceManual
		}

		branchID, err := getBranchIDForRequest(c, body.BranchID)
		if err != nil {
			return err
		}
		userID, err := getUserID(c)
		if err != nil {
			return err
		}
		date, err := parseBusinessDate(body.Date)
		if err != nil {
			return err
		}

		trx, err := CreateCashBoxTransaction(TransactionInput{
			BranchID:        branchID,
			Amount:          body.Amount,
			Type:            body.Type,
			Source:          body.Source,
			CreatedBy:       userID,
			Date:            date,
			Notes:           body.Notes,
			ReferenceNumber: body.ReferenceNumber,
		})
		if err != nil {
			return serviceError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(transactionResponse(trx))
	}
}

// -------------------------------------------------
// GET /api/cash-box/transactions?from=2025-01-01&to=2025-01-31
// -------------------------------------------------
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := getBranchIDForRequest(c, nil)
		if err != nil {
			return err
		}

		var txs []models.CashBoxTransaction
		if c.Query("from") != "" || c.Query("to") != "" {
			from, to, err := parseDateRange(c)
			if err != nil {
				return err
			}
			txs, err = GetCashBoxTransactionsByDate(branchID, from, to)
			if err != nil {
				return serviceError(err)
			}
		} else {
			txs, err = GetCashBoxTransactions(branchID)
			if err != nil {
				return serviceError(err)
			}
		}

		res := make([]TransactionResponse, 0, len(txs))
		for i := range txs {
			res = append(res, transactionResponse(&txs[i]))
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// GET /api/cash-box/transactions/:id
// -------------------------------------------------
func GetTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "معرّف العملية غير صالح")
		}

		trx, err := GetCashBoxTransactionByID(uint(id))
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(transactionResponse(trx))
	}
}

// -------------------------------------------------
// GET /api/cash-box/report?from=2025-01-01&to=2025-01-31
// -------------------------------------------------
func CashBoxReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := getBranchIDForRequest(c, nil)
		if err != nil {
			return err
		}
		from, to, err := parseDateRange(c)
		if err != nil {
			return err
		}

		report, err := GetCashBoxReport(branchID, from, to)
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(report)
	}
}

// -------------------------------------------------
// POST /api/cash-box/process-daily-sales/:id
// -------------------------------------------------
func ProcessDailySalesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "معرّف سجل المبيعات غير صالح")
		}

		trx, err := ProcessDailySalesToCashBox(uint(id))
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(transactionResponse(trx))
	}
}

// -------------------------------------------------
// POST /api/cash-transfers
// -------------------------------------------------
func CreateTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}

		if !body.Amount.IsPositive() {
			return fiber.NewError(fiber.StatusBadRequest, "المبلغ يجب أن يكون أكبر من صفر")
		}

		switch body.TransferMethod {
		case models.TransferMethodBank, models.TransferMethodCourier, models.TransferMethodCash:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "طريقة التحويل غير صالحة (bank_transfer|courier|cash_delivery)")
		}

		branchID, err := getBranchIDForRequest(c, body.BranchID)
		if err != nil {
			return err
		}
		userID, err := getUserID(c)
		if err != nil {
			return err
		}
		date, err := parseBusinessDate(body.Date)
		if err != nil {
			return err
		}

		transfer, err := CreateCashTransferToHQ(TransferInput{
			BranchID:        branchID,
			Amount:          body.Amount,
			TransferMethod:  body.TransferMethod,
			Date:            date,
			CreatedBy:       userID,
			Notes:           body.Notes,
			ReferenceNumber: body.ReferenceNumber,
		})
		if err != nil {
			return serviceError(err)
		}

		return c.Status(fiber.StatusCreated).JSON(transferResponse(transfer))
	}
}

// -------------------------------------------------
// GET /api/cash-transfers?status=pending
// -------------------------------------------------
func ListTransfersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// admins can list by status across branches
		if status := c.Query("status"); status != "" {
			role, _ := c.Locals(auth.CtxUserRoleKey).(models.UserRole)
			if role != models.RoleAdmin {
				return fiber.NewError(fiber.StatusForbidden, "ليس لديك صلاحية لتنفيذ هذه العملية")
			}
			switch models.TransferStatus(status) {
			case models.TransferStatusPending, models.TransferStatusApproved, models.TransferStatusRejected:
			default:
				return fiber.NewError(fiber.StatusBadRequest, "حالة التحويل غير صالحة (pending|approved|rejected)")
			}
			transfers, err := GetCashTransfersByStatus(models.TransferStatus(status))
			if err != nil {
				return serviceError(err)
			}
			res := make([]TransferResponse, 0, len(transfers))
			for i := range transfers {
				res = append(res, transferResponse(&transfers[i]))
			}
			return c.JSON(res)
		}

		branchID, err := getBranchIDForRequest(c, nil)
		if err != nil {
			return err
		}
		transfers, err := GetCashTransfersToHQ(branchID)
		if err != nil {
			return serviceError(err)
		}

		res := make([]TransferResponse, 0, len(transfers))
		for i := range transfers {
			res = append(res, transferResponse(&transfers[i]))
		}
		return c.JSON(res)
	}
}

// -------------------------------------------------
// GET /api/cash-transfers/report?from=2025-01-01&to=2025-01-31
// -------------------------------------------------
func TransfersReportHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		branchID, err := getBranchIDForRequest(c, nil)
		if err != nil {
			return err
		}
		from, to, err := parseDateRange(c)
		if err != nil {
			return err
		}

		report, err := GetCashTransfersReport(branchID, from, to)
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(report)
	}
}

// -------------------------------------------------
// GET /api/cash-transfers/:id
// -------------------------------------------------
func GetTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "معرّف التحويل غير صالح")
		}

		transfer, err := GetCashTransferToHQByID(uint(id))
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(transferResponse(transfer))
	}
}

// -------------------------------------------------
// POST /api/cash-transfers/:id/approve
// -------------------------------------------------
func ApproveTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "معرّف التحويل غير صالح")
		}
		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		transfer, err := ApproveCashTransferToHQ(uint(id), userID)
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(transferResponse(transfer))
	}
}

// -------------------------------------------------
// POST /api/cash-transfers/:id/reject
// -------------------------------------------------
func RejectTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil || id < 1 {
			return fiber.NewError(fiber.StatusBadRequest, "معرّف التحويل غير صالح")
		}

		var body RejectTransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "بيانات الطلب غير صالحة")
		}
		if body.Reason == "" {
			return fiber.NewError(fiber.StatusBadRequest, "سبب الرفض مطلوب")
		}

		userID, err := getUserID(c)
		if err != nil {
			return err
		}

		transfer, err := RejectCashTransferToHQ(uint(id), body.Reason, userID)
		if err != nil {
			return serviceError(err)
		}

		return c.JSON(transferResponse(transfer))
	}
}
