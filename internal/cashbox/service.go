package cashbox

import (
	"errors"
	"fmt"
	"log"
	"time"

	"butterbakery-backend/internal/activity"
	"butterbakery-backend/internal/database"
	"butterbakery-backend/internal/models"
	"butterbakery-backend/internal/notifications"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Compensating entries (rejected-transfer refunds) are attributed to the
// seeded system user.
const systemUserID uint = 1

type TransactionInput struct {
	BranchID        uint
	Amount          decimal.Decimal
	Type            models.TransactionType
	Source          models.TransactionSource
	CreatedBy       uint
	Date            time.Time
	Notes           string
	ReferenceNumber string
}

type TransferInput struct {
	BranchID        uint
	Amount          decimal.Decimal
	TransferMethod  models.TransferMethod
	Date            time.Time
	CreatedBy       uint
	Notes           string
	ReferenceNumber string
}

// signedDelta maps a transaction type to the balance effect of its amount.
func signedDelta(t models.TransactionType, amount decimal.Decimal) (decimal.Decimal, error) {
	switch t {
	case models.TransactionTypeDeposit:
		return amount, nil
	case models.TransactionTypeWithdrawal, models.TransactionTypeTransferToHQ:
		return amount.Neg(), nil
	default:
		return decimal.Zero, ErrUnsupportedTransactionType
	}
}

func businessDate(d time.Time) time.Time {
	if d.IsZero() {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	}
	return d
}

// ---------------------------------------------------------------
// Branch cash box manager
// ---------------------------------------------------------------

func GetBranchCashBox(branchID uint) (*models.BranchCashBox, error) {
	var box models.BranchCashBox
	if err := database.DB.Where("branch_id = ?", branchID).First(&box).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCashBoxNotFound
		}
		return nil, err
	}
	return &box, nil
}

func CreateBranchCashBox(branchID uint, initialBalance decimal.Decimal, createdBy uint) (*models.BranchCashBox, error) {
	if initialBalance.IsNegative() {
		return nil, ErrInvalidAmount
	}

	box := models.BranchCashBox{
		BranchID:    branchID,
		Balance:     initialBalance,
		LastUpdated: time.Now(),
		CreatedBy:   createdBy,
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.BranchCashBox{}).Where("branch_id = ?", branchID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrCashBoxExists
		}
		return tx.Create(&box).Error
	})
	if err != nil {
		return nil, err
	}

	logActivity(createdBy, branchID, "cash_box_created",
		fmt.Sprintf("إنشاء صندوق نقدية للفرع #%d برصيد %s", branchID, initialBalance.StringFixed(2)))

	return &box, nil
}

// UpdateBranchCashBoxBalance adds the signed delta to the stored balance.
// It never auto-creates a cash box.
func UpdateBranchCashBoxBalance(branchID uint, delta decimal.Decimal) (*models.BranchCashBox, error) {
	var box *models.BranchCashBox
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		box, txErr = applyBalanceDelta(tx, branchID, delta)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return box, nil
}

func applyBalanceDelta(tx *gorm.DB, branchID uint, delta decimal.Decimal) (*models.BranchCashBox, error) {
	var box models.BranchCashBox
	if err := tx.Where("branch_id = ?", branchID).First(&box).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCashBoxNotFound
		}
		return nil, err
	}

	box.Balance = box.Balance.Add(delta)
	box.LastUpdated = time.Now()

	if err := tx.Model(&models.BranchCashBox{}).Where("id = ?", box.ID).
		Updates(map[string]interface{}{
			"balance":      box.Balance,
			"last_updated": box.LastUpdated,
		}).Error; err != nil {
		return nil, err
	}

	return &box, nil
}

// ---------------------------------------------------------------
// Transaction recorder
// ---------------------------------------------------------------

// CreateCashBoxTransaction records an immutable ledger entry and applies
// its effect to the owning cash box in one database transaction. If the
// branch has no cash box the whole operation fails; no orphan entries.
func CreateCashBoxTransaction(input TransactionInput) (*models.CashBoxTransaction, error) {
	var trx *models.CashBoxTransaction
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		trx, txErr = createTransactionTx(tx, input)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	logActivity(input.CreatedBy, input.BranchID, "cash_box_"+string(input.Type),
		fmt.Sprintf("عملية %s بمبلغ %s على صندوق الفرع #%d", input.Type, input.Amount.StringFixed(2), input.BranchID))

	return trx, nil
}

func createTransactionTx(tx *gorm.DB, input TransactionInput) (*models.CashBoxTransaction, error) {
	if input.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	delta, err := signedDelta(input.Type, input.Amount)
	if err != nil {
		return nil, err
	}

	box, err := applyBalanceDelta(tx, input.BranchID, delta)
	if err != nil {
		return nil, err
	}

	trx := models.CashBoxTransaction{
		BranchID:        input.BranchID,
		CashBoxID:       box.ID,
		Amount:          input.Amount,
		Type:            input.Type,
		Source:          input.Source,
		CreatedBy:       input.CreatedBy,
		Date:            businessDate(input.Date),
		Notes:           input.Notes,
		ReferenceNumber: input.ReferenceNumber,
	}
	if err := tx.Create(&trx).Error; err != nil {
		return nil, err
	}

	if trx.ReferenceNumber == "" {
		trx.ReferenceNumber = fmt.Sprintf("TR-%d", trx.ID)
		if err := tx.Model(&models.CashBoxTransaction{}).Where("id = ?", trx.ID).
			Update("reference_number", trx.ReferenceNumber).Error; err != nil {
			return nil, err
		}
	}

	return &trx, nil
}

func GetCashBoxTransactions(branchID uint) ([]models.CashBoxTransaction, error) {
	var txs []models.CashBoxTransaction
	if err := database.DB.Where("branch_id = ?", branchID).
		Order("date DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

// GetCashBoxTransactionsByDate returns transactions in the inclusive
// business-date window [start, end].
func GetCashBoxTransactionsByDate(branchID uint, start, end time.Time) ([]models.CashBoxTransaction, error) {
	var txs []models.CashBoxTransaction
	if err := database.DB.
		Where("branch_id = ? AND date >= ? AND date <= ?", branchID, start, end).
		Order("date DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func GetCashBoxTransactionByID(id uint) (*models.CashBoxTransaction, error) {
	var trx models.CashBoxTransaction
	if err := database.DB.First(&trx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	return &trx, nil
}

// ---------------------------------------------------------------
// HQ transfer workflow: pending -> approved | rejected (terminal)
// ---------------------------------------------------------------

// CreateCashTransferToHQ creates the transfer request and the linked
// ledger debit together. The branch balance is debited immediately: the
// physical cash has already left the branch at submission time, approval
// is only an administrative acknowledgement.
func CreateCashTransferToHQ(input TransferInput) (*models.CashTransferToHQ, error) {
	if input.Amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	var transfer models.CashTransferToHQ
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var box models.BranchCashBox
		if err := tx.Where("branch_id = ?", input.BranchID).First(&box).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCashBoxNotFound
			}
			return err
		}

		transfer = models.CashTransferToHQ{
			BranchID:        input.BranchID,
			CashBoxID:       box.ID,
			Amount:          input.Amount,
			TransferMethod:  input.TransferMethod,
			Date:            businessDate(input.Date),
			CreatedBy:       input.CreatedBy,
			Notes:           input.Notes,
			ReferenceNumber: input.ReferenceNumber,
			Status:          models.TransferStatusPending,
		}
		if err := tx.Create(&transfer).Error; err != nil {
			return err
		}

		if transfer.ReferenceNumber == "" {
			transfer.ReferenceNumber = fmt.Sprintf("HQ-%d", transfer.ID)
			if err := tx.Model(&models.CashTransferToHQ{}).Where("id = ?", transfer.ID).
				Update("reference_number", transfer.ReferenceNumber).Error; err != nil {
				return err
			}
		}

		// linked debit carries the transfer reference so the two records correlate
		_, err := createTransactionTx(tx, TransactionInput{
			BranchID:        input.BranchID,
			Amount:          input.Amount,
			Type:            models.TransactionTypeTransferToHQ,
			Source:          models.SourceTransfer,
			CreatedBy:       input.CreatedBy,
			Date:            transfer.Date,
			Notes:           fmt.Sprintf("تحويل نقدية إلى المركز الرئيسي #%d", transfer.ID),
			ReferenceNumber: transfer.ReferenceNumber,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logActivity(input.CreatedBy, input.BranchID, "cash_transfer_created",
		fmt.Sprintf("طلب تحويل %s إلى المركز الرئيسي (%s)", input.Amount.StringFixed(2), transfer.ReferenceNumber))
	notify(nil, "طلب تحويل نقدية جديد",
		fmt.Sprintf("الفرع #%d طلب تحويل %s إلى المركز الرئيسي", input.BranchID, input.Amount.StringFixed(2)),
		models.NotificationInfo,
		fmt.Sprintf("/cash-transfers/%d", transfer.ID))

	return &transfer, nil
}

func ApproveCashTransferToHQ(id uint, approverID uint) (*models.CashTransferToHQ, error) {
	var transfer models.CashTransferToHQ
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&transfer, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransferNotFound
			}
			return err
		}
		if transfer.Status != models.TransferStatusPending {
			return ErrInvalidTransferState
		}

		now := time.Now()
		transfer.Status = models.TransferStatusApproved
		transfer.ApprovedAt = &now
		transfer.ApprovedBy = &approverID

		// no balance change: the debit already happened at creation
		return tx.Model(&models.CashTransferToHQ{}).Where("id = ?", transfer.ID).
			Updates(map[string]interface{}{
				"status":      transfer.Status,
				"approved_at": transfer.ApprovedAt,
				"approved_by": transfer.ApprovedBy,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	logActivity(approverID, transfer.BranchID, "cash_transfer_approved",
		fmt.Sprintf("تأكيد استلام التحويل %s", transfer.ReferenceNumber))
	notify(&transfer.CreatedBy, "تم تأكيد التحويل",
		fmt.Sprintf("تم تأكيد استلام التحويل %s بمبلغ %s", transfer.ReferenceNumber, transfer.Amount.StringFixed(2)),
		models.NotificationSuccess,
		fmt.Sprintf("/cash-transfers/%d", transfer.ID))

	return &transfer, nil
}

// RejectCashTransferToHQ marks the transfer rejected and posts a
// compensating deposit re-crediting the branch, attributed to the system
// user. Debit at creation plus this credit cancel out.
func RejectCashTransferToHQ(id uint, reason string, rejectedBy uint) (*models.CashTransferToHQ, error) {
	var transfer models.CashTransferToHQ
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&transfer, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTransferNotFound
			}
			return err
		}
		if transfer.Status != models.TransferStatusPending {
			return ErrInvalidTransferState
		}

		transfer.Status = models.TransferStatusRejected
		transfer.RejectionReason = reason

		if err := tx.Model(&models.CashTransferToHQ{}).Where("id = ?", transfer.ID).
			Updates(map[string]interface{}{
				"status":           transfer.Status,
				"rejection_reason": transfer.RejectionReason,
			}).Error; err != nil {
			return err
		}

		_, err := createTransactionTx(tx, TransactionInput{
			BranchID:  transfer.BranchID,
			Amount:    transfer.Amount,
			Type:      models.TransactionTypeDeposit,
			Source:    models.SourceTransfer,
			CreatedBy: systemUserID,
			Notes:     fmt.Sprintf("إعادة مبلغ تحويل مرفوض #%d", transfer.ID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	logActivity(rejectedBy, transfer.BranchID, "cash_transfer_rejected",
		fmt.Sprintf("رفض التحويل %s: %s", transfer.ReferenceNumber, reason))
	notify(&transfer.CreatedBy, "تم رفض التحويل",
		fmt.Sprintf("تم رفض التحويل %s: %s", transfer.ReferenceNumber, reason),
		models.NotificationError,
		fmt.Sprintf("/cash-transfers/%d", transfer.ID))

	return &transfer, nil
}

func GetCashTransfersToHQ(branchID uint) ([]models.CashTransferToHQ, error) {
	var transfers []models.CashTransferToHQ
	if err := database.DB.Where("branch_id = ?", branchID).
		Order("date DESC, id DESC").Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

func GetCashTransferToHQByID(id uint) (*models.CashTransferToHQ, error) {
	var transfer models.CashTransferToHQ
	if err := database.DB.First(&transfer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return &transfer, nil
}

func GetCashTransfersByStatus(status models.TransferStatus) ([]models.CashTransferToHQ, error) {
	var transfers []models.CashTransferToHQ
	if err := database.DB.Where("status = ?", status).
		Order("date DESC, id DESC").Find(&transfers).Error; err != nil {
		return nil, err
	}
	return transfers, nil
}

// ---------------------------------------------------------------
// Best-effort side effects, failures are logged and never block the ledger
// ---------------------------------------------------------------

func logActivity(userID uint, branchID uint, action, details string) {
	if err := activity.Record(userID, &branchID, action, details); err != nil {
		log.Printf("activity log failed: %v", err)
	}
}

func notify(userID *uint, title, message string, ntype models.NotificationType, link string) {
	if err := notifications.Send(userID, title, message, ntype, link); err != nil {
		log.Printf("notification failed: %v", err)
	}
}
